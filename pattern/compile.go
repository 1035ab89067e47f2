package pattern

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"

	"github.com/lixenwraith/danmaku/bullet"
	"github.com/lixenwraith/danmaku/expression"
	"github.com/lixenwraith/danmaku/parameter"
	"github.com/lixenwraith/danmaku/vmath"
)

// ErrPatternSyntax wraps every compile and decode failure
var ErrPatternSyntax = errors.New("pattern syntax error")

// Node is one decoded source node; Child links the chain, nil terminates it
type Node struct {
	Type   string
	Fields map[string]json.RawMessage
	Child  *Node
}

// UnmarshalJSON splits "type" and "child" off the object and keeps every other key raw
func (n *Node) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if raw == nil {
		return fmt.Errorf("node must be an object")
	}

	if t, ok := raw["type"]; ok {
		if err := json.Unmarshal(t, &n.Type); err != nil {
			return fmt.Errorf("type: %w", err)
		}
		delete(raw, "type")
	}

	if c, ok := raw["child"]; ok {
		if !isNull(c) {
			n.Child = &Node{}
			if err := json.Unmarshal(c, n.Child); err != nil {
				return err
			}
		}
		delete(raw, "child")
	}

	n.Fields = raw
	return nil
}

// Parse decodes a JSON source and compiles it
func Parse(data []byte) (*Pattern, error) {
	root := &Node{}
	if err := json.Unmarshal(data, root); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrPatternSyntax, err)
	}
	return Compile(root)
}

// Compile walks the node chain into a Pattern
func Compile(root *Node) (*Pattern, error) {
	if root == nil {
		return nil, fmt.Errorf("%w: empty pattern", ErrPatternSyntax)
	}

	p := &Pattern{}
	depth := 0
	for n := root; n != nil; n = n.Child {
		op, err := compileNode(n)
		if err != nil {
			return nil, fmt.Errorf("%w: node %d: %w", ErrPatternSyntax, depth, err)
		}
		p.Ops = append(p.Ops, op)
		depth++
	}
	return p, nil
}

func compileNode(n *Node) (Op, error) {
	switch n.Type {
	case "":
		return nil, errors.New("missing type")

	case "ring":
		count, err := exprField(n.Fields, "count", nil)
		if err != nil {
			return nil, err
		}
		radius, err := floatField(n.Fields, "radius", parameter.DefaultRingRadius)
		if err != nil {
			return nil, err
		}
		return Ring{Count: count, Radius: radius}, nil

	case "arc":
		raw, ok := n.Fields["count"]
		if !ok || isNull(raw) {
			return nil, errors.New("arc: missing count")
		}
		var count uint32
		if err := json.Unmarshal(raw, &count); err != nil {
			return nil, fmt.Errorf("arc: count: %w", err)
		}
		if raw, ok := n.Fields["angle"]; !ok || isNull(raw) {
			return nil, errors.New("arc: missing angle")
		}
		deg, err := floatField(n.Fields, "angle", 0)
		if err != nil {
			return nil, err
		}
		return Arc{Count: count, Angle: vmath.DegToRad(deg)}, nil

	case "bullet":
		zero := expression.Constant(0)
		speed, err := exprField(n.Fields, "speed", zero)
		if err != nil {
			return nil, err
		}
		angularKey := "angular_velocity"
		if _, ok := n.Fields[angularKey]; !ok {
			angularKey = "angular"
		}
		angular, err := exprField(n.Fields, angularKey, zero)
		if err != nil {
			return nil, err
		}
		accel, err := exprField(n.Fields, "acceleration", zero)
		if err != nil {
			return nil, err
		}
		lifetime, err := floatField(n.Fields, "lifetime", parameter.DefaultBulletLifetime)
		if err != nil {
			return nil, err
		}
		aimed, err := boolField(n.Fields, "aimed")
		if err != nil {
			return nil, err
		}
		mod, err := modifierField(n.Fields)
		if err != nil {
			return nil, err
		}
		return Bullet{
			Speed:        speed,
			Angular:      angular,
			Acceleration: accel,
			Lifetime:     lifetime,
			Aimed:        aimed,
			Modifier:     mod,
		}, nil

	default:
		return nil, fmt.Errorf("unknown type %q", n.Type)
	}
}

// exprField accepts a JSON string holding an expression or a JSON number
// A nil def makes the field required
func exprField(fields map[string]json.RawMessage, key string, def *expression.Expression) (*expression.Expression, error) {
	raw, ok := fields[key]
	if !ok || isNull(raw) {
		if def == nil {
			return nil, fmt.Errorf("missing %s", key)
		}
		return def, nil
	}

	var src string
	if err := json.Unmarshal(raw, &src); err == nil {
		e, err := expression.Compile(src)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", key, err)
		}
		return e, nil
	}

	var num float64
	if err := json.Unmarshal(raw, &num); err != nil {
		return nil, fmt.Errorf("%s: expected expression string or number, got %s", key, raw)
	}
	return expression.Constant(num), nil
}

// floatField reads a JSON number; numeric strings such as "45" are tolerated
func floatField(fields map[string]json.RawMessage, key string, def float32) (float32, error) {
	raw, ok := fields[key]
	if !ok || isNull(raw) {
		return def, nil
	}

	var num float64
	if err := json.Unmarshal(raw, &num); err != nil {
		var s string
		if json.Unmarshal(raw, &s) != nil {
			return 0, fmt.Errorf("%s: expected number, got %s", key, raw)
		}
		if num, err = strconv.ParseFloat(s, 64); err != nil {
			return 0, fmt.Errorf("%s: %w", key, err)
		}
	}
	if math.IsNaN(num) || math.IsInf(num, 0) {
		return 0, fmt.Errorf("%s: not finite", key)
	}
	return float32(num), nil
}

func boolField(fields map[string]json.RawMessage, key string) (bool, error) {
	raw, ok := fields[key]
	if !ok || isNull(raw) {
		return false, nil
	}
	var b bool
	if err := json.Unmarshal(raw, &b); err != nil {
		return false, fmt.Errorf("%s: expected boolean, got %s", key, raw)
	}
	return b, nil
}

type modifierSource struct {
	Target string          `json:"target"`
	Expr   json.RawMessage `json:"expr"`
	Delay  float32         `json:"delay"`
}

func modifierField(fields map[string]json.RawMessage) (*ModifierSpec, error) {
	raw, ok := fields["modifier"]
	if !ok || isNull(raw) {
		return nil, nil
	}

	var src modifierSource
	if err := json.Unmarshal(raw, &src); err != nil {
		return nil, fmt.Errorf("modifier: %w", err)
	}
	target, err := bullet.ParseTarget(src.Target)
	if err != nil {
		return nil, fmt.Errorf("modifier: %w", err)
	}
	e, err := exprField(map[string]json.RawMessage{"expr": src.Expr}, "expr", nil)
	if err != nil {
		return nil, fmt.Errorf("modifier: %w", err)
	}
	if src.Delay < 0 {
		return nil, fmt.Errorf("modifier: negative delay %v", src.Delay)
	}
	return &ModifierSpec{Target: target, Expr: e, Delay: src.Delay}, nil
}

func isNull(raw json.RawMessage) bool {
	return len(raw) == 0 || bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}
