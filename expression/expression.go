// Package expression compiles scalar formulas over elapsed time t
// Compiled expressions are immutable and shared by pointer across bullets, modifiers and goroutines
package expression

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
)

// TimeVar is the single free variable of every expression
const TimeVar = "t"

// ErrParse is wrapped by every compile failure
var ErrParse = errors.New("expression parse error")

// Expression is a compiled formula ready for repeated evaluation
type Expression struct {
	source   string
	program  *vm.Program // nil when constant
	constant bool
	value    float64 // cached result when constant
}

// Compile parses source into a reusable Expression
// Grammar: + - * / ^ (or **), parentheses, unary minus, numeric literals, t, pi,
// and the functions sin cos tan sqrt (plus expr builtins abs floor ceil min max)
func Compile(source string) (*Expression, error) {
	src := strings.TrimSpace(source)
	if src == "" {
		return nil, fmt.Errorf("%w: empty expression", ErrParse)
	}

	program, err := expr.Compile(src, compileOptions(true)...)
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %v", ErrParse, src, err)
	}

	e := &Expression{source: src, program: program}

	// Time-independent formulas compile without t in scope; evaluate once and drop the program
	if constProgram, err := expr.Compile(src, compileOptions(false)...); err == nil {
		if v, ok := run(constProgram, 0); ok {
			e.constant = true
			e.value = v
			e.program = nil
		}
	}

	return e, nil
}

// MustCompile is Compile that panics on error, for package-level literals and tests
func MustCompile(source string) *Expression {
	e, err := Compile(source)
	if err != nil {
		panic(err)
	}
	return e
}

// Constant returns a compiled literal
func Constant(v float64) *Expression {
	return &Expression{
		source:   strconv.FormatFloat(v, 'g', -1, 64),
		constant: true,
		value:    v,
	}
}

// Eval evaluates at time t
// Arithmetic faults propagate as IEEE values: x/0 is ±Inf, 0/0 is NaN
// Runtime faults inside the VM (integer modulo by zero) also yield NaN
func (e *Expression) Eval(t float64) float64 {
	if e.constant {
		return e.value
	}
	v, ok := run(e.program, t)
	if !ok {
		return math.NaN()
	}
	return v
}

// Eval32 is Eval narrowed to the pool's float32 slot type
func (e *Expression) Eval32(t float64) float32 {
	return float32(e.Eval(t))
}

// Source returns the trimmed source text
func (e *Expression) Source() string {
	return e.source
}

// IsConstant reports whether the value does not depend on t
func (e *Expression) IsConstant() bool {
	return e.constant
}

func (e *Expression) String() string {
	return e.source
}
