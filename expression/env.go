package expression

import (
	"fmt"
	"math"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
)

// compileOptions builds the option set shared by every compile
// withTime=false removes t from scope, used to detect constant formulas
func compileOptions(withTime bool) []expr.Option {
	return []expr.Option{
		expr.Env(newEnv(0, withTime)),
		expr.AsFloat64(),
		unaryMath("sin", math.Sin),
		unaryMath("cos", math.Cos),
		unaryMath("tan", math.Tan),
		unaryMath("sqrt", math.Sqrt),
	}
}

func newEnv(t float64, withTime bool) map[string]any {
	env := map[string]any{"pi": math.Pi}
	if withTime {
		env[TimeVar] = t
	}
	return env
}

func run(program *vm.Program, t float64) (float64, bool) {
	out, err := expr.Run(program, newEnv(t, true))
	if err != nil {
		return 0, false
	}
	return toFloat(out)
}

func unaryMath(name string, fn func(float64) float64) expr.Option {
	return expr.Function(name, func(params ...any) (any, error) {
		if len(params) != 1 {
			return nil, fmt.Errorf("%s expects 1 argument, got %d", name, len(params))
		}
		x, ok := toFloat(params[0])
		if !ok {
			return nil, fmt.Errorf("%s: non-numeric argument %T", name, params[0])
		}
		return fn(x), nil
	})
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case int32:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint64:
		return float64(n), true
	default:
		return 0, false
	}
}
