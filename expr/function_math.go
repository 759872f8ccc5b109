package expr

import (
	"fmt"
	"math"
)

// unaryMath adapts a float64 function into an element-wise Function.
// NaN results become NA.
type unaryMath struct {
	name string
	fn   func(float64) float64
}

func (f *unaryMath) Name() string  { return f.name }
func (f *unaryMath) MinArity() int { return 1 }
func (f *unaryMath) MaxArity() int { return 1 }
func (f *unaryMath) Evaluate(args []interface{}) (interface{}, error) {
	num, err := valueToNumber(args[0])
	if err != nil {
		return nil, fmt.Errorf("%s: %w", f.name, err)
	}
	r := f.fn(num)
	if math.IsNaN(r) {
		return nil, nil
	}
	return r, nil
}

// AbsFunc returns the absolute value; integers stay integers
type AbsFunc struct{}

func (f *AbsFunc) Name() string  { return "abs" }
func (f *AbsFunc) MinArity() int { return 1 }
func (f *AbsFunc) MaxArity() int { return 1 }
func (f *AbsFunc) Evaluate(args []interface{}) (interface{}, error) {
	if i, ok := toInt64(args[0]); ok {
		if i < 0 {
			return -i, nil
		}
		return i, nil
	}
	num, err := valueToNumber(args[0])
	if err != nil {
		return nil, fmt.Errorf("abs: %w", err)
	}
	return math.Abs(num), nil
}

// RoundFunc rounds a number to the given number of decimal places
type RoundFunc struct{}

func (f *RoundFunc) Name() string  { return "round" }
func (f *RoundFunc) MinArity() int { return 1 }
func (f *RoundFunc) MaxArity() int { return 2 }
func (f *RoundFunc) Evaluate(args []interface{}) (interface{}, error) {
	num, err := valueToNumber(args[0])
	if err != nil {
		return nil, fmt.Errorf("round: %w", err)
	}

	decimals := 0.0
	if len(args) == 2 {
		decimals, err = valueToNumber(args[1])
		if err != nil {
			return nil, fmt.Errorf("round: decimals argument: %w", err)
		}
	}

	multiplier := math.Pow(10, decimals)
	return math.Round(num*multiplier) / multiplier, nil
}

func positiveOnly(fn func(float64) float64) func(float64) float64 {
	return func(x float64) float64 {
		if x <= 0 {
			return math.NaN()
		}
		return fn(x)
	}
}

// mathFunctions are the single-argument float functions: floor, ceil,
// sqrt, exp, log, log10 and trunc.
func mathFunctions() []Function {
	return []Function{
		&unaryMath{name: "floor", fn: math.Floor},
		&unaryMath{name: "ceil", fn: math.Ceil},
		&unaryMath{name: "sqrt", fn: math.Sqrt},
		&unaryMath{name: "exp", fn: math.Exp},
		&unaryMath{name: "log", fn: positiveOnly(math.Log)},
		&unaryMath{name: "log10", fn: positiveOnly(math.Log10)},
		&unaryMath{name: "trunc", fn: math.Trunc},
	}
}

// ModFunc returns the floored remainder of division; a zero divisor yields NA
type ModFunc struct{}

func (f *ModFunc) Name() string  { return "mod" }
func (f *ModFunc) MinArity() int { return 2 }
func (f *ModFunc) MaxArity() int { return 2 }
func (f *ModFunc) Evaluate(args []interface{}) (interface{}, error) {
	for i, arg := range args {
		if _, ok := toFloat64(arg); !ok {
			return nil, fmt.Errorf("mod: argument %d: cannot convert %T to number", i+1, arg)
		}
	}
	return arithmetic(TokenPercent, args[0], args[1])
}

// PowFunc returns x raised to the power of y
type PowFunc struct{}

func (f *PowFunc) Name() string  { return "pow" }
func (f *PowFunc) MinArity() int { return 2 }
func (f *PowFunc) MaxArity() int { return 2 }
func (f *PowFunc) Evaluate(args []interface{}) (interface{}, error) {
	x, err := valueToNumber(args[0])
	if err != nil {
		return nil, fmt.Errorf("pow: base: %w", err)
	}

	y, err := valueToNumber(args[1])
	if err != nil {
		return nil, fmt.Errorf("pow: exponent: %w", err)
	}

	return math.Pow(x, y), nil
}

// SignFunc returns the sign of a number (-1, 0, or 1)
type SignFunc struct{}

func (f *SignFunc) Name() string  { return "sign" }
func (f *SignFunc) MinArity() int { return 1 }
func (f *SignFunc) MaxArity() int { return 1 }
func (f *SignFunc) Evaluate(args []interface{}) (interface{}, error) {
	num, err := valueToNumber(args[0])
	if err != nil {
		return nil, fmt.Errorf("sign: %w", err)
	}

	switch {
	case num < 0:
		return int64(-1), nil
	case num > 0:
		return int64(1), nil
	}
	return int64(0), nil
}
