package expr

import "fmt"

// CoalesceFunc returns the first non-NA argument
type CoalesceFunc struct{}

func (f *CoalesceFunc) Name() string  { return "coalesce" }
func (f *CoalesceFunc) MinArity() int { return 1 }
func (f *CoalesceFunc) MaxArity() int { return -1 }
func (f *CoalesceFunc) AcceptsNull()  {}
func (f *CoalesceFunc) Evaluate(args []interface{}) (interface{}, error) {
	for _, arg := range args {
		if !IsNA(arg) {
			return arg, nil
		}
	}
	return nil, nil
}

// NullIfFunc returns NA when both arguments are equal, otherwise the first
type NullIfFunc struct{}

func (f *NullIfFunc) Name() string  { return "nullif" }
func (f *NullIfFunc) MinArity() int { return 2 }
func (f *NullIfFunc) MaxArity() int { return 2 }
func (f *NullIfFunc) AcceptsNull()  {}
func (f *NullIfFunc) Evaluate(args []interface{}) (interface{}, error) {
	if IsNA(args[0]) {
		return nil, nil
	}
	equal, err := compare(args[0], TokenEqual, args[1])
	if err != nil {
		return nil, fmt.Errorf("nullif: %w", err)
	}
	if equal {
		return nil, nil
	}
	return args[0], nil
}

// IfElseFunc returns yes where the condition holds and no elsewhere. An
// NA condition yields NA.
type IfElseFunc struct{}

func (f *IfElseFunc) Name() string  { return "ifelse" }
func (f *IfElseFunc) MinArity() int { return 3 }
func (f *IfElseFunc) MaxArity() int { return 3 }
func (f *IfElseFunc) AcceptsNull()  {}
func (f *IfElseFunc) Evaluate(args []interface{}) (interface{}, error) {
	if IsNA(args[0]) {
		return nil, nil
	}
	cond, err := truthy(args[0])
	if err != nil {
		return nil, fmt.Errorf("ifelse: condition: %w", err)
	}
	if cond {
		return args[1], nil
	}
	return args[2], nil
}

// extremum returns the smallest (sign -1) or largest (sign 1) argument
func extremum(name string, sign int, args []interface{}) (interface{}, error) {
	best := args[0]
	for _, arg := range args[1:] {
		if _, ok := toFloat64(arg); !ok {
			if _, ok := arg.(string); !ok {
				return nil, fmt.Errorf("%s: cannot compare %T", name, arg)
			}
		}
		if CompareValues(arg, best)*sign > 0 {
			best = arg
		}
	}
	return best, nil
}

// PMinFunc returns the element-wise minimum of its arguments
type PMinFunc struct{}

func (f *PMinFunc) Name() string  { return "pmin" }
func (f *PMinFunc) MinArity() int { return 1 }
func (f *PMinFunc) MaxArity() int { return -1 }
func (f *PMinFunc) Evaluate(args []interface{}) (interface{}, error) {
	return extremum("pmin", -1, args)
}

// PMaxFunc returns the element-wise maximum of its arguments
type PMaxFunc struct{}

func (f *PMaxFunc) Name() string  { return "pmax" }
func (f *PMaxFunc) MinArity() int { return 1 }
func (f *PMaxFunc) MaxArity() int { return -1 }
func (f *PMaxFunc) Evaluate(args []interface{}) (interface{}, error) {
	return extremum("pmax", 1, args)
}
