package expr

import (
	"fmt"
	"sort"
)

// vectorArg returns argument i expanded to n elements
func vectorArg(args []Value, i, n int) ([]interface{}, error) {
	return args[i].Materialize(n)
}

// shift implements lead (positive k) and lag (negative k)
func shift(args []Value, n int, sign int) (Value, error) {
	vals, err := vectorArg(args, 0, n)
	if err != nil {
		return Value{}, err
	}
	k, err := intArg(args, 1, 1)
	if err != nil {
		return Value{}, err
	}
	def, err := scalarArg(args, 2, nil)
	if err != nil {
		return Value{}, err
	}
	if len(args) < 3 {
		def = WindowDefault(vals)
	}
	return NewVector(Lead(vals, sign*k, def)), nil
}

// LeadFunc returns lead(x[, k[, default]]): the value k rows ahead
type LeadFunc struct{}

func (f *LeadFunc) Name() string  { return "lead" }
func (f *LeadFunc) MinArity() int { return 1 }
func (f *LeadFunc) MaxArity() int { return 3 }
func (f *LeadFunc) EvaluateVector(args []Value, n int) (Value, error) {
	return shift(args, n, 1)
}

// LagFunc returns lag(x[, k[, default]]): the value k rows behind
type LagFunc struct{}

func (f *LagFunc) Name() string  { return "lag" }
func (f *LagFunc) MinArity() int { return 1 }
func (f *LagFunc) MaxArity() int { return 3 }
func (f *LagFunc) EvaluateVector(args []Value, n int) (Value, error) {
	return shift(args, n, -1)
}

// cumulative folds a vector left to right. step receives a nil
// accumulator for the first present value. NA positions stay NA and do not
// reset the running value.
func cumulative(args []Value, n int, step func(acc, v interface{}) (interface{}, error)) (Value, error) {
	vals, err := vectorArg(args, 0, n)
	if err != nil {
		return Value{}, err
	}
	out := make([]interface{}, len(vals))
	var acc interface{}
	for i, v := range vals {
		if IsNA(v) {
			continue
		}
		if acc, err = step(acc, v); err != nil {
			return Value{}, err
		}
		out[i] = acc
	}
	return NewVector(out), nil
}

// CumSumFunc returns the running sum
type CumSumFunc struct{}

func (f *CumSumFunc) Name() string  { return "cumsum" }
func (f *CumSumFunc) MinArity() int { return 1 }
func (f *CumSumFunc) MaxArity() int { return 1 }
func (f *CumSumFunc) EvaluateVector(args []Value, n int) (Value, error) {
	return cumulative(args, n, func(acc, v interface{}) (interface{}, error) {
		if acc == nil {
			acc = int64(0)
		}
		return arithmetic(TokenPlus, acc, v)
	})
}

// CumMinFunc returns the running minimum
type CumMinFunc struct{}

func (f *CumMinFunc) Name() string  { return "cummin" }
func (f *CumMinFunc) MinArity() int { return 1 }
func (f *CumMinFunc) MaxArity() int { return 1 }
func (f *CumMinFunc) EvaluateVector(args []Value, n int) (Value, error) {
	return cumulative(args, n, func(acc, v interface{}) (interface{}, error) {
		if acc == nil || CompareValues(v, acc) < 0 {
			return v, nil
		}
		return acc, nil
	})
}

// CumMaxFunc returns the running maximum
type CumMaxFunc struct{}

func (f *CumMaxFunc) Name() string  { return "cummax" }
func (f *CumMaxFunc) MinArity() int { return 1 }
func (f *CumMaxFunc) MaxArity() int { return 1 }
func (f *CumMaxFunc) EvaluateVector(args []Value, n int) (Value, error) {
	return cumulative(args, n, func(acc, v interface{}) (interface{}, error) {
		if acc == nil || CompareValues(v, acc) > 0 {
			return v, nil
		}
		return acc, nil
	})
}

// RowNumberFunc returns 1..n within the current group
type RowNumberFunc struct{}

func (f *RowNumberFunc) Name() string  { return "row_number" }
func (f *RowNumberFunc) MinArity() int { return 0 }
func (f *RowNumberFunc) MaxArity() int { return 0 }
func (f *RowNumberFunc) EvaluateVector(args []Value, n int) (Value, error) {
	out := make([]interface{}, n)
	for i := range out {
		out[i] = int64(i + 1)
	}
	return NewVector(out), nil
}

// RankFunc returns the minimum rank of each value: ties share the lowest
// rank and leave gaps. NA values get NA.
type RankFunc struct{}

func (f *RankFunc) Name() string  { return "rank" }
func (f *RankFunc) MinArity() int { return 1 }
func (f *RankFunc) MaxArity() int { return 1 }
func (f *RankFunc) EvaluateVector(args []Value, n int) (Value, error) {
	vals, err := vectorArg(args, 0, n)
	if err != nil {
		return Value{}, err
	}

	idx := make([]int, 0, len(vals))
	for i, v := range vals {
		if !IsNA(v) {
			idx = append(idx, i)
		}
	}
	sort.SliceStable(idx, func(a, b int) bool {
		return CompareValues(vals[idx[a]], vals[idx[b]]) < 0
	})

	out := make([]interface{}, len(vals))
	for pos, i := range idx {
		if pos > 0 && CompareValues(vals[i], vals[idx[pos-1]]) == 0 {
			out[i] = out[idx[pos-1]]
			continue
		}
		out[i] = int64(pos + 1)
	}
	return NewVector(out), nil
}

// membership evaluates isin/notin against the second argument's values
func membership(args []Value, n int, negate bool) (Value, error) {
	set := args[1].Values()
	if !args[0].IsVector() {
		hit := IsIn([]interface{}{args[0].Scalar()}, set)[0]
		return NewScalar(hit != negate), nil
	}
	vals, err := vectorArg(args, 0, args[0].Len())
	if err != nil {
		return Value{}, err
	}
	hits := IsIn(vals, set)
	out := make([]interface{}, len(hits))
	for i, h := range hits {
		out[i] = h != negate
	}
	return NewVector(out), nil
}

// IsInFunc returns isin(x, [values]): whether each element is in the set
type IsInFunc struct{}

func (f *IsInFunc) Name() string  { return "isin" }
func (f *IsInFunc) MinArity() int { return 2 }
func (f *IsInFunc) MaxArity() int { return 2 }
func (f *IsInFunc) EvaluateVector(args []Value, n int) (Value, error) {
	return membership(args, n, false)
}

// NotInFunc returns notin(x, [values]): whether each element is outside the set
type NotInFunc struct{}

func (f *NotInFunc) Name() string  { return "notin" }
func (f *NotInFunc) MinArity() int { return 2 }
func (f *NotInFunc) MaxArity() int { return 2 }
func (f *NotInFunc) EvaluateVector(args []Value, n int) (Value, error) {
	return membership(args, n, true)
}

// missing evaluates isna/notna element-wise
func missing(args []Value, want bool) (Value, error) {
	if len(args) != 1 {
		return Value{}, fmt.Errorf("expected 1 argument, got %d", len(args))
	}
	if !args[0].IsVector() {
		return NewScalar(IsNA(args[0].Scalar()) == want), nil
	}
	vals := args[0].Vector()
	out := make([]interface{}, len(vals))
	for i, v := range vals {
		out[i] = IsNA(v) == want
	}
	return NewVector(out), nil
}

// IsNAFunc returns isna(x)
type IsNAFunc struct{}

func (f *IsNAFunc) Name() string  { return "isna" }
func (f *IsNAFunc) MinArity() int { return 1 }
func (f *IsNAFunc) MaxArity() int { return 1 }
func (f *IsNAFunc) EvaluateVector(args []Value, n int) (Value, error) {
	return missing(args, true)
}

// NotNAFunc returns notna(x)
type NotNAFunc struct{}

func (f *NotNAFunc) Name() string  { return "notna" }
func (f *NotNAFunc) MinArity() int { return 1 }
func (f *NotNAFunc) MaxArity() int { return 1 }
func (f *NotNAFunc) EvaluateVector(args []Value, n int) (Value, error) {
	return missing(args, false)
}
