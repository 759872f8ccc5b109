package expr

import (
	"fmt"
	"math"
	"sort"
)

// present returns the non-NA values
func present(vals []interface{}) []interface{} {
	out := make([]interface{}, 0, len(vals))
	for _, v := range vals {
		if !IsNA(v) {
			out = append(out, v)
		}
	}
	return out
}

// numbers returns the non-NA values as float64, failing on non-numeric input
func numbers(vals []interface{}) ([]float64, error) {
	out := make([]float64, 0, len(vals))
	for _, v := range vals {
		if IsNA(v) {
			continue
		}
		f, ok := ToFloat64(v)
		if !ok {
			return nil, fmt.Errorf("cannot aggregate %T", v)
		}
		out = append(out, f)
	}
	return out, nil
}

// SumFunc sums non-NA values; integer input gives an integer sum
type SumFunc struct{}

func (f *SumFunc) Name() string  { return "sum" }
func (f *SumFunc) MinArity() int { return 1 }
func (f *SumFunc) MaxArity() int { return 1 }
func (f *SumFunc) EvaluateVector(args []Value, n int) (Value, error) {
	vals := present(args[0].Values())
	allInt := true
	var isum int64
	for _, v := range vals {
		i, ok := toInt64(v)
		if !ok {
			allInt = false
			break
		}
		isum += i
	}
	if allInt {
		return NewScalar(isum), nil
	}

	nums, err := numbers(vals)
	if err != nil {
		return Value{}, err
	}
	var sum float64
	for _, x := range nums {
		sum += x
	}
	return NewScalar(sum), nil
}

// MeanFunc averages non-NA values
type MeanFunc struct{}

func (f *MeanFunc) Name() string  { return "mean" }
func (f *MeanFunc) MinArity() int { return 1 }
func (f *MeanFunc) MaxArity() int { return 1 }
func (f *MeanFunc) EvaluateVector(args []Value, n int) (Value, error) {
	nums, err := numbers(args[0].Values())
	if err != nil {
		return Value{}, err
	}
	if len(nums) == 0 {
		return NewScalar(nil), nil
	}
	var sum float64
	for _, x := range nums {
		sum += x
	}
	return NewScalar(sum / float64(len(nums))), nil
}

// quantileOf computes the q-th quantile with linear interpolation between
// closest ranks
func quantileOf(nums []float64, q float64) interface{} {
	if len(nums) == 0 {
		return nil
	}
	sorted := append([]float64(nil), nums...)
	sort.Float64s(sorted)

	pos := q * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo]
	}
	frac := pos - float64(lo)
	return sorted[lo] + (sorted[hi]-sorted[lo])*frac
}

// MedianFunc returns the median of non-NA values
type MedianFunc struct{}

func (f *MedianFunc) Name() string  { return "median" }
func (f *MedianFunc) MinArity() int { return 1 }
func (f *MedianFunc) MaxArity() int { return 1 }
func (f *MedianFunc) EvaluateVector(args []Value, n int) (Value, error) {
	nums, err := numbers(args[0].Values())
	if err != nil {
		return Value{}, err
	}
	return NewScalar(quantileOf(nums, 0.5)), nil
}

// QuantileFunc returns quantile(x, q) for q in [0, 1]
type QuantileFunc struct{}

func (f *QuantileFunc) Name() string  { return "quantile" }
func (f *QuantileFunc) MinArity() int { return 2 }
func (f *QuantileFunc) MaxArity() int { return 2 }
func (f *QuantileFunc) EvaluateVector(args []Value, n int) (Value, error) {
	if args[1].IsVector() {
		return Value{}, fmt.Errorf("q must be a scalar")
	}
	q, ok := toFloat64(args[1].Scalar())
	if !ok || q < 0 || q > 1 {
		return Value{}, fmt.Errorf("q must be a number between 0 and 1, got %v", args[1].Scalar())
	}
	nums, err := numbers(args[0].Values())
	if err != nil {
		return Value{}, err
	}
	return NewScalar(quantileOf(nums, q)), nil
}

// extreme returns the smallest (sign -1) or largest (sign 1) non-NA value,
// keeping its type
func extreme(vals []interface{}, sign int) interface{} {
	var best interface{}
	for _, v := range present(vals) {
		if best == nil || CompareValues(v, best)*sign > 0 {
			best = v
		}
	}
	return best
}

// MinFunc returns the smallest non-NA value
type MinFunc struct{}

func (f *MinFunc) Name() string  { return "min" }
func (f *MinFunc) MinArity() int { return 1 }
func (f *MinFunc) MaxArity() int { return 1 }
func (f *MinFunc) EvaluateVector(args []Value, n int) (Value, error) {
	return NewScalar(extreme(args[0].Values(), -1)), nil
}

// MaxFunc returns the largest non-NA value
type MaxFunc struct{}

func (f *MaxFunc) Name() string  { return "max" }
func (f *MaxFunc) MinArity() int { return 1 }
func (f *MaxFunc) MaxArity() int { return 1 }
func (f *MaxFunc) EvaluateVector(args []Value, n int) (Value, error) {
	return NewScalar(extreme(args[0].Values(), 1)), nil
}

// variance returns the sample variance (n-1 denominator)
func variance(nums []float64) (float64, bool) {
	if len(nums) < 2 {
		return 0, false
	}
	var mean float64
	for _, x := range nums {
		mean += x
	}
	mean /= float64(len(nums))

	var ss float64
	for _, x := range nums {
		d := x - mean
		ss += d * d
	}
	return ss / float64(len(nums)-1), true
}

// VarFunc returns the sample variance of non-NA values
type VarFunc struct{}

func (f *VarFunc) Name() string  { return "var" }
func (f *VarFunc) MinArity() int { return 1 }
func (f *VarFunc) MaxArity() int { return 1 }
func (f *VarFunc) EvaluateVector(args []Value, n int) (Value, error) {
	nums, err := numbers(args[0].Values())
	if err != nil {
		return Value{}, err
	}
	v, ok := variance(nums)
	if !ok {
		return NewScalar(nil), nil
	}
	return NewScalar(v), nil
}

// SdFunc returns the sample standard deviation of non-NA values
type SdFunc struct{}

func (f *SdFunc) Name() string  { return "sd" }
func (f *SdFunc) MinArity() int { return 1 }
func (f *SdFunc) MaxArity() int { return 1 }
func (f *SdFunc) EvaluateVector(args []Value, n int) (Value, error) {
	nums, err := numbers(args[0].Values())
	if err != nil {
		return Value{}, err
	}
	v, ok := variance(nums)
	if !ok {
		return NewScalar(nil), nil
	}
	return NewScalar(math.Sqrt(v)), nil
}

// NFunc returns the number of rows in the current group
type NFunc struct{}

func (f *NFunc) Name() string  { return "n" }
func (f *NFunc) MinArity() int { return 0 }
func (f *NFunc) MaxArity() int { return 0 }
func (f *NFunc) EvaluateVector(args []Value, n int) (Value, error) {
	return NewScalar(int64(n)), nil
}

// CountFunc returns the number of non-NA values
type CountFunc struct{}

func (f *CountFunc) Name() string  { return "count" }
func (f *CountFunc) MinArity() int { return 1 }
func (f *CountFunc) MaxArity() int { return 1 }
func (f *CountFunc) EvaluateVector(args []Value, n int) (Value, error) {
	return NewScalar(int64(len(present(args[0].Values())))), nil
}

// NDistinctFunc returns the number of distinct non-NA values
type NDistinctFunc struct{}

func (f *NDistinctFunc) Name() string  { return "n_distinct" }
func (f *NDistinctFunc) MinArity() int { return 1 }
func (f *NDistinctFunc) MaxArity() int { return 1 }
func (f *NDistinctFunc) EvaluateVector(args []Value, n int) (Value, error) {
	seen := make(map[string]struct{})
	for _, v := range present(args[0].Values()) {
		seen[Key(v)] = struct{}{}
	}
	return NewScalar(int64(len(seen))), nil
}

// scalarArg returns an optional scalar argument or def
func scalarArg(args []Value, i int, def interface{}) (interface{}, error) {
	if len(args) <= i {
		return def, nil
	}
	if args[i].IsVector() {
		return nil, fmt.Errorf("argument %d must be a scalar", i+1)
	}
	return args[i].Scalar(), nil
}

func intArg(args []Value, i int, def int) (int, error) {
	v, err := scalarArg(args, i, int64(def))
	if err != nil {
		return 0, err
	}
	k, ok := toInt64(v)
	if !ok {
		return 0, fmt.Errorf("argument %d must be an integer, got %v", i+1, v)
	}
	return int(k), nil
}

// NthFunc returns nth(x, k[, default]); negative k counts from the end
type NthFunc struct{}

func (f *NthFunc) Name() string  { return "nth" }
func (f *NthFunc) MinArity() int { return 2 }
func (f *NthFunc) MaxArity() int { return 3 }
func (f *NthFunc) EvaluateVector(args []Value, n int) (Value, error) {
	k, err := intArg(args, 1, 0)
	if err != nil {
		return Value{}, err
	}
	def, err := scalarArg(args, 2, nil)
	if err != nil {
		return Value{}, err
	}
	return NewScalar(Nth(args[0].Values(), k, def)), nil
}

// FirstFunc returns first(x[, default])
type FirstFunc struct{}

func (f *FirstFunc) Name() string  { return "first" }
func (f *FirstFunc) MinArity() int { return 1 }
func (f *FirstFunc) MaxArity() int { return 2 }
func (f *FirstFunc) EvaluateVector(args []Value, n int) (Value, error) {
	def, err := scalarArg(args, 1, nil)
	if err != nil {
		return Value{}, err
	}
	return NewScalar(First(args[0].Values(), def)), nil
}

// LastFunc returns last(x[, default])
type LastFunc struct{}

func (f *LastFunc) Name() string  { return "last" }
func (f *LastFunc) MinArity() int { return 1 }
func (f *LastFunc) MaxArity() int { return 2 }
func (f *LastFunc) EvaluateVector(args []Value, n int) (Value, error) {
	def, err := scalarArg(args, 1, nil)
	if err != nil {
		return Value{}, err
	}
	return NewScalar(Last(args[0].Values(), def)), nil
}
