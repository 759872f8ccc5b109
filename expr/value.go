package expr

import (
	"fmt"
	"math"
	"strconv"
)

// Value is the result of evaluating a node: either a scalar that
// broadcasts against any frame length, or a vector with one element per
// row.
type Value struct {
	scalar   interface{}
	vector   []interface{}
	isVector bool
}

// NewScalar wraps a single value
func NewScalar(v interface{}) Value {
	return Value{scalar: v}
}

// NewVector wraps a slice of values
func NewVector(vs []interface{}) Value {
	if vs == nil {
		vs = []interface{}{}
	}
	return Value{vector: vs, isVector: true}
}

// IsVector reports whether v holds one value per row
func (v Value) IsVector() bool { return v.isVector }

// Len returns the vector length, or 1 for scalars
func (v Value) Len() int {
	if v.isVector {
		return len(v.vector)
	}
	return 1
}

// At returns element i; scalars return the same value for every i
func (v Value) At(i int) interface{} {
	if v.isVector {
		return v.vector[i]
	}
	return v.scalar
}

// Scalar returns the scalar value, or nil for vectors
func (v Value) Scalar() interface{} { return v.scalar }

// Vector returns the vector elements, or nil for scalars
func (v Value) Vector() []interface{} { return v.vector }

// Values returns the elements of v as a slice; a scalar becomes a
// one-element slice
func (v Value) Values() []interface{} {
	if v.isVector {
		return v.vector
	}
	return []interface{}{v.scalar}
}

// Materialize expands v to exactly n elements
func (v Value) Materialize(n int) ([]interface{}, error) {
	if !v.isVector {
		out := make([]interface{}, n)
		for i := range out {
			out[i] = v.scalar
		}
		return out, nil
	}
	if len(v.vector) != n {
		return nil, fmt.Errorf("length mismatch: got %d values, want %d", len(v.vector), n)
	}
	return v.vector, nil
}

// IsNA reports whether a single value is missing. nil and float NaN are
// both treated as missing.
func IsNA(v interface{}) bool {
	switch val := v.(type) {
	case nil:
		return true
	case float64:
		return math.IsNaN(val)
	case float32:
		return math.IsNaN(float64(val))
	}
	return false
}

// toFloat64 converts numeric types to float64
func toFloat64(v interface{}) (float64, bool) {
	switch val := v.(type) {
	case float64:
		return val, true
	case float32:
		return float64(val), true
	case int:
		return float64(val), true
	case int8:
		return float64(val), true
	case int16:
		return float64(val), true
	case int32:
		return float64(val), true
	case int64:
		return float64(val), true
	case uint:
		return float64(val), true
	case uint8:
		return float64(val), true
	case uint16:
		return float64(val), true
	case uint32:
		return float64(val), true
	case uint64:
		return float64(val), true
	default:
		return 0, false
	}
}

// toInt64 converts integer types to int64
func toInt64(v interface{}) (int64, bool) {
	switch val := v.(type) {
	case int:
		return int64(val), true
	case int8:
		return int64(val), true
	case int16:
		return int64(val), true
	case int32:
		return int64(val), true
	case int64:
		return val, true
	case uint:
		return int64(val), true
	case uint8:
		return int64(val), true
	case uint16:
		return int64(val), true
	case uint32:
		return int64(val), true
	case uint64:
		return int64(val), true
	default:
		return 0, false
	}
}

func toString(v interface{}) (string, bool) {
	s, ok := v.(string)
	return s, ok
}

func toBool(v interface{}) (bool, bool) {
	b, ok := v.(bool)
	return b, ok
}

// truthy converts a predicate element to bool; NA is false
func truthy(v interface{}) (bool, error) {
	switch val := v.(type) {
	case nil:
		return false, nil
	case bool:
		return val, nil
	}
	if f, ok := toFloat64(v); ok {
		return f != 0 && !math.IsNaN(f), nil
	}
	return false, fmt.Errorf("cannot use %T as boolean", v)
}

// valueToString converts a value to string
func valueToString(v interface{}) (string, error) {
	switch val := v.(type) {
	case string:
		return val, nil
	case int, int8, int16, int32, int64:
		return fmt.Sprintf("%d", val), nil
	case uint, uint8, uint16, uint32, uint64:
		return fmt.Sprintf("%d", val), nil
	case float32, float64:
		return fmt.Sprintf("%v", val), nil
	case bool:
		return fmt.Sprintf("%t", val), nil
	default:
		return "", fmt.Errorf("cannot convert %T to string", v)
	}
}

// valueToNumber converts a value to float64, parsing strings
func valueToNumber(v interface{}) (float64, error) {
	if f, ok := toFloat64(v); ok {
		return f, nil
	}
	switch val := v.(type) {
	case string:
		return strconv.ParseFloat(val, 64)
	case bool:
		if val {
			return 1, nil
		}
		return 0, nil
	default:
		return 0, fmt.Errorf("cannot convert %T to number", v)
	}
}

// ToFloat64 converts numeric and boolean values to float64. NA yields NaN.
func ToFloat64(v interface{}) (float64, bool) {
	if v == nil {
		return math.NaN(), true
	}
	if b, ok := v.(bool); ok {
		if b {
			return 1, true
		}
		return 0, true
	}
	return toFloat64(v)
}
