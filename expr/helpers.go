package expr

import (
	"fmt"
	"math"
	"strconv"
)

// Key returns a hashable identity for a value. Numbers compare by value
// regardless of width, so int 1 and float 1.0 share a key, and integers
// keep full precision. NA values share one key.
func Key(v interface{}) string {
	if IsNA(v) {
		return "\x00na"
	}
	switch val := v.(type) {
	case int:
		return "n:" + strconv.FormatInt(int64(val), 10)
	case int8:
		return "n:" + strconv.FormatInt(int64(val), 10)
	case int16:
		return "n:" + strconv.FormatInt(int64(val), 10)
	case int32:
		return "n:" + strconv.FormatInt(int64(val), 10)
	case int64:
		return "n:" + strconv.FormatInt(val, 10)
	case uint:
		return "n:" + strconv.FormatUint(uint64(val), 10)
	case uint8:
		return "n:" + strconv.FormatUint(uint64(val), 10)
	case uint16:
		return "n:" + strconv.FormatUint(uint64(val), 10)
	case uint32:
		return "n:" + strconv.FormatUint(uint64(val), 10)
	case uint64:
		return "n:" + strconv.FormatUint(val, 10)
	}
	if f, ok := toFloat64(v); ok {
		// integral floats key like the integer they equal
		if f == math.Trunc(f) && f >= math.MinInt64 && f < math.MaxInt64 {
			return "n:" + strconv.FormatInt(int64(f), 10)
		}
		return "n:" + strconv.FormatFloat(f, 'g', -1, 64)
	}
	switch val := v.(type) {
	case string:
		return "s:" + val
	case bool:
		if val {
			return "b:1"
		}
		return "b:0"
	}
	return fmt.Sprintf("%T:%v", v, v)
}

// IsIn reports, for each value, whether it occurs in set. NA is never a
// member.
func IsIn(values, set []interface{}) []bool {
	members := make(map[string]struct{}, len(set))
	for _, s := range set {
		if !IsNA(s) {
			members[Key(s)] = struct{}{}
		}
	}
	out := make([]bool, len(values))
	for i, v := range values {
		if IsNA(v) {
			continue
		}
		_, out[i] = members[Key(v)]
	}
	return out
}

// NotIn is the complement of IsIn
func NotIn(values, set []interface{}) []bool {
	out := IsIn(values, set)
	for i := range out {
		out[i] = !out[i]
	}
	return out
}

// NotNA reports whether a value is present
func NotNA(v interface{}) bool {
	return !IsNA(v)
}

// Nth returns values[k], counting from the end for negative k, or def
// when k is out of range
func Nth(values []interface{}, k int, def interface{}) interface{} {
	idx := k
	if k < 0 {
		idx = len(values) + k
	}
	if idx >= 0 && idx < len(values) {
		return values[idx]
	}
	return def
}

// First returns the first value or def
func First(values []interface{}, def interface{}) interface{} {
	return Nth(values, 0, def)
}

// Last returns the last value or def
func Last(values []interface{}, def interface{}) interface{} {
	return Nth(values, -1, def)
}

// WindowDefault infers the fill value for lead and lag from the element
// types: NaN for floats, "" for strings, false for bools and 0 otherwise.
func WindowDefault(values []interface{}) interface{} {
	var sawString, sawBool, sawInt bool
	for _, v := range values {
		switch v.(type) {
		case float64, float32:
			return math.NaN()
		case string:
			sawString = true
		case bool:
			sawBool = true
		case nil:
		default:
			sawInt = true
		}
	}
	switch {
	case sawString && !sawBool && !sawInt:
		return ""
	case sawBool && !sawString && !sawInt:
		return false
	}
	return int64(0)
}

// Lead shifts values k positions toward the start (k > 0) or the end
// (k < 0), filling vacated positions with def
func Lead(values []interface{}, k int, def interface{}) []interface{} {
	n := len(values)
	out := make([]interface{}, n)
	for i := range out {
		src := i + k
		if src >= 0 && src < n {
			out[i] = values[src]
		} else {
			out[i] = def
		}
	}
	return out
}

// Lag shifts values k positions toward the end
func Lag(values []interface{}, k int, def interface{}) []interface{} {
	return Lead(values, -k, def)
}
