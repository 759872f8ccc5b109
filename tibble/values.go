package tibble

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/go-gota/gota/series"

	"github.com/vegasq/tibble/expr"
)

// normalize converts a value to one of the element types a series can
// hold: int, float64, string, bool or nil.
func normalize(v interface{}) interface{} {
	switch val := v.(type) {
	case nil:
		return nil
	case int:
		return val
	case int8:
		return int(val)
	case int16:
		return int(val)
	case int32:
		return int(val)
	case int64:
		return int(val)
	case uint:
		return int(val)
	case uint8:
		return int(val)
	case uint16:
		return int(val)
	case uint32:
		return int(val)
	case uint64:
		return int(val)
	case float32:
		if math.IsNaN(float64(val)) {
			return nil
		}
		return float64(val)
	case float64:
		if math.IsNaN(val) {
			return nil
		}
		return val
	case string, bool:
		return val
	case time.Time:
		return val.Format(time.RFC3339)
	case []byte:
		return string(val)
	case fmt.Stringer:
		return val.String()
	}
	return fmt.Sprint(v)
}

// inferType picks the series type able to hold every value. Strings win
// over everything, floats over ints, and bools mixed with numbers become
// floats. hint is used when every value is NA.
func inferType(vals []interface{}, hint series.Type) series.Type {
	var sawInt, sawFloat, sawString, sawBool bool
	for _, v := range vals {
		switch v.(type) {
		case int:
			sawInt = true
		case float64:
			sawFloat = true
		case string:
			sawString = true
		case bool:
			sawBool = true
		}
	}

	switch {
	case sawString:
		return series.String
	case sawBool && (sawInt || sawFloat):
		return series.Float
	case sawBool:
		return series.Bool
	case sawFloat:
		return series.Float
	case sawInt:
		return series.Int
	case hint != "":
		return hint
	}
	return series.Float
}

// newSeries builds a series from arbitrary values, normalizing element
// types first
func newSeries(name string, vals []interface{}, hint series.Type) series.Series {
	norm := make([]interface{}, len(vals))
	for i, v := range vals {
		norm[i] = normalize(v)
	}
	return series.New(norm, inferType(norm, hint), name)
}

// seriesValues returns the elements of s, nil for NA
func seriesValues(s series.Series) []interface{} {
	out := make([]interface{}, s.Len())
	for i := range out {
		out[i] = elemValue(s, i)
	}
	return out
}

func elemValue(s series.Series, i int) interface{} {
	e := s.Elem(i)
	if e.IsNA() {
		return nil
	}
	return e.Val()
}

// takeSeries gathers the elements at idx into a new series of the same
// type; a negative index yields NA
func takeSeries(s series.Series, idx []int) series.Series {
	vals := make([]interface{}, len(idx))
	for k, i := range idx {
		if i >= 0 {
			vals[k] = elemValue(s, i)
		}
	}
	return series.New(vals, s.Type(), s.Name)
}

// toValues converts a computation result into exactly n values. Scalars
// are broadcast; slices and series must have length n.
func toValues(result interface{}, n int) ([]interface{}, error) {
	var vals []interface{}
	switch r := result.(type) {
	case series.Series:
		vals = seriesValues(r)
	case []interface{}:
		vals = r
	case []int:
		vals = make([]interface{}, len(r))
		for i, v := range r {
			vals[i] = v
		}
	case []int64:
		vals = make([]interface{}, len(r))
		for i, v := range r {
			vals[i] = v
		}
	case []float64:
		vals = make([]interface{}, len(r))
		for i, v := range r {
			vals[i] = v
		}
	case []string:
		vals = make([]interface{}, len(r))
		for i, v := range r {
			vals[i] = v
		}
	case []bool:
		vals = make([]interface{}, len(r))
		for i, v := range r {
			vals[i] = v
		}
	default:
		out := make([]interface{}, n)
		for i := range out {
			out[i] = result
		}
		return out, nil
	}

	if len(vals) != n {
		return nil, fmt.Errorf("%w: got %d values, want %d", ErrInvalidValue, len(vals), n)
	}
	return vals, nil
}

// compositeKey joins the keys of several values into one map key
func compositeKey(vals []interface{}) string {
	if len(vals) == 1 {
		return expr.Key(vals[0])
	}
	var b strings.Builder
	for i, v := range vals {
		if i > 0 {
			b.WriteByte('\x1f')
		}
		b.WriteString(expr.Key(v))
	}
	return b.String()
}
