package expr

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// castValue converts value to the named type: string, int, float
// (or number), bool, or date.
func castValue(value interface{}, typeName string) (interface{}, error) {
	switch strings.ToLower(typeName) {
	case "string", "str", "character":
		return valueToString(value)
	case "float", "double", "number", "numeric":
		return valueToNumber(value)
	case "int", "integer":
		if i, ok := toInt64(value); ok {
			return i, nil
		}
		f, err := valueToNumber(value)
		if err != nil {
			return nil, err
		}
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return nil, fmt.Errorf("cannot convert %v to int", f)
		}
		return int64(f), nil
	case "bool", "boolean", "logical":
		switch v := value.(type) {
		case bool:
			return v, nil
		case string:
			return strconv.ParseBool(v)
		}
		f, err := valueToNumber(value)
		if err != nil {
			return nil, err
		}
		return f != 0, nil
	case "date":
		date, err := parseDate(value)
		if err != nil {
			return nil, err
		}
		return date.Format("2006-01-02"), nil
	default:
		return nil, fmt.Errorf("unknown type: %s", typeName)
	}
}

// CastFunc converts a value to a specific type
type CastFunc struct{}

func (f *CastFunc) Name() string  { return "cast" }
func (f *CastFunc) MinArity() int { return 2 }
func (f *CastFunc) MaxArity() int { return 2 }
func (f *CastFunc) Evaluate(args []interface{}) (interface{}, error) {
	typeName, err := valueToString(args[1])
	if err != nil {
		return nil, fmt.Errorf("cast: type: %w", err)
	}
	v, err := castValue(args[0], typeName)
	if err != nil {
		return nil, fmt.Errorf("cast: %w", err)
	}
	return v, nil
}

// TryCastFunc converts a value to a specific type, returning NA on error
type TryCastFunc struct{}

func (f *TryCastFunc) Name() string  { return "try_cast" }
func (f *TryCastFunc) MinArity() int { return 2 }
func (f *TryCastFunc) MaxArity() int { return 2 }
func (f *TryCastFunc) Evaluate(args []interface{}) (interface{}, error) {
	typeName, err := valueToString(args[1])
	if err != nil {
		return nil, nil
	}
	v, err := castValue(args[0], typeName)
	if err != nil {
		return nil, nil
	}
	return v, nil
}

// ToStringFunc converts a value to a string
type ToStringFunc struct{}

func (f *ToStringFunc) Name() string  { return "to_string" }
func (f *ToStringFunc) MinArity() int { return 1 }
func (f *ToStringFunc) MaxArity() int { return 1 }
func (f *ToStringFunc) Evaluate(args []interface{}) (interface{}, error) {
	return valueToString(args[0])
}

// ToNumberFunc converts a value to a float
type ToNumberFunc struct{}

func (f *ToNumberFunc) Name() string  { return "to_number" }
func (f *ToNumberFunc) MinArity() int { return 1 }
func (f *ToNumberFunc) MaxArity() int { return 1 }
func (f *ToNumberFunc) Evaluate(args []interface{}) (interface{}, error) {
	n, err := valueToNumber(args[0])
	if err != nil {
		return nil, fmt.Errorf("to_number: %w", err)
	}
	return n, nil
}

// ToDateFunc normalizes a date to YYYY-MM-DD
type ToDateFunc struct{}

func (f *ToDateFunc) Name() string  { return "to_date" }
func (f *ToDateFunc) MinArity() int { return 1 }
func (f *ToDateFunc) MaxArity() int { return 1 }
func (f *ToDateFunc) Evaluate(args []interface{}) (interface{}, error) {
	date, err := parseDate(args[0])
	if err != nil {
		return nil, fmt.Errorf("to_date: %w", err)
	}
	return date.Format("2006-01-02"), nil
}
