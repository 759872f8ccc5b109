package expr

import (
	"fmt"
	"strings"
)

// UpperFunc converts a string to uppercase
type UpperFunc struct{}

func (f *UpperFunc) Name() string  { return "upper" }
func (f *UpperFunc) MinArity() int { return 1 }
func (f *UpperFunc) MaxArity() int { return 1 }
func (f *UpperFunc) Evaluate(args []interface{}) (interface{}, error) {
	str, err := valueToString(args[0])
	if err != nil {
		return nil, fmt.Errorf("upper: %w", err)
	}
	return strings.ToUpper(str), nil
}

// LowerFunc converts a string to lowercase
type LowerFunc struct{}

func (f *LowerFunc) Name() string  { return "lower" }
func (f *LowerFunc) MinArity() int { return 1 }
func (f *LowerFunc) MaxArity() int { return 1 }
func (f *LowerFunc) Evaluate(args []interface{}) (interface{}, error) {
	str, err := valueToString(args[0])
	if err != nil {
		return nil, fmt.Errorf("lower: %w", err)
	}
	return strings.ToLower(str), nil
}

// ConcatFunc concatenates the string forms of its arguments
type ConcatFunc struct{}

func (f *ConcatFunc) Name() string  { return "concat" }
func (f *ConcatFunc) MinArity() int { return 1 }
func (f *ConcatFunc) MaxArity() int { return -1 }
func (f *ConcatFunc) Evaluate(args []interface{}) (interface{}, error) {
	var builder strings.Builder
	for i, arg := range args {
		str, err := valueToString(arg)
		if err != nil {
			return nil, fmt.Errorf("concat: argument %d: %w", i+1, err)
		}
		builder.WriteString(str)
	}
	return builder.String(), nil
}

// LengthFunc returns the number of characters in a string
type LengthFunc struct{}

func (f *LengthFunc) Name() string  { return "length" }
func (f *LengthFunc) MinArity() int { return 1 }
func (f *LengthFunc) MaxArity() int { return 1 }
func (f *LengthFunc) Evaluate(args []interface{}) (interface{}, error) {
	str, err := valueToString(args[0])
	if err != nil {
		return nil, fmt.Errorf("length: %w", err)
	}
	return int64(len([]rune(str))), nil
}

// TrimFunc trims whitespace from both ends of a string
type TrimFunc struct{}

func (f *TrimFunc) Name() string  { return "trim" }
func (f *TrimFunc) MinArity() int { return 1 }
func (f *TrimFunc) MaxArity() int { return 1 }
func (f *TrimFunc) Evaluate(args []interface{}) (interface{}, error) {
	str, err := valueToString(args[0])
	if err != nil {
		return nil, fmt.Errorf("trim: %w", err)
	}
	return strings.TrimSpace(str), nil
}

// LTrimFunc trims leading whitespace
type LTrimFunc struct{}

func (f *LTrimFunc) Name() string  { return "ltrim" }
func (f *LTrimFunc) MinArity() int { return 1 }
func (f *LTrimFunc) MaxArity() int { return 1 }
func (f *LTrimFunc) Evaluate(args []interface{}) (interface{}, error) {
	str, err := valueToString(args[0])
	if err != nil {
		return nil, fmt.Errorf("ltrim: %w", err)
	}
	return strings.TrimLeft(str, " \t\n\r"), nil
}

// RTrimFunc trims trailing whitespace
type RTrimFunc struct{}

func (f *RTrimFunc) Name() string  { return "rtrim" }
func (f *RTrimFunc) MinArity() int { return 1 }
func (f *RTrimFunc) MaxArity() int { return 1 }
func (f *RTrimFunc) Evaluate(args []interface{}) (interface{}, error) {
	str, err := valueToString(args[0])
	if err != nil {
		return nil, fmt.Errorf("rtrim: %w", err)
	}
	return strings.TrimRight(str, " \t\n\r"), nil
}

// SubstringFunc extracts a substring by 1-based rune position and optional length
type SubstringFunc struct{}

func (f *SubstringFunc) Name() string  { return "substring" }
func (f *SubstringFunc) MinArity() int { return 2 }
func (f *SubstringFunc) MaxArity() int { return 3 }
func (f *SubstringFunc) Evaluate(args []interface{}) (interface{}, error) {
	str, err := valueToString(args[0])
	if err != nil {
		return nil, fmt.Errorf("substring: %w", err)
	}
	start, err := valueToNumber(args[1])
	if err != nil {
		return nil, fmt.Errorf("substring: start: %w", err)
	}

	runes := []rune(str)
	from := max(int(start)-1, 0)
	if from >= len(runes) {
		return "", nil
	}

	to := len(runes)
	if len(args) == 3 {
		length, err := valueToNumber(args[2])
		if err != nil {
			return nil, fmt.Errorf("substring: length: %w", err)
		}
		if length < 0 {
			return "", nil
		}
		to = min(from+int(length), len(runes))
	}
	return string(runes[from:to]), nil
}

// ReplaceFunc replaces every occurrence of a substring
type ReplaceFunc struct{}

func (f *ReplaceFunc) Name() string  { return "replace" }
func (f *ReplaceFunc) MinArity() int { return 3 }
func (f *ReplaceFunc) MaxArity() int { return 3 }
func (f *ReplaceFunc) Evaluate(args []interface{}) (interface{}, error) {
	parts := make([]string, 3)
	for i, arg := range args {
		s, err := valueToString(arg)
		if err != nil {
			return nil, fmt.Errorf("replace: argument %d: %w", i+1, err)
		}
		parts[i] = s
	}
	return strings.ReplaceAll(parts[0], parts[1], parts[2]), nil
}

// ReverseFunc reverses a string
type ReverseFunc struct{}

func (f *ReverseFunc) Name() string  { return "reverse" }
func (f *ReverseFunc) MinArity() int { return 1 }
func (f *ReverseFunc) MaxArity() int { return 1 }
func (f *ReverseFunc) Evaluate(args []interface{}) (interface{}, error) {
	str, err := valueToString(args[0])
	if err != nil {
		return nil, fmt.Errorf("reverse: %w", err)
	}
	runes := []rune(str)
	for i, j := 0, len(runes)-1; i < j; i, j = i+1, j-1 {
		runes[i], runes[j] = runes[j], runes[i]
	}
	return string(runes), nil
}

// stringPredicate adapts a two-string test into a Function
type stringPredicate struct {
	name string
	test func(s, arg string) bool
}

func (f *stringPredicate) Name() string  { return f.name }
func (f *stringPredicate) MinArity() int { return 2 }
func (f *stringPredicate) MaxArity() int { return 2 }
func (f *stringPredicate) Evaluate(args []interface{}) (interface{}, error) {
	str, err := valueToString(args[0])
	if err != nil {
		return nil, fmt.Errorf("%s: %w", f.name, err)
	}
	arg, err := valueToString(args[1])
	if err != nil {
		return nil, fmt.Errorf("%s: %w", f.name, err)
	}
	return f.test(str, arg), nil
}

// ContainsFunc checks if a string contains a substring
type ContainsFunc struct{}

func (f *ContainsFunc) Name() string  { return "contains" }
func (f *ContainsFunc) MinArity() int { return 2 }
func (f *ContainsFunc) MaxArity() int { return 2 }
func (f *ContainsFunc) Evaluate(args []interface{}) (interface{}, error) {
	return (&stringPredicate{name: "contains", test: strings.Contains}).Evaluate(args)
}

// StartsWithFunc checks if a string starts with a prefix
type StartsWithFunc struct{}

func (f *StartsWithFunc) Name() string  { return "starts_with" }
func (f *StartsWithFunc) MinArity() int { return 2 }
func (f *StartsWithFunc) MaxArity() int { return 2 }
func (f *StartsWithFunc) Evaluate(args []interface{}) (interface{}, error) {
	return (&stringPredicate{name: "starts_with", test: strings.HasPrefix}).Evaluate(args)
}

// EndsWithFunc checks if a string ends with a suffix
type EndsWithFunc struct{}

func (f *EndsWithFunc) Name() string  { return "ends_with" }
func (f *EndsWithFunc) MinArity() int { return 2 }
func (f *EndsWithFunc) MaxArity() int { return 2 }
func (f *EndsWithFunc) Evaluate(args []interface{}) (interface{}, error) {
	return (&stringPredicate{name: "ends_with", test: strings.HasSuffix}).Evaluate(args)
}

// RepeatFunc repeats a string n times
type RepeatFunc struct{}

func (f *RepeatFunc) Name() string  { return "repeat" }
func (f *RepeatFunc) MinArity() int { return 2 }
func (f *RepeatFunc) MaxArity() int { return 2 }
func (f *RepeatFunc) Evaluate(args []interface{}) (interface{}, error) {
	str, err := valueToString(args[0])
	if err != nil {
		return nil, fmt.Errorf("repeat: %w", err)
	}
	count, err := valueToNumber(args[1])
	if err != nil {
		return nil, fmt.Errorf("repeat: count: %w", err)
	}
	n := int(count)
	if n < 0 {
		return nil, fmt.Errorf("repeat: count must be non-negative, got %d", n)
	}

	const maxTotalBytes = 10 * 1024 * 1024
	if len(str) > 0 && n > maxTotalBytes/len(str) {
		return nil, fmt.Errorf("repeat: result would be too large")
	}
	return strings.Repeat(str, n), nil
}
