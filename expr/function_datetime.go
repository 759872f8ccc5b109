package expr

import (
	"fmt"
	"strings"
	"time"
)

var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006/01/02",
}

// parseDate parses the date layouts accepted by the date functions
func parseDate(v interface{}) (time.Time, error) {
	if t, ok := v.(time.Time); ok {
		return t, nil
	}
	str, err := valueToString(v)
	if err != nil {
		return time.Time{}, err
	}

	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, str); err == nil {
			return t, nil
		}
	}

	return time.Time{}, fmt.Errorf("cannot parse date: %s", str)
}

// datePart extracts one integer component from a date
type datePart struct {
	name string
	part func(time.Time) int
}

func (f *datePart) Name() string  { return f.name }
func (f *datePart) MinArity() int { return 1 }
func (f *datePart) MaxArity() int { return 1 }
func (f *datePart) Evaluate(args []interface{}) (interface{}, error) {
	date, err := parseDate(args[0])
	if err != nil {
		return nil, fmt.Errorf("%s: %w", f.name, err)
	}
	return int64(f.part(date)), nil
}

// dateParts are year, month and day
func dateParts() []Function {
	return []Function{
		&datePart{name: "year", part: time.Time.Year},
		&datePart{name: "month", part: func(t time.Time) int { return int(t.Month()) }},
		&datePart{name: "day", part: time.Time.Day},
	}
}

// DateTruncFunc truncates a date to the start of a year, month, day or hour
type DateTruncFunc struct{}

func (f *DateTruncFunc) Name() string  { return "date_trunc" }
func (f *DateTruncFunc) MinArity() int { return 2 }
func (f *DateTruncFunc) MaxArity() int { return 2 }
func (f *DateTruncFunc) Evaluate(args []interface{}) (interface{}, error) {
	unit, err := valueToString(args[0])
	if err != nil {
		return nil, fmt.Errorf("date_trunc: unit: %w", err)
	}

	date, err := parseDate(args[1])
	if err != nil {
		return nil, fmt.Errorf("date_trunc: %w", err)
	}

	var out time.Time
	switch strings.ToLower(unit) {
	case "year":
		out = time.Date(date.Year(), 1, 1, 0, 0, 0, 0, date.Location())
	case "month":
		out = time.Date(date.Year(), date.Month(), 1, 0, 0, 0, 0, date.Location())
	case "day":
		out = time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, date.Location())
	case "hour":
		out = date.Truncate(time.Hour)
	default:
		return nil, fmt.Errorf("date_trunc: unknown unit: %s", unit)
	}
	return out.Format(time.RFC3339), nil
}

// DateDiffFunc returns the number of whole days between two dates (a - b)
type DateDiffFunc struct{}

func (f *DateDiffFunc) Name() string  { return "date_diff" }
func (f *DateDiffFunc) MinArity() int { return 2 }
func (f *DateDiffFunc) MaxArity() int { return 2 }
func (f *DateDiffFunc) Evaluate(args []interface{}) (interface{}, error) {
	a, err := parseDate(args[0])
	if err != nil {
		return nil, fmt.Errorf("date_diff: %w", err)
	}
	b, err := parseDate(args[1])
	if err != nil {
		return nil, fmt.Errorf("date_diff: %w", err)
	}
	return int64(a.Sub(b).Hours() / 24), nil
}
