package output

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/vegasq/tibble/internal/codec"
	"github.com/vegasq/tibble/tibble"
)

// Formatter defines the interface for output formatters.
//
// Implementers must provide Format to write a tibble in the target format
// and SetOutput to change the output destination.
type Formatter interface {
	// Format writes t in the formatter's specific format
	Format(t *tibble.Tibble) error

	// SetOutput changes the output writer
	SetOutput(w io.Writer)
}

// Formats lists the names NewFormatter accepts
var Formats = []string{"table", "csv", "jsonl", "parquet"}

// NewFormatter returns the formatter registered under name
func NewFormatter(name string, w io.Writer) (Formatter, error) {
	switch strings.ToLower(name) {
	case "table":
		return NewTableFormatter(w), nil
	case "csv":
		return NewCSVFormatter(w), nil
	case "jsonl", "json", "ndjson":
		return NewJSONFormatter(w), nil
	case "parquet":
		return NewParquetFormatter(w), nil
	}
	return nil, fmt.Errorf("unknown output format %q (want one of %s)", name, strings.Join(Formats, ", "))
}

// FormatForPath picks the output format from a file extension, ignoring a
// trailing compression extension
func FormatForPath(path string) (string, error) {
	_, inner := codec.Detect(path)
	switch strings.ToLower(filepath.Ext(inner)) {
	case ".csv":
		return "csv", nil
	case ".jsonl", ".ndjson":
		return "jsonl", nil
	case ".parquet", ".pq":
		return "parquet", nil
	case ".txt":
		return "table", nil
	}
	return "", fmt.Errorf("cannot infer output format from %s", path)
}

// WriteFile writes t to path in the format named by its extension,
// compressing when the path ends in a compression extension
func WriteFile(path string, t *tibble.Tibble) (err error) {
	name, err := FormatForPath(path)
	if err != nil {
		return err
	}
	w, _, err := codec.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := w.Close(); err == nil && cerr != nil {
			err = fmt.Errorf("failed to close %s: %w", path, cerr)
		}
	}()

	formatter, err := NewFormatter(name, w)
	if err != nil {
		return err
	}
	return formatter.Format(t)
}

// formatValue converts a value to its text form; NA is empty
func formatValue(v interface{}) string {
	if v == nil {
		return ""
	}

	switch val := v.(type) {
	case string:
		return val
	case int, int8, int16, int32, int64:
		return fmt.Sprintf("%d", val)
	case uint, uint8, uint16, uint32, uint64:
		return fmt.Sprintf("%d", val)
	case float32, float64:
		return fmt.Sprintf("%g", val)
	case bool:
		return fmt.Sprintf("%t", val)
	default:
		return fmt.Sprintf("%v", val)
	}
}
