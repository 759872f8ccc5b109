package output

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/vegasq/tibble/tibble"
)

// CSVFormatter outputs a tibble as CSV with a header row
type CSVFormatter struct {
	writer io.Writer
}

// NewCSVFormatter creates a new CSV formatter
func NewCSVFormatter(w io.Writer) *CSVFormatter {
	return &CSVFormatter{writer: w}
}

// SetOutput sets the output writer
func (c *CSVFormatter) SetOutput(w io.Writer) {
	c.writer = w
}

// Format writes t as CSV. Columns keep the tibble's order and NA is
// written as an empty field. A tibble without columns writes nothing.
func (c *CSVFormatter) Format(t *tibble.Tibble) error {
	names := t.Names()
	if len(names) == 0 {
		return nil
	}

	csvWriter := csv.NewWriter(c.writer)
	if err := csvWriter.Write(names); err != nil {
		return err
	}

	record := make([]string, len(names))
	for _, row := range t.Rows() {
		for i, col := range names {
			record[i] = sanitize(formatValue(row[col]))
		}
		if err := csvWriter.Write(record); err != nil {
			return err
		}
	}

	csvWriter.Flush()
	if err := csvWriter.Error(); err != nil {
		return fmt.Errorf("failed to flush CSV writer: %w", err)
	}
	return nil
}

// sanitize guards against CSV injection by quoting fields that would
// start a formula in spreadsheet applications
func sanitize(field string) string {
	if field == "" {
		return field
	}
	switch field[0] {
	case '=', '+', '-', '@', '\t', '\r', '\n', '|':
		if isNumber(field) {
			return field
		}
		return "'" + strings.ReplaceAll(field, "'", "''")
	}
	return field
}

// isNumber reports whether a signed field is a plain number like "-1.5"
func isNumber(field string) bool {
	if field[0] != '-' && field[0] != '+' {
		return false
	}
	_, err := strconv.ParseFloat(field, 64)
	return err == nil
}
