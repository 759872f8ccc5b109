package output

import (
	"io"

	"github.com/olekukonko/tablewriter"

	"github.com/vegasq/tibble/tibble"
)

// TableFormatter renders a tibble as a bordered text table
type TableFormatter struct {
	writer io.Writer
}

// NewTableFormatter creates a new table formatter
func NewTableFormatter(w io.Writer) *TableFormatter {
	return &TableFormatter{writer: w}
}

// SetOutput sets the output writer
func (tf *TableFormatter) SetOutput(w io.Writer) {
	tf.writer = w
}

// Format renders t with a header row. NA cells show as "NA".
func (tf *TableFormatter) Format(t *tibble.Tibble) error {
	names := t.Names()
	if len(names) == 0 {
		return nil
	}

	table := tablewriter.NewWriter(tf.writer)
	table.SetHeader(names)
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)

	for _, row := range t.Rows() {
		cells := make([]string, len(names))
		for i, name := range names {
			if row[name] == nil {
				cells[i] = "NA"
				continue
			}
			cells[i] = formatValue(row[name])
		}
		table.Append(cells)
	}
	table.Render()
	return nil
}
