package output

import (
	"bufio"
	"io"

	json "github.com/goccy/go-json"

	"github.com/vegasq/tibble/tibble"
)

// JSONFormatter outputs a tibble as JSON Lines
type JSONFormatter struct {
	writer io.Writer
}

// NewJSONFormatter creates a new JSON Lines formatter
func NewJSONFormatter(w io.Writer) *JSONFormatter {
	return &JSONFormatter{writer: w}
}

// SetOutput sets the output writer
func (j *JSONFormatter) SetOutput(w io.Writer) {
	j.writer = w
}

// Format writes one JSON object per row. Keys follow the column order and
// NA is written as null.
func (j *JSONFormatter) Format(t *tibble.Tibble) error {
	names := t.Names()
	keys := make([][]byte, len(names))
	for i, name := range names {
		k, err := json.Marshal(name)
		if err != nil {
			return err
		}
		keys[i] = k
	}

	bw := bufio.NewWriter(j.writer)
	for _, row := range t.Rows() {
		bw.WriteByte('{')
		for i, name := range names {
			if i > 0 {
				bw.WriteByte(',')
			}
			bw.Write(keys[i])
			bw.WriteByte(':')
			v, err := json.Marshal(row[name])
			if err != nil {
				return err
			}
			bw.Write(v)
		}
		bw.WriteString("}\n")
	}
	return bw.Flush()
}
