package output

import (
	"fmt"
	"io"

	"github.com/go-gota/gota/series"
	json "github.com/goccy/go-json"
	"github.com/parquet-go/parquet-go"

	"github.com/vegasq/tibble/reader"
	"github.com/vegasq/tibble/tibble"
)

// ParquetFormatter writes a tibble as a snappy-compressed parquet file.
// Every column is optional so NA survives as null, and the column order
// is recorded under reader.ColumnsKey in the file metadata.
type ParquetFormatter struct {
	writer io.Writer
}

// NewParquetFormatter creates a new parquet formatter
func NewParquetFormatter(w io.Writer) *ParquetFormatter {
	return &ParquetFormatter{writer: w}
}

// SetOutput sets the output writer
func (p *ParquetFormatter) SetOutput(w io.Writer) {
	p.writer = w
}

// Format writes t as a complete parquet file
func (p *ParquetFormatter) Format(t *tibble.Tibble) error {
	if t.Ncol() == 0 {
		return fmt.Errorf("parquet: %w: no columns to write", tibble.ErrInvalidValue)
	}

	names := t.Names()
	types := t.Types()
	group := make(parquet.Group, len(names))
	for i, name := range names {
		group[name] = parquet.Optional(parquetNode(types[i]))
	}
	schema := parquet.NewSchema("tibble", group)

	order, err := json.Marshal(names)
	if err != nil {
		return err
	}

	// group fields are sorted by name and leaf indexes follow that order
	fields := schema.Fields()
	cols := make([][]interface{}, len(fields))
	for i, f := range fields {
		if cols[i], err = t.Column(f.Name()); err != nil {
			return err
		}
	}

	rows := make([]parquet.Row, t.Nrow())
	for r := range rows {
		row := make(parquet.Row, len(cols))
		for c, col := range cols {
			row[c] = parquetValue(col[r]).Level(0, definitionLevel(col[r]), c)
		}
		rows[r] = row
	}

	w := parquet.NewWriter(p.writer,
		schema,
		parquet.Compression(&parquet.Snappy),
		parquet.KeyValueMetadata(reader.ColumnsKey, string(order)),
	)
	if _, err := w.WriteRows(rows); err != nil {
		_ = w.Close()
		return fmt.Errorf("failed to write parquet: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("failed to close parquet writer: %w", err)
	}
	return nil
}

func parquetNode(typ series.Type) parquet.Node {
	switch typ {
	case series.Int:
		return parquet.Int(64)
	case series.Float:
		return parquet.Leaf(parquet.DoubleType)
	case series.Bool:
		return parquet.Leaf(parquet.BooleanType)
	default:
		return parquet.String()
	}
}

func parquetValue(v interface{}) parquet.Value {
	switch val := v.(type) {
	case nil:
		return parquet.NullValue()
	case int:
		return parquet.Int64Value(int64(val))
	case float64:
		return parquet.DoubleValue(val)
	case bool:
		return parquet.BooleanValue(val)
	case string:
		return parquet.ByteArrayValue([]byte(val))
	}
	return parquet.ByteArrayValue([]byte(formatValue(v)))
}

func definitionLevel(v interface{}) int {
	if v == nil {
		return 0
	}
	return 1
}
