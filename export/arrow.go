package export

import (
	"fmt"

	"github.com/apache/arrow/go/v17/arrow"
	"github.com/apache/arrow/go/v17/arrow/array"
	"github.com/apache/arrow/go/v17/arrow/memory"
	"github.com/go-gota/gota/series"

	"github.com/vegasq/tibble/tibble"
)

// ArrowSchema maps tibble column types to nullable Arrow fields
func ArrowSchema(t *tibble.Tibble) *arrow.Schema {
	names := t.Names()
	types := t.Types()
	fields := make([]arrow.Field, len(names))
	for i, name := range names {
		fields[i] = arrow.Field{Name: name, Type: arrowType(types[i]), Nullable: true}
	}
	return arrow.NewSchema(fields, nil)
}

func arrowType(t series.Type) arrow.DataType {
	switch t {
	case series.Int:
		return arrow.PrimitiveTypes.Int64
	case series.Float:
		return arrow.PrimitiveTypes.Float64
	case series.Bool:
		return arrow.FixedWidthTypes.Boolean
	}
	return arrow.BinaryTypes.String
}

// ToArrow copies a tibble into a single Arrow record. NA becomes null.
// The caller must Release the record.
func ToArrow(t *tibble.Tibble) (arrow.Record, error) {
	schema := ArrowSchema(t)
	b := array.NewRecordBuilder(memory.NewGoAllocator(), schema)
	defer b.Release()

	for i, field := range schema.Fields() {
		vals, err := t.Column(field.Name)
		if err != nil {
			return nil, fmt.Errorf("to arrow: %w", err)
		}
		fb := b.Field(i)
		for _, v := range vals {
			if err := appendValue(fb, v); err != nil {
				return nil, fmt.Errorf("to arrow: column %q: %w", field.Name, err)
			}
		}
	}
	return b.NewRecord(), nil
}

func appendValue(b array.Builder, v interface{}) error {
	if v == nil {
		b.AppendNull()
		return nil
	}
	switch fb := b.(type) {
	case *array.Int64Builder:
		i, ok := v.(int)
		if !ok {
			return fmt.Errorf("%w: %T in an int column", tibble.ErrInvalidValue, v)
		}
		fb.Append(int64(i))
	case *array.Float64Builder:
		f, ok := v.(float64)
		if !ok {
			return fmt.Errorf("%w: %T in a float column", tibble.ErrInvalidValue, v)
		}
		fb.Append(f)
	case *array.BooleanBuilder:
		x, ok := v.(bool)
		if !ok {
			return fmt.Errorf("%w: %T in a bool column", tibble.ErrInvalidValue, v)
		}
		fb.Append(x)
	case *array.StringBuilder:
		fb.Append(fmt.Sprint(v))
	default:
		return fmt.Errorf("unsupported builder type: %T", b)
	}
	return nil
}

// ArrowValue reads one cell of an Arrow column, nil for null
func ArrowValue(col arrow.Array, i int) interface{} {
	if col.IsNull(i) {
		return nil
	}
	switch c := col.(type) {
	case *array.Int64:
		return int(c.Value(i))
	case *array.Float64:
		return c.Value(i)
	case *array.Boolean:
		return c.Value(i)
	case *array.String:
		return c.Value(i)
	}
	return nil
}

// FromArrow builds a tibble from an Arrow record
func FromArrow(rec arrow.Record) (*tibble.Tibble, error) {
	names := make([]string, rec.NumCols())
	cols := make([][]interface{}, rec.NumCols())
	for j := range cols {
		names[j] = rec.ColumnName(j)
		col := rec.Column(j)
		cols[j] = make([]interface{}, col.Len())
		for i := range cols[j] {
			cols[j][i] = ArrowValue(col, i)
		}
	}
	return tibble.FromColumns(names, cols)
}
