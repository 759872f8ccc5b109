package reader

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-gota/gota/series"
	"github.com/parquet-go/parquet-go"

	"github.com/vegasq/tibble/internal/codec"
	"github.com/vegasq/tibble/tibble"
)

// SchemaInfo describes one column of a data file
type SchemaInfo struct {
	Name         string `json:"name"`
	Type         string `json:"type"`
	PhysicalType string `json:"physical_type,omitempty"`
	LogicalType  string `json:"logical_type,omitempty"`
	Required     bool   `json:"required"`
	Optional     bool   `json:"optional"`
	Repeated     bool   `json:"repeated"`
}

// ExtractSchemaInfo describes the columns of a parquet file without
// reading its rows. Nested fields use dot notation ("address.street").
func ExtractSchemaInfo(path string) ([]SchemaInfo, error) {
	r, err := NewReader(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = r.Close() }()

	var infos []SchemaInfo
	for _, field := range r.Schema().Fields() {
		infos = append(infos, leafInfo(field, "", false)...)
	}
	return infos, nil
}

// DescribeFile returns the schema of any supported file. Parquet schemas
// come from the file footer; other formats are read and typed from their
// values.
func DescribeFile(ctx context.Context, path string) ([]SchemaInfo, error) {
	if _, inner := codec.Detect(path); formatOf(inner) == formatParquet && inner == path {
		return ExtractSchemaInfo(path)
	}
	t, err := ReadFile(ctx, path)
	if err != nil {
		return nil, err
	}
	return SchemaOf(t), nil
}

// SchemaOf describes the columns of an in-memory tibble. Columns holding
// NA are optional, the others required.
func SchemaOf(t *tibble.Tibble) []SchemaInfo {
	names := t.Names()
	types := t.Types()
	infos := make([]SchemaInfo, len(names))
	for i, name := range names {
		vals, _ := t.Column(name)
		hasNA := false
		for _, v := range vals {
			if v == nil {
				hasNA = true
				break
			}
		}
		infos[i] = SchemaInfo{
			Name:     name,
			Type:     seriesTypeName(types[i]),
			Required: !hasNA,
			Optional: hasNA,
		}
	}
	return infos
}

func seriesTypeName(t series.Type) string {
	switch t {
	case series.Int:
		return "INT64"
	case series.Float:
		return "FLOAT64"
	case series.Bool:
		return "BOOLEAN"
	}
	return "STRING"
}

// leafInfo flattens a field into its leaf columns. Repetition of any
// ancestor marks the leaves repeated.
func leafInfo(field parquet.Field, prefix string, parentRepeated bool) []SchemaInfo {
	name := field.Name()
	if prefix != "" {
		name = prefix + "." + name
	}
	repeated := parentRepeated || field.Repeated()

	if children := field.Fields(); len(children) > 0 {
		var infos []SchemaInfo
		for _, child := range children {
			infos = append(infos, leafInfo(child, name, repeated)...)
		}
		return infos
	}

	info := SchemaInfo{
		Name:     name,
		Type:     "GROUP",
		Required: field.Required(),
		Optional: field.Optional(),
		Repeated: repeated,
	}
	if field.Type() == nil {
		info.PhysicalType = "GROUP"
		return []SchemaInfo{info}
	}
	info.PhysicalType = physicalTypeName(field.Type().Kind(), false)
	info.Type = friendlyTypeName(field.Type())
	if lt := field.Type().LogicalType(); lt != nil {
		info.LogicalType = lt.String()
	}
	return []SchemaInfo{info}
}

// physicalTypeName names a parquet kind. Friendly names spell float
// widths out.
func physicalTypeName(kind parquet.Kind, friendly bool) string {
	switch kind {
	case parquet.Boolean:
		return "BOOLEAN"
	case parquet.Int32:
		return "INT32"
	case parquet.Int64:
		return "INT64"
	case parquet.Int96:
		return "INT96"
	case parquet.Float:
		if friendly {
			return "FLOAT32"
		}
		return "FLOAT"
	case parquet.Double:
		if friendly {
			return "FLOAT64"
		}
		return "DOUBLE"
	case parquet.ByteArray:
		return "BYTE_ARRAY"
	case parquet.FixedLenByteArray:
		return "FIXED_LEN_BYTE_ARRAY"
	}
	return "UNKNOWN"
}

// friendlyTypeName prefers the logical type over the physical one
func friendlyTypeName(t parquet.Type) string {
	if lt := t.LogicalType(); lt != nil {
		name := strings.ToUpper(lt.String())
		switch {
		case name == "STRING" || name == "UTF8":
			return "STRING"
		case strings.HasPrefix(name, "INT"):
			return physicalTypeName(t.Kind(), true)
		case strings.HasPrefix(name, "TIMESTAMP"):
			return "TIMESTAMP"
		case strings.HasPrefix(name, "TIME"):
			return "TIME"
		case strings.HasPrefix(name, "DECIMAL"):
			return "DECIMAL"
		}
		for _, known := range []string{"ENUM", "UUID", "DATE", "JSON", "BSON"} {
			if name == known {
				return known
			}
		}
	}
	return physicalTypeName(t.Kind(), true)
}

// String renders a schema as "name: TYPE" lines
func String(infos []SchemaInfo) string {
	var b strings.Builder
	for _, info := range infos {
		flag := ""
		switch {
		case info.Repeated:
			flag = " (repeated)"
		case info.Optional:
			flag = " (optional)"
		}
		fmt.Fprintf(&b, "%s: %s%s\n", info.Name, info.Type, flag)
	}
	return b.String()
}
