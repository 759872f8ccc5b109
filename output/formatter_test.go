package output

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vegasq/tibble/reader"
	"github.com/vegasq/tibble/tibble"
)

func mixed(t *testing.T) *tibble.Tibble {
	return mustTibble(t, []string{"z", "a", "f", "b"},
		[]interface{}{1, nil},
		[]interface{}{"x", "y"},
		[]interface{}{1.5, nil},
		[]interface{}{true, false},
	)
}

func TestNewFormatter(t *testing.T) {
	tests := []struct {
		name    string
		want    interface{}
		wantErr bool
	}{
		{"table", &TableFormatter{}, false},
		{"csv", &CSVFormatter{}, false},
		{"CSV", &CSVFormatter{}, false},
		{"jsonl", &JSONFormatter{}, false},
		{"ndjson", &JSONFormatter{}, false},
		{"parquet", &ParquetFormatter{}, false},
		{"xml", nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, err := NewFormatter(tt.name, &bytes.Buffer{})
			if tt.wantErr {
				assert.ErrorContains(t, err, "unknown output format")
				return
			}
			require.NoError(t, err)
			assert.IsType(t, tt.want, f)
		})
	}
}

func TestFormatForPath(t *testing.T) {
	tests := []struct {
		path    string
		want    string
		wantErr bool
	}{
		{"out.csv", "csv", false},
		{"out.CSV.gz", "csv", false},
		{"out.jsonl", "jsonl", false},
		{"out.ndjson.zst", "jsonl", false},
		{"dir/out.parquet", "parquet", false},
		{"out.pq", "parquet", false},
		{"out.txt", "table", false},
		{"out", "", true},
		{"out.gz", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			got, err := FormatForPath(tt.path)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestTableFormatter_Format(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewTableFormatter(&buf).Format(mixed(t)))

	out := buf.String()
	for _, want := range []string{"z", "a", "f", "b", "x", "y", "1.5", "true", "false", "NA"} {
		assert.Contains(t, out, want)
	}
	// border, header, separator, two rows, border
	assert.Len(t, strings.Split(strings.TrimSpace(out), "\n"), 6)

	buf.Reset()
	require.NoError(t, NewTableFormatter(&buf).Format(tibble.Empty()))
	assert.Empty(t, buf.String())
}

func TestParquetFormatter_RoundTrip(t *testing.T) {
	in := mixed(t)
	path := filepath.Join(t.TempDir(), "out.parquet")

	var buf bytes.Buffer
	require.NoError(t, NewParquetFormatter(&buf).Format(in))
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))

	r, err := reader.NewReader(path)
	require.NoError(t, err)
	defer r.Close()

	order, ok := r.Metadata(reader.ColumnsKey)
	require.True(t, ok)
	assert.Equal(t, `["z","a","f","b"]`, order)
	assert.Equal(t, int64(2), r.NumRows())

	got, err := r.ReadAll()
	require.NoError(t, err)
	assert.Equal(t, in.Names(), got.Names())
	assert.Equal(t, in.Rows(), got.Rows())
}

func TestParquetFormatter_ZeroRows(t *testing.T) {
	in, err := mixed(t).SliceHead(0)
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "empty.parquet")
	require.NoError(t, WriteFile(path, in))

	r, err := reader.NewReader(path)
	require.NoError(t, err)
	defer r.Close()
	assert.Equal(t, int64(0), r.NumRows())
	assert.Equal(t, []string{"a", "b", "f", "z"}, r.ColumnNames())

	got, err := r.ReadAll()
	require.NoError(t, err)
	assert.Equal(t, []string{"z", "a", "f", "b"}, got.Names())
	assert.Equal(t, 0, got.Nrow())
}

func TestParquetFormatter_NoColumns(t *testing.T) {
	err := NewParquetFormatter(&bytes.Buffer{}).Format(tibble.Empty())
	assert.ErrorIs(t, err, tibble.ErrInvalidValue)
}

func TestWriteFile(t *testing.T) {
	dir := t.TempDir()
	in := mixed(t)

	for _, name := range []string{"out.csv", "out.jsonl.gz", "out.parquet", "out.parquet.zst"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(dir, name)
			require.NoError(t, WriteFile(path, in))

			got, err := reader.ReadFile(context.Background(), path)
			require.NoError(t, err)
			assert.Equal(t, in.Names(), got.Names())
			assert.Equal(t, in.Rows(), got.Rows())
		})
	}

	assert.Error(t, WriteFile(filepath.Join(dir, "out.unknown"), in))
}
