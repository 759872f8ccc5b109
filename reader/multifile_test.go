package reader

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type person struct {
	ID   int64  `parquet:"id"`
	Name string `parquet:"name"`
}

func TestReadMultipleFiles_SingleFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.parquet")
	writeParquet(t, path, []person{{ID: 1, Name: "Alice"}, {ID: 2, Name: "Bob"}})

	got, err := ReadMultipleFiles(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, 2, got.Nrow())
	// a plain path keeps the file's own shape
	assert.False(t, got.Has(FileColumn))
}

func TestReadMultipleFiles_GlobPattern(t *testing.T) {
	dir := t.TempDir()
	files := []struct {
		name string
		rows []person
	}{
		{"file1.parquet", []person{{ID: 1, Name: "Alice"}}},
		{"file2.parquet", []person{{ID: 2, Name: "Bob"}, {ID: 3, Name: "Carol"}}},
		{"other.parquet", []person{{ID: 9, Name: "Zed"}}},
	}
	for _, f := range files {
		writeParquet(t, filepath.Join(dir, f.name), f.rows)
	}

	tests := []struct {
		pattern string
		ids     []interface{}
	}{
		{"*.parquet", []interface{}{1, 2, 3, 9}},
		{"file*.parquet", []interface{}{1, 2, 3}},
		{"file[2].parquet", []interface{}{2, 3}},
	}

	for _, tt := range tests {
		t.Run(tt.pattern, func(t *testing.T) {
			got, err := ReadMultipleFiles(context.Background(), filepath.Join(dir, tt.pattern))
			require.NoError(t, err)
			assert.Equal(t, []string{"id", "name", FileColumn}, got.Names())
			ids, err := got.Column("id")
			require.NoError(t, err)
			assert.Equal(t, tt.ids, ids)

			sources, err := got.Column(FileColumn)
			require.NoError(t, err)
			for _, src := range sources {
				assert.Equal(t, dir, filepath.Dir(src.(string)))
			}
		})
	}
}

func TestReadMultipleFiles_MixedFormats(t *testing.T) {
	dir := t.TempDir()
	writeParquet(t, filepath.Join(dir, "a.parquet"), []person{{ID: 1, Name: "Alice"}})
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.csv"), []byte("id,extra\n2,yes\n"), 0o644))

	got, err := ReadMultipleFiles(context.Background(), filepath.Join(dir, "[ab].*"))
	require.NoError(t, err)
	assert.Equal(t, []string{"id", "name", FileColumn, "extra"}, got.Names())
	assert.Equal(t, []map[string]interface{}{
		{"id": 1, "name": "Alice", FileColumn: filepath.Join(dir, "a.parquet"), "extra": nil},
		{"id": 2, "name": nil, FileColumn: filepath.Join(dir, "b.csv"), "extra": "yes"},
	}, got.Rows())
}

func TestReadMultipleFiles_Errors(t *testing.T) {
	dir := t.TempDir()

	_, err := ReadMultipleFiles(context.Background(), filepath.Join(dir, "nonexistent*.parquet"))
	assert.ErrorContains(t, err, "no files match pattern")

	_, err = ReadMultipleFiles(context.Background(), filepath.Join(dir, "[invalid"))
	assert.Error(t, err)

	writeParquet(t, filepath.Join(dir, "x.parquet"), []person{{ID: 1}})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = ReadMultipleFiles(ctx, filepath.Join(dir, "*.parquet"))
	assert.ErrorIs(t, err, context.Canceled)
}
