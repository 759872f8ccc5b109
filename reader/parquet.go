package reader

import (
	"errors"
	"fmt"
	"io"
	"os"

	json "github.com/goccy/go-json"
	"github.com/parquet-go/parquet-go"

	"github.com/vegasq/tibble/tibble"
)

// Reader reads a parquet file into a tibble.
//
// It maintains both an OS file handle and a parquet file handle to enable
// proper resource cleanup.
type Reader struct {
	file   *os.File
	pqFile *parquet.File
}

// NewReader opens a parquet file.
//
// Example:
//
//	r, err := NewReader("data.parquet")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer r.Close()
func NewReader(path string) (*Reader, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}

	stat, err := file.Stat()
	if err != nil {
		_ = file.Close()
		return nil, fmt.Errorf("failed to stat file: %w", err)
	}

	pqFile, err := parquet.OpenFile(file, stat.Size())
	if err != nil {
		_ = file.Close()
		return nil, fmt.Errorf("failed to open parquet file: %w", err)
	}

	return &Reader{
		file:   file,
		pqFile: pqFile,
	}, nil
}

// ColumnsKey is the file metadata key holding the JSON list of column
// names in tibble order
const ColumnsKey = "tibble.columns"

// ReadAll loads every row. Columns follow the order recorded under
// ColumnsKey when present, else the order of the top-level schema fields.
// Null values become NA.
func (r *Reader) ReadAll() (*tibble.Tibble, error) {
	rows, err := r.rows()
	if err != nil {
		return nil, err
	}
	t, err := tibble.FromMaps(r.columnOrder(), rows)
	if err != nil {
		return nil, fmt.Errorf("failed to build tibble: %w", err)
	}
	return t, nil
}

func (r *Reader) rows() ([]map[string]interface{}, error) {
	rows := make([]map[string]interface{}, 0, r.pqFile.NumRows())

	reader := parquet.NewReader(r.pqFile)
	defer func() { _ = reader.Close() }()

	for {
		row := make(map[string]interface{})
		err := reader.Read(&row)
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, fmt.Errorf("failed to read row: %w", err)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// ColumnNames returns the top-level field names in file order
func (r *Reader) ColumnNames() []string {
	fields := r.pqFile.Schema().Fields()
	names := make([]string, len(fields))
	for i, f := range fields {
		names[i] = f.Name()
	}
	return names
}

// columnOrder prefers the recorded column order when it names exactly the
// schema's fields
func (r *Reader) columnOrder() []string {
	names := r.ColumnNames()
	raw, ok := r.Metadata(ColumnsKey)
	if !ok {
		return names
	}
	var recorded []string
	if err := json.Unmarshal([]byte(raw), &recorded); err != nil || len(recorded) != len(names) {
		return names
	}
	present := make(map[string]bool, len(names))
	for _, n := range names {
		present[n] = true
	}
	for _, n := range recorded {
		if !present[n] {
			return names
		}
		delete(present, n)
	}
	return recorded
}

// NumRows returns the row count recorded in the file metadata
func (r *Reader) NumRows() int64 {
	return r.pqFile.NumRows()
}

// Schema returns the parquet file schema
func (r *Reader) Schema() *parquet.Schema {
	return r.pqFile.Schema()
}

// Metadata returns a key/value entry of the file metadata
func (r *Reader) Metadata(key string) (string, bool) {
	return r.pqFile.Lookup(key)
}

// Close releases the file handle. It is safe to call Close multiple times.
func (r *Reader) Close() error {
	if r.file == nil {
		return nil
	}
	err := r.file.Close()
	r.file = nil
	return err
}
