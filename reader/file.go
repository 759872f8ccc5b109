package reader

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	json "github.com/goccy/go-json"
	"github.com/parquet-go/parquet-go"

	"github.com/vegasq/tibble/internal/codec"
	"github.com/vegasq/tibble/tibble"
)

type format int

const (
	formatUnknown format = iota
	formatCSV
	formatParquet
	formatJSONL
)

// formatOf picks the data format from a path with any compression
// extension already removed
func formatOf(path string) format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return formatCSV
	case ".parquet", ".pq":
		return formatParquet
	case ".jsonl", ".ndjson":
		return formatJSONL
	}
	return formatUnknown
}

// ReadFile reads a CSV, parquet or JSON Lines file, chosen by extension.
// A trailing .gz, .zst, .lz4 or .sz extension is decompressed first, so
// "events.jsonl.zst" is read as zstd-compressed JSON Lines.
func ReadFile(ctx context.Context, path string) (*tibble.Tibble, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	alg, inner := codec.Detect(path)
	f := formatOf(inner)
	if f == formatUnknown {
		return nil, fmt.Errorf("unsupported file type: %s", path)
	}

	if f == formatParquet && alg == codec.None {
		r, err := NewReader(path)
		if err != nil {
			return nil, err
		}
		defer func() { _ = r.Close() }()
		return r.ReadAll()
	}

	rc, _, err := codec.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rc.Close() }()

	switch f {
	case formatCSV:
		return tibble.ReadCSV(rc)
	case formatJSONL:
		return ReadJSONLines(rc)
	}

	// parquet needs random access, so compressed files are buffered
	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	pqFile, err := parquet.OpenFile(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("failed to open parquet file: %w", err)
	}
	return (&Reader{pqFile: pqFile}).ReadAll()
}

// ReadJSONLines reads one JSON object per line. Columns appear in the
// order their keys are first seen; keys missing from an object are NA.
// Integral numbers become ints, other numbers floats, and nested objects
// or arrays are kept as their JSON text.
func ReadJSONLines(r io.Reader) (*tibble.Tibble, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()

	var names []string
	seen := make(map[string]bool)
	var rows []map[string]interface{}

	for record := 1; ; record++ {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("json lines: record %d: %w", record, err)
		}
		if delim, ok := tok.(json.Delim); !ok || delim != '{' {
			return nil, fmt.Errorf("json lines: record %d: expected an object, got %v", record, tok)
		}

		row := make(map[string]interface{})
		for dec.More() {
			keyTok, err := dec.Token()
			if err != nil {
				return nil, fmt.Errorf("json lines: record %d: %w", record, err)
			}
			key, ok := keyTok.(string)
			if !ok {
				return nil, fmt.Errorf("json lines: record %d: unexpected key %v", record, keyTok)
			}
			var v interface{}
			if err := dec.Decode(&v); err != nil {
				return nil, fmt.Errorf("json lines: record %d: field %q: %w", record, key, err)
			}
			if row[key], err = jsonValue(v); err != nil {
				return nil, fmt.Errorf("json lines: record %d: field %q: %w", record, key, err)
			}
			if !seen[key] {
				seen[key] = true
				names = append(names, key)
			}
		}
		if _, err := dec.Token(); err != nil {
			return nil, fmt.Errorf("json lines: record %d: %w", record, err)
		}
		rows = append(rows, row)
	}

	return tibble.FromMaps(names, rows)
}

func jsonValue(v interface{}) (interface{}, error) {
	switch val := v.(type) {
	case json.Number:
		if i, err := val.Int64(); err == nil {
			return i, nil
		}
		return val.Float64()
	case map[string]interface{}, []interface{}:
		text, err := json.Marshal(val)
		if err != nil {
			return nil, err
		}
		return string(text), nil
	}
	return v, nil
}
