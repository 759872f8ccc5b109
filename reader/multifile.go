package reader

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/vegasq/tibble/tibble"
)

// MaxFiles bounds the number of files a glob pattern may expand to
const MaxFiles = 1000

// FileColumn tags each row of a multi-file read with its source path
const FileColumn = "_file"

// ReadMultipleFiles reads every file matching a glob pattern and binds the
// results by rows. Files may mix the formats ReadFile understands.
//
// The pattern can include wildcards:
//   - * matches any sequence of non-separator characters
//   - ? matches any single non-separator character
//   - [range] matches any character in range
//
// Examples:
//   - "data/*.parquet" - all parquet files in data directory
//   - "data/2024-*.csv.gz" - compressed CSV files starting with 2024-
//   - "data/*/*.parquet" - parquet files in subdirectories of data
//
// Rows read through a glob gain a "_file" column holding their source
// path. A plain path is read as is, without that column.
func ReadMultipleFiles(ctx context.Context, pattern string) (*tibble.Tibble, error) {
	if !strings.ContainsAny(pattern, "*?[]") {
		return ReadFile(ctx, pattern)
	}

	matches, err := filepath.Glob(pattern)
	if err != nil {
		return nil, fmt.Errorf("invalid glob pattern: %w", err)
	}
	if len(matches) == 0 {
		return nil, fmt.Errorf("no files match pattern: %s", pattern)
	}
	if len(matches) > MaxFiles {
		return nil, fmt.Errorf("glob pattern matched too many files (%d), maximum is %d", len(matches), MaxFiles)
	}

	parts := make([]*tibble.Tibble, 0, len(matches))
	for _, path := range matches {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		t, err := ReadFile(ctx, path)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", path, err)
		}
		if t, err = t.Set(FileColumn, path); err != nil {
			return nil, fmt.Errorf("failed to tag %s: %w", path, err)
		}
		parts = append(parts, t)
	}
	return tibble.Concat(parts...)
}
