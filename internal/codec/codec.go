// Package codec wraps file streams in the compression format named by
// their extension
package codec

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/snappy"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// Algorithm represents a stream compression algorithm
type Algorithm string

const (
	// None passes data through unchanged
	None Algorithm = "none"
	// Gzip represents gzip compression
	Gzip Algorithm = "gzip"
	// Zstd represents zstandard compression
	Zstd Algorithm = "zstd"
	// LZ4 represents lz4 frame compression
	LZ4 Algorithm = "lz4"
	// Snappy represents snappy framed compression
	Snappy Algorithm = "snappy"
)

var extensions = map[string]Algorithm{
	".gz":   Gzip,
	".gzip": Gzip,
	".zst":  Zstd,
	".zstd": Zstd,
	".lz4":  LZ4,
	".sz":   Snappy,
}

// Detect returns the compression algorithm named by the extension of path
// and the path with that extension removed
func Detect(path string) (Algorithm, string) {
	ext := strings.ToLower(filepath.Ext(path))
	if alg, ok := extensions[ext]; ok {
		return alg, path[:len(path)-len(ext)]
	}
	return None, path
}

// NewReader decompresses r
func NewReader(r io.Reader, alg Algorithm) (io.ReadCloser, error) {
	switch alg {
	case None, "":
		return io.NopCloser(r), nil
	case Gzip:
		zr, err := gzip.NewReader(r)
		if err != nil {
			return nil, err
		}
		return zr, nil
	case Zstd:
		dec, err := zstd.NewReader(r)
		if err != nil {
			return nil, err
		}
		return dec.IOReadCloser(), nil
	case LZ4:
		return io.NopCloser(lz4.NewReader(r)), nil
	case Snappy:
		return io.NopCloser(snappy.NewReader(r)), nil
	}
	return nil, fmt.Errorf("unsupported compression: %s", alg)
}

// NewWriter compresses into w. Closing the returned writer flushes the
// compressed stream but leaves w open.
func NewWriter(w io.Writer, alg Algorithm) (io.WriteCloser, error) {
	switch alg {
	case None, "":
		return nopWriteCloser{w}, nil
	case Gzip:
		return gzip.NewWriter(w), nil
	case Zstd:
		enc, err := zstd.NewWriter(w)
		if err != nil {
			return nil, err
		}
		return enc, nil
	case LZ4:
		return lz4.NewWriter(w), nil
	case Snappy:
		return snappy.NewBufferedWriter(w), nil
	}
	return nil, fmt.Errorf("unsupported compression: %s", alg)
}

// Open opens a file for reading, decompressing it according to its
// extension. It also returns the path without the compression extension.
func Open(path string) (io.ReadCloser, string, error) {
	alg, inner := Detect(path)
	f, err := os.Open(path)
	if err != nil {
		return nil, "", fmt.Errorf("failed to open file: %w", err)
	}
	r, err := NewReader(f, alg)
	if err != nil {
		_ = f.Close()
		return nil, "", fmt.Errorf("failed to read %s stream: %w", alg, err)
	}
	return &stack{Reader: r, closers: []io.Closer{r, f}}, inner, nil
}

// Create creates a file for writing, compressing it according to its
// extension. It also returns the path without the compression extension.
func Create(path string) (io.WriteCloser, string, error) {
	alg, inner := Detect(path)
	f, err := os.Create(path)
	if err != nil {
		return nil, "", fmt.Errorf("failed to create file: %w", err)
	}
	w, err := NewWriter(f, alg)
	if err != nil {
		_ = f.Close()
		return nil, "", fmt.Errorf("failed to start %s stream: %w", alg, err)
	}
	return &stack{Writer: w, closers: []io.Closer{w, f}}, inner, nil
}

// stack closes a compression layer before the file beneath it
type stack struct {
	io.Reader
	io.Writer
	closers []io.Closer
}

func (s *stack) Close() error {
	var errs []error
	for _, c := range s.closers {
		if err := c.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

type nopWriteCloser struct {
	io.Writer
}

func (nopWriteCloser) Close() error { return nil }
