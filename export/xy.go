package export

import (
	"fmt"

	"github.com/apache/arrow/go/v17/arrow/array"
	"github.com/apache/arrow/go/v17/arrow/memory"
	"github.com/go-gota/gota/series"
	"gonum.org/v1/gonum/mat"

	"github.com/vegasq/tibble/expr"
	"github.com/vegasq/tibble/tibble"
)

// XYOptions chooses the feature columns of ToXY and ToTensor. Features
// wins over Drop; with neither, every column but the target is a feature.
type XYOptions struct {
	Features []string
	Drop     []string
}

// features resolves the feature column names for target
func (o XYOptions) features(t *tibble.Tibble, target string) ([]string, error) {
	if !t.Has(target) {
		return nil, fmt.Errorf("%w: target %q", tibble.ErrColumnNotFound, target)
	}
	if len(o.Features) > 0 {
		sel, err := t.Select(o.Features...)
		if err != nil {
			return nil, err
		}
		return sel.Names(), nil
	}
	drop := o.Drop
	if len(drop) == 0 {
		drop = []string{target}
	}
	rest, err := t.Drop(drop...)
	if err != nil {
		return nil, err
	}
	return rest.Names(), nil
}

// ToXY splits a tibble into a feature matrix and a target vector
func ToXY(t *tibble.Tibble, target string, opts XYOptions) (*mat.Dense, *mat.VecDense, error) {
	x, y, cols, err := xy(t, target, opts)
	if err != nil {
		return nil, nil, fmt.Errorf("to xy: %w", err)
	}
	return mat.NewDense(t.Nrow(), cols, x), mat.NewVecDense(len(y), y), nil
}

// Tensor is a row-major float64 buffer with a shape
type Tensor struct {
	Data  *array.Float64
	Shape []int
}

// At returns the element at the given index, one coordinate per dimension
func (t *Tensor) At(idx ...int) float64 {
	if len(idx) != len(t.Shape) {
		panic(fmt.Sprintf("export: %d indices for a tensor of rank %d", len(idx), len(t.Shape)))
	}
	off := 0
	for d, i := range idx {
		if i < 0 || i >= t.Shape[d] {
			panic(fmt.Sprintf("export: index %d out of range for dimension %d of size %d", i, d, t.Shape[d]))
		}
		off = off*t.Shape[d] + i
	}
	return t.Data.Value(off)
}

// Release frees the underlying Arrow buffer
func (t *Tensor) Release() {
	if t.Data != nil {
		t.Data.Release()
	}
}

// ToTensor is ToXY backed by Arrow buffers: X has shape [rows, features]
// and y has shape [rows]. Callers release both tensors.
func ToTensor(t *tibble.Tibble, target string, opts XYOptions) (*Tensor, *Tensor, error) {
	x, y, cols, err := xy(t, target, opts)
	if err != nil {
		return nil, nil, fmt.Errorf("to tensor: %w", err)
	}
	pool := memory.NewGoAllocator()
	return &Tensor{Data: float64Array(pool, x), Shape: []int{t.Nrow(), cols}},
		&Tensor{Data: float64Array(pool, y), Shape: []int{len(y)}},
		nil
}

func float64Array(pool memory.Allocator, vals []float64) *array.Float64 {
	b := array.NewFloat64Builder(pool)
	defer b.Release()
	b.AppendValues(vals, nil)
	return b.NewFloat64Array()
}

// xy returns the row-major feature values, the target values and the
// number of feature columns
func xy(t *tibble.Tibble, target string, opts XYOptions) ([]float64, []float64, int, error) {
	features, err := opts.features(t, target)
	if err != nil {
		return nil, nil, 0, err
	}
	if len(features) == 0 || t.Nrow() == 0 {
		return nil, nil, 0, fmt.Errorf("%w: empty feature matrix (%d rows, %d features)",
			tibble.ErrInvalidValue, t.Nrow(), len(features))
	}

	y, err := numericColumn(t, target)
	if err != nil {
		return nil, nil, 0, err
	}
	n := t.Nrow()
	x := make([]float64, n*len(features))
	for j, name := range features {
		col, err := numericColumn(t, name)
		if err != nil {
			return nil, nil, 0, err
		}
		for i, v := range col {
			x[i*len(features)+j] = v
		}
	}
	return x, y, len(features), nil
}

// numericColumn returns a column as float64 values
func numericColumn(t *tibble.Tibble, name string) ([]float64, error) {
	s, err := t.Series(name)
	if err != nil {
		return nil, err
	}
	switch s.Type() {
	case series.Int, series.Float, series.Bool:
	default:
		return nil, fmt.Errorf("%w: column %q is %s, not numeric", tibble.ErrInvalidValue, name, s.Type())
	}
	vals, err := t.Column(name)
	if err != nil {
		return nil, err
	}
	out := make([]float64, len(vals))
	for i, v := range vals {
		out[i], _ = expr.ToFloat64(v)
	}
	return out, nil
}
