/*
Package export converts tibbles into numeric and columnar structures for
modelling code.

	X, y, err := export.ToXY(t, "price", export.XYOptions{Drop: []string{"id"}})

ToXY returns gonum matrices, ToTensor returns row-major Arrow float64
buffers with a shape, ToArrow returns an arrow.Record with one typed
column per tibble column, and ToDTM builds a sparse document-term matrix
that satisfies gonum's mat.Matrix.

Numeric conversions map NA to NaN and booleans to 0 and 1. String columns
cannot be converted to numbers and are rejected.
*/
package export
