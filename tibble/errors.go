package tibble

import "errors"

var (
	// ErrColumnNotFound is returned when a verb references columns the
	// tibble does not have. The error message names the missing columns.
	ErrColumnNotFound = errors.New("column not found")

	// ErrInvalidValue is returned for arguments with an acceptable type but
	// an unusable value, such as conflicting join keys or an oversized sample.
	ErrInvalidValue = errors.New("invalid value")

	// ErrInvalidArgument is returned when a verb is called without a
	// required argument, such as Table with neither a row nor a column.
	ErrInvalidArgument = errors.New("invalid argument")
)
