package tibble

import (
	"fmt"
	"io"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
)

// Tibble is an immutable tabular dataset of named, equal-length columns
type Tibble struct {
	df dataframe.DataFrame
}

// Empty returns a tibble with no columns and no rows
func Empty() *Tibble {
	return &Tibble{}
}

// New builds a tibble from series. Column names must be unique and
// non-empty, and every series must have the same length.
func New(cols ...series.Series) (*Tibble, error) {
	if len(cols) == 0 {
		return Empty(), nil
	}
	seen := make(map[string]bool, len(cols))
	for _, s := range cols {
		if s.Err != nil {
			return nil, fmt.Errorf("column %q: %w", s.Name, s.Err)
		}
		if s.Name == "" {
			return nil, fmt.Errorf("%w: empty column name", ErrInvalidValue)
		}
		if seen[s.Name] {
			return nil, fmt.Errorf("%w: duplicate column %q", ErrInvalidValue, s.Name)
		}
		seen[s.Name] = true
	}
	return FromDataFrame(dataframe.New(cols...))
}

// FromDataFrame wraps a copy of df
func FromDataFrame(df dataframe.DataFrame) (*Tibble, error) {
	if df.Err != nil {
		return nil, df.Err
	}
	if df.Ncol() == 0 {
		return Empty(), nil
	}
	return &Tibble{df: df.Copy()}, nil
}

// FromColumns builds a tibble from column vectors given in names order
func FromColumns(names []string, cols [][]interface{}) (*Tibble, error) {
	if len(names) != len(cols) {
		return nil, fmt.Errorf("%w: %d names for %d columns", ErrInvalidValue, len(names), len(cols))
	}
	ss := make([]series.Series, len(cols))
	for i, c := range cols {
		ss[i] = newSeries(names[i], c, "")
	}
	return New(ss...)
}

// FromRows builds a tibble from rows whose values follow names order
func FromRows(names []string, rows [][]interface{}) (*Tibble, error) {
	cols := make([][]interface{}, len(names))
	for j := range cols {
		cols[j] = make([]interface{}, len(rows))
	}
	for i, row := range rows {
		if len(row) != len(names) {
			return nil, fmt.Errorf("%w: row %d has %d values, want %d", ErrInvalidValue, i, len(row), len(names))
		}
		for j, v := range row {
			cols[j][i] = v
		}
	}
	return FromColumns(names, cols)
}

// FromMaps builds a tibble from row maps. names fixes the column order;
// keys missing from a row are NA.
func FromMaps(names []string, rows []map[string]interface{}) (*Tibble, error) {
	cols := make([][]interface{}, len(names))
	for j, name := range names {
		cols[j] = make([]interface{}, len(rows))
		for i, row := range rows {
			cols[j][i] = row[name]
		}
	}
	return FromColumns(names, cols)
}

// csvNA lists the CSV fields read as NA
var csvNA = []string{"", "NA", "NaN", "<nil>"}

// ReadCSV reads CSV with a header row, detecting column types. Empty
// fields and "NA" are read as NA unless opts override the NaN values.
func ReadCSV(r io.Reader, opts ...dataframe.LoadOption) (*Tibble, error) {
	opts = append([]dataframe.LoadOption{dataframe.NaNValues(csvNA)}, opts...)
	df := dataframe.ReadCSV(r, opts...)
	if df.Err != nil {
		return nil, fmt.Errorf("read csv: %w", df.Err)
	}
	return FromDataFrame(df)
}

// WriteCSV writes the tibble as CSV with a header row and no index column
func (t *Tibble) WriteCSV(w io.Writer) error {
	if t.Ncol() == 0 {
		return nil
	}
	return t.df.WriteCSV(w, dataframe.WriteHeader(true))
}

// Names returns the column names in order
func (t *Tibble) Names() []string {
	if t.Ncol() == 0 {
		return []string{}
	}
	return t.df.Names()
}

// Types returns the column types in order
func (t *Tibble) Types() []series.Type {
	if t.Ncol() == 0 {
		return []series.Type{}
	}
	return t.df.Types()
}

// Nrow returns the number of rows
func (t *Tibble) Nrow() int { return t.df.Nrow() }

// Ncol returns the number of columns
func (t *Tibble) Ncol() int { return t.df.Ncol() }

// Len is an alias for Nrow
func (t *Tibble) Len() int { return t.Nrow() }

// Has reports whether the tibble has a column called name
func (t *Tibble) Has(name string) bool {
	for _, n := range t.Names() {
		if n == name {
			return true
		}
	}
	return false
}

// Series returns a copy of the named column
func (t *Tibble) Series(name string) (series.Series, error) {
	if !t.Has(name) {
		return series.Series{}, fmt.Errorf("%w: %q", ErrColumnNotFound, name)
	}
	return t.df.Col(name), nil
}

// Column returns the values of the named column, nil for NA
func (t *Tibble) Column(name string) ([]interface{}, error) {
	s, err := t.Series(name)
	if err != nil {
		return nil, err
	}
	return seriesValues(s), nil
}

// Rows returns one map per row keyed by column name
func (t *Tibble) Rows() []map[string]interface{} {
	names := t.Names()
	rows := make([]map[string]interface{}, t.Nrow())
	for i := range rows {
		rows[i] = make(map[string]interface{}, len(names))
	}
	for _, name := range names {
		s := t.df.Col(name)
		for i := range rows {
			rows[i][name] = elemValue(s, i)
		}
	}
	return rows
}

// DataFrame returns a copy of the wrapped data frame
func (t *Tibble) DataFrame() dataframe.DataFrame {
	return t.df.Copy()
}

// Describe returns gota's summary statistics for each column
func (t *Tibble) Describe() (*Tibble, error) {
	if t.Ncol() == 0 {
		return Empty(), nil
	}
	return FromDataFrame(t.df.Describe())
}

// String renders the tibble for display
func (t *Tibble) String() string {
	if t.Ncol() == 0 {
		return "[0x0] Tibble\n"
	}
	return t.df.String()
}

// Set assigns a column, replacing an existing one in place or appending a
// new one. values may be a scalar, a slice or a series.Series.
func (t *Tibble) Set(name string, values interface{}) (*Tibble, error) {
	if name == "" {
		return nil, fmt.Errorf("set: %w: empty column name", ErrInvalidValue)
	}

	n := t.Nrow()
	if t.Ncol() == 0 {
		n = resultLen(values)
	}
	vals, err := toValues(values, n)
	if err != nil {
		return nil, fmt.Errorf("set %q: %w", name, err)
	}

	var hint series.Type
	if t.Has(name) {
		hint = t.df.Col(name).Type()
	}
	s := newSeries(name, vals, hint)

	if t.Ncol() == 0 {
		return New(s)
	}
	out := t.df.Mutate(s)
	if out.Err != nil {
		return nil, fmt.Errorf("set %q: %w", name, out.Err)
	}
	return &Tibble{df: out}, nil
}

// resultLen is the length of a slice or series result, or 1 for a scalar
func resultLen(v interface{}) int {
	switch r := v.(type) {
	case series.Series:
		return r.Len()
	case []interface{}:
		return len(r)
	case []int:
		return len(r)
	case []int64:
		return len(r)
	case []float64:
		return len(r)
	case []string:
		return len(r)
	case []bool:
		return len(r)
	}
	return 1
}

// take gathers rows by index into a new tibble; a negative index yields a
// row of NA
func (t *Tibble) take(idx []int) *Tibble {
	if t.Ncol() == 0 {
		return Empty()
	}
	names := t.Names()
	cols := make([]series.Series, len(names))
	for j, name := range names {
		cols[j] = takeSeries(t.df.Col(name), idx)
	}
	return &Tibble{df: dataframe.New(cols...)}
}

// subset selects rows by index through the data frame's own subsetting
func (t *Tibble) subset(idx []int) (*Tibble, error) {
	if t.Ncol() == 0 || len(idx) == 0 {
		return t.take(idx), nil
	}
	out := t.df.Subset(idx)
	if out.Err != nil {
		return nil, out.Err
	}
	return &Tibble{df: out}, nil
}

// missing returns the names not present in the tibble
func (t *Tibble) missing(names []string) []string {
	var out []string
	for _, n := range names {
		if !t.Has(n) {
			out = append(out, n)
		}
	}
	return out
}

// columnValues returns the values of several columns, one slice per column
func (t *Tibble) columnValues(names []string) [][]interface{} {
	out := make([][]interface{}, len(names))
	for j, name := range names {
		out[j] = seriesValues(t.df.Col(name))
	}
	return out
}

// rowKeys returns the composite key of each row over the given columns
func (t *Tibble) rowKeys(names []string) []string {
	cols := t.columnValues(names)
	keys := make([]string, t.Nrow())
	row := make([]interface{}, len(names))
	for i := range keys {
		for j := range cols {
			row[j] = cols[j][i]
		}
		keys[i] = compositeKey(row)
	}
	return keys
}
