package tibble

import (
	"fmt"

	"github.com/go-gota/gota/series"
)

// Longer configures PivotLonger
type Longer struct {
	// IDVars are repeated on every output row
	IDVars []string
	// ValueVars are stacked; empty means every column not in IDVars
	ValueVars []string
	// NamesTo receives the stacked column names; defaults to "name"
	NamesTo string
	// ValuesTo receives the stacked values; defaults to "value"
	ValuesTo string
}

// PivotLonger stacks value columns into name/value pairs. Output rows are
// ordered by value column, then by original row.
func (t *Tibble) PivotLonger(opts Longer) (*Tibble, error) {
	namesTo, valuesTo := opts.NamesTo, opts.ValuesTo
	if namesTo == "" {
		namesTo = "name"
	}
	if valuesTo == "" {
		valuesTo = "value"
	}

	if missing := t.missing(append(append([]string{}, opts.IDVars...), opts.ValueVars...)); len(missing) > 0 {
		return nil, fmt.Errorf("pivot longer: %w: %v", ErrColumnNotFound, missing)
	}
	valueVars := opts.ValueVars
	if len(valueVars) == 0 {
		ids := make(map[string]bool, len(opts.IDVars))
		for _, id := range opts.IDVars {
			ids[id] = true
		}
		for _, n := range t.Names() {
			if !ids[n] {
				valueVars = append(valueVars, n)
			}
		}
	}
	if err := checkUnique(append(append([]string{}, opts.IDVars...), namesTo, valuesTo)); err != nil {
		return nil, fmt.Errorf("pivot longer: %w", err)
	}

	n := t.Nrow()
	idx := make([]int, 0, n*len(valueVars))
	names := make([]interface{}, 0, n*len(valueVars))
	values := make([]interface{}, 0, n*len(valueVars))
	var hint series.Type
	for _, v := range valueVars {
		s := t.df.Col(v)
		if hint == "" {
			hint = s.Type()
		}
		for i := 0; i < n; i++ {
			idx = append(idx, i)
			names = append(names, v)
			values = append(values, elemValue(s, i))
		}
	}

	cols := make([]series.Series, 0, len(opts.IDVars)+2)
	for _, id := range opts.IDVars {
		cols = append(cols, takeSeries(t.df.Col(id), idx))
	}
	cols = append(cols,
		series.New(names, series.String, namesTo),
		newSeries(valuesTo, values, hint),
	)
	return New(cols...)
}

// PivotWider spreads the values of valuesFrom into one column per distinct
// value of namesFrom. Every other column identifies an output row. Rows
// and new columns follow first appearance; absent cells are NA.
func (t *Tibble) PivotWider(namesFrom, valuesFrom string) (*Tibble, error) {
	if missing := t.missing([]string{namesFrom, valuesFrom}); len(missing) > 0 {
		return nil, fmt.Errorf("pivot wider: %w: %v", ErrColumnNotFound, missing)
	}
	if namesFrom == valuesFrom {
		return nil, fmt.Errorf("pivot wider: %w: names and values both come from %q", ErrInvalidValue, namesFrom)
	}

	var ids []string
	for _, n := range t.Names() {
		if n != namesFrom && n != valuesFrom {
			ids = append(ids, n)
		}
	}
	g, err := t.GroupBy(ids...)
	if err != nil {
		return nil, fmt.Errorf("pivot wider: %w", err)
	}
	// an ungrouped zero-row tibble is one empty group
	var groups [][]int
	for _, rows := range g.groups {
		if len(rows) > 0 {
			groups = append(groups, rows)
		}
	}

	nameVals, _ := t.Column(namesFrom)
	valueSeries := t.df.Col(valuesFrom)

	var newCols []string
	colIndex := make(map[string]int)
	cells := make(map[[2]int]interface{})
	for gi, rows := range groups {
		for _, i := range rows {
			if nameVals[i] == nil {
				return nil, fmt.Errorf("pivot wider: %w: NA in names column %q at row %d", ErrInvalidValue, namesFrom, i)
			}
			name := fmt.Sprint(nameVals[i])
			ci, ok := colIndex[name]
			if !ok {
				ci = len(newCols)
				colIndex[name] = ci
				newCols = append(newCols, name)
			}
			cell := [2]int{gi, ci}
			if _, dup := cells[cell]; dup {
				return nil, fmt.Errorf("pivot wider: %w: duplicate entry for %q in row group %d", ErrInvalidValue, name, gi)
			}
			cells[cell] = elemValue(valueSeries, i)
		}
	}
	if err := checkUnique(append(append([]string{}, ids...), newCols...)); err != nil {
		return nil, fmt.Errorf("pivot wider: %w", err)
	}

	first := make([]int, len(groups))
	for gi, rows := range groups {
		first[gi] = rows[0]
	}
	cols := make([]series.Series, 0, len(ids)+len(newCols))
	for _, id := range ids {
		cols = append(cols, takeSeries(t.df.Col(id), first))
	}
	for ci, name := range newCols {
		vals := make([]interface{}, len(groups))
		for gi := range vals {
			vals[gi] = cells[[2]int{gi, ci}]
		}
		cols = append(cols, newSeries(name, vals, valueSeries.Type()))
	}
	return New(cols...)
}

// Concat binds tibbles by rows. Columns are the union of all inputs in
// first-seen order; cells of columns an input lacks are NA. Nil inputs
// are skipped.
func Concat(ts ...*Tibble) (*Tibble, error) {
	var names []string
	hints := make(map[string]series.Type)
	for _, t := range ts {
		if t == nil {
			continue
		}
		for _, s := range t.Names() {
			if _, ok := hints[s]; !ok {
				hints[s] = t.df.Col(s).Type()
				names = append(names, s)
			}
		}
	}

	cols := make([][]interface{}, len(names))
	for _, t := range ts {
		if t == nil {
			continue
		}
		n := t.Nrow()
		for j, name := range names {
			if !t.Has(name) {
				cols[j] = append(cols[j], make([]interface{}, n)...)
				continue
			}
			cols[j] = append(cols[j], seriesValues(t.df.Col(name))...)
		}
	}

	ss := make([]series.Series, len(names))
	for j, name := range names {
		ss[j] = newSeries(name, cols[j], hints[name])
	}
	return New(ss...)
}

// Distinct returns the distinct combinations of cols in first-seen order;
// with no columns, every column is used
func (t *Tibble) Distinct(cols ...string) (*Tibble, error) {
	if len(cols) == 0 {
		cols = t.Names()
	}
	g, err := t.GroupBy(cols...)
	if err != nil {
		return nil, fmt.Errorf("distinct: %w", err)
	}
	return g.Keys()
}
