package tibble

import (
	"fmt"
	"sort"

	"github.com/go-gota/gota/series"

	"github.com/vegasq/tibble/expr"
)

// Table counts value occurrences, ignoring NA.
//
// With only row it returns the distinct values of row and a "count"
// column, most frequent first. With only col it returns a single row with
// one count column per distinct value, most frequent first. With both it
// returns a cross tabulation: the sorted values of row down the first
// column and one column per sorted value of col.
func (t *Tibble) Table(row, col string) (*Tibble, error) {
	switch {
	case row == "" && col == "":
		return nil, fmt.Errorf("table: %w: supply at least one of row or col", ErrInvalidArgument)
	case col == "":
		return t.countBy(row)
	case row == "":
		counts, err := t.countBy(col)
		if err != nil {
			return nil, err
		}
		return transposeCounts(counts, col)
	}
	return t.crosstab(row, col)
}

type valueCount struct {
	value interface{}
	count int
}

// counts tallies the non-NA values of a column in first-seen order
func (t *Tibble) counts(name string) ([]valueCount, error) {
	vals, err := t.Column(name)
	if err != nil {
		return nil, fmt.Errorf("table: %w", err)
	}
	index := make(map[string]int)
	var out []valueCount
	for _, v := range vals {
		if v == nil {
			continue
		}
		k := expr.Key(v)
		i, ok := index[k]
		if !ok {
			i = len(out)
			index[k] = i
			out = append(out, valueCount{value: v})
		}
		out[i].count++
	}
	return out, nil
}

func (t *Tibble) countBy(name string) (*Tibble, error) {
	if name == "count" {
		return nil, fmt.Errorf("table: %w: column %q clashes with the count column", ErrInvalidValue, name)
	}
	counts, err := t.counts(name)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(counts, func(a, b int) bool { return counts[a].count > counts[b].count })

	values := make([]interface{}, len(counts))
	n := make([]int, len(counts))
	for i, c := range counts {
		values[i] = c.value
		n[i] = c.count
	}
	return New(
		newSeries(name, values, t.df.Col(name).Type()),
		series.New(n, series.Int, "count"),
	)
}

// transposeCounts turns a value/count tibble into one row of counts
func transposeCounts(counts *Tibble, name string) (*Tibble, error) {
	values, err := counts.Column(name)
	if err != nil {
		return nil, err
	}
	n, err := counts.Column("count")
	if err != nil {
		return nil, err
	}
	cols := make([]series.Series, len(values))
	for i, v := range values {
		cols[i] = series.New([]int{n[i].(int)}, series.Int, fmt.Sprint(v))
	}
	return New(cols...)
}

func (t *Tibble) crosstab(row, col string) (*Tibble, error) {
	if row == col {
		return nil, fmt.Errorf("table: %w: row and col are both %q", ErrInvalidValue, row)
	}
	rowCounts, err := t.counts(row)
	if err != nil {
		return nil, err
	}
	colCounts, err := t.counts(col)
	if err != nil {
		return nil, err
	}
	rowVals := sortedValues(rowCounts)
	colVals := sortedValues(colCounts)

	rowIndex := make(map[string]int, len(rowVals))
	for i, v := range rowVals {
		rowIndex[expr.Key(v)] = i
	}
	colIndex := make(map[string]int, len(colVals))
	for j, v := range colVals {
		colIndex[expr.Key(v)] = j
	}

	grid := make([][]int, len(colVals))
	for j := range grid {
		grid[j] = make([]int, len(rowVals))
	}
	rv, _ := t.Column(row)
	cv, _ := t.Column(col)
	for i := range rv {
		if rv[i] == nil || cv[i] == nil {
			continue
		}
		grid[colIndex[expr.Key(cv[i])]][rowIndex[expr.Key(rv[i])]]++
	}

	cols := []series.Series{newSeries(row, rowVals, t.df.Col(row).Type())}
	for j, v := range colVals {
		cols = append(cols, series.New(grid[j], series.Int, fmt.Sprint(v)))
	}
	return New(cols...)
}

func sortedValues(counts []valueCount) []interface{} {
	out := make([]interface{}, len(counts))
	for i, c := range counts {
		out[i] = c.value
	}
	sort.SliceStable(out, func(a, b int) bool { return expr.CompareValues(out[a], out[b]) < 0 })
	return out
}
