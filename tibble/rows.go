package tibble

import (
	"fmt"
	"math"
	"math/rand"
	"sort"
	"strings"
	"time"

	"github.com/go-gota/gota/dataframe"
)

// Filter keeps the rows for which pred holds. NA counts as false.
func (t *Tibble) Filter(pred Computation) (*Tibble, error) {
	g, err := t.GroupBy()
	if err != nil {
		return nil, err
	}
	return g.Filter(pred)
}

// OmitNA drops every row holding an NA in any column
func (t *Tibble) OmitNA() (*Tibble, error) {
	cols := t.columnValues(t.Names())
	idx := make([]int, 0, t.Nrow())
	for i := 0; i < t.Nrow(); i++ {
		complete := true
		for _, c := range cols {
			if c[i] == nil {
				complete = false
				break
			}
		}
		if complete {
			idx = append(idx, i)
		}
	}
	return t.subset(idx)
}

// Arrange sorts rows by the given columns. A leading "-" sorts that
// column in descending order. The sort is stable and NA sorts last.
func (t *Tibble) Arrange(cols ...string) (*Tibble, error) {
	if len(cols) == 0 {
		return nil, fmt.Errorf("arrange: %w: no columns", ErrInvalidArgument)
	}

	orders := make([]dataframe.Order, len(cols))
	names := make([]string, len(cols))
	for i, c := range cols {
		name := strings.TrimPrefix(c, "-")
		names[i] = name
		if strings.HasPrefix(c, "-") {
			orders[i] = dataframe.RevSort(name)
		} else {
			orders[i] = dataframe.Sort(name)
		}
	}
	if missing := t.missing(names); len(missing) > 0 {
		return nil, fmt.Errorf("arrange: %w: %v", ErrColumnNotFound, missing)
	}
	if t.Nrow() < 2 {
		return FromDataFrame(t.df)
	}

	out := t.df.Arrange(orders...)
	if out.Err != nil {
		return nil, fmt.Errorf("arrange: %w", out.Err)
	}
	return &Tibble{df: out}, nil
}

// SliceHead keeps the first n rows
func (t *Tibble) SliceHead(n int) (*Tibble, error) {
	g, err := t.GroupBy()
	if err != nil {
		return nil, err
	}
	return g.SliceHead(n)
}

// SliceTail keeps the last n rows
func (t *Tibble) SliceTail(n int) (*Tibble, error) {
	g, err := t.GroupBy()
	if err != nil {
		return nil, err
	}
	return g.SliceTail(n)
}

// SliceSample draws rows at random without replacement
func (t *Tibble) SliceSample(s Sample) (*Tibble, error) {
	g, err := t.GroupBy()
	if err != nil {
		return nil, err
	}
	return g.SliceSample(s)
}

// Sample configures SliceSample. N and Frac are mutually exclusive; when
// both are zero one row is drawn.
type Sample struct {
	N    int
	Frac float64
	Rand *rand.Rand
}

// SliceHead keeps the first n rows of each group. Rows keep their
// original order.
func (g *Grouped) SliceHead(n int) (*Tibble, error) {
	if n < 0 {
		return nil, fmt.Errorf("slice head: %w: negative n %d", ErrInvalidValue, n)
	}
	return g.pick(func(rows []int) []int {
		return rows[:min(n, len(rows))]
	})
}

// SliceTail keeps the last n rows of each group. Rows keep their original
// order.
func (g *Grouped) SliceTail(n int) (*Tibble, error) {
	if n < 0 {
		return nil, fmt.Errorf("slice tail: %w: negative n %d", ErrInvalidValue, n)
	}
	return g.pick(func(rows []int) []int {
		return rows[len(rows)-min(n, len(rows)):]
	})
}

// pick selects rows from every group and returns them in original order
func (g *Grouped) pick(choose func(rows []int) []int) (*Tibble, error) {
	var idx []int
	for _, rows := range g.groups {
		idx = append(idx, choose(rows)...)
	}
	sort.Ints(idx)
	return g.t.subset(idx)
}

// SliceSample draws rows at random from each group without replacement.
// Sampled rows come out group by group in draw order.
func (g *Grouped) SliceSample(s Sample) (*Tibble, error) {
	if s.N != 0 && s.Frac != 0 {
		return nil, fmt.Errorf("slice sample: %w: set either N or Frac, not both", ErrInvalidValue)
	}
	if s.N < 0 || s.Frac < 0 {
		return nil, fmt.Errorf("slice sample: %w: negative sample size", ErrInvalidValue)
	}
	r := s.Rand
	if r == nil {
		r = rand.New(rand.NewSource(time.Now().UnixNano()))
	}

	var idx []int
	for _, rows := range g.groups {
		n := s.N
		switch {
		case s.Frac != 0:
			n = int(math.Round(s.Frac * float64(len(rows))))
		case n == 0:
			n = 1
		}
		if n > len(rows) {
			return nil, fmt.Errorf("slice sample: %w: cannot take %d rows from a group of %d without replacement",
				ErrInvalidValue, n, len(rows))
		}
		for _, p := range r.Perm(len(rows))[:n] {
			idx = append(idx, rows[p])
		}
	}
	return g.t.subset(idx)
}

// Mutate adds or replaces columns computed over the whole tibble
func (t *Tibble) Mutate(defs ...Def) (*Tibble, error) {
	g, err := t.GroupBy()
	if err != nil {
		return nil, err
	}
	return g.Mutate(defs...)
}

// Summarize reduces the tibble to a single row of aggregates
func (t *Tibble) Summarize(defs ...Def) (*Tibble, error) {
	g, err := t.GroupBy()
	if err != nil {
		return nil, err
	}
	return g.Summarize(defs...)
}
