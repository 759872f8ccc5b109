package tibble

import (
	"fmt"

	"github.com/go-gota/gota/series"
)

// Grouped is a tibble partitioned by key columns. Groups are kept in the
// order their first row appears.
type Grouped struct {
	t      *Tibble
	keys   []string
	groups [][]int
}

// GroupBy partitions rows by the distinct value combinations of cols. NA is
// a key value of its own. With no columns the whole tibble is one group.
func (t *Tibble) GroupBy(cols ...string) (*Grouped, error) {
	if missing := t.missing(cols); len(missing) > 0 {
		return nil, fmt.Errorf("group by: %w: %v", ErrColumnNotFound, missing)
	}
	if err := checkUnique(cols); err != nil {
		return nil, fmt.Errorf("group by: %w", err)
	}

	g := &Grouped{t: t, keys: cols}
	if len(cols) == 0 {
		all := make([]int, t.Nrow())
		for i := range all {
			all[i] = i
		}
		g.groups = [][]int{all}
		return g, nil
	}

	index := make(map[string]int)
	for i, key := range t.rowKeys(cols) {
		gi, ok := index[key]
		if !ok {
			gi = len(g.groups)
			index[key] = gi
			g.groups = append(g.groups, nil)
		}
		g.groups[gi] = append(g.groups[gi], i)
	}
	return g, nil
}

// Groups returns the number of groups
func (g *Grouped) Groups() int { return len(g.groups) }

// KeyNames returns the grouping columns
func (g *Grouped) KeyNames() []string { return g.keys }

// Indices returns the row indices of each group in first-seen order
func (g *Grouped) Indices() [][]int { return g.groups }

// Keys returns one row per group holding its key values
func (g *Grouped) Keys() (*Tibble, error) {
	if len(g.keys) == 0 {
		return Empty(), nil
	}
	first := make([]int, 0, len(g.groups))
	for _, rows := range g.groups {
		if len(rows) > 0 {
			first = append(first, rows[0])
		}
	}
	keys, err := g.t.Select(g.keys...)
	if err != nil {
		return nil, err
	}
	return keys.take(first), nil
}

// each applies fn to every group and concatenates the results in group order.
// With no groups fn still runs once on the zero-row frame so the output
// has the columns fn would add.
func (g *Grouped) each(fn func(part *Tibble) (*Tibble, error)) (*Tibble, error) {
	if len(g.groups) == 0 {
		return fn(g.t.take(nil))
	}
	if len(g.groups) == 1 {
		part := g.t
		if len(g.keys) > 0 {
			part = g.t.take(g.groups[0])
		}
		return fn(part)
	}

	parts := make([]*Tibble, 0, len(g.groups))
	for _, rows := range g.groups {
		out, err := fn(g.t.take(rows))
		if err != nil {
			return nil, err
		}
		parts = append(parts, out)
	}
	return Concat(parts...)
}

// Mutate adds or replaces columns group by group. Definitions run in
// order and later ones see the columns made by earlier ones.
func (g *Grouped) Mutate(defs ...Def) (*Tibble, error) {
	out, err := g.each(func(part *Tibble) (*Tibble, error) {
		for _, d := range defs {
			res, err := d.Compute(part)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", d.Name, err)
			}
			if part, err = part.Set(d.Name, res); err != nil {
				return nil, err
			}
		}
		return part, nil
	})
	if err != nil {
		return nil, fmt.Errorf("mutate: %w", err)
	}
	return out, nil
}

// Summarize reduces each group to one row: the key columns followed by
// one column per definition
func (g *Grouped) Summarize(defs ...Def) (*Tibble, error) {
	if err := checkUnique(append(append([]string{}, g.keys...), defNames(defs)...)); err != nil {
		return nil, fmt.Errorf("summarize: %w", err)
	}

	keyCols := g.t.columnValues(g.keys)
	keyVals := make([][]interface{}, len(g.keys))
	metrics := make([][]interface{}, len(defs))

	for _, rows := range g.groups {
		part := g.t
		if len(g.keys) > 0 {
			part = g.t.take(rows)
		}
		for j := range g.keys {
			keyVals[j] = append(keyVals[j], keyCols[j][rows[0]])
		}
		for j, d := range defs {
			v, err := scalarResult(part, d.Computation)
			if err != nil {
				return nil, fmt.Errorf("summarize: %s: %w", d.Name, err)
			}
			metrics[j] = append(metrics[j], v)
		}
	}

	cols := make([]series.Series, 0, len(g.keys)+len(defs))
	for j, k := range g.keys {
		cols = append(cols, newSeries(k, keyVals[j], g.t.df.Col(k).Type()))
	}
	for j, d := range defs {
		cols = append(cols, newSeries(d.Name, metrics[j], ""))
	}
	return New(cols...)
}

// Filter keeps the rows for which pred holds within each group
func (g *Grouped) Filter(pred Computation) (*Tibble, error) {
	out, err := g.each(func(part *Tibble) (*Tibble, error) {
		mask, err := predicate(part, pred)
		if err != nil {
			return nil, err
		}
		var idx []int
		for i, keep := range mask {
			if keep {
				idx = append(idx, i)
			}
		}
		return part.subset(idx)
	})
	if err != nil {
		return nil, fmt.Errorf("filter: %w", err)
	}
	return out, nil
}

func defNames(defs []Def) []string {
	names := make([]string, len(defs))
	for i, d := range defs {
		names[i] = d.Name
	}
	return names
}
