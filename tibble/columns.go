package tibble

import (
	"fmt"
	"sort"

	"github.com/go-gota/gota/series"
)

// Select keeps the named columns in the given order
func (t *Tibble) Select(cols ...string) (*Tibble, error) {
	if missing := t.missing(cols); len(missing) > 0 {
		return nil, fmt.Errorf("select: %w: %v", ErrColumnNotFound, missing)
	}
	if err := checkUnique(cols); err != nil {
		return nil, fmt.Errorf("select: %w", err)
	}
	if len(cols) == 0 {
		return Empty(), nil
	}
	return FromDataFrame(t.df.Select(cols))
}

// Drop removes the named columns
func (t *Tibble) Drop(cols ...string) (*Tibble, error) {
	if missing := t.missing(cols); len(missing) > 0 {
		return nil, fmt.Errorf("drop: %w: %v", ErrColumnNotFound, missing)
	}

	drop := make(map[string]bool, len(cols))
	for _, c := range cols {
		drop[c] = true
	}
	var keep []string
	for _, n := range t.Names() {
		if !drop[n] {
			keep = append(keep, n)
		}
	}
	if len(keep) == 0 {
		return Empty(), nil
	}
	if len(cols) == 0 {
		return FromDataFrame(t.df)
	}
	return FromDataFrame(t.df.Drop(cols))
}

// Rename renames columns; the map goes from new name to old name and all
// renames apply at once, so names can be swapped
func (t *Tibble) Rename(names map[string]string) (*Tibble, error) {
	olds := make([]string, 0, len(names))
	for _, old := range names {
		olds = append(olds, old)
	}
	sort.Strings(olds)
	if missing := t.missing(olds); len(missing) > 0 {
		return nil, fmt.Errorf("rename: %w: %v", ErrColumnNotFound, missing)
	}

	renamed := make(map[string]string, len(names))
	for newName, old := range names {
		if newName == "" {
			return nil, fmt.Errorf("rename: %w: empty name for %q", ErrInvalidValue, old)
		}
		if prev, ok := renamed[old]; ok {
			return nil, fmt.Errorf("rename: %w: %q renamed to both %q and %q", ErrInvalidValue, old, prev, newName)
		}
		renamed[old] = newName
	}

	current := t.Names()
	final := make([]string, len(current))
	for i, n := range current {
		final[i] = n
		if newName, ok := renamed[n]; ok {
			final[i] = newName
		}
	}
	if err := checkUnique(final); err != nil {
		return nil, fmt.Errorf("rename: %w", err)
	}

	cols := make([]series.Series, len(current))
	for i, n := range current {
		s := t.df.Col(n)
		s.Name = final[i]
		cols[i] = s
	}
	return New(cols...)
}

// checkUnique fails on the first duplicated name
func checkUnique(names []string) error {
	seen := make(map[string]bool, len(names))
	for _, n := range names {
		if seen[n] {
			return fmt.Errorf("%w: duplicate column %q", ErrInvalidValue, n)
		}
		seen[n] = true
	}
	return nil
}
