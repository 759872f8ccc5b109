package tibble

import (
	"fmt"
	"sort"

	"github.com/go-gota/gota/series"

	"github.com/vegasq/tibble/expr"
)

// JoinFuzzy matches each left row with at most one right row whose key is
// nearest to the left key in the configured direction. By columns must
// match exactly. The result is sorted by the left key.
//
// When the key is given with On, the right key column is kept under the
// key name plus the right suffix.
func (t *Tibble) JoinFuzzy(right *Tibble, opts ...JoinOption) (*Tibble, error) {
	const verb = "join fuzzy"
	cfg := newJoinConfig(opts)

	on, onLeft, onRight := cfg.on, cfg.onLeft, cfg.onRight
	if len(on) == 0 && len(onLeft) == 1 && len(onRight) == 1 && onLeft[0] == onRight[0] {
		on, onLeft, onRight = onLeft, nil, nil
	}
	lkeys, rkeys, err := pairKeys(verb, "on", on, onLeft, onRight, t, right)
	if err != nil {
		return nil, err
	}
	if len(lkeys) != 1 {
		return nil, fmt.Errorf("%s: %w: need exactly one ordered key, got %d", verb, ErrInvalidValue, len(lkeys))
	}
	lbys, rbys, err := pairKeys(verb, "by", cfg.by, cfg.byLeft, cfg.byRight, t, right)
	if err != nil {
		return nil, err
	}

	lkey, rkey := lkeys[0], rkeys[0]
	if len(on) == 1 {
		rkey = on[0] + cfg.suffix[1]
		if right.Has(rkey) {
			return nil, fmt.Errorf("%s: %w: right already has a column %q", verb, ErrInvalidValue, rkey)
		}
		renamed, err := right.Rename(map[string]string{rkey: on[0]})
		if err != nil {
			return nil, fmt.Errorf("%s: %w", verb, err)
		}
		rest := []string{rkey}
		for _, n := range renamed.Names() {
			if n != rkey {
				rest = append(rest, n)
			}
		}
		if right, err = renamed.Select(rest...); err != nil {
			return nil, fmt.Errorf("%s: %w", verb, err)
		}
	}

	left, err := t.Arrange(lkey)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", verb, err)
	}

	lk, err := orderedKey(left, lkey)
	if err != nil {
		return nil, fmt.Errorf("%s: left %w", verb, err)
	}
	rk, err := orderedKey(right, rkey)
	if err != nil {
		return nil, fmt.Errorf("%s: right %w", verb, err)
	}

	// right rows per by-group, sorted by key
	buckets := make(map[string][]int)
	rbyKeys := right.rowKeys(rbys)
	for j, k := range rbyKeys {
		buckets[k] = append(buckets[k], j)
	}
	for _, rows := range buckets {
		sort.SliceStable(rows, func(a, b int) bool { return rk[rows[a]] < rk[rows[b]] })
	}

	lbyKeys := left.rowKeys(lbys)
	li := make([]int, left.Nrow())
	ri := make([]int, left.Nrow())
	for i := range li {
		li[i] = i
		ri[i] = nearest(buckets[lbyKeys[i]], rk, lk[i], cfg.direction)
	}

	// right by-columns named like their left counterparts are dropped
	var dropBy []string
	for k := range lbys {
		if lbys[k] == rbys[k] {
			dropBy = append(dropBy, rbys[k])
		}
	}
	if len(dropBy) > 0 {
		if right, err = right.Drop(dropBy...); err != nil {
			return nil, fmt.Errorf("%s: %w", verb, err)
		}
	}

	out, err := combine(left, right, li, ri, nil, nil, cfg.suffix)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", verb, err)
	}
	return out, nil
}

// orderedKey returns a numeric key column as float64 values
func orderedKey(t *Tibble, name string) ([]float64, error) {
	s, err := t.Series(name)
	if err != nil {
		return nil, err
	}
	if s.Type() != series.Int && s.Type() != series.Float {
		return nil, fmt.Errorf("key %q: %w: must be numeric, got %s", name, ErrInvalidValue, s.Type())
	}
	out := make([]float64, s.Len())
	for i := range out {
		v := elemValue(s, i)
		if v == nil {
			return nil, fmt.Errorf("key %q: %w: NA at row %d", name, ErrInvalidValue, i)
		}
		out[i], _ = expr.ToFloat64(v)
	}
	return out, nil
}

// nearest picks a row from rows (sorted by key) for the left key x, or -1
func nearest(rows []int, key []float64, x float64, d Direction) int {
	// first position whose key is greater than x
	after := sort.Search(len(rows), func(p int) bool { return key[rows[p]] > x })
	// first position whose key is at least x
	atOrAfter := sort.Search(len(rows), func(p int) bool { return key[rows[p]] >= x })

	backward := -1
	if after > 0 {
		backward = rows[after-1]
	}
	forward := -1
	if atOrAfter < len(rows) {
		forward = rows[atOrAfter]
	}

	switch d {
	case Backward:
		return backward
	case Forward:
		return forward
	}
	switch {
	case backward < 0:
		return forward
	case forward < 0:
		return backward
	case key[forward]-x < x-key[backward]:
		return forward
	}
	return backward
}
