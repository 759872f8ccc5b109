package tibble

import (
	"fmt"

	"github.com/go-gota/gota/series"
)

// Direction selects which right row JoinFuzzy matches
type Direction int

const (
	// Nearest matches the right row with the closest key; ties go backward
	Nearest Direction = iota
	// Backward matches the last right row with a key at or before the left key
	Backward
	// Forward matches the first right row with a key at or after the left key
	Forward
)

func (d Direction) String() string {
	switch d {
	case Backward:
		return "backward"
	case Forward:
		return "forward"
	}
	return "nearest"
}

// ParseDirection parses "nearest", "backward" or "forward"
func ParseDirection(s string) (Direction, error) {
	switch s {
	case "", "nearest":
		return Nearest, nil
	case "backward":
		return Backward, nil
	case "forward":
		return Forward, nil
	}
	return Nearest, fmt.Errorf("%w: unknown direction %q", ErrInvalidValue, s)
}

type joinConfig struct {
	on, onLeft, onRight []string
	by, byLeft, byRight []string
	suffix              [2]string
	direction           Direction
}

// JoinOption configures a join
type JoinOption func(*joinConfig)

// On joins on columns that share a name on both sides
func On(cols ...string) JoinOption {
	return func(c *joinConfig) { c.on = cols }
}

// OnLeft names the left key columns; use with OnRight
func OnLeft(cols ...string) JoinOption {
	return func(c *joinConfig) { c.onLeft = cols }
}

// OnRight names the right key columns; use with OnLeft
func OnRight(cols ...string) JoinOption {
	return func(c *joinConfig) { c.onRight = cols }
}

// Suffix sets the suffixes added to clashing non-key column names
func Suffix(left, right string) JoinOption {
	return func(c *joinConfig) { c.suffix = [2]string{left, right} }
}

// By restricts fuzzy matches to rows with equal values in shared columns
func By(cols ...string) JoinOption {
	return func(c *joinConfig) { c.by = cols }
}

// ByLeft names the left exact-match columns of a fuzzy join
func ByLeft(cols ...string) JoinOption {
	return func(c *joinConfig) { c.byLeft = cols }
}

// ByRight names the right exact-match columns of a fuzzy join
func ByRight(cols ...string) JoinOption {
	return func(c *joinConfig) { c.byRight = cols }
}

// WithDirection sets the fuzzy join direction
func WithDirection(d Direction) JoinOption {
	return func(c *joinConfig) { c.direction = d }
}

func newJoinConfig(opts []JoinOption) *joinConfig {
	c := &joinConfig{suffix: [2]string{"", "_y"}}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// pairKeys normalizes a shared-name option and a left/right pair into
// left and right column lists
func pairKeys(verb, what string, shared, left, right []string, lt, rt *Tibble) ([]string, []string, error) {
	switch {
	case len(shared) > 0 && (len(left) > 0 || len(right) > 0):
		return nil, nil, fmt.Errorf("%s: %w: use either %s or the left/right pair, not both", verb, ErrInvalidValue, what)
	case len(shared) > 0:
		left, right = shared, shared
	case len(left) > 0 || len(right) > 0:
		if len(left) != len(right) {
			return nil, nil, fmt.Errorf("%s: %w: %d left keys for %d right keys", verb, ErrInvalidValue, len(left), len(right))
		}
	}

	if missing := lt.missing(left); len(missing) > 0 {
		return nil, nil, fmt.Errorf("%s: %w: left %v", verb, ErrColumnNotFound, missing)
	}
	if missing := rt.missing(right); len(missing) > 0 {
		return nil, nil, fmt.Errorf("%s: %w: right %v", verb, ErrColumnNotFound, missing)
	}
	return left, right, nil
}

// joinKeys resolves the key columns of an equi-join. With no keys the
// columns common to both sides are used.
func (c *joinConfig) joinKeys(verb string, lt, rt *Tibble) ([]string, []string, error) {
	left, right, err := pairKeys(verb, "on", c.on, c.onLeft, c.onRight, lt, rt)
	if err != nil {
		return nil, nil, err
	}
	if len(left) > 0 {
		return left, right, nil
	}

	for _, n := range lt.Names() {
		if rt.Has(n) {
			left = append(left, n)
		}
	}
	if len(left) == 0 {
		return nil, nil, fmt.Errorf("%s: %w: no key columns given and none in common", verb, ErrInvalidValue)
	}
	return left, left, nil
}

type joinKind int

const (
	joinLeft joinKind = iota
	joinRight
	joinInner
	joinOuter
)

// JoinLeft keeps every left row and attaches matching right rows
func (t *Tibble) JoinLeft(right *Tibble, opts ...JoinOption) (*Tibble, error) {
	return t.merge("join left", joinLeft, right, opts)
}

// JoinRight keeps every right row and attaches matching left rows
func (t *Tibble) JoinRight(right *Tibble, opts ...JoinOption) (*Tibble, error) {
	return t.merge("join right", joinRight, right, opts)
}

// JoinInner keeps only matching pairs of rows
func (t *Tibble) JoinInner(right *Tibble, opts ...JoinOption) (*Tibble, error) {
	return t.merge("join inner", joinInner, right, opts)
}

// JoinOuter keeps every row of both sides
func (t *Tibble) JoinOuter(right *Tibble, opts ...JoinOption) (*Tibble, error) {
	return t.merge("join outer", joinOuter, right, opts)
}

// merge matches rows on equal keys. NA keys match each other.
func (t *Tibble) merge(verb string, kind joinKind, right *Tibble, opts []JoinOption) (*Tibble, error) {
	cfg := newJoinConfig(opts)
	lkeys, rkeys, err := cfg.joinKeys(verb, t, right)
	if err != nil {
		return nil, err
	}

	rightIndex := make(map[string][]int)
	rk := right.rowKeys(rkeys)
	for j, k := range rk {
		rightIndex[k] = append(rightIndex[k], j)
	}
	lk := t.rowKeys(lkeys)

	var li, ri []int
	switch kind {
	case joinRight:
		leftIndex := make(map[string][]int)
		for i, k := range lk {
			leftIndex[k] = append(leftIndex[k], i)
		}
		for j, k := range rk {
			matches := leftIndex[k]
			if len(matches) == 0 {
				li, ri = append(li, -1), append(ri, j)
				continue
			}
			for _, i := range matches {
				li, ri = append(li, i), append(ri, j)
			}
		}
	default:
		matched := make([]bool, right.Nrow())
		for i, k := range lk {
			matches := rightIndex[k]
			if len(matches) == 0 {
				if kind != joinInner {
					li, ri = append(li, i), append(ri, -1)
				}
				continue
			}
			for _, j := range matches {
				li, ri = append(li, i), append(ri, j)
				matched[j] = true
			}
		}
		if kind == joinOuter {
			for j, m := range matched {
				if !m {
					li, ri = append(li, -1), append(ri, j)
				}
			}
		}
	}

	out, err := combine(t, right, li, ri, lkeys, rkeys, cfg.suffix)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", verb, err)
	}
	return out, nil
}

// combine builds the joined tibble from matched row pairs. Right keys that
// share their left key's name are folded into the left key column.
func combine(lt, rt *Tibble, li, ri []int, lkeys, rkeys []string, suffix [2]string) (*Tibble, error) {
	shared := make(map[string]string)
	for k := range lkeys {
		if lkeys[k] == rkeys[k] {
			shared[lkeys[k]] = rkeys[k]
		}
	}

	var rightCols []string
	rightSet := make(map[string]bool)
	for _, n := range rt.Names() {
		if _, ok := shared[n]; !ok {
			rightCols = append(rightCols, n)
			rightSet[n] = true
		}
	}

	leftNames := lt.Names()
	outLeft := make([]string, len(leftNames))
	for i, n := range leftNames {
		outLeft[i] = n
		if rightSet[n] {
			outLeft[i] = n + suffix[0]
		}
	}
	outRight := make([]string, len(rightCols))
	for i, n := range rightCols {
		outRight[i] = n
		if lt.Has(n) {
			outRight[i] = n + suffix[1]
		}
	}
	if err := checkUnique(append(append([]string{}, outLeft...), outRight...)); err != nil {
		return nil, fmt.Errorf("%w (choose distinct suffixes)", err)
	}

	cols := make([]series.Series, 0, len(outLeft)+len(outRight))
	for i, n := range leftNames {
		s := takeSeries(lt.df.Col(n), li)
		if rn, ok := shared[n]; ok {
			s = coalesceKey(s, rt.df.Col(rn), li, ri)
		}
		s.Name = outLeft[i]
		cols = append(cols, s)
	}
	for i, n := range rightCols {
		s := takeSeries(rt.df.Col(n), ri)
		s.Name = outRight[i]
		cols = append(cols, s)
	}
	return New(cols...)
}

// coalesceKey fills the key values of right-only rows from the right side
func coalesceKey(left, right series.Series, li, ri []int) series.Series {
	needed := false
	for _, i := range li {
		if i < 0 {
			needed = true
			break
		}
	}
	if !needed {
		return left
	}
	vals := make([]interface{}, len(li))
	for k := range li {
		switch {
		case li[k] >= 0:
			vals[k] = elemValue(left, k)
		case ri[k] >= 0:
			vals[k] = elemValue(right, ri[k])
		}
	}
	return newSeries(left.Name, vals, left.Type())
}

// JoinSemi keeps the left rows that have a match on the right, with left
// columns only
func (t *Tibble) JoinSemi(right *Tibble, opts ...JoinOption) (*Tibble, error) {
	return t.filterJoin("join semi", right, opts, true)
}

// JoinAnti keeps the left rows without a match on the right, with left
// columns only
func (t *Tibble) JoinAnti(right *Tibble, opts ...JoinOption) (*Tibble, error) {
	return t.filterJoin("join anti", right, opts, false)
}

func (t *Tibble) filterJoin(verb string, right *Tibble, opts []JoinOption, keep bool) (*Tibble, error) {
	cfg := newJoinConfig(opts)
	lkeys, rkeys, err := cfg.joinKeys(verb, t, right)
	if err != nil {
		return nil, err
	}

	present := make(map[string]struct{})
	for _, k := range right.rowKeys(rkeys) {
		present[k] = struct{}{}
	}
	var idx []int
	for i, k := range t.rowKeys(lkeys) {
		if _, ok := present[k]; ok == keep {
			idx = append(idx, i)
		}
	}
	return t.subset(idx)
}
