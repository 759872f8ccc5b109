package tibble

import (
	"errors"
	"math/rand"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sales(t *testing.T) *Tibble {
	return mustColumns(t, []string{"id", "cat", "v", "w"},
		[]interface{}{1, 2, 3, 4, 5, 6},
		[]interface{}{"A", "B", "A", "C", "A", "B"},
		[]interface{}{3.0, 1.0, nil, 5.0, 2.0, 4.0},
		[]interface{}{10, 20, 30, 40, 50, 60},
	)
}

func TestSelectDrop(t *testing.T) {
	tb := sales(t)

	tests := []struct {
		name string
		cols []string
	}{
		{"none", nil},
		{"one", []string{"v"}},
		{"reordered", []string{"w", "id"}},
		{"all", []string{"id", "cat", "v", "w"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sel, err := tb.Select(tt.cols...)
			require.NoError(t, err)
			drop, err := tb.Drop(tt.cols...)
			require.NoError(t, err)

			if len(tt.cols) > 0 {
				assert.Equal(t, tt.cols, sel.Names())
			}
			for _, n := range sel.Names() {
				assert.NotContains(t, drop.Names(), n)
			}
			assert.ElementsMatch(t, tb.Names(), append(sel.Names(), drop.Names()...))
		})
	}

	t.Run("missing columns", func(t *testing.T) {
		_, err := tb.Select("x", "id", "y")
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrColumnNotFound))
		assert.Equal(t, "select: column not found: [x y]", err.Error())

		_, err = tb.Drop("nope")
		assert.True(t, errors.Is(err, ErrColumnNotFound))
	})

	t.Run("duplicate selection", func(t *testing.T) {
		_, err := tb.Select("id", "id")
		assert.True(t, errors.Is(err, ErrInvalidValue))
	})
}

func TestRename(t *testing.T) {
	tb := mustColumns(t, []string{"a", "b"},
		[]interface{}{1, 2},
		[]interface{}{"x", "y"},
	)

	t.Run("simple", func(t *testing.T) {
		out, err := tb.Rename(map[string]string{"alpha": "a"})
		require.NoError(t, err)
		assert.Equal(t, []string{"alpha", "b"}, out.Names())
		assert.Equal(t, []interface{}{1, 2}, column(t, out, "alpha"))
	})

	t.Run("swap", func(t *testing.T) {
		out, err := tb.Rename(map[string]string{"a": "b", "b": "a"})
		require.NoError(t, err)
		assert.Equal(t, []string{"b", "a"}, out.Names())
		assert.Equal(t, []interface{}{1, 2}, column(t, out, "b"))
		assert.Equal(t, []interface{}{"x", "y"}, column(t, out, "a"))
	})

	t.Run("missing", func(t *testing.T) {
		_, err := tb.Rename(map[string]string{"c": "zzz"})
		assert.True(t, errors.Is(err, ErrColumnNotFound))
	})

	t.Run("collision", func(t *testing.T) {
		_, err := tb.Rename(map[string]string{"b": "a"})
		assert.True(t, errors.Is(err, ErrInvalidValue))
	})
}

func TestFilter(t *testing.T) {
	tb := sales(t)

	tests := []struct {
		name string
		pred Computation
		want []interface{}
	}{
		{"comparison", Expr("$w > 30"), []interface{}{4, 5, 6}},
		{"NA is false", Expr("$v >= 2"), []interface{}{1, 4, 5, 6}},
		{"logical", Expr("$cat == 'A' & $w < 50"), []interface{}{1, 3}},
		{"membership", Expr("isin($cat, ['B', 'C'])"), []interface{}{2, 4, 6}},
		{"negated membership", Expr("notin($cat, ['B', 'C'])"), []interface{}{1, 3, 5}},
		{"func", Func(func(t *Tibble) (interface{}, error) {
			ids, err := t.Column("id")
			if err != nil {
				return nil, err
			}
			mask := make([]bool, len(ids))
			for i, id := range ids {
				mask[i] = id.(int)%2 == 0
			}
			return mask, nil
		}), []interface{}{2, 4, 6}},
		{"scalar broadcast", Expr("true"), []interface{}{1, 2, 3, 4, 5, 6}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := tb.Filter(tt.pred)
			require.NoError(t, err)
			assert.Equal(t, tb.Names(), out.Names())
			assert.Equal(t, tt.want, column(t, out, "id"))
		})
	}

	t.Run("no rows kept", func(t *testing.T) {
		out, err := tb.Filter(Expr("$w > 1000"))
		require.NoError(t, err)
		assert.Equal(t, 0, out.Nrow())
		assert.Equal(t, tb.Names(), out.Names())
	})

	t.Run("non-boolean", func(t *testing.T) {
		_, err := tb.Filter(Expr("$w + 1"))
		assert.True(t, errors.Is(err, ErrInvalidValue))
	})

	t.Run("unknown column", func(t *testing.T) {
		_, err := tb.Filter(Expr("$nope > 1"))
		assert.True(t, errors.Is(err, ErrColumnNotFound))
	})
}

func TestOmitNA(t *testing.T) {
	out, err := sales(t).OmitNA()
	require.NoError(t, err)
	assert.Equal(t, []interface{}{1, 2, 4, 5, 6}, column(t, out, "id"))
}

func TestArrange(t *testing.T) {
	tb := sales(t)

	tests := []struct {
		name string
		cols []string
		want []interface{}
	}{
		{"ascending int", []string{"w"}, []interface{}{1, 2, 3, 4, 5, 6}},
		{"descending int", []string{"-w"}, []interface{}{6, 5, 4, 3, 2, 1}},
		{"NA last", []string{"v"}, []interface{}{2, 5, 1, 6, 4, 3}},
		{"stable on ties", []string{"cat"}, []interface{}{1, 3, 5, 2, 6, 4}},
		{"two keys", []string{"cat", "-w"}, []interface{}{5, 3, 1, 6, 2, 4}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := tb.Arrange(tt.cols...)
			require.NoError(t, err)
			assert.Equal(t, tt.want, column(t, out, "id"))
		})
	}

	t.Run("numeric column is non-decreasing", func(t *testing.T) {
		out, err := tb.Arrange("w")
		require.NoError(t, err)
		w := column(t, out, "w")
		ints := make([]int, len(w))
		for i, v := range w {
			ints[i] = v.(int)
		}
		assert.True(t, sort.IntsAreSorted(ints))
	})

	t.Run("no columns", func(t *testing.T) {
		_, err := tb.Arrange()
		assert.True(t, errors.Is(err, ErrInvalidArgument))
	})

	t.Run("missing column", func(t *testing.T) {
		_, err := tb.Arrange("-nope")
		assert.True(t, errors.Is(err, ErrColumnNotFound))
	})
}

func TestSliceHeadTail(t *testing.T) {
	tb := sales(t)
	ids := column(t, tb, "id")

	for _, n := range []int{0, 1, 3, 6, 10} {
		head, err := tb.SliceHead(n)
		require.NoError(t, err)
		tail, err := tb.SliceTail(n)
		require.NoError(t, err)

		k := min(n, len(ids))
		if k == 0 {
			assert.Equal(t, 0, head.Nrow())
			assert.Equal(t, 0, tail.Nrow())
			continue
		}
		assert.Equal(t, ids[:k], column(t, head, "id"))
		assert.Equal(t, ids[len(ids)-k:], column(t, tail, "id"))
	}

	_, err := tb.SliceHead(-1)
	assert.True(t, errors.Is(err, ErrInvalidValue))
}

func TestGroupedSlice(t *testing.T) {
	g, err := sales(t).GroupBy("cat")
	require.NoError(t, err)

	head, err := g.SliceHead(1)
	require.NoError(t, err)
	assert.Equal(t, []interface{}{1, 2, 4}, column(t, head, "id"))

	tail, err := g.SliceTail(1)
	require.NoError(t, err)
	assert.Equal(t, []interface{}{4, 5, 6}, column(t, tail, "id"))
}

func TestSliceSample(t *testing.T) {
	tb := sales(t)
	rng := rand.New(rand.NewSource(7))

	t.Run("n rows", func(t *testing.T) {
		out, err := tb.SliceSample(Sample{N: 4, Rand: rng})
		require.NoError(t, err)
		ids := column(t, out, "id")
		assert.Len(t, ids, 4)
		seen := make(map[interface{}]bool)
		for _, id := range ids {
			assert.False(t, seen[id], "row %v drawn twice", id)
			seen[id] = true
			assert.Contains(t, column(t, tb, "id"), id)
		}
	})

	t.Run("default draws one", func(t *testing.T) {
		out, err := tb.SliceSample(Sample{Rand: rng})
		require.NoError(t, err)
		assert.Equal(t, 1, out.Nrow())
	})

	t.Run("fraction per group", func(t *testing.T) {
		g, err := tb.GroupBy("cat")
		require.NoError(t, err)
		out, err := g.SliceSample(Sample{Frac: 1, Rand: rng})
		require.NoError(t, err)
		assert.Equal(t, tb.Nrow(), out.Nrow())
		assert.ElementsMatch(t, column(t, tb, "id"), column(t, out, "id"))
	})

	t.Run("errors", func(t *testing.T) {
		_, err := tb.SliceSample(Sample{N: 1, Frac: 0.5})
		assert.True(t, errors.Is(err, ErrInvalidValue))
		_, err = tb.SliceSample(Sample{N: 7})
		assert.True(t, errors.Is(err, ErrInvalidValue))
		_, err = tb.SliceSample(Sample{N: -1})
		assert.True(t, errors.Is(err, ErrInvalidValue))
	})
}

func TestTable(t *testing.T) {
	tb := mustColumns(t, []string{"cat", "flag"},
		[]interface{}{"B", "A", "A", "C", "B", "A", nil},
		[]interface{}{"y", "x", "y", "x", "x", "x", "x"},
	)

	t.Run("row only", func(t *testing.T) {
		out, err := tb.Table("cat", "")
		require.NoError(t, err)
		assert.Equal(t, []string{"cat", "count"}, out.Names())
		assert.Equal(t, []interface{}{"A", "B", "C"}, column(t, out, "cat"))
		assert.Equal(t, []interface{}{3, 2, 1}, column(t, out, "count"))
	})

	t.Run("ties keep first appearance", func(t *testing.T) {
		ties := mustColumns(t, []string{"k"}, []interface{}{"z", "y", "y", "z", "x"})
		out, err := ties.Table("k", "")
		require.NoError(t, err)
		assert.Equal(t, []interface{}{"z", "y", "x"}, column(t, out, "k"))
	})

	t.Run("col only", func(t *testing.T) {
		out, err := tb.Table("", "cat")
		require.NoError(t, err)
		assert.Equal(t, []string{"A", "B", "C"}, out.Names())
		assert.Equal(t, 1, out.Nrow())
		assert.Equal(t, []interface{}{3}, column(t, out, "A"))
	})

	t.Run("crosstab", func(t *testing.T) {
		out, err := tb.Table("cat", "flag")
		require.NoError(t, err)
		assert.Equal(t, []string{"cat", "x", "y"}, out.Names())
		assert.Equal(t, []interface{}{"A", "B", "C"}, column(t, out, "cat"))
		assert.Equal(t, []interface{}{2, 1, 1}, column(t, out, "x"))
		assert.Equal(t, []interface{}{1, 1, 0}, column(t, out, "y"))
	})

	t.Run("neither", func(t *testing.T) {
		_, err := tb.Table("", "")
		assert.True(t, errors.Is(err, ErrInvalidArgument))
	})

	t.Run("missing", func(t *testing.T) {
		_, err := tb.Table("nope", "")
		assert.True(t, errors.Is(err, ErrColumnNotFound))
	})
}
