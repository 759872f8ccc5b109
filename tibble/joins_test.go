package tibble

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func joinSides(t *testing.T) (*Tibble, *Tibble) {
	left := mustColumns(t, []string{"id", "x"},
		[]interface{}{1, 2, 3},
		[]interface{}{"a", "b", "c"},
	)
	right := mustColumns(t, []string{"id", "y"},
		[]interface{}{1, 1, 4},
		[]interface{}{10, 20, 40},
	)
	return left, right
}

func TestEquiJoins(t *testing.T) {
	left, right := joinSides(t)

	tests := []struct {
		name string
		join func(*Tibble, ...JoinOption) (*Tibble, error)
		id   []interface{}
		x    []interface{}
		y    []interface{}
	}{
		{"left", left.JoinLeft,
			[]interface{}{1, 1, 2, 3},
			[]interface{}{"a", "a", "b", "c"},
			[]interface{}{10, 20, nil, nil}},
		{"inner", left.JoinInner,
			[]interface{}{1, 1},
			[]interface{}{"a", "a"},
			[]interface{}{10, 20}},
		{"right", left.JoinRight,
			[]interface{}{1, 1, 4},
			[]interface{}{"a", "a", nil},
			[]interface{}{10, 20, 40}},
		{"outer", left.JoinOuter,
			[]interface{}{1, 1, 2, 3, 4},
			[]interface{}{"a", "a", "b", "c", nil},
			[]interface{}{10, 20, nil, nil, 40}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := tt.join(right, On("id"))
			require.NoError(t, err)
			assert.Equal(t, []string{"id", "x", "y"}, out.Names())
			assert.Equal(t, tt.id, column(t, out, "id"))
			assert.Equal(t, tt.x, column(t, out, "x"))
			assert.Equal(t, tt.y, column(t, out, "y"))
		})
	}

	t.Run("common columns by default", func(t *testing.T) {
		out, err := left.JoinInner(right)
		require.NoError(t, err)
		assert.Equal(t, []interface{}{1, 1}, column(t, out, "id"))
	})

	t.Run("differently named keys", func(t *testing.T) {
		r, err := right.Rename(map[string]string{"rid": "id"})
		require.NoError(t, err)
		out, err := left.JoinLeft(r, OnLeft("id"), OnRight("rid"))
		require.NoError(t, err)
		assert.Equal(t, []string{"id", "x", "rid", "y"}, out.Names())
		assert.Equal(t, []interface{}{1, 1, nil, nil}, column(t, out, "rid"))
	})

	t.Run("NA keys match", func(t *testing.T) {
		l := mustColumns(t, []string{"k", "a"}, []interface{}{1, nil}, []interface{}{"p", "q"})
		r := mustColumns(t, []string{"k", "b"}, []interface{}{nil}, []interface{}{9})
		out, err := l.JoinInner(r, On("k"))
		require.NoError(t, err)
		assert.Equal(t, []interface{}{"q"}, column(t, out, "a"))
		assert.Equal(t, []interface{}{9}, column(t, out, "b"))
	})
}

func TestJoinSuffixes(t *testing.T) {
	left := mustColumns(t, []string{"k", "v"}, []interface{}{1, 2}, []interface{}{"l1", "l2"})
	right := mustColumns(t, []string{"k", "v"}, []interface{}{2, 1}, []interface{}{"r2", "r1"})

	tests := []struct {
		name  string
		opts  []JoinOption
		names []string
	}{
		{"default", []JoinOption{On("k")}, []string{"k", "v", "v_y"}},
		{"both", []JoinOption{On("k"), Suffix("_x", "_y")}, []string{"k", "v_x", "v_y"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := left.JoinLeft(right, tt.opts...)
			require.NoError(t, err)
			assert.Equal(t, tt.names, out.Names())
			assert.Equal(t, []interface{}{"r1", "r2"}, column(t, out, tt.names[2]))
		})
	}

	t.Run("identical suffixes", func(t *testing.T) {
		_, err := left.JoinLeft(right, On("k"), Suffix("", ""))
		assert.True(t, errors.Is(err, ErrInvalidValue))
	})
}

func TestJoinKeyErrors(t *testing.T) {
	left, right := joinSides(t)

	tests := []struct {
		name string
		opts []JoinOption
		want error
	}{
		{"on with pair", []JoinOption{On("id"), OnLeft("id"), OnRight("id")}, ErrInvalidValue},
		{"left without right", []JoinOption{OnLeft("id")}, ErrInvalidValue},
		{"missing left key", []JoinOption{On("nope")}, ErrColumnNotFound},
		{"missing right key", []JoinOption{OnLeft("id"), OnRight("x")}, ErrColumnNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := left.JoinInner(right, tt.opts...)
			assert.True(t, errors.Is(err, tt.want), "got %v", err)
		})
	}

	t.Run("nothing in common", func(t *testing.T) {
		other := mustColumns(t, []string{"z"}, []interface{}{1})
		_, err := left.JoinLeft(other)
		assert.True(t, errors.Is(err, ErrInvalidValue))
	})
}

func TestFilterJoins(t *testing.T) {
	left, right := joinSides(t)

	semi, err := left.JoinSemi(right, On("id"))
	require.NoError(t, err)
	anti, err := left.JoinAnti(right, On("id"))
	require.NoError(t, err)

	assert.Equal(t, []string{"id", "x"}, semi.Names())
	assert.Equal(t, []interface{}{1}, column(t, semi, "id"))
	assert.Equal(t, []interface{}{2, 3}, column(t, anti, "id"))
	assert.LessOrEqual(t, semi.Nrow(), left.Nrow())
	assert.Equal(t, left.Nrow(), semi.Nrow()+anti.Nrow())
}

func TestJoinFuzzy(t *testing.T) {
	left := mustColumns(t, []string{"t", "x"},
		[]interface{}{10, 1, 5},
		[]interface{}{"c", "a", "b"},
	)
	right := mustColumns(t, []string{"t", "val"},
		[]interface{}{6, 2},
		[]interface{}{"b6", "a2"},
	)

	tests := []struct {
		direction Direction
		ty        []interface{}
		val       []interface{}
	}{
		{Nearest, []interface{}{2, 6, 6}, []interface{}{"a2", "b6", "b6"}},
		{Backward, []interface{}{nil, 2, 6}, []interface{}{nil, "a2", "b6"}},
		{Forward, []interface{}{2, 6, nil}, []interface{}{"a2", "b6", nil}},
	}

	for _, tt := range tests {
		t.Run(tt.direction.String(), func(t *testing.T) {
			out, err := left.JoinFuzzy(right, On("t"), WithDirection(tt.direction))
			require.NoError(t, err)
			assert.Equal(t, []string{"t", "x", "t_y", "val"}, out.Names())
			assert.Equal(t, []interface{}{1, 5, 10}, column(t, out, "t"))
			assert.Equal(t, []interface{}{"a", "b", "c"}, column(t, out, "x"))
			assert.Equal(t, tt.ty, column(t, out, "t_y"))
			assert.Equal(t, tt.val, column(t, out, "val"))
		})
	}

	t.Run("ties go backward", func(t *testing.T) {
		l := mustColumns(t, []string{"t"}, []interface{}{4})
		out, err := l.JoinFuzzy(right, On("t"))
		require.NoError(t, err)
		assert.Equal(t, []interface{}{"a2"}, column(t, out, "val"))
	})

	t.Run("by columns", func(t *testing.T) {
		l := mustColumns(t, []string{"g", "t"},
			[]interface{}{"a", "b"},
			[]interface{}{5, 5},
		)
		r := mustColumns(t, []string{"g", "t", "val"},
			[]interface{}{"a", "b"},
			[]interface{}{4, 7},
			[]interface{}{"r1", "r2"},
		)
		out, err := l.JoinFuzzy(r, On("t"), By("g"))
		require.NoError(t, err)
		assert.Equal(t, []string{"g", "t", "t_y", "val"}, out.Names())
		assert.Equal(t, []interface{}{4, 7}, column(t, out, "t_y"))
		assert.Equal(t, []interface{}{"r1", "r2"}, column(t, out, "val"))
	})

	t.Run("distinct key names", func(t *testing.T) {
		r, err := right.Rename(map[string]string{"rt": "t"})
		require.NoError(t, err)
		out, err := left.JoinFuzzy(r, OnLeft("t"), OnRight("rt"), WithDirection(Backward))
		require.NoError(t, err)
		assert.Equal(t, []string{"t", "x", "rt", "val"}, out.Names())
		assert.Equal(t, []interface{}{nil, 2, 6}, column(t, out, "rt"))
	})

	t.Run("non-numeric key", func(t *testing.T) {
		_, err := left.JoinFuzzy(mustColumns(t, []string{"x"}, []interface{}{"a"}), On("x"))
		assert.True(t, errors.Is(err, ErrInvalidValue))
	})

	t.Run("two keys", func(t *testing.T) {
		_, err := left.JoinFuzzy(left, On("t", "x"))
		assert.True(t, errors.Is(err, ErrInvalidValue))
	})
}

func TestParseDirection(t *testing.T) {
	for _, d := range []Direction{Nearest, Backward, Forward} {
		got, err := ParseDirection(d.String())
		require.NoError(t, err)
		assert.Equal(t, d, got)
	}
	_, err := ParseDirection("sideways")
	assert.True(t, errors.Is(err, ErrInvalidValue))
}
