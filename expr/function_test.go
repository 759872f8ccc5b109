package expr

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAggregateFunctions(t *testing.T) {
	tests := []struct {
		src  string
		want interface{}
	}{
		{"sum($a)", int64(6)},
		{"sum($b)", 6.0},
		{"mean($b)", 3.0},
		{"n()", int64(3)},
		{"median($a)", 2.0},
		{"sd($a)", 1.0},
		{"var($a)", 1.0},
		{"quantile($a, 0.25)", 1.5},
		{"min($s)", "x"},
		{"max($a)", 3},
		{"count($b)", int64(2)},
		{"n_distinct($s)", int64(3)},
		{"nth($a, -2)", 2},
		{"nth($a, 10, 0)", int64(0)},
		{"first($s)", "x"},
		{"last($b)", 4.0},
		{"mean($a) + 1", 3.0},
	}

	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			v := evalString(t, tt.src)
			require.False(t, v.IsVector())
			assert.Equal(t, tt.want, v.Scalar())
		})
	}
}

func TestAggregateEdgeCases(t *testing.T) {
	empty := MapFrame{N: 0, Cols: map[string][]interface{}{"x": {}}}

	tests := []struct {
		src  string
		want interface{}
	}{
		{"sum($x)", int64(0)},
		{"mean($x)", nil},
		{"median($x)", nil},
		{"sd($x)", nil},
		{"first($x)", nil},
		{"first($x, 'none')", "none"},
		{"n()", int64(0)},
	}

	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			prog, err := Compile(tt.src)
			require.NoError(t, err)
			v, err := prog.Eval(empty)
			require.NoError(t, err)
			assert.Equal(t, tt.want, v.Scalar())
		})
	}

	prog, err := Compile("quantile($a, 2)")
	require.NoError(t, err)
	_, err = prog.Eval(testFrame())
	assert.Error(t, err)
}

func TestWindowFunctions(t *testing.T) {
	tests := []struct {
		src  string
		want []interface{}
	}{
		{"lag($a)", []interface{}{int64(0), 1, 2}},
		{"lag($a, 1, -1)", []interface{}{int64(-1), 1, 2}},
		{"lead($a, 2)", []interface{}{3, int64(0), int64(0)}},
		{"lead($s)", []interface{}{"y", "z", ""}},
		{"cumsum($a)", []interface{}{int64(1), int64(3), int64(6)}},
		{"cumsum($b)", []interface{}{2.0, nil, 6.0}},
		{"cummax($b)", []interface{}{2.0, nil, 4.0}},
		{"cummin($s)", []interface{}{"x", "x", "x"}},
		{"row_number()", []interface{}{int64(1), int64(2), int64(3)}},
		{"rank($b)", []interface{}{int64(1), nil, int64(2)}},
		{"$s in ['x', 'z']", []interface{}{true, false, true}},
		{"$s not in ['x']", []interface{}{false, true, true}},
		{"$a in [1.0, 3]", []interface{}{true, false, true}},
		{"isna($b)", []interface{}{false, true, false}},
		{"notna($b)", []interface{}{true, false, true}},
	}

	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			v := evalString(t, tt.src)
			require.True(t, v.IsVector())
			assert.Equal(t, tt.want, v.Vector())
		})
	}
}

func TestRankTies(t *testing.T) {
	f := MapFrame{N: 4, Cols: map[string][]interface{}{"r": {3, 1, 3, 2}}}
	prog, err := Compile("rank($r)")
	require.NoError(t, err)
	v, err := prog.Eval(f)
	require.NoError(t, err)
	assert.Equal(t, []interface{}{int64(3), int64(1), int64(3), int64(2)}, v.Vector())
}

func TestLagFloatDefaultIsNA(t *testing.T) {
	v := evalString(t, "lag($b)")
	vals := v.Vector()
	assert.True(t, IsNA(vals[0]))
	assert.Equal(t, 2.0, vals[1])
	assert.Nil(t, vals[2])
}

func TestScalarFunctions(t *testing.T) {
	tests := []struct {
		src  string
		want interface{}
	}{
		{"upper('abc')", "ABC"},
		{"lower('ABC')", "abc"},
		{"concat('a', 1, true)", "a1true"},
		{"length('héllo')", int64(5)},
		{"trim('  x  ')", "x"},
		{"ltrim('  x ')", "x "},
		{"rtrim(' x  ')", " x"},
		{"substring('hello', 2, 3)", "ell"},
		{"substring('hello', 4)", "lo"},
		{"substring('hello', 9)", ""},
		{"replace('a-b-c', '-', '+')", "a+b+c"},
		{"reverse('abc')", "cba"},
		{"contains('hello', 'ell')", true},
		{"starts_with('hello', 'he')", true},
		{"ends_with('hello', 'x')", false},
		{"repeat('ab', 3)", "ababab"},
		{"abs(-3)", int64(3)},
		{"abs(-2.5)", 2.5},
		{"round(2.5)", 3.0},
		{"round(1.25, 1)", 1.3},
		{"floor(1.7)", 1.0},
		{"ceil(1.2)", 2.0},
		{"sqrt(16)", 4.0},
		{"sqrt(-1)", nil},
		{"log(0)", nil},
		{"mod(-7, 3)", int64(2)},
		{"pow(2, 10)", 1024.0},
		{"sign(-4.2)", int64(-1)},
		{"year('2024-03-15')", int64(2024)},
		{"month('2024-03-15')", int64(3)},
		{"day('2024-03-15')", int64(15)},
		{"date_diff('2024-03-15', '2024-03-01')", int64(14)},
		{"cast('42', 'int')", int64(42)},
		{"cast(3.9, 'int')", int64(3)},
		{"cast(1, 'string')", "1"},
		{"cast('true', 'bool')", true},
		{"try_cast('x', 'int')", nil},
		{"to_number('2.5')", 2.5},
		{"to_string(12)", "12"},
		{"nullif(1, 1)", nil},
		{"nullif(1, 2)", int64(1)},
		{"coalesce(null, null, 'x')", "x"},
		{"ifelse(null, 1, 2)", nil},
		{"upper(null)", nil},
	}

	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			v := evalString(t, tt.src)
			assert.Equal(t, tt.want, v.Scalar())
		})
	}
}

func TestScalarFunctionsBroadcast(t *testing.T) {
	tests := []struct {
		src  string
		want []interface{}
	}{
		{"ifelse($a > 1, 'big', 'small')", []interface{}{"small", "big", "big"}},
		{"coalesce($b, 0)", []interface{}{2.0, int64(0), 4.0}},
		{"pmax($a, 2)", []interface{}{int64(2), 2, 3}},
		{"pmin($b, 3)", []interface{}{2.0, nil, int64(3)}},
		{"upper($s)", []interface{}{"X", "Y", "Z"}},
		{"round($b / 3, 2)", []interface{}{0.67, nil, 1.33}},
	}

	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			v := evalString(t, tt.src)
			require.True(t, v.IsVector())
			assert.Equal(t, tt.want, v.Vector())
		})
	}
}

func TestFunctionErrors(t *testing.T) {
	for _, src := range []string{
		"cast('x', 'int')",
		"repeat('a', -1)",
		"year('not a date')",
		"upper($a, $b) ",
	} {
		t.Run(src, func(t *testing.T) {
			prog, err := Compile(src)
			if err != nil {
				return
			}
			_, err = prog.Eval(testFrame())
			assert.Error(t, err)
		})
	}
}

func TestRegistry(t *testing.T) {
	reg := GetGlobalRegistry()

	_, ok := reg.Get("UPPER")
	assert.True(t, ok)
	_, ok = reg.GetVector("Mean")
	assert.True(t, ok)
	_, ok = reg.Get("mean")
	assert.False(t, ok)

	names := reg.Names()
	assert.Contains(t, names, "n_distinct")
	assert.Contains(t, names, "starts_with")
	assert.IsNonDecreasing(t, names)
}

func TestHelpers(t *testing.T) {
	vals := []interface{}{1, nil, 3}

	assert.Equal(t, []bool{true, false, false}, IsIn(vals, []interface{}{1, nil}))
	assert.Equal(t, []bool{false, true, true}, NotIn(vals, []interface{}{1}))
	assert.True(t, NotNA(0))
	assert.Equal(t, 3, Last(vals, nil))
	assert.Equal(t, "d", Nth(vals, 5, "d"))
	assert.Equal(t, []interface{}{nil, 3, int64(0)}, Lead(vals, 1, int64(0)))
	assert.Equal(t, []interface{}{"-", 1, nil}, Lag(vals, 1, "-"))

	assert.Equal(t, "", WindowDefault([]interface{}{"a", nil}))
	assert.Equal(t, false, WindowDefault([]interface{}{true}))
	assert.Equal(t, int64(0), WindowDefault([]interface{}{1, "a"}))
}
