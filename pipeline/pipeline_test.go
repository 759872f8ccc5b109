package pipeline

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/vegasq/tibble/reader"
	"github.com/vegasq/tibble/tibble"
)

const salesCSV = "id,cat,v\n1,A,3\n2,B,1\n3,A,\n4,C,5\n5,A,2\n6,B,4\n"

// salesDir writes sales.csv and labels.csv to a temp directory
func salesDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "sales.csv"), []byte(salesCSV), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "labels.csv"), []byte("cat,label\nA,alpha\nB,beta\n"), 0o644))
	return dir
}

func TestParse(t *testing.T) {
	p, err := Parse([]byte(`
name: demo
input: data.csv
steps:
  - filter: "$v > 1"
  - mutate: {b: "$id * 2", a: "$id + 1"}
    groupby: [cat]
  - arrange: [-v, id]
  - omit_na:
output: out.parquet
`))
	require.NoError(t, err)
	assert.Equal(t, "demo", p.Name)
	assert.Equal(t, "data.csv", p.Input)
	assert.Equal(t, "out.parquet", p.Output)

	require.Len(t, p.Steps, 4)
	verbs := make([]string, len(p.Steps))
	for i, s := range p.Steps {
		verbs[i] = s.Verb
	}
	assert.Equal(t, []string{"filter", "mutate", "arrange", "omit_na"}, verbs)
	assert.Equal(t, []string{"cat"}, p.Steps[1].GroupBy)
	assert.Empty(t, p.Steps[0].GroupBy)
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		want string
	}{
		{"empty document", "", "empty document"},
		{"no input", "steps: []\n", "no input"},
		{"unknown verb", "input: a.csv\nsteps:\n  - explode: [x]\n", `unknown verb "explode"`},
		{"two verbs", "input: a.csv\nsteps:\n  - select: [x]\n    drop: [y]\n", `both "select" and "drop"`},
		{"no verb", "input: a.csv\nsteps:\n  - groupby: [x]\n", "names no verb"},
		{"groupby on select", "input: a.csv\nsteps:\n  - select: [x]\n    groupby: [y]\n", "select does not take groupby"},
		{"step not a mapping", "input: a.csv\nsteps:\n  - select\n", "step must be a mapping"},
		{"unknown field", "input: a.csv\nsink: b.csv\n", "sink"},
		{"bad yaml", "input: [a.csv\n", "failed to parse YAML"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.doc))
			assert.ErrorContains(t, err, tt.want)
		})
	}
}

func TestSubstituteEnvVars(t *testing.T) {
	t.Setenv("TIBBLE_TEST_DIR", "/data")
	t.Setenv("TIBBLE_TEST_NESTED", "${TIBBLE_TEST_DIR}")

	tests := []struct {
		in   string
		want string
	}{
		{"input: ${TIBBLE_TEST_DIR}/x.csv", "input: /data/x.csv"},
		{"${TIBBLE_TEST_DIR}${TIBBLE_TEST_DIR}", "/data/data"},
		{"${TIBBLE_TEST_UNSET}x", "x"},
		{"${TIBBLE_TEST_NESTED}", "${TIBBLE_TEST_DIR}"},
		{"open ${TIBBLE_TEST_DIR", "open ${TIBBLE_TEST_DIR"},
		{"filter: $v > 1", "filter: $v > 1"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, substituteEnvVars(tt.in))
		})
	}
}

func TestApply(t *testing.T) {
	dir := salesDir(t)
	sales, err := reader.ReadFile(context.Background(), filepath.Join(dir, "sales.csv"))
	require.NoError(t, err)

	tests := []struct {
		name  string
		steps string
		names []string
		check func(t *testing.T, out *tibble.Tibble)
	}{
		{
			name:  "select",
			steps: "- select: [cat, id]",
			names: []string{"cat", "id"},
		},
		{
			name:  "drop single name",
			steps: "- drop: v",
			names: []string{"id", "cat"},
		},
		{
			name:  "rename",
			steps: "- rename: {cat: category}",
			names: []string{"id", "category", "v"},
		},
		{
			name:  "rename swap",
			steps: "- rename: {cat: v, v: cat}",
			check: func(t *testing.T, out *tibble.Tibble) {
				assert.Equal(t, []string{"id", "v", "cat"}, out.Names())
				assert.Equal(t, []interface{}{"A", "B", "A", "C", "A", "B"}, column(t, out, "v"))
			},
		},
		{
			name:  "filter drops NA",
			steps: `- filter: "$v > 2"`,
			check: func(t *testing.T, out *tibble.Tibble) {
				assert.Equal(t, []interface{}{1, 4, 6}, column(t, out, "id"))
			},
		},
		{
			name:  "omit_na",
			steps: "- omit_na: true",
			check: func(t *testing.T, out *tibble.Tibble) {
				assert.Equal(t, []interface{}{1, 2, 4, 5, 6}, column(t, out, "id"))
			},
		},
		{
			name:  "arrange descending",
			steps: "- arrange: [-v]",
			check: func(t *testing.T, out *tibble.Tibble) {
				assert.Equal(t, []interface{}{4, 6, 1, 5, 2, 3}, column(t, out, "id"))
			},
		},
		{
			name:  "grouped slice_head",
			steps: "- slice_head: 1\n  groupby: cat",
			check: func(t *testing.T, out *tibble.Tibble) {
				assert.Equal(t, []interface{}{1, 2, 4}, column(t, out, "id"))
			},
		},
		{
			name:  "slice_tail",
			steps: "- slice_tail: 2",
			check: func(t *testing.T, out *tibble.Tibble) {
				assert.Equal(t, []interface{}{5, 6}, column(t, out, "id"))
			},
		},
		{
			name:  "seeded slice_sample",
			steps: "- slice_sample: {n: 1, seed: 7}\n  groupby: [cat]",
			check: func(t *testing.T, out *tibble.Tibble) {
				assert.Equal(t, []interface{}{"A", "B", "C"}, column(t, out, "cat"))
			},
		},
		{
			name:  "mutate keeps mapping order",
			steps: `- mutate: {b: "$id * 2", a: "$b + 1"}`,
			names: []string{"id", "cat", "v", "b", "a"},
			check: func(t *testing.T, out *tibble.Tibble) {
				assert.Equal(t, []interface{}{3, 5, 7, 9, 11, 13}, column(t, out, "a"))
			},
		},
		{
			name:  "grouped summarize",
			steps: "- summarize: {n: \"n()\", mu: \"mean($v)\"}\n  groupby: [cat]",
			names: []string{"cat", "n", "mu"},
			check: func(t *testing.T, out *tibble.Tibble) {
				assert.Equal(t, []map[string]interface{}{
					{"cat": "A", "n": 3, "mu": 2.5},
					{"cat": "B", "n": 2, "mu": 2.5},
					{"cat": "C", "n": 1, "mu": 5.0},
				}, out.Rows())
			},
		},
		{
			name:  "grouped filter",
			steps: "- filter: \"$id == max($id)\"\n  groupby: [cat]",
			check: func(t *testing.T, out *tibble.Tibble) {
				assert.Equal(t, []interface{}{5, 6, 4}, column(t, out, "id"))
			},
		},
		{
			name:  "table",
			steps: "- table: cat",
			names: []string{"cat", "count"},
			check: func(t *testing.T, out *tibble.Tibble) {
				assert.Equal(t, []interface{}{3, 2, 1}, column(t, out, "count"))
			},
		},
		{
			name:  "keys",
			steps: "- keys:\n  groupby: [cat]",
			names: []string{"cat"},
			check: func(t *testing.T, out *tibble.Tibble) {
				assert.Equal(t, []interface{}{"A", "B", "C"}, column(t, out, "cat"))
			},
		},
		{
			name:  "left join from file",
			steps: "- join: {how: left, with: labels.csv, on: [cat]}",
			names: []string{"id", "cat", "v", "label"},
			check: func(t *testing.T, out *tibble.Tibble) {
				assert.Equal(t, []interface{}{"alpha", "beta", "alpha", nil, "alpha", "beta"}, column(t, out, "label"))
			},
		},
		{
			name:  "semi join",
			steps: "- join: {how: semi, with: labels.csv, on: [cat]}",
			check: func(t *testing.T, out *tibble.Tibble) {
				assert.Equal(t, []interface{}{1, 2, 3, 5, 6}, column(t, out, "id"))
			},
		},
		{
			name: "pivot round trip",
			steps: "- select: [id, v]\n" +
				"- pivot_longer: {id_vars: [id], names_to: key, values_to: val}\n" +
				"- pivot_wider: {names_from: key, values_from: val}",
			names: []string{"id", "v"},
			check: func(t *testing.T, out *tibble.Tibble) {
				assert.Equal(t, []interface{}{3, 1, nil, 5, 2, 4}, column(t, out, "v"))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := Parse([]byte("input: sales.csv\nsteps:\n" + indent(tt.steps)))
			require.NoError(t, err)
			p.Dir = dir

			out, err := p.Apply(context.Background(), sales, nil)
			require.NoError(t, err)
			if tt.names != nil {
				assert.Equal(t, tt.names, out.Names())
			}
			if tt.check != nil {
				tt.check(t, out)
			}
		})
	}
}

func TestApplyErrors(t *testing.T) {
	dir := salesDir(t)
	sales, err := reader.ReadFile(context.Background(), filepath.Join(dir, "sales.csv"))
	require.NoError(t, err)

	tests := []struct {
		name  string
		steps string
		want  string
	}{
		{"missing column", "- select: [nope]", "step 1 (select)"},
		{"rename to one name twice", "- rename: {id: x, cat: x}", "both renamed to \"x\""},
		{"rename missing column", "- rename: {nope: x}", "column not found"},
		{"bad expression", `- filter: "$v >"`, "step 1 (filter)"},
		{"mutate needs a mapping", "- mutate: [a]", "expected a mapping"},
		{"unknown join", "- join: {how: sideways, with: labels.csv, on: [cat]}", `unknown join "sideways"`},
		{"join without file", "- join: {on: [cat]}", "needs a with file"},
		{"bad suffix", "- join: {with: labels.csv, on: [cat], suffix: [_x]}", "suffix takes two values"},
		{"table with three columns", "- table: [id, cat, v]", "one or two columns"},
		{"second step fails", "- select: [id]\n- arrange: [cat]", "step 2 (arrange)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := Parse([]byte("input: sales.csv\nsteps:\n" + indent(tt.steps)))
			require.NoError(t, err)
			p.Dir = dir

			_, err = p.Apply(context.Background(), sales, nil)
			assert.ErrorContains(t, err, tt.want)
		})
	}

	t.Run("canceled", func(t *testing.T) {
		p, err := Parse([]byte("input: sales.csv\nsteps:\n  - omit_na:\n"))
		require.NoError(t, err)
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err = p.Apply(ctx, sales, nil)
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestRun(t *testing.T) {
	dir := salesDir(t)
	doc := "input: sales.csv\n" +
		"steps:\n" +
		"  - omit_na:\n" +
		"  - summarize: {total: \"sum($v)\"}\n" +
		"    groupby: [cat]\n" +
		"output: out/summary.csv\n"
	require.NoError(t, os.Mkdir(filepath.Join(dir, "out"), 0o755))
	path := filepath.Join(dir, "summary.yaml")
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o644))

	p, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "summary", p.Name)

	core, logs := observer.New(zapcore.DebugLevel)
	out, err := Run(context.Background(), p, zap.New(core))
	require.NoError(t, err)

	want := []map[string]interface{}{
		{"cat": "A", "total": 5},
		{"cat": "B", "total": 5},
		{"cat": "C", "total": 5},
	}
	assert.Equal(t, want, out.Rows())

	written, err := reader.ReadFile(context.Background(), filepath.Join(dir, "out", "summary.csv"))
	require.NoError(t, err)
	assert.Equal(t, want, written.Rows())

	steps := logs.FilterMessage("step applied").All()
	require.Len(t, steps, 2)
	assert.Equal(t, "summarize", steps[1].ContextMap()["verb"])
	assert.Equal(t, int64(3), steps[1].ContextMap()["rows"])
	assert.Equal(t, "summary", steps[1].ContextMap()["pipeline"])
	assert.Equal(t, 1, logs.FilterMessage("output written").Len())
}

func TestRunMissingInput(t *testing.T) {
	p := &Pipeline{Input: "nope.csv", Dir: t.TempDir()}
	_, err := Run(context.Background(), p, nil)
	assert.ErrorContains(t, err, "failed to read input")
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorContains(t, err, "failed to read pipeline file")
}

func indent(steps string) string {
	var out []byte
	line := []byte("  ")
	for i := 0; i < len(steps); i++ {
		line = append(line, steps[i])
		if steps[i] == '\n' {
			out = append(out, line...)
			line = []byte("  ")
		}
	}
	return string(append(append(out, line...), '\n'))
}

func column(t *testing.T, tb *tibble.Tibble, name string) []interface{} {
	t.Helper()
	vals, err := tb.Column(name)
	require.NoError(t, err)
	return vals
}
