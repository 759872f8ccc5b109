package output

import (
	"bytes"
	"encoding/csv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vegasq/tibble/tibble"
)

func mustTibble(t *testing.T, names []string, cols ...[]interface{}) *tibble.Tibble {
	t.Helper()
	tb, err := tibble.FromColumns(names, cols)
	require.NoError(t, err)
	return tb
}

func TestCSVFormatter_Format(t *testing.T) {
	tests := []struct {
		name string
		in   *tibble.Tibble
		want string
	}{
		{
			name: "no columns",
			in:   tibble.Empty(),
			want: "",
		},
		{
			name: "header only",
			in:   mustTibble(t, []string{"b", "a"}, []interface{}{}, []interface{}{}),
			want: "b,a\n",
		},
		{
			name: "column order and NA",
			in: mustTibble(t, []string{"z_last", "a_first", "v"},
				[]interface{}{1, 2},
				[]interface{}{"x", nil},
				[]interface{}{-1.5, 2.0},
			),
			want: "z_last,a_first,v\n1,x,-1.5\n2,,2\n",
		},
		{
			name: "formula injection",
			in:   mustTibble(t, []string{"cell"}, []interface{}{"=SUM(A1)", "@cmd", "ok"}),
			want: "cell\n'=SUM(A1)\n'@cmd\nok\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, NewCSVFormatter(&buf).Format(tt.in))
			assert.Equal(t, tt.want, buf.String())
		})
	}
}

func TestCSVFormatter_ValidCSV(t *testing.T) {
	in := mustTibble(t, []string{"text"}, []interface{}{"has,comma", "has \"quote\"", "multi\nline"})

	var buf bytes.Buffer
	require.NoError(t, NewCSVFormatter(&buf).Format(in))

	records, err := csv.NewReader(strings.NewReader(buf.String())).ReadAll()
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"text"}, {"has,comma"}, {"has \"quote\""}, {"multi\nline"}}, records)
}

func TestSanitize(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"", ""},
		{"plain", "plain"},
		{"=1+1", "'=1+1"},
		{"+cmd", "'+cmd"},
		{"-x", "'-x"},
		{"@a'b", "'@a''b"},
		{"|pipe", "'|pipe"},
		{"\tTab", "'\tTab"},
		{"-5", "-5"},
		{"-1.5e3", "-1.5e3"},
		{"+7", "+7"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, sanitize(tt.in))
		})
	}
}

func TestCSVFormatter_SetOutput(t *testing.T) {
	var buf1, buf2 bytes.Buffer
	formatter := NewCSVFormatter(&buf1)
	in := mustTibble(t, []string{"id"}, []interface{}{1})

	require.NoError(t, formatter.Format(in))
	formatter.SetOutput(&buf2)
	require.NoError(t, formatter.Format(in))

	assert.Equal(t, "id\n1\n", buf1.String())
	assert.Equal(t, buf1.String(), buf2.String())
}
