package output

import (
	"bytes"
	"strings"
	"testing"

	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vegasq/tibble/tibble"
)

func TestJSONFormatter_Format(t *testing.T) {
	tests := []struct {
		name string
		in   *tibble.Tibble
		want string
	}{
		{
			name: "no rows",
			in:   tibble.Empty(),
			want: "",
		},
		{
			name: "ordered keys and null",
			in: mustTibble(t, []string{"b", "a", "c", "f"},
				[]interface{}{1, nil},
				[]interface{}{"x", "y"},
				[]interface{}{true, false},
				[]interface{}{1.5, 2.0},
			),
			want: `{"b":1,"a":"x","c":true,"f":1.5}` + "\n" +
				`{"b":null,"a":"y","c":false,"f":2}` + "\n",
		},
		{
			name: "escaping",
			in:   mustTibble(t, []string{"say \"hi\""}, []interface{}{"line\nbreak"}),
			want: `{"say \"hi\"":"line\nbreak"}` + "\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, NewJSONFormatter(&buf).Format(tt.in))
			assert.Equal(t, tt.want, buf.String())
		})
	}
}

func TestJSONFormatter_ValidLines(t *testing.T) {
	in := mustTibble(t, []string{"id", "name"}, []interface{}{1, 2, 3}, []interface{}{"a", "b", nil})

	var buf bytes.Buffer
	require.NoError(t, NewJSONFormatter(&buf).Format(in))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)
	for i, line := range lines {
		var obj map[string]interface{}
		require.NoError(t, json.Unmarshal([]byte(line), &obj), "line %d", i)
		assert.Contains(t, obj, "id")
		assert.Contains(t, obj, "name")
	}
}
