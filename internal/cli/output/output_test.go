package output

import (
	"bytes"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type lookupRow struct {
	Name  string `json:"name" yaml:"name"`
	Count uint64 `json:"count" yaml:"count"`
}

type lookupRows []lookupRow

func (r lookupRows) Table() *Table {
	t := NewTable("COUNT", "NAME")
	for _, row := range r {
		t.AddRow(strconv.FormatUint(row.Count, 10), row.Name)
	}
	t.AddFooter("total: 3")
	return t
}

func TestParseFormat(t *testing.T) {
	for _, f := range Formats {
		got, err := ParseFormat(string(f))
		require.NoError(t, err)
		assert.Equal(t, f, got)
	}

	_, err := ParseFormat("xml")
	assert.Error(t, err)
}

func TestNewFormatter(t *testing.T) {
	assert.IsType(t, &RawFormatter{}, NewFormatter(FormatRaw))
	assert.IsType(t, &JSONFormatter{}, NewFormatter(FormatJSON))
	assert.IsType(t, &YAMLFormatter{}, NewFormatter(FormatYAML))
	assert.IsType(t, &TableFormatter{}, NewFormatter(FormatTable))
	assert.IsType(t, &RawFormatter{}, NewFormatter("other"))
}

func TestRawFormatter(t *testing.T) {
	var buf bytes.Buffer
	f := &RawFormatter{}

	require.NoError(t, f.Format(&buf, []byte("a: 1\n")))
	require.NoError(t, f.Format(&buf, "b: 2\n"))
	require.NoError(t, f.Format(&buf, nil))
	assert.Equal(t, "a: 1\nb: 2\n", buf.String())

	buf.Reset()
	require.NoError(t, f.Format(&buf, map[string]int{"x": 1}))
	assert.JSONEq(t, `{"x":1}`, buf.String())
}

func TestJSONFormatter(t *testing.T) {
	var buf bytes.Buffer
	rows := lookupRows{{Name: "foo", Count: 2}}
	require.NoError(t, (&JSONFormatter{}).Format(&buf, rows))
	assert.Equal(t, "[\n  {\n    \"name\": \"foo\",\n    \"count\": 2\n  }\n]\n", buf.String())
}

func TestJSONFormatter_CompactNoHTMLEscape(t *testing.T) {
	var buf bytes.Buffer
	rows := lookupRows{{Name: "http.<admin>&co", Count: 1}}
	require.NoError(t, (&JSONFormatter{Compact: true}).Format(&buf, rows))
	assert.Equal(t, `[{"name":"http.<admin>&co","count":1}]`+"\n", buf.String())
}

func TestYAMLFormatter(t *testing.T) {
	var buf bytes.Buffer
	rows := lookupRows{{Name: "foo", Count: 2}, {Name: "bar", Count: 1}}
	require.NoError(t, (&YAMLFormatter{}).Format(&buf, rows))
	assert.Equal(t, "- name: foo\n  count: 2\n- name: bar\n  count: 1\n", buf.String())
}

func TestTableFormatter(t *testing.T) {
	var buf bytes.Buffer
	rows := lookupRows{{Name: "foo", Count: 2}, {Name: "bar", Count: 1}}
	require.NoError(t, (&TableFormatter{}).Format(&buf, rows))

	want := "COUNT  NAME\n" +
		"2      foo\n" +
		"1      bar\n" +
		"\ntotal: 3\n"
	assert.Equal(t, want, buf.String())

	buf.Reset()
	require.NoError(t, (&TableFormatter{NoHeaders: true}).Format(&buf, rows.Table()))
	assert.Equal(t, "2  foo\n1  bar\n\ntotal: 3\n", buf.String())
}

func TestTableFormatter_Unsupported(t *testing.T) {
	var buf bytes.Buffer
	assert.Error(t, (&TableFormatter{}).Format(&buf, 42))
	assert.NoError(t, (&TableFormatter{}).Format(&buf, nil))
	assert.Empty(t, buf.String())
}

func TestTable_ValueAndEmpty(t *testing.T) {
	var buf bytes.Buffer
	tbl := Table{Headers: []string{"NAME", "VALUE"}}
	require.NoError(t, (&TableFormatter{}).Format(&buf, tbl))
	assert.Equal(t, "NAME  VALUE\n", buf.String())
}
