package render

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/dgallion1/mdchapter/internal/mdast"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func parse(t *testing.T, md string) []mdast.Node {
	t.Helper()
	nodes, err := mdast.Parse(md)
	require.NoError(t, err)
	return nodes
}

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat("")
	require.NoError(t, err)
	assert.Equal(t, FormatJSON, f)

	f, err = ParseFormat(" YAML ")
	require.NoError(t, err)
	assert.Equal(t, FormatYAML, f)

	_, err = ParseFormat("xml")
	assert.Error(t, err)
}

func TestViewOf_Chapter(t *testing.T) {
	nodes := parse(t, "# title\nbody\n## sub\n")
	v := ViewOf(nodes[0])

	assert.Equal(t, mdast.TypeChapter, v.Type)
	assert.Equal(t, "title", v.Content)
	assert.Equal(t, 1, v.Level)
	require.NotNil(t, v.Header)
	assert.Equal(t, mdast.TypeHeader1, v.Header.Type)
	assert.Equal(t, "# title\n", v.Header.Raw)
	require.Len(t, v.Children, 2)
	assert.Equal(t, mdast.TypeDefault, v.Children[0].Type)
	assert.Equal(t, 0, v.Children[0].Level)
	assert.Equal(t, 2, v.Children[1].Header.Level)
}

func TestWrite_JSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, FormatJSON, parse(t, "# a\nx\n")))

	var out struct {
		Nodes []View `json:"nodes"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &out))
	require.Len(t, out.Nodes, 1)
	assert.Equal(t, "a", out.Nodes[0].Content)
	assert.Equal(t, "# a\nx\n", out.Nodes[0].Raw)
	assert.Equal(t, "x", out.Nodes[0].Children[0].Content)
}

func TestWrite_YAML(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, FormatYAML, parse(t, "## a\n")))

	var out struct {
		Nodes []View `yaml:"nodes"`
	}
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &out))
	require.Len(t, out.Nodes, 1)
	assert.Equal(t, mdast.TypeChapter, out.Nodes[0].Type)
	assert.Equal(t, 2, out.Nodes[0].Level)
}

func TestOutline(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Outline(&buf, parse(t, "intro\n# A\none\ntwo\n## B\n# C\n")))

	want := "# A (2 lines)\n  ## B (0 lines)\n# C (0 lines)\n"
	assert.Equal(t, want, buf.String())
}

func TestHTML(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, HTML(&buf, parse(t, "# Title\nSome *text*.\n")))

	out := buf.String()
	assert.True(t, strings.HasPrefix(out, `<section data-level="1">`), out)
	assert.Contains(t, out, "<h1>Title</h1>")
	assert.Contains(t, out, "<em>text</em>")
	assert.True(t, strings.HasSuffix(out, "</section>\n"), out)
}

func TestWrite_Raw(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, FormatRaw, parse(t, "# a\nb")))
	assert.Equal(t, "# a\nb\n", buf.String())
}
