package mdast

import "strings"

// ContentType tags a node with the shape it was parsed from.
type ContentType string

const (
	TypeHeader1 ContentType = "header1"
	TypeHeader2 ContentType = "header2"
	TypeHeader3 ContentType = "header3"
	TypeHeader4 ContentType = "header4"
	TypeHeader5 ContentType = "header5"
	TypeHeader6 ContentType = "header6"
	TypeChapter ContentType = "chapter"
	TypeDefault ContentType = "default"
)

// Header levels run from MinLevel (highest) to MaxLevel (lowest).
const (
	MinLevel = 1
	MaxLevel = 6
)

var headerTypes = [...]ContentType{
	TypeHeader1, TypeHeader2, TypeHeader3, TypeHeader4, TypeHeader5, TypeHeader6,
}

// HeaderType returns the content type for a header of the given level,
// or the empty tag when the level is out of range.
func HeaderType(level int) ContentType {
	if level < MinLevel || level > MaxLevel {
		return ""
	}
	return headerTypes[level-1]
}

// Node is one of *PlainText, *Header or *Chapter.
type Node interface {
	Type() ContentType
	// Text is the semantic content of the node.
	Text() string
	// Source is the text the node was built from.
	Source() string

	isNode()
}

// PlainText is a single line not recognized as a header opener.
type PlainText struct {
	Content string // Line without its newline
	Raw     string // Content plus a trailing newline
}

func (p *PlainText) Type() ContentType { return TypeDefault }
func (p *PlainText) Text() string      { return p.Content }
func (p *PlainText) Source() string    { return p.Raw }
func (*PlainText) isNode()             {}

// Header is a heading line of level 1 through 6.
type Header struct {
	Content string // Text after the hash run and its space
	Raw     string // Reconstructed "#"*Level + " " + Content + "\n"
	Level   int
}

func newHeader(level int, content string) *Header {
	return &Header{
		Content: content,
		Raw:     strings.Repeat("#", level) + " " + content + "\n",
		Level:   level,
	}
}

func (h *Header) Type() ContentType { return HeaderType(h.Level) }
func (h *Header) Text() string      { return h.Content }
func (h *Header) Source() string    { return h.Raw }
func (*Header) isNode()             {}

// Chapter is a header together with everything nested beneath it, up to the
// next header of equal or lower level.
type Chapter struct {
	Header   *Header
	Content  string // Mirrors Header.Content
	Raw      string // Header.Raw followed by the raw of every child
	Children []Node
}

func (c *Chapter) Type() ContentType { return TypeChapter }
func (c *Chapter) Text() string      { return c.Content }
func (c *Chapter) Source() string    { return c.Raw }
func (*Chapter) isNode()             {}

// Level returns the header level of a chapter or header, and 0 otherwise.
func Level(n Node) int {
	switch v := n.(type) {
	case *Chapter:
		return v.Header.Level
	case *Header:
		return v.Level
	}
	return 0
}

// RawText concatenates the raw text of nodes in order. For a document this
// reproduces the input with a trailing newline forced.
func RawText(nodes []Node) string {
	var sb strings.Builder
	for _, n := range nodes {
		sb.WriteString(n.Source())
	}
	return sb.String()
}

// Walk visits nodes depth-first in document order. path holds the chapters
// enclosing n, outermost first. Returning false skips n's children.
func Walk(nodes []Node, fn func(n Node, path []*Chapter) bool) {
	walk(nodes, nil, fn)
}

func walk(nodes []Node, path []*Chapter, fn func(Node, []*Chapter) bool) {
	for _, n := range nodes {
		if !fn(n, path) {
			continue
		}
		if ch, ok := n.(*Chapter); ok && len(ch.Children) > 0 {
			walk(ch.Children, append(path[:len(path):len(path)], ch), fn)
		}
	}
}
