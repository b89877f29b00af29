// Package render writes chapter trees as JSON, YAML, an indented outline,
// or HTML.
package render

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/dgallion1/mdchapter/internal/mdast"
	"github.com/yuin/goldmark"
	"gopkg.in/yaml.v3"
)

// Format names an output encoding.
type Format string

const (
	FormatJSON    Format = "json"
	FormatYAML    Format = "yaml"
	FormatHTML    Format = "html"
	FormatOutline Format = "outline"
	FormatRaw     Format = "raw"
)

// ParseFormat validates a format name. The empty string means JSON.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case "":
		return FormatJSON, nil
	case FormatJSON, FormatYAML, FormatHTML, FormatOutline, FormatRaw:
		return f, nil
	default:
		return "", fmt.Errorf("unknown format %q (want json, yaml, html, outline or raw)", s)
	}
}

// ContentType returns the HTTP content type for the format.
func (f Format) ContentType() string {
	switch f {
	case FormatJSON:
		return "application/json"
	case FormatYAML:
		return "application/yaml"
	case FormatHTML:
		return "text/html; charset=utf-8"
	default:
		return "text/plain; charset=utf-8"
	}
}

// View is the serialized shape of a node.
type View struct {
	Type     mdast.ContentType `json:"content_type" yaml:"content_type"`
	Content  string            `json:"content" yaml:"content"`
	Raw      string            `json:"raw" yaml:"raw"`
	Level    int               `json:"level,omitempty" yaml:"level,omitempty"`
	Header   *View             `json:"header,omitempty" yaml:"header,omitempty"`
	Children []View            `json:"children,omitempty" yaml:"children,omitempty"`
}

// Views converts nodes into their serialized shape.
func Views(nodes []mdast.Node) []View {
	out := make([]View, 0, len(nodes))
	for _, n := range nodes {
		out = append(out, ViewOf(n))
	}
	return out
}

// ViewOf converts a single node.
func ViewOf(n mdast.Node) View {
	v := View{
		Type:    n.Type(),
		Content: n.Text(),
		Raw:     n.Source(),
		Level:   mdast.Level(n),
	}
	if ch, ok := n.(*mdast.Chapter); ok {
		h := ViewOf(ch.Header)
		v.Header = &h
		if len(ch.Children) > 0 {
			v.Children = Views(ch.Children)
		}
	}
	return v
}

// Write encodes nodes to w in the given format.
func Write(w io.Writer, f Format, nodes []mdast.Node) error {
	switch f {
	case FormatJSON, "":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(map[string]any{"nodes": Views(nodes)})
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(map[string]any{"nodes": Views(nodes)}); err != nil {
			return err
		}
		return enc.Close()
	case FormatHTML:
		return HTML(w, nodes)
	case FormatOutline:
		return Outline(w, nodes)
	case FormatRaw:
		_, err := io.WriteString(w, mdast.RawText(nodes))
		return err
	default:
		return fmt.Errorf("unknown format %q", f)
	}
}

// Outline writes one line per chapter, indented by nesting depth, with the
// number of plain lines directly inside it.
func Outline(w io.Writer, nodes []mdast.Node) error {
	var err error
	mdast.Walk(nodes, func(n mdast.Node, path []*mdast.Chapter) bool {
		ch, ok := n.(*mdast.Chapter)
		if !ok || err != nil {
			return false
		}
		lines := 0
		for _, c := range ch.Children {
			if _, ok := c.(*mdast.PlainText); ok {
				lines++
			}
		}
		_, err = fmt.Fprintf(w, "%s%s %s (%d lines)\n",
			strings.Repeat("  ", len(path)), strings.Repeat("#", ch.Header.Level), ch.Content, lines)
		return true
	})
	return err
}

// HTML renders each top-level node's raw markdown with goldmark, wrapping
// chapters in <section> elements.
func HTML(w io.Writer, nodes []mdast.Node) error {
	md := goldmark.New()
	var buf bytes.Buffer
	for _, n := range nodes {
		ch, isChapter := n.(*mdast.Chapter)
		if isChapter {
			fmt.Fprintf(&buf, "<section data-level=\"%d\">\n", ch.Header.Level)
		}
		if err := md.Convert([]byte(n.Source()), &buf); err != nil {
			return fmt.Errorf("render html: %w", err)
		}
		if isChapter {
			buf.WriteString("</section>\n")
		}
	}
	_, err := w.Write(buf.Bytes())
	return err
}
