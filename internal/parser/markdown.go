package parser

import (
	"fmt"
	"io"
	"strings"

	"github.com/dgallion1/mdchapter/internal/doctree"
	"github.com/dgallion1/mdchapter/internal/mdast"
)

// MarkdownParser handles Markdown files with the chapter parser.
type MarkdownParser struct {
	// Engine overrides the default mdast parser when set.
	Engine *mdast.Parser
}

func (p *MarkdownParser) Parse(r io.Reader, filename string) (*doctree.Document, error) {
	src, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	engine := p.Engine
	if engine == nil {
		engine = mdast.NewParser(nil)
	}
	nodes, err := engine.Parse(string(src))
	if err != nil {
		return nil, fmt.Errorf("parse markdown: %w", err)
	}

	return &doctree.Document{
		Title: strings.TrimSuffix(strings.TrimSuffix(filename, ".md"), ".markdown"),
		Nodes: nodes,
	}, nil
}
