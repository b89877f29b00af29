package parser

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/dgallion1/mdchapter/internal/doctree"
	"github.com/dgallion1/mdchapter/internal/mdast"
)

// Parser converts raw document bytes into a Document.
type Parser interface {
	Parse(r io.Reader, filename string) (*doctree.Document, error)
}

// SupportedExtensions lists file extensions this service can handle.
var SupportedExtensions = map[string]bool{
	".txt":      true,
	".md":       true,
	".markdown": true,
	".csv":      true,
	".html":     true,
	".htm":      true,
	".pdf":      true,
	".docx":     true,
}

// Options tune the parsers returned by ForFile.
type Options struct {
	PDFFallbackPdftotext bool
}

// DefaultOptions enables every fallback.
func DefaultOptions() Options {
	return Options{PDFFallbackPdftotext: true}
}

// ForFile returns the appropriate parser for a filename using DefaultOptions.
func ForFile(filename string) (Parser, error) {
	return DefaultOptions().ForFile(filename)
}

// ForFile returns the appropriate parser for a filename.
func (o Options) ForFile(filename string) (Parser, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".txt":
		return &TextParser{}, nil
	case ".md", ".markdown":
		return &MarkdownParser{}, nil
	case ".csv":
		return &CSVParser{}, nil
	case ".html", ".htm":
		return &HTMLParser{}, nil
	case ".pdf":
		return &PDFParser{FallbackPdftotext: o.PDFFallbackPdftotext}, nil
	case ".docx":
		return &DOCXParser{}, nil
	default:
		return nil, fmt.Errorf("unsupported file extension: %s", ext)
	}
}

// IsSupportedExtension checks if a file extension is supported.
func IsSupportedExtension(filename string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	return SupportedExtensions[ext]
}

// mdBuilder writes flat markdown that the chapter parser understands:
// headings as hash lines, text as plain lines, paragraphs separated by a
// blank line. Non-markdown formats are converted through it so every
// format ends up in the same tree shape.
type mdBuilder struct {
	sb strings.Builder
}

func (b *mdBuilder) heading(level int, title string) {
	if level < mdast.MinLevel {
		level = mdast.MinLevel
	}
	if level > mdast.MaxLevel {
		level = mdast.MaxLevel
	}
	title = strings.Join(strings.Fields(title), " ")
	if title == "" {
		return
	}
	b.sb.WriteString(strings.Repeat("#", level))
	b.sb.WriteByte(' ')
	b.sb.WriteString(title)
	b.sb.WriteByte('\n')
}

// paragraph writes text line by line. Lines starting with '#' are escaped
// so body text never opens a chapter.
func (b *mdBuilder) paragraph(text string) {
	text = strings.TrimSpace(text)
	if text == "" {
		return
	}
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimRight(line, " \t\r")
		if strings.HasPrefix(line, "#") {
			b.sb.WriteByte('\\')
		}
		b.sb.WriteString(line)
		b.sb.WriteByte('\n')
	}
	b.sb.WriteByte('\n')
}

func (b *mdBuilder) String() string {
	return b.sb.String()
}

// build parses the accumulated markdown into a Document.
func (b *mdBuilder) build(title string) (*doctree.Document, error) {
	nodes, err := mdast.Parse(b.String())
	if err != nil {
		return nil, fmt.Errorf("build chapter tree: %w", err)
	}
	return &doctree.Document{Title: title, Nodes: nodes}, nil
}
