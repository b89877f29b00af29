package chunker

import (
	"strings"

	"github.com/dgallion1/mdchapter/internal/doctree"
	"github.com/dgallion1/mdchapter/internal/mdast"
)

// Config controls chunking behavior.
type Config struct {
	ChunkSize    int // Target chunk size in tokens.
	ChunkOverlap int // Overlap between consecutive chunks in tokens.
	MinChunk     int // Minimum chunk size to emit.
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		ChunkSize:    1500,
		ChunkOverlap: 200,
		MinChunk:     100,
	}
}

// ChunkDocument walks a chapter tree and produces structure-aware chunks.
// Each chapter's own plain text lines form its text; text in nested
// chapters is chunked separately under a longer breadcrumb.
func ChunkDocument(doc *doctree.Document, cfg Config) []doctree.Chunk {
	if cfg.ChunkSize <= 0 {
		cfg.ChunkSize = 1500
	}
	if cfg.ChunkOverlap <= 0 {
		cfg.ChunkOverlap = 200
	}
	if cfg.MinChunk <= 0 {
		cfg.MinChunk = 100
	}

	w := &walker{cfg: cfg}
	w.walk(doc.Nodes, nil, nil)
	return w.chunks
}

type walker struct {
	cfg    Config
	chunks []doctree.Chunk
}

// walk chunks the text directly inside nodes, then recurses into chapters.
func (w *walker) walk(nodes []mdast.Node, breadcrumb []string, path []int) {
	var text strings.Builder
	for _, n := range nodes {
		if p, ok := n.(*mdast.PlainText); ok {
			text.WriteString(p.Content)
			text.WriteByte('\n')
		}
	}
	w.emit(strings.TrimSpace(text.String()), breadcrumb, path)

	i := 0
	for _, n := range nodes {
		ch, ok := n.(*mdast.Chapter)
		if !ok {
			continue
		}
		bc := append(breadcrumb[:len(breadcrumb):len(breadcrumb)], ch.Content)
		w.walk(ch.Children, bc, append(path[:len(path):len(path)], i))
		i++
	}
}

func (w *walker) emit(text string, breadcrumb []string, path []int) {
	if text == "" {
		return
	}
	parts := []string{text}
	if EstimateTokens(text) > w.cfg.ChunkSize {
		parts = splitText(text, w.cfg.ChunkSize, w.cfg.ChunkOverlap)
	}
	for _, part := range parts {
		if EstimateTokens(part) < w.cfg.MinChunk {
			continue
		}
		w.chunks = append(w.chunks, doctree.Chunk{
			Text:       part,
			Index:      len(w.chunks),
			Breadcrumb: copyStrings(breadcrumb),
			Path:       copyInts(path),
		})
	}
}

// splitText breaks text into chunks of approximately targetTokens, with overlap.
func splitText(text string, targetTokens, overlapTokens int) []string {
	// Split by paragraphs first.
	paragraphs := splitByParagraphs(text)

	var result []string
	var current strings.Builder
	currentTokens := 0

	for _, para := range paragraphs {
		paraTokens := EstimateTokens(para)

		// If a single paragraph exceeds the target, split it further.
		if paraTokens > targetTokens {
			// Flush current buffer.
			if currentTokens > 0 {
				result = append(result, current.String())
				current.Reset()
				currentTokens = 0
			}
			// Split the large paragraph by sentences.
			subParts := splitBySentences(para, targetTokens, overlapTokens)
			result = append(result, subParts...)
			continue
		}

		// Would adding this paragraph exceed the target?
		if currentTokens+paraTokens > targetTokens && currentTokens > 0 {
			result = append(result, current.String())

			// Start next chunk with overlap from end of current.
			overlap := getOverlapText(current.String(), overlapTokens)
			current.Reset()
			currentTokens = 0
			if overlap != "" {
				current.WriteString(overlap)
				currentTokens = EstimateTokens(overlap)
			}
		}

		if current.Len() > 0 {
			current.WriteString("\n\n")
		}
		current.WriteString(para)
		currentTokens += paraTokens
	}

	if currentTokens > 0 {
		result = append(result, current.String())
	}

	return result
}

// splitByParagraphs splits on double-newlines.
func splitByParagraphs(text string) []string {
	parts := strings.Split(text, "\n\n")
	var result []string
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			result = append(result, p)
		}
	}
	return result
}

// splitBySentences breaks a large paragraph into sentence-based chunks.
func splitBySentences(text string, targetTokens, overlapTokens int) []string {
	sentences := splitSentences(text)

	var result []string
	var current strings.Builder
	currentTokens := 0

	for _, sent := range sentences {
		sentTokens := EstimateTokens(sent)

		if currentTokens+sentTokens > targetTokens && currentTokens > 0 {
			result = append(result, current.String())
			overlap := getOverlapText(current.String(), overlapTokens)
			current.Reset()
			currentTokens = 0
			if overlap != "" {
				current.WriteString(overlap)
				currentTokens = EstimateTokens(overlap)
			}
		}

		if current.Len() > 0 {
			current.WriteString(" ")
		}
		current.WriteString(sent)
		currentTokens += sentTokens
	}

	if currentTokens > 0 {
		result = append(result, current.String())
	}

	return result
}

// splitSentences does basic sentence splitting.
func splitSentences(text string) []string {
	var sentences []string
	var current strings.Builder

	for i, r := range text {
		current.WriteRune(r)
		if (r == '.' || r == '!' || r == '?') && i+1 < len(text) && text[i+1] == ' ' {
			sentences = append(sentences, strings.TrimSpace(current.String()))
			current.Reset()
		}
	}
	if current.Len() > 0 {
		sentences = append(sentences, strings.TrimSpace(current.String()))
	}

	return sentences
}

// getOverlapText extracts the last N tokens worth of text for overlap.
func getOverlapText(text string, targetTokens int) string {
	words := strings.Fields(text)
	// Approximate: 1.33 tokens per word.
	targetWords := int(float64(targetTokens) / 1.33)
	if targetWords <= 0 || len(words) <= targetWords {
		return ""
	}
	return strings.Join(words[len(words)-targetWords:], " ")
}

func copyStrings(s []string) []string {
	if len(s) == 0 {
		return nil
	}
	return append([]string(nil), s...)
}

func copyInts(s []int) []int {
	if len(s) == 0 {
		return nil
	}
	return append([]int(nil), s...)
}
