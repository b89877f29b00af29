package chunker

import (
	"strings"
	"testing"

	"github.com/dgallion1/mdchapter/internal/doctree"
	"github.com/dgallion1/mdchapter/internal/mdast"
)

func mustDoc(t *testing.T, md string) *doctree.Document {
	t.Helper()
	nodes, err := mdast.Parse(md)
	if err != nil {
		t.Fatalf("unexpected parse error: %v", err)
	}
	return &doctree.Document{Title: "Doc", Nodes: nodes}
}

func TestChunkDocument_SmallChapterFitsOneChunk(t *testing.T) {
	doc := mustDoc(t, "# Section\n"+strings.Repeat("word ", 200)) // ~200 words -> ~266 tokens

	cfg := Config{
		ChunkSize:    1500,
		ChunkOverlap: 200,
		MinChunk:     50,
	}
	chunks := ChunkDocument(doc, cfg)

	if len(chunks) != 1 {
		t.Fatalf("expected 1 chunk, got %d", len(chunks))
	}
	if chunks[0].Index != 0 {
		t.Errorf("expected index 0, got %d", chunks[0].Index)
	}
	if !strings.Contains(chunks[0].Text, "word") {
		t.Errorf("expected chunk text to contain 'word', got %q", chunks[0].Text)
	}
	if len(chunks[0].Path) != 1 || chunks[0].Path[0] != 0 {
		t.Errorf("expected path [0], got %v", chunks[0].Path)
	}
}

func TestChunkDocument_LargeChapterRequiresSplitting(t *testing.T) {
	// ~3000 words -> ~3990 tokens at 1.33 tokens/word, split over many lines.
	var body strings.Builder
	for i := 0; i < 30; i++ {
		body.WriteString(strings.Repeat("The quick brown fox jumps over the lazy dog. ", 10))
		body.WriteString("\n\n")
	}
	doc := mustDoc(t, "# Big Section\n"+body.String())

	cfg := Config{
		ChunkSize:    500,
		ChunkOverlap: 50,
		MinChunk:     10,
	}
	chunks := ChunkDocument(doc, cfg)

	if len(chunks) < 2 {
		t.Fatalf("expected at least 2 chunks for large text, got %d", len(chunks))
	}

	// Verify sequential indexing.
	for i, c := range chunks {
		if c.Index != i {
			t.Errorf("chunk %d: expected index %d, got %d", i, i, c.Index)
		}
	}

	// Paragraph and sentence boundaries allow slight overflows.
	for i, c := range chunks {
		tokens := EstimateTokens(c.Text)
		if tokens > cfg.ChunkSize*2 {
			t.Errorf("chunk %d: %d tokens exceeds 2x target %d", i, tokens, cfg.ChunkSize)
		}
	}
}

func TestChunkDocument_BreadcrumbPropagation(t *testing.T) {
	doc := mustDoc(t, "# Chapter 1\n## Section 1.1\n"+strings.Repeat("content ", 200))

	cfg := Config{
		ChunkSize:    2000,
		ChunkOverlap: 100,
		MinChunk:     10,
	}
	chunks := ChunkDocument(doc, cfg)

	if len(chunks) != 1 {
		t.Fatalf("expected 1 chunk, got %d", len(chunks))
	}

	bc := chunks[0].Breadcrumb
	want := []string{"Chapter 1", "Section 1.1"}
	if len(bc) != len(want) {
		t.Fatalf("expected breadcrumb %v, got %v", want, bc)
	}
	for i := range want {
		if bc[i] != want[i] {
			t.Errorf("breadcrumb[%d]: expected %q, got %q", i, want[i], bc[i])
		}
	}
	if len(chunks[0].Path) != 2 || chunks[0].Path[0] != 0 || chunks[0].Path[1] != 0 {
		t.Errorf("expected path [0 0], got %v", chunks[0].Path)
	}
}

func TestChunkDocument_BreadcrumbIsolation(t *testing.T) {
	// Breadcrumbs from sibling chapters don't leak into each other.
	doc := mustDoc(t, "# A\n"+strings.Repeat("alpha ", 200)+"\n# B\n"+strings.Repeat("beta ", 200))

	cfg := Config{
		ChunkSize:    2000,
		ChunkOverlap: 100,
		MinChunk:     10,
	}
	chunks := ChunkDocument(doc, cfg)

	if len(chunks) != 2 {
		t.Fatalf("expected 2 chunks, got %d", len(chunks))
	}

	if len(chunks[0].Breadcrumb) != 1 || chunks[0].Breadcrumb[0] != "A" {
		t.Errorf("chunk 0 breadcrumb: expected [A], got %v", chunks[0].Breadcrumb)
	}
	if len(chunks[1].Breadcrumb) != 1 || chunks[1].Breadcrumb[0] != "B" {
		t.Errorf("chunk 1 breadcrumb: expected [B], got %v", chunks[1].Breadcrumb)
	}
	if chunks[1].Path[0] != 1 {
		t.Errorf("chunk 1: expected path [1], got %v", chunks[1].Path)
	}
}

func TestChunkDocument_MinChunkFiltering(t *testing.T) {
	doc := mustDoc(t, "# Short\nHi")

	cfg := Config{
		ChunkSize:    1500,
		ChunkOverlap: 200,
		MinChunk:     100,
	}
	chunks := ChunkDocument(doc, cfg)

	if len(chunks) != 0 {
		t.Errorf("expected 0 chunks (below MinChunk), got %d", len(chunks))
	}
}

func TestChunkDocument_EmptyDocument(t *testing.T) {
	doc := &doctree.Document{Title: "Empty"}
	chunks := ChunkDocument(doc, DefaultConfig())
	if len(chunks) != 0 {
		t.Errorf("expected 0 chunks, got %d", len(chunks))
	}
}

func TestChunkDocument_DefaultConfigFallback(t *testing.T) {
	// Zero-value config should be replaced with defaults.
	doc := mustDoc(t, strings.Repeat("word ", 200))
	chunks := ChunkDocument(doc, Config{})
	if len(chunks) < 1 {
		t.Fatalf("expected at least 1 chunk with zero config (defaults applied), got %d", len(chunks))
	}
	if chunks[0].Breadcrumb != nil || chunks[0].Path != nil {
		t.Errorf("expected text outside chapters to have no breadcrumb, got %v %v", chunks[0].Breadcrumb, chunks[0].Path)
	}
}

func TestChunkDocument_ChapterWithNoText(t *testing.T) {
	doc := mustDoc(t, "# Container\n## Leaf\n"+strings.Repeat("leaf content ", 100))

	cfg := Config{
		ChunkSize:    2000,
		ChunkOverlap: 100,
		MinChunk:     10,
	}
	chunks := ChunkDocument(doc, cfg)

	if len(chunks) != 1 {
		t.Fatalf("expected 1 chunk, got %d", len(chunks))
	}
	want := []string{"Container", "Leaf"}
	bc := chunks[0].Breadcrumb
	if len(bc) != len(want) {
		t.Fatalf("expected breadcrumb %v, got %v", want, bc)
	}
	for i := range want {
		if bc[i] != want[i] {
			t.Errorf("breadcrumb[%d]: expected %q, got %q", i, want[i], bc[i])
		}
	}
}

func TestChunkDocument_PathsMatchWalkChapters(t *testing.T) {
	filler := strings.Repeat("text ", 50)
	doc := mustDoc(t, "# A\n## A1\n"+filler+"\n## A2\n"+filler+"\n# B\n"+filler)

	paths := map[string][]int{}
	doctree.WalkChapters(doc.Nodes, func(ch *mdast.Chapter, path []int) {
		paths[ch.Content] = path
	})

	chunks := ChunkDocument(doc, Config{ChunkSize: 1000, ChunkOverlap: 10, MinChunk: 10})
	if len(chunks) != 3 {
		t.Fatalf("expected 3 chunks, got %d", len(chunks))
	}
	for _, c := range chunks {
		title := c.Breadcrumb[len(c.Breadcrumb)-1]
		want := paths[title]
		if len(want) != len(c.Path) {
			t.Fatalf("chunk %q: expected path %v, got %v", title, want, c.Path)
		}
		for i := range want {
			if want[i] != c.Path[i] {
				t.Errorf("chunk %q: expected path %v, got %v", title, want, c.Path)
			}
		}
	}
}
