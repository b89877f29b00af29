package doctree

import "github.com/dgallion1/mdchapter/internal/mdast"

// Document is a parsed document: its title and its chapter tree.
type Document struct {
	Title string       // Document title (from metadata or filename)
	Nodes []mdast.Node // Top-level nodes in document order
}

// Source returns the normalized markdown the document was parsed from.
func (d *Document) Source() string {
	return mdast.RawText(d.Nodes)
}

// Chapters counts every chapter in the tree.
func (d *Document) Chapters() int {
	n := 0
	mdast.Walk(d.Nodes, func(node mdast.Node, _ []*mdast.Chapter) bool {
		if _, ok := node.(*mdast.Chapter); ok {
			n++
		}
		return true
	})
	return n
}

// WalkChapters visits every chapter depth-first. path indexes the chapter
// among its sibling chapters at each level, e.g. [0 2] is the third chapter
// inside the first top-level chapter. Plain text siblings are not counted.
func WalkChapters(nodes []mdast.Node, fn func(ch *mdast.Chapter, path []int)) {
	walkChapters(nodes, nil, fn)
}

func walkChapters(nodes []mdast.Node, path []int, fn func(*mdast.Chapter, []int)) {
	i := 0
	for _, n := range nodes {
		ch, ok := n.(*mdast.Chapter)
		if !ok {
			continue
		}
		p := append(path[:len(path):len(path)], i)
		fn(ch, p)
		walkChapters(ch.Children, p, fn)
		i++
	}
}

// Chunk is a sized text segment with structural context.
type Chunk struct {
	Text       string   // Chunk text content
	Index      int      // Sequence number within document
	Breadcrumb []string // Chapter hierarchy, e.g. ["Financial Results", "Revenue", "Q4"]
	Path       []int    // Index path of the owning chapter among chapters; nil for text outside any chapter
}
