package main

import (
	"encoding/json"

	"github.com/dgallion1/mdchapter/internal/chunker"
	"github.com/spf13/cobra"
)

var chunkFlags struct {
	size    int
	overlap int
	min     int
}

var chunkCmd = &cobra.Command{
	Use:   "chunk [file]",
	Short: "Split a document into chapter-aware chunks",
	Long: `Split a document into token-sized chunks. Each chunk carries the titles
of the chapters above it and the index path of its chapter.

Examples:
  mdchapter chunk guide.md --size 800 --overlap 100
  cat notes.md | mdchapter chunk --min 20`,
	Args: cobra.MaximumNArgs(1),
	RunE: runChunk,
}

func init() {
	rootCmd.AddCommand(chunkCmd)

	def := chunker.DefaultConfig()
	chunkCmd.Flags().IntVar(&chunkFlags.size, "size", def.ChunkSize, "target chunk size in tokens")
	chunkCmd.Flags().IntVar(&chunkFlags.overlap, "overlap", def.ChunkOverlap, "overlap between split chunks in tokens")
	chunkCmd.Flags().IntVar(&chunkFlags.min, "min", def.MinChunk, "drop chunks smaller than this many tokens")
}

type chunkOutput struct {
	Index      int      `json:"index"`
	Breadcrumb []string `json:"breadcrumb"`
	Path       []int    `json:"path"`
	Tokens     int      `json:"tokens"`
	Text       string   `json:"text"`
}

func runChunk(cmd *cobra.Command, args []string) error {
	doc, err := loadDocument(cmd, args)
	if err != nil {
		return err
	}

	chunks := chunker.ChunkDocument(doc, chunker.Config{
		ChunkSize:    chunkFlags.size,
		ChunkOverlap: chunkFlags.overlap,
		MinChunk:     chunkFlags.min,
	})
	newLogger(cmd).Info("chunked document", "title", doc.Title, "chunks", len(chunks))

	out := make([]chunkOutput, 0, len(chunks))
	for _, c := range chunks {
		bc := c.Breadcrumb
		if bc == nil {
			bc = []string{}
		}
		path := c.Path
		if path == nil {
			path = []int{}
		}
		out = append(out, chunkOutput{
			Index:      c.Index,
			Breadcrumb: bc,
			Path:       path,
			Tokens:     chunker.EstimateTokens(c.Text),
			Text:       c.Text,
		})
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
