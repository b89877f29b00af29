package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/dgallion1/mdchapter/internal/chunker"
	"github.com/dgallion1/mdchapter/internal/doctree"
	"github.com/dgallion1/mdchapter/internal/mdast"
	"github.com/dgallion1/mdchapter/internal/metrics"
	"github.com/dgallion1/mdchapter/internal/parser"
	"github.com/dgallion1/mdchapter/internal/pathstore"
)

// Worker processes a single document job.
type Worker struct {
	pathstore *pathstore.Client
	metrics   *metrics.Metrics
	log       *slog.Logger
	chunkCfg  chunker.Config
	parsers   parser.Options

	maxConcurrentStore int
	backoff            func(int) time.Duration
}

func NewWorker(ps *pathstore.Client, m *metrics.Metrics, log *slog.Logger, chunkCfg chunker.Config, parsers parser.Options, maxStore int) *Worker {
	if maxStore <= 0 {
		maxStore = 1
	}
	return &Worker{
		pathstore:          ps,
		metrics:            m,
		log:                log,
		chunkCfg:           chunkCfg,
		parsers:            parsers,
		maxConcurrentStore: maxStore,
		backoff:            Backoff,
	}
}

// DocPrefix is the pathstore key under which a document is stored.
func DocPrefix(userID, docID string) string {
	return fmt.Sprintf("memory/users/%s/documents/%s", userID, docID)
}

// OutlineKey is the pathstore key of the chapter at path.
func OutlineKey(docPrefix string, path []int) string {
	parts := make([]string, len(path))
	for i, p := range path {
		parts[i] = strconv.Itoa(p)
	}
	return docPrefix + "/outline/" + strings.Join(parts, "/")
}

func hashPrefix(userID, contentHash string) string {
	return fmt.Sprintf("memory/users/%s/documents/by_hash/%s", userID, contentHash)
}

// Process runs the full ingest pipeline for a job.
func (w *Worker) Process(ctx context.Context, job *Job) {
	log := w.log.With("job_id", job.ID, "doc_id", job.DocID, "user_id", job.UserID)
	status := w.process(ctx, job, log)
	job.releaseFileData()
	w.metrics.JobFinished(string(status))
	log.Info("job finished", "status", status)
}

func (w *Worker) process(ctx context.Context, job *Job, log *slog.Logger) JobStatus {
	fail := func(phase, msg string) JobStatus {
		job.AddError(msg)
		job.SetStatus(StatusFailed, phase)
		return StatusFailed
	}

	// Phase 1: Parse
	job.SetStatus(StatusParsing, "parsing")
	p, err := w.parsers.ForFile(job.Filename)
	if err != nil {
		log.Error("unsupported format", "error", err)
		return fail("parsing", err.Error())
	}

	data := job.FileData()
	start := time.Now()
	doc, err := p.Parse(bytes.NewReader(data), job.Filename)
	var nodes []mdast.Node
	if doc != nil {
		nodes = doc.Nodes
	}
	w.metrics.ObserveParse(time.Since(start), len(data), nodes, err)
	if err != nil {
		log.Error("parse failed", "error", err)
		return fail("parsing", fmt.Sprintf("parse: %s", err))
	}
	if job.Title != "" {
		doc.Title = job.Title
	}
	chapters := doc.Chapters()
	job.SetChapters(chapters)

	// Hash the normalized source so equivalent uploads in different
	// formats of the same text still dedup.
	job.mu.Lock()
	job.ContentHash = ContentHashHex([]byte(doc.Source()))
	job.mu.Unlock()

	// Phase 1.5: Dedup check
	if !job.Force {
		exists, existingDocID, err := w.checkDuplicate(ctx, job)
		if err != nil {
			log.Warn("dedup check failed, proceeding", "error", err)
		} else if exists {
			log.Info("duplicate document, skipping", "existing_doc_id", existingDocID)
			job.SetStatus(StatusDupSkipped, "dedup")
			return StatusDupSkipped
		}
	}

	// Phase 2: Chunk
	job.SetStatus(StatusChunking, "chunking")
	cfg := w.chunkCfg
	if job.ChunkSize > 0 {
		cfg.ChunkSize = job.ChunkSize
	}
	if job.ChunkOverlap > 0 {
		cfg.ChunkOverlap = job.ChunkOverlap
	}
	chunks := chunker.ChunkDocument(doc, cfg)
	job.SetTotalChunks(len(chunks))
	log.Info("chunked document", "chapters", chapters, "chunks", len(chunks))

	if len(chunks) == 0 && chapters == 0 {
		log.Warn("no content produced")
		return fail("chunking", "no extractable content")
	}

	// Phase 3: Store outline and chunks with bounded concurrency.
	job.SetStatus(StatusStoring, "storing")
	docPrefix := DocPrefix(job.UserID, job.DocID)
	source := "mdchapter:" + job.DocID

	var tasks []storeTask
	doctree.WalkChapters(doc.Nodes, func(ch *mdast.Chapter, path []int) {
		key := OutlineKey(docPrefix, path)
		value := outlineValue(ch, path)
		tasks = append(tasks, storeTask{
			key: key,
			run: func(ctx context.Context) error {
				return w.pathstore.PutNode(ctx, key, pathstore.NodeRequest{
					Value:      value,
					MemoryType: "semantic",
					Salience:   outlineSalience(len(path)),
					Source:     source,
				})
			},
			done: job.IncrChaptersStored,
		})
	})
	for _, c := range chunks {
		tasks = append(tasks, w.chunkTask(docPrefix, source, c, job))
	}

	failed := w.runStore(ctx, tasks, log, job)
	stored := len(tasks) - failed
	log.Info("storage complete", "stored", stored, "total", len(tasks))

	// Write document metadata.
	metaErr := w.put(ctx, log, docPrefix+"/meta", pathstore.NodeRequest{
		Value: map[string]any{
			"filename":        job.Filename,
			"title":           doc.Title,
			"content_hash":    job.ContentHash,
			"chapters":        chapters,
			"chapters_stored": job.Snapshot().Progress.ChaptersStored,
			"total_chunks":    len(chunks),
			"chunks_stored":   job.Snapshot().Progress.ChunksStored,
			"created_at":      job.CreatedAt.Format(time.RFC3339),
		},
		MemoryType: "metacognitive",
		Salience:   0.5,
		Source:     source,
	})
	if metaErr != nil {
		log.Error("meta write failed", "error", metaErr)
		job.AddError(fmt.Sprintf("meta: %s", metaErr))
		failed++
	}

	// Write hash index for dedup.
	hashErr := w.put(ctx, log, hashPrefix(job.UserID, job.ContentHash)+"/"+job.DocID, pathstore.NodeRequest{
		Value: map[string]any{
			"filename":   job.Filename,
			"created_at": job.CreatedAt.Format(time.RFC3339),
		},
		MemoryType: "metacognitive",
		Salience:   0.1,
		Source:     source,
	})
	if hashErr != nil {
		log.Error("hash index write failed", "error", hashErr)
	}

	switch {
	case failed > 0 && stored > 0:
		job.SetStatus(StatusPartial, "done")
		return StatusPartial
	case failed > 0:
		job.SetStatus(StatusFailed, "storing")
		return StatusFailed
	default:
		job.SetStatus(StatusCompleted, "done")
		return StatusCompleted
	}
}

type storeTask struct {
	key  string
	run  func(ctx context.Context) error
	done func()
}

// chunkTask writes a chunk and links it to the chapter that owns it.
func (w *Worker) chunkTask(docPrefix, source string, c doctree.Chunk, job *Job) storeTask {
	key := fmt.Sprintf("%s/chunks/%d", docPrefix, c.Index)
	return storeTask{
		key: key,
		run: func(ctx context.Context) error {
			err := w.pathstore.PutNode(ctx, key, pathstore.NodeRequest{
				Value: map[string]any{
					"text":       c.Text,
					"breadcrumb": c.Breadcrumb,
					"path":       c.Path,
					"tokens":     chunker.EstimateTokens(c.Text),
				},
				MemoryType: "semantic",
				Salience:   0.3,
				Source:     source,
			})
			if err != nil || len(c.Path) == 0 {
				return err
			}
			return w.pathstore.PutLink(ctx, pathstore.LinkRequest{
				From:    key,
				To:      OutlineKey(docPrefix, c.Path),
				Weight:  1,
				Summary: strings.Join(c.Breadcrumb, " > "),
			})
		},
		done: job.IncrChunksStored,
	}
}

// runStore executes tasks with at most maxConcurrentStore in flight and
// returns how many failed.
func (w *Worker) runStore(ctx context.Context, tasks []storeTask, log *slog.Logger, job *Job) int {
	type storeResult struct {
		key string
		err error
	}
	results := make(chan storeResult, len(tasks))
	sem := make(chan struct{}, w.maxConcurrentStore)

	for _, t := range tasks {
		sem <- struct{}{}
		go func(t storeTask) {
			defer func() { <-sem }()
			err := retry(ctx, log, w.backoff, t.key, w.metrics.StoreRetried, func() error {
				return t.run(ctx)
			})
			if err == nil && t.done != nil {
				t.done()
			}
			results <- storeResult{key: t.key, err: err}
		}(t)
	}

	failed := 0
	for range tasks {
		r := <-results
		if r.err != nil {
			log.Error("store failed", "key", r.key, "error", r.err)
			job.AddError(fmt.Sprintf("store %s: %s", r.key, r.err))
			failed++
		}
	}
	return failed
}

func (w *Worker) put(ctx context.Context, log *slog.Logger, key string, req pathstore.NodeRequest) error {
	return retry(ctx, log, w.backoff, key, w.metrics.StoreRetried, func() error {
		return w.pathstore.PutNode(ctx, key, req)
	})
}

// checkDuplicate checks if this content hash already exists for the user.
func (w *Worker) checkDuplicate(ctx context.Context, job *Job) (bool, string, error) {
	children, err := w.pathstore.ListChildren(ctx, hashPrefix(job.UserID, job.ContentHash), 1)
	if err != nil {
		return false, "", err
	}
	if len(children) > 0 {
		// The doc ID is the last key segment.
		key := children[0].Key
		if i := strings.LastIndexAny(key, "./"); i >= 0 {
			key = key[i+1:]
		}
		return true, key, nil
	}
	return false, "", nil
}

func outlineValue(ch *mdast.Chapter, path []int) map[string]any {
	lines := 0
	for _, c := range ch.Children {
		if _, ok := c.(*mdast.PlainText); ok {
			lines++
		}
	}
	return map[string]any{
		"title":  ch.Content,
		"level":  ch.Header.Level,
		"path":   path,
		"lines":  lines,
		"bytes":  len(ch.Raw),
		"header": ch.Header.Raw,
	}
}

// outlineSalience ranks top-level chapters above nested ones.
func outlineSalience(depth int) float64 {
	s := 0.6 - 0.1*float64(depth-1)
	if s < 0.1 {
		s = 0.1
	}
	return s
}
