package api

import (
	"context"
	"fmt"
	"net/http"
	"slices"
	"strings"

	"github.com/dgallion1/mdchapter/internal/pathstore"
	"github.com/dgallion1/mdchapter/internal/pipeline"
	"github.com/go-chi/chi/v5"
)

// handleListDocuments lists all documents for a user.
func (s *Server) handleListDocuments(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("user_id")
	if userID == "" {
		jsonError(w, "user_id query parameter is required", http.StatusBadRequest)
		return
	}

	prefix := fmt.Sprintf("memory/users/%s/documents", userID)
	children, err := s.orchestrator.PathstoreClient().ListChildren(r.Context(), prefix, 200)
	if err != nil {
		jsonError(w, "failed to list documents: "+err.Error(), http.StatusInternalServerError)
		return
	}

	docs := []map[string]any{}
	for _, child := range children {
		if isMetaKey(child.Key) {
			docs = append(docs, map[string]any{
				"key":   child.Key,
				"value": child.Value,
			})
		}
	}

	writeJSON(w, http.StatusOK, map[string]any{"documents": docs})
}

// handleDocumentOutline returns the stored chapter outline of a document in
// document order.
func (s *Server) handleDocumentOutline(w http.ResponseWriter, r *http.Request) {
	docID := chi.URLParam(r, "docID")
	userID := r.URL.Query().Get("user_id")
	if userID == "" {
		jsonError(w, "user_id query parameter is required", http.StatusBadRequest)
		return
	}

	prefix := pipeline.DocPrefix(userID, docID) + "/outline"
	children, err := s.orchestrator.PathstoreClient().ListChildren(r.Context(), prefix, 10000)
	if err != nil {
		jsonError(w, "failed to read outline: "+err.Error(), http.StatusInternalServerError)
		return
	}
	if len(children) == 0 {
		jsonError(w, "document not found", http.StatusNotFound)
		return
	}

	chapters := make([]map[string]any, 0, len(children))
	for _, child := range children {
		if m, ok := child.Value.(map[string]any); ok {
			chapters = append(chapters, m)
		}
	}
	slices.SortFunc(chapters, func(a, b map[string]any) int {
		return slices.Compare(outlinePath(a), outlinePath(b))
	})

	writeJSON(w, http.StatusOK, map[string]any{
		"doc_id":   docID,
		"chapters": chapters,
	})
}

// handleDeleteDocument deletes a document with its outline, chunks and hash
// index entry.
func (s *Server) handleDeleteDocument(w http.ResponseWriter, r *http.Request) {
	docID := chi.URLParam(r, "docID")
	userID := r.URL.Query().Get("user_id")
	if userID == "" {
		jsonError(w, "user_id query parameter is required", http.StatusBadRequest)
		return
	}

	ctx := r.Context()
	ps := s.orchestrator.PathstoreClient()
	docPrefix := pipeline.DocPrefix(userID, docID)

	// The hash lives in meta, so resolve it before the subtree goes.
	hashPath := hashIndexPath(ctx, ps, userID, docID, docPrefix)

	if err := ps.DeleteNode(ctx, docPrefix, true); err != nil {
		jsonError(w, "failed to delete document: "+err.Error(), http.StatusInternalServerError)
		return
	}

	hashDeleted := false
	if hashPath != "" {
		if err := ps.DeleteNode(ctx, hashPath, false); err != nil {
			s.log.Warn("hash index delete failed", "doc_id", docID, "error", err)
		} else {
			hashDeleted = true
		}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"doc_id":             docID,
		"deleted":            true,
		"hash_index_deleted": hashDeleted,
	})
}

func isMetaKey(key string) bool {
	return strings.HasSuffix(key, ".meta") || strings.HasSuffix(key, "/meta")
}

// outlinePath reads the chapter index path stored with an outline node.
func outlinePath(m map[string]any) []int {
	raw, _ := m["path"].([]any)
	path := make([]int, 0, len(raw))
	for _, v := range raw {
		if f, ok := v.(float64); ok {
			path = append(path, int(f))
		}
	}
	return path
}

func hashIndexPath(ctx context.Context, ps *pathstore.Client, userID, docID, docPrefix string) string {
	meta, err := ps.GetNode(ctx, docPrefix+"/meta")
	if err != nil || meta == nil {
		return ""
	}
	metaMap, ok := meta.Value.(map[string]any)
	if !ok {
		return ""
	}
	hash, _ := metaMap["content_hash"].(string)
	if hash == "" {
		return ""
	}
	return fmt.Sprintf("memory/users/%s/documents/by_hash/%s/%s", userID, hash, docID)
}
