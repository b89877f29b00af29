package api

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/dgallion1/mdchapter/internal/mdast"
	"github.com/dgallion1/mdchapter/internal/parser"
	"github.com/dgallion1/mdchapter/internal/render"
)

// handleParse parses an uploaded document synchronously and writes its
// chapter tree in the requested format. The body is either raw markdown or
// a multipart form with a "file" field of any supported type.
func (s *Server) handleParse(w http.ResponseWriter, r *http.Request) {
	format, err := render.ParseFormat(r.URL.Query().Get("format"))
	if err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes+1024*1024)
	filename, data, status, err := s.readUpload(r)
	if err != nil {
		jsonError(w, err.Error(), status)
		return
	}

	start := time.Now()
	nodes, err := s.parseDocument(filename, data)
	s.metrics.ObserveParse(time.Since(start), len(data), nodes, err)
	if err != nil {
		var se *mdast.StructuralError
		if errors.As(err, &se) {
			writeJSON(w, http.StatusUnprocessableEntity, map[string]any{
				"error":  err.Error(),
				"kind":   se.Kind,
				"offset": se.Offset,
				"line":   se.Span,
			})
			return
		}
		jsonError(w, "parse failed: "+err.Error(), http.StatusBadRequest)
		return
	}

	var buf bytes.Buffer
	if err := render.Write(&buf, format, nodes); err != nil {
		jsonError(w, "render failed: "+err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", format.ContentType())
	w.Write(buf.Bytes())
}

// readUpload returns the document name and bytes, and an HTTP status on
// failure.
func (s *Server) readUpload(r *http.Request) (string, []byte, int, error) {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType != "multipart/form-data" {
		data, err := io.ReadAll(io.LimitReader(r.Body, s.cfg.MaxUploadBytes+1))
		if err != nil {
			return "", nil, http.StatusBadRequest, fmt.Errorf("failed to read body: %w", err)
		}
		if int64(len(data)) > s.cfg.MaxUploadBytes {
			return "", nil, http.StatusRequestEntityTooLarge, fmt.Errorf("body exceeds max size (%d bytes)", s.cfg.MaxUploadBytes)
		}
		name := sanitizeFilename(r.URL.Query().Get("filename"))
		if name == "unnamed" {
			name = "input.md"
		}
		return name, data, 0, nil
	}

	if err := r.ParseMultipartForm(32 << 20); err != nil {
		return "", nil, http.StatusBadRequest, fmt.Errorf("invalid multipart form: %w", err)
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("file")
	if err != nil {
		return "", nil, http.StatusBadRequest, fmt.Errorf("file is required: %w", err)
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, s.cfg.MaxUploadBytes+1))
	if err != nil {
		return "", nil, http.StatusInternalServerError, fmt.Errorf("failed to read file")
	}
	if int64(len(data)) > s.cfg.MaxUploadBytes {
		return "", nil, http.StatusRequestEntityTooLarge, fmt.Errorf("file exceeds max size (%d bytes)", s.cfg.MaxUploadBytes)
	}
	return sanitizeFilename(header.Filename), data, 0, nil
}

// parseDocument runs markdown through the server's engine and converts
// every other supported format first.
func (s *Server) parseDocument(filename string, data []byte) ([]mdast.Node, error) {
	if !parser.IsSupportedExtension(filename) {
		return nil, fmt.Errorf("unsupported file type: %s", filepath.Ext(filename))
	}
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".md", ".markdown":
		return s.engine.Parse(string(data))
	}
	p, err := s.parsers.ForFile(filename)
	if err != nil {
		return nil, err
	}
	doc, err := p.Parse(bytes.NewReader(data), filename)
	if err != nil {
		return nil, err
	}
	return doc.Nodes, nil
}
