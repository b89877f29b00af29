package api

import (
	"net/http"
)

func (s *Server) handleParseStats(w http.ResponseWriter, r *http.Request) {
	if s.metrics == nil || s.metrics.ParseLatency == nil {
		jsonError(w, "parse stats unavailable", http.StatusServiceUnavailable)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"parse_latency": s.metrics.ParseLatency.Snapshot(),
		"queue_depth":   s.orchestrator.QueueDepth(),
		"tracked_jobs":  s.orchestrator.TrackedJobs(),
	})
}
