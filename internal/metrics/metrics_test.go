package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/dgallion1/mdchapter/internal/mdast"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestObserveParse_CountsNodesByType(t *testing.T) {
	m := New()
	nodes, err := mdast.Parse("# a\nx\n## b\n")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	m.ObserveParse(time.Millisecond, 10, nodes, nil)
	m.ObserveParse(time.Millisecond, 10, nil, errors.New("boom"))

	if got := testutil.ToFloat64(m.nodes.WithLabelValues("chapter")); got != 2 {
		t.Errorf("expected 2 chapters counted, got %v", got)
	}
	if got := testutil.ToFloat64(m.nodes.WithLabelValues("default")); got != 1 {
		t.Errorf("expected 1 plain line counted, got %v", got)
	}
	if got := testutil.ToFloat64(m.parses.WithLabelValues("error")); got != 1 {
		t.Errorf("expected 1 failed parse, got %v", got)
	}
	if snap := m.ParseLatency.Snapshot(); snap.Count != 2 {
		t.Errorf("expected 2 latency samples, got %d", snap.Count)
	}
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	m.ObserveParse(time.Second, 1, nil, nil)
	m.JobFinished("completed")
	m.StoreRetried()
}

func TestHandler_ExposesCollectors(t *testing.T) {
	m := New()
	m.JobFinished("completed")

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `mdchapter_jobs_total{status="completed"} 1`) {
		t.Errorf("expected job counter in output, got:\n%s", rec.Body.String())
	}
}
