package monitoring

import (
	"io"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"go.uber.org/zap"
)

func TestMetricsExposition(t *testing.T) {
	m := NewMetrics()
	m.SetReady(true)
	m.ObservePrediction(OutcomeOK)
	m.ObservePrediction(OutcomeOK)
	m.ObservePrediction(OutcomeValidation)
	m.ObserveInference(3 * time.Millisecond)
	m.ArtifactChanged("model")

	if got := testutil.ToFloat64(m.predictions.WithLabelValues(OutcomeOK)); got != 2 {
		t.Fatalf("expected 2 ok predictions, got %v", got)
	}
	if got := testutil.ToFloat64(m.ready); got != 1 {
		t.Fatalf("expected ready gauge 1, got %v", got)
	}

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	body, _ := io.ReadAll(rec.Body)
	for _, want := range []string{
		`goldpredict_predictions_total{outcome="validation_error"} 1`,
		`goldpredict_artifact_changes_total{artifact="model"} 1`,
		`goldpredict_inference_seconds_count 1`,
	} {
		if !strings.Contains(string(body), want) {
			t.Fatalf("exposition missing %q", want)
		}
	}
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	m.SetReady(true)
	m.ObservePrediction(OutcomeOK)
	m.ObserveInference(time.Second)
	m.ArtifactChanged("dataset")
	if m.Registry() != nil {
		t.Fatalf("expected nil registry")
	}
}

func TestWatcherReportsArtifactWrites(t *testing.T) {
	dir := t.TempDir()
	model := filepath.Join(dir, "svm_model.json")
	other := filepath.Join(dir, "notes.txt")
	if err := os.WriteFile(model, []byte("{}"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}

	metrics := NewMetrics()
	w, err := NewWatcher(map[string]string{"model": model}, zap.NewNop(), metrics)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	events := make(chan string, 16)
	w.onEvent = func(artifact string, op fsnotify.Op) {
		events <- artifact
	}
	w.Start()
	defer w.Close()

	if err := os.WriteFile(other, []byte("ignored"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := os.WriteFile(model, []byte(`{"changed":true}`), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}

	select {
	case name := <-events:
		if name != "model" {
			t.Fatalf("unexpected artifact %q", name)
		}
	case <-time.After(5 * time.Second):
		t.Fatalf("no change event received")
	}

	if err := w.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("second close: %v", err)
	}
}
