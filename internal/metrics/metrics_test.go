package metrics

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/falijedan/falijedan/internal/backend"
	"github.com/falijedan/falijedan/internal/models"
	apptestutil "github.com/falijedan/falijedan/internal/testutil"
)

func TestMiddlewareCountsByPattern(t *testing.T) {
	recorder := New()

	mux := http.NewServeMux()
	mux.HandleFunc("GET /match/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})
	handler := recorder.Middleware(mux)

	for _, path := range []string{"/match/a", "/match/b"} {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	}

	got := testutil.ToFloat64(recorder.requests.WithLabelValues("GET /match/{id}", http.MethodGet, "404"))
	if got != 2 {
		t.Fatalf("expected 2 requests counted for the pattern, got %v", got)
	}
}

func TestInstrumentedClientRecordsOutcomes(t *testing.T) {
	recorder := New()
	fake := apptestutil.NewFakeBackend()
	fake.Matches = []models.Match{{ID: "m1", Sport: models.SportFootball}}
	client := recorder.Instrument(fake)
	ctx := context.Background()

	var matches []models.Match
	if err := client.Select(ctx, backend.From(backend.Matches), &matches); err != nil {
		t.Fatalf("select: %v", err)
	}
	var match models.Match
	err := client.SelectSingle(ctx, backend.From(backend.Matches).Eq(backend.ColumnID, "missing"), &match)
	if err == nil {
		t.Fatalf("expected not found error")
	}

	if got := testutil.ToFloat64(recorder.backendCalls.WithLabelValues("select", "matches", "ok")); got != 1 {
		t.Fatalf("expected one ok select, got %v", got)
	}
	if got := testutil.ToFloat64(recorder.backendCalls.WithLabelValues("select_single", "matches", "not_found")); got != 1 {
		t.Fatalf("expected one not_found select_single, got %v", got)
	}
	if fake.CallCount("select", backend.Matches) != 1 {
		t.Fatalf("expected the call to reach the wrapped client")
	}
}

func TestHandlerExposesSessionGauge(t *testing.T) {
	recorder := New()
	recorder.TrackSessions(func() int { return 3 })

	rec := httptest.NewRecorder()
	recorder.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	body, err := io.ReadAll(rec.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	if !strings.Contains(string(body), "falijedan_sessions_active 3") {
		t.Fatalf("expected session gauge in output, got %s", body)
	}
}
