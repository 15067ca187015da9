package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestObserveUpstream(t *testing.T) {
	before := testutil.ToFloat64(UpstreamRequests.WithLabelValues("tmdb", "error"))
	ObserveUpstream("tmdb", errors.New("boom"))
	after := testutil.ToFloat64(UpstreamRequests.WithLabelValues("tmdb", "error"))
	if after-before != 1 {
		t.Fatalf("expected error counter to grow by 1, got %v", after-before)
	}

	before = testutil.ToFloat64(UpstreamRequests.WithLabelValues("tmdb", "success"))
	ObserveUpstream("tmdb", nil)
	after = testutil.ToFloat64(UpstreamRequests.WithLabelValues("tmdb", "success"))
	if after-before != 1 {
		t.Fatalf("expected success counter to grow by 1, got %v", after-before)
	}
}

func TestObserveHTTP(t *testing.T) {
	ObserveHTTP("/api/recommendations", "POST", 200, 150*time.Millisecond)
	if n := testutil.CollectAndCount(HTTPRequestDuration); n == 0 {
		t.Fatal("expected at least one histogram series")
	}
}
