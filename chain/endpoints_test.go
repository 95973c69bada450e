package chain

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
)

func quietLog() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func testPool(endpoints ...string) *EndpointPool {
	p := NewEndpointPool(endpoints, quietLog())
	p.rotateBackoff = time.Millisecond
	return p
}

func rowsHandler(hits *atomic.Int32, body string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, body)
	}
}

func failHandler(hits *atomic.Int32) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}
}

func TestGetTableRows_RotatesOnFailure(t *testing.T) {
	var badHits, goodHits atomic.Int32
	bad := httptest.NewServer(failHandler(&badHits))
	defer bad.Close()
	good := httptest.NewServer(rowsHandler(&goodHits, `{"rows":[{"last_mine_tx":"abc"}]}`))
	defer good.Close()

	pool := testPool(bad.URL, good.URL)
	rows := pool.GetTableRows(context.Background(), TableRowsRequest{Table: "miners"})
	if len(rows) != 1 {
		t.Fatalf("expected 1 row after rotation, got %d", len(rows))
	}
	if badHits.Load() != 1 || goodHits.Load() != 1 {
		t.Fatalf("expected one hit per endpoint, got bad=%d good=%d", badHits.Load(), goodHits.Load())
	}
	if pool.Current() != good.URL {
		t.Fatalf("cursor should rest on the healthy endpoint, got %s", pool.Current())
	}
}

func TestGetTableRows_TotalFailureYieldsAbsent(t *testing.T) {
	var hitsA, hitsB atomic.Int32
	a := httptest.NewServer(failHandler(&hitsA))
	defer a.Close()
	b := httptest.NewServer(failHandler(&hitsB))
	defer b.Close()

	pool := testPool(a.URL, b.URL)
	rows := pool.GetTableRows(context.Background(), TableRowsRequest{Table: "miners"})
	if rows != nil {
		t.Fatalf("expected absent result, got %v", rows)
	}
	if hitsA.Load() != 1 || hitsB.Load() != 1 {
		t.Fatalf("each endpoint should be tried exactly once, got a=%d b=%d", hitsA.Load(), hitsB.Load())
	}
}

func TestGetTableRows_CursorPersistsAcrossCalls(t *testing.T) {
	var hitsA, hitsB atomic.Int32
	a := httptest.NewServer(failHandler(&hitsA))
	defer a.Close()
	b := httptest.NewServer(rowsHandler(&hitsB, `{"rows":[{}]}`))
	defer b.Close()

	pool := testPool(a.URL, b.URL)
	pool.GetTableRows(context.Background(), TableRowsRequest{Table: "miners"})
	pool.GetTableRows(context.Background(), TableRowsRequest{Table: "miners"})

	if hitsA.Load() != 1 {
		t.Fatalf("second query should start from the rotated cursor, failing endpoint hit %d times", hitsA.Load())
	}
	if hitsB.Load() != 2 {
		t.Fatalf("healthy endpoint should serve both queries, got %d hits", hitsB.Load())
	}
}

func TestGetTableRows_NoBackoffAfterFinalAttempt(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(failHandler(&hits))
	defer srv.Close()

	pool := NewEndpointPool([]string{srv.URL}, quietLog())
	pool.rotateBackoff = 2 * time.Second

	start := time.Now()
	if rows := pool.GetTableRows(context.Background(), TableRowsRequest{Table: "miners"}); rows != nil {
		t.Fatalf("expected absent result, got %v", rows)
	}
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Fatalf("total failure slept the rotate backoff after the last attempt (%v)", elapsed)
	}
}

func TestAdvanceWrapsAround(t *testing.T) {
	pool := testPool("http://one.test", "http://two.test")
	first := pool.Current()
	pool.Advance()
	second := pool.Current()
	pool.Advance()
	if pool.Current() != first || second == first {
		t.Fatalf("advance should cycle through both endpoints and wrap")
	}
}
