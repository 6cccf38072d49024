package eastmoney

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestEstimateAgainstServer(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasPrefix(r.URL.Path, "/js/") {
			http.NotFound(w, r)
			return
		}
		if r.Header.Get("Referer") == "" || r.Header.Get("User-Agent") == "" {
			http.Error(w, "blocked", http.StatusForbidden)
			return
		}
		fmt.Fprint(w, estimateFixture)
	}))
	defer srv.Close()

	c := New(WithBaseURLs(srv.URL, "", ""), WithTimeout(2*time.Second))
	est, err := c.Estimate(context.Background(), "161725")
	if err != nil {
		t.Fatalf("Estimate failed: %v", err)
	}
	if est.Code != "161725" {
		t.Errorf("code: got %q", est.Code)
	}
}

func TestBatchIsolatesFailures(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.Contains(r.URL.Path, "161725") {
			fmt.Fprint(w, estimateFixture)
			return
		}
		http.Error(w, "not found", http.StatusNotFound)
	}))
	defer srv.Close()

	c := New(WithBaseURLs(srv.URL, "", ""))
	got := c.Batch(context.Background(), []string{"161725", "999999"})

	if len(got) != 1 {
		t.Fatalf("expected 1 estimate, got %d", len(got))
	}
	if _, ok := got["161725"]; !ok {
		t.Error("the healthy fund should be present")
	}
	if _, ok := got["999999"]; ok {
		t.Error("the failed fund must be omitted, not zero-valued")
	}
}

func TestHistoryAgainstServer(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("type") != "lsjz" {
			http.NotFound(w, r)
			return
		}
		fmt.Fprint(w, historyFixture)
	}))
	defer srv.Close()

	c := New(WithBaseURLs("", srv.URL, ""))
	history, err := c.History(context.Background(), "161725", 1, 30)
	if err != nil {
		t.Fatalf("History failed: %v", err)
	}
	if len(history) != 2 {
		t.Errorf("expected 2 rows, got %d", len(history))
	}
}

func TestEstimateUpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "rate limited", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	c := New(WithBaseURLs(srv.URL, "", ""))
	if _, err := c.Estimate(context.Background(), "161725"); err == nil {
		t.Fatal("expected error on upstream failure")
	}
}
