package main

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/vsevolodlukovsky/evawiki-mcp/internal/evawiki"
)

func TestSummarize(t *testing.T) {
	var latencies []time.Duration
	for i := 1; i <= 20; i++ {
		latencies = append(latencies, time.Duration(i)*time.Millisecond)
	}

	s := summarize(latencies)

	if s.Calls != 20 {
		t.Errorf("Calls = %d", s.Calls)
	}
	if s.Min != time.Millisecond || s.Max != 20*time.Millisecond {
		t.Errorf("Min/Max = %v/%v", s.Min, s.Max)
	}
	if s.Avg != 10500*time.Microsecond {
		t.Errorf("Avg = %v, want 10.5ms", s.Avg)
	}
	if s.P95 != 19*time.Millisecond {
		t.Errorf("P95 = %v, want 19ms", s.P95)
	}
}

func TestSummarizeEmpty(t *testing.T) {
	if s := summarize(nil); s.Calls != 0 || s.Max != 0 {
		t.Errorf("summarize(nil) = %+v", s)
	}
}

func TestMeasure(t *testing.T) {
	var calls atomic.Int32
	call := func(context.Context) error {
		if calls.Add(1)%4 == 0 {
			return errors.New("boom")
		}
		return nil
	}

	s := measure(context.Background(), call, 8, 3)

	if s.Calls != 8 || calls.Load() != 8 {
		t.Errorf("Calls = %d, invoked %d", s.Calls, calls.Load())
	}
	if s.Errors != 2 {
		t.Errorf("Errors = %d, want 2", s.Errors)
	}
}

func TestRunBenchmark(t *testing.T) {
	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"jsonrpc":"2.2","result":[{"id":"1"}]}`))
	}))
	defer server.Close()

	client := evawiki.NewClient(&evawiki.Config{BaseURL: server.URL, Token: "t", VerifySSL: true, Timeout: 5 * time.Second})

	var out bytes.Buffer
	if err := runBenchmark(context.Background(), &out, client, 3, 2, "guide"); err != nil {
		t.Fatalf("runBenchmark: %v", err)
	}

	// 1 reachability check + 4 measurements of 3 calls
	if got := hits.Load(); got != 13 {
		t.Errorf("EVA calls = %d, want 13", got)
	}
	for _, want := range []string{"1. Ping (sequential)", "2. Ping (2 workers)", `4. Search "guide" (2 workers)`, "errors: 0"} {
		if !strings.Contains(out.String(), want) {
			t.Errorf("output missing %q:\n%s", want, out.String())
		}
	}
}

func TestRunBenchmarkUnreachable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusBadGateway)
	}))
	defer server.Close()

	client := evawiki.NewClient(&evawiki.Config{BaseURL: server.URL, Token: "t", VerifySSL: true, Timeout: 5 * time.Second})

	err := runBenchmark(context.Background(), &bytes.Buffer{}, client, 3, 2, "x")
	if err == nil || !strings.Contains(err.Error(), "not reachable") {
		t.Errorf("expected reachability error, got %v", err)
	}
}

func TestRunBenchmarkRejectsZeroRequests(t *testing.T) {
	client := evawiki.NewClient(&evawiki.Config{BaseURL: "http://eva.invalid/api/", Token: "t"})
	if err := runBenchmark(context.Background(), &bytes.Buffer{}, client, 0, 1, "x"); err == nil {
		t.Error("expected error for zero requests")
	}
}
