// Command benchmark measures EVA Wiki API latency through the MCP client.
//
// It uses the same EVAWIKI_* configuration as the server and issues read-only
// calls (ping and document search), first sequentially and then concurrently.
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sort"
	"sync"
	"time"

	"github.com/spf13/cobra"

	"github.com/vsevolodlukovsky/evawiki-mcp/internal/evawiki"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		requests    int
		concurrency int
		query       string
	)

	cmd := &cobra.Command{
		Use:          "benchmark",
		Short:        "Measure EVA Wiki API latency",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			config, err := evawiki.LoadConfig()
			if err != nil {
				return fmt.Errorf("config error: %w", err)
			}
			logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
			client := evawiki.NewClient(config, evawiki.WithLogger(logger))
			return runBenchmark(cmd.Context(), cmd.OutOrStdout(), client, requests, concurrency, query)
		},
	}

	cmd.Flags().IntVar(&requests, "requests", 10, "Calls per measurement")
	cmd.Flags().IntVar(&concurrency, "concurrency", 4, "Parallel workers for the concurrent run")
	cmd.Flags().StringVar(&query, "query", "a", "Search text for the search measurement")
	return cmd
}

// Stats summarizes the latencies of one measurement.
type Stats struct {
	Calls  int
	Errors int
	Total  time.Duration // wall clock
	Min    time.Duration
	Avg    time.Duration
	P95    time.Duration
	Max    time.Duration
}

func runBenchmark(ctx context.Context, w io.Writer, client *evawiki.Client, requests, concurrency int, query string) error {
	if requests <= 0 {
		return fmt.Errorf("requests must be positive, got %d", requests)
	}

	fmt.Fprintln(w, "EVA Wiki MCP Server - Performance Measurements")
	fmt.Fprintln(w, "==============================================")
	fmt.Fprintln(w)

	if _, err := client.PingMCP(ctx, evawiki.PingArgs{}); err != nil {
		return fmt.Errorf("EVA is not reachable: %w", err)
	}

	ping := func(ctx context.Context) error {
		_, err := client.PingMCP(ctx, evawiki.PingArgs{})
		return err
	}
	search := func(ctx context.Context) error {
		_, err := client.SearchDocumentsMCP(ctx, evawiki.SearchDocumentsArgs{Query: query, Limit: ptr(10)})
		return err
	}

	printStats(w, "1. Ping (sequential)", measure(ctx, ping, requests, 1))
	printStats(w, fmt.Sprintf("2. Ping (%d workers)", concurrency), measure(ctx, ping, requests, concurrency))
	printStats(w, fmt.Sprintf("3. Search %q (sequential)", query), measure(ctx, search, requests, 1))
	printStats(w, fmt.Sprintf("4. Search %q (%d workers)", query, concurrency), measure(ctx, search, requests, concurrency))
	return nil
}

// measure runs call n times across workers and collects per-call latency.
func measure(ctx context.Context, call func(context.Context) error, n, workers int) Stats {
	if workers < 1 {
		workers = 1
	}

	var (
		mu        sync.Mutex
		latencies = make([]time.Duration, 0, n)
		failures  int
		wg        sync.WaitGroup
	)
	jobs := make(chan struct{})

	start := time.Now()
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range jobs {
				t := time.Now()
				err := call(ctx)
				d := time.Since(t)

				mu.Lock()
				latencies = append(latencies, d)
				if err != nil {
					failures++
				}
				mu.Unlock()
			}
		}()
	}
	for i := 0; i < n; i++ {
		jobs <- struct{}{}
	}
	close(jobs)
	wg.Wait()

	stats := summarize(latencies)
	stats.Errors = failures
	stats.Total = time.Since(start)
	return stats
}

func summarize(latencies []time.Duration) Stats {
	stats := Stats{Calls: len(latencies)}
	if len(latencies) == 0 {
		return stats
	}

	sorted := append([]time.Duration(nil), latencies...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	var sum time.Duration
	for _, d := range sorted {
		sum += d
	}
	stats.Min = sorted[0]
	stats.Max = sorted[len(sorted)-1]
	stats.Avg = sum / time.Duration(len(sorted))
	stats.P95 = sorted[(len(sorted)*95+99)/100-1]
	return stats
}

func printStats(w io.Writer, title string, s Stats) {
	fmt.Fprintf(w, "%s:\n", title)
	fmt.Fprintf(w, "   Calls: %d (errors: %d) in %v\n", s.Calls, s.Errors, s.Total)
	fmt.Fprintf(w, "   Latency min/avg/p95/max: %v / %v / %v / %v\n", s.Min, s.Avg, s.P95, s.Max)
	fmt.Fprintln(w)
}

func ptr[T any](v T) *T {
	return &v
}
