package main

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"net"
	"net/http"
	"os"
	"strings"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/vsevolodlukovsky/evawiki-mcp/internal/evawiki"
	"github.com/vsevolodlukovsky/evawiki-mcp/tools"
)

func executeRoot(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestRootCmdHelp(t *testing.T) {
	out, err := executeRoot(t, "--help")
	if err != nil {
		t.Fatalf("--help failed: %v", err)
	}
	for _, want := range []string{"evawiki-mcp", "EVAWIKI_API_URL", "EVAWIKI_API_TOKEN", "EVAWIKI_TIMEOUT", "TOML or YAML (.yaml/.yml)"} {
		if !strings.Contains(out, want) {
			t.Errorf("help output missing %q", want)
		}
	}
}

func TestRootCmdVersion(t *testing.T) {
	out, err := executeRoot(t, "--version")
	if err != nil {
		t.Fatalf("--version failed: %v", err)
	}
	if out != "evawiki-mcp version "+version+"\n" {
		t.Errorf("version output = %q", out)
	}
}

func TestRootCmdRejectsArgs(t *testing.T) {
	if _, err := executeRoot(t, "extra"); err == nil {
		t.Error("positional arguments should be rejected")
	}
}

func TestRunMissingConfig(t *testing.T) {
	t.Setenv(evawiki.EnvAPIURL, "")
	t.Setenv(evawiki.EnvAPIToken, "")
	t.Setenv(evawiki.EnvConfigFile, "")

	err := run(context.Background(), io.Discard)
	if err == nil {
		t.Fatal("expected configuration error")
	}
	if !strings.Contains(err.Error(), "failed to load configuration") {
		t.Errorf("error = %v", err)
	}
	if !strings.Contains(err.Error(), evawiki.EnvAPIURL) {
		t.Errorf("error should name the missing variable: %v", err)
	}
}

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"DEBUG", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{" error ", slog.LevelError},
		{"", slog.LevelInfo},
		{"verbose", slog.LevelInfo},
	}

	for _, tt := range tests {
		if got := parseLogLevel(tt.in); got != tt.want {
			t.Errorf("parseLogLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestNewServerRegistersTools(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	config := &evawiki.Config{BaseURL: "http://eva.invalid/api/", Token: "t", VerifySSL: true}
	server := newServer(config, logger)

	ctx := context.Background()
	clientTransport, serverTransport := mcp.NewInMemoryTransports()
	serverSession, err := server.Connect(ctx, serverTransport, nil)
	if err != nil {
		t.Fatalf("server connect: %v", err)
	}
	defer serverSession.Close()

	client := mcp.NewClient(&mcp.Implementation{Name: "test", Version: "test"}, nil)
	session, err := client.Connect(ctx, clientTransport, nil)
	if err != nil {
		t.Fatalf("client connect: %v", err)
	}
	defer session.Close()

	if got := session.InitializeResult().Instructions; !strings.Contains(got, "evawiki_search_documents") {
		t.Errorf("instructions = %q", got)
	}

	res, err := session.ListTools(ctx, nil)
	if err != nil {
		t.Fatalf("ListTools: %v", err)
	}
	if len(res.Tools) != len(tools.AllTools) {
		t.Errorf("registered %d tools, want %d", len(res.Tools), len(tools.AllTools))
	}
}

func TestServeMetrics(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	stop := serveMetrics(listener, logger)
	defer stop()

	resp, err := http.Get("http://" + listener.Addr().String() + "/metrics")
	if err != nil {
		t.Fatalf("GET /metrics: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d, want 200", resp.StatusCode)
	}
	body, _ := io.ReadAll(resp.Body)
	if !strings.Contains(string(body), "go_goroutines") {
		t.Error("metrics output should contain the default Go collector")
	}
}
