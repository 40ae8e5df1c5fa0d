// Package evawiki provides a client for the EVA Wiki / EVA Team JSON-RPC API
// and the MCP tool methods built on top of it.
package evawiki

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	apierrors "github.com/vsevolodlukovsky/evawiki-mcp/internal/errors"
	"github.com/vsevolodlukovsky/evawiki-mcp/internal/jsonx"
	"github.com/vsevolodlukovsky/evawiki-mcp/metrics"
	"github.com/vsevolodlukovsky/evawiki-mcp/tracing"
)

// ProtocolVersion is the EVA JSON-RPC dialect sent in every envelope.
const ProtocolVersion = "2.2"

// maxErrorBody caps how much of a failed HTTP response is kept in errors.
const maxErrorBody = 200

// Client talks to a single EVA JSON-RPC endpoint. It holds no per-call state
// and is safe for concurrent use.
type Client struct {
	config     *Config
	httpClient *http.Client
	logger     *slog.Logger
	newCallID  func() string
}

// ClientOption configures the Client
type ClientOption func(*Client)

// WithHTTPClient sets a custom HTTP client
func WithHTTPClient(c *http.Client) ClientOption {
	return func(client *Client) {
		client.httpClient = c
	}
}

// WithLogger sets a custom logger
func WithLogger(l *slog.Logger) ClientOption {
	return func(client *Client) {
		client.logger = l
	}
}

// WithCallIDGenerator replaces the correlation id source (UUIDv4 by default).
func WithCallIDGenerator(gen func() string) ClientOption {
	return func(client *Client) {
		client.newCallID = gen
	}
}

// NewClient creates a client for the endpoint described by config.
func NewClient(config *Config, opts ...ClientOption) *Client {
	c := &Client{
		config:     config,
		httpClient: newHTTPClient(config),
		logger:     slog.Default(),
		newCallID:  uuid.NewString,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Config returns the client's configuration.
func (c *Client) Config() *Config {
	return c.config
}

// CallOptions holds the optional envelope fields. A nil field is omitted from
// the request; NoMeta is a pointer so that an explicit false is still sent.
type CallOptions struct {
	Args   []any
	Kwargs map[string]any
	Fields []string
	Filter any
	Flags  map[string]any
	NoMeta *bool
}

// Envelope is one EVA JSON-RPC request.
type Envelope struct {
	JSONRPC string
	Method  string
	CallID  string
	Args    []any
	Kwargs  map[string]any
	Fields  []string
	Filter  any
	Flags   map[string]any
	NoMeta  *bool
}

// Payload returns the wire form of the envelope. Optional fields appear only
// when set, so a method-only envelope has exactly jsonrpc, method and callid.
func (e *Envelope) Payload() map[string]any {
	payload := map[string]any{
		"jsonrpc": e.JSONRPC,
		"method":  e.Method,
		"callid":  e.CallID,
	}
	if e.Args != nil {
		payload["args"] = e.Args
	}
	if e.Kwargs != nil {
		payload["kwargs"] = e.Kwargs
	}
	if e.Fields != nil {
		payload["fields"] = e.Fields
	}
	if e.Filter != nil {
		payload["filter"] = e.Filter
	}
	if e.Flags != nil {
		payload["flags"] = e.Flags
	}
	if e.NoMeta != nil {
		payload["no_meta"] = *e.NoMeta
	}
	return payload
}

// NewEnvelope builds the envelope for method with a fresh correlation id.
func (c *Client) NewEnvelope(method string, opts CallOptions) *Envelope {
	return &Envelope{
		JSONRPC: ProtocolVersion,
		Method:  method,
		CallID:  c.newCallID(),
		Args:    opts.Args,
		Kwargs:  opts.Kwargs,
		Fields:  opts.Fields,
		Filter:  opts.Filter,
		Flags:   opts.Flags,
		NoMeta:  opts.NoMeta,
	}
}

// Response is the full parsed body of a successful call, including `result`
// and any auxiliary members such as `meta`.
type Response map[string]any

// Result returns the `result` member, or nil if there is none.
func (r Response) Result() any {
	return r["result"]
}

// Call invokes method on the EVA API. It returns the full parsed response, a
// *TransportError for HTTP-level failures, or an *APIError when the response
// carries an `error` object. Nothing is retried.
func (c *Client) Call(ctx context.Context, method string, opts CallOptions) (Response, error) {
	env := c.NewEnvelope(method, opts)

	ctx, span := tracing.StartSpan(ctx, "evawiki.call")
	defer span.End()
	tracing.AddRPCAttributes(span, method, env.CallID)

	start := time.Now()
	resp, status, err := c.do(ctx, env)
	duration := time.Since(start)

	span.SetAttributes(attribute.Int("http.response.status_code", status))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		metrics.RecordAPICall(method, duration.Seconds(), false, errorCode(err))
		c.logger.Debug("EVA API call failed",
			"method", method,
			"callid", env.CallID,
			"status", status,
			"duration", duration,
			"error", err)
		return nil, err
	}

	span.SetStatus(codes.Ok, "")
	metrics.RecordAPICall(method, duration.Seconds(), true, "")
	c.logger.Debug("EVA API call",
		"method", method,
		"callid", env.CallID,
		"status", status,
		"duration", duration)
	return resp, nil
}

// do performs the HTTP exchange and interprets the body.
func (c *Client) do(ctx context.Context, env *Envelope) (Response, int, error) {
	body, err := jsonx.Marshal(env.Payload())
	if err != nil {
		return nil, 0, fmt.Errorf("failed to encode %s request: %w", env.Method, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.BaseURL, bytes.NewReader(body))
	if err != nil {
		return nil, 0, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.config.Token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, 0, &apierrors.TransportError{Method: env.Method, Err: err}
	}

	data, err := readAndClose(resp)
	if err != nil {
		return nil, resp.StatusCode, &apierrors.TransportError{
			Method:     env.Method,
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("failed to read response: %w", err),
		}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, resp.StatusCode, &apierrors.TransportError{
			Method:     env.Method,
			StatusCode: resp.StatusCode,
			Body:       truncate(string(bytes.TrimSpace(data)), maxErrorBody),
		}
	}

	var parsed Response
	if err := jsonx.Unmarshal(data, &parsed); err != nil {
		return nil, resp.StatusCode, &apierrors.TransportError{
			Method:     env.Method,
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("failed to parse response: %w", err),
		}
	}
	if parsed == nil {
		return nil, resp.StatusCode, &apierrors.TransportError{
			Method:     env.Method,
			StatusCode: resp.StatusCode,
			Err:        errors.New("response body is not a JSON object"),
		}
	}

	if apiErr := remoteError(env.Method, parsed["error"]); apiErr != nil {
		return nil, resp.StatusCode, apiErr
	}

	return parsed, resp.StatusCode, nil
}

// remoteError normalizes the `error` member. Null, false, empty objects and
// empty strings do not count as an error.
func remoteError(method string, raw any) *apierrors.APIError {
	switch e := raw.(type) {
	case nil:
		return nil
	case map[string]any:
		if len(e) == 0 {
			return nil
		}
		message, _ := e["message"].(string)
		return apierrors.NewAPIError(method, e["code"], message)
	case string:
		if e == "" {
			return nil
		}
		return apierrors.NewAPIError(method, nil, e)
	case bool:
		if !e {
			return nil
		}
		return apierrors.NewAPIError(method, nil, "")
	case json.Number:
		if f, err := e.Float64(); err == nil && f == 0 {
			return nil
		}
		return apierrors.NewAPIError(method, nil, e.String())
	case []any:
		if len(e) == 0 {
			return nil
		}
		return apierrors.NewAPIError(method, nil, fmt.Sprint(e))
	default:
		return apierrors.NewAPIError(method, nil, fmt.Sprint(e))
	}
}

// errorCode extracts a metrics label for a failed call.
func errorCode(err error) string {
	switch e := err.(type) {
	case *apierrors.APIError:
		if e.Code == nil {
			return "unknown"
		}
		return fmt.Sprint(e.Code)
	case *apierrors.TransportError:
		if e.StatusCode != 0 {
			return fmt.Sprintf("http_%d", e.StatusCode)
		}
		return "transport"
	default:
		return "internal"
	}
}

// readAndClose reads the response body and closes it
func readAndClose(resp *http.Response) ([]byte, error) {
	body, err := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	return body, err
}

// truncate shortens a string to maxLen, adding "..." if truncated
func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}

// newHTTPClient creates an HTTP client honoring the configured timeout and
// TLS verification toggle.
func newHTTPClient(config *Config) *http.Client {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.TLSHandshakeTimeout = 10 * time.Second
	if !config.VerifySSL {
		transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true} //nolint:gosec // opt-in via EVAWIKI_VERIFY_SSL
	}

	timeout := config.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	return &http.Client{
		Timeout:   timeout,
		Transport: transport,
	}
}
