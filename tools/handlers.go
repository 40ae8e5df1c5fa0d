package tools

import (
	"context"
	"fmt"
	"log/slog"
	"reflect"
	"runtime/debug"
	"time"

	"github.com/google/jsonschema-go/jsonschema"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	apierrors "github.com/vsevolodlukovsky/evawiki-mcp/internal/errors"
	"github.com/vsevolodlukovsky/evawiki-mcp/internal/evawiki"
	"github.com/vsevolodlukovsky/evawiki-mcp/metrics"
	"github.com/vsevolodlukovsky/evawiki-mcp/tracing"
)

// jsonValueSchema describes parameters that accept either JSON text or an
// already structured JSON value.
var jsonValueSchema = &jsonschema.Schema{
	Types: []string{"string", "array", "object", "null"},
}

// HandlerRegistry provides type-safe tool registration by mapping
// tool names to their concrete handler implementations.
type HandlerRegistry struct {
	client *evawiki.Client
	logger *slog.Logger
}

// NewHandlerRegistry creates a new handler registry.
func NewHandlerRegistry(client *evawiki.Client, logger *slog.Logger) *HandlerRegistry {
	return &HandlerRegistry{
		client: client,
		logger: logger,
	}
}

// RegisterAll registers all tools with the MCP server.
func (h *HandlerRegistry) RegisterAll(server *mcp.Server) {
	registered := 0
	for _, spec := range AllTools {
		if h.registerByName(server, spec) {
			registered++
		}
	}
	h.logger.Info("Registered all tools", "count", registered)
}

// registerByName dispatches to the correct typed registration function.
func (h *HandlerRegistry) registerByName(server *mcp.Server, spec ToolSpec) bool {
	c := h.client

	switch spec.Method {
	// Documents
	case "GetDocumentByCode":
		return register(h, server, spec, c.GetDocumentByCodeMCP)
	case "GetDocumentText":
		return register(h, server, spec, c.GetDocumentTextMCP)
	case "ListDocuments":
		return register(h, server, spec, c.ListDocumentsMCP)
	case "SearchDocuments":
		return register(h, server, spec, c.SearchDocumentsMCP)
	case "UpdateDocumentText":
		return register(h, server, spec, c.UpdateDocumentTextMCP)
	case "PublishDocument":
		return register(h, server, spec, c.PublishDocumentMCP)
	case "DownloadAllAttachments":
		return register(h, server, spec, c.DownloadAllAttachmentsMCP)

	// Projects and people
	case "ListProjects":
		return register(h, server, spec, c.ListProjectsMCP)
	case "FindUser":
		return register(h, server, spec, c.FindUserMCP)
	case "Ping":
		return register(h, server, spec, c.PingMCP)

	// Passthrough
	case "RawCall":
		return register(h, server, spec, c.RawCallMCP)

	default:
		h.logger.Error("Unknown method, tool not registered", "method", spec.Method, "tool", spec.Name)
		return false
	}
}

// buildTool creates an mcp.Tool from a ToolSpec.
func (h *HandlerRegistry) buildTool(spec ToolSpec) *mcp.Tool {
	annotations := &mcp.ToolAnnotations{
		Title:          spec.Title,
		ReadOnlyHint:   spec.ReadOnly,
		IdempotentHint: spec.Idempotent,
	}
	if spec.Destructive {
		annotations.DestructiveHint = ptr(true)
	} else if !spec.ReadOnly {
		annotations.DestructiveHint = ptr(false)
	}
	if spec.OpenWorld {
		annotations.OpenWorldHint = ptr(true)
	}

	return &mcp.Tool{
		Name:        spec.Name,
		Description: spec.Description,
		Annotations: annotations,
	}
}

// inputSchema infers the argument schema for Args, widening JSONValue
// parameters so hosts may send text or structured JSON.
func inputSchema[Args any]() (*jsonschema.Schema, error) {
	return jsonschema.For[Args](&jsonschema.ForOptions{
		TypeSchemas: map[reflect.Type]*jsonschema.Schema{
			reflect.TypeFor[evawiki.JSONValue](): jsonValueSchema,
		},
	})
}

// register is a generic helper that registers a tool with the MCP server.
// It wraps the client method with panic recovery, metrics, tracing, and logging.
func register[Args, Result any](
	h *HandlerRegistry,
	server *mcp.Server,
	spec ToolSpec,
	method func(context.Context, Args) (Result, error),
) bool {
	tool := h.buildTool(spec)
	schema, err := inputSchema[Args]()
	if err != nil {
		h.logger.Error("Cannot build input schema, tool not registered", "tool", spec.Name, "error", err)
		return false
	}
	tool.InputSchema = schema

	mcp.AddTool(server, tool, func(ctx context.Context, req *mcp.CallToolRequest, args Args) (_ *mcp.CallToolResult, result Result, err error) {
		defer h.recoverPanic(spec.Name, &err)

		ctx, span := tracing.StartSpan(ctx, "mcp.tool."+spec.Name)
		defer span.End()
		tracing.AddToolAttributes(span, spec.Name, spec.Category, spec.ReadOnly)

		metrics.RequestInFlight.WithLabelValues(spec.Name).Inc()
		defer metrics.RequestInFlight.WithLabelValues(spec.Name).Dec()

		start := time.Now()
		result, err = method(ctx, args)
		duration := time.Since(start).Seconds()

		span.SetAttributes(attribute.Float64("mcp.tool.duration_seconds", duration))

		if err != nil {
			kind := apierrors.KindOf(err)
			tracing.RecordError(span, err)
			span.SetStatus(codes.Error, err.Error())
			metrics.RecordRequest(spec.Name, duration, false)
			metrics.RecordToolError(spec.Name, kind.String())
			h.logger.Warn("Tool failed", "tool", spec.Name, "kind", kind.String(), "error", err)
			var zero Result
			return nil, zero, fmt.Errorf("%s failed: %w", spec.Name, err)
		}

		span.SetStatus(codes.Ok, "")
		metrics.RecordRequest(spec.Name, duration, true)
		h.logExecution(spec, args, result)
		return nil, result, nil
	})
	return true
}

// recoverPanic recovers from panics in tool handlers and turns them into a
// tool error.
func (h *HandlerRegistry) recoverPanic(toolName string, errp *error) {
	if rec := recover(); rec != nil {
		metrics.PanicsRecovered.WithLabelValues(toolName).Inc()
		h.logger.Error("Panic recovered",
			"tool", toolName,
			"panic", rec,
			"stack", string(debug.Stack()))
		if errp != nil {
			*errp = fmt.Errorf("%s failed: internal error: %v", toolName, rec)
		}
	}
}

// logExecution logs tool execution details.
func (h *HandlerRegistry) logExecution(spec ToolSpec, args, result any) {
	attrs := []any{"tool", spec.Name, "category", spec.Category}

	switch a := args.(type) {
	case evawiki.GetDocumentByCodeArgs:
		attrs = append(attrs, "code", a.Code)
	case evawiki.GetDocumentTextArgs:
		attrs = append(attrs, "code", a.Code)
	case evawiki.ListDocumentsArgs:
		attrs = append(attrs, "slice_start", a.SliceStart, "slice_limit", intAttr(a.SliceLimit))
	case evawiki.SearchDocumentsArgs:
		attrs = append(attrs, "query", a.Query)
	case evawiki.UpdateDocumentTextArgs:
		attrs = append(attrs, "code", a.Code, "text_bytes", len(a.NewText), "publish", a.Publish)
	case evawiki.PublishDocumentArgs:
		attrs = append(attrs, "code", a.Code)
	case evawiki.DownloadAllAttachmentsArgs:
		attrs = append(attrs, "doc_code", a.DocCode, "admin_mode", a.AdminMode)
	case evawiki.ListProjectsArgs:
		attrs = append(attrs, "limit", intAttr(a.Limit), "offset", a.Offset)
	case evawiki.FindUserArgs:
		attrs = append(attrs, "login", a.LoginOrEmail)
	case evawiki.PingArgs:
		// No args to log
	case evawiki.RawCallArgs:
		attrs = append(attrs, "method", a.Method)
	}

	switch r := result.(type) {
	case evawiki.ListDocumentsResult:
		attrs = append(attrs, "results_count", countItems(r.Items))
	case evawiki.SearchDocumentsResult:
		attrs = append(attrs, "results_count", countItems(r.Items))
	case evawiki.ListProjectsResult:
		attrs = append(attrs, "results_count", countItems(r.Items))
	case evawiki.GetDocumentByCodeResult:
		attrs = append(attrs, "found", r.Document != nil)
	case evawiki.FindUserResult:
		attrs = append(attrs, "found", r.User != nil)
	case evawiki.UpdateDocumentTextResult:
		attrs = append(attrs, "published", r.Published)
	case evawiki.DownloadAllAttachmentsResult:
		attrs = append(attrs, "has_archive", r.FullURL != nil)
	}

	h.logger.Info("Tool executed", attrs...)
}

// countItems returns the length of a list result, or -1 if it is not a list.
// intAttr renders an optional count for logging; nil means the default applies.
func intAttr(p *int) any {
	if p == nil {
		return "default"
	}
	return *p
}

func countItems(v any) int {
	if list, ok := v.([]any); ok {
		return len(list)
	}
	return -1
}
