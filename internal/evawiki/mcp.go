package evawiki

import (
	"context"
	"fmt"
	"strings"

	apierrors "github.com/vsevolodlukovsky/evawiki-mcp/internal/errors"
	"github.com/vsevolodlukovsky/evawiki-mcp/metrics"
)

// EVA JSON-RPC methods used by the tool surface.
const (
	MethodDocumentGet        = "CmfDocument.get"
	MethodDocumentList       = "CmfDocument.list"
	MethodDocumentUpdate     = "CmfDocument.update"
	MethodDocumentPublish    = "CmfDocument.do_publish"
	MethodDocumentAttachment = "CmfDocument.download_all_attachment"
	MethodProjectList        = "CmfProject.list"
	MethodPersonGet          = "CmfPerson.get"
	MethodPersonList         = "CmfPerson.list"
)

const (
	defaultListLimit   = 50
	defaultSearchLimit = 20
)

// MCP tool methods. Each validates its arguments, performs one to three
// remote calls and shapes the result.

// GetDocumentByCodeMCP fetches a document with its code, name and text.
func (c *Client) GetDocumentByCodeMCP(ctx context.Context, args GetDocumentByCodeArgs) (GetDocumentByCodeResult, error) {
	if err := ValidateRequired("code", args.Code); err != nil {
		return GetDocumentByCodeResult{}, err
	}

	resp, err := c.Call(ctx, MethodDocumentGet, CallOptions{
		Kwargs: map[string]any{"filter": codeFilter(args.Code)},
		Fields: []string{"code", "name", "text"},
	})
	if err != nil {
		return GetDocumentByCodeResult{}, err
	}
	return GetDocumentByCodeResult{Document: resp.Result()}, nil
}

// GetDocumentTextMCP fetches only the text of a document.
func (c *Client) GetDocumentTextMCP(ctx context.Context, args GetDocumentTextArgs) (GetDocumentTextResult, error) {
	if err := ValidateRequired("code", args.Code); err != nil {
		return GetDocumentTextResult{}, err
	}

	// fields travel inside kwargs for this call
	resp, err := c.Call(ctx, MethodDocumentGet, CallOptions{
		Kwargs: map[string]any{
			"filter": codeFilter(args.Code),
			"fields": []string{"text"},
		},
	})
	if err != nil {
		return GetDocumentTextResult{}, err
	}

	var text any
	if doc, ok := resp.Result().(map[string]any); ok {
		text = doc["text"]
	}
	return GetDocumentTextResult{Code: args.Code, Text: text}, nil
}

// ListDocumentsMCP lists one slice of documents matching an optional filter.
func (c *Client) ListDocumentsMCP(ctx context.Context, args ListDocumentsArgs) (ListDocumentsResult, error) {
	filter, err := ParseDocumentFilter("filter_json", args.FilterJSON)
	if err != nil {
		return ListDocumentsResult{}, err
	}
	fields, err := ParseFields("fields_comma", args.FieldsComma, DefaultDocumentFields)
	if err != nil {
		return ListDocumentsResult{}, err
	}

	kwargs := map[string]any{
		"slice": sliceBounds(args.SliceStart, args.SliceLimit, defaultListLimit),
	}
	if filter != nil {
		kwargs["filter"] = filter
	}

	resp, err := c.Call(ctx, MethodDocumentList, CallOptions{
		Kwargs: kwargs,
		Fields: fields,
		NoMeta: ptr(true),
	})
	if err != nil {
		return ListDocumentsResult{}, err
	}
	return ListDocumentsResult{Items: items(resp)}, nil
}

// SearchDocumentsMCP finds documents whose name contains the query. An empty
// query matches every document. project_code is accepted for compatibility
// and not applied.
func (c *Client) SearchDocumentsMCP(ctx context.Context, args SearchDocumentsArgs) (SearchDocumentsResult, error) {
	resp, err := c.Call(ctx, MethodDocumentList, CallOptions{
		Kwargs: map[string]any{
			"filter": []any{"name", "LIKE", "%" + args.Query + "%"},
			"slice":  sliceBounds(args.Offset, args.Limit, defaultSearchLimit),
		},
		Fields: []string{"code", "name"},
		NoMeta: ptr(true),
	})
	if err != nil {
		return SearchDocumentsResult{}, err
	}
	return SearchDocumentsResult{Items: items(resp)}, nil
}

// UpdateDocumentTextMCP replaces the draft text of a document and optionally
// publishes it. A failed step aborts the sequence; earlier steps stay applied.
func (c *Client) UpdateDocumentTextMCP(ctx context.Context, args UpdateDocumentTextArgs) (UpdateDocumentTextResult, error) {
	if err := ValidateRequired("code", args.Code); err != nil {
		return UpdateDocumentTextResult{}, err
	}

	id, err := c.resolveDocumentID(ctx, args.Code)
	if err != nil {
		return UpdateDocumentTextResult{}, err
	}

	_, err = c.Call(ctx, MethodDocumentUpdate, CallOptions{
		Args:   []any{id},
		Kwargs: map[string]any{"text_draft": args.NewText},
	})
	metrics.RecordEdit("update_text", len(args.NewText), err == nil)
	if err != nil {
		return UpdateDocumentTextResult{}, err
	}

	published := false
	if args.Publish {
		if err := c.publish(ctx, id); err != nil {
			return UpdateDocumentTextResult{}, err
		}
		published = true
	}

	return UpdateDocumentTextResult{Code: args.Code, ID: id, Published: published}, nil
}

// PublishDocumentMCP publishes the current draft of a document.
func (c *Client) PublishDocumentMCP(ctx context.Context, args PublishDocumentArgs) (PublishDocumentResult, error) {
	if err := ValidateRequired("code", args.Code); err != nil {
		return PublishDocumentResult{}, err
	}

	id, err := c.resolveDocumentID(ctx, args.Code)
	if err != nil {
		return PublishDocumentResult{}, err
	}
	if err := c.publish(ctx, id); err != nil {
		return PublishDocumentResult{}, err
	}
	return PublishDocumentResult{Code: args.Code, ID: id, Published: true}, nil
}

// DownloadAllAttachmentsMCP asks EVA to pack all attachments of a document
// into a zip archive and returns its path and absolute URL.
func (c *Client) DownloadAllAttachmentsMCP(ctx context.Context, args DownloadAllAttachmentsArgs) (DownloadAllAttachmentsResult, error) {
	if err := ValidateRequired("doc_code", args.DocCode); err != nil {
		return DownloadAllAttachmentsResult{}, err
	}

	id, err := c.resolveDocumentID(ctx, args.DocCode)
	if err != nil {
		return DownloadAllAttachmentsResult{}, err
	}

	opts := CallOptions{Args: []any{id}}
	if args.AdminMode {
		opts.Flags = map[string]any{"admin_mode": true}
	}
	resp, err := c.Call(ctx, MethodDocumentAttachment, opts)
	if err != nil {
		return DownloadAllAttachmentsResult{}, err
	}

	zipURL := resp.Result()
	var fullURL any
	if path, ok := zipURL.(string); ok && path != "" {
		fullURL = AttachmentURL(c.config.BaseURL, path)
	}
	return DownloadAllAttachmentsResult{ZipURL: zipURL, FullURL: fullURL}, nil
}

// ListProjectsMCP lists one slice of projects. The filter must be JSON.
func (c *Client) ListProjectsMCP(ctx context.Context, args ListProjectsArgs) (ListProjectsResult, error) {
	filter, err := ParseProjectFilter("filter_json", args.FilterJSON)
	if err != nil {
		return ListProjectsResult{}, err
	}

	resp, err := c.Call(ctx, MethodProjectList, CallOptions{
		Kwargs: map[string]any{
			"filter": filter,
			"slice":  sliceBounds(args.Offset, args.Limit, defaultListLimit),
		},
		Fields: []string{"code", "name"},
		NoMeta: ptr(true),
	})
	if err != nil {
		return ListProjectsResult{}, err
	}
	return ListProjectsResult{Items: items(resp)}, nil
}

// FindUserMCP looks a person up by login.
func (c *Client) FindUserMCP(ctx context.Context, args FindUserArgs) (FindUserResult, error) {
	if err := ValidateRequired("login_or_email", args.LoginOrEmail); err != nil {
		return FindUserResult{}, err
	}

	resp, err := c.Call(ctx, MethodPersonGet, CallOptions{
		Kwargs: map[string]any{
			"filter": []any{"login", "==", args.LoginOrEmail},
			"fields": []string{"name", "login", "email"},
		},
	})
	if err != nil {
		return FindUserResult{}, err
	}
	return FindUserResult{User: resp.Result()}, nil
}

// PingMCP checks that the endpoint is reachable and the token is accepted.
func (c *Client) PingMCP(ctx context.Context, _ PingArgs) (PingResult, error) {
	resp, err := c.Call(ctx, MethodPersonList, CallOptions{
		Kwargs: map[string]any{
			"filter": []any{"login", "!=", nil},
			"fields": []string{"id"},
			"slice":  []int{0, 1},
		},
		NoMeta: ptr(true),
	})
	if err != nil {
		return PingResult{}, err
	}
	return PingResult{OK: true, Sample: items(resp)}, nil
}

// RawCallMCP forwards an arbitrary method call and returns the full body.
func (c *Client) RawCallMCP(ctx context.Context, args RawCallArgs) (RawCallResult, error) {
	if err := ValidateRequired("method", args.Method); err != nil {
		return RawCallResult{}, err
	}

	kwargs, err := ParseJSONObject("kwargs_json", args.KwargsJSON)
	if err != nil {
		return RawCallResult{}, err
	}
	positional, err := ParseJSONArray("args_json", args.ArgsJSON)
	if err != nil {
		return RawCallResult{}, err
	}
	fields, err := ParseJSONStrings("fields_json", args.FieldsJSON)
	if err != nil {
		return RawCallResult{}, err
	}
	filter, err := ParseJSONParam("filter_json", args.FilterJSON)
	if err != nil {
		return RawCallResult{}, err
	}
	flags, err := ParseJSONObject("flags_json", args.FlagsJSON)
	if err != nil {
		return RawCallResult{}, err
	}

	opts := CallOptions{
		Args:   positional,
		Kwargs: kwargs,
		Fields: fields,
		Filter: filter,
		Flags:  flags,
	}
	if args.NoMeta {
		opts.NoMeta = ptr(true)
	}

	resp, err := c.Call(ctx, args.Method, opts)
	if err != nil {
		return RawCallResult{}, err
	}
	return RawCallResult{Raw: resp}, nil
}

// resolveDocumentID looks a document up by code and returns its id. A missing
// document is a NotFoundError.
func (c *Client) resolveDocumentID(ctx context.Context, code string) (any, error) {
	resp, err := c.Call(ctx, MethodDocumentGet, CallOptions{
		Kwargs: map[string]any{"filter": codeFilter(code)},
	})
	if err != nil {
		return nil, err
	}

	switch doc := resp.Result().(type) {
	case nil:
		return nil, apierrors.NewNotFoundError(code)
	case map[string]any:
		if len(doc) == 0 {
			return nil, apierrors.NewNotFoundError(code)
		}
		return doc["id"], nil
	default:
		return nil, fmt.Errorf("unexpected %s result for %s: %T", MethodDocumentGet, code, doc)
	}
}

func (c *Client) publish(ctx context.Context, id any) error {
	_, err := c.Call(ctx, MethodDocumentPublish, CallOptions{Args: []any{id}})
	metrics.RecordEdit("publish", -1, err == nil)
	return err
}

// AttachmentURL joins a server-relative attachment path onto the site root
// derived from the API endpoint: trailing "/" and then a trailing "/api" are
// removed from base.
func AttachmentURL(base, path string) string {
	domain := strings.TrimRight(base, "/")
	domain = strings.TrimSuffix(domain, "/api")
	return domain + "/" + strings.TrimLeft(path, "/")
}

// ValidateRequired rejects an empty or whitespace-only required argument.
func ValidateRequired(field, value string) error {
	if strings.TrimSpace(value) == "" {
		return apierrors.NewValidationError(field, "", "is required")
	}
	return nil
}

func codeFilter(code string) []any {
	return []any{"code", "==", code}
}

// sliceBounds returns [start, start+limit]. An absent limit means def; an
// explicit one, zero included, is sent as given.
func sliceBounds(start int, limit *int, def int) []int {
	n := def
	if limit != nil {
		n = *limit
	}
	return []int{start, start + n}
}

// items returns the result list, or an empty list when the result is null.
func items(resp Response) any {
	if r := resp.Result(); r != nil {
		return r
	}
	return []any{}
}

func ptr[T any](v T) *T {
	return &v
}
