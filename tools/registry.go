// Package tools provides a metadata-driven registry for the EVA Wiki MCP tools.
// Tools are defined declaratively in AllTools and bound to typed client
// methods by the HandlerRegistry.
package tools

// ToolSpec defines a tool's metadata for declarative registration.
// Each spec maps to an evawiki.Client method with matching Args/Result types.
type ToolSpec struct {
	// Name is the MCP tool name (e.g., "evawiki_get_document_by_code")
	Name string

	// Method is the client method name (e.g., "GetDocumentByCode")
	Method string

	// Description is the tool description shown to LLMs
	Description string

	// Title is the human-readable tool title for annotations
	Title string

	// Category groups tools logically (documents, projects, users, ...)
	Category string

	// ReadOnly indicates the tool doesn't modify EVA state
	ReadOnly bool

	// Destructive indicates the tool can overwrite data
	Destructive bool

	// Idempotent indicates repeated calls have the same effect
	Idempotent bool

	// OpenWorld indicates the tool accesses external resources
	OpenWorld bool
}

// ByName returns the spec registered under name.
func ByName(name string) (ToolSpec, bool) {
	for _, spec := range AllTools {
		if spec.Name == name {
			return spec, true
		}
	}
	return ToolSpec{}, false
}

// Names returns all tool names in catalog order.
func Names() []string {
	names := make([]string, 0, len(AllTools))
	for _, spec := range AllTools {
		names = append(names, spec.Name)
	}
	return names
}

// ptr is a helper to create a pointer to a value.
func ptr[T any](v T) *T {
	return &v
}
