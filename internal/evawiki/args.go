package evawiki

// GetDocumentByCodeArgs contains parameters for fetching a document
type GetDocumentByCodeArgs struct {
	Code string `json:"code" jsonschema:"Document code, e.g. DOC-000066"`
}

// GetDocumentByCodeResult wraps the document object as returned by EVA
type GetDocumentByCodeResult struct {
	Document any `json:"document"`
}

// GetDocumentTextArgs contains parameters for fetching document text
type GetDocumentTextArgs struct {
	Code string `json:"code" jsonschema:"Document code, e.g. DOC-000066"`
}

// GetDocumentTextResult holds the document text (null when the document has none)
type GetDocumentTextResult struct {
	Code string `json:"code"`
	Text any    `json:"text"`
}

// ListDocumentsArgs contains parameters for listing documents
type ListDocumentsArgs struct {
	FilterJSON  JSONValue `json:"filter_json,omitempty" jsonschema:"BQL filter as JSON (e.g. [\"name\",\"LIKE\",\"%text%\"]) or shorthand field,op,value"`
	FieldsComma JSONValue `json:"fields_comma,omitempty" jsonschema:"Comma-separated field names or JSON array of names (default: code,name)"`
	SliceStart  int       `json:"slice_start,omitempty" jsonschema:"Index of the first item (default: 0)"`
	SliceLimit  *int      `json:"slice_limit,omitempty" jsonschema:"Maximum number of items (default: 50)"`
}

// ListDocumentsResult holds one slice of documents
type ListDocumentsResult struct {
	Items any `json:"items"`
}

// SearchDocumentsArgs contains parameters for a name search
type SearchDocumentsArgs struct {
	Query       string `json:"query" jsonschema:"Substring to look for in document names; empty matches every document"`
	ProjectCode string `json:"project_code,omitempty" jsonschema:"Reserved; accepted but not applied"`
	Limit       *int   `json:"limit,omitempty" jsonschema:"Maximum number of items (default: 20)"`
	Offset      int    `json:"offset,omitempty" jsonschema:"Index of the first item (default: 0)"`
}

// SearchDocumentsResult holds matching documents
type SearchDocumentsResult struct {
	Items any `json:"items"`
}

// UpdateDocumentTextArgs contains parameters for replacing a document draft
type UpdateDocumentTextArgs struct {
	Code    string `json:"code" jsonschema:"Document code, e.g. DOC-000066"`
	NewText string `json:"new_text" jsonschema:"New draft text of the document"`
	Publish bool   `json:"publish,omitempty" jsonschema:"Publish the draft after updating (default: false)"`
}

// UpdateDocumentTextResult reports what was written
type UpdateDocumentTextResult struct {
	Code      string `json:"code"`
	ID        any    `json:"id"`
	Published bool   `json:"published"`
}

// PublishDocumentArgs contains parameters for publishing a document draft
type PublishDocumentArgs struct {
	Code string `json:"code" jsonschema:"Document code, e.g. DOC-000066"`
}

// PublishDocumentResult reports the published document
type PublishDocumentResult struct {
	Code      string `json:"code"`
	ID        any    `json:"id"`
	Published bool   `json:"published"`
}

// DownloadAllAttachmentsArgs contains parameters for the attachment archive
type DownloadAllAttachmentsArgs struct {
	DocCode   string `json:"doc_code" jsonschema:"Document code, e.g. DOC-000066"`
	AdminMode bool   `json:"admin_mode,omitempty" jsonschema:"Request with admin rights (default: false)"`
}

// DownloadAllAttachmentsResult holds the archive path and its absolute URL
type DownloadAllAttachmentsResult struct {
	ZipURL  any `json:"zip_url"`
	FullURL any `json:"full_url"`
}

// ListProjectsArgs contains parameters for listing projects
type ListProjectsArgs struct {
	FilterJSON JSONValue `json:"filter_json,omitempty" jsonschema:"BQL filter as JSON (default: [\"code\",\"!=\",null])"`
	Limit      *int      `json:"limit,omitempty" jsonschema:"Maximum number of items (default: 50)"`
	Offset     int       `json:"offset,omitempty" jsonschema:"Index of the first item (default: 0)"`
}

// ListProjectsResult holds one slice of projects
type ListProjectsResult struct {
	Items any `json:"items"`
}

// FindUserArgs contains parameters for a user lookup
type FindUserArgs struct {
	LoginOrEmail string `json:"login_or_email" jsonschema:"User login"`
}

// FindUserResult wraps the user object as returned by EVA
type FindUserResult struct {
	User any `json:"user"`
}

// PingArgs is empty; ping takes no parameters
type PingArgs struct{}

// PingResult reports API reachability
type PingResult struct {
	OK     bool `json:"ok"`
	Sample any  `json:"sample"`
}

// RawCallArgs contains parameters for a passthrough call
type RawCallArgs struct {
	Method     string    `json:"method" jsonschema:"EVA API method, e.g. CmfTask.list"`
	KwargsJSON JSONValue `json:"kwargs_json,omitempty" jsonschema:"Keyword arguments: JSON object or JSON text"`
	ArgsJSON   JSONValue `json:"args_json,omitempty" jsonschema:"Positional arguments: JSON array or JSON text"`
	FieldsJSON JSONValue `json:"fields_json,omitempty" jsonschema:"Fields to return: JSON array of strings or JSON text"`
	FilterJSON JSONValue `json:"filter_json,omitempty" jsonschema:"BQL filter: JSON value or JSON text"`
	FlagsJSON  JSONValue `json:"flags_json,omitempty" jsonschema:"Flags such as admin_mode: JSON object or JSON text"`
	NoMeta     bool      `json:"no_meta,omitempty" jsonschema:"Ask EVA to omit response metadata (default: false)"`
}

// RawCallResult holds the full parsed response body
type RawCallResult struct {
	Raw Response `json:"raw"`
}
