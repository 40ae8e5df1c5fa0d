package tools

// AllTools contains all tool specifications for the EVA Wiki MCP server.
// Tool descriptions follow a structured format for LLM tool selection:
// - USE WHEN: Natural language triggers
// - NOT FOR: Disambiguation from similar tools
// - PARAMETERS: Key arguments with defaults
// - RETURNS: What the tool returns
var AllTools = []ToolSpec{
	// ==========================================================================
	// DOCUMENT READS
	// ==========================================================================
	{
		Name:     "evawiki_get_document_by_code",
		Method:   "GetDocumentByCode",
		Title:    "Get Document",
		Category: "documents",
		Description: `Get an EVA Wiki document by its code, including name and text.

USE WHEN: User gives a document code ("DOC-000066") and wants to read or inspect the document.

NOT FOR: Only the body text (use evawiki_get_document_text). Finding documents by title (use evawiki_search_documents).

PARAMETERS:
- code: Document code, e.g. DOC-000066 (required)

RETURNS: The document object with code, name and text, or null if no document has that code.`,
		ReadOnly:   true,
		Idempotent: true,
		OpenWorld:  true,
	},
	{
		Name:     "evawiki_get_document_text",
		Method:   "GetDocumentText",
		Title:    "Get Document Text",
		Category: "documents",
		Description: `Get only the text of an EVA Wiki document by code.

USE WHEN: User wants "the content of DOC-000066", "what does document X say", or needs the body text to summarize or edit.

NOT FOR: Document metadata such as the name (use evawiki_get_document_by_code).

PARAMETERS:
- code: Document code (required)

RETURNS: The code and the text (null when the document is missing or empty).`,
		ReadOnly:   true,
		Idempotent: true,
		OpenWorld:  true,
	},

	// ==========================================================================
	// LISTING AND SEARCH
	// ==========================================================================
	{
		Name:     "evawiki_list_documents",
		Method:   "ListDocuments",
		Title:    "List Documents",
		Category: "search",
		Description: `List EVA Wiki documents with an optional BQL filter and field selection.

USE WHEN: User wants documents matching a structured condition ("documents whose code starts with X", "all docs in the list"), or needs specific fields.

NOT FOR: Simple title substring search (use evawiki_search_documents). Arbitrary EVA methods (use evawiki_raw_call).

PARAMETERS:
- filter_json: BQL filter as JSON (["name","LIKE","%text%"]) or shorthand field,op,value (optional)
- fields_comma: Comma-separated fields or JSON array (default code,name)
- slice_start: First item index (default 0)
- slice_limit: Max items (default 50)

RETURNS: items, the list of matching documents with the selected fields.`,
		ReadOnly:   true,
		Idempotent: true,
		OpenWorld:  true,
	},
	{
		Name:     "evawiki_search_documents",
		Method:   "SearchDocuments",
		Title:    "Search Documents",
		Category: "search",
		Description: `Search EVA Wiki documents by a substring of their name.

USE WHEN: User asks "find the document about X", "is there a page called X", or doesn't know the document code.

NOT FOR: Reading a known document (use evawiki_get_document_by_code). Complex filters (use evawiki_list_documents).

PARAMETERS:
- query: Text to look for in document names (required; empty string lists every document)
- project_code: Reserved, currently not applied (optional)
- limit: Max items (default 20)
- offset: First item index (default 0)

RETURNS: items with code and name of each match.`,
		ReadOnly:   true,
		Idempotent: true,
		OpenWorld:  true,
	},
	{
		Name:     "evawiki_list_projects",
		Method:   "ListProjects",
		Title:    "List Projects",
		Category: "projects",
		Description: `List EVA projects with code and name.

USE WHEN: User asks "which projects exist", "find the project code for X".

NOT FOR: Listing documents (use evawiki_list_documents).

PARAMETERS:
- filter_json: BQL filter as JSON only (default ["code","!=",null])
- limit: Max items (default 50)
- offset: First item index (default 0)

RETURNS: items with code and name of each project.`,
		ReadOnly:   true,
		Idempotent: true,
		OpenWorld:  true,
	},

	// ==========================================================================
	// DOCUMENT WRITES
	// ==========================================================================
	{
		Name:     "evawiki_update_document_text",
		Method:   "UpdateDocumentText",
		Title:    "Update Document Text",
		Category: "edit",
		Description: `Replace the draft text of an EVA Wiki document, optionally publishing it.

USE WHEN: User says "update DOC-000066 with this text", "rewrite the document", "save and publish these changes".

NOT FOR: Publishing an existing draft without changes (use evawiki_publish_document).

PARAMETERS:
- code: Document code (required)
- new_text: Full new draft text (required)
- publish: Publish after saving (default false)

RETURNS: code, the document id and whether it was published.

NOTE: Steps are not rolled back. If publishing fails the draft stays updated.`,
		Destructive: true,
		OpenWorld:   true,
	},
	{
		Name:     "evawiki_publish_document",
		Method:   "PublishDocument",
		Title:    "Publish Document",
		Category: "edit",
		Description: `Publish the current draft of an EVA Wiki document.

USE WHEN: User says "publish DOC-000066", "make the draft live".

NOT FOR: Changing the text (use evawiki_update_document_text with publish=true).

PARAMETERS:
- code: Document code (required)

RETURNS: code, the document id and published=true.`,
		Idempotent: true,
		OpenWorld:  true,
	},

	// ==========================================================================
	// ATTACHMENTS
	// ==========================================================================
	{
		Name:     "evawiki_download_all_attachments",
		Method:   "DownloadAllAttachments",
		Title:    "Download All Attachments",
		Category: "attachments",
		Description: `Get a link to a zip archive with all attachments of an EVA Wiki document.

USE WHEN: User asks "download the files attached to DOC-000066", "get all attachments".

NOT FOR: Reading document text (use evawiki_get_document_text).

PARAMETERS:
- doc_code: Document code (required)
- admin_mode: Request with admin rights, needed for some attachments (default false)

RETURNS: zip_url as returned by EVA and full_url joined onto the site root.`,
		ReadOnly:  true,
		OpenWorld: true,
	},

	// ==========================================================================
	// USERS AND DIAGNOSTICS
	// ==========================================================================
	{
		Name:     "evawiki_find_user",
		Method:   "FindUser",
		Title:    "Find User",
		Category: "users",
		Description: `Find an EVA user by login.

USE WHEN: User asks "who is jdoe", "what is the email of user X".

NOT FOR: Checking API connectivity (use evawiki_ping).

PARAMETERS:
- login_or_email: User login (required)

RETURNS: The user object with name, login and email, or null.`,
		ReadOnly:   true,
		Idempotent: true,
		OpenWorld:  true,
	},
	{
		Name:     "evawiki_ping",
		Method:   "Ping",
		Title:    "Ping EVA",
		Category: "diagnostics",
		Description: `Check that the EVA API is reachable and the token is valid.

USE WHEN: User asks "is EVA up", "does my token work", or before a series of calls when connectivity is in doubt.

NOT FOR: Looking up a particular user (use evawiki_find_user).

PARAMETERS: none

RETURNS: ok=true and a one-item sample of person ids.`,
		ReadOnly:   true,
		Idempotent: true,
		OpenWorld:  true,
	},
	{
		Name:     "evawiki_raw_call",
		Method:   "RawCall",
		Title:    "Raw EVA Call",
		Category: "advanced",
		Description: `Call any EVA JSON-RPC method directly.

USE WHEN: No dedicated tool fits, e.g. tasks, comments, or other Cmf* models ("list my tasks with CmfTask.list").

NOT FOR: Operations covered by a dedicated evawiki_* tool.

PARAMETERS:
- method: EVA method name, e.g. CmfTask.list (required)
- kwargs_json, args_json, fields_json, filter_json, flags_json: JSON text or structured values (optional)
- no_meta: Omit response metadata (default false)

RETURNS: raw, the full EVA response body including meta.

NOTE: admin_mode is not added automatically; pass it in flags_json.`,
		Destructive: true,
		OpenWorld:   true,
	},
}
