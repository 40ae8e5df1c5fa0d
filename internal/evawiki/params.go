package evawiki

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	apierrors "github.com/vsevolodlukovsky/evawiki-mcp/internal/errors"
	"github.com/vsevolodlukovsky/evawiki-mcp/internal/jsonx"
)

type valueKind uint8

const (
	absentValue valueKind = iota
	textValue
	structuredValue
)

// JSONValue is a tool argument that may arrive either as text (a JSON document
// or a shorthand) or as an already structured JSON value. The variant is fixed
// when the argument is decoded; coercion functions below resolve it per
// parameter kind.
type JSONValue struct {
	kind  valueKind
	text  string
	raw   json.RawMessage
	value any
}

// TextValue returns a JSONValue holding raw text.
func TextValue(s string) JSONValue {
	return JSONValue{kind: textValue, text: s}
}

// StructuredValue returns a JSONValue holding an already parsed value. The
// value is normalized through the JSON codec, so []string becomes []any and
// numbers become json.Number. A nil or unencodable value is treated as absent.
func StructuredValue(v any) JSONValue {
	if v == nil {
		return JSONValue{}
	}
	raw, err := jsonx.Marshal(v)
	if err != nil {
		return JSONValue{}
	}
	var out JSONValue
	if err := out.UnmarshalJSON(raw); err != nil {
		return JSONValue{}
	}
	return out
}

// UnmarshalJSON picks the variant from the first JSON byte: a string becomes
// text, null becomes absent, anything else is kept as a structured value.
func (v *JSONValue) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch jsonx.FirstByte(data) {
	case 0:
		*v = JSONValue{}
		return nil
	case '"':
		var s string
		if err := jsonx.Unmarshal(data, &s); err != nil {
			return err
		}
		*v = JSONValue{kind: textValue, text: s}
		return nil
	case 'n':
		if string(data) == "null" {
			*v = JSONValue{}
			return nil
		}
	}

	var parsed any
	if err := jsonx.Unmarshal(data, &parsed); err != nil {
		return err
	}
	*v = JSONValue{kind: structuredValue, raw: append(json.RawMessage(nil), data...), value: parsed}
	return nil
}

// MarshalJSON writes text as a JSON string and structured values verbatim.
func (v JSONValue) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case textValue:
		return jsonx.Marshal(v.text)
	case structuredValue:
		return v.raw, nil
	default:
		return []byte("null"), nil
	}
}

// IsAbsent reports whether the argument was omitted or null.
func (v JSONValue) IsAbsent() bool {
	return v.kind == absentValue
}

// isContainer reports whether a structured value is a JSON array or object.
func (v JSONValue) isContainer() bool {
	if v.kind != structuredValue {
		return false
	}
	b := jsonx.FirstByte(v.raw)
	return b == '[' || b == '{'
}

// DefaultDocumentFields are selected by list operations when no fields are given.
var DefaultDocumentFields = []string{"code", "name"}

// ParseDocumentFilter resolves the list-documents filter. Text starting with
// '[' or '{' is parsed as JSON; other text is the shorthand field,op,value.
// Text with fewer than three comma-separated parts yields no filter (nil).
func ParseDocumentFilter(param string, v JSONValue) (any, error) {
	switch v.kind {
	case structuredValue:
		if v.isContainer() {
			return v.value, nil
		}
		return nil, nil
	case textValue:
		s := strings.TrimSpace(v.text)
		if s == "" {
			return nil, nil
		}
		if s[0] == '[' || s[0] == '{' {
			var parsed any
			if err := jsonx.UnmarshalFromString(s, &parsed); err != nil {
				return nil, apierrors.NewValidationError(param, "",
					fmt.Sprintf("invalid JSON: %s...", prefix(s, 50)))
			}
			return parsed, nil
		}
		return parseFilterShorthand(s), nil
	default:
		return nil, nil
	}
}

// parseFilterShorthand turns "field,op,value" into a three-element filter.
// Only the first two commas split, so the value may itself contain commas.
func parseFilterShorthand(s string) any {
	parts := strings.SplitN(s, ",", 3)
	if len(parts) < 3 {
		return nil
	}
	filter := make([]any, 0, len(parts))
	for _, p := range parts {
		filter = append(filter, strings.Trim(strings.TrimSpace(p), `"'`))
	}
	return filter
}

// ParseFields resolves a field selection given as comma-separated text or as a
// JSON array of strings. Absent or blank input yields defaults.
func ParseFields(param string, v JSONValue, defaults []string) ([]string, error) {
	switch v.kind {
	case textValue:
		s := strings.TrimSpace(v.text)
		if s == "" {
			return defaults, nil
		}
		parts := strings.Split(s, ",")
		fields := make([]string, 0, len(parts))
		for _, p := range parts {
			fields = append(fields, strings.TrimSpace(p))
		}
		return fields, nil
	case structuredValue:
		list, ok := v.value.([]any)
		if !ok {
			return defaults, nil
		}
		return stringList(param, list)
	default:
		return defaults, nil
	}
}

// DefaultProjectFilter matches every project that has a code.
func DefaultProjectFilter() []any {
	return []any{"code", "!=", nil}
}

// ParseProjectFilter resolves the list-projects filter. Only JSON is accepted;
// absent or blank input yields DefaultProjectFilter.
func ParseProjectFilter(param string, v JSONValue) (any, error) {
	switch v.kind {
	case structuredValue:
		if v.isContainer() {
			return v.value, nil
		}
	case textValue:
		if strings.TrimSpace(v.text) == "" {
			break
		}
		var parsed any
		if err := jsonx.UnmarshalFromString(v.text, &parsed); err != nil {
			return nil, invalidJSON(param, err)
		}
		return parsed, nil
	}
	return DefaultProjectFilter(), nil
}

// ParseJSONParam resolves a passthrough parameter. Structured arrays and
// objects are returned as is, non-blank text is parsed as JSON and anything
// else yields nil (not forwarded).
func ParseJSONParam(param string, v JSONValue) (any, error) {
	switch v.kind {
	case structuredValue:
		if v.isContainer() {
			return v.value, nil
		}
		return nil, nil
	case textValue:
		if strings.TrimSpace(v.text) == "" {
			return nil, nil
		}
		var parsed any
		if err := jsonx.UnmarshalFromString(v.text, &parsed); err != nil {
			return nil, invalidJSON(param, err)
		}
		return parsed, nil
	default:
		return nil, nil
	}
}

// ParseJSONObject is ParseJSONParam restricted to JSON objects.
func ParseJSONObject(param string, v JSONValue) (map[string]any, error) {
	parsed, err := ParseJSONParam(param, v)
	if err != nil || parsed == nil {
		return nil, err
	}
	obj, ok := parsed.(map[string]any)
	if !ok {
		return nil, apierrors.NewValidationError(param, "", "must be a JSON object")
	}
	return obj, nil
}

// ParseJSONArray is ParseJSONParam restricted to JSON arrays.
func ParseJSONArray(param string, v JSONValue) ([]any, error) {
	parsed, err := ParseJSONParam(param, v)
	if err != nil || parsed == nil {
		return nil, err
	}
	list, ok := parsed.([]any)
	if !ok {
		return nil, apierrors.NewValidationError(param, "", "must be a JSON array")
	}
	return list, nil
}

// ParseJSONStrings is ParseJSONParam restricted to JSON arrays of strings.
func ParseJSONStrings(param string, v JSONValue) ([]string, error) {
	list, err := ParseJSONArray(param, v)
	if err != nil || list == nil {
		return nil, err
	}
	return stringList(param, list)
}

func stringList(param string, list []any) ([]string, error) {
	out := make([]string, 0, len(list))
	for i, item := range list {
		s, ok := item.(string)
		if !ok {
			return nil, apierrors.NewValidationError(param, "",
				fmt.Sprintf("element %d must be a string", i))
		}
		out = append(out, s)
	}
	return out, nil
}

func invalidJSON(param string, err error) error {
	return apierrors.NewValidationError(param, "", fmt.Sprintf("invalid JSON in parameter: %v", err))
}

// prefix returns at most n runes of s.
func prefix(s string, n int) string {
	for i := range s {
		if n == 0 {
			return s[:i]
		}
		n--
	}
	return s
}
