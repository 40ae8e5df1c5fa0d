// Package jsonx is the JSON codec for the EVA wire format, backed by Sonic.
//
// Numbers decode as json.Number so remote identifiers and error codes survive a
// round trip through the adapter without float64 rounding.
package jsonx

import (
	"bytes"

	"github.com/bytedance/sonic"
)

var api = sonic.Config{
	EscapeHTML: false,
	UseNumber:  true,
}.Froze()

// Marshal returns the JSON encoding of v.
func Marshal(v any) ([]byte, error) {
	return api.Marshal(v)
}

// Unmarshal parses JSON data into v. Numbers inside interface values become json.Number.
func Unmarshal(data []byte, v any) error {
	return api.Unmarshal(data, v)
}

// UnmarshalFromString parses the JSON string s into v.
func UnmarshalFromString(s string, v any) error {
	return api.UnmarshalFromString(s, v)
}

// Valid reports whether data is a valid JSON encoding.
func Valid(data []byte) bool {
	return api.Valid(data)
}

// FirstByte returns the first non-whitespace byte of data, or 0 if there is none.
func FirstByte(data []byte) byte {
	trimmed := bytes.TrimLeft(data, " \t\r\n")
	if len(trimmed) == 0 {
		return 0
	}
	return trimmed[0]
}
