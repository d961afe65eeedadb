package jsonx

import (
	"io"

	jsoniter "github.com/json-iterator/go"
)

// api keeps encoding/json semantics (field order, map key sorting).
var api = jsoniter.ConfigCompatibleWithStandardLibrary

// plain matches JSON.stringify output: no HTML escaping of <, > and &.
var plain = jsoniter.Config{
	EscapeHTML:             false,
	SortMapKeys:            true,
	ValidateJsonRawMessage: true,
}.Froze()

func Marshal(v any) ([]byte, error) {
	return api.Marshal(v)
}

// MarshalPlain encodes v the way a browser would, for documents handed to
// users (share tokens, exported files).
func MarshalPlain(v any) ([]byte, error) {
	return plain.Marshal(v)
}

func MarshalIndent(v any, prefix, indent string) ([]byte, error) {
	return plain.MarshalIndent(v, prefix, indent)
}

func Unmarshal(data []byte, v any) error {
	return api.Unmarshal(data, v)
}

func UnmarshalReader(r io.Reader, v any) error {
	return api.NewDecoder(r).Decode(v)
}

func MarshalToWriter(w io.Writer, v any) error {
	return api.NewEncoder(w).Encode(v)
}

// Valid reports whether data is a syntactically valid JSON document.
func Valid(data []byte) bool {
	return api.Valid(data)
}
