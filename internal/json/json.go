// Package json is a thin, drop-in-compatible wrapper over bytedance/sonic,
// used everywhere internal/translator needs to marshal or unmarshal a
// dialect payload. It exists so call sites import one internal package
// instead of choosing between encoding/json and sonic ad hoc.
package json

import (
	"github.com/bytedance/sonic"
)

var api = sonic.ConfigStd

// Marshal encodes v as JSON using the same field tags as encoding/json.
func Marshal(v any) ([]byte, error) {
	return api.Marshal(v)
}

// MarshalIndent encodes v as indented JSON.
func MarshalIndent(v any, prefix, indent string) ([]byte, error) {
	return api.MarshalIndent(v, prefix, indent)
}

// Unmarshal decodes JSON data into v.
func Unmarshal(data []byte, v any) error {
	return api.Unmarshal(data, v)
}

// Valid reports whether data is well-formed JSON.
func Valid(data []byte) bool {
	return api.Valid(data)
}

// RawMessage is a delayed-decode byte slice, mirroring encoding/json.RawMessage
// so struct tags and call sites can treat a field as opaque JSON.
type RawMessage []byte

// MarshalJSON returns m as the JSON encoding of m.
func (m RawMessage) MarshalJSON() ([]byte, error) {
	if m == nil {
		return []byte("null"), nil
	}
	return m, nil
}

// UnmarshalJSON sets *m to a copy of data.
func (m *RawMessage) UnmarshalJSON(data []byte) error {
	if m == nil {
		return errNilRawMessage
	}
	*m = append((*m)[0:0], data...)
	return nil
}

var errNilRawMessage = rawMessageError("json.RawMessage: UnmarshalJSON on nil pointer")

type rawMessageError string

func (e rawMessageError) Error() string { return string(e) }
