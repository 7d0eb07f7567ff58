package ir

import (
	"strings"

	"github.com/tidwall/gjson"
	genai "google.golang.org/genai"

	"github.com/nghyane/llm-mux/internal/json"
)

// jsonSchemaTypeToGemini maps a lowercase JSON-Schema "type" value to the
// official Gemini SDK's upper-case Type enum, so callers never hand-roll
// the string table themselves.
var jsonSchemaTypeToGemini = map[string]genai.Type{
	"string":  genai.TypeString,
	"number":  genai.TypeNumber,
	"integer": genai.TypeInteger,
	"boolean": genai.TypeBoolean,
	"array":   genai.TypeArray,
	"object":  genai.TypeObject,
}

var geminiTypeToJSONSchema = map[genai.Type]string{
	genai.TypeString:  "string",
	genai.TypeNumber:  "number",
	genai.TypeInteger: "integer",
	genai.TypeBoolean: "boolean",
	genai.TypeArray:   "array",
	genai.TypeObject:  "object",
}

// ToGeminiSchema converts a JSON-Schema fragment (as produced by a tool
// definition's Parameters map) into Gemini's upper-case-typed schema
// shape. Unknown keys are passed through unchanged; $schema and
// additionalProperties (meaningless to Gemini) are dropped.
func ToGeminiSchema(schema map[string]any) map[string]any {
	if schema == nil {
		return nil
	}
	out := make(map[string]any, len(schema))
	for k, v := range schema {
		switch k {
		case "$schema", "additionalProperties":
			continue
		case "type":
			if s, ok := v.(string); ok {
				if g, ok := jsonSchemaTypeToGemini[strings.ToLower(s)]; ok {
					out[k] = string(g)
					continue
				}
			}
			out[k] = v
		case "properties":
			if props, ok := v.(map[string]any); ok {
				converted := make(map[string]any, len(props))
				for name, propSchema := range props {
					if ps, ok := propSchema.(map[string]any); ok {
						converted[name] = ToGeminiSchema(ps)
					} else {
						converted[name] = propSchema
					}
				}
				out[k] = converted
				continue
			}
			out[k] = v
		case "items":
			if items, ok := v.(map[string]any); ok {
				out[k] = ToGeminiSchema(items)
				continue
			}
			out[k] = v
		default:
			out[k] = v
		}
	}
	return out
}

// FromGeminiSchema is the inverse of ToGeminiSchema: Gemini upper-case
// type names become lowercase JSON-Schema type names.
func FromGeminiSchema(schema map[string]any) map[string]any {
	if schema == nil {
		return nil
	}
	out := make(map[string]any, len(schema))
	for k, v := range schema {
		switch k {
		case "type":
			if s, ok := v.(string); ok {
				if js, ok := geminiTypeToJSONSchema[genai.Type(strings.ToUpper(s))]; ok {
					out[k] = js
					continue
				}
			}
			out[k] = v
		case "properties":
			if props, ok := v.(map[string]any); ok {
				converted := make(map[string]any, len(props))
				for name, propSchema := range props {
					if ps, ok := propSchema.(map[string]any); ok {
						converted[name] = FromGeminiSchema(ps)
					} else {
						converted[name] = propSchema
					}
				}
				out[k] = converted
				continue
			}
			out[k] = v
		case "items":
			if items, ok := v.(map[string]any); ok {
				out[k] = FromGeminiSchema(items)
				continue
			}
			out[k] = v
		default:
			out[k] = v
		}
	}
	return out
}

// CleanJsonSchemaForClaude strips JSON-Schema keywords Claude's tool
// input_schema rejects (draft-level metadata Claude does not validate
// against) and guarantees a minimal valid object schema when empty.
func CleanJsonSchemaForClaude(schema map[string]any) map[string]any {
	if len(schema) == 0 {
		return map[string]any{"type": "object", "properties": map[string]any{}}
	}
	out := make(map[string]any, len(schema))
	for k, v := range schema {
		switch k {
		case "$schema", "additionalProperties", "title", "examples":
			continue
		case "properties":
			if props, ok := v.(map[string]any); ok {
				cleaned := make(map[string]any, len(props))
				for name, propSchema := range props {
					if ps, ok := propSchema.(map[string]any); ok {
						cleaned[name] = CleanJsonSchemaForClaude(ps)
					} else {
						cleaned[name] = propSchema
					}
				}
				out[k] = cleaned
				continue
			}
			out[k] = v
		default:
			out[k] = v
		}
	}
	if _, ok := out["type"]; !ok {
		out["type"] = "object"
	}
	if _, ok := out["properties"]; !ok {
		out["properties"] = map[string]any{}
	}
	return out
}

// ParseToolCallArgs parses a tool call's JSON argument string into a
// structured value, falling back to {"value": raw} when raw is not valid
// JSON (spec §4.4: partial-JSON finalization semantics extended to any
// caller needing a best-effort structured view of tool-call arguments).
func ParseToolCallArgs(raw string) any {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return map[string]any{}
	}
	var v any
	if err := json.Unmarshal([]byte(trimmed), &v); err == nil {
		return v
	}
	return map[string]any{"value": raw}
}

// ValidateJSON reports whether data is syntactically valid JSON, and
// returns a parse error message when it is not (used by response parsers
// that must distinguish a malformed payload from a merely-unexpected one).
func ValidateJSON(data []byte) error {
	if json.Valid(data) {
		return nil
	}
	return InvalidResponsef("", "malformed JSON payload")
}

// ExtractSSEData pulls the "data:" payload out of one SSE event's raw
// bytes, tolerating an arbitrary run of spaces after the colon and
// joining multi-line "data:" fields as the SSE spec requires.
func ExtractSSEData(event []byte) []byte {
	lines := strings.Split(string(event), "\n")
	var b strings.Builder
	wrote := false
	for _, line := range lines {
		line = strings.TrimRight(line, "\r")
		if !strings.HasPrefix(line, "data:") {
			continue
		}
		payload := strings.TrimLeft(strings.TrimPrefix(line, "data:"), " ")
		if wrote {
			b.WriteByte('\n')
		}
		b.WriteString(payload)
		wrote = true
	}
	if !wrote {
		return nil
	}
	return []byte(b.String())
}

// gjsonString is a small convenience used throughout the dialect packages
// to read a string field that may be absent.
func gjsonString(v gjson.Result, path string) string {
	r := v.Get(path)
	if !r.Exists() {
		return ""
	}
	return r.String()
}
