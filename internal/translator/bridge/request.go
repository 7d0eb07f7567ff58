// Package bridge implements the Responses-Dialect Bridge (spec §4.7): a
// direct, IR-free two-way converter between the OpenAI-Responses wire
// shape and the OpenAI-Chat wire shape. It sits in front of the registered
// "openai" FromIRConverter/ToIRParser rather than inside the registry,
// since Responses is not itself one of the closed-enum dialects (§4.2).
package bridge

import (
	"github.com/tidwall/gjson"

	"github.com/nghyane/llm-mux/internal/json"
)

// RequestToChat converts a Responses-dialect request body into a
// Chat-Completions-dialect request body (§4.7 "Request conversion").
func RequestToChat(payload []byte) ([]byte, error) {
	parsed := gjson.ParseBytes(payload)

	var messages []any
	if instructions := parsed.Get("instructions"); instructions.Exists() && instructions.String() != "" {
		messages = append(messages, map[string]any{"role": "system", "content": instructions.String()})
	}

	input := parsed.Get("input")
	switch {
	case input.Type == gjson.String:
		messages = append(messages, map[string]any{"role": "user", "content": input.String()})
	case input.IsArray():
		for _, m := range input.Array() {
			role := m.Get("role").String()
			if role == "developer" {
				role = "system"
			}
			messages = append(messages, map[string]any{"role": role, "content": m.Get("content").Value()})
		}
	}

	out := map[string]any{"messages": messages}
	if model := parsed.Get("model"); model.Exists() {
		out["model"] = model.String()
	}
	if stream := parsed.Get("stream"); stream.Exists() {
		out["stream"] = stream.Bool()
	}
	if maxOut := parsed.Get("max_output_tokens"); maxOut.Exists() {
		out["max_tokens"] = maxOut.Int()
	}
	if temp := parsed.Get("temperature"); temp.Exists() {
		out["temperature"] = temp.Float()
	}
	if topP := parsed.Get("top_p"); topP.Exists() {
		out["top_p"] = topP.Float()
	}

	body, err := json.Marshal(out)
	if err != nil {
		return nil, err
	}
	return body, nil
}
