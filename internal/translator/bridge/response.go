package bridge

import (
	"github.com/tidwall/gjson"

	"github.com/nghyane/llm-mux/internal/json"
	"github.com/nghyane/llm-mux/internal/translator/ir"
)

// ResponseFromChat converts a Chat-Completions-dialect response body into
// a Responses-dialect response body (§4.7 "Response conversion
// (non-streaming)").
func ResponseFromChat(payload []byte) ([]byte, error) {
	parsed := gjson.ParseBytes(payload)
	choice := parsed.Get("choices.0")
	text := choice.Get("message.content").String()

	status, incomplete := responseStatus(choice.Get("finish_reason").String())

	out := map[string]any{
		"id":     ir.GenResponseID(),
		"object": "response",
		"model":  parsed.Get("model").String(),
		"status": status,
		"output": []any{
			map[string]any{
				"id":   ir.GenOutputItemID(),
				"type": "message",
				"role": "assistant",
				"content": []any{
					map[string]any{"type": "output_text", "text": text},
				},
			},
		},
	}
	if incomplete != "" {
		out["incomplete_details"] = map[string]any{"reason": incomplete}
	}
	if usage := parsed.Get("usage"); usage.Exists() {
		out["usage"] = map[string]any{
			"input_tokens":  usage.Get("prompt_tokens").Int(),
			"output_tokens": usage.Get("completion_tokens").Int(),
			"total_tokens":  usage.Get("total_tokens").Int(),
		}
	}

	return json.Marshal(out)
}

// responseStatus maps a Chat finish_reason to a Responses status plus an
// incomplete_details.reason, per §4.7's literal table.
func responseStatus(finishReason string) (status string, incompleteReason string) {
	switch finishReason {
	case "length":
		return "incomplete", "max_output_tokens"
	case "content_filter":
		return "incomplete", "content_filter"
	default:
		return "completed", ""
	}
}
