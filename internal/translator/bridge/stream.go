package bridge

import (
	"time"

	"github.com/tidwall/gjson"

	"github.com/nghyane/llm-mux/internal/json"
	"github.com/nghyane/llm-mux/internal/translator/ir"
)

// StreamBridge is the stateful transformer from §4.7's "Response
// conversion (streaming)": it ingests Chat-style SSE frames and emits
// Responses-style SSE frames, tracking the fields the spec names
// (responseId, outputItemId, accumulatedText, isFirstChunk, createdAt).
type StreamBridge struct {
	responseID      string
	outputItemID    string
	model           string
	accumulatedText string
	isFirstChunk    bool
	createdAt       int64
}

// NewStreamBridge starts a fresh bridge for one Responses stream.
func NewStreamBridge(model string) *StreamBridge {
	return &StreamBridge{
		responseID:   ir.GenResponseID(),
		outputItemID: ir.GenOutputItemID(),
		model:        model,
		isFirstChunk: true,
		createdAt:    time.Now().Unix(),
	}
}

// Transform consumes one raw Chat-dialect SSE frame and renders zero or
// more Responses-dialect SSE frames.
func (s *StreamBridge) Transform(frame []byte) ([][]byte, error) {
	data := ir.ExtractSSEData(frame)
	if len(data) == 0 || !gjson.ValidBytes(data) {
		return nil, nil
	}
	parsed := gjson.ParseBytes(data)
	choice := parsed.Get("choices.0")
	if !choice.Exists() {
		return nil, nil
	}

	var out [][]byte
	content := choice.Get("delta.content").String()
	finishReason := choice.Get("finish_reason")

	if content != "" {
		if s.isFirstChunk {
			out = append(out, s.event("response.created", s.responseEnvelope("in_progress", nil)))
			out = append(out, s.event("response.output_item.added", map[string]any{
				"response_id": s.responseID,
				"item":        s.outputItem("in_progress", ""),
			}))
			out = append(out, s.event("response.content_part.added", map[string]any{
				"response_id": s.responseID, "item_id": s.outputItemID,
				"part": map[string]any{"type": "output_text", "text": ""},
			}))
			s.isFirstChunk = false
		}
		s.accumulatedText += content
		out = append(out, s.event("response.output_text.delta", map[string]any{
			"response_id": s.responseID, "item_id": s.outputItemID, "delta": content,
		}))
	}

	if finishReason.Exists() && finishReason.String() != "" {
		status, incompleteReason := responseStatus(finishReason.String())
		out = append(out, s.event("response.output_text.done", map[string]any{
			"response_id": s.responseID, "item_id": s.outputItemID, "text": s.accumulatedText,
		}))
		out = append(out, s.event("response.output_item.done", map[string]any{
			"response_id": s.responseID, "item": s.outputItem("completed", s.accumulatedText),
		}))
		envelope := s.responseEnvelope(status, nil)
		if incompleteReason != "" {
			envelope["incomplete_details"] = map[string]any{"reason": incompleteReason}
		}
		out = append(out, s.event("response.completed", envelope))
	}

	return out, nil
}

func (s *StreamBridge) outputItem(status, text string) map[string]any {
	item := map[string]any{
		"id": s.outputItemID, "type": "message", "role": "assistant", "status": status,
	}
	if status == "completed" {
		item["content"] = []any{map[string]any{"type": "output_text", "text": text}}
	}
	return item
}

func (s *StreamBridge) responseEnvelope(status string, extra map[string]any) map[string]any {
	env := map[string]any{
		"id": s.responseID, "object": "response", "model": s.model,
		"status": status, "created_at": s.createdAt,
	}
	for k, v := range extra {
		env[k] = v
	}
	return env
}

// event renders one Responses SSE frame: {"type": name, ...payload}.
func (s *StreamBridge) event(name string, payload map[string]any) []byte {
	body := map[string]any{"type": name}
	for k, v := range payload {
		body[k] = v
	}
	line, err := json.Marshal(body)
	if err != nil {
		return []byte(`data: {"type":"error"}` + "\n\n")
	}
	return append(append([]byte("data: "), line...), []byte("\n\n")...)
}
