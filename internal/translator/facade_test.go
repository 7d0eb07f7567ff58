package translator

import (
	"testing"

	"github.com/tidwall/gjson"

	"github.com/nghyane/llm-mux/internal/translator/ir"
)

func TestTransformRequest_ClaudeToGemini(t *testing.T) {
	payload := []byte(`{
		"model": "claude-sonnet-4-20250514",
		"max_tokens": 256,
		"messages": [{"role": "user", "content": [{"type": "text", "text": "hello"}]}]
	}`)

	out, err := TransformRequest(payload, TransformOptions{From: "anthropic", To: "gemini", Model: "gemini-2.5-pro"})
	if err != nil {
		t.Fatalf("TransformRequest: %v", err)
	}
	parsed := gjson.ParseBytes(out)
	if parsed.Get("contents.0.parts.0.text").String() != "hello" {
		t.Fatalf("unexpected gemini payload: %s", out)
	}
}

func TestTransformRequest_AppliesThinkingOverride(t *testing.T) {
	payload := []byte(`{
		"model": "claude-sonnet-4-20250514",
		"max_tokens": 256,
		"messages": [{"role": "user", "content": [{"type": "text", "text": "hi"}]}]
	}`)

	out, err := TransformRequest(payload, TransformOptions{
		From: "anthropic", To: "anthropic",
		ThinkingOverride: &ir.ThinkingConfig{IncludeThoughts: true, Budget: 512},
	})
	if err != nil {
		t.Fatalf("TransformRequest: %v", err)
	}
	parsed := gjson.ParseBytes(out)
	if parsed.Get("thinking.budget_tokens").Int() != 512 {
		t.Fatalf("expected overridden thinking budget, got %s", out)
	}
}

func TestTransformRequest_UnknownProvider(t *testing.T) {
	_, err := TransformRequest([]byte(`{}`), TransformOptions{From: "bogus", To: "anthropic"})
	if err != ir.ErrUnknownProvider {
		t.Fatalf("expected ErrUnknownProvider, got %v", err)
	}

	_, err = TransformRequest([]byte(`{"model":"claude-x","max_tokens":1,"messages":[]}`), TransformOptions{From: "anthropic", To: "bogus"})
	if err != ir.ErrUnknownProvider {
		t.Fatalf("expected ErrUnknownProvider, got %v", err)
	}
}

func TestTransformResponse_ClaudeToOpenAI(t *testing.T) {
	payload := []byte(`{
		"id": "msg_1", "model": "claude-sonnet-4-20250514", "stop_reason": "end_turn",
		"content": [{"type": "text", "text": "hi there"}]
	}`)

	out, err := TransformResponse(payload, TransformOptions{From: "anthropic", To: "openai"})
	if err != nil {
		t.Fatalf("TransformResponse: %v", err)
	}
	parsed := gjson.ParseBytes(out)
	if parsed.Get("choices.0.message.content").String() != "hi there" {
		t.Fatalf("unexpected openai response: %s", out)
	}
}
