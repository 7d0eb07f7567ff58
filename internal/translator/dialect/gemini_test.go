package dialect

import (
	"testing"

	"github.com/tidwall/gjson"

	"github.com/nghyane/llm-mux/internal/translator/ir"
)

func TestGeminiAdapter_IsSupportedModel_ExcludesGemini3(t *testing.T) {
	a := NewGeminiAdapter()
	if !a.IsSupportedModel("gemini-2.5-pro") {
		t.Error("gemini-2.5-pro should be supported")
	}
	if a.IsSupportedModel("gemini-3-pro-preview") {
		t.Error("gemini-3 models should route to Antigravity, not the plain Gemini adapter")
	}
}

func TestGeminiAdapter_ParseRequest_ToolsAndThinking(t *testing.T) {
	body := []byte(`{
		"systemInstruction": {"parts":[{"text":"be terse"}]},
		"generationConfig": {"maxOutputTokens": 256, "thinkingConfig": {"includeThoughts": true, "thinkingBudget": 512}},
		"tools": [{"functionDeclarations":[{"name":"get_weather","parameters":{"type":"OBJECT","properties":{"city":{"type":"STRING"}}}}]}],
		"contents": [{"role":"user","parts":[{"text":"weather in nyc"}]}]
	}`)
	a := NewGeminiAdapter()
	req, err := a.ParseRequest(body)
	if err != nil {
		t.Fatalf("ParseRequest: %v", err)
	}
	if req.System != "be terse" {
		t.Errorf("System = %q", req.System)
	}
	if req.MaxTokens == nil || *req.MaxTokens != 256 {
		t.Fatalf("MaxTokens = %+v", req.MaxTokens)
	}
	if req.Thinking == nil || req.Thinking.Budget != 512 || !req.Thinking.IncludeThoughts {
		t.Fatalf("Thinking = %+v", req.Thinking)
	}
	if len(req.Tools) != 1 || req.Tools[0].Parameters["type"] != "object" {
		t.Fatalf("expected lowercased json-schema type, got %+v", req.Tools[0].Parameters)
	}
	if len(req.Messages) != 1 || req.Messages[0].Content[0].Text != "weather in nyc" {
		t.Fatalf("unexpected messages: %+v", req.Messages)
	}
}

func TestGeminiAdapter_ParseResponse_FunctionCallOverridesFinishReason(t *testing.T) {
	body := []byte(`{
		"responseId": "resp_1", "modelVersion": "gemini-2.5-pro",
		"candidates": [{
			"finishReason": "STOP",
			"content": {"role": "model", "parts": [{"functionCall": {"name": "get_weather", "args": {"city":"NYC"}}}]}
		}],
		"usageMetadata": {"promptTokenCount": 10, "candidatesTokenCount": 4, "totalTokenCount": 14}
	}`)
	a := NewGeminiAdapter()
	resp, err := a.ParseResponse(body)
	if err != nil {
		t.Fatalf("ParseResponse: %v", err)
	}
	if resp.StopReason != ir.StopReasonToolUse {
		t.Errorf("StopReason = %q, want tool_use (raw STOP should be overridden by the functionCall)", resp.StopReason)
	}
	var sawToolCall bool
	for _, p := range resp.Content {
		if p.Type == ir.ContentTypeToolCall {
			sawToolCall = true
		}
	}
	if !sawToolCall {
		t.Fatal("expected a tool_call content part")
	}
}

func TestGeminiAdapter_ParseResponse_SafetyMapsToContentFilter(t *testing.T) {
	body := []byte(`{
		"candidates": [{"finishReason": "SAFETY", "content": {"role": "model", "parts": [{"text": "partial"}]}}]
	}`)
	a := NewGeminiAdapter()
	resp, err := a.ParseResponse(body)
	if err != nil {
		t.Fatalf("ParseResponse: %v", err)
	}
	if resp.StopReason != ir.StopReasonContentFilter {
		t.Errorf("StopReason = %q, want content_filter", resp.StopReason)
	}
}

func TestGeminiAdapter_ParseStreamChunk_BuffersThoughtUntilTextFlush(t *testing.T) {
	a := NewGeminiAdapter()
	state := a.NewParserState()

	frame1 := []byte(`data: {"candidates":[{"content":{"parts":[{"text":"thinking...", "thought": true, "thoughtSignature": "sig-1"}]}}]}` + "\n\n")
	events, err := a.ParseStreamChunk(frame1, state)
	if err != nil {
		t.Fatalf("ParseStreamChunk (thought): %v", err)
	}
	if len(events) != 0 {
		t.Fatalf("expected thought to be buffered, not emitted immediately, got %+v", events)
	}

	frame2 := []byte(`data: {"candidates":[{"content":{"parts":[{"text":"answer"}]}}]}` + "\n\n")
	events, err = a.ParseStreamChunk(frame2, state)
	if err != nil {
		t.Fatalf("ParseStreamChunk (text): %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("expected flushed reasoning event + token event, got %d: %+v", len(events), events)
	}
	if events[0].Type != ir.EventTypeReasoning || events[0].ThoughtSignature != "sig-1" {
		t.Errorf("unexpected flushed reasoning event: %+v", events[0])
	}
	if events[1].Type != ir.EventTypeToken || events[1].Content != "answer" {
		t.Errorf("unexpected token event: %+v", events[1])
	}
}

func TestGeminiAdapter_TransformRequest_ThinkingBudgetAndSchema(t *testing.T) {
	req := &ir.UnifiedChatRequest{
		Model:    "gemini-2.5-pro",
		System:   "be terse",
		Thinking: &ir.ThinkingConfig{IncludeThoughts: true, Budget: 1024},
		Tools: []ir.ToolDefinition{
			{Name: "get_weather", Parameters: map[string]any{"type": "object", "properties": map[string]any{"city": map[string]any{"type": "string"}}}},
		},
		Messages: []ir.Message{{Role: ir.RoleUser, Content: []ir.ContentPart{{Type: ir.ContentTypeText, Text: "hi"}}}},
	}
	a := NewGeminiAdapter()
	payload, err := a.TransformRequest(req, "")
	if err != nil {
		t.Fatalf("TransformRequest: %v", err)
	}
	parsed := gjson.ParseBytes(payload)
	if parsed.Get("generationConfig.thinkingConfig.thinkingBudget").Int() != 1024 {
		t.Errorf("unexpected thinkingConfig: %s", parsed.Get("generationConfig.thinkingConfig").Raw)
	}
	if parsed.Get("systemInstruction.parts.0.text").String() != "be terse" {
		t.Errorf("unexpected systemInstruction: %s", parsed.Get("systemInstruction").Raw)
	}
	if parsed.Get("tools.0.functionDeclarations.0.parameters.type").String() != "OBJECT" {
		t.Errorf("expected schema type uppercased for Gemini, got: %s", parsed.Get("tools.0.functionDeclarations.0.parameters").Raw)
	}
}

func TestGeminiAdapter_TransformStreamChunk_ToolCallCarriesSignature(t *testing.T) {
	a := NewGeminiAdapter()
	state := a.NewEmitterState()
	frames, err := a.TransformStreamChunk(ir.UnifiedEvent{
		Type:     ir.EventTypeToolCall,
		ToolCall: &ir.ToolCall{Name: "get_weather", Args: `{"city":"NYC"}`, ThoughtSignature: "sig-xyz-long-enough"},
	}, "gemini-2.5-pro", state)
	if err != nil {
		t.Fatalf("TransformStreamChunk: %v", err)
	}
	if len(frames) != 1 {
		t.Fatalf("expected one SSE frame, got %d", len(frames))
	}
	parsed := gjson.ParseBytes(ir.ExtractSSEData(frames[0]))
	if parsed.Get("candidates.0.content.parts.0.functionCall.name").String() != "get_weather" {
		t.Fatalf("unexpected chunk: %s", parsed.Raw)
	}
}
