package dialect

import (
	"strings"
	"testing"

	"github.com/tidwall/gjson"

	"github.com/nghyane/llm-mux/internal/translator/ir"
)

func TestOpenAIChatAdapter_ParseRequest_ToolsAndToolResult(t *testing.T) {
	body := []byte(`{
		"model": "gpt-4o",
		"max_tokens": 512,
		"tools": [{"type":"function","function":{"name":"get_weather","parameters":{"type":"object"}}}],
		"tool_choice": {"type":"function","function":{"name":"get_weather"}},
		"messages": [
			{"role":"user","content":"what is the weather"},
			{"role":"assistant","content":null,"tool_calls":[{"id":"call_1","type":"function","function":{"name":"get_weather","arguments":"{\"city\":\"NYC\"}"}}]},
			{"role":"tool","tool_call_id":"call_1","content":"sunny"}
		]
	}`)
	a := NewOpenAIChatAdapter("openai")
	req, err := a.ParseRequest(body)
	if err != nil {
		t.Fatalf("ParseRequest: %v", err)
	}
	if req.Model != "gpt-4o" || req.MaxTokens == nil || *req.MaxTokens != 512 {
		t.Fatalf("unexpected req: %+v", req)
	}
	if req.ToolChoiceValue == nil || req.ToolChoiceValue.Kind != ir.ToolChoiceTool || req.ToolChoiceValue.Name != "get_weather" {
		t.Fatalf("unexpected tool_choice: %+v", req.ToolChoiceValue)
	}
	if len(req.Messages) != 3 {
		t.Fatalf("expected 3 messages, got %d", len(req.Messages))
	}
	toolMsg := req.Messages[2]
	if toolMsg.Role != ir.RoleTool || len(toolMsg.Content) != 1 || toolMsg.Content[0].ToolResult.ToolCallID != "call_1" {
		t.Fatalf("unexpected tool message: %+v", toolMsg)
	}
	assistantMsg := req.Messages[1]
	if len(assistantMsg.ToolCalls) != 1 || assistantMsg.ToolCalls[0].Name != "get_weather" {
		t.Fatalf("unexpected assistant tool_calls: %+v", assistantMsg.ToolCalls)
	}
}

func TestOpenAIChatAdapter_TransformRequest_ImageAndToolCall(t *testing.T) {
	req := &ir.UnifiedChatRequest{
		Model: "gpt-4o",
		Messages: []ir.Message{
			{Role: ir.RoleUser, Content: []ir.ContentPart{
				{Type: ir.ContentTypeText, Text: "describe this"},
				{Type: ir.ContentTypeImage, Image: &ir.ImagePart{URL: "https://example.com/a.png"}},
			}},
			{Role: ir.RoleAssistant, ToolCalls: []ir.ToolCall{
				{ID: "call_1", Name: "get_weather", Args: `{"city":"NYC"}`, ThoughtSignature: "sig-abc-def-ghi"},
			}},
		},
	}
	a := NewOpenAIChatAdapter("openai")
	payload, err := a.TransformRequest(req, "")
	if err != nil {
		t.Fatalf("TransformRequest: %v", err)
	}
	parsed := gjson.ParseBytes(payload)
	messages := parsed.Get("messages").Array()
	if len(messages) != 2 {
		t.Fatalf("expected 2 messages, got %d: %s", len(messages), parsed.Get("messages").Raw)
	}
	parts := messages[0].Get("content").Array()
	if len(parts) != 2 || parts[1].Get("type").String() != "image_url" {
		t.Fatalf("expected multipart content with image: %s", messages[0].Get("content").Raw)
	}
	calls := messages[1].Get("tool_calls").Array()
	if len(calls) != 1 || calls[0].Get("function.name").String() != "get_weather" {
		t.Fatalf("unexpected tool_calls: %s", messages[1].Get("tool_calls").Raw)
	}
}

func TestOpenAIChatAdapter_ParseStreamChunk_ToolCallDeltaByIndex(t *testing.T) {
	a := NewOpenAIChatAdapter("openai")
	state := a.NewParserState()
	frame := []byte("data: {\"choices\":[{\"index\":0,\"delta\":{\"tool_calls\":[{\"index\":0,\"id\":\"call_1\",\"type\":\"function\",\"function\":{\"name\":\"get_weather\",\"arguments\":\"{\\\"ci\"}}]}}]}\n\n")
	events, err := a.ParseStreamChunk(frame, state)
	if err != nil {
		t.Fatalf("ParseStreamChunk: %v", err)
	}
	if len(events) != 1 || events[0].Type != ir.EventTypeToolCallDelta || events[0].ToolCallIndex != 0 {
		t.Fatalf("unexpected events: %+v", events)
	}
	if events[0].ToolCall.PartialArgs != `{"ci` {
		t.Errorf("unexpected partial args: %q", events[0].ToolCall.PartialArgs)
	}
}

func TestOpenAIChatAdapter_ParseStreamChunk_ToolCallDeltaOmitsIDAfterFirstFragment(t *testing.T) {
	a := NewOpenAIChatAdapter("openai")
	state := a.NewParserState()
	// Real OpenAI chunks only carry "id" on the tool call's first delta;
	// every continuation fragment omits it.
	frame := []byte("data: {\"choices\":[{\"index\":0,\"delta\":{\"tool_calls\":[{\"index\":0,\"function\":{\"arguments\":\"ty\\\":\\\"SF\\\"}\"}}]}}]}\n\n")
	events, err := a.ParseStreamChunk(frame, state)
	if err != nil {
		t.Fatalf("ParseStreamChunk: %v", err)
	}
	if len(events) != 1 || events[0].ToolCall.ID != "" {
		t.Fatalf("expected a continuation fragment with no id, got: %+v", events)
	}
	if events[0].ToolCallIndex != 0 {
		t.Fatalf("expected index 0 to be preserved without an id, got: %+v", events[0])
	}
}

func TestOpenAIChatAdapter_TransformStreamChunk_FinishEmitsDoneSentinel(t *testing.T) {
	a := NewOpenAIChatAdapter("openai")
	state := a.NewEmitterState()
	frames, err := a.TransformStreamChunk(ir.UnifiedEvent{Type: ir.EventTypeFinish, FinishReason: ir.StopReasonToolUse}, "gpt-4o", state)
	if err != nil {
		t.Fatalf("TransformStreamChunk: %v", err)
	}
	if len(frames) != 2 || !strings.Contains(string(frames[1]), "[DONE]") {
		t.Fatalf("expected finish chunk + DONE sentinel, got %d frames", len(frames))
	}
	if !strings.Contains(string(frames[0]), "tool_calls") {
		t.Errorf("expected finish_reason tool_calls in: %s", frames[0])
	}
}

func TestOpenAIChatAdapter_TransformResponse_ToolCallsSetsFinishReason(t *testing.T) {
	resp := &ir.UnifiedResponse{
		ID: "resp_1", Model: "gpt-4o", StopReason: ir.StopReasonToolUse,
		Content: []ir.ContentPart{
			{Type: ir.ContentTypeToolCall, ToolCall: &ir.ToolCall{ID: "call_1", Name: "get_weather", Args: `{}`}},
		},
	}
	a := NewOpenAIChatAdapter("openai")
	payload, err := a.TransformResponse(resp)
	if err != nil {
		t.Fatalf("TransformResponse: %v", err)
	}
	parsed := gjson.ParseBytes(payload)
	if parsed.Get("choices.0.finish_reason").String() != "tool_calls" {
		t.Fatalf("unexpected finish_reason: %s", parsed.Raw)
	}
}
