package dialect

import (
	"testing"

	"github.com/tidwall/gjson"

	"github.com/nghyane/llm-mux/internal/translator/ir"
)

func TestAISDKAdapter_ParseRequest_ToolCallAndResult(t *testing.T) {
	body := []byte(`{
		"model": "gpt-4o",
		"messages": [
			{"role":"user","content":[{"type":"text","text":"weather?"}]},
			{"role":"assistant","content":[{"type":"tool-call","toolCallId":"t1","toolName":"get_weather","args":{"city":"NYC"}}]},
			{"role":"tool","content":[{"type":"tool-result","toolCallId":"t1","result":{"temp":70}}]}
		]
	}`)
	a := NewAISDKAdapter()
	req, err := a.ParseRequest(body)
	if err != nil {
		t.Fatalf("ParseRequest: %v", err)
	}
	if len(req.Messages) != 3 {
		t.Fatalf("expected 3 messages, got %d", len(req.Messages))
	}
	if len(req.Messages[1].ToolCalls) != 1 || req.Messages[1].ToolCalls[0].Name != "get_weather" {
		t.Fatalf("unexpected tool call: %+v", req.Messages[1].ToolCalls)
	}
	toolResult := req.Messages[2].Content[0].ToolResult
	if toolResult == nil || toolResult.ToolCallID != "t1" {
		t.Fatalf("unexpected tool result: %+v", toolResult)
	}
}

func TestAISDKAdapter_TransformResponse_ToolCallsSetsFinishReason(t *testing.T) {
	resp := &ir.UnifiedResponse{
		Model: "gpt-4o", StopReason: ir.StopReasonToolUse,
		Content: []ir.ContentPart{{Type: ir.ContentTypeToolCall, ToolCall: &ir.ToolCall{ID: "t1", Name: "get_weather", Args: "{}"}}},
	}
	a := NewAISDKAdapter()
	payload, err := a.TransformResponse(resp)
	if err != nil {
		t.Fatalf("TransformResponse: %v", err)
	}
	parsed := gjson.ParseBytes(payload)
	if parsed.Get("finishReason").String() != "tool-calls" {
		t.Fatalf("unexpected finishReason: %s", parsed.Raw)
	}
	if parsed.Get("toolCalls.0.toolName").String() != "get_weather" {
		t.Fatalf("unexpected toolCalls: %s", parsed.Get("toolCalls").Raw)
	}
}

func TestAISDKAdapter_ParseStreamChunk_ToolCallDelta(t *testing.T) {
	a := NewAISDKAdapter()
	frame := []byte(`data: {"type":"tool-call-delta","toolCallId":"t1","argsTextDelta":"{\"ci"}` + "\n\n")
	events, err := a.ParseStreamChunk(frame, nil)
	if err != nil {
		t.Fatalf("ParseStreamChunk: %v", err)
	}
	if len(events) != 1 || events[0].Type != ir.EventTypeToolCallDelta || events[0].ToolCall.PartialArgs != `{"ci` {
		t.Fatalf("unexpected events: %+v", events)
	}
}

func TestAISDKAdapter_TransformStreamChunk_Finish(t *testing.T) {
	a := NewAISDKAdapter()
	frames, err := a.TransformStreamChunk(ir.UnifiedEvent{Type: ir.EventTypeFinish, FinishReason: ir.StopReasonMaxTokens}, "gpt-4o", nil)
	if err != nil {
		t.Fatalf("TransformStreamChunk: %v", err)
	}
	parsed := gjson.ParseBytes(frames[0])
	if parsed.Get("finishReason").String() != "length" {
		t.Fatalf("unexpected line: %s", frames[0])
	}
}
