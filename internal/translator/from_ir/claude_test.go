package from_ir

import (
	"strings"
	"testing"

	"github.com/tidwall/gjson"

	"github.com/nghyane/llm-mux/internal/translator/ir"
)

func ptrInt(v int) *int { return &v }

func TestClaudeAdapter_TransformRequest_ThinkingAndSystemBlocks(t *testing.T) {
	req := &ir.UnifiedChatRequest{
		Model: "claude-sonnet-4-20250514",
		SystemBlocks: []ir.SystemBlock{
			{Text: "be terse", CacheControl: &ir.CacheControl{Kind: "ephemeral"}},
		},
		Messages: []ir.Message{
			{Role: ir.RoleUser, Content: []ir.ContentPart{{Type: ir.ContentTypeText, Text: "Hello"}}},
			{Role: ir.RoleAssistant, Content: []ir.ContentPart{
				{Type: ir.ContentTypeReasoning, Reasoning: "Let me think...", ThoughtSignature: "sig123"},
				{Type: ir.ContentTypeText, Text: "Response"},
			}},
		},
		MaxTokens: ptrInt(1024),
		Thinking:  &ir.ThinkingConfig{IncludeThoughts: true, Budget: 1024},
	}

	a := &ClaudeAdapter{}
	payload, err := a.TransformRequest(req, "")
	if err != nil {
		t.Fatalf("TransformRequest: %v", err)
	}

	parsed := gjson.ParseBytes(payload)
	if got := parsed.Get("thinking.type").String(); got != "enabled" {
		t.Errorf("thinking.type = %q, want enabled", got)
	}
	if got := parsed.Get("thinking.budget_tokens").Int(); got != 1024 {
		t.Errorf("thinking.budget_tokens = %d, want 1024", got)
	}
	sysBlocks := parsed.Get("system").Array()
	if len(sysBlocks) != 1 || sysBlocks[0].Get("text").String() != "be terse" {
		t.Fatalf("unexpected system blocks: %s", parsed.Get("system").Raw)
	}
	if !sysBlocks[0].Get("cache_control").Exists() {
		t.Error("system block should carry cache_control")
	}

	messages := parsed.Get("messages").Array()
	if len(messages) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(messages))
	}
	thinkingBlock := messages[1].Get("content.0")
	if thinkingBlock.Get("type").String() != ir.ClaudeBlockThinking {
		t.Fatalf("expected first assistant block to be thinking, got %s", thinkingBlock.Raw)
	}
	if got := thinkingBlock.Get("signature").String(); got != "sig123" {
		t.Errorf("thinking signature = %q, want sig123", got)
	}
}

func TestClaudeAdapter_TransformRequest_ToolChoice(t *testing.T) {
	req := &ir.UnifiedChatRequest{
		Model:           "claude-sonnet-4-20250514",
		Messages:        []ir.Message{{Role: ir.RoleUser, Content: []ir.ContentPart{{Type: ir.ContentTypeText, Text: "hi"}}}},
		ToolChoiceValue: &ir.ToolChoice{Kind: ir.ToolChoiceTool, Name: "get_weather"},
		Tools:           []ir.ToolDefinition{{Name: "get_weather", Description: "look up weather"}},
	}
	a := &ClaudeAdapter{}
	payload, err := a.TransformRequest(req, "claude-opus-4")
	if err != nil {
		t.Fatalf("TransformRequest: %v", err)
	}
	parsed := gjson.ParseBytes(payload)
	if parsed.Get("model").String() != "claude-opus-4" {
		t.Errorf("modelOverride not applied: %s", parsed.Get("model").String())
	}
	if parsed.Get("tool_choice.type").String() != "tool" || parsed.Get("tool_choice.name").String() != "get_weather" {
		t.Errorf("unexpected tool_choice: %s", parsed.Get("tool_choice").Raw)
	}
	tools := parsed.Get("tools").Array()
	if len(tools) != 1 || !tools[0].Get("input_schema.type").Exists() {
		t.Fatalf("expected a cleaned input_schema: %s", parsed.Get("tools").Raw)
	}
}

func TestClaudeAdapter_ParseResponse_ToolUse(t *testing.T) {
	body := []byte(`{
		"id": "msg_1", "model": "claude-sonnet-4-20250514", "stop_reason": "tool_use",
		"content": [
			{"type": "text", "text": "calling a tool"},
			{"type": "tool_use", "id": "toolu_abc", "name": "get_weather", "input": {"city": "NYC"}}
		],
		"usage": {"input_tokens": 10, "output_tokens": 5}
	}`)
	a := &ClaudeAdapter{}
	resp, err := a.ParseResponse(body)
	if err != nil {
		t.Fatalf("ParseResponse: %v", err)
	}
	if resp.StopReason != ir.StopReasonToolUse {
		t.Errorf("StopReason = %q, want tool_use", resp.StopReason)
	}
	var sawToolCall bool
	for _, p := range resp.Content {
		if p.Type == ir.ContentTypeToolCall {
			sawToolCall = true
			if p.ToolCall.ID != "call_abc" {
				t.Errorf("tool call id = %q, want call_abc (rewritten from toolu_)", p.ToolCall.ID)
			}
		}
	}
	if !sawToolCall {
		t.Fatal("expected a tool_call content part")
	}
	if resp.Usage == nil || resp.Usage.PromptTokens != 10 || resp.Usage.CompletionTokens != 5 {
		t.Errorf("unexpected usage: %+v", resp.Usage)
	}
}

func TestClaudeAdapter_ParseStreamChunk_BuffersThinkingUntilSignature(t *testing.T) {
	a := &ClaudeAdapter{}
	state := a.NewParserState()

	frames := []string{
		"event: content_block_start\ndata: {\"type\":\"content_block_start\",\"index\":0,\"content_block\":{\"type\":\"thinking\",\"thinking\":\"\"}}\n\n",
		"event: content_block_delta\ndata: {\"type\":\"content_block_delta\",\"index\":0,\"delta\":{\"type\":\"thinking_delta\",\"thinking\":\"step one\"}}\n\n",
		"event: content_block_delta\ndata: {\"type\":\"content_block_delta\",\"index\":0,\"delta\":{\"type\":\"signature_delta\",\"signature\":\"sig-xyz\"}}\n\n",
	}

	var lastEvents []ir.UnifiedEvent
	for _, f := range frames {
		events, err := a.ParseStreamChunk([]byte(f), state)
		if err != nil {
			t.Fatalf("ParseStreamChunk: %v", err)
		}
		if len(events) > 0 {
			lastEvents = events
		}
	}

	if len(lastEvents) != 1 {
		t.Fatalf("expected exactly one flushed reasoning event, got %d", len(lastEvents))
	}
	got := lastEvents[0]
	if got.Reasoning != "step one" || got.ThoughtSignature != "sig-xyz" {
		t.Errorf("unexpected flushed event: %+v", got)
	}
}

func TestClaudeAdapter_TransformStreamChunk_ToolCallTriad(t *testing.T) {
	a := &ClaudeAdapter{}
	state := a.NewEmitterState()

	frames, err := a.TransformStreamChunk(ir.UnifiedEvent{
		Type:     ir.EventTypeToolCall,
		ToolCall: &ir.ToolCall{ID: "call_1", Name: "get_weather", Args: `{"city":"NYC"}`},
	}, "claude-sonnet-4-20250514", state)
	if err != nil {
		t.Fatalf("TransformStreamChunk: %v", err)
	}
	if len(frames) != 1 {
		t.Fatalf("expected one SSE batch, got %d", len(frames))
	}
	payload := string(frames[0])
	for _, want := range []string{"message_start", "content_block_start", "input_json_delta", "content_block_stop", `"id":"toolu_1"`} {
		if !strings.Contains(payload, want) {
			t.Errorf("expected SSE output to contain %q, got:\n%s", want, payload)
		}
	}
}
