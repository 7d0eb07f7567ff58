package dialect

import (
	"testing"

	"github.com/tidwall/gjson"

	"github.com/nghyane/llm-mux/internal/json"
	"github.com/nghyane/llm-mux/internal/translator/ir"
)

func modelCallItem(names ...string) map[string]any {
	var parts []any
	for _, n := range names {
		parts = append(parts, map[string]any{"functionCall": map[string]any{"name": n, "args": map[string]any{}}})
	}
	return map[string]any{"role": "model", "parts": parts}
}

func userResponseItem(name string) map[string]any {
	return map[string]any{"role": "user", "parts": []any{
		map[string]any{"functionResponse": map[string]any{"name": name, "response": map[string]any{"ok": true}}},
	}}
}

func TestRepairToolPairing_GroupsSeparateResponsesIntoOne(t *testing.T) {
	contents := []any{
		modelCallItem("A", "B"),
		userResponseItem("A"),
		userResponseItem("B"),
	}
	out := repairToolPairing(contents)
	if len(out) != 2 {
		t.Fatalf("expected model turn + one grouped response item, got %d: %+v", len(out), out)
	}
	parts := out[1].(map[string]any)["parts"].([]any)
	if len(parts) != 2 {
		t.Fatalf("expected 2 responses grouped together, got %d", len(parts))
	}
	if functionResponseName(parts[0]) != "A" || functionResponseName(parts[1]) != "B" {
		t.Errorf("expected responses in original call order A,B, got %q,%q", functionResponseName(parts[0]), functionResponseName(parts[1]))
	}
}

func TestRepairToolPairing_MissingResponseGetsPlaceholder(t *testing.T) {
	contents := []any{
		modelCallItem("A", "B"),
		userResponseItem("B"),
	}
	out := repairToolPairing(contents)
	if len(out) != 2 {
		t.Fatalf("expected model turn + reconstructed response item, got %d: %+v", len(out), out)
	}
	parts := out[1].(map[string]any)["parts"].([]any)
	if len(parts) != 2 {
		t.Fatalf("expected 2 responses, got %d", len(parts))
	}
	placeholderForA := parts[0].(map[string]any)["functionResponse"].(map[string]any)
	if placeholderForA["name"] != "A" {
		t.Fatalf("expected placeholder for A first, got %+v", placeholderForA)
	}
	resp := placeholderForA["response"].(map[string]any)
	if resp["recovered"] != true {
		t.Errorf("expected recovered placeholder for A, got %+v", resp)
	}
	if functionResponseName(parts[1]) != "B" {
		t.Errorf("expected B's real response preserved, got %+v", parts[1])
	}
}

func TestRepairToolPairing_IsIdempotent(t *testing.T) {
	contents := []any{
		modelCallItem("A", "B"),
		userResponseItem("A"),
		userResponseItem("B"),
	}
	once := repairToolPairing(contents)
	twice := repairToolPairing(once)
	onceJSON, _ := json.Marshal(once)
	twiceJSON, _ := json.Marshal(twice)
	if string(onceJSON) != string(twiceJSON) {
		t.Errorf("repair pass is not idempotent:\nonce:  %s\ntwice: %s", onceJSON, twiceJSON)
	}
}

func TestAntigravityAdapter_IsSupportedModel(t *testing.T) {
	a := NewAntigravityAdapter()
	if !a.IsSupportedModel("gemini-claude-opus") {
		t.Error("gemini-claude-* should route to Antigravity")
	}
	if !a.IsSupportedModel("gemini-3-pro-preview") {
		t.Error("gemini-3-* should route to Antigravity")
	}
	if a.IsSupportedModel("gemini-2.5-pro") {
		t.Error("plain gemini-2.5-pro should not route to Antigravity")
	}
}

func TestAntigravityAdapter_TransformRequest_RepairsContents(t *testing.T) {
	req := &ir.UnifiedChatRequest{
		Model: "gemini-claude-opus",
		Messages: []ir.Message{
			{Role: ir.RoleUser, Content: []ir.ContentPart{{Type: ir.ContentTypeText, Text: "weather?"}}},
			{Role: ir.RoleAssistant, ToolCalls: []ir.ToolCall{{ID: "get_weather", Name: "get_weather", Args: "{}"}}},
			{Role: ir.RoleUser, Content: []ir.ContentPart{{Type: ir.ContentTypeToolResult, ToolResult: &ir.ToolResultPart{ToolCallID: "get_weather", Result: `{"temp":70}`}}}},
		},
	}
	a := NewAntigravityAdapter()
	payload, err := a.TransformRequest(req, "")
	if err != nil {
		t.Fatalf("TransformRequest: %v", err)
	}
	parsed := gjson.ParseBytes(payload)
	contents := parsed.Get("contents").Array()
	if len(contents) != 3 {
		t.Fatalf("expected 3 content items, got %d: %s", len(contents), parsed.Get("contents").Raw)
	}
}
