package bridge

import (
	"testing"

	"github.com/tidwall/gjson"
)

func TestRequestToChat_InstructionsAndStringInput(t *testing.T) {
	payload := []byte(`{"model":"gpt-4o","instructions":"be terse","input":"hello","max_output_tokens":100}`)
	out, err := RequestToChat(payload)
	if err != nil {
		t.Fatalf("RequestToChat: %v", err)
	}
	parsed := gjson.ParseBytes(out)
	if parsed.Get("messages.0.role").String() != "system" || parsed.Get("messages.0.content").String() != "be terse" {
		t.Fatalf("unexpected system message: %s", parsed.Get("messages.0").Raw)
	}
	if parsed.Get("messages.1.role").String() != "user" || parsed.Get("messages.1.content").String() != "hello" {
		t.Fatalf("unexpected user message: %s", parsed.Get("messages.1").Raw)
	}
	if parsed.Get("max_tokens").Int() != 100 {
		t.Fatalf("expected max_output_tokens to map to max_tokens, got %s", parsed.Raw)
	}
}

func TestRequestToChat_DeveloperRoleRewrittenToSystem(t *testing.T) {
	payload := []byte(`{"model":"gpt-4o","input":[{"role":"developer","content":"be terse"},{"role":"user","content":"hi"}]}`)
	out, err := RequestToChat(payload)
	if err != nil {
		t.Fatalf("RequestToChat: %v", err)
	}
	parsed := gjson.ParseBytes(out)
	if parsed.Get("messages.0.role").String() != "system" {
		t.Fatalf("expected developer role rewritten to system, got %s", parsed.Get("messages.0").Raw)
	}
}

func TestResponseFromChat_FinishReasonMapping(t *testing.T) {
	cases := map[string]struct{ status, reason string }{
		"stop":           {"completed", ""},
		"length":         {"incomplete", "max_output_tokens"},
		"content_filter": {"incomplete", "content_filter"},
		"tool_calls":     {"completed", ""},
	}
	for finish, want := range cases {
		payload := []byte(`{"model":"gpt-4o","choices":[{"message":{"content":"hi"},"finish_reason":"` + finish + `"}]}`)
		out, err := ResponseFromChat(payload)
		if err != nil {
			t.Fatalf("ResponseFromChat(%s): %v", finish, err)
		}
		parsed := gjson.ParseBytes(out)
		if parsed.Get("status").String() != want.status {
			t.Errorf("finish=%s status = %s, want %s", finish, parsed.Get("status").String(), want.status)
		}
		if want.reason != "" && parsed.Get("incomplete_details.reason").String() != want.reason {
			t.Errorf("finish=%s incomplete reason = %s, want %s", finish, parsed.Get("incomplete_details.reason").String(), want.reason)
		}
		if parsed.Get("output.0.content.0.text").String() != "hi" {
			t.Errorf("finish=%s unexpected output text: %s", finish, parsed.Raw)
		}
	}
}

func TestStreamBridge_ScenarioS4EventSequence(t *testing.T) {
	sb := NewStreamBridge("gpt-4o")

	frame1 := []byte(`data: {"choices":[{"delta":{"role":"assistant"}}]}` + "\n\n")
	events, err := sb.Transform(frame1)
	if err != nil {
		t.Fatalf("frame1: %v", err)
	}
	if len(events) != 0 {
		t.Fatalf("expected zero events for empty-content chunk, got %d", len(events))
	}

	frame2 := []byte(`data: {"choices":[{"delta":{"content":"Hi"}}]}` + "\n\n")
	events, err = sb.Transform(frame2)
	if err != nil {
		t.Fatalf("frame2: %v", err)
	}
	wantTypes := []string{"response.created", "response.output_item.added", "response.content_part.added", "response.output_text.delta"}
	if len(events) != len(wantTypes) {
		t.Fatalf("expected %d events, got %d: %v", len(wantTypes), len(events), events)
	}
	for i, want := range wantTypes {
		got := gjson.GetBytes(events[i], "type").String()
		if got != want {
			t.Fatalf("event %d type = %s, want %s", i, got, want)
		}
	}
	if gjson.GetBytes(events[3], "delta").String() != "Hi" {
		t.Fatalf("unexpected delta payload: %s", events[3])
	}

	frame3 := []byte(`data: {"choices":[{"delta":{},"finish_reason":"stop"}]}` + "\n\n")
	events, err = sb.Transform(frame3)
	if err != nil {
		t.Fatalf("frame3: %v", err)
	}
	wantFinish := []string{"response.output_text.done", "response.output_item.done", "response.completed"}
	if len(events) != len(wantFinish) {
		t.Fatalf("expected %d finish events, got %d: %v", len(wantFinish), len(events), events)
	}
	for i, want := range wantFinish {
		got := gjson.GetBytes(events[i], "type").String()
		if got != want {
			t.Fatalf("finish event %d type = %s, want %s", i, got, want)
		}
	}
	if gjson.GetBytes(events[0], "text").String() != "Hi" {
		t.Fatalf("expected accumulated text 'Hi', got %s", events[0])
	}
	if gjson.GetBytes(events[2], "status").String() != "completed" {
		t.Fatalf("expected completed status, got %s", events[2])
	}
}
