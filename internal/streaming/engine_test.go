package streaming

import (
	"testing"

	"github.com/nghyane/llm-mux/internal/translator/ir"
)

// fakeFragmentParser emits tool-call arguments as two fragments followed
// by a finish event, mimicking OpenAI's Chat Completions stream shape.
type fakeFragmentParser struct{}

func (fakeFragmentParser) Format() string                    { return "fake-fragment" }
func (fakeFragmentParser) IsSupportedRequest(b []byte) bool   { return true }
func (fakeFragmentParser) IsSupportedModel(m string) bool     { return true }
func (fakeFragmentParser) ParseRequest(b []byte) (*ir.UnifiedChatRequest, error) { return nil, nil }
func (fakeFragmentParser) ParseResponse(b []byte) (*ir.UnifiedResponse, error)   { return nil, nil }
func (fakeFragmentParser) NewParserState() any                { return nil }
func (fakeFragmentParser) ParseStreamChunk(frame []byte, state any) ([]ir.UnifiedEvent, error) {
	switch string(frame) {
	case "frag1":
		return []ir.UnifiedEvent{{Type: ir.EventTypeToolCallDelta, ToolCall: &ir.ToolCall{ID: "call_1", Name: "lookup", PartialArgs: `{"q":`}}}, nil
	case "frag2":
		// Real upstream wire fragments only carry an id on the first
		// fragment of a tool call; every continuation fragment omits it.
		return []ir.UnifiedEvent{{Type: ir.EventTypeToolCallDelta, ToolCall: &ir.ToolCall{PartialArgs: `"x"}`}}}, nil
	case "finish":
		return []ir.UnifiedEvent{{Type: ir.EventTypeFinish, FinishReason: ir.StopReasonToolUse}}, nil
	}
	return nil, nil
}

// fakeObjectConverter renders tool calls only when given a complete
// object, mimicking Gemini's wire shape (no incremental arguments).
type fakeObjectConverter struct{ calls []ir.UnifiedEvent }

func (c *fakeObjectConverter) Provider() string { return "fake-object" }
func (c *fakeObjectConverter) TransformRequest(req *ir.UnifiedChatRequest, modelOverride string) ([]byte, error) {
	return nil, nil
}
func (c *fakeObjectConverter) TransformResponse(resp *ir.UnifiedResponse) ([]byte, error) {
	return nil, nil
}
func (c *fakeObjectConverter) NewEmitterState() any { return nil }
func (c *fakeObjectConverter) TransformStreamChunk(event ir.UnifiedEvent, model string, state any) ([][]byte, error) {
	if event.Type == ir.EventTypeToolCallDelta {
		// This dialect cannot render a fragment; it must never be asked to.
		return nil, nil
	}
	if event.Type == ir.EventTypeToolCall {
		c.calls = append(c.calls, event)
		return [][]byte{[]byte(event.ToolCall.Name + ":" + event.ToolCall.Args)}, nil
	}
	if event.Type == ir.EventTypeFinish {
		return [][]byte{[]byte("finish")}, nil
	}
	return nil, nil
}

func TestTask_FragmentSourceToObjectTarget_BuffersUntilFinish(t *testing.T) {
	converter := &fakeObjectConverter{}
	task := NewTask(fakeFragmentParser{}, converter, "fake-fragment", "fake-object", "m")
	// Force the object target shape explicitly since "fake-object" has no
	// registered AdapterConfig.
	task.targetShape = ToolCallShapeObject

	frames1, err := task.ProcessFrame([]byte("frag1"))
	if err != nil {
		t.Fatalf("frag1: %v", err)
	}
	if len(frames1) != 0 {
		t.Fatalf("expected no frames before finish, got %v", frames1)
	}

	frames2, err := task.ProcessFrame([]byte("frag2"))
	if err != nil {
		t.Fatalf("frag2: %v", err)
	}
	if len(frames2) != 0 {
		t.Fatalf("expected no frames before finish, got %v", frames2)
	}

	finishFrames, err := task.ProcessFrame([]byte("finish"))
	if err != nil {
		t.Fatalf("finish: %v", err)
	}
	if len(finishFrames) != 2 {
		t.Fatalf("expected consolidated tool-call frame + finish frame, got %v", finishFrames)
	}
	if string(finishFrames[0]) != `lookup:{"q":"x"}` {
		t.Fatalf("unexpected consolidated frame: %q", finishFrames[0])
	}
	if string(finishFrames[1]) != "finish" {
		t.Fatalf("unexpected finish frame: %q", finishFrames[1])
	}
	if len(converter.calls) != 1 || converter.calls[0].ToolCall.ID != "call_1" {
		t.Fatalf("unexpected recorded calls: %+v", converter.calls)
	}
}

func TestTask_Cancel_DiscardsPendingToolCall(t *testing.T) {
	converter := &fakeObjectConverter{}
	task := NewTask(fakeFragmentParser{}, converter, "fake-fragment", "fake-object", "m")
	task.targetShape = ToolCallShapeObject

	if _, err := task.ProcessFrame([]byte("frag1")); err != nil {
		t.Fatalf("frag1: %v", err)
	}
	task.Cancel()

	finishFrames, err := task.ProcessFrame([]byte("finish"))
	if err != nil {
		t.Fatalf("finish: %v", err)
	}
	// Only the finish frame, never a synthesized tool call for the
	// discarded fragment.
	if len(finishFrames) != 1 || string(finishFrames[0]) != "finish" {
		t.Fatalf("expected cancellation to drop the pending tool call, got %v", finishFrames)
	}
}
