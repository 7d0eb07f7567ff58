package ir

import "github.com/tidwall/gjson"

// Claude Messages API role/block/stop-reason vocabulary, centralized here
// so both directions of the Claude dialect adapter share one source of
// truth instead of re-declaring string literals.
const (
	ClaudeRoleUser      = "user"
	ClaudeRoleAssistant = "assistant"

	ClaudeBlockText       = "text"
	ClaudeBlockThinking   = "thinking"
	ClaudeBlockImage      = "image"
	ClaudeBlockToolUse    = "tool_use"
	ClaudeBlockToolResult = "tool_result"

	ClaudeStopEndTurn      = "end_turn"
	ClaudeStopMaxTokens    = "max_tokens"
	ClaudeStopToolUse      = "tool_use"
	ClaudeStopStopSequence = "stop_sequence"

	ClaudeDefaultMaxTokens = 4096
)

// Claude SSE event-type names (the "type" field of both the outer SSE
// "event:" line and the JSON body's own "type" field, which always match).
const (
	ClaudeSSEMessageStart      = "message_start"
	ClaudeSSEContentBlockStart = "content_block_start"
	ClaudeSSEContentBlockDelta = "content_block_delta"
	ClaudeSSEContentBlockStop  = "content_block_stop"
	ClaudeSSEMessageDelta      = "message_delta"
	ClaudeSSEMessageStop       = "message_stop"
	ClaudeSSEPing              = "ping"
	ClaudeSSEError             = "error"
)

// claudeStopReason maps Claude's wire stop_reason strings to the IR's
// canonical StopReason enum.
func claudeStopReason(s string) StopReason {
	switch s {
	case ClaudeStopEndTurn:
		return StopReasonEndTurn
	case ClaudeStopMaxTokens:
		return StopReasonMaxTokens
	case ClaudeStopToolUse:
		return StopReasonToolUse
	case ClaudeStopStopSequence:
		return StopReasonStopSequence
	case "":
		return StopReasonNone
	default:
		return StopReasonUnknown
	}
}

// ParseClaudeUsage extracts token counts from a Claude "usage" object,
// whether it appears on a full response or a message_start/message_delta
// SSE frame (the two shapes use the same field names).
func ParseClaudeUsage(usage gjson.Result) *Usage {
	if !usage.Exists() {
		return nil
	}
	u := &Usage{
		PromptTokens:     int(usage.Get("input_tokens").Int()),
		CompletionTokens: int(usage.Get("output_tokens").Int()),
		CachedTokens:     int(usage.Get("cache_read_input_tokens").Int()),
	}
	u.TotalTokens = u.PromptTokens + u.CompletionTokens
	return u
}

// ParseClaudeContentBlock appends one non-streaming response content
// block (a member of the top-level "content" array) onto msg.
func ParseClaudeContentBlock(block gjson.Result, msg *Message) {
	switch block.Get("type").String() {
	case ClaudeBlockText:
		msg.Content = append(msg.Content, ContentPart{Type: ContentTypeText, Text: block.Get("text").String()})
	case ClaudeBlockThinking:
		sig := gjsonString(block, "signature")
		msg.Content = append(msg.Content, ContentPart{
			Type: ContentTypeReasoning, Reasoning: block.Get("thinking").String(), ThoughtSignature: sig,
		})
	case ClaudeBlockToolUse:
		tc := ToolCall{
			ID:   FromClaudeToolID(block.Get("id").String()),
			Name: block.Get("name").String(),
			Args: block.Get("input").Raw,
		}
		msg.ToolCalls = append(msg.ToolCalls, tc)
	case ClaudeBlockToolResult:
		msg.Content = append(msg.Content, ContentPart{
			Type: ContentTypeToolResult,
			ToolResult: &ToolResultPart{
				ToolCallID: block.Get("tool_use_id").String(),
				Result:     block.Get("content").String(),
				IsError:    block.Get("is_error").Bool(),
			},
		})
	}
}

// ClaudeStreamParserState tracks the index and open/closed state of each
// content block across a Claude SSE stream, and buffers thinking text
// until its trailing signature_delta (if any) arrives.
type ClaudeStreamParserState struct {
	blockTypes      map[int]string
	toolArgsByIndex map[int]string
	bufferedThought string
	bufferedIndex   int
	hasBuffered     bool
}

// NewClaudeStreamParserState returns a fresh parser state.
func NewClaudeStreamParserState() *ClaudeStreamParserState {
	return &ClaudeStreamParserState{
		blockTypes:      make(map[int]string),
		toolArgsByIndex: make(map[int]string),
	}
}

// ParseClaudeContentBlockStart records the type of a newly-opened block
// and, for tool_use blocks, emits nothing yet (arguments arrive via
// subsequent input_json_delta frames).
func ParseClaudeContentBlockStart(parsed gjson.Result, state *ClaudeStreamParserState) []UnifiedEvent {
	if state == nil {
		return nil
	}
	index := int(parsed.Get("index").Int())
	block := parsed.Get("content_block")
	blockType := block.Get("type").String()
	state.blockTypes[index] = blockType
	if blockType == ClaudeBlockToolUse {
		state.toolArgsByIndex[index] = ""
	}
	return nil
}

// ParseClaudeStreamDelta parses a content_block_delta frame without any
// cross-chunk state (stateless fallback path).
func ParseClaudeStreamDelta(parsed gjson.Result) []UnifiedEvent {
	delta := parsed.Get("delta")
	switch delta.Get("type").String() {
	case "text_delta":
		return []UnifiedEvent{{Type: EventTypeToken, Content: delta.Get("text").String()}}
	case "thinking_delta":
		return []UnifiedEvent{{Type: EventTypeReasoning, Reasoning: delta.Get("thinking").String()}}
	case "input_json_delta":
		return []UnifiedEvent{{Type: EventTypeToolCallDelta, ToolCall: &ToolCall{PartialArgs: delta.Get("partial_json").String()}}}
	}
	return nil
}

// ParseClaudeStreamDeltaWithState parses a content_block_delta frame with
// cross-chunk buffering: thinking_delta text is buffered silently until a
// signature_delta (or the block's stop) flushes one consolidated
// EventTypeReasoning event carrying both the text and the signature.
func ParseClaudeStreamDeltaWithState(parsed gjson.Result, state *ClaudeStreamParserState) []UnifiedEvent {
	index := int(parsed.Get("index").Int())
	delta := parsed.Get("delta")
	switch delta.Get("type").String() {
	case "text_delta":
		return []UnifiedEvent{{Type: EventTypeToken, Content: delta.Get("text").String()}}
	case "thinking_delta":
		state.bufferedThought += delta.Get("thinking").String()
		state.bufferedIndex = index
		state.hasBuffered = true
		return nil
	case "signature_delta":
		sig := delta.Get("signature").String()
		if !state.hasBuffered {
			return []UnifiedEvent{{Type: EventTypeReasoning, ThoughtSignature: sig}}
		}
		event := UnifiedEvent{Type: EventTypeReasoning, Reasoning: state.bufferedThought, ThoughtSignature: sig}
		state.bufferedThought = ""
		state.hasBuffered = false
		return []UnifiedEvent{event}
	case "input_json_delta":
		state.toolArgsByIndex[index] += delta.Get("partial_json").String()
		return []UnifiedEvent{{Type: EventTypeToolCallDelta, ToolCallIndex: index, ToolCall: &ToolCall{PartialArgs: delta.Get("partial_json").String()}}}
	}
	return nil
}

// ParseClaudeContentBlockStop flushes any buffered thinking text for the
// closing block (a thinking block with no signature_delta at all) and
// clears per-block bookkeeping.
func ParseClaudeContentBlockStop(parsed gjson.Result, state *ClaudeStreamParserState) []UnifiedEvent {
	if state == nil {
		return nil
	}
	index := int(parsed.Get("index").Int())
	var events []UnifiedEvent
	if state.hasBuffered && state.bufferedIndex == index {
		events = append(events, UnifiedEvent{Type: EventTypeReasoning, Reasoning: state.bufferedThought})
		state.bufferedThought = ""
		state.hasBuffered = false
	}
	delete(state.blockTypes, index)
	delete(state.toolArgsByIndex, index)
	return events
}

// ParseClaudeMessageDelta parses a message_delta frame (carries the final
// stop_reason and cumulative output usage, no content).
func ParseClaudeMessageDelta(parsed gjson.Result) []UnifiedEvent {
	delta := parsed.Get("delta")
	reason := claudeStopReason(delta.Get("stop_reason").String())
	var usage *Usage
	if u := parsed.Get("usage"); u.Exists() {
		usage = ParseClaudeUsage(u)
	}
	return []UnifiedEvent{{Type: EventTypeFinish, FinishReason: reason, Usage: usage}}
}
