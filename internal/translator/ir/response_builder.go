package ir

import "github.com/tidwall/gjson"

// ResponseBuilder assembles a non-streaming response's content blocks for
// whichever target dialect is requested, from the same parsed []Message
// + *Usage pair every ToIR parser produces.
type ResponseBuilder struct {
	messages []Message
	usage    *Usage
	model    string
}

// NewResponseBuilder wraps a parsed response ready for rendering into any
// target dialect's wire shape.
func NewResponseBuilder(messages []Message, usage *Usage, model string) *ResponseBuilder {
	return &ResponseBuilder{messages: messages, usage: usage, model: model}
}

// HasToolCalls reports whether any message carries a tool call, the
// signal each dialect uses to pick its tool-use stop reason.
func (b *ResponseBuilder) HasToolCalls() bool {
	for _, msg := range b.messages {
		if len(msg.ToolCalls) > 0 {
			return true
		}
	}
	return false
}

// BuildClaudeContentParts renders every message's content as Claude
// Messages API content blocks (text, thinking, tool_use).
func (b *ResponseBuilder) BuildClaudeContentParts() []any {
	var parts []any
	for _, msg := range b.messages {
		for i := range msg.Content {
			p := &msg.Content[i]
			switch p.Type {
			case ContentTypeText:
				if p.Text != "" {
					parts = append(parts, map[string]any{"type": ClaudeBlockText, "text": p.Text})
				}
			case ContentTypeReasoning:
				if p.Reasoning != "" {
					block := map[string]any{"type": ClaudeBlockThinking, "thinking": p.Reasoning}
					if p.ThoughtSignature != "" {
						block["signature"] = p.ThoughtSignature
					}
					parts = append(parts, block)
				}
			}
		}
		for i := range msg.ToolCalls {
			tc := &msg.ToolCalls[i]
			parts = append(parts, map[string]any{
				"type": ClaudeBlockToolUse, "id": ToClaudeToolID(tc.ID), "name": tc.Name,
				"input": ParseToolCallArgs(tc.Args),
			})
		}
	}
	return parts
}

// BuildGeminiContentParts renders every message's content as Gemini
// generateContent "parts" entries, attaching thoughtSignature to any tool
// call or thinking part that carries one.
func (b *ResponseBuilder) BuildGeminiContentParts() []any {
	var parts []any
	for _, msg := range b.messages {
		for i := range msg.Content {
			p := &msg.Content[i]
			switch p.Type {
			case ContentTypeText:
				if p.Text != "" {
					parts = append(parts, map[string]any{"text": p.Text})
				}
			case ContentTypeReasoning:
				if p.Reasoning != "" {
					part := map[string]any{"text": p.Reasoning, "thought": true}
					if p.ThoughtSignature != "" {
						part["thoughtSignature"] = p.ThoughtSignature
					}
					parts = append(parts, part)
				}
			}
		}
		for i := range msg.ToolCalls {
			tc := &msg.ToolCalls[i]
			part := map[string]any{
				"functionCall": map[string]any{"name": tc.Name, "args": ParseToolCallArgs(tc.Args)},
			}
			if IsValidThoughtSignature(tc.ThoughtSignature) {
				part["thoughtSignature"] = tc.ThoughtSignature
			}
			parts = append(parts, part)
		}
	}
	return parts
}

// BuildOpenAIToolCalls renders every tool call across all messages as
// OpenAI Chat Completions "tool_calls" entries, carrying any thought
// signature in the vendor-extension "extra_content.google.thought_signature"
// field the OpenAI dialect uses to round-trip it.
func (b *ResponseBuilder) BuildOpenAIToolCalls() []any {
	var calls []any
	for _, msg := range b.messages {
		for i := range msg.ToolCalls {
			tc := &msg.ToolCalls[i]
			call := map[string]any{
				"id": tc.ID, "type": "function",
				"function": map[string]any{"name": tc.Name, "arguments": tc.Args},
			}
			if IsValidThoughtSignature(tc.ThoughtSignature) {
				call["extra_content"] = map[string]any{
					"google": map[string]any{"thought_signature": tc.ThoughtSignature},
				}
			}
			calls = append(calls, call)
		}
	}
	return calls
}

// BuildText concatenates every text content part across all messages, the
// shape a dialect with no separate "content blocks" notion (AI-SDK's
// plain-text surface) wants.
func (b *ResponseBuilder) BuildText() string {
	var out string
	for _, msg := range b.messages {
		out += CombineTextParts(msg)
	}
	return out
}

// ExtractThoughtSignature reads a thought signature out of a parsed
// upstream JSON fragment, checking both the camelCase ("thoughtSignature")
// and snake_case ("thought_signature") spellings different dialects use.
func ExtractThoughtSignature(v gjson.Result) string {
	if sig := v.Get("thoughtSignature"); sig.Exists() {
		return sig.String()
	}
	if sig := v.Get("thought_signature"); sig.Exists() {
		return sig.String()
	}
	return ""
}
