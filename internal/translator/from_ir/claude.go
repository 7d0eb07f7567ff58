// Package from_ir renders the unified IR into each target dialect's wire
// shape and, for dialects this gateway also accepts as upstream raw
// responses (Claude among them), parses that same wire shape back into
// the IR. One file per dialect, named after the teacher's own layout.
package from_ir

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/tidwall/gjson"

	"github.com/nghyane/llm-mux/internal/json"
	"github.com/nghyane/llm-mux/internal/translator/ir"
)

func toClaudeToolID(id string) string { return ir.ToClaudeToolID(id) }

// claudeUser is a stable per-process identity Claude's API expects
// in the request metadata.user_id field. Generated once, lazily.
var (
	claudeUserOnce sync.Once
	claudeUser     string
)

func claudeUserID() string {
	claudeUserOnce.Do(func() {
		account, _ := uuid.NewRandom()
		session, _ := uuid.NewRandom()
		sum := sha256.Sum256([]byte(account.String() + session.String()))
		claudeUser = fmt.Sprintf("user_%s_account_%s_session_%s", hex.EncodeToString(sum[:]), account, session)
	})
	return claudeUser
}

// ClaudeAdapter implements both ir.ToIRParser and the translator package's
// FromIRConverter for the Anthropic Messages dialect.
type ClaudeAdapter struct{}

// NewClaudeAdapter constructs the Claude dialect adapter.
func NewClaudeAdapter() *ClaudeAdapter { return &ClaudeAdapter{} }

// Format/Provider both return "anthropic"; Claude is registered under the
// same name on both sides of the registry.
func (a *ClaudeAdapter) Format() string   { return "anthropic" }
func (a *ClaudeAdapter) Provider() string { return "anthropic" }

// IsSupportedRequest structurally probes for an Anthropic Messages request
// body: "messages" array plus "max_tokens", a field OpenAI/Gemini lack.
func (a *ClaudeAdapter) IsSupportedRequest(payload []byte) bool {
	parsed := gjson.ParseBytes(payload)
	return parsed.Get("messages").IsArray() && parsed.Get("max_tokens").Exists()
}

// IsSupportedModel reports whether model is a Claude model id.
func (a *ClaudeAdapter) IsSupportedModel(model string) bool {
	return ir.IsClaude(model)
}

// ParseRequest parses an Anthropic Messages request body into the IR.
func (a *ClaudeAdapter) ParseRequest(payload []byte) (*ir.UnifiedChatRequest, error) {
	if err := ir.ValidateJSON(payload); err != nil {
		return nil, ir.NewError(ir.KindInvalidRequest, a.Format(), err)
	}
	parsed := gjson.ParseBytes(payload)
	req := &ir.UnifiedChatRequest{Model: parsed.Get("model").String()}

	if mt := parsed.Get("max_tokens"); mt.Exists() {
		v := int(mt.Int())
		req.MaxTokens = &v
	}
	if t := parsed.Get("temperature"); t.Exists() {
		v := t.Float()
		req.Temperature = &v
	}
	if tp := parsed.Get("top_p"); tp.Exists() {
		v := tp.Float()
		req.TopP = &v
	}
	if tk := parsed.Get("top_k"); tk.Exists() {
		v := int(tk.Int())
		req.TopK = &v
	}
	for _, s := range parsed.Get("stop_sequences").Array() {
		req.StopSequences = append(req.StopSequences, s.String())
	}
	if stream := parsed.Get("stream"); stream.Exists() {
		v := stream.Bool()
		req.Stream = &v
	}
	if sys := parsed.Get("system"); sys.Exists() {
		if sys.IsArray() {
			for _, block := range sys.Array() {
				req.SystemBlocks = append(req.SystemBlocks, ir.SystemBlock{Text: block.Get("text").String()})
			}
			var b strings.Builder
			for i, blk := range req.SystemBlocks {
				if i > 0 {
					b.WriteByte('\n')
				}
				b.WriteString(blk.Text)
			}
			req.System = b.String()
		} else {
			req.System = sys.String()
		}
	}

	if tc := parsed.Get("thinking"); tc.Exists() {
		cfg := &ir.ThinkingConfig{}
		switch tc.Get("type").String() {
		case "enabled":
			cfg.IncludeThoughts = true
			cfg.Budget = int(tc.Get("budget_tokens").Int())
		case "disabled":
			cfg.Budget = 0
		}
		req.Thinking = cfg
	}

	for _, t := range parsed.Get("tools").Array() {
		req.Tools = append(req.Tools, ir.ToolDefinition{
			Name:        t.Get("name").String(),
			Description: t.Get("description").String(),
			Parameters:  gjsonToMap(t.Get("input_schema")),
		})
	}
	if tcv := parsed.Get("tool_choice"); tcv.Exists() {
		switch tcv.Get("type").String() {
		case "auto":
			req.ToolChoiceValue = &ir.ToolChoice{Kind: ir.ToolChoiceAuto}
		case "any":
			req.ToolChoiceValue = &ir.ToolChoice{Kind: ir.ToolChoiceRequired}
		case "tool":
			req.ToolChoiceValue = &ir.ToolChoice{Kind: ir.ToolChoiceTool, Name: tcv.Get("name").String()}
		case "none":
			req.ToolChoiceValue = &ir.ToolChoice{Kind: ir.ToolChoiceNone}
		}
	}

	for _, m := range parsed.Get("messages").Array() {
		msg, err := parseClaudeRequestMessage(m)
		if err != nil {
			return nil, err
		}
		req.Messages = append(req.Messages, msg)
	}
	return req, nil
}

func parseClaudeRequestMessage(m gjson.Result) (ir.Message, error) {
	role := ir.RoleUser
	switch m.Get("role").String() {
	case ir.ClaudeRoleAssistant:
		role = ir.RoleAssistant
	}
	msg := ir.Message{Role: role}

	content := m.Get("content")
	if content.Type == gjson.String {
		msg.Content = append(msg.Content, ir.ContentPart{Type: ir.ContentTypeText, Text: content.String()})
		return msg, nil
	}
	for _, block := range content.Array() {
		switch block.Get("type").String() {
		case ir.ClaudeBlockText:
			msg.Content = append(msg.Content, ir.ContentPart{Type: ir.ContentTypeText, Text: block.Get("text").String()})
		case ir.ClaudeBlockImage:
			src := block.Get("source")
			msg.Content = append(msg.Content, ir.ContentPart{
				Type: ir.ContentTypeImage,
				Image: &ir.ImagePart{
					MimeType: src.Get("media_type").String(),
					Data:     src.Get("data").String(),
					URL:      src.Get("url").String(),
				},
			})
		case ir.ClaudeBlockToolUse:
			msg.ToolCalls = append(msg.ToolCalls, ir.ToolCall{
				ID:   ir.FromClaudeToolID(block.Get("id").String()),
				Name: block.Get("name").String(),
				Args: block.Get("input").Raw,
			})
		case ir.ClaudeBlockToolResult:
			msg.Content = append(msg.Content, ir.ContentPart{
				Type: ir.ContentTypeToolResult,
				ToolResult: &ir.ToolResultPart{
					ToolCallID: block.Get("tool_use_id").String(),
					Result:     claudeToolResultText(block.Get("content")),
					IsError:    block.Get("is_error").Bool(),
				},
			})
		}
	}
	return msg, nil
}

func claudeToolResultText(content gjson.Result) string {
	if content.Type == gjson.String {
		return content.String()
	}
	var b strings.Builder
	for _, block := range content.Array() {
		if block.Get("type").String() == ir.ClaudeBlockText {
			b.WriteString(block.Get("text").String())
		}
	}
	return b.String()
}

func gjsonToMap(v gjson.Result) map[string]any {
	if !v.Exists() || !v.IsObject() {
		return nil
	}
	var out map[string]any
	_ = json.Unmarshal([]byte(v.Raw), &out)
	return out
}

// ParseResponse parses a non-streaming Claude Messages API response into
// the unified response shape.
func (a *ClaudeAdapter) ParseResponse(payload []byte) (*ir.UnifiedResponse, error) {
	if err := ir.ValidateJSON(payload); err != nil {
		return nil, ir.NewError(ir.KindInvalidResponse, a.Format(), err)
	}
	parsed := gjson.ParseBytes(payload)
	usage := ir.ParseClaudeUsage(parsed.Get("usage"))

	msg := ir.Message{Role: ir.RoleAssistant}
	for _, block := range parsed.Get("content").Array() {
		ir.ParseClaudeContentBlock(block, &msg)
	}

	builder := ir.NewResponseBuilder([]ir.Message{msg}, usage, parsed.Get("model").String())
	resp := &ir.UnifiedResponse{
		ID:         parsed.Get("id").String(),
		Model:      parsed.Get("model").String(),
		Content:    partsFromMessage(msg),
		StopReason: claudeStopReasonFromResponse(parsed.Get("stop_reason").String(), builder.HasToolCalls()),
		Usage:      usage,
	}
	for _, p := range resp.Content {
		if p.Type == ir.ContentTypeReasoning {
			resp.Thinking = append(resp.Thinking, p)
		}
	}
	return resp, nil
}

func claudeStopReasonFromResponse(raw string, hasToolCalls bool) ir.StopReason {
	switch raw {
	case ir.ClaudeStopEndTurn:
		if hasToolCalls {
			return ir.StopReasonToolUse
		}
		return ir.StopReasonEndTurn
	case ir.ClaudeStopMaxTokens:
		return ir.StopReasonMaxTokens
	case ir.ClaudeStopToolUse:
		return ir.StopReasonToolUse
	case ir.ClaudeStopStopSequence:
		return ir.StopReasonStopSequence
	default:
		return ir.StopReasonUnknown
	}
}

func partsFromMessage(msg ir.Message) []ir.ContentPart {
	parts := append([]ir.ContentPart{}, msg.Content...)
	for i := range msg.ToolCalls {
		tc := msg.ToolCalls[i]
		parts = append(parts, ir.ContentPart{Type: ir.ContentTypeToolCall, ToolCall: &tc})
	}
	return parts
}

// NewParserState returns fresh cross-chunk buffering state for streamed
// Claude responses (thinking-text/signature buffering, open block types).
func (a *ClaudeAdapter) NewParserState() any { return ir.NewClaudeStreamParserState() }

// ParseStreamChunk parses one Claude SSE frame into zero or more IR events.
func (a *ClaudeAdapter) ParseStreamChunk(frame []byte, state any) ([]ir.UnifiedEvent, error) {
	data := ir.ExtractSSEData(frame)
	if len(data) == 0 {
		return nil, nil
	}
	if ir.ValidateJSON(data) != nil {
		return nil, nil
	}
	st, _ := state.(*ir.ClaudeStreamParserState)

	parsed := gjson.ParseBytes(data)
	switch parsed.Get("type").String() {
	case ir.ClaudeSSEContentBlockStart:
		return ir.ParseClaudeContentBlockStart(parsed, st), nil
	case ir.ClaudeSSEContentBlockDelta:
		if st != nil {
			return ir.ParseClaudeStreamDeltaWithState(parsed, st), nil
		}
		return ir.ParseClaudeStreamDelta(parsed), nil
	case ir.ClaudeSSEContentBlockStop:
		return ir.ParseClaudeContentBlockStop(parsed, st), nil
	case ir.ClaudeSSEMessageDelta:
		return ir.ParseClaudeMessageDelta(parsed), nil
	case ir.ClaudeSSEMessageStop:
		return nil, nil
	case ir.ClaudeSSEError:
		msg := parsed.Get("error.message").String()
		if msg == "" {
			msg = "unknown Claude API error"
		}
		return []ir.UnifiedEvent{{Type: ir.EventTypeError, Error: fmt.Errorf("%s", msg)}}, nil
	}
	return nil, nil
}

// TransformRequest renders req as an Anthropic Messages API request body.
func (a *ClaudeAdapter) TransformRequest(req *ir.UnifiedChatRequest, modelOverride string) ([]byte, error) {
	model := req.Model
	if modelOverride != "" {
		model = modelOverride
	}

	root := map[string]any{
		"model":      model,
		"max_tokens": ir.ClaudeDefaultMaxTokens,
		"metadata":   map[string]any{"user_id": claudeUserID()},
	}
	if req.MaxTokens != nil {
		root["max_tokens"] = *req.MaxTokens
	}
	if req.Temperature != nil {
		root["temperature"] = *req.Temperature
	}
	if req.TopP != nil {
		root["top_p"] = *req.TopP
	}
	if req.TopK != nil {
		root["top_k"] = *req.TopK
	}
	if len(req.StopSequences) > 0 {
		root["stop_sequences"] = req.StopSequences
	}
	if req.Stream != nil {
		root["stream"] = *req.Stream
	}

	if req.Thinking != nil {
		thinking := map[string]any{}
		if req.Thinking.IncludeThoughts && req.Thinking.Budget != 0 {
			thinking["type"] = "enabled"
			if req.Thinking.Budget > 0 {
				thinking["budget_tokens"] = req.Thinking.Budget
			}
		} else if req.Thinking.Budget == 0 {
			thinking["type"] = "disabled"
		}
		if len(thinking) > 0 {
			root["thinking"] = thinking
		}
	}

	if len(req.SystemBlocks) > 0 {
		var blocks []any
		for _, b := range req.SystemBlocks {
			block := map[string]any{"type": "text", "text": b.Text}
			if b.CacheControl != nil {
				block["cache_control"] = map[string]any{"type": b.CacheControl.Kind}
			}
			blocks = append(blocks, block)
		}
		root["system"] = blocks
	} else if req.System != "" {
		root["system"] = req.System
	}

	var messages []any
	for _, msg := range req.Messages {
		switch msg.Role {
		case ir.RoleSystem:
			if root["system"] == nil {
				if text := ir.CombineTextParts(msg); text != "" {
					root["system"] = text
				}
			}
		case ir.RoleUser:
			if parts := buildClaudeContentParts(msg, false); len(parts) > 0 {
				messages = append(messages, map[string]any{"role": ir.ClaudeRoleUser, "content": parts})
			}
		case ir.RoleAssistant:
			if parts := buildClaudeContentParts(msg, true); len(parts) > 0 {
				messages = append(messages, map[string]any{"role": ir.ClaudeRoleAssistant, "content": parts})
			}
		case ir.RoleTool:
			for _, part := range msg.Content {
				if part.Type == ir.ContentTypeToolResult && part.ToolResult != nil {
					messages = append(messages, map[string]any{
						"role": ir.ClaudeRoleUser,
						"content": []any{map[string]any{
							"type": ir.ClaudeBlockToolResult, "tool_use_id": toClaudeToolID(part.ToolResult.ToolCallID), "content": part.ToolResult.Result,
						}},
					})
				}
			}
		}
	}
	root["messages"] = messages

	if len(req.Tools) > 0 {
		var tools []any
		for _, t := range req.Tools {
			tool := map[string]any{"name": t.Name, "description": t.Description}
			tool["input_schema"] = ir.CleanJsonSchemaForClaude(copyMap(t.Parameters))
			tools = append(tools, tool)
		}
		root["tools"] = tools
	}
	if req.ToolChoiceValue != nil {
		switch req.ToolChoiceValue.Kind {
		case ir.ToolChoiceAuto:
			root["tool_choice"] = map[string]any{"type": "auto"}
		case ir.ToolChoiceRequired:
			root["tool_choice"] = map[string]any{"type": "any"}
		case ir.ToolChoiceNone:
			root["tool_choice"] = map[string]any{"type": "none"}
		case ir.ToolChoiceTool:
			root["tool_choice"] = map[string]any{"type": "tool", "name": req.ToolChoiceValue.Name}
		}
	}

	if len(req.Metadata) > 0 {
		meta := root["metadata"].(map[string]any)
		for k, v := range req.Metadata {
			meta[k] = v
		}
	}

	return json.Marshal(root)
}

// TransformResponse renders resp as a complete Claude Messages API
// response body.
func (a *ClaudeAdapter) TransformResponse(resp *ir.UnifiedResponse) ([]byte, error) {
	msg := ir.Message{Role: ir.RoleAssistant}
	for _, p := range resp.Content {
		if p.Type == ir.ContentTypeToolCall && p.ToolCall != nil {
			msg.ToolCalls = append(msg.ToolCalls, *p.ToolCall)
			continue
		}
		msg.Content = append(msg.Content, p)
	}
	builder := ir.NewResponseBuilder([]ir.Message{msg}, resp.Usage, resp.Model)

	stopReason := ir.ClaudeStopEndTurn
	if builder.HasToolCalls() || resp.StopReason == ir.StopReasonToolUse {
		stopReason = ir.ClaudeStopToolUse
	} else if resp.StopReason == ir.StopReasonMaxTokens {
		stopReason = ir.ClaudeStopMaxTokens
	}

	out := map[string]any{
		"id": resp.ID, "type": "message", "role": ir.ClaudeRoleAssistant,
		"content": builder.BuildClaudeContentParts(), "model": resp.Model, "stop_reason": stopReason,
	}
	if resp.Usage != nil {
		out["usage"] = map[string]any{
			"input_tokens": resp.Usage.PromptTokens, "output_tokens": resp.Usage.CompletionTokens,
		}
	}
	return json.Marshal(out)
}

// ClaudeStreamState tracks per-stream SSE framing state (which content
// block is open, which index it occupies).
type ClaudeStreamState struct {
	MessageID        string
	Model            string
	MessageStartSent bool
	TextBlockStarted bool
	TextBlockStopped bool
	TextBlockIndex   int
	ToolBlockCount   int
	HasToolCalls     bool
	FinishSent       bool
}

// NewEmitterState returns a fresh ClaudeStreamState.
func (a *ClaudeAdapter) NewEmitterState() any {
	return &ClaudeStreamState{TextBlockIndex: 0, ToolBlockCount: 0}
}

// TransformStreamChunk renders one IR event as zero or more Claude SSE
// frames (a single tool-call event fans out into a content_block_start /
// content_block_delta / content_block_stop triad).
func (a *ClaudeAdapter) TransformStreamChunk(event ir.UnifiedEvent, model string, state any) ([][]byte, error) {
	st, _ := state.(*ClaudeStreamState)
	var out strings.Builder

	if st != nil && !st.MessageStartSent {
		st.MessageStartSent = true
		st.Model = model
		if st.MessageID == "" {
			st.MessageID = ir.GenClaudeToolCallID()
		}
		out.WriteString(formatSSE(ir.ClaudeSSEMessageStart, map[string]any{
			"type": ir.ClaudeSSEMessageStart,
			"message": map[string]any{
				"id": st.MessageID, "type": "message", "role": ir.ClaudeRoleAssistant,
				"content": []any{}, "model": model, "stop_reason": nil, "stop_sequence": nil,
				"usage": map[string]any{"input_tokens": 0, "output_tokens": 0},
			},
		}))
	}

	switch event.Type {
	case ir.EventTypeToken:
		out.WriteString(emitTextDelta(event.Content, st))
	case ir.EventTypeReasoning:
		out.WriteString(emitThinkingDelta(event, st))
	case ir.EventTypeToolCall:
		if event.ToolCall != nil {
			out.WriteString(emitToolCall(event.ToolCall, st))
		}
	case ir.EventTypeFinish:
		if st != nil && st.FinishSent {
			return nil, nil
		}
		if st != nil {
			st.FinishSent = true
		}
		out.WriteString(emitFinish(event, st))
	case ir.EventTypeError:
		out.WriteString(formatSSE(ir.ClaudeSSEError, map[string]any{
			"type": ir.ClaudeSSEError, "error": map[string]any{"type": "api_error", "message": errMsg(event.Error)},
		}))
	}

	if out.Len() == 0 {
		return nil, nil
	}
	return [][]byte{[]byte(out.String())}, nil
}

func buildClaudeContentParts(msg ir.Message, includeToolCalls bool) []any {
	capacity := len(msg.Content)
	if includeToolCalls {
		capacity += len(msg.ToolCalls)
	}
	parts := make([]any, 0, capacity)

	for i := range msg.Content {
		p := &msg.Content[i]
		switch p.Type {
		case ir.ContentTypeReasoning:
			if p.Reasoning != "" {
				block := map[string]any{"type": ir.ClaudeBlockThinking, "thinking": p.Reasoning}
				if p.ThoughtSignature != "" {
					block["signature"] = p.ThoughtSignature
				}
				parts = append(parts, block)
			}
		case ir.ContentTypeText:
			if p.Text != "" {
				block := map[string]any{"type": ir.ClaudeBlockText, "text": p.Text}
				if p.CacheControl != nil {
					block["cache_control"] = map[string]any{"type": p.CacheControl.Kind}
				}
				parts = append(parts, block)
			}
		case ir.ContentTypeImage:
			if p.Image != nil {
				parts = append(parts, map[string]any{
					"type":   ir.ClaudeBlockImage,
					"source": map[string]any{"type": "base64", "media_type": p.Image.MimeType, "data": p.Image.Data},
				})
			}
		case ir.ContentTypeToolResult:
			if p.ToolResult != nil {
				parts = append(parts, map[string]any{
					"type": ir.ClaudeBlockToolResult, "tool_use_id": toClaudeToolID(p.ToolResult.ToolCallID), "content": p.ToolResult.Result,
				})
			}
		}
	}
	if includeToolCalls {
		for i := range msg.ToolCalls {
			tc := &msg.ToolCalls[i]
			toolUse := map[string]any{"type": ir.ClaudeBlockToolUse, "id": toClaudeToolID(tc.ID), "name": tc.Name}
			toolUse["input"] = ir.ParseToolCallArgs(tc.Args)
			parts = append(parts, toolUse)
		}
	}
	return parts
}

var sseBufferPool = sync.Pool{
	New: func() any { return make([]byte, 0, 512) },
}

func formatSSE(eventType string, data any) string {
	jsonData, _ := json.Marshal(data)
	size := 7 + len(eventType) + 7 + len(jsonData) + 2

	bufPtr := sseBufferPool.Get().([]byte)
	buf := bufPtr[:0]
	if cap(buf) < size {
		buf = make([]byte, 0, size)
	}

	buf = append(buf, "event: "...)
	buf = append(buf, eventType...)
	buf = append(buf, "\ndata: "...)
	buf = append(buf, jsonData...)
	buf = append(buf, "\n\n"...)

	result := string(buf)
	sseBufferPool.Put(buf[:0])
	return result
}

func emitTextDelta(text string, state *ClaudeStreamState) string {
	var result strings.Builder
	idx := 0
	if state != nil {
		idx = state.TextBlockIndex
		if !state.TextBlockStarted {
			state.TextBlockStarted = true
			result.WriteString(formatSSE(ir.ClaudeSSEContentBlockStart, map[string]any{
				"type": ir.ClaudeSSEContentBlockStart, "index": idx,
				"content_block": map[string]any{"type": ir.ClaudeBlockText, "text": ""},
			}))
		}
	}
	result.WriteString(formatSSE(ir.ClaudeSSEContentBlockDelta, map[string]any{
		"type": ir.ClaudeSSEContentBlockDelta, "index": idx,
		"delta": map[string]any{"type": "text_delta", "text": text},
	}))
	return result.String()
}

func emitThinkingDelta(event ir.UnifiedEvent, state *ClaudeStreamState) string {
	var result strings.Builder
	idx := 0
	if state != nil {
		idx = state.TextBlockIndex
		if !state.TextBlockStarted {
			state.TextBlockStarted = true
			result.WriteString(formatSSE(ir.ClaudeSSEContentBlockStart, map[string]any{
				"type": ir.ClaudeSSEContentBlockStart, "index": idx,
				"content_block": map[string]any{"type": ir.ClaudeBlockThinking, "thinking": ""},
			}))
		}
	}
	if event.Reasoning != "" {
		result.WriteString(formatSSE(ir.ClaudeSSEContentBlockDelta, map[string]any{
			"type": ir.ClaudeSSEContentBlockDelta, "index": idx,
			"delta": map[string]any{"type": "thinking_delta", "thinking": event.Reasoning},
		}))
	}
	if event.ThoughtSignature != "" {
		result.WriteString(formatSSE(ir.ClaudeSSEContentBlockDelta, map[string]any{
			"type": ir.ClaudeSSEContentBlockDelta, "index": idx,
			"delta": map[string]any{"type": "signature_delta", "signature": event.ThoughtSignature},
		}))
	}
	return result.String()
}

func emitToolCall(tc *ir.ToolCall, state *ClaudeStreamState) string {
	var result strings.Builder
	if state != nil && state.TextBlockStarted && !state.TextBlockStopped {
		state.TextBlockStopped = true
		result.WriteString(formatSSE(ir.ClaudeSSEContentBlockStop, map[string]any{"type": ir.ClaudeSSEContentBlockStop, "index": state.TextBlockIndex}))
	}

	idx := 1
	if state != nil {
		state.HasToolCalls = true
		idx = 1 + state.ToolBlockCount
		state.ToolBlockCount++
	}

	result.WriteString(formatSSE(ir.ClaudeSSEContentBlockStart, map[string]any{
		"type": ir.ClaudeSSEContentBlockStart, "index": idx,
		"content_block": map[string]any{"type": ir.ClaudeBlockToolUse, "id": toClaudeToolID(tc.ID), "name": tc.Name, "input": map[string]any{}},
	}))

	args := tc.Args
	if args == "" {
		args = "{}"
	}
	result.WriteString(formatSSE(ir.ClaudeSSEContentBlockDelta, map[string]any{
		"type": ir.ClaudeSSEContentBlockDelta, "index": idx,
		"delta": map[string]any{"type": "input_json_delta", "partial_json": args},
	}))
	result.WriteString(formatSSE(ir.ClaudeSSEContentBlockStop, map[string]any{"type": ir.ClaudeSSEContentBlockStop, "index": idx}))
	return result.String()
}

func emitFinish(event ir.UnifiedEvent, state *ClaudeStreamState) string {
	var result strings.Builder
	stopReason := ir.ClaudeStopEndTurn
	switch {
	case state != nil && state.HasToolCalls, event.FinishReason == ir.StopReasonToolUse:
		stopReason = ir.ClaudeStopToolUse
	case event.FinishReason == ir.StopReasonMaxTokens:
		stopReason = ir.ClaudeStopMaxTokens
	}
	delta := map[string]any{"type": ir.ClaudeSSEMessageDelta, "delta": map[string]any{"stop_reason": stopReason}}
	if event.Usage != nil {
		delta["usage"] = map[string]any{"input_tokens": event.Usage.PromptTokens, "output_tokens": event.Usage.CompletionTokens}
	}
	result.WriteString(formatSSE(ir.ClaudeSSEMessageDelta, delta))
	result.WriteString(formatSSE(ir.ClaudeSSEMessageStop, map[string]any{"type": ir.ClaudeSSEMessageStop}))
	return result.String()
}

func errMsg(err error) string {
	if err != nil {
		return err.Error()
	}
	return "unknown error"
}

func copyMap(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	result := make(map[string]any, len(m))
	for k, v := range m {
		if nested, ok := v.(map[string]any); ok {
			result[k] = copyMap(nested)
		} else if arr, ok := v.([]any); ok {
			newArr := make([]any, len(arr))
			for i, item := range arr {
				if nestedMap, ok := item.(map[string]any); ok {
					newArr[i] = copyMap(nestedMap)
				} else {
					newArr[i] = item
				}
			}
			result[k] = newArr
		} else {
			result[k] = v
		}
	}
	return result
}
