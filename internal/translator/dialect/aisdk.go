package dialect

import (
	"github.com/tidwall/gjson"

	"github.com/nghyane/llm-mux/internal/json"
	"github.com/nghyane/llm-mux/internal/translator/ir"
)

// AISDKAdapter implements ir.ToIRParser and translator.FromIRConverter for
// the AI-SDK language-model-V3 protocol. Semantics mirror OpenAI-Chat
// (§4.1): a flat messages array, one choice, incremental tool-call
// argument deltas. The wire shape differs in field names (toolCallId,
// toolName, args/result instead of OpenAI's tool_call_id/function.name/
// function.arguments) and in always representing message content as a
// typed-part array rather than allowing a bare string.
type AISDKAdapter struct{}

func NewAISDKAdapter() *AISDKAdapter { return &AISDKAdapter{} }

func (a *AISDKAdapter) Format() string   { return "ai-sdk" }
func (a *AISDKAdapter) Provider() string { return "ai-sdk" }

func (a *AISDKAdapter) IsSupportedRequest(payload []byte) bool {
	return gjson.ParseBytes(payload).Get("messages").IsArray()
}

func (a *AISDKAdapter) IsSupportedModel(string) bool { return false }

// ParseRequest parses an AI-SDK generate request body into the IR.
func (a *AISDKAdapter) ParseRequest(payload []byte) (*ir.UnifiedChatRequest, error) {
	if err := ir.ValidateJSON(payload); err != nil {
		return nil, ir.InvalidRequestf(a.Format(), "malformed request body: %v", err)
	}
	parsed := gjson.ParseBytes(payload)
	req := &ir.UnifiedChatRequest{Model: parsed.Get("model").String()}

	if v := parsed.Get("maxOutputTokens"); v.Exists() {
		n := int(v.Int())
		req.MaxTokens = &n
	}
	if v := parsed.Get("temperature"); v.Exists() {
		f := v.Float()
		req.Temperature = &f
	}
	if v := parsed.Get("topP"); v.Exists() {
		f := v.Float()
		req.TopP = &f
	}
	if v := parsed.Get("stream"); v.Exists() {
		b := v.Bool()
		req.Stream = &b
	}

	for _, t := range parsed.Get("tools").Array() {
		req.Tools = append(req.Tools, ir.ToolDefinition{
			Name:        t.Get("name").String(),
			Description: t.Get("description").String(),
			Parameters:  gjsonObjectToMap(t.Get("parameters")),
		})
	}

	for _, m := range parsed.Get("messages").Array() {
		req.Messages = append(req.Messages, parseAISDKMessage(m))
	}
	return req, nil
}

func parseAISDKMessage(m gjson.Result) ir.Message {
	var role ir.Role
	switch m.Get("role").String() {
	case "assistant":
		role = ir.RoleAssistant
	case "system":
		role = ir.RoleSystem
	case "tool":
		role = ir.RoleTool
	default:
		role = ir.RoleUser
	}
	msg := ir.Message{Role: role}

	for _, part := range m.Get("content").Array() {
		switch part.Get("type").String() {
		case "text":
			msg.Content = append(msg.Content, ir.ContentPart{Type: ir.ContentTypeText, Text: part.Get("text").String()})
		case "reasoning":
			msg.Content = append(msg.Content, ir.ContentPart{Type: ir.ContentTypeReasoning, Reasoning: part.Get("text").String()})
		case "image":
			msg.Content = append(msg.Content, ir.ContentPart{
				Type:  ir.ContentTypeImage,
				Image: &ir.ImagePart{URL: part.Get("url").String(), MimeType: part.Get("mimeType").String()},
			})
		case "tool-call":
			msg.ToolCalls = append(msg.ToolCalls, ir.ToolCall{
				ID:   part.Get("toolCallId").String(),
				Name: part.Get("toolName").String(),
				Args: part.Get("args").Raw,
			})
		case "tool-result":
			msg.Content = append(msg.Content, ir.ContentPart{
				Type: ir.ContentTypeToolResult,
				ToolResult: &ir.ToolResultPart{
					ToolCallID: part.Get("toolCallId").String(),
					Result:     part.Get("result").Raw,
				},
			})
		}
	}
	return msg
}

// ParseResponse parses a non-streaming AI-SDK generate result into the IR.
func (a *AISDKAdapter) ParseResponse(payload []byte) (*ir.UnifiedResponse, error) {
	if err := ir.ValidateJSON(payload); err != nil {
		return nil, ir.InvalidResponsef(a.Format(), "malformed response body: %v", err)
	}
	parsed := gjson.ParseBytes(payload)
	msg := ir.Message{Role: ir.RoleAssistant}
	if text := parsed.Get("text"); text.Exists() && text.String() != "" {
		msg.Content = append(msg.Content, ir.ContentPart{Type: ir.ContentTypeText, Text: text.String()})
	}
	for _, tc := range parsed.Get("toolCalls").Array() {
		msg.ToolCalls = append(msg.ToolCalls, ir.ToolCall{
			ID: tc.Get("id").String(), Name: tc.Get("toolName").String(),
			Args: tc.Get("arguments").Raw,
		})
	}

	resp := &ir.UnifiedResponse{
		Model:      parsed.Get("model").String(),
		StopReason: aiSDKFinishReason(parsed.Get("finishReason").String()),
		Usage:      parseAISDKUsage(parsed.Get("usage")),
		Content:    append([]ir.ContentPart{}, msg.Content...),
	}
	for i := range msg.ToolCalls {
		tc := msg.ToolCalls[i]
		resp.Content = append(resp.Content, ir.ContentPart{Type: ir.ContentTypeToolCall, ToolCall: &tc})
	}
	return resp, nil
}

func aiSDKFinishReason(raw string) ir.StopReason {
	switch raw {
	case "stop":
		return ir.StopReasonEndTurn
	case "length":
		return ir.StopReasonMaxTokens
	case "tool-calls":
		return ir.StopReasonToolUse
	case "content-filter":
		return ir.StopReasonContentFilter
	case "error":
		return ir.StopReasonError
	case "":
		return ir.StopReasonNone
	default:
		return ir.StopReasonUnknown
	}
}

func parseAISDKUsage(u gjson.Result) *ir.Usage {
	if !u.Exists() {
		return nil
	}
	return &ir.Usage{
		PromptTokens:     int(u.Get("inputTokens").Int()),
		CompletionTokens: int(u.Get("outputTokens").Int()),
		TotalTokens:      int(u.Get("totalTokens").Int()),
	}
}

func (a *AISDKAdapter) NewParserState() any { return nil }

// ParseStreamChunk parses one AI-SDK data-stream JSON-line chunk into IR events.
func (a *AISDKAdapter) ParseStreamChunk(frame []byte, _ any) ([]ir.UnifiedEvent, error) {
	data := ir.ExtractSSEData(frame)
	if len(data) == 0 || ir.ValidateJSON(data) != nil {
		return nil, nil
	}
	parsed := gjson.ParseBytes(data)
	switch parsed.Get("type").String() {
	case "text-delta":
		return []ir.UnifiedEvent{{Type: ir.EventTypeToken, Content: parsed.Get("textDelta").String()}}, nil
	case "reasoning-delta":
		return []ir.UnifiedEvent{{Type: ir.EventTypeReasoning, Reasoning: parsed.Get("textDelta").String()}}, nil
	case "tool-call":
		return []ir.UnifiedEvent{{
			Type: ir.EventTypeToolCall,
			ToolCall: &ir.ToolCall{
				ID: parsed.Get("toolCallId").String(), Name: parsed.Get("toolName").String(),
				Args: parsed.Get("args").Raw,
			},
		}}, nil
	case "tool-call-delta":
		return []ir.UnifiedEvent{{
			Type: ir.EventTypeToolCallDelta,
			ToolCall: &ir.ToolCall{
				ID: parsed.Get("toolCallId").String(), PartialArgs: parsed.Get("argsTextDelta").String(),
			},
		}}, nil
	case "finish":
		return []ir.UnifiedEvent{{
			Type: ir.EventTypeFinish, FinishReason: aiSDKFinishReason(parsed.Get("finishReason").String()),
			Usage: parseAISDKUsage(parsed.Get("usage")),
		}}, nil
	case "error":
		return []ir.UnifiedEvent{{Type: ir.EventTypeError, Error: ir.InvalidResponsef(a.Format(), "%s", parsed.Get("error").String())}}, nil
	default:
		return nil, nil
	}
}

// TransformRequest renders req as an AI-SDK generate request body.
func (a *AISDKAdapter) TransformRequest(req *ir.UnifiedChatRequest, modelOverride string) ([]byte, error) {
	model := req.Model
	if modelOverride != "" {
		model = modelOverride
	}
	root := map[string]any{"model": model}
	if req.MaxTokens != nil {
		root["maxOutputTokens"] = *req.MaxTokens
	}
	if req.Temperature != nil {
		root["temperature"] = *req.Temperature
	}
	if req.TopP != nil {
		root["topP"] = *req.TopP
	}
	if req.Stream != nil {
		root["stream"] = *req.Stream
	}
	if len(req.Tools) > 0 {
		var tools []any
		for _, t := range req.Tools {
			tools = append(tools, map[string]any{"name": t.Name, "description": t.Description, "parameters": t.Parameters})
		}
		root["tools"] = tools
	}

	var messages []any
	if req.System != "" {
		messages = append(messages, map[string]any{"role": "system", "content": []any{map[string]any{"type": "text", "text": req.System}}})
	}
	for _, msg := range req.Messages {
		messages = append(messages, buildAISDKMessage(msg))
	}
	root["messages"] = messages
	return json.Marshal(root)
}

func buildAISDKMessage(msg ir.Message) map[string]any {
	role := "user"
	switch msg.Role {
	case ir.RoleAssistant:
		role = "assistant"
	case ir.RoleSystem:
		role = "system"
	case ir.RoleTool:
		role = "tool"
	}

	var parts []any
	for _, p := range msg.Content {
		switch p.Type {
		case ir.ContentTypeText:
			if p.Text != "" {
				parts = append(parts, map[string]any{"type": "text", "text": p.Text})
			}
		case ir.ContentTypeReasoning:
			if p.Reasoning != "" {
				parts = append(parts, map[string]any{"type": "reasoning", "text": p.Reasoning})
			}
		case ir.ContentTypeImage:
			if p.Image != nil {
				parts = append(parts, map[string]any{"type": "image", "url": p.Image.URL, "mimeType": p.Image.MimeType})
			}
		case ir.ContentTypeToolResult:
			if p.ToolResult != nil {
				parts = append(parts, map[string]any{
					"type": "tool-result", "toolCallId": p.ToolResult.ToolCallID,
					"result": ir.ParseToolCallArgs(p.ToolResult.Result),
				})
			}
		}
	}
	for i := range msg.ToolCalls {
		tc := &msg.ToolCalls[i]
		parts = append(parts, map[string]any{
			"type": "tool-call", "toolCallId": tc.ID, "toolName": tc.Name, "args": ir.ParseToolCallArgs(tc.Args),
		})
	}
	return map[string]any{"role": role, "content": parts}
}

// TransformResponse renders resp as a complete AI-SDK generate result.
func (a *AISDKAdapter) TransformResponse(resp *ir.UnifiedResponse) ([]byte, error) {
	msg := ir.Message{Role: ir.RoleAssistant}
	for _, p := range resp.Content {
		if p.Type == ir.ContentTypeToolCall && p.ToolCall != nil {
			msg.ToolCalls = append(msg.ToolCalls, *p.ToolCall)
			continue
		}
		msg.Content = append(msg.Content, p)
	}
	builder := ir.NewResponseBuilder([]ir.Message{msg}, resp.Usage, resp.Model)

	finish := "stop"
	var toolCalls []any
	if builder.HasToolCalls() {
		finish = "tool-calls"
		for i := range msg.ToolCalls {
			tc := &msg.ToolCalls[i]
			toolCalls = append(toolCalls, map[string]any{
				"id": tc.ID, "toolName": tc.Name, "arguments": ir.ParseToolCallArgs(tc.Args),
			})
		}
	} else {
		switch resp.StopReason {
		case ir.StopReasonMaxTokens:
			finish = "length"
		case ir.StopReasonContentFilter:
			finish = "content-filter"
		}
	}

	out := map[string]any{
		"model": resp.Model, "text": builder.BuildText(), "finishReason": finish,
	}
	if toolCalls != nil {
		out["toolCalls"] = toolCalls
	}
	if resp.Usage != nil {
		out["usage"] = map[string]any{
			"inputTokens": resp.Usage.PromptTokens, "outputTokens": resp.Usage.CompletionTokens,
			"totalTokens": resp.Usage.TotalTokens,
		}
	}
	return json.Marshal(out)
}

func (a *AISDKAdapter) NewEmitterState() any { return nil }

// TransformStreamChunk renders one IR event as one AI-SDK data-stream JSON line.
func (a *AISDKAdapter) TransformStreamChunk(event ir.UnifiedEvent, _ string, _ any) ([][]byte, error) {
	var line map[string]any
	switch event.Type {
	case ir.EventTypeToken:
		line = map[string]any{"type": "text-delta", "textDelta": event.Content}
	case ir.EventTypeReasoning:
		line = map[string]any{"type": "reasoning-delta", "textDelta": event.Reasoning}
	case ir.EventTypeToolCallDelta:
		if event.ToolCall == nil {
			return nil, nil
		}
		line = map[string]any{"type": "tool-call-delta", "toolCallId": event.ToolCall.ID, "argsTextDelta": event.ToolCall.PartialArgs}
	case ir.EventTypeToolCall:
		if event.ToolCall == nil {
			return nil, nil
		}
		line = map[string]any{
			"type": "tool-call", "toolCallId": event.ToolCall.ID, "toolName": event.ToolCall.Name,
			"args": ir.ParseToolCallArgs(event.ToolCall.Args),
		}
	case ir.EventTypeFinish:
		finish := "stop"
		switch event.FinishReason {
		case ir.StopReasonMaxTokens:
			finish = "length"
		case ir.StopReasonToolUse:
			finish = "tool-calls"
		case ir.StopReasonContentFilter:
			finish = "content-filter"
		}
		line = map[string]any{"type": "finish", "finishReason": finish}
		if event.Usage != nil {
			line["usage"] = map[string]any{
				"inputTokens": event.Usage.PromptTokens, "outputTokens": event.Usage.CompletionTokens,
				"totalTokens": event.Usage.TotalTokens,
			}
		}
	case ir.EventTypeError:
		line = map[string]any{"type": "error", "error": errString(event.Error)}
	default:
		return nil, nil
	}
	body, err := json.Marshal(line)
	if err != nil {
		return nil, err
	}
	return [][]byte{append(body, '\n')}, nil
}
