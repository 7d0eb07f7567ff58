package dialect

import (
	"strings"
	"sync"

	"github.com/tidwall/gjson"

	"github.com/nghyane/llm-mux/internal/json"
	"github.com/nghyane/llm-mux/internal/translator/ir"
)

// OpenAIChatAdapter implements ir.ToIRParser and translator.FromIRConverter
// for the OpenAI Chat Completions dialect. The same adapter is registered
// under three provider names (openai, opencode-zen, openai-web): all three
// speak byte-identical wire shapes and differ only in upstream routing,
// which is the Model Router's concern, not the adapter's.
type OpenAIChatAdapter struct {
	provider string
}

func NewOpenAIChatAdapter(provider string) *OpenAIChatAdapter {
	return &OpenAIChatAdapter{provider: provider}
}

func (a *OpenAIChatAdapter) Format() string   { return a.provider }
func (a *OpenAIChatAdapter) Provider() string { return a.provider }

func (a *OpenAIChatAdapter) IsSupportedRequest(payload []byte) bool {
	return gjson.ParseBytes(payload).Get("messages").IsArray()
}

func (a *OpenAIChatAdapter) IsSupportedModel(model string) bool {
	m := strings.ToLower(model)
	return strings.HasPrefix(m, "gpt-") || strings.HasPrefix(m, "o1") || strings.HasPrefix(m, "o3") ||
		strings.HasPrefix(m, "o4") || strings.Contains(m, "codex")
}

// ParseRequest parses an OpenAI Chat Completions request body into the IR.
func (a *OpenAIChatAdapter) ParseRequest(payload []byte) (*ir.UnifiedChatRequest, error) {
	if err := ir.ValidateJSON(payload); err != nil {
		return nil, ir.NewError(ir.KindInvalidRequest, a.Format(), err)
	}
	parsed := gjson.ParseBytes(payload)
	req := &ir.UnifiedChatRequest{Model: parsed.Get("model").String()}

	if v := parsed.Get("max_tokens"); v.Exists() {
		n := int(v.Int())
		req.MaxTokens = &n
	}
	if v := parsed.Get("temperature"); v.Exists() {
		f := v.Float()
		req.Temperature = &f
	}
	if v := parsed.Get("top_p"); v.Exists() {
		f := v.Float()
		req.TopP = &f
	}
	if v := parsed.Get("frequency_penalty"); v.Exists() {
		f := v.Float()
		req.FrequencyPenalty = &f
	}
	if v := parsed.Get("presence_penalty"); v.Exists() {
		f := v.Float()
		req.PresencePenalty = &f
	}
	if v := parsed.Get("stream"); v.Exists() {
		b := v.Bool()
		req.Stream = &b
	}
	switch stop := parsed.Get("stop"); {
	case stop.Type == gjson.String:
		req.StopSequences = []string{stop.String()}
	case stop.IsArray():
		for _, s := range stop.Array() {
			req.StopSequences = append(req.StopSequences, s.String())
		}
	}

	if tc := parsed.Get("tool_choice"); tc.Exists() {
		switch {
		case tc.Type == gjson.String:
			switch tc.String() {
			case "auto":
				req.ToolChoiceValue = &ir.ToolChoice{Kind: ir.ToolChoiceAuto}
			case "none":
				req.ToolChoiceValue = &ir.ToolChoice{Kind: ir.ToolChoiceNone}
			case "required":
				req.ToolChoiceValue = &ir.ToolChoice{Kind: ir.ToolChoiceRequired}
			}
		default:
			req.ToolChoiceValue = &ir.ToolChoice{Kind: ir.ToolChoiceTool, Name: tc.Get("function.name").String()}
		}
	}

	for _, t := range parsed.Get("tools").Array() {
		fn := t.Get("function")
		req.Tools = append(req.Tools, ir.ToolDefinition{
			Name:        fn.Get("name").String(),
			Description: fn.Get("description").String(),
			Parameters:  gjsonObjectToMap(fn.Get("parameters")),
		})
	}

	for _, m := range parsed.Get("messages").Array() {
		req.Messages = append(req.Messages, parseOpenAIMessage(m))
	}
	// Some older Chat Completions clients still send tool_call_id as the
	// function name rather than the id OpenAI itself assigns. Reconcile
	// those in place so downstream matching always sees real ids.
	ir.BuildToolMaps(req.Messages)
	return req, nil
}

func parseOpenAIMessage(m gjson.Result) ir.Message {
	var role ir.Role
	switch m.Get("role").String() {
	case "assistant":
		role = ir.RoleAssistant
	case "system", "developer":
		role = ir.RoleSystem
	case "tool":
		role = ir.RoleTool
	default:
		role = ir.RoleUser
	}
	msg := ir.Message{Role: role}

	content := m.Get("content")
	switch {
	case role == ir.RoleTool:
		msg.Content = append(msg.Content, ir.ContentPart{
			Type: ir.ContentTypeToolResult,
			ToolResult: &ir.ToolResultPart{
				ToolCallID: m.Get("tool_call_id").String(),
				Result:     content.String(),
			},
		})
	case content.Type == gjson.String:
		if content.String() != "" {
			msg.Content = append(msg.Content, ir.ContentPart{Type: ir.ContentTypeText, Text: content.String()})
		}
	case content.IsArray():
		for _, part := range content.Array() {
			switch part.Get("type").String() {
			case "text":
				msg.Content = append(msg.Content, ir.ContentPart{Type: ir.ContentTypeText, Text: part.Get("text").String()})
			case "image_url":
				msg.Content = append(msg.Content, ir.ContentPart{
					Type:  ir.ContentTypeImage,
					Image: &ir.ImagePart{URL: part.Get("image_url.url").String()},
				})
			}
		}
	}

	for _, tc := range m.Get("tool_calls").Array() {
		msg.ToolCalls = append(msg.ToolCalls, ir.ToolCall{
			ID:               tc.Get("id").String(),
			Name:             tc.Get("function.name").String(),
			Args:             tc.Get("function.arguments").String(),
			ThoughtSignature: ir.ExtractThoughtSignature(tc.Get("extra_content.google")),
		})
	}
	return msg
}

// ParseResponse parses a non-streaming Chat Completions response into the IR.
func (a *OpenAIChatAdapter) ParseResponse(payload []byte) (*ir.UnifiedResponse, error) {
	if err := ir.ValidateJSON(payload); err != nil {
		return nil, ir.NewError(ir.KindInvalidResponse, a.Format(), err)
	}
	parsed := gjson.ParseBytes(payload)
	choice := parsed.Get("choices.0")
	msg := parseOpenAIMessage(choice.Get("message"))
	msg.Role = ir.RoleAssistant

	resp := &ir.UnifiedResponse{
		ID:         parsed.Get("id").String(),
		Model:      parsed.Get("model").String(),
		StopReason: openAIFinishReason(choice.Get("finish_reason").String()),
		Usage:      parseOpenAIUsage(parsed.Get("usage")),
		Content:    append([]ir.ContentPart{}, msg.Content...),
	}
	for i := range msg.ToolCalls {
		tc := msg.ToolCalls[i]
		resp.Content = append(resp.Content, ir.ContentPart{Type: ir.ContentTypeToolCall, ToolCall: &tc})
	}
	return resp, nil
}

func openAIFinishReason(raw string) ir.StopReason {
	switch raw {
	case "stop":
		return ir.StopReasonEndTurn
	case "length":
		return ir.StopReasonMaxTokens
	case "tool_calls", "function_call":
		return ir.StopReasonToolUse
	case "content_filter":
		return ir.StopReasonContentFilter
	case "":
		return ir.StopReasonNone
	default:
		return ir.StopReasonUnknown
	}
}

func parseOpenAIUsage(u gjson.Result) *ir.Usage {
	if !u.Exists() {
		return nil
	}
	return &ir.Usage{
		PromptTokens:       int(u.Get("prompt_tokens").Int()),
		CompletionTokens:   int(u.Get("completion_tokens").Int()),
		TotalTokens:        int(u.Get("total_tokens").Int()),
		ThoughtsTokenCount: int(u.Get("completion_tokens_details.reasoning_tokens").Int()),
		CachedTokens:       int(u.Get("prompt_tokens_details.cached_tokens").Int()),
	}
}

// NewParserState returns the per-stream parser state. It accumulates no
// tool-call arguments: OpenAI streams function.arguments as fragments
// keyed by the choice's tool_calls[i].index, not by id, and each fragment
// becomes its own IR event carrying ToolCallIndex.
func (a *OpenAIChatAdapter) NewParserState() any { return &openAIParserState{} }

type openAIParserState struct{ finishSent bool }

// ParseStreamChunk parses one OpenAI "data: {...}" SSE frame into IR events.
func (a *OpenAIChatAdapter) ParseStreamChunk(frame []byte, state any) ([]ir.UnifiedEvent, error) {
	data := ir.ExtractSSEData(frame)
	if len(data) == 0 || string(data) == "[DONE]" {
		return nil, nil
	}
	if ir.ValidateJSON(data) != nil {
		return nil, nil
	}
	parsed := gjson.ParseBytes(data)
	choice := parsed.Get("choices.0")
	delta := choice.Get("delta")

	var events []ir.UnifiedEvent
	if c := delta.Get("content"); c.Exists() && c.String() != "" {
		events = append(events, ir.UnifiedEvent{Type: ir.EventTypeToken, Content: c.String()})
	}
	if r := delta.Get("reasoning_content"); r.Exists() && r.String() != "" {
		events = append(events, ir.UnifiedEvent{Type: ir.EventTypeReasoning, Reasoning: r.String()})
	}
	for _, tc := range delta.Get("tool_calls").Array() {
		events = append(events, ir.UnifiedEvent{
			Type: ir.EventTypeToolCallDelta, ToolCallIndex: int(tc.Get("index").Int()),
			ToolCall: &ir.ToolCall{
				ID: tc.Get("id").String(), Name: tc.Get("function.name").String(),
				PartialArgs: tc.Get("function.arguments").String(),
			},
		})
	}
	if reason := choice.Get("finish_reason"); reason.Exists() && reason.String() != "" {
		events = append(events, ir.UnifiedEvent{
			Type: ir.EventTypeFinish, FinishReason: openAIFinishReason(reason.String()),
			Usage: parseOpenAIUsage(parsed.Get("usage")),
		})
	}
	return events, nil
}

// TransformRequest renders req as an OpenAI Chat Completions request body.
func (a *OpenAIChatAdapter) TransformRequest(req *ir.UnifiedChatRequest, modelOverride string) ([]byte, error) {
	model := req.Model
	if modelOverride != "" {
		model = modelOverride
	}
	root := map[string]any{"model": model}

	if req.MaxTokens != nil {
		root["max_tokens"] = *req.MaxTokens
	}
	if req.Temperature != nil {
		root["temperature"] = *req.Temperature
	}
	if req.TopP != nil {
		root["top_p"] = *req.TopP
	}
	if req.FrequencyPenalty != nil {
		root["frequency_penalty"] = *req.FrequencyPenalty
	}
	if req.PresencePenalty != nil {
		root["presence_penalty"] = *req.PresencePenalty
	}
	if len(req.StopSequences) > 0 {
		root["stop"] = req.StopSequences
	}
	if req.Stream != nil {
		root["stream"] = *req.Stream
	}

	if req.ToolChoiceValue != nil {
		switch req.ToolChoiceValue.Kind {
		case ir.ToolChoiceAuto:
			root["tool_choice"] = "auto"
		case ir.ToolChoiceNone:
			root["tool_choice"] = "none"
		case ir.ToolChoiceRequired:
			root["tool_choice"] = "required"
		case ir.ToolChoiceTool:
			root["tool_choice"] = map[string]any{"type": "function", "function": map[string]any{"name": req.ToolChoiceValue.Name}}
		}
	}
	if len(req.Tools) > 0 {
		var tools []any
		for _, t := range req.Tools {
			tools = append(tools, map[string]any{
				"type": "function",
				"function": map[string]any{
					"name": t.Name, "description": t.Description, "parameters": t.Parameters,
				},
			})
		}
		root["tools"] = tools
	}

	var messages []any
	if req.System != "" {
		messages = append(messages, map[string]any{"role": "system", "content": req.System})
	}
	for _, msg := range req.Messages {
		messages = append(messages, buildOpenAIMessage(msg)...)
	}
	root["messages"] = messages

	return json.Marshal(root)
}

func buildOpenAIMessage(msg ir.Message) []any {
	if msg.Role == ir.RoleTool {
		var out []any
		for _, p := range msg.Content {
			if p.Type == ir.ContentTypeToolResult && p.ToolResult != nil {
				out = append(out, map[string]any{
					"role": "tool", "tool_call_id": p.ToolResult.ToolCallID, "content": p.ToolResult.Result,
				})
			}
		}
		return out
	}

	role := "user"
	if msg.Role == ir.RoleAssistant {
		role = "assistant"
	} else if msg.Role == ir.RoleSystem {
		role = "system"
	}

	out := map[string]any{"role": role}
	text := ir.CombineTextParts(msg)
	var hasNonText bool
	for _, p := range msg.Content {
		if p.Type == ir.ContentTypeImage {
			hasNonText = true
		}
	}
	if hasNonText {
		var parts []any
		for _, p := range msg.Content {
			switch p.Type {
			case ir.ContentTypeText:
				if p.Text != "" {
					parts = append(parts, map[string]any{"type": "text", "text": p.Text})
				}
			case ir.ContentTypeImage:
				if p.Image != nil {
					url := p.Image.URL
					if url == "" && p.Image.Data != "" {
						url = "data:" + p.Image.MimeType + ";base64," + p.Image.Data
					}
					parts = append(parts, map[string]any{"type": "image_url", "image_url": map[string]any{"url": url}})
				}
			}
		}
		out["content"] = parts
	} else {
		out["content"] = text
	}

	if len(msg.ToolCalls) > 0 {
		var calls []any
		for i := range msg.ToolCalls {
			tc := &msg.ToolCalls[i]
			call := map[string]any{
				"id": tc.ID, "type": "function",
				"function": map[string]any{"name": tc.Name, "arguments": tc.Args},
			}
			if ir.IsValidThoughtSignature(tc.ThoughtSignature) {
				call["extra_content"] = map[string]any{"google": map[string]any{"thought_signature": tc.ThoughtSignature}}
			}
			calls = append(calls, call)
		}
		out["tool_calls"] = calls
	}
	return []any{out}
}

// TransformResponse renders resp as a complete Chat Completions response.
func (a *OpenAIChatAdapter) TransformResponse(resp *ir.UnifiedResponse) ([]byte, error) {
	msg := ir.Message{Role: ir.RoleAssistant}
	for _, p := range resp.Content {
		if p.Type == ir.ContentTypeToolCall && p.ToolCall != nil {
			msg.ToolCalls = append(msg.ToolCalls, *p.ToolCall)
			continue
		}
		msg.Content = append(msg.Content, p)
	}
	builder := ir.NewResponseBuilder([]ir.Message{msg}, resp.Usage, resp.Model)

	message := map[string]any{"role": "assistant", "content": builder.BuildText()}
	finish := "stop"
	if calls := builder.BuildOpenAIToolCalls(); len(calls) > 0 {
		message["tool_calls"] = calls
		finish = "tool_calls"
	} else {
		switch resp.StopReason {
		case ir.StopReasonMaxTokens:
			finish = "length"
		case ir.StopReasonContentFilter:
			finish = "content_filter"
		}
	}

	out := map[string]any{
		"id": resp.ID, "object": "chat.completion", "model": resp.Model,
		"choices": []any{map[string]any{"index": 0, "message": message, "finish_reason": finish}},
	}
	if resp.Usage != nil {
		out["usage"] = map[string]any{
			"prompt_tokens": resp.Usage.PromptTokens, "completion_tokens": resp.Usage.CompletionTokens,
			"total_tokens": resp.Usage.TotalTokens,
		}
	}
	return json.Marshal(out)
}

// OpenAIStreamState tracks the chunk identity fields every frame of one
// stream must repeat (id, model) and whether a finish chunk
// (including the trailing [DONE] sentinel) has already been sent.
type OpenAIStreamState struct {
	ID         string
	Model      string
	FinishSent bool
	toolIndex  int
	once       sync.Once
}

func (a *OpenAIChatAdapter) NewEmitterState() any { return &OpenAIStreamState{} }

// TransformStreamChunk renders one IR event as one OpenAI Chat Completions
// streaming chunk (plus the literal "[DONE]" sentinel on finish).
func (a *OpenAIChatAdapter) TransformStreamChunk(event ir.UnifiedEvent, model string, state any) ([][]byte, error) {
	st, _ := state.(*OpenAIStreamState)
	if st != nil {
		st.once.Do(func() {
			if st.ID == "" {
				st.ID = "chatcmpl-" + ir.GenToolCallID()
			}
			st.Model = model
		})
	}
	id, mdl := "chatcmpl-stream", model
	if st != nil {
		id, mdl = st.ID, st.Model
	}

	delta := map[string]any{}
	var finishReason any
	switch event.Type {
	case ir.EventTypeToken:
		delta["content"] = event.Content
	case ir.EventTypeReasoning:
		delta["reasoning_content"] = event.Reasoning
	case ir.EventTypeToolCallDelta, ir.EventTypeToolCall:
		if event.ToolCall == nil {
			return nil, nil
		}
		idx := event.ToolCallIndex
		args := event.ToolCall.PartialArgs
		if args == "" {
			args = event.ToolCall.Args
		}
		call := map[string]any{"index": idx, "function": map[string]any{"arguments": args}}
		if event.ToolCall.ID != "" {
			call["id"] = event.ToolCall.ID
			call["type"] = "function"
		}
		if event.ToolCall.Name != "" {
			call["function"].(map[string]any)["name"] = event.ToolCall.Name
		}
		delta["tool_calls"] = []any{call}
	case ir.EventTypeFinish:
		if st != nil && st.FinishSent {
			return nil, nil
		}
		if st != nil {
			st.FinishSent = true
		}
		switch event.FinishReason {
		case ir.StopReasonMaxTokens:
			finishReason = "length"
		case ir.StopReasonToolUse:
			finishReason = "tool_calls"
		case ir.StopReasonContentFilter:
			finishReason = "content_filter"
		default:
			finishReason = "stop"
		}
	case ir.EventTypeError:
		return [][]byte{formatOpenAISSE(map[string]any{"error": map[string]any{"message": errString(event.Error)}})}, nil
	default:
		return nil, nil
	}

	chunk := map[string]any{
		"id": id, "object": "chat.completion.chunk", "model": mdl,
		"choices": []any{map[string]any{"index": 0, "delta": delta, "finish_reason": finishReason}},
	}
	frames := [][]byte{formatOpenAISSE(chunk)}
	if event.Type == ir.EventTypeFinish {
		frames = append(frames, []byte("data: [DONE]\n\n"))
	}
	return frames, nil
}

func formatOpenAISSE(v map[string]any) []byte {
	body, _ := json.Marshal(v)
	out := make([]byte, 0, len(body)+8)
	out = append(out, "data: "...)
	out = append(out, body...)
	out = append(out, '\n', '\n')
	return out
}
