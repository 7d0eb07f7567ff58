// Package dialect holds the per-dialect adapters (§4.1) that are not
// Claude (Claude lives in from_ir, the teacher's original home for it).
package dialect

import (
	"strings"

	"github.com/tidwall/gjson"

	"github.com/nghyane/llm-mux/internal/json"
	"github.com/nghyane/llm-mux/internal/sseutil"
	"github.com/nghyane/llm-mux/internal/translator/ir"
)

// GeminiAdapter implements ir.ToIRParser and translator.FromIRConverter
// for Gemini's generateContent dialect.
type GeminiAdapter struct{}

func NewGeminiAdapter() *GeminiAdapter { return &GeminiAdapter{} }

func (a *GeminiAdapter) Format() string   { return "gemini" }
func (a *GeminiAdapter) Provider() string { return "gemini" }

func (a *GeminiAdapter) IsSupportedRequest(payload []byte) bool {
	parsed := gjson.ParseBytes(payload)
	return parsed.Get("contents").IsArray()
}

func (a *GeminiAdapter) IsSupportedModel(model string) bool {
	m := strings.ToLower(model)
	return strings.HasPrefix(m, "gemini-") && !ir.IsGemini3(model)
}

// ParseRequest parses a Gemini generateContent request body into the IR.
func (a *GeminiAdapter) ParseRequest(payload []byte) (*ir.UnifiedChatRequest, error) {
	if err := ir.ValidateJSON(payload); err != nil {
		return nil, ir.NewError(ir.KindInvalidRequest, a.Format(), err)
	}
	parsed := gjson.ParseBytes(payload)
	req := &ir.UnifiedChatRequest{Model: parsed.Get("model").String()}

	if si := parsed.Get("systemInstruction"); si.Exists() {
		var b strings.Builder
		for i, p := range si.Get("parts").Array() {
			if i > 0 {
				b.WriteByte('\n')
			}
			b.WriteString(p.Get("text").String())
		}
		req.System = b.String()
	}

	cfg := parsed.Get("generationConfig")
	if cfg.Exists() {
		if v := cfg.Get("maxOutputTokens"); v.Exists() {
			n := int(v.Int())
			req.MaxTokens = &n
		}
		if v := cfg.Get("temperature"); v.Exists() {
			f := v.Float()
			req.Temperature = &f
		}
		if v := cfg.Get("topP"); v.Exists() {
			f := v.Float()
			req.TopP = &f
		}
		if v := cfg.Get("topK"); v.Exists() {
			n := int(v.Int())
			req.TopK = &n
		}
		for _, s := range cfg.Get("stopSequences").Array() {
			req.StopSequences = append(req.StopSequences, s.String())
		}
		if tc := cfg.Get("thinkingConfig"); tc.Exists() {
			req.Thinking = &ir.ThinkingConfig{
				IncludeThoughts: tc.Get("includeThoughts").Bool(),
				Budget:          int(tc.Get("thinkingBudget").Int()),
			}
		}
	}

	for _, t := range parsed.Get("tools").Array() {
		for _, fd := range t.Get("functionDeclarations").Array() {
			req.Tools = append(req.Tools, ir.ToolDefinition{
				Name:        fd.Get("name").String(),
				Description: fd.Get("description").String(),
				Parameters:  ir.FromGeminiSchema(gjsonObjectToMap(fd.Get("parameters"))),
			})
		}
	}

	for _, c := range parsed.Get("contents").Array() {
		msg, err := parseGeminiContent(c)
		if err != nil {
			return nil, err
		}
		req.Messages = append(req.Messages, msg)
	}
	return req, nil
}

func parseGeminiContent(c gjson.Result) (ir.Message, error) {
	role := ir.RoleUser
	if c.Get("role").String() == "model" {
		role = ir.RoleAssistant
	}
	msg := ir.Message{Role: role}

	for _, part := range c.Get("parts").Array() {
		switch {
		case part.Get("functionCall").Exists():
			fc := part.Get("functionCall")
			msg.ToolCalls = append(msg.ToolCalls, ir.ToolCall{
				ID:               fc.Get("name").String(),
				Name:             fc.Get("name").String(),
				Args:             fc.Get("args").Raw,
				ThoughtSignature: ir.ExtractThoughtSignature(part),
			})
		case part.Get("functionResponse").Exists():
			fr := part.Get("functionResponse")
			msg.Content = append(msg.Content, ir.ContentPart{
				Type: ir.ContentTypeToolResult,
				ToolResult: &ir.ToolResultPart{
					ToolCallID: fr.Get("name").String(),
					Result:     fr.Get("response").Raw,
				},
			})
		case part.Get("thought").Bool():
			msg.Content = append(msg.Content, ir.ContentPart{
				Type: ir.ContentTypeReasoning, Reasoning: part.Get("text").String(),
				ThoughtSignature: ir.ExtractThoughtSignature(part),
			})
		case part.Get("inlineData").Exists():
			id := part.Get("inlineData")
			msg.Content = append(msg.Content, ir.ContentPart{
				Type: ir.ContentTypeImage,
				Image: &ir.ImagePart{
					MimeType: id.Get("mimeType").String(),
					Data:     id.Get("data").String(),
				},
			})
		case part.Get("text").Exists():
			msg.Content = append(msg.Content, ir.ContentPart{Type: ir.ContentTypeText, Text: part.Get("text").String()})
		}
	}
	return msg, nil
}

func gjsonObjectToMap(v gjson.Result) map[string]any {
	if !v.Exists() || !v.IsObject() {
		return nil
	}
	var out map[string]any
	_ = json.Unmarshal([]byte(v.Raw), &out)
	return out
}

// ParseResponse parses a Gemini generateContent response into the IR.
func (a *GeminiAdapter) ParseResponse(payload []byte) (*ir.UnifiedResponse, error) {
	if err := ir.ValidateJSON(payload); err != nil {
		return nil, ir.NewError(ir.KindInvalidResponse, a.Format(), err)
	}
	parsed := gjson.ParseBytes(payload)
	candidate := parsed.Get("candidates.0")
	msg, _ := parseGeminiContent(candidate.Get("content"))
	msg.Role = ir.RoleAssistant

	resp := &ir.UnifiedResponse{
		ID:         parsed.Get("responseId").String(),
		Model:      parsed.Get("modelVersion").String(),
		StopReason: geminiFinishReason(candidate.Get("finishReason").String(), len(msg.ToolCalls) > 0),
		Usage:      parseGeminiUsage(parsed.Get("usageMetadata")),
	}
	for _, p := range msg.Content {
		if p.Type == ir.ContentTypeReasoning {
			resp.Thinking = append(resp.Thinking, p)
		}
	}
	resp.Content = append(resp.Content, msg.Content...)
	for i := range msg.ToolCalls {
		tc := msg.ToolCalls[i]
		resp.Content = append(resp.Content, ir.ContentPart{Type: ir.ContentTypeToolCall, ToolCall: &tc})
	}
	return resp, nil
}

// geminiFinishReason maps §4.1's Gemini finish-reason table: SAFETY /
// BLOCKLIST / PROHIBITED_CONTENT / SPII all become content_filter; any
// functionCall present overrides to tool_use regardless of the raw value.
func geminiFinishReason(raw string, hasToolCalls bool) ir.StopReason {
	if hasToolCalls {
		return ir.StopReasonToolUse
	}
	switch raw {
	case "STOP", "":
		return ir.StopReasonEndTurn
	case "MAX_TOKENS":
		return ir.StopReasonMaxTokens
	case "SAFETY", "BLOCKLIST", "PROHIBITED_CONTENT", "SPII":
		return ir.StopReasonContentFilter
	default:
		return ir.StopReasonUnknown
	}
}

func parseGeminiUsage(u gjson.Result) *ir.Usage {
	if !u.Exists() {
		return nil
	}
	usage := &ir.Usage{
		PromptTokens:       int(u.Get("promptTokenCount").Int()),
		CompletionTokens:   int(u.Get("candidatesTokenCount").Int()),
		TotalTokens:        int(u.Get("totalTokenCount").Int()),
		ThoughtsTokenCount: int(u.Get("thoughtsTokenCount").Int()),
		CachedTokens:       int(u.Get("cachedContentTokenCount").Int()),
	}
	return usage
}

// NewParserState returns a fresh ir.GeminiStreamParserState, which buffers
// the latest thinking event so a signature arriving in a later chunk can
// be attached to it (the orphan-signature buffering described in §9).
func (a *GeminiAdapter) NewParserState() any { return ir.NewGeminiStreamParserState() }

// ParseStreamChunk parses one Gemini SSE frame (a full generateContent
// response object per chunk, Gemini's "sse-standard" framing) into IR events.
func (a *GeminiAdapter) ParseStreamChunk(frame []byte, state any) ([]ir.UnifiedEvent, error) {
	// Gemini repeats usageMetadata on intermediate chunks before the
	// terminal one; drop the duplicates before extracting the payload.
	data := ir.ExtractSSEData(sseutil.FilterSSEUsageMetadata(frame))
	if len(data) == 0 {
		return nil, nil
	}
	if ir.ValidateJSON(data) != nil {
		return nil, nil
	}
	st, _ := state.(*ir.GeminiStreamParserState)
	parsed := gjson.ParseBytes(data)
	candidate := parsed.Get("candidates.0")

	var events []ir.UnifiedEvent
	hasToolCall := false
	for _, part := range candidate.Get("content.parts").Array() {
		switch {
		case part.Get("functionCall").Exists():
			hasToolCall = true
			fc := part.Get("functionCall")
			events = append(events, ir.UnifiedEvent{
				Type: ir.EventTypeToolCall,
				ToolCall: &ir.ToolCall{
					ID: fc.Get("name").String(), Name: fc.Get("name").String(), Args: fc.Get("args").Raw,
					ThoughtSignature: ir.ExtractThoughtSignature(part),
				},
			})
		case part.Get("thought").Bool():
			event := ir.UnifiedEvent{Type: ir.EventTypeReasoning, Reasoning: part.Get("text").String()}
			if sig := ir.ExtractThoughtSignature(part); sig != "" {
				event.ThoughtSignature = sig
			}
			if st != nil {
				if flushed := st.BufferThinkingEvent(&event); flushed != nil {
					events = append(events, *flushed)
				}
				continue
			}
			events = append(events, event)
		case part.Get("text").Exists():
			if st != nil {
				if flushed := st.FlushPending(); flushed != nil {
					events = append(events, *flushed)
				}
			}
			events = append(events, ir.UnifiedEvent{Type: ir.EventTypeToken, Content: part.Get("text").String()})
		}
	}

	if reason := candidate.Get("finishReason"); reason.Exists() {
		if st != nil {
			if flushed := st.FlushPending(); flushed != nil {
				events = append(events, *flushed)
			}
		}
		events = append(events, ir.UnifiedEvent{
			Type: ir.EventTypeFinish, FinishReason: geminiFinishReason(reason.String(), hasToolCall),
			Usage: parseGeminiUsage(parsed.Get("usageMetadata")),
		})
	}
	return events, nil
}

// TransformRequest renders req as a Gemini generateContent request body.
func (a *GeminiAdapter) TransformRequest(req *ir.UnifiedChatRequest, modelOverride string) ([]byte, error) {
	root := map[string]any{}

	sysText := req.System
	if sysText == "" && len(req.SystemBlocks) > 0 {
		var b strings.Builder
		for i, blk := range req.SystemBlocks {
			if i > 0 {
				b.WriteByte('\n')
			}
			b.WriteString(blk.Text)
		}
		sysText = b.String()
	}
	if sysText != "" {
		root["systemInstruction"] = map[string]any{"parts": []any{map[string]any{"text": sysText}}}
	}

	genCfg := map[string]any{}
	if req.MaxTokens != nil {
		genCfg["maxOutputTokens"] = *req.MaxTokens
	}
	if req.Temperature != nil {
		genCfg["temperature"] = *req.Temperature
	}
	if req.TopP != nil {
		genCfg["topP"] = *req.TopP
	}
	if req.TopK != nil {
		genCfg["topK"] = *req.TopK
	}
	if len(req.StopSequences) > 0 {
		genCfg["stopSequences"] = req.StopSequences
	}
	if req.Thinking != nil {
		tc := map[string]any{"includeThoughts": req.Thinking.IncludeThoughts}
		if req.Thinking.Budget > 0 {
			tc["thinkingBudget"] = req.Thinking.Budget
		} else if req.Thinking.Effort != "" {
			model := req.Model
			if modelOverride != "" {
				model = modelOverride
			}
			tc["thinkingLevel"] = string(ir.EffortToThinkingLevel(model, req.Thinking.Effort))
		}
		genCfg["thinkingConfig"] = tc
	}
	if len(genCfg) > 0 {
		root["generationConfig"] = genCfg
	}

	if len(req.Tools) > 0 {
		var decls []any
		for _, t := range req.Tools {
			decls = append(decls, map[string]any{
				"name": t.Name, "description": t.Description,
				"parameters": ir.ToGeminiSchema(t.Parameters),
			})
		}
		root["tools"] = []any{map[string]any{"functionDeclarations": decls}}
	}

	var contents []any
	for _, msg := range req.Messages {
		if msg.Role == ir.RoleSystem {
			if root["systemInstruction"] == nil {
				if text := ir.CombineTextParts(msg); text != "" {
					root["systemInstruction"] = map[string]any{"parts": []any{map[string]any{"text": text}}}
				}
			}
			continue
		}
		contents = append(contents, buildGeminiContent(msg))
	}
	root["contents"] = contents

	model := req.Model
	if modelOverride != "" {
		model = modelOverride
	}
	root["model"] = model

	return json.Marshal(root)
}

func buildGeminiContent(msg ir.Message) map[string]any {
	role := "user"
	if msg.Role == ir.RoleAssistant {
		role = "model"
	}
	var parts []any
	for i := range msg.Content {
		p := &msg.Content[i]
		switch p.Type {
		case ir.ContentTypeText:
			if p.Text != "" {
				parts = append(parts, map[string]any{"text": p.Text})
			}
		case ir.ContentTypeReasoning:
			if p.Reasoning != "" {
				part := map[string]any{"text": p.Reasoning, "thought": true}
				if p.ThoughtSignature != "" {
					part["thoughtSignature"] = p.ThoughtSignature
				}
				parts = append(parts, part)
			}
		case ir.ContentTypeImage:
			if p.Image != nil {
				parts = append(parts, map[string]any{
					"inlineData": map[string]any{"mimeType": p.Image.MimeType, "data": p.Image.Data},
				})
			}
		case ir.ContentTypeToolResult:
			if p.ToolResult != nil {
				parts = append(parts, map[string]any{
					"functionResponse": map[string]any{
						"name":     p.ToolResult.ToolCallID,
						"response": map[string]any{"result": ir.ParseToolCallArgs(p.ToolResult.Result)},
					},
				})
			}
		}
	}
	for i := range msg.ToolCalls {
		tc := &msg.ToolCalls[i]
		part := map[string]any{"functionCall": map[string]any{"name": tc.Name, "args": ir.ParseToolCallArgs(tc.Args)}}
		if ir.IsValidThoughtSignature(tc.ThoughtSignature) {
			part["thoughtSignature"] = tc.ThoughtSignature
		}
		parts = append(parts, part)
	}
	return map[string]any{"role": role, "parts": parts}
}

// TransformResponse renders resp as a complete Gemini generateContent
// response body.
func (a *GeminiAdapter) TransformResponse(resp *ir.UnifiedResponse) ([]byte, error) {
	msg := ir.Message{Role: ir.RoleAssistant}
	for _, p := range resp.Content {
		if p.Type == ir.ContentTypeToolCall && p.ToolCall != nil {
			msg.ToolCalls = append(msg.ToolCalls, *p.ToolCall)
			continue
		}
		msg.Content = append(msg.Content, p)
	}
	builder := ir.NewResponseBuilder([]ir.Message{msg}, resp.Usage, resp.Model)

	finish := "STOP"
	switch resp.StopReason {
	case ir.StopReasonMaxTokens:
		finish = "MAX_TOKENS"
	case ir.StopReasonContentFilter:
		finish = "SAFETY"
	}

	candidate := map[string]any{
		"content":      map[string]any{"role": "model", "parts": builder.BuildGeminiContentParts()},
		"finishReason": finish,
	}
	out := map[string]any{
		"responseId": resp.ID, "modelVersion": resp.Model,
		"candidates": []any{candidate},
	}
	if resp.Usage != nil {
		out["usageMetadata"] = map[string]any{
			"promptTokenCount": resp.Usage.PromptTokens, "candidatesTokenCount": resp.Usage.CompletionTokens,
			"totalTokenCount": resp.Usage.TotalTokens, "thoughtsTokenCount": resp.Usage.ThoughtsTokenCount,
		}
	}
	return json.Marshal(out)
}

// GeminiStreamState tracks the stream's model name and response id so
// every emitted chunk carries consistent identity.
type GeminiStreamState struct {
	ResponseID string
	Model      string
}

func (a *GeminiAdapter) NewEmitterState() any { return &GeminiStreamState{} }

// TransformStreamChunk renders one IR event as a single Gemini streaming
// generateContent response chunk.
func (a *GeminiAdapter) TransformStreamChunk(event ir.UnifiedEvent, model string, state any) ([][]byte, error) {
	st, _ := state.(*GeminiStreamState)
	if st != nil && st.Model == "" {
		st.Model = model
	}

	var parts []any
	switch event.Type {
	case ir.EventTypeToken:
		parts = append(parts, map[string]any{"text": event.Content})
	case ir.EventTypeReasoning:
		part := map[string]any{"text": event.Reasoning, "thought": true}
		if event.ThoughtSignature != "" {
			part["thoughtSignature"] = event.ThoughtSignature
		}
		parts = append(parts, part)
	case ir.EventTypeToolCall:
		if event.ToolCall != nil {
			part := map[string]any{
				"functionCall": map[string]any{"name": event.ToolCall.Name, "args": ir.ParseToolCallArgs(event.ToolCall.Args)},
			}
			if ir.IsValidThoughtSignature(event.ToolCall.ThoughtSignature) {
				part["thoughtSignature"] = event.ToolCall.ThoughtSignature
			}
			parts = append(parts, part)
		}
	case ir.EventTypeFinish:
		finish := "STOP"
		switch event.FinishReason {
		case ir.StopReasonMaxTokens:
			finish = "MAX_TOKENS"
		case ir.StopReasonContentFilter:
			finish = "SAFETY"
		case ir.StopReasonToolUse:
			finish = "STOP"
		}
		candidate := map[string]any{"content": map[string]any{"role": "model", "parts": []any{}}, "finishReason": finish}
		chunk := map[string]any{"candidates": []any{candidate}}
		if event.Usage != nil {
			chunk["usageMetadata"] = map[string]any{
				"promptTokenCount": event.Usage.PromptTokens, "candidatesTokenCount": event.Usage.CompletionTokens,
				"totalTokenCount": event.Usage.TotalTokens,
			}
		}
		return [][]byte{formatGeminiSSE(chunk)}, nil
	case ir.EventTypeError:
		return [][]byte{formatGeminiSSE(map[string]any{"error": map[string]any{"message": errString(event.Error)}})}, nil
	default:
		return nil, nil
	}

	chunk := map[string]any{"candidates": []any{map[string]any{"content": map[string]any{"role": "model", "parts": parts}}}}
	return [][]byte{formatGeminiSSE(chunk)}, nil
}

func formatGeminiSSE(v map[string]any) []byte {
	body, _ := json.Marshal(v)
	out := make([]byte, 0, len(body)+8)
	out = append(out, "data: "...)
	out = append(out, body...)
	out = append(out, '\n', '\n')
	return out
}

func errString(err error) string {
	if err != nil {
		return err.Error()
	}
	return "unknown error"
}
