package dialect

import (
	"sort"
	"strings"

	"github.com/nghyane/llm-mux/internal/json"
	"github.com/nghyane/llm-mux/internal/translator/ir"
)

// AntigravityAdapter wraps GeminiAdapter: it speaks the same generateContent
// wire shape plus a Tool-Pairing Repair pass run over the request's
// contents before it leaves the gateway (§4.6).
type AntigravityAdapter struct {
	gemini *GeminiAdapter
}

func NewAntigravityAdapter() *AntigravityAdapter {
	return &AntigravityAdapter{gemini: NewGeminiAdapter()}
}

func (a *AntigravityAdapter) Format() string   { return "antigravity" }
func (a *AntigravityAdapter) Provider() string { return "antigravity" }

func (a *AntigravityAdapter) IsSupportedRequest(payload []byte) bool {
	return a.gemini.IsSupportedRequest(payload)
}

func (a *AntigravityAdapter) IsSupportedModel(model string) bool {
	m := strings.ToLower(model)
	return strings.HasPrefix(m, "gemini-claude-") || ir.IsGemini3(model)
}

func (a *AntigravityAdapter) ParseRequest(payload []byte) (*ir.UnifiedChatRequest, error) {
	return a.gemini.ParseRequest(payload)
}

func (a *AntigravityAdapter) ParseResponse(payload []byte) (*ir.UnifiedResponse, error) {
	return a.gemini.ParseResponse(payload)
}

func (a *AntigravityAdapter) NewParserState() any { return a.gemini.NewParserState() }

func (a *AntigravityAdapter) ParseStreamChunk(frame []byte, state any) ([]ir.UnifiedEvent, error) {
	return a.gemini.ParseStreamChunk(frame, state)
}

// TransformRequest builds the Gemini request body, then repairs the
// contents sequence so every function call is immediately followed by its
// function responses (§4.6).
func (a *AntigravityAdapter) TransformRequest(req *ir.UnifiedChatRequest, modelOverride string) ([]byte, error) {
	body, err := a.gemini.TransformRequest(req, modelOverride)
	if err != nil {
		return nil, err
	}
	var root map[string]any
	if err := json.Unmarshal(body, &root); err != nil {
		return nil, ir.InvalidRequestf(a.Format(), "malformed gemini request body: %v", err)
	}
	if contents, ok := root["contents"].([]any); ok {
		root["contents"] = repairToolPairing(contents)
	}
	return json.Marshal(root)
}

func (a *AntigravityAdapter) TransformResponse(resp *ir.UnifiedResponse) ([]byte, error) {
	return a.gemini.TransformResponse(resp)
}

func (a *AntigravityAdapter) NewEmitterState() any { return a.gemini.NewEmitterState() }

func (a *AntigravityAdapter) TransformStreamChunk(event ir.UnifiedEvent, model string, state any) ([][]byte, error) {
	return a.gemini.TransformStreamChunk(event, model, state)
}

// pendingGroup tracks one model turn's outstanding function calls while
// repairToolPairing walks the content sequence.
type pendingGroup struct {
	callIDs     []string
	names       map[string]string // call id -> function name
	insertAfter int               // index in out after which the group belongs
}

// repairToolPairing implements §4.6's four-step algorithm over a decoded
// Gemini "contents" array. Non-function items pass through untouched, and
// applying the pass to its own output is a no-op (P6).
func repairToolPairing(contents []any) []any {
	var out []any
	var pending []*pendingGroup
	seen := map[string]any{}  // call id -> functionResponse part
	used := map[string]bool{} // call id -> already emitted
	var held []any            // response items withheld while a group is incomplete
	var heldIDs [][]string    // response ids carried by each held item

	for _, item := range contents {
		m, ok := item.(map[string]any)
		if !ok {
			out = append(out, item)
			continue
		}
		role, _ := m["role"].(string)
		parts, _ := m["parts"].([]any)

		callIDs, names := extractFunctionCalls(parts)
		if len(callIDs) > 0 && role == "model" {
			out = append(out, item)
			pending = append(pending, &pendingGroup{callIDs: callIDs, names: names, insertAfter: len(out) - 1})
			continue
		}

		responseIDs, responseParts := extractFunctionResponses(parts)
		if len(responseIDs) > 0 {
			for i, id := range responseIDs {
				seen[id] = responseParts[i]
			}
			if n := len(pending); n > 0 {
				group := pending[n-1]
				if allSatisfied(group.callIDs, seen) {
					out = append(out, emitResponseGroup(group.callIDs, seen, used))
					pending = pending[:n-1]
					continue
				}
				held = append(held, item)
				heldIDs = append(heldIDs, responseIDs)
				continue
			}
			out = append(out, item)
			continue
		}

		out = append(out, item)
	}

	sort.SliceStable(pending, func(i, j int) bool { return pending[i].insertAfter > pending[j].insertAfter })
	for _, group := range pending {
		reconstructed := reconstructGroup(group, seen, used)
		out = insertAt(out, group.insertAfter+1, reconstructed)
	}
	// A withheld item is dropped once every response it carried was emitted.
	for i, item := range held {
		for _, id := range heldIDs[i] {
			if !used[id] {
				out = append(out, item)
				break
			}
		}
	}
	return out
}

func allSatisfied(callIDs []string, seen map[string]any) bool {
	for _, id := range callIDs {
		if _, ok := seen[id]; !ok {
			return false
		}
	}
	return true
}

func emitResponseGroup(callIDs []string, seen map[string]any, used map[string]bool) map[string]any {
	var parts []any
	for _, id := range callIDs {
		parts = append(parts, seen[id])
		used[id] = true
	}
	return map[string]any{"role": "user", "parts": parts}
}

// reconstructGroup synthesizes the response group for a pending group that
// was never satisfied by the time the walk ended: it prefers an unused
// orphan response sharing the expected function name, then any unused
// orphan, then a recovered placeholder.
func reconstructGroup(group *pendingGroup, seen map[string]any, used map[string]bool) map[string]any {
	var parts []any
	for _, id := range group.callIDs {
		if resp, ok := seen[id]; ok && !used[id] {
			parts = append(parts, resp)
			used[id] = true
			continue
		}
		if orphanID, resp, ok := findOrphan(seen, used, group.names, group.names[id]); ok {
			parts = append(parts, renameFunctionResponse(resp, group.names[id]))
			used[orphanID] = true
			continue
		}
		parts = append(parts, map[string]any{
			"functionResponse": map[string]any{
				"name":     group.names[id],
				"response": map[string]any{"error": "recovered placeholder", "recovered": true},
			},
		})
	}
	return map[string]any{"role": "user", "parts": parts}
}

// findOrphan prefers an unused response whose function name matches want;
// failing that, it returns any unused orphan. Responses whose id is one of
// the group's own expected call ids are not orphans and are skipped.
func findOrphan(seen map[string]any, used map[string]bool, expected map[string]string, want string) (string, any, bool) {
	var fallbackID string
	var fallback any
	haveFallback := false
	for id, resp := range seen {
		if _, own := expected[id]; used[id] || own {
			continue
		}
		if functionResponseName(resp) == want {
			return id, resp, true
		}
		if !haveFallback {
			fallbackID, fallback, haveFallback = id, resp, true
		}
	}
	return fallbackID, fallback, haveFallback
}

func functionResponseName(part any) string {
	m, ok := part.(map[string]any)
	if !ok {
		return ""
	}
	fr, ok := m["functionResponse"].(map[string]any)
	if !ok {
		return ""
	}
	name, _ := fr["name"].(string)
	return name
}

func renameFunctionResponse(part any, name string) any {
	m, ok := part.(map[string]any)
	if !ok {
		return part
	}
	fr, ok := m["functionResponse"].(map[string]any)
	if !ok {
		return part
	}
	renamed := map[string]any{}
	for k, v := range fr {
		renamed[k] = v
	}
	renamed["name"] = name
	return map[string]any{"functionResponse": renamed}
}

func extractFunctionCalls(parts []any) ([]string, map[string]string) {
	var ids []string
	names := map[string]string{}
	for _, p := range parts {
		m, ok := p.(map[string]any)
		if !ok {
			continue
		}
		fc, ok := m["functionCall"].(map[string]any)
		if !ok {
			continue
		}
		name, _ := fc["name"].(string)
		if name == "" {
			continue
		}
		ids = append(ids, name)
		names[name] = name
	}
	return ids, names
}

func extractFunctionResponses(parts []any) ([]string, []any) {
	var ids []string
	var responses []any
	for _, p := range parts {
		m, ok := p.(map[string]any)
		if !ok {
			continue
		}
		fr, ok := m["functionResponse"].(map[string]any)
		if !ok {
			continue
		}
		name, _ := fr["name"].(string)
		if name == "" {
			continue
		}
		ids = append(ids, name)
		responses = append(responses, p)
	}
	return ids, responses
}

// insertAt inserts v into s at index idx, clamping idx to [0, len(s)].
func insertAt(s []any, idx int, v any) []any {
	if idx < 0 {
		idx = 0
	}
	if idx > len(s) {
		idx = len(s)
	}
	out := make([]any, 0, len(s)+1)
	out = append(out, s[:idx]...)
	out = append(out, v)
	out = append(out, s[idx:]...)
	return out
}
