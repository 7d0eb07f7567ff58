// Package router implements the Model Router (spec §4.5, C6): resolving
// an incoming model name to a target provider/model pair plus fallbacks,
// through the five-step order the spec fixes (explicit suffix, static
// mapping, catalog lookup, pattern inference, default).
package router

import (
	"context"
	"strings"
	"time"

	"github.com/nghyane/llm-mux/internal/translator"
)

// catalogTimeout bounds the Model Catalog lookup step (§5: "bounded by a
// 10-second deadline and falls back to inference on timeout").
const catalogTimeout = 10 * time.Second

// Target is one (provider, model) pair, used both for the primary
// resolution and for each fallback entry.
type Target struct {
	Provider string
	Model    string
}

// Resolution is the Model Router's output for one incoming model name.
type Resolution struct {
	ProviderID  string
	TargetModel string
	Fallbacks   []Target
	// Source records which resolution rule matched: "explicit", "static",
	// "lookup", "inference", or "default".
	Source string
}

// CatalogEntry is one model known to the Model Catalog, used by the
// router's prefix-matching step.
type CatalogEntry struct {
	Name     string
	Provider string
}

// ModelCatalog is the external collaborator the Model Router consults
// (spec §6). It is never implemented in-core; the host supplies it.
type ModelCatalog interface {
	GetProviderForModel(ctx context.Context, name string) (provider string, ok bool)
	HasModel(ctx context.Context, name string) bool
	Refresh(ctx context.Context) error
	// Entries lists every model the catalog currently knows, for the
	// router's prefix-matching fallback (§4.5 step 3).
	Entries(ctx context.Context) []CatalogEntry
}

// StaticRule is one entry of the user-provided static mapping table.
type StaticRule struct {
	From      string
	To        string
	Fallbacks []string
}

// CredentialChecker reports whether a credential is currently available
// for a given provider, used to disambiguate OpenAI-family targets
// between "openai-web" and plain "openai" (§4.5 step 4).
type CredentialChecker func(provider string) bool

// Config configures a Router instance.
type Config struct {
	StaticMapping []StaticRule
	// HasCredential reports whether a credential is available for a
	// provider. A nil checker is treated as "no credential available".
	HasCredential CredentialChecker
	// OpenAIFallbackEnabled governs the openai-web/openai dual-primary
	// rule in §4.5's closing paragraph.
	OpenAIFallbackEnabled bool
}

// Router resolves model names per §4.5's five-step order.
type Router struct {
	cfg     Config
	catalog ModelCatalog
}

// New builds a Router. catalog may be nil, in which case the catalog
// lookup step (3) is always skipped, as if every lookup failed.
func New(cfg Config, catalog ModelCatalog) *Router {
	if cfg.HasCredential == nil {
		cfg.HasCredential = func(string) bool { return false }
	}
	return &Router{cfg: cfg, catalog: catalog}
}

// Resolve runs the full five-step resolution, including the asynchronous
// catalog lookup (step 3).
func (r *Router) Resolve(ctx context.Context, modelName string) *Resolution {
	if res, ok := r.resolveExplicit(modelName); ok {
		return res
	}
	if res, ok := r.resolveStatic(ctx, modelName); ok {
		return res
	}
	if res, ok := r.resolveCatalog(ctx, modelName); ok {
		return res
	}
	return r.resolveInferenceOrDefault(modelName)
}

// ResolveSync is the synchronous variant required for code paths that
// cannot await (§4.5): it skips the catalog lookup step entirely.
func (r *Router) ResolveSync(modelName string) *Resolution {
	if res, ok := r.resolveExplicit(modelName); ok {
		return res
	}
	if res, ok := r.resolveStaticSync(modelName); ok {
		return res
	}
	return r.resolveInferenceOrDefault(modelName)
}

// resolveExplicit implements step 1: name of the form "base:provider".
func (r *Router) resolveExplicit(modelName string) (*Resolution, bool) {
	idx := strings.LastIndex(modelName, ":")
	if idx < 0 {
		return nil, false
	}
	base, provider := modelName[:idx], modelName[idx+1:]
	if base == "" || !translator.IsKnownProvider(provider) {
		return nil, false
	}
	return &Resolution{ProviderID: provider, TargetModel: base, Source: "explicit"}, true
}

// resolveStatic implements step 2, resolving any unsuffixed fallback
// target through the catalog-or-inference steps (steps 3-5).
func (r *Router) resolveStatic(ctx context.Context, modelName string) (*Resolution, bool) {
	rule, ok := findStaticRule(r.cfg.StaticMapping, modelName)
	if !ok {
		return nil, false
	}
	primary := r.resolveTargetString(ctx, rule.To)
	var fallbacks []Target
	for _, f := range rule.Fallbacks {
		fallbacks = append(fallbacks, r.resolveTargetString(ctx, f))
	}
	return &Resolution{ProviderID: primary.Provider, TargetModel: primary.Model, Fallbacks: fallbacks, Source: "static"}, true
}

// resolveStaticSync mirrors resolveStatic but never awaits the catalog.
func (r *Router) resolveStaticSync(modelName string) (*Resolution, bool) {
	rule, ok := findStaticRule(r.cfg.StaticMapping, modelName)
	if !ok {
		return nil, false
	}
	primary := r.resolveTargetStringSync(rule.To)
	var fallbacks []Target
	for _, f := range rule.Fallbacks {
		fallbacks = append(fallbacks, r.resolveTargetStringSync(f))
	}
	return &Resolution{ProviderID: primary.Provider, TargetModel: primary.Model, Fallbacks: fallbacks, Source: "static"}, true
}

func findStaticRule(rules []StaticRule, modelName string) (StaticRule, bool) {
	for _, rule := range rules {
		if rule.From == modelName {
			return rule, true
		}
	}
	return StaticRule{}, false
}

// resolveTargetString splits an explicit ":provider" suffix off a static
// mapping's target, or falls through to the catalog/inference steps when
// absent (§4.5: "otherwise the catalog lookup resolves it").
func (r *Router) resolveTargetString(ctx context.Context, target string) Target {
	if idx := strings.LastIndex(target, ":"); idx >= 0 && translator.IsKnownProvider(target[idx+1:]) {
		return Target{Provider: target[idx+1:], Model: target[:idx]}
	}
	if res, ok := r.resolveCatalog(ctx, target); ok {
		return Target{Provider: res.ProviderID, Model: res.TargetModel}
	}
	res := r.resolveInferenceOrDefault(target)
	return Target{Provider: res.ProviderID, Model: res.TargetModel}
}

func (r *Router) resolveTargetStringSync(target string) Target {
	if idx := strings.LastIndex(target, ":"); idx >= 0 && translator.IsKnownProvider(target[idx+1:]) {
		return Target{Provider: target[idx+1:], Model: target[:idx]}
	}
	res := r.resolveInferenceOrDefault(target)
	return Target{Provider: res.ProviderID, Model: res.TargetModel}
}

// resolveCatalog implements step 3: an exact lookup, then prefix
// matching, both bounded by a 10-second deadline.
func (r *Router) resolveCatalog(ctx context.Context, modelName string) (*Resolution, bool) {
	if r.catalog == nil {
		return nil, false
	}
	cctx, cancel := context.WithTimeout(ctx, catalogTimeout)
	defer cancel()

	if provider, ok := r.catalog.GetProviderForModel(cctx, modelName); ok {
		return &Resolution{ProviderID: provider, TargetModel: modelName, Source: "lookup"}, true
	}

	if cctx.Err() != nil {
		return nil, false
	}

	provider, ok := prefixMatch(r.catalog.Entries(cctx), modelName)
	if !ok {
		return nil, false
	}
	return &Resolution{ProviderID: provider, TargetModel: modelName, Source: "lookup"}, true
}

// prefixMatch implements §4.5 step 3's prefix-matching rule: an exact
// match wins; otherwise find every entry m where name is a prefix of m or
// m is a prefix of name; if they all agree on one provider, the longest
// wins; if more than one provider matches, the result is ambiguous.
func prefixMatch(entries []CatalogEntry, name string) (string, bool) {
	var bestName, bestProvider string
	providers := map[string]bool{}

	for _, e := range entries {
		if e.Name == name {
			return e.Provider, true
		}
		if strings.HasPrefix(e.Name, name) || strings.HasPrefix(name, e.Name) {
			providers[e.Provider] = true
			if len(e.Name) > len(bestName) {
				bestName, bestProvider = e.Name, e.Provider
			}
		}
	}

	if len(providers) == 1 {
		return bestProvider, true
	}
	return "", false
}

// inferenceRule is one (predicate -> provider) pair in the pattern table.
type inferenceRule struct {
	match    func(model string) bool
	provider string
}

// resolveInferenceOrDefault implements steps 4 and 5: the ordered
// pattern-inference table, falling through to "openai" when nothing
// matches.
func (r *Router) resolveInferenceOrDefault(modelName string) *Resolution {
	m := strings.ToLower(modelName)

	for _, rule := range r.inferenceRules() {
		if rule.match(m) {
			if rule.provider == openAIFamily {
				return r.resolveOpenAIFamily(modelName)
			}
			return &Resolution{ProviderID: rule.provider, TargetModel: modelName, Source: "inference"}
		}
	}
	return &Resolution{ProviderID: "openai", TargetModel: modelName, Source: "default"}
}

const openAIFamily = "__openai_family__"

// inferenceRules is the ordered rule table named in §4.5 step 4. Order
// matters: gemini-claude-*/gemini-3-* must be checked before the general
// gemini-* rule, since both would otherwise match.
func (r *Router) inferenceRules() []inferenceRule {
	return []inferenceRule{
		{provider: "anthropic", match: func(m string) bool { return strings.HasPrefix(m, "claude-") }},
		{provider: "antigravity", match: func(m string) bool {
			return strings.HasPrefix(m, "gemini-claude-") || strings.HasPrefix(m, "gemini-3-")
		}},
		{provider: "gemini", match: func(m string) bool { return strings.HasPrefix(m, "gemini-") }},
		{provider: openAIFamily, match: func(m string) bool {
			return strings.HasPrefix(m, "gpt-") || strings.HasPrefix(m, "o1") ||
				strings.HasPrefix(m, "o3") || strings.HasPrefix(m, "o4") || strings.Contains(m, "codex")
		}},
	}
}

// resolveOpenAIFamily disambiguates "web" vs standard OpenAI via the
// credential-checker callback (§4.5's closing paragraph).
func (r *Router) resolveOpenAIFamily(modelName string) *Resolution {
	hasWeb := r.cfg.HasCredential("openai-web")
	hasStandard := r.cfg.HasCredential("openai")

	if hasWeb && hasStandard && r.cfg.OpenAIFallbackEnabled {
		return &Resolution{
			ProviderID: "openai-web", TargetModel: modelName, Source: "inference",
			Fallbacks: []Target{{Provider: "openai", Model: modelName}},
		}
	}
	if hasWeb && !hasStandard {
		return &Resolution{ProviderID: "openai-web", TargetModel: modelName, Source: "inference"}
	}
	return &Resolution{ProviderID: "openai", TargetModel: modelName, Source: "inference"}
}
