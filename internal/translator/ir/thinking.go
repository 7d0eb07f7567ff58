package ir

import "strings"

// ThinkingLevel is Gemini 3's coarse reasoning-effort vocabulary, distinct
// from the raw token Budget on ThinkingConfig. The Gemini adapter (and
// Antigravity through it) derives it from the Responses-dialect "effort"
// string when the request has no positive token budget; a budget is sent
// as thinkingBudget instead, and no adapter calls BudgetToThinkingLevel.
// The mappings respect that Gemini 3 Pro only exposes LOW/HIGH while
// Flash exposes the full MINIMAL..HIGH range.
type ThinkingLevel string

const (
	ThinkingLevelUnspecified ThinkingLevel = ""
	ThinkingLevelMinimal     ThinkingLevel = "MINIMAL"
	ThinkingLevelLow         ThinkingLevel = "LOW"
	ThinkingLevelMedium      ThinkingLevel = "MEDIUM"
	ThinkingLevelHigh        ThinkingLevel = "HIGH"
)

// IsGemini3 reports whether model names a Gemini 3 family model.
func IsGemini3(model string) bool {
	m := strings.ToLower(model)
	return strings.HasPrefix(m, "gemini-3-") || m == "gemini-3"
}

// IsGemini3Flash reports whether model names a Gemini 3 Flash variant,
// the only Gemini 3 tier that supports ThinkingLevelMinimal.
func IsGemini3Flash(model string) bool {
	return IsGemini3(model) && strings.Contains(strings.ToLower(model), "flash")
}

// IsClaude reports whether model names any Anthropic Claude model,
// including Bedrock/Vertex-prefixed forms like "anthropic.claude-...".
func IsClaude(model string) bool {
	return strings.Contains(strings.ToLower(model), "claude")
}

// IsThinkingModel reports whether model is one of the explicit
// "-thinking" variant names some providers expose as a separate model id.
func IsThinkingModel(model string) bool {
	return strings.Contains(strings.ToLower(model), "thinking")
}

// ModelMayHaveThinking reports whether model belongs to a family that can
// ever produce extended-thinking content (Claude, any Gemini generation).
func ModelMayHaveThinking(model string) bool {
	if model == "" {
		return false
	}
	m := strings.ToLower(model)
	return strings.Contains(m, "claude") || strings.Contains(m, "gemini")
}

// DefaultThinkingLevel is the level used when a Gemini 3 request enables
// thinking without specifying effort or budget.
func DefaultThinkingLevel(model string) ThinkingLevel {
	if IsGemini3Flash(model) {
		return ThinkingLevelMedium
	}
	return ThinkingLevelHigh
}

// EffortToThinkingLevel maps a Responses-dialect "effort" string onto
// Gemini 3's level vocabulary, respecting the asymmetry between Flash
// (full MINIMAL..HIGH range) and Pro (LOW/HIGH only).
func EffortToThinkingLevel(model, effort string) ThinkingLevel {
	flash := IsGemini3Flash(model)
	switch strings.ToLower(effort) {
	case "none", "minimal":
		if flash {
			return ThinkingLevelMinimal
		}
		return ThinkingLevelLow
	case "low":
		return ThinkingLevelLow
	case "medium", "high", "xhigh":
		return ThinkingLevelHigh
	default:
		return DefaultThinkingLevel(model)
	}
}

// BudgetToThinkingLevel maps an Anthropic-style token budget onto Gemini
// 3's level vocabulary.
func BudgetToThinkingLevel(model string, budget int) ThinkingLevel {
	if !IsGemini3Flash(model) {
		if budget <= 1024 {
			return ThinkingLevelLow
		}
		return ThinkingLevelHigh
	}
	switch {
	case budget <= 128:
		return ThinkingLevelMinimal
	case budget <= 1024:
		return ThinkingLevelLow
	case budget <= 8192:
		return ThinkingLevelMedium
	default:
		return ThinkingLevelHigh
	}
}

// ThinkingLevelToBudget maps a level back to an approximate token budget,
// for dialects (Anthropic) that only understand budgets.
func ThinkingLevelToBudget(level ThinkingLevel) int {
	switch level {
	case ThinkingLevelMinimal:
		return 128
	case ThinkingLevelLow:
		return 1024
	case ThinkingLevelHigh:
		return 32768
	default:
		return 8192
	}
}

// EffortToBudget maps a Responses-dialect effort string to a raw token
// budget and whether thinking should be included at all ("none" disables
// it outright). An empty or unrecognized effort returns -1 to signal
// "use the model's own default budget".
func EffortToBudget(effort string) (budget int, include bool) {
	switch strings.ToLower(effort) {
	case "none":
		return 0, false
	case "minimal":
		return 128, true
	case "low":
		return 1024, true
	case "medium":
		return 8192, true
	case "high":
		return 32768, true
	case "xhigh":
		return 65536, true
	default:
		return -1, true
	}
}

// BudgetToEffort maps a raw token budget back to a Responses-dialect
// effort string. budget <= 0 yields defaultForZero (callers typically
// pass "none").
func BudgetToEffort(budget int, defaultForZero string) string {
	if budget <= 0 {
		return defaultForZero
	}
	switch {
	case budget <= 1024:
		return "low"
	case budget <= 8192:
		return "medium"
	default:
		return "high"
	}
}
