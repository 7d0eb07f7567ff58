package ir

import "github.com/google/uuid"

// Tool-call ID prefixes used by the dialects this gateway speaks, plus
// Kiro's (a third-party client observed in the wild using Bedrock-style
// "tooluse_" ids) since a client mixing Kiro-shaped ids with an
// OpenAI-shaped conversation history is a real interop case worth
// normalizing even though Kiro itself is not a dialect this gateway serves.
const (
	prefixCall    = "call_"
	prefixClaude  = "toolu_"
	prefixKiro    = "tooluse_"
	prefixResp    = "resp_"
	prefixMessage = "msg_"
)

// GenToolCallID generates a fresh OpenAI-shaped tool-call id.
func GenToolCallID() string {
	return prefixCall + uuid.NewString()
}

// GenClaudeToolCallID generates a fresh Anthropic-shaped tool-call id.
func GenClaudeToolCallID() string {
	return prefixClaude + uuid.NewString()
}

// GenResponseID generates a fresh OpenAI-Responses-shaped response id.
func GenResponseID() string {
	return prefixResp + uuid.NewString()
}

// GenOutputItemID generates a fresh OpenAI-Responses-shaped output item id.
func GenOutputItemID() string {
	return prefixMessage + uuid.NewString()
}

// ToClaudeToolID rewrites id into Anthropic's toolu_ namespace.
//   - already toolu_-prefixed: returned unchanged (fast path).
//   - call_-prefixed: the call_ prefix is replaced with toolu_.
//   - anything else (including Kiro's tooluse_, or no prefix): toolu_ is
//     prepended, since Claude requires the prefix and these ids lack it
//     in a form Claude would accept.
func ToClaudeToolID(id string) string {
	switch {
	case hasPrefix(id, prefixClaude):
		return id
	case hasPrefix(id, prefixCall):
		return prefixClaude + id[len(prefixCall):]
	default:
		return prefixClaude + id
	}
}

// FromClaudeToolID rewrites a toolu_-prefixed id into OpenAI's call_
// namespace; ids in any other shape (including Kiro's) pass through
// unchanged, matching the Kiro/"no prefix" identity cases.
func FromClaudeToolID(id string) string {
	if hasPrefix(id, prefixClaude) {
		return prefixCall + id[len(prefixClaude):]
	}
	return id
}

// ToKiroToolID rewrites a call_-prefixed id into Kiro's tooluse_ namespace.
func ToKiroToolID(id string) string {
	if hasPrefix(id, prefixCall) {
		return prefixKiro + id[len(prefixCall):]
	}
	return id
}

// FromKiroToolID rewrites a tooluse_-prefixed id into OpenAI's call_
// namespace.
func FromKiroToolID(id string) string {
	if hasPrefix(id, prefixKiro) {
		return prefixCall + id[len(prefixKiro):]
	}
	return id
}

func hasPrefix(s, prefix string) bool {
	return len(s) >= len(prefix) && s[:len(prefix)] == prefix
}

// IsValidThoughtSignature reports whether sig is a real signature rather
// than a placeholder a client sometimes echoes back literally.
func IsValidThoughtSignature(sig string) bool {
	switch sig {
	case "", "undefined", "[undefined]", "null", "[null]":
		return false
	default:
		return true
	}
}
