package streaming

// ToolCallStreamShape says whether a dialect's wire format can carry
// tool-call arguments as incremental fragments or only as one complete
// object per call, driving the engine's §4.4 fan-out rules.
type ToolCallStreamShape string

const (
	// ToolCallShapeFragment streams arguments as successive JSON-fragment
	// deltas (OpenAI's function.arguments chunks, Anthropic's
	// input_json_delta, AI-SDK's argsTextDelta).
	ToolCallShapeFragment ToolCallStreamShape = "fragment"
	// ToolCallShapeObject delivers a tool call's arguments whole, in one
	// event (Gemini's functionCall has no incremental wire form).
	ToolCallShapeObject ToolCallStreamShape = "object"
)

// AdapterConfig is the per-dialect declaration described in spec §6
// ("Adapter configuration... not user-facing config"). It is not consumed
// through an adapter method — none of the registered adapters expose one,
// matching the ToIRParser/FromIRConverter contract in registry.go — but
// kept here as the single source of truth the engine reads (NewTask picks
// each side's ToolCallShape from it).
type AdapterConfig struct {
	SupportsStreaming bool
	SupportsThinking  bool
	SupportsTools     bool
	// DefaultMaxTokens is used when the IR lacks config.maxTokens and the
	// target dialect requires one (e.g. Anthropic's required max_tokens).
	DefaultMaxTokens int
	// DefaultStreamParser names the framing this dialect's upstream uses.
	DefaultStreamParser Framing
	// ToolCallShape says how this dialect's wire format carries streamed
	// tool-call arguments; see ToolCallStreamShape.
	ToolCallShape ToolCallStreamShape
}

// adapterConfigs is keyed by provider name (registry.go's closed enum).
// AI-SDK's reference implementation (digitallysavvy-go-ai's sse.go) frames
// as bare newline-delimited JSON, but this repo's AI-SDK adapter parses
// frames through ir.ExtractSSEData, which reads only "data:" lines and
// yields nothing for a frame without one. Every registered dialect is
// therefore declared with sse-standard framing, and a bare JSON line
// reaching the AI-SDK adapter produces no events.
var adapterConfigs = map[string]AdapterConfig{
	"openai": {
		SupportsStreaming: true, SupportsThinking: false, SupportsTools: true,
		DefaultMaxTokens: 4096, DefaultStreamParser: FramingSSEStandard,
		ToolCallShape: ToolCallShapeFragment,
	},
	"opencode-zen": {
		SupportsStreaming: true, SupportsThinking: false, SupportsTools: true,
		DefaultMaxTokens: 4096, DefaultStreamParser: FramingSSEStandard,
		ToolCallShape: ToolCallShapeFragment,
	},
	"openai-web": {
		SupportsStreaming: true, SupportsThinking: false, SupportsTools: true,
		DefaultMaxTokens: 4096, DefaultStreamParser: FramingSSEStandard,
		ToolCallShape: ToolCallShapeFragment,
	},
	"anthropic": {
		SupportsStreaming: true, SupportsThinking: true, SupportsTools: true,
		DefaultMaxTokens: 4096, DefaultStreamParser: FramingSSEStandard,
		ToolCallShape: ToolCallShapeFragment,
	},
	"gemini": {
		SupportsStreaming: true, SupportsThinking: true, SupportsTools: true,
		DefaultMaxTokens: 8192, DefaultStreamParser: FramingSSEStandard,
		ToolCallShape: ToolCallShapeObject,
	},
	"antigravity": {
		SupportsStreaming: true, SupportsThinking: true, SupportsTools: true,
		DefaultMaxTokens: 8192, DefaultStreamParser: FramingSSEStandard,
		ToolCallShape: ToolCallShapeObject,
	},
	"ai-sdk": {
		SupportsStreaming: true, SupportsThinking: true, SupportsTools: true,
		DefaultMaxTokens: 4096, DefaultStreamParser: FramingSSEStandard,
		ToolCallShape: ToolCallShapeFragment,
	},
}

// ConfigFor returns the declared adapter configuration for provider, and
// whether one is registered.
func ConfigFor(provider string) (AdapterConfig, bool) {
	cfg, ok := adapterConfigs[provider]
	return cfg, ok
}
