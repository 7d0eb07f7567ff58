package ir

const (
	MetaGoogleSearch          = "google_search"
	MetaGoogleSearchRetrieval = "google_search_retrieval"
	MetaCodeExecution         = "code_execution"
	MetaURLContext            = "url_context"
	MetaGroundingMetadata     = "grounding_metadata"

	MetaOpenAILogprobs         = "openai:logprobs"
	MetaOpenAITopLogprobs      = "openai:top_logprobs"
	MetaOpenAILogitBias        = "openai:logit_bias"
	MetaOpenAISeed             = "openai:seed"
	MetaOpenAIUser             = "openai:user"
	MetaOpenAIFrequencyPenalty = "openai:frequency_penalty"
	MetaOpenAIPresencePenalty  = "openai:presence_penalty"

	MetaGeminiCachedContent = "gemini:cachedContent"
	MetaGeminiLabels        = "gemini:labels"

	MetaClaudeMetadata = "claude:metadata"
)

type EventType string

const (
	EventTypeToken            EventType = "token"
	EventTypeReasoning        EventType = "reasoning"
	EventTypeReasoningSummary EventType = "reasoning_summary"
	EventTypeToolCall         EventType = "tool_call"
	EventTypeToolCallDelta    EventType = "tool_call_delta"
	EventTypeImage            EventType = "image"
	EventTypeCodeExecution    EventType = "code_execution"
	EventTypeError            EventType = "error"
	EventTypeFinish           EventType = "finish"
)

// StopReason is the canonical, dialect-neutral outcome of a generation.
// It is used both as UnifiedEvent.FinishReason (streaming) and as
// UnifiedResponse.StopReason (non-streaming) — the spec treats these as
// the same enum (§4.4: "the canonical set is the IR StopReason enum").
type StopReason string

const (
	StopReasonEndTurn      StopReason = "end_turn"
	StopReasonMaxTokens    StopReason = "max_tokens"
	StopReasonToolUse      StopReason = "tool_use"
	StopReasonStopSequence StopReason = "stop_sequence"
	StopReasonContentFilter StopReason = "content_filter"
	StopReasonError        StopReason = "error"
	StopReasonUnknown      StopReason = "unknown"
	// StopReasonNone is the zero value: generation has not finished yet.
	StopReasonNone StopReason = ""
)

// FinishReason is an alias for StopReason kept for readability at call
// sites that talk about streaming termination specifically.
type FinishReason = StopReason

const (
	FinishReasonStop          = StopReasonEndTurn
	FinishReasonLength        = StopReasonMaxTokens
	FinishReasonToolCalls     = StopReasonToolUse
	FinishReasonContentFilter = StopReasonContentFilter
	FinishReasonError         = StopReasonError
	FinishReasonUnknown       = StopReasonUnknown
)

type UnifiedEvent struct {
	Type              EventType
	Content           string
	Reasoning         string
	ReasoningSummary  string
	ThoughtSignature  string
	ToolCall          *ToolCall
	ToolCallIndex     int
	Image             *ImagePart
	CodeExecution     *CodeExecutionPart
	GroundingMetadata *GroundingMetadata
	Error             error
	Usage             *Usage
	FinishReason      FinishReason // Why generation stopped (for EventTypeFinish)
	Refusal           string       // Refusal message (if model refuses to answer)
	Logprobs          any          // Log probabilities (if requested)
	ContentFilter     any          // Content filter results
	SystemFingerprint string       // System fingerprint
}

type Usage struct {
	PromptTokens             int
	CompletionTokens         int
	TotalTokens              int
	ThoughtsTokenCount       int // Reasoning/thinking token count (for completion_tokens_details)
	CachedTokens             int // Cached input tokens (Responses API prompt caching)
	AudioTokens              int // Audio input tokens
	AcceptedPredictionTokens int // Accepted prediction tokens
	RejectedPredictionTokens int // Rejected prediction tokens
}

// OpenAIMeta contains metadata from upstream response for passthrough.
// Used to preserve original response fields like responseId, createTime, finishReason.
// This is the unified metadata type used across all providers.
type OpenAIMeta struct {
	ResponseID         string
	CreateTime         int64
	NativeFinishReason string
	ThoughtsTokenCount int
	Logprobs           any
}

// ResponseMeta is an alias for OpenAIMeta for backward compatibility.
// Deprecated: Use OpenAIMeta directly instead.
type ResponseMeta = OpenAIMeta

// CandidateResult holds the result of a single candidate/choice from the model.
// Used when candidateCount/n > 1 to return multiple alternatives.
type CandidateResult struct {
	Index        int          // Candidate index (0-based)
	Messages     []Message    // Messages from this candidate
	FinishReason FinishReason // Why this candidate stopped
	Logprobs     any          // Log probabilities for this candidate (OpenAI format)
}

// ToolCall represents a request from the model to execute a tool.
type ToolCall struct {
	ID               string
	Name             string
	Args             string
	PartialArgs      string
	ThoughtSignature string
}

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system"
	RoleTool      Role = "tool"
)

// ContentType defines the type of content part.
type ContentType string

const (
	ContentTypeText           ContentType = "text"
	ContentTypeReasoning      ContentType = "reasoning"
	// ContentTypeRedactedThinking is a Thinking block whose text the
	// source dialect withheld (only a redaction marker was delivered),
	// kept as its own tag distinct from ContentTypeReasoning. No adapter
	// produces it (Anthropic redacted_thinking blocks are skipped on
	// parse), and no transform counts such blocks.
	ContentTypeRedactedThinking ContentType = "redacted_thinking"
	ContentTypeImage            ContentType = "image"
	ContentTypeFile             ContentType = "file"
	ContentTypeToolCall         ContentType = "tool_call"
	ContentTypeToolResult       ContentType = "tool_result"
	ContentTypeExecutableCode   ContentType = "executable_code"
	ContentTypeCodeResult       ContentType = "code_result"
)

// CacheControl carries an ephemeral prompt-cache marker through a
// round-trip (Anthropic's cache_control, and any dialect with an
// analogous concept). Kind is typically "ephemeral"; TTL is optional.
type CacheControl struct {
	Kind string
	TTL  string
}

// SystemBlock is one block of a (possibly multi-block) system prompt,
// preserved separately from the flattened Message.Content system text so
// per-block cache hints survive a round-trip through dialects that
// support them (spec §3: UnifiedRequest.systemBlocks).
type SystemBlock struct {
	Text         string
	CacheControl *CacheControl
}

// ContentPart represents a discrete part of a message (e.g., a block of text, an image).
// It is a tagged union keyed by Type; only the fields relevant to that
// tag are populated (spec §9: "tagged unions over inheritance").
type ContentPart struct {
	Type             ContentType
	Text             string
	CacheControl     *CacheControl
	Reasoning        string
	ThoughtSignature string
	// RedactedData holds the opaque payload of a ContentTypeRedactedThinking
	// block (no readable text available, only a redaction marker/ciphertext).
	RedactedData  string
	Image         *ImagePart
	File          *FilePart
	ToolCall      *ToolCall
	ToolResult    *ToolResultPart
	CodeExecution *CodeExecutionPart
}

type ImagePart struct {
	MimeType string
	Data     string
	URL      string
}

// FilePart represents a file input (PDF, etc.) for Responses API.
type FilePart struct {
	FileID   string
	FileURL  string
	Filename string
	FileData string
}

type ToolResultPart struct {
	ToolCallID string
	Result     string
	IsError    bool
	Images     []*ImagePart
	Files      []*FilePart
}

// CodeExecutionPart represents Gemini code execution content.
type CodeExecutionPart struct {
	Language string
	Code     string
	Outcome  string
	Output   string
}

// GroundingMetadata contains search grounding information from Gemini.
type GroundingMetadata struct {
	SearchEntryPoint *SearchEntryPoint `json:"searchEntryPoint,omitempty"`
	GroundingChunks  []GroundingChunk  `json:"groundingChunks,omitempty"`
	WebSearchQueries []string          `json:"webSearchQueries,omitempty"`
}

// SearchEntryPoint contains the rendered search entry point HTML.
type SearchEntryPoint struct {
	RenderedContent string `json:"renderedContent,omitempty"`
}

// GroundingChunk represents a single grounding source.
type GroundingChunk struct {
	Web *WebGrounding `json:"web,omitempty"`
}

// WebGrounding contains web source information.
type WebGrounding struct {
	URI   string `json:"uri,omitempty"`
	Title string `json:"title,omitempty"`
}

type Message struct {
	Role      Role
	Content   []ContentPart
	ToolCalls []ToolCall
}

// ToolDefinition represents a tool capability exposed to the model.
type ToolDefinition struct {
	Name        string
	Description string
	Parameters  map[string]any
}

// ToolChoiceKind distinguishes the named-tool form of ToolChoice from the
// three open-ended modes (spec §3: `"auto"|"none"|"required"|{kind:"tool",name}`).
type ToolChoiceKind string

const (
	ToolChoiceAuto     ToolChoiceKind = "auto"
	ToolChoiceNone     ToolChoiceKind = "none"
	ToolChoiceRequired ToolChoiceKind = "required"
	ToolChoiceTool     ToolChoiceKind = "tool"
)

// ToolChoice controls whether/which tool the model must call.
type ToolChoice struct {
	Kind ToolChoiceKind
	// Name is set only when Kind == ToolChoiceTool.
	Name string
}

// UnifiedChatRequest represents the unified chat request structure.
type UnifiedChatRequest struct {
	Model            string
	Messages         []Message
	System           string        // flattened system prompt
	SystemBlocks     []SystemBlock // per-block system prompt with cache hints
	Tools            []ToolDefinition
	ToolChoiceValue  *ToolChoice
	Temperature      *float64
	TopP             *float64
	TopK             *int
	MaxTokens        *int
	StopSequences    []string
	FrequencyPenalty *float64
	PresencePenalty  *float64
	Logprobs         *bool
	TopLogprobs      *int
	CandidateCount   *int
	Stream           *bool
	Thinking         *ThinkingConfig
	SafetySettings   []SafetySetting // Safety/content filtering settings
	ImageConfig      *ImageConfig    // Image generation configuration
	ResponseModality []string        // Response modalities (e.g., ["TEXT", "IMAGE"])
	Metadata         map[string]any  // Additional provider-specific metadata

	// Responses API specific fields
	Instructions       string // System instructions (Responses API)
	PreviousResponseID string
	PromptID           string         // Prompt template ID (Responses API)
	PromptVersion      string         // Prompt template version (Responses API)
	PromptVariables    map[string]any // Variables for prompt template (Responses API)
	PromptCacheKey     string         // Cache key for prompt caching (Responses API)
	Store              *bool          // Whether to store the response (Responses API)
	ParallelToolCalls  *bool          // Whether to allow parallel tool calls (Responses API)
	ToolChoice         string         // Raw tool_choice mode string, as received (Responses API passthrough)
	ResponseSchema     map[string]any
	FunctionCalling    *FunctionCallingConfig // Function calling configuration
}

// UnifiedResponse is a full, non-streaming model response (spec §3).
type UnifiedResponse struct {
	ID         string
	Model      string
	Content    []ContentPart
	StopReason StopReason
	Usage      *Usage
	// Thinking holds the same logical blocks as any ContentPart of type
	// ContentTypeReasoning within Content — invariant I3: a transform
	// emits one copy, never both independently.
	Thinking []ContentPart
	Meta     *OpenAIMeta
}

// FunctionCallingConfig controls function calling behavior.
type FunctionCallingConfig struct {
	Mode                        string   // "AUTO", "ANY", "NONE"
	AllowedFunctionNames        []string // Whitelist of functions
	StreamFunctionCallArguments bool     // Enable streaming of arguments (Gemini 3+)
}

// ThinkingConfig controls the reasoning capabilities of the model.
type ThinkingConfig struct {
	IncludeThoughts bool
	Budget          int
	Summary         string // Reasoning summary mode: "auto", "concise", "detailed" (Responses API)
	Effort          string // Reasoning effort: "none", "low", "medium", "high" (Responses API)
}

// SafetySetting represents content safety filtering configuration.
type SafetySetting struct {
	Category  string
	Threshold string
}

// SafetyRating is one category's verdict within a ContentFilterResult.
type SafetyRating struct {
	Category    string
	Probability string
	Blocked     bool
	Severity    string
}

// ImageConfig controls image generation parameters.
type ImageConfig struct {
	AspectRatio string
	ImageSize   string
}
