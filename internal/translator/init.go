package translator

import (
	"github.com/nghyane/llm-mux/internal/translator/dialect"
	"github.com/nghyane/llm-mux/internal/translator/from_ir"
)

// init populates the global registry once at package load, before any
// request is served (spec §4.2: "populated exactly once at startup").
func init() {
	r := GetRegistry()

	r.Register(from_ir.NewClaudeAdapter(), from_ir.NewClaudeAdapter())
	r.Register(dialect.NewGeminiAdapter(), dialect.NewGeminiAdapter())
	r.Register(dialect.NewAntigravityAdapter(), dialect.NewAntigravityAdapter())
	r.Register(dialect.NewAISDKAdapter(), dialect.NewAISDKAdapter())

	// openai, opencode-zen, and openai-web share one wire shape (spec
	// §4.1: "AI-SDK is an adapter variant..."; §4.5's router disambiguates
	// "web" vs standard OpenAI by a credential-checker callback, a
	// routing-layer concern the adapter itself is indifferent to).
	openAI := dialect.NewOpenAIChatAdapter(ProviderOpenAI)
	opencodeZen := dialect.NewOpenAIChatAdapter(ProviderOpencodeZen)
	openAIWeb := dialect.NewOpenAIChatAdapter(ProviderOpenAIWeb)
	r.Register(openAI, openAI)
	r.Register(opencodeZen, opencodeZen)
	r.Register(openAIWeb, openAIWeb)
}
