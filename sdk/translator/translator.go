// Package translator is the public facade over the transform surface:
// the closed set of dialect identifiers and the request/response
// conversion entry points (spec §4.1/§4.3), re-exported for callers
// outside internal/ (such as cmd/llm-mux).
package translator

import (
	"github.com/nghyane/llm-mux/internal/translator"
)

// Format identifies one of the closed-enum provider dialects (spec §4.2).
type Format = string

// Dialect identifiers. These mirror internal/translator's provider
// constants; duplicated here (rather than re-exported as aliases to
// untyped consts) so this package has no hidden coupling beyond the
// values themselves.
const (
	FormatOpenAI      Format = translator.ProviderOpenAI
	FormatAnthropic   Format = translator.ProviderAnthropic
	FormatGemini      Format = translator.ProviderGemini
	FormatAntigravity Format = translator.ProviderAntigravity
	FormatOpencodeZen Format = translator.ProviderOpencodeZen
	FormatOpenAIWeb   Format = translator.ProviderOpenAIWeb
	FormatAISDK       Format = translator.ProviderAISDK
)

// IsKnownFormat reports whether name is one of the closed-enum dialects.
func IsKnownFormat(name string) bool {
	return translator.IsKnownProvider(name)
}

// Options parameterizes a conversion call (spec §4.3's transformRequest/
// transformResponse options).
type Options struct {
	From  string
	To    string
	Model string
}

// TransformRequest parses raw as the From dialect's request shape and
// renders it as the To dialect's request shape.
func TransformRequest(raw []byte, opts Options) ([]byte, error) {
	return translator.TransformRequest(raw, translator.TransformOptions{
		From: opts.From, To: opts.To, Model: opts.Model,
	})
}

// TransformResponse parses raw as the From dialect's response shape and
// renders it as the To dialect's response shape.
func TransformResponse(raw []byte, opts Options) ([]byte, error) {
	return translator.TransformResponse(raw, translator.TransformOptions{
		From: opts.From, To: opts.To,
	})
}
