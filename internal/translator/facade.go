package translator

import (
	"github.com/nghyane/llm-mux/internal/translator/ir"
)

// TransformOptions parameterizes one call to TransformRequest/
// TransformResponse (spec §4.3).
type TransformOptions struct {
	From string
	To   string
	// Model, if non-empty, replaces the IR's model name before rendering
	// into the target dialect.
	Model string
	// ThinkingOverride, if non-nil, replaces ir.Thinking before rendering.
	// Ignored by TransformResponse, which has no thinking-config field.
	ThinkingOverride *ir.ThinkingConfig
}

// TransformRequest parses raw as the From dialect, optionally overwrites
// the IR's thinking config, then renders it as the To dialect (spec
// §4.3). The facade is stateless and adds no policy beyond that
// composition; it exists so callers never touch the IR type directly.
func TransformRequest(raw []byte, opts TransformOptions) ([]byte, error) {
	parser, ok := GetRegistry().GetToIR(opts.From)
	if !ok {
		return nil, ir.ErrUnknownProvider
	}
	converter, ok := GetRegistry().GetFromIR(opts.To)
	if !ok {
		return nil, ir.ErrUnknownProvider
	}

	req, err := parser.ParseRequest(raw)
	if err != nil {
		return nil, err
	}
	if opts.ThinkingOverride != nil {
		req.Thinking = opts.ThinkingOverride
	}

	return converter.TransformRequest(req, opts.Model)
}

// TransformResponse parses raw as the From dialect's response shape and
// renders it as the To dialect's response shape (spec §4.3).
func TransformResponse(raw []byte, opts TransformOptions) ([]byte, error) {
	parser, ok := GetRegistry().GetToIR(opts.From)
	if !ok {
		return nil, ir.ErrUnknownProvider
	}
	converter, ok := GetRegistry().GetFromIR(opts.To)
	if !ok {
		return nil, ir.ErrUnknownProvider
	}

	resp, err := parser.ParseResponse(raw)
	if err != nil {
		return nil, err
	}

	return converter.TransformResponse(resp)
}
