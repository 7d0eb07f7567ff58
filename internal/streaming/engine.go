package streaming

import (
	"context"
	"io"

	"github.com/nghyane/llm-mux/internal/logging"
	"github.com/nghyane/llm-mux/internal/streamutil"
	"github.com/nghyane/llm-mux/internal/translator"
	"github.com/nghyane/llm-mux/internal/translator/ir"
)

// pendingToolCall tracks the id and name of a tool call whose arguments
// are still arriving as fragments, so the engine can synthesize a
// complete ir.ToolCall once the fragments are finalized. Real upstream
// wire fragments only carry the id on the first fragment per candidate
// index, so id is backfilled as soon as a fragment supplies one and
// kept thereafter, the same way the pack's alibaba stream adapter does
// it (accumulateToolCall: "if tc.ID != "" { acc.ID = tc.ID }").
type pendingToolCall struct {
	id   string
	name string
}

// Task is one logical streaming request (§5: "Each request is handled by
// one logical task that owns its own IR values, stream framer, and
// accumulators; no IR value is shared across tasks"). It parses upstream
// frames through one dialect's ToIRParser and renders IR events through
// another's FromIRConverter, applying the §4.4 fan-out rules in between.
type Task struct {
	parser    translator.ToIRParser
	converter translator.FromIRConverter
	model     string

	parserState  any
	emitterState any

	sourceShape ToolCallStreamShape
	targetShape ToolCallStreamShape

	acc     *ToolCallAccumulator
	pending map[int]pendingToolCall

	logger logging.Logger
}

// NewTask builds a task translating from sourceFormat's parser to
// targetProvider's converter, rendering output for model. Shapes default
// to ToolCallShapeFragment for any dialect without a declared config,
// which is the more common wire shape and the safer default (it never
// suppresses a tool-call frame the caller hasn't asked it to buffer).
func NewTask(parser translator.ToIRParser, converter translator.FromIRConverter, sourceFormat, targetProvider, model string) *Task {
	sourceShape := ToolCallShapeFragment
	if cfg, ok := ConfigFor(sourceFormat); ok {
		sourceShape = cfg.ToolCallShape
	}
	targetShape := ToolCallShapeFragment
	if cfg, ok := ConfigFor(targetProvider); ok {
		targetShape = cfg.ToolCallShape
	}

	return &Task{
		parser:       parser,
		converter:    converter,
		model:        model,
		parserState:  parser.NewParserState(),
		emitterState: converter.NewEmitterState(),
		sourceShape:  sourceShape,
		targetShape:  targetShape,
		acc:          NewToolCallAccumulator(),
		pending:      make(map[int]pendingToolCall),
		logger:       logging.Noop(),
	}
}

// SetLogger attaches a Logger the task uses to report malformed-frame
// warnings; omitted calls keep the no-op default.
func (t *Task) SetLogger(l logging.Logger) {
	if l != nil {
		t.logger = l
	}
}

// ProcessFrame parses one upstream frame and returns the target dialect
// frames it produces, in order.
func (t *Task) ProcessFrame(frame []byte) ([][]byte, error) {
	events, err := t.parser.ParseStreamChunk(frame, t.parserState)
	if err != nil {
		t.logger.Warnf("streaming: malformed frame from %s: %v", t.parser.Format(), err)
		return nil, err
	}
	var out [][]byte
	for _, ev := range events {
		frames, err := t.processEvent(ev)
		if err != nil {
			return out, err
		}
		out = append(out, frames...)
	}
	return out, nil
}

func (t *Task) processEvent(ev ir.UnifiedEvent) ([][]byte, error) {
	switch ev.Type {
	case ir.EventTypeToolCallDelta:
		return t.processToolCallDelta(ev)
	case ir.EventTypeToolCall:
		return t.processToolCallObject(ev)
	case ir.EventTypeFinish:
		return t.processFinish(ev)
	default:
		return t.converter.TransformStreamChunk(ev, t.model, t.emitterState)
	}
}

func (t *Task) processToolCallDelta(ev ir.UnifiedEvent) ([][]byte, error) {
	if ev.ToolCall == nil {
		return nil, nil
	}
	idx := ev.ToolCallIndex
	p := t.pending[idx]
	if ev.ToolCall.ID != "" {
		p.id = ev.ToolCall.ID
	}
	if ev.ToolCall.Name != "" {
		p.name = ev.ToolCall.Name
	}
	t.pending[idx] = p
	t.acc.Append(idx, ev.ToolCall.PartialArgs)

	if t.targetShape == ToolCallShapeFragment {
		// Fragment-to-fragment: pass the raw bytes straight through,
		// unparsed and unserialized (§4.4).
		return t.converter.TransformStreamChunk(ev, t.model, t.emitterState)
	}
	// Fragment-to-object: buffer silently until a terminal signal finalizes it.
	return nil, nil
}

func (t *Task) processToolCallObject(ev ir.UnifiedEvent) ([][]byte, error) {
	if ev.ToolCall == nil {
		return t.converter.TransformStreamChunk(ev, t.model, t.emitterState)
	}
	if t.targetShape == ToolCallShapeFragment {
		// Object-to-fragment: serialize once, emit as a single fragment (§4.4).
		synth := ev
		call := *ev.ToolCall
		call.PartialArgs = ev.ToolCall.Args
		synth.Type = ir.EventTypeToolCallDelta
		synth.ToolCall = &call
		return t.converter.TransformStreamChunk(synth, t.model, t.emitterState)
	}
	return t.converter.TransformStreamChunk(ev, t.model, t.emitterState)
}

// processFinish flushes any tool calls still pending as fragments when the
// target dialect needs one complete object per call, emitting each
// consolidated frame before the finish frame itself, then renders the
// finish event.
func (t *Task) processFinish(ev ir.UnifiedEvent) ([][]byte, error) {
	var out [][]byte
	if t.targetShape == ToolCallShapeObject {
		for idx, p := range t.pending {
			_, raw := t.acc.Finalize(idx)
			synth := ir.UnifiedEvent{
				Type:          ir.EventTypeToolCall,
				ToolCallIndex: idx,
				ToolCall:      &ir.ToolCall{ID: p.id, Name: p.name, Args: raw},
			}
			frames, err := t.converter.TransformStreamChunk(synth, t.model, t.emitterState)
			if err != nil {
				return out, err
			}
			out = append(out, frames...)
		}
		t.pending = make(map[int]pendingToolCall)
	}

	frames, err := t.converter.TransformStreamChunk(ev, t.model, t.emitterState)
	if err != nil {
		return out, err
	}
	return append(out, frames...), nil
}

// Cancel discards every partially assembled tool call without emitting it
// (§5: a client disconnect must never surface an incomplete tool call as
// "complete").
func (t *Task) Cancel() {
	t.acc.DiscardAll()
	t.pending = make(map[int]pendingToolCall)
}

// Run drives the task end to end: frames upstream per framing, parses and
// renders each frame, and publishes the resulting dialect frames on the
// returned pipeline's output channel. The pipeline's context governs
// cancellation; a cancelled context stops the framer's read loop and
// drops any in-flight accumulator state via Cancel (§5).
func (t *Task) Run(ctx context.Context, upstream io.Reader, framing Framing) *streamutil.Pipeline {
	p := streamutil.NewPipeline(ctx, streamutil.DefaultPipelineConfig())
	framer := NewFramer(upstream, framing)

	p.Go(func(ctx context.Context) error {
		for {
			select {
			case <-ctx.Done():
				t.Cancel()
				return ctx.Err()
			default:
			}

			payload, done, err := framer.Next()
			if err != nil {
				p.SendError(err)
				return err
			}
			if len(payload) > 0 {
				frames, err := t.ProcessFrame(payload)
				if err != nil {
					p.SendError(err)
					return err
				}
				for _, f := range frames {
					if !p.SendData(f) {
						t.Cancel()
						return ctx.Err()
					}
				}
			}
			if done {
				return nil
			}
		}
	})
	p.Start()
	return p
}
