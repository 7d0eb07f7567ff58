package streaming

import (
	"github.com/nghyane/llm-mux/internal/translator/ir"
)

// Real upstream wire fragments (OpenAI and the dialects modeled on it)
// only carry a tool-call id on the first fragment of a given candidate
// index; every continuation fragment has an empty id. The accumulator
// therefore keys solely on candidateIndex, the same way the pack's
// reference accumulator does (digitallysavvy-go-ai's alibaba stream
// adapter keys by Index and backfills id separately), never on an id
// that may not be present on the fragment that needs buffering.
type argBuffer struct {
	b []byte
}

func (a *argBuffer) append(s string) { a.b = append(a.b, s...) }
func (a *argBuffer) String() string  { return string(a.b) }

// ToolCallAccumulator buffers partial-JSON tool-call argument fragments
// per candidate index, per §4.4's "Partial-JSON accumulation".
type ToolCallAccumulator struct {
	buffers map[int]*argBuffer
}

func NewToolCallAccumulator() *ToolCallAccumulator {
	return &ToolCallAccumulator{buffers: make(map[int]*argBuffer)}
}

// Append adds a newly arrived fragment to the buffer for the given
// candidate index.
func (a *ToolCallAccumulator) Append(candidateIndex int, fragment string) {
	buf, ok := a.buffers[candidateIndex]
	if !ok {
		buf = &argBuffer{}
		a.buffers[candidateIndex] = buf
	}
	buf.append(fragment)
}

// Finalize attempts to parse the accumulated buffer as JSON. On success it
// returns the parsed value; on failure it returns the {"value": buffer}
// fallback shape mandated by §4.4 for dialects that cannot represent a raw
// string. raw is always the unparsed buffer contents. The index is
// dropped from the accumulator either way.
func (a *ToolCallAccumulator) Finalize(candidateIndex int) (parsed any, raw string) {
	buf, ok := a.buffers[candidateIndex]
	if !ok {
		return map[string]any{}, ""
	}
	delete(a.buffers, candidateIndex)
	raw = buf.String()
	return ir.ParseToolCallArgs(raw), raw
}

// Peek returns the buffer contents so far without finalizing or dropping
// it, for the object-to-fragment fan-out rule (serialize once, then hand
// the whole thing off as a single fragment).
func (a *ToolCallAccumulator) Peek(candidateIndex int) (string, bool) {
	buf, ok := a.buffers[candidateIndex]
	if !ok {
		return "", false
	}
	return buf.String(), true
}

// Discard drops a partially assembled tool call without finalizing it.
// Used on cancellation (§5: "a partially assembled tool-call with
// unfinalized partialJson is discarded; it is never emitted as a
// 'complete' tool call").
func (a *ToolCallAccumulator) Discard(candidateIndex int) {
	delete(a.buffers, candidateIndex)
}

// DiscardAll drops every in-flight accumulator, used when a task is
// cancelled outright.
func (a *ToolCallAccumulator) DiscardAll() {
	a.buffers = make(map[int]*argBuffer)
}
