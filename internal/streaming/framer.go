// Package streaming implements the Streaming Engine (spec §4.4, C5): SSE
// framing for both upstream shapes, partial-JSON tool-call accumulation
// across dialects, and the per-request task that ties a source parser and
// a target converter together with cancellation.
package streaming

import (
	"bufio"
	"bytes"
	"io"
	"strings"
)

// Framing names the two upstream SSE shapes the engine recognizes (§4.4).
type Framing string

const (
	// FramingSSEStandard frames events separated by "\n\n", with "data: "
	// prefixed lines; "[DONE]" ends the stream.
	FramingSSEStandard Framing = "sse-standard"
	// FramingLineDelimited treats each newline-terminated line as its own
	// event payload, with no "data:" prefix.
	FramingLineDelimited Framing = "sse-line-delimited"
)

var doneSentinel = []byte("[DONE]")

// Framer reads a byte stream and yields one payload per upstream event,
// per the framing rules in §4.4: strip the "data: " prefix (tolerating an
// arbitrary run of spaces after the colon), join multi-line "data:" fields
// for standard framing, and recognize the "[DONE]" sentinel.
type Framer struct {
	r       *bufio.Reader
	framing Framing
}

// NewFramer wraps r for the given framing.
func NewFramer(r io.Reader, framing Framing) *Framer {
	return &Framer{r: bufio.NewReader(r), framing: framing}
}

// Next reads the next frame payload. done is true once the stream has
// reached its defined end (the "[DONE]" sentinel, for standard framing) or
// io.EOF. err is non-nil only for a read error other than io.EOF.
func (f *Framer) Next() (payload []byte, done bool, err error) {
	if f.framing == FramingLineDelimited {
		return f.nextLineDelimited()
	}
	return f.nextSSEStandard()
}

func (f *Framer) nextLineDelimited() ([]byte, bool, error) {
	line, err := f.r.ReadString('\n')
	line = strings.TrimRight(line, "\r\n")
	if line != "" {
		if err != nil && err != io.EOF {
			return nil, false, err
		}
		return []byte(line), false, nil
	}
	if err == io.EOF {
		return nil, true, nil
	}
	if err != nil {
		return nil, false, err
	}
	return f.nextLineDelimited()
}

func (f *Framer) nextSSEStandard() ([]byte, bool, error) {
	var dataLines []string
	for {
		line, err := f.r.ReadString('\n')
		trimmed := strings.TrimRight(line, "\r\n")

		if trimmed == "" {
			// Blank line: event boundary. Only yield if we accumulated data.
			if len(dataLines) > 0 {
				payload := strings.Join(dataLines, "\n")
				if bytes.Equal(bytes.TrimSpace([]byte(payload)), doneSentinel) {
					return nil, true, nil
				}
				return []byte(payload), false, nil
			}
			if err == io.EOF {
				return nil, true, nil
			}
			if err != nil {
				return nil, false, err
			}
			continue
		}

		if strings.HasPrefix(trimmed, "event:") {
			if err == io.EOF {
				return nil, true, nil
			}
			if err != nil {
				return nil, false, err
			}
			continue
		}

		if rest, ok := cutDataPrefix(trimmed); ok {
			dataLines = append(dataLines, rest)
		}

		if err == io.EOF {
			if len(dataLines) > 0 {
				payload := strings.Join(dataLines, "\n")
				if bytes.Equal(bytes.TrimSpace([]byte(payload)), doneSentinel) {
					return nil, true, nil
				}
				return []byte(payload), true, nil
			}
			return nil, true, nil
		}
		if err != nil {
			return nil, false, err
		}
	}
}

// cutDataPrefix strips a "data:" prefix, tolerating an arbitrary run of
// spaces after the colon, per §4.4.
func cutDataPrefix(line string) (string, bool) {
	if !strings.HasPrefix(line, "data:") {
		return "", false
	}
	return strings.TrimLeft(line[len("data:"):], " "), true
}
