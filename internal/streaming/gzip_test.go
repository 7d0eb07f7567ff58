package streaming

import (
	"bytes"
	"testing"

	"github.com/klauspost/compress/gzip"
)

func TestNewGzipReader_RoundTripsThroughFramer(t *testing.T) {
	var buf bytes.Buffer
	gw := gzip.NewWriter(&buf)
	if _, err := gw.Write([]byte("data: {\"a\":1}\n\n")); err != nil {
		t.Fatalf("gzip write: %v", err)
	}
	if err := gw.Close(); err != nil {
		t.Fatalf("gzip close: %v", err)
	}

	r, err := NewGzipReader(&buf)
	if err != nil {
		t.Fatalf("NewGzipReader: %v", err)
	}
	f := NewFramer(r, FramingSSEStandard)
	payload, _, err := f.Next()
	if err != nil {
		t.Fatalf("Next: %v", err)
	}
	if string(payload) != `{"a":1}` {
		t.Fatalf("unexpected payload: %q", payload)
	}
}
