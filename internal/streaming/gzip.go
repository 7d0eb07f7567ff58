package streaming

import (
	"io"

	"github.com/klauspost/compress/gzip"
)

// NewGzipReader wraps a gzip-compressed upstream body so it can be handed
// to NewFramer like any other byte stream. Declaring the body's encoding
// is the external HTTP layer's job (§1 Non-goals); this just does the
// unwrap once that's known.
func NewGzipReader(r io.Reader) (io.Reader, error) {
	return gzip.NewReader(r)
}
