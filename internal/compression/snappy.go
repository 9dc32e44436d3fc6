package compression

import (
	"io"

	"github.com/golang/snappy"
)

// SnappyCompressor implements Compressor using the snappy framed format
type SnappyCompressor struct{}

// NewSnappyCompressor creates a new Snappy compressor
func NewSnappyCompressor() *SnappyCompressor {
	return &SnappyCompressor{}
}

// NewWriter returns a buffered framed writer
func (s *SnappyCompressor) NewWriter(w io.Writer) io.WriteCloser {
	return snappy.NewBufferedWriter(w)
}

// NewReader returns a framed reader; corrupt input surfaces as
// snappy.ErrCorrupt from Read
func (s *SnappyCompressor) NewReader(r io.Reader) io.Reader {
	return snappy.NewReader(r)
}

// Algorithm returns Snappy
func (s *SnappyCompressor) Algorithm() Algorithm {
	return Snappy
}
