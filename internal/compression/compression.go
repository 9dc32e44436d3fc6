// Package compression wraps the codecs used for persisted model blobs
package compression

import (
	"fmt"
	"io"
)

// Algorithm identifies a codec in a blob header
type Algorithm uint8

const (
	None   Algorithm = 0
	Snappy Algorithm = 1
)

func (a Algorithm) String() string {
	switch a {
	case None:
		return "none"
	case Snappy:
		return "snappy"
	default:
		return fmt.Sprintf("algorithm(%d)", uint8(a))
	}
}

// Compressor wraps streams with a codec
type Compressor interface {
	// NewWriter wraps w; Close flushes without closing w
	NewWriter(w io.Writer) io.WriteCloser

	// NewReader wraps r
	NewReader(r io.Reader) io.Reader

	// Algorithm returns the compression algorithm type
	Algorithm() Algorithm
}

// GetCompressor returns a compressor for the given algorithm
func GetCompressor(algo Algorithm) (Compressor, error) {
	switch algo {
	case None:
		return &NoneCompressor{}, nil
	case Snappy:
		return NewSnappyCompressor(), nil
	default:
		return nil, fmt.Errorf("unsupported compression algorithm: %d", algo)
	}
}

// NoneCompressor is a no-op compressor
type NoneCompressor struct{}

func (n *NoneCompressor) NewWriter(w io.Writer) io.WriteCloser {
	return nopWriteCloser{w}
}

func (n *NoneCompressor) NewReader(r io.Reader) io.Reader {
	return r
}

func (n *NoneCompressor) Algorithm() Algorithm {
	return None
}

type nopWriteCloser struct {
	io.Writer
}

func (nopWriteCloser) Close() error { return nil }
