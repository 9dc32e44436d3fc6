package compression

import (
	"bytes"
	"io"
	"testing"
)

func TestSnappyCompressor_RoundTrip(t *testing.T) {
	compressor := NewSnappyCompressor()

	tests := []struct {
		name string
		data []byte
	}{
		{"text", []byte("Hello, World! This is a test string for compression.")},
		{"repetitive", bytes.Repeat([]byte{1, 2, 3, 4}, 4096)},
		{"single byte", []byte{42}},
		{"empty", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			w := compressor.NewWriter(&buf)
			if _, err := w.Write(tt.data); err != nil {
				t.Fatalf("Write failed: %v", err)
			}
			if err := w.Close(); err != nil {
				t.Fatalf("Close failed: %v", err)
			}

			got, err := io.ReadAll(compressor.NewReader(&buf))
			if err != nil {
				t.Fatalf("ReadAll failed: %v", err)
			}
			if !bytes.Equal(tt.data, got) {
				t.Error("Decompressed data does not match original")
			}
		})
	}
}

func TestSnappyCompressor_Shrinks(t *testing.T) {
	data := bytes.Repeat([]byte{1, 2, 3, 4}, 4096)

	var buf bytes.Buffer
	w := NewSnappyCompressor().NewWriter(&buf)
	if _, err := w.Write(data); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	if buf.Len() >= len(data) {
		t.Errorf("Expected compressed size below %d, got %d", len(data), buf.Len())
	}
}
