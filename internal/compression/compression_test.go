package compression

import (
	"bytes"
	"io"
	"testing"
)

func TestGetCompressor(t *testing.T) {
	for _, algo := range []Algorithm{None, Snappy} {
		c, err := GetCompressor(algo)
		if err != nil {
			t.Fatalf("GetCompressor(%s) failed: %v", algo, err)
		}
		if c.Algorithm() != algo {
			t.Errorf("Expected %s, got %s", algo, c.Algorithm())
		}
	}

	if _, err := GetCompressor(Algorithm(99)); err == nil {
		t.Error("Expected error for unsupported algorithm")
	}
}

func TestAlgorithm_String(t *testing.T) {
	if Snappy.String() != "snappy" || None.String() != "none" {
		t.Errorf("Unexpected names: %s %s", Snappy, None)
	}
	if Algorithm(7).String() != "algorithm(7)" {
		t.Errorf("Unexpected name: %s", Algorithm(7))
	}
}

func TestStreams(t *testing.T) {
	original := bytes.Repeat([]byte("lagged feature window "), 500)

	for _, algo := range []Algorithm{None, Snappy} {
		t.Run(algo.String(), func(t *testing.T) {
			c, _ := GetCompressor(algo)

			var buf bytes.Buffer
			w := c.NewWriter(&buf)
			if _, err := w.Write(original); err != nil {
				t.Fatalf("Write failed: %v", err)
			}
			if err := w.Close(); err != nil {
				t.Fatalf("Close failed: %v", err)
			}

			got, err := io.ReadAll(c.NewReader(&buf))
			if err != nil {
				t.Fatalf("ReadAll failed: %v", err)
			}
			if !bytes.Equal(original, got) {
				t.Error("Stream round trip mismatch")
			}
		})
	}
}

func TestSnappyReader_Corrupt(t *testing.T) {
	c := NewSnappyCompressor()
	if _, err := io.ReadAll(c.NewReader(bytes.NewReader([]byte("definitely not snappy")))); err == nil {
		t.Error("Expected error for corrupt stream")
	}
}

func BenchmarkSnappyWriter_Medium(b *testing.B) {
	compressor := NewSnappyCompressor()
	data := bytes.Repeat([]byte("Medium test string with some repetition. "), 100)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		w := compressor.NewWriter(io.Discard)
		_, _ = w.Write(data)
		_ = w.Close()
	}
}
