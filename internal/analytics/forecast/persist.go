package forecast

import (
	"bufio"
	"bytes"
	"encoding/gob"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"time"

	"github.com/soltixdb/lagforest/internal/compression"
	"github.com/soltixdb/lagforest/internal/utils"
)

// Blob layout: magic, format version, compression algorithm, then the
// compressed gob stream of persistedModel.
var blobMagic = []byte("LFRG")

const (
	blobVersion    byte = 1
	blobHeaderSize      = 6
)

type persistedModel struct {
	Registry  *Registry
	Params    Params
	Skipped   []string
	TrainedAt time.Time
	RunID     string
}

// Encode writes the model to w with the given compression algorithm
func Encode(w io.Writer, m *Model, algo compression.Algorithm) error {
	if m == nil || m.Registry.Len() == 0 {
		return ErrNotFitted
	}
	c, err := compression.GetCompressor(algo)
	if err != nil {
		return err
	}

	header := append(append([]byte(nil), blobMagic...), blobVersion, byte(algo))
	if _, err := w.Write(header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	cw := c.NewWriter(w)
	state := persistedModel{
		Registry:  m.Registry,
		Params:    m.Params,
		Skipped:   m.Skipped,
		TrainedAt: m.TrainedAt,
		RunID:     m.RunID,
	}
	if err := gob.NewEncoder(cw).Encode(&state); err != nil {
		return fmt.Errorf("failed to encode model: %w", err)
	}
	return cw.Close()
}

// Decode reads a model written by Encode. Any structural problem is
// reported as ErrMalformedState.
func Decode(r io.Reader) (*Model, error) {
	header := make([]byte, blobHeaderSize)
	if _, err := io.ReadFull(r, header); err != nil {
		return nil, fmt.Errorf("%w: short header: %v", ErrMalformedState, err)
	}
	if !bytes.Equal(header[:4], blobMagic) {
		return nil, fmt.Errorf("%w: bad magic %q", ErrMalformedState, header[:4])
	}
	if header[4] != blobVersion {
		return nil, fmt.Errorf("%w: unsupported format version %d", ErrMalformedState, header[4])
	}
	c, err := compression.GetCompressor(compression.Algorithm(header[5]))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedState, err)
	}

	var state persistedModel
	if err := gob.NewDecoder(c.NewReader(r)).Decode(&state); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedState, err)
	}
	if err := state.check(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedState, err)
	}

	return &Model{
		Registry:  state.Registry,
		Params:    state.Params,
		Skipped:   state.Skipped,
		TrainedAt: state.TrainedAt,
		RunID:     state.RunID,
	}, nil
}

func (s *persistedModel) check() error {
	if s.Registry == nil || len(s.Registry.Models) == 0 {
		return errors.New("registry is empty")
	}
	if err := s.Registry.Schema.Validate(); err != nil {
		return err
	}
	for id, m := range s.Registry.Models {
		if m == nil || m.Regressor == nil {
			return fmt.Errorf("entity %q has no regressor", id)
		}
		if err := m.Lags.Validate(); err != nil {
			return fmt.Errorf("entity %q: %v", id, err)
		}
		if len(m.Window) != m.Lags.Max() {
			return fmt.Errorf("entity %q window has %d values, expected %d", id, len(m.Window), m.Lags.Max())
		}
		for _, v := range m.Window {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return fmt.Errorf("entity %q window holds a non-finite value", id)
			}
		}
		if got := m.Regressor.NumFeatures(); got != m.NumFeatures() {
			return fmt.Errorf("entity %q regressor expects %d features, layout has %d", id, got, m.NumFeatures())
		}
		if err := m.Regressor.Validate(); err != nil {
			return fmt.Errorf("entity %q: %v", id, err)
		}
	}
	return nil
}

// Path returns the blob location inside a model directory
func Path(dir string) string {
	return filepath.Join(dir, utils.PredictorFileName)
}

// Save writes the model into dir, creating it when needed. The blob is
// written to a temporary file and renamed into place, so readers see
// either the previous model or the new one.
func Save(dir string, m *Model) (string, error) {
	if m == nil || m.Registry.Len() == 0 {
		return "", ErrNotFitted
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create model directory: %w", err)
	}

	path := Path(dir)
	tmp, err := os.CreateTemp(dir, utils.PredictorFileName+".*.tmp")
	if err != nil {
		return "", fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	cleanup := func() {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
	}

	bw := bufio.NewWriter(tmp)
	if err := Encode(bw, m, compression.Snappy); err != nil {
		cleanup()
		return "", err
	}
	if err := bw.Flush(); err != nil {
		cleanup()
		return "", fmt.Errorf("failed to write model: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		cleanup()
		return "", fmt.Errorf("failed to sync model: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return "", fmt.Errorf("failed to close model: %w", err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return "", fmt.Errorf("failed to rename model: %w", err)
	}
	return path, nil
}

// Load reads the model saved in dir
func Load(dir string) (*Model, error) {
	f, err := os.Open(Path(dir))
	if err != nil {
		return nil, fmt.Errorf("failed to open model: %w", err)
	}
	defer func() { _ = f.Close() }()

	return Decode(bufio.NewReader(f))
}
