package frame

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// missing tokens parse as NaN in numeric columns
var missingTokens = map[string]bool{
	"":     true,
	"NA":   true,
	"NaN":  true,
	"nan":  true,
	"null": true,
}

// ReadCSV reads a frame from CSV with a header row. Each column is numeric
// when all of its values parse as floats (or are missing tokens); columns in
// textColumns are always kept as text.
func ReadCSV(r io.Reader, textColumns ...string) (*Frame, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("csv: missing header row")
		}
		return nil, fmt.Errorf("csv: failed to read header: %w", err)
	}
	for i := range header {
		header[i] = strings.TrimSpace(header[i])
	}

	raw := make([][]string, len(header))
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("csv: %w", err)
		}
		for i := range header {
			raw[i] = append(raw[i], strings.TrimSpace(record[i]))
		}
	}

	forceText := make(map[string]bool, len(textColumns))
	for _, c := range textColumns {
		forceText[c] = true
	}

	f := New()
	for i, name := range header {
		if f.Has(name) {
			return nil, fmt.Errorf("csv: duplicate column %q", name)
		}
		values := raw[i]
		if values == nil {
			values = []string{}
		}
		if !forceText[name] {
			if floats, ok := parseFloats(values); ok {
				if err := f.SetFloats(name, floats); err != nil {
					return nil, err
				}
				continue
			}
		}
		if err := f.SetStrings(name, values); err != nil {
			return nil, err
		}
	}
	return f, nil
}

// ReadCSVFile opens path and reads it with ReadCSV
func ReadCSVFile(path string, textColumns ...string) (*Frame, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = file.Close() }()
	return ReadCSV(file, textColumns...)
}

func parseFloats(values []string) ([]float64, bool) {
	out := make([]float64, len(values))
	for i, s := range values {
		if missingTokens[s] {
			out[i] = math.NaN()
			continue
		}
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil, false
		}
		out[i] = v
	}
	return out, true
}

// WriteCSV writes the frame with a header row
func (f *Frame) WriteCSV(w io.Writer) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(f.Columns()); err != nil {
		return err
	}

	cols := make([][]string, len(f.columns))
	for i, c := range f.columns {
		values, err := f.Strings(c.name)
		if err != nil {
			return err
		}
		cols[i] = values
	}

	record := make([]string, len(cols))
	for row := 0; row < f.rows; row++ {
		for i := range cols {
			record[i] = cols[i][row]
		}
		if err := writer.Write(record); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

// WriteCSVFile writes the frame to path, creating parent directories
func (f *Frame) WriteCSVFile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := f.WriteCSV(file); err != nil {
		_ = file.Close()
		return err
	}
	return file.Close()
}
