// Package frame provides the long-format table used to move combined
// multi-series data in and out of the forecasting engine.
package frame

import (
	"fmt"
	"math"
	"strconv"
)

// Kind is the storage type of a column
type Kind uint8

const (
	// Numeric columns hold float64 values; missing values are NaN
	Numeric Kind = iota
	// Text columns hold raw strings (identifiers, timestamps)
	Text
)

func (k Kind) String() string {
	switch k {
	case Numeric:
		return "numeric"
	case Text:
		return "text"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

// column is a single named column of a Frame
type column struct {
	name    string
	kind    Kind
	floats  []float64
	strings []string
}

func (c *column) len() int {
	if c.kind == Numeric {
		return len(c.floats)
	}
	return len(c.strings)
}

func (c *column) clone() *column {
	out := &column{name: c.name, kind: c.kind}
	if c.kind == Numeric {
		out.floats = append([]float64(nil), c.floats...)
	} else {
		out.strings = append([]string(nil), c.strings...)
	}
	return out
}

// Frame is an ordered set of equal-length named columns, one row per
// (entity, timestep) observation.
type Frame struct {
	columns []*column
	index   map[string]int
	rows    int
}

// New creates an empty frame
func New() *Frame {
	return &Frame{index: make(map[string]int)}
}

// Len returns the number of rows
func (f *Frame) Len() int {
	if f == nil {
		return 0
	}
	return f.rows
}

// Columns returns the column names in order
func (f *Frame) Columns() []string {
	names := make([]string, len(f.columns))
	for i, c := range f.columns {
		names[i] = c.name
	}
	return names
}

// Has reports whether the frame contains the named column
func (f *Frame) Has(name string) bool {
	if f == nil {
		return false
	}
	_, ok := f.index[name]
	return ok
}

// KindOf returns the storage kind of a column
func (f *Frame) KindOf(name string) (Kind, bool) {
	i, ok := f.index[name]
	if !ok {
		return 0, false
	}
	return f.columns[i].kind, true
}

func (f *Frame) checkLength(name string, n int) error {
	if len(f.columns) > 0 && n != f.rows {
		return fmt.Errorf("column %q has %d rows, frame has %d", name, n, f.rows)
	}
	return nil
}

func (f *Frame) put(c *column, pos int) error {
	if err := f.checkLength(c.name, c.len()); err != nil {
		return err
	}
	if i, ok := f.index[c.name]; ok {
		f.columns[i] = c
		return nil
	}
	if pos < 0 || pos > len(f.columns) {
		pos = len(f.columns)
	}
	f.columns = append(f.columns, nil)
	copy(f.columns[pos+1:], f.columns[pos:])
	f.columns[pos] = c
	f.reindex()
	f.rows = c.len()
	return nil
}

func (f *Frame) reindex() {
	f.index = make(map[string]int, len(f.columns))
	for i, c := range f.columns {
		f.index[c.name] = i
	}
}

// SetFloats adds or replaces a numeric column. New columns are appended.
func (f *Frame) SetFloats(name string, values []float64) error {
	return f.put(&column{name: name, kind: Numeric, floats: values}, -1)
}

// SetStrings adds or replaces a text column. New columns are appended.
func (f *Frame) SetStrings(name string, values []string) error {
	return f.put(&column{name: name, kind: Text, strings: values}, -1)
}

// InsertStrings inserts a new text column at position pos
func (f *Frame) InsertStrings(pos int, name string, values []string) error {
	if f.Has(name) {
		return fmt.Errorf("column %q already exists", name)
	}
	return f.put(&column{name: name, kind: Text, strings: values}, pos)
}

// Floats returns the values of a numeric column. The returned slice is
// shared with the frame and must not be modified.
func (f *Frame) Floats(name string) ([]float64, error) {
	i, ok := f.index[name]
	if !ok {
		return nil, fmt.Errorf("column %q not found", name)
	}
	c := f.columns[i]
	if c.kind != Numeric {
		return nil, fmt.Errorf("column %q is %s, not numeric", name, c.kind)
	}
	return c.floats, nil
}

// Strings returns the values of a column as text. Numeric columns are
// formatted with the shortest representation.
func (f *Frame) Strings(name string) ([]string, error) {
	i, ok := f.index[name]
	if !ok {
		return nil, fmt.Errorf("column %q not found", name)
	}
	c := f.columns[i]
	if c.kind == Text {
		return c.strings, nil
	}
	out := make([]string, len(c.floats))
	for j, v := range c.floats {
		out[j] = formatFloat(v)
	}
	return out, nil
}

// Rename changes the name of a column in place
func (f *Frame) Rename(from, to string) error {
	if from == to {
		return nil
	}
	i, ok := f.index[from]
	if !ok {
		return fmt.Errorf("column %q not found", from)
	}
	if f.Has(to) {
		return fmt.Errorf("column %q already exists", to)
	}
	f.columns[i].name = to
	f.reindex()
	return nil
}

// Drop returns a copy of the frame without the named columns
func (f *Frame) Drop(names ...string) *Frame {
	skip := make(map[string]bool, len(names))
	for _, n := range names {
		skip[n] = true
	}
	out := New()
	for _, c := range f.columns {
		if skip[c.name] {
			continue
		}
		out.columns = append(out.columns, c.clone())
	}
	out.reindex()
	out.rows = f.rows
	return out
}

// Take returns a new frame holding the given rows, in the given order
func (f *Frame) Take(rows []int) *Frame {
	out := New()
	for _, c := range f.columns {
		nc := &column{name: c.name, kind: c.kind}
		if c.kind == Numeric {
			nc.floats = make([]float64, len(rows))
			for j, r := range rows {
				nc.floats[j] = c.floats[r]
			}
		} else {
			nc.strings = make([]string, len(rows))
			for j, r := range rows {
				nc.strings[j] = c.strings[r]
			}
		}
		out.columns = append(out.columns, nc)
	}
	out.reindex()
	out.rows = len(rows)
	return out
}

// Tail returns the last n rows. n <= 0 or n >= Len returns a copy.
func (f *Frame) Tail(n int) *Frame {
	start := 0
	if n > 0 && n < f.rows {
		start = f.rows - n
	}
	rows := make([]int, 0, f.rows-start)
	for i := start; i < f.rows; i++ {
		rows = append(rows, i)
	}
	return f.Take(rows)
}

// Concat stacks frames vertically. All frames must share the column set
// of the first one; the first frame's column order is kept.
func Concat(frames ...*Frame) (*Frame, error) {
	out := New()
	if len(frames) == 0 {
		return out, nil
	}
	first := frames[0]
	for _, c := range first.columns {
		out.columns = append(out.columns, &column{name: c.name, kind: c.kind})
	}
	out.reindex()

	for n, fr := range frames {
		if len(fr.columns) != len(first.columns) {
			return nil, fmt.Errorf("frame %d has %d columns, expected %d", n, len(fr.columns), len(first.columns))
		}
		for _, dst := range out.columns {
			i, ok := fr.index[dst.name]
			if !ok {
				return nil, fmt.Errorf("frame %d is missing column %q", n, dst.name)
			}
			src := fr.columns[i]
			if src.kind != dst.kind {
				return nil, fmt.Errorf("frame %d column %q is %s, expected %s", n, dst.name, src.kind, dst.kind)
			}
			if dst.kind == Numeric {
				dst.floats = append(dst.floats, src.floats...)
			} else {
				dst.strings = append(dst.strings, src.strings...)
			}
		}
		out.rows += fr.rows
	}
	return out, nil
}

// Record returns row i as a column-name keyed map. Numeric NaN values are
// returned as nil.
func (f *Frame) Record(i int) map[string]interface{} {
	rec := make(map[string]interface{}, len(f.columns))
	for _, c := range f.columns {
		if c.kind == Numeric {
			v := c.floats[i]
			if math.IsNaN(v) {
				rec[c.name] = nil
			} else {
				rec[c.name] = v
			}
			continue
		}
		rec[c.name] = c.strings[i]
	}
	return rec
}

// Records returns every row as a map
func (f *Frame) Records() []map[string]interface{} {
	out := make([]map[string]interface{}, f.rows)
	for i := range out {
		out[i] = f.Record(i)
	}
	return out
}

func formatFloat(v float64) string {
	if math.IsNaN(v) {
		return ""
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}
