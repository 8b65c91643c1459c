// Package frame is the columnar table backend behind the evaluator's
// DataFrame values. The evaluator sees only the Frame interface; the
// in-memory implementation and the CSV/YAML/SQL readers live here.
package frame

import (
	"fmt"
)

// Kind is the scalar kind of a column.
type Kind int

const (
	KindInt Kind = iota
	KindFloat
	KindBool
	KindString
)

func (k Kind) String() string {
	switch k {
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindBool:
		return "bool"
	case KindString:
		return "string"
	default:
		return "unknown"
	}
}

// Column is one homogeneous column. Exactly one of the value slices is
// populated, chosen by Kind; NA marks slots that hold no value.
type Column struct {
	Kind    Kind
	Ints    []int64
	Floats  []float64
	Bools   []bool
	Strings []string
	NA      []bool
}

// Len returns the number of slots in the column.
func (c *Column) Len() int {
	return len(c.NA)
}

func (c *Column) slice(idx []int) *Column {
	out := &Column{Kind: c.Kind, NA: make([]bool, 0, len(idx))}
	for _, i := range idx {
		out.NA = append(out.NA, c.NA[i])
		switch c.Kind {
		case KindInt:
			out.Ints = append(out.Ints, c.Ints[i])
		case KindFloat:
			out.Floats = append(out.Floats, c.Floats[i])
		case KindBool:
			out.Bools = append(out.Bools, c.Bools[i])
		case KindString:
			out.Strings = append(out.Strings, c.Strings[i])
		}
	}
	return out
}

// Frame is the fixed operation contract the evaluator consumes. The core
// never inspects a frame's representation beyond these operations.
type Frame interface {
	RowCount() int
	ColumnCount() int
	ColumnNames() []string
	Column(name string) (*Column, bool)
	Project(names []string) (Frame, error)
	Filter(mask []bool) (Frame, error)
}

// Mem is the in-memory columnar Frame implementation.
type Mem struct {
	names []string
	cols  map[string]*Column
	rows  int
}

// NewMem creates an empty in-memory frame.
func NewMem() *Mem {
	return &Mem{cols: make(map[string]*Column)}
}

// AddColumn appends a column. All columns must share one length.
func (m *Mem) AddColumn(name string, col *Column) error {
	if _, exists := m.cols[name]; exists {
		return fmt.Errorf("duplicate column %q", name)
	}
	if len(m.names) > 0 && col.Len() != m.rows {
		return fmt.Errorf("column %q has %d rows, frame has %d", name, col.Len(), m.rows)
	}
	m.rows = col.Len()
	m.names = append(m.names, name)
	m.cols[name] = col
	return nil
}

func (m *Mem) RowCount() int    { return m.rows }
func (m *Mem) ColumnCount() int { return len(m.names) }

func (m *Mem) ColumnNames() []string {
	out := make([]string, len(m.names))
	copy(out, m.names)
	return out
}

func (m *Mem) Column(name string) (*Column, bool) {
	col, ok := m.cols[name]
	return col, ok
}

// Project returns a new frame holding only the named columns, in the given
// order. Columns are shared, not copied; frames are immutable.
func (m *Mem) Project(names []string) (Frame, error) {
	out := NewMem()
	for _, name := range names {
		col, ok := m.cols[name]
		if !ok {
			return nil, fmt.Errorf("no column named %q", name)
		}
		if err := out.AddColumn(name, col); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// Filter returns a new frame holding the rows whose mask slot is true.
func (m *Mem) Filter(mask []bool) (Frame, error) {
	if len(mask) != m.rows {
		return nil, fmt.Errorf("mask has %d entries, frame has %d rows", len(mask), m.rows)
	}
	var idx []int
	for i, keep := range mask {
		if keep {
			idx = append(idx, i)
		}
	}
	out := NewMem()
	for _, name := range m.names {
		if err := out.AddColumn(name, m.cols[name].slice(idx)); err != nil {
			return nil, err
		}
	}
	out.rows = len(idx)
	return out, nil
}
