package frame

import (
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"
)

// ReadYAML reads a YAML document holding a list of flat mappings (one per
// row) into a frame. Column order is the sorted union of keys; rows missing
// a key get an NA slot.
func ReadYAML(path string) (Frame, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseYAML(data)
}

// ParseYAML decodes YAML row data into a frame.
func ParseYAML(data []byte) (Frame, error) {
	var rows []map[string]any
	if err := yaml.Unmarshal(data, &rows); err != nil {
		return nil, fmt.Errorf("yaml: %w", err)
	}

	seen := make(map[string]bool)
	var names []string
	for _, row := range rows {
		for k := range row {
			if !seen[k] {
				seen[k] = true
				names = append(names, k)
			}
		}
	}
	sort.Strings(names)

	m := NewMem()
	for _, name := range names {
		col, err := yamlColumn(rows, name)
		if err != nil {
			return nil, err
		}
		if err := m.AddColumn(name, col); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func yamlColumn(rows []map[string]any, name string) (*Column, error) {
	// Kind is taken from the first present value; later rows must agree
	// (ints may widen into a float column).
	kind := KindString
	for _, row := range rows {
		v, ok := row[name]
		if !ok || v == nil {
			continue
		}
		switch v.(type) {
		case int, int64:
			kind = KindInt
		case float64:
			kind = KindFloat
		case bool:
			kind = KindBool
		case string:
			kind = KindString
		default:
			return nil, fmt.Errorf("yaml: column %q has non-scalar value %T", name, v)
		}
		break
	}

	col := &Column{Kind: kind, NA: make([]bool, len(rows))}
	switch kind {
	case KindInt:
		col.Ints = make([]int64, len(rows))
	case KindFloat:
		col.Floats = make([]float64, len(rows))
	case KindBool:
		col.Bools = make([]bool, len(rows))
	case KindString:
		col.Strings = make([]string, len(rows))
	}

	for i, row := range rows {
		v, ok := row[name]
		if !ok || v == nil {
			col.NA[i] = true
			continue
		}
		switch val := v.(type) {
		case int:
			if kind == KindFloat {
				col.Floats[i] = float64(val)
			} else if kind == KindInt {
				col.Ints[i] = int64(val)
			} else {
				return nil, fmt.Errorf("yaml: column %q mixes kinds", name)
			}
		case int64:
			if kind == KindFloat {
				col.Floats[i] = float64(val)
			} else if kind == KindInt {
				col.Ints[i] = val
			} else {
				return nil, fmt.Errorf("yaml: column %q mixes kinds", name)
			}
		case float64:
			if kind != KindFloat {
				return nil, fmt.Errorf("yaml: column %q mixes kinds", name)
			}
			col.Floats[i] = val
		case bool:
			if kind != KindBool {
				return nil, fmt.Errorf("yaml: column %q mixes kinds", name)
			}
			col.Bools[i] = val
		case string:
			if kind != KindString {
				return nil, fmt.Errorf("yaml: column %q mixes kinds", name)
			}
			col.Strings[i] = val
		default:
			return nil, fmt.Errorf("yaml: column %q has non-scalar value %T", name, v)
		}
	}
	return col, nil
}
