package frame

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/araddon/dateparse"
	"github.com/klauspost/compress/gzip"
)

// ReadCSV reads a CSV file (gzipped if the path ends in .gz) into a frame.
// The first record is the header. Column kinds are inferred: int, then
// float, then bool, then date (normalized to RFC 3339 strings), then string.
// Empty cells and the literal "NA" become typed NA slots.
func ReadCSV(path string) (Frame, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var r io.Reader = f
	if strings.HasSuffix(path, ".gz") {
		gz, err := gzip.NewReader(f)
		if err != nil {
			return nil, fmt.Errorf("gzip %s: %w", path, err)
		}
		defer gz.Close()
		r = gz
	}

	return ParseCSV(r)
}

// ParseCSV reads CSV data from r into a frame.
func ParseCSV(r io.Reader) (Frame, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	records, err := cr.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("csv: missing header row")
	}

	header := records[0]
	body := records[1:]

	m := NewMem()
	for i, name := range header {
		cells := make([]string, len(body))
		for j, rec := range body {
			if i < len(rec) {
				cells[j] = rec[i]
			}
		}
		if err := m.AddColumn(name, inferColumn(cells)); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func isNACell(s string) bool {
	return s == "" || s == "NA"
}

// inferColumn picks the narrowest kind every non-NA cell fits.
func inferColumn(cells []string) *Column {
	if col, ok := tryIntColumn(cells); ok {
		return col
	}
	if col, ok := tryFloatColumn(cells); ok {
		return col
	}
	if col, ok := tryBoolColumn(cells); ok {
		return col
	}
	if col, ok := tryDateColumn(cells); ok {
		return col
	}
	col := &Column{Kind: KindString, Strings: make([]string, len(cells)), NA: make([]bool, len(cells))}
	for i, s := range cells {
		if isNACell(s) {
			col.NA[i] = true
			continue
		}
		col.Strings[i] = s
	}
	return col
}

func tryIntColumn(cells []string) (*Column, bool) {
	col := &Column{Kind: KindInt, Ints: make([]int64, len(cells)), NA: make([]bool, len(cells))}
	any := false
	for i, s := range cells {
		if isNACell(s) {
			col.NA[i] = true
			continue
		}
		v, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return nil, false
		}
		col.Ints[i] = v
		any = true
	}
	return col, any
}

func tryFloatColumn(cells []string) (*Column, bool) {
	col := &Column{Kind: KindFloat, Floats: make([]float64, len(cells)), NA: make([]bool, len(cells))}
	any := false
	for i, s := range cells {
		if isNACell(s) {
			col.NA[i] = true
			continue
		}
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil, false
		}
		col.Floats[i] = v
		any = true
	}
	return col, any
}

func tryBoolColumn(cells []string) (*Column, bool) {
	col := &Column{Kind: KindBool, Bools: make([]bool, len(cells)), NA: make([]bool, len(cells))}
	any := false
	for i, s := range cells {
		if isNACell(s) {
			col.NA[i] = true
			continue
		}
		switch s {
		case "true", "TRUE", "True":
			col.Bools[i] = true
		case "false", "FALSE", "False":
			col.Bools[i] = false
		default:
			return nil, false
		}
		any = true
	}
	return col, any
}

// tryDateColumn accepts a column when every non-NA cell parses as a date,
// and normalizes the values to RFC 3339 strings.
func tryDateColumn(cells []string) (*Column, bool) {
	col := &Column{Kind: KindString, Strings: make([]string, len(cells)), NA: make([]bool, len(cells))}
	any := false
	for i, s := range cells {
		if isNACell(s) {
			col.NA[i] = true
			continue
		}
		t, err := dateparse.ParseAny(s)
		if err != nil {
			return nil, false
		}
		col.Strings[i] = t.UTC().Format(time.RFC3339)
		any = true
	}
	return col, any
}
