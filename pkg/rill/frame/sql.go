package frame

import (
	"database/sql"
	"fmt"
	"time"
)

// Query runs a SQL query against the given driver/DSN and materializes the
// result set as a frame. Supported drivers are registered in drivers.go.
func Query(driver, dsn, query string) (Frame, error) {
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, err
	}
	defer db.Close()

	return QueryDB(db, query)
}

// QueryDB materializes a query's result set over an existing connection.
func QueryDB(db *sql.DB, query string) (Frame, error) {
	rows, err := db.Query(query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	names, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	// Scan everything as generic values; drivers return a small set of
	// concrete Go types we normalize per column afterwards.
	var records [][]any
	for rows.Next() {
		record := make([]any, len(names))
		ptrs := make([]any, len(names))
		for i := range record {
			ptrs[i] = &record[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	m := NewMem()
	for i, name := range names {
		col, err := sqlColumn(records, i)
		if err != nil {
			return nil, fmt.Errorf("column %q: %w", name, err)
		}
		if err := m.AddColumn(name, col); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func sqlColumn(records [][]any, idx int) (*Column, error) {
	kind := KindString
	for _, rec := range records {
		v := rec[idx]
		if v == nil {
			continue
		}
		switch v.(type) {
		case int64:
			kind = KindInt
		case float64:
			kind = KindFloat
		case bool:
			kind = KindBool
		default:
			kind = KindString
		}
		break
	}

	col := &Column{Kind: kind, NA: make([]bool, len(records))}
	switch kind {
	case KindInt:
		col.Ints = make([]int64, len(records))
	case KindFloat:
		col.Floats = make([]float64, len(records))
	case KindBool:
		col.Bools = make([]bool, len(records))
	case KindString:
		col.Strings = make([]string, len(records))
	}

	for i, rec := range records {
		v := rec[idx]
		if v == nil {
			col.NA[i] = true
			continue
		}
		switch val := v.(type) {
		case int64:
			switch kind {
			case KindInt:
				col.Ints[i] = val
			case KindFloat:
				col.Floats[i] = float64(val)
			default:
				return nil, fmt.Errorf("mixed value kinds (int64 in %s column)", kind)
			}
		case float64:
			if kind != KindFloat {
				return nil, fmt.Errorf("mixed value kinds (float64 in %s column)", kind)
			}
			col.Floats[i] = val
		case bool:
			if kind != KindBool {
				return nil, fmt.Errorf("mixed value kinds (bool in %s column)", kind)
			}
			col.Bools[i] = val
		case string:
			if kind != KindString {
				return nil, fmt.Errorf("mixed value kinds (string in %s column)", kind)
			}
			col.Strings[i] = val
		case []byte:
			if kind != KindString {
				return nil, fmt.Errorf("mixed value kinds (bytes in %s column)", kind)
			}
			col.Strings[i] = string(val)
		case time.Time:
			if kind != KindString {
				return nil, fmt.Errorf("mixed value kinds (time in %s column)", kind)
			}
			col.Strings[i] = val.UTC().Format(time.RFC3339)
		default:
			return nil, fmt.Errorf("unsupported value type %T", v)
		}
	}
	return col, nil
}
