package evaluator

import (
	"github.com/rill-lang/rill/pkg/rill/frame"
)

// Dataframe builtins. The evaluator only sees the frame.Frame contract;
// CSV/YAML/SQL materialization lives in the frame package.

func builtinReadCSV(env *Environment, args ...Object) Object {
	path, ok := args[0].(*String)
	if !ok {
		return argTypeError("readCSV", "a path string", args[0])
	}
	f, err := frame.ReadCSV(path.Value)
	if err != nil {
		return newError("USER-0001", map[string]any{"Message": "readCSV: " + err.Error()})
	}
	return &DataFrame{Frame: f}
}

func builtinReadYAML(env *Environment, args ...Object) Object {
	path, ok := args[0].(*String)
	if !ok {
		return argTypeError("readYAML", "a path string", args[0])
	}
	f, err := frame.ReadYAML(path.Value)
	if err != nil {
		return newError("USER-0001", map[string]any{"Message": "readYAML: " + err.Error()})
	}
	return &DataFrame{Frame: f}
}

func builtinReadSQL(env *Environment, args ...Object) Object {
	driver, ok := args[0].(*String)
	if !ok {
		return argTypeError("readSQL", "a driver string", args[0])
	}
	dsn, ok := args[1].(*String)
	if !ok {
		return argTypeError("readSQL", "a DSN string", args[1])
	}
	query, ok := args[2].(*String)
	if !ok {
		return argTypeError("readSQL", "a query string", args[2])
	}
	f, err := frame.Query(driver.Value, dsn.Value, query.Value)
	if err != nil {
		return newError("USER-0001", map[string]any{"Message": "readSQL: " + err.Error()})
	}
	return &DataFrame{Frame: f}
}

func builtinRowCount(env *Environment, args ...Object) Object {
	df, ok := args[0].(*DataFrame)
	if !ok {
		return argTypeError("rowCount", "a dataframe", args[0])
	}
	return &Integer{Value: int64(df.Frame.RowCount())}
}

func builtinColumnCount(env *Environment, args ...Object) Object {
	df, ok := args[0].(*DataFrame)
	if !ok {
		return argTypeError("columnCount", "a dataframe", args[0])
	}
	return &Integer{Value: int64(df.Frame.ColumnCount())}
}

func builtinColumnNames(env *Environment, args ...Object) Object {
	df, ok := args[0].(*DataFrame)
	if !ok {
		return argTypeError("columnNames", "a dataframe", args[0])
	}
	names := df.Frame.ColumnNames()
	elements := make([]Object, len(names))
	for i, n := range names {
		elements[i] = &String{Value: n}
	}
	return &List{Elements: elements}
}

func builtinColumn(env *Environment, args ...Object) Object {
	df, ok := args[0].(*DataFrame)
	if !ok {
		return argTypeError("column", "a dataframe", args[0])
	}
	name, ok := args[1].(*String)
	if !ok {
		return argTypeError("column", "a column name", args[1])
	}
	col, found := df.Frame.Column(name.Value)
	if !found {
		return newError("KEY-0002", map[string]any{"Column": name.Value})
	}
	return columnVector(col)
}

func builtinSelectColumns(env *Environment, args ...Object) Object {
	df, ok := args[0].(*DataFrame)
	if !ok {
		return argTypeError("selectColumns", "a dataframe", args[0])
	}
	names := make([]string, 0, len(args)-1)
	for _, a := range args[1:] {
		name, ok := a.(*String)
		if !ok {
			return argTypeError("selectColumns", "column name strings", a)
		}
		if _, found := df.Frame.Column(name.Value); !found {
			return newError("KEY-0002", map[string]any{"Column": name.Value})
		}
		names = append(names, name.Value)
	}
	projected, err := df.Frame.Project(names)
	if err != nil {
		return newError("USER-0001", map[string]any{"Message": "selectColumns: " + err.Error()})
	}
	return &DataFrame{Frame: projected}
}

// builtinFilterRows keeps rows for which the predicate returns true. The
// predicate receives each row as a dictionary; NSE arguments like
// $price .> 10 arrive here already desugared into such a predicate.
func builtinFilterRows(env *Environment, args ...Object) Object {
	df, ok := args[0].(*DataFrame)
	if !ok {
		return argTypeError("filterRows", "a dataframe", args[0])
	}
	switch args[1].(type) {
	case *Function, *Builtin:
	default:
		return argTypeError("filterRows", "a predicate function", args[1])
	}

	mask := make([]bool, df.Frame.RowCount())
	for i := range mask {
		row := rowDict(df.Frame, i)
		result := applyFunction(args[1], []Object{row}, env)
		if isError(result) {
			return result
		}
		if result.Type() == NA_OBJ {
			return newError("TYPE-0003", nil)
		}
		keep, ok := result.(*Boolean)
		if !ok {
			return argTypeError("filterRows", "a boolean from the predicate", result)
		}
		mask[i] = keep.Value
	}

	filtered, err := df.Frame.Filter(mask)
	if err != nil {
		return newError("USER-0001", map[string]any{"Message": "filterRows: " + err.Error()})
	}
	return &DataFrame{Frame: filtered}
}

func builtinHead(env *Environment, args ...Object) Object {
	df, ok := args[0].(*DataFrame)
	if !ok {
		return argTypeError("head", "a dataframe", args[0])
	}
	n, ok := args[1].(*Integer)
	if !ok {
		return argTypeError("head", "an integer", args[1])
	}
	if n.Value < 0 {
		return newError("VAL-0003", map[string]any{
			"Function": "head",
			"Reason":   "row count must not be negative",
		})
	}

	mask := make([]bool, df.Frame.RowCount())
	for i := range mask {
		mask[i] = int64(i) < n.Value
	}
	limited, err := df.Frame.Filter(mask)
	if err != nil {
		return newError("USER-0001", map[string]any{"Message": "head: " + err.Error()})
	}
	return &DataFrame{Frame: limited}
}

// columnVector converts a frame column to a vector; NA slots keep the
// column's kind.
func columnVector(col *frame.Column) *Vector {
	var kind ObjectType
	var naKind NAKind
	switch col.Kind {
	case frame.KindInt:
		kind, naKind = INTEGER_OBJ, NAInt
	case frame.KindFloat:
		kind, naKind = FLOAT_OBJ, NAFloat
	case frame.KindBool:
		kind, naKind = BOOLEAN_OBJ, NABool
	default:
		kind, naKind = STRING_OBJ, NAString
	}

	elements := make([]Object, col.Len())
	for i := range elements {
		if col.NA[i] {
			elements[i] = &NA{Kind: naKind}
			continue
		}
		switch col.Kind {
		case frame.KindInt:
			elements[i] = &Integer{Value: col.Ints[i]}
		case frame.KindFloat:
			elements[i] = &Float{Value: col.Floats[i]}
		case frame.KindBool:
			elements[i] = nativeBoolToBoolean(col.Bools[i])
		default:
			elements[i] = &String{Value: col.Strings[i]}
		}
	}
	return &Vector{Kind: kind, Elements: elements}
}

// rowDict materializes one row as a dictionary of column name to value.
func rowDict(f frame.Frame, idx int) *Dict {
	pairs := make(map[string]Object, f.ColumnCount())
	for _, name := range f.ColumnNames() {
		col, _ := f.Column(name)
		if col.NA[idx] {
			switch col.Kind {
			case frame.KindInt:
				pairs[name] = &NA{Kind: NAInt}
			case frame.KindFloat:
				pairs[name] = &NA{Kind: NAFloat}
			case frame.KindBool:
				pairs[name] = &NA{Kind: NABool}
			default:
				pairs[name] = &NA{Kind: NAString}
			}
			continue
		}
		switch col.Kind {
		case frame.KindInt:
			pairs[name] = &Integer{Value: col.Ints[idx]}
		case frame.KindFloat:
			pairs[name] = &Float{Value: col.Floats[idx]}
		case frame.KindBool:
			pairs[name] = nativeBoolToBoolean(col.Bools[idx])
		default:
			pairs[name] = &String{Value: col.Strings[idx]}
		}
	}
	return &Dict{Pairs: pairs}
}
