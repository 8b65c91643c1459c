package evaluator

import (
	"sort"
	"strings"
	"time"

	"github.com/araddon/dateparse"
	"github.com/goodsign/monday"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"

	rerrors "github.com/rill-lang/rill/pkg/rill/errors"
)

var builtins map[string]*Builtin

// getBuiltins returns the builtin registry, building it on first use.
func getBuiltins() map[string]*Builtin {
	if builtins == nil {
		builtins = map[string]*Builtin{
			"len":        {Name: "len", Arity: 1, Fn: builtinLen},
			"type":       {Name: "type", Arity: 1, AcceptsErrors: true, Fn: builtinType},
			"keys":       {Name: "keys", Arity: 1, Fn: builtinKeys},
			"values":     {Name: "values", Arity: 1, Fn: builtinValues},
			"names":      {Name: "names", Arity: 1, Fn: builtinNames},
			"vector":     {Name: "vector", Arity: 1, Variadic: true, Fn: builtinVector},
			"range":      {Name: "range", Arity: 1, Variadic: true, Fn: builtinRange},
			"paste":      {Name: "paste", Arity: 1, Variadic: true, Fn: builtinPaste},
			"join":       {Name: "join", Arity: 2, Fn: builtinJoin},
			"log":        {Name: "log", Arity: 0, Variadic: true, AcceptsErrors: true, Fn: builtinLog},
			"logLine":    {Name: "logLine", Arity: 0, Variadic: true, AcceptsErrors: true, Fn: builtinLogLine},
			"isNA":       {Name: "isNA", Arity: 1, Fn: builtinIsNA},
			"isError":    {Name: "isError", Arity: 1, AcceptsErrors: true, Fn: builtinIsError},
			"error":      {Name: "error", Arity: 1, Fn: builtinError},
			"errorCode":  {Name: "errorCode", Arity: 1, AcceptsErrors: true, Fn: builtinErrorCode},
			"errorMsg":   {Name: "errorMsg", Arity: 1, AcceptsErrors: true, Fn: builtinErrorMsg},
			"assert":     {Name: "assert", Arity: 1, Variadic: true, Fn: builtinAssert},
			"parseTime":  {Name: "parseTime", Arity: 1, Fn: builtinParseTime},
			"formatTime": {Name: "formatTime", Arity: 3, Fn: builtinFormatTime},
			"formatNumber": {
				Name: "formatNumber", Arity: 2, Fn: builtinFormatNumber,
			},

			"sum":  {Name: "sum", Arity: 1, Variadic: true, Fn: builtinSum},
			"mean": {Name: "mean", Arity: 1, Variadic: true, Fn: builtinMean},
			"min":  {Name: "min", Arity: 1, Variadic: true, Fn: builtinMin},
			"max":  {Name: "max", Arity: 1, Variadic: true, Fn: builtinMax},

			"readCSV":       {Name: "readCSV", Arity: 1, Fn: builtinReadCSV},
			"readYAML":      {Name: "readYAML", Arity: 1, Fn: builtinReadYAML},
			"readSQL":       {Name: "readSQL", Arity: 3, Fn: builtinReadSQL},
			"rowCount":      {Name: "rowCount", Arity: 1, Fn: builtinRowCount},
			"columnCount":   {Name: "columnCount", Arity: 1, Fn: builtinColumnCount},
			"columnNames":   {Name: "columnNames", Arity: 1, Fn: builtinColumnNames},
			"column":        {Name: "column", Arity: 2, Fn: builtinColumn},
			"selectColumns": {Name: "selectColumns", Arity: 2, Variadic: true, Fn: builtinSelectColumns},
			"filterRows":    {Name: "filterRows", Arity: 2, Fn: builtinFilterRows},
			"head":          {Name: "head", Arity: 2, Fn: builtinHead},

			"pipelineRun":    {Name: "pipelineRun", Arity: 1, Fn: builtinPipelineRun},
			"pipelineNode":   {Name: "pipelineNode", Arity: 2, Fn: builtinPipelineNode},
			"pipelineNodes":  {Name: "pipelineNodes", Arity: 1, Fn: builtinPipelineNodes},
			"pipelineDeps":   {Name: "pipelineDeps", Arity: 2, Fn: builtinPipelineDeps},
			"pipelineStates": {Name: "pipelineStates", Arity: 1, Fn: builtinPipelineStates},
		}
	}
	return builtins
}

// BuiltinNames lists registered builtins, sorted. Used for REPL completion.
func BuiltinNames() []string {
	names := make([]string, 0, len(getBuiltins()))
	for name := range getBuiltins() {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func argTypeError(fn, expected string, got Object) *Error {
	return newError("TYPE-0008", map[string]any{
		"Function": fn,
		"Expected": expected,
		"Got":      rerrors.TypeName(string(got.Type())),
	})
}

func builtinLen(env *Environment, args ...Object) Object {
	switch arg := args[0].(type) {
	case *String:
		return &Integer{Value: int64(len(arg.Value))}
	case *List:
		return &Integer{Value: int64(len(arg.Elements))}
	case *Vector:
		return &Integer{Value: int64(len(arg.Elements))}
	case *Dict:
		return &Integer{Value: int64(len(arg.Pairs))}
	default:
		return argTypeError("len", "a string, list, vector or dictionary", args[0])
	}
}

func builtinType(env *Environment, args ...Object) Object {
	return &String{Value: strings.ToLower(string(args[0].Type()))}
}

func builtinKeys(env *Environment, args ...Object) Object {
	dict, ok := args[0].(*Dict)
	if !ok {
		return argTypeError("keys", "a dictionary", args[0])
	}
	keys := make([]string, 0, len(dict.Pairs))
	for k := range dict.Pairs {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	elements := make([]Object, len(keys))
	for i, k := range keys {
		elements[i] = &String{Value: k}
	}
	return &List{Elements: elements}
}

func builtinValues(env *Environment, args ...Object) Object {
	dict, ok := args[0].(*Dict)
	if !ok {
		return argTypeError("values", "a dictionary", args[0])
	}
	keys := make([]string, 0, len(dict.Pairs))
	for k := range dict.Pairs {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	elements := make([]Object, len(keys))
	for i, k := range keys {
		elements[i] = dict.Pairs[k]
	}
	return &List{Elements: elements}
}

func builtinNames(env *Environment, args ...Object) Object {
	list, ok := args[0].(*List)
	if !ok {
		return argTypeError("names", "a list", args[0])
	}
	elements := make([]Object, len(list.Elements))
	for i := range list.Elements {
		name := ""
		if list.Names != nil {
			name = list.Names[i]
		}
		elements[i] = &String{Value: name}
	}
	return &List{Elements: elements}
}

// builtinVector builds a homogeneous vector. Mixed int/float widens to
// float; any other kind mix is an error. NA slots adopt the vector's kind.
func builtinVector(env *Environment, args ...Object) Object {
	var kind ObjectType
	hasFloat := false
	for _, a := range args {
		switch a.Type() {
		case INTEGER_OBJ, FLOAT_OBJ:
			if a.Type() == FLOAT_OBJ {
				hasFloat = true
			}
			if kind == "" || kind == INTEGER_OBJ || kind == FLOAT_OBJ {
				kind = INTEGER_OBJ
				continue
			}
			return vectorKindError(args)
		case BOOLEAN_OBJ, STRING_OBJ:
			if kind == "" {
				kind = a.Type()
			} else if kind != a.Type() {
				return vectorKindError(args)
			}
		case NA_OBJ:
		default:
			return vectorKindError(args)
		}
	}
	if kind == INTEGER_OBJ && hasFloat {
		kind = FLOAT_OBJ
	}
	if kind == "" {
		// All-NA input; default to a float vector.
		kind = FLOAT_OBJ
	}

	elements := make([]Object, len(args))
	for i, a := range args {
		switch a := a.(type) {
		case *Integer:
			if kind == FLOAT_OBJ {
				elements[i] = &Float{Value: float64(a.Value)}
			} else {
				elements[i] = a
			}
		case *NA:
			elements[i] = &NA{Kind: naKindFor(kind)}
		default:
			elements[i] = a
		}
	}
	return &Vector{Kind: kind, Elements: elements}
}

func vectorKindError(args []Object) *Error {
	kinds := make([]string, 0, len(args))
	seen := make(map[string]bool)
	for _, a := range args {
		name := strings.ToLower(string(a.Type()))
		if !seen[name] {
			seen[name] = true
			kinds = append(kinds, name)
		}
	}
	return newError("VAL-0004", map[string]any{"Kinds": strings.Join(kinds, ", ")})
}

func naKindFor(kind ObjectType) NAKind {
	switch kind {
	case INTEGER_OBJ:
		return NAInt
	case FLOAT_OBJ:
		return NAFloat
	case BOOLEAN_OBJ:
		return NABool
	case STRING_OBJ:
		return NAString
	default:
		return NAGeneric
	}
}

// builtinRange yields [0, n) for one argument, [a, b) for two.
func builtinRange(env *Environment, args ...Object) Object {
	if len(args) > 2 {
		return newError("ARITY-0001", map[string]any{
			"Function": "range",
			"Want":     "1 or 2",
			"Got":      len(args),
		})
	}
	var lo, hi int64
	first, ok := args[0].(*Integer)
	if !ok {
		return argTypeError("range", "an integer", args[0])
	}
	if len(args) == 1 {
		hi = first.Value
	} else {
		second, ok := args[1].(*Integer)
		if !ok {
			return argTypeError("range", "an integer", args[1])
		}
		lo, hi = first.Value, second.Value
	}

	var elements []Object
	for i := lo; i < hi; i++ {
		elements = append(elements, &Integer{Value: i})
	}
	return &List{Elements: elements}
}

// builtinPaste concatenates scalar values as strings. This and join are the
// only string concatenation; '+' refuses strings.
func builtinPaste(env *Environment, args ...Object) Object {
	var sb strings.Builder
	for _, a := range args {
		switch a := a.(type) {
		case *String:
			sb.WriteString(a.Value)
		case *Integer, *Float, *Boolean:
			sb.WriteString(a.Inspect())
		case *NA:
			return newError("TYPE-0003", nil)
		default:
			return argTypeError("paste", "scalar values", a)
		}
	}
	return &String{Value: sb.String()}
}

func builtinJoin(env *Environment, args ...Object) Object {
	list, ok := args[0].(*List)
	if !ok {
		return argTypeError("join", "a list of strings", args[0])
	}
	sep, ok := args[1].(*String)
	if !ok {
		return argTypeError("join", "a string separator", args[1])
	}
	parts := make([]string, len(list.Elements))
	for i, e := range list.Elements {
		s, ok := e.(*String)
		if !ok {
			if e.Type() == NA_OBJ {
				return newError("TYPE-0003", nil)
			}
			return argTypeError("join", "a list of strings", e)
		}
		parts[i] = s.Value
	}
	return &String{Value: strings.Join(parts, sep.Value)}
}

func builtinLog(env *Environment, args ...Object) Object {
	values := make([]interface{}, len(args))
	for i, a := range args {
		values[i] = a.Inspect()
	}
	env.Logger().Log(values...)
	return NULL
}

func builtinLogLine(env *Environment, args ...Object) Object {
	values := make([]interface{}, len(args))
	for i, a := range args {
		values[i] = a.Inspect()
	}
	env.Logger().LogLine(values...)
	return NULL
}

func builtinIsNA(env *Environment, args ...Object) Object {
	return nativeBoolToBoolean(args[0].Type() == NA_OBJ)
}

func builtinIsError(env *Environment, args ...Object) Object {
	return nativeBoolToBoolean(args[0].Type() == ERROR_OBJ)
}

func builtinError(env *Environment, args ...Object) Object {
	msg, ok := args[0].(*String)
	if !ok {
		return argTypeError("error", "a string message", args[0])
	}
	return newError("USER-0001", map[string]any{"Message": msg.Value})
}

func builtinErrorCode(env *Environment, args ...Object) Object {
	err, ok := args[0].(*Error)
	if !ok {
		return argTypeError("errorCode", "an error", args[0])
	}
	return &String{Value: string(err.Code)}
}

func builtinErrorMsg(env *Environment, args ...Object) Object {
	err, ok := args[0].(*Error)
	if !ok {
		return argTypeError("errorMsg", "an error", args[0])
	}
	return &String{Value: err.Message}
}

func builtinAssert(env *Environment, args ...Object) Object {
	if len(args) > 2 {
		return newError("ARITY-0001", map[string]any{
			"Function": "assert",
			"Want":     "1 or 2",
			"Got":      len(args),
		})
	}
	cond, ok := args[0].(*Boolean)
	if !ok {
		if args[0].Type() == NA_OBJ {
			return newError("TYPE-0003", nil)
		}
		return argTypeError("assert", "a boolean condition", args[0])
	}
	if cond.Value {
		return NULL
	}
	data := map[string]any{}
	if len(args) == 2 {
		detail, ok := args[1].(*String)
		if !ok {
			return argTypeError("assert", "a string detail", args[1])
		}
		data["Detail"] = detail.Value
	}
	return newError("ASSERT-0001", data)
}

// builtinParseTime parses a date/time string in any common layout and
// returns the Unix timestamp in seconds (UTC).
func builtinParseTime(env *Environment, args ...Object) Object {
	s, ok := args[0].(*String)
	if !ok {
		return argTypeError("parseTime", "a string", args[0])
	}
	t, err := dateparse.ParseAny(s.Value)
	if err != nil {
		return newError("VAL-0003", map[string]any{
			"Function": "parseTime",
			"Reason":   err.Error(),
		})
	}
	return &Integer{Value: t.UTC().Unix()}
}

// builtinFormatTime formats a Unix timestamp with a Go reference layout and
// a locale, e.g. formatTime(ts, "2 January 2006", "fr_FR").
func builtinFormatTime(env *Environment, args ...Object) Object {
	ts, ok := args[0].(*Integer)
	if !ok {
		return argTypeError("formatTime", "an integer timestamp", args[0])
	}
	layout, ok := args[1].(*String)
	if !ok {
		return argTypeError("formatTime", "a layout string", args[1])
	}
	locale, ok := args[2].(*String)
	if !ok {
		return argTypeError("formatTime", "a locale string", args[2])
	}
	t := time.Unix(ts.Value, 0).UTC()
	return &String{Value: monday.Format(t, layout.Value, monday.Locale(locale.Value))}
}

// builtinFormatNumber renders a number with locale-aware grouping, e.g.
// formatNumber(1234567, "de") gives "1.234.567".
func builtinFormatNumber(env *Environment, args ...Object) Object {
	var value interface{}
	switch v := args[0].(type) {
	case *Integer:
		value = v.Value
	case *Float:
		value = v.Value
	default:
		if args[0].Type() == NA_OBJ {
			return newError("TYPE-0003", nil)
		}
		return argTypeError("formatNumber", "a number", args[0])
	}
	locale, ok := args[1].(*String)
	if !ok {
		return argTypeError("formatNumber", "a locale string", args[1])
	}
	tag, err := language.Parse(locale.Value)
	if err != nil {
		return newError("VAL-0003", map[string]any{
			"Function": "formatNumber",
			"Reason":   "unknown locale " + locale.Value,
		})
	}
	p := message.NewPrinter(tag)
	return &String{Value: p.Sprintf("%v", number.Decimal(value))}
}

func builtinPipelineRun(env *Environment, args ...Object) Object {
	p, ok := args[0].(*Pipeline)
	if !ok {
		return argTypeError("pipelineRun", "a pipeline", args[0])
	}
	return p.Run()
}

func builtinPipelineNode(env *Environment, args ...Object) Object {
	p, ok := args[0].(*Pipeline)
	if !ok {
		return argTypeError("pipelineNode", "a pipeline", args[0])
	}
	name, ok := args[1].(*String)
	if !ok {
		return argTypeError("pipelineNode", "a node name", args[1])
	}
	return p.Node(name.Value)
}

func builtinPipelineNodes(env *Environment, args ...Object) Object {
	p, ok := args[0].(*Pipeline)
	if !ok {
		return argTypeError("pipelineNodes", "a pipeline", args[0])
	}
	names := p.NodeNames()
	elements := make([]Object, len(names))
	for i, n := range names {
		elements[i] = &String{Value: n}
	}
	return &List{Elements: elements}
}

func builtinPipelineDeps(env *Environment, args ...Object) Object {
	p, ok := args[0].(*Pipeline)
	if !ok {
		return argTypeError("pipelineDeps", "a pipeline", args[0])
	}
	name, ok := args[1].(*String)
	if !ok {
		return argTypeError("pipelineDeps", "a node name", args[1])
	}
	deps, errObj := p.DepsOf(name.Value)
	if errObj != nil {
		return errObj
	}
	elements := make([]Object, len(deps))
	for i, d := range deps {
		elements[i] = &String{Value: d}
	}
	return &List{Elements: elements}
}

func builtinPipelineStates(env *Environment, args ...Object) Object {
	p, ok := args[0].(*Pipeline)
	if !ok {
		return argTypeError("pipelineStates", "a pipeline", args[0])
	}
	return p.States()
}
