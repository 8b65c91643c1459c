package evaluator

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/rill-lang/rill/pkg/rill/ast"
	rerrors "github.com/rill-lang/rill/pkg/rill/errors"
	"github.com/rill-lang/rill/pkg/rill/frame"
)

// ObjectType represents the type of objects in our language
type ObjectType string

const (
	INTEGER_OBJ    = "INTEGER"
	FLOAT_OBJ      = "FLOAT"
	BOOLEAN_OBJ    = "BOOLEAN"
	STRING_OBJ     = "STRING"
	NULL_OBJ       = "NULL"
	NA_OBJ         = "NA"
	RETURN_OBJ     = "RETURN_VALUE"
	ERROR_OBJ      = "ERROR"
	FUNCTION_OBJ   = "FUNCTION"
	BUILTIN_OBJ    = "BUILTIN"
	LIST_OBJ       = "LIST"
	DICTIONARY_OBJ = "DICTIONARY"
	VECTOR_OBJ     = "VECTOR"
	DATAFRAME_OBJ  = "DATAFRAME"
	COLUMN_OBJ     = "COLUMN_SYMBOL"
	PIPELINE_OBJ   = "PIPELINE"
)

// Object represents all values in our language
type Object interface {
	Type() ObjectType
	Inspect() string
}

// Integer represents integer objects
type Integer struct {
	Value int64
}

func (i *Integer) Inspect() string  { return strconv.FormatInt(i.Value, 10) }
func (i *Integer) Type() ObjectType { return INTEGER_OBJ }

// Float represents floating-point objects
type Float struct {
	Value float64
}

func (f *Float) Inspect() string  { return fmt.Sprintf("%g", f.Value) }
func (f *Float) Type() ObjectType { return FLOAT_OBJ }

// Boolean represents boolean objects
type Boolean struct {
	Value bool
}

func (b *Boolean) Inspect() string  { return strconv.FormatBool(b.Value) }
func (b *Boolean) Type() ObjectType { return BOOLEAN_OBJ }

// String represents string objects
type String struct {
	Value string
}

func (s *String) Inspect() string  { return `"` + s.Value + `"` }
func (s *String) Type() ObjectType { return STRING_OBJ }

// Null represents the null object
type Null struct{}

func (n *Null) Inspect() string  { return "null" }
func (n *Null) Type() ObjectType { return NULL_OBJ }

// NAKind distinguishes the typed missing-value markers. NA is always typed;
// there is no bare missing value.
type NAKind int

const (
	NAGeneric NAKind = iota
	NAInt
	NAFloat
	NABool
	NAString
)

// NA represents a typed missing value
type NA struct {
	Kind NAKind
}

func (na *NA) Type() ObjectType { return NA_OBJ }
func (na *NA) Inspect() string {
	switch na.Kind {
	case NAInt:
		return "NA_int"
	case NAFloat:
		return "NA_float"
	case NABool:
		return "NA_bool"
	case NAString:
		return "NA_str"
	default:
		return "NA"
	}
}

// ReturnValue wraps other objects when returned
type ReturnValue struct {
	Value Object
}

func (rv *ReturnValue) Type() ObjectType { return RETURN_OBJ }
func (rv *ReturnValue) Inspect() string  { return rv.Value.Inspect() }

// Error represents error objects. Errors are ordinary first-class values
// carrying a code from the closed taxonomy; they are never thrown.
type Error struct {
	Code    rerrors.Code
	ID      string // catalog id, e.g. "TYPE-0003"
	Message string
	Hints   []string
	Line    int
	Column  int
	Data    map[string]any
}

func (e *Error) Type() ObjectType { return ERROR_OBJ }
func (e *Error) Inspect() string {
	return fmt.Sprintf("Error(%s: %q)", e.Code, e.Message)
}

// ToRillError converts this Error for structured rendering by hosts.
func (e *Error) ToRillError() *rerrors.RillError {
	code := e.Code
	if code == "" {
		code = rerrors.CodeGeneric
	}
	return &rerrors.RillError{
		Code:    code,
		ID:      e.ID,
		Message: e.Message,
		Hints:   e.Hints,
		Line:    e.Line,
		Column:  e.Column,
		Data:    e.Data,
	}
}

// Function represents closures: parameters, body, and the defining
// environment captured by reference.
type Function struct {
	Params []*ast.Identifier
	Body   *ast.BlockStatement
	Env    *Environment
}

func (f *Function) Type() ObjectType { return FUNCTION_OBJ }
func (f *Function) Inspect() string {
	params := []string{}
	for _, p := range f.Params {
		params = append(params, p.Value)
	}
	return fmt.Sprintf("fn(%s) {...}", strings.Join(params, ", "))
}

// BuiltinFunction is the native implementation of a builtin
type BuiltinFunction func(env *Environment, args ...Object) Object

// Builtin represents built-in function objects. Arity is the exact argument
// count, or the minimum when Variadic is set. AcceptsErrors marks the
// error-inspecting builtins: their arguments may be error values, where every
// other callee fails fast.
type Builtin struct {
	Name          string
	Arity         int
	Variadic      bool
	AcceptsErrors bool
	Fn            BuiltinFunction
}

func (b *Builtin) Type() ObjectType { return BUILTIN_OBJ }
func (b *Builtin) Inspect() string  { return "builtin " + b.Name }

// List represents ordered, heterogeneous lists with optionally named
// elements. Names is nil when no element is named; otherwise it has one
// entry per element ("" for unnamed).
type List struct {
	Elements []Object
	Names    []string
}

func (l *List) Type() ObjectType { return LIST_OBJ }
func (l *List) Inspect() string {
	var out strings.Builder
	elements := []string{}
	for i, e := range l.Elements {
		name := ""
		if l.Names != nil {
			name = l.Names[i]
		}
		if name != "" {
			elements = append(elements, name+": "+e.Inspect())
		} else {
			elements = append(elements, e.Inspect())
		}
	}
	out.WriteString("[")
	out.WriteString(strings.Join(elements, ", "))
	out.WriteString("]")
	return out.String()
}

// Dict represents dictionaries with unique string keys. Insertion order is
// irrelevant; Inspect sorts keys for stable output.
type Dict struct {
	Pairs map[string]Object
}

func (d *Dict) Type() ObjectType { return DICTIONARY_OBJ }
func (d *Dict) Inspect() string {
	keys := make([]string, 0, len(d.Pairs))
	for key := range d.Pairs {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	pairs := []string{}
	for _, key := range keys {
		pairs = append(pairs, key+": "+d.Pairs[key].Inspect())
	}
	return "{" + strings.Join(pairs, ", ") + "}"
}

// Vector represents a homogeneous array of one scalar kind. Individual slots
// may be NA (of the matching kind); nothing else is permitted.
type Vector struct {
	Kind     ObjectType // INTEGER_OBJ, FLOAT_OBJ, BOOLEAN_OBJ or STRING_OBJ
	Elements []Object
}

func (v *Vector) Type() ObjectType { return VECTOR_OBJ }
func (v *Vector) Inspect() string {
	elements := []string{}
	for _, e := range v.Elements {
		elements = append(elements, e.Inspect())
	}
	return "vector(" + strings.Join(elements, ", ") + ")"
}

// DataFrame is an opaque handle into the columnar table backend. The
// evaluator only uses the frame.Frame contract.
type DataFrame struct {
	Frame frame.Frame
}

func (df *DataFrame) Type() ObjectType { return DATAFRAME_OBJ }
func (df *DataFrame) Inspect() string {
	return fmt.Sprintf("DataFrame(%d rows, %d cols)", df.Frame.RowCount(), df.Frame.ColumnCount())
}

// ColumnSymbol is the internal NSE artifact a bare $name evaluates to. It
// only appears transiently; desugared call arguments never produce one.
type ColumnSymbol struct {
	Name string
}

func (cs *ColumnSymbol) Type() ObjectType { return COLUMN_OBJ }
func (cs *ColumnSymbol) Inspect() string  { return "$" + cs.Name }

var (
	NULL  = &Null{}
	TRUE  = &Boolean{Value: true}
	FALSE = &Boolean{Value: false}
)

// Logger interface for log()/logLine() output
type Logger interface {
	Log(values ...interface{})
	LogLine(values ...interface{})
}

// defaultStdoutLogger is the default logger that writes to stdout
type defaultStdoutLogger struct{}

func (l *defaultStdoutLogger) Log(values ...interface{}) {
	for i, v := range values {
		if i > 0 {
			fmt.Print(" ")
		}
		fmt.Print(v)
	}
}

func (l *defaultStdoutLogger) LogLine(values ...interface{}) {
	l.Log(values...)
	fmt.Println()
}

// DefaultLogger is the default stdout logger
var DefaultLogger Logger = &defaultStdoutLogger{}

// Eval evaluates an AST node in the given environment. Errors are returned
// as ordinary *Error objects, never as Go errors or panics.
func Eval(node ast.Node, env *Environment) Object {
	switch node := node.(type) {
	case *ast.Program:
		result, _ := EvalProgram(node, env)
		return result

	case *ast.ExpressionStatement:
		return Eval(node.Expression, env)

	case *ast.BlockStatement:
		return evalBlock(node, env)

	case *ast.IntegerLiteral:
		return &Integer{Value: node.Value}

	case *ast.FloatLiteral:
		return &Float{Value: node.Value}

	case *ast.StringLiteral:
		return &String{Value: node.Value}

	case *ast.BooleanLiteral:
		return nativeBoolToBoolean(node.Value)

	case *ast.NullLiteral:
		return NULL

	case *ast.NALiteral:
		return naFromAST(node.Kind)

	case *ast.ColumnRef:
		return &ColumnSymbol{Name: node.Name}

	case *ast.Identifier:
		return evalIdentifier(node, env)

	case *ast.ListLiteral:
		return evalListLiteral(node, env)

	case *ast.DictLiteral:
		return evalDictLiteral(node, env)

	case *ast.FunctionLiteral:
		return &Function{Params: node.Params, Body: node.Body, Env: env}

	case *ast.PrefixExpression:
		right := Eval(node.Right, env)
		if isError(right) {
			return right
		}
		return withPosition(evalPrefixExpression(node.Operator, right), node.Token)

	case *ast.InfixExpression:
		if node.Operator == "&&" || node.Operator == "||" {
			return evalLogicalExpression(node, env)
		}
		if isBroadcastOperator(node.Operator) {
			left := Eval(node.Left, env)
			if isError(left) {
				return left
			}
			right := Eval(node.Right, env)
			if isError(right) {
				return right
			}
			return withPosition(evalBroadcastExpression(node.Operator, left, right), node.Token)
		}
		left := Eval(node.Left, env)
		if isError(left) {
			return left
		}
		right := Eval(node.Right, env)
		if isError(right) {
			return right
		}
		return withPosition(evalInfixExpression(node.Operator, left, right), node.Token)

	case *ast.PipeExpression:
		return evalPipeExpression(node, env)

	case *ast.IfExpression:
		return evalIfExpression(node, env)

	case *ast.CallExpression:
		return evalCallExpression(node, env)

	case *ast.IndexExpression:
		return evalIndexExpression(node, env)

	case *ast.DotExpression:
		return evalDotExpression(node, env)

	case *ast.PipelineLiteral:
		return evalPipelineLiteral(node, env)

	case nil:
		return NULL

	default:
		return newError("USER-0001", map[string]any{
			"Message": fmt.Sprintf("cannot evaluate node %T", node),
		})
	}
}

// EvalProgram evaluates top-level statements and returns the final
// environment alongside the result, so hosts (REPL) can keep bindings alive
// across inputs.
func EvalProgram(program *ast.Program, env *Environment) (Object, *Environment) {
	var result Object = NULL

	for _, stmt := range program.Statements {
		result, env = evalStatement(stmt, env)

		switch r := result.(type) {
		case *ReturnValue:
			return r.Value, env
		case *Error:
			// An error produced by a bare expression is an ordinary value
			// and the program flows past it. A failed statement (bad let or
			// set target) aborts.
			if _, bare := stmt.(*ast.ExpressionStatement); !bare {
				return r, env
			}
		}
	}

	return result, env
}

func evalStatement(stmt ast.Statement, env *Environment) (Object, *Environment) {
	switch stmt := stmt.(type) {
	case *ast.LetStatement:
		// Errors are ordinary values; binding one is how callers keep an
		// error around to inspect. Only a failed bind aborts.
		val := Eval(stmt.Value, env)
		newEnv, err := env.Bind(stmt.Name.Value, val)
		if err != nil {
			return withPosition(err, stmt.Token), env
		}
		return NULL, newEnv

	case *ast.SetStatement:
		val := Eval(stmt.Value, env)
		if err := env.Overwrite(stmt.Name.Value, val); err != nil {
			return withPosition(err, stmt.Token), env
		}
		return NULL, env

	case *ast.ReturnStatement:
		val := Eval(stmt.ReturnValue, env)
		return &ReturnValue{Value: val}, env

	default:
		return Eval(stmt, env), env
	}
}

// evalBlock evaluates a block in a fresh frame. let/set inside the block
// cannot leak out; ReturnValue and Error pass through unwrapped.
func evalBlock(block *ast.BlockStatement, env *Environment) Object {
	env = env.Extend()
	var result Object = NULL

	for _, stmt := range block.Statements {
		result, env = evalStatement(stmt, env)

		if result != nil && !flowsPast(stmt, result) {
			rt := result.Type()
			if rt == RETURN_OBJ || rt == ERROR_OBJ {
				return result
			}
		}
	}

	return result
}

// flowsPast reports whether an error result should be carried forward as a
// plain value instead of aborting the surrounding statement list. That is
// the case for bare expression statements only; a failed let/set/return is
// a statement failure.
func flowsPast(stmt ast.Statement, result Object) bool {
	if result.Type() != ERROR_OBJ {
		return false
	}
	_, bare := stmt.(*ast.ExpressionStatement)
	return bare
}

func evalIdentifier(node *ast.Identifier, env *Environment) Object {
	if val, ok := env.Get(node.Value); ok {
		return val
	}

	if builtin, ok := getBuiltins()[node.Value]; ok {
		return builtin
	}

	return newErrorWithPos("NAME-0001", node.Token, map[string]any{"Name": node.Value})
}

func evalListLiteral(node *ast.ListLiteral, env *Environment) Object {
	list := &List{}
	named := false
	for i, e := range node.Elements {
		evaluated := Eval(e, env)
		if isError(evaluated) {
			// Strict construction: the error is the value of the whole
			// literal, not an element of it.
			return evaluated
		}
		list.Elements = append(list.Elements, evaluated)
		if node.Names[i] != "" {
			named = true
		}
	}
	if named {
		list.Names = make([]string, len(node.Names))
		copy(list.Names, node.Names)
	}
	return list
}

func evalDictLiteral(node *ast.DictLiteral, env *Environment) Object {
	dict := &Dict{Pairs: make(map[string]Object, len(node.Pairs))}
	for _, key := range node.Keys {
		evaluated := Eval(node.Pairs[key], env)
		if isError(evaluated) {
			return evaluated
		}
		dict.Pairs[key] = evaluated
	}
	return dict
}

func evalIfExpression(ie *ast.IfExpression, env *Environment) Object {
	condition := Eval(ie.Condition, env)
	if isError(condition) {
		return condition
	}
	if condition.Type() == NA_OBJ {
		return newErrorWithPos("TYPE-0003", ie.Token, nil)
	}
	if condition.Type() != BOOLEAN_OBJ {
		return newErrorWithPos("TYPE-0008", ie.Token, map[string]any{
			"Function": "if",
			"Expected": "a boolean condition",
			"Got":      rerrors.TypeName(string(condition.Type())),
		})
	}

	if condition == TRUE {
		return Eval(ie.Consequence, env)
	}
	if ie.Alternative != nil {
		return Eval(ie.Alternative, env)
	}
	return NULL
}

func evalCallExpression(node *ast.CallExpression, env *Environment) Object {
	fn := Eval(node.Function, env)
	if isError(fn) {
		return fn
	}

	args, argErr := evalArguments(node.Arguments, env)
	if argErr != nil && !acceptsErrorArgs(fn) {
		return argErr
	}

	return withPosition(applyFunction(fn, args, env), node.Token)
}

// evalArguments desugars NSE column references and then evaluates the
// arguments eagerly, left to right. The first error value stops evaluation
// of the remaining arguments; it is returned alongside the arguments so the
// caller can decide whether the callee still gets to see it.
func evalArguments(exps []ast.Expression, env *Environment) ([]Object, *Error) {
	var result []Object

	for _, e := range exps {
		if usesNSE(e) {
			e = desugarNSE(e)
		}
		evaluated := Eval(e, env)
		result = append(result, evaluated)
		if err, ok := evaluated.(*Error); ok {
			return result, err
		}
	}

	return result, nil
}

// acceptsErrorArgs reports whether a callee may receive error values as
// arguments. Only builtins that inspect errors qualify; without them no
// program could ever look inside an error value.
func acceptsErrorArgs(fn Object) bool {
	b, ok := fn.(*Builtin)
	return ok && b.AcceptsErrors
}

func applyFunction(fn Object, args []Object, env *Environment) Object {
	switch fn := fn.(type) {
	case *Function:
		if len(args) != len(fn.Params) {
			return newError("ARITY-0001", map[string]any{
				"Function": "function",
				"Want":     len(fn.Params),
				"Got":      len(args),
			})
		}
		fnEnv := fn.Env.Extend()
		for i, param := range fn.Params {
			bound, err := fnEnv.Bind(param.Value, args[i])
			if err != nil {
				return err
			}
			fnEnv = bound
		}
		evaluated := evalBlockInPlace(fn.Body, fnEnv)
		return unwrapReturnValue(evaluated)

	case *Builtin:
		if fn.Variadic {
			if len(args) < fn.Arity {
				return newError("ARITY-0002", map[string]any{
					"Function": fn.Name,
					"Min":      fn.Arity,
					"Got":      len(args),
				})
			}
		} else if len(args) != fn.Arity {
			return newError("ARITY-0001", map[string]any{
				"Function": fn.Name,
				"Want":     fn.Arity,
				"Got":      len(args),
			})
		}
		return fn.Fn(env, args...)

	default:
		return newError("TYPE-0009", map[string]any{
			"Type": rerrors.TypeName(string(fn.Type())),
		})
	}
}

// evalBlockInPlace evaluates a function body without pushing another frame;
// the caller already extended the closure environment with the parameters.
func evalBlockInPlace(block *ast.BlockStatement, env *Environment) Object {
	var result Object = NULL

	for _, stmt := range block.Statements {
		result, env = evalStatement(stmt, env)

		if result != nil && !flowsPast(stmt, result) {
			rt := result.Type()
			if rt == RETURN_OBJ || rt == ERROR_OBJ {
				return result
			}
		}
	}

	return result
}

func evalIndexExpression(node *ast.IndexExpression, env *Environment) Object {
	left := Eval(node.Left, env)
	if isError(left) {
		return left
	}
	index := Eval(node.Index, env)
	if isError(index) {
		return index
	}

	switch left := left.(type) {
	case *List:
		return withPosition(indexSequence(left.Elements, index), node.Token)
	case *Vector:
		return withPosition(indexSequence(left.Elements, index), node.Token)
	case *Dict:
		key, ok := index.(*String)
		if !ok {
			return newErrorWithPos("TYPE-0001", node.Token, map[string]any{
				"Operator":  "[]",
				"LeftType":  rerrors.TypeName(string(left.Type())),
				"RightType": rerrors.TypeName(string(index.Type())),
			})
		}
		val, found := left.Pairs[key.Value]
		if !found {
			return newErrorWithPos("KEY-0001", node.Token, map[string]any{"Key": key.Value})
		}
		return val
	default:
		return newErrorWithPos("TYPE-0010", node.Token, map[string]any{
			"Type": rerrors.TypeName(string(left.Type())),
		})
	}
}

func indexSequence(elements []Object, index Object) Object {
	idx, ok := index.(*Integer)
	if !ok {
		return newError("TYPE-0008", map[string]any{
			"Function": "index",
			"Expected": "an integer",
			"Got":      rerrors.TypeName(string(index.Type())),
		})
	}
	if idx.Value < 0 || idx.Value >= int64(len(elements)) {
		return newError("VAL-0002", map[string]any{
			"Index":  idx.Value,
			"Length": len(elements),
		})
	}
	return elements[idx.Value]
}

func evalDotExpression(node *ast.DotExpression, env *Environment) Object {
	left := Eval(node.Left, env)
	if isError(left) {
		return left
	}

	dict, ok := left.(*Dict)
	if !ok {
		return newErrorWithPos("TYPE-0010", node.Token, map[string]any{
			"Type": rerrors.TypeName(string(left.Type())),
		})
	}
	val, found := dict.Pairs[node.Key]
	if !found {
		return newErrorWithPos("KEY-0001", node.Token, map[string]any{"Key": node.Key})
	}
	return val
}

func naFromAST(kind ast.NAKind) *NA {
	switch kind {
	case ast.NAInt:
		return &NA{Kind: NAInt}
	case ast.NAFloat:
		return &NA{Kind: NAFloat}
	case ast.NABool:
		return &NA{Kind: NABool}
	case ast.NAString:
		return &NA{Kind: NAString}
	default:
		return &NA{Kind: NAGeneric}
	}
}

func unwrapReturnValue(obj Object) Object {
	if returnValue, ok := obj.(*ReturnValue); ok {
		return returnValue.Value
	}
	return obj
}

func isError(obj Object) bool {
	if obj != nil {
		return obj.Type() == ERROR_OBJ
	}
	return false
}

func nativeBoolToBoolean(input bool) *Boolean {
	if input {
		return TRUE
	}
	return FALSE
}

func isBroadcastOperator(op string) bool {
	switch op {
	case ".+", ".-", ".*", "./", ".==", ".>", ".<", ".&", ".|":
		return true
	}
	return false
}
