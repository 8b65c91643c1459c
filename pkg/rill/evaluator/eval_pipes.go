package evaluator

import (
	"github.com/rill-lang/rill/pkg/rill/ast"
)

// evalPipeExpression implements '|>' and '?|>'. Both insert the left value
// as the first argument of the right-hand call. '|>' short-circuits: an
// error on the left is returned without touching the right side. '?|>'
// always invokes, handing the error to the callee as an ordinary value.
func evalPipeExpression(node *ast.PipeExpression, env *Environment) Object {
	left := Eval(node.Left, env)
	if node.Operator == "|>" && isError(left) {
		return left
	}

	if call, ok := node.Right.(*ast.CallExpression); ok {
		fn := Eval(call.Function, env)
		if isError(fn) {
			return fn
		}
		extra, argErr := evalArguments(call.Arguments, env)
		if argErr != nil && !acceptsErrorArgs(fn) {
			return argErr
		}
		args := append([]Object{left}, extra...)
		return withPosition(applyFunction(fn, args, env), node.Token)
	}

	fn := Eval(node.Right, env)
	if isError(fn) {
		return fn
	}
	return withPosition(applyFunction(fn, []Object{left}, env), node.Token)
}
