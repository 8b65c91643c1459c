package evaluator

import (
	"math"

	"github.com/rill-lang/rill/pkg/rill/ast"
	rerrors "github.com/rill-lang/rill/pkg/rill/errors"
)

// broadcastCounterpart maps a strict operator to its element-wise form, when
// one exists.
var broadcastCounterpart = map[string]string{
	"+":  ".+",
	"-":  ".-",
	"*":  ".*",
	"/":  "./",
	"==": ".==",
	">":  ".>",
	"<":  ".<",
	"&":  ".&",
	"|":  ".|",
}

func evalPrefixExpression(operator string, right Object) Object {
	if right.Type() == NA_OBJ {
		return newError("TYPE-0003", nil)
	}
	if right.Type() == COLUMN_OBJ {
		return newError("TYPE-0012", nil)
	}

	switch operator {
	case "!":
		switch right {
		case TRUE:
			return FALSE
		case FALSE:
			return TRUE
		}
		return newError("TYPE-0007", map[string]any{
			"Operator": "!",
			"Type":     rerrors.TypeName(string(right.Type())),
		})
	case "-":
		switch right := right.(type) {
		case *Integer:
			return &Integer{Value: -right.Value}
		case *Float:
			return &Float{Value: -right.Value}
		}
		return newError("TYPE-0007", map[string]any{
			"Operator": "-",
			"Type":     rerrors.TypeName(string(right.Type())),
		})
	default:
		return newError("TYPE-0007", map[string]any{
			"Operator": operator,
			"Type":     rerrors.TypeName(string(right.Type())),
		})
	}
}

// evalInfixExpression implements the strict scalar operators. Strictness
// comes first: NA operands fail, collection operands fail with a pointer at
// the element-wise form.
func evalInfixExpression(operator string, left, right Object) Object {
	// A $name that escaped its call argument is meaningless here.
	if left.Type() == COLUMN_OBJ || right.Type() == COLUMN_OBJ {
		return newError("TYPE-0012", nil)
	}

	if operator == "in" {
		return evalInOperator(left, right)
	}

	if left.Type() == NA_OBJ || right.Type() == NA_OBJ {
		return newError("TYPE-0003", nil)
	}
	if err := rejectCollectionOperand(operator, left); err != nil {
		return err
	}
	if err := rejectCollectionOperand(operator, right); err != nil {
		return err
	}

	switch operator {
	case "&", "|":
		return evalStrictBoolOperator(operator, left, right)
	}

	switch {
	case left.Type() == INTEGER_OBJ && right.Type() == INTEGER_OBJ:
		return evalIntegerInfixExpression(operator, left.(*Integer), right.(*Integer))
	case isNumeric(left) && isNumeric(right):
		return evalFloatInfixExpression(operator, toFloat(left), toFloat(right))
	case left.Type() == STRING_OBJ && right.Type() == STRING_OBJ:
		return evalStringInfixExpression(operator, left.(*String), right.(*String))
	case left.Type() == BOOLEAN_OBJ && right.Type() == BOOLEAN_OBJ:
		switch operator {
		case "==":
			return nativeBoolToBoolean(left == right)
		case "!=":
			return nativeBoolToBoolean(left != right)
		}
		return operandTypeError(operator, left, right)
	default:
		// Cross-kind comparison is an error, not false.
		return operandTypeError(operator, left, right)
	}
}

func evalIntegerInfixExpression(operator string, left, right *Integer) Object {
	switch operator {
	case "+":
		return &Integer{Value: left.Value + right.Value}
	case "-":
		return &Integer{Value: left.Value - right.Value}
	case "*":
		return &Integer{Value: left.Value * right.Value}
	case "/":
		if right.Value == 0 {
			return newError("DIV-0001", nil)
		}
		return &Integer{Value: left.Value / right.Value}
	case "%":
		if right.Value == 0 {
			return newError("DIV-0002", nil)
		}
		return &Integer{Value: left.Value % right.Value}
	case "<":
		return nativeBoolToBoolean(left.Value < right.Value)
	case ">":
		return nativeBoolToBoolean(left.Value > right.Value)
	case "<=":
		return nativeBoolToBoolean(left.Value <= right.Value)
	case ">=":
		return nativeBoolToBoolean(left.Value >= right.Value)
	case "==":
		return nativeBoolToBoolean(left.Value == right.Value)
	case "!=":
		return nativeBoolToBoolean(left.Value != right.Value)
	default:
		return operandTypeError(operator, left, right)
	}
}

func evalFloatInfixExpression(operator string, left, right float64) Object {
	switch operator {
	case "+":
		return &Float{Value: left + right}
	case "-":
		return &Float{Value: left - right}
	case "*":
		return &Float{Value: left * right}
	case "/":
		if right == 0 {
			return newError("DIV-0001", nil)
		}
		return &Float{Value: left / right}
	case "%":
		if right == 0 {
			return newError("DIV-0002", nil)
		}
		return &Float{Value: math.Mod(left, right)}
	case "<":
		return nativeBoolToBoolean(left < right)
	case ">":
		return nativeBoolToBoolean(left > right)
	case "<=":
		return nativeBoolToBoolean(left <= right)
	case ">=":
		return nativeBoolToBoolean(left >= right)
	case "==":
		return nativeBoolToBoolean(left == right)
	case "!=":
		return nativeBoolToBoolean(left != right)
	default:
		return newError("TYPE-0001", map[string]any{
			"Operator":  operator,
			"LeftType":  "a float",
			"RightType": "a float",
		})
	}
}

func evalStringInfixExpression(operator string, left, right *String) Object {
	switch operator {
	case "+":
		// Deliberate: string concatenation is spelled paste()/join().
		return newError("TYPE-0004", nil)
	case "<":
		return nativeBoolToBoolean(left.Value < right.Value)
	case ">":
		return nativeBoolToBoolean(left.Value > right.Value)
	case "<=":
		return nativeBoolToBoolean(left.Value <= right.Value)
	case ">=":
		return nativeBoolToBoolean(left.Value >= right.Value)
	case "==":
		return nativeBoolToBoolean(left.Value == right.Value)
	case "!=":
		return nativeBoolToBoolean(left.Value != right.Value)
	default:
		return operandTypeError(operator, left, right)
	}
}

// evalStrictBoolOperator handles the non-short-circuit '&' and '|'. Both
// operands were already evaluated by the caller.
func evalStrictBoolOperator(operator string, left, right Object) Object {
	lb, ok := left.(*Boolean)
	if !ok {
		return newError("TYPE-0005", map[string]any{
			"Side":     "left",
			"Operator": operator,
			"Type":     rerrors.TypeName(string(left.Type())),
		})
	}
	rb, ok := right.(*Boolean)
	if !ok {
		return newError("TYPE-0005", map[string]any{
			"Side":     "right",
			"Operator": operator,
			"Type":     rerrors.TypeName(string(right.Type())),
		})
	}
	if operator == "&" {
		return nativeBoolToBoolean(lb.Value && rb.Value)
	}
	return nativeBoolToBoolean(lb.Value || rb.Value)
}

// evalLogicalExpression handles '&&' and '||', which short-circuit: the
// right operand is only evaluated when the left does not decide the result.
func evalLogicalExpression(node *ast.InfixExpression, env *Environment) Object {
	left := Eval(node.Left, env)
	if isError(left) {
		return left
	}
	if left.Type() == NA_OBJ {
		return newErrorWithPos("TYPE-0003", node.Token, nil)
	}
	lb, ok := left.(*Boolean)
	if !ok {
		return newErrorWithPos("TYPE-0005", node.Token, map[string]any{
			"Side":     "left",
			"Operator": node.Operator,
			"Type":     rerrors.TypeName(string(left.Type())),
		})
	}

	if node.Operator == "&&" && !lb.Value {
		return FALSE
	}
	if node.Operator == "||" && lb.Value {
		return TRUE
	}

	right := Eval(node.Right, env)
	if isError(right) {
		return right
	}
	if right.Type() == NA_OBJ {
		return newErrorWithPos("TYPE-0003", node.Token, nil)
	}
	rb, ok := right.(*Boolean)
	if !ok {
		return newErrorWithPos("TYPE-0005", node.Token, map[string]any{
			"Side":     "right",
			"Operator": node.Operator,
			"Type":     rerrors.TypeName(string(right.Type())),
		})
	}
	return nativeBoolToBoolean(rb.Value)
}

// evalInOperator implements membership. The right operand must be a list.
// A scalar left yields one boolean; a list or vector left yields one boolean
// per element. The scan is strict: any NA on either side fails the whole
// operation, even after a match was found.
func evalInOperator(left, right Object) Object {
	list, ok := right.(*List)
	if !ok {
		return newError("TYPE-0006", map[string]any{
			"Type": rerrors.TypeName(string(right.Type())),
		})
	}

	switch left := left.(type) {
	case *List:
		results := make([]Object, len(left.Elements))
		for i, e := range left.Elements {
			r := scanMembership(e, list.Elements)
			if isError(r) {
				return r
			}
			results[i] = r
		}
		return &List{Elements: results}
	case *Vector:
		results := make([]Object, len(left.Elements))
		for i, e := range left.Elements {
			r := scanMembership(e, list.Elements)
			if isError(r) {
				return r
			}
			results[i] = r
		}
		return &Vector{Kind: BOOLEAN_OBJ, Elements: results}
	default:
		return scanMembership(left, list.Elements)
	}
}

func scanMembership(needle Object, haystack []Object) Object {
	if needle.Type() == NA_OBJ {
		return newError("TYPE-0003", nil)
	}
	switch needle.Type() {
	case INTEGER_OBJ, FLOAT_OBJ, STRING_OBJ, BOOLEAN_OBJ:
	default:
		return newError("TYPE-0001", map[string]any{
			"Operator":  "in",
			"LeftType":  rerrors.TypeName(string(needle.Type())),
			"RightType": "a list",
		})
	}

	found := false
	for _, item := range haystack {
		if item.Type() == NA_OBJ {
			return newError("TYPE-0003", nil)
		}
		if membershipEqual(needle, item) {
			found = true
			// Keep scanning so an NA later in the list still fails.
		}
	}
	return nativeBoolToBoolean(found)
}

// membershipEqual compares scalars for 'in'. Numbers compare across the
// int/float divide; other cross-kind pairs simply do not match.
func membershipEqual(a, b Object) bool {
	if isNumeric(a) && isNumeric(b) {
		return toFloat(a) == toFloat(b)
	}
	switch a := a.(type) {
	case *String:
		if b, ok := b.(*String); ok {
			return a.Value == b.Value
		}
	case *Boolean:
		if b, ok := b.(*Boolean); ok {
			return a.Value == b.Value
		}
	}
	return false
}

// rejectCollectionOperand enforces the scalar-only rule for strict
// operators.
func rejectCollectionOperand(operator string, operand Object) Object {
	switch operand.Type() {
	case LIST_OBJ, VECTOR_OBJ, DICTIONARY_OBJ, DATAFRAME_OBJ:
		if counterpart, ok := broadcastCounterpart[operator]; ok {
			return newError("TYPE-0002", map[string]any{
				"Operator":  operator,
				"Type":      rerrors.TypeName(string(operand.Type())),
				"Broadcast": counterpart,
			})
		}
		return newError("TYPE-0001", map[string]any{
			"Operator":  operator,
			"LeftType":  rerrors.TypeName(string(operand.Type())),
			"RightType": rerrors.TypeName(string(operand.Type())),
		})
	}
	return nil
}

func operandTypeError(operator string, left, right Object) *Error {
	return newError("TYPE-0001", map[string]any{
		"Operator":  operator,
		"LeftType":  rerrors.TypeName(string(left.Type())),
		"RightType": rerrors.TypeName(string(right.Type())),
	})
}

func isNumeric(obj Object) bool {
	return obj.Type() == INTEGER_OBJ || obj.Type() == FLOAT_OBJ
}

func toFloat(obj Object) float64 {
	switch obj := obj.(type) {
	case *Integer:
		return float64(obj.Value)
	case *Float:
		return obj.Value
	}
	return 0
}
