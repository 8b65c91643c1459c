package evaluator

import (
	rerrors "github.com/rill-lang/rill/pkg/rill/errors"
)

// evalBroadcastExpression implements the dot-prefixed element-wise
// operators. Scalars are recycled against a list or vector on the other
// side; two scalars degrade to the plain scalar operation, which keeps
// desugared row predicates like row.price .> 10 working. Per-element
// failures (NA slots, division by zero) become error values in their slot
// instead of failing the whole operation.
func evalBroadcastExpression(operator string, left, right Object) Object {
	if left.Type() == COLUMN_OBJ || right.Type() == COLUMN_OBJ {
		return newError("TYPE-0012", nil)
	}

	scalarOp := operator[1:]

	leftElems, leftColl, leftVec, ok := broadcastOperand(left)
	if !ok {
		return broadcastTypeError(operator, left, right)
	}
	rightElems, rightColl, rightVec, ok := broadcastOperand(right)
	if !ok {
		return broadcastTypeError(operator, left, right)
	}
	if !leftColl && !rightColl {
		return evalInfixExpression(scalarOp, left, right)
	}

	n := len(leftElems)
	if !leftColl {
		n = len(rightElems)
	}
	if leftColl && rightColl && len(leftElems) != len(rightElems) {
		return newError("VAL-0001", map[string]any{
			"Operator": operator,
			"LeftLen":  len(leftElems),
			"RightLen": len(rightElems),
		})
	}

	results := make([]Object, n)
	clean := true
	for i := 0; i < n; i++ {
		l := left
		if leftColl {
			l = leftElems[i]
		}
		r := right
		if rightColl {
			r = rightElems[i]
		}
		results[i] = evalInfixExpression(scalarOp, l, r)
		if isError(results[i]) {
			clean = false
		}
	}

	// A vector result needs vector-shaped inputs and a homogeneous,
	// error-free output; anything else lands in a list.
	vectorShaped := (leftVec || !leftColl) && (rightVec || !rightColl)
	if clean && vectorShaped {
		if kind, homogeneous := uniformScalarKind(results); homogeneous {
			return &Vector{Kind: kind, Elements: results}
		}
	}
	return &List{Elements: results}
}

// broadcastOperand reports the element view of an operand. Scalars are
// allowed (recycled by the caller); dictionaries and other non-sequences
// are not.
func broadcastOperand(obj Object) (elems []Object, isColl, isVec, ok bool) {
	switch obj := obj.(type) {
	case *List:
		return obj.Elements, true, false, true
	case *Vector:
		return obj.Elements, true, true, true
	case *Integer, *Float, *Boolean, *String, *NA:
		return nil, false, false, true
	default:
		return nil, false, false, false
	}
}

func uniformScalarKind(elems []Object) (ObjectType, bool) {
	var kind ObjectType
	for _, e := range elems {
		switch e.Type() {
		case INTEGER_OBJ, FLOAT_OBJ, BOOLEAN_OBJ, STRING_OBJ:
			if kind == "" {
				kind = e.Type()
			} else if kind != e.Type() {
				return "", false
			}
		default:
			return "", false
		}
	}
	if kind == "" {
		return "", false
	}
	return kind, true
}

func broadcastTypeError(operator string, left, right Object) *Error {
	return newError("TYPE-0011", map[string]any{
		"Operator":  operator,
		"LeftType":  rerrors.TypeName(string(left.Type())),
		"RightType": rerrors.TypeName(string(right.Type())),
	})
}
