package evaluator

// Aggregations over vectors and lists. All of them are strict about NA:
// a missing value fails the whole aggregate unless the optional second
// argument (naRM) is true, in which case NA slots are skipped.

func aggregateArgs(fn string, args []Object) ([]Object, bool, *Error) {
	naRM := false
	if len(args) > 2 {
		return nil, false, newError("ARITY-0001", map[string]any{
			"Function": fn,
			"Want":     "1 or 2",
			"Got":      len(args),
		})
	}
	if len(args) == 2 {
		flag, ok := args[1].(*Boolean)
		if !ok {
			return nil, false, argTypeError(fn, "a boolean naRM flag", args[1])
		}
		naRM = flag.Value
	}

	var elems []Object
	switch arg := args[0].(type) {
	case *Vector:
		elems = arg.Elements
	case *List:
		elems = arg.Elements
	default:
		return nil, false, argTypeError(fn, "a vector or list", args[0])
	}
	return elems, naRM, nil
}

// numericValues applies NA policy and collects float values, remembering
// whether everything was integral. Error elements (from element-wise slots)
// surface as-is.
func numericValues(fn string, elems []Object, naRM bool) ([]float64, bool, *Error) {
	values := make([]float64, 0, len(elems))
	allInt := true
	for _, e := range elems {
		switch e := e.(type) {
		case *Integer:
			values = append(values, float64(e.Value))
		case *Float:
			values = append(values, e.Value)
			allInt = false
		case *NA:
			if naRM {
				continue
			}
			return nil, false, newError("TYPE-0003", nil)
		case *Error:
			return nil, false, e
		default:
			return nil, false, argTypeError(fn, "numeric elements", e)
		}
	}
	return values, allInt, nil
}

func builtinSum(env *Environment, args ...Object) Object {
	elems, naRM, errObj := aggregateArgs("sum", args)
	if errObj != nil {
		return errObj
	}
	values, allInt, errObj := numericValues("sum", elems, naRM)
	if errObj != nil {
		return errObj
	}

	total := 0.0
	for _, v := range values {
		total += v
	}
	if allInt {
		return &Integer{Value: int64(total)}
	}
	return &Float{Value: total}
}

func builtinMean(env *Environment, args ...Object) Object {
	elems, naRM, errObj := aggregateArgs("mean", args)
	if errObj != nil {
		return errObj
	}
	values, _, errObj := numericValues("mean", elems, naRM)
	if errObj != nil {
		return errObj
	}
	if len(values) == 0 {
		return newError("VAL-0003", map[string]any{
			"Function": "mean",
			"Reason":   "no values to average",
		})
	}

	total := 0.0
	for _, v := range values {
		total += v
	}
	return &Float{Value: total / float64(len(values))}
}

func builtinMin(env *Environment, args ...Object) Object {
	return extremum("min", args, func(a, b float64) bool { return a < b })
}

func builtinMax(env *Environment, args ...Object) Object {
	return extremum("max", args, func(a, b float64) bool { return a > b })
}

func extremum(fn string, args []Object, better func(a, b float64) bool) Object {
	elems, naRM, errObj := aggregateArgs(fn, args)
	if errObj != nil {
		return errObj
	}
	values, allInt, errObj := numericValues(fn, elems, naRM)
	if errObj != nil {
		return errObj
	}
	if len(values) == 0 {
		return newError("VAL-0003", map[string]any{
			"Function": fn,
			"Reason":   "no values to compare",
		})
	}

	best := values[0]
	for _, v := range values[1:] {
		if better(v, best) {
			best = v
		}
	}
	if allInt {
		return &Integer{Value: int64(best)}
	}
	return &Float{Value: best}
}
