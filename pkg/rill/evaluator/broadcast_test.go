package evaluator_test

import (
	"strings"
	"testing"

	"github.com/rill-lang/rill/pkg/rill/evaluator"
)

func TestBroadcastOverVectors(t *testing.T) {
	result := testEval(t, "vector(1, 2, 3) .+ vector(10, 20, 30)")
	vec, ok := result.(*evaluator.Vector)
	if !ok {
		t.Fatalf("result is %T (%s), want *evaluator.Vector", result, result.Inspect())
	}
	if vec.Kind != evaluator.INTEGER_OBJ {
		t.Errorf("kind = %s, want %s", vec.Kind, evaluator.INTEGER_OBJ)
	}
	want := []int64{11, 22, 33}
	for i, w := range want {
		testIntegerObject(t, vec.Elements[i], w)
	}
}

func TestBroadcastOverLists(t *testing.T) {
	// List operands give a list result even when the values are uniform.
	result := testEval(t, "[1, 2, 3] .+ [10, 20, 30]")
	list, ok := result.(*evaluator.List)
	if !ok {
		t.Fatalf("result is %T (%s), want *evaluator.List", result, result.Inspect())
	}
	want := []int64{11, 22, 33}
	for i, w := range want {
		testIntegerObject(t, list.Elements[i], w)
	}
}

func TestBroadcastScalarRecycling(t *testing.T) {
	vec := testEval(t, "vector(1, 2, 3) .* 2").(*evaluator.Vector)
	want := []int64{2, 4, 6}
	for i, w := range want {
		testIntegerObject(t, vec.Elements[i], w)
	}

	vec = testEval(t, "10 .- vector(1, 2)").(*evaluator.Vector)
	testIntegerObject(t, vec.Elements[0], 9)
	testIntegerObject(t, vec.Elements[1], 8)
}

func TestBroadcastLengthMismatch(t *testing.T) {
	err := testErrorObject(t, testEval(t, "vector(1, 2) .+ vector(1, 2, 3)"), "ValueError")
	if !strings.Contains(err.Message, "2") || !strings.Contains(err.Message, "3") {
		t.Errorf("message should name both lengths: %q", err.Message)
	}
}

func TestBroadcastFaultsLandInSlots(t *testing.T) {
	// Per-element trouble becomes an error value in that slot; clean slots
	// still compute. A slotted error forces a list result.
	result := testEval(t, "vector(1, NA_int, 4) ./ vector(1, 1, 0)")
	list, ok := result.(*evaluator.List)
	if !ok {
		t.Fatalf("result is %T (%s), want *evaluator.List", result, result.Inspect())
	}
	if len(list.Elements) != 3 {
		t.Fatalf("len = %d, want 3", len(list.Elements))
	}

	testIntegerObject(t, list.Elements[0], 1)

	naErr := testErrorObject(t, list.Elements[1], "TypeError")
	if naErr.Message != naMessage {
		t.Errorf("slot 1 message = %q", naErr.Message)
	}
	testErrorObject(t, list.Elements[2], "DivisionByZero")
}

func TestBroadcastComparisons(t *testing.T) {
	vec := testEval(t, "vector(1, 2) .== vector(1, 3)").(*evaluator.Vector)
	if vec.Kind != evaluator.BOOLEAN_OBJ {
		t.Fatalf("kind = %s, want %s", vec.Kind, evaluator.BOOLEAN_OBJ)
	}
	testBooleanObject(t, vec.Elements[0], true)
	testBooleanObject(t, vec.Elements[1], false)

	vec = testEval(t, "vector(5, 15) .> 10").(*evaluator.Vector)
	testBooleanObject(t, vec.Elements[0], false)
	testBooleanObject(t, vec.Elements[1], true)

	vec = testEval(t, "vector(1, 5) .< 3").(*evaluator.Vector)
	testBooleanObject(t, vec.Elements[0], true)
	testBooleanObject(t, vec.Elements[1], false)
}

func TestBroadcastBoolOperators(t *testing.T) {
	vec := testEval(t, "vector(true, true) .& vector(true, false)").(*evaluator.Vector)
	testBooleanObject(t, vec.Elements[0], true)
	testBooleanObject(t, vec.Elements[1], false)

	vec = testEval(t, "vector(false, false) .| vector(true, false)").(*evaluator.Vector)
	testBooleanObject(t, vec.Elements[0], true)
	testBooleanObject(t, vec.Elements[1], false)
}

func TestBroadcastOnScalarsDegrades(t *testing.T) {
	// Desugared row predicates apply dot operators to scalars; that is the
	// plain scalar operation.
	testIntegerObject(t, testEval(t, "1 .+ 2"), 3)
	testBooleanObject(t, testEval(t, "15 .> 10"), true)
	testErrorObject(t, testEval(t, "1 ./ 0"), "DivisionByZero")
}

func TestBroadcastRejectsNonSequences(t *testing.T) {
	testErrorObject(t, testEval(t, "{a: 1} .+ [1]"), "TypeError")
	testErrorObject(t, testEval(t, "[1] .+ {a: 1}"), "TypeError")
}

func TestBroadcastIntFloatWidening(t *testing.T) {
	vec := testEval(t, "vector(1, 2) .+ vector(0.5, 0.5)").(*evaluator.Vector)
	if vec.Kind != evaluator.FLOAT_OBJ {
		t.Fatalf("kind = %s, want %s", vec.Kind, evaluator.FLOAT_OBJ)
	}
	testFloatObject(t, vec.Elements[0], 1.5)
	testFloatObject(t, vec.Elements[1], 2.5)
}
