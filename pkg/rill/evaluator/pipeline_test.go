package evaluator_test

import (
	"strings"
	"testing"

	"github.com/rill-lang/rill/pkg/rill/evaluator"
)

func TestPipelineForwardReferences(t *testing.T) {
	// Declaration order does not constrain dependency order.
	testIntegerObject(t, testEval(t, `
		let p = pipeline { total = a + b; a = 1; b = 2 }
		pipelineNode(p, "total")
	`), 3)
}

func TestPipelineSeesOuterBindings(t *testing.T) {
	testIntegerObject(t, testEval(t, `
		let base = 10
		let p = pipeline { x = base + 5 }
		pipelineNode(p, "x")
	`), 15)
}

func TestPipelineCycleDetectedAtConstruction(t *testing.T) {
	err := testErrorObject(t, testEval(t, "pipeline { a = b + 1; b = a + 1 }"), "CycleError")
	if !strings.Contains(err.Message, "a") || !strings.Contains(err.Message, "b") {
		t.Errorf("cycle message should name the nodes: %q", err.Message)
	}

	testErrorObject(t, testEval(t, "pipeline { a = a + 1 }"), "CycleError")

	// Construction fails before anything runs, so no node is evaluated.
	testErrorObject(t, testEval(t, `
		let p = pipeline { a = b; b = c; c = a }
		pipelineRun(p)
	`), "CycleError")
}

func TestPipelineDuplicateNodeName(t *testing.T) {
	testErrorObject(t, testEval(t, "pipeline { a = 1; a = 2 }"), "ValueError")
}

func TestPipelineUnknownNode(t *testing.T) {
	err := testErrorObject(t, testEval(t, `
		let p = pipeline { a = 1 }
		pipelineNode(p, "b")
	`), "NodeNotFoundError")
	if !strings.Contains(err.Message, "b") {
		t.Errorf("message = %q", err.Message)
	}
	testErrorObject(t, testEval(t, `
		let p = pipeline { a = 1 }
		pipelineDeps(p, "b")
	`), "NodeNotFoundError")
}

func TestPipelineResultsAreCached(t *testing.T) {
	// A node runs at most once per pipeline value, however often it is
	// forced.
	testIntegerObject(t, testEval(t, `
		let count = 0
		let bump = fn() { set count = count + 1; count }
		let p = pipeline { n = bump() }
		pipelineRun(p)
		pipelineRun(p)
		pipelineNode(p, "n")
		count
	`), 1)
}

func TestPipelineFailuresAreCachedToo(t *testing.T) {
	testIntegerObject(t, testEval(t, `
		let count = 0
		let boom = fn() { set count = count + 1; error("nope") }
		let p = pipeline { n = boom() }
		pipelineNode(p, "n")
		pipelineNode(p, "n")
		count
	`), 1)
}

func TestPipelineSharedDependencyRunsOnce(t *testing.T) {
	testIntegerObject(t, testEval(t, `
		let count = 0
		let trace = fn(x) { set count = count + 1; x }
		let p = pipeline { base = trace(1); left = base + 1; right = base + 2 }
		pipelineRun(p)
		count
	`), 1)
}

func TestPipelineFailingNodeDoesNotStopSiblings(t *testing.T) {
	result := testEval(t, `
		let p = pipeline { good = 1 + 1; bad = 1 / 0; dep = bad + 1 }
		pipelineRun(p)
	`)
	dict, ok := result.(*evaluator.Dict)
	if !ok {
		t.Fatalf("result is %T (%s), want *evaluator.Dict", result, result.Inspect())
	}

	want := map[string]string{"good": "done", "bad": "failed", "dep": "failed"}
	for name, state := range want {
		obj, found := dict.Pairs[name]
		if !found {
			t.Fatalf("missing node %q in run result", name)
		}
		testStringObject(t, obj, state)
	}
}

func TestPipelineFailedDependencyFlowsAsValue(t *testing.T) {
	// The dependent sees the error value; its own strictness fails it.
	err := testErrorObject(t, testEval(t, `
		let p = pipeline { bad = 1 / 0; dep = bad + 1 }
		pipelineNode(p, "dep")
	`), "DivisionByZero")
	if err.Message != "division by zero" {
		t.Errorf("message = %q", err.Message)
	}

	// A dependent may handle the error instead.
	testIntegerObject(t, testEval(t, `
		let p = pipeline { bad = 1 / 0; dep = if isError(bad) { -1 } else { bad } }
		pipelineNode(p, "dep")
	`), -1)
}

func TestPipelineNodesInDeclarationOrder(t *testing.T) {
	result := testEval(t, `
		let p = pipeline { total = a + b; a = 1; b = 2 }
		pipelineNodes(p)
	`)
	list, ok := result.(*evaluator.List)
	if !ok {
		t.Fatalf("result is %T, want *evaluator.List", result)
	}
	want := []string{"total", "a", "b"}
	if len(list.Elements) != len(want) {
		t.Fatalf("got %d nodes, want %d", len(list.Elements), len(want))
	}
	for i, w := range want {
		testStringObject(t, list.Elements[i], w)
	}
}

func TestPipelineDeps(t *testing.T) {
	result := testEval(t, `
		let p = pipeline { total = a + b + a; a = 1; b = 2 }
		pipelineDeps(p, "total")
	`)
	list := result.(*evaluator.List)
	if len(list.Elements) != 2 {
		t.Fatalf("got %d deps, want 2: %s", len(list.Elements), result.Inspect())
	}
	testStringObject(t, list.Elements[0], "a")
	testStringObject(t, list.Elements[1], "b")

	// Outer identifiers are not dependencies.
	result = testEval(t, `
		let base = 1
		let p = pipeline { x = base + 1 }
		pipelineDeps(p, "x")
	`)
	if len(result.(*evaluator.List).Elements) != 0 {
		t.Errorf("expected no deps, got %s", result.Inspect())
	}
}

func TestPipelineStatesWithoutForcing(t *testing.T) {
	result := testEval(t, `
		let p = pipeline { a = 1; b = a + 1 }
		pipelineStates(p)
	`)
	dict := result.(*evaluator.Dict)
	testStringObject(t, dict.Pairs["a"], "pending")
	testStringObject(t, dict.Pairs["b"], "pending")

	result = testEval(t, `
		let p = pipeline { a = 1; b = a + 1 }
		pipelineNode(p, "a")
		pipelineStates(p)
	`)
	dict = result.(*evaluator.Dict)
	testStringObject(t, dict.Pairs["a"], "done")
	testStringObject(t, dict.Pairs["b"], "pending")
}

func TestPipelineLambdaParamsAreNotDeps(t *testing.T) {
	testIntegerObject(t, testEval(t, `
		let p = pipeline { a = 2; f = fn(a) { a * 10 }; used = f(a) }
		pipelineNode(p, "used")
	`), 20)
}

func TestPipelineInspect(t *testing.T) {
	result := testEval(t, "pipeline { a = 1; b = 2 }")
	if result.Inspect() != "pipeline(a, b)" {
		t.Errorf("Inspect() = %q", result.Inspect())
	}
}
