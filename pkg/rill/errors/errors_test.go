package errors

import (
	"strings"
	"testing"
)

func TestNewRendersTemplate(t *testing.T) {
	e := New("NAME-0001", map[string]any{"Name": "revenue"})

	if e.Code != CodeName {
		t.Errorf("code = %s, want %s", e.Code, CodeName)
	}
	if e.ID != "NAME-0001" {
		t.Errorf("id = %s, want NAME-0001", e.ID)
	}
	if e.Message != "identifier not found: revenue" {
		t.Errorf("message = %q", e.Message)
	}
}

func TestNAMessageIsExact(t *testing.T) {
	e := New("TYPE-0003", nil)

	want := "Operation on NA: NA values do not propagate implicitly. Handle missingness explicitly."
	if e.Message != want {
		t.Errorf("message = %q, want %q", e.Message, want)
	}
	if e.Code != CodeType {
		t.Errorf("code = %s, want %s", e.Code, CodeType)
	}
}

func TestHintsRenderWithData(t *testing.T) {
	e := New("NAME-0002", map[string]any{"Name": "x"})

	if len(e.Hints) != 1 {
		t.Fatalf("expected 1 hint, got %d", len(e.Hints))
	}
	if e.Hints[0] != "set x = ..." {
		t.Errorf("hint = %q", e.Hints[0])
	}
}

func TestBroadcastHint(t *testing.T) {
	e := New("TYPE-0002", map[string]any{
		"Operator":  "+",
		"Type":      "a vector",
		"Broadcast": ".+",
	})

	if !strings.Contains(e.Message, "'+' is a strict scalar operator") {
		t.Errorf("message = %q", e.Message)
	}
	if len(e.Hints) != 1 || !strings.Contains(e.Hints[0], ".+") {
		t.Errorf("hints = %v", e.Hints)
	}
}

func TestUnknownIDFallsBackToGeneric(t *testing.T) {
	e := New("NOPE-9999", map[string]any{"Message": "something odd"})

	if e.Code != CodeGeneric {
		t.Errorf("code = %s, want %s", e.Code, CodeGeneric)
	}
	if e.Message != "something odd" {
		t.Errorf("message = %q", e.Message)
	}
}

func TestStringIncludesPosition(t *testing.T) {
	e := NewWithPosition("DIV-0001", 3, 7, nil)

	s := e.String()
	if !strings.Contains(s, "line 3, column 7") {
		t.Errorf("String() = %q", s)
	}
	if !strings.Contains(s, "DivisionByZero") {
		t.Errorf("String() = %q", s)
	}
}

func TestPrettyStringLabelsParserErrors(t *testing.T) {
	parse := New("PARSE-0002", map[string]any{"Token": "@"})
	if !strings.HasPrefix(parse.PrettyString(), "Parser error") {
		t.Errorf("PrettyString() = %q", parse.PrettyString())
	}

	runtime := New("DIV-0001", nil)
	if !strings.HasPrefix(runtime.PrettyString(), "Runtime error") {
		t.Errorf("PrettyString() = %q", runtime.PrettyString())
	}
}

func TestCatalogCodesAreClosed(t *testing.T) {
	allowed := map[Code]bool{
		CodeParse: true, CodeType: true, CodeDivision: true, CodeValue: true,
		CodeKey: true, CodeName: true, CodeArity: true, CodeAssertion: true,
		CodeGeneric: true, CodeCycle: true, CodeNodeNotFound: true,
	}
	for id, def := range Catalog {
		if !allowed[def.Code] {
			t.Errorf("catalog entry %s uses unknown code %s", id, def.Code)
		}
	}
}
