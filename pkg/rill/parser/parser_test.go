package parser

import (
	"fmt"
	"testing"

	"github.com/rill-lang/rill/pkg/rill/ast"
	"github.com/rill-lang/rill/pkg/rill/lexer"
)

func parseProgram(t *testing.T, input string) *ast.Program {
	t.Helper()
	l := lexer.New(input)
	p := New(l)
	program := p.ParseProgram()
	if errs := p.Errors(); len(errs) != 0 {
		for _, e := range errs {
			t.Errorf("parser error: %s", e.String())
		}
		t.FailNow()
	}
	return program
}

func TestLetAndSetStatements(t *testing.T) {
	program := parseProgram(t, `let x = 5; set x = 10;`)

	if len(program.Statements) != 2 {
		t.Fatalf("expected 2 statements, got %d", len(program.Statements))
	}

	letStmt, ok := program.Statements[0].(*ast.LetStatement)
	if !ok {
		t.Fatalf("statement 0 is %T, want *ast.LetStatement", program.Statements[0])
	}
	if letStmt.Name.Value != "x" {
		t.Errorf("let name = %q, want x", letStmt.Name.Value)
	}

	setStmt, ok := program.Statements[1].(*ast.SetStatement)
	if !ok {
		t.Fatalf("statement 1 is %T, want *ast.SetStatement", program.Statements[1])
	}
	if setStmt.Name.Value != "x" {
		t.Errorf("set name = %q, want x", setStmt.Name.Value)
	}
}

func TestOperatorPrecedence(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"1 + 2 * 3", "(1 + (2 * 3))"},
		{"-a * b", "((-a) * b)"},
		{"!true == false", "((!true) == false)"},
		{"a + b - c", "((a + b) - c)"},
		{"a < b == c > d", "((a < b) == (c > d))"},
		{"a <= b != c >= d", "((a <= b) != (c >= d))"},
		{"a && b || c", "((a && b) || c)"},
		{"a & b | c", "((a & b) | c)"},
		{"a + b == c", "((a + b) == c)"},
		{"2 in xs == true", "((2 in xs) == true)"},
		{"xs .+ ys .* zs", "(xs .+ (ys .* zs))"},
		{"xs .== ys .& zs", "((xs .== ys) .& zs)"},
		{"a .> b .| c .< d", "((a .> b) .| (c .< d))"},
		{"x |> f() |> g()", "((x |> f()) |> g())"},
		{"a + b |> f()", "((a + b) |> f())"},
		{"x ?|> rescue()", "(x ?|> rescue())"},
		{"(1 + 2) * 3", "((1 + 2) * 3)"},
		{"xs[0] + d.k", "((xs[0]) + (d.k))"},
		{"a % b * c", "((a % b) * c)"},
	}

	for _, tt := range tests {
		program := parseProgram(t, tt.input)
		got := program.String()
		if got != tt.expected {
			t.Errorf("input %q: expected %q, got %q", tt.input, tt.expected, got)
		}
	}
}

func TestListLiteralWithNames(t *testing.T) {
	program := parseProgram(t, `[1, x: 2, "three"]`)

	stmt := program.Statements[0].(*ast.ExpressionStatement)
	list, ok := stmt.Expression.(*ast.ListLiteral)
	if !ok {
		t.Fatalf("expression is %T, want *ast.ListLiteral", stmt.Expression)
	}
	if len(list.Elements) != 3 {
		t.Fatalf("expected 3 elements, got %d", len(list.Elements))
	}
	wantNames := []string{"", "x", ""}
	for i, want := range wantNames {
		if list.Names[i] != want {
			t.Errorf("names[%d] = %q, want %q", i, list.Names[i], want)
		}
	}
}

func TestDictLiteral(t *testing.T) {
	program := parseProgram(t, `{a: 1, b: 2 + 3}`)

	stmt := program.Statements[0].(*ast.ExpressionStatement)
	dict, ok := stmt.Expression.(*ast.DictLiteral)
	if !ok {
		t.Fatalf("expression is %T, want *ast.DictLiteral", stmt.Expression)
	}
	if len(dict.Pairs) != 2 {
		t.Fatalf("expected 2 pairs, got %d", len(dict.Pairs))
	}
	if dict.Pairs["b"].String() != "(2 + 3)" {
		t.Errorf("pair b = %q", dict.Pairs["b"].String())
	}
}

func TestDictDuplicateKeyIsError(t *testing.T) {
	l := lexer.New(`{a: 1, a: 2}`)
	p := New(l)
	p.ParseProgram()

	errs := p.Errors()
	if len(errs) == 0 {
		t.Fatal("expected a parse error for duplicate key")
	}
	if errs[0].ID != "PARSE-0005" {
		t.Errorf("expected PARSE-0005, got %s", errs[0].ID)
	}
}

func TestFunctionLiteral(t *testing.T) {
	program := parseProgram(t, `fn(x, y) { x + y }`)

	stmt := program.Statements[0].(*ast.ExpressionStatement)
	fn, ok := stmt.Expression.(*ast.FunctionLiteral)
	if !ok {
		t.Fatalf("expression is %T, want *ast.FunctionLiteral", stmt.Expression)
	}
	if len(fn.Params) != 2 || fn.Params[0].Value != "x" || fn.Params[1].Value != "y" {
		t.Errorf("wrong parameters: %v", fn.Params)
	}
	if len(fn.Body.Statements) != 1 {
		t.Errorf("expected 1 body statement, got %d", len(fn.Body.Statements))
	}
}

func TestColumnRef(t *testing.T) {
	program := parseProgram(t, `filterRows(df, $price .> 10)`)

	stmt := program.Statements[0].(*ast.ExpressionStatement)
	call, ok := stmt.Expression.(*ast.CallExpression)
	if !ok {
		t.Fatalf("expression is %T, want *ast.CallExpression", stmt.Expression)
	}
	if len(call.Arguments) != 2 {
		t.Fatalf("expected 2 arguments, got %d", len(call.Arguments))
	}
	infix, ok := call.Arguments[1].(*ast.InfixExpression)
	if !ok {
		t.Fatalf("argument 1 is %T, want *ast.InfixExpression", call.Arguments[1])
	}
	col, ok := infix.Left.(*ast.ColumnRef)
	if !ok {
		t.Fatalf("left is %T, want *ast.ColumnRef", infix.Left)
	}
	if col.Name != "price" {
		t.Errorf("column name = %q, want price", col.Name)
	}
	if infix.Operator != ".>" {
		t.Errorf("operator = %q, want .>", infix.Operator)
	}
}

func TestNALiterals(t *testing.T) {
	tests := []struct {
		input string
		kind  ast.NAKind
	}{
		{"NA", ast.NAGeneric},
		{"NA_int", ast.NAInt},
		{"NA_float", ast.NAFloat},
		{"NA_bool", ast.NABool},
		{"NA_str", ast.NAString},
	}

	for _, tt := range tests {
		program := parseProgram(t, tt.input)
		stmt := program.Statements[0].(*ast.ExpressionStatement)
		na, ok := stmt.Expression.(*ast.NALiteral)
		if !ok {
			t.Fatalf("input %q: expression is %T, want *ast.NALiteral", tt.input, stmt.Expression)
		}
		if na.Kind != tt.kind {
			t.Errorf("input %q: kind = %d, want %d", tt.input, na.Kind, tt.kind)
		}
	}
}

func TestPipelineLiteral(t *testing.T) {
	program := parseProgram(t, `pipeline { total = a + b; a = 1; b = 2 }`)

	stmt := program.Statements[0].(*ast.ExpressionStatement)
	pl, ok := stmt.Expression.(*ast.PipelineLiteral)
	if !ok {
		t.Fatalf("expression is %T, want *ast.PipelineLiteral", stmt.Expression)
	}
	if len(pl.Decls) != 3 {
		t.Fatalf("expected 3 declarations, got %d", len(pl.Decls))
	}
	wantNames := []string{"total", "a", "b"}
	for i, want := range wantNames {
		if pl.Decls[i].Name != want {
			t.Errorf("decl[%d] name = %q, want %q", i, pl.Decls[i].Name, want)
		}
	}
	if pl.Decls[0].Value.String() != "(a + b)" {
		t.Errorf("total = %q, want (a + b)", pl.Decls[0].Value.String())
	}
}

func TestPipelineDeclWithoutAssignIsError(t *testing.T) {
	l := lexer.New(`pipeline { total }`)
	p := New(l)
	p.ParseProgram()

	errs := p.Errors()
	if len(errs) == 0 {
		t.Fatal("expected a parse error")
	}
	if errs[0].ID != "PARSE-0004" {
		t.Errorf("expected PARSE-0004, got %s", errs[0].ID)
	}
}

func TestIfElseExpression(t *testing.T) {
	program := parseProgram(t, `if x < y { x } else { y }`)

	stmt := program.Statements[0].(*ast.ExpressionStatement)
	ie, ok := stmt.Expression.(*ast.IfExpression)
	if !ok {
		t.Fatalf("expression is %T, want *ast.IfExpression", stmt.Expression)
	}
	if ie.Condition.String() != "(x < y)" {
		t.Errorf("condition = %q", ie.Condition.String())
	}
	if ie.Alternative == nil {
		t.Error("expected an else branch")
	}
}

func TestParseErrorsCarryPositions(t *testing.T) {
	l := lexer.New("let = 5")
	p := New(l)
	p.ParseProgram()

	errs := p.Errors()
	if len(errs) == 0 {
		t.Fatal("expected parse errors")
	}
	if errs[0].Line != 1 {
		t.Errorf("expected line 1, got %d", errs[0].Line)
	}
	if errs[0].Code != "ParseError" {
		t.Errorf("expected ParseError, got %s", errs[0].Code)
	}
}

func TestNumericLiterals(t *testing.T) {
	tests := []struct {
		input    string
		expected interface{}
	}{
		{"5", int64(5)},
		{"3.14", 3.14},
	}

	for _, tt := range tests {
		program := parseProgram(t, tt.input)
		stmt := program.Statements[0].(*ast.ExpressionStatement)
		switch want := tt.expected.(type) {
		case int64:
			lit, ok := stmt.Expression.(*ast.IntegerLiteral)
			if !ok || lit.Value != want {
				t.Errorf("input %q: got %s", tt.input, stmt.Expression.String())
			}
		case float64:
			lit, ok := stmt.Expression.(*ast.FloatLiteral)
			if !ok || lit.Value != want {
				t.Errorf("input %q: got %s", tt.input, stmt.Expression.String())
			}
		}
	}
}

func TestCommentsAreSkipped(t *testing.T) {
	program := parseProgram(t, "// a comment\nlet x = 1 // trailing\nx")
	if len(program.Statements) != 2 {
		t.Fatalf("expected 2 statements, got %d: %s", len(program.Statements), program.String())
	}
}

func TestStringRoundTrip(t *testing.T) {
	inputs := []string{
		"let x = (1 + 2);",
		"(data |> clean())",
	}
	for _, input := range inputs {
		program := parseProgram(t, input)
		if program.String() == "" {
			t.Errorf("empty String() for %s", input)
		}
	}
}

func ExampleParser() {
	l := lexer.New("let total = price * count")
	p := New(l)
	program := p.ParseProgram()
	fmt.Println(program.String())
	// Output: let total = (price * count);
}
