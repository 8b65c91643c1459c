package lexer

import (
	"testing"
)

func TestNextToken(t *testing.T) {
	input := `let five = 5;
let pi = 3.14;
set five = 6;
let add = fn(x, y) { x + y };
let ok = true && false || !true;
let strict = true & false | true;
let v = xs .+ ys ./ zs .* ws .- qs;
let cmp = xs .== ys .> zs .< ws .& qs .| rs;
let piped = data |> clean() ?|> rescue();
let col = $price;
if 2 in [1, 2] { "yes" } else { "no" }
pipeline { total = a; a = 1 }
row.price
NA NA_int NA_float NA_bool NA_str null
a <= b >= c != d % e
`

	tests := []struct {
		expectedType    TokenType
		expectedLiteral string
	}{
		{LET, "let"}, {IDENT, "five"}, {ASSIGN, "="}, {INT, "5"}, {SEMICOLON, ";"},
		{LET, "let"}, {IDENT, "pi"}, {ASSIGN, "="}, {FLOAT, "3.14"}, {SEMICOLON, ";"},
		{SET, "set"}, {IDENT, "five"}, {ASSIGN, "="}, {INT, "6"}, {SEMICOLON, ";"},
		{LET, "let"}, {IDENT, "add"}, {ASSIGN, "="}, {FUNCTION, "fn"},
		{LPAREN, "("}, {IDENT, "x"}, {COMMA, ","}, {IDENT, "y"}, {RPAREN, ")"},
		{LBRACE, "{"}, {IDENT, "x"}, {PLUS, "+"}, {IDENT, "y"}, {RBRACE, "}"}, {SEMICOLON, ";"},
		{LET, "let"}, {IDENT, "ok"}, {ASSIGN, "="},
		{TRUE, "true"}, {AND, "&&"}, {FALSE, "false"}, {OR, "||"}, {BANG, "!"}, {TRUE, "true"}, {SEMICOLON, ";"},
		{LET, "let"}, {IDENT, "strict"}, {ASSIGN, "="},
		{TRUE, "true"}, {AMP, "&"}, {FALSE, "false"}, {BAR, "|"}, {TRUE, "true"}, {SEMICOLON, ";"},
		{LET, "let"}, {IDENT, "v"}, {ASSIGN, "="},
		{IDENT, "xs"}, {DOT_PLUS, ".+"}, {IDENT, "ys"}, {DOT_SLASH, "./"}, {IDENT, "zs"},
		{DOT_STAR, ".*"}, {IDENT, "ws"}, {DOT_MINUS, ".-"}, {IDENT, "qs"}, {SEMICOLON, ";"},
		{LET, "let"}, {IDENT, "cmp"}, {ASSIGN, "="},
		{IDENT, "xs"}, {DOT_EQ, ".=="}, {IDENT, "ys"}, {DOT_GT, ".>"}, {IDENT, "zs"},
		{DOT_LT, ".<"}, {IDENT, "ws"}, {DOT_AMP, ".&"}, {IDENT, "qs"}, {DOT_BAR, ".|"}, {IDENT, "rs"}, {SEMICOLON, ";"},
		{LET, "let"}, {IDENT, "piped"}, {ASSIGN, "="},
		{IDENT, "data"}, {PIPE, "|>"}, {IDENT, "clean"}, {LPAREN, "("}, {RPAREN, ")"},
		{MAYBE_PIPE, "?|>"}, {IDENT, "rescue"}, {LPAREN, "("}, {RPAREN, ")"}, {SEMICOLON, ";"},
		{LET, "let"}, {IDENT, "col"}, {ASSIGN, "="}, {COLREF, "price"}, {SEMICOLON, ";"},
		{IF, "if"}, {INT, "2"}, {IN, "in"},
		{LBRACKET, "["}, {INT, "1"}, {COMMA, ","}, {INT, "2"}, {RBRACKET, "]"},
		{LBRACE, "{"}, {STRING, "yes"}, {RBRACE, "}"},
		{ELSE, "else"}, {LBRACE, "{"}, {STRING, "no"}, {RBRACE, "}"},
		{PIPELINE, "pipeline"}, {LBRACE, "{"},
		{IDENT, "total"}, {ASSIGN, "="}, {IDENT, "a"}, {SEMICOLON, ";"},
		{IDENT, "a"}, {ASSIGN, "="}, {INT, "1"}, {RBRACE, "}"},
		{IDENT, "row"}, {DOT, "."}, {IDENT, "price"},
		{NA, "NA"}, {NA_INT, "NA_int"}, {NA_FLOAT, "NA_float"}, {NA_BOOL, "NA_bool"}, {NA_STR, "NA_str"}, {NULL, "null"},
		{IDENT, "a"}, {LTE, "<="}, {IDENT, "b"}, {GTE, ">="}, {IDENT, "c"},
		{NOT_EQ, "!="}, {IDENT, "d"}, {PERCENT, "%"}, {IDENT, "e"},
		{EOF, ""},
	}

	l := New(input)
	for i, tt := range tests {
		tok := l.NextToken()

		if tok.Type != tt.expectedType {
			t.Fatalf("tests[%d] - tokentype wrong. expected=%q, got=%q (literal %q)",
				i, tt.expectedType, tok.Type, tok.Literal)
		}
		if tok.Literal != tt.expectedLiteral {
			t.Fatalf("tests[%d] - literal wrong. expected=%q, got=%q",
				i, tt.expectedLiteral, tok.Literal)
		}
	}
}

func TestNumberThenDotOperator(t *testing.T) {
	// A dot only makes a float when a digit follows; otherwise the number
	// ends and the dot fuses with the next operator.
	input := `1.5 .+ 2`

	expected := []struct {
		typ     TokenType
		literal string
	}{
		{FLOAT, "1.5"},
		{DOT_PLUS, ".+"},
		{INT, "2"},
		{EOF, ""},
	}

	l := New(input)
	for i, want := range expected {
		tok := l.NextToken()
		if tok.Type != want.typ || tok.Literal != want.literal {
			t.Fatalf("token[%d]: expected (%s, %q), got (%s, %q)",
				i, want.typ, want.literal, tok.Type, tok.Literal)
		}
	}
}

func TestStringEscapes(t *testing.T) {
	input := `"a\nb\t\"c\"\\"`

	l := New(input)
	tok := l.NextToken()
	if tok.Type != STRING {
		t.Fatalf("expected STRING, got %s", tok.Type)
	}
	if tok.Literal != "a\nb\t\"c\"\\" {
		t.Errorf("wrong literal: %q", tok.Literal)
	}
}

func TestComments(t *testing.T) {
	input := "// leading comment\n1 // trailing"

	l := New(input)
	tok := l.NextToken()
	if tok.Type != COMMENT {
		t.Fatalf("expected COMMENT, got %s", tok.Type)
	}
	tok = l.NextToken()
	if tok.Type != INT || tok.Literal != "1" {
		t.Fatalf("expected INT 1, got (%s, %q)", tok.Type, tok.Literal)
	}
	tok = l.NextToken()
	if tok.Type != COMMENT {
		t.Fatalf("expected COMMENT, got %s", tok.Type)
	}
	if l.NextToken().Type != EOF {
		t.Error("expected EOF")
	}
}

func TestPositions(t *testing.T) {
	input := "let x = 1\nlet y = 2"

	l := New(input)
	first := l.NextToken()
	if first.Line != 1 || first.Column != 1 {
		t.Errorf("first token at %d:%d, want 1:1", first.Line, first.Column)
	}

	var secondLet Token
	for tok := l.NextToken(); tok.Type != EOF; tok = l.NextToken() {
		if tok.Type == LET {
			secondLet = tok
		}
	}
	if secondLet.Line != 2 || secondLet.Column != 1 {
		t.Errorf("second let at %d:%d, want 2:1", secondLet.Line, secondLet.Column)
	}
}

func TestIdentifiersAreASCIIOnly(t *testing.T) {
	l := New("café")
	tok := l.NextToken()
	if tok.Type != IDENT || tok.Literal != "caf" {
		t.Fatalf("expected IDENT %q, got (%s, %q)", "caf", tok.Type, tok.Literal)
	}
	if tok = l.NextToken(); tok.Type != ILLEGAL {
		t.Errorf("expected ILLEGAL for a non-ASCII byte, got (%s, %q)", tok.Type, tok.Literal)
	}

	l = New("_tmp_2")
	tok = l.NextToken()
	if tok.Type != IDENT || tok.Literal != "_tmp_2" {
		t.Errorf("expected IDENT %q, got (%s, %q)", "_tmp_2", tok.Type, tok.Literal)
	}
}
