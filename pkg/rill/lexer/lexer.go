package lexer

import (
	"fmt"
)

// TokenType represents different types of tokens
type TokenType int

const (
	// Special tokens
	ILLEGAL TokenType = iota
	EOF
	COMMENT // // single line comment

	// Identifiers and literals
	IDENT  // sum, revenue, x, y, ...
	INT    // 1343456
	FLOAT  // 3.14159
	STRING // "foobar"
	COLREF // $price (column reference shorthand)

	// Operators
	ASSIGN   // =
	PLUS     // +
	MINUS    // -
	BANG     // !
	ASTERISK // *
	SLASH    // /
	PERCENT  // %
	LT       // <
	GT       // >
	LTE      // <=
	GTE      // >=
	EQ       // ==
	NOT_EQ   // !=
	AND      // &&
	OR       // ||
	AMP      // & (strict, non-short-circuit)
	BAR      // | (strict, non-short-circuit)

	// Broadcast operators (element-wise)
	DOT_PLUS  // .+
	DOT_MINUS // .-
	DOT_STAR  // .*
	DOT_SLASH // ./
	DOT_EQ    // .==
	DOT_GT    // .>
	DOT_LT    // .<
	DOT_AMP   // .&
	DOT_BAR   // .|

	// Pipe operators
	PIPE       // |>
	MAYBE_PIPE // ?|>

	// Delimiters
	COMMA     // ,
	SEMICOLON // ;
	COLON     // :
	DOT       // .
	LPAREN    // (
	RPAREN    // )
	LBRACE    // {
	RBRACE    // }
	LBRACKET  // [
	RBRACKET  // ]

	// Keywords
	FUNCTION // "fn"
	LET      // "let"
	SET      // "set"
	IF       // "if"
	ELSE     // "else"
	RETURN   // "return"
	IN       // "in"
	TRUE     // "true"
	FALSE    // "false"
	NULL     // "null"
	PIPELINE // "pipeline"
	NA       // "NA"
	NA_INT   // "NA_int"
	NA_FLOAT // "NA_float"
	NA_BOOL  // "NA_bool"
	NA_STR   // "NA_str"
)

// Token represents a single token
type Token struct {
	Type    TokenType
	Literal string
	Line    int
	Column  int
}

// String returns a string representation of the token
func (t Token) String() string {
	return fmt.Sprintf("{Type: %s, Literal: %s, Line: %d, Column: %d}",
		t.Type.String(), t.Literal, t.Line, t.Column)
}

// String returns a string representation of the token type
func (tt TokenType) String() string {
	switch tt {
	case ILLEGAL:
		return "ILLEGAL"
	case EOF:
		return "EOF"
	case COMMENT:
		return "COMMENT"
	case IDENT:
		return "IDENT"
	case INT:
		return "INT"
	case FLOAT:
		return "FLOAT"
	case STRING:
		return "STRING"
	case COLREF:
		return "COLREF"
	case ASSIGN:
		return "ASSIGN"
	case PLUS:
		return "PLUS"
	case MINUS:
		return "MINUS"
	case BANG:
		return "BANG"
	case ASTERISK:
		return "ASTERISK"
	case SLASH:
		return "SLASH"
	case PERCENT:
		return "PERCENT"
	case LT:
		return "LT"
	case GT:
		return "GT"
	case LTE:
		return "LTE"
	case GTE:
		return "GTE"
	case EQ:
		return "EQ"
	case NOT_EQ:
		return "NOT_EQ"
	case AND:
		return "AND"
	case OR:
		return "OR"
	case AMP:
		return "AMP"
	case BAR:
		return "BAR"
	case DOT_PLUS:
		return "DOT_PLUS"
	case DOT_MINUS:
		return "DOT_MINUS"
	case DOT_STAR:
		return "DOT_STAR"
	case DOT_SLASH:
		return "DOT_SLASH"
	case DOT_EQ:
		return "DOT_EQ"
	case DOT_GT:
		return "DOT_GT"
	case DOT_LT:
		return "DOT_LT"
	case DOT_AMP:
		return "DOT_AMP"
	case DOT_BAR:
		return "DOT_BAR"
	case PIPE:
		return "PIPE"
	case MAYBE_PIPE:
		return "MAYBE_PIPE"
	case COMMA:
		return "COMMA"
	case SEMICOLON:
		return "SEMICOLON"
	case COLON:
		return "COLON"
	case DOT:
		return "DOT"
	case LPAREN:
		return "LPAREN"
	case RPAREN:
		return "RPAREN"
	case LBRACE:
		return "LBRACE"
	case RBRACE:
		return "RBRACE"
	case LBRACKET:
		return "LBRACKET"
	case RBRACKET:
		return "RBRACKET"
	case FUNCTION:
		return "FUNCTION"
	case LET:
		return "LET"
	case SET:
		return "SET"
	case IF:
		return "IF"
	case ELSE:
		return "ELSE"
	case RETURN:
		return "RETURN"
	case IN:
		return "IN"
	case TRUE:
		return "TRUE"
	case FALSE:
		return "FALSE"
	case NULL:
		return "NULL"
	case PIPELINE:
		return "PIPELINE"
	case NA:
		return "NA"
	case NA_INT:
		return "NA_INT"
	case NA_FLOAT:
		return "NA_FLOAT"
	case NA_BOOL:
		return "NA_BOOL"
	case NA_STR:
		return "NA_STR"
	default:
		return "UNKNOWN"
	}
}

var keywords = map[string]TokenType{
	"fn":       FUNCTION,
	"let":      LET,
	"set":      SET,
	"if":       IF,
	"else":     ELSE,
	"return":   RETURN,
	"in":       IN,
	"true":     TRUE,
	"false":    FALSE,
	"null":     NULL,
	"pipeline": PIPELINE,
	"NA":       NA,
	"NA_int":   NA_INT,
	"NA_float": NA_FLOAT,
	"NA_bool":  NA_BOOL,
	"NA_str":   NA_STR,
}

// LookupIdent checks if an identifier is a keyword
func LookupIdent(ident string) TokenType {
	if tok, ok := keywords[ident]; ok {
		return tok
	}
	return IDENT
}

// Lexer tokenizes rill source code
type Lexer struct {
	input        string
	position     int  // current position in input (points to current char)
	readPosition int  // current reading position (after current char)
	ch           byte // current char under examination
	line         int  // current line number (1-based)
	column       int  // current column number (1-based)
}

// New creates a new Lexer for the given input
func New(input string) *Lexer {
	l := &Lexer{input: input, line: 1, column: 0}
	l.readChar()
	return l
}

func (l *Lexer) readChar() {
	if l.readPosition >= len(l.input) {
		l.ch = 0
	} else {
		l.ch = l.input[l.readPosition]
	}
	if l.ch == '\n' {
		l.line++
		l.column = 0
	} else {
		l.column++
	}
	l.position = l.readPosition
	l.readPosition++
}

func (l *Lexer) peekChar() byte {
	if l.readPosition >= len(l.input) {
		return 0
	}
	return l.input[l.readPosition]
}

func (l *Lexer) peekCharAt(offset int) byte {
	pos := l.readPosition + offset
	if pos >= len(l.input) {
		return 0
	}
	return l.input[pos]
}

// NextToken returns the next token from the input
func (l *Lexer) NextToken() Token {
	l.skipWhitespace()

	tok := Token{Line: l.line, Column: l.column}

	switch l.ch {
	case '=':
		if l.peekChar() == '=' {
			l.readChar()
			tok.Type = EQ
			tok.Literal = "=="
		} else {
			tok.Type = ASSIGN
			tok.Literal = "="
		}
	case '+':
		tok.Type = PLUS
		tok.Literal = "+"
	case '-':
		tok.Type = MINUS
		tok.Literal = "-"
	case '!':
		if l.peekChar() == '=' {
			l.readChar()
			tok.Type = NOT_EQ
			tok.Literal = "!="
		} else {
			tok.Type = BANG
			tok.Literal = "!"
		}
	case '*':
		tok.Type = ASTERISK
		tok.Literal = "*"
	case '/':
		if l.peekChar() == '/' {
			tok.Type = COMMENT
			tok.Literal = l.readComment()
			return tok
		}
		tok.Type = SLASH
		tok.Literal = "/"
	case '%':
		tok.Type = PERCENT
		tok.Literal = "%"
	case '<':
		if l.peekChar() == '=' {
			l.readChar()
			tok.Type = LTE
			tok.Literal = "<="
		} else {
			tok.Type = LT
			tok.Literal = "<"
		}
	case '>':
		if l.peekChar() == '=' {
			l.readChar()
			tok.Type = GTE
			tok.Literal = ">="
		} else {
			tok.Type = GT
			tok.Literal = ">"
		}
	case '&':
		if l.peekChar() == '&' {
			l.readChar()
			tok.Type = AND
			tok.Literal = "&&"
		} else {
			tok.Type = AMP
			tok.Literal = "&"
		}
	case '|':
		if l.peekChar() == '|' {
			l.readChar()
			tok.Type = OR
			tok.Literal = "||"
		} else if l.peekChar() == '>' {
			l.readChar()
			tok.Type = PIPE
			tok.Literal = "|>"
		} else {
			tok.Type = BAR
			tok.Literal = "|"
		}
	case '?':
		if l.peekChar() == '|' && l.peekCharAt(1) == '>' {
			l.readChar()
			l.readChar()
			tok.Type = MAYBE_PIPE
			tok.Literal = "?|>"
		} else {
			tok.Type = ILLEGAL
			tok.Literal = string(l.ch)
		}
	case '.':
		// Broadcast operators are a dot fused to a scalar operator.
		switch l.peekChar() {
		case '+':
			l.readChar()
			tok.Type = DOT_PLUS
			tok.Literal = ".+"
		case '-':
			l.readChar()
			tok.Type = DOT_MINUS
			tok.Literal = ".-"
		case '*':
			l.readChar()
			tok.Type = DOT_STAR
			tok.Literal = ".*"
		case '/':
			l.readChar()
			tok.Type = DOT_SLASH
			tok.Literal = "./"
		case '=':
			if l.peekCharAt(1) == '=' {
				l.readChar()
				l.readChar()
				tok.Type = DOT_EQ
				tok.Literal = ".=="
			} else {
				tok.Type = DOT
				tok.Literal = "."
			}
		case '>':
			l.readChar()
			tok.Type = DOT_GT
			tok.Literal = ".>"
		case '<':
			l.readChar()
			tok.Type = DOT_LT
			tok.Literal = ".<"
		case '&':
			l.readChar()
			tok.Type = DOT_AMP
			tok.Literal = ".&"
		case '|':
			l.readChar()
			tok.Type = DOT_BAR
			tok.Literal = ".|"
		default:
			tok.Type = DOT
			tok.Literal = "."
		}
	case '$':
		if isIdentStart(l.peekChar()) {
			l.readChar()
			tok.Type = COLREF
			tok.Literal = l.readIdentifier()
			return tok
		}
		tok.Type = ILLEGAL
		tok.Literal = "$"
	case ',':
		tok.Type = COMMA
		tok.Literal = ","
	case ';':
		tok.Type = SEMICOLON
		tok.Literal = ";"
	case ':':
		tok.Type = COLON
		tok.Literal = ":"
	case '(':
		tok.Type = LPAREN
		tok.Literal = "("
	case ')':
		tok.Type = RPAREN
		tok.Literal = ")"
	case '{':
		tok.Type = LBRACE
		tok.Literal = "{"
	case '}':
		tok.Type = RBRACE
		tok.Literal = "}"
	case '[':
		tok.Type = LBRACKET
		tok.Literal = "["
	case ']':
		tok.Type = RBRACKET
		tok.Literal = "]"
	case '"':
		tok.Type = STRING
		tok.Literal = l.readString()
	case 0:
		tok.Type = EOF
		tok.Literal = ""
	default:
		if isIdentStart(l.ch) {
			tok.Literal = l.readIdentifier()
			tok.Type = LookupIdent(tok.Literal)
			return tok
		}
		if isDigit(l.ch) {
			return l.readNumber()
		}
		tok.Type = ILLEGAL
		tok.Literal = string(l.ch)
	}

	l.readChar()
	return tok
}

func (l *Lexer) skipWhitespace() {
	for l.ch == ' ' || l.ch == '\t' || l.ch == '\n' || l.ch == '\r' {
		l.readChar()
	}
}

func (l *Lexer) readIdentifier() string {
	position := l.position
	for isIdentStart(l.ch) || isDigit(l.ch) {
		l.readChar()
	}
	return l.input[position:l.position]
}

func (l *Lexer) readNumber() Token {
	tok := Token{Type: INT, Line: l.line, Column: l.column}
	position := l.position
	for isDigit(l.ch) {
		l.readChar()
	}
	// A dot makes this a float only when followed by a digit; otherwise it is
	// a property access or a broadcast operator on the number.
	if l.ch == '.' && isDigit(l.peekChar()) {
		tok.Type = FLOAT
		l.readChar()
		for isDigit(l.ch) {
			l.readChar()
		}
	}
	tok.Literal = l.input[position:l.position]
	return tok
}

func (l *Lexer) readString() string {
	var out []byte
	for {
		l.readChar()
		if l.ch == '"' || l.ch == 0 {
			break
		}
		if l.ch == '\\' {
			switch l.peekChar() {
			case 'n':
				out = append(out, '\n')
				l.readChar()
				continue
			case 't':
				out = append(out, '\t')
				l.readChar()
				continue
			case '"':
				out = append(out, '"')
				l.readChar()
				continue
			case '\\':
				out = append(out, '\\')
				l.readChar()
				continue
			}
		}
		out = append(out, l.ch)
	}
	return string(out)
}

func (l *Lexer) readComment() string {
	position := l.position
	for l.ch != '\n' && l.ch != 0 {
		l.readChar()
	}
	return l.input[position:l.position]
}

// Identifiers are ASCII; the scanner advances byte-wise.
func isIdentStart(ch byte) bool {
	return ch == '_' || (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z')
}

func isDigit(ch byte) bool {
	return ch >= '0' && ch <= '9'
}
