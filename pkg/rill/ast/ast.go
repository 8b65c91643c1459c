package ast

import (
	"bytes"
	"strings"

	"github.com/rill-lang/rill/pkg/rill/lexer"
)

// Node represents any node in the AST
type Node interface {
	TokenLiteral() string
	String() string
}

// Statement represents statement nodes
type Statement interface {
	Node
	statementNode()
}

// Expression represents expression nodes
type Expression interface {
	Node
	expressionNode()
}

// Program represents the root node of every AST
type Program struct {
	Statements []Statement
}

func (p *Program) TokenLiteral() string {
	if len(p.Statements) > 0 {
		return p.Statements[0].TokenLiteral()
	}
	return ""
}

func (p *Program) String() string {
	var out bytes.Buffer

	for _, s := range p.Statements {
		out.WriteString(s.String())
	}

	return out.String()
}

// LetStatement represents fresh bindings like 'let x = 5;'
type LetStatement struct {
	Token lexer.Token // the lexer.LET token
	Name  *Identifier
	Value Expression
}

func (ls *LetStatement) statementNode()       {}
func (ls *LetStatement) TokenLiteral() string { return ls.Token.Literal }
func (ls *LetStatement) String() string {
	var out bytes.Buffer

	out.WriteString("let ")
	out.WriteString(ls.Name.String())
	out.WriteString(" = ")
	if ls.Value != nil {
		out.WriteString(ls.Value.String())
	}
	out.WriteString(";")
	return out.String()
}

// SetStatement represents explicit overwrites like 'set x = 5;'
type SetStatement struct {
	Token lexer.Token // the lexer.SET token
	Name  *Identifier
	Value Expression
}

func (ss *SetStatement) statementNode()       {}
func (ss *SetStatement) TokenLiteral() string { return ss.Token.Literal }
func (ss *SetStatement) String() string {
	var out bytes.Buffer

	out.WriteString("set ")
	out.WriteString(ss.Name.String())
	out.WriteString(" = ")
	if ss.Value != nil {
		out.WriteString(ss.Value.String())
	}
	out.WriteString(";")
	return out.String()
}

// ReturnStatement represents return statements like 'return 5;'
type ReturnStatement struct {
	Token       lexer.Token // the 'return' token
	ReturnValue Expression
}

func (rs *ReturnStatement) statementNode()       {}
func (rs *ReturnStatement) TokenLiteral() string { return rs.Token.Literal }
func (rs *ReturnStatement) String() string {
	var out bytes.Buffer

	out.WriteString("return ")
	if rs.ReturnValue != nil {
		out.WriteString(rs.ReturnValue.String())
	}
	out.WriteString(";")
	return out.String()
}

// ExpressionStatement represents expression statements
type ExpressionStatement struct {
	Token      lexer.Token // the first token of the expression
	Expression Expression
}

func (es *ExpressionStatement) statementNode()       {}
func (es *ExpressionStatement) TokenLiteral() string { return es.Token.Literal }
func (es *ExpressionStatement) String() string {
	if es.Expression != nil {
		return es.Expression.String()
	}
	return ""
}

// BlockStatement represents block statements like '{...}'
type BlockStatement struct {
	Token      lexer.Token // the '{' token
	Statements []Statement
}

func (bs *BlockStatement) statementNode()       {}
func (bs *BlockStatement) TokenLiteral() string { return bs.Token.Literal }
func (bs *BlockStatement) String() string {
	var out bytes.Buffer

	for _, s := range bs.Statements {
		out.WriteString(s.String())
	}

	return out.String()
}

// Identifier represents identifier expressions
type Identifier struct {
	Token lexer.Token // the lexer.IDENT token
	Value string
}

func (i *Identifier) expressionNode()      {}
func (i *Identifier) TokenLiteral() string { return i.Token.Literal }
func (i *Identifier) String() string       { return i.Value }

// IntegerLiteral represents integer literals
type IntegerLiteral struct {
	Token lexer.Token // the lexer.INT token
	Value int64
}

func (il *IntegerLiteral) expressionNode()      {}
func (il *IntegerLiteral) TokenLiteral() string { return il.Token.Literal }
func (il *IntegerLiteral) String() string       { return il.Token.Literal }

// FloatLiteral represents floating-point literals
type FloatLiteral struct {
	Token lexer.Token // the lexer.FLOAT token
	Value float64
}

func (fl *FloatLiteral) expressionNode()      {}
func (fl *FloatLiteral) TokenLiteral() string { return fl.Token.Literal }
func (fl *FloatLiteral) String() string       { return fl.Token.Literal }

// StringLiteral represents string literals
type StringLiteral struct {
	Token lexer.Token // the lexer.STRING token
	Value string
}

func (sl *StringLiteral) expressionNode()      {}
func (sl *StringLiteral) TokenLiteral() string { return sl.Token.Literal }
func (sl *StringLiteral) String() string       { return `"` + sl.Value + `"` }

// BooleanLiteral represents true/false
type BooleanLiteral struct {
	Token lexer.Token
	Value bool
}

func (bl *BooleanLiteral) expressionNode()      {}
func (bl *BooleanLiteral) TokenLiteral() string { return bl.Token.Literal }
func (bl *BooleanLiteral) String() string       { return bl.Token.Literal }

// NullLiteral represents the null value
type NullLiteral struct {
	Token lexer.Token
}

func (nl *NullLiteral) expressionNode()      {}
func (nl *NullLiteral) TokenLiteral() string { return nl.Token.Literal }
func (nl *NullLiteral) String() string       { return "null" }

// NAKind distinguishes the typed missing-value markers
type NAKind int

const (
	NAGeneric NAKind = iota
	NAInt
	NAFloat
	NABool
	NAString
)

// NALiteral represents the typed missing-value literals NA, NA_int, ...
type NALiteral struct {
	Token lexer.Token
	Kind  NAKind
}

func (na *NALiteral) expressionNode()      {}
func (na *NALiteral) TokenLiteral() string { return na.Token.Literal }
func (na *NALiteral) String() string       { return na.Token.Literal }

// ColumnRef represents an NSE column reference like $price
type ColumnRef struct {
	Token lexer.Token // the lexer.COLREF token
	Name  string
}

func (cr *ColumnRef) expressionNode()      {}
func (cr *ColumnRef) TokenLiteral() string { return cr.Token.Literal }
func (cr *ColumnRef) String() string       { return "$" + cr.Name }

// ListLiteral represents list literals like '[1, 2, x: 3]'.
// Names[i] is "" for unnamed elements.
type ListLiteral struct {
	Token    lexer.Token // the '[' token
	Names    []string
	Elements []Expression
}

func (ll *ListLiteral) expressionNode()      {}
func (ll *ListLiteral) TokenLiteral() string { return ll.Token.Literal }
func (ll *ListLiteral) String() string {
	var out bytes.Buffer

	elements := []string{}
	for i, e := range ll.Elements {
		if ll.Names[i] != "" {
			elements = append(elements, ll.Names[i]+": "+e.String())
		} else {
			elements = append(elements, e.String())
		}
	}

	out.WriteString("[")
	out.WriteString(strings.Join(elements, ", "))
	out.WriteString("]")
	return out.String()
}

// DictLiteral represents dictionary literals like '{a: 1, b: 2}'
type DictLiteral struct {
	Token lexer.Token // the '{' token
	Keys  []string    // declaration order, for printing only
	Pairs map[string]Expression
}

func (dl *DictLiteral) expressionNode()      {}
func (dl *DictLiteral) TokenLiteral() string { return dl.Token.Literal }
func (dl *DictLiteral) String() string {
	var out bytes.Buffer

	pairs := []string{}
	for _, key := range dl.Keys {
		pairs = append(pairs, key+": "+dl.Pairs[key].String())
	}

	out.WriteString("{")
	out.WriteString(strings.Join(pairs, ", "))
	out.WriteString("}")
	return out.String()
}

// FunctionLiteral represents function literals like 'fn(x, y) { x + y }'
type FunctionLiteral struct {
	Token  lexer.Token // the 'fn' token
	Params []*Identifier
	Body   *BlockStatement
}

func (fl *FunctionLiteral) expressionNode()      {}
func (fl *FunctionLiteral) TokenLiteral() string { return fl.Token.Literal }
func (fl *FunctionLiteral) String() string {
	var out bytes.Buffer

	params := []string{}
	for _, p := range fl.Params {
		params = append(params, p.String())
	}

	out.WriteString("fn(")
	out.WriteString(strings.Join(params, ", "))
	out.WriteString(") {")
	out.WriteString(fl.Body.String())
	out.WriteString("}")
	return out.String()
}

// CallExpression represents function calls like 'add(1, 2)'
type CallExpression struct {
	Token     lexer.Token // the '(' token
	Function  Expression  // Identifier or FunctionLiteral
	Arguments []Expression
}

func (ce *CallExpression) expressionNode()      {}
func (ce *CallExpression) TokenLiteral() string { return ce.Token.Literal }
func (ce *CallExpression) String() string {
	var out bytes.Buffer

	args := []string{}
	for _, a := range ce.Arguments {
		args = append(args, a.String())
	}

	out.WriteString(ce.Function.String())
	out.WriteString("(")
	out.WriteString(strings.Join(args, ", "))
	out.WriteString(")")
	return out.String()
}

// PrefixExpression represents prefix expressions like '!x' and '-x'
type PrefixExpression struct {
	Token    lexer.Token
	Operator string
	Right    Expression
}

func (pe *PrefixExpression) expressionNode()      {}
func (pe *PrefixExpression) TokenLiteral() string { return pe.Token.Literal }
func (pe *PrefixExpression) String() string {
	return "(" + pe.Operator + pe.Right.String() + ")"
}

// InfixExpression represents infix expressions like 'x + y' and 'x .+ y'
type InfixExpression struct {
	Token    lexer.Token
	Left     Expression
	Operator string
	Right    Expression
}

func (ie *InfixExpression) expressionNode()      {}
func (ie *InfixExpression) TokenLiteral() string { return ie.Token.Literal }
func (ie *InfixExpression) String() string {
	return "(" + ie.Left.String() + " " + ie.Operator + " " + ie.Right.String() + ")"
}

// PipeExpression represents 'x |> f' and 'x ?|> f'
type PipeExpression struct {
	Token    lexer.Token
	Left     Expression
	Operator string // "|>" or "?|>"
	Right    Expression
}

func (pe *PipeExpression) expressionNode()      {}
func (pe *PipeExpression) TokenLiteral() string { return pe.Token.Literal }
func (pe *PipeExpression) String() string {
	return "(" + pe.Left.String() + " " + pe.Operator + " " + pe.Right.String() + ")"
}

// IfExpression represents if/else expressions
type IfExpression struct {
	Token       lexer.Token // the 'if' token
	Condition   Expression
	Consequence *BlockStatement
	Alternative *BlockStatement
}

func (ie *IfExpression) expressionNode()      {}
func (ie *IfExpression) TokenLiteral() string { return ie.Token.Literal }
func (ie *IfExpression) String() string {
	var out bytes.Buffer

	out.WriteString("if ")
	out.WriteString(ie.Condition.String())
	out.WriteString(" {")
	out.WriteString(ie.Consequence.String())
	out.WriteString("}")
	if ie.Alternative != nil {
		out.WriteString(" else {")
		out.WriteString(ie.Alternative.String())
		out.WriteString("}")
	}
	return out.String()
}

// IndexExpression represents index access like 'xs[0]' or 'd["k"]'
type IndexExpression struct {
	Token lexer.Token // the '[' token
	Left  Expression
	Index Expression
}

func (ie *IndexExpression) expressionNode()      {}
func (ie *IndexExpression) TokenLiteral() string { return ie.Token.Literal }
func (ie *IndexExpression) String() string {
	return "(" + ie.Left.String() + "[" + ie.Index.String() + "])"
}

// DotExpression represents field access like 'row.price'
type DotExpression struct {
	Token lexer.Token // the '.' token
	Left  Expression
	Key   string
}

func (de *DotExpression) expressionNode()      {}
func (de *DotExpression) TokenLiteral() string { return de.Token.Literal }
func (de *DotExpression) String() string {
	return "(" + de.Left.String() + "." + de.Key + ")"
}

// PipelineDecl is one named node declaration inside a pipeline block
type PipelineDecl struct {
	Token lexer.Token // the node-name identifier token
	Name  string
	Value Expression
}

func (pd *PipelineDecl) String() string {
	return pd.Name + " = " + pd.Value.String()
}

// PipelineLiteral represents 'pipeline { a = expr; b = expr }'
type PipelineLiteral struct {
	Token lexer.Token // the 'pipeline' token
	Decls []*PipelineDecl
}

func (pl *PipelineLiteral) expressionNode()      {}
func (pl *PipelineLiteral) TokenLiteral() string { return pl.Token.Literal }
func (pl *PipelineLiteral) String() string {
	var out bytes.Buffer

	decls := []string{}
	for _, d := range pl.Decls {
		decls = append(decls, d.String())
	}

	out.WriteString("pipeline { ")
	out.WriteString(strings.Join(decls, "; "))
	out.WriteString(" }")
	return out.String()
}
