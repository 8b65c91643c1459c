package parser

import (
	"strconv"

	"github.com/rill-lang/rill/pkg/rill/ast"
	rerrors "github.com/rill-lang/rill/pkg/rill/errors"
	"github.com/rill-lang/rill/pkg/rill/lexer"
)

// Precedence levels for operators
const (
	_ int = iota
	LOWEST
	PIPE_PREC   // |> ?|>
	LOGIC_OR    // || | .|
	LOGIC_AND   // && & .&
	EQUALS      // == != in .==
	LESSGREATER // > or < (and dot forms)
	SUM         // + - .+ .-
	PRODUCT     // * / % .* ./
	PREFIX      // -x or !x
	INDEX       // xs[i], d.k
	CALL        // f(x)
)

// precedences maps tokens to their precedence
var precedences = map[lexer.TokenType]int{
	lexer.PIPE:       PIPE_PREC,
	lexer.MAYBE_PIPE: PIPE_PREC,
	lexer.OR:         LOGIC_OR,
	lexer.BAR:        LOGIC_OR,
	lexer.DOT_BAR:    LOGIC_OR,
	lexer.AND:        LOGIC_AND,
	lexer.AMP:        LOGIC_AND,
	lexer.DOT_AMP:    LOGIC_AND,
	lexer.EQ:         EQUALS,
	lexer.NOT_EQ:     EQUALS,
	lexer.IN:         EQUALS,
	lexer.DOT_EQ:     EQUALS,
	lexer.LT:         LESSGREATER,
	lexer.GT:         LESSGREATER,
	lexer.LTE:        LESSGREATER,
	lexer.GTE:        LESSGREATER,
	lexer.DOT_GT:     LESSGREATER,
	lexer.DOT_LT:     LESSGREATER,
	lexer.PLUS:       SUM,
	lexer.MINUS:      SUM,
	lexer.DOT_PLUS:   SUM,
	lexer.DOT_MINUS:  SUM,
	lexer.SLASH:      PRODUCT,
	lexer.ASTERISK:   PRODUCT,
	lexer.PERCENT:    PRODUCT,
	lexer.DOT_STAR:   PRODUCT,
	lexer.DOT_SLASH:  PRODUCT,
	lexer.LBRACKET:   INDEX,
	lexer.DOT:        INDEX,
	lexer.LPAREN:     CALL,
}

// Parser represents the parser
type Parser struct {
	l *lexer.Lexer

	errors []*rerrors.RillError

	curToken  lexer.Token
	peekToken lexer.Token

	prefixParseFns map[lexer.TokenType]prefixParseFn
	infixParseFns  map[lexer.TokenType]infixParseFn
}

type (
	prefixParseFn func() ast.Expression
	infixParseFn  func(ast.Expression) ast.Expression
)

// New creates a new parser instance
func New(l *lexer.Lexer) *Parser {
	p := &Parser{l: l}

	p.prefixParseFns = make(map[lexer.TokenType]prefixParseFn)
	p.registerPrefix(lexer.IDENT, p.parseIdentifier)
	p.registerPrefix(lexer.INT, p.parseIntegerLiteral)
	p.registerPrefix(lexer.FLOAT, p.parseFloatLiteral)
	p.registerPrefix(lexer.STRING, p.parseStringLiteral)
	p.registerPrefix(lexer.TRUE, p.parseBoolean)
	p.registerPrefix(lexer.FALSE, p.parseBoolean)
	p.registerPrefix(lexer.NULL, p.parseNull)
	p.registerPrefix(lexer.NA, p.parseNALiteral)
	p.registerPrefix(lexer.NA_INT, p.parseNALiteral)
	p.registerPrefix(lexer.NA_FLOAT, p.parseNALiteral)
	p.registerPrefix(lexer.NA_BOOL, p.parseNALiteral)
	p.registerPrefix(lexer.NA_STR, p.parseNALiteral)
	p.registerPrefix(lexer.COLREF, p.parseColumnRef)
	p.registerPrefix(lexer.BANG, p.parsePrefixExpression)
	p.registerPrefix(lexer.MINUS, p.parsePrefixExpression)
	p.registerPrefix(lexer.LPAREN, p.parseGroupedExpression)
	p.registerPrefix(lexer.LBRACKET, p.parseListLiteral)
	p.registerPrefix(lexer.LBRACE, p.parseDictLiteral)
	p.registerPrefix(lexer.IF, p.parseIfExpression)
	p.registerPrefix(lexer.FUNCTION, p.parseFunctionLiteral)
	p.registerPrefix(lexer.PIPELINE, p.parsePipelineLiteral)

	p.infixParseFns = make(map[lexer.TokenType]infixParseFn)
	for _, tt := range []lexer.TokenType{
		lexer.PLUS, lexer.MINUS, lexer.SLASH, lexer.ASTERISK, lexer.PERCENT,
		lexer.EQ, lexer.NOT_EQ, lexer.LT, lexer.GT, lexer.LTE, lexer.GTE,
		lexer.AND, lexer.OR, lexer.AMP, lexer.BAR, lexer.IN,
		lexer.DOT_PLUS, lexer.DOT_MINUS, lexer.DOT_STAR, lexer.DOT_SLASH,
		lexer.DOT_EQ, lexer.DOT_GT, lexer.DOT_LT, lexer.DOT_AMP, lexer.DOT_BAR,
	} {
		p.registerInfix(tt, p.parseInfixExpression)
	}
	p.registerInfix(lexer.PIPE, p.parsePipeExpression)
	p.registerInfix(lexer.MAYBE_PIPE, p.parsePipeExpression)
	p.registerInfix(lexer.LPAREN, p.parseCallExpression)
	p.registerInfix(lexer.LBRACKET, p.parseIndexExpression)
	p.registerInfix(lexer.DOT, p.parseDotExpression)

	// Read two tokens, so curToken and peekToken are both set
	p.nextToken()
	p.nextToken()

	return p
}

func (p *Parser) registerPrefix(tokenType lexer.TokenType, fn prefixParseFn) {
	p.prefixParseFns[tokenType] = fn
}

func (p *Parser) registerInfix(tokenType lexer.TokenType, fn infixParseFn) {
	p.infixParseFns[tokenType] = fn
}

// Errors returns the structured parse errors encountered so far
func (p *Parser) Errors() []*rerrors.RillError {
	return p.errors
}

func (p *Parser) nextToken() {
	p.curToken = p.peekToken
	p.peekToken = p.l.NextToken()
	// Comments are not part of the grammar
	for p.peekToken.Type == lexer.COMMENT {
		p.peekToken = p.l.NextToken()
	}
}

func (p *Parser) curTokenIs(t lexer.TokenType) bool  { return p.curToken.Type == t }
func (p *Parser) peekTokenIs(t lexer.TokenType) bool { return p.peekToken.Type == t }

func (p *Parser) expectPeek(t lexer.TokenType) bool {
	if p.peekTokenIs(t) {
		p.nextToken()
		return true
	}
	p.peekError(t)
	return false
}

func (p *Parser) peekError(t lexer.TokenType) {
	p.errors = append(p.errors, rerrors.NewWithPosition("PARSE-0001",
		p.peekToken.Line, p.peekToken.Column,
		map[string]any{"Expected": t.String(), "Got": p.peekToken.Literal}))
}

func (p *Parser) peekPrecedence() int {
	if prec, ok := precedences[p.peekToken.Type]; ok {
		return prec
	}
	return LOWEST
}

func (p *Parser) curPrecedence() int {
	if prec, ok := precedences[p.curToken.Type]; ok {
		return prec
	}
	return LOWEST
}

// ParseProgram parses a complete program
func (p *Parser) ParseProgram() *ast.Program {
	program := &ast.Program{Statements: []ast.Statement{}}

	for p.curToken.Type == lexer.COMMENT {
		p.nextToken()
	}

	for !p.curTokenIs(lexer.EOF) {
		stmt := p.parseStatement()
		if stmt != nil {
			program.Statements = append(program.Statements, stmt)
		}
		p.nextToken()
	}

	return program
}

func (p *Parser) parseStatement() ast.Statement {
	switch p.curToken.Type {
	case lexer.LET:
		return p.parseLetStatement()
	case lexer.SET:
		return p.parseSetStatement()
	case lexer.RETURN:
		return p.parseReturnStatement()
	case lexer.SEMICOLON:
		return nil
	default:
		return p.parseExpressionStatement()
	}
}

func (p *Parser) parseLetStatement() ast.Statement {
	stmt := &ast.LetStatement{Token: p.curToken}

	if !p.expectPeek(lexer.IDENT) {
		return nil
	}
	stmt.Name = &ast.Identifier{Token: p.curToken, Value: p.curToken.Literal}

	if !p.expectPeek(lexer.ASSIGN) {
		return nil
	}
	p.nextToken()
	stmt.Value = p.parseExpression(LOWEST)

	if p.peekTokenIs(lexer.SEMICOLON) {
		p.nextToken()
	}
	return stmt
}

func (p *Parser) parseSetStatement() ast.Statement {
	stmt := &ast.SetStatement{Token: p.curToken}

	if !p.expectPeek(lexer.IDENT) {
		return nil
	}
	stmt.Name = &ast.Identifier{Token: p.curToken, Value: p.curToken.Literal}

	if !p.expectPeek(lexer.ASSIGN) {
		return nil
	}
	p.nextToken()
	stmt.Value = p.parseExpression(LOWEST)

	if p.peekTokenIs(lexer.SEMICOLON) {
		p.nextToken()
	}
	return stmt
}

func (p *Parser) parseReturnStatement() ast.Statement {
	stmt := &ast.ReturnStatement{Token: p.curToken}

	p.nextToken()
	stmt.ReturnValue = p.parseExpression(LOWEST)

	if p.peekTokenIs(lexer.SEMICOLON) {
		p.nextToken()
	}
	return stmt
}

func (p *Parser) parseExpressionStatement() ast.Statement {
	stmt := &ast.ExpressionStatement{Token: p.curToken}
	stmt.Expression = p.parseExpression(LOWEST)

	if p.peekTokenIs(lexer.SEMICOLON) {
		p.nextToken()
	}
	return stmt
}

func (p *Parser) parseExpression(precedence int) ast.Expression {
	prefix := p.prefixParseFns[p.curToken.Type]
	if prefix == nil {
		p.errors = append(p.errors, rerrors.NewWithPosition("PARSE-0002",
			p.curToken.Line, p.curToken.Column,
			map[string]any{"Token": p.curToken.Literal}))
		return nil
	}
	leftExp := prefix()

	for !p.peekTokenIs(lexer.SEMICOLON) && precedence < p.peekPrecedence() {
		infix := p.infixParseFns[p.peekToken.Type]
		if infix == nil {
			return leftExp
		}
		p.nextToken()
		leftExp = infix(leftExp)
	}

	return leftExp
}

func (p *Parser) parseIdentifier() ast.Expression {
	return &ast.Identifier{Token: p.curToken, Value: p.curToken.Literal}
}

func (p *Parser) parseIntegerLiteral() ast.Expression {
	lit := &ast.IntegerLiteral{Token: p.curToken}

	value, err := strconv.ParseInt(p.curToken.Literal, 10, 64)
	if err != nil {
		p.errors = append(p.errors, rerrors.NewWithPosition("PARSE-0003",
			p.curToken.Line, p.curToken.Column,
			map[string]any{"Literal": p.curToken.Literal}))
		return nil
	}
	lit.Value = value
	return lit
}

func (p *Parser) parseFloatLiteral() ast.Expression {
	lit := &ast.FloatLiteral{Token: p.curToken}

	value, err := strconv.ParseFloat(p.curToken.Literal, 64)
	if err != nil {
		p.errors = append(p.errors, rerrors.NewWithPosition("PARSE-0003",
			p.curToken.Line, p.curToken.Column,
			map[string]any{"Literal": p.curToken.Literal}))
		return nil
	}
	lit.Value = value
	return lit
}

func (p *Parser) parseStringLiteral() ast.Expression {
	return &ast.StringLiteral{Token: p.curToken, Value: p.curToken.Literal}
}

func (p *Parser) parseBoolean() ast.Expression {
	return &ast.BooleanLiteral{Token: p.curToken, Value: p.curTokenIs(lexer.TRUE)}
}

func (p *Parser) parseNull() ast.Expression {
	return &ast.NullLiteral{Token: p.curToken}
}

func (p *Parser) parseNALiteral() ast.Expression {
	lit := &ast.NALiteral{Token: p.curToken}
	switch p.curToken.Type {
	case lexer.NA_INT:
		lit.Kind = ast.NAInt
	case lexer.NA_FLOAT:
		lit.Kind = ast.NAFloat
	case lexer.NA_BOOL:
		lit.Kind = ast.NABool
	case lexer.NA_STR:
		lit.Kind = ast.NAString
	default:
		lit.Kind = ast.NAGeneric
	}
	return lit
}

func (p *Parser) parseColumnRef() ast.Expression {
	return &ast.ColumnRef{Token: p.curToken, Name: p.curToken.Literal}
}

func (p *Parser) parsePrefixExpression() ast.Expression {
	expression := &ast.PrefixExpression{
		Token:    p.curToken,
		Operator: p.curToken.Literal,
	}

	p.nextToken()
	expression.Right = p.parseExpression(PREFIX)
	return expression
}

func (p *Parser) parseInfixExpression(left ast.Expression) ast.Expression {
	expression := &ast.InfixExpression{
		Token:    p.curToken,
		Left:     left,
		Operator: p.curToken.Literal,
	}

	precedence := p.curPrecedence()
	p.nextToken()
	expression.Right = p.parseExpression(precedence)
	return expression
}

func (p *Parser) parsePipeExpression(left ast.Expression) ast.Expression {
	expression := &ast.PipeExpression{
		Token:    p.curToken,
		Left:     left,
		Operator: p.curToken.Literal,
	}

	precedence := p.curPrecedence()
	p.nextToken()
	expression.Right = p.parseExpression(precedence)
	return expression
}

func (p *Parser) parseGroupedExpression() ast.Expression {
	p.nextToken()
	exp := p.parseExpression(LOWEST)
	if !p.expectPeek(lexer.RPAREN) {
		return nil
	}
	return exp
}

func (p *Parser) parseListLiteral() ast.Expression {
	list := &ast.ListLiteral{Token: p.curToken}

	if p.peekTokenIs(lexer.RBRACKET) {
		p.nextToken()
		return list
	}

	for {
		p.nextToken()

		name := ""
		if p.curTokenIs(lexer.IDENT) && p.peekTokenIs(lexer.COLON) {
			name = p.curToken.Literal
			p.nextToken() // colon
			p.nextToken() // value
		}
		list.Names = append(list.Names, name)
		list.Elements = append(list.Elements, p.parseExpression(LOWEST))

		if !p.peekTokenIs(lexer.COMMA) {
			break
		}
		p.nextToken()
	}

	if !p.expectPeek(lexer.RBRACKET) {
		return nil
	}
	return list
}

func (p *Parser) parseDictLiteral() ast.Expression {
	dict := &ast.DictLiteral{Token: p.curToken, Pairs: make(map[string]ast.Expression)}

	for !p.peekTokenIs(lexer.RBRACE) {
		p.nextToken()

		var key string
		switch p.curToken.Type {
		case lexer.IDENT, lexer.STRING:
			key = p.curToken.Literal
		default:
			p.peekError(lexer.IDENT)
			return nil
		}

		if !p.expectPeek(lexer.COLON) {
			return nil
		}
		p.nextToken()

		if _, exists := dict.Pairs[key]; exists {
			p.errors = append(p.errors, rerrors.NewWithPosition("PARSE-0005",
				p.curToken.Line, p.curToken.Column, map[string]any{"Key": key}))
		} else {
			dict.Keys = append(dict.Keys, key)
		}
		dict.Pairs[key] = p.parseExpression(LOWEST)

		if p.peekTokenIs(lexer.COMMA) {
			p.nextToken()
		}
	}

	if !p.expectPeek(lexer.RBRACE) {
		return nil
	}
	return dict
}

func (p *Parser) parseIfExpression() ast.Expression {
	expression := &ast.IfExpression{Token: p.curToken}

	p.nextToken()
	expression.Condition = p.parseExpression(LOWEST)

	if !p.expectPeek(lexer.LBRACE) {
		return nil
	}
	expression.Consequence = p.parseBlockStatement()

	if p.peekTokenIs(lexer.ELSE) {
		p.nextToken()
		if !p.expectPeek(lexer.LBRACE) {
			return nil
		}
		expression.Alternative = p.parseBlockStatement()
	}

	return expression
}

func (p *Parser) parseBlockStatement() *ast.BlockStatement {
	block := &ast.BlockStatement{Token: p.curToken}

	p.nextToken()
	for !p.curTokenIs(lexer.RBRACE) && !p.curTokenIs(lexer.EOF) {
		stmt := p.parseStatement()
		if stmt != nil {
			block.Statements = append(block.Statements, stmt)
		}
		p.nextToken()
	}

	return block
}

func (p *Parser) parseFunctionLiteral() ast.Expression {
	lit := &ast.FunctionLiteral{Token: p.curToken}

	if !p.expectPeek(lexer.LPAREN) {
		return nil
	}
	lit.Params = p.parseFunctionParameters()

	if !p.expectPeek(lexer.LBRACE) {
		return nil
	}
	lit.Body = p.parseBlockStatement()

	return lit
}

func (p *Parser) parseFunctionParameters() []*ast.Identifier {
	identifiers := []*ast.Identifier{}

	if p.peekTokenIs(lexer.RPAREN) {
		p.nextToken()
		return identifiers
	}

	p.nextToken()
	identifiers = append(identifiers, &ast.Identifier{Token: p.curToken, Value: p.curToken.Literal})

	for p.peekTokenIs(lexer.COMMA) {
		p.nextToken()
		p.nextToken()
		identifiers = append(identifiers, &ast.Identifier{Token: p.curToken, Value: p.curToken.Literal})
	}

	if !p.expectPeek(lexer.RPAREN) {
		return nil
	}
	return identifiers
}

func (p *Parser) parseCallExpression(function ast.Expression) ast.Expression {
	exp := &ast.CallExpression{Token: p.curToken, Function: function}
	exp.Arguments = p.parseExpressionList(lexer.RPAREN)
	return exp
}

func (p *Parser) parseExpressionList(end lexer.TokenType) []ast.Expression {
	list := []ast.Expression{}

	if p.peekTokenIs(end) {
		p.nextToken()
		return list
	}

	p.nextToken()
	list = append(list, p.parseExpression(LOWEST))

	for p.peekTokenIs(lexer.COMMA) {
		p.nextToken()
		p.nextToken()
		list = append(list, p.parseExpression(LOWEST))
	}

	if !p.expectPeek(end) {
		return nil
	}
	return list
}

func (p *Parser) parseIndexExpression(left ast.Expression) ast.Expression {
	exp := &ast.IndexExpression{Token: p.curToken, Left: left}

	p.nextToken()
	exp.Index = p.parseExpression(LOWEST)

	if !p.expectPeek(lexer.RBRACKET) {
		return nil
	}
	return exp
}

func (p *Parser) parseDotExpression(left ast.Expression) ast.Expression {
	exp := &ast.DotExpression{Token: p.curToken, Left: left}

	if !p.expectPeek(lexer.IDENT) {
		return nil
	}
	exp.Key = p.curToken.Literal
	return exp
}

func (p *Parser) parsePipelineLiteral() ast.Expression {
	lit := &ast.PipelineLiteral{Token: p.curToken}

	if !p.expectPeek(lexer.LBRACE) {
		return nil
	}

	for !p.peekTokenIs(lexer.RBRACE) && !p.peekTokenIs(lexer.EOF) {
		if p.peekTokenIs(lexer.SEMICOLON) {
			p.nextToken()
			continue
		}
		if !p.expectPeek(lexer.IDENT) {
			return nil
		}
		decl := &ast.PipelineDecl{Token: p.curToken, Name: p.curToken.Literal}

		if !p.peekTokenIs(lexer.ASSIGN) {
			p.errors = append(p.errors, rerrors.NewWithPosition("PARSE-0004",
				p.curToken.Line, p.curToken.Column,
				map[string]any{"Name": decl.Name}))
			return nil
		}
		p.nextToken()
		p.nextToken()
		decl.Value = p.parseExpression(LOWEST)
		lit.Decls = append(lit.Decls, decl)

		if p.peekTokenIs(lexer.SEMICOLON) {
			p.nextToken()
		}
	}

	if !p.expectPeek(lexer.RBRACE) {
		return nil
	}
	return lit
}
