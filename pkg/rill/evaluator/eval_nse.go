package evaluator

import (
	"github.com/rill-lang/rill/pkg/rill/ast"
	"github.com/rill-lang/rill/pkg/rill/lexer"
)

// rowParam is the parameter name the NSE rewrite binds each row to.
const rowParam = "row"

// usesNSE reports whether an expression contains a column reference like
// $price. Detection is purely syntactic and runs once per call argument.
func usesNSE(expr ast.Expression) bool {
	switch expr := expr.(type) {
	case *ast.ColumnRef:
		return true
	case *ast.PrefixExpression:
		return usesNSE(expr.Right)
	case *ast.InfixExpression:
		return usesNSE(expr.Left) || usesNSE(expr.Right)
	case *ast.PipeExpression:
		return usesNSE(expr.Left) || usesNSE(expr.Right)
	case *ast.CallExpression:
		if usesNSE(expr.Function) {
			return true
		}
		for _, a := range expr.Arguments {
			if usesNSE(a) {
				return true
			}
		}
		return false
	case *ast.IndexExpression:
		return usesNSE(expr.Left) || usesNSE(expr.Index)
	case *ast.DotExpression:
		return usesNSE(expr.Left)
	case *ast.ListLiteral:
		for _, e := range expr.Elements {
			if usesNSE(e) {
				return true
			}
		}
		return false
	case *ast.DictLiteral:
		for _, v := range expr.Pairs {
			if usesNSE(v) {
				return true
			}
		}
		return false
	case *ast.IfExpression:
		if usesNSE(expr.Condition) {
			return true
		}
		return blockUsesNSE(expr.Consequence) || blockUsesNSE(expr.Alternative)
	default:
		// Function literals are an explicit escape hatch: $ inside one is
		// already scoped by the author.
		return false
	}
}

func blockUsesNSE(block *ast.BlockStatement) bool {
	if block == nil {
		return false
	}
	for _, stmt := range block.Statements {
		switch stmt := stmt.(type) {
		case *ast.ExpressionStatement:
			if usesNSE(stmt.Expression) {
				return true
			}
		case *ast.LetStatement:
			if usesNSE(stmt.Value) {
				return true
			}
		case *ast.SetStatement:
			if usesNSE(stmt.Value) {
				return true
			}
		case *ast.ReturnStatement:
			if usesNSE(stmt.ReturnValue) {
				return true
			}
		}
	}
	return false
}

// desugarNSE rewrites every $name in the expression to row.name and wraps
// the result in a single-parameter lambda: $price .> 10 becomes
// fn(row) { row.price .> 10 }.
func desugarNSE(expr ast.Expression) ast.Expression {
	tok := lexer.Token{Type: lexer.FUNCTION, Literal: "fn"}
	body := rewriteColumnRefs(expr)
	return &ast.FunctionLiteral{
		Token: tok,
		Params: []*ast.Identifier{
			{Token: lexer.Token{Type: lexer.IDENT, Literal: rowParam}, Value: rowParam},
		},
		Body: &ast.BlockStatement{
			Token: tok,
			Statements: []ast.Statement{
				&ast.ExpressionStatement{Token: tok, Expression: body},
			},
		},
	}
}

// rewriteColumnRefs returns a copy of the expression with each ColumnRef
// replaced by a field access on the row parameter. The input AST is never
// mutated; the same call site may desugar against many frames.
func rewriteColumnRefs(expr ast.Expression) ast.Expression {
	switch expr := expr.(type) {
	case *ast.ColumnRef:
		return &ast.DotExpression{
			Token: expr.Token,
			Left:  &ast.Identifier{Token: expr.Token, Value: rowParam},
			Key:   expr.Name,
		}
	case *ast.PrefixExpression:
		return &ast.PrefixExpression{
			Token:    expr.Token,
			Operator: expr.Operator,
			Right:    rewriteColumnRefs(expr.Right),
		}
	case *ast.InfixExpression:
		return &ast.InfixExpression{
			Token:    expr.Token,
			Left:     rewriteColumnRefs(expr.Left),
			Operator: expr.Operator,
			Right:    rewriteColumnRefs(expr.Right),
		}
	case *ast.PipeExpression:
		return &ast.PipeExpression{
			Token:    expr.Token,
			Left:     rewriteColumnRefs(expr.Left),
			Operator: expr.Operator,
			Right:    rewriteColumnRefs(expr.Right),
		}
	case *ast.CallExpression:
		args := make([]ast.Expression, len(expr.Arguments))
		for i, a := range expr.Arguments {
			args[i] = rewriteColumnRefs(a)
		}
		return &ast.CallExpression{
			Token:     expr.Token,
			Function:  rewriteColumnRefs(expr.Function),
			Arguments: args,
		}
	case *ast.IndexExpression:
		return &ast.IndexExpression{
			Token: expr.Token,
			Left:  rewriteColumnRefs(expr.Left),
			Index: rewriteColumnRefs(expr.Index),
		}
	case *ast.DotExpression:
		return &ast.DotExpression{
			Token: expr.Token,
			Left:  rewriteColumnRefs(expr.Left),
			Key:   expr.Key,
		}
	case *ast.ListLiteral:
		elems := make([]ast.Expression, len(expr.Elements))
		for i, e := range expr.Elements {
			elems[i] = rewriteColumnRefs(e)
		}
		return &ast.ListLiteral{Token: expr.Token, Names: expr.Names, Elements: elems}
	case *ast.DictLiteral:
		pairs := make(map[string]ast.Expression, len(expr.Pairs))
		for k, v := range expr.Pairs {
			pairs[k] = rewriteColumnRefs(v)
		}
		return &ast.DictLiteral{Token: expr.Token, Keys: expr.Keys, Pairs: pairs}
	case *ast.IfExpression:
		return &ast.IfExpression{
			Token:       expr.Token,
			Condition:   rewriteColumnRefs(expr.Condition),
			Consequence: rewriteBlock(expr.Consequence),
			Alternative: rewriteBlock(expr.Alternative),
		}
	default:
		return expr
	}
}

func rewriteBlock(block *ast.BlockStatement) *ast.BlockStatement {
	if block == nil {
		return nil
	}
	out := &ast.BlockStatement{Token: block.Token}
	for _, stmt := range block.Statements {
		switch stmt := stmt.(type) {
		case *ast.ExpressionStatement:
			out.Statements = append(out.Statements, &ast.ExpressionStatement{
				Token:      stmt.Token,
				Expression: rewriteColumnRefs(stmt.Expression),
			})
		case *ast.LetStatement:
			out.Statements = append(out.Statements, &ast.LetStatement{
				Token: stmt.Token,
				Name:  stmt.Name,
				Value: rewriteColumnRefs(stmt.Value),
			})
		case *ast.SetStatement:
			out.Statements = append(out.Statements, &ast.SetStatement{
				Token: stmt.Token,
				Name:  stmt.Name,
				Value: rewriteColumnRefs(stmt.Value),
			})
		case *ast.ReturnStatement:
			out.Statements = append(out.Statements, &ast.ReturnStatement{
				Token:       stmt.Token,
				ReturnValue: rewriteColumnRefs(stmt.ReturnValue),
			})
		default:
			out.Statements = append(out.Statements, stmt)
		}
	}
	return out
}
