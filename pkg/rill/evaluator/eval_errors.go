package evaluator

import (
	rerrors "github.com/rill-lang/rill/pkg/rill/errors"
	"github.com/rill-lang/rill/pkg/rill/lexer"
)

// newError builds an error value from the catalog.
func newError(id string, data map[string]any) *Error {
	return fromRillError(rerrors.New(id, data))
}

// newErrorWithPos builds an error value carrying the token's position.
func newErrorWithPos(id string, tok lexer.Token, data map[string]any) *Error {
	return fromRillError(rerrors.NewWithPosition(id, tok.Line, tok.Column, data))
}

func fromRillError(re *rerrors.RillError) *Error {
	return &Error{
		Code:    re.Code,
		ID:      re.ID,
		Message: re.Message,
		Hints:   re.Hints,
		Line:    re.Line,
		Column:  re.Column,
		Data:    re.Data,
	}
}

// withPosition stamps the token's position onto an error value that has none.
// Non-errors pass through untouched.
func withPosition(obj Object, tok lexer.Token) Object {
	err, ok := obj.(*Error)
	if !ok || err.Line > 0 {
		return obj
	}
	err.Line = tok.Line
	err.Column = tok.Column
	return err
}
