// Package errors provides structured error types for the rill language.
//
// It defines RillError, a unified error type covering parser and runtime
// errors, and a catalog of templated error definitions. Every definition is
// tagged with one of the closed taxonomy codes the runtime guarantees
// (TypeError, DivisionByZero, ValueError, KeyError, NameError, ArityError,
// AssertionError, GenericError, CycleError, NodeNotFoundError, plus
// ParseError for the front end).
package errors

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"
)

// Code is a taxonomy code for an error. The set is closed: runtime code never
// invents codes outside these constants.
type Code string

const (
	CodeParse        Code = "ParseError"
	CodeType         Code = "TypeError"
	CodeDivision     Code = "DivisionByZero"
	CodeValue        Code = "ValueError"
	CodeKey          Code = "KeyError"
	CodeName         Code = "NameError"
	CodeArity        Code = "ArityError"
	CodeAssertion    Code = "AssertionError"
	CodeGeneric      Code = "GenericError"
	CodeCycle        Code = "CycleError"
	CodeNodeNotFound Code = "NodeNotFoundError"
)

// RillError represents any error from parsing or evaluation.
type RillError struct {
	Code    Code           `json:"code"`            // Taxonomy code
	ID      string         `json:"id,omitempty"`    // Catalog id (e.g. "TYPE-0003")
	Message string         `json:"message"`         // Human-readable message
	Hints   []string       `json:"hints,omitempty"` // Suggestions for fixing
	Line    int            `json:"line"`            // 1-based line (0 if unknown)
	Column  int            `json:"column"`          // 1-based column (0 if unknown)
	Data    map[string]any `json:"data,omitempty"`  // Template variables / context
}

// Error implements the error interface.
func (e *RillError) Error() string {
	return e.String()
}

// String returns a formatted string representation of the error.
func (e *RillError) String() string {
	var sb strings.Builder

	if e.Line > 0 {
		sb.WriteString(fmt.Sprintf("line %d, column %d: ", e.Line, e.Column))
	}
	sb.WriteString(string(e.Code))
	sb.WriteString(": ")
	sb.WriteString(e.Message)

	for _, hint := range e.Hints {
		sb.WriteString("\n  ")
		sb.WriteString(hint)
	}

	return sb.String()
}

// PrettyString returns a multi-line formatted string for display.
func (e *RillError) PrettyString() string {
	var sb strings.Builder

	if e.Code == CodeParse {
		sb.WriteString("Parser error")
	} else {
		sb.WriteString("Runtime error")
	}

	if e.Line > 0 {
		sb.WriteString(fmt.Sprintf(": line %d, column %d\n  ", e.Line, e.Column))
	} else {
		sb.WriteString(":\n  ")
	}

	sb.WriteString(string(e.Code))
	sb.WriteString(": ")
	sb.WriteString(e.Message)

	for i, hint := range e.Hints {
		sb.WriteString("\n  ")
		if i == 0 {
			sb.WriteString("Use: ")
		} else {
			sb.WriteString(" or: ")
		}
		sb.WriteString(hint)
	}

	return sb.String()
}

// Def defines an error in the catalog.
type Def struct {
	Code     Code     // Taxonomy code
	Template string   // Message template with {{.placeholders}}
	Hints    []string // Hint templates (may use {{.placeholders}})
}

// Catalog maps catalog ids to their definitions.
var Catalog = map[string]Def{
	// ========================================
	// Parse errors (PARSE-0xxx)
	// ========================================
	"PARSE-0001": {
		Code:     CodeParse,
		Template: "expected {{.Expected}}, got '{{.Got}}'",
	},
	"PARSE-0002": {
		Code:     CodeParse,
		Template: "unexpected token '{{.Token}}'",
	},
	"PARSE-0003": {
		Code:     CodeParse,
		Template: "invalid number literal: {{.Literal}}",
	},
	"PARSE-0004": {
		Code:     CodeParse,
		Template: "pipeline node '{{.Name}}' must be declared as name = expression",
		Hints:    []string{"pipeline { total = a + b; a = 1; b = 2 }"},
	},
	"PARSE-0005": {
		Code:     CodeParse,
		Template: "duplicate key '{{.Key}}' in dictionary literal",
	},

	// ========================================
	// Type errors (TYPE-0xxx)
	// ========================================
	"TYPE-0001": {
		Code:     CodeType,
		Template: "unsupported operand types for '{{.Operator}}': {{.LeftType}} and {{.RightType}}",
	},
	"TYPE-0002": {
		Code:     CodeType,
		Template: "'{{.Operator}}' is a strict scalar operator and cannot take a {{.Type}} operand",
		Hints:    []string{"use the element-wise form '{{.Broadcast}}'"},
	},
	"TYPE-0003": {
		Code:     CodeType,
		Template: "Operation on NA: NA values do not propagate implicitly. Handle missingness explicitly.",
		Hints:    []string{"pass naRM: sum(xs, true)", "test with isNA(x)"},
	},
	"TYPE-0004": {
		Code:     CodeType,
		Template: "'+' does not concatenate strings",
		Hints:    []string{`paste("a", "b")`, `join(parts, ", ")`},
	},
	"TYPE-0005": {
		Code:     CodeType,
		Template: "{{.Side}} operand of '{{.Operator}}' must be a boolean, got {{.Type}}",
	},
	"TYPE-0006": {
		Code:     CodeType,
		Template: "right operand of 'in' must be a list, got {{.Type}}",
	},
	"TYPE-0007": {
		Code:     CodeType,
		Template: "unknown prefix operator '{{.Operator}}' for {{.Type}}",
	},
	"TYPE-0008": {
		Code:     CodeType,
		Template: "{{.Function}} expects {{.Expected}}, got {{.Got}}",
	},
	"TYPE-0009": {
		Code:     CodeType,
		Template: "cannot call a value of type {{.Type}}",
	},
	"TYPE-0010": {
		Code:     CodeType,
		Template: "cannot index into {{.Type}}",
	},
	"TYPE-0011": {
		Code:     CodeType,
		Template: "'{{.Operator}}' has no element-wise meaning for {{.LeftType}} and {{.RightType}}",
	},
	"TYPE-0012": {
		Code:     CodeType,
		Template: "a column reference ($) is only meaningful inside a call argument",
		Hints:    []string{"filterRows(df, $price .> 10)"},
	},

	// ========================================
	// Arithmetic (DIV-0xxx)
	// ========================================
	"DIV-0001": {
		Code:     CodeDivision,
		Template: "division by zero",
	},
	"DIV-0002": {
		Code:     CodeDivision,
		Template: "modulo by zero",
	},

	// ========================================
	// Value errors (VAL-0xxx)
	// ========================================
	"VAL-0001": {
		Code:     CodeValue,
		Template: "element-wise '{{.Operator}}' needs equal lengths, got {{.LeftLen}} and {{.RightLen}}",
	},
	"VAL-0002": {
		Code:     CodeValue,
		Template: "index {{.Index}} out of range for length {{.Length}}",
	},
	"VAL-0003": {
		Code:     CodeValue,
		Template: "{{.Function}}: invalid argument value: {{.Reason}}",
	},
	"VAL-0004": {
		Code:     CodeValue,
		Template: "vector elements must share one scalar kind, got {{.Kinds}}",
	},

	// ========================================
	// Key errors (KEY-0xxx)
	// ========================================
	"KEY-0001": {
		Code:     CodeKey,
		Template: "key '{{.Key}}' not found",
	},
	"KEY-0002": {
		Code:     CodeKey,
		Template: "no column named '{{.Column}}'",
	},

	// ========================================
	// Name errors (NAME-0xxx)
	// ========================================
	"NAME-0001": {
		Code:     CodeName,
		Template: "identifier not found: {{.Name}}",
	},
	"NAME-0002": {
		Code:     CodeName,
		Template: "'{{.Name}}' is already bound; plain 'let' cannot rebind",
		Hints:    []string{"set {{.Name}} = ..."},
	},
	"NAME-0003": {
		Code:     CodeName,
		Template: "cannot set '{{.Name}}': no existing binding",
		Hints:    []string{"let {{.Name}} = ..."},
	},

	// ========================================
	// Arity errors (ARITY-0xxx)
	// ========================================
	"ARITY-0001": {
		Code:     CodeArity,
		Template: "{{.Function}} expects {{.Want}} argument(s), got {{.Got}}",
	},
	"ARITY-0002": {
		Code:     CodeArity,
		Template: "{{.Function}} expects at least {{.Min}} argument(s), got {{.Got}}",
	},

	// ========================================
	// Assertions and user errors
	// ========================================
	"ASSERT-0001": {
		Code:     CodeAssertion,
		Template: "assertion failed{{if .Detail}}: {{.Detail}}{{end}}",
	},
	"USER-0001": {
		Code:     CodeGeneric,
		Template: "{{.Message}}",
	},

	// ========================================
	// Pipeline errors (PIPE-0xxx)
	// ========================================
	"PIPE-0001": {
		Code:     CodeCycle,
		Template: "dependency cycle between pipeline nodes: {{.Nodes}}",
	},
	"PIPE-0002": {
		Code:     CodeNodeNotFound,
		Template: "no pipeline node named '{{.Name}}'",
	},
	"PIPE-0003": {
		Code:     CodeValue,
		Template: "duplicate pipeline node name '{{.Name}}'",
	},
}

// New creates a RillError from the catalog.
func New(id string, data map[string]any) *RillError {
	def, ok := Catalog[id]
	if !ok {
		msg := id
		if data != nil {
			if m, ok := data["Message"].(string); ok {
				msg = m
			}
		}
		return &RillError{
			Code:    CodeGeneric,
			ID:      id,
			Message: msg,
			Data:    data,
		}
	}

	msg := renderTemplate(def.Template, data)

	var hints []string
	for _, hintTmpl := range def.Hints {
		rendered := renderTemplate(hintTmpl, data)
		if rendered != "" {
			hints = append(hints, rendered)
		}
	}

	return &RillError{
		Code:    def.Code,
		ID:      id,
		Message: msg,
		Hints:   hints,
		Data:    data,
	}
}

// NewWithPosition creates a RillError with position information.
func NewWithPosition(id string, line, column int, data map[string]any) *RillError {
	e := New(id, data)
	e.Line = line
	e.Column = column
	return e
}

// renderTemplate renders a message template with the given data. A template
// that fails to render falls back to its raw text so an error is never lost
// to a formatting bug.
func renderTemplate(tmpl string, data map[string]any) string {
	if !strings.Contains(tmpl, "{{") {
		return tmpl
	}

	t, err := template.New("err").Parse(tmpl)
	if err != nil {
		return tmpl
	}

	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return tmpl
	}
	return buf.String()
}

// TypeName maps an internal object-type tag to the name shown in messages.
func TypeName(objType string) string {
	switch objType {
	case "INTEGER":
		return "an integer"
	case "FLOAT":
		return "a float"
	case "BOOLEAN":
		return "a boolean"
	case "STRING":
		return "a string"
	case "NULL":
		return "null"
	case "NA":
		return "NA"
	case "LIST":
		return "a list"
	case "DICTIONARY":
		return "a dictionary"
	case "VECTOR":
		return "a vector"
	case "FUNCTION":
		return "a function"
	case "BUILTIN":
		return "a builtin function"
	case "DATAFRAME":
		return "a dataframe"
	case "PIPELINE":
		return "a pipeline"
	case "ERROR":
		return "an error"
	default:
		return strings.ToLower(objType)
	}
}
