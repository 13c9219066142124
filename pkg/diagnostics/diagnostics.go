// Package diagnostics defines risp diagnostic types for parse/validation/runtime errors.
package diagnostics

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/thomasrohde/risp/pkg/ast"
)

// Diagnostic code constants.
const (
	ELex         = "E_LEX"
	EParse       = "E_PARSE"
	EDupParam    = "E_DUP_PARAM"
	EType        = "E_TYPE"
	EUnbound     = "E_UNBOUND"
	ENotCallable = "E_NOT_CALLABLE"
	EArity       = "E_ARITY"
	EUnderflow   = "E_UNDERFLOW"
	EOverflow    = "E_OVERFLOW"
	EStack       = "E_STACK"
	EBudget      = "E_BUDGET"
	ECanceled    = "E_CANCELED"
	EConfig      = "E_CONFIG"
	EIO          = "E_IO"
)

// Diagnostic represents a parse, validation, or runtime diagnostic.
type Diagnostic struct {
	Code    string    `json:"code"`
	Message string    `json:"message"`
	Span    *ast.Span `json:"span,omitempty"`
	Hint    string    `json:"hint,omitempty"`
}

// MakeDiag creates a new Diagnostic.
func MakeDiag(code, message string, span *ast.Span, hint string) Diagnostic {
	return Diagnostic{
		Code:    code,
		Message: message,
		Span:    span,
		Hint:    hint,
	}
}

// FormatDiagnostic formats a single diagnostic for display.
func FormatDiagnostic(d Diagnostic, pretty bool) string {
	if !pretty {
		b, _ := json.Marshal(d)
		return string(b)
	}
	loc := "<unknown>"
	if d.Span != nil {
		loc = fmt.Sprintf("%s:%d:%d", d.Span.File, d.Span.StartLine, d.Span.StartCol)
	}
	out := fmt.Sprintf("error[%s]: %s\n  --> %s", d.Code, d.Message, loc)
	if d.Hint != "" {
		out += fmt.Sprintf("\n  hint: %s", d.Hint)
	}
	return out
}

// FormatDiagnostics formats a slice of diagnostics for display.
func FormatDiagnostics(diags []Diagnostic, pretty bool) string {
	if !pretty {
		b, _ := json.Marshal(diags)
		return string(b)
	}
	parts := make([]string, len(diags))
	for i, d := range diags {
		parts[i] = FormatDiagnostic(d, true)
	}
	return strings.Join(parts, "\n\n")
}
