package diagnostics_test

import (
	"strings"
	"testing"

	"github.com/thomasrohde/risp/pkg/ast"
	"github.com/thomasrohde/risp/pkg/diagnostics"
)

func TestMakeDiag(t *testing.T) {
	span := &ast.Span{File: "test.risp", StartLine: 1, StartCol: 1, EndLine: 1, EndCol: 5}
	d := diagnostics.MakeDiag(diagnostics.EParse, "unexpected token", span, "check syntax")

	if d.Code != diagnostics.EParse {
		t.Errorf("got Code = %q, want %q", d.Code, diagnostics.EParse)
	}
	if d.Message != "unexpected token" {
		t.Errorf("got Message = %q, want %q", d.Message, "unexpected token")
	}
}

func TestFormatDiagnosticPretty(t *testing.T) {
	span := &ast.Span{File: "test.risp", StartLine: 3, StartCol: 5, EndLine: 3, EndCol: 10}
	d := diagnostics.MakeDiag(diagnostics.EUnbound, "unbound identifier 'x'", span, "define it first with (Define x ...)")

	out := diagnostics.FormatDiagnostic(d, true)
	if !strings.Contains(out, "error[E_UNBOUND]") {
		t.Errorf("expected error code in output, got: %s", out)
	}
	if !strings.Contains(out, "test.risp:3:5") {
		t.Errorf("expected location in output, got: %s", out)
	}
	if !strings.Contains(out, "hint:") {
		t.Errorf("expected hint in output, got: %s", out)
	}
}

func TestFormatDiagnosticJSON(t *testing.T) {
	d := diagnostics.MakeDiag(diagnostics.ELex, "bad token", nil, "")
	out := diagnostics.FormatDiagnostic(d, false)
	if !strings.Contains(out, `"code":"E_LEX"`) {
		t.Errorf("expected JSON code in output, got: %s", out)
	}
	if strings.Contains(out, "span") {
		t.Errorf("expected span to be omitted, got: %s", out)
	}
}

func TestFormatDiagnosticsJoinsPretty(t *testing.T) {
	diags := []diagnostics.Diagnostic{
		diagnostics.MakeDiag(diagnostics.EArity, "first", nil, ""),
		diagnostics.MakeDiag(diagnostics.EType, "second", nil, ""),
	}
	out := diagnostics.FormatDiagnostics(diags, true)
	if !strings.Contains(out, "error[E_ARITY]: first") || !strings.Contains(out, "error[E_TYPE]: second") {
		t.Errorf("missing entries in output: %s", out)
	}
	if !strings.Contains(out, "\n\n") {
		t.Errorf("expected blank line between diagnostics, got: %s", out)
	}
}
