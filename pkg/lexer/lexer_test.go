package lexer

import (
	"errors"
	"strings"
	"testing"

	"github.com/thomasrohde/risp/pkg/diagnostics"
)

// helper to tokenize and fail on error
func mustTokenize(t *testing.T, source string) []Token {
	t.Helper()
	tokens, err := Tokenize(source, "test.risp")
	if err != nil {
		t.Fatalf("unexpected lex error: %v", err)
	}
	return tokens
}

// helper that strips the trailing EOF for easier assertions
func mustTokenizeNoEOF(t *testing.T, source string) []Token {
	t.Helper()
	tokens := mustTokenize(t, source)
	if len(tokens) == 0 {
		t.Fatal("expected at least one token (EOF)")
	}
	if tokens[len(tokens)-1].Type != TokEOF {
		t.Fatal("last token is not EOF")
	}
	return tokens[:len(tokens)-1]
}

func expectTypes(t *testing.T, tokens []Token, want ...TokenType) {
	t.Helper()
	if len(tokens) != len(want) {
		t.Fatalf("got %d tokens, want %d: %+v", len(tokens), len(want), tokens)
	}
	for i, w := range want {
		if tokens[i].Type != w {
			t.Errorf("token %d: got type %v (%q), want %v", i, tokens[i].Type, tokens[i].Value, w)
		}
	}
}

func TestEmptyInput(t *testing.T) {
	tokens := mustTokenize(t, "")
	if len(tokens) != 1 {
		t.Fatalf("expected 1 token (EOF), got %d", len(tokens))
	}
	if tokens[0].Type != TokEOF {
		t.Errorf("expected TokEOF, got %v", tokens[0].Type)
	}
}

func TestKeywords(t *testing.T) {
	tests := []struct {
		keyword  string
		expected TokenType
	}{
		{"If", TokIf},
		{"Define", TokDefine},
		{"Func", TokFunc},
		{"Apply", TokApply},
		{"true", TokTrue},
		{"false", TokFalse},
	}

	for _, tt := range tests {
		t.Run(tt.keyword, func(t *testing.T) {
			tokens := mustTokenizeNoEOF(t, tt.keyword)
			expectTypes(t, tokens, tt.expected)
			if !IsKeyword(tokens[0].Type) {
				t.Errorf("IsKeyword(%v) = false", tokens[0].Type)
			}
		})
	}
}

func TestKeywordsAreCaseSensitive(t *testing.T) {
	for _, src := range []string{"if", "define", "FUNC", "apply", "True", "FALSE"} {
		t.Run(src, func(t *testing.T) {
			tokens := mustTokenizeNoEOF(t, src)
			expectTypes(t, tokens, TokIdent)
		})
	}
}

func TestIdentifiers(t *testing.T) {
	for _, src := range []string{"x", "plus_two", "_tmp", "n1", "Ifx", "Applyf"} {
		t.Run(src, func(t *testing.T) {
			tokens := mustTokenizeNoEOF(t, src)
			expectTypes(t, tokens, TokIdent)
			if tokens[0].Value != src {
				t.Errorf("got value %q, want %q", tokens[0].Value, src)
			}
		})
	}
}

func TestOperatorsAndParens(t *testing.T) {
	tokens := mustTokenizeNoEOF(t, "( ) + - ==")
	expectTypes(t, tokens, TokLParen, TokRParen, TokPlus, TokMinus, TokEqEq)
}

func TestIntegerLiteral(t *testing.T) {
	tokens := mustTokenizeNoEOF(t, "0 42 18446744073709551616")
	expectTypes(t, tokens, TokIntLit, TokIntLit, TokIntLit)
	if tokens[2].Value != "18446744073709551616" {
		t.Errorf("got %q, lexer must not range-check literals", tokens[2].Value)
	}
}

func TestMinusBeforeDigitIsOperator(t *testing.T) {
	tokens := mustTokenizeNoEOF(t, "-5")
	expectTypes(t, tokens, TokMinus, TokIntLit)
}

func TestNestedForm(t *testing.T) {
	tokens := mustTokenizeNoEOF(t, "(Define plus_two (Func (x) (+ x 2)))")
	expectTypes(t, tokens,
		TokLParen, TokDefine, TokIdent,
		TokLParen, TokFunc, TokLParen, TokIdent, TokRParen,
		TokLParen, TokPlus, TokIdent, TokIntLit, TokRParen,
		TokRParen, TokRParen,
	)
}

func TestComments(t *testing.T) {
	tokens := mustTokenizeNoEOF(t, "; leading comment\n(+ 1 2) ; trailing\n; last")
	expectTypes(t, tokens, TokLParen, TokPlus, TokIntLit, TokIntLit, TokRParen)
}

func TestSpans(t *testing.T) {
	tokens := mustTokenizeNoEOF(t, "(+ 1\n  23)")
	num := tokens[3]
	if num.Value != "23" {
		t.Fatalf("expected token '23', got %q", num.Value)
	}
	if num.Span.StartLine != 2 || num.Span.StartCol != 3 {
		t.Errorf("got start %d:%d, want 2:3", num.Span.StartLine, num.Span.StartCol)
	}
	if num.Span.EndLine != 2 || num.Span.EndCol != 5 {
		t.Errorf("got end %d:%d, want 2:5", num.Span.EndLine, num.Span.EndCol)
	}
	if num.Span.File != "test.risp" {
		t.Errorf("got file %q", num.Span.File)
	}
}

func TestLexErrors(t *testing.T) {
	tests := []struct {
		source string
		line   int
		col    int
	}{
		{"=", 1, 1},
		{"(+ 1 2.5)", 1, 7},
		{"x\n  @", 2, 3},
		{"\"str\"", 1, 1},
		{"\x00", 1, 1},
		{"(+ 1x)", 1, 4},
		{"12abc", 1, 1},
		{"(Apply f 7_)", 1, 10},
	}

	for _, tt := range tests {
		t.Run(tt.source, func(t *testing.T) {
			_, err := Tokenize(tt.source, "test.risp")
			if err == nil {
				t.Fatal("expected lex error")
			}
			var lexErr *LexError
			if !errors.As(err, &lexErr) {
				t.Fatalf("expected *LexError, got %T", err)
			}
			if lexErr.Diag.Code != diagnostics.ELex {
				t.Errorf("got code %q, want %q", lexErr.Diag.Code, diagnostics.ELex)
			}
			if lexErr.Diag.Span.StartLine != tt.line || lexErr.Diag.Span.StartCol != tt.col {
				t.Errorf("got position %d:%d, want %d:%d",
					lexErr.Diag.Span.StartLine, lexErr.Diag.Span.StartCol, tt.line, tt.col)
			}
		})
	}
}

func TestNumberFollowedByLetterIsRejected(t *testing.T) {
	_, err := Tokenize("(+ 1x)", "test.risp")
	var lexErr *LexError
	if !errors.As(err, &lexErr) {
		t.Fatalf("expected *LexError, got %v", err)
	}
	if !strings.Contains(lexErr.Diag.Message, "invalid number literal '1x'") {
		t.Errorf("got message %q", lexErr.Diag.Message)
	}
}
