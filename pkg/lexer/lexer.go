// Package lexer implements the risp tokenizer.
package lexer

import (
	"fmt"

	"github.com/thomasrohde/risp/pkg/ast"
	"github.com/thomasrohde/risp/pkg/diagnostics"
)

// TokenType identifies the type of a lexer token.
type TokenType int

const (
	// Keywords
	TokIf TokenType = iota
	TokDefine
	TokFunc
	TokApply
	TokTrue
	TokFalse

	// Literals
	TokIntLit

	// Identifiers
	TokIdent

	// Punctuation
	TokLParen // (
	TokRParen // )

	// Operators
	TokPlus  // +
	TokMinus // -
	TokEqEq  // ==

	// Special
	TokEOF
)

// Token represents a single lexer token.
type Token struct {
	Type  TokenType
	Value string
	Span  ast.Span
}

var keywords = map[string]TokenType{
	"If":     TokIf,
	"Define": TokDefine,
	"Func":   TokFunc,
	"Apply":  TokApply,
	"true":   TokTrue,
	"false":  TokFalse,
}

// IsKeyword reports whether t is a reserved word.
func IsKeyword(t TokenType) bool {
	return t >= TokIf && t <= TokFalse
}

type scanner struct {
	source   string
	filename string
	pos      int
	line     int
	col      int
}

func newScanner(source, filename string) *scanner {
	return &scanner{
		source:   source,
		filename: filename,
		line:     1,
		col:      1,
	}
}

func (s *scanner) atEnd() bool {
	return s.pos >= len(s.source)
}

func (s *scanner) peek() byte {
	if s.atEnd() {
		return 0
	}
	return s.source[s.pos]
}

func (s *scanner) advance() byte {
	ch := s.source[s.pos]
	s.pos++
	if ch == '\n' {
		s.line++
		s.col = 1
	} else {
		s.col++
	}
	return ch
}

func (s *scanner) span(startLine, startCol int) ast.Span {
	return ast.Span{
		File:      s.filename,
		StartLine: startLine,
		StartCol:  startCol,
		EndLine:   s.line,
		EndCol:    s.col,
	}
}

func (s *scanner) skipWhitespaceAndComments() {
	for !s.atEnd() {
		ch := s.peek()
		if ch == ' ' || ch == '\t' || ch == '\r' || ch == '\n' {
			s.advance()
		} else if ch == ';' {
			for !s.atEnd() && s.peek() != '\n' {
				s.advance()
			}
		} else {
			break
		}
	}
}

func isAlpha(ch byte) bool {
	return (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z') || ch == '_'
}

func isDigit(ch byte) bool {
	return ch >= '0' && ch <= '9'
}

func isAlphaNumeric(ch byte) bool {
	return isAlpha(ch) || isDigit(ch)
}

// scanNumber reads a run of decimal digits. Range checking is left to the
// parser, which owns the conversion to uint64. A letter or underscore
// directly after the digits is an error, not the start of a new token.
func (s *scanner) scanNumber() (Token, error) {
	startLine, startCol := s.line, s.col
	startPos := s.pos

	for !s.atEnd() && isDigit(s.peek()) {
		s.advance()
	}

	if !s.atEnd() && isAlpha(s.peek()) {
		for !s.atEnd() && isAlphaNumeric(s.peek()) {
			s.advance()
		}
		return Token{}, s.lexError(startLine, startCol,
			fmt.Sprintf("invalid number literal '%s'", s.source[startPos:s.pos]))
	}

	return Token{
		Type:  TokIntLit,
		Value: s.source[startPos:s.pos],
		Span:  s.span(startLine, startCol),
	}, nil
}

func (s *scanner) scanIdentOrKeyword() Token {
	startLine, startCol := s.line, s.col
	startPos := s.pos

	for !s.atEnd() && isAlphaNumeric(s.peek()) {
		s.advance()
	}

	text := s.source[startPos:s.pos]
	typ := TokIdent
	if kw, ok := keywords[text]; ok {
		typ = kw
	}
	return Token{
		Type:  typ,
		Value: text,
		Span:  s.span(startLine, startCol),
	}
}

func (s *scanner) lexError(line, col int, msg string) error {
	diag := diagnostics.MakeDiag(
		diagnostics.ELex,
		msg,
		&ast.Span{File: s.filename, StartLine: line, StartCol: col, EndLine: line, EndCol: col + 1},
		"",
	)
	return &LexError{Diag: diag}
}

// LexError wraps a diagnostic for lex errors.
type LexError struct {
	Diag diagnostics.Diagnostic
}

func (e *LexError) Error() string {
	return e.Diag.Message
}

func (s *scanner) nextToken() (Token, error) {
	s.skipWhitespaceAndComments()

	if s.atEnd() {
		return Token{
			Type: TokEOF,
			Span: s.span(s.line, s.col),
		}, nil
	}

	ch := s.peek()
	startLine, startCol := s.line, s.col

	switch ch {
	case '(':
		s.advance()
		return Token{Type: TokLParen, Value: "(", Span: s.span(startLine, startCol)}, nil
	case ')':
		s.advance()
		return Token{Type: TokRParen, Value: ")", Span: s.span(startLine, startCol)}, nil
	case '+':
		s.advance()
		return Token{Type: TokPlus, Value: "+", Span: s.span(startLine, startCol)}, nil
	case '-':
		s.advance()
		return Token{Type: TokMinus, Value: "-", Span: s.span(startLine, startCol)}, nil
	case '=':
		s.advance()
		if !s.atEnd() && s.peek() == '=' {
			s.advance()
			return Token{Type: TokEqEq, Value: "==", Span: s.span(startLine, startCol)}, nil
		}
		return Token{}, s.lexError(startLine, startCol, "unexpected character '=' (did you mean '=='?)")
	}

	if isDigit(ch) {
		return s.scanNumber()
	}

	if isAlpha(ch) {
		return s.scanIdentOrKeyword(), nil
	}

	s.advance()
	if ch < 0x20 || ch >= 0x7f {
		return Token{}, s.lexError(startLine, startCol, fmt.Sprintf("unexpected byte 0x%02x", ch))
	}
	return Token{}, s.lexError(startLine, startCol, fmt.Sprintf("unexpected character '%c'", ch))
}

// Tokenize breaks source code into a slice of tokens ending with TokEOF.
func Tokenize(source, filename string) ([]Token, error) {
	s := newScanner(source, filename)
	var tokens []Token

	for {
		tok, err := s.nextToken()
		if err != nil {
			return nil, err
		}
		tokens = append(tokens, tok)
		if tok.Type == TokEOF {
			break
		}
	}

	return tokens, nil
}
