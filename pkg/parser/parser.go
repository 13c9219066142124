// Package parser implements the risp recursive-descent parser.
package parser

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/thomasrohde/risp/pkg/ast"
	"github.com/thomasrohde/risp/pkg/diagnostics"
	"github.com/thomasrohde/risp/pkg/lexer"
)

type parser struct {
	tokens []lexer.Token
	pos    int
	diags  []diagnostics.Diagnostic
}

// Parse tokenizes source and parses it into a program of top-level expressions.
func Parse(source, filename string) (*ast.Program, []diagnostics.Diagnostic) {
	p, diags := newParser(source, filename)
	if diags != nil {
		return nil, diags
	}

	prog := p.parseProgram()
	if len(p.diags) > 0 {
		return nil, p.diags
	}
	return prog, nil
}

// ParseExpr parses source that must contain exactly one expression.
func ParseExpr(source, filename string) (ast.Expr, []diagnostics.Diagnostic) {
	p, diags := newParser(source, filename)
	if diags != nil {
		return nil, diags
	}

	if p.peek() == lexer.TokEOF {
		tok := p.current()
		p.addError("expected an expression, got end of file", &tok.Span)
		return nil, p.diags
	}
	expr := p.parseExpr()
	if expr == nil {
		return nil, p.diags
	}
	if p.peek() != lexer.TokEOF {
		tok := p.current()
		p.addError(fmt.Sprintf("unexpected '%s' after expression", tok.Value), &tok.Span)
		return nil, p.diags
	}
	return expr, nil
}

func newParser(source, filename string) (*parser, []diagnostics.Diagnostic) {
	tokens, err := lexer.Tokenize(source, filename)
	if err != nil {
		var le *lexer.LexError
		if errors.As(err, &le) {
			return nil, []diagnostics.Diagnostic{le.Diag}
		}
		return nil, []diagnostics.Diagnostic{diagnostics.MakeDiag(diagnostics.ELex, err.Error(), nil, "")}
	}
	return &parser{tokens: tokens}, nil
}

func (p *parser) current() lexer.Token {
	if p.pos >= len(p.tokens) {
		return p.tokens[len(p.tokens)-1] // EOF
	}
	return p.tokens[p.pos]
}

func (p *parser) peek() lexer.TokenType {
	return p.current().Type
}

func (p *parser) advance() lexer.Token {
	tok := p.current()
	if p.pos < len(p.tokens)-1 {
		p.pos++
	}
	return tok
}

func (p *parser) expect(typ lexer.TokenType) (lexer.Token, bool) {
	tok := p.current()
	if tok.Type != typ {
		p.addError(fmt.Sprintf("expected %s, got %s", tokenName(typ), describe(tok)), &tok.Span)
		return tok, false
	}
	return p.advance(), true
}

func (p *parser) addError(msg string, span *ast.Span) {
	p.diags = append(p.diags, diagnostics.MakeDiag(diagnostics.EParse, msg, span, ""))
}

func (p *parser) spanFrom(start ast.Span) ast.Span {
	cur := p.current().Span
	return ast.Span{
		File:      start.File,
		StartLine: start.StartLine,
		StartCol:  start.StartCol,
		EndLine:   cur.StartLine,
		EndCol:    cur.StartCol,
	}
}

func (p *parser) spanFromTo(start, end ast.Span) ast.Span {
	return ast.Span{
		File:      start.File,
		StartLine: start.StartLine,
		StartCol:  start.StartCol,
		EndLine:   end.EndLine,
		EndCol:    end.EndCol,
	}
}

func tokenName(t lexer.TokenType) string {
	switch t {
	case lexer.TokLParen:
		return "'('"
	case lexer.TokRParen:
		return "')'"
	case lexer.TokIdent:
		return "identifier"
	case lexer.TokIntLit:
		return "integer"
	case lexer.TokEOF:
		return "end of file"
	default:
		return fmt.Sprintf("token(%d)", t)
	}
}

func describe(tok lexer.Token) string {
	if tok.Type == lexer.TokEOF {
		return "end of file"
	}
	return fmt.Sprintf("'%s'", tok.Value)
}

// --- Program ---

func (p *parser) parseProgram() *ast.Program {
	startSpan := p.current().Span

	var exprs []ast.Expr
	for p.peek() != lexer.TokEOF {
		expr := p.parseExpr()
		if expr == nil {
			return nil
		}
		exprs = append(exprs, expr)
	}

	return &ast.Program{
		Span:  p.spanFrom(startSpan),
		Exprs: exprs,
	}
}

// --- Expressions ---

func (p *parser) parseExpr() ast.Expr {
	tok := p.current()

	switch tok.Type {
	case lexer.TokIntLit:
		p.advance()
		v, err := strconv.ParseUint(tok.Value, 10, 64)
		if err != nil {
			p.addError(fmt.Sprintf("integer literal %s does not fit in 64 bits", tok.Value), &tok.Span)
			return nil
		}
		return &ast.NumLiteral{Span: tok.Span, Value: v}

	case lexer.TokTrue, lexer.TokFalse:
		p.advance()
		return &ast.BoolLiteral{Span: tok.Span, Value: tok.Type == lexer.TokTrue}

	case lexer.TokIdent:
		p.advance()
		return &ast.IdentExpr{Span: tok.Span, Name: tok.Value}

	case lexer.TokLParen:
		return p.parseForm()

	case lexer.TokEOF:
		p.addError("unexpected end of file, expected an expression", &tok.Span)
		return nil

	case lexer.TokRParen:
		p.addError("unexpected ')'", &tok.Span)
		return nil
	}

	// Keywords and operators are only valid at the head of a form.
	p.addError(fmt.Sprintf("'%s' must appear at the head of a form, e.g. (%s ...)", tok.Value, tok.Value), &tok.Span)
	return nil
}

func (p *parser) parseForm() ast.Expr {
	open := p.advance() // consume '('
	head := p.current()

	var expr ast.Expr
	switch head.Type {
	case lexer.TokPlus, lexer.TokMinus, lexer.TokEqEq:
		expr = p.parseBinary(open)
	case lexer.TokIf:
		expr = p.parseIf(open)
	case lexer.TokDefine:
		expr = p.parseDefine(open)
	case lexer.TokFunc:
		expr = p.parseFunc(open)
	case lexer.TokApply:
		expr = p.parseApply(open)
	case lexer.TokRParen:
		p.addError("empty form '()'", &head.Span)
		return nil
	case lexer.TokIdent:
		p.addError(fmt.Sprintf("unknown form '%s'", head.Value), &head.Span)
		p.diags[len(p.diags)-1].Hint = fmt.Sprintf("to call a function write (Apply %s ...)", head.Value)
		return nil
	default:
		p.addError(fmt.Sprintf("expected a form keyword (+, -, ==, If, Define, Func, Apply), got %s", describe(head)), &head.Span)
		return nil
	}
	return expr
}

// closeForm consumes the closing paren and returns the span of the whole form.
func (p *parser) closeForm(open lexer.Token) (ast.Span, bool) {
	closeTok, ok := p.expect(lexer.TokRParen)
	if !ok {
		return ast.Span{}, false
	}
	return p.spanFromTo(open.Span, closeTok.Span), true
}

func (p *parser) parseBinary(open lexer.Token) ast.Expr {
	opTok := p.advance()
	left := p.parseExpr()
	if left == nil {
		return nil
	}
	right := p.parseExpr()
	if right == nil {
		return nil
	}
	span, ok := p.closeForm(open)
	if !ok {
		return nil
	}
	return &ast.BinaryExpr{
		Span:  span,
		Op:    ast.BinaryOp(opTok.Value),
		Left:  left,
		Right: right,
	}
}

func (p *parser) parseIf(open lexer.Token) ast.Expr {
	p.advance() // consume 'If'
	cond := p.parseExpr()
	if cond == nil {
		return nil
	}
	then := p.parseExpr()
	if then == nil {
		return nil
	}
	els := p.parseExpr()
	if els == nil {
		return nil
	}
	span, ok := p.closeForm(open)
	if !ok {
		return nil
	}
	return &ast.IfExpr{Span: span, Cond: cond, Then: then, Else: els}
}

func (p *parser) parseDefine(open lexer.Token) ast.Expr {
	p.advance() // consume 'Define'
	nameTok, ok := p.expect(lexer.TokIdent)
	if !ok {
		return nil
	}
	value := p.parseExpr()
	if value == nil {
		return nil
	}
	span, ok := p.closeForm(open)
	if !ok {
		return nil
	}
	return &ast.DefineExpr{Span: span, Name: nameTok.Value, Value: value}
}

func (p *parser) parseFunc(open lexer.Token) ast.Expr {
	p.advance() // consume 'Func'
	if _, ok := p.expect(lexer.TokLParen); !ok {
		return nil
	}

	params := []string{}
	for p.peek() != lexer.TokRParen {
		paramTok, ok := p.expect(lexer.TokIdent)
		if !ok {
			return nil
		}
		params = append(params, paramTok.Value)
	}
	p.advance() // consume ')'

	body := p.parseExpr()
	if body == nil {
		return nil
	}
	span, ok := p.closeForm(open)
	if !ok {
		return nil
	}
	return &ast.FuncExpr{Span: span, Params: params, Body: body}
}

func (p *parser) parseApply(open lexer.Token) ast.Expr {
	p.advance() // consume 'Apply'
	callee := p.parseExpr()
	if callee == nil {
		return nil
	}

	args := []ast.Expr{}
	for p.peek() != lexer.TokRParen {
		if p.peek() == lexer.TokEOF {
			tok := p.current()
			p.addError("unterminated Apply form, expected ')'", &tok.Span)
			return nil
		}
		arg := p.parseExpr()
		if arg == nil {
			return nil
		}
		args = append(args, arg)
	}

	span, ok := p.closeForm(open)
	if !ok {
		return nil
	}
	return &ast.ApplyExpr{Span: span, Callee: callee, Args: args}
}
