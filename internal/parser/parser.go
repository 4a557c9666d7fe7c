// Package parser implements a hand-written recursive-descent parser that
// turns normalized source text into a *syntax.Tree, following the
// precedence chain of OAL's original combinator grammar (oal-syntax's
// parser.rs): sum ("|") looser than any ("~") looser than join ("&")
// looser than range ("::") looser than function application, which in turn
// wraps a single atomic term. Grounded on the teacher's hand-rolled
// recursive-descent internal/parser (one function per production, one
// token of lookahead), retargeted at OAL's grammar and apic's simplified
// tree shapes.
package parser

import (
	"fmt"

	"github.com/oalang/apic/internal/errors"
	"github.com/oalang/apic/internal/lexer"
	"github.com/oalang/apic/internal/locator"
	"github.com/oalang/apic/internal/syntax"
)

// parser holds the token stream and the tree under construction.
type parser struct {
	loc  locator.Locator
	lex  *lexer.Lexer
	tree *syntax.Tree

	cur  lexer.Token
	peek lexer.Token
}

// Parse tokenizes and parses text into a syntax.Tree rooted at a Program
// node. It satisfies internal/loader.Parser's signature so a Loader can
// drive it directly over a module set.
func Parse(loc locator.Locator, text string) (*syntax.Tree, error) {
	normalized := lexer.Normalize([]byte(text))
	p := &parser{
		loc:  loc,
		lex:  lexer.New(string(normalized)),
		tree: syntax.NewTree(loc),
	}
	p.cur = p.lex.NextToken()
	p.peek = p.lex.NextToken()

	root, err := p.parseProgram()
	if err != nil {
		return nil, err
	}
	p.tree.SetRoot(root)
	return p.tree, nil
}

func (p *parser) advance() {
	p.cur = p.peek
	p.peek = p.lex.NextToken()
}

func (p *parser) at(k lexer.Kind) bool {
	return p.cur.Kind == k
}

func (p *parser) span(start lexer.Pos, end lexer.Pos) locator.Span {
	return locator.Span{
		Loc:   p.loc,
		Start: locator.Pos{Line: start.Line, Column: start.Column, Offset: start.Offset},
		End:   locator.Pos{Line: end.Line, Column: end.Column, Offset: end.Offset},
	}
}

func (p *parser) spanFrom(start lexer.Pos) locator.Span {
	return p.span(start, p.cur.Start)
}

func (p *parser) fail(format string, args ...any) error {
	msg := fmt.Sprintf(format, args...)
	sp := p.span(p.cur.Start, p.cur.End)
	return errors.Wrap(errors.New(errors.ParseFailed, "parser", msg).
		WithCode(errors.PAR001).
		At(sp))
}

func (p *parser) expect(k lexer.Kind) (lexer.Token, error) {
	if !p.at(k) {
		return lexer.Token{}, p.fail("expected %s, found %s %q", k, p.cur.Kind, p.cur.Text)
	}
	tok := p.cur
	p.advance()
	return tok, nil
}

func (p *parser) new(kind syntax.Kind, sp locator.Span, tok syntax.Token, children ...*syntax.Node) *syntax.Node {
	return p.tree.New(kind, sp, tok, children...)
}

// ---------------------------------------------------------------------
// Program / statements
// ---------------------------------------------------------------------

func (p *parser) parseProgram() (*syntax.Node, error) {
	start := p.cur.Start
	var stmts []*syntax.Node
	for !p.at(lexer.EOF) {
		stmt, err := p.parseStatement()
		if err != nil {
			return nil, err
		}
		stmts = append(stmts, stmt)
	}
	return p.new(syntax.Program, p.spanFrom(start), syntax.Token{}, stmts...), nil
}

func (p *parser) parseStatement() (*syntax.Node, error) {
	switch {
	case p.at(lexer.KeywordUse):
		return p.parseImport()
	case p.at(lexer.KeywordRes):
		return p.parseResource()
	case p.at(lexer.KeywordLet), p.at(lexer.AnnotationLine):
		return p.parseDeclaration()
	default:
		return nil, p.fail("expected 'use', 'let' or 'res', found %s %q", p.cur.Kind, p.cur.Text)
	}
}

// parseImport: "use" STRING ("as" IDENT)? ";"
func (p *parser) parseImport() (*syntax.Node, error) {
	start := p.cur.Start
	p.advance() // 'use'
	path, err := p.expect(lexer.String)
	if err != nil {
		return nil, err
	}
	var children []*syntax.Node
	if p.at(lexer.KeywordAs) {
		p.advance()
		alias, err := p.expect(lexer.Ident)
		if err != nil {
			return nil, err
		}
		children = append(children, p.new(syntax.Qualifier, p.spanFrom(alias.Start), syntax.Token{Text: alias.Text}))
	}
	if _, err := p.expect(lexer.Semicolon); err != nil {
		return nil, err
	}
	return p.new(syntax.Import, p.spanFrom(start), syntax.Token{Text: path.Text}, children...), nil
}

// parseResource: "res" expression ";"
func (p *parser) parseResource() (*syntax.Node, error) {
	start := p.cur.Start
	p.advance() // 'res'
	expr, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.Semicolon); err != nil {
		return nil, err
	}
	return p.new(syntax.Resource, p.spanFrom(start), syntax.Token{}, expr), nil
}

// parseAnnotations collects zero or more leading "# ..." lines.
func (p *parser) parseAnnotations() []*syntax.Node {
	var out []*syntax.Node
	for p.at(lexer.AnnotationLine) {
		tok := p.cur
		out = append(out, p.new(syntax.Annotations, p.span(tok.Start, tok.End), syntax.Token{Text: tok.Text}))
		p.advance()
	}
	return out
}

// parseDeclaration: Annotations* "let" IDENT Bindings? "=" expression ";"
func (p *parser) parseDeclaration() (*syntax.Node, error) {
	start := p.cur.Start
	annotations := p.parseAnnotations()
	if _, err := p.expect(lexer.KeywordLet); err != nil {
		return nil, err
	}
	ident, err := p.expectIdentLike()
	if err != nil {
		return nil, err
	}
	bindings, err := p.parseBindings()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.Equal); err != nil {
		return nil, err
	}
	rhs, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.Semicolon); err != nil {
		return nil, err
	}
	children := append(annotations, bindings, rhs)
	return p.new(syntax.Declaration, p.spanFrom(start), syntax.Token{Text: ident.Text}, children...), nil
}

// expectIdentLike accepts a plain identifier or an identifier-reference
// ("@name"), the two forms a Declaration's bound name may take.
func (p *parser) expectIdentLike() (lexer.Token, error) {
	if p.at(lexer.IdentReference) {
		tok := p.cur
		p.advance()
		return tok, nil
	}
	return p.expect(lexer.Ident)
}

// parseBindings always returns a Bindings wrapper, even when empty.
func (p *parser) parseBindings() (*syntax.Node, error) {
	start := p.cur.Start
	var binds []*syntax.Node
	for p.at(lexer.Ident) {
		tok := p.cur
		binds = append(binds, p.new(syntax.Binding, p.span(tok.Start, tok.End), syntax.Token{Text: tok.Text}))
		p.advance()
	}
	return p.new(syntax.Bindings, p.spanFrom(start), syntax.Token{}, binds...), nil
}

// ---------------------------------------------------------------------
// Expressions: recursion, relation, and the variadic-operator chain
// ---------------------------------------------------------------------

// parseExpression: "rec" binding expression | relationKind
func (p *parser) parseExpression() (*syntax.Node, error) {
	if p.at(lexer.KeywordRec) {
		return p.parseRecursion()
	}
	return p.parseRelationKind()
}

// parseRecursion: "rec" IDENT expression
func (p *parser) parseRecursion() (*syntax.Node, error) {
	start := p.cur.Start
	p.advance() // 'rec'
	ident, err := p.expect(lexer.Ident)
	if err != nil {
		return nil, err
	}
	binding := p.new(syntax.Binding, p.span(ident.Start, ident.End), syntax.Token{Text: ident.Text})
	body, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	return p.new(syntax.Recursion, p.spanFrom(start), syntax.Token{}, binding, body), nil
}

// parseRelationKind: a term, optionally followed by "on" xferList. Without
// "on" it falls through to the ordinary operator precedence chain (a bare
// schema/content expression).
func (p *parser) parseRelationKind() (*syntax.Node, error) {
	start := p.cur.Start
	lhs, err := p.parseSumKind()
	if err != nil {
		return nil, err
	}
	if !p.at(lexer.KeywordOn) {
		return lhs, nil
	}
	p.advance() // 'on'
	xfers, err := p.parseXferList()
	if err != nil {
		return nil, err
	}
	return p.new(syntax.Relation, p.spanFrom(start), syntax.Token{}, lhs, xfers), nil
}

// parseXferList parses a comma-separated list of transfers (or, in the rare
// case a relation's "on" clause isn't transfer-shaped, of bare schema
// expressions), collapsing a singleton list to its bare element -- mirroring
// the single-operand collapse already used for VariadicOp.
func (p *parser) parseXferList() (*syntax.Node, error) {
	start := p.cur.Start
	items, err := p.parseCommaList(p.parseXferKind)
	if err != nil {
		return nil, err
	}
	if len(items) == 1 {
		return items[0], nil
	}
	return p.new(syntax.XferList, p.spanFrom(start), syntax.Token{}, items...), nil
}

func (p *parser) parseCommaList(item func() (*syntax.Node, error)) ([]*syntax.Node, error) {
	var out []*syntax.Node
	n, err := item()
	if err != nil {
		return nil, err
	}
	out = append(out, n)
	for p.at(lexer.Comma) {
		p.advance()
		n, err := item()
		if err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, nil
}

// parseXferKind: a transfer if the token stream looks like one (it starts
// with an annotation line or a method keyword), else falls through to the
// ordinary schema-expression chain.
func (p *parser) parseXferKind() (*syntax.Node, error) {
	if p.at(lexer.AnnotationLine) || isMethod(p.cur.Kind) {
		return p.parseTransfer()
	}
	return p.parseSumKind()
}

func isMethod(k lexer.Kind) bool {
	switch k {
	case lexer.MethodGet, lexer.MethodPut, lexer.MethodPost, lexer.MethodPatch,
		lexer.MethodDelete, lexer.MethodOptions, lexer.MethodHead:
		return true
	}
	return false
}

// parseTransfer: Annotations* XferMethods XferParams? XferDomain? "->" rangeKind
func (p *parser) parseTransfer() (*syntax.Node, error) {
	start := p.cur.Start
	annotations := p.parseAnnotations()
	methods, err := p.parseXferMethods()
	if err != nil {
		return nil, err
	}
	children := append(annotations, methods)

	if p.at(lexer.BraceLeft) {
		params, err := p.parseXferParams()
		if err != nil {
			return nil, err
		}
		children = append(children, params)
	}
	if p.at(lexer.Colon) {
		p.advance()
		domainStart := p.cur.Start
		term, err := p.parseTermKind()
		if err != nil {
			return nil, err
		}
		children = append(children, p.new(syntax.XferDomain, p.spanFrom(domainStart), syntax.Token{}, term))
	}
	if _, err := p.expect(lexer.Arrow); err != nil {
		return nil, err
	}
	rng, err := p.parseRangeKind()
	if err != nil {
		return nil, err
	}
	children = append(children, rng)
	return p.new(syntax.Transfer, p.spanFrom(start), syntax.Token{}, children...), nil
}

// parseXferMethods: METHOD ("," METHOD)*
func (p *parser) parseXferMethods() (*syntax.Node, error) {
	start := p.cur.Start
	var methods []*syntax.Node
	for {
		if !isMethod(p.cur.Kind) {
			return nil, p.fail("expected a method name, found %s %q", p.cur.Kind, p.cur.Text)
		}
		tok := p.cur
		methods = append(methods, p.new(syntax.Method, p.span(tok.Start, tok.End), syntax.Token{Text: tok.Text}))
		p.advance()
		if !p.at(lexer.Comma) {
			break
		}
		p.advance()
	}
	return p.new(syntax.XferMethods, p.spanFrom(start), syntax.Token{}, methods...), nil
}

// parseXferParams: Object's PropertyList, flattened directly onto XferParams.
func (p *parser) parseXferParams() (*syntax.Node, error) {
	start := p.cur.Start
	list, err := p.parseBracedPropertyList()
	if err != nil {
		return nil, err
	}
	return p.new(syntax.XferParams, p.spanFrom(start), syntax.Token{}, list), nil
}

// ---------------------------------------------------------------------
// Operator precedence chain: sum "|" > any "~" > join "&" > range "::"
// ---------------------------------------------------------------------

func (p *parser) parseVariadic(opText string, opKind lexer.Kind, next func() (*syntax.Node, error)) (*syntax.Node, error) {
	start := p.cur.Start
	operands, err := p.parseVariadicOperands(opKind, next)
	if err != nil {
		return nil, err
	}
	if len(operands) == 1 {
		return operands[0], nil
	}
	return p.new(syntax.VariadicOp, p.spanFrom(start), syntax.Token{Text: opText}, operands...), nil
}

func (p *parser) parseVariadicOperands(opKind lexer.Kind, next func() (*syntax.Node, error)) ([]*syntax.Node, error) {
	first, err := next()
	if err != nil {
		return nil, err
	}
	out := []*syntax.Node{first}
	for p.at(opKind) {
		p.advance()
		n, err := next()
		if err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, nil
}

func (p *parser) parseSumKind() (*syntax.Node, error) {
	return p.parseVariadic("|", lexer.VerticalBar, p.parseAnyKind)
}

func (p *parser) parseAnyKind() (*syntax.Node, error) {
	return p.parseVariadic("~", lexer.Tilde, p.parseJoinKind)
}

func (p *parser) parseJoinKind() (*syntax.Node, error) {
	return p.parseVariadic("&", lexer.Ampersand, p.parseRangeKind)
}

func (p *parser) parseRangeKind() (*syntax.Node, error) {
	return p.parseVariadic("::", lexer.DoubleColon, p.parseApplyKind)
}

// parseApplyKind: application | unaryKind. An application is a bare
// identifier immediately followed by one or more argument terms; anything
// else (qualified names, all non-identifier terms) falls through.
func (p *parser) parseApplyKind() (*syntax.Node, error) {
	if p.at(lexer.Ident) && startsTerm(p.peek.Kind) {
		return p.parseApplication()
	}
	return p.parseTermKind()
}

// startsTerm reports whether k can begin a term, used to decide whether an
// identifier is being applied to arguments or is just a bare variable.
func startsTerm(k lexer.Kind) bool {
	switch k {
	case lexer.Number, lexer.HttpStatus, lexer.String, lexer.PrimitiveNum, lexer.PrimitiveStr,
		lexer.PrimitiveUri, lexer.PrimitiveBool, lexer.PrimitiveInt, lexer.PathRoot, lexer.PathSegment,
		lexer.Property, lexer.BraceLeft, lexer.ChevronLeft, lexer.BracketLeft, lexer.ParenLeft,
		lexer.Ident, lexer.AnnotationLine:
		return true
	}
	return false
}

// parseApplication: IDENT unaryKind+
func (p *parser) parseApplication() (*syntax.Node, error) {
	start := p.cur.Start
	name, err := p.expect(lexer.Ident)
	if err != nil {
		return nil, err
	}
	callee := p.new(syntax.Variable, p.span(name.Start, name.End), syntax.Token{Text: name.Text})
	var args []*syntax.Node
	for startsTerm(p.cur.Kind) {
		arg, err := p.parseTermKind()
		if err != nil {
			return nil, err
		}
		args = append(args, arg)
	}
	children := append([]*syntax.Node{callee}, args...)
	return p.new(syntax.Application, p.spanFrom(start), syntax.Token{Text: name.Text}, children...), nil
}

// parseTermKind wraps a bare term in a Terminal, with an optional trailing
// backtick-delimited inline annotation.
func (p *parser) parseTermKind() (*syntax.Node, error) {
	start := p.cur.Start
	inner, err := p.parseTerm()
	if err != nil {
		return nil, err
	}
	children := []*syntax.Node{inner}
	if p.at(lexer.AnnotationInline) {
		tok := p.cur
		children = append(children, p.new(syntax.Annotations, p.span(tok.Start, tok.End), syntax.Token{Text: tok.Text}))
		p.advance()
	}
	return p.new(syntax.Terminal, p.spanFrom(start), syntax.Token{}, children...), nil
}

// parseTerm dispatches to the atomic term alternatives. Note: the original
// grammar's postfix "?"/"!" unary-operator layer (UnaryOp) sits here too,
// wrapping any term; it has no effect in this compiler (infer/typecheck
// never interpret a UnaryOp tag) so it is not produced. "?"/"!" only carry
// meaning as a property's OptionMark.
func (p *parser) parseTerm() (*syntax.Node, error) {
	switch {
	case p.at(lexer.Number):
		return p.literal(syntax.TokNumber)
	case p.at(lexer.HttpStatus):
		return p.literal(syntax.TokHttpStatus)
	case p.at(lexer.String):
		return p.literal(syntax.TokText)
	case p.at(lexer.PrimitiveUri):
		return p.parseUriPrimitive()
	case p.at(lexer.PrimitiveNum), p.at(lexer.PrimitiveStr), p.at(lexer.PrimitiveBool), p.at(lexer.PrimitiveInt):
		return p.parsePrimitive()
	case p.at(lexer.PathRoot), p.at(lexer.PathSegment):
		return p.parseUriTemplate()
	case p.at(lexer.Property):
		return p.parseProperty()
	case p.at(lexer.BraceLeft):
		return p.parseObject()
	case p.at(lexer.BracketLeft):
		return p.parseArray()
	case p.at(lexer.ChevronLeft):
		return p.parseContent()
	case p.at(lexer.ParenLeft):
		return p.parseSubExpression()
	case p.at(lexer.Ident):
		return p.parseVariable()
	default:
		return nil, p.fail("unexpected token %s %q in term position", p.cur.Kind, p.cur.Text)
	}
}

func (p *parser) literal(kind syntax.TokenKind) (*syntax.Node, error) {
	tok := p.cur
	p.advance()
	return p.new(syntax.Literal, p.span(tok.Start, tok.End), syntax.Token{Kind: kind, Text: tok.Text}), nil
}

// parsePrimitive: one of num/str/bool/int (never "uri"; see parseUriPrimitive).
func (p *parser) parsePrimitive() (*syntax.Node, error) {
	tok := p.cur
	p.advance()
	return p.new(syntax.Primitive, p.span(tok.Start, tok.End), syntax.Token{Text: tok.Text}), nil
}

// parseUriPrimitive handles the bare "uri" keyword. atom.Primitive has no
// Uri variant (only Number/String/Boolean/Integer), so "uri" standing alone
// is built as an empty UriTemplate (zero path segments, no params) rather
// than a Primitive node -- infer.Tag already assigns UriTemplate the TUri
// tag regardless of how many segments its path carries.
func (p *parser) parseUriPrimitive() (*syntax.Node, error) {
	tok := p.cur
	p.advance()
	sp := p.span(tok.Start, tok.End)
	path := p.new(syntax.UriPath, sp, syntax.Token{})
	return p.new(syntax.UriTemplate, sp, syntax.Token{}, path), nil
}

func (p *parser) parseSubExpression() (*syntax.Node, error) {
	start := p.cur.Start
	p.advance() // '('
	inner, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.ParenRight); err != nil {
		return nil, err
	}
	return p.new(syntax.SubExpression, p.spanFrom(start), syntax.Token{}, inner), nil
}

// parseVariable: IDENT ("." IDENT)?. The first identifier, when followed by
// a '.', is a module alias and becomes a Qualifier child; the referenced
// name always lives on the Variable's own token.
func (p *parser) parseVariable() (*syntax.Node, error) {
	start := p.cur.Start
	first, err := p.expect(lexer.Ident)
	if err != nil {
		return nil, err
	}
	if p.at(lexer.FullStop) {
		p.advance()
		second, err := p.expect(lexer.Ident)
		if err != nil {
			return nil, err
		}
		qualifier := p.new(syntax.Qualifier, p.span(first.Start, first.End), syntax.Token{Text: first.Text})
		return p.new(syntax.Variable, p.spanFrom(start), syntax.Token{Text: second.Text}, qualifier), nil
	}
	return p.new(syntax.Variable, p.spanFrom(start), syntax.Token{Text: first.Text}), nil
}

// ---------------------------------------------------------------------
// Schema terms: property lists, objects, arrays, URIs
// ---------------------------------------------------------------------

// parseBracedPropertyList: "{" PropertyList "}", used by both Object and
// XferParams (which flattens away the intermediate Object wrapper).
func (p *parser) parseBracedPropertyList() (*syntax.Node, error) {
	if _, err := p.expect(lexer.BraceLeft); err != nil {
		return nil, err
	}
	list, err := p.parsePropertyList()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.BraceRight); err != nil {
		return nil, err
	}
	return list, nil
}

// parsePropertyList: Property ("," Property)*, possibly empty.
func (p *parser) parsePropertyList() (*syntax.Node, error) {
	start := p.cur.Start
	var props []*syntax.Node
	if p.at(lexer.Property) {
		for {
			prop, err := p.parseProperty()
			if err != nil {
				return nil, err
			}
			props = append(props, prop)
			if !p.at(lexer.Comma) {
				break
			}
			p.advance()
		}
	}
	return p.new(syntax.PropertyList, p.spanFrom(start), syntax.Token{}, props...), nil
}

// parseObject: "{" PropertyList "}"
func (p *parser) parseObject() (*syntax.Node, error) {
	start := p.cur.Start
	list, err := p.parseBracedPropertyList()
	if err != nil {
		return nil, err
	}
	return p.new(syntax.Object, p.spanFrom(start), syntax.Token{}, list), nil
}

// parseProperty: PROPERTY ("!" | "?")? expression
func (p *parser) parseProperty() (*syntax.Node, error) {
	start := p.cur.Start
	name, err := p.expect(lexer.Property)
	if err != nil {
		return nil, err
	}
	children := []*syntax.Node{p.new(syntax.PropertyName, p.span(name.Start, name.End), syntax.Token{Text: name.Text})}
	if p.at(lexer.Bang) || p.at(lexer.Question) {
		mark := p.cur
		children = append(children, p.new(syntax.OptionMark, p.span(mark.Start, mark.End), syntax.Token{Text: mark.Text}))
		p.advance()
	}
	rhs, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	children = append(children, rhs)
	return p.new(syntax.Property, p.spanFrom(start), syntax.Token{}, children...), nil
}

// parseArray: "[" expression "]"
func (p *parser) parseArray() (*syntax.Node, error) {
	start := p.cur.Start
	p.advance() // '['
	inner, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.BracketRight); err != nil {
		return nil, err
	}
	return p.new(syntax.Array, p.spanFrom(start), syntax.Token{}, inner), nil
}

// parseUriTemplate: UriPath UriParams?
func (p *parser) parseUriTemplate() (*syntax.Node, error) {
	start := p.cur.Start
	path, err := p.parseUriPath()
	if err != nil {
		return nil, err
	}
	children := []*syntax.Node{path}
	if p.at(lexer.Question) {
		params, err := p.parseUriParams()
		if err != nil {
			return nil, err
		}
		children = append(children, params)
	}
	return p.new(syntax.UriTemplate, p.spanFrom(start), syntax.Token{}, children...), nil
}

// parseUriPath: (PathElement | UriVariable)+
func (p *parser) parseUriPath() (*syntax.Node, error) {
	start := p.cur.Start
	var segs []*syntax.Node
	for {
		switch {
		case p.at(lexer.PathSegment):
			tok := p.cur
			segs = append(segs, p.new(syntax.PathElement, p.span(tok.Start, tok.End), syntax.Token{Text: tok.Text}))
			p.advance()
		case p.at(lexer.PathRoot):
			if p.peek.Kind == lexer.BraceLeft {
				seg, err := p.parseUriVariable()
				if err != nil {
					return nil, err
				}
				segs = append(segs, seg)
				continue
			}
			tok := p.cur
			segs = append(segs, p.new(syntax.PathElement, p.span(tok.Start, tok.End), syntax.Token{Text: tok.Text}))
			p.advance()
		default:
			return p.new(syntax.UriPath, p.spanFrom(start), syntax.Token{}, segs...), nil
		}
		if !p.at(lexer.PathRoot) {
			return p.new(syntax.UriPath, p.spanFrom(start), syntax.Token{}, segs...), nil
		}
	}
}

// parseUriVariable: "/" "{" Property "}"
func (p *parser) parseUriVariable() (*syntax.Node, error) {
	start := p.cur.Start
	p.advance() // '/'
	if _, err := p.expect(lexer.BraceLeft); err != nil {
		return nil, err
	}
	prop, err := p.parseProperty()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.BraceRight); err != nil {
		return nil, err
	}
	return p.new(syntax.UriVariable, p.spanFrom(start), syntax.Token{}, prop), nil
}

// parseUriParams: "?" "{" PropertyList "}", flattened directly onto
// UriParams the same way parseXferParams flattens away Object.
func (p *parser) parseUriParams() (*syntax.Node, error) {
	start := p.cur.Start
	p.advance() // '?'
	list, err := p.parseBracedPropertyList()
	if err != nil {
		return nil, err
	}
	return p.new(syntax.UriParams, p.spanFrom(start), syntax.Token{}, list), nil
}

// ---------------------------------------------------------------------
// Content: "<" [ContentMetaList] [ContentBody] ">"
// ---------------------------------------------------------------------

func (p *parser) parseContent() (*syntax.Node, error) {
	start := p.cur.Start
	p.advance() // '<'
	var children []*syntax.Node

	if isContentTag(p.cur.Kind) {
		metaList, err := p.parseContentMetaList()
		if err != nil {
			return nil, err
		}
		children = append(children, metaList)
		if p.at(lexer.Comma) {
			p.advance()
			body, err := p.parseContentBody()
			if err != nil {
				return nil, err
			}
			children = append(children, body)
		}
	} else if !p.at(lexer.ChevronRight) {
		body, err := p.parseContentBody()
		if err != nil {
			return nil, err
		}
		children = append(children, body)
	}

	if _, err := p.expect(lexer.ChevronRight); err != nil {
		return nil, err
	}
	return p.new(syntax.Content, p.spanFrom(start), syntax.Token{}, children...), nil
}

func isContentTag(k lexer.Kind) bool {
	return k == lexer.ContentMedia || k == lexer.ContentHeaders || k == lexer.ContentStatus
}

// parseContentMetaList: ContentMeta ("," ContentMeta)*
func (p *parser) parseContentMetaList() (*syntax.Node, error) {
	start := p.cur.Start
	var metas []*syntax.Node
	for {
		meta, err := p.parseContentMeta()
		if err != nil {
			return nil, err
		}
		metas = append(metas, meta)
		if !p.at(lexer.Comma) || !isContentTag(p.peek.Kind) {
			break
		}
		p.advance()
	}
	return p.new(syntax.ContentMetaList, p.spanFrom(start), syntax.Token{}, metas...), nil
}

// parseContentMeta: ("media"|"headers"|"status") ":" expression
func (p *parser) parseContentMeta() (*syntax.Node, error) {
	start := p.cur.Start
	tag := p.cur
	if !isContentTag(tag.Kind) {
		return nil, p.fail("expected media/headers/status, found %s %q", tag.Kind, tag.Text)
	}
	p.advance()
	if _, err := p.expect(lexer.Colon); err != nil {
		return nil, err
	}
	rhs, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	return p.new(syntax.ContentMeta, p.spanFrom(start), syntax.Token{Text: tag.Text}, rhs), nil
}

// parseContentBody parses the bare trailing schema expression in a Content
// term, stopping before a closing chevron.
func (p *parser) parseContentBody() (*syntax.Node, error) {
	start := p.cur.Start
	body, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	return p.new(syntax.ContentBody, p.spanFrom(start), syntax.Token{}, body), nil
}
