// Package astparser implements a recursive-descent parser over pkg/lexer's
// token stream, producing a *ast.Document. It follows the teacher's
// astparser package in spirit — tokenizer-driven, report-based error
// collection — but targets the tree-based pkg/ast rather than the teacher's
// ref-arena Document.
package astparser

import (
	"fmt"

	"github.com/edgeql/partitioner/pkg/ast"
	"github.com/edgeql/partitioner/pkg/lexer"
	"github.com/edgeql/partitioner/pkg/operationreport"
)

// Parser consumes a token stream and builds a Document. The first syntax
// failure is recorded into a Report and ends the parse.
type Parser struct {
	lex    *lexer.Lexer
	report *operationreport.Report

	tok lexer.Token
}

// Parse parses the raw GraphQL document text src and returns the resulting
// Document. On syntax failure, doc is nil and report.HasErrors() is true.
func Parse(src string) (*ast.Document, *operationreport.Report) {
	p := &Parser{
		lex:    lexer.New(src),
		report: &operationreport.Report{},
	}
	p.next()
	doc := p.parseDocument()
	if p.report.HasErrors() {
		return nil, p.report
	}
	return doc, p.report
}

// parseFailure is used internally to unwind out of the recursive descent
// once a syntax error has been recorded; callers at the Parse boundary
// convert it back into (nil, report).
type parseFailure struct{}

func (p *Parser) fail(format string, args ...any) {
	p.report.AddExternalError(operationreport.ExternalError{
		Kind:    operationreport.Syntax,
		Message: fmt.Sprintf(format+" at %s", append(args, p.tok.Position)...),
	})
	panic(parseFailure{})
}

func (p *Parser) next() {
	tok, err := p.lex.Read()
	if err != nil {
		p.report.AddExternalError(operationreport.ExternalError{
			Kind:    operationreport.Syntax,
			Message: err.Error(),
		})
		panic(parseFailure{})
	}
	if tok.Kind == lexer.Comment {
		p.next()
		return
	}
	p.tok = tok
}

func (p *Parser) expect(kind lexer.Kind) lexer.Token {
	if p.tok.Kind != kind {
		p.fail("expected %s, got %s", kind, p.tok.Kind)
	}
	tok := p.tok
	p.next()
	return tok
}

func (p *Parser) expectKeyword(keyword string) bool {
	if p.tok.Kind == lexer.Name && p.tok.Literal == keyword {
		p.next()
		return true
	}
	return false
}

func (p *Parser) isKeyword(keyword string) bool {
	return p.tok.Kind == lexer.Name && p.tok.Literal == keyword
}

func (p *Parser) parseDocument() (doc *ast.Document) {
	doc = &ast.Document{}
	defer func() {
		if r := recover(); r != nil {
			if _, ok := r.(parseFailure); ok {
				doc = nil
				return
			}
			panic(r)
		}
	}()

	for p.tok.Kind != lexer.EOF {
		switch {
		case p.isKeyword("query"), p.isKeyword("mutation"), p.isKeyword("subscription"):
			doc.Operations = append(doc.Operations, p.parseOperationDefinition())
		case p.isKeyword("fragment"):
			doc.Fragments = append(doc.Fragments, p.parseFragmentDefinition())
		case p.tok.Kind == lexer.LBrace:
			// Shorthand anonymous query form: `{ field }`.
			doc.Operations = append(doc.Operations, &ast.OperationDefinition{
				OperationType: ast.Query,
				SelectionSet:  p.parseSelectionSet(),
			})
		default:
			p.fail("expected operation or fragment definition, got %s", p.tok.Kind)
		}
	}
	return doc
}

func (p *Parser) parseOperationDefinition() *ast.OperationDefinition {
	op := &ast.OperationDefinition{}
	switch p.tok.Literal {
	case "query":
		op.OperationType = ast.Query
	case "mutation":
		op.OperationType = ast.Mutation
	case "subscription":
		op.OperationType = ast.Subscription
	}
	p.next()

	if p.tok.Kind == lexer.Name {
		op.Name = p.tok.Literal
		p.next()
	}

	if p.tok.Kind == lexer.LParen {
		op.VariableDefinitions = p.parseVariableDefinitions()
	}

	op.Directives = p.parseOptionalDirectives()
	op.SelectionSet = p.parseSelectionSet()
	return op
}

func (p *Parser) parseFragmentDefinition() *ast.FragmentDefinition {
	p.next() // 'fragment'
	frag := &ast.FragmentDefinition{}
	frag.Name = p.expect(lexer.Name).Literal
	if !p.expectKeyword("on") {
		p.fail("expected 'on' in fragment definition")
	}
	frag.TypeCondition = p.expect(lexer.Name).Literal
	frag.Directives = p.parseOptionalDirectives()
	frag.SelectionSet = p.parseSelectionSet()
	return frag
}

func (p *Parser) parseVariableDefinitions() []*ast.VariableDefinition {
	p.expect(lexer.LParen)
	var defs []*ast.VariableDefinition
	for p.tok.Kind != lexer.RParen {
		defs = append(defs, p.parseVariableDefinition())
	}
	p.expect(lexer.RParen)
	return defs
}

func (p *Parser) parseVariableDefinition() *ast.VariableDefinition {
	p.expect(lexer.Dollar)
	name := p.expect(lexer.Name).Literal
	p.expect(lexer.Colon)
	typ := p.parseType()

	var def *ast.Value
	if p.tok.Kind == lexer.Equals {
		p.next()
		def = p.parseValue()
	}
	return &ast.VariableDefinition{Name: name, Type: typ, Default: def}
}

func (p *Parser) parseType() *ast.Type {
	var t *ast.Type
	switch p.tok.Kind {
	case lexer.LBracket:
		p.next()
		inner := p.parseType()
		p.expect(lexer.RBracket)
		t = &ast.Type{Kind: ast.ListType, OfType: inner}
	case lexer.Name:
		t = &ast.Type{Kind: ast.NamedType, Name: p.tok.Literal}
		p.next()
	default:
		p.fail("expected type, got %s", p.tok.Kind)
	}
	if p.tok.Kind == lexer.Bang {
		p.next()
		t = &ast.Type{Kind: ast.NonNullType, OfType: t}
	}
	return t
}

func (p *Parser) parseOptionalDirectives() []*ast.Directive {
	var dirs []*ast.Directive
	for p.tok.Kind == lexer.At {
		dirs = append(dirs, p.parseDirective())
	}
	return dirs
}

func (p *Parser) parseDirective() *ast.Directive {
	p.expect(lexer.At)
	name := p.expect(lexer.Name).Literal
	var args []*ast.Argument
	if p.tok.Kind == lexer.LParen {
		args = p.parseArguments()
	}
	return &ast.Directive{Name: name, Arguments: args}
}

func (p *Parser) parseArguments() []*ast.Argument {
	p.expect(lexer.LParen)
	var args []*ast.Argument
	for p.tok.Kind != lexer.RParen {
		name := p.expect(lexer.Name).Literal
		p.expect(lexer.Colon)
		val := p.parseValue()
		args = append(args, &ast.Argument{Name: name, Value: val})
	}
	p.expect(lexer.RParen)
	return args
}

func (p *Parser) parseValue() *ast.Value {
	switch p.tok.Kind {
	case lexer.Dollar:
		p.next()
		name := p.expect(lexer.Name).Literal
		return &ast.Value{Kind: ast.VariableValue, VariableName: name}
	case lexer.Int:
		v := &ast.Value{Kind: ast.IntValue, Raw: p.tok.Literal}
		p.next()
		return v
	case lexer.Float:
		v := &ast.Value{Kind: ast.FloatValue, Raw: p.tok.Literal}
		p.next()
		return v
	case lexer.String, lexer.BlockString:
		v := &ast.Value{Kind: ast.StringValue, StringVal: p.tok.Literal}
		p.next()
		return v
	case lexer.LBracket:
		return p.parseListValue()
	case lexer.LBrace:
		return p.parseObjectValue()
	case lexer.Name:
		switch p.tok.Literal {
		case "true":
			p.next()
			return &ast.Value{Kind: ast.BooleanValue, BooleanVal: true}
		case "false":
			p.next()
			return &ast.Value{Kind: ast.BooleanValue, BooleanVal: false}
		case "null":
			p.next()
			return &ast.Value{Kind: ast.NullValue}
		default:
			v := &ast.Value{Kind: ast.EnumValue, Raw: p.tok.Literal}
			p.next()
			return v
		}
	default:
		p.fail("expected value, got %s", p.tok.Kind)
		return nil
	}
}

func (p *Parser) parseListValue() *ast.Value {
	p.expect(lexer.LBracket)
	var items []*ast.Value
	for p.tok.Kind != lexer.RBracket {
		items = append(items, p.parseValue())
	}
	p.expect(lexer.RBracket)
	return &ast.Value{Kind: ast.ListValue, ListVal: items}
}

func (p *Parser) parseObjectValue() *ast.Value {
	p.expect(lexer.LBrace)
	var fields []*ast.ObjectField
	for p.tok.Kind != lexer.RBrace {
		name := p.expect(lexer.Name).Literal
		p.expect(lexer.Colon)
		val := p.parseValue()
		fields = append(fields, &ast.ObjectField{Name: name, Value: val})
	}
	p.expect(lexer.RBrace)
	return &ast.Value{Kind: ast.ObjectValue, ObjectVal: fields}
}

func (p *Parser) parseSelectionSet() *ast.SelectionSet {
	p.expect(lexer.LBrace)
	set := &ast.SelectionSet{}
	for p.tok.Kind != lexer.RBrace {
		set.Selections = append(set.Selections, p.parseSelection())
	}
	p.expect(lexer.RBrace)
	return set
}

func (p *Parser) parseSelection() *ast.Selection {
	if p.tok.Kind == lexer.Spread {
		return p.parseFragmentSelection()
	}
	return p.parseFieldSelection()
}

func (p *Parser) parseFieldSelection() *ast.Selection {
	field := &ast.Field{}

	first := p.expect(lexer.Name).Literal
	if p.tok.Kind == lexer.Colon {
		p.next()
		field.Alias = first
		field.Name = p.expect(lexer.Name).Literal
	} else {
		field.Name = first
	}

	if p.tok.Kind == lexer.LParen {
		field.Arguments = p.parseArguments()
	}
	field.Directives = p.parseOptionalDirectives()
	if p.tok.Kind == lexer.LBrace {
		field.SelectionSet = p.parseSelectionSet()
	}

	return &ast.Selection{Kind: ast.FieldSelection, Field: field}
}

func (p *Parser) parseFragmentSelection() *ast.Selection {
	p.expect(lexer.Spread)

	if p.tok.Kind == lexer.Name && p.tok.Literal != "on" {
		name := p.tok.Literal
		p.next()
		dirs := p.parseOptionalDirectives()
		return &ast.Selection{
			Kind: ast.FragmentSpreadSelection,
			FragmentSpread: &ast.FragmentSpread{
				FragmentName: name,
				Directives:   dirs,
			},
		}
	}

	inline := &ast.InlineFragment{}
	if p.expectKeyword("on") {
		inline.TypeCondition = p.expect(lexer.Name).Literal
	}
	inline.Directives = p.parseOptionalDirectives()
	inline.SelectionSet = p.parseSelectionSet()
	return &ast.Selection{Kind: ast.InlineFragmentSelection, InlineFragment: inline}
}
