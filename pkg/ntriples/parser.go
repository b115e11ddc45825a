// Package ntriples reads and writes the N-Triples line format.
package ntriples

import (
	"iter"

	"github.com/aleksaelezovic/ligature/internal/lexer"
	"github.com/aleksaelezovic/ligature/pkg/rdf"
)

const format = "ntriples"

// parser holds the state of a single parse call. It is never shared.
type parser struct {
	lex   *lexer.Lexer
	tok   lexer.Token
	blank func(label string) rdf.BlankNode
}

func newParser(text string, blank func(string) rdf.BlankNode) (*parser, error) {
	p := &parser{lex: lexer.New(text, lexer.NTriples), blank: blank}
	if err := p.advance(); err != nil {
		return nil, err
	}
	return p, nil
}

// Parse returns a lazy sequence over the statements in text. The sequence
// stops after the first error. Each call gets a fresh blank node scope, so
// parsing the same text twice yields distinct blank nodes.
func Parse(text string) iter.Seq2[rdf.Statement, error] {
	return func(yield func(rdf.Statement, error) bool) {
		scope := rdf.NewBlankNodeScope()
		p, err := newParser(text, scope.Resolve)
		if err != nil {
			yield(rdf.Statement{}, err)
			return
		}
		for p.tok.Kind != lexer.EOF {
			stmt, err := p.parseTriple()
			if err != nil {
				yield(rdf.Statement{}, err)
				return
			}
			if !yield(stmt, nil) {
				return
			}
		}
	}
}

// ParseFunc calls fn for each statement in text, stopping at the first error
// from either the parser or fn.
func ParseFunc(text string, fn func(rdf.Statement) error) error {
	for stmt, err := range Parse(text) {
		if err != nil {
			return err
		}
		if err := fn(stmt); err != nil {
			return err
		}
	}
	return nil
}

// ParseAll collects every statement in text.
func ParseAll(text string) ([]rdf.Statement, error) {
	var stmts []rdf.Statement
	err := ParseFunc(text, func(s rdf.Statement) error {
		stmts = append(stmts, s)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return stmts, nil
}

func (p *parser) advance() error {
	tok, err := p.lex.Next()
	if err != nil {
		return err
	}
	p.tok = tok
	return nil
}

// match consumes the current token if it has the given kind.
func (p *parser) match(kind lexer.Kind) (lexer.Token, error) {
	tok := p.tok
	if tok.Kind != kind {
		return tok, p.unexpected(kind.String())
	}
	if err := p.advance(); err != nil {
		return tok, err
	}
	return tok, nil
}

func (p *parser) unexpected(expected string) error {
	return &rdf.ParseError{
		Format:   format,
		Pos:      p.tok.Pos,
		Expected: expected,
		Found:    p.tok.String(),
	}
}

func (p *parser) invalid(tok lexer.Token, err error) error {
	return &rdf.ParseError{Format: format, Pos: tok.Pos, Msg: "invalid term", Err: err}
}

// parseTriple parses: subject predicate object '.'
func (p *parser) parseTriple() (rdf.Statement, error) {
	subject, err := p.parseSubject()
	if err != nil {
		return rdf.Statement{}, err
	}
	predicate, err := p.parseIRI()
	if err != nil {
		return rdf.Statement{}, err
	}
	object, err := p.parseObject()
	if err != nil {
		return rdf.Statement{}, err
	}
	if _, err := p.match(lexer.Period); err != nil {
		return rdf.Statement{}, err
	}
	return rdf.NewStatement(subject, predicate, object), nil
}

func (p *parser) parseSubject() (rdf.Node, error) {
	switch p.tok.Kind {
	case lexer.IRIRef:
		return p.parseIRI()
	case lexer.BlankNodeLabel:
		return p.parseBlankNode()
	default:
		return nil, p.unexpected("IRIREF or BLANK_NODE_LABEL")
	}
}

func (p *parser) parseIRI() (rdf.NamedNode, error) {
	tok, err := p.match(lexer.IRIRef)
	if err != nil {
		return rdf.NamedNode{}, err
	}
	node := rdf.NewNamedNode(tok.Text)
	if err := rdf.Validate(node); err != nil {
		return rdf.NamedNode{}, p.invalid(tok, err)
	}
	return node, nil
}

func (p *parser) parseBlankNode() (rdf.BlankNode, error) {
	tok, err := p.match(lexer.BlankNodeLabel)
	if err != nil {
		return rdf.BlankNode{}, err
	}
	return p.handleBlankNode(tok)
}

// handleBlankNode strips the "_:" prefix and interns the label.
func (p *parser) handleBlankNode(tok lexer.Token) (rdf.BlankNode, error) {
	if len(tok.Text) <= 2 {
		return rdf.BlankNode{}, &rdf.ParseError{
			Format: format,
			Pos:    tok.Pos,
			Msg:    "malformed blank node label " + tok.Text,
		}
	}
	label := tok.Text[2:]
	if err := rdf.Validate(rdf.NewBlankNode(label)); err != nil {
		return rdf.BlankNode{}, p.invalid(tok, err)
	}
	return p.blank(label), nil
}

func (p *parser) parseObject() (rdf.Term, error) {
	switch p.tok.Kind {
	case lexer.IRIRef:
		return p.parseIRI()
	case lexer.BlankNodeLabel:
		return p.parseBlankNode()
	case lexer.StringLiteral:
		return p.parseLiteral()
	default:
		return nil, p.unexpected("IRIREF, BLANK_NODE_LABEL or STRING_LITERAL_QUOTE")
	}
}

// parseLiteral parses: STRING_LITERAL_QUOTE ('^^' IRIREF | LANGTAG)?
func (p *parser) parseLiteral() (rdf.Literal, error) {
	value, err := p.match(lexer.StringLiteral)
	if err != nil {
		return nil, err
	}

	var lit rdf.Literal
	switch p.tok.Kind {
	case lexer.LangTag:
		tag := p.tok
		if err := p.advance(); err != nil {
			return nil, err
		}
		lit = rdf.NewLangLiteral(value.Text, tag.Text)
		if err := rdf.Validate(lit); err != nil {
			return nil, p.invalid(tag, err)
		}
	case lexer.TypeTag:
		if err := p.advance(); err != nil {
			return nil, err
		}
		datatype, err := p.parseIRI()
		if err != nil {
			return nil, err
		}
		lit = rdf.NewTypedLiteral(value.Text, datatype)
	default:
		lit = rdf.NewLiteral(value.Text)
	}
	return lit, nil
}
