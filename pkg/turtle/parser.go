// Package turtle parses the Turtle serialization into statements.
package turtle

import (
	"iter"
	"strings"

	"github.com/aleksaelezovic/ligature/internal/lexer"
	"github.com/aleksaelezovic/ligature/pkg/rdf"
)

const format = "turtle"

// parser holds the mutable state of one parse call: the current base IRI,
// registered prefixes and the blank node scope. Directives only affect the
// statements that follow them.
type parser struct {
	lex      *lexer.Lexer
	tok      lexer.Token
	prefixes map[string]string
	base     string
	scope    *rdf.BlankNodeScope

	// statements of the current top-level statement
	out []rdf.Statement
}

func newParser(text string) (*parser, error) {
	p := &parser{
		lex:      lexer.New(text, lexer.Turtle),
		prefixes: make(map[string]string),
		scope:    rdf.NewBlankNodeScope(),
	}
	if err := p.advance(); err != nil {
		return nil, err
	}
	return p, nil
}

// Parse returns a lazy sequence over the statements in text. Statements of
// one predicate/object list are buffered and emitted together once the
// terminating '.' has been read. The sequence stops at the first error.
func Parse(text string) iter.Seq2[rdf.Statement, error] {
	return func(yield func(rdf.Statement, error) bool) {
		p, err := newParser(text)
		if err != nil {
			yield(rdf.Statement{}, err)
			return
		}
		for p.tok.Kind != lexer.EOF {
			stmts, err := p.parseStatement()
			if err != nil {
				yield(rdf.Statement{}, err)
				return
			}
			for _, stmt := range stmts {
				if !yield(stmt, nil) {
					return
				}
			}
		}
	}
}

// ParseFunc calls fn for each statement in text.
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

func (p *parser) errorf(tok lexer.Token, msg string, err error) error {
	return &rdf.ParseError{Format: format, Pos: tok.Pos, Msg: msg, Err: err}
}

func (p *parser) emit(s rdf.Node, pred rdf.NamedNode, o rdf.Term) {
	p.out = append(p.out, rdf.NewStatement(s, pred, o))
}

// parseStatement parses a directive or a triples block and returns the
// statements it produced.
func (p *parser) parseStatement() ([]rdf.Statement, error) {
	p.out = nil
	switch p.tok.Kind {
	case lexer.Prefix:
		return nil, p.parsePrefix()
	case lexer.Base:
		return nil, p.parseBase()
	}
	if err := p.parseTriples(); err != nil {
		return nil, err
	}
	if _, err := p.match(lexer.Period); err != nil {
		return nil, err
	}
	return p.out, nil
}

// parsePrefix handles @prefix pname: <iri> . and PREFIX pname: <iri>
func (p *parser) parsePrefix() error {
	directive, err := p.match(lexer.Prefix)
	if err != nil {
		return err
	}
	name := p.tok
	if name.Kind != lexer.PName || !strings.HasSuffix(name.Text, ":") || strings.Count(name.Text, ":") != 1 {
		return p.unexpected("prefix name ending in ':'")
	}
	if err := p.advance(); err != nil {
		return err
	}
	iri, err := p.parseIRIRef()
	if err != nil {
		return err
	}
	p.prefixes[strings.TrimSuffix(name.Text, ":")] = iri
	if !directive.SPARQL {
		if _, err := p.match(lexer.Period); err != nil {
			return err
		}
	}
	return nil
}

// parseBase handles @base <iri> . and BASE <iri>
func (p *parser) parseBase() error {
	directive, err := p.match(lexer.Base)
	if err != nil {
		return err
	}
	iri, err := p.parseIRIRef()
	if err != nil {
		return err
	}
	p.base = iri
	if !directive.SPARQL {
		if _, err := p.match(lexer.Period); err != nil {
			return err
		}
	}
	return nil
}

// parseIRIRef reads an absolute or relative IRI reference and resolves it
// against the current base.
func (p *parser) parseIRIRef() (string, error) {
	switch p.tok.Kind {
	case lexer.IRIRef:
		tok, err := p.match(lexer.IRIRef)
		return tok.Text, err
	case lexer.RelativeIRI:
		tok, err := p.match(lexer.RelativeIRI)
		return p.base + tok.Text, err
	default:
		return "", p.unexpected("IRIREF")
	}
}

// parseTriples parses: subject predicateObjectList
//
//	| blankNodePropertyList predicateObjectList?
func (p *parser) parseTriples() error {
	if p.tok.Kind == lexer.LBracket {
		subject, empty, err := p.parseBlankNodePropertyList()
		if err != nil {
			return err
		}
		if !empty && p.tok.Kind == lexer.Period {
			return nil
		}
		return p.parsePredicateObjectList(subject)
	}

	subject, err := p.parseSubject()
	if err != nil {
		return err
	}
	return p.parsePredicateObjectList(subject)
}

func (p *parser) parseSubject() (rdf.Node, error) {
	switch p.tok.Kind {
	case lexer.IRIRef, lexer.RelativeIRI, lexer.PName:
		return p.parseIRI()
	case lexer.BlankNodeLabel:
		return p.parseBlankNode()
	case lexer.LParen:
		return p.parseCollection()
	default:
		return nil, p.unexpected("subject")
	}
}

// parseIRI reads an IRI in any of its three spellings.
func (p *parser) parseIRI() (rdf.NamedNode, error) {
	tok := p.tok
	var iri string
	switch tok.Kind {
	case lexer.IRIRef, lexer.RelativeIRI:
		text, err := p.parseIRIRef()
		if err != nil {
			return rdf.NamedNode{}, err
		}
		iri = text
	case lexer.PName:
		text, err := p.resolvePrefixedName(tok)
		if err != nil {
			return rdf.NamedNode{}, err
		}
		if err := p.advance(); err != nil {
			return rdf.NamedNode{}, err
		}
		iri = text
	default:
		return rdf.NamedNode{}, p.unexpected("IRI")
	}

	node := rdf.NewNamedNode(iri)
	if err := rdf.Validate(node); err != nil {
		return rdf.NamedNode{}, p.errorf(tok, "invalid IRI", err)
	}
	return node, nil
}

func (p *parser) resolvePrefixedName(tok lexer.Token) (string, error) {
	prefix, local, _ := strings.Cut(tok.Text, ":")
	ns, ok := p.prefixes[prefix]
	if !ok {
		return "", p.errorf(tok, "undefined prefix "+prefix+":", nil)
	}
	return ns + local, nil
}

func (p *parser) parseBlankNode() (rdf.BlankNode, error) {
	tok, err := p.match(lexer.BlankNodeLabel)
	if err != nil {
		return rdf.BlankNode{}, err
	}
	if len(tok.Text) <= 2 {
		return rdf.BlankNode{}, p.errorf(tok, "malformed blank node label "+tok.Text, nil)
	}
	label := tok.Text[2:]
	if err := rdf.Validate(rdf.NewBlankNode(label)); err != nil {
		return rdf.BlankNode{}, p.errorf(tok, "invalid blank node label", err)
	}
	return p.scope.Resolve(label), nil
}

// parsePredicateObjectList parses: verb objectList (';' (verb objectList)?)*
func (p *parser) parsePredicateObjectList(subject rdf.Node) error {
	for {
		predicate, err := p.parseVerb()
		if err != nil {
			return err
		}
		if err := p.parseObjectList(subject, predicate); err != nil {
			return err
		}
		if p.tok.Kind != lexer.Semicolon {
			return nil
		}
		// repeated and trailing semicolons are allowed
		for p.tok.Kind == lexer.Semicolon {
			if err := p.advance(); err != nil {
				return err
			}
		}
		if p.tok.Kind == lexer.Period || p.tok.Kind == lexer.RBracket {
			return nil
		}
	}
}

func (p *parser) parseVerb() (rdf.NamedNode, error) {
	if p.tok.Kind == lexer.A {
		if err := p.advance(); err != nil {
			return rdf.NamedNode{}, err
		}
		return rdf.RDFType, nil
	}
	switch p.tok.Kind {
	case lexer.IRIRef, lexer.RelativeIRI, lexer.PName:
		return p.parseIRI()
	default:
		return rdf.NamedNode{}, p.unexpected("predicate")
	}
}

// parseObjectList parses: object (',' object)*
func (p *parser) parseObjectList(subject rdf.Node, predicate rdf.NamedNode) error {
	for {
		object, err := p.parseObject()
		if err != nil {
			return err
		}
		p.emit(subject, predicate, object)
		if p.tok.Kind != lexer.Comma {
			return nil
		}
		if err := p.advance(); err != nil {
			return err
		}
	}
}

func (p *parser) parseObject() (rdf.Term, error) {
	switch p.tok.Kind {
	case lexer.IRIRef, lexer.RelativeIRI, lexer.PName:
		return p.parseIRI()
	case lexer.BlankNodeLabel:
		return p.parseBlankNode()
	case lexer.LBracket:
		node, _, err := p.parseBlankNodePropertyList()
		return node, err
	case lexer.LParen:
		return p.parseCollection()
	case lexer.StringLiteral, lexer.LongStringLiteral:
		return p.parseRDFLiteral()
	case lexer.Integer:
		return p.numeric(rdf.XSDInteger)
	case lexer.Decimal:
		return p.numeric(rdf.XSDDecimal)
	case lexer.Double:
		return p.numeric(rdf.XSDDouble)
	case lexer.Boolean:
		tok := p.tok
		if err := p.advance(); err != nil {
			return nil, err
		}
		return rdf.NewBooleanLiteral(tok.Text == "true"), nil
	default:
		return nil, p.unexpected("object")
	}
}

func (p *parser) numeric(datatype rdf.NamedNode) (rdf.Term, error) {
	tok := p.tok
	if err := p.advance(); err != nil {
		return nil, err
	}
	return rdf.NewTypedLiteral(tok.Text, datatype), nil
}

// parseRDFLiteral parses: String (LANGTAG | '^^' iri)?
func (p *parser) parseRDFLiteral() (rdf.Term, error) {
	value := p.tok
	if err := p.advance(); err != nil {
		return nil, err
	}

	switch p.tok.Kind {
	case lexer.LangTag:
		tag := p.tok
		if err := p.advance(); err != nil {
			return nil, err
		}
		lit := rdf.NewLangLiteral(value.Text, tag.Text)
		if err := rdf.Validate(lit); err != nil {
			return nil, p.errorf(tag, "invalid literal", err)
		}
		return lit, nil
	case lexer.TypeTag:
		if err := p.advance(); err != nil {
			return nil, err
		}
		datatype, err := p.parseIRI()
		if err != nil {
			return nil, err
		}
		return rdf.NewTypedLiteral(value.Text, datatype), nil
	default:
		return rdf.NewLiteral(value.Text), nil
	}
}

// parseBlankNodePropertyList parses '[' predicateObjectList? ']' and returns
// the fresh node standing for it. empty reports whether the brackets held
// no properties.
func (p *parser) parseBlankNodePropertyList() (node rdf.BlankNode, empty bool, err error) {
	if _, err := p.match(lexer.LBracket); err != nil {
		return rdf.BlankNode{}, false, err
	}
	node = p.scope.Anonymous()
	if p.tok.Kind == lexer.RBracket {
		empty = true
	} else if err := p.parsePredicateObjectList(node); err != nil {
		return rdf.BlankNode{}, false, err
	}
	if _, err := p.match(lexer.RBracket); err != nil {
		return rdf.BlankNode{}, false, err
	}
	return node, empty, nil
}

// parseCollection parses '(' object* ')' into an rdf:first/rdf:rest chain.
// The empty collection is rdf:nil.
func (p *parser) parseCollection() (rdf.Node, error) {
	if _, err := p.match(lexer.LParen); err != nil {
		return nil, err
	}

	var head rdf.Node = rdf.RDFNil
	var last rdf.BlankNode
	for p.tok.Kind != lexer.RParen {
		item, err := p.parseObject()
		if err != nil {
			return nil, err
		}
		cell := p.scope.Anonymous()
		if head == rdf.RDFNil {
			head = cell
		} else {
			p.emit(last, rdf.RDFRest, cell)
		}
		p.emit(cell, rdf.RDFFirst, item)
		last = cell
	}
	if head != rdf.RDFNil {
		p.emit(last, rdf.RDFRest, rdf.RDFNil)
	}

	if _, err := p.match(lexer.RParen); err != nil {
		return nil, err
	}
	return head, nil
}
