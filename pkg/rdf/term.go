package rdf

import (
	"fmt"
	"strings"
)

// TermType represents the type of an RDF term
type TermType byte

const (
	TermTypeNamedNode TermType = iota + 1
	TermTypeBlankNode
	TermTypeLangLiteral
	TermTypeTypedLiteral
)

func (t TermType) String() string {
	switch t {
	case TermTypeNamedNode:
		return "NamedNode"
	case TermTypeBlankNode:
		return "BlankNode"
	case TermTypeLangLiteral:
		return "LangLiteral"
	case TermTypeTypedLiteral:
		return "TypedLiteral"
	default:
		return "unknown"
	}
}

// Term represents an RDF term. The set of implementations is closed:
// NamedNode, BlankNode, LangLiteral and TypedLiteral.
type Term interface {
	Type() TermType
	String() string
	Equals(other Term) bool
	term()
}

// Node is a term that may appear in subject or graph position.
type Node interface {
	Term
	node()
}

// Literal is a value term. It is either a LangLiteral or a TypedLiteral.
type Literal interface {
	Term
	Lexical() string
	literal()
}

// NamedNode represents an IRI
type NamedNode struct {
	IRI string
}

func NewNamedNode(iri string) NamedNode {
	return NamedNode{IRI: iri}
}

func (n NamedNode) Type() TermType {
	return TermTypeNamedNode
}

func (n NamedNode) String() string {
	return "<" + escapeIRI(n.IRI) + ">"
}

func (n NamedNode) Equals(other Term) bool {
	on, ok := other.(NamedNode)
	return ok && n.IRI == on.IRI
}

func (NamedNode) term() {}
func (NamedNode) node() {}

// BlankNode represents a blank node
type BlankNode struct {
	Label string
}

func NewBlankNode(label string) BlankNode {
	return BlankNode{Label: label}
}

func (b BlankNode) Type() TermType {
	return TermTypeBlankNode
}

func (b BlankNode) String() string {
	return "_:" + b.Label
}

func (b BlankNode) Equals(other Term) bool {
	ob, ok := other.(BlankNode)
	return ok && b.Label == ob.Label
}

func (BlankNode) term() {}
func (BlankNode) node() {}

// LangLiteral is a string literal carrying a language tag
type LangLiteral struct {
	Value string
	Lang  string
}

func NewLangLiteral(value, lang string) LangLiteral {
	return LangLiteral{Value: value, Lang: lang}
}

func (l LangLiteral) Type() TermType {
	return TermTypeLangLiteral
}

func (l LangLiteral) String() string {
	return `"` + EscapeString(l.Value) + `"@` + l.Lang
}

func (l LangLiteral) Equals(other Term) bool {
	ol, ok := other.(LangLiteral)
	return ok && l == ol
}

func (l LangLiteral) Lexical() string {
	return l.Value
}

func (LangLiteral) term()    {}
func (LangLiteral) literal() {}

// TypedLiteral is a literal with an explicit datatype IRI
type TypedLiteral struct {
	Value    string
	Datatype NamedNode
}

// NewLiteral returns an xsd:string literal.
func NewLiteral(value string) TypedLiteral {
	return TypedLiteral{Value: value, Datatype: XSDString}
}

func NewTypedLiteral(value string, datatype NamedNode) TypedLiteral {
	return TypedLiteral{Value: value, Datatype: datatype}
}

func (l TypedLiteral) Type() TermType {
	return TermTypeTypedLiteral
}

func (l TypedLiteral) String() string {
	result := `"` + EscapeString(l.Value) + `"`
	if l.Datatype != XSDString {
		result += "^^" + l.Datatype.String()
	}
	return result
}

func (l TypedLiteral) Equals(other Term) bool {
	ol, ok := other.(TypedLiteral)
	return ok && l == ol
}

func (l TypedLiteral) Lexical() string {
	return l.Value
}

func (TypedLiteral) term()    {}
func (TypedLiteral) literal() {}

// IsNode reports whether t is node-shaped (a named or blank node).
func IsNode(t Term) bool {
	_, ok := t.(Node)
	return ok
}

// Statement is a triple with an optional graph. A nil Graph denotes the
// default graph.
type Statement struct {
	Subject   Node
	Predicate NamedNode
	Object    Term
	Graph     Node
}

func NewStatement(subject Node, predicate NamedNode, object Term) Statement {
	return Statement{Subject: subject, Predicate: predicate, Object: object}
}

// InGraph returns a copy of s placed in graph g.
func (s Statement) InGraph(g Node) Statement {
	s.Graph = g
	return s
}

func (s Statement) String() string {
	if s.Graph != nil {
		return fmt.Sprintf("%s %s %s %s .", s.Subject, s.Predicate, s.Object, s.Graph)
	}
	return fmt.Sprintf("%s %s %s .", s.Subject, s.Predicate, s.Object)
}

// EscapeString escapes a literal value for N-Triples output.
func EscapeString(s string) string {
	if !strings.ContainsAny(s, "\"\\\n\r\t\b\f") {
		return s
	}
	var b strings.Builder
	b.Grow(len(s) + 8)
	for _, r := range s {
		switch r {
		case '"':
			b.WriteString(`\"`)
		case '\\':
			b.WriteString(`\\`)
		case '\n':
			b.WriteString(`\n`)
		case '\r':
			b.WriteString(`\r`)
		case '\t':
			b.WriteString(`\t`)
		case '\b':
			b.WriteString(`\b`)
		case '\f':
			b.WriteString(`\f`)
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

func escapeIRI(iri string) string {
	if !strings.ContainsAny(iri, "<>\"{}|^`\\ ") {
		return iri
	}
	var b strings.Builder
	for _, r := range iri {
		switch r {
		case '<', '>', '"', '{', '}', '|', '^', '`', '\\', ' ':
			fmt.Fprintf(&b, "\\u%04X", r)
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}
