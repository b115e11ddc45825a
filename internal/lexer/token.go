package lexer

import (
	"fmt"

	"github.com/aleksaelezovic/ligature/pkg/rdf"
)

// Kind identifies a token type
type Kind int

const (
	EOF Kind = iota
	IRIRef
	BlankNodeLabel
	LangTag
	TypeTag
	StringLiteral
	Period
	Semicolon
	Comma

	// Turtle only
	Prefix
	Base
	RelativeIRI
	LongStringLiteral
	PName
	A
	Integer
	Decimal
	Double
	Boolean
	LBracket
	RBracket
	LParen
	RParen
)

func (k Kind) String() string {
	switch k {
	case EOF:
		return "EOF"
	case IRIRef:
		return "IRIREF"
	case BlankNodeLabel:
		return "BLANK_NODE_LABEL"
	case LangTag:
		return "LANGTAG"
	case TypeTag:
		return "TYPE_TAG"
	case StringLiteral:
		return "STRING_LITERAL_QUOTE"
	case Period:
		return "PERIOD"
	case Semicolon:
		return "SEMICOLON"
	case Comma:
		return "COMMA"
	case Prefix:
		return "PREFIX"
	case Base:
		return "BASE"
	case RelativeIRI:
		return "RELATIVE_IRI"
	case LongStringLiteral:
		return "STRING_LITERAL_LONG"
	case PName:
		return "PNAME"
	case A:
		return "A"
	case Integer:
		return "INTEGER"
	case Decimal:
		return "DECIMAL"
	case Double:
		return "DOUBLE"
	case Boolean:
		return "BOOLEAN"
	case LBracket:
		return "'['"
	case RBracket:
		return "']'"
	case LParen:
		return "'('"
	case RParen:
		return "')'"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Token is a single lexical unit.
//
// Text holds the decoded value: IRI content without angle brackets, string
// content with escapes resolved, a language tag without '@'. Blank node
// labels keep their "_:" prefix.
type Token struct {
	Kind Kind
	Text string
	Pos  rdf.Position

	// SPARQL is set on Prefix and Base tokens written without '@'.
	SPARQL bool
}

func (t Token) String() string {
	switch t.Kind {
	case EOF, Period, Semicolon, Comma, TypeTag, LBracket, RBracket, LParen, RParen, A:
		return t.Kind.String()
	default:
		return fmt.Sprintf("%s(%q)", t.Kind, t.Text)
	}
}
