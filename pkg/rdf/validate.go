package rdf

import (
	"fmt"
	"regexp"
)

var (
	identifierPattern = regexp.MustCompile("^[A-Za-z_][^\\s()\\[\\]{}'\"`<>\\\\]*$")
	langTagPattern    = regexp.MustCompile(`^[A-Za-z]+(-[A-Za-z0-9]+)*$`)
)

// ValidIdentifier reports whether s is usable as an IRI or blank node label.
func ValidIdentifier(s string) bool {
	return identifierPattern.MatchString(s)
}

// ValidLangTag reports whether s is a well-formed language tag.
func ValidLangTag(s string) bool {
	return langTagPattern.MatchString(s)
}

// ValidLiteral reports whether l satisfies the literal constraints for its variant.
func ValidLiteral(l Literal) bool {
	switch lit := l.(type) {
	case LangLiteral:
		return ValidLangTag(lit.Lang)
	case TypedLiteral:
		return ValidIdentifier(lit.Datatype.IRI)
	default:
		return false
	}
}

// Validate checks t against its validity predicate and returns a
// *ValidationError describing the first violation.
func Validate(t Term) error {
	switch v := t.(type) {
	case NamedNode:
		if !ValidIdentifier(v.IRI) {
			return &ValidationError{Term: t, Reason: fmt.Sprintf("invalid IRI %q", v.IRI)}
		}
	case BlankNode:
		if !ValidIdentifier(v.Label) {
			return &ValidationError{Term: t, Reason: fmt.Sprintf("invalid blank node label %q", v.Label)}
		}
	case LangLiteral:
		if !ValidLangTag(v.Lang) {
			return &ValidationError{Term: t, Reason: fmt.Sprintf("invalid language tag %q", v.Lang)}
		}
	case TypedLiteral:
		if !ValidIdentifier(v.Datatype.IRI) {
			return &ValidationError{Term: t, Reason: fmt.Sprintf("invalid datatype IRI %q", v.Datatype.IRI)}
		}
	case nil:
		return &ValidationError{Reason: "missing term"}
	}
	return nil
}

// ValidateStatement validates every position of s.
func ValidateStatement(s Statement) error {
	if s.Subject == nil {
		return &ValidationError{Reason: "missing subject"}
	}
	for _, t := range []Term{s.Subject, s.Predicate, s.Object} {
		if err := Validate(t); err != nil {
			return err
		}
	}
	if s.Graph != nil {
		return Validate(s.Graph)
	}
	return nil
}
