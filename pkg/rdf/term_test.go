package rdf

import (
	"errors"
	"strings"
	"testing"
)

// ===== Term Tests =====

func TestTermString(t *testing.T) {
	tests := []struct {
		name     string
		term     Term
		expected string
	}{
		{"named node", NewNamedNode("http://example.org/a"), "<http://example.org/a>"},
		{"blank node", NewBlankNode("b1"), "_:b1"},
		{"plain literal", NewLiteral("hello"), `"hello"`},
		{"lang literal", NewLangLiteral("hello", "en-GB"), `"hello"@en-GB`},
		{"typed literal", NewIntegerLiteral("42"), `"42"^^<http://www.w3.org/2001/XMLSchema#integer>`},
		{"boolean literal", NewBooleanLiteral(false), `"false"^^<http://www.w3.org/2001/XMLSchema#boolean>`},
		{"escaped literal", NewLiteral("a \"quoted\"\nline\\"), `"a \"quoted\"\nline\\"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.term.String(); got != tt.expected {
				t.Errorf("Expected %s, got %s", tt.expected, got)
			}
		})
	}
}

func TestTermEquals(t *testing.T) {
	a := NewNamedNode("http://example.org/a")
	if !a.Equals(NewNamedNode("http://example.org/a")) {
		t.Error("Expected equal named nodes")
	}
	if a.Equals(NewBlankNode("http://example.org/a")) {
		t.Error("Named node must not equal a blank node with the same text")
	}
	if NewLiteral("1").Equals(NewIntegerLiteral("1")) {
		t.Error("Literals with different datatypes must differ")
	}
	if NewLangLiteral("chat", "en").Equals(NewLangLiteral("chat", "fr")) {
		t.Error("Literals with different languages must differ")
	}

	// value types work as map keys
	seen := map[Term]bool{a: true, NewLangLiteral("x", "en"): true}
	if !seen[NewNamedNode("http://example.org/a")] || !seen[NewLangLiteral("x", "en")] {
		t.Error("Expected map lookup by value")
	}
}

func TestIsNode(t *testing.T) {
	if !IsNode(NewNamedNode("http://example.org/a")) || !IsNode(NewBlankNode("b")) {
		t.Error("Expected named and blank nodes to be nodes")
	}
	if IsNode(NewLiteral("x")) {
		t.Error("Literal is not a node")
	}
}

func TestStatementString(t *testing.T) {
	stmt := NewStatement(NewBlankNode("s"), RDFType, NewNamedNode("http://example.org/C"))
	expected := "_:s <http://www.w3.org/1999/02/22-rdf-syntax-ns#type> <http://example.org/C> ."
	if stmt.String() != expected {
		t.Errorf("Expected %s, got %s", expected, stmt.String())
	}

	quad := stmt.InGraph(NewNamedNode("http://example.org/g"))
	if !strings.HasSuffix(quad.String(), "<http://example.org/g> .") {
		t.Errorf("Expected graph in output, got %s", quad.String())
	}
	if stmt.Graph != nil {
		t.Error("InGraph must not modify the receiver")
	}
}

// ===== Validation Tests =====

func TestValidIdentifier(t *testing.T) {
	tests := []struct {
		input string
		valid bool
	}{
		{"http://example.org/a", true},
		{"urn:isbn:0451450523", true},
		{"_b1", true},
		{"a", true},
		{"", false},
		{"1abc", false},
		{"-abc", false},
		{"has space", false},
		{"tab\there", false},
		{"http://example.org/<a>", false},
		{`quote"d`, false},
		{"paren(s)", false},
		{"back\\slash", false},
		{"brace{}", false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := ValidIdentifier(tt.input); got != tt.valid {
				t.Errorf("ValidIdentifier(%q) = %v, want %v", tt.input, got, tt.valid)
			}
		})
	}
}

func TestValidLangTag(t *testing.T) {
	tests := []struct {
		input string
		valid bool
	}{
		{"en", true},
		{"en-US", true},
		{"zh-Hant-TW", true},
		{"de-1996", true},
		{"", false},
		{"en-", false},
		{"-en", false},
		{"en_US", false},
		{"1en", false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := ValidLangTag(tt.input); got != tt.valid {
				t.Errorf("ValidLangTag(%q) = %v, want %v", tt.input, got, tt.valid)
			}
		})
	}
}

func TestValidate(t *testing.T) {
	valid := []Term{
		NewNamedNode("http://example.org/a"),
		NewBlankNode("b1"),
		NewLangLiteral("hi", "en"),
		NewLiteral("anything at all <>"),
	}
	for _, term := range valid {
		if err := Validate(term); err != nil {
			t.Errorf("Validate(%s): unexpected error %v", term, err)
		}
	}

	invalid := []Term{
		NewNamedNode("not an iri"),
		NewBlankNode("9lives"),
		NewLangLiteral("hi", "e n"),
		NewTypedLiteral("1", NewNamedNode("bad type")),
		nil,
	}
	for _, term := range invalid {
		err := Validate(term)
		var verr *ValidationError
		if !errors.As(err, &verr) {
			t.Errorf("Validate(%v): expected ValidationError, got %v", term, err)
		}
	}
}

func TestValidateStatement(t *testing.T) {
	good := NewStatement(NewNamedNode("http://example.org/s"), NewNamedNode("http://example.org/p"), NewLiteral("o"))
	if err := ValidateStatement(good); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if err := ValidateStatement(good.InGraph(NewNamedNode("bad graph"))); err == nil {
		t.Error("Expected error for invalid graph")
	}

	bad := NewStatement(NewNamedNode("http://example.org/s"), NewNamedNode("bad predicate"), NewLiteral("o"))
	if err := ValidateStatement(bad); err == nil {
		t.Error("Expected error for invalid predicate")
	}
}

// ===== Blank Node Tests =====

func TestBlankNodeScope(t *testing.T) {
	first := NewBlankNodeScope()
	a1 := first.Resolve("a")
	if a1 != first.Resolve("a") {
		t.Error("Expected the same node for the same label within a scope")
	}
	if !strings.HasPrefix(a1.Label, "a_") {
		t.Errorf("Expected label_<n>, got %s", a1.Label)
	}
	if !ValidIdentifier(a1.Label) {
		t.Errorf("Allocated label %s is not a valid identifier", a1.Label)
	}

	second := NewBlankNodeScope()
	if a1 == second.Resolve("a") {
		t.Error("Expected distinct nodes across scopes")
	}

	anon := first.Anonymous()
	if !strings.HasPrefix(anon.Label, "ANON") || anon == first.Anonymous() {
		t.Errorf("Expected fresh ANON nodes, got %s", anon.Label)
	}
	if first.Len() != 1 {
		t.Errorf("Expected 1 interned label, got %d", first.Len())
	}
}

// ===== Error Tests =====

func TestParseErrorMessage(t *testing.T) {
	err := &ParseError{
		Format:   "turtle",
		Pos:      Position{Offset: 10, Line: 2, Column: 3},
		Expected: "PERIOD",
		Found:    "EOF",
	}
	expected := "turtle:2:3: expected PERIOD, found EOF"
	if err.Error() != expected {
		t.Errorf("Expected %q, got %q", expected, err.Error())
	}

	cause := &ValidationError{Reason: "invalid IRI"}
	wrapped := &ParseError{Format: "ntriples", Pos: Position{Line: 1, Column: 1}, Msg: "invalid term", Err: cause}
	if !errors.Is(wrapped, cause) {
		t.Error("Expected ParseError to unwrap to its cause")
	}
	if !strings.HasSuffix(wrapped.Error(), "validation error: invalid IRI") {
		t.Errorf("Expected cause in message, got %q", wrapped.Error())
	}
}

func TestLexErrorMessage(t *testing.T) {
	err := &LexError{Pos: Position{Line: 1, Column: 5}, Char: '!', Msg: "unexpected character"}
	expected := `lex error at 1:5: unexpected character ('!')`
	if err.Error() != expected {
		t.Errorf("Expected %q, got %q", expected, err.Error())
	}
}
