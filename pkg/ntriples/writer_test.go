package ntriples

import (
	"bytes"
	"slices"
	"testing"

	"github.com/aleksaelezovic/ligature/pkg/rdf"
)

func TestRoundTrip(t *testing.T) {
	s := rdf.NewNamedNode("http://ex/s")
	p := rdf.NewNamedNode("http://ex/p")
	stmts := []rdf.Statement{
		rdf.NewStatement(s, p, rdf.NewNamedNode("http://ex/o")),
		rdf.NewStatement(s, p, rdf.NewLiteral("plain")),
		rdf.NewStatement(s, p, rdf.NewLiteral("quote \" backslash \\ tab \t newline \n")),
		rdf.NewStatement(s, p, rdf.NewLangLiteral("bonjour", "fr")),
		rdf.NewStatement(s, p, rdf.NewIntegerLiteral("7")),
		rdf.NewStatement(s, p, rdf.NewBooleanLiteral(true)),
		rdf.NewStatement(rdf.NewNamedNode("http://ex/ünïcode"), p, rdf.NewLiteral("日本語")),
	}

	var buf bytes.Buffer
	n, err := Write(&buf, slices.Values(stmts))
	if err != nil {
		t.Fatalf("write failed: %v", err)
	}
	if n != len(stmts) {
		t.Errorf("Expected %d statements written, got %d", len(stmts), n)
	}

	parsed, err := ParseAll(buf.String())
	if err != nil {
		t.Fatalf("parse failed: %v\n%s", err, buf.String())
	}
	if len(parsed) != len(stmts) {
		t.Fatalf("Expected %d statements, got %d", len(stmts), len(parsed))
	}
	for _, want := range stmts {
		if !slices.Contains(parsed, want) {
			t.Errorf("statement %s lost in round trip", want)
		}
	}
}

func TestFormat(t *testing.T) {
	tests := []struct {
		name     string
		stmt     rdf.Statement
		expected string
	}{
		{
			name: "iri object",
			stmt: rdf.NewStatement(rdf.NewNamedNode("http://ex/s"), rdf.NewNamedNode("http://ex/p"),
				rdf.NewNamedNode("http://ex/o")),
			expected: `<http://ex/s> <http://ex/p> <http://ex/o> .`,
		},
		{
			name: "xsd string has no datatype suffix",
			stmt: rdf.NewStatement(rdf.NewBlankNode("b1"), rdf.NewNamedNode("http://ex/p"),
				rdf.NewLiteral("v")),
			expected: `_:b1 <http://ex/p> "v" .`,
		},
		{
			name: "typed literal",
			stmt: rdf.NewStatement(rdf.NewNamedNode("http://ex/s"), rdf.NewNamedNode("http://ex/p"),
				rdf.NewDecimalLiteral("1.5")),
			expected: `<http://ex/s> <http://ex/p> "1.5"^^<http://www.w3.org/2001/XMLSchema#decimal> .`,
		},
		{
			name: "graph dropped",
			stmt: rdf.NewStatement(rdf.NewNamedNode("http://ex/s"), rdf.NewNamedNode("http://ex/p"),
				rdf.NewLangLiteral("v", "en")).InGraph(rdf.NewNamedNode("http://ex/g")),
			expected: `<http://ex/s> <http://ex/p> "v"@en .`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Format(tt.stmt); got != tt.expected {
				t.Errorf("Expected %s, got %s", tt.expected, got)
			}
		})
	}
}

func TestParseTerm(t *testing.T) {
	tests := []struct {
		input    string
		expected rdf.Term
		wantErr  bool
	}{
		{input: "<http://ex/a>", expected: rdf.NewNamedNode("http://ex/a")},
		{input: "_:label_3", expected: rdf.NewBlankNode("label_3")},
		{input: `"x"@en`, expected: rdf.NewLangLiteral("x", "en")},
		{input: `"x"`, expected: rdf.NewLiteral("x")},
		{input: `"1"^^<http://www.w3.org/2001/XMLSchema#integer>`, expected: rdf.NewIntegerLiteral("1")},
		{input: "<http://ex/a> <http://ex/b>", wantErr: true},
		{input: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			term, err := ParseTerm(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Errorf("Expected error, got %v", term)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !term.Equals(tt.expected) {
				t.Errorf("Expected %s, got %s", tt.expected, term)
			}
			if term.String() != tt.input {
				t.Errorf("Expected String() %s, got %s", tt.input, term.String())
			}
		})
	}
}
