package rdfio

import (
	"fmt"
	"io"
	"iter"
	"path/filepath"
	"strings"

	"github.com/aleksaelezovic/ligature/pkg/ntriples"
	"github.com/aleksaelezovic/ligature/pkg/rdf"
	"github.com/aleksaelezovic/ligature/pkg/store"
	"github.com/aleksaelezovic/ligature/pkg/turtle"
)

// RDFParser parses one serialization format
type RDFParser interface {
	// Parse returns the statements read from reader. The sequence stops at
	// the first error.
	Parse(reader io.Reader) iter.Seq2[rdf.Statement, error]

	// ContentType returns the MIME type this parser handles
	ContentType() string
}

// NewParser creates an RDF parser based on the content type
func NewParser(contentType string) (RDFParser, error) {
	// Normalize content type (remove parameters like charset)
	ct := strings.ToLower(strings.TrimSpace(contentType))
	if idx := strings.Index(ct, ";"); idx != -1 {
		ct = strings.TrimSpace(ct[:idx])
	}

	switch ct {
	case "application/n-triples", "text/plain":
		return &NTriplesParser{}, nil
	case "text/turtle", "application/x-turtle":
		return &TurtleParser{}, nil
	default:
		return nil, fmt.Errorf("unsupported content type: %s", contentType)
	}
}

// ContentTypeForFile maps a file extension to its content type.
func ContentTypeForFile(path string) (string, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".nt":
		return "application/n-triples", nil
	case ".ttl":
		return "text/turtle", nil
	default:
		return "", fmt.Errorf("cannot infer format of %s", path)
	}
}

// NTriplesParser parses N-Triples
type NTriplesParser struct{}

func (p *NTriplesParser) ContentType() string {
	return "application/n-triples"
}

func (p *NTriplesParser) Parse(reader io.Reader) iter.Seq2[rdf.Statement, error] {
	return parseWith(reader, "N-Triples", ntriples.Parse)
}

// TurtleParser parses Turtle
type TurtleParser struct{}

func (p *TurtleParser) ContentType() string {
	return "text/turtle"
}

func (p *TurtleParser) Parse(reader io.Reader) iter.Seq2[rdf.Statement, error] {
	return parseWith(reader, "Turtle", turtle.Parse)
}

func parseWith(reader io.Reader, name string, parse func(string) iter.Seq2[rdf.Statement, error]) iter.Seq2[rdf.Statement, error] {
	return func(yield func(rdf.Statement, error) bool) {
		data, err := io.ReadAll(reader)
		if err != nil {
			yield(rdf.Statement{}, fmt.Errorf("error reading input: %w", err))
			return
		}
		for stmt, err := range parse(string(data)) {
			if err != nil {
				yield(rdf.Statement{}, fmt.Errorf("error parsing %s: %w", name, err))
				return
			}
			if !yield(stmt, nil) {
				return
			}
		}
	}
}

// Load parses reader straight into s and returns the number of statements
// read. Statements added before a parse error stay in s.
func Load(parser RDFParser, reader io.Reader, s *store.Store) (int, error) {
	n := 0
	for stmt, err := range parser.Parse(reader) {
		if err != nil {
			return n, err
		}
		s.Add(stmt)
		n++
	}
	return n, nil
}

// GetSupportedContentTypes returns a list of all supported content types
func GetSupportedContentTypes() []string {
	return []string{
		"application/n-triples",
		"text/turtle",
		"application/x-turtle",
		"text/plain", // Alias for N-Triples
	}
}
