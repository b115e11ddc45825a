package encoding

import (
	"fmt"

	"github.com/aleksaelezovic/ligature/pkg/ntriples"
	"github.com/aleksaelezovic/ligature/pkg/rdf"
)

// TermDecoder handles decoding of RDF terms
type TermDecoder struct{}

// NewTermDecoder creates a new term decoder
func NewTermDecoder() *TermDecoder {
	return &TermDecoder{}
}

// DecodeTerm rebuilds a term from its dictionary text and checks it against
// the type recorded in the key.
func (d *TermDecoder) DecodeTerm(encoded EncodedTerm, text string) (rdf.Term, error) {
	term, err := ntriples.ParseTerm(text)
	if err != nil {
		return nil, fmt.Errorf("failed to decode term %q: %w", text, err)
	}
	if term.Type() != GetTermType(encoded) {
		return nil, fmt.Errorf("term type mismatch: key has %s, dictionary has %s",
			GetTermType(encoded), term.Type())
	}
	return term, nil
}
