package encoding

import (
	"encoding/binary"
	"fmt"

	"github.com/zeebo/xxh3"

	"github.com/aleksaelezovic/ligature/pkg/rdf"
)

const (
	// Encoded term size (type byte + 16 bytes for 128-bit hash)
	EncodedTermSize = 17

	// Statement keys hold collection, subject, predicate and object
	StatementKeySize = 4 * EncodedTermSize
)

// EncodedTerm is a fixed-size key for a term: its type byte followed by the
// 128-bit hash of its N-Triples form.
type EncodedTerm [EncodedTermSize]byte

// TermEncoder maps terms to fixed-size keys
type TermEncoder struct{}

func NewTermEncoder() *TermEncoder {
	return &TermEncoder{}
}

// Hash128 computes a 128-bit xxhash3 hash of the input string
func (e *TermEncoder) Hash128(s string) [16]byte {
	hash := xxh3.Hash128([]byte(s))
	var result [16]byte
	binary.BigEndian.PutUint64(result[0:8], hash.Hi)
	binary.BigEndian.PutUint64(result[8:16], hash.Lo)
	return result
}

// EncodeTerm returns the key for term together with the text to store in
// the term dictionary.
func (e *TermEncoder) EncodeTerm(term rdf.Term) (EncodedTerm, string, error) {
	var encoded EncodedTerm
	if term == nil {
		return encoded, "", fmt.Errorf("cannot encode nil term")
	}

	text := term.String()
	encoded[0] = byte(term.Type())
	hash := e.Hash128(text)
	copy(encoded[1:], hash[:])
	return encoded, text, nil
}

// EncodeStatementKey concatenates encoded terms into a key that sorts by
// collection, then subject, predicate and object.
func (e *TermEncoder) EncodeStatementKey(terms ...EncodedTerm) []byte {
	result := make([]byte, 0, len(terms)*EncodedTermSize)
	for _, term := range terms {
		result = append(result, term[:]...)
	}
	return result
}

// SplitStatementKey is the inverse of EncodeStatementKey for four terms.
func SplitStatementKey(key []byte) ([4]EncodedTerm, error) {
	var terms [4]EncodedTerm
	if len(key) != StatementKeySize {
		return terms, fmt.Errorf("invalid statement key length %d", len(key))
	}
	for i := range terms {
		copy(terms[i][:], key[i*EncodedTermSize:(i+1)*EncodedTermSize])
	}
	return terms, nil
}

// GetTermType extracts the type from an encoded term
func GetTermType(encoded EncodedTerm) rdf.TermType {
	return rdf.TermType(encoded[0])
}
