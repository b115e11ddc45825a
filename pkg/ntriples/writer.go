package ntriples

import (
	"bufio"
	"fmt"
	"io"
	"iter"

	"github.com/aleksaelezovic/ligature/internal/lexer"
	"github.com/aleksaelezovic/ligature/pkg/rdf"
)

// Format renders a statement as one N-Triples line without the trailing
// newline. The graph position is dropped.
func Format(stmt rdf.Statement) string {
	return fmt.Sprintf("%s %s %s .", stmt.Subject, stmt.Predicate, stmt.Object)
}

// Write serializes statements to w, one per line.
func Write(w io.Writer, stmts iter.Seq[rdf.Statement]) (int, error) {
	bw := bufio.NewWriter(w)
	n := 0
	for stmt := range stmts {
		if _, err := bw.WriteString(Format(stmt)); err != nil {
			return n, fmt.Errorf("failed to write statement: %w", err)
		}
		if err := bw.WriteByte('\n'); err != nil {
			return n, fmt.Errorf("failed to write statement: %w", err)
		}
		n++
	}
	if err := bw.Flush(); err != nil {
		return n, fmt.Errorf("failed to flush output: %w", err)
	}
	return n, nil
}

// ParseTerm parses a single term written in N-Triples syntax, as produced by
// Term.String. Blank node labels are returned as written, without scoping.
func ParseTerm(text string) (rdf.Term, error) {
	p, err := newParser(text, rdf.NewBlankNode)
	if err != nil {
		return nil, err
	}
	term, err := p.parseObject()
	if err != nil {
		return nil, err
	}
	if p.tok.Kind != lexer.EOF {
		return nil, p.unexpected(lexer.EOF.String())
	}
	return term, nil
}
