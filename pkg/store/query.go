package store

import (
	"iter"
	"slices"

	"github.com/aleksaelezovic/ligature/pkg/rdf"
)

// Pattern is a statement pattern. A nil position matches any term.
type Pattern struct {
	Subject   rdf.Term
	Predicate rdf.Term
	Object    rdf.Term
}

// Matches reports whether stmt satisfies every bound position.
func (p Pattern) Matches(stmt rdf.Statement) bool {
	if p.Subject != nil && p.Subject != rdf.Term(stmt.Subject) {
		return false
	}
	if p.Predicate != nil && p.Predicate != rdf.Term(stmt.Predicate) {
		return false
	}
	if p.Object != nil && p.Object != stmt.Object {
		return false
	}
	return true
}

// Match returns the statements matching pattern, captured under the read
// lock when Match is called.
func (s *Store) Match(pattern Pattern) iter.Seq[rdf.Statement] {
	matches := s.matching(pattern)
	return func(yield func(rdf.Statement) bool) {
		for _, stmt := range matches {
			if !yield(stmt) {
				return
			}
		}
	}
}

// matching collects the statements that match pattern, using the subject
// index when the subject is bound. Only matches are copied.
func (s *Store) matching(pattern Pattern) []rdf.Statement {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var subjects []rdf.Node
	if pattern.Subject != nil {
		node, ok := pattern.Subject.(rdf.Node)
		if !ok {
			return nil
		}
		if _, ok := s.index[node]; !ok {
			return nil
		}
		subjects = []rdf.Node{node}
	} else {
		subjects = make([]rdf.Node, 0, len(s.index))
		for subject := range s.index {
			subjects = append(subjects, subject)
		}
		slices.SortFunc(subjects, compareTerms)
	}

	var result []rdf.Statement
	for _, subject := range subjects {
		var pairs []Pair
		for pair := range s.index[subject] {
			if pattern.Predicate != nil && pattern.Predicate != rdf.Term(pair.Predicate) {
				continue
			}
			if pattern.Object != nil && pattern.Object != pair.Object {
				continue
			}
			pairs = append(pairs, pair)
		}
		slices.SortFunc(pairs, comparePairs)
		for _, pair := range pairs {
			result = append(result, rdf.NewStatement(subject, pair.Predicate, pair.Object))
		}
	}
	return result
}
