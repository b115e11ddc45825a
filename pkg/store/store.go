// Package store implements an in-memory statement index keyed by subject.
package store

import (
	"cmp"
	"iter"
	"log/slog"
	"regexp"
	"slices"
	"sync"

	"github.com/aleksaelezovic/ligature/pkg/rdf"
)

// Pair is a predicate/object pair attached to a subject.
type Pair struct {
	Predicate rdf.NamedNode
	Object    rdf.Term
}

// Store maps each subject to the set of its predicate/object pairs.
//
// Every node-shaped object is also registered as a subject, possibly with
// no pairs, so that Subjects reaches every node referenced anywhere.
// A Store is safe for concurrent use.
type Store struct {
	mu     sync.RWMutex
	index  map[rdf.Node]map[Pair]struct{}
	logger *slog.Logger
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger used for debug output.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) {
		s.logger = logger
	}
}

// New creates an empty store.
func New(opts ...Option) *Store {
	s := &Store{
		index:  make(map[rdf.Node]map[Pair]struct{}),
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// addSubject must be called with the write lock held.
func (s *Store) addSubject(subject rdf.Node) map[Pair]struct{} {
	pairs, ok := s.index[subject]
	if !ok {
		pairs = make(map[Pair]struct{})
		s.index[subject] = pairs
	}
	return pairs
}

func (s *Store) addStatement(subject rdf.Node, predicate rdf.NamedNode, object rdf.Term) {
	s.addSubject(subject)[Pair{Predicate: predicate, Object: object}] = struct{}{}
	if node, ok := object.(rdf.Node); ok {
		s.addSubject(node)
	}
}

// AddStatement adds a statement. Adding an existing statement is a no-op.
func (s *Store) AddStatement(subject rdf.Node, predicate rdf.NamedNode, object rdf.Term) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.addStatement(subject, predicate, object)
}

// Add adds stmt, ignoring its graph.
func (s *Store) Add(stmt rdf.Statement) {
	s.AddStatement(stmt.Subject, stmt.Predicate, stmt.Object)
}

// AddSubject registers subject with no statements if it is not present.
func (s *Store) AddSubject(subject rdf.Node) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.addSubject(subject)
}

// RemoveSubject removes subject with all of its statements, along with every
// statement elsewhere in the store whose object is subject.
func (s *Store) RemoveSubject(subject rdf.Node) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.index, subject)
	for _, pairs := range s.index {
		for pair := range pairs {
			if pair.Object == rdf.Term(subject) {
				delete(pairs, pair)
			}
		}
	}
}

// RemoveStatement removes a single statement. The subject stays registered.
func (s *Store) RemoveStatement(subject rdf.Node, predicate rdf.NamedNode, object rdf.Term) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if pairs, ok := s.index[subject]; ok {
		delete(pairs, Pair{Predicate: predicate, Object: object})
	}
}

// Contains reports whether the statement is present.
func (s *Store) Contains(subject rdf.Node, predicate rdf.NamedNode, object rdf.Term) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	pairs, ok := s.index[subject]
	if !ok {
		return false
	}
	_, ok = pairs[Pair{Predicate: predicate, Object: object}]
	return ok
}

// HasSubject reports whether subject is registered.
func (s *Store) HasSubject(subject rdf.Node) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.index[subject]
	return ok
}

// StatementsFor returns the pairs attached to subject, or nil when the
// subject is unknown.
func (s *Store) StatementsFor(subject rdf.Node) []Pair {
	s.mu.RLock()
	defer s.mu.RUnlock()

	pairs, ok := s.index[subject]
	if !ok {
		return nil
	}
	result := make([]Pair, 0, len(pairs))
	for pair := range pairs {
		result = append(result, pair)
	}
	slices.SortFunc(result, comparePairs)
	return result
}

// Subjects returns every registered subject.
func (s *Store) Subjects() []rdf.Node {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]rdf.Node, 0, len(s.index))
	for subject := range s.index {
		result = append(result, subject)
	}
	slices.SortFunc(result, compareTerms)
	return result
}

// Predicates returns the distinct predicates in use.
func (s *Store) Predicates() []rdf.NamedNode {
	s.mu.RLock()
	defer s.mu.RUnlock()

	seen := make(map[rdf.NamedNode]struct{})
	for _, pairs := range s.index {
		for pair := range pairs {
			seen[pair.Predicate] = struct{}{}
		}
	}
	return sortedKeys(seen)
}

// Objects returns the distinct objects in use.
func (s *Store) Objects() []rdf.Term {
	s.mu.RLock()
	defer s.mu.RUnlock()

	seen := make(map[rdf.Term]struct{})
	for _, pairs := range s.index {
		for pair := range pairs {
			seen[pair.Object] = struct{}{}
		}
	}
	return sortedKeys(seen)
}

// IRIs returns every named node that appears in any position.
func (s *Store) IRIs() []rdf.NamedNode {
	s.mu.RLock()
	defer s.mu.RUnlock()

	seen := make(map[rdf.NamedNode]struct{})
	for subject, pairs := range s.index {
		if n, ok := subject.(rdf.NamedNode); ok {
			seen[n] = struct{}{}
		}
		for pair := range pairs {
			seen[pair.Predicate] = struct{}{}
			if n, ok := pair.Object.(rdf.NamedNode); ok {
				seen[n] = struct{}{}
			}
		}
	}
	return sortedKeys(seen)
}

// Literals returns the distinct literal objects.
func (s *Store) Literals() []rdf.Literal {
	s.mu.RLock()
	defer s.mu.RUnlock()

	seen := make(map[rdf.Literal]struct{})
	for _, pairs := range s.index {
		for pair := range pairs {
			if lit, ok := pair.Object.(rdf.Literal); ok {
				seen[lit] = struct{}{}
			}
		}
	}
	return sortedKeys(seen)
}

// Len returns the number of statements.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n := 0
	for _, pairs := range s.index {
		n += len(pairs)
	}
	return n
}

// Statements returns a snapshot of all statements, ordered by subject then
// predicate then object. Later mutations do not affect the sequence.
func (s *Store) Statements() iter.Seq[rdf.Statement] {
	return s.Match(Pattern{})
}

// Clone returns an independent copy of the store.
func (s *Store) Clone() *Store {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c := &Store{
		index:  make(map[rdf.Node]map[Pair]struct{}, len(s.index)),
		logger: s.logger,
	}
	for subject, pairs := range s.index {
		cp := make(map[Pair]struct{}, len(pairs))
		for pair := range pairs {
			cp[pair] = struct{}{}
		}
		c.index[subject] = cp
	}
	return c
}

var labelSuffix = regexp.MustCompile(`_[0-9]+$`)

// AddModel merges the statements of other into s. Every blank node from
// other is renamed to a fresh label_<n> label that is not a subject of s; the
// same node from other maps to the same fresh label within one call. The
// merge is atomic with respect to readers of s.
func (s *Store) AddModel(other *Store) {
	if other == nil || other == s {
		return
	}

	// snapshot the source first so that two stores merging into each other
	// never hold both locks
	other.mu.RLock()
	source := make(map[rdf.Node][]Pair, len(other.index))
	for subject, pairs := range other.index {
		list := make([]Pair, 0, len(pairs))
		for pair := range pairs {
			list = append(list, pair)
		}
		source[subject] = list
	}
	other.mu.RUnlock()

	s.mu.Lock()
	defer s.mu.Unlock()

	renames := make(map[rdf.BlankNode]rdf.BlankNode)
	rename := func(t rdf.Term) rdf.Term {
		b, ok := t.(rdf.BlankNode)
		if !ok {
			return t
		}
		if fresh, ok := renames[b]; ok {
			return fresh
		}
		base := labelSuffix.ReplaceAllString(b.Label, "")
		for {
			fresh := rdf.NewBlankNode(rdf.FreshLabel(base))
			if _, taken := s.index[fresh]; !taken {
				renames[b] = fresh
				return fresh
			}
		}
	}

	added := 0
	for subject, pairs := range source {
		subj := rename(subject).(rdf.Node)
		s.addSubject(subj)
		for _, pair := range pairs {
			s.addStatement(subj, pair.Predicate, rename(pair.Object))
			added++
		}
	}
	s.logger.Debug("merged model",
		slog.Int("subjects", len(source)),
		slog.Int("statements", added),
		slog.Int("renamed_blank_nodes", len(renames)))
}

func compareTerms[T rdf.Term](a, b T) int {
	if c := cmp.Compare(a.Type(), b.Type()); c != 0 {
		return c
	}
	return cmp.Compare(a.String(), b.String())
}

func comparePairs(a, b Pair) int {
	if c := compareTerms(a.Predicate, b.Predicate); c != 0 {
		return c
	}
	return compareTerms(a.Object, b.Object)
}

type comparableTerm interface {
	comparable
	rdf.Term
}

func sortedKeys[T comparableTerm](m map[T]struct{}) []T {
	result := make([]T, 0, len(m))
	for k := range m {
		result = append(result, k)
	}
	slices.SortFunc(result, compareTerms[T])
	return result
}
