// Package ligature groups statements into named collections and exposes
// them through read and write transactions.
package ligature

import (
	"context"
	"errors"
	"fmt"
	"iter"

	"github.com/aleksaelezovic/ligature/pkg/rdf"
	"github.com/aleksaelezovic/ligature/pkg/store"
)

// Version is reported by Details.
const Version = "0.1.0"

var (
	// ErrTransactionClosed is returned by any operation on a committed or
	// cancelled transaction.
	ErrTransactionClosed = errors.New("transaction is closed")

	// ErrStoreClosed is returned when opening a transaction on a closed store.
	ErrStoreClosed = errors.New("store is closed")
)

// CollectionNotFoundError is returned when a read transaction references a
// collection that does not exist.
type CollectionNotFoundError struct {
	Name rdf.NamedNode
}

func (e *CollectionNotFoundError) Error() string {
	return fmt.Sprintf("collection %s not found", e.Name)
}

// Pattern selects statements. A nil position matches anything. Context
// restricts the match to the collection with that name.
type Pattern struct {
	Subject   rdf.Term
	Predicate rdf.Term
	Object    rdf.Term
	Context   rdf.Term
}

func (p Pattern) statementPattern() store.Pattern {
	return store.Pattern{Subject: p.Subject, Predicate: p.Predicate, Object: p.Object}
}

// Store is a set of named collections accessed through transactions.
type Store interface {
	// Read opens a read transaction over the collections committed so far.
	Read(ctx context.Context) (ReadTx, error)

	// Write opens a write transaction. ctx bounds the wait for
	// per-collection write access for the lifetime of the transaction.
	Write(ctx context.Context) (WriteTx, error)

	AllCollections(ctx context.Context) ([]rdf.NamedNode, error)
	CreateCollection(ctx context.Context, name rdf.NamedNode) error
	DeleteCollection(ctx context.Context, name rdf.NamedNode) error

	// Details describes the implementation, e.g. backend name and version.
	Details() map[string]string

	Close() error
}

// ReadTx is a read-only view of the collections as they were when the
// transaction was opened.
type ReadTx interface {
	Collections() ([]rdf.NamedNode, error)

	// Collection returns a *CollectionNotFoundError when name is absent.
	Collection(name rdf.NamedNode) (CollectionReadTx, error)

	// MatchStatements returns matching statements across collections. Each
	// statement carries its collection name as Graph.
	MatchStatements(pattern Pattern) (iter.Seq[rdf.Statement], error)

	Cancel() error
}

// WriteTx extends the read operations with collection management. Changes
// become visible to new readers only on Commit.
type WriteTx interface {
	Collections() ([]rdf.NamedNode, error)

	// Collection opens name for writing, creating it if absent.
	Collection(name rdf.NamedNode) (CollectionWriteTx, error)

	MatchStatements(pattern Pattern) (iter.Seq[rdf.Statement], error)
	DeleteCollection(name rdf.NamedNode) error

	// Commit publishes the changes. When a Backend is configured, failures
	// to persist are returned after the changes have become visible.
	Commit() error

	// Cancel discards the changes, interrupting any wait for a collection.
	Cancel() error
}

// CollectionReadTx reads a single collection.
type CollectionReadTx interface {
	Name() rdf.NamedNode
	Subjects() ([]rdf.Node, error)
	StatementsFor(subject rdf.Node) ([]store.Pair, error)
	MatchStatements(pattern Pattern) (iter.Seq[rdf.Statement], error)
	Len() (int, error)
}

// CollectionWriteTx mutates a single collection inside a write transaction.
type CollectionWriteTx interface {
	CollectionReadTx

	// NewEntity allocates a blank node that is unique within the collection.
	NewEntity() (rdf.BlankNode, error)

	AddStatement(stmt rdf.Statement) error
	RemoveStatement(stmt rdf.Statement) error
	RemoveSubject(subject rdf.Node) error

	// AddModel merges a scratch store, renaming its blank nodes.
	AddModel(model *store.Store) error
}

// Backend persists committed collections. It is best effort and does not
// take part in transaction isolation.
type Backend interface {
	Name() string
	LoadAll(ctx context.Context) (map[rdf.NamedNode]*store.Store, error)
	SaveCollection(ctx context.Context, name rdf.NamedNode, s *store.Store) error
	DeleteCollection(ctx context.Context, name rdf.NamedNode) error
	Close() error
}
