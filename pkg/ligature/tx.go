package ligature

import (
	"context"
	"fmt"
	"iter"
	"maps"
	"slices"
	"strings"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/sync/semaphore"

	"github.com/aleksaelezovic/ligature/pkg/rdf"
	"github.com/aleksaelezovic/ligature/pkg/store"
)

// readTx reads the collection map captured when it was opened.
type readTx struct {
	mu          sync.RWMutex
	closed      bool
	collections map[rdf.NamedNode]*store.Store
}

// enter admits an operation on an open transaction. The returned func ends it.
func (tx *readTx) enter() (func(), error) {
	tx.mu.RLock()
	if tx.closed {
		tx.mu.RUnlock()
		return nil, ErrTransactionClosed
	}
	return tx.mu.RUnlock, nil
}

func (tx *readTx) Collections() ([]rdf.NamedNode, error) {
	done, err := tx.enter()
	if err != nil {
		return nil, err
	}
	defer done()
	return sortedNames(slices.Collect(maps.Keys(tx.collections))), nil
}

func (tx *readTx) Collection(name rdf.NamedNode) (CollectionReadTx, error) {
	done, err := tx.enter()
	if err != nil {
		return nil, err
	}
	defer done()
	c, ok := tx.collections[name]
	if !ok {
		return nil, &CollectionNotFoundError{Name: name}
	}
	return &collectionTx{name: name, data: c, enter: tx.enter}, nil
}

func (tx *readTx) MatchStatements(pattern Pattern) (iter.Seq[rdf.Statement], error) {
	done, err := tx.enter()
	if err != nil {
		return nil, err
	}
	defer done()
	return matchCollections(tx.collections, pattern), nil
}

func (tx *readTx) Cancel() error {
	tx.mu.Lock()
	defer tx.mu.Unlock()
	if tx.closed {
		return ErrTransactionClosed
	}
	tx.closed = true
	tx.collections = nil
	return nil
}

// writeTx stages clones of the collections it touches. Each touched
// collection is locked against other writers until commit or cancel.
//
// Operations run under mu held shared; Commit and Cancel take it
// exclusively, so a staged store is never written after it is published.
// Waiting for a collection lock happens outside mu and is interrupted by
// Commit or Cancel through lockCtx.
type writeTx struct {
	store   *MemStore
	ctx     context.Context
	lockCtx context.Context
	cancel  context.CancelFunc

	acquireMu sync.Mutex

	mu      sync.RWMutex
	closed  bool
	held    map[rdf.NamedNode]*semaphore.Weighted
	staged  map[rdf.NamedNode]*store.Store
	deleted map[rdf.NamedNode]struct{}
}

func (tx *writeTx) enter() (func(), error) {
	tx.mu.RLock()
	if tx.closed {
		tx.mu.RUnlock()
		return nil, ErrTransactionClosed
	}
	return tx.mu.RUnlock, nil
}

// acquire takes the writer lock for name. It must be called without mu.
func (tx *writeTx) acquire(name rdf.NamedNode) error {
	tx.acquireMu.Lock()
	defer tx.acquireMu.Unlock()

	done, err := tx.enter()
	if err != nil {
		return err
	}
	_, held := tx.held[name]
	done()
	if held {
		return nil
	}

	sem := tx.store.writeLock(name)
	if !sem.TryAcquire(1) {
		if err := sem.Acquire(tx.lockCtx, 1); err != nil {
			if tx.ctx.Err() == nil {
				// ended by Commit or Cancel, not by the caller's context
				return ErrTransactionClosed
			}
			return fmt.Errorf("failed to lock collection %s: %w", name, err)
		}
	}

	tx.mu.Lock()
	defer tx.mu.Unlock()
	if tx.closed {
		sem.Release(1)
		return ErrTransactionClosed
	}
	tx.held[name] = sem
	return nil
}

// release gives up every collection lock. Must be called with mu held.
func (tx *writeTx) release() {
	for name, sem := range tx.held {
		sem.Release(1)
		delete(tx.held, name)
	}
}

// view returns the collection map as this transaction sees it.
func (tx *writeTx) view() (map[rdf.NamedNode]*store.Store, error) {
	collections, err := tx.store.snapshot()
	if err != nil {
		return nil, err
	}
	for name := range tx.deleted {
		delete(collections, name)
	}
	maps.Copy(collections, tx.staged)
	return collections, nil
}

func (tx *writeTx) Collections() ([]rdf.NamedNode, error) {
	done, err := tx.enter()
	if err != nil {
		return nil, err
	}
	defer done()
	collections, err := tx.view()
	if err != nil {
		return nil, err
	}
	return sortedNames(slices.Collect(maps.Keys(collections))), nil
}

func (tx *writeTx) Collection(name rdf.NamedNode) (CollectionWriteTx, error) {
	done, err := tx.enter()
	if err != nil {
		return nil, err
	}
	c, ok := tx.staged[name]
	done()
	if ok {
		return &collectionTx{name: name, data: c, enter: tx.enter}, nil
	}
	if err := rdf.Validate(name); err != nil {
		return nil, err
	}
	if err := tx.acquire(name); err != nil {
		return nil, err
	}

	tx.mu.Lock()
	defer tx.mu.Unlock()
	if tx.closed {
		return nil, ErrTransactionClosed
	}
	c, ok = tx.staged[name]
	if !ok {
		// clone the latest commit, not the state at Write, so that
		// writers serialized on this collection never lose updates
		if published, exists := tx.store.published(name); exists {
			if _, gone := tx.deleted[name]; !gone {
				c = published.Clone()
			}
		}
		if c == nil {
			c = store.New(store.WithLogger(tx.store.logger))
		}
		tx.staged[name] = c
		delete(tx.deleted, name)
	}
	return &collectionTx{name: name, data: c, enter: tx.enter}, nil
}

func (tx *writeTx) MatchStatements(pattern Pattern) (iter.Seq[rdf.Statement], error) {
	done, err := tx.enter()
	if err != nil {
		return nil, err
	}
	defer done()
	collections, err := tx.view()
	if err != nil {
		return nil, err
	}
	// staged stores keep changing until commit; match over copies
	for name, c := range collections {
		if _, ok := tx.staged[name]; ok {
			collections[name] = c.Clone()
		}
	}
	return matchCollections(collections, pattern), nil
}

func (tx *writeTx) DeleteCollection(name rdf.NamedNode) error {
	if err := tx.acquire(name); err != nil {
		return err
	}
	tx.mu.Lock()
	defer tx.mu.Unlock()
	if tx.closed {
		return ErrTransactionClosed
	}
	delete(tx.staged, name)
	tx.deleted[name] = struct{}{}
	return nil
}

// Commit publishes the staged collections. Persistence failures are
// returned after the collections have been published.
func (tx *writeTx) Commit() error {
	tx.cancel()
	tx.mu.Lock()
	defer tx.mu.Unlock()
	if tx.closed {
		return ErrTransactionClosed
	}
	tx.closed = true
	defer tx.release()
	return tx.store.commit(tx.ctx, tx.staged, tx.deleted)
}

// Cancel discards staged changes. It interrupts a Collection or
// DeleteCollection call waiting for a collection lock.
func (tx *writeTx) Cancel() error {
	tx.cancel()
	tx.mu.Lock()
	defer tx.mu.Unlock()
	if tx.closed {
		return ErrTransactionClosed
	}
	tx.closed = true
	tx.staged = nil
	tx.deleted = nil
	tx.release()
	return nil
}

// collectionTx serves both the read and the write view of a collection.
// Writes only ever reach stores that are private to a write transaction.
type collectionTx struct {
	name  rdf.NamedNode
	data  *store.Store
	enter func() (func(), error)
}

func (c *collectionTx) Name() rdf.NamedNode {
	return c.name
}

func (c *collectionTx) Subjects() ([]rdf.Node, error) {
	done, err := c.enter()
	if err != nil {
		return nil, err
	}
	defer done()
	return c.data.Subjects(), nil
}

func (c *collectionTx) StatementsFor(subject rdf.Node) ([]store.Pair, error) {
	done, err := c.enter()
	if err != nil {
		return nil, err
	}
	defer done()
	return c.data.StatementsFor(subject), nil
}

func (c *collectionTx) MatchStatements(pattern Pattern) (iter.Seq[rdf.Statement], error) {
	done, err := c.enter()
	if err != nil {
		return nil, err
	}
	defer done()
	if pattern.Context != nil && pattern.Context != rdf.Term(c.name) {
		return func(func(rdf.Statement) bool) {}, nil
	}
	return withGraph(c.data.Match(pattern.statementPattern()), c.name), nil
}

func (c *collectionTx) Len() (int, error) {
	done, err := c.enter()
	if err != nil {
		return 0, err
	}
	defer done()
	return c.data.Len(), nil
}

func (c *collectionTx) NewEntity() (rdf.BlankNode, error) {
	done, err := c.enter()
	if err != nil {
		return rdf.BlankNode{}, err
	}
	defer done()
	for {
		entity := rdf.NewBlankNode("entity_" + strings.ReplaceAll(uuid.NewString(), "-", ""))
		if !c.data.HasSubject(entity) {
			c.data.AddSubject(entity)
			return entity, nil
		}
	}
}

func (c *collectionTx) AddStatement(stmt rdf.Statement) error {
	done, err := c.enter()
	if err != nil {
		return err
	}
	defer done()
	if err := rdf.ValidateStatement(stmt); err != nil {
		return err
	}
	c.data.Add(stmt)
	return nil
}

func (c *collectionTx) RemoveStatement(stmt rdf.Statement) error {
	done, err := c.enter()
	if err != nil {
		return err
	}
	defer done()
	c.data.RemoveStatement(stmt.Subject, stmt.Predicate, stmt.Object)
	return nil
}

func (c *collectionTx) RemoveSubject(subject rdf.Node) error {
	done, err := c.enter()
	if err != nil {
		return err
	}
	defer done()
	c.data.RemoveSubject(subject)
	return nil
}

func (c *collectionTx) AddModel(model *store.Store) error {
	done, err := c.enter()
	if err != nil {
		return err
	}
	defer done()
	c.data.AddModel(model)
	return nil
}

// matchCollections lazily matches pattern over collections in name order.
func matchCollections(collections map[rdf.NamedNode]*store.Store, pattern Pattern) iter.Seq[rdf.Statement] {
	names := sortedNames(slices.Collect(maps.Keys(collections)))
	return func(yield func(rdf.Statement) bool) {
		for _, name := range names {
			if pattern.Context != nil && pattern.Context != rdf.Term(name) {
				continue
			}
			for stmt := range withGraph(collections[name].Match(pattern.statementPattern()), name) {
				if !yield(stmt) {
					return
				}
			}
		}
	}
}

func withGraph(seq iter.Seq[rdf.Statement], graph rdf.NamedNode) iter.Seq[rdf.Statement] {
	return func(yield func(rdf.Statement) bool) {
		for stmt := range seq {
			if !yield(stmt.InGraph(graph)) {
				return
			}
		}
	}
}
