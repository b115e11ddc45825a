package ligature

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"slices"
	"strconv"
	"sync"

	"golang.org/x/sync/semaphore"

	"github.com/aleksaelezovic/ligature/pkg/rdf"
	"github.com/aleksaelezovic/ligature/pkg/store"
)

// Config configures a MemStore.
type Config struct {
	Logger *slog.Logger

	// Backend receives committed collections. Optional.
	Backend Backend
}

// MemStore keeps every collection in memory. Published collection stores
// are never mutated; write transactions work on clones and swap them in at
// commit.
type MemStore struct {
	mu          sync.RWMutex
	collections map[rdf.NamedNode]*store.Store
	closed      bool

	lockMu sync.Mutex
	locks  map[rdf.NamedNode]*semaphore.Weighted

	logger  *slog.Logger
	backend Backend
}

var _ Store = (*MemStore)(nil)

// New creates an empty store.
func New(cfg Config) *MemStore {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &MemStore{
		collections: make(map[rdf.NamedNode]*store.Store),
		locks:       make(map[rdf.NamedNode]*semaphore.Weighted),
		logger:      logger,
		backend:     cfg.Backend,
	}
}

// Open creates a store and, when a backend is configured, loads the
// collections it holds.
func Open(ctx context.Context, cfg Config) (*MemStore, error) {
	s := New(cfg)
	if s.backend == nil {
		return s, nil
	}
	loaded, err := s.backend.LoadAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load collections from %s: %w", s.backend.Name(), err)
	}
	for name, collection := range loaded {
		s.collections[name] = collection
	}
	s.logger.Debug("loaded collections",
		slog.String("backend", s.backend.Name()),
		slog.Int("collections", len(loaded)))
	return s, nil
}

// snapshot returns a copy of the published collection map.
func (s *MemStore) snapshot() (map[rdf.NamedNode]*store.Store, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, ErrStoreClosed
	}
	return maps.Clone(s.collections), nil
}

// published returns the committed store for name.
func (s *MemStore) published(name rdf.NamedNode) (*store.Store, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.collections[name]
	return c, ok
}

func (s *MemStore) writeLock(name rdf.NamedNode) *semaphore.Weighted {
	s.lockMu.Lock()
	defer s.lockMu.Unlock()
	sem, ok := s.locks[name]
	if !ok {
		sem = semaphore.NewWeighted(1)
		s.locks[name] = sem
	}
	return sem
}

func (s *MemStore) Read(ctx context.Context) (ReadTx, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	collections, err := s.snapshot()
	if err != nil {
		return nil, err
	}
	return &readTx{collections: collections}, nil
}

func (s *MemStore) Write(ctx context.Context) (WriteTx, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	closed := s.closed
	s.mu.RUnlock()
	if closed {
		return nil, ErrStoreClosed
	}
	lockCtx, cancel := context.WithCancel(ctx)
	return &writeTx{
		store:   s,
		ctx:     ctx,
		lockCtx: lockCtx,
		cancel:  cancel,
		held:    make(map[rdf.NamedNode]*semaphore.Weighted),
		staged:  make(map[rdf.NamedNode]*store.Store),
		deleted: make(map[rdf.NamedNode]struct{}),
	}, nil
}

// commit publishes staged collections and removes deleted ones in one step.
func (s *MemStore) commit(ctx context.Context, staged map[rdf.NamedNode]*store.Store, deleted map[rdf.NamedNode]struct{}) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrStoreClosed
	}
	for name := range deleted {
		delete(s.collections, name)
	}
	for name, collection := range staged {
		s.collections[name] = collection
	}
	s.mu.Unlock()

	s.logger.Debug("committed write transaction",
		slog.Int("written", len(staged)),
		slog.Int("deleted", len(deleted)))

	if s.backend == nil {
		return nil
	}
	// the in-memory commit already happened; report what did not persist
	var errs []error
	for name := range deleted {
		if err := s.backend.DeleteCollection(ctx, name); err != nil {
			s.logger.Warn("failed to delete persisted collection",
				slog.String("collection", name.IRI),
				slog.String("error", err.Error()))
			errs = append(errs, fmt.Errorf("failed to delete persisted collection %s: %w", name.IRI, err))
		}
	}
	for _, name := range sortedNames(slices.Collect(maps.Keys(staged))) {
		if err := s.backend.SaveCollection(ctx, name, staged[name]); err != nil {
			s.logger.Warn("failed to persist collection",
				slog.String("collection", name.IRI),
				slog.String("error", err.Error()))
			errs = append(errs, fmt.Errorf("failed to persist collection %s: %w", name.IRI, err))
		}
	}
	return errors.Join(errs...)
}

// AllCollections returns the committed collection names.
func (s *MemStore) AllCollections(ctx context.Context) ([]rdf.NamedNode, error) {
	tx, err := s.Read(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Cancel()
	return tx.Collections()
}

// CreateCollection creates name if it does not exist.
func (s *MemStore) CreateCollection(ctx context.Context, name rdf.NamedNode) error {
	tx, err := s.Write(ctx)
	if err != nil {
		return err
	}
	if _, err := tx.Collection(name); err != nil {
		tx.Cancel()
		return err
	}
	return tx.Commit()
}

// DeleteCollection removes name. Deleting a missing collection is a no-op.
func (s *MemStore) DeleteCollection(ctx context.Context, name rdf.NamedNode) error {
	tx, err := s.Write(ctx)
	if err != nil {
		return err
	}
	if err := tx.DeleteCollection(name); err != nil {
		tx.Cancel()
		return err
	}
	return tx.Commit()
}

func (s *MemStore) Details() map[string]string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	statements := 0
	for _, c := range s.collections {
		statements += c.Len()
	}
	backend := "memory"
	if s.backend != nil {
		backend = s.backend.Name()
	}
	return map[string]string{
		"name":        "ligature",
		"version":     Version,
		"backend":     backend,
		"collections": strconv.Itoa(len(s.collections)),
		"statements":  strconv.Itoa(statements),
	}
}

// Close marks the store closed and closes the backend. Open transactions
// fail on commit.
func (s *MemStore) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	s.mu.Unlock()

	if s.backend != nil {
		if err := s.backend.Close(); err != nil {
			return fmt.Errorf("failed to close backend: %w", err)
		}
	}
	return nil
}

func sortedNames(names []rdf.NamedNode) []rdf.NamedNode {
	slices.SortFunc(names, func(a, b rdf.NamedNode) int {
		return cmp.Compare(a.IRI, b.IRI)
	})
	return names
}
