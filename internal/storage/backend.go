package storage

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/aleksaelezovic/ligature/internal/encoding"
	"github.com/aleksaelezovic/ligature/pkg/ligature"
	"github.com/aleksaelezovic/ligature/pkg/rdf"
	"github.com/aleksaelezovic/ligature/pkg/store"
)

// Backend persists collection snapshots into a Storage.
type Backend struct {
	storage Storage
	encoder *encoding.TermEncoder
	decoder *encoding.TermDecoder
	logger  *slog.Logger
}

var _ ligature.Backend = (*Backend)(nil)

// NewBackend wraps storage. A nil logger uses slog.Default.
func NewBackend(storage Storage, logger *slog.Logger) *Backend {
	if logger == nil {
		logger = slog.Default()
	}
	return &Backend{
		storage: storage,
		encoder: encoding.NewTermEncoder(),
		decoder: encoding.NewTermDecoder(),
		logger:  logger,
	}
}

func (b *Backend) Name() string {
	return "badger"
}

// SaveCollection replaces the persisted copy of the collection with s.
func (b *Backend) SaveCollection(ctx context.Context, name rdf.NamedNode, s *store.Store) error {
	txn, err := b.storage.Begin(true)
	if err != nil {
		return err
	}
	defer txn.Rollback()

	key, err := b.putTerm(txn, name)
	if err != nil {
		return err
	}
	if err := b.clear(txn, key); err != nil {
		return err
	}
	if err := txn.Set(TableCollections, key[:], []byte(name.IRI)); err != nil {
		return fmt.Errorf("failed to store collection: %w", err)
	}

	count := 0
	for _, subject := range s.Subjects() {
		if err := ctx.Err(); err != nil {
			return err
		}
		subj, err := b.putTerm(txn, subject)
		if err != nil {
			return err
		}
		if err := txn.Set(TableSubjects, b.encoder.EncodeStatementKey(key, subj), nil); err != nil {
			return fmt.Errorf("failed to store subject: %w", err)
		}
		for _, pair := range s.StatementsFor(subject) {
			pred, err := b.putTerm(txn, pair.Predicate)
			if err != nil {
				return err
			}
			obj, err := b.putTerm(txn, pair.Object)
			if err != nil {
				return err
			}
			if err := txn.Set(TableStatements, b.encoder.EncodeStatementKey(key, subj, pred, obj), nil); err != nil {
				return fmt.Errorf("failed to store statement: %w", err)
			}
			count++
		}
	}

	if err := txn.Commit(); err != nil {
		return fmt.Errorf("failed to commit collection %s: %w", name, err)
	}
	b.logger.Debug("saved collection",
		slog.String("collection", name.IRI),
		slog.Int("statements", count))
	return nil
}

// DeleteCollection removes the persisted copy of the collection.
func (b *Backend) DeleteCollection(_ context.Context, name rdf.NamedNode) error {
	txn, err := b.storage.Begin(true)
	if err != nil {
		return err
	}
	defer txn.Rollback()

	key, _, err := b.encoder.EncodeTerm(name)
	if err != nil {
		return err
	}
	if err := b.clear(txn, key); err != nil {
		return err
	}
	if err := txn.Delete(TableCollections, key[:]); err != nil {
		return fmt.Errorf("failed to delete collection: %w", err)
	}
	return txn.Commit()
}

// LoadAll reads every persisted collection.
func (b *Backend) LoadAll(ctx context.Context) (map[rdf.NamedNode]*store.Store, error) {
	txn, err := b.storage.Begin(false)
	if err != nil {
		return nil, err
	}
	defer txn.Rollback()

	names, err := scanAll(txn, TableCollections, nil)
	if err != nil {
		return nil, err
	}

	terms := make(map[encoding.EncodedTerm]rdf.Term)
	result := make(map[rdf.NamedNode]*store.Store, len(names))
	for _, entry := range names {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		name := rdf.NewNamedNode(string(entry.value))
		collection, err := b.loadCollection(txn, entry.key, terms)
		if err != nil {
			return nil, fmt.Errorf("failed to load collection %s: %w", name, err)
		}
		result[name] = collection
	}
	return result, nil
}

func (b *Backend) loadCollection(txn Transaction, key []byte, terms map[encoding.EncodedTerm]rdf.Term) (*store.Store, error) {
	s := store.New(store.WithLogger(b.logger))

	subjects, err := scanAll(txn, TableSubjects, key)
	if err != nil {
		return nil, err
	}
	for _, entry := range subjects {
		var encoded encoding.EncodedTerm
		copy(encoded[:], entry.key[encoding.EncodedTermSize:])
		subject, err := b.lookup(txn, encoded, terms)
		if err != nil {
			return nil, err
		}
		node, ok := subject.(rdf.Node)
		if !ok {
			return nil, fmt.Errorf("stored subject %s is not a node", subject)
		}
		s.AddSubject(node)
	}

	statements, err := scanAll(txn, TableStatements, key)
	if err != nil {
		return nil, err
	}
	for _, entry := range statements {
		parts, err := encoding.SplitStatementKey(entry.key)
		if err != nil {
			return nil, err
		}
		var decoded [3]rdf.Term
		for i, part := range parts[1:] {
			if decoded[i], err = b.lookup(txn, part, terms); err != nil {
				return nil, err
			}
		}
		subject, ok := decoded[0].(rdf.Node)
		if !ok {
			return nil, fmt.Errorf("stored subject %s is not a node", decoded[0])
		}
		predicate, ok := decoded[1].(rdf.NamedNode)
		if !ok {
			return nil, fmt.Errorf("stored predicate %s is not an IRI", decoded[1])
		}
		s.AddStatement(subject, predicate, decoded[2])
	}
	return s, nil
}

// putTerm stores the dictionary entry for term and returns its key.
func (b *Backend) putTerm(txn Transaction, term rdf.Term) (encoding.EncodedTerm, error) {
	encoded, text, err := b.encoder.EncodeTerm(term)
	if err != nil {
		return encoded, err
	}
	if err := txn.Set(TableTerms, encoded[:], []byte(text)); err != nil {
		return encoded, fmt.Errorf("failed to store term: %w", err)
	}
	return encoded, nil
}

func (b *Backend) lookup(txn Transaction, encoded encoding.EncodedTerm, cache map[encoding.EncodedTerm]rdf.Term) (rdf.Term, error) {
	if term, ok := cache[encoded]; ok {
		return term, nil
	}
	text, err := txn.Get(TableTerms, encoded[:])
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, fmt.Errorf("term %x missing from dictionary", encoded)
		}
		return nil, err
	}
	term, err := b.decoder.DecodeTerm(encoded, string(text))
	if err != nil {
		return nil, err
	}
	cache[encoded] = term
	return term, nil
}

// clear removes the statements and subjects stored for a collection.
func (b *Backend) clear(txn Transaction, key encoding.EncodedTerm) error {
	for _, table := range []Table{TableStatements, TableSubjects} {
		entries, err := scanAll(txn, table, key[:])
		if err != nil {
			return err
		}
		for _, entry := range entries {
			if err := txn.Delete(table, entry.key); err != nil {
				return fmt.Errorf("failed to delete from %s: %w", table, err)
			}
		}
	}
	return nil
}

type entry struct {
	key   []byte
	value []byte
}

// scanAll drains a prefix scan so that callers may write to txn afterwards.
func scanAll(txn Transaction, table Table, prefix []byte) ([]entry, error) {
	it, err := txn.Scan(table, prefix)
	if err != nil {
		return nil, err
	}
	defer it.Close()

	var entries []entry
	for it.Next() {
		value, err := it.Value()
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry{key: it.Key(), value: value})
	}
	return entries, nil
}

func (b *Backend) Close() error {
	return b.storage.Close()
}
