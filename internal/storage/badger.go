package storage

import (
	"errors"
	"fmt"

	badger "github.com/dgraph-io/badger/v4"
)

// BadgerStorage implements Storage using BadgerDB
type BadgerStorage struct {
	db *badger.DB
}

// NewBadgerStorage opens a BadgerDB-backed storage at path.
func NewBadgerStorage(path string) (*BadgerStorage, error) {
	return openBadger(badger.DefaultOptions(path))
}

// NewInMemoryBadgerStorage opens a storage that keeps nothing on disk.
func NewInMemoryBadgerStorage() (*BadgerStorage, error) {
	return openBadger(badger.DefaultOptions("").WithInMemory(true))
}

func openBadger(opts badger.Options) (*BadgerStorage, error) {
	opts.Logger = nil // Disable default logger

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open badger db: %w", err)
	}
	return &BadgerStorage{db: db}, nil
}

// Begin starts a new transaction
func (s *BadgerStorage) Begin(writable bool) (Transaction, error) {
	return &BadgerTransaction{
		db:       s.db,
		txn:      s.db.NewTransaction(writable),
		writable: writable,
	}, nil
}

// Close closes the storage
func (s *BadgerStorage) Close() error {
	return s.db.Close()
}

// Sync flushes writes to disk
func (s *BadgerStorage) Sync() error {
	return s.db.Sync()
}

// BadgerTransaction implements Transaction using BadgerDB. Writes that
// overflow a single badger transaction are committed in chunks.
type BadgerTransaction struct {
	db       *badger.DB
	txn      *badger.Txn
	writable bool
}

// Get retrieves a value by key
func (t *BadgerTransaction) Get(table Table, key []byte) ([]byte, error) {
	item, err := t.txn.Get(PrefixKey(table, key))
	if err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return item.ValueCopy(nil)
}

// Set stores a key-value pair
func (t *BadgerTransaction) Set(table Table, key, value []byte) error {
	if !t.writable {
		return ErrTransactionRO
	}
	prefixed := PrefixKey(table, key)
	return t.retry(func() error {
		return t.txn.Set(prefixed, value)
	})
}

// Delete removes a key
func (t *BadgerTransaction) Delete(table Table, key []byte) error {
	if !t.writable {
		return ErrTransactionRO
	}
	prefixed := PrefixKey(table, key)
	return t.retry(func() error {
		return t.txn.Delete(prefixed)
	})
}

// retry runs op, committing and reopening the transaction once when it has
// grown too big.
func (t *BadgerTransaction) retry(op func() error) error {
	err := op()
	if !errors.Is(err, badger.ErrTxnTooBig) {
		return err
	}
	if err := t.txn.Commit(); err != nil {
		return fmt.Errorf("failed to commit chunk: %w", err)
	}
	t.txn = t.db.NewTransaction(true)
	return op()
}

// Scan iterates over the keys of table that start with prefix
func (t *BadgerTransaction) Scan(table Table, prefix []byte) (Iterator, error) {
	scanPrefix := PrefixKey(table, prefix)
	opts := badger.DefaultIteratorOptions
	opts.Prefix = scanPrefix

	return &BadgerIterator{
		it:         t.txn.NewIterator(opts),
		scanPrefix: scanPrefix,
	}, nil
}

// Commit commits the transaction
func (t *BadgerTransaction) Commit() error {
	return t.txn.Commit()
}

// Rollback discards the transaction
func (t *BadgerTransaction) Rollback() error {
	t.txn.Discard()
	return nil
}

// BadgerIterator implements Iterator using BadgerDB
type BadgerIterator struct {
	it         *badger.Iterator
	scanPrefix []byte
	started    bool
	hasValue   bool
}

// Next advances to the next item
func (i *BadgerIterator) Next() bool {
	if !i.started {
		i.it.Seek(i.scanPrefix)
		i.started = true
	} else {
		i.it.Next()
	}
	i.hasValue = i.it.ValidForPrefix(i.scanPrefix)
	return i.hasValue
}

// Key returns a copy of the current key without the table prefix
func (i *BadgerIterator) Key() []byte {
	if !i.hasValue {
		return nil
	}
	key := i.it.Item().KeyCopy(nil)
	return key[1:]
}

// Value returns the current value
func (i *BadgerIterator) Value() ([]byte, error) {
	if !i.hasValue {
		return nil, ErrNotFound
	}
	return i.it.Item().ValueCopy(nil)
}

// Close closes the iterator
func (i *BadgerIterator) Close() error {
	i.it.Close()
	return nil
}
