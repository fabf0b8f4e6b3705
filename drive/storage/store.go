// Package storage is the authenticated hierarchical key-value store the
// platform state lives in.
//
// Elements live in trees addressed by byte-vector paths. The store is backed
// by a kvdb.Store; a block transaction is a flushable overlay on top of it
// and nested transactions are overlays on their parent, so a failed batch
// leaves nothing behind. Committed elements are authenticated by a Merkle
// Patricia trie whose root is the state root.
package storage

import (
	"sort"
	"sync"

	"github.com/Fantom-foundation/lachesis-base/hash"
	"github.com/Fantom-foundation/lachesis-base/kvdb"
	"github.com/Fantom-foundation/lachesis-base/kvdb/flushable"
	"github.com/Fantom-foundation/lachesis-base/kvdb/table"
	"github.com/ethereum/go-ethereum/common"
	ethmemorydb "github.com/ethereum/go-ethereum/ethdb/memorydb"
	"github.com/ethereum/go-ethereum/trie"
	"github.com/pkg/errors"
)

var (
	ErrKeyExists       = errors.New("key already exists")
	ErrNotFound        = errors.New("key not found")
	ErrPathNotFound    = errors.New("path not found")
	ErrNotTree         = errors.New("element is not a tree")
	ErrTreeNotEmpty    = errors.New("tree is not empty")
	ErrKindMismatch    = errors.New("element kind mismatch")
	ErrKeyTooLong      = errors.New("key too long")
	ErrTransactionOpen = errors.New("a transaction is already open")
	ErrTransactionDone = errors.New("transaction is already finished")
	ErrCorrupted       = errors.New("corrupted store")
)

var (
	dataPrefix = []byte("d")
	metaPrefix = []byte("m")

	rootHashKey = []byte("root")
)

// Store is the committed state plus at most one open block transaction.
type Store struct {
	mu sync.Mutex

	db   kvdb.Store
	data kvdb.Store
	meta kvdb.Store

	trie   *trie.Trie
	root   hash.Hash
	tx     *Transaction
	broken error
}

// Open loads a store from db and rebuilds its trie. The rebuilt root must
// match the root persisted by the last commit.
func Open(db kvdb.Store) (*Store, error) {
	t, err := trie.New(common.Hash{}, trie.NewDatabase(ethmemorydb.New()))
	if err != nil {
		return nil, errors.Wrap(err, "create state trie")
	}
	s := &Store{
		db:   db,
		data: table.New(db, dataPrefix),
		meta: table.New(db, metaPrefix),
		trie: t,
	}

	it := s.data.NewIterator(nil, nil)
	for it.Next() {
		if err := s.trie.TryUpdate(common.CopyBytes(it.Key()), common.CopyBytes(it.Value())); err != nil {
			it.Release()
			return nil, errors.Wrap(err, "rebuild state trie")
		}
	}
	err = it.Error()
	it.Release()
	if err != nil {
		return nil, errors.Wrap(err, "iterate store")
	}
	s.root = hash.Hash(s.trie.Hash())

	persisted, err := s.meta.Get(rootHashKey)
	if err != nil {
		return nil, errors.Wrap(err, "read state root")
	}
	if persisted != nil && hash.BytesToHash(persisted) != s.root {
		return nil, errors.Wrapf(ErrCorrupted, "state root %s, persisted %s", s.root, hash.BytesToHash(persisted))
	}
	return s, nil
}

// RootHash returns the committed state root.
func (s *Store) RootHash() hash.Hash {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.root
}

// Begin opens the block transaction. Only one may be open at a time.
func (s *Store) Begin() (*Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.broken != nil {
		return nil, s.broken
	}
	if s.tx != nil {
		return nil, ErrTransactionOpen
	}
	overlay := flushable.Wrap(s.db)
	s.tx = &Transaction{
		store:   s,
		overlay: overlay,
		data:    table.New(overlay, dataPrefix),
		dirty:   make(map[string]struct{}),
	}
	return s.tx, nil
}

// Get reads a committed element.
func (s *Store) Get(path Path, key []byte) (Element, bool, error) {
	raw, err := s.data.Get(storeKey(path, key))
	if err != nil {
		return Element{}, false, errors.Wrap(err, "read element")
	}
	if raw == nil {
		return Element{}, false, nil
	}
	e, err := decodeElement(raw)
	return e, err == nil, err
}

// Close closes the backing database.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.tx != nil {
		s.tx.overlay.DropNotFlushed()
		s.tx.done = true
		s.tx = nil
	}
	return s.db.Close()
}

func (s *Store) commit(tx *Transaction) (hash.Hash, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.tx != tx {
		return hash.Hash{}, ErrTransactionDone
	}
	s.tx = nil

	keys := make([]string, 0, len(tx.dirty))
	for k := range tx.dirty {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		raw, err := tx.data.Get([]byte(k))
		if err != nil {
			return s.fail(errors.Wrap(err, "read dirty element"))
		}
		if raw == nil {
			err = s.trie.TryDelete([]byte(k))
		} else {
			err = s.trie.TryUpdate([]byte(k), common.CopyBytes(raw))
		}
		if err != nil {
			return s.fail(errors.Wrap(err, "update state trie"))
		}
	}
	root := hash.Hash(s.trie.Hash())

	if err := table.New(tx.overlay, metaPrefix).Put(rootHashKey, root.Bytes()); err != nil {
		return s.fail(errors.Wrap(err, "write state root"))
	}
	if err := tx.overlay.Flush(); err != nil {
		return s.fail(errors.Wrap(err, "flush transaction"))
	}
	s.root = root
	return root, nil
}

// fail marks the store unusable after a partially applied commit.
func (s *Store) fail(err error) (hash.Hash, error) {
	s.broken = err
	return hash.Hash{}, err
}

func (s *Store) discard(tx *Transaction) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.tx == tx {
		tx.overlay.DropNotFlushed()
		s.tx = nil
	}
}
