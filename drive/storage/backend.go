package storage

import (
	"github.com/Fantom-foundation/lachesis-base/kvdb"
	"github.com/Fantom-foundation/lachesis-base/kvdb/leveldb"
	"github.com/Fantom-foundation/lachesis-base/kvdb/memorydb"
	"github.com/pkg/errors"
)

// NewMemory opens an empty in-memory store.
func NewMemory() *Store {
	s, err := Open(memorydb.New())
	if err != nil {
		// an empty database always opens
		panic(err)
	}
	return s
}

// OpenLevelDB opens a store persisted in a LevelDB directory. cacheMB and
// handles size the LevelDB caches.
func OpenLevelDB(path string, cacheMB, handles int) (*Store, error) {
	ldb, err := leveldb.New(path, cacheMB, handles, nil, nil)
	if err != nil {
		return nil, errors.Wrapf(err, "open leveldb at %s", path)
	}
	var db kvdb.Store = ldb
	s, err := Open(db)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}
