// Package drive reads the platform state out of the store and sets up its
// layout. Writes go through operation batches built by drive/batch.
package drive

import (
	"github.com/Fantom-foundation/lachesis-base/common/bigendian"
	"github.com/pkg/errors"

	"github.com/rony4d/go-platform-drive/drive/cache"
	"github.com/rony4d/go-platform-drive/drive/paths"
	"github.com/rony4d/go-platform-drive/drive/storage"
)

// ErrCorruptedState is returned when a stored record cannot be decoded.
var ErrCorruptedState = errors.New("corrupted platform state")

// Drive is the platform state: the authenticated store and the caches in
// front of it.
type Drive struct {
	Store     *storage.Store
	Contracts *cache.Contracts
}

// New wraps a store.
func New(store *storage.Store, contractCacheSize int) (*Drive, error) {
	contracts, err := cache.NewContracts(contractCacheSize)
	if err != nil {
		return nil, errors.Wrap(err, "create contract cache")
	}
	return &Drive{
		Store:     store,
		Contracts: contracts,
	}, nil
}

// IsInitialized reports whether the root trees exist in committed state.
func (d *Drive) IsInitialized() (bool, error) {
	_, ok, err := d.Store.Get(nil, paths.Misc.Key())
	return ok, err
}

// InitialStructureOps creates every root tree.
func InitialStructureOps() []storage.Op {
	ops := make([]storage.Op, 0, len(paths.RootTrees)+4)
	for _, r := range paths.RootTrees {
		if r == paths.Balances {
			ops = append(ops, storage.InsertSumTreeOp(nil, r.Key()).System())
			continue
		}
		ops = append(ops, storage.InsertTreeOp(nil, r.Key()).System())
	}
	ops = append(ops, storage.InsertTreeOp(paths.Pools.Path(), paths.EpochsKey).System())
	return ops
}

// CreateInitialStructure applies InitialStructureOps to a transaction.
func CreateInitialStructure(tx *storage.Transaction) error {
	_, err := tx.Apply(InitialStructureOps(), 0)
	return errors.Wrap(err, "create initial state structure")
}

// EncodeUint64 is the encoding of numeric items.
func EncodeUint64(v uint64) []byte {
	return bigendian.Uint64ToBytes(v)
}

// DecodeUint64 decodes a numeric item.
func DecodeUint64(b []byte) (uint64, error) {
	if len(b) != 8 {
		return 0, errors.Wrapf(ErrCorruptedState, "numeric item of %d bytes", len(b))
	}
	return bigendian.BytesToUint64(b), nil
}

// getUint64 reads a numeric item, returning ok=false when absent.
func getUint64(tx *storage.Transaction, path storage.Path, key []byte, cost *storage.OperationCost) (uint64, bool, error) {
	e, ok, err := tx.Get(path, key, cost)
	if err != nil || !ok {
		return 0, false, err
	}
	v, err := DecodeUint64(e.Value)
	return v, err == nil, err
}
