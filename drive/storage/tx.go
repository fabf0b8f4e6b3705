package storage

import (
	"github.com/Fantom-foundation/lachesis-base/hash"
	"github.com/Fantom-foundation/lachesis-base/kvdb"
	"github.com/Fantom-foundation/lachesis-base/kvdb/flushable"
	"github.com/Fantom-foundation/lachesis-base/kvdb/table"
	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"

	"github.com/rony4d/go-platform-drive/inter"
)

// Transaction is a write view over the store. The block transaction is
// committed into the store, nested transactions into their parent.
type Transaction struct {
	store   *Store
	parent  *Transaction
	overlay *flushable.Flushable
	data    kvdb.Store
	dirty   map[string]struct{}
	child   *Transaction
	done    bool
}

// KeyElement is a child of a tree.
type KeyElement struct {
	Key     []byte
	Element Element
}

// Begin opens a nested transaction. The parent must not be written until the
// child is finished.
func (tx *Transaction) Begin() (*Transaction, error) {
	if err := tx.usable(); err != nil {
		return nil, err
	}
	overlay := flushable.Wrap(tx.overlay)
	tx.child = &Transaction{
		store:   tx.store,
		parent:  tx,
		overlay: overlay,
		data:    table.New(overlay, dataPrefix),
		dirty:   make(map[string]struct{}),
	}
	return tx.child, nil
}

// Commit makes the writes visible. For the block transaction it persists
// them and returns the new state root.
func (tx *Transaction) Commit() (hash.Hash, error) {
	if err := tx.usable(); err != nil {
		return hash.Hash{}, err
	}
	tx.done = true
	if tx.parent == nil {
		return tx.store.commit(tx)
	}
	if err := tx.overlay.Flush(); err != nil {
		return hash.Hash{}, errors.Wrap(err, "flush nested transaction")
	}
	for k := range tx.dirty {
		tx.parent.dirty[k] = struct{}{}
	}
	tx.parent.child = nil
	return hash.Hash{}, nil
}

// Discard drops every write of the transaction.
func (tx *Transaction) Discard() {
	if tx.done {
		return
	}
	tx.done = true
	if tx.child != nil {
		tx.child.Discard()
	}
	if tx.parent == nil {
		tx.store.discard(tx)
		return
	}
	tx.overlay.DropNotFlushed()
	tx.parent.child = nil
}

func (tx *Transaction) usable() error {
	if tx.done {
		return ErrTransactionDone
	}
	if tx.child != nil {
		return ErrTransactionOpen
	}
	return nil
}

// Get reads an element. cost may be nil.
func (tx *Transaction) Get(path Path, key []byte, cost *OperationCost) (Element, bool, error) {
	if cost == nil {
		cost = new(OperationCost)
	}
	raw, err := tx.read(storeKey(path, key), cost)
	if err != nil || raw == nil {
		return Element{}, false, err
	}
	e, err := decodeElement(raw)
	if err != nil {
		return Element{}, false, err
	}
	return e, true, nil
}

// Children lists the direct children of a tree in key order.
func (tx *Transaction) Children(path Path, cost *OperationCost) ([]KeyElement, error) {
	if cost == nil {
		cost = new(OperationCost)
	}
	prefix := encodePath(path)
	cost.seek()

	var out []KeyElement
	it := tx.data.NewIterator(prefix, nil)
	defer it.Release()
	for it.Next() {
		key, ok := childKey(prefix, it.Key())
		if !ok {
			continue
		}
		cost.load(len(it.Value()))
		e, err := decodeElement(it.Value())
		if err != nil {
			return nil, err
		}
		out = append(out, KeyElement{Key: common.CopyBytes(key), Element: e})
	}
	return out, errors.Wrap(it.Error(), "iterate tree")
}

// Apply runs a batch of operations atomically: either every operation is
// applied or none is. Refundable elements are stamped with epoch.
func (tx *Transaction) Apply(ops []Op, epoch inter.EpochIndex) (OperationCost, error) {
	return tx.runBatch(ops, epoch, false)
}

// Estimate returns the cost Apply would report without writing anything.
func (tx *Transaction) Estimate(ops []Op, epoch inter.EpochIndex) (OperationCost, error) {
	return tx.runBatch(ops, epoch, true)
}

func (tx *Transaction) runBatch(ops []Op, epoch inter.EpochIndex, dryRun bool) (OperationCost, error) {
	var cost OperationCost
	sub, err := tx.Begin()
	if err != nil {
		return cost, err
	}
	for i := range ops {
		if err := sub.apply(&ops[i], epoch, &cost); err != nil {
			sub.Discard()
			return cost, errors.Wrapf(err, "operation %d: %s", i, ops[i])
		}
	}
	if dryRun {
		sub.Discard()
		return cost, nil
	}
	_, err = sub.Commit()
	return cost, err
}

func (tx *Transaction) read(key []byte, cost *OperationCost) ([]byte, error) {
	cost.seek()
	raw, err := tx.data.Get(key)
	if err != nil {
		return nil, errors.Wrap(err, "read element")
	}
	cost.load(len(raw))
	return raw, nil
}

func (tx *Transaction) write(key []byte, e Element, cost *OperationCost) ([]byte, error) {
	raw := e.encode()
	if err := tx.data.Put(key, raw); err != nil {
		return nil, errors.Wrap(err, "write element")
	}
	tx.dirty[string(key)] = struct{}{}
	cost.hash(uint64(len(key) + len(raw)))
	return raw, nil
}

func (tx *Transaction) remove(key []byte, cost *OperationCost) error {
	if err := tx.data.Delete(key); err != nil {
		return errors.Wrap(err, "delete element")
	}
	tx.dirty[string(key)] = struct{}{}
	cost.hash(uint64(len(key)))
	return nil
}

// parentTree checks that path addresses an existing tree and returns it.
func (tx *Transaction) parentTree(path Path, cost *OperationCost) (Element, error) {
	parentPath, last, ok := path.Parent()
	if !ok {
		return NewTree(), nil
	}
	raw, err := tx.read(storeKey(parentPath, last), cost)
	if err != nil {
		return Element{}, err
	}
	if raw == nil {
		return Element{}, ErrPathNotFound
	}
	e, err := decodeElement(raw)
	if err != nil {
		return Element{}, err
	}
	if !e.Kind.IsTree() {
		return Element{}, ErrNotTree
	}
	return e, nil
}

// adjustSum propagates a SumItem change into its parent SumTree.
func (tx *Transaction) adjustSum(path Path, parent Element, add, sub uint64, cost *OperationCost) error {
	if parent.Kind != SumTree || add == sub {
		return nil
	}
	if parent.Sum+add < sub {
		return errors.Wrap(ErrCorrupted, "sum tree underflow")
	}
	parent.Sum = parent.Sum + add - sub
	parentPath, last, _ := path.Parent()
	_, err := tx.write(storeKey(parentPath, last), parent, cost)
	return err
}

// isEmptyTree reports whether a tree has no descendants. The tree element
// itself is stored under the prefix of its children and is skipped.
func (tx *Transaction) isEmptyTree(path Path) (bool, error) {
	prefix := encodePath(path)
	it := tx.data.NewIterator(prefix, nil)
	defer it.Release()
	for it.Next() {
		if len(it.Key()) > len(prefix) {
			return false, nil
		}
	}
	return true, errors.Wrap(it.Error(), "iterate tree")
}

func (tx *Transaction) apply(op *Op, epoch inter.EpochIndex, cost *OperationCost) error {
	if !validKey(op.Key) {
		return ErrKeyTooLong
	}
	for _, seg := range op.Path {
		if !validKey(seg) {
			return ErrKeyTooLong
		}
	}
	parent, err := tx.parentTree(op.Path, cost)
	if err != nil {
		return err
	}
	key := storeKey(op.Path, op.Key)
	oldRaw, err := tx.read(key, cost)
	if err != nil {
		return err
	}
	var old Element
	if oldRaw != nil {
		if old, err = decodeElement(oldRaw); err != nil {
			return err
		}
	}

	switch op.Kind {
	case Insert:
		if oldRaw != nil {
			return ErrKeyExists
		}
		return tx.insert(op, parent, key, epoch, cost)

	case Replace:
		if oldRaw == nil {
			return ErrNotFound
		}
		return tx.replace(op, parent, key, old, oldRaw, cost)

	case InsertOrReplace:
		if oldRaw == nil {
			return tx.insert(op, parent, key, epoch, cost)
		}
		return tx.replace(op, parent, key, old, oldRaw, cost)

	case Delete:
		if oldRaw == nil {
			return ErrNotFound
		}
		if old.Kind.IsTree() {
			empty, err := tx.isEmptyTree(op.Path.Child(op.Key))
			if err != nil {
				return err
			}
			if !empty {
				return ErrTreeNotEmpty
			}
		}
		if err := tx.remove(key, cost); err != nil {
			return err
		}
		cost.removedElement(storedSize(op.Key, oldRaw), old)
		if old.Kind == SumItem {
			return tx.adjustSum(op.Path, parent, 0, old.Sum, cost)
		}
		return nil
	}
	return errors.Errorf("unknown operation kind %d", op.Kind)
}

func (tx *Transaction) insert(op *Op, parent Element, key []byte, epoch inter.EpochIndex, cost *OperationCost) error {
	e := op.Element
	if e.Kind.IsTree() {
		e.Sum = 0
	}
	e.HasBirthEpoch = op.Refundable
	e.BirthEpoch = 0
	if op.Refundable {
		e.BirthEpoch = epoch
	}
	raw, err := tx.write(key, e, cost)
	if err != nil {
		return err
	}
	cost.AddedBytes += storedSize(op.Key, raw)
	if e.Kind == SumItem {
		return tx.adjustSum(op.Path, parent, e.Sum, 0, cost)
	}
	return nil
}

func (tx *Transaction) replace(op *Op, parent Element, key []byte, old Element, oldRaw []byte, cost *OperationCost) error {
	e := op.Element
	if e.Kind != old.Kind || old.Kind.IsTree() {
		return ErrKindMismatch
	}
	// the element keeps the epoch that paid for it; storage nobody paid
	// for stays unrefundable
	e.HasBirthEpoch = old.HasBirthEpoch
	e.BirthEpoch = old.BirthEpoch
	raw, err := tx.write(key, e, cost)
	if err != nil {
		return err
	}
	oldSize := storedSize(op.Key, oldRaw)
	newSize := storedSize(op.Key, raw)
	if newSize >= oldSize {
		cost.ReplacedBytes += oldSize
		cost.AddedBytes += newSize - oldSize
	} else {
		cost.ReplacedBytes += newSize
		cost.removedElement(oldSize-newSize, old)
	}
	if e.Kind == SumItem {
		return tx.adjustSum(op.Path, parent, e.Sum, old.Sum, cost)
	}
	return nil
}
