package storage

import (
	"github.com/Fantom-foundation/lachesis-base/common/bigendian"
	"github.com/ethereum/go-ethereum/rlp"
	"github.com/pkg/errors"

	"github.com/rony4d/go-platform-drive/inter"
)

// ElementKind is the type of a stored element.
type ElementKind uint8

const (
	// Item holds an opaque value.
	Item ElementKind = iota
	// SumItem holds a value counted into its parent SumTree.
	SumItem
	// Tree is an inner node. Children are addressed by its path.
	Tree
	// SumTree is a Tree that maintains the sum of its SumItem children.
	SumTree
)

func (k ElementKind) String() string {
	switch k {
	case Item:
		return "item"
	case SumItem:
		return "sum item"
	case Tree:
		return "tree"
	case SumTree:
		return "sum tree"
	}
	return "unknown"
}

// IsTree reports whether the element may have children.
func (k ElementKind) IsTree() bool {
	return k == Tree || k == SumTree
}

// Element is a stored value.
type Element struct {
	Kind  ElementKind
	Value []byte
	// Sum is the value of a SumItem or the total of a SumTree.
	Sum uint64
	// BirthEpoch is the epoch that paid for the element's storage. Only
	// elements stored with refundable costs carry one.
	BirthEpoch    inter.EpochIndex
	HasBirthEpoch bool
}

// NewItem returns an Item element.
func NewItem(value []byte) Element {
	return Element{Kind: Item, Value: value}
}

// NewSumItem returns a SumItem element.
func NewSumItem(sum uint64) Element {
	return Element{Kind: SumItem, Sum: sum}
}

// NewTree returns an empty Tree element.
func NewTree() Element {
	return Element{Kind: Tree}
}

// NewSumTree returns an empty SumTree element.
func NewSumTree() Element {
	return Element{Kind: SumTree}
}

// elementRLP stores sums in fixed width: a changing balance never changes
// the stored size of its element.
type elementRLP struct {
	Kind          uint8
	Value         []byte
	Sum           [8]byte
	BirthEpoch    uint16
	HasBirthEpoch bool
}

func (e Element) encode() []byte {
	raw, err := rlp.EncodeToBytes(elementRLP{
		Kind:          uint8(e.Kind),
		Value:         e.Value,
		Sum:           sumBytes(e.Sum),
		BirthEpoch:    uint16(e.BirthEpoch),
		HasBirthEpoch: e.HasBirthEpoch,
	})
	if err != nil {
		// only fails for unsupported types
		panic(err)
	}
	return raw
}

func decodeElement(raw []byte) (Element, error) {
	var r elementRLP
	if err := rlp.DecodeBytes(raw, &r); err != nil {
		return Element{}, errors.Wrap(ErrCorrupted, err.Error())
	}
	if r.Kind > uint8(SumTree) {
		return Element{}, errors.Wrapf(ErrCorrupted, "element kind %d", r.Kind)
	}
	return Element{
		Kind:          ElementKind(r.Kind),
		Value:         r.Value,
		Sum:           bigendian.BytesToUint64(r.Sum[:]),
		BirthEpoch:    inter.EpochIndex(r.BirthEpoch),
		HasBirthEpoch: r.HasBirthEpoch,
	}, nil
}

func sumBytes(v uint64) (b [8]byte) {
	copy(b[:], bigendian.Uint64ToBytes(v))
	return b
}
