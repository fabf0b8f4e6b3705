package storage

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common/hexutil"
)

// OpKind is a low-level store operation.
type OpKind uint8

const (
	// Insert fails with ErrKeyExists if the key is present.
	Insert OpKind = iota
	// Replace fails with ErrNotFound if the key is absent. Trees cannot be
	// replaced.
	Replace
	// InsertOrReplace inserts or replaces an item.
	InsertOrReplace
	// Delete fails with ErrNotFound if the key is absent, and with
	// ErrTreeNotEmpty for trees with children.
	Delete
)

func (k OpKind) String() string {
	switch k {
	case Insert:
		return "insert"
	case Replace:
		return "replace"
	case InsertOrReplace:
		return "insert_or_replace"
	case Delete:
		return "delete"
	}
	return "unknown"
}

// Op is one operation of a batch.
type Op struct {
	Kind    OpKind
	Path    Path
	Key     []byte
	Element Element
	// Refundable elements record the epoch that paid for them; removing
	// them later refunds that epoch.
	Refundable bool
}

func (o Op) String() string {
	segs := make([]string, len(o.Path))
	for i, s := range o.Path {
		segs[i] = hexutil.Encode(s)
	}
	return fmt.Sprintf("%s %s %v/%s", o.Kind, o.Element.Kind, segs, hexutil.Encode(o.Key))
}

// InsertItemOp inserts a refundable item.
func InsertItemOp(path Path, key, value []byte) Op {
	return Op{Kind: Insert, Path: path, Key: key, Element: NewItem(value), Refundable: true}
}

// InsertTreeOp inserts an empty tree.
func InsertTreeOp(path Path, key []byte) Op {
	return Op{Kind: Insert, Path: path, Key: key, Element: NewTree(), Refundable: true}
}

// InsertSumTreeOp inserts an empty sum tree.
func InsertSumTreeOp(path Path, key []byte) Op {
	return Op{Kind: Insert, Path: path, Key: key, Element: NewSumTree(), Refundable: true}
}

// InsertSumItemOp inserts a refundable sum item.
func InsertSumItemOp(path Path, key []byte, sum uint64) Op {
	return Op{Kind: Insert, Path: path, Key: key, Element: NewSumItem(sum), Refundable: true}
}

// ReplaceItemOp replaces an item value.
func ReplaceItemOp(path Path, key, value []byte) Op {
	return Op{Kind: Replace, Path: path, Key: key, Element: NewItem(value), Refundable: true}
}

// ReplaceSumItemOp replaces a sum item value.
func ReplaceSumItemOp(path Path, key []byte, sum uint64) Op {
	return Op{Kind: Replace, Path: path, Key: key, Element: NewSumItem(sum), Refundable: true}
}

// PutItemOp inserts or replaces an item.
func PutItemOp(path Path, key, value []byte) Op {
	return Op{Kind: InsertOrReplace, Path: path, Key: key, Element: NewItem(value), Refundable: true}
}

// DeleteOp deletes an element.
func DeleteOp(path Path, key []byte) Op {
	return Op{Kind: Delete, Path: path, Key: key}
}

// System returns a copy of the operation whose storage is never refunded.
func (o Op) System() Op {
	o.Refundable = false
	return o
}
