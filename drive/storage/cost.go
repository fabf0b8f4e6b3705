package storage

import (
	"github.com/rony4d/go-platform-drive/inter"
)

// nodeOverhead is charged per stored element on top of its key and value.
const nodeOverhead = 32

// hashBlockSize is the block size hashing work is counted in.
const hashBlockSize = 64

// OperationCost is the resource footprint of store operations.
type OperationCost struct {
	SeekCount     uint64
	LoadedBytes   uint64
	AddedBytes    uint64
	ReplacedBytes uint64
	// RemovedBytes maps birth epochs to the refundable bytes removed.
	RemovedBytes map[inter.EpochIndex]uint64
	// UnrefundableRemovedBytes were stored without a birth epoch.
	UnrefundableRemovedBytes uint64
	HashBlocks               uint64
}

// Add folds o into c.
func (c *OperationCost) Add(o OperationCost) {
	c.SeekCount += o.SeekCount
	c.LoadedBytes += o.LoadedBytes
	c.AddedBytes += o.AddedBytes
	c.ReplacedBytes += o.ReplacedBytes
	c.UnrefundableRemovedBytes += o.UnrefundableRemovedBytes
	c.HashBlocks += o.HashBlocks
	for e, b := range o.RemovedBytes {
		c.removed(e, b)
	}
}

// TotalRemovedBytes sums refundable and unrefundable removals.
func (c *OperationCost) TotalRemovedBytes() uint64 {
	total := c.UnrefundableRemovedBytes
	for _, b := range c.RemovedBytes {
		total += b
	}
	return total
}

func (c *OperationCost) removed(epoch inter.EpochIndex, n uint64) {
	if n == 0 {
		return
	}
	if c.RemovedBytes == nil {
		c.RemovedBytes = make(map[inter.EpochIndex]uint64)
	}
	c.RemovedBytes[epoch] += n
}

func (c *OperationCost) removedElement(size uint64, e Element) {
	if e.HasBirthEpoch {
		c.removed(e.BirthEpoch, size)
	} else {
		c.UnrefundableRemovedBytes += size
	}
}

func (c *OperationCost) seek() {
	c.SeekCount++
}

func (c *OperationCost) load(n int) {
	c.LoadedBytes += uint64(n)
}

func (c *OperationCost) hash(n uint64) {
	c.HashBlocks += (n + hashBlockSize - 1) / hashBlockSize
}

// storedSize is the storage footprint of an element under a key.
func storedSize(key []byte, raw []byte) uint64 {
	return uint64(len(key)+len(raw)) + nodeOverhead
}
