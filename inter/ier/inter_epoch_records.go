// Package ier defines the record of an ended epoch.
package ier

import (
	"github.com/Fantom-foundation/lachesis-base/common/bigendian"
	"github.com/Fantom-foundation/lachesis-base/hash"

	"github.com/rony4d/go-platform-drive/inter"
	"github.com/rony4d/go-platform-drive/inter/iblockproc"
)

// EpochRecord summarizes an epoch once its last block is known.
type EpochRecord struct {
	Epoch iblockproc.EpochState
	// EndHeight is the height of the last block of the epoch.
	EndHeight     uint64
	Blocks        uint64
	Proposers     uint32
	ProcessingFee inter.Credits
	StorageFee    inter.Credits
}

// Hash identifies the record.
func (r EpochRecord) Hash() hash.Hash {
	return hash.Of(
		r.Epoch.Hash().Bytes(),
		bigendian.Uint64ToBytes(r.EndHeight),
		bigendian.Uint64ToBytes(r.Blocks),
		bigendian.Uint32ToBytes(r.Proposers),
		bigendian.Uint64ToBytes(uint64(r.ProcessingFee)),
		bigendian.Uint64ToBytes(uint64(r.StorageFee)),
	)
}
