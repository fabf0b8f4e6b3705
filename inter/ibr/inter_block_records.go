// Package ibr defines the record of an executed block: a compact summary
// consensus can vote on without the block body.
package ibr

import (
	"github.com/Fantom-foundation/lachesis-base/common/bigendian"
	"github.com/Fantom-foundation/lachesis-base/hash"
	"github.com/Fantom-foundation/lachesis-base/inter/idx"

	"github.com/rony4d/go-platform-drive/inter"
)

// BlockRecord summarizes one executed block.
type BlockRecord struct {
	Height          idx.Block
	TimeMs          uint64
	Epoch           inter.EpochIndex
	ProtocolVersion uint32
	// TransitionsHash covers the raw transitions in block order.
	TransitionsHash hash.Hash
	// ResultsHash covers the encoded per-transition results.
	ResultsHash   hash.Hash
	ProcessingFee inter.Credits
	StorageFee    inter.Credits
	Refunds       inter.Credits
}

// Hash identifies the record.
func (r BlockRecord) Hash() hash.Hash {
	return hash.Of(
		bigendian.Uint64ToBytes(uint64(r.Height)),
		bigendian.Uint64ToBytes(r.TimeMs),
		bigendian.Uint16ToBytes(uint16(r.Epoch)),
		bigendian.Uint32ToBytes(r.ProtocolVersion),
		r.TransitionsHash.Bytes(),
		r.ResultsHash.Bytes(),
		bigendian.Uint64ToBytes(uint64(r.ProcessingFee)),
		bigendian.Uint64ToBytes(uint64(r.StorageFee)),
		bigendian.Uint64ToBytes(uint64(r.Refunds)),
	)
}

// TransitionsHash hashes raw transitions in order.
func TransitionsHash(raw [][]byte) hash.Hash {
	hashes := make([][]byte, len(raw))
	for i, tx := range raw {
		hashes[i] = hash.Of(tx).Bytes()
	}
	return hash.Of(hashes...)
}
