// Package iblockproc defines the state the block coordinator keeps between
// blocks. BlockState changes with every committed block, EpochState once per
// epoch.
package iblockproc

import (
	"crypto/sha256"

	"github.com/Fantom-foundation/lachesis-base/hash"
	"github.com/ethereum/go-ethereum/rlp"

	"github.com/rony4d/go-platform-drive/inter"
)

// EpochState describes the epoch blocks are currently executed in.
type EpochState struct {
	Epoch       inter.EpochIndex
	StartHeight uint64
	StartTimeMs uint64
	// ProtocolVersion is the version the epoch runs under. It only changes
	// at epoch boundaries.
	ProtocolVersion uint32
	FeeVersion      uint64
}

// Hash is the SHA256 of the RLP encoding.
func (es EpochState) Hash() hash.Hash {
	return rlpHash(&es)
}

// BlockState is the state after the last committed block.
type BlockState struct {
	LastBlock inter.BlockInfo
	// Root is the state root the last block committed.
	Root hash.Hash
	// RecordHash is the hash of the last block record.
	RecordHash hash.Hash
	Epoch      EpochState
}

// Copy returns a copy that shares nothing with bs.
func (bs BlockState) Copy() BlockState {
	return bs
}

// Hash fingerprints the decided state.
func (bs BlockState) Hash() hash.Hash {
	return rlpHash(&bs)
}

func rlpHash(v interface{}) hash.Hash {
	hasher := sha256.New()
	if err := rlp.Encode(hasher, v); err != nil {
		panic("can't hash: " + err.Error())
	}
	return hash.BytesToHash(hasher.Sum(nil))
}
