package inter

import (
	"github.com/Fantom-foundation/lachesis-base/inter/idx"
)

// BlockInfo is the block metadata delivered by consensus. It is immutable once
// constructed.
type BlockInfo struct {
	Height idx.Block
	// TimeMs is the block time in milliseconds since the Unix epoch.
	TimeMs uint64
	// PreviousTimeMs is zero for the first block.
	PreviousTimeMs uint64
	CoreHeight     uint32
	// Proposer is the pro-tx-hash of the masternode that proposed the block.
	Proposer Identifier
	// ProposedProtocolVersion is the highest protocol version the proposer
	// supports. It feeds protocol upgrade voting.
	ProposedProtocolVersion uint32
}

// HasPrevious reports whether a block preceded this one.
func (b BlockInfo) HasPrevious() bool {
	return b.Height > 1
}

// BlockContext is BlockInfo as seen by the execution pipeline: the epoch and
// the active protocol version are resolved by the coordinator.
type BlockContext struct {
	BlockInfo
	Epoch           Epoch
	ProtocolVersion uint32
}
