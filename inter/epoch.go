package inter

import (
	"errors"
	"math"

	"github.com/Fantom-foundation/lachesis-base/common/bigendian"
)

// EpochIndex numbers epochs from genesis.
type EpochIndex uint16

// EpochKeyLength is the length of the storage key derived from an epoch index.
const EpochKeyLength = 2

var (
	// ErrEpochOverflow is returned when the block time maps to an epoch index
	// that does not fit into EpochIndex.
	ErrEpochOverflow = errors.New("epoch index overflow")
	// ErrBlockBeforeGenesis is returned for block times preceding genesis.
	ErrBlockBeforeGenesis = errors.New("block time is before genesis time")
	// ErrZeroEpochLength is returned when the configured epoch length is zero.
	ErrZeroEpochLength = errors.New("epoch length is zero")
)

// Epoch is an epoch index together with its big-endian storage key.
type Epoch struct {
	Index EpochIndex
	Key   [EpochKeyLength]byte
}

// NewEpoch builds the Epoch for the given index.
func NewEpoch(index EpochIndex) Epoch {
	e := Epoch{Index: index}
	copy(e.Key[:], bigendian.Uint16ToBytes(uint16(index)))
	return e
}

// EpochFromKey parses a storage key back into an Epoch.
func EpochFromKey(key []byte) (Epoch, error) {
	if len(key) != EpochKeyLength {
		return Epoch{}, errors.New("invalid epoch key length")
	}
	return NewEpoch(EpochIndex(bigendian.BytesToUint16(key))), nil
}

// Bytes returns the storage key as a slice.
func (e Epoch) Bytes() []byte {
	return append([]byte(nil), e.Key[:]...)
}

// EpochIndexAt computes which epoch a block time (ms) belongs to.
func EpochIndexAt(genesisTimeMs, blockTimeMs, epochLengthMs uint64) (EpochIndex, error) {
	if epochLengthMs == 0 {
		return 0, ErrZeroEpochLength
	}
	if blockTimeMs < genesisTimeMs {
		return 0, ErrBlockBeforeGenesis
	}
	index := (blockTimeMs - genesisTimeMs) / epochLengthMs
	if index > math.MaxUint16 {
		return 0, ErrEpochOverflow
	}
	return EpochIndex(index), nil
}

// EpochInfo describes the epoch of the block being executed and whether the
// block opens it.
type EpochInfo struct {
	Current Epoch
	// Previous is set only on the first block of a new epoch.
	Previous *EpochIndex
	// IsChange is true for the first block of any epoch, including genesis.
	IsChange bool
}

// NewEpochInfo derives the epoch info for a block given the previous block's
// time. previousTimeMs is ignored when hasPrevious is false.
func NewEpochInfo(genesisTimeMs, blockTimeMs, previousTimeMs uint64, hasPrevious bool, epochLengthMs uint64) (EpochInfo, error) {
	current, err := EpochIndexAt(genesisTimeMs, blockTimeMs, epochLengthMs)
	if err != nil {
		return EpochInfo{}, err
	}
	info := EpochInfo{Current: NewEpoch(current)}
	if !hasPrevious {
		info.IsChange = true
		return info, nil
	}
	previous, err := EpochIndexAt(genesisTimeMs, previousTimeMs, epochLengthMs)
	if err != nil {
		return EpochInfo{}, err
	}
	if previous != current {
		info.IsChange = true
		info.Previous = &previous
	}
	return info, nil
}
