// Package platform defines the network rules consumed by the execution core.
//
// This package provides:
//   - Network identification constants (MainNet, TestNet, FakeNet)
//   - Epoch rules (epoch length, upgrade vote threshold)
//   - Transition limits (KB ceiling, batch size, key counts)
//   - Protocol version bounds
//   - Economic parameters (minimum amounts, fee multiplier)
//
// Rules are loaded externally (launcher config) and never mutated by the
// execution core.
package platform

import (
	"encoding/json"
	"time"
)

// Network identification constants
const (
	MainNetworkID uint64 = 0xd5
	TestNetworkID uint64 = 0xd52
	FakeNetworkID uint64 = 0xd53

	// LatestProtocolVersion is the newest protocol version this build knows.
	LatestProtocolVersion uint32 = 2
)

// Rules describes the complete configuration of a platform network.
type Rules struct {
	Name      string
	NetworkID uint64

	Epochs EpochsRules

	Limits LimitsRules

	Protocol ProtocolRules

	Economy EconomyRules
}

// EpochsRules defines how block time is cut into epochs.
type EpochsRules struct {
	// EpochLength is the duration of an epoch measured in block time.
	EpochLength time.Duration

	// UpgradeThresholdPercent is the share of an epoch's blocks that must
	// propose a protocol version for it to activate in the next epoch.
	UpgradeThresholdPercent uint64
}

// EpochLengthMs returns the epoch length in milliseconds.
func (r EpochsRules) EpochLengthMs() uint64 {
	return uint64(r.EpochLength / time.Millisecond)
}

// LimitsRules bounds the size of submitted transitions.
type LimitsRules struct {
	// MaxTransitionSizeKB is the ceiling of a serialized transition.
	MaxTransitionSizeKB uint32

	// MaxTransitionsInBatch caps documents and tokens in one batch.
	MaxTransitionsInBatch uint16

	// MaxPublicKeysInCreation caps the keys of an identity create.
	MaxPublicKeysInCreation uint16

	// MaxDocumentTypesPerContract caps contract breadth.
	MaxDocumentTypesPerContract uint16
}

// MaxTransitionSize returns the ceiling in bytes.
func (r LimitsRules) MaxTransitionSize() int {
	return int(r.MaxTransitionSizeKB) * 1024
}

// ProtocolRules bounds the protocol versions this node accepts.
type ProtocolRules struct {
	MinSupportedVersion uint32
	MaxSupportedVersion uint32
	// GenesisVersion is the protocol version active from the first block.
	GenesisVersion uint32
}

// Supports reports whether v is within the supported range.
func (r ProtocolRules) Supports(v uint32) bool {
	return v >= r.MinSupportedVersion && v <= r.MaxSupportedVersion
}

// EconomyRules holds amounts enforced by transition validation.
type EconomyRules struct {
	// MinAssetLockCredits is the smallest asset lock accepted for funding.
	MinAssetLockCredits uint64
	// MinTransferCredits is the smallest credit transfer.
	MinTransferCredits uint64
	// MinWithdrawalCredits is the smallest credit withdrawal.
	MinWithdrawalCredits uint64
	// FeeMultiplierPermille scales processing fees of new epochs. 1000 is 1x.
	FeeMultiplierPermille uint64
}

// MainNetRules returns main network rules.
func MainNetRules() Rules {
	return Rules{
		Name:      "main",
		NetworkID: MainNetworkID,
		Epochs:    DefaultEpochsRules(),
		Limits:    DefaultLimitsRules(),
		Protocol: ProtocolRules{
			MinSupportedVersion: 1,
			MaxSupportedVersion: LatestProtocolVersion,
			GenesisVersion:      1,
		},
		Economy: DefaultEconomyRules(),
	}
}

// TestNetRules returns test network rules.
func TestNetRules() Rules {
	rules := MainNetRules()
	rules.Name = "test"
	rules.NetworkID = TestNetworkID
	rules.Epochs.EpochLength = time.Hour
	return rules
}

// FakeNetRules returns rules for local networks and tests: short epochs and
// the latest protocol version from genesis.
func FakeNetRules() Rules {
	return Rules{
		Name:      "fake",
		NetworkID: FakeNetworkID,
		Epochs:    FakeNetEpochsRules(),
		Limits:    FakeNetLimitsRules(),
		Protocol: ProtocolRules{
			MinSupportedVersion: 1,
			MaxSupportedVersion: LatestProtocolVersion,
			GenesisVersion:      LatestProtocolVersion,
		},
		Economy: DefaultEconomyRules(),
	}
}

func DefaultEpochsRules() EpochsRules {
	return EpochsRules{
		EpochLength:             18 * time.Hour,
		UpgradeThresholdPercent: 75,
	}
}

func FakeNetEpochsRules() EpochsRules {
	cfg := DefaultEpochsRules()
	cfg.EpochLength = time.Minute
	return cfg
}

func DefaultLimitsRules() LimitsRules {
	return LimitsRules{
		MaxTransitionSizeKB:         20,
		MaxTransitionsInBatch:       1,
		MaxPublicKeysInCreation:     6,
		MaxDocumentTypesPerContract: 32,
	}
}

func FakeNetLimitsRules() LimitsRules {
	cfg := DefaultLimitsRules()
	cfg.MaxTransitionsInBatch = 10
	return cfg
}

func DefaultEconomyRules() EconomyRules {
	return EconomyRules{
		MinAssetLockCredits:   100000,
		MinTransferCredits:    1000,
		MinWithdrawalCredits:  190000,
		FeeMultiplierPermille: 1000,
	}
}

// Copy returns a copy of the rules. Rules hold no references, the method
// exists so call sites do not depend on that.
func (r Rules) Copy() Rules {
	return r
}

func (r Rules) String() string {
	b, _ := json.Marshal(&r)
	return string(b)
}
