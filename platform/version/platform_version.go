// Package version maps protocol versions to the concrete versions of every
// validation, execution and fee rule.
//
// A PlatformVersion is an immutable table: feature path -> feature version.
// Components keep a Registry per feature path, built at startup, and resolve
// the implementation for the active protocol version before acting. An
// unknown version is a fatal UnknownVersionMismatch and never falls back to
// another implementation.
package version

import (
	"sort"
)

// FeatureVersion selects one implementation of a feature.
type FeatureVersion uint16

// PlatformVersion is the rule table of one protocol version.
type PlatformVersion struct {
	ProtocolVersion uint32
	// FeeVersion selects the cost table, see FeeVersionByNumber.
	FeeVersion FeatureVersion
	features   map[FeaturePath]FeatureVersion
}

// Feature returns the version of a feature path.
func (pv *PlatformVersion) Feature(path FeaturePath) (FeatureVersion, error) {
	v, ok := pv.features[path]
	if !ok {
		return 0, UnknownVersionMismatch{
			Method:   string(path),
			Received: FeatureVersion(pv.ProtocolVersion),
		}
	}
	return v, nil
}

// Fees returns the cost table of this protocol version.
func (pv *PlatformVersion) Fees() (*FeeVersion, error) {
	return FeeVersionByNumber(pv.FeeVersion)
}

// with returns a copy of the table with some features overridden.
func (pv *PlatformVersion) with(protocol uint32, fee FeatureVersion, overrides map[FeaturePath]FeatureVersion) *PlatformVersion {
	features := make(map[FeaturePath]FeatureVersion, len(pv.features))
	for k, v := range pv.features {
		features[k] = v
	}
	for k, v := range overrides {
		features[k] = v
	}
	return &PlatformVersion{
		ProtocolVersion: protocol,
		FeeVersion:      fee,
		features:        features,
	}
}

var (
	platformV1 = &PlatformVersion{
		ProtocolVersion: 1,
		FeeVersion:      1,
		features: map[FeaturePath]FeatureVersion{
			IdentityCreateStructure:   0,
			IdentityCreateSignatures:  0,
			IdentityCreateState:       0,
			IdentityCreateTransform:   0,
			IdentityTopUpStructure:    0,
			IdentityTopUpState:        0,
			IdentityTopUpTransform:    0,
			IdentityUpdateStructure:   0,
			IdentityUpdateState:       0,
			IdentityUpdateTransform:   0,
			CreditTransferStructure:   0,
			CreditTransferState:       0,
			CreditTransferTransform:   0,
			CreditWithdrawalStructure: 0,
			CreditWithdrawalState:     0,
			CreditWithdrawalTransform: 0,
			MasternodeVoteStructure:   0,
			MasternodeVoteState:       0,
			MasternodeVoteTransform:   0,
			ContractCreateStructure:   0,
			ContractCreateState:       0,
			ContractCreateTransform:   0,
			ContractUpdateStructure:   0,
			ContractUpdateState:       0,
			ContractUpdateTransform:   0,
			BatchStructure:            0,
			BatchState:                0,
			BatchTransform:            0,
			IdentitySignature:         0,
			DriveIdentityOperations:   0,
			DriveContractOperations:   0,
			DriveDocumentOperations:   0,
			DriveTokenOperations:      0,
			DriveVoteOperations:       0,
			DriveWithdrawalOperations: 0,
			FeesCalculate:             0,
			PoolsProcessBlockFees:     0,
			PoolsPayProposers:         0,
			EngineProcessTransition:   0,
			EngineProtocolUpgrade:     0,
		},
	}

	// Protocol version 2 introduces tokens: token transitions inside batches,
	// token configuration in contracts, and the second fee table. Credit
	// transfers must target an existing identity.
	platformV2 = platformV1.with(2, 2, map[FeaturePath]FeatureVersion{
		CreditTransferState:     1,
		BatchStructure:          1,
		ContractCreateStructure: 1,
		ContractUpdateStructure: 1,
	})

	platformVersions = map[uint32]*PlatformVersion{
		1: platformV1,
		2: platformV2,
	}
)

// Get returns the rule table of a protocol version.
func Get(protocolVersion uint32) (*PlatformVersion, error) {
	pv, ok := platformVersions[protocolVersion]
	if !ok {
		return nil, UnknownVersionMismatch{
			Method:        "platform_version",
			KnownVersions: knownProtocolVersions(),
			Received:      FeatureVersion(protocolVersion),
		}
	}
	return pv, nil
}

// Latest returns the newest rule table.
func Latest() *PlatformVersion {
	known := knownProtocolVersions()
	return platformVersions[uint32(known[len(known)-1])]
}

func knownProtocolVersions() []FeatureVersion {
	known := make([]FeatureVersion, 0, len(platformVersions))
	for v := range platformVersions {
		known = append(known, FeatureVersion(v))
	}
	sort.Slice(known, func(i, j int) bool { return known[i] < known[j] })
	return known
}
