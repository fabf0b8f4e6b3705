// Package paths defines the layout of the platform state tree.
package paths

import (
	"github.com/Fantom-foundation/lachesis-base/common/bigendian"

	"github.com/rony4d/go-platform-drive/drive/storage"
	"github.com/rony4d/go-platform-drive/inter"
	"github.com/rony4d/go-platform-drive/inter/keys"
)

// RootTree is a single-byte key of a root subtree. The values are stable
// across protocol versions.
type RootTree byte

const (
	Tokens                 RootTree = 16
	UniquePublicKeyHashes  RootTree = 24
	Identities             RootTree = 32
	Pools                  RootTree = 48
	DataContractDocuments  RootTree = 64
	SpentAssetLocks        RootTree = 72
	WithdrawalTransactions RootTree = 80
	Balances               RootTree = 96
	Misc                   RootTree = 104
	Votes                  RootTree = 112
	Versions               RootTree = 120
)

// RootTrees lists every root subtree in key order.
var RootTrees = []RootTree{
	Tokens, UniquePublicKeyHashes, Identities, Pools, DataContractDocuments,
	SpentAssetLocks, WithdrawalTransactions, Balances, Misc, Votes, Versions,
}

// Key is the storage key of the root subtree.
func (r RootTree) Key() []byte { return []byte{byte(r)} }

// Path is the storage path of the root subtree.
func (r RootTree) Path() storage.Path { return storage.Path{r.Key()} }

// Identity subtree keys.
var (
	IdentityContractInfoKey   = []byte{32}
	IdentityNonceKey          = []byte{64}
	IdentityNegativeCreditKey = []byte{96}
	IdentityKeysKey           = []byte{128}
	IdentityRevisionKey       = []byte{192}
)

// IdentityPath is the subtree of one identity.
func IdentityPath(id inter.Identifier) storage.Path {
	return storage.Path{Identities.Key(), id.Bytes()}
}

// IdentityKeysPath holds the identity public keys by key id.
func IdentityKeysPath(id inter.Identifier) storage.Path {
	return IdentityPath(id).Child(IdentityKeysKey)
}

// IdentityContractInfoPath holds the per contract nonces of an identity.
func IdentityContractInfoPath(id inter.Identifier) storage.Path {
	return IdentityPath(id).Child(IdentityContractInfoKey)
}

// KeyIDKey is the storage key of a public key.
func KeyIDKey(id keys.KeyID) []byte {
	return bigendian.Uint32ToBytes(uint32(id))
}

// Contract subtree keys.
var (
	ContractKey      = []byte{0}
	DocumentTypesKey = []byte{1}
	// PrimaryKey holds the documents of a type by id.
	PrimaryKey = []byte{0}
)

// ContractPath is the subtree of one contract.
func ContractPath(contractID inter.Identifier) storage.Path {
	return storage.Path{DataContractDocuments.Key(), contractID.Bytes()}
}

// DocumentTypesPath holds the document type subtrees of a contract.
func DocumentTypesPath(contractID inter.Identifier) storage.Path {
	return ContractPath(contractID).Child(DocumentTypesKey)
}

// DocumentTypePath is the subtree of one document type.
func DocumentTypePath(contractID inter.Identifier, documentType string) storage.Path {
	return DocumentTypesPath(contractID).Child([]byte(documentType))
}

// DocumentsPath holds the documents of a type by id.
func DocumentsPath(contractID inter.Identifier, documentType string) storage.Path {
	return DocumentTypePath(contractID, documentType).Child(PrimaryKey)
}

// IndexPath is the tree of one index. Unique indices map the index key to a
// document id; non-unique indices hold a subtree of document ids per index
// key.
func IndexPath(contractID inter.Identifier, documentType, index string) storage.Path {
	return DocumentTypePath(contractID, documentType).Child([]byte(index))
}

// Token subtree keys.
var (
	TokenBalancesKey = []byte("b")
	TokenFrozenKey   = []byte("f")
	TokenPausedKey   = []byte("p")
	TokenSupplyKey   = []byte("s")
	TokenMaxKey      = []byte("m")
)

// TokenPath is the subtree of one token.
func TokenPath(tokenID inter.Identifier) storage.Path {
	return storage.Path{Tokens.Key(), tokenID.Bytes()}
}

// TokenBalancesPath holds token balances by identity.
func TokenBalancesPath(tokenID inter.Identifier) storage.Path {
	return TokenPath(tokenID).Child(TokenBalancesKey)
}

// TokenFrozenPath holds the frozen identities of a token.
func TokenFrozenPath(tokenID inter.Identifier) storage.Path {
	return TokenPath(tokenID).Child(TokenFrozenKey)
}

// Misc keys.
var (
	GenesisTimeKey     = []byte("genesis_time")
	LastBlockKey       = []byte("last_block")
	ProtocolVersionKey = []byte("protocol_version")
	TotalCreditsKey    = []byte("total_credits")
	SystemCreditsKey   = []byte("system_credits")
	WithdrawalIndexKey = []byte("withdrawal_index")
)

// Pools keys.
var (
	// DistributionKey holds the payout progress of the epoch being
	// distributed.
	DistributionKey = []byte("distribution")
	// CurrentEpochKey holds the index of the epoch being accumulated.
	CurrentEpochKey = []byte("current_epoch")
	// EpochsKey holds the pools by epoch key.
	EpochsKey = []byte("epochs")

	PoolProcessingFeeKey = []byte("p")
	PoolStorageFeeKey    = []byte("s")
	PoolInfoKey          = []byte("i")
	PoolProposersKey     = []byte("b")
)

// EpochsPath holds the epoch pools.
func EpochsPath() storage.Path {
	return Pools.Path().Child(EpochsKey)
}

// EpochPoolPath is the pool of one epoch.
func EpochPoolPath(epoch inter.Epoch) storage.Path {
	return EpochsPath().Child(epoch.Bytes())
}

// EpochProposersPath holds the proposer block counts of an epoch.
func EpochProposersPath(epoch inter.Epoch) storage.Path {
	return EpochPoolPath(epoch).Child(PoolProposersKey)
}

// EpochFeeVersionKey holds, in the versions tree of an epoch, the fee
// version the epoch was charged with. Vote counter keys are 4 bytes long.
var EpochFeeVersionKey = []byte("fee")

// VersionsEpochPath holds protocol version votes of an epoch.
func VersionsEpochPath(epoch inter.Epoch) storage.Path {
	return Versions.Path().Child(epoch.Bytes())
}

// VotePollPath holds the votes of one contested poll by voter.
func VotePollPath(pollID inter.Identifier) storage.Path {
	return Votes.Path().Child(pollID.Bytes())
}

// ProtocolVersionKeyOf is the key of a protocol version vote counter.
func ProtocolVersionKeyOf(v uint32) []byte {
	return bigendian.Uint32ToBytes(v)
}

// Uint64Key encodes sequence numbers so key order is numeric order.
func Uint64Key(v uint64) []byte {
	return bigendian.Uint64ToBytes(v)
}
