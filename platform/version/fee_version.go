package version

// FeeVersion is a versioned cost table. All values are credits.
type FeeVersion struct {
	Storage    StorageFees
	Hashing    HashingFees
	Signature  SignatureFees
	Processing ProcessingFees
}

// StorageFees prices store access.
type StorageFees struct {
	// DiskUsageCreditPerByte is paid once per byte stored and refunded
	// when the byte is removed.
	DiskUsageCreditPerByte uint64
	// ProcessingCreditPerByte is paid per byte written, replaced or removed.
	ProcessingCreditPerByte uint64
	// LoadCreditPerByte is paid per byte read from the store.
	LoadCreditPerByte uint64
	// NonStorageLoadCreditPerByte is paid per byte of submitted payload.
	NonStorageLoadCreditPerByte uint64
	// SeekCost is paid per store seek.
	SeekCost uint64
}

// HashingFees prices hashing work.
type HashingFees struct {
	// PerBlock is paid per 64-byte hashed block.
	PerBlock uint64
	// Base is paid per hash call.
	Base uint64
}

// SignatureFees prices signature verification by key type.
type SignatureFees struct {
	EcdsaSecp256k1 uint64
	EcdsaHash160   uint64
	Bls12381       uint64
}

// ProcessingFees prices validation steps without a store footprint of their
// own.
type ProcessingFees struct {
	FetchIdentityBalance   uint64
	FetchIdentityKey       uint64
	FetchIdentityNonce     uint64
	FetchContract          uint64
	FetchDocument          uint64
	FetchTokenState        uint64
	ValidateKeyStructure   uint64
	VerifyAssetLockProof   uint64
	ValidateDocumentSchema uint64
}

var (
	feeVersion1 = &FeeVersion{
		Storage: StorageFees{
			DiskUsageCreditPerByte:      27000,
			ProcessingCreditPerByte:     400,
			LoadCreditPerByte:           20,
			NonStorageLoadCreditPerByte: 10,
			SeekCost:                    2000,
		},
		Hashing: HashingFees{
			PerBlock: 100,
			Base:     100,
		},
		Signature: SignatureFees{
			EcdsaSecp256k1: 3000,
			EcdsaHash160:   4000,
			Bls12381:       6000,
		},
		Processing: ProcessingFees{
			FetchIdentityBalance:   1000,
			FetchIdentityKey:       1000,
			FetchIdentityNonce:     1000,
			FetchContract:          1000,
			FetchDocument:          1000,
			FetchTokenState:        1000,
			ValidateKeyStructure:   50,
			VerifyAssetLockProof:   5000,
			ValidateDocumentSchema: 100,
		},
	}

	feeVersion2 = func() *FeeVersion {
		cp := *feeVersion1
		cp.Storage.DiskUsageCreditPerByte *= 2
		return &cp
	}()

	feeVersions = map[FeatureVersion]*FeeVersion{
		1: feeVersion1,
		2: feeVersion2,
	}
)

// FeeVersionByNumber returns a cost table.
func FeeVersionByNumber(v FeatureVersion) (*FeeVersion, error) {
	fv, ok := feeVersions[v]
	if !ok {
		return nil, UnknownVersionMismatch{
			Method:        "fee_version",
			KnownVersions: []FeatureVersion{1, 2},
			Received:      v,
		}
	}
	return fv, nil
}
