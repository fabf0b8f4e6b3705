package validation

import (
	"bytes"

	"github.com/pkg/errors"

	"github.com/rony4d/go-platform-drive/drive/fees"
	"github.com/rony4d/go-platform-drive/inter/keys"
	"github.com/rony4d/go-platform-drive/platform/version"
	"github.com/rony4d/go-platform-drive/transition"
	"github.com/rony4d/go-platform-drive/transition/consensuserr"
	"github.com/rony4d/go-platform-drive/transition/contract"
	"github.com/rony4d/go-platform-drive/transition/document"
)

type structureFunc func(v *Validator, ctx *Context, st transition.StateTransition) []consensuserr.ConsensusError

var structureChecks = map[transition.Type]*version.Registry[structureFunc]{
	transition.IdentityCreateType: version.NewRegistry[structureFunc](version.IdentityCreateStructure).
		Register(0, identityCreateStructureV0),
	transition.IdentityTopUpType: version.NewRegistry[structureFunc](version.IdentityTopUpStructure).
		Register(0, identityTopUpStructureV0),
	transition.IdentityUpdateType: version.NewRegistry[structureFunc](version.IdentityUpdateStructure).
		Register(0, identityUpdateStructureV0),
	transition.IdentityCreditTransferType: version.NewRegistry[structureFunc](version.CreditTransferStructure).
		Register(0, creditTransferStructureV0),
	transition.IdentityCreditWithdrawalType: version.NewRegistry[structureFunc](version.CreditWithdrawalStructure).
		Register(0, withdrawalStructureV0),
	transition.MasternodeVoteType: version.NewRegistry[structureFunc](version.MasternodeVoteStructure).
		Register(0, voteStructureV0),
	transition.DataContractCreateType: version.NewRegistry[structureFunc](version.ContractCreateStructure).
		Register(0, contractStructure(false)).
		Register(1, contractStructure(true)),
	transition.DataContractUpdateType: version.NewRegistry[structureFunc](version.ContractUpdateStructure).
		Register(0, contractStructure(false)).
		Register(1, contractStructure(true)),
	transition.BatchType: version.NewRegistry[structureFunc](version.BatchStructure).
		Register(0, batchStructure(false)).
		Register(1, batchStructure(true)),
}

// Structure checks the transition without reading state.
func (v *Validator) Structure(ctx *Context, res *Result) error {
	env := ctx.Envelope
	ctx.Log.Add(fees.PayloadBytes, uint64(env.Size))

	if !v.rules.Protocol.Supports(env.ProtocolVersion) {
		res.add(consensuserr.UnsupportedProtocolVersionError{
			Received: env.ProtocolVersion,
			Min:      v.rules.Protocol.MinSupportedVersion,
			Max:      v.rules.Protocol.MaxSupportedVersion,
		})
	}
	if max := v.rules.Limits.MaxTransitionSize(); env.Size > max {
		res.add(consensuserr.MaxSizeExceededError{Size: uint64(env.Size), Max: uint64(max)})
	}
	if !res.IsValid() {
		return nil
	}

	st := env.Transition
	reg, ok := structureChecks[st.Type()]
	if !ok {
		return errors.Errorf("no structure validation for %s", st.Type())
	}
	check, err := reg.Resolve(ctx.Version)
	if err != nil {
		return err
	}
	res.add(check(v, ctx, st)...)
	return nil
}

func identityCreateStructureV0(v *Validator, ctx *Context, st transition.StateTransition) []consensuserr.ConsensusError {
	t := st.(*transition.IdentityCreate)
	errs := v.assetLockStructure(ctx, &t.AssetLockProof)

	n := len(t.PublicKeys)
	if max := int(v.rules.Limits.MaxPublicKeysInCreation); n == 0 || n > max {
		errs = append(errs, consensuserr.InvalidKeyCountError{Count: uint32(n), Max: uint32(max)})
	}
	errs = append(errs, keysStructure(ctx, t.PublicKeys)...)

	hasMaster := false
	for _, k := range t.PublicKeys {
		if k.Purpose == keys.Authentication && k.SecurityLevel == keys.Master {
			hasMaster = true
		}
	}
	if !hasMaster {
		errs = append(errs, consensuserr.MissingMasterPublicKeyError{})
	}
	return errs
}

func identityTopUpStructureV0(v *Validator, ctx *Context, st transition.StateTransition) []consensuserr.ConsensusError {
	t := st.(*transition.IdentityTopUp)
	return v.assetLockStructure(ctx, &t.AssetLockProof)
}

func (v *Validator) assetLockStructure(ctx *Context, proof *transition.AssetLockProof) []consensuserr.ConsensusError {
	var errs []consensuserr.ConsensusError
	ctx.Log.Add(fees.VerifyAssetLockProof, 1)
	if proof.Outpoint == ([36]byte{}) || proof.PublicKeyHash == ([keys.Hash160Length]byte{}) {
		errs = append(errs, consensuserr.InvalidAssetLockProofError{Outpoint: proof.Outpoint[:]})
	}
	if min := v.rules.Economy.MinAssetLockCredits; uint64(proof.Amount) < min {
		errs = append(errs, consensuserr.InvalidAmountError{Amount: uint64(proof.Amount), Min: min})
	}
	return errs
}

// keysStructure reports every duplicated id, every duplicated key data and
// every key with malformed data at once.
func keysStructure(ctx *Context, created []transition.KeyInCreation) []consensuserr.ConsensusError {
	var errs []consensuserr.ConsensusError
	ctx.Log.Add(fees.ValidateKeyStructure, uint64(len(created)))

	var dupIDs, dupData []keys.KeyID
	seenIDs := make(map[keys.KeyID]bool, len(created))
	for i, k := range created {
		if seenIDs[k.ID] {
			dupIDs = append(dupIDs, k.ID)
		}
		seenIDs[k.ID] = true
		for _, prev := range created[:i] {
			if prev.Type == k.Type && bytes.Equal(prev.Data, k.Data) {
				dupData = append(dupData, k.ID)
				break
			}
		}
	}
	if len(dupIDs) > 0 {
		errs = append(errs, consensuserr.DuplicatedIdentityPublicKeyIDError{IDs: dupIDs})
	}
	if len(dupData) > 0 {
		errs = append(errs, consensuserr.DuplicatedIdentityPublicKeyError{IDs: dupData})
	}
	for _, k := range created {
		if k.PublicKey().ValidateData() != nil {
			errs = append(errs, consensuserr.InvalidIdentityPublicKeyDataError{ID: k.ID, Type: k.Type, Size: uint32(len(k.Data))})
		}
	}
	return errs
}

func identityUpdateStructureV0(v *Validator, ctx *Context, st transition.StateTransition) []consensuserr.ConsensusError {
	t := st.(*transition.IdentityUpdate)
	var errs []consensuserr.ConsensusError

	if n, max := len(t.AddPublicKeys), int(v.rules.Limits.MaxPublicKeysInCreation); n > max {
		errs = append(errs, consensuserr.InvalidKeyCountError{Count: uint32(n), Max: uint32(max)})
	}
	errs = append(errs, keysStructure(ctx, t.AddPublicKeys)...)
	for _, k := range t.AddPublicKeys {
		if k.SecurityLevel == keys.Master {
			errs = append(errs, consensuserr.MasterKeyAdditionError{ID: k.ID})
		}
	}

	seen := make(map[keys.KeyID]bool, len(t.AddPublicKeys)+len(t.DisablePublicKeys))
	for _, k := range t.AddPublicKeys {
		seen[k.ID] = true
	}
	var dups []keys.KeyID
	for _, id := range t.DisablePublicKeys {
		if seen[id] {
			dups = append(dups, id)
		}
		seen[id] = true
	}
	if len(dups) > 0 {
		errs = append(errs, consensuserr.DuplicatedKeyInUpdateError{IDs: dups})
	}
	return errs
}

func creditTransferStructureV0(v *Validator, ctx *Context, st transition.StateTransition) []consensuserr.ConsensusError {
	t := st.(*transition.IdentityCreditTransfer)
	var errs []consensuserr.ConsensusError
	if min := v.rules.Economy.MinTransferCredits; uint64(t.Amount) < min {
		errs = append(errs, consensuserr.InvalidAmountError{Amount: uint64(t.Amount), Min: min})
	}
	if t.RecipientID == t.IdentityID {
		errs = append(errs, consensuserr.CreditTransferToSelfError{Identity: t.IdentityID})
	}
	return errs
}

// Output script sizes of P2PKH and P2SH.
const (
	p2pkhScriptLength = 25
	p2shScriptLength  = 23
)

func withdrawalStructureV0(v *Validator, ctx *Context, st transition.StateTransition) []consensuserr.ConsensusError {
	t := st.(*transition.IdentityCreditWithdrawal)
	var errs []consensuserr.ConsensusError
	if min := v.rules.Economy.MinWithdrawalCredits; uint64(t.Amount) < min {
		errs = append(errs, consensuserr.InvalidAmountError{Amount: uint64(t.Amount), Min: min})
	}
	if n := len(t.OutputScript); n != p2pkhScriptLength && n != p2shScriptLength {
		errs = append(errs, consensuserr.InvalidWithdrawalOutputScriptError{Length: uint32(n)})
	}
	if !isFibonacci(t.CoreFeePerByte) {
		errs = append(errs, consensuserr.NotFibonacciCoreFeeError{FeePerByte: t.CoreFeePerByte})
	}
	return errs
}

func isFibonacci(n uint32) bool {
	a, b := uint64(1), uint64(2)
	for a < uint64(n) {
		a, b = b, a+b
	}
	return a == uint64(n)
}

func voteStructureV0(v *Validator, ctx *Context, st transition.StateTransition) []consensuserr.ConsensusError {
	t := st.(*transition.MasternodeVote)
	var errs []consensuserr.ConsensusError
	if t.Poll.ContractID.IsZero() {
		errs = append(errs, consensuserr.InvalidVotePollError{Field: "contract"})
	}
	if t.Poll.DocumentType == "" {
		errs = append(errs, consensuserr.InvalidVotePollError{Field: "documentType"})
	}
	if t.Poll.IndexName == "" {
		errs = append(errs, consensuserr.InvalidVotePollError{Field: "indexName"})
	}
	if len(t.Poll.IndexValues) == 0 {
		errs = append(errs, consensuserr.InvalidVotePollError{Field: "indexValues"})
	}
	if t.Choice.Kind == transition.TowardsIdentity && t.Choice.Identity.IsZero() {
		errs = append(errs, consensuserr.InvalidVotePollError{Field: "choice"})
	}
	return errs
}

// contractStructure validates contract create and update. Contracts may
// define tokens only when withTokens is set.
func contractStructure(withTokens bool) structureFunc {
	return func(v *Validator, ctx *Context, st transition.StateTransition) []consensuserr.ConsensusError {
		var (
			errs []consensuserr.ConsensusError
			c    *contract.DataContract
		)
		switch t := st.(type) {
		case *transition.DataContractCreate:
			c = t.Contract
			if expected := contract.GenerateID(c.OwnerID, t.IdentityNonce); c.ID != expected {
				errs = append(errs, consensuserr.InvalidDataContractIDError{Expected: expected, Got: c.ID})
			}
			if c.Version != 1 {
				errs = append(errs, consensuserr.InvalidDataContractVersionError{Expected: 1, Provided: c.Version})
			}
		case *transition.DataContractUpdate:
			c = t.Contract
		}

		n := len(c.DocumentTypes)
		if n == 0 {
			errs = append(errs, consensuserr.EmptyDataContractError{})
		}
		if max := int(v.rules.Limits.MaxDocumentTypesPerContract); n > max {
			errs = append(errs, consensuserr.TooManyDocumentTypesError{Count: uint32(n), Max: uint32(max)})
		}
		for i := range c.DocumentTypes {
			dt := &c.DocumentTypes[i]
			if index, prop, undefined := dt.UndefinedIndexProperty(); undefined {
				errs = append(errs, consensuserr.UndefinedIndexPropertyError{DocumentType: dt.Name, Index: index, Property: prop})
			}
		}
		if len(c.Tokens) > 0 && !withTokens {
			errs = append(errs, consensuserr.TokenTransitionsNotSupportedError{})
		}
		return errs
	}
}

// batchStructure validates batches. Token transitions are accepted only
// when withTokens is set.
func batchStructure(withTokens bool) structureFunc {
	return func(v *Validator, ctx *Context, st transition.StateTransition) []consensuserr.ConsensusError {
		t := st.(*transition.Batch)
		var errs []consensuserr.ConsensusError

		if n, max := len(t.Transitions), int(v.rules.Limits.MaxTransitionsInBatch); n == 0 || n > max {
			errs = append(errs, consensuserr.InvalidBatchSizeError{Count: uint32(n), Max: uint32(max)})
		}
		if !withTokens && t.HasTokenTransitions() {
			errs = append(errs, consensuserr.TokenTransitionsNotSupportedError{})
		}
		for _, sub := range t.Transitions {
			switch s := sub.(type) {
			case *transition.DocumentCreate:
				if s.Entropy == ([32]byte{}) {
					errs = append(errs, consensuserr.InvalidEntropyError{Length: 0})
				}
				expected := document.GenerateID(s.ContractID, t.OwnerID, s.DocumentType, s.Entropy[:])
				if s.ID != expected {
					errs = append(errs, consensuserr.InvalidDocumentIDError{Expected: expected, Got: s.ID})
				}
			case *transition.TokenMint:
				errs = appendZeroAmount(errs, s.Amount)
			case *transition.TokenBurn:
				errs = appendZeroAmount(errs, s.Amount)
			case *transition.TokenTransfer:
				errs = appendZeroAmount(errs, s.Amount)
				if s.Recipient == t.OwnerID {
					errs = append(errs, consensuserr.CreditTransferToSelfError{Identity: t.OwnerID})
				}
			}
		}
		return errs
	}
}

func appendZeroAmount(errs []consensuserr.ConsensusError, amount uint64) []consensuserr.ConsensusError {
	if amount == 0 {
		return append(errs, consensuserr.InvalidAmountError{Amount: 0, Min: 1})
	}
	return errs
}

