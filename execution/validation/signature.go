package validation

import (
	"github.com/pkg/errors"

	"github.com/rony4d/go-platform-drive/drive"
	"github.com/rony4d/go-platform-drive/drive/fees"
	"github.com/rony4d/go-platform-drive/drive/storage"
	"github.com/rony4d/go-platform-drive/inter/keys"
	"github.com/rony4d/go-platform-drive/platform/version"
	"github.com/rony4d/go-platform-drive/transition"
	"github.com/rony4d/go-platform-drive/transition/consensuserr"
)

// KeyRequirement is the purposes and security levels a signing key must
// have for a transition type.
type KeyRequirement struct {
	Purposes []keys.Purpose
	Levels   []keys.SecurityLevel
}

var anyLevel = []keys.SecurityLevel{keys.Master, keys.Critical, keys.High, keys.Medium}

var keyRequirements = map[transition.Type]KeyRequirement{
	transition.IdentityUpdateType: {
		Purposes: []keys.Purpose{keys.Authentication},
		Levels:   []keys.SecurityLevel{keys.Master},
	},
	transition.IdentityCreditTransferType: {
		Purposes: []keys.Purpose{keys.Transfer},
		Levels:   []keys.SecurityLevel{keys.Critical},
	},
	transition.IdentityCreditWithdrawalType: {
		Purposes: []keys.Purpose{keys.Transfer, keys.Authentication},
		Levels:   []keys.SecurityLevel{keys.Critical},
	},
	transition.DataContractCreateType: {
		Purposes: []keys.Purpose{keys.Authentication},
		Levels:   []keys.SecurityLevel{keys.Critical},
	},
	transition.DataContractUpdateType: {
		Purposes: []keys.Purpose{keys.Authentication},
		Levels:   []keys.SecurityLevel{keys.Critical},
	},
	transition.BatchType: {
		Purposes: []keys.Purpose{keys.Authentication},
		Levels:   []keys.SecurityLevel{keys.Critical, keys.High, keys.Medium},
	},
	transition.MasternodeVoteType: {
		Purposes: []keys.Purpose{keys.Voting},
		Levels:   anyLevel,
	},
}

// RequiredKey returns the signing key requirement of a transition type.
func RequiredKey(t transition.Type) (KeyRequirement, bool) {
	req, ok := keyRequirements[t]
	return req, ok
}

type identitySignatureFunc func(v *Validator, tx *storage.Transaction, ctx *Context, st transition.StateTransition) ([]consensuserr.ConsensusError, error)

type keyPossessionFunc func(ctx *Context, created []transition.KeyInCreation) []consensuserr.ConsensusError

var (
	identitySignatures = version.NewRegistry[identitySignatureFunc](version.IdentitySignature).
				Register(0, identitySignatureV0)
	keyPossession = version.NewRegistry[keyPossessionFunc](version.IdentityCreateSignatures).
			Register(0, keyPossessionV0)
)

// Signature authenticates the transition. Identity signed transitions are
// checked against the stored key, asset lock funded ones against the key
// hash of the asset lock.
func (v *Validator) Signature(tx *storage.Transaction, ctx *Context, res *Result) error {
	st := ctx.Transition()
	signable, err := transition.SignableBytes(ctx.Envelope.ProtocolVersion, st)
	if err != nil {
		return errors.Wrap(err, "signable bytes")
	}
	ctx.Log.Add(fees.HashBytes, uint64(len(signable)))
	if ctx.Digest, err = transition.SigningDigest(ctx.Envelope.ProtocolVersion, st); err != nil {
		return errors.Wrap(err, "signing digest")
	}

	switch t := st.(type) {
	case *transition.IdentityCreate:
		if e := assetLockSignature(ctx, &t.AssetLockProof, t.Sig); e != nil {
			res.add(e)
			return nil
		}
		check, err := keyPossession.Resolve(ctx.Version)
		if err != nil {
			return err
		}
		res.add(check(ctx, t.PublicKeys)...)
		return nil

	case *transition.IdentityTopUp:
		if e := assetLockSignature(ctx, &t.AssetLockProof, t.Sig); e != nil {
			res.add(e)
		}
		return nil
	}

	check, err := identitySignatures.Resolve(ctx.Version)
	if err != nil {
		return err
	}
	errs, err := check(v, tx, ctx, st)
	if err != nil {
		return err
	}
	res.add(errs...)
	if !res.IsValid() {
		return nil
	}
	if t, ok := st.(*transition.IdentityUpdate); ok {
		possession, err := keyPossession.Resolve(ctx.Version)
		if err != nil {
			return err
		}
		res.add(possession(ctx, t.AddPublicKeys)...)
	}
	return nil
}

func assetLockSignature(ctx *Context, proof *transition.AssetLockProof, sig []byte) consensuserr.ConsensusError {
	ctx.Log.AddSignature(keys.ECDSAHash160)
	if keys.VerifySignature(keys.ECDSAHash160, proof.PublicKeyHash[:], ctx.Digest, sig) != nil {
		return consensuserr.InvalidStateTransitionSignatureError{}
	}
	return nil
}

// keyPossessionV0 checks that every created key signed the transition.
func keyPossessionV0(ctx *Context, created []transition.KeyInCreation) []consensuserr.ConsensusError {
	var errs []consensuserr.ConsensusError
	for _, k := range created {
		ctx.Log.AddSignature(k.Type)
		if keys.VerifySignature(k.Type, k.Data, ctx.Digest, k.Sig) != nil {
			errs = append(errs, consensuserr.InvalidIdentityKeySignatureError{ID: k.ID})
		}
	}
	return errs
}

func identitySignatureV0(v *Validator, tx *storage.Transaction, ctx *Context, st transition.StateTransition) ([]consensuserr.ConsensusError, error) {
	req, ok := keyRequirements[st.Type()]
	if !ok {
		return nil, errors.Errorf("no key requirement for %s", st.Type())
	}
	keyID, _ := st.SignerKeyID()
	owner := st.Owner()

	ctx.Log.Add(fees.FetchIdentityBalance, 1)
	balance, exists, err := drive.FetchIdentityBalance(tx, owner, &ctx.Cost)
	if err != nil {
		return nil, err
	}
	if !exists {
		return []consensuserr.ConsensusError{consensuserr.SignerIdentityNotFoundError{Identity: owner}}, nil
	}

	ctx.Log.Add(fees.FetchIdentityKey, 1)
	key, found, err := drive.FetchIdentityKey(tx, owner, keyID, &ctx.Cost)
	if err != nil {
		return nil, err
	}
	switch {
	case !found:
		return []consensuserr.ConsensusError{consensuserr.MissingPublicKeyError{ID: keyID}}, nil
	case key.IsDisabled():
		return []consensuserr.ConsensusError{consensuserr.PublicKeyIsDisabledError{ID: keyID}}, nil
	case key.Type != keys.ECDSASecp256k1 && key.Type != keys.ECDSAHash160:
		return []consensuserr.ConsensusError{consensuserr.InvalidSignaturePublicKeyTypeError{ID: keyID, Type: key.Type}}, nil
	case !containsPurpose(req.Purposes, key.Purpose):
		return []consensuserr.ConsensusError{consensuserr.InvalidSignaturePublicKeyPurposeError{ID: keyID, Purpose: key.Purpose, Allowed: req.Purposes}}, nil
	case !containsLevel(req.Levels, key.SecurityLevel):
		return []consensuserr.ConsensusError{consensuserr.InvalidSignaturePublicKeySecurityLevelError{ID: keyID, Level: key.SecurityLevel, Allowed: req.Levels}}, nil
	}

	ctx.Log.AddSignature(key.Type)
	if key.VerifySignature(ctx.Digest, st.Signature()) != nil {
		return []consensuserr.ConsensusError{consensuserr.InvalidStateTransitionSignatureError{}}, nil
	}
	ctx.Authenticated = true
	ctx.SignerKey = key
	ctx.Balance = balance
	return nil, nil
}

func containsPurpose(pp []keys.Purpose, p keys.Purpose) bool {
	for _, x := range pp {
		if x == p {
			return true
		}
	}
	return false
}

func containsLevel(ll []keys.SecurityLevel, l keys.SecurityLevel) bool {
	for _, x := range ll {
		if x == l {
			return true
		}
	}
	return false
}
