package transition

import (
	"crypto/ecdsa"
	"fmt"

	"github.com/Fantom-foundation/lachesis-base/common/bigendian"
	"github.com/Fantom-foundation/lachesis-base/hash"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/pkg/errors"

	"github.com/rony4d/go-platform-drive/inter/keys"
	"github.com/rony4d/go-platform-drive/transition/consensuserr"
	"github.com/rony4d/go-platform-drive/utils/cser"
)

const (
	versionPrefixSize = 4
	// variantVersion is the only structure version of every variant.
	variantVersion = 0
)

// Envelope is a decoded transition with its framing.
type Envelope struct {
	ProtocolVersion uint32
	Transition      StateTransition
	// Size is the encoded size including the version prefix.
	Size int
	// Hash is keccak256 of the full encoding.
	Hash hash.Hash
}

func newTransition(t Type) (StateTransition, bool) {
	switch t {
	case DataContractCreateType:
		return new(DataContractCreate), true
	case BatchType:
		return new(Batch), true
	case IdentityCreateType:
		return new(IdentityCreate), true
	case IdentityTopUpType:
		return new(IdentityTopUp), true
	case DataContractUpdateType:
		return new(DataContractUpdate), true
	case IdentityUpdateType:
		return new(IdentityUpdate), true
	case IdentityCreditWithdrawalType:
		return new(IdentityCreditWithdrawal), true
	case IdentityCreditTransferType:
		return new(IdentityCreditTransfer), true
	case MasternodeVoteType:
		return new(MasternodeVote), true
	}
	return nil, false
}

func marshal(st StateTransition, withSignatures bool) ([]byte, error) {
	return cser.MarshalBinaryAdapter(func(w *cser.Writer) error {
		w.U8(uint8(st.Type()))
		w.U8(variantVersion)
		st.encode(w, withSignatures)
		return nil
	})
}

// Encode serializes a transition under a protocol version.
func Encode(protocolVersion uint32, st StateTransition) ([]byte, error) {
	payload, err := marshal(st, true)
	if err != nil {
		return nil, err
	}
	return append(bigendian.Uint32ToBytes(protocolVersion), payload...), nil
}

// Decode parses an encoded transition. Every failure is a
// consensuserr.SerializedObjectParsingError.
func Decode(raw []byte) (*Envelope, error) {
	if len(raw) < versionPrefixSize {
		return nil, parsingError("missing protocol version")
	}
	env := &Envelope{
		ProtocolVersion: bigendian.BytesToUint32(raw[:versionPrefixSize]),
		Size:            len(raw),
		Hash:            hash.Hash(crypto.Keccak256Hash(raw)),
	}
	err := cser.UnmarshalBinaryAdapter(raw[versionPrefixSize:], func(r *cser.Reader) error {
		t := Type(r.U8())
		st, ok := newTransition(t)
		if !ok {
			return fmt.Errorf("unknown transition type %d", uint8(t))
		}
		if v := r.U8(); v != variantVersion {
			return fmt.Errorf("unknown %s structure version %d", t, v)
		}
		st.decode(r)
		env.Transition = st
		return nil
	})
	if err != nil {
		return nil, parsingError(err.Error())
	}
	return env, nil
}

func parsingError(reason string) error {
	return consensuserr.SerializedObjectParsingError{Reason: reason}
}

// SignableBytes is the encoding with every signature omitted.
func SignableBytes(protocolVersion uint32, st StateTransition) ([]byte, error) {
	payload, err := marshal(st, false)
	if err != nil {
		return nil, err
	}
	return append(bigendian.Uint32ToBytes(protocolVersion), payload...), nil
}

// SigningDigest is the digest every signature of the transition covers.
func SigningDigest(protocolVersion uint32, st StateTransition) ([]byte, error) {
	b, err := SignableBytes(protocolVersion, st)
	if err != nil {
		return nil, err
	}
	return crypto.Keccak256(b), nil
}

// Sign sets the top level signature of st made by prv.
func Sign(protocolVersion uint32, st StateTransition, prv *ecdsa.PrivateKey) error {
	digest, err := SigningDigest(protocolVersion, st)
	if err != nil {
		return err
	}
	sig, err := keys.Sign(digest, prv)
	if err != nil {
		return errors.Wrap(err, "sign state transition")
	}
	st.setSignature(sig)
	return nil
}

// SignIdentityCreate signs an identity creation with the asset lock key and
// proves possession of every created key. keyPrivates is indexed by key id.
func SignIdentityCreate(protocolVersion uint32, st *IdentityCreate, assetLock *ecdsa.PrivateKey, keyPrivates map[keys.KeyID]*ecdsa.PrivateKey) error {
	return signWithKeys(protocolVersion, st, st.PublicKeys, assetLock, keyPrivates)
}

// SignIdentityUpdate signs an identity update with an existing key and
// proves possession of every added key.
func SignIdentityUpdate(protocolVersion uint32, st *IdentityUpdate, signer *ecdsa.PrivateKey, keyPrivates map[keys.KeyID]*ecdsa.PrivateKey) error {
	return signWithKeys(protocolVersion, st, st.AddPublicKeys, signer, keyPrivates)
}

func signWithKeys(protocolVersion uint32, st StateTransition, created []KeyInCreation, signer *ecdsa.PrivateKey, keyPrivates map[keys.KeyID]*ecdsa.PrivateKey) error {
	digest, err := SigningDigest(protocolVersion, st)
	if err != nil {
		return err
	}
	for i := range created {
		prv, ok := keyPrivates[created[i].ID]
		if !ok {
			return errors.Errorf("no private key for key %d", created[i].ID)
		}
		if created[i].Sig, err = keys.Sign(digest, prv); err != nil {
			return errors.Wrapf(err, "sign with key %d", created[i].ID)
		}
	}
	sig, err := keys.Sign(digest, signer)
	if err != nil {
		return errors.Wrap(err, "sign state transition")
	}
	st.setSignature(sig)
	return nil
}
