package drive

import (
	"github.com/ethereum/go-ethereum/rlp"
	"github.com/pkg/errors"

	"github.com/rony4d/go-platform-drive/drive/paths"
	"github.com/rony4d/go-platform-drive/drive/storage"
	"github.com/rony4d/go-platform-drive/inter"
	"github.com/rony4d/go-platform-drive/inter/keys"
)

// Identity is an identity with its keys, as read from the store.
type Identity struct {
	ID             inter.Identifier
	Balance        inter.Credits
	NegativeCredit inter.Credits
	Revision       uint64
	Nonce          uint64
	PublicKeys     []keys.PublicKey
}

// Key returns a public key by id.
func (i *Identity) Key(id keys.KeyID) (keys.PublicKey, bool) {
	for _, k := range i.PublicKeys {
		if k.ID == id {
			return k, true
		}
	}
	return keys.PublicKey{}, false
}

// MaxKeyID is the largest key id in use.
func (i *Identity) MaxKeyID() (keys.KeyID, bool) {
	var max keys.KeyID
	for _, k := range i.PublicKeys {
		if k.ID > max {
			max = k.ID
		}
	}
	return max, len(i.PublicKeys) > 0
}

// IdentityExists reports whether the identity subtree exists.
func IdentityExists(tx *storage.Transaction, id inter.Identifier, cost *storage.OperationCost) (bool, error) {
	_, ok, err := tx.Get(paths.Identities.Path(), id.Bytes(), cost)
	return ok, err
}

// FetchIdentityBalance reads a balance. ok is false for unknown identities.
func FetchIdentityBalance(tx *storage.Transaction, id inter.Identifier, cost *storage.OperationCost) (inter.Credits, bool, error) {
	e, ok, err := tx.Get(paths.Balances.Path(), id.Bytes(), cost)
	if err != nil || !ok {
		return 0, false, err
	}
	return inter.Credits(e.Sum), true, nil
}

// FetchIdentityNegativeCredit reads the debt the identity still owes.
func FetchIdentityNegativeCredit(tx *storage.Transaction, id inter.Identifier, cost *storage.OperationCost) (inter.Credits, error) {
	v, _, err := getUint64(tx, paths.IdentityPath(id), paths.IdentityNegativeCreditKey, cost)
	return inter.Credits(v), err
}

// FetchIdentityRevision reads the identity revision.
func FetchIdentityRevision(tx *storage.Transaction, id inter.Identifier, cost *storage.OperationCost) (uint64, bool, error) {
	return getUint64(tx, paths.IdentityPath(id), paths.IdentityRevisionKey, cost)
}

// FetchIdentityNonce reads the identity nonce.
func FetchIdentityNonce(tx *storage.Transaction, id inter.Identifier, cost *storage.OperationCost) (uint64, bool, error) {
	return getUint64(tx, paths.IdentityPath(id), paths.IdentityNonceKey, cost)
}

// FetchIdentityContractNonce reads the nonce of an identity towards a
// contract. It is zero before the first transition.
func FetchIdentityContractNonce(tx *storage.Transaction, id, contractID inter.Identifier, cost *storage.OperationCost) (uint64, bool, error) {
	return getUint64(tx, paths.IdentityContractInfoPath(id), contractID.Bytes(), cost)
}

// FetchIdentityKey reads one public key.
func FetchIdentityKey(tx *storage.Transaction, id inter.Identifier, keyID keys.KeyID, cost *storage.OperationCost) (keys.PublicKey, bool, error) {
	e, ok, err := tx.Get(paths.IdentityKeysPath(id), paths.KeyIDKey(keyID), cost)
	if err != nil || !ok {
		return keys.PublicKey{}, false, err
	}
	k, err := DecodePublicKey(e.Value)
	return k, err == nil, err
}

// FetchIdentityKeys reads every public key in key id order.
func FetchIdentityKeys(tx *storage.Transaction, id inter.Identifier, cost *storage.OperationCost) ([]keys.PublicKey, error) {
	children, err := tx.Children(paths.IdentityKeysPath(id), cost)
	if err != nil {
		return nil, err
	}
	out := make([]keys.PublicKey, 0, len(children))
	for _, c := range children {
		k, err := DecodePublicKey(c.Element.Value)
		if err != nil {
			return nil, err
		}
		out = append(out, k)
	}
	return out, nil
}

// FetchIdentity reads a full identity.
func FetchIdentity(tx *storage.Transaction, id inter.Identifier, cost *storage.OperationCost) (*Identity, bool, error) {
	balance, ok, err := FetchIdentityBalance(tx, id, cost)
	if err != nil || !ok {
		return nil, false, err
	}
	identity := &Identity{ID: id, Balance: balance}
	if identity.NegativeCredit, err = FetchIdentityNegativeCredit(tx, id, cost); err != nil {
		return nil, false, err
	}
	if identity.Revision, _, err = FetchIdentityRevision(tx, id, cost); err != nil {
		return nil, false, err
	}
	if identity.Nonce, _, err = FetchIdentityNonce(tx, id, cost); err != nil {
		return nil, false, err
	}
	if identity.PublicKeys, err = FetchIdentityKeys(tx, id, cost); err != nil {
		return nil, false, err
	}
	return identity, true, nil
}

// FetchIdentityByKeyHash looks up the identity owning a unique key hash.
func FetchIdentityByKeyHash(tx *storage.Transaction, keyHash [keys.Hash160Length]byte, cost *storage.OperationCost) (inter.Identifier, bool, error) {
	e, ok, err := tx.Get(paths.UniquePublicKeyHashes.Path(), keyHash[:], cost)
	if err != nil || !ok {
		return inter.Identifier{}, false, err
	}
	id, err := inter.BytesToIdentifier(e.Value)
	if err != nil {
		return inter.Identifier{}, false, errors.Wrap(ErrCorruptedState, err.Error())
	}
	return id, true, nil
}

// IsAssetLockSpent reports whether an asset lock outpoint was used.
func IsAssetLockSpent(tx *storage.Transaction, outpoint []byte, cost *storage.OperationCost) (bool, error) {
	_, ok, err := tx.Get(paths.SpentAssetLocks.Path(), outpoint, cost)
	return ok, err
}

// EncodePublicKey is the stored form of a key.
func EncodePublicKey(k keys.PublicKey) []byte {
	raw, err := rlp.EncodeToBytes(k)
	if err != nil {
		panic(err)
	}
	return raw
}

// DecodePublicKey decodes the stored form of a key.
func DecodePublicKey(raw []byte) (keys.PublicKey, error) {
	var k keys.PublicKey
	if err := rlp.DecodeBytes(raw, &k); err != nil {
		return k, errors.Wrap(ErrCorruptedState, err.Error())
	}
	return k, nil
}
