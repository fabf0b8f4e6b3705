package storage

import (
	"github.com/Fantom-foundation/lachesis-base/hash"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	ethmemorydb "github.com/ethereum/go-ethereum/ethdb/memorydb"
	"github.com/ethereum/go-ethereum/trie"
	"github.com/pkg/errors"
)

// ErrInvalidProof is returned when a proof does not lead to the root.
var ErrInvalidProof = errors.New("invalid proof")

// Proof is a Merkle proof of one element, or of its absence, against a
// state root.
type Proof struct {
	Root  hash.Hash
	Nodes [][]byte
}

// Prove builds a proof of the committed element at path/key.
func (s *Store) Prove(path Path, key []byte) (*Proof, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	db := ethmemorydb.New()
	if err := s.trie.Prove(storeKey(path, key), 0, db); err != nil {
		return nil, errors.Wrap(err, "prove element")
	}
	p := &Proof{Root: s.root}
	it := db.NewIterator(nil, nil)
	defer it.Release()
	for it.Next() {
		p.Nodes = append(p.Nodes, common.CopyBytes(it.Value()))
	}
	return p, nil
}

// VerifyProof checks a proof against a trusted root and returns the proven
// element. The second value is false for a proof of absence.
func VerifyProof(root hash.Hash, path Path, key []byte, proof *Proof) (Element, bool, error) {
	db := ethmemorydb.New()
	for _, n := range proof.Nodes {
		if err := db.Put(crypto.Keccak256(n), n); err != nil {
			return Element{}, false, err
		}
	}
	raw, err := trie.VerifyProof(common.Hash(root), storeKey(path, key), db)
	if err != nil {
		return Element{}, false, errors.Wrap(ErrInvalidProof, err.Error())
	}
	if raw == nil {
		return Element{}, false, nil
	}
	e, err := decodeElement(raw)
	if err != nil {
		return Element{}, false, err
	}
	return e, true, nil
}
