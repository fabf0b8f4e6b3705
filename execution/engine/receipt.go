package engine

import (
	"github.com/Fantom-foundation/lachesis-base/common/bigendian"
	"github.com/Fantom-foundation/lachesis-base/hash"
	"github.com/blockberries/cramberry/pkg/cramberry"
	"github.com/pkg/errors"
)

// TransitionReceipt is the outcome of one transition as handed to
// consensus. Code is zero for applied transitions.
type TransitionReceipt struct {
	Index uint32 `cramberry:"1"`
	Hash  []byte `cramberry:"2"`
	Code  uint32 `cramberry:"3"`
	Info  string `cramberry:"4"`
	// Data is the structured payload of the consensus error.
	Data          []byte `cramberry:"5"`
	ProcessingFee uint64 `cramberry:"6"`
	StorageFee    uint64 `cramberry:"7"`
	Refunded      uint64 `cramberry:"8"`
}

// Receipt is the execution receipt of a block.
type Receipt struct {
	Height          uint64              `cramberry:"1"`
	Epoch           uint32              `cramberry:"2"`
	EpochChanged    bool                `cramberry:"3"`
	ProtocolVersion uint32              `cramberry:"4"`
	Transitions     []TransitionReceipt `cramberry:"5"`
	ProcessingFee   uint64              `cramberry:"6"`
	StorageFee      uint64              `cramberry:"7"`
	Refunds         uint64              `cramberry:"8"`
	// Paid is what the block paid out to proposers of an ended epoch.
	Paid       uint64 `cramberry:"9"`
	RecordHash []byte `cramberry:"10"`
	// EpochRecordHash is set on the first block of an epoch that follows
	// another.
	EpochRecordHash []byte `cramberry:"11"`
}

// Encode serializes the receipt.
func (r *Receipt) Encode() ([]byte, error) {
	raw, err := cramberry.Marshal(r)
	return raw, errors.Wrap(err, "encode receipt")
}

// DecodeReceipt parses an encoded receipt.
func DecodeReceipt(raw []byte) (*Receipt, error) {
	r := new(Receipt)
	if err := cramberry.Unmarshal(raw, r); err != nil {
		return nil, errors.Wrap(err, "decode receipt")
	}
	return r, nil
}

// Valid counts the applied transitions.
func (r *Receipt) Valid() int {
	n := 0
	for _, t := range r.Transitions {
		if t.Code == 0 {
			n++
		}
	}
	return n
}

// resultsHash covers what consensus must agree on for every transition.
func resultsHash(receipts []TransitionReceipt) hash.Hash {
	parts := make([][]byte, 0, 4*len(receipts))
	for _, r := range receipts {
		parts = append(parts,
			bigendian.Uint32ToBytes(r.Code),
			bigendian.Uint64ToBytes(r.ProcessingFee),
			bigendian.Uint64ToBytes(r.StorageFee),
			bigendian.Uint64ToBytes(r.Refunded),
		)
	}
	return hash.Of(parts...)
}
