package transition

import (
	"github.com/rony4d/go-platform-drive/inter"
	"github.com/rony4d/go-platform-drive/transition/contract"
	"github.com/rony4d/go-platform-drive/utils/cser"
)

const maxContractSize = 64 * 1024

// DataContractCreate registers a new contract. The contract id must equal
// contract.GenerateID(owner, IdentityNonce).
type DataContractCreate struct {
	Contract      *contract.DataContract
	IdentityNonce uint64
	Signed
}

func (t *DataContractCreate) Type() Type              { return DataContractCreateType }
func (t *DataContractCreate) Owner() inter.Identifier { return t.Contract.OwnerID }

func (t *DataContractCreate) encode(w *cser.Writer, withSignatures bool) {
	encodeContract(w, t.Contract)
	w.U64(t.IdentityNonce)
	t.encodeSigned(w, withSignatures)
}

func (t *DataContractCreate) decode(r *cser.Reader) {
	t.Contract = decodeContract(r)
	t.IdentityNonce = r.U64()
	t.decodeSigned(r)
}

// DataContractUpdate replaces a contract with a compatible next version.
type DataContractUpdate struct {
	Contract              *contract.DataContract
	IdentityContractNonce uint64
	Signed
}

func (t *DataContractUpdate) Type() Type              { return DataContractUpdateType }
func (t *DataContractUpdate) Owner() inter.Identifier { return t.Contract.OwnerID }

func (t *DataContractUpdate) encode(w *cser.Writer, withSignatures bool) {
	encodeContract(w, t.Contract)
	w.U64(t.IdentityContractNonce)
	t.encodeSigned(w, withSignatures)
}

func (t *DataContractUpdate) decode(r *cser.Reader) {
	t.Contract = decodeContract(r)
	t.IdentityContractNonce = r.U64()
	t.decodeSigned(r)
}

func encodeContract(w *cser.Writer, c *contract.DataContract) {
	raw, err := c.Serialize()
	if err != nil {
		panic(err)
	}
	w.SliceBytes(raw)
}

func decodeContract(r *cser.Reader) *contract.DataContract {
	c, err := contract.Deserialize(r.SliceBytes(maxContractSize))
	if err != nil {
		panic(err)
	}
	return c
}
