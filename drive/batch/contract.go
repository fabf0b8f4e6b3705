package batch

import (
	"github.com/pkg/errors"

	"github.com/rony4d/go-platform-drive/drive"
	"github.com/rony4d/go-platform-drive/drive/paths"
	"github.com/rony4d/go-platform-drive/drive/storage"
	"github.com/rony4d/go-platform-drive/execution/action"
	"github.com/rony4d/go-platform-drive/inter"
	"github.com/rony4d/go-platform-drive/transition/contract"
)

func buildContractV0(b *builder, a action.Action) error {
	switch a := a.(type) {
	case *action.ContractCreate:
		return b.createContract(a)
	case *action.ContractUpdate:
		return b.updateContract(a)
	}
	return errors.Errorf("unexpected contract action %T", a)
}

func (b *builder) createContract(a *action.ContractCreate) error {
	ops, err := NewContractOps(a.Contract)
	if err != nil {
		return err
	}
	ops = append(ops, b.identityNonceOp(a.Contract.OwnerID, a.IdentityNonce))
	return b.apply(ops...)
}

// NewContractOps stores a contract with the trees of its document types and
// the state of its tokens.
func NewContractOps(c *contract.DataContract) ([]storage.Op, error) {
	raw, err := c.Serialize()
	if err != nil {
		return nil, err
	}
	ops := []storage.Op{
		storage.InsertTreeOp(paths.DataContractDocuments.Path(), c.ID.Bytes()),
		storage.InsertItemOp(paths.ContractPath(c.ID), paths.ContractKey, raw),
		storage.InsertTreeOp(paths.ContractPath(c.ID), paths.DocumentTypesKey),
	}
	for i := range c.DocumentTypes {
		ops = append(ops, documentTypeOps(c.ID, &c.DocumentTypes[i])...)
	}
	for pos := range c.Tokens {
		ops = append(ops, NewTokenOps(c.ID, uint16(pos), c.OwnerID, c.Tokens[pos])...)
	}
	return ops, nil
}

func (b *builder) updateContract(a *action.ContractUpdate) error {
	c := a.Contract
	raw, err := c.Serialize()
	if err != nil {
		return err
	}
	ops := []storage.Op{storage.ReplaceItemOp(paths.ContractPath(c.ID), paths.ContractKey, raw)}
	for i := range c.DocumentTypes {
		if _, ok := a.Previous.DocumentType(c.DocumentTypes[i].Name); !ok {
			ops = append(ops, documentTypeOps(c.ID, &c.DocumentTypes[i])...)
		}
	}
	for pos := len(a.Previous.Tokens); pos < len(c.Tokens); pos++ {
		ops = append(ops, NewTokenOps(c.ID, uint16(pos), c.OwnerID, c.Tokens[pos])...)
	}
	ops = append(ops, b.identityContractNonceOp(c.OwnerID, c.ID, a.IdentityContractNonce))
	return b.apply(ops...)
}

func documentTypeOps(contractID inter.Identifier, dt *contract.DocumentType) []storage.Op {
	typePath := paths.DocumentTypePath(contractID, dt.Name)
	ops := []storage.Op{
		storage.InsertTreeOp(paths.DocumentTypesPath(contractID), []byte(dt.Name)),
		storage.InsertTreeOp(typePath, paths.PrimaryKey),
	}
	for _, idx := range dt.Indices {
		ops = append(ops, storage.InsertTreeOp(typePath, []byte(idx.Name)))
	}
	return ops
}

// NewTokenOps creates the state of a token with its base supply held by
// the contract owner.
func NewTokenOps(contractID inter.Identifier, position uint16, owner inter.Identifier, cfg contract.TokenConfiguration) []storage.Op {
	tokenID := contract.TokenID(contractID, position)
	path := paths.TokenPath(tokenID)
	paused := uint64(0)
	if cfg.StartPaused {
		paused = 1
	}
	ops := []storage.Op{
		storage.InsertTreeOp(paths.Tokens.Path(), tokenID.Bytes()),
		storage.InsertItemOp(path, paths.TokenSupplyKey, drive.EncodeUint64(cfg.BaseSupply)),
		storage.InsertItemOp(path, paths.TokenMaxKey, drive.EncodeUint64(cfg.MaxSupply)),
		storage.InsertItemOp(path, paths.TokenPausedKey, drive.EncodeUint64(paused)),
		storage.InsertTreeOp(path, paths.TokenBalancesKey),
		storage.InsertTreeOp(path, paths.TokenFrozenKey),
	}
	if cfg.BaseSupply > 0 {
		ops = append(ops, storage.InsertItemOp(paths.TokenBalancesPath(tokenID), owner.Bytes(), drive.EncodeUint64(cfg.BaseSupply)))
	}
	return ops
}
