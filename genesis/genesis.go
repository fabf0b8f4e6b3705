package genesis

import (
	"github.com/pkg/errors"

	"github.com/rony4d/go-platform-drive/drive"
	"github.com/rony4d/go-platform-drive/drive/batch"
	"github.com/rony4d/go-platform-drive/drive/paths"
	"github.com/rony4d/go-platform-drive/drive/storage"
	"github.com/rony4d/go-platform-drive/inter"
	"github.com/rony4d/go-platform-drive/platform"
	"github.com/rony4d/go-platform-drive/transition/contract"
)

// Genesis is the state a network starts from.
type Genesis struct {
	ProtocolVersion uint32
	Accounts        []*Account
	Contracts       []*contract.DataContract
}

// Fake builds the genesis of a fake network: n funded accounts, the domain
// contract owned by the first one and, when tokens are active, a token
// contract owned by it too.
func Fake(rules platform.Rules, n int, balance inter.Credits) *Genesis {
	g := &Genesis{ProtocolVersion: rules.Protocol.GenesisVersion}
	for i := 0; i < n; i++ {
		g.Accounts = append(g.Accounts, FakeAccount(i, balance))
	}
	if n > 0 {
		owner := g.Accounts[0].ID
		g.Contracts = append(g.Contracts, DomainContract(owner))
		if g.ProtocolVersion >= 2 {
			g.Contracts = append(g.Contracts, TokenContract(owner))
		}
	}
	return g
}

// TotalCredits is the sum of the genesis balances.
func (g *Genesis) TotalCredits() inter.Credits {
	var total inter.Credits
	for _, a := range g.Accounts {
		total = total.Add(a.Balance)
	}
	return total
}

// Apply writes the genesis state into an empty block transaction.
func (g *Genesis) Apply(tx *storage.Transaction) error {
	if err := drive.CreateInitialStructure(tx); err != nil {
		return err
	}
	var ops []storage.Op
	for _, a := range g.Accounts {
		identityOps, err := batch.NewIdentityOps(a.ID, a.Keys, a.Balance)
		if err != nil {
			return errors.Wrapf(err, "genesis identity %s", a.ID)
		}
		ops = append(ops, identityOps...)
	}
	for _, c := range g.Contracts {
		contractOps, err := batch.NewContractOps(c)
		if err != nil {
			return errors.Wrapf(err, "genesis contract %s", c.ID)
		}
		ops = append(ops, contractOps...)
	}
	ops = append(ops,
		storage.PutItemOp(paths.Misc.Path(), paths.ProtocolVersionKey, drive.EncodeUint64(uint64(g.ProtocolVersion))).System(),
		storage.PutItemOp(paths.Misc.Path(), paths.TotalCreditsKey, drive.EncodeUint64(uint64(g.TotalCredits()))).System(),
	)
	// nobody paid for the genesis state, so none of it is refundable
	for i := range ops {
		ops[i] = ops[i].System()
	}
	_, err := tx.Apply(ops, 0)
	return errors.Wrap(err, "apply genesis")
}

// DomainContractID is the id of the genesis domain contract.
var DomainContractID = inter.DeriveIdentifier([]byte("dpns_contract"))

// TokenContractID is the id of the genesis token contract.
var TokenContractID = inter.DeriveIdentifier([]byte("token_contract"))

// DomainContract is a name service contract: domains are unique by
// normalized label and the label index is contested.
func DomainContract(owner inter.Identifier) *contract.DataContract {
	return &contract.DataContract{
		ID:      DomainContractID,
		OwnerID: owner,
		Version: 1,
		DocumentTypes: []contract.DocumentType{
			{
				Name: "domain",
				Properties: []contract.PropertySchema{
					{Name: "label", Type: contract.String, Required: true, MaxLength: 63},
					{Name: "normalizedLabel", Type: contract.String, Required: true, MaxLength: 63},
					{Name: "records.identity", Type: contract.IdentifierType},
				},
				Indices: []contract.Index{
					{Name: "normalizedLabel", Properties: []string{"normalizedLabel"}, Unique: true, Contested: true},
					{Name: "identity", Properties: []string{"records.identity"}},
				},
				Mutable:      true,
				CanBeDeleted: true,
				Transferable: true,
				Tradeable:    true,
			},
			{
				Name: "preorder",
				Properties: []contract.PropertySchema{
					{Name: "saltedDomainHash", Type: contract.Bytes, Required: true, MaxLength: 32},
				},
				Indices: []contract.Index{
					{Name: "saltedHash", Properties: []string{"saltedDomainHash"}, Unique: true},
				},
				CanBeDeleted: true,
			},
		},
	}
}

// TokenContract issues one capped token.
func TokenContract(owner inter.Identifier) *contract.DataContract {
	return &contract.DataContract{
		ID:      TokenContractID,
		OwnerID: owner,
		Version: 1,
		DocumentTypes: []contract.DocumentType{
			{
				Name: "note",
				Properties: []contract.PropertySchema{
					{Name: "message", Type: contract.String, Required: true},
				},
				Mutable:      true,
				CanBeDeleted: true,
			},
		},
		Tokens: []contract.TokenConfiguration{
			{BaseSupply: 1000, MaxSupply: 10000},
		},
	}
}
