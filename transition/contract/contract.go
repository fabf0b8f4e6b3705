// Package contract models data contracts: the document types they define,
// the indices kept for each type and the tokens they issue.
package contract

import (
	"sort"

	"github.com/Fantom-foundation/lachesis-base/common/bigendian"
	"github.com/ethereum/go-ethereum/rlp"
	"github.com/pkg/errors"

	"github.com/rony4d/go-platform-drive/inter"
	"github.com/rony4d/go-platform-drive/inter/keys"
)

// PropertyType is the schema type of a document property.
type PropertyType uint8

const (
	String PropertyType = iota
	Integer
	Bytes
	IdentifierType
	Bool
)

// Config holds contract-wide switches.
type Config struct {
	// Readonly contracts cannot be updated.
	Readonly bool
	// KeepsHistory contracts keep every document revision.
	KeepsHistory bool
}

// PropertySchema describes one document property.
type PropertySchema struct {
	Name     string
	Type     PropertyType
	Required bool
	// MaxLength bounds strings and byte arrays, zero means the default of
	// DefaultMaxLength.
	MaxLength uint32
}

// DefaultMaxLength bounds strings and byte arrays without explicit limit.
const DefaultMaxLength = 1024

// Index is a secondary index over document properties.
type Index struct {
	Name       string
	Properties []string
	Unique     bool
	// Contested unique indices can be voted on by masternodes.
	Contested bool
}

// DocumentType is one document schema of a contract.
type DocumentType struct {
	Name         string
	Properties   []PropertySchema
	Indices      []Index
	Mutable      bool
	CanBeDeleted bool
	Transferable bool
	// Tradeable types support direct purchase at the owner's price.
	Tradeable    bool
	KeepsHistory bool
	// SecurityLevelRequirement is the weakest key level that may sign
	// transitions of this type.
	SecurityLevelRequirement keys.SecurityLevel
}

// TokenConfiguration describes a token issued by a contract. The token is
// addressed by its position in DataContract.Tokens.
type TokenConfiguration struct {
	BaseSupply uint64
	// MaxSupply is zero for unlimited tokens.
	MaxSupply   uint64
	StartPaused bool
}

// DataContract is the stored form of a contract.
type DataContract struct {
	ID            inter.Identifier
	OwnerID       inter.Identifier
	Version       uint32
	Config        Config
	DocumentTypes []DocumentType
	Tokens        []TokenConfiguration
}

// GenerateID derives the id of a contract created with the given identity
// nonce.
func GenerateID(owner inter.Identifier, identityNonce uint64) inter.Identifier {
	return inter.DeriveIdentifier(owner[:], bigendian.Uint64ToBytes(identityNonce))
}

// TokenID derives the id of the token at a position.
func TokenID(contractID inter.Identifier, position uint16) inter.Identifier {
	return inter.DeriveIdentifier([]byte("dash_token"), contractID[:], bigendian.Uint16ToBytes(position))
}

// DocumentType returns a document type by name.
func (c *DataContract) DocumentType(name string) (*DocumentType, bool) {
	for i := range c.DocumentTypes {
		if c.DocumentTypes[i].Name == name {
			return &c.DocumentTypes[i], true
		}
	}
	return nil, false
}

// Token returns the token configuration at a position.
func (c *DataContract) Token(position uint16) (*TokenConfiguration, bool) {
	if int(position) >= len(c.Tokens) {
		return nil, false
	}
	return &c.Tokens[position], true
}

// Normalize sorts document types by name so equal contracts serialize
// identically.
func (c *DataContract) Normalize() {
	sort.Slice(c.DocumentTypes, func(i, j int) bool { return c.DocumentTypes[i].Name < c.DocumentTypes[j].Name })
}

// Serialize encodes the stored form.
func (c *DataContract) Serialize() ([]byte, error) {
	return rlp.EncodeToBytes(c)
}

// Deserialize decodes the stored form.
func Deserialize(raw []byte) (*DataContract, error) {
	c := new(DataContract)
	if err := rlp.DecodeBytes(raw, c); err != nil {
		return nil, errors.Wrap(err, "decode data contract")
	}
	return c, nil
}

// Property returns the schema of a property.
func (dt *DocumentType) Property(name string) (*PropertySchema, bool) {
	for i := range dt.Properties {
		if dt.Properties[i].Name == name {
			return &dt.Properties[i], true
		}
	}
	return nil, false
}

// Index returns an index by name.
func (dt *DocumentType) Index(name string) (*Index, bool) {
	for i := range dt.Indices {
		if dt.Indices[i].Name == name {
			return &dt.Indices[i], true
		}
	}
	return nil, false
}

// UniqueIndices returns the unique indices of the type.
func (dt *DocumentType) UniqueIndices() []Index {
	var out []Index
	for _, idx := range dt.Indices {
		if idx.Unique {
			out = append(out, idx)
		}
	}
	return out
}

// DefaultSecurityLevelRequirement applies to document types that leave the
// requirement at MASTER. Batches are never signed by master keys.
const DefaultSecurityLevelRequirement = keys.High

// RequiredSecurityLevel is the weakest key level that may sign transitions
// of the type.
func (dt *DocumentType) RequiredSecurityLevel() keys.SecurityLevel {
	if dt.SecurityLevelRequirement == keys.Master {
		return DefaultSecurityLevelRequirement
	}
	return dt.SecurityLevelRequirement
}

// UndefinedIndexProperty returns the first index property missing from the
// schema.
func (dt *DocumentType) UndefinedIndexProperty() (index, property string, found bool) {
	for _, idx := range dt.Indices {
		for _, p := range idx.Properties {
			if _, ok := dt.Property(p); !ok {
				return idx.Name, p, true
			}
		}
	}
	return "", "", false
}
