// Package document holds the stored form of documents and the encoding of
// their property values into index keys.
package document

import (
	"sort"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/rlp"
	"github.com/pkg/errors"

	"github.com/rony4d/go-platform-drive/inter"
)

// Property is one named value. Values are raw bytes, their interpretation is
// fixed by the document type schema.
type Property struct {
	Name  string
	Value []byte
}

// Document is a record of a document type, stored under
// (contract id, document type, document id).
type Document struct {
	ID          inter.Identifier
	OwnerID     inter.Identifier
	Revision    uint64
	CreatedAtMs uint64
	UpdatedAtMs uint64
	// Price is the direct purchase price, zero when not for sale.
	Price      inter.Credits
	Properties []Property
}

// GenerateID derives a document id the way clients do.
func GenerateID(contractID, ownerID inter.Identifier, documentType string, entropy []byte) inter.Identifier {
	return inter.DeriveIdentifier(contractID[:], ownerID[:], []byte(documentType), entropy)
}

// Get returns a property value.
func (d *Document) Get(name string) ([]byte, bool) {
	i := sort.Search(len(d.Properties), func(i int) bool { return d.Properties[i].Name >= name })
	if i < len(d.Properties) && d.Properties[i].Name == name {
		return d.Properties[i].Value, true
	}
	return nil, false
}

// Set inserts or overwrites a property, keeping properties sorted by name.
func (d *Document) Set(name string, value []byte) {
	i := sort.Search(len(d.Properties), func(i int) bool { return d.Properties[i].Name >= name })
	if i < len(d.Properties) && d.Properties[i].Name == name {
		d.Properties[i].Value = common.CopyBytes(value)
		return
	}
	d.Properties = append(d.Properties, Property{})
	copy(d.Properties[i+1:], d.Properties[i:])
	d.Properties[i] = Property{Name: name, Value: common.CopyBytes(value)}
}

// SetProperties replaces all properties.
func (d *Document) SetProperties(props []Property) {
	d.Properties = nil
	for _, p := range props {
		d.Set(p.Name, p.Value)
	}
}

// Copy returns a deep copy.
func (d *Document) Copy() *Document {
	cp := *d
	cp.Properties = make([]Property, len(d.Properties))
	for i, p := range d.Properties {
		cp.Properties[i] = Property{Name: p.Name, Value: common.CopyBytes(p.Value)}
	}
	return &cp
}

// IndexKey concatenates the length-prefixed values of the given properties.
// Missing properties encode as empty values.
func (d *Document) IndexKey(properties []string) []byte {
	var key []byte
	for _, name := range properties {
		v, _ := d.Get(name)
		key = appendLengthPrefixed(key, v)
	}
	return key
}

// IndexedKey is IndexKey for documents holding at least one of the
// properties. Documents holding none of them are not indexed.
func (d *Document) IndexedKey(properties []string) ([]byte, bool) {
	for _, name := range properties {
		if _, ok := d.Get(name); ok {
			return d.IndexKey(properties), true
		}
	}
	return nil, false
}

// IndexKeyFromValues builds the same key as IndexKey from raw values.
func IndexKeyFromValues(values [][]byte) []byte {
	var key []byte
	for _, v := range values {
		key = appendLengthPrefixed(key, v)
	}
	return key
}

func appendLengthPrefixed(dst, v []byte) []byte {
	dst = append(dst, byte(len(v)>>8), byte(len(v)))
	return append(dst, v...)
}

// Serialize encodes the stored form.
func (d *Document) Serialize() ([]byte, error) {
	return rlp.EncodeToBytes(d)
}

// Deserialize decodes the stored form.
func Deserialize(raw []byte) (*Document, error) {
	d := new(Document)
	if err := rlp.DecodeBytes(raw, d); err != nil {
		return nil, errors.Wrap(err, "decode document")
	}
	return d, nil
}
