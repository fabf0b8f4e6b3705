package contract

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/rony4d/go-platform-drive/inter"
	"github.com/rony4d/go-platform-drive/inter/keys"
	"github.com/rony4d/go-platform-drive/transition/document"
)

func domainContract() *DataContract {
	owner := inter.DeriveIdentifier([]byte("owner"))
	return &DataContract{
		ID:      GenerateID(owner, 1),
		OwnerID: owner,
		Version: 1,
		DocumentTypes: []DocumentType{
			{
				Name: "preorder",
				Properties: []PropertySchema{
					{Name: "saltedDomainHash", Type: Bytes, Required: true, MaxLength: 32},
				},
			},
			{
				Name: "domain",
				Properties: []PropertySchema{
					{Name: "label", Type: String, Required: true, MaxLength: 63},
					{Name: "normalizedLabel", Type: String, Required: true, MaxLength: 63},
					{Name: "records", Type: IdentifierType},
				},
				Indices: []Index{
					{Name: "normalizedLabel", Properties: []string{"normalizedLabel"}, Unique: true, Contested: true},
				},
				Mutable:                  true,
				CanBeDeleted:             true,
				SecurityLevelRequirement: keys.High,
			},
		},
		Tokens: []TokenConfiguration{{BaseSupply: 1000, MaxSupply: 5000}},
	}
}

func TestLookups(t *testing.T) {
	require := require.New(t)
	c := domainContract()

	dt, ok := c.DocumentType("domain")
	require.True(ok)
	require.Len(dt.UniqueIndices(), 1)
	_, ok = dt.Index("normalizedLabel")
	require.True(ok)
	_, ok = c.DocumentType("missing")
	require.False(ok)

	_, ok = c.Token(0)
	require.True(ok)
	_, ok = c.Token(1)
	require.False(ok)
	require.NotEqual(TokenID(c.ID, 0), TokenID(c.ID, 1))

	_, _, undefined := dt.UndefinedIndexProperty()
	require.False(undefined)
	dt.Indices = append(dt.Indices, Index{Name: "bad", Properties: []string{"nope"}})
	index, prop, undefined := dt.UndefinedIndexProperty()
	require.True(undefined)
	require.Equal("bad", index)
	require.Equal("nope", prop)
}

func TestSerializeNormalized(t *testing.T) {
	require := require.New(t)

	c := domainContract()
	c.Normalize()
	require.Equal("domain", c.DocumentTypes[0].Name)

	raw, err := c.Serialize()
	require.NoError(err)
	back, err := Deserialize(raw)
	require.NoError(err)
	require.Equal(c.ID, back.ID)
	require.Equal(c.DocumentTypes[0].Indices, back.DocumentTypes[0].Indices)
	require.Equal(c.Tokens, back.Tokens)
}

func TestValidateProperties(t *testing.T) {
	dt, _ := domainContract().DocumentType("domain")

	for _, tc := range []struct {
		name  string
		props []document.Property
		bad   string
		ok    bool
	}{
		{"valid", []document.Property{{"label", []byte("Alice")}, {"normalizedLabel", []byte("alice")}}, "", true},
		{"missing required", []document.Property{{"label", []byte("Alice")}}, "normalizedLabel", false},
		{"unknown", []document.Property{{"label", []byte("a")}, {"normalizedLabel", []byte("a")}, {"x", nil}}, "x", false},
		{"too long", []document.Property{{"label", make([]byte, 64)}, {"normalizedLabel", []byte("a")}}, "label", false},
		{"bad identifier", []document.Property{{"label", []byte("a")}, {"normalizedLabel", []byte("a")}, {"records", []byte{1}}}, "records", false},
	} {
		t.Run(tc.name, func(t *testing.T) {
			bad, ok := dt.ValidateProperties(tc.props)
			require.Equal(t, tc.ok, ok)
			require.Equal(t, tc.bad, bad)
		})
	}
}

func TestCompatibleUpdate(t *testing.T) {
	require := require.New(t)

	prev := domainContract()

	next := domainContract()
	next.Version = 2
	next.DocumentTypes = append(next.DocumentTypes, DocumentType{Name: "note"})
	_, _, ok := CompatibleUpdate(prev, next)
	require.True(ok)

	removed := domainContract()
	removed.DocumentTypes = removed.DocumentTypes[1:]
	docType, field, ok := CompatibleUpdate(prev, removed)
	require.False(ok)
	require.Equal("preorder", docType)
	require.Equal("document type", field)

	reindexed := domainContract()
	reindexed.DocumentTypes[1].Indices[0].Unique = false
	_, field, ok = CompatibleUpdate(prev, reindexed)
	require.False(ok)
	require.Equal("indices", field)

	retyped := domainContract()
	retyped.DocumentTypes[1].Properties[0].Type = Bytes
	_, field, ok = CompatibleUpdate(prev, retyped)
	require.False(ok)
	require.Equal("property label", field)
}
