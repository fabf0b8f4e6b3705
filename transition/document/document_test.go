package document

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/rony4d/go-platform-drive/inter"
)

func TestPropertiesStaySorted(t *testing.T) {
	require := require.New(t)

	d := &Document{}
	d.Set("label", []byte("Alice"))
	d.Set("normalizedLabel", []byte("alice"))
	d.Set("age", []byte{0, 0, 0, 0, 0, 0, 0, 30})
	d.Set("label", []byte("ALICE"))

	names := make([]string, len(d.Properties))
	for i, p := range d.Properties {
		names[i] = p.Name
	}
	require.Equal([]string{"age", "label", "normalizedLabel"}, names)

	v, ok := d.Get("label")
	require.True(ok)
	require.Equal([]byte("ALICE"), v)
	_, ok = d.Get("missing")
	require.False(ok)
}

func TestIndexKey(t *testing.T) {
	d := &Document{}
	d.Set("a", []byte("x"))
	d.Set("b", []byte("yz"))

	require.Equal(t, []byte{0, 1, 'x', 0, 2, 'y', 'z'}, d.IndexKey([]string{"a", "b"}))
	require.Equal(t, []byte{0, 0, 0, 1, 'x'}, d.IndexKey([]string{"c", "a"}))
	require.Equal(t, d.IndexKey([]string{"a", "b"}), IndexKeyFromValues([][]byte{[]byte("x"), []byte("yz")}))
}

func TestSerializeAndCopy(t *testing.T) {
	require := require.New(t)

	owner := inter.DeriveIdentifier([]byte("owner"))
	contract := inter.DeriveIdentifier([]byte("contract"))
	d := &Document{
		ID:          GenerateID(contract, owner, "domain", make([]byte, 32)),
		OwnerID:     owner,
		Revision:    1,
		CreatedAtMs: 1000,
		UpdatedAtMs: 1000,
		Price:       50,
	}
	d.Set("normalizedLabel", []byte("alice"))

	raw, err := d.Serialize()
	require.NoError(err)
	back, err := Deserialize(raw)
	require.NoError(err)
	require.Equal(d, back)

	cp := d.Copy()
	cp.Set("normalizedLabel", []byte("bob"))
	v, _ := d.Get("normalizedLabel")
	require.Equal([]byte("alice"), v)

	_, err = Deserialize([]byte{0xff})
	require.Error(err)
}
