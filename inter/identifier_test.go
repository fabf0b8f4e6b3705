package inter

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestIdentifierText(t *testing.T) {
	require := require.New(t)

	id := DeriveIdentifier([]byte("owner"), []byte{1})
	require.False(id.IsZero())

	parsed, err := IdentifierFromString(id.String())
	require.NoError(err)
	require.Equal(id, parsed)

	raw, err := json.Marshal(struct{ ID Identifier }{id})
	require.NoError(err)
	var back struct{ ID Identifier }
	require.NoError(json.Unmarshal(raw, &back))
	require.Equal(id, back.ID)

	_, err = IdentifierFromString("0OIl")
	require.ErrorIs(err, ErrInvalidIdentifier)
	_, err = BytesToIdentifier([]byte{1, 2})
	require.ErrorIs(err, ErrInvalidIdentifier)
}

func TestDeriveIdentifierDeterministic(t *testing.T) {
	a := DeriveIdentifier([]byte("a"), []byte("b"))
	b := DeriveIdentifier([]byte("ab"))
	require.Equal(t, a, b)
	require.NotEqual(t, a, DeriveIdentifier([]byte("b"), []byte("a")))
	require.Equal(t, -1, ZeroIdentifier.Compare(a))
}
