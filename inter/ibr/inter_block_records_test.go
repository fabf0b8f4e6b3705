package ibr

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTransitionsHash(t *testing.T) {
	a, b := []byte{1}, []byte{2}
	require.Equal(t, TransitionsHash([][]byte{a, b}), TransitionsHash([][]byte{a, b}))
	require.NotEqual(t, TransitionsHash([][]byte{a, b}), TransitionsHash([][]byte{b, a}))
	// hashing each transition first keeps the boundaries
	require.NotEqual(t, TransitionsHash([][]byte{{1, 2}}), TransitionsHash([][]byte{a, b}))
}

func TestBlockRecordHash(t *testing.T) {
	r := BlockRecord{Height: 5, TimeMs: 1000, Epoch: 1, ProtocolVersion: 1, ProcessingFee: 10}
	require.Equal(t, r.Hash(), r.Hash())

	tests := map[string]func(r *BlockRecord){
		"height":     func(r *BlockRecord) { r.Height++ },
		"time":       func(r *BlockRecord) { r.TimeMs++ },
		"epoch":      func(r *BlockRecord) { r.Epoch++ },
		"protocol":   func(r *BlockRecord) { r.ProtocolVersion++ },
		"processing": func(r *BlockRecord) { r.ProcessingFee++ },
		"storage":    func(r *BlockRecord) { r.StorageFee++ },
		"refunds":    func(r *BlockRecord) { r.Refunds++ },
	}
	for name, change := range tests {
		t.Run(name, func(t *testing.T) {
			changed := r
			change(&changed)
			require.NotEqual(t, r.Hash(), changed.Hash())
		})
	}
}
