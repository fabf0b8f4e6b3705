package fees

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/rony4d/go-platform-drive/drive/storage"
	"github.com/rony4d/go-platform-drive/inter"
	"github.com/rony4d/go-platform-drive/inter/keys"
	"github.com/rony4d/go-platform-drive/platform/version"
)

func rates(t *testing.T) RateLookup {
	return func(epoch inter.EpochIndex) (*version.FeeVersion, error) {
		if epoch < 10 {
			return version.FeeVersionByNumber(1)
		}
		return version.FeeVersionByNumber(2)
	}
}

func TestCalculate(t *testing.T) {
	require := require.New(t)
	pv, err := version.Get(1)
	require.NoError(err)
	fv, err := pv.Fees()
	require.NoError(err)

	log := new(Log)
	log.AddSignature(keys.ECDSASecp256k1)
	log.Add(FetchIdentityBalance, 1)

	res, err := Calculate(pv, Input{
		Fees: fv,
		Cost: storage.OperationCost{
			SeekCount:    2,
			LoadedBytes:  10,
			AddedBytes:   100,
			RemovedBytes: map[inter.EpochIndex]uint64{3: 40, 12: 10},
		},
		Log:                log,
		MultiplierPermille: PermilleBase,
		Rates:              rates(t),
	})
	require.NoError(err)
	require.Equal(inter.Credits(100*27000), res.StorageFee)

	expectedProcessing := 2*2000 + 10*20 + 100*400 + 50*400 + 3000 + 1000
	require.Equal(inter.Credits(expectedProcessing), res.ProcessingFee)

	require.Equal(inter.Credits(40*27000), res.Refunds[3])
	require.Equal(inter.Credits(10*54000), res.Refunds[12])
}

func TestStorageRoundTripNetsToZero(t *testing.T) {
	require := require.New(t)
	pv, _ := version.Get(1)
	fv, _ := pv.Fees()

	paid, err := Calculate(pv, Input{Fees: fv, Cost: storage.OperationCost{AddedBytes: 321}, MultiplierPermille: PermilleBase, Rates: rates(t)})
	require.NoError(err)

	// removed later under another fee version, refunded at the birth rate
	pv2, _ := version.Get(2)
	fv2, _ := pv2.Fees()
	refunded, err := Calculate(pv2, Input{
		Fees:               fv2,
		Cost:               storage.OperationCost{RemovedBytes: map[inter.EpochIndex]uint64{1: 321}},
		MultiplierPermille: PermilleBase,
		Rates:              rates(t),
	})
	require.NoError(err)
	require.Equal(paid.StorageFee, refunded.Refunds[1])
}

func TestApplyMultiplier(t *testing.T) {
	for name, tc := range map[string]struct {
		in       inter.Credits
		permille uint64
		out      inter.Credits
	}{
		"neutral":   {1000, 1000, 1000},
		"double":    {1000, 2000, 2000},
		"half down": {1001, 500, 500},
		"saturate":  {inter.MaxCredits, 2000, inter.MaxCredits},
		"zero":      {1000, 0, 0},
	} {
		t.Run(name, func(t *testing.T) {
			require.Equal(t, tc.out, ApplyMultiplier(tc.in, tc.permille))
		})
	}
}

func TestValidationFeeSaturates(t *testing.T) {
	fv, _ := version.FeeVersionByNumber(1)
	log := new(Log)
	log.Add(FetchDocument, ^uint64(0))
	log.Add(FetchContract, 1)
	require.Equal(t, inter.MaxCredits, ValidationFee(fv, log))
}
