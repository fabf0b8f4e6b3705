package inter

import (
	"sort"
)

// FeeRefunds maps the epoch that originally paid for removed storage to the
// credits being returned.
type FeeRefunds map[EpochIndex]Credits

// Add credits a refund to an epoch.
func (r FeeRefunds) Add(epoch EpochIndex, credits Credits) {
	if credits == 0 {
		return
	}
	r[epoch] = r[epoch].Add(credits)
}

// Total sums all refunds.
func (r FeeRefunds) Total() Credits {
	var total Credits
	for _, c := range r {
		total = total.Add(c)
	}
	return total
}

// Epochs returns the refunded epochs in ascending order.
func (r FeeRefunds) Epochs() []EpochIndex {
	epochs := make([]EpochIndex, 0, len(r))
	for e := range r {
		epochs = append(epochs, e)
	}
	sort.Slice(epochs, func(i, j int) bool { return epochs[i] < epochs[j] })
	return epochs
}

// FeeResult is the fee of one transition, or the sum of a block's
// transitions.
type FeeResult struct {
	StorageFee    Credits
	ProcessingFee Credits
	Refunds       FeeRefunds
}

// Total is the amount charged before refunds.
func (f FeeResult) Total() Credits {
	return f.StorageFee.Add(f.ProcessingFee)
}

// Payable is the balance change required from the payer: Total minus
// refunds. The second value is false when refunds exceed the charge, in
// which case the first value is the net amount to credit back.
func (f FeeResult) Payable() (Credits, bool) {
	total := f.Total()
	refunds := f.Refunds.Total()
	if refunds > total {
		return refunds - total, false
	}
	return total - refunds, true
}

// Merge folds another result into f.
func (f *FeeResult) Merge(o FeeResult) {
	f.StorageFee = f.StorageFee.Add(o.StorageFee)
	f.ProcessingFee = f.ProcessingFee.Add(o.ProcessingFee)
	if len(o.Refunds) == 0 {
		return
	}
	if f.Refunds == nil {
		f.Refunds = make(FeeRefunds, len(o.Refunds))
	}
	for e, c := range o.Refunds {
		f.Refunds.Add(e, c)
	}
}

// Copy returns a deep copy.
func (f FeeResult) Copy() FeeResult {
	cp := f
	if f.Refunds != nil {
		cp.Refunds = make(FeeRefunds, len(f.Refunds))
		for e, c := range f.Refunds {
			cp.Refunds[e] = c
		}
	}
	return cp
}
