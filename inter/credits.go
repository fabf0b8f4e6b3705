package inter

import (
	"math"
	"math/bits"
)

// Credits is the platform's fee-accounting unit.
//
// All arithmetic on Credits saturates: an overflowing addition or
// multiplication yields MaxCredits and a subtraction below zero yields zero.
// Nothing in the execution path may wrap around.
type Credits uint64

// MaxCredits is the saturation ceiling.
const MaxCredits = Credits(math.MaxUint64)

// Add returns c+o, saturating at MaxCredits.
func (c Credits) Add(o Credits) Credits {
	sum, carry := bits.Add64(uint64(c), uint64(o), 0)
	if carry != 0 {
		return MaxCredits
	}
	return Credits(sum)
}

// Sub returns c-o, saturating at zero.
func (c Credits) Sub(o Credits) Credits {
	if o >= c {
		return 0
	}
	return c - o
}

// CheckedSub returns c-o and false if the subtraction would underflow.
func (c Credits) CheckedSub(o Credits) (Credits, bool) {
	if o > c {
		return 0, false
	}
	return c - o, true
}

// Mul returns c*n, saturating at MaxCredits.
func (c Credits) Mul(n uint64) Credits {
	hi, lo := bits.Mul64(uint64(c), n)
	if hi != 0 {
		return MaxCredits
	}
	return Credits(lo)
}

// Min returns the smaller of c and o.
func (c Credits) Min(o Credits) Credits {
	if c < o {
		return c
	}
	return o
}

// SumCredits adds all values with saturation.
func SumCredits(values ...Credits) Credits {
	var total Credits
	for _, v := range values {
		total = total.Add(v)
	}
	return total
}
