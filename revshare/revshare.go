// Package revshare holds the owner revenue-distribution arithmetic. The
// percent is expressed in basis points: 10000 is the whole amount.
package revshare

import (
	"fmt"
	"math/bits"
)

// MaxPercent is the largest accepted owner revenue percent (100%).
const MaxPercent uint16 = 10000

// ValidatePercent rejects percents above MaxPercent.
func ValidatePercent(p uint64) error {
	if p > uint64(MaxPercent) {
		return fmt.Errorf("%w: %d", ErrPercentExceeded, p)
	}
	return nil
}

// Split divides amount into the owner portion (amount * percent / 10000,
// rounded down) and the remainder. The remainder absorbs rounding so the
// two parts always sum to amount.
func Split(amount uint64, percent uint16) (owner, rest uint64, err error) {
	if err := ValidatePercent(uint64(percent)); err != nil {
		return 0, 0, err
	}
	// hi < MaxPercent since percent <= MaxPercent, so Div64 cannot panic.
	hi, lo := bits.Mul64(amount, uint64(percent))
	owner, _ = bits.Div64(hi, lo, uint64(MaxPercent))
	return owner, amount - owner, nil
}

// Percent renders basis points as a human-readable percentage, e.g. "60.00%".
func Percent(p uint16) string {
	return fmt.Sprintf("%d.%02d%%", p/100, p%100)
}
