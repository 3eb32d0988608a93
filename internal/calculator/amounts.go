package calculator

import (
	"errors"
	"fmt"
)

// MaxAmount bounds every single amount and every ledger balance, in minor
// units. Sums of up to 9000 bounded values stay inside int64.
const MaxAmount int64 = 1_000_000_000_000_000

// ErrAmountOutOfRange is returned when an amount or a resulting balance
// exceeds MaxAmount in either direction.
var ErrAmountOutOfRange = errors.New("amount out of range")

func inRange(v int64) bool {
	return v >= -MaxAmount && v <= MaxAmount
}

// AddBalance returns balance + delta, or ErrAmountOutOfRange when an operand
// or the result lies outside [-MaxAmount, MaxAmount].
func AddBalance(balance, delta int64) (int64, error) {
	if !inRange(balance) || !inRange(delta) {
		return 0, fmt.Errorf("%w: %d + %d", ErrAmountOutOfRange, balance, delta)
	}
	sum := balance + delta
	if !inRange(sum) {
		return 0, fmt.Errorf("%w: %d + %d", ErrAmountOutOfRange, balance, delta)
	}
	return sum, nil
}
