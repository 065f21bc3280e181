package vesting

import (
	"errors"
	"fmt"
)

var (
	ErrEmptyBuilder           = errors.New("builder has no vestings")
	ErrInvalidTokenAmountUsed = errors.New("used token amount differs from schedule token count")
	ErrVestingsNotSorted      = errors.New("vestings are not sorted")
	ErrZeroTokens             = errors.New("vesting with zero tokens")
	ErrTooManyVestings        = errors.New("too many vestings")
	ErrInitialUnlockTooBig    = errors.New("initial unlock is not less than the tokens provided")
	ErrInvalidTimeInterval    = errors.New("invalid time interval")
	ErrTooManyUnlocks         = errors.New("unlock count does not fit in a byte")
	ErrLockedTokensUnderflow  = errors.New("locked tokens less than grant remainder")
)

// InvalidTokenAmountError carries the expected and the used token amounts
// of a builder whose tranches do not add up to its token count.
type InvalidTokenAmountError struct {
	Expected uint64
	Used     uint64
}

func (e *InvalidTokenAmountError) Error() string {
	return fmt.Sprintf("%s: expected %d, used %d", ErrInvalidTokenAmountUsed, e.Expected, e.Used)
}

func (e *InvalidTokenAmountError) Is(target error) bool {
	return target == ErrInvalidTokenAmountUsed
}
