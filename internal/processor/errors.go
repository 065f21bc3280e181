package processor

import (
	"errors"

	"github.com/eigerco/vesting/internal/quorum"
)

var (
	ErrAlreadyInitialized            = errors.New("account is already initialized")
	ErrNotRentExempt                 = errors.New("account is not rent exempt")
	ErrScheduleIsNotValid            = errors.New("vesting schedule is not valid")
	ErrNotEnoughTokensInPool         = errors.New("not enough tokens in pool to create vesting")
	ErrNotAdministrator              = errors.New("not an administrator of the pool type")
	ErrNotInitialized                = errors.New("account has not been initialized yet")
	ErrNotEnoughUnlockedTokensInPool = errors.New("not enough unlocked tokens in pool")
	ErrNotEnoughUnlockedTokens       = errors.New("not enough unlocked tokens to withdraw")
	ErrDevestingAlreadySigned        = quorum.ErrDevestingAlreadySigned
)

var (
	ErrMissingRequiredSignature = errors.New("missing required signature")
	ErrInvalidAccountData       = errors.New("invalid account data")
	ErrIncorrectAccount         = errors.New("incorrect account")
	ErrUninitializedAccount     = errors.New("uninitialized account")
	ErrInvalidInstruction       = errors.New("invalid instruction data")
)

// Result codes of rejected instructions.
const (
	CodeAlreadyInitialized uint32 = iota
	CodeNotRentExempt
	CodeScheduleIsNotValid
	CodeNotEnoughTokensInPool
	CodeNotAdministrator
	CodeNotInitialized
	CodeNotEnoughUnlockedTokensInPool
	CodeNotEnoughUnlockedTokens
	CodeDevestingAlreadySigned
)

const (
	CodeMissingRequiredSignature uint32 = 100 + iota
	CodeInvalidAccountData
	CodeIncorrectAccount
	CodeUninitializedAccount
	CodeNotApprover
	CodeInvalidInstruction
)

var codes = []struct {
	err  error
	code uint32
}{
	{ErrAlreadyInitialized, CodeAlreadyInitialized},
	{ErrNotRentExempt, CodeNotRentExempt},
	{ErrScheduleIsNotValid, CodeScheduleIsNotValid},
	{ErrNotEnoughTokensInPool, CodeNotEnoughTokensInPool},
	{ErrNotAdministrator, CodeNotAdministrator},
	{ErrNotInitialized, CodeNotInitialized},
	{ErrNotEnoughUnlockedTokensInPool, CodeNotEnoughUnlockedTokensInPool},
	{ErrNotEnoughUnlockedTokens, CodeNotEnoughUnlockedTokens},
	{ErrDevestingAlreadySigned, CodeDevestingAlreadySigned},
	{ErrMissingRequiredSignature, CodeMissingRequiredSignature},
	{ErrInvalidAccountData, CodeInvalidAccountData},
	{ErrIncorrectAccount, CodeIncorrectAccount},
	{ErrUninitializedAccount, CodeUninitializedAccount},
	{quorum.ErrNotApprover, CodeNotApprover},
	{ErrInvalidInstruction, CodeInvalidInstruction},
}

// Code returns the result code of a rejected instruction. It reports false
// for nil and for errors outside the ledger's own set.
func Code(err error) (uint32, bool) {
	if err == nil {
		return 0, false
	}
	for _, c := range codes {
		if errors.Is(err, c.err) {
			return c.code, true
		}
	}
	return 0, false
}
