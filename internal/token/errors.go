package token

import "errors"

var (
	ErrOwnerMismatch      = errors.New("token account owner does not match authority")
	ErrMintMismatch       = errors.New("token accounts have different mints")
	ErrInsufficientFunds  = errors.New("insufficient funds")
	ErrInvalidTokenAmount = errors.New("token amount overflow")
)
