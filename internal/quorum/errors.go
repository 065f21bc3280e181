package quorum

import "errors"

var (
	ErrDevestingAlreadySigned = errors.New("devesting already signed")
	ErrNotApprover            = errors.New("signer is not an approver")
	ErrInvalidMultisig        = errors.New("invalid multisig configuration")
)
