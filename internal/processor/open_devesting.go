package processor

import (
	"github.com/eigerco/vesting/internal/quorum"
	"github.com/eigerco/vesting/internal/vesting"
)

func (ins OpenDevesting) execute(tx *txn) error {
	if err := tx.requireSigner(ins.Signer); err != nil {
		return err
	}
	if err := tx.requirePolicy(ins.Policy, ins.PoolType); err != nil {
		return err
	}
	if err := tx.requireProgress(ins.Progress, ins.Grant); err != nil {
		return err
	}

	var policy quorum.Policy
	if _, err := tx.load(ins.Policy, &policy); err != nil {
		return err
	}
	if !policy.IsInitialized {
		return ErrUninitializedAccount
	}
	if policy.PoolType != ins.PoolType {
		return ErrInvalidAccountData
	}

	var pool vesting.PoolType
	if _, err := tx.load(ins.PoolType, &pool); err != nil {
		return err
	}
	if !pool.IsInitialized {
		return ErrUninitializedAccount
	}
	if !policy.IsApprover(ins.Signer) && pool.Administrator != ins.Signer {
		return quorum.ErrNotApprover
	}

	var grant vesting.Grant
	if _, err := tx.load(ins.Grant, &grant); err != nil {
		return err
	}
	if !grant.IsInitialized {
		return ErrUninitializedAccount
	}
	if grant.PoolType != ins.PoolType {
		return ErrInvalidAccountData
	}

	var progress quorum.Progress
	progressAcc, err := tx.load(ins.Progress, &progress)
	if err != nil {
		return err
	}
	if progress.IsInitialized {
		return ErrAlreadyInitialized
	}
	if err := tx.requireRentExempt(progressAcc); err != nil {
		return err
	}

	return tx.save(ins.Progress, progressAcc, quorum.NewProgress(ins.Grant))
}
