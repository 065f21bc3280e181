package processor

import (
	"fmt"

	"github.com/eigerco/vesting/internal/quorum"
	"github.com/eigerco/vesting/internal/store"
	"github.com/eigerco/vesting/internal/vesting"
)

func (ins SignDevesting) execute(tx *txn) error {
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

	var progress quorum.Progress
	progressAcc, err := tx.load(ins.Progress, &progress)
	if err != nil {
		return err
	}
	if !progress.IsInitialized {
		return ErrUninitializedAccount
	}
	if progress.Grant != ins.Grant {
		return ErrInvalidAccountData
	}

	var grant vesting.Grant
	grantAcc, err := tx.load(ins.Grant, &grant)
	if err != nil {
		return err
	}
	if !grant.IsInitialized {
		return ErrUninitializedAccount
	}
	if grant.PoolType != ins.PoolType {
		return ErrInvalidAccountData
	}

	reached, err := progress.Approve(&policy, ins.Signer)
	if err != nil {
		return err
	}
	if !reached {
		return tx.save(ins.Progress, progressAcc, progress)
	}
	return tx.closeGrant(ins, grant, grantAcc, progressAcc)
}

// closeGrant returns the grant's remainder to the pool, removes the grant
// and progress records and moves their deposits to the pool type record.
func (tx *txn) closeGrant(ins SignDevesting, grant vesting.Grant, grantAcc, progressAcc store.Account) error {
	var pool vesting.PoolType
	poolAcc, err := tx.load(ins.PoolType, &pool)
	if err != nil {
		return err
	}
	if !pool.IsInitialized {
		return ErrUninitializedAccount
	}

	if err := pool.CloseGrant(&grant); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidAccountData, err)
	}
	if err := tx.reclaim(&poolAcc, grantAcc); err != nil {
		return err
	}
	if err := tx.reclaim(&poolAcc, progressAcc); err != nil {
		return err
	}

	if err := tx.save(ins.PoolType, poolAcc, pool); err != nil {
		return err
	}
	if err := tx.remove(ins.Grant); err != nil {
		return err
	}
	if err := tx.remove(ins.Progress); err != nil {
		return err
	}

	tx.after(func() {
		tx.metrics.grantClosed()
		tx.metrics.setLocked(ins.PoolType.String(), pool.LockedTokens)
		tx.logger.Info().
			Stringer("grant", ins.Grant).
			Stringer("pool_type", ins.PoolType).
			Msg("grant closed by devesting")
	})
	return nil
}
