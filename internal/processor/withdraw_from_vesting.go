package processor

import (
	"fmt"

	"github.com/eigerco/vesting/internal/vesting"
)

func (ins WithdrawFromVesting) execute(tx *txn) error {
	var pool vesting.PoolType
	poolAcc, err := tx.load(ins.PoolType, &pool)
	if err != nil {
		return err
	}
	if !pool.IsInitialized {
		return ErrUninitializedAccount
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
	if grant.TokenAccount != ins.TokenAccount || pool.TokenPool != ins.TokenPool {
		return ErrIncorrectAccount
	}

	if ins.Amount > grant.AvailableToWithdraw(&pool.Schedule, tx.now) {
		return ErrNotEnoughUnlockedTokens
	}

	pda, err := tx.poolAuthority(ins.PoolType)
	if err != nil {
		return err
	}
	if err := tx.custody.Transfer(tx.batch, ins.TokenPool, ins.TokenAccount, pda, ins.Amount); err != nil {
		return fmt.Errorf("pay out grant: %w", err)
	}

	grant.WithdrawnTokens += ins.Amount
	if err := pool.Release(ins.Amount); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidAccountData, err)
	}
	if err := tx.save(ins.Grant, grantAcc, grant); err != nil {
		return err
	}
	if err := tx.save(ins.PoolType, poolAcc, pool); err != nil {
		return err
	}
	tx.after(func() { tx.metrics.setLocked(ins.PoolType.String(), pool.LockedTokens) })
	return nil
}
