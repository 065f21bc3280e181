package processor

import (
	"fmt"

	"github.com/eigerco/vesting/internal/vesting"
)

func (ins WithdrawExcessiveFromPool) execute(tx *txn) error {
	if err := tx.requireSigner(ins.Administrator); err != nil {
		return err
	}

	var pool vesting.PoolType
	if _, err := tx.load(ins.PoolType, &pool); err != nil {
		return err
	}
	if !pool.IsInitialized {
		return ErrUninitializedAccount
	}
	if pool.Administrator != ins.Administrator {
		return ErrNotAdministrator
	}
	if pool.TokenPool != ins.TokenPool {
		return ErrIncorrectAccount
	}

	tokenPool, err := tx.tokenAccount(ins.TokenPool)
	if err != nil {
		return err
	}
	if ins.Amount > pool.Unlocked(tokenPool.Amount) {
		return ErrNotEnoughUnlockedTokensInPool
	}

	pda, err := tx.poolAuthority(ins.PoolType)
	if err != nil {
		return err
	}
	if err := tx.custody.Transfer(tx.batch, ins.TokenPool, ins.Destination, pda, ins.Amount); err != nil {
		return fmt.Errorf("withdraw excess: %w", err)
	}
	return nil
}
