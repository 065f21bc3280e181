package processor

import (
	"fmt"

	"github.com/eigerco/vesting/internal/vesting"
)

func (ins CreateVestingAccount) execute(tx *txn) error {
	if err := tx.requireSigner(ins.Administrator); err != nil {
		return err
	}
	if ins.TotalTokens == 0 {
		return fmt.Errorf("%w: grant of zero tokens", ErrInvalidInstruction)
	}

	var grant vesting.Grant
	grantAcc, err := tx.load(ins.Grant, &grant)
	if err != nil {
		return err
	}
	if grant.IsInitialized {
		return ErrAlreadyInitialized
	}
	if err := tx.requireRentExempt(grantAcc); err != nil {
		return err
	}

	var pool vesting.PoolType
	poolAcc, err := tx.load(ins.PoolType, &pool)
	if err != nil {
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

	tokenAccount, err := tx.tokenAccount(ins.TokenAccount)
	if err != nil {
		return err
	}
	tokenPool, err := tx.tokenAccount(ins.TokenPool)
	if err != nil {
		return err
	}
	if tokenAccount.Mint != tokenPool.Mint {
		return ErrInvalidAccountData
	}
	if !pool.Lock(ins.TotalTokens, tokenPool.Amount) {
		return ErrNotEnoughTokensInPool
	}

	grant = vesting.Grant{
		IsInitialized: true,
		TotalTokens:   ins.TotalTokens,
		TokenAccount:  ins.TokenAccount,
		PoolType:      ins.PoolType,
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
