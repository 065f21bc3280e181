package processor

import (
	"fmt"

	"github.com/eigerco/vesting/internal/vesting"
)

func (ins CreateVestingType) execute(tx *txn) error {
	if err := tx.requireSigner(ins.Administrator); err != nil {
		return err
	}

	var pool vesting.PoolType
	acc, err := tx.load(ins.PoolType, &pool)
	if err != nil {
		return err
	}
	if pool.IsInitialized {
		return ErrAlreadyInitialized
	}
	if err := tx.requireRentExempt(acc); err != nil {
		return err
	}
	if !ins.Schedule.IsValid() {
		return ErrScheduleIsNotValid
	}
	if _, err := tx.tokenAccount(ins.TokenPool); err != nil {
		return err
	}

	pool = vesting.PoolType{
		IsInitialized: true,
		Schedule:      ins.Schedule,
		Administrator: ins.Administrator,
		TokenPool:     ins.TokenPool,
	}
	if err := tx.save(ins.PoolType, acc, pool); err != nil {
		return err
	}

	pda, err := tx.poolAuthority(ins.PoolType)
	if err != nil {
		return err
	}
	if err := tx.custody.SetOwner(tx.batch, ins.TokenPool, ins.Administrator, pda); err != nil {
		return fmt.Errorf("hand token pool to pool authority: %w", err)
	}
	return nil
}
