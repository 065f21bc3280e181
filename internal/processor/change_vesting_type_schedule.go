package processor

import (
	"github.com/eigerco/vesting/internal/vesting"
)

func (ins ChangeVestingTypeSchedule) execute(tx *txn) error {
	if err := tx.requireSigner(ins.Administrator); err != nil {
		return err
	}

	var pool vesting.PoolType
	acc, err := tx.load(ins.PoolType, &pool)
	if err != nil {
		return err
	}
	if !pool.IsInitialized {
		return ErrNotInitialized
	}
	if pool.Administrator != ins.Administrator {
		return ErrNotAdministrator
	}
	if !ins.Schedule.IsValid() {
		return ErrScheduleIsNotValid
	}

	pool.Schedule = ins.Schedule
	return tx.save(ins.PoolType, acc, pool)
}
