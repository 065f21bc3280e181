package processor

import (
	"errors"
	"fmt"

	"github.com/eigerco/vesting/internal/quorum"
	"github.com/eigerco/vesting/internal/store"
	"github.com/eigerco/vesting/internal/token"
	"github.com/eigerco/vesting/internal/vesting"
)

func (ins CreateMultisig) execute(tx *txn) error {
	if err := tx.requireSigner(ins.Administrator); err != nil {
		return err
	}
	if err := tx.requirePolicy(ins.Policy, ins.PoolType); err != nil {
		return err
	}

	var policy quorum.Policy
	policyAcc, err := tx.load(ins.Policy, &policy)
	if err != nil {
		return err
	}
	if policy.IsInitialized {
		return ErrAlreadyInitialized
	}
	if err := tx.requireRentExempt(policyAcc); err != nil {
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

	cfg, err := tx.multisig(ins)
	if err != nil {
		return err
	}
	policy, err = quorum.NewPolicy(cfg, ins.PoolType)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidAccountData, err)
	}
	return tx.save(ins.Policy, policyAcc, policy)
}

// multisig reads the configuration, which the token program owns.
func (tx *txn) multisig(ins CreateMultisig) (quorum.MultisigConfig, error) {
	acc, err := tx.accounts.Get(ins.Multisig)
	if errors.Is(err, store.ErrAccountNotFound) {
		return quorum.MultisigConfig{}, fmt.Errorf("%w: %w", ErrIncorrectAccount, err)
	}
	if err != nil {
		return quorum.MultisigConfig{}, err
	}
	if acc.Owner != token.ProgramID {
		return quorum.MultisigConfig{}, fmt.Errorf("%w: multisig %s is not owned by the token program", ErrIncorrectAccount, ins.Multisig)
	}
	cfg, err := quorum.ParseMultisig(acc.Data)
	if err != nil {
		return quorum.MultisigConfig{}, fmt.Errorf("%w: %w", ErrInvalidAccountData, err)
	}
	return cfg, nil
}
