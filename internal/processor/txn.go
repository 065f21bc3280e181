package processor

import (
	"errors"
	"fmt"

	"github.com/eigerco/vesting/internal/crypto"
	"github.com/eigerco/vesting/internal/safemath"
	"github.com/eigerco/vesting/internal/store"
	"github.com/eigerco/vesting/internal/token"
	"github.com/eigerco/vesting/pkg/db"
	"github.com/eigerco/vesting/pkg/serialization/codec/fixed"
)

// txn is the state of one executing instruction. Writes go to batch and
// become visible only when the processor commits it.
type txn struct {
	*Processor
	batch    db.Batch
	signers  crypto.IdentitySet
	now      uint64
	onCommit []func()
}

func (tx *txn) requireSigner(id crypto.Identity) error {
	if !tx.signers.Has(id) {
		return fmt.Errorf("%w: %s", ErrMissingRequiredSignature, id)
	}
	return nil
}

func (tx *txn) requireRentExempt(acc store.Account) error {
	if !tx.rent.IsExempt(acc.Lamports, len(acc.Data)) {
		return ErrNotRentExempt
	}
	return nil
}

// save encodes rec into the fixed capacity buffer of acc and stages it.
func (tx *txn) save(id crypto.Identity, acc store.Account, rec any) error {
	data, err := fixed.Marshal(rec)
	if err != nil {
		return fmt.Errorf("%w: %s: %w", ErrInvalidAccountData, id, err)
	}
	if len(data) != len(acc.Data) {
		return fmt.Errorf("%w: %s holds %d bytes, record needs %d", ErrInvalidAccountData, id, len(acc.Data), len(data))
	}
	acc.Data = data
	return tx.accounts.Put(tx.batch, id, acc)
}

func (tx *txn) remove(id crypto.Identity) error {
	return tx.accounts.Delete(tx.batch, id)
}

// reclaim moves the storage deposit of from into into.
func (tx *txn) reclaim(into *store.Account, from store.Account) error {
	lamports, ok := safemath.Add64(into.Lamports, from.Lamports)
	if !ok {
		return fmt.Errorf("%w: lamports overflow", ErrInvalidAccountData)
	}
	into.Lamports = lamports
	return nil
}

func (tx *txn) tokenAccount(id crypto.Identity) (token.Account, error) {
	ta, err := tx.custody.Account(id)
	if errors.Is(err, store.ErrAccountNotFound) {
		return token.Account{}, fmt.Errorf("%w: %w", ErrIncorrectAccount, err)
	}
	return ta, err
}

// requirePolicy checks that policy is the address derived for poolType.
func (tx *txn) requirePolicy(policy, poolType crypto.Identity) error {
	want, err := tx.PolicyAddress(poolType)
	if err != nil {
		return err
	}
	if policy != want {
		return fmt.Errorf("%w: %s is not the policy of %s", ErrIncorrectAccount, policy, poolType)
	}
	return nil
}

// requireProgress checks that progress is the address derived for grant.
func (tx *txn) requireProgress(progress, grant crypto.Identity) error {
	want, err := tx.ProgressAddress(grant)
	if err != nil {
		return err
	}
	if progress != want {
		return fmt.Errorf("%w: %s is not the devesting progress of %s", ErrIncorrectAccount, progress, grant)
	}
	return nil
}

func (tx *txn) poolAuthority(poolType crypto.Identity) (crypto.Identity, error) {
	return tx.PoolAuthority(poolType)
}

// after runs f once the instruction has been committed.
func (tx *txn) after(f func()) {
	tx.onCommit = append(tx.onCommit, f)
}
