// Package token keeps the fungible token accounts that vesting pools pay
// out from.
package token

import (
	"fmt"

	"github.com/gagliardetto/solana-go"

	"github.com/eigerco/vesting/internal/crypto"
	"github.com/eigerco/vesting/internal/safemath"
	"github.com/eigerco/vesting/internal/store"
	"github.com/eigerco/vesting/pkg/db"
	"github.com/eigerco/vesting/pkg/serialization/codec/fixed"
)

// ProgramID owns every token account.
var ProgramID = solana.TokenProgramID

const AccountSize = 2*crypto.IdentitySize + 8

// Account holds Amount tokens of Mint on behalf of Owner.
type Account struct {
	Mint   crypto.Identity
	Owner  crypto.Identity
	Amount uint64
}

// Custody moves tokens between accounts. Writes are staged in the batch the
// caller commits.
type Custody interface {
	Account(id crypto.Identity) (Account, error)
	Transfer(b db.Batch, from, to, authority crypto.Identity, amount uint64) error
	SetOwner(b db.Batch, account, owner, newOwner crypto.Identity) error
}

var _ Custody = (*Ledger)(nil)

// Ledger is a Custody over the local key-value store.
type Ledger struct {
	accounts *store.Accounts
}

func NewLedger(kv db.KVStore) *Ledger {
	return &Ledger{accounts: store.NewTokenAccounts(kv)}
}

func (l *Ledger) Account(id crypto.Identity) (Account, error) {
	acc, err := l.accounts.Get(id)
	if err != nil {
		return Account{}, err
	}
	var ta Account
	if err := fixed.Unmarshal(acc.Data, &ta); err != nil {
		return Account{}, fmt.Errorf("unmarshal token account %s: %w", id, err)
	}
	return ta, nil
}

func (l *Ledger) put(b db.Writer, id crypto.Identity, ta Account) error {
	data, err := fixed.Marshal(ta)
	if err != nil {
		return fmt.Errorf("marshal token account %s: %w", id, err)
	}
	return l.accounts.Put(b, id, store.Account{Owner: ProgramID, Data: data})
}

// Open stages a new token account holding amount tokens.
func (l *Ledger) Open(b db.Writer, id, mint, owner crypto.Identity, amount uint64) error {
	exists, err := l.accounts.Has(id)
	if err != nil {
		return err
	}
	if exists {
		return fmt.Errorf("%w: %s", store.ErrAccountExists, id)
	}
	return l.put(b, id, Account{Mint: mint, Owner: owner, Amount: amount})
}

// Transfer moves amount from one account to another of the same mint.
// authority must own the source account.
func (l *Ledger) Transfer(b db.Batch, from, to, authority crypto.Identity, amount uint64) error {
	src, err := l.Account(from)
	if err != nil {
		return err
	}
	dst, err := l.Account(to)
	if err != nil {
		return err
	}
	if src.Owner != authority {
		return fmt.Errorf("%w: %s", ErrOwnerMismatch, from)
	}
	if src.Mint != dst.Mint {
		return ErrMintMismatch
	}
	if src.Amount < amount {
		return fmt.Errorf("%w: %d < %d", ErrInsufficientFunds, src.Amount, amount)
	}
	if from == to {
		return nil
	}

	src.Amount -= amount
	var ok bool
	if dst.Amount, ok = safemath.Add64(dst.Amount, amount); !ok {
		return ErrInvalidTokenAmount
	}
	if err := l.put(b, from, src); err != nil {
		return err
	}
	return l.put(b, to, dst)
}

// SetOwner hands the account over to newOwner. owner must be the current
// owner.
func (l *Ledger) SetOwner(b db.Batch, account, owner, newOwner crypto.Identity) error {
	ta, err := l.Account(account)
	if err != nil {
		return err
	}
	if ta.Owner != owner {
		return fmt.Errorf("%w: %s", ErrOwnerMismatch, account)
	}
	ta.Owner = newOwner
	return l.put(b, account, ta)
}
