package store

import (
	"errors"
	"fmt"

	"github.com/eigerco/vesting/internal/crypto"
	"github.com/eigerco/vesting/pkg/db"
	"github.com/eigerco/vesting/pkg/serialization/codec/fixed"
)

var (
	ErrAccountNotFound = errors.New("account not found")
	ErrAccountExists   = errors.New("account already exists")
)

// Account is a fixed capacity data buffer together with the owner allowed
// to write it and the storage deposit held for it.
type Account struct {
	Owner    crypto.Identity
	Lamports uint64
	Data     []byte
}

// Deleter is satisfied by db.Batch.
type Deleter interface {
	Delete(key []byte) error
}

// Accounts keeps accounts of one kind under their own key prefix.
type Accounts struct {
	db.KVStore
	prefix byte
}

// NewAccounts creates the store of ledger record accounts.
func NewAccounts(kv db.KVStore) *Accounts {
	return &Accounts{KVStore: kv, prefix: prefixAccount}
}

// NewTokenAccounts creates the store of token accounts.
func NewTokenAccounts(kv db.KVStore) *Accounts {
	return &Accounts{KVStore: kv, prefix: prefixTokenAccount}
}

func (a *Accounts) Get(id crypto.Identity) (Account, error) {
	bytes, err := a.KVStore.Get(makeKey(a.prefix, id[:]))
	if errors.Is(err, db.ErrNotFound) {
		return Account{}, fmt.Errorf("%w: %s %s", ErrAccountNotFound, PrefixToString(a.prefix), id)
	}
	if err != nil {
		return Account{}, fmt.Errorf("get %s: %w", PrefixToString(a.prefix), err)
	}
	var acc Account
	if err := fixed.Unmarshal(bytes, &acc); err != nil {
		return Account{}, fmt.Errorf("unmarshal %s: %w", PrefixToString(a.prefix), err)
	}
	return acc, nil
}

func (a *Accounts) Has(id crypto.Identity) (bool, error) {
	_, err := a.Get(id)
	if errors.Is(err, ErrAccountNotFound) {
		return false, nil
	}
	return err == nil, err
}

// Put stages acc in w.
func (a *Accounts) Put(w db.Writer, id crypto.Identity, acc Account) error {
	bytes, err := fixed.Marshal(acc)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", PrefixToString(a.prefix), err)
	}
	if err := w.Put(makeKey(a.prefix, id[:]), bytes); err != nil {
		return fmt.Errorf("put %s: %w", PrefixToString(a.prefix), err)
	}
	return nil
}

func (a *Accounts) Delete(d Deleter, id crypto.Identity) error {
	if err := d.Delete(makeKey(a.prefix, id[:])); err != nil {
		return fmt.Errorf("delete %s: %w", PrefixToString(a.prefix), err)
	}
	return nil
}

// Create stages a new zero filled account of the given size. It fails if
// the account already exists.
func (a *Accounts) Create(w db.Writer, id, owner crypto.Identity, lamports uint64, size int) error {
	exists, err := a.Has(id)
	if err != nil {
		return err
	}
	if exists {
		return fmt.Errorf("%w: %s", ErrAccountExists, id)
	}
	return a.Put(w, id, Account{Owner: owner, Lamports: lamports, Data: make([]byte, size)})
}

// ForEach calls fn for every account in key order.
func (a *Accounts) ForEach(fn func(id crypto.Identity, acc Account) error) error {
	iter, err := a.NewIterator([]byte{a.prefix}, []byte{a.prefix + 1})
	if err != nil {
		return fmt.Errorf("create iterator: %w", err)
	}
	defer iter.Close() //nolint:errcheck

	for iter.Next() {
		key := iter.Key()
		if len(key) != 1+crypto.IdentitySize {
			continue
		}
		value, err := iter.Value()
		if err != nil {
			return fmt.Errorf("get iterator value: %w", err)
		}
		var acc Account
		if err := fixed.Unmarshal(value, &acc); err != nil {
			return fmt.Errorf("unmarshal %s: %w", PrefixToString(a.prefix), err)
		}
		if err := fn(crypto.Identity(key[1:]), acc); err != nil {
			return err
		}
	}
	return nil
}
