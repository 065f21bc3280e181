package vesting

import (
	"github.com/eigerco/vesting/internal/crypto"
	"github.com/eigerco/vesting/internal/safemath"
)

const PoolTypeSize = 1 + ScheduleSize + 8 + crypto.IdentitySize + crypto.IdentitySize

// PoolType binds a schedule to the token pool its grants are paid from.
// LockedTokens is the part of the pool promised to grants and not yet
// withdrawn.
type PoolType struct {
	IsInitialized bool
	Schedule      Schedule
	LockedTokens  uint64
	Administrator crypto.Identity
	TokenPool     crypto.Identity
}

// Unlocked is the part of balance not promised to any grant.
func (p *PoolType) Unlocked(balance uint64) uint64 {
	return safemath.SaturatingSub64(balance, p.LockedTokens)
}

// Lock reserves amount for a new grant. It fails when the pool balance
// cannot cover the locked total.
func (p *PoolType) Lock(amount, balance uint64) bool {
	locked, ok := safemath.Add64(p.LockedTokens, amount)
	if !ok || locked > balance {
		return false
	}
	p.LockedTokens = locked
	return true
}

// Release returns withdrawn tokens from the locked total.
func (p *PoolType) Release(amount uint64) error {
	locked, ok := safemath.Sub64(p.LockedTokens, amount)
	if !ok {
		return ErrLockedTokensUnderflow
	}
	p.LockedTokens = locked
	return nil
}

// CloseGrant unlocks what g still had to receive and resets g.
func (p *PoolType) CloseGrant(g *Grant) error {
	if err := p.Release(g.Remaining()); err != nil {
		return err
	}
	*g = Grant{}
	return nil
}
