package vesting

import (
	"github.com/eigerco/vesting/internal/crypto"
	"github.com/eigerco/vesting/internal/safemath"
)

const GrantSize = 1 + 8 + 8 + crypto.IdentitySize + crypto.IdentitySize

// Grant tracks one beneficiary's share of a pool type.
type Grant struct {
	IsInitialized   bool
	TotalTokens     uint64
	WithdrawnTokens uint64
	TokenAccount    crypto.Identity
	PoolType        crypto.Identity
}

// AvailableToWithdraw is the unlocked part of the grant not yet withdrawn.
func (g *Grant) AvailableToWithdraw(schedule *Schedule, now uint64) uint64 {
	unlocked := min(schedule.Available(now), g.TotalTokens)
	return safemath.SaturatingSub64(unlocked, g.WithdrawnTokens)
}

// Remaining is the part of the grant that has not been withdrawn.
func (g *Grant) Remaining() uint64 {
	return safemath.SaturatingSub64(g.TotalTokens, g.WithdrawnTokens)
}
