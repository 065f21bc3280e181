// Package quorum implements the M-of-N approval that terminates a grant
// before it has fully vested.
package quorum

import (
	"fmt"

	"github.com/eigerco/vesting/internal/crypto"
	"github.com/eigerco/vesting/pkg/serialization/codec/fixed"
)

const (
	// MaxSigners is the approver capacity of a multisig configuration.
	MaxSigners = 11

	MultisigSize = 1 + 1 + 1 + MaxSigners*crypto.IdentitySize
	PolicySize   = 1 + MaxSigners*crypto.IdentitySize + 1 + 1 + crypto.IdentitySize
)

// MultisigConfig is the externally owned M-of-N configuration a policy is
// copied from.
type MultisigConfig struct {
	M             uint8
	N             uint8
	IsInitialized bool
	Signers       [MaxSigners]crypto.Identity
}

func ParseMultisig(data []byte) (MultisigConfig, error) {
	var cfg MultisigConfig
	if err := fixed.Unmarshal(data, &cfg); err != nil {
		return MultisigConfig{}, fmt.Errorf("%w: %w", ErrInvalidMultisig, err)
	}
	return cfg, nil
}

// Policy is the approver set bound to one pool type.
type Policy struct {
	IsInitialized bool
	Signers       [MaxSigners]crypto.Identity
	RequiredCount uint8
	SignerCount   uint8
	PoolType      crypto.Identity
}

// NewPolicy copies an initialized M-of-N configuration into a policy for
// poolType.
func NewPolicy(cfg MultisigConfig, poolType crypto.Identity) (Policy, error) {
	if !cfg.IsInitialized || cfg.M == 0 || cfg.M > cfg.N || cfg.N > MaxSigners {
		return Policy{}, ErrInvalidMultisig
	}
	return Policy{
		IsInitialized: true,
		Signers:       cfg.Signers,
		RequiredCount: cfg.M,
		SignerCount:   cfg.N,
		PoolType:      poolType,
	}, nil
}

// Approvers returns the configured approver slots.
func (p *Policy) Approvers() []crypto.Identity {
	return p.Signers[:min(int(p.SignerCount), MaxSigners)]
}

// IndexOf returns the slot of signer among the approvers.
func (p *Policy) IndexOf(signer crypto.Identity) (int, bool) {
	if signer.IsZero() {
		return 0, false
	}
	for i, approver := range p.Approvers() {
		if approver == signer {
			return i, true
		}
	}
	return 0, false
}

func (p *Policy) IsApprover(signer crypto.Identity) bool {
	_, ok := p.IndexOf(signer)
	return ok
}
