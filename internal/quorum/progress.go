package quorum

import (
	"github.com/eigerco/vesting/internal/crypto"
)

const ProgressSize = 1 + MaxSigners + crypto.IdentitySize

// Progress records which approvers have signed the termination of a grant.
// Slots line up with Policy.Signers.
type Progress struct {
	IsInitialized bool
	Signed        [MaxSigners]bool
	Grant         crypto.Identity
}

func NewProgress(grant crypto.Identity) Progress {
	return Progress{IsInitialized: true, Grant: grant}
}

// Count returns the number of recorded approvals.
func (p *Progress) Count() int {
	n := 0
	for _, signed := range p.Signed {
		if signed {
			n++
		}
	}
	return n
}

// Approve records signer's approval and reports whether the policy's
// threshold is met, counting this approval. On error p is unchanged.
func (p *Progress) Approve(policy *Policy, signer crypto.Identity) (bool, error) {
	i, ok := policy.IndexOf(signer)
	if !ok {
		return false, ErrNotApprover
	}
	if p.Signed[i] {
		return false, ErrDevestingAlreadySigned
	}
	p.Signed[i] = true
	return p.Count() >= int(policy.RequiredCount), nil
}
