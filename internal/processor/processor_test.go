package processor

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eigerco/vesting/internal/auth"
	"github.com/eigerco/vesting/internal/crypto"
	"github.com/eigerco/vesting/internal/quorum"
	"github.com/eigerco/vesting/internal/rent"
	"github.com/eigerco/vesting/internal/store"
	"github.com/eigerco/vesting/internal/testutils"
	"github.com/eigerco/vesting/internal/token"
	"github.com/eigerco/vesting/internal/vesting"
)

func TestCreateVestingType(t *testing.T) {
	h := newHarness(t)
	h.setupPool()

	pool, err := h.p.PoolType(h.poolType)
	require.NoError(t, err)
	assert.True(t, pool.IsInitialized)
	assert.Equal(t, h.admin, pool.Administrator)
	assert.Equal(t, h.tokenPool, pool.TokenPool)
	assert.Equal(t, testSchedule(t), pool.Schedule)
	assert.Zero(t, pool.LockedTokens)

	pda, err := h.p.PoolAuthority(h.poolType)
	require.NoError(t, err)
	tokenPool, err := h.ledger.Account(h.tokenPool)
	require.NoError(t, err)
	assert.Equal(t, pda, tokenPool.Owner)
}

func TestCreateVestingTypeFailures(t *testing.T) {
	unsorted, err := vesting.NewSchedule(100, []vesting.Vesting{
		{Amount: 50, Tranche: vesting.NewCliff(10)},
		{Amount: 50, Tranche: vesting.NewCliff(5)},
	})
	require.NoError(t, err)

	tests := []struct {
		name    string
		prepare func(h *harness) (CreateVestingType, []crypto.Identity)
		err     error
	}{
		{
			name: "missing signature",
			prepare: func(h *harness) (CreateVestingType, []crypto.Identity) {
				ins := CreateVestingType{Administrator: h.admin, PoolType: h.allocate(vesting.PoolTypeSize), TokenPool: h.openTokenAccount(h.admin, 1), Schedule: testSchedule(h.t)}
				return ins, nil
			},
			err: ErrMissingRequiredSignature,
		},
		{
			name: "already initialized",
			prepare: func(h *harness) (CreateVestingType, []crypto.Identity) {
				h.setupPool()
				ins := CreateVestingType{Administrator: h.admin, PoolType: h.poolType, TokenPool: h.tokenPool, Schedule: testSchedule(h.t)}
				return ins, []crypto.Identity{h.admin}
			},
			err: ErrAlreadyInitialized,
		},
		{
			name: "not rent exempt",
			prepare: func(h *harness) (CreateVestingType, []crypto.Identity) {
				poolType := h.allocateWith(vesting.PoolTypeSize, 1)
				ins := CreateVestingType{Administrator: h.admin, PoolType: poolType, TokenPool: h.openTokenAccount(h.admin, 1), Schedule: testSchedule(h.t)}
				return ins, []crypto.Identity{h.admin}
			},
			err: ErrNotRentExempt,
		},
		{
			name: "invalid schedule",
			prepare: func(h *harness) (CreateVestingType, []crypto.Identity) {
				ins := CreateVestingType{Administrator: h.admin, PoolType: h.allocate(vesting.PoolTypeSize), TokenPool: h.openTokenAccount(h.admin, 1), Schedule: unsorted}
				return ins, []crypto.Identity{h.admin}
			},
			err: ErrScheduleIsNotValid,
		},
		{
			name: "missing token pool",
			prepare: func(h *harness) (CreateVestingType, []crypto.Identity) {
				ins := CreateVestingType{Administrator: h.admin, PoolType: h.allocate(vesting.PoolTypeSize), TokenPool: testutils.RandomIdentity(h.t), Schedule: testSchedule(h.t)}
				return ins, []crypto.Identity{h.admin}
			},
			err: ErrIncorrectAccount,
		},
		{
			name: "record owned by another program",
			prepare: func(h *harness) (CreateVestingType, []crypto.Identity) {
				poolType := testutils.RandomIdentity(h.t)
				b := h.kv.NewBatch()
				require.NoError(h.t, h.accounts.Create(b, poolType, testutils.RandomIdentity(h.t), 1<<40, vesting.PoolTypeSize))
				require.NoError(h.t, b.Commit())
				ins := CreateVestingType{Administrator: h.admin, PoolType: poolType, TokenPool: h.openTokenAccount(h.admin, 1), Schedule: testSchedule(h.t)}
				return ins, []crypto.Identity{h.admin}
			},
			err: ErrIncorrectAccount,
		},
		{
			name: "record too small",
			prepare: func(h *harness) (CreateVestingType, []crypto.Identity) {
				ins := CreateVestingType{Administrator: h.admin, PoolType: h.allocate(10), TokenPool: h.openTokenAccount(h.admin, 1), Schedule: testSchedule(h.t)}
				return ins, []crypto.Identity{h.admin}
			},
			err: ErrInvalidAccountData,
		},
		{
			name: "token pool not owned by administrator",
			prepare: func(h *harness) (CreateVestingType, []crypto.Identity) {
				ins := CreateVestingType{Administrator: h.admin, PoolType: h.allocate(vesting.PoolTypeSize), TokenPool: h.openTokenAccount(testutils.RandomIdentity(h.t), 1), Schedule: testSchedule(h.t)}
				return ins, []crypto.Identity{h.admin}
			},
			err: token.ErrOwnerMismatch,
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			h := newHarness(t)
			ins, signers := tc.prepare(h)
			assert.ErrorIs(t, h.exec(ins, signers...), tc.err)
		})
	}
}

func TestFailedInstructionWritesNothing(t *testing.T) {
	h := newHarness(t)
	poolType := h.allocate(vesting.PoolTypeSize)
	tokenPool := h.openTokenAccount(testutils.RandomIdentity(t), poolBalance)
	before := h.snapshot()

	// the pool type record is staged before the token pool hand over fails
	err := h.exec(CreateVestingType{
		Administrator: h.admin,
		PoolType:      poolType,
		TokenPool:     tokenPool,
		Schedule:      testSchedule(t),
	}, h.admin)
	require.ErrorIs(t, err, token.ErrOwnerMismatch)

	assert.Equal(t, before, h.snapshot())
	pool, err := h.p.PoolType(poolType)
	require.NoError(t, err)
	assert.False(t, pool.IsInitialized)
}

func TestCreateVestingAccount(t *testing.T) {
	h := newHarness(t)
	h.setupPool()
	grant, tokenAccount := h.createGrant(grantTokens)

	rec, err := h.p.Grant(grant)
	require.NoError(t, err)
	assert.Equal(t, vesting.Grant{
		IsInitialized: true,
		TotalTokens:   grantTokens,
		TokenAccount:  tokenAccount,
		PoolType:      h.poolType,
	}, rec)

	pool, err := h.p.PoolType(h.poolType)
	require.NoError(t, err)
	assert.Equal(t, uint64(grantTokens), pool.LockedTokens)

	newGrant := func(total uint64) CreateVestingAccount {
		return CreateVestingAccount{
			Administrator: h.admin,
			PoolType:      h.poolType,
			Grant:         h.allocate(vesting.GrantSize),
			TokenAccount:  h.openTokenAccount(testutils.RandomIdentity(t), 0),
			TokenPool:     h.tokenPool,
			TotalTokens:   total,
		}
	}

	t.Run("not enough tokens in pool", func(t *testing.T) {
		assert.ErrorIs(t, h.exec(newGrant(poolBalance-grantTokens+1), h.admin), ErrNotEnoughTokensInPool)
	})

	t.Run("not administrator", func(t *testing.T) {
		other := testutils.RandomIdentity(t)
		ins := newGrant(1)
		ins.Administrator = other
		assert.ErrorIs(t, h.exec(ins, other), ErrNotAdministrator)
	})

	t.Run("different mint", func(t *testing.T) {
		ins := newGrant(1)
		ins.TokenAccount = h.openTokenAccountOf(testutils.RandomIdentity(t), testutils.RandomIdentity(t), 0)
		assert.ErrorIs(t, h.exec(ins, h.admin), ErrInvalidAccountData)
	})

	t.Run("wrong token pool", func(t *testing.T) {
		ins := newGrant(1)
		ins.TokenPool = h.openTokenAccount(h.admin, poolBalance)
		assert.ErrorIs(t, h.exec(ins, h.admin), ErrIncorrectAccount)
	})

	t.Run("grant already initialized", func(t *testing.T) {
		ins := newGrant(1)
		ins.Grant = grant
		assert.ErrorIs(t, h.exec(ins, h.admin), ErrAlreadyInitialized)
	})

	t.Run("grant not rent exempt", func(t *testing.T) {
		ins := newGrant(1)
		ins.Grant = h.allocateWith(vesting.GrantSize, rent.Default().MinimumBalance(vesting.GrantSize)-1)
		assert.ErrorIs(t, h.exec(ins, h.admin), ErrNotRentExempt)
	})

	t.Run("zero tokens", func(t *testing.T) {
		ins := newGrant(0)
		before := h.snapshot()
		assert.ErrorIs(t, h.exec(ins, h.admin), ErrInvalidInstruction)
		assert.Equal(t, before, h.snapshot())
	})

	t.Run("uninitialized pool type", func(t *testing.T) {
		ins := newGrant(1)
		ins.PoolType = h.allocate(vesting.PoolTypeSize)
		assert.ErrorIs(t, h.exec(ins, h.admin), ErrUninitializedAccount)
	})

	t.Run("remaining pool tokens", func(t *testing.T) {
		require.NoError(t, h.exec(newGrant(poolBalance-grantTokens), h.admin))
		pool, err := h.p.PoolType(h.poolType)
		require.NoError(t, err)
		assert.Equal(t, uint64(poolBalance), pool.LockedTokens)
	})
}

func TestWithdrawFromVesting(t *testing.T) {
	h := newHarness(t)
	h.setupPool()
	grant, tokenAccount := h.createGrant(grantTokens)

	withdraw := func(amount uint64) error {
		// anyone may trigger a payout
		return h.exec(WithdrawFromVesting{
			PoolType:     h.poolType,
			Grant:        grant,
			TokenAccount: tokenAccount,
			TokenPool:    h.tokenPool,
			Amount:       amount,
		})
	}

	steps := []struct {
		name      string
		now       uint64
		amount    uint64
		err       error
		withdrawn uint64
	}{
		{name: "before cliff", now: 500, amount: 1, err: ErrNotEnoughUnlockedTokens},
		{name: "at cliff", now: 1_000, amount: 200_000, withdrawn: 200_000},
		{name: "beyond first step", now: 2_500, amount: 200_001, err: ErrNotEnoughUnlockedTokens, withdrawn: 200_000},
		{name: "part of first step", now: 2_500, amount: 150_000, withdrawn: 350_000},
		{name: "after the end", now: 10_000, amount: 650_000, withdrawn: grantTokens},
		{name: "nothing left", now: 20_000, amount: 1, err: ErrNotEnoughUnlockedTokens, withdrawn: grantTokens},
	}
	for _, step := range steps {
		t.Run(step.name, func(t *testing.T) {
			h.now = step.now
			err := withdraw(step.amount)
			if step.err != nil {
				assert.ErrorIs(t, err, step.err)
			} else {
				require.NoError(t, err)
			}

			rec, err := h.p.Grant(grant)
			require.NoError(t, err)
			assert.Equal(t, step.withdrawn, rec.WithdrawnTokens)
			assert.Equal(t, step.withdrawn, h.balance(tokenAccount))
			assert.Equal(t, poolBalance-step.withdrawn, h.balance(h.tokenPool))

			pool, err := h.p.PoolType(h.poolType)
			require.NoError(t, err)
			assert.Equal(t, grantTokens-step.withdrawn, pool.LockedTokens)
		})
	}

	t.Run("wrong token account", func(t *testing.T) {
		err := h.exec(WithdrawFromVesting{
			PoolType:     h.poolType,
			Grant:        grant,
			TokenAccount: h.openTokenAccount(testutils.RandomIdentity(t), 0),
			TokenPool:    h.tokenPool,
		})
		assert.ErrorIs(t, err, ErrIncorrectAccount)
	})

	assert.Equal(t, float64(3), h.counter("vesting_instructions_total", map[string]string{
		"instruction": KindWithdrawFromVesting.String(),
		"result":      "7",
	}))
}

func TestWithdrawExcessiveFromPool(t *testing.T) {
	h := newHarness(t)
	h.setupPool()
	h.createGrant(grantTokens)
	destination := h.openTokenAccount(h.admin, 0)

	ins := WithdrawExcessiveFromPool{
		Administrator: h.admin,
		PoolType:      h.poolType,
		TokenPool:     h.tokenPool,
		Destination:   destination,
		Amount:        poolBalance - grantTokens + 1,
	}
	assert.ErrorIs(t, h.exec(ins, h.admin), ErrNotEnoughUnlockedTokensInPool)

	other := testutils.RandomIdentity(t)
	notAdmin := ins
	notAdmin.Administrator = other
	assert.ErrorIs(t, h.exec(notAdmin, other), ErrNotAdministrator)

	ins.Amount = poolBalance - grantTokens
	require.NoError(t, h.exec(ins, h.admin))
	assert.Equal(t, uint64(poolBalance-grantTokens), h.balance(destination))
	assert.Equal(t, uint64(grantTokens), h.balance(h.tokenPool))

	ins.Amount = 1
	assert.ErrorIs(t, h.exec(ins, h.admin), ErrNotEnoughUnlockedTokensInPool)
}

func TestChangeVestingTypeSchedule(t *testing.T) {
	h := newHarness(t)

	replacement, err := vesting.NewScheduleBuilder(grantTokens).Cliff(50_000, vesting.Rest()).Build()
	require.NoError(t, err)

	fresh := h.allocate(vesting.PoolTypeSize)
	err = h.exec(ChangeVestingTypeSchedule{Administrator: h.admin, PoolType: fresh, Schedule: replacement}, h.admin)
	assert.ErrorIs(t, err, ErrNotInitialized)

	h.setupPool()
	other := testutils.RandomIdentity(t)
	err = h.exec(ChangeVestingTypeSchedule{Administrator: other, PoolType: h.poolType, Schedule: replacement}, other)
	assert.ErrorIs(t, err, ErrNotAdministrator)

	err = h.exec(ChangeVestingTypeSchedule{Administrator: h.admin, PoolType: h.poolType, Schedule: vesting.Schedule{VestingCount: 17}}, h.admin)
	assert.ErrorIs(t, err, ErrScheduleIsNotValid)

	require.NoError(t, h.exec(ChangeVestingTypeSchedule{Administrator: h.admin, PoolType: h.poolType, Schedule: replacement}, h.admin))
	pool, err := h.p.PoolType(h.poolType)
	require.NoError(t, err)
	assert.Equal(t, replacement, pool.Schedule)
}

func TestCreateMultisig(t *testing.T) {
	h := newHarness(t)
	h.setupPool()
	policyID := h.allocateAt(h.policyAddress(h.poolType), quorum.PolicySize)
	multisig, signers := h.multisig(2, 3)
	freshPool := h.allocate(vesting.PoolTypeSize)
	other := testutils.RandomIdentity(t)

	tests := []struct {
		name   string
		ins    CreateMultisig
		signer crypto.Identity
		err    error
	}{
		{
			name: "multisig not owned by token program",
			ins: CreateMultisig{Administrator: h.admin, PoolType: h.poolType, Policy: policyID,
				Multisig: h.putMultisig(testutils.RandomIdentity(t), quorum.MultisigConfig{M: 1, N: 1, IsInitialized: true})},
			err: ErrIncorrectAccount,
		},
		{
			name: "threshold above signers",
			ins: CreateMultisig{Administrator: h.admin, PoolType: h.poolType, Policy: policyID,
				Multisig: h.putMultisig(token.ProgramID, quorum.MultisigConfig{M: 3, N: 2, IsInitialized: true})},
			err: ErrInvalidAccountData,
		},
		{
			name: "missing multisig",
			ins:  CreateMultisig{Administrator: h.admin, PoolType: h.poolType, Policy: policyID, Multisig: testutils.RandomIdentity(t)},
			err:  ErrIncorrectAccount,
		},
		{
			name: "policy not derived from pool type",
			ins:  CreateMultisig{Administrator: h.admin, PoolType: h.poolType, Policy: h.allocate(quorum.PolicySize), Multisig: multisig},
			err:  ErrIncorrectAccount,
		},
		{
			name: "uninitialized pool type",
			ins: CreateMultisig{Administrator: h.admin, PoolType: freshPool,
				Policy: h.allocateAt(h.policyAddress(freshPool), quorum.PolicySize), Multisig: multisig},
			err: ErrUninitializedAccount,
		},
		{
			name:   "not administrator",
			ins:    CreateMultisig{Administrator: other, PoolType: h.poolType, Policy: policyID, Multisig: multisig},
			signer: other,
			err:    ErrNotAdministrator,
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			signer := tc.signer
			if signer.IsZero() {
				signer = h.admin
			}
			assert.ErrorIs(t, h.exec(tc.ins, signer), tc.err)
		})
	}

	require.NoError(t, h.exec(CreateMultisig{Administrator: h.admin, PoolType: h.poolType, Policy: policyID, Multisig: multisig}, h.admin))

	policy, err := h.p.Policy(policyID)
	require.NoError(t, err)
	assert.True(t, policy.IsInitialized)
	assert.Equal(t, uint8(2), policy.RequiredCount)
	assert.Equal(t, uint8(3), policy.SignerCount)
	assert.Equal(t, h.poolType, policy.PoolType)
	assert.Equal(t, signers, policy.Approvers())

	t.Run("already initialized", func(t *testing.T) {
		again, _ := h.multisig(1, 1)
		before := h.snapshot()
		err := h.exec(CreateMultisig{Administrator: h.admin, PoolType: h.poolType, Policy: policyID, Multisig: again}, h.admin)
		assert.ErrorIs(t, err, ErrAlreadyInitialized)
		assert.Equal(t, before, h.snapshot())
	})
}

func TestPoolTypeHasSinglePolicy(t *testing.T) {
	h := newHarness(t)
	h.setupPool()
	grant, _ := h.createGrant(grantTokens)
	h.setupPolicy(3, 3)

	// a 1-of-1 policy naming the administrator at any other address
	cfg := quorum.MultisigConfig{M: 1, N: 1, IsInitialized: true}
	cfg.Signers[0] = h.admin
	multisig := h.putMultisig(token.ProgramID, cfg)
	second := h.allocate(quorum.PolicySize)
	progress := h.allocateAt(h.progressAddress(grant), quorum.ProgressSize)
	before := h.snapshot()

	err := h.exec(CreateMultisig{
		Administrator: h.admin,
		PoolType:      h.poolType,
		Policy:        second,
		Multisig:      multisig,
	}, h.admin)
	assert.ErrorIs(t, err, ErrIncorrectAccount)

	err = h.exec(OpenDevesting{Signer: h.admin, PoolType: h.poolType, Policy: second, Grant: grant, Progress: progress}, h.admin)
	assert.ErrorIs(t, err, ErrIncorrectAccount)
	err = h.exec(SignDevesting{Signer: h.admin, PoolType: h.poolType, Policy: second, Grant: grant, Progress: progress}, h.admin)
	assert.ErrorIs(t, err, ErrIncorrectAccount)

	assert.Equal(t, before, h.snapshot())
	_, err = h.p.Grant(grant)
	assert.NoError(t, err)
	unused, err := h.p.Policy(second)
	require.NoError(t, err)
	assert.False(t, unused.IsInitialized)
}

func TestDevesting(t *testing.T) {
	h := newHarness(t)
	h.setupPool()
	grant, tokenAccount := h.createGrant(grantTokens)
	h.createGrant(300_000)

	h.now = 1_000
	require.NoError(t, h.exec(WithdrawFromVesting{
		PoolType:     h.poolType,
		Grant:        grant,
		TokenAccount: tokenAccount,
		TokenPool:    h.tokenPool,
		Amount:       200_000,
	}))

	policy, signers := h.setupPolicy(2, 3)
	progress := h.allocateAt(h.progressAddress(grant), quorum.ProgressSize)
	open := OpenDevesting{Signer: signers[0], PoolType: h.poolType, Policy: policy, Grant: grant, Progress: progress}
	sign := func(signer crypto.Identity) error {
		return h.exec(SignDevesting{Signer: signer, PoolType: h.poolType, Policy: policy, Grant: grant, Progress: progress}, signer)
	}

	outsider := testutils.RandomIdentity(t)
	byOutsider := open
	byOutsider.Signer = outsider
	assert.ErrorIs(t, h.exec(byOutsider, outsider), quorum.ErrNotApprover)

	require.NoError(t, h.exec(open, signers[0]))
	assert.ErrorIs(t, h.exec(open, signers[0]), ErrAlreadyInitialized)

	require.NoError(t, sign(signers[0]))
	rec, err := h.p.Progress(progress)
	require.NoError(t, err)
	assert.Equal(t, 1, rec.Count())
	assert.Equal(t, grant, rec.Grant)

	before := h.snapshot()
	err = sign(signers[0])
	assert.ErrorIs(t, err, ErrDevestingAlreadySigned)
	code, ok := Code(err)
	assert.True(t, ok)
	assert.Equal(t, CodeDevestingAlreadySigned, code)

	assert.ErrorIs(t, sign(outsider), quorum.ErrNotApprover)
	assert.Equal(t, before, h.snapshot())

	poolAcc, err := h.accounts.Get(h.poolType)
	require.NoError(t, err)
	grantAcc, err := h.accounts.Get(grant)
	require.NoError(t, err)
	progressAcc, err := h.accounts.Get(progress)
	require.NoError(t, err)

	require.NoError(t, sign(signers[2]))

	_, err = h.p.Grant(grant)
	assert.ErrorIs(t, err, store.ErrAccountNotFound)
	_, err = h.p.Progress(progress)
	assert.ErrorIs(t, err, store.ErrAccountNotFound)

	pool, err := h.p.PoolType(h.poolType)
	require.NoError(t, err)
	assert.Equal(t, uint64(300_000), pool.LockedTokens)

	closedPoolAcc, err := h.accounts.Get(h.poolType)
	require.NoError(t, err)
	assert.Equal(t, poolAcc.Lamports+grantAcc.Lamports+progressAcc.Lamports, closedPoolAcc.Lamports)

	assert.Equal(t, uint64(200_000), h.balance(tokenAccount))
	assert.Equal(t, float64(1), h.counter("vesting_grants_closed_total", nil))
}

func TestDevestingClosesOnThresholdInAnyOrder(t *testing.T) {
	orders := [][]int{{0, 1}, {1, 0}, {2, 0}, {1, 2}}
	for _, order := range orders {
		h := newHarness(t)
		h.setupPool()
		grant, _ := h.createGrant(grantTokens)
		policy, signers := h.setupPolicy(2, 3)
		progress := h.allocateAt(h.progressAddress(grant), quorum.ProgressSize)

		// the administrator may open a devesting too
		require.NoError(t, h.exec(OpenDevesting{Signer: h.admin, PoolType: h.poolType, Policy: policy, Grant: grant, Progress: progress}, h.admin))

		for i, idx := range order {
			signer := signers[idx]
			require.NoError(t, h.exec(SignDevesting{Signer: signer, PoolType: h.poolType, Policy: policy, Grant: grant, Progress: progress}, signer))
			_, err := h.p.Grant(grant)
			if i == len(order)-1 {
				assert.ErrorIs(t, err, store.ErrAccountNotFound)
			} else {
				assert.NoError(t, err)
			}
		}

		pool, err := h.p.PoolType(h.poolType)
		require.NoError(t, err)
		assert.Zero(t, pool.LockedTokens)
	}
}

func TestSignDevestingRequiresMatchingRecords(t *testing.T) {
	h := newHarness(t)
	h.setupPool()
	grant, _ := h.createGrant(500_000)
	other, _ := h.createGrant(500_000)
	policy, signers := h.setupPolicy(1, 1)
	progress := h.openDevesting(policy, grant, signers[0])

	err := h.exec(SignDevesting{Signer: signers[0], PoolType: h.poolType, Policy: policy, Grant: other, Progress: progress}, signers[0])
	assert.ErrorIs(t, err, ErrIncorrectAccount)

	err = h.exec(SignDevesting{Signer: signers[0], PoolType: h.poolType, Policy: policy, Grant: grant, Progress: progress})
	assert.ErrorIs(t, err, ErrMissingRequiredSignature)

	unopened := h.allocateAt(h.progressAddress(other), quorum.ProgressSize)
	err = h.exec(SignDevesting{Signer: signers[0], PoolType: h.poolType, Policy: policy, Grant: other, Progress: unopened}, signers[0])
	assert.ErrorIs(t, err, ErrUninitializedAccount)

	require.NoError(t, h.exec(SignDevesting{Signer: signers[0], PoolType: h.poolType, Policy: policy, Grant: grant, Progress: progress}, signers[0]))
	_, err = h.p.Grant(other)
	assert.NoError(t, err)
}

func TestGrantHasSingleProgress(t *testing.T) {
	h := newHarness(t)
	h.setupPool()
	grant, _ := h.createGrant(grantTokens)
	policy, signers := h.setupPolicy(2, 3)

	elsewhere := h.allocate(quorum.ProgressSize)
	err := h.exec(OpenDevesting{Signer: signers[0], PoolType: h.poolType, Policy: policy, Grant: grant, Progress: elsewhere}, signers[0])
	assert.ErrorIs(t, err, ErrIncorrectAccount)

	progress := h.openDevesting(policy, grant, signers[0])
	err = h.exec(OpenDevesting{Signer: signers[1], PoolType: h.poolType, Policy: policy, Grant: grant, Progress: progress}, signers[1])
	assert.ErrorIs(t, err, ErrAlreadyInitialized)
}

func TestDevestingRejectsForeignApprovals(t *testing.T) {
	h := newHarness(t)
	h.setupPool()
	poolA := h.poolType
	policyA, signersA := h.setupPolicy(2, 2)

	h.setupPool()
	poolB := h.poolType
	grantB, _ := h.createGrant(grantTokens)
	policyB, signersB := h.setupPolicy(3, 3)
	progressB := h.openDevesting(policyB, grantB, signersB[0])
	before := h.snapshot()

	tests := []struct {
		name string
		ins  Instruction
		err  error
	}{
		{
			name: "sign with another pool's policy",
			ins:  SignDevesting{Signer: signersA[0], PoolType: poolA, Policy: policyA, Grant: grantB, Progress: progressB},
			err:  ErrInvalidAccountData,
		},
		{
			name: "sign with another pool's policy under the grant's pool type",
			ins:  SignDevesting{Signer: signersA[0], PoolType: poolB, Policy: policyA, Grant: grantB, Progress: progressB},
			err:  ErrIncorrectAccount,
		},
		{
			name: "sign the grant's policy as another pool's approver",
			ins:  SignDevesting{Signer: signersA[0], PoolType: poolB, Policy: policyB, Grant: grantB, Progress: progressB},
			err:  quorum.ErrNotApprover,
		},
		{
			name: "open with another pool's policy",
			ins:  OpenDevesting{Signer: signersA[0], PoolType: poolA, Policy: policyA, Grant: grantB, Progress: progressB},
			err:  ErrInvalidAccountData,
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.ErrorIs(t, h.exec(tc.ins, signersA[0]), tc.err)
			assert.Equal(t, before, h.snapshot())
		})
	}

	rec, err := h.p.Progress(progressB)
	require.NoError(t, err)
	assert.Zero(t, rec.Count())

	for i, signer := range signersB {
		require.NoError(t, h.exec(SignDevesting{Signer: signer, PoolType: poolB, Policy: policyB, Grant: grantB, Progress: progressB}, signer))
		_, err := h.p.Grant(grantB)
		if i < len(signersB)-1 {
			assert.NoError(t, err)
		} else {
			assert.ErrorIs(t, err, store.ErrAccountNotFound)
		}
	}
}

func TestSubmit(t *testing.T) {
	h := newHarness(t)
	key := testutils.RandomKey(t)
	h.admin = key.PublicKey()

	poolType := h.allocate(vesting.PoolTypeSize)
	payload, err := Encode(CreateVestingType{
		Administrator: h.admin,
		PoolType:      poolType,
		TokenPool:     h.openTokenAccount(h.admin, poolBalance),
		Schedule:      testSchedule(t),
	})
	require.NoError(t, err)

	t.Run("tampered signature", func(t *testing.T) {
		env := auth.Sign(payload, key)
		env.Signatures[0].Signature[0] ^= 0xff
		assert.ErrorIs(t, h.p.Submit(context.Background(), env), ErrMissingRequiredSignature)
	})

	t.Run("signed by someone else", func(t *testing.T) {
		env := auth.Sign(payload, testutils.RandomKey(t))
		assert.ErrorIs(t, h.p.Submit(context.Background(), env), ErrMissingRequiredSignature)
	})

	t.Run("garbage payload", func(t *testing.T) {
		env := auth.Sign([]byte{0xff, 1, 2}, key)
		assert.ErrorIs(t, h.p.Submit(context.Background(), env), ErrInvalidInstruction)
	})

	require.NoError(t, h.p.Submit(context.Background(), auth.Sign(payload, key)))
	pool, err := h.p.PoolType(poolType)
	require.NoError(t, err)
	assert.True(t, pool.IsInitialized)
}

func TestExecuteHonoursContext(t *testing.T) {
	h := newHarness(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := h.p.Execute(ctx, nil, ChangeVestingTypeSchedule{})
	assert.ErrorIs(t, err, context.Canceled)
}
