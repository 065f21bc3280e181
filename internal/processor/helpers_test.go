package processor

import (
	"bytes"
	"context"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"

	"github.com/eigerco/vesting/internal/crypto"
	"github.com/eigerco/vesting/internal/quorum"
	"github.com/eigerco/vesting/internal/rent"
	"github.com/eigerco/vesting/internal/store"
	"github.com/eigerco/vesting/internal/testutils"
	"github.com/eigerco/vesting/internal/token"
	"github.com/eigerco/vesting/internal/vesting"
	"github.com/eigerco/vesting/pkg/db/pebble"
	"github.com/eigerco/vesting/pkg/serialization/codec/fixed"
)

const (
	poolBalance = 1_500_000
	grantTokens = 1_000_000
)

type harness struct {
	t        *testing.T
	kv       *pebble.KVStore
	p        *Processor
	ledger   *token.Ledger
	accounts *store.Accounts
	registry *prometheus.Registry
	now      uint64

	admin     crypto.Identity
	mint      crypto.Identity
	poolType  crypto.Identity
	tokenPool crypto.Identity
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	h := &harness{
		t:        t,
		kv:       testutils.NewStore(t),
		registry: prometheus.NewRegistry(),
		admin:    testutils.RandomIdentity(t),
		mint:     testutils.RandomIdentity(t),
	}
	metrics, err := NewMetrics(h.registry)
	require.NoError(t, err)

	h.ledger = token.NewLedger(h.kv)
	h.accounts = store.NewAccounts(h.kv)
	h.p = New(testutils.RandomIdentity(t), h.kv, h.ledger,
		WithClock(ClockFunc(func() uint64 { return h.now })),
		WithMetrics(metrics),
	)
	return h
}

func testSchedule(t *testing.T) vesting.Schedule {
	t.Helper()
	s, err := vesting.NewScheduleBuilder(grantTokens).
		Cliff(1_000, vesting.Tokens(200_000)).
		Add(vesting.NewTranche(2_000, 1_000, 4), vesting.Rest()).
		Build()
	require.NoError(t, err)
	return s
}

func (h *harness) exec(ins Instruction, signers ...crypto.Identity) error {
	return h.p.Execute(context.Background(), crypto.NewIdentitySet(signers...), ins)
}

// allocate creates a rent exempt record account of size bytes.
func (h *harness) allocate(size int) crypto.Identity {
	return h.allocateWith(size, rent.Default().MinimumBalance(size))
}

func (h *harness) allocateWith(size int, lamports uint64) crypto.Identity {
	id := testutils.RandomIdentity(h.t)
	require.NoError(h.t, h.p.Allocate(context.Background(), id, lamports, size))
	return id
}

// allocateAt creates a rent exempt record account at a derived address.
func (h *harness) allocateAt(id crypto.Identity, size int) crypto.Identity {
	require.NoError(h.t, h.p.Allocate(context.Background(), id, rent.Default().MinimumBalance(size), size))
	return id
}

func (h *harness) policyAddress(poolType crypto.Identity) crypto.Identity {
	id, err := h.p.PolicyAddress(poolType)
	require.NoError(h.t, err)
	return id
}

func (h *harness) progressAddress(grant crypto.Identity) crypto.Identity {
	id, err := h.p.ProgressAddress(grant)
	require.NoError(h.t, err)
	return id
}

func (h *harness) openTokenAccount(owner crypto.Identity, amount uint64) crypto.Identity {
	return h.openTokenAccountOf(h.mint, owner, amount)
}

func (h *harness) openTokenAccountOf(mint, owner crypto.Identity, amount uint64) crypto.Identity {
	id := testutils.RandomIdentity(h.t)
	b := h.kv.NewBatch()
	require.NoError(h.t, h.ledger.Open(b, id, mint, owner, amount))
	require.NoError(h.t, b.Commit())
	return id
}

func (h *harness) balance(id crypto.Identity) uint64 {
	acc, err := h.ledger.Account(id)
	require.NoError(h.t, err)
	return acc.Amount
}

// setupPool creates an initialised pool type funded with poolBalance tokens.
func (h *harness) setupPool() {
	h.poolType = h.allocate(vesting.PoolTypeSize)
	h.tokenPool = h.openTokenAccount(h.admin, poolBalance)
	require.NoError(h.t, h.exec(CreateVestingType{
		Administrator: h.admin,
		PoolType:      h.poolType,
		TokenPool:     h.tokenPool,
		Schedule:      testSchedule(h.t),
	}, h.admin))
}

// createGrant grants total tokens to a new beneficiary token account.
func (h *harness) createGrant(total uint64) (grant, tokenAccount crypto.Identity) {
	grant = h.allocate(vesting.GrantSize)
	tokenAccount = h.openTokenAccount(testutils.RandomIdentity(h.t), 0)
	require.NoError(h.t, h.exec(CreateVestingAccount{
		Administrator: h.admin,
		PoolType:      h.poolType,
		Grant:         grant,
		TokenAccount:  tokenAccount,
		TokenPool:     h.tokenPool,
		TotalTokens:   total,
	}, h.admin))
	return grant, tokenAccount
}

// multisig stores an m-of-n configuration owned by the token program.
func (h *harness) multisig(m, n uint8) (crypto.Identity, []crypto.Identity) {
	signers := testutils.RandomIdentities(h.t, int(n))
	cfg := quorum.MultisigConfig{M: m, N: n, IsInitialized: true}
	copy(cfg.Signers[:], signers)
	return h.putMultisig(token.ProgramID, cfg), signers
}

func (h *harness) putMultisig(owner crypto.Identity, cfg quorum.MultisigConfig) crypto.Identity {
	data, err := fixed.Marshal(cfg)
	require.NoError(h.t, err)
	id := testutils.RandomIdentity(h.t)
	b := h.kv.NewBatch()
	require.NoError(h.t, h.accounts.Put(b, id, store.Account{Owner: owner, Data: data}))
	require.NoError(h.t, b.Commit())
	return id
}

// setupPolicy creates an m-of-n devesting policy for the pool type.
func (h *harness) setupPolicy(m, n uint8) (crypto.Identity, []crypto.Identity) {
	multisig, signers := h.multisig(m, n)
	policy := h.allocateAt(h.policyAddress(h.poolType), quorum.PolicySize)
	require.NoError(h.t, h.exec(CreateMultisig{
		Administrator: h.admin,
		PoolType:      h.poolType,
		Multisig:      multisig,
		Policy:        policy,
	}, h.admin))
	return policy, signers
}

// openDevesting allocates the progress record of grant and opens it on
// behalf of signer.
func (h *harness) openDevesting(policy, grant, signer crypto.Identity) crypto.Identity {
	progress := h.allocateAt(h.progressAddress(grant), quorum.ProgressSize)
	require.NoError(h.t, h.exec(OpenDevesting{
		Signer:   signer,
		PoolType: h.poolType,
		Policy:   policy,
		Grant:    grant,
		Progress: progress,
	}, signer))
	return progress
}

type entry struct {
	key, value []byte
}

// snapshot returns every key and value in the store.
func (h *harness) snapshot() []entry {
	iter, err := h.kv.NewIterator(nil, nil)
	require.NoError(h.t, err)
	defer iter.Close() //nolint:errcheck

	var all []entry
	for iter.Next() {
		value, err := iter.Value()
		require.NoError(h.t, err)
		all = append(all, entry{key: iter.Key(), value: bytes.Clone(value)})
	}
	return all
}

// counter reads a counter value from the harness registry.
func (h *harness) counter(name string, labels map[string]string) float64 {
	families, err := h.registry.Gather()
	require.NoError(h.t, err)
	for _, family := range families {
		if family.GetName() != name {
			continue
		}
	metrics:
		for _, m := range family.GetMetric() {
			for _, l := range m.GetLabel() {
				if labels[l.GetName()] != l.GetValue() {
					continue metrics
				}
			}
			return m.GetCounter().GetValue()
		}
	}
	return 0
}
