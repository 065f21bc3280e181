// Package processor executes ledger instructions. Each instruction reads
// the records it needs, validates them and commits every resulting write,
// token movements included, in a single batch.
package processor

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"github.com/eigerco/vesting/internal/auth"
	"github.com/eigerco/vesting/internal/crypto"
	"github.com/eigerco/vesting/internal/quorum"
	"github.com/eigerco/vesting/internal/rent"
	"github.com/eigerco/vesting/internal/store"
	"github.com/eigerco/vesting/internal/token"
	"github.com/eigerco/vesting/internal/vesting"
	"github.com/eigerco/vesting/pkg/db"
	"github.com/eigerco/vesting/pkg/log"
	"github.com/eigerco/vesting/pkg/serialization/codec/fixed"
)

// DefaultProgramID owns ledger records when no program identity is
// configured.
var DefaultProgramID = crypto.Identity(crypto.HashData([]byte("eigerco/vesting")))

type Processor struct {
	programID crypto.Identity
	kv        db.KVStore
	accounts  *store.Accounts
	custody   token.Custody
	rent      rent.Rent
	clock     Clock
	metrics   *Metrics
	logger    zerolog.Logger

	mu sync.Mutex
}

type Option func(*Processor)

func WithClock(c Clock) Option {
	return func(p *Processor) { p.clock = c }
}

func WithRent(r rent.Rent) Option {
	return func(p *Processor) { p.rent = r }
}

func WithMetrics(m *Metrics) Option {
	return func(p *Processor) { p.metrics = m }
}

func WithLogger(l zerolog.Logger) Option {
	return func(p *Processor) { p.logger = l }
}

// New creates a processor for the records owned by programID. A zero
// programID selects DefaultProgramID.
func New(programID crypto.Identity, kv db.KVStore, custody token.Custody, opts ...Option) *Processor {
	if programID.IsZero() {
		programID = DefaultProgramID
	}
	p := &Processor{
		programID: programID,
		kv:        kv,
		accounts:  store.NewAccounts(kv),
		custody:   custody,
		rent:      rent.Default(),
		clock:     SystemClock{},
		logger:    log.Ledger,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *Processor) ProgramID() crypto.Identity {
	return p.programID
}

// PoolAuthority is the identity that owns the token pool of poolType.
func (p *Processor) PoolAuthority(poolType crypto.Identity) (crypto.Identity, error) {
	pda, _, err := crypto.PoolAuthority(poolType, p.programID)
	return pda, err
}

// PolicyAddress is the identity of the devesting policy of poolType.
func (p *Processor) PolicyAddress(poolType crypto.Identity) (crypto.Identity, error) {
	return crypto.PolicyAddress(poolType, p.programID)
}

// ProgressAddress is the identity of the devesting progress of grant.
func (p *Processor) ProgressAddress(grant crypto.Identity) (crypto.Identity, error) {
	return crypto.ProgressAddress(grant, p.programID)
}

// Allocate creates a zero filled record account owned by the program.
func (p *Processor) Allocate(ctx context.Context, id crypto.Identity, lamports uint64, size int) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return err
	}

	batch := p.kv.NewBatch()
	defer batch.Close() //nolint:errcheck
	if err := p.accounts.Create(batch, id, p.programID, lamports, size); err != nil {
		return err
	}
	if err := batch.Commit(); err != nil {
		return fmt.Errorf(store.ErrFailedBatchCommit, err)
	}
	return nil
}

// Submit verifies a signed envelope and executes the instruction it carries.
func (p *Processor) Submit(ctx context.Context, env auth.Envelope) error {
	signers, err := env.Verify()
	if err != nil {
		return fmt.Errorf("%w: %w", ErrMissingRequiredSignature, err)
	}
	ins, err := Decode(env.Payload)
	if err != nil {
		return err
	}
	return p.Execute(ctx, signers, ins)
}

// Execute runs ins on behalf of already verified signers. Either every
// write of the instruction is committed or none is.
func (p *Processor) Execute(ctx context.Context, signers crypto.IdentitySet, ins Instruction) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}

	batch := p.kv.NewBatch()
	defer batch.Close() //nolint:errcheck

	tx := &txn{
		Processor: p,
		batch:     batch,
		signers:   signers,
		now:       p.clock.Now(),
	}
	err := ins.execute(tx)
	if err == nil {
		if cerr := batch.Commit(); cerr != nil {
			err = fmt.Errorf(store.ErrFailedBatchCommit, cerr)
		}
	}
	p.metrics.observe(ins.Kind(), err)

	if err != nil {
		code, _ := Code(err)
		p.logger.Info().
			Err(err).
			Stringer("instruction", ins.Kind()).
			Uint32("code", code).
			Msg("instruction rejected")
		return err
	}
	for _, f := range tx.onCommit {
		f()
	}
	p.logger.Debug().
		Stringer("instruction", ins.Kind()).
		Uint64("now", tx.now).
		Msg("instruction executed")
	return nil
}

// PoolType reads a pool type record.
func (p *Processor) PoolType(id crypto.Identity) (vesting.PoolType, error) {
	var rec vesting.PoolType
	_, err := p.load(id, &rec)
	return rec, err
}

// Grant reads a grant record.
func (p *Processor) Grant(id crypto.Identity) (vesting.Grant, error) {
	var rec vesting.Grant
	_, err := p.load(id, &rec)
	return rec, err
}

// Policy reads a devesting policy record.
func (p *Processor) Policy(id crypto.Identity) (quorum.Policy, error) {
	var rec quorum.Policy
	_, err := p.load(id, &rec)
	return rec, err
}

// Progress reads a devesting progress record.
func (p *Processor) Progress(id crypto.Identity) (quorum.Progress, error) {
	var rec quorum.Progress
	_, err := p.load(id, &rec)
	return rec, err
}

// load decodes the program owned record stored under id into rec.
func (p *Processor) load(id crypto.Identity, rec any) (store.Account, error) {
	acc, err := p.accounts.Get(id)
	if err != nil {
		if errors.Is(err, store.ErrAccountNotFound) {
			return store.Account{}, fmt.Errorf("%w: %w", ErrIncorrectAccount, err)
		}
		return store.Account{}, err
	}
	if acc.Owner != p.programID {
		return store.Account{}, fmt.Errorf("%w: %s is not owned by the program", ErrIncorrectAccount, id)
	}
	if err := fixed.Unmarshal(acc.Data, rec); err != nil {
		return store.Account{}, fmt.Errorf("%w: %s: %w", ErrInvalidAccountData, id, err)
	}
	return acc, nil
}
