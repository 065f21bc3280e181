package vesting

import (
	"math"

	"github.com/eigerco/vesting/internal/safemath"
)

// Amount selects how many tokens a builder step attaches to its tranche.
type Amount struct {
	tokens uint64
	rest   bool
}

// Tokens attaches exactly n tokens.
func Tokens(n uint64) Amount {
	return Amount{tokens: n}
}

// Rest attaches whatever the builder has not used yet.
func Rest() Amount {
	return Amount{rest: true}
}

// ScheduleBuilder assembles a Schedule step by step. The first failing step
// is remembered and every later step is a no-op; Build reports it.
type ScheduleBuilder struct {
	tokenCount uint64
	usedTokens uint64
	vestings   []Vesting
	err        error
}

func NewScheduleBuilder(tokenCount uint64) *ScheduleBuilder {
	return &ScheduleBuilder{tokenCount: tokenCount}
}

// Err returns the first error recorded by the builder.
func (b *ScheduleBuilder) Err() error {
	return b.err
}

func (b *ScheduleBuilder) Vestings() []Vesting {
	return b.vestings
}

func (b *ScheduleBuilder) available() uint64 {
	return safemath.SaturatingSub64(b.tokenCount, b.usedTokens)
}

func (b *ScheduleBuilder) resolve(amount Amount) uint64 {
	if amount.rest {
		return b.available()
	}
	return amount.tokens
}

func (b *ScheduleBuilder) push(tranche Tranche, tokens uint64) {
	used, ok := safemath.Add64(b.usedTokens, tokens)
	if !ok {
		b.err = &InvalidTokenAmountError{Expected: b.tokenCount, Used: math.MaxUint64}
		return
	}
	b.usedTokens = used
	b.vestings = append(b.vestings, Vesting{Amount: tokens, Tranche: tranche})
}

func (b *ScheduleBuilder) pop() Vesting {
	last := b.vestings[len(b.vestings)-1]
	b.vestings = b.vestings[:len(b.vestings)-1]
	b.usedTokens -= last.Amount
	return last
}

func (b *ScheduleBuilder) Add(tranche Tranche, amount Amount) *ScheduleBuilder {
	if b.err != nil {
		return b
	}
	b.push(tranche, b.resolve(amount))
	return b
}

func (b *ScheduleBuilder) Cliff(at uint64, amount Amount) *ScheduleBuilder {
	return b.Add(NewCliff(at), amount)
}

// OffsetBy anchors period offset after the last unlock of the previous tranche.
func (b *ScheduleBuilder) OffsetBy(offset uint64, period Period, amount Amount) *ScheduleBuilder {
	if b.err != nil {
		return b
	}
	if len(b.vestings) == 0 {
		b.err = ErrEmptyBuilder
		return b
	}
	start, ok := safemath.Add64(b.vestings[len(b.vestings)-1].Last(), offset)
	if !ok {
		b.err = ErrInvalidTimeInterval
		return b
	}
	return b.Add(period.StartingAt(start), amount)
}

// Offset is OffsetBy with the offset equal to the period's own unlock period.
func (b *ScheduleBuilder) Offset(period Period, amount Amount) *ScheduleBuilder {
	return b.OffsetBy(period.UnlockPeriod, period, amount)
}

// EndingAt truncates the last tranche so that nothing unlocks after end.
// The steps that fall after end are released by a cliff at end.
func (b *ScheduleBuilder) EndingAt(end uint64) *ScheduleBuilder {
	if b.err != nil {
		return b
	}
	if len(b.vestings) == 0 {
		b.err = ErrEmptyBuilder
		return b
	}
	last := b.vestings[len(b.vestings)-1]
	if end >= last.Last() {
		return b
	}
	if end < last.StartTime || last.UnlockPeriod == 0 {
		b.err = ErrInvalidTimeInterval
		return b
	}

	// end < Last() guarantees steps < count
	steps := 1 + (end-last.StartTime)/last.UnlockPeriod
	linear, err := safemath.MulDiv64(last.Amount, steps, uint64(last.UnlockCount))
	if err != nil {
		b.err = err
		return b
	}

	b.pop()
	b.push(NewTranche(last.StartTime, last.UnlockPeriod, uint8(steps)), linear)
	return b.Cliff(end, Tokens(last.Amount-linear))
}

// Legacy converts a schedule expressed as a single cliff followed by a linear
// ramp from start to end. initialUnlock tokens are released at start; the ramp
// steps that fall before cliff are released together at cliff.
func (b *ScheduleBuilder) Legacy(start, end, period, cliff, initialUnlock uint64, amount Amount) *ScheduleBuilder {
	if b.err != nil {
		return b
	}
	if start >= end {
		b.err = ErrInvalidTimeInterval
		return b
	}
	tokens := b.resolve(amount)
	if initialUnlock >= tokens {
		b.err = ErrInitialUnlockTooBig
		return b
	}
	if cliff < start || cliff > end || period == 0 {
		b.err = ErrInvalidTimeInterval
		return b
	}

	if initialUnlock > 0 {
		b.Cliff(start, Tokens(initialUnlock))
	}
	remaining := tokens - initialUnlock

	span := end - start
	total := 1 + span/period
	if span%period != 0 {
		total++
	}
	before := 1 + (cliff-start)/period
	steps := total - before
	if steps > math.MaxUint8 {
		b.err = ErrTooManyUnlocks
		return b
	}

	atCliff, err := safemath.MulDiv64(remaining, before, total)
	if err != nil {
		b.err = err
		return b
	}
	if atCliff > 0 {
		b.Cliff(cliff, Tokens(atCliff))
		remaining -= atCliff
	}

	if steps > 0 && remaining > 0 {
		offset, okMul := safemath.Mul64(before, period)
		first, okAdd := safemath.Add64(start, offset)
		if !okMul || !okAdd || first >= end {
			b.Cliff(end, Tokens(remaining))
		} else {
			b.Add(NewTranche(first, period, uint8(steps)), Tokens(remaining))
		}
	}
	return b.EndingAt(end)
}

// Build validates the collected vestings: the token sum first, then the
// count, the ordering and finally the amounts.
func (b *ScheduleBuilder) Build() (Schedule, error) {
	if b.err != nil {
		return Schedule{}, b.err
	}
	if b.usedTokens != b.tokenCount {
		return Schedule{}, &InvalidTokenAmountError{Expected: b.tokenCount, Used: b.usedTokens}
	}
	if len(b.vestings) > MaxVestings {
		return Schedule{}, ErrTooManyVestings
	}
	if err := checkVestings(b.vestings); err != nil {
		return Schedule{}, err
	}
	return NewSchedule(b.tokenCount, b.vestings)
}
