package vesting

import (
	"math"

	"github.com/eigerco/vesting/internal/safemath"
)

// TrancheSize is the encoded length of a Tranche.
const TrancheSize = 17

// Tranche releases its tokens in UnlockCount equal steps, one every
// UnlockPeriod starting at StartTime. A cliff is a single step tranche.
type Tranche struct {
	StartTime    uint64
	UnlockPeriod uint64
	UnlockCount  uint8
}

// Period is a tranche template that is not yet anchored to a start time.
type Period struct {
	UnlockPeriod uint64
	UnlockCount  uint8
}

func NewTranche(start, period uint64, count uint8) Tranche {
	return Tranche{StartTime: start, UnlockPeriod: period, UnlockCount: max(count, 1)}
}

func NewCliff(at uint64) Tranche {
	return NewTranche(at, 0, 1)
}

func Every(period uint64, count uint8) Period {
	return Period{UnlockPeriod: period, UnlockCount: max(count, 1)}
}

func (p Period) StartingAt(start uint64) Tranche {
	return NewTranche(start, p.UnlockPeriod, p.UnlockCount)
}

// Period drops the start time.
func (t Tranche) Period() Period {
	return Every(t.UnlockPeriod, t.UnlockCount)
}

// Last is the time of the final unlock. It saturates at math.MaxUint64.
func (t Tranche) Last() uint64 {
	span, ok := safemath.Mul64(t.UnlockPeriod, uint64(t.count()-1))
	if !ok {
		return math.MaxUint64
	}
	last, ok := safemath.Add64(t.StartTime, span)
	if !ok {
		return math.MaxUint64
	}
	return last
}

// UnlockedSteps returns how many of the tranche's steps have unlocked at time.
func (t Tranche) UnlockedSteps(time uint64) uint8 {
	if time < t.StartTime {
		return 0
	}
	if time >= t.Last() {
		return t.count()
	}
	return uint8((time-t.StartTime)/t.UnlockPeriod) + 1
}

// Fraction is the unlocked share of the tranche at time, in [0, 1].
func (t Tranche) Fraction(time uint64) float64 {
	return float64(t.UnlockedSteps(time)) / float64(t.count())
}

// count treats a zero count, which only a zero valued record can hold, as one.
func (t Tranche) count() uint8 {
	return max(t.UnlockCount, 1)
}
