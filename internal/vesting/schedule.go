package vesting

import (
	"github.com/eigerco/vesting/internal/safemath"
)

const (
	// MaxVestings is the capacity of a schedule record.
	MaxVestings = 16

	ScheduleSize = 8 + 1 + MaxVestings*(8+TrancheSize)
)

// Vesting pairs a token amount with the tranche that releases it.
type Vesting struct {
	Amount uint64
	Tranche
}

// Schedule is the fixed capacity record of a pool type's vestings. Only the
// first VestingCount entries are meaningful.
type Schedule struct {
	TokenCount   uint64
	VestingCount uint8
	Vestings     [MaxVestings]Vesting
}

// NewSchedule copies vestings into a schedule record. It does not check that
// the amounts add up to tokenCount, use ScheduleBuilder for that.
func NewSchedule(tokenCount uint64, vestings []Vesting) (Schedule, error) {
	if len(vestings) > MaxVestings {
		return Schedule{}, ErrTooManyVestings
	}
	s := Schedule{TokenCount: tokenCount, VestingCount: uint8(len(vestings))}
	copy(s.Vestings[:], vestings)
	return s, nil
}

// List returns the populated vestings.
func (s *Schedule) List() []Vesting {
	return s.Vestings[:min(int(s.VestingCount), MaxVestings)]
}

// Available returns the number of tokens unlocked at time. Each tranche's
// share is rounded down on its own.
func (s *Schedule) Available(time uint64) uint64 {
	var tokens uint64
	for _, v := range s.List() {
		if v.StartTime > time {
			break
		}
		tokens = saturatingAdd(tokens, v.unlocked(time))
	}
	return tokens
}

func (v Vesting) unlocked(time uint64) uint64 {
	steps := v.UnlockedSteps(time)
	part, err := safemath.MulDiv64(v.Amount, uint64(steps), uint64(v.count()))
	if err != nil {
		// unreachable, steps never exceed the count
		return v.Amount
	}
	return part
}

// IsValid reports whether the record holds at most MaxVestings sorted,
// non-overlapping vestings with non-zero amounts.
func (s *Schedule) IsValid() bool {
	if int(s.VestingCount) > MaxVestings {
		return false
	}
	return checkVestings(s.List()) == nil
}

func checkVestings(vestings []Vesting) error {
	for i := 1; i < len(vestings); i++ {
		if vestings[i-1].Last() > vestings[i].StartTime {
			return ErrVestingsNotSorted
		}
	}
	for _, v := range vestings {
		if v.Amount == 0 {
			return ErrZeroTokens
		}
	}
	return nil
}

// StartTime is the start of the first vesting, or 0 for an empty schedule.
func (s *Schedule) StartTime() uint64 {
	list := s.List()
	if len(list) == 0 {
		return 0
	}
	return list[0].StartTime
}

// Last is the final unlock time of the schedule, or 0 for an empty schedule.
func (s *Schedule) Last() uint64 {
	list := s.List()
	if len(list) == 0 {
		return 0
	}
	return list[len(list)-1].Last()
}

func saturatingAdd(a, b uint64) uint64 {
	sum, ok := safemath.Add64(a, b)
	if !ok {
		return ^uint64(0)
	}
	return sum
}
