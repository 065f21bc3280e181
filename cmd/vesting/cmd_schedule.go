package main

import (
	"fmt"
	"io"
	"math/big"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/eigerco/vesting/internal/safemath"
	"github.com/eigerco/vesting/internal/vesting"
	"github.com/eigerco/vesting/pkg/log"
)

type legacyFlags struct {
	Tokens  uint64
	Start   uint64
	End     uint64
	Period  uint64
	Cliff   uint64
	Initial uint64
}

func (a *app) scheduleCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "schedule",
		Short: "Plan vesting schedules",
	}

	var flags legacyFlags
	legacy := &cobra.Command{
		Use:   "legacy",
		Short: "Convert a start/end/period/cliff description into tranches",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			schedule, err := vesting.NewScheduleBuilder(flags.Tokens).
				Legacy(flags.Start, flags.End, flags.Period, flags.Cliff, flags.Initial, vesting.Rest()).
				Build()
			if err != nil {
				return fmt.Errorf("build schedule: %w", err)
			}
			log.CLI.Debug().Int("vestings", len(schedule.List())).Msg("schedule built")
			printSchedule(cmd.OutOrStdout(), &schedule)
			return nil
		},
	}
	f := legacy.Flags()
	f.Uint64Var(&flags.Tokens, "tokens", 0, "Total tokens vested by the schedule")
	f.Uint64Var(&flags.Start, "start", 0, "Vesting start time")
	f.Uint64Var(&flags.End, "end", 0, "Vesting end time, all tokens are unlocked from here on")
	f.Uint64Var(&flags.Period, "period", 0, "Time between unlocks")
	f.Uint64Var(&flags.Cliff, "cliff", 0, "Time of the first unlock after the initial one")
	f.Uint64Var(&flags.Initial, "initial", 0, "Tokens unlocked at start")
	for _, name := range []string{"tokens", "start", "end", "period", "cliff"} {
		_ = legacy.MarkFlagRequired(name)
	}

	cmd.AddCommand(legacy)
	return cmd
}

// printSchedule writes the tranche plan followed by the cumulative amount
// unlocked at every unlock time.
func printSchedule(w io.Writer, s *vesting.Schedule) {
	fmt.Fprintf(w, "tokens: %s\n\n", amount(s.TokenCount))
	fmt.Fprintln(w, "tranches:")
	for i, v := range s.List() {
		fmt.Fprintf(w, "  %2d  start %d  period %d  count %d  amount %s\n",
			i, v.StartTime, v.UnlockPeriod, v.UnlockCount, amount(v.Amount))
	}

	fmt.Fprintln(w, "\nunlocks:")
	for _, at := range unlockTimes(s) {
		unlocked := s.Available(at)
		fmt.Fprintf(w, "  %d  %s  (%.2f%%)\n", at, amount(unlocked), percent(unlocked, s.TokenCount))
	}
}

// unlockTimes lists every step of every vesting in order.
func unlockTimes(s *vesting.Schedule) []uint64 {
	var times []uint64
	for _, v := range s.List() {
		for step := uint64(0); step < uint64(max(v.UnlockCount, 1)); step++ {
			span, ok := safemath.Mul64(step, v.UnlockPeriod)
			if !ok {
				break
			}
			at, ok := safemath.Add64(v.StartTime, span)
			if !ok {
				break
			}
			if len(times) == 0 || times[len(times)-1] != at {
				times = append(times, at)
			}
		}
	}
	return times
}

// amount renders a token count with thousands separators.
func amount(n uint64) string {
	return humanize.BigComma(new(big.Int).SetUint64(n))
}

func percent(part, total uint64) float64 {
	if total == 0 {
		return 0
	}
	return float64(part) / float64(total) * 100
}
