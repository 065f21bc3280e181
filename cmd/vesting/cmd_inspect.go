package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/eigerco/vesting/internal/crypto"
)

func (a *app) inspectCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "inspect",
		Short: "Decode ledger records",
	}

	var at uint64
	grant := &cobra.Command{
		Use:   "grant <id>",
		Short: "Show a grant and the tokens it can withdraw",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.inspectGrant(cmd, args[0], at)
		},
	}
	grant.Flags().Uint64Var(&at, "at", uint64(time.Now().Unix()), "Unix time to evaluate the schedule at")

	pool := &cobra.Command{
		Use:   "pool <id>",
		Short: "Show a pool type and its unlocked excess",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.inspectPool(cmd, args[0])
		},
	}

	cmd.AddCommand(grant, pool)
	return cmd
}

func (a *app) inspectGrant(cmd *cobra.Command, arg string, at uint64) error {
	id, err := crypto.ParseIdentity(arg)
	if err != nil {
		return fmt.Errorf("grant id: %w", err)
	}
	p, _, closeFn, err := a.openProcessor()
	if err != nil {
		return err
	}
	defer closeFn()

	grant, err := p.Grant(id)
	if err != nil {
		return fmt.Errorf("grant %s: %w", id, err)
	}
	if !grant.IsInitialized {
		return fmt.Errorf("grant %s is not initialized", id)
	}
	pool, err := p.PoolType(grant.PoolType)
	if err != nil {
		return fmt.Errorf("pool type %s: %w", grant.PoolType, err)
	}

	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "grant:         %s\n", id)
	fmt.Fprintf(w, "pool type:     %s\n", grant.PoolType)
	fmt.Fprintf(w, "token account: %s\n", grant.TokenAccount)
	fmt.Fprintf(w, "total:         %s\n", amount(grant.TotalTokens))
	fmt.Fprintf(w, "withdrawn:     %s\n", amount(grant.WithdrawnTokens))
	fmt.Fprintf(w, "withdrawable:  %s at %d\n", amount(grant.AvailableToWithdraw(&pool.Schedule, at)), at)
	return nil
}

func (a *app) inspectPool(cmd *cobra.Command, arg string) error {
	id, err := crypto.ParseIdentity(arg)
	if err != nil {
		return fmt.Errorf("pool type id: %w", err)
	}
	p, ledger, closeFn, err := a.openProcessor()
	if err != nil {
		return err
	}
	defer closeFn()

	pool, err := p.PoolType(id)
	if err != nil {
		return fmt.Errorf("pool type %s: %w", id, err)
	}
	if !pool.IsInitialized {
		return fmt.Errorf("pool type %s is not initialized", id)
	}
	tokenPool, err := ledger.Account(pool.TokenPool)
	if err != nil {
		return fmt.Errorf("token pool %s: %w", pool.TokenPool, err)
	}

	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "pool type:     %s\n", id)
	fmt.Fprintf(w, "administrator: %s\n", pool.Administrator)
	fmt.Fprintf(w, "token pool:    %s\n", pool.TokenPool)
	fmt.Fprintf(w, "balance:       %s\n", amount(tokenPool.Amount))
	fmt.Fprintf(w, "locked:        %s\n", amount(pool.LockedTokens))
	fmt.Fprintf(w, "unlocked:      %s\n\n", amount(pool.Unlocked(tokenPool.Amount)))
	printSchedule(w, &pool.Schedule)
	return nil
}
