package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/eigerco/vesting/internal/config"
	"github.com/eigerco/vesting/internal/processor"
	"github.com/eigerco/vesting/internal/token"
	"github.com/eigerco/vesting/pkg/db"
	"github.com/eigerco/vesting/pkg/db/pebble"
	"github.com/eigerco/vesting/pkg/log"
)

// app carries the settings shared by every subcommand.
type app struct {
	v          *viper.Viper
	configFile string
	cfg        *config.Config
}

func newRootCommand() *cobra.Command {
	a := &app{v: config.New()}

	cmd := &cobra.Command{
		Use:               "vesting",
		Short:             "Inspect and plan token vesting schedules",
		SilenceUsage:      true,
		PersistentPreRunE: a.setup,
	}

	flags := cmd.PersistentFlags()
	flags.StringVar(&a.configFile, "config", "", "Path to a YAML configuration file")
	flags.String("data-dir", "./data", "Directory of the ledger store")
	flags.Bool("in-memory", false, "Use an empty in-memory store")
	flags.String("program-id", "", "Base58 identity of the program owning ledger records")
	flags.String("log-level", "info", "Log level")
	flags.String("log-format", "console", "Log format, console or json")
	for key, flag := range map[string]string{
		"data-dir":   "data-dir",
		"in-memory":  "in-memory",
		"program-id": "program-id",
		"log.level":  "log-level",
		"log.format": "log-format",
	} {
		if err := a.v.BindPFlag(key, flags.Lookup(flag)); err != nil {
			panic(err)
		}
	}

	cmd.AddCommand(a.scheduleCommand(), a.inspectCommand())
	return cmd
}

func (a *app) setup(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(a.v, a.configFile)
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	level, err := log.ParseLogLevel(cfg.Log.Level)
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	format, err := log.ParseLoggerType(cfg.Log.Format)
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	log.Init(log.Options{LogLevel: level, Type: format, Output: cmd.ErrOrStderr()})
	a.cfg = cfg
	return nil
}

// openProcessor opens the configured store and a processor over it. The
// returned function closes the store.
func (a *app) openProcessor() (*processor.Processor, *token.Ledger, func(), error) {
	var (
		kv  *pebble.KVStore
		err error
	)
	if a.cfg.InMemory {
		kv, err = pebble.NewKVStore()
	} else {
		kv, err = pebble.Open(a.cfg.DataDir)
	}
	if err != nil {
		return nil, nil, nil, fmt.Errorf("open store: %w", err)
	}
	log.CLI.Debug().Str("data_dir", a.cfg.DataDir).Bool("in_memory", a.cfg.InMemory).Msg("store opened")

	program, err := a.cfg.Program()
	if err != nil {
		closeStore(kv)
		return nil, nil, nil, err
	}
	ledger := token.NewLedger(kv)
	p := processor.New(program, kv, ledger,
		processor.WithRent(a.cfg.RentParams()),
		processor.WithLogger(log.Ledger),
	)
	return p, ledger, func() { closeStore(kv) }, nil
}

func closeStore(kv db.KVStore) {
	if err := kv.Close(); err != nil {
		log.CLI.Error().Err(err).Msg("close store")
	}
}

func main() {
	if err := newRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}
