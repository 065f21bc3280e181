// Package config loads the ledger configuration from an optional YAML file
// and VESTING_* environment variables.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"github.com/eigerco/vesting/internal/crypto"
	"github.com/eigerco/vesting/internal/rent"
)

const EnvPrefix = "VESTING"

type Config struct {
	DataDir   string `mapstructure:"data-dir"`
	InMemory  bool   `mapstructure:"in-memory"`
	ProgramID string `mapstructure:"program-id"`
	Log       Log    `mapstructure:"log"`
	Rent      Rent   `mapstructure:"rent"`
}

type Log struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type Rent struct {
	LamportsPerByteYear uint64  `mapstructure:"lamports-per-byte-year"`
	ExemptionThreshold  float64 `mapstructure:"exemption-threshold"`
}

// New returns a viper instance with defaults and environment bindings set.
// Flags may be bound to it before Load.
func New() *viper.Viper {
	v := viper.New()
	v.SetDefault("data-dir", "./data")
	v.SetDefault("in-memory", false)
	v.SetDefault("program-id", "")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
	v.SetDefault("rent.lamports-per-byte-year", rent.DefaultLamportsPerByteYear)
	v.SetDefault("rent.exemption-threshold", rent.DefaultExemptionThreshold)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	v.AutomaticEnv()
	return v
}

// Load reads file, when given, and decodes the merged settings.
func Load(v *viper.Viper, file string) (*Config, error) {
	if file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read: %w", err)
		}
	}

	c := new(Config)
	if err := v.Unmarshal(c); err != nil {
		return nil, fmt.Errorf("unmarshal: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate: %w", err)
	}
	return c, nil
}

func (c *Config) Validate() error {
	if !c.InMemory && c.DataDir == "" {
		return errors.New("data-dir is required unless in-memory is set")
	}
	if c.Rent.ExemptionThreshold < 0 {
		return errors.New("rent exemption threshold must not be negative")
	}
	if _, err := c.Program(); err != nil {
		return err
	}
	return nil
}

// Program returns the configured program identity, or the zero identity
// when none is set.
func (c *Config) Program() (crypto.Identity, error) {
	if c.ProgramID == "" {
		return crypto.Identity{}, nil
	}
	id, err := crypto.ParseIdentity(c.ProgramID)
	if err != nil {
		return crypto.Identity{}, fmt.Errorf("program-id: %w", err)
	}
	return id, nil
}

func (c *Config) RentParams() rent.Rent {
	return rent.Rent{
		LamportsPerByteYear: c.Rent.LamportsPerByteYear,
		ExemptionThreshold:  c.Rent.ExemptionThreshold,
	}
}
