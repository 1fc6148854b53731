package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"github.com/stellar/go/network"
)

// Sink names accepted by the run command.
const (
	SinkPostgres = "postgres"
	SinkSQLite   = "sqlite"
	SinkJSONL    = "jsonl"
	SinkMemory   = "memory"
)

// Config holds configuration values loaded from flags, env, or config file.
type Config struct {
	In                string
	NetworkPassphrase string
	Sink              string
	PGDSN             string
	SQLitePath        string
	JSONLOut          string
	Failures          string
	Checkpoint        string
	CheckpointEnabled bool
	FromLedger        uint32
	ToLedger          uint32
	MaxRetries        int
	RetryBackoff      time.Duration
	MetricsAddr       string
	LogLevel          string
}

// Load merges config file, environment variables, and flags into Config.
func Load(cfgFile string, flags *pflag.FlagSet) (Config, error) {
	v, err := newViper(cfgFile, flags, func(v *viper.Viper) {
		v.SetDefault("network-passphrase", network.PublicNetworkPassphrase)
		v.SetDefault("sink", SinkPostgres)
		v.SetDefault("sqlite-path", "./data/governor.db")
		v.SetDefault("jsonl-out", "./data/governor.jsonl")
		v.SetDefault("failures", "./data/store_failures.jsonl")
		v.SetDefault("checkpoint", "./data/checkpoint.json")
		v.SetDefault("checkpoint-enabled", true)
		v.SetDefault("max-retries", 5)
		v.SetDefault("retry-backoff", 500*time.Millisecond)
		v.SetDefault("log-level", "info")
	})
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		In:                v.GetString("in"),
		NetworkPassphrase: v.GetString("network-passphrase"),
		Sink:              strings.ToLower(strings.TrimSpace(v.GetString("sink"))),
		PGDSN:             v.GetString("pg-dsn"),
		SQLitePath:        v.GetString("sqlite-path"),
		JSONLOut:          v.GetString("jsonl-out"),
		Failures:          v.GetString("failures"),
		Checkpoint:        v.GetString("checkpoint"),
		CheckpointEnabled: v.GetBool("checkpoint-enabled"),
		FromLedger:        v.GetUint32("from-ledger"),
		ToLedger:          v.GetUint32("to-ledger"),
		MaxRetries:        v.GetInt("max-retries"),
		RetryBackoff:      v.GetDuration("retry-backoff"),
		MetricsAddr:       v.GetString("metrics-addr"),
		LogLevel:          v.GetString("log-level"),
	}

	return cfg, nil
}

// Validate checks the settings the run command needs.
func (c Config) Validate() error {
	if c.In == "" {
		return fmt.Errorf("input path is required")
	}
	if c.NetworkPassphrase == "" {
		return fmt.Errorf("network passphrase is required")
	}
	if c.ToLedger != 0 && c.ToLedger < c.FromLedger {
		return fmt.Errorf("to-ledger must be >= from-ledger")
	}
	switch c.Sink {
	case SinkPostgres:
		if c.PGDSN == "" {
			return fmt.Errorf("pg dsn is required for sink %q", c.Sink)
		}
	case SinkSQLite:
		if c.SQLitePath == "" {
			return fmt.Errorf("sqlite path is required for sink %q", c.Sink)
		}
	case SinkJSONL:
		if c.JSONLOut == "" {
			return fmt.Errorf("jsonl output path is required for sink %q", c.Sink)
		}
	case SinkMemory:
	default:
		return fmt.Errorf("unsupported sink: %s", c.Sink)
	}
	return nil
}

func newViper(cfgFile string, flags *pflag.FlagSet, defaults func(*viper.Viper)) (*viper.Viper, error) {
	v := viper.New()
	v.SetEnvPrefix("GOVERNOR")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if defaults != nil {
		defaults(v)
	}

	if flags != nil {
		if err := v.BindPFlags(flags); err != nil {
			return nil, fmt.Errorf("bind flags: %w", err)
		}
	}

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return nil, fmt.Errorf("read config: %w", err)
			}
		}
	}
	return v, nil
}
