package config

import (
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"github.com/stellar/go/network"
)

// DecodeConfig holds configuration for the decode command.
type DecodeConfig struct {
	In                string
	NetworkPassphrase string
	Out               string
	Failures          string
	LogLevel          string
}

// LoadDecode merges config file, environment variables, and flags into DecodeConfig.
func LoadDecode(cfgFile string, flags *pflag.FlagSet) (DecodeConfig, error) {
	v, err := newViper(cfgFile, flags, func(v *viper.Viper) {
		v.SetDefault("network-passphrase", network.PublicNetworkPassphrase)
		v.SetDefault("out", "./data/decoded.jsonl")
		v.SetDefault("failures", "./data/store_failures.jsonl")
		v.SetDefault("log-level", "info")
	})
	if err != nil {
		return DecodeConfig{}, err
	}

	return DecodeConfig{
		In:                v.GetString("in"),
		NetworkPassphrase: v.GetString("network-passphrase"),
		Out:               v.GetString("out"),
		Failures:          v.GetString("failures"),
		LogLevel:          v.GetString("log-level"),
	}, nil
}

// MigrateConfig holds configuration for the migrate command.
type MigrateConfig struct {
	Sink       string
	PGDSN      string
	SQLitePath string
	LogLevel   string
}

// LoadMigrate merges config file, environment variables, and flags into MigrateConfig.
func LoadMigrate(cfgFile string, flags *pflag.FlagSet) (MigrateConfig, error) {
	v, err := newViper(cfgFile, flags, func(v *viper.Viper) {
		v.SetDefault("sink", SinkPostgres)
		v.SetDefault("sqlite-path", "./data/governor.db")
		v.SetDefault("log-level", "info")
	})
	if err != nil {
		return MigrateConfig{}, err
	}

	return MigrateConfig{
		Sink:       v.GetString("sink"),
		PGDSN:      v.GetString("pg-dsn"),
		SQLitePath: v.GetString("sqlite-path"),
		LogLevel:   v.GetString("log-level"),
	}, nil
}
