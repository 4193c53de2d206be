package toml

import (
	"fmt"

	"github.com/bnema/mwa-bridge/internal/domain"
)

const currentSchemaVersion = 1

type fileSchema struct {
	Version  int            `toml:"version"`
	Log      logSchema      `toml:"log"`
	Wallet   walletSchema   `toml:"wallet"`
	Launcher launcherSchema `toml:"launcher"`
	Metrics  metricsSchema  `toml:"metrics"`
}

type logSchema struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

type walletSchema struct {
	Scheme string `toml:"scheme"`
}

type launcherSchema struct {
	Opener        string  `toml:"opener"`
	RatePerSecond float64 `toml:"rate_per_second"`
	Burst         int     `toml:"burst"`
}

type metricsSchema struct {
	Listen string `toml:"listen"`
}

func (s *fileSchema) applyDefaults() {
	if s.Version == 0 {
		s.Version = currentSchemaVersion
	}
}

func validateVersion(version int) error {
	if version > currentSchemaVersion {
		return fmt.Errorf("unsupported config schema version %d (current %d)", version, currentSchemaVersion)
	}

	return nil
}

func toSchema(settings domain.Settings) fileSchema {
	return fileSchema{
		Version: currentSchemaVersion,
		Log: logSchema{
			Level:  settings.Log.Level,
			Format: settings.Log.Format,
		},
		Wallet: walletSchema{Scheme: settings.Wallet.Scheme},
		Launcher: launcherSchema{
			Opener:        settings.Launcher.Opener,
			RatePerSecond: settings.Launcher.RatePerSecond,
			Burst:         settings.Launcher.Burst,
		},
		Metrics: metricsSchema{Listen: settings.Metrics.Listen},
	}
}
