package toml

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/bnema/mwa-bridge/internal/domain"
	toml "github.com/pelletier/go-toml/v2"
	"github.com/spf13/viper"
)

const (
	configName      = "config"
	configType      = "toml"
	configFile      = configName + "." + configType
	configFileMode  = 0o600
	configDirMode   = 0o700
	envPrefix       = "MWA"
	tempFilePattern = ".config-*.toml.tmp"

	versionKey               = "version"
	logLevelKey              = "log.level"
	logFormatKey             = "log.format"
	walletSchemeKey          = "wallet.scheme"
	launcherOpenerKey        = "launcher.opener"
	launcherRatePerSecondKey = "launcher.rate_per_second"
	launcherBurstKey         = "launcher.burst"
	metricsListenKey         = "metrics.listen"
)

var ErrConfigExists = errors.New("config file already exists")

// Store loads bridge settings from config.toml in dir, with MWA_* environment
// overrides, and writes the initial file.
type Store struct {
	dir string
	cfg *viper.Viper
}

func NewStore(cfg *viper.Viper, dir string) *Store {
	if cfg == nil {
		cfg = viper.New()
	}

	return &Store{dir: dir, cfg: cfg}
}

// DefaultDir is ~/.config/mwa.
func DefaultDir() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home directory: %w", err)
	}

	return filepath.Join(homeDir, ".config", "mwa"), nil
}

func (s *Store) Path() string {
	return filepath.Join(s.dir, configFile)
}

func (s *Store) Load() (domain.Settings, error) {
	defaults := domain.DefaultSettings()

	s.cfg.SetConfigName(configName)
	s.cfg.SetConfigType(configType)
	s.cfg.AddConfigPath(s.dir)
	s.cfg.SetEnvPrefix(envPrefix)
	s.cfg.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	s.cfg.AutomaticEnv()

	s.cfg.SetDefault(versionKey, currentSchemaVersion)
	s.cfg.SetDefault(logLevelKey, defaults.Log.Level)
	s.cfg.SetDefault(logFormatKey, defaults.Log.Format)
	s.cfg.SetDefault(walletSchemeKey, defaults.Wallet.Scheme)
	s.cfg.SetDefault(launcherOpenerKey, defaults.Launcher.Opener)
	s.cfg.SetDefault(launcherRatePerSecondKey, defaults.Launcher.RatePerSecond)
	s.cfg.SetDefault(launcherBurstKey, defaults.Launcher.Burst)
	s.cfg.SetDefault(metricsListenKey, defaults.Metrics.Listen)

	if err := s.cfg.ReadInConfig(); err != nil {
		var configNotFound viper.ConfigFileNotFoundError
		if !errors.As(err, &configNotFound) {
			return domain.Settings{}, fmt.Errorf("read config file: %w", err)
		}
	}

	if err := validateVersion(s.cfg.GetInt(versionKey)); err != nil {
		return domain.Settings{}, err
	}

	settings := domain.Settings{
		Log: domain.LogSettings{
			Level:  s.cfg.GetString(logLevelKey),
			Format: s.cfg.GetString(logFormatKey),
		},
		Wallet: domain.WalletSettings{Scheme: s.cfg.GetString(walletSchemeKey)},
		Launcher: domain.LauncherSettings{
			Opener:        s.cfg.GetString(launcherOpenerKey),
			RatePerSecond: s.cfg.GetFloat64(launcherRatePerSecondKey),
			Burst:         s.cfg.GetInt(launcherBurstKey),
		},
		Metrics: domain.MetricsSettings{Listen: s.cfg.GetString(metricsListenKey)},
	}
	if settings.Launcher.RatePerSecond < 0 {
		return domain.Settings{}, fmt.Errorf("%s must not be negative", launcherRatePerSecondKey)
	}

	return settings, nil
}

// Init writes settings to config.toml. An existing file is kept unless
// overwrite is set.
func (s *Store) Init(settings domain.Settings, overwrite bool) error {
	path := s.Path()
	if !overwrite {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("%w: %s", ErrConfigExists, path)
		} else if !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("stat config file: %w", err)
		}
	}

	file := toSchema(settings)
	file.applyDefaults()

	return writeFile(path, file)
}

// Encode renders settings the way Init writes them.
func Encode(settings domain.Settings) ([]byte, error) {
	data, err := toml.Marshal(toSchema(settings))
	if err != nil {
		return nil, fmt.Errorf("encode config file: %w", err)
	}
	return data, nil
}

func writeFile(path string, file fileSchema) error {
	if err := os.MkdirAll(filepath.Dir(path), configDirMode); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}

	data, err := toml.Marshal(file)
	if err != nil {
		return fmt.Errorf("encode config file: %w", err)
	}

	tempFile, err := os.CreateTemp(filepath.Dir(path), tempFilePattern)
	if err != nil {
		return fmt.Errorf("create temp config file: %w", err)
	}

	tempName := tempFile.Name()
	cleanup := true
	defer func() {
		if cleanup {
			_ = os.Remove(tempName)
		}
	}()

	if _, err := tempFile.Write(data); err != nil {
		_ = tempFile.Close()
		return fmt.Errorf("write temp config file: %w", err)
	}

	if err := tempFile.Chmod(configFileMode); err != nil {
		_ = tempFile.Close()
		return fmt.Errorf("chmod temp config file: %w", err)
	}

	if err := tempFile.Close(); err != nil {
		return fmt.Errorf("close temp config file: %w", err)
	}

	if err := os.Rename(tempName, path); err != nil {
		return fmt.Errorf("replace config file: %w", err)
	}

	cleanup = false
	return nil
}
