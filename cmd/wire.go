package cmd

import (
	"fmt"
	"time"

	configstore "github.com/bnema/mwa-bridge/internal/adapters/config/toml"
	"github.com/bnema/mwa-bridge/internal/adapters/metrics/prom"
	"github.com/bnema/mwa-bridge/internal/adapters/platform/xdg"
	"github.com/bnema/mwa-bridge/internal/application"
	"github.com/bnema/mwa-bridge/internal/domain"
	"github.com/bnema/mwa-bridge/internal/logging"
	"github.com/bnema/mwa-bridge/internal/ports"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

type rootFlags struct {
	configDir string
	logLevel  string
}

type app struct {
	flags rootFlags

	settings    domain.Settings
	configStore *configstore.Store
	logger      zerolog.Logger
	registry    *prometheus.Registry
	metrics     *prom.Metrics
	launcher    *application.Launcher
	opener      ports.URIOpener
	resolver    ports.HandlerResolver
	clock       ports.Clock
	now         func() time.Time
}

func (a *app) wire(cmd *cobra.Command) error {
	configDir := a.flags.configDir
	if configDir == "" {
		dir, err := configstore.DefaultDir()
		if err != nil {
			return err
		}
		configDir = dir
	}
	a.configStore = configstore.NewStore(viper.New(), configDir)

	settings, err := a.configStore.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if a.flags.logLevel != "" {
		settings.Log.Level = a.flags.logLevel
	}
	a.settings = settings

	logger, err := logging.New(cmd.ErrOrStderr(), settings.Log.Level, settings.Log.Format)
	if err != nil {
		return fmt.Errorf("wire logger: %w", err)
	}
	a.logger = logger

	a.registry = prometheus.NewRegistry()
	metrics, err := prom.New(a.registry)
	if err != nil {
		return fmt.Errorf("wire metrics: %w", err)
	}
	a.metrics = metrics

	a.clock = ports.SystemClock{}
	a.now = time.Now
	a.opener = xdg.NewOpener(settings.Launcher.Opener)
	a.resolver = xdg.NewResolver()
	a.launcher = application.NewLauncher(
		settings.Wallet.EndpointURI(),
		application.NewLaunchLimiter(settings.Launcher),
		metrics,
		logger,
	)

	return nil
}
