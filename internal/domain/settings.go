package domain

import "strings"

const DefaultWalletScheme = "solana-wallet"

type Settings struct {
	Log      LogSettings
	Wallet   WalletSettings
	Launcher LauncherSettings
	Metrics  MetricsSettings
}

type LogSettings struct {
	Level  string
	Format string
}

type WalletSettings struct {
	Scheme string
}

type LauncherSettings struct {
	Opener        string
	RatePerSecond float64
	Burst         int
}

type MetricsSettings struct {
	Listen string
}

func DefaultSettings() Settings {
	return Settings{
		Log:      LogSettings{Level: "info", Format: "console"},
		Wallet:   WalletSettings{Scheme: DefaultWalletScheme},
		Launcher: LauncherSettings{Burst: 1},
	}
}

// EndpointURI is the URI looked up to decide whether a wallet endpoint is installed.
func (w WalletSettings) EndpointURI() string {
	scheme := strings.TrimSuffix(strings.TrimSpace(w.Scheme), ":")
	if scheme == "" {
		scheme = DefaultWalletScheme
	}
	return scheme + ":/"
}
