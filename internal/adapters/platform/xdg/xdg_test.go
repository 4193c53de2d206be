package xdg

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenerAppendsURIToConfiguredCommand(t *testing.T) {
	t.Parallel()

	var gotName string
	var gotArgs []string
	opener := NewOpener("flatpak-spawn --host xdg-open")
	opener.start = func(name string, args ...string) error {
		gotName = name
		gotArgs = args
		return nil
	}

	err := opener.Open(context.Background(), "solana-wallet:/v1/associate/local?port=1")
	require.NoError(t, err)
	assert.Equal(t, "flatpak-spawn", gotName)
	assert.Equal(t, []string{"--host", "xdg-open", "solana-wallet:/v1/associate/local?port=1"}, gotArgs)

	require.NoError(t, opener.Open(context.Background(), "solana-wallet:/second"))
	assert.Equal(t, []string{"--host", "xdg-open", "solana-wallet:/second"}, gotArgs)
}

func TestOpenerWrapsStartFailure(t *testing.T) {
	t.Parallel()

	opener := &Opener{
		command: []string{"xdg-open"},
		start: func(string, ...string) error {
			return ErrUnavailable
		},
	}

	err := opener.Open(context.Background(), "solana-wallet:/")
	require.ErrorIs(t, err, ErrUnavailable)
	assert.Contains(t, err.Error(), "xdg-open")
}

func TestOpenerHonoursCanceledContext(t *testing.T) {
	t.Parallel()

	started := false
	opener := &Opener{command: []string{"xdg-open"}, start: func(string, ...string) error {
		started = true
		return nil
	}}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	require.ErrorIs(t, opener.Open(ctx, "solana-wallet:/"), context.Canceled)
	assert.False(t, started)
}

func TestDefaultOpenCommand(t *testing.T) {
	t.Parallel()

	assert.Equal(t, []string{"xdg-open"}, defaultOpenCommand("linux"))
	assert.Equal(t, []string{"open"}, defaultOpenCommand("darwin"))
	assert.Equal(t, []string{"rundll32", "url.dll,FileProtocolHandler"}, defaultOpenCommand("windows"))
}

func TestResolverQueriesSchemeHandler(t *testing.T) {
	t.Parallel()

	resolver := &Resolver{
		goos: "linux",
		run: func(_ context.Context, name string, args ...string) (string, string, error) {
			assert.Equal(t, "xdg-mime", name)
			assert.Equal(t, []string{"query", "default", "x-scheme-handler/solana-wallet"}, args)
			return "fakewallet.desktop\n", "", nil
		},
	}

	available, err := resolver.HasHandler(context.Background(), "solana-wallet:/")
	require.NoError(t, err)
	assert.True(t, available)
}

func TestResolverEmptyAnswerMeansNoHandler(t *testing.T) {
	t.Parallel()

	resolver := &Resolver{goos: "linux", run: func(context.Context, string, ...string) (string, string, error) {
		return "\n", "", nil
	}}

	available, err := resolver.HasHandler(context.Background(), "solana-wallet:/")
	require.NoError(t, err)
	assert.False(t, available)
}

func TestResolverFormatsCommandFailure(t *testing.T) {
	t.Parallel()

	resolver := &Resolver{goos: "linux", run: func(context.Context, string, ...string) (string, string, error) {
		return "", "no mime database", errors.New("exit status 4")
	}}

	_, err := resolver.HasHandler(context.Background(), "solana-wallet:/")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "exit status 4: no mime database")
}

func TestResolverUnsupportedPlatform(t *testing.T) {
	t.Parallel()

	called := false
	resolver := &Resolver{goos: "darwin", run: func(context.Context, string, ...string) (string, string, error) {
		called = true
		return "", "", nil
	}}

	_, err := resolver.HasHandler(context.Background(), "solana-wallet:/")
	require.ErrorIs(t, err, ErrUnsupportedPlatform)
	assert.False(t, called)
}

func TestResolverRejectsSchemelessURI(t *testing.T) {
	t.Parallel()

	resolver := &Resolver{goos: "linux", run: func(context.Context, string, ...string) (string, string, error) {
		t.Fatal("command must not run")
		return "", "", nil
	}}

	_, err := resolver.HasHandler(context.Background(), "wallet")
	require.Error(t, err)
}
