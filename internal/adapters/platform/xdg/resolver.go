package xdg

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/url"
	"os/exec"
	"runtime"
	"strings"

	"github.com/bnema/mwa-bridge/internal/ports"
)

type runFunc func(ctx context.Context, name string, args ...string) (stdout string, stderr string, err error)

// Resolver asks the freedesktop MIME database whether a scheme handler is
// registered.
type Resolver struct {
	goos string
	run  runFunc
}

var _ ports.HandlerResolver = (*Resolver)(nil)

func NewResolver() *Resolver {
	return &Resolver{goos: runtime.GOOS, run: runCommand}
}

func (r *Resolver) HasHandler(ctx context.Context, uri string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	parsed, err := url.Parse(uri)
	if err != nil {
		return false, fmt.Errorf("parse uri: %w", err)
	}
	if parsed.Scheme == "" {
		return false, fmt.Errorf("uri %q has no scheme", uri)
	}

	switch r.goos {
	case "linux", "freebsd", "openbsd", "netbsd", "dragonfly":
	default:
		return false, ErrUnsupportedPlatform
	}

	mimeType := "x-scheme-handler/" + strings.ToLower(parsed.Scheme)
	stdout, stderr, err := r.run(ctx, "xdg-mime", "query", "default", mimeType)
	if err != nil {
		return false, formatError(mimeType, err, stderr)
	}

	return strings.TrimSpace(stdout) != "", nil
}

func runCommand(ctx context.Context, name string, args ...string) (string, string, error) {
	path, err := exec.LookPath(name)
	if err != nil {
		if errors.Is(err, exec.ErrNotFound) {
			return "", "", ErrUnavailable
		}
		return "", "", fmt.Errorf("locate %s: %w", name, err)
	}

	cmd := exec.CommandContext(ctx, path, args...)

	var stdout bytes.Buffer
	var stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err = cmd.Run()
	return stdout.String(), strings.TrimSpace(stderr.String()), err
}

func formatError(mimeType string, err error, stderr string) error {
	if stderr == "" {
		return fmt.Errorf("xdg-mime query %q: %w", mimeType, err)
	}

	return fmt.Errorf("xdg-mime query %q: %w: %s", mimeType, err, stderr)
}
