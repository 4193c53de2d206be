package xdg

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"runtime"
	"strings"

	"github.com/bnema/mwa-bridge/internal/ports"
)

var (
	ErrUnavailable         = errors.New("platform command unavailable")
	ErrUnsupportedPlatform = errors.New("handler lookup unsupported on this platform")
)

type startFunc func(name string, args ...string) error

// Opener activates URIs through the desktop's default handler command.
type Opener struct {
	command []string
	start   startFunc
}

var _ ports.URIOpener = (*Opener)(nil)

// NewOpener uses command when set (split on whitespace, the URI appended as the
// last argument), otherwise the default opener for the running OS.
func NewOpener(command string) *Opener {
	argv := strings.Fields(command)
	if len(argv) == 0 {
		argv = defaultOpenCommand(runtime.GOOS)
	}

	return &Opener{command: argv, start: startDetached}
}

func (o *Opener) Open(ctx context.Context, uri string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if len(o.command) == 0 {
		return ErrUnavailable
	}

	args := append(append([]string{}, o.command[1:]...), uri)
	if err := o.start(o.command[0], args...); err != nil {
		return fmt.Errorf("open uri with %s: %w", o.command[0], err)
	}

	return nil
}

func defaultOpenCommand(goos string) []string {
	switch goos {
	case "darwin":
		return []string{"open"}
	case "windows":
		return []string{"rundll32", "url.dll,FileProtocolHandler"}
	default:
		return []string{"xdg-open"}
	}
}

// startDetached launches the handler without waiting for it; the process is
// reaped in the background.
func startDetached(name string, args ...string) error {
	path, err := exec.LookPath(name)
	if err != nil {
		if errors.Is(err, exec.ErrNotFound) {
			return fmt.Errorf("%w: %s", ErrUnavailable, name)
		}
		return fmt.Errorf("locate %s: %w", name, err)
	}

	cmd := exec.Command(path, args...)
	if err := cmd.Start(); err != nil {
		return err
	}

	go func() { _ = cmd.Wait() }()
	return nil
}
