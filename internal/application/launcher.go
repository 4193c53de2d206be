package application

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"sync"

	"github.com/bnema/mwa-bridge/internal/domain"
	"github.com/bnema/mwa-bridge/internal/ports"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

var (
	errNoPlatform    = errors.New("no platform attached")
	errLaunchLimited = errors.New("launch rate exceeded")
)

// Launcher hands URIs to the platform's external handler and checks whether a
// wallet endpoint is installed. The platform is attached and detached with the
// host's foreground lifecycle.
type Launcher struct {
	endpointURI string
	limiter     *rate.Limiter
	metrics     ports.LauncherMetrics
	logger      zerolog.Logger

	mu       sync.RWMutex
	opener   ports.URIOpener
	resolver ports.HandlerResolver
}

// NewLauncher builds a launcher probing endpointURI. A nil limiter disables
// launch throttling.
func NewLauncher(endpointURI string, limiter *rate.Limiter, metrics ports.LauncherMetrics, logger zerolog.Logger) *Launcher {
	if endpointURI == "" {
		endpointURI = domain.WalletSettings{}.EndpointURI()
	}
	if metrics == nil {
		metrics = ports.NopMetrics{}
	}

	return &Launcher{
		endpointURI: endpointURI,
		limiter:     limiter,
		metrics:     metrics,
		logger:      logger.With().Str("component", "launcher").Logger(),
	}
}

func NewLaunchLimiter(settings domain.LauncherSettings) *rate.Limiter {
	if settings.RatePerSecond <= 0 {
		return nil
	}
	burst := settings.Burst
	if burst < 1 {
		burst = 1
	}
	return rate.NewLimiter(rate.Limit(settings.RatePerSecond), burst)
}

func (l *Launcher) Attach(opener ports.URIOpener, resolver ports.HandlerResolver) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.opener = opener
	l.resolver = resolver
}

func (l *Launcher) Detach() {
	l.Attach(nil, nil)
}

func (l *Launcher) EndpointURI() string {
	return l.endpointURI
}

// Launch validates uri and asks the platform to open it. It never waits for
// the handler application.
func (l *Launcher) Launch(ctx context.Context, uri string) error {
	if err := validateLaunchURI(uri); err != nil {
		l.metrics.LaunchAttempt(ports.LaunchOutcomeInvalid)
		return err
	}

	if l.limiter != nil && !l.limiter.Allow() {
		l.metrics.LaunchAttempt(ports.LaunchOutcomeThrottled)
		return fmt.Errorf("%w: %w", domain.ErrLaunchFailed, errLaunchLimited)
	}

	l.mu.RLock()
	opener := l.opener
	l.mu.RUnlock()

	if opener == nil {
		l.metrics.LaunchAttempt(ports.LaunchOutcomeFailed)
		return fmt.Errorf("%w: %w", domain.ErrLaunchFailed, errNoPlatform)
	}

	if err := opener.Open(ctx, uri); err != nil {
		l.metrics.LaunchAttempt(ports.LaunchOutcomeFailed)
		l.logger.Warn().Err(err).Str("scheme", uriScheme(uri)).Msg("launch failed")
		return fmt.Errorf("%w: %w", domain.ErrLaunchFailed, err)
	}

	l.metrics.LaunchAttempt(ports.LaunchOutcomeOK)
	l.logger.Debug().Str("scheme", uriScheme(uri)).Msg("uri handed to platform")
	return nil
}

// IsEndpointAvailable reports whether a handler is registered for the wallet
// endpoint URI. Failures collapse to false.
func (l *Launcher) IsEndpointAvailable(ctx context.Context) bool {
	l.mu.RLock()
	resolver := l.resolver
	l.mu.RUnlock()

	if resolver == nil {
		return false
	}

	available, err := resolver.HasHandler(ctx, l.endpointURI)
	if err != nil {
		l.logger.Debug().Err(err).Str("uri", l.endpointURI).Msg("endpoint lookup failed")
		return false
	}

	return available
}

func validateLaunchURI(uri string) error {
	if strings.TrimSpace(uri) == "" {
		return fmt.Errorf("launch: uri is required: %w", domain.ErrInvalidArgument)
	}

	parsed, err := url.Parse(uri)
	if err != nil {
		return fmt.Errorf("launch: parse uri: %v: %w", err, domain.ErrInvalidArgument)
	}
	if parsed.Scheme == "" {
		return fmt.Errorf("launch: uri %q has no scheme: %w", uri, domain.ErrInvalidArgument)
	}

	return nil
}

// uriScheme keeps URI payloads out of logs; association tokens travel in the
// query string.
func uriScheme(uri string) string {
	parsed, err := url.Parse(uri)
	if err != nil {
		return ""
	}
	return parsed.Scheme
}
