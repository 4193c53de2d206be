package bridge

import (
	"context"
	"sync"

	"github.com/bnema/mwa-bridge/internal/adapters/channel"
	"github.com/bnema/mwa-bridge/internal/application"
	"github.com/bnema/mwa-bridge/internal/ports"
	"github.com/rs/zerolog"
)

const ClientChannel = "com.solana.solanakit.mobilewallet/client"

type Plugin struct {
	launcher *application.Launcher
	metrics  ports.RegistryMetrics
	clock    ports.Clock
	logger   zerolog.Logger

	mu     sync.Mutex
	conn   *channel.Conn
	wallet *WalletAPI
}

func NewPlugin(launcher *application.Launcher, metrics ports.RegistryMetrics, clock ports.Clock, logger zerolog.Logger) *Plugin {
	return &Plugin{
		launcher: launcher,
		metrics:  metrics,
		clock:    clock,
		logger:   logger.With().Str("component", "plugin").Logger(),
	}
}

// OnAttachedToEngine registers both channels on conn with a fresh registry.
// Attaching again first detaches the previous engine.
func (p *Plugin) OnAttachedToEngine(conn *channel.Conn) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.detachLocked()

	p.conn = conn
	conn.SetHandler(ClientChannel, p)
	p.wallet = NewWalletAPI(conn, p.metrics, p.clock, p.logger)
	p.wallet.Register()

	p.logger.Debug().Msg("attached to engine")
}

func (p *Plugin) OnDetachedFromEngine() {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.detachLocked()
}

// detachLocked requires p.mu.
func (p *Plugin) detachLocked() {
	if p.conn == nil {
		return
	}

	p.conn.SetHandler(ClientChannel, nil)
	p.wallet.Unregister()
	p.conn = nil
	p.wallet = nil

	p.logger.Debug().Msg("detached from engine")
}

// OnAttachedToActivity binds the platform used for launches and endpoint
// lookups.
func (p *Plugin) OnAttachedToActivity(opener ports.URIOpener, resolver ports.HandlerResolver) {
	p.launcher.Attach(opener, resolver)
}

func (p *Plugin) OnDetachedFromActivity() {
	p.launcher.Detach()
}

// WalletAPI returns the wallet side of the current attachment, or nil when
// detached.
func (p *Plugin) WalletAPI() *WalletAPI {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.wallet
}

func (p *Plugin) HandleCall(ctx context.Context, call channel.Call, result channel.Result) {
	switch call.Method {
	case "launchIntent":
		uri, ok := call.StringArg("uri")
		if !ok {
			result.Error(CodeInvalidArgument, "URI is required")
			return
		}
		if err := p.launcher.Launch(ctx, uri); err != nil {
			replyError(result, err)
			return
		}
		result.Success(nil)
	case "isWalletEndpointAvailable":
		result.Success(p.launcher.IsEndpointAvailable(ctx))
	default:
		result.NotImplemented()
	}
}
