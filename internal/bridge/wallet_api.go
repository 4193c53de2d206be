package bridge

import (
	"context"

	"github.com/bnema/mwa-bridge/internal/adapters/channel"
	"github.com/bnema/mwa-bridge/internal/application"
	"github.com/bnema/mwa-bridge/internal/domain"
	"github.com/bnema/mwa-bridge/internal/ports"
	"github.com/rs/zerolog"
)

const WalletChannel = "com.solana.solanakit.mobilewallet/wallet"

// WalletAPI serves the wallet channel for one engine attachment and owns that
// attachment's registry.
type WalletAPI struct {
	conn     *channel.Conn
	registry *application.Registry
	logger   zerolog.Logger
}

func NewWalletAPI(conn *channel.Conn, metrics ports.RegistryMetrics, clock ports.Clock, logger zerolog.Logger) *WalletAPI {
	return &WalletAPI{
		conn:     conn,
		registry: application.NewRegistry(channel.NewNotifier(conn, WalletChannel), metrics, clock, logger),
		logger:   logger.With().Str("channel", WalletChannel).Logger(),
	}
}

func (w *WalletAPI) Register() {
	w.conn.SetHandler(WalletChannel, w)
}

// Unregister detaches the handler and tears the registry down; parked
// completion actions are dropped.
func (w *WalletAPI) Unregister() {
	w.conn.SetHandler(WalletChannel, nil)
	w.registry.Teardown()
}

func (w *WalletAPI) Registry() *application.Registry {
	return w.registry
}

// ForwardRequest is the entry point for the native wallet-session
// collaborator. onResult runs at most once, when the consumer resolves.
func (w *WalletAPI) ForwardRequest(methodName string, sessionID domain.SessionID, paramsJSON string, onResult domain.CompletionFunc) domain.RequestID {
	return w.registry.ForwardRequest(methodName, sessionID, paramsJSON, onResult)
}

func (w *WalletAPI) SendLifecycleEvent(methodName string, sessionID domain.SessionID, errMessage string) {
	w.registry.SendLifecycleEvent(methodName, sessionID, errMessage)
}

func (w *WalletAPI) HandleCall(_ context.Context, call channel.Call, result channel.Result) {
	switch call.Method {
	case "createScenario":
		w.createScenario(call, result)
	case "startScenario":
		w.startScenario(call, result)
	case "closeScenario":
		if sessionID, ok := call.StringArg(domain.ArgSessionID); ok {
			w.registry.CloseSession(domain.SessionID(sessionID))
		}
		result.Success(nil)
	case "resolveRequest":
		w.resolveRequest(call, result)
	default:
		result.NotImplemented()
	}
}

func (w *WalletAPI) createScenario(call channel.Call, result channel.Result) {
	walletName, okName := call.StringArg("walletName")
	configJSON, okConfig := call.StringArg("configJson")
	if !okName || !okConfig {
		result.Error(CodeInvalidArgument, "walletName and configJson are required")
		return
	}

	result.Success(string(w.registry.CreateSession(walletName, configJSON)))
}

func (w *WalletAPI) startScenario(call channel.Call, result channel.Result) {
	sessionID, ok := call.StringArg(domain.ArgSessionID)
	if !ok {
		result.Error(CodeInvalidSession, "Invalid session ID")
		return
	}

	if err := w.registry.StartSession(domain.SessionID(sessionID)); err != nil {
		result.Error(errorCode(err), "Invalid session ID")
		return
	}

	result.Success(nil)
}

func (w *WalletAPI) resolveRequest(call channel.Call, result channel.Result) {
	requestID, okID := call.StringArg(domain.ArgRequestID)
	resultJSON, okResult := call.StringArg("resultJson")
	if !okID || !okResult {
		result.Error(CodeInvalidArgument, "requestId and resultJson are required")
		return
	}

	w.registry.ResolveRequest(domain.RequestID(requestID), resultJSON)
	result.Success(nil)
}
