package domain

import "time"

// CompletionFunc delivers a resolved result payload back to whoever forwarded
// the request. The registry calls it at most once.
type CompletionFunc func(result string)

type Session struct {
	ID         SessionID
	WalletName string
	Config     string
	CreatedAt  time.Time
}

type PendingRequest struct {
	ID        RequestID
	SessionID SessionID
	Method    string
	CreatedAt time.Time
}

type RegistrySnapshot struct {
	Sessions []Session
	Pending  []PendingRequest
}
