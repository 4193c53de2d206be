package ports

import "context"

// URIOpener hands a URI to the platform's default external handler. It
// returns once the hand-off started, not when the handler finished.
type URIOpener interface {
	Open(ctx context.Context, uri string) error
}

type HandlerResolver interface {
	HasHandler(ctx context.Context, uri string) (bool, error)
}
