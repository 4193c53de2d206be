package ports

import "github.com/bnema/mwa-bridge/internal/domain"

// Notifier delivers notifications to the consumer layer. Calls from a single
// goroutine must be delivered in order.
type Notifier interface {
	Notify(n domain.Notification)
}

type NotifierFunc func(n domain.Notification)

func (f NotifierFunc) Notify(n domain.Notification) {
	f(n)
}
