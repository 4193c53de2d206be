package channel

import (
	"github.com/bnema/mwa-bridge/internal/domain"
	"github.com/bnema/mwa-bridge/internal/ports"
	"github.com/rs/zerolog"
)

const CodeInternal = "INTERNAL"

// Notifier publishes registry notifications on one channel of a Conn.
type Notifier struct {
	conn    *Conn
	channel string
	logger  zerolog.Logger
}

var _ ports.Notifier = (*Notifier)(nil)

func NewNotifier(conn *Conn, channel string) *Notifier {
	return &Notifier{conn: conn, channel: channel, logger: conn.logger}
}

func (n *Notifier) Notify(notification domain.Notification) {
	if err := n.conn.Invoke(n.channel, notification.Method, notification.Args); err != nil {
		n.logger.Error().Err(err).Str("method", notification.Method).Msg("notification not delivered")
	}
}
