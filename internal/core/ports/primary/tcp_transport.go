package primary

import (
	"context"
	"net"
)

// MessageHandler handles one decoded frame of a given message type and writes the
// reply frame(s) to conn.
type MessageHandler interface {
	HandleMessage(ctx context.Context, conn net.Conn, payload []byte) error
}
