package connectionmanager

import (
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"sync"

	"github.com/google/uuid"

	"gitlab.com/fcv-judge.net/internal/core/ports/primary"
	"gitlab.com/fcv-judge.net/internal/handlers/response"
	"gitlab.com/fcv-judge.net/internal/tcp/defs"
)

var (
	ErrInvalidMagic    = errors.New("invalid magic number")
	ErrPayloadTooLarge = errors.New("payload too large")
)

// ConnectionManager tracks open client connections so they can be closed on shutdown
type ConnectionManager struct {
	connections map[string]net.Conn
	mu          sync.RWMutex
	logger      primary.Logger
}

// NewConnectionManager creates a new connection manager
func NewConnectionManager(logger primary.Logger) *ConnectionManager {
	return &ConnectionManager{
		connections: make(map[string]net.Conn),
		logger:      logger,
	}
}

// Register stores conn and returns the id it was registered under
func (cm *ConnectionManager) Register(conn net.Conn) string {
	id := uuid.NewString()

	cm.mu.Lock()
	cm.connections[id] = conn
	cm.mu.Unlock()

	return id
}

// Remove forgets a connection once it is closed
func (cm *ConnectionManager) Remove(id string) {
	cm.mu.Lock()
	delete(cm.connections, id)
	cm.mu.Unlock()
}

// Count returns the number of open connections
func (cm *ConnectionManager) Count() int {
	cm.mu.RLock()
	defer cm.mu.RUnlock()
	return len(cm.connections)
}

// CloseAll closes every tracked connection
func (cm *ConnectionManager) CloseAll() {
	cm.mu.Lock()
	defer cm.mu.Unlock()

	for id, conn := range cm.connections {
		if err := conn.Close(); err != nil && !errors.Is(err, net.ErrClosed) {
			cm.logger.Error("Failed to close connection", "connectionID", id, "error", err)
		}
		delete(cm.connections, id)
	}
}

// SendErrorMessage sends an Error frame carrying a failure body
func SendErrorMessage(conn net.Conn, kind, message string) error {
	errorBytes, err := json.Marshal(response.NewFailure(kind, message))
	if err != nil {
		return fmt.Errorf("failed to marshal error payload: %w", err)
	}
	return SendMessage(conn, defs.MsgError, errorBytes)
}

// SendJSON marshals body and sends it as a frame of msgType
func SendJSON(conn net.Conn, msgType byte, body interface{}) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}
	return SendMessage(conn, msgType, payload)
}

// SendMessage writes one frame to conn
func SendMessage(conn net.Conn, msgType byte, payload []byte) error {
	frame := make([]byte, defs.HeaderSize+len(payload))
	binary.BigEndian.PutUint16(frame[0:2], defs.MagicNumber)
	frame[2] = msgType
	frame[3] = 0 // Reserved
	binary.BigEndian.PutUint32(frame[4:8], uint32(len(payload)))
	copy(frame[defs.HeaderSize:], payload)

	if _, err := conn.Write(frame); err != nil {
		return fmt.Errorf("failed to write message: %w", err)
	}
	return nil
}

// ReadMessage reads one frame from r
func ReadMessage(r io.Reader) (byte, []byte, error) {
	header := make([]byte, defs.HeaderSize)
	if _, err := io.ReadFull(r, header); err != nil {
		return 0, nil, err
	}

	magic := binary.BigEndian.Uint16(header[0:2])
	msgType := header[2]
	payloadLen := binary.BigEndian.Uint32(header[4:8])

	if magic != defs.MagicNumber {
		return 0, nil, fmt.Errorf("%w: %x", ErrInvalidMagic, magic)
	}
	if payloadLen > defs.MaxPayloadSize {
		return 0, nil, fmt.Errorf("%w: %d bytes", ErrPayloadTooLarge, payloadLen)
	}

	payload := make([]byte, payloadLen)
	if _, err := io.ReadFull(r, payload); err != nil {
		return 0, nil, err
	}

	return msgType, payload, nil
}
