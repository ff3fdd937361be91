package tcp

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"sync"
	"time"

	"gitlab.com/fcv-judge.net/internal/core/ports/primary"
	"gitlab.com/fcv-judge.net/internal/handlers/exec"
	"gitlab.com/fcv-judge.net/internal/handlers/response"
	"gitlab.com/fcv-judge.net/internal/tcp/connectionmanager"
	"gitlab.com/fcv-judge.net/internal/tcp/defs"
	"gitlab.com/fcv-judge.net/internal/tcp/handlers"
)

// TCPServer serves run and submit requests over the framed binary protocol
type TCPServer struct {
	address       string
	idleTimeout   time.Duration
	boundary      *exec.Boundary
	logger        primary.Logger
	listener      net.Listener
	connectionMgr *connectionmanager.ConnectionManager
	stopCh        chan struct{}
	stopOnce      sync.Once
	wg            sync.WaitGroup
	handlers      map[byte]primary.MessageHandler
}

// TCPServerOption configures a TCPServer
type TCPServerOption func(*TCPServer)

// WithAddress sets the server address
func WithAddress(address string) TCPServerOption {
	return func(s *TCPServer) {
		s.address = address
	}
}

// WithIdleTimeout sets how long a connection may sit between requests
func WithIdleTimeout(timeout time.Duration) TCPServerOption {
	return func(s *TCPServer) {
		s.idleTimeout = timeout
	}
}

// NewTCPServer creates a new TCP server
func NewTCPServer(boundary *exec.Boundary, logger primary.Logger, options ...TCPServerOption) *TCPServer {
	server := &TCPServer{
		address:       ":9000",
		idleTimeout:   defs.IdleTimeout,
		boundary:      boundary,
		logger:        logger,
		connectionMgr: connectionmanager.NewConnectionManager(logger),
		stopCh:        make(chan struct{}),
	}

	for _, option := range options {
		option(server)
	}

	server.setupMessageHandlers()

	return server
}

// setupMessageHandlers registers all message handlers
func (s *TCPServer) setupMessageHandlers() {
	s.handlers = map[byte]primary.MessageHandler{
		defs.MsgRunRequest:    handlers.NewRunRequestHandler(s.boundary, s.logger),
		defs.MsgSubmitRequest: handlers.NewSubmitRequestHandler(s.boundary, s.logger),
	}
}

// Start starts the TCP server
func (s *TCPServer) Start() error {
	var err error
	s.listener, err = net.Listen("tcp", s.address)
	if err != nil {
		return fmt.Errorf("failed to start TCP server: %w", err)
	}

	s.logger.Info("TCP server listening", "address", s.listener.Addr().String())

	s.wg.Add(1)
	go s.acceptConnections()

	return nil
}

// Addr returns the bound address, or nil before Start
func (s *TCPServer) Addr() net.Addr {
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

// Stop closes the listener and all connections, then waits for connection goroutines
// to exit or for ctx to expire.
func (s *TCPServer) Stop(ctx context.Context) error {
	s.stopOnce.Do(func() { close(s.stopCh) })

	if s.listener != nil {
		if err := s.listener.Close(); err != nil && !errors.Is(err, net.ErrClosed) {
			s.logger.Error("Failed to close listener", "error", err)
		}
	}

	s.connectionMgr.CloseAll()

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// acceptConnections accepts incoming connections
func (s *TCPServer) acceptConnections() {
	defer s.wg.Done()

	for {
		conn, err := s.listener.Accept()
		if err != nil {
			select {
			case <-s.stopCh:
				return
			default:
				s.logger.Error("Failed to accept connection", "error", err)
				time.Sleep(defs.ConnectionRetryDelay)
				continue
			}
		}

		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			s.handleConnection(conn)
		}()
	}
}

// handleConnection serves requests on one connection, one at a time
func (s *TCPServer) handleConnection(conn net.Conn) {
	id := s.connectionMgr.Register(conn)
	defer func() {
		s.connectionMgr.Remove(id)
		conn.Close()
	}()

	remote := conn.RemoteAddr().String()
	s.logger.Info("Client connected", "connectionID", id, "remoteAddr", remote)

	for {
		select {
		case <-s.stopCh:
			return
		default:
		}

		if s.idleTimeout > 0 {
			_ = conn.SetReadDeadline(time.Now().Add(s.idleTimeout))
		}

		msgType, payload, err := connectionmanager.ReadMessage(conn)
		if err != nil {
			switch {
			case errors.Is(err, io.EOF), errors.Is(err, net.ErrClosed):
				s.logger.Info("Client disconnected", "connectionID", id)
			case errors.Is(err, os.ErrDeadlineExceeded):
				s.logger.Info("Closing idle connection", "connectionID", id)
			case errors.Is(err, connectionmanager.ErrInvalidMagic), errors.Is(err, connectionmanager.ErrPayloadTooLarge):
				s.logger.Warn("Rejecting malformed frame", "connectionID", id, "error", err)
				_ = connectionmanager.SendErrorMessage(conn, response.TypeInvalidRequest, err.Error())
			default:
				s.logger.Error("Failed to read message", "connectionID", id, "error", err)
			}
			return
		}

		// Requests in flight run to completion; closing the connection only fails the reply.
		_ = conn.SetReadDeadline(time.Time{})

		handler, exists := s.handlers[msgType]
		if !exists {
			s.logger.Warn("Unknown message type", "connectionID", id, "type", msgType)
			if err := connectionmanager.SendErrorMessage(conn, response.TypeInvalidRequest, fmt.Sprintf("Unknown message type: %d", msgType)); err != nil {
				return
			}
			continue
		}

		if err := handler.HandleMessage(context.Background(), conn, payload); err != nil {
			s.logger.Error("Error handling message", "connectionID", id, "type", msgType, "error", err)
			return
		}
	}
}
