package handlers

import (
	"context"
	"encoding/json"
	"net"

	"gitlab.com/fcv-judge.net/internal/core/ports/primary"
	"gitlab.com/fcv-judge.net/internal/handlers/exec"
	"gitlab.com/fcv-judge.net/internal/handlers/response"
	"gitlab.com/fcv-judge.net/internal/tcp/connectionmanager"
	"gitlab.com/fcv-judge.net/internal/tcp/defs"
)

var _ primary.MessageHandler = (*RunRequestHandler)(nil)

// RunRequestHandler handles RunRequest frames
type RunRequestHandler struct {
	Boundary *exec.Boundary
	Logger   primary.Logger
}

func NewRunRequestHandler(boundary *exec.Boundary, logger primary.Logger) *RunRequestHandler {
	return &RunRequestHandler{Boundary: boundary, Logger: logger}
}

// HandleMessage implements the MessageHandler interface
func (h *RunRequestHandler) HandleMessage(ctx context.Context, conn net.Conn, payload []byte) error {
	var req exec.RunRequest
	if err := json.Unmarshal(payload, &req); err != nil {
		h.Logger.Warn("Failed to parse run request", "error", err)
		return connectionmanager.SendErrorMessage(conn, response.TypeInvalidRequest, "Invalid run request data")
	}

	status, body := h.Boundary.Run(ctx, req)
	h.Logger.Debug("Run request served over tcp", "language", req.Language, "status", status)

	return connectionmanager.SendJSON(conn, defs.MsgRunResult, body)
}
