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

var _ primary.MessageHandler = (*SubmitRequestHandler)(nil)

// SubmitRequestHandler handles SubmitRequest frames
type SubmitRequestHandler struct {
	Boundary *exec.Boundary
	Logger   primary.Logger
}

func NewSubmitRequestHandler(boundary *exec.Boundary, logger primary.Logger) *SubmitRequestHandler {
	return &SubmitRequestHandler{Boundary: boundary, Logger: logger}
}

// HandleMessage implements the MessageHandler interface
func (h *SubmitRequestHandler) HandleMessage(ctx context.Context, conn net.Conn, payload []byte) error {
	var req exec.SubmitRequest
	if err := json.Unmarshal(payload, &req); err != nil {
		h.Logger.Warn("Failed to parse submit request", "error", err)
		return connectionmanager.SendErrorMessage(conn, response.TypeInvalidRequest, "Invalid submit request data")
	}

	status, body := h.Boundary.Submit(ctx, req)
	h.Logger.Info("Submission served over tcp", "language", req.Language, "testCases", len(req.TestCases), "status", status)

	return connectionmanager.SendJSON(conn, defs.MsgSubmitResult, body)
}
