package exec

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/websocket"

	"gitlab.com/fcv-judge.net/internal/handlers/response"
)

const (
	wsMessageRun          = "run"
	wsMessageSubmit       = "submit"
	wsMessageRunResult    = "run_result"
	wsMessageSubmitResult = "submit_result"
	wsMessageError        = "error"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// WSMessage is the envelope for requests and replies on the WebSocket boundary. ID is
// echoed back so clients can correlate replies.
type WSMessage struct {
	Type    string          `json:"type"`
	ID      string          `json:"id,omitempty"`
	Status  int             `json:"status,omitempty"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// ServeWS upgrades the connection and serves run and submit requests over it, one at a
// time, until the client disconnects.
func (h *ExecHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Error("WebSocket upgrade failed", "error", err)
		return
	}
	defer conn.Close()
	conn.SetReadLimit(maxBodyBytes)

	h.logger.Info("WebSocket client connected", "remoteAddr", conn.RemoteAddr().String())
	defer h.logger.Info("WebSocket client disconnected", "remoteAddr", conn.RemoteAddr().String())

	for {
		var msg WSMessage
		if err := conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				h.logger.Warn("WebSocket read failed", "error", err)
			}
			return
		}

		reply := h.dispatchWS(r, msg)
		if err := conn.WriteJSON(reply); err != nil {
			h.logger.Error("Failed to write to websocket", "error", err)
			return
		}
	}
}

func (h *ExecHandler) dispatchWS(r *http.Request, msg WSMessage) WSMessage {
	var (
		replyType string
		status    int
		body      interface{}
	)

	switch msg.Type {
	case wsMessageRun:
		var req RunRequest
		if err := json.Unmarshal(msg.Payload, &req); err != nil {
			return wsError(msg.ID, "Invalid run payload")
		}
		replyType = wsMessageRunResult
		status, body = h.boundary.Run(r.Context(), req)
	case wsMessageSubmit:
		var req SubmitRequest
		if err := json.Unmarshal(msg.Payload, &req); err != nil {
			return wsError(msg.ID, "Invalid submit payload")
		}
		replyType = wsMessageSubmitResult
		status, body = h.boundary.Submit(r.Context(), req)
	default:
		return wsError(msg.ID, "Unknown message type: "+msg.Type)
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return wsError(msg.ID, "Failed to encode result")
	}
	return WSMessage{Type: replyType, ID: msg.ID, Status: status, Payload: payload}
}

func wsError(id, message string) WSMessage {
	payload, _ := json.Marshal(response.NewFailure(response.TypeInvalidRequest, message))
	return WSMessage{Type: wsMessageError, ID: id, Status: http.StatusBadRequest, Payload: payload}
}
