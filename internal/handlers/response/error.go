package response

import (
	"encoding/json"
	"net/http"
)

const (
	// TypeInvalidRequest marks a request rejected before any job was staged.
	TypeInvalidRequest = "invalid_request"
	TypeRateLimited    = "rate_limited"
)

// Failure is the body of every unsuccessful execution response.
type Failure struct {
	Success bool   `json:"success"`
	Type    string `json:"type"`
	Message string `json:"message"`
}

type ErrorMessage struct {
	Message    string `json:"message"`
	StatusCode int    `json:"status_code"`
}

func NewFailure(failureType, message string) Failure {
	return Failure{Success: false, Type: failureType, Message: message}
}

func WriteJSON(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(data)
}

func WriteError(w http.ResponseWriter, err ErrorMessage) {
	WriteJSON(w, err.StatusCode, err)
}

func WriteSuccess(w http.ResponseWriter, data interface{}) {
	WriteJSON(w, http.StatusOK, data)
}
