// Package exec serves the execution service boundary over HTTP and WebSocket.
package exec

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"gitlab.com/fcv-judge.net/internal/core/ports/primary"
	"gitlab.com/fcv-judge.net/internal/core/services/execution"
	"gitlab.com/fcv-judge.net/internal/domain"
	"gitlab.com/fcv-judge.net/internal/handlers/response"
	"gitlab.com/fcv-judge.net/internal/static/errs"
)

// maxBodyBytes caps request bodies; test-case lists can be large.
const maxBodyBytes = 32 << 20

// ExecHandler handles execution API requests
type ExecHandler struct {
	service  execution.IExecutionService
	boundary *Boundary
	logger   primary.Logger
}

// NewExecHandler creates a new execution handler
func NewExecHandler(service execution.IExecutionService, logger primary.Logger) *ExecHandler {
	return &ExecHandler{
		service:  service,
		boundary: NewBoundary(service, logger),
		logger:   logger,
	}
}

// RegisterRoutes registers the read-only routes plus run and submit. limit wraps the
// routes that execute code and may be nil.
func (h *ExecHandler) RegisterRoutes(router *mux.Router, limit func(http.HandlerFunc) http.HandlerFunc) {
	if limit == nil {
		limit = func(next http.HandlerFunc) http.HandlerFunc { return next }
	}
	router.HandleFunc("/", h.Welcome).Methods("GET")
	router.HandleFunc("/languages", h.GetLanguages).Methods("GET")
	router.HandleFunc("/run", limit(h.Run)).Methods("POST")
	router.HandleFunc("/submit", limit(h.Submit)).Methods("POST")
	router.HandleFunc("/judgements", h.ListJudgements).Methods("GET")
	router.HandleFunc("/judgements/{judgementId}", h.GetJudgement).Methods("GET")
	router.HandleFunc("/ws", limit(h.ServeWS)).Methods("GET")
}

// Welcome answers the root of the execution API
func (h *ExecHandler) Welcome(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("Code execution service is running"))
}

// GetLanguages lists the supported languages
func (h *ExecHandler) GetLanguages(w http.ResponseWriter, r *http.Request) {
	languages := make([]LanguageInfo, 0, len(domain.SupportedLanguages))
	for _, l := range domain.SupportedLanguages {
		languages = append(languages, LanguageInfo{Name: string(l), Compiled: l.Compiled()})
	}
	response.WriteSuccess(w, map[string][]LanguageInfo{"languages": languages})
}

// Run handles single-run requests
func (h *ExecHandler) Run(w http.ResponseWriter, r *http.Request) {
	var req RunRequest
	if !h.decode(w, r, &req) {
		return
	}

	status, body := h.boundary.Run(r.Context(), req)
	response.WriteJSON(w, status, body)
}

// Submit handles judging requests
func (h *ExecHandler) Submit(w http.ResponseWriter, r *http.Request) {
	var req SubmitRequest
	if !h.decode(w, r, &req) {
		return
	}

	status, body := h.boundary.Submit(r.Context(), req)
	response.WriteJSON(w, status, body)
}

// GetJudgement handles judgement retrieval requests
func (h *ExecHandler) GetJudgement(w http.ResponseWriter, r *http.Request) {
	idStr := mux.Vars(r)["judgementId"]
	id, err := uuid.Parse(idStr)
	if err != nil {
		response.WriteError(w, response.ErrorMessage{Message: "Invalid judgement ID", StatusCode: http.StatusBadRequest})
		return
	}

	judgement, err := h.service.GetJudgement(r.Context(), id)
	if err != nil {
		if errors.Is(err, errs.ErrJudgementNotFound) {
			response.WriteError(w, response.ErrorMessage{Message: "Judgement not found", StatusCode: http.StatusNotFound})
			return
		}
		h.logger.Error("Failed to get judgement", "error", err)
		response.WriteError(w, response.ErrorMessage{Message: "Failed to get judgement", StatusCode: http.StatusInternalServerError})
		return
	}

	response.WriteSuccess(w, judgement)
}

// ListJudgements handles recent judgement listing requests
func (h *ExecHandler) ListJudgements(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	judgements, err := h.service.ListJudgements(r.Context(), limit)
	if err != nil {
		h.logger.Error("Failed to list judgements", "error", err)
		response.WriteError(w, response.ErrorMessage{Message: "Failed to list judgements", StatusCode: http.StatusInternalServerError})
		return
	}

	response.WriteSuccess(w, map[string][]*domain.Judgement{"judgements": judgements})
}

func (h *ExecHandler) decode(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		h.logger.Warn("Failed to decode request", "path", r.URL.Path, "error", err)
		response.WriteJSON(w, http.StatusBadRequest, response.NewFailure(response.TypeInvalidRequest, "Invalid request body"))
		return false
	}
	return true
}
