package nodes

import (
	"net/http"

	"github.com/gorilla/mux"

	"gitlab.com/fcv-judge.net/internal/core/ports/primary"
	"gitlab.com/fcv-judge.net/internal/core/services/node"
	"gitlab.com/fcv-judge.net/internal/domain"
	"gitlab.com/fcv-judge.net/internal/handlers/response"
)

// NodeHandler handles node registry API requests
type NodeHandler struct {
	nodeService node.INodeRegistrationService
	logger      primary.Logger
}

// NewNodeHandler creates a new node handler
func NewNodeHandler(nodeService node.INodeRegistrationService, logger primary.Logger) *NodeHandler {
	return &NodeHandler{
		nodeService: nodeService,
		logger:      logger,
	}
}

// RegisterRoutes registers the API routes for NodeHandler
func (h *NodeHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/nodes", h.GetNodes).Methods("GET")
}

// GetNodes lists registered nodes, or only the available ones for ?language=
func (h *NodeHandler) GetNodes(w http.ResponseWriter, r *http.Request) {
	language := r.URL.Query().Get("language")

	var nodes []*domain.NodeInfo
	var err error
	if language != "" {
		nodes, err = h.nodeService.GetAvailableNodes(r.Context(), language)
	} else {
		nodes, err = h.nodeService.GetAllNodes(r.Context())
	}

	if err != nil {
		h.logger.Error("Failed to get nodes", "error", err)
		response.WriteError(w, response.ErrorMessage{Message: "Failed to get nodes", StatusCode: http.StatusInternalServerError})
		return
	}

	response.WriteSuccess(w, map[string][]*domain.NodeInfo{"nodes": nodes})
}
