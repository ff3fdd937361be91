package node

import (
	"context"

	"gitlab.com/fcv-judge.net/internal/domain"
)

// INodeRegistrationService defines the interface for engine node registration
type INodeRegistrationService interface {
	// RegisterNode records a node as able to execute jobs
	RegisterNode(ctx context.Context, node *domain.NodeInfo) error

	// Heartbeat updates the node's load and liveness
	Heartbeat(ctx context.Context, nodeID string, load int) error

	// GetAvailableNodes gets active nodes with spare capacity for a language
	GetAvailableNodes(ctx context.Context, language string) ([]*domain.NodeInfo, error)

	// GetAllNodes gets all registered nodes
	GetAllNodes(ctx context.Context) ([]*domain.NodeInfo, error)

	// CleanupInactiveNodes removes nodes that haven't sent a heartbeat recently
	CleanupInactiveNodes(ctx context.Context) error
}
