package secondary

import (
	"context"
	"time"

	"gitlab.com/fcv-judge.net/internal/domain"
)

type NodeRepository interface {
	// SaveNode saves node information
	SaveNode(ctx context.Context, node *domain.NodeInfo) error

	// GetNode retrieves node information by ID
	GetNode(ctx context.Context, nodeID string) (*domain.NodeInfo, error)

	// UpdateNodeHeartbeat updates a node's heartbeat and load
	UpdateNodeHeartbeat(ctx context.Context, nodeID string, load int, at time.Time) error

	// RemoveInactiveNodes removes nodes that haven't sent a heartbeat recently
	RemoveInactiveNodes(ctx context.Context, cutoffTime time.Time) error

	GetAllNodes(ctx context.Context) ([]*domain.NodeInfo, error)

	// GetNodesByLanguage retrieves the nodes that advertise language
	GetNodesByLanguage(ctx context.Context, language string) ([]*domain.NodeInfo, error)
}
