package node

import (
	"context"
	"fmt"
	"time"

	"gitlab.com/fcv-judge.net/internal/core/ports/primary"
	"gitlab.com/fcv-judge.net/internal/core/ports/secondary"
	"gitlab.com/fcv-judge.net/internal/domain"
)

const (
	// activeWindow is how recent a heartbeat must be for a node to count as active.
	activeWindow = 2 * time.Minute
	// inactiveCutoff is how old a heartbeat must be before the node is dropped.
	inactiveCutoff = 5 * time.Minute
)

var _ INodeRegistrationService = &NodeRegistrationService{}

// NodeRegistrationService implements INodeRegistrationService
type NodeRegistrationService struct {
	nodeRepo secondary.NodeRepository
	logger   primary.Logger
	now      func() time.Time
}

// NewNodeRegistrationService creates a new node registration service
func NewNodeRegistrationService(nodeRepo secondary.NodeRepository, logger primary.Logger) *NodeRegistrationService {
	return &NodeRegistrationService{
		nodeRepo: nodeRepo,
		logger:   logger,
		now:      time.Now,
	}
}

// RegisterNode registers a node as available for jobs
func (s *NodeRegistrationService) RegisterNode(ctx context.Context, node *domain.NodeInfo) error {
	s.logger.Info("Registering node", "nodeId", node.ID, "languages", node.Languages)

	node.LastHeartbeat = s.now()
	if err := s.nodeRepo.SaveNode(ctx, node); err != nil {
		s.logger.Error("Failed to save node", "error", err)
		return fmt.Errorf("failed to register node: %w", err)
	}

	return nil
}

// Heartbeat updates the node's status and availability
func (s *NodeRegistrationService) Heartbeat(ctx context.Context, nodeID string, load int) error {
	s.logger.Debug("Node heartbeat", "nodeId", nodeID, "load", load)

	if err := s.nodeRepo.UpdateNodeHeartbeat(ctx, nodeID, load, s.now()); err != nil {
		s.logger.Error("Failed to update node heartbeat", "nodeId", nodeID, "error", err)
		return fmt.Errorf("failed to update node heartbeat: %w", err)
	}

	return nil
}

// GetAvailableNodes gets active nodes for a language that still have capacity
func (s *NodeRegistrationService) GetAvailableNodes(ctx context.Context, language string) ([]*domain.NodeInfo, error) {
	s.logger.Debug("Getting available nodes", "language", language)

	nodes, err := s.nodeRepo.GetNodesByLanguage(ctx, language)
	if err != nil {
		s.logger.Error("Failed to get nodes by language", "language", language, "error", err)
		return nil, fmt.Errorf("failed to get nodes by language: %w", err)
	}

	threshold := s.now().Add(-activeWindow)
	available := make([]*domain.NodeInfo, 0, len(nodes))
	for _, node := range nodes {
		node.IsActive = node.LastHeartbeat.After(threshold)
		// a capacity of zero means the node runs without a cap
		if node.IsActive && (node.Capacity == 0 || node.CurrentLoad < node.Capacity) {
			available = append(available, node)
		}
	}

	return available, nil
}

func (s *NodeRegistrationService) GetAllNodes(ctx context.Context) ([]*domain.NodeInfo, error) {
	s.logger.Debug("Getting all nodes")

	nodes, err := s.nodeRepo.GetAllNodes(ctx)
	if err != nil {
		s.logger.Error("Failed to get all nodes", "error", err)
		return nil, fmt.Errorf("failed to get all nodes: %w", err)
	}

	threshold := s.now().Add(-activeWindow)
	for _, node := range nodes {
		node.IsActive = node.LastHeartbeat.After(threshold)
	}

	return nodes, nil
}

// CleanupInactiveNodes removes nodes that haven't sent a heartbeat recently
func (s *NodeRegistrationService) CleanupInactiveNodes(ctx context.Context) error {
	s.logger.Debug("Cleaning up inactive nodes")

	if err := s.nodeRepo.RemoveInactiveNodes(ctx, s.now().Add(-inactiveCutoff)); err != nil {
		s.logger.Error("Failed to remove inactive nodes", "error", err)
		return fmt.Errorf("failed to clean up inactive nodes: %w", err)
	}

	return nil
}
