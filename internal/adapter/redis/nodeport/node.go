package nodeport

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"gitlab.com/fcv-judge.net/internal/core/ports/primary"
	"gitlab.com/fcv-judge.net/internal/core/ports/secondary"
	"gitlab.com/fcv-judge.net/internal/domain"
)

const (
	nodeKeyPrefix      = "node:"
	nodeLanguagePrefix = "nodelang:"
	nodeExpiration     = 5 * time.Minute
	scanBatch          = 100
)

var _ secondary.NodeRepository = (*NodeRepository)(nil)

// NodeRepository implements the NodeRepository interface with Redis
type NodeRepository struct {
	redisClient *redis.Client
	logger      primary.Logger
}

// NewNodeRepository creates a new Redis node repository
func NewNodeRepository(redisClient *redis.Client, logger primary.Logger) *NodeRepository {
	return &NodeRepository{
		redisClient: redisClient,
		logger:      logger,
	}
}

func nodeKey(nodeID string) string {
	return nodeKeyPrefix + nodeID
}

func languageKey(language string) string {
	return nodeLanguagePrefix + language
}

// SaveNode saves node information with expiration and indexes it by language
func (r *NodeRepository) SaveNode(ctx context.Context, node *domain.NodeInfo) error {
	nodeJSON, err := json.Marshal(node)
	if err != nil {
		r.logger.Error("Failed to marshal node info", "error", err)
		return fmt.Errorf("failed to marshal node info: %w", err)
	}

	pipe := r.redisClient.TxPipeline()
	pipe.Set(ctx, nodeKey(node.ID), nodeJSON, nodeExpiration)
	for _, language := range node.Languages {
		pipe.SAdd(ctx, languageKey(language), node.ID)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		r.logger.Error("Failed to save node info", "nodeId", node.ID, "error", err)
		return fmt.Errorf("failed to save node info: %w", err)
	}

	return nil
}

// GetNode retrieves node information by ID, returning nil when it has expired
func (r *NodeRepository) GetNode(ctx context.Context, nodeID string) (*domain.NodeInfo, error) {
	nodeJSON, err := r.redisClient.Get(ctx, nodeKey(nodeID)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		r.logger.Error("Failed to get node info", "error", err)
		return nil, fmt.Errorf("failed to get node info: %w", err)
	}

	var node domain.NodeInfo
	if err := json.Unmarshal(nodeJSON, &node); err != nil {
		r.logger.Error("Failed to unmarshal node info", "error", err)
		return nil, fmt.Errorf("failed to unmarshal node info: %w", err)
	}

	return &node, nil
}

// GetAllNodes retrieves every registered node
func (r *NodeRepository) GetAllNodes(ctx context.Context) ([]*domain.NodeInfo, error) {
	keys, err := r.scan(ctx, nodeKeyPrefix+"*")
	if err != nil {
		return nil, err
	}
	return r.load(ctx, keys)
}

// GetNodesByLanguage retrieves the nodes able to run language
func (r *NodeRepository) GetNodesByLanguage(ctx context.Context, language string) ([]*domain.NodeInfo, error) {
	nodeIDs, err := r.redisClient.SMembers(ctx, languageKey(language)).Result()
	if err != nil {
		r.logger.Error("Failed to get node IDs", "language", language, "error", err)
		return nil, fmt.Errorf("failed to get node IDs: %w", err)
	}

	keys := make([]string, 0, len(nodeIDs))
	for _, id := range nodeIDs {
		keys = append(keys, nodeKey(id))
	}
	return r.load(ctx, keys)
}

// UpdateNodeHeartbeat updates a node's heartbeat and load
func (r *NodeRepository) UpdateNodeHeartbeat(ctx context.Context, nodeID string, load int, at time.Time) error {
	node, err := r.GetNode(ctx, nodeID)
	if err != nil {
		return err
	}
	if node == nil {
		return fmt.Errorf("node not found: %s", nodeID)
	}

	node.CurrentLoad = load
	node.LastHeartbeat = at
	return r.SaveNode(ctx, node)
}

// RemoveInactiveNodes drops nodes whose last heartbeat is older than cutoffTime and
// prunes expired IDs from the language indexes
func (r *NodeRepository) RemoveInactiveNodes(ctx context.Context, cutoffTime time.Time) error {
	nodes, err := r.GetAllNodes(ctx)
	if err != nil {
		return err
	}
	for _, node := range nodes {
		if node.LastHeartbeat.Before(cutoffTime) {
			if err := r.redisClient.Del(ctx, nodeKey(node.ID)).Err(); err != nil {
				r.logger.Error("Failed to remove stale node", "nodeId", node.ID, "error", err)
			}
		}
	}

	indexKeys, err := r.scan(ctx, nodeLanguagePrefix+"*")
	if err != nil {
		return err
	}
	for _, indexKey := range indexKeys {
		nodeIDs, err := r.redisClient.SMembers(ctx, indexKey).Result()
		if err != nil {
			r.logger.Error("Failed to get node IDs", "indexKey", indexKey, "error", err)
			continue
		}

		for _, nodeID := range nodeIDs {
			exists, err := r.redisClient.Exists(ctx, nodeKey(nodeID)).Result()
			if err != nil {
				r.logger.Error("Failed to check if node exists", "nodeId", nodeID, "error", err)
				continue
			}
			if exists == 0 {
				if err := r.redisClient.SRem(ctx, indexKey, nodeID).Err(); err != nil {
					r.logger.Error("Failed to remove node from language index", "nodeId", nodeID, "error", err)
				}
			}
		}
	}

	return nil
}

func (r *NodeRepository) scan(ctx context.Context, pattern string) ([]string, error) {
	var cursor uint64
	var keys []string
	for {
		batch, next, err := r.redisClient.Scan(ctx, cursor, pattern, scanBatch).Result()
		if err != nil {
			return nil, fmt.Errorf("failed to scan keys %s: %w", pattern, err)
		}
		keys = append(keys, batch...)
		cursor = next
		if cursor == 0 {
			return keys, nil
		}
	}
}

func (r *NodeRepository) load(ctx context.Context, keys []string) ([]*domain.NodeInfo, error) {
	nodes := make([]*domain.NodeInfo, 0, len(keys))
	if len(keys) == 0 {
		return nodes, nil
	}

	values, err := r.redisClient.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve node data: %w", err)
	}

	for _, value := range values {
		raw, ok := value.(string)
		if !ok {
			continue
		}
		var node domain.NodeInfo
		if err := json.Unmarshal([]byte(raw), &node); err != nil {
			return nil, fmt.Errorf("failed to unmarshal node data: %w", err)
		}
		nodes = append(nodes, &node)
	}

	return nodes, nil
}
