package node

import (
	"context"
	"errors"
	"testing"
	"time"

	"gitlab.com/fcv-judge.net/internal/adapter/logging"
	"gitlab.com/fcv-judge.net/internal/core/ports/secondary"
	"gitlab.com/fcv-judge.net/internal/domain"
)

type memoryNodeRepo struct {
	nodes   map[string]*domain.NodeInfo
	cutoff  time.Time
	saveErr error
}

var _ secondary.NodeRepository = (*memoryNodeRepo)(nil)

func newMemoryNodeRepo() *memoryNodeRepo {
	return &memoryNodeRepo{nodes: map[string]*domain.NodeInfo{}}
}

func (r *memoryNodeRepo) SaveNode(_ context.Context, node *domain.NodeInfo) error {
	if r.saveErr != nil {
		return r.saveErr
	}
	copied := *node
	r.nodes[node.ID] = &copied
	return nil
}

func (r *memoryNodeRepo) GetNode(_ context.Context, id string) (*domain.NodeInfo, error) {
	return r.nodes[id], nil
}

func (r *memoryNodeRepo) UpdateNodeHeartbeat(_ context.Context, id string, load int, at time.Time) error {
	node, ok := r.nodes[id]
	if !ok {
		return errors.New("node not found")
	}
	node.CurrentLoad = load
	node.LastHeartbeat = at
	return nil
}

func (r *memoryNodeRepo) RemoveInactiveNodes(_ context.Context, cutoff time.Time) error {
	r.cutoff = cutoff
	for id, node := range r.nodes {
		if node.LastHeartbeat.Before(cutoff) {
			delete(r.nodes, id)
		}
	}
	return nil
}

func (r *memoryNodeRepo) GetAllNodes(context.Context) ([]*domain.NodeInfo, error) {
	out := make([]*domain.NodeInfo, 0, len(r.nodes))
	for _, n := range r.nodes {
		out = append(out, n)
	}
	return out, nil
}

func (r *memoryNodeRepo) GetNodesByLanguage(_ context.Context, language string) ([]*domain.NodeInfo, error) {
	var out []*domain.NodeInfo
	for _, n := range r.nodes {
		for _, l := range n.Languages {
			if l == language {
				out = append(out, n)
			}
		}
	}
	return out, nil
}

func newService(repo *memoryNodeRepo, now time.Time) *NodeRegistrationService {
	s := NewNodeRegistrationService(repo, logging.NewNopLogger())
	s.now = func() time.Time { return now }
	return s
}

func TestRegisterAndHeartbeat(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	repo := newMemoryNodeRepo()
	s := newService(repo, now)
	ctx := context.Background()

	if err := s.RegisterNode(ctx, &domain.NodeInfo{ID: "n1", Languages: []string{"cpp"}, Capacity: 2}); err != nil {
		t.Fatalf("RegisterNode: %v", err)
	}
	if !repo.nodes["n1"].LastHeartbeat.Equal(now) {
		t.Errorf("heartbeat not stamped on register")
	}
	if err := s.Heartbeat(ctx, "n1", 1); err != nil {
		t.Fatalf("Heartbeat: %v", err)
	}
	if repo.nodes["n1"].CurrentLoad != 1 {
		t.Errorf("load not updated")
	}
	if err := s.Heartbeat(ctx, "missing", 0); err == nil {
		t.Error("expected error for unknown node")
	}
}

func TestRegisterNode_RepositoryFailure(t *testing.T) {
	repo := newMemoryNodeRepo()
	repo.saveErr = errors.New("redis down")
	s := newService(repo, time.Now())

	if err := s.RegisterNode(context.Background(), &domain.NodeInfo{ID: "n1"}); err == nil {
		t.Fatal("expected error")
	}
}

func TestGetAvailableNodes(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	repo := newMemoryNodeRepo()
	repo.nodes["fresh"] = &domain.NodeInfo{ID: "fresh", Languages: []string{"python"}, Capacity: 2, CurrentLoad: 1, LastHeartbeat: now.Add(-time.Minute)}
	repo.nodes["full"] = &domain.NodeInfo{ID: "full", Languages: []string{"python"}, Capacity: 2, CurrentLoad: 2, LastHeartbeat: now}
	repo.nodes["stale"] = &domain.NodeInfo{ID: "stale", Languages: []string{"python"}, LastHeartbeat: now.Add(-3 * time.Minute)}
	repo.nodes["uncapped"] = &domain.NodeInfo{ID: "uncapped", Languages: []string{"python"}, CurrentLoad: 9, LastHeartbeat: now}
	s := newService(repo, now)

	nodes, err := s.GetAvailableNodes(context.Background(), "python")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got := map[string]bool{}
	for _, n := range nodes {
		got[n.ID] = true
	}
	if len(got) != 2 || !got["fresh"] || !got["uncapped"] {
		t.Errorf("unexpected available nodes: %v", got)
	}
}

func TestGetAllNodes_AnnotatesActivity(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	repo := newMemoryNodeRepo()
	repo.nodes["a"] = &domain.NodeInfo{ID: "a", LastHeartbeat: now.Add(-30 * time.Second)}
	repo.nodes["b"] = &domain.NodeInfo{ID: "b", LastHeartbeat: now.Add(-4 * time.Minute)}
	s := newService(repo, now)

	nodes, err := s.GetAllNodes(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, n := range nodes {
		if want := n.ID == "a"; n.IsActive != want {
			t.Errorf("node %s: IsActive=%v, want %v", n.ID, n.IsActive, want)
		}
	}
}

func TestCleanupInactiveNodes(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	repo := newMemoryNodeRepo()
	repo.nodes["old"] = &domain.NodeInfo{ID: "old", LastHeartbeat: now.Add(-10 * time.Minute)}
	s := newService(repo, now)

	if err := s.CleanupInactiveNodes(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !repo.cutoff.Equal(now.Add(-5 * time.Minute)) {
		t.Errorf("unexpected cutoff %s", repo.cutoff)
	}
	if _, ok := repo.nodes["old"]; ok {
		t.Error("old node should be removed")
	}
}
