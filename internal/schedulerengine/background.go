package schedulerengine

import (
	"context"
	"net"
	"runtime"
	"sync"
	"time"

	"gitlab.com/fcv-judge.net/internal/config"
	"gitlab.com/fcv-judge.net/internal/core/ports/primary"
	"gitlab.com/fcv-judge.net/internal/core/services/node"
	"gitlab.com/fcv-judge.net/internal/domain"
)

// LoadReporter exposes the execution pool's size and current occupancy.
type LoadReporter interface {
	Capacity() int
	Load() int
}

// Sweeper removes staged files older than a cutoff.
type Sweeper interface {
	Sweep(olderThan time.Duration) (int, error)
}

// NodeIdentity is what this process advertises when it registers.
type NodeIdentity struct {
	ID        string
	Languages []domain.Language
	Address   string
	Version   string
}

// BackgroundEngine runs the periodic housekeeping of one engine process: node
// heartbeats to the registry and the staging directory janitor.
type BackgroundEngine struct {
	cfg         *config.BackgroundCfg
	identity    NodeIdentity
	nodeService node.INodeRegistrationService
	pool        LoadReporter
	sweeper     Sweeper
	logger      primary.Logger
	wg          sync.WaitGroup
}

// NewBackgroundEngine builds the engine. nodeService may be nil when no registry is
// configured; the heartbeat loop is then skipped.
func NewBackgroundEngine(
	cfg *config.BackgroundCfg,
	identity NodeIdentity,
	nodeService node.INodeRegistrationService,
	pool LoadReporter,
	sweeper Sweeper,
	logger primary.Logger,
) *BackgroundEngine {
	return &BackgroundEngine{
		cfg:         cfg,
		identity:    identity,
		nodeService: nodeService,
		pool:        pool,
		sweeper:     sweeper,
		logger:      logger,
	}
}

// Start launches the loops. They stop when ctx is cancelled; Wait blocks until then.
func (e *BackgroundEngine) Start(ctx context.Context) {
	if e.nodeService != nil {
		e.register(ctx)
		e.every(ctx, e.cfg.NodeHeartbeatInterval, func() {
			e.heartbeat(ctx)
			if err := e.nodeService.CleanupInactiveNodes(ctx); err != nil {
				e.logger.Warn("Inactive node cleanup failed", "error", err)
			}
		})
	}

	if e.sweeper != nil {
		e.every(ctx, e.cfg.StagingSweepInterval, func() {
			e.sweep()
		})
	}
}

// Wait blocks until every loop started by Start has returned.
func (e *BackgroundEngine) Wait() {
	e.wg.Wait()
}

func (e *BackgroundEngine) every(ctx context.Context, interval time.Duration, fn func()) {
	if interval <= 0 {
		return
	}

	e.wg.Add(1)
	go func() {
		defer e.wg.Done()
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				fn()
			}
		}
	}()
}

func (e *BackgroundEngine) register(ctx context.Context) {
	languages := make([]string, 0, len(e.identity.Languages))
	for _, l := range e.identity.Languages {
		languages = append(languages, string(l))
	}

	info := &domain.NodeInfo{
		ID:          e.identity.ID,
		Languages:   languages,
		Capacity:    e.pool.Capacity(),
		CurrentLoad: e.pool.Load(),
		IpAddress:   e.identity.Address,
		OS:          runtime.GOOS,
		Version:     e.identity.Version,
		IsActive:    true,
	}
	if err := e.nodeService.RegisterNode(ctx, info); err != nil {
		e.logger.Error("Node registration failed", "nodeId", e.identity.ID, "error", err)
		return
	}
	e.logger.Info("Node registered", "nodeId", e.identity.ID, "capacity", info.Capacity)
}

func (e *BackgroundEngine) heartbeat(ctx context.Context) {
	if err := e.nodeService.Heartbeat(ctx, e.identity.ID, e.pool.Load()); err != nil {
		e.logger.Warn("Node heartbeat failed, re-registering", "nodeId", e.identity.ID, "error", err)
		e.register(ctx)
	}
}

func (e *BackgroundEngine) sweep() {
	removed, err := e.sweeper.Sweep(e.cfg.StagingRetention)
	if err != nil {
		e.logger.Error("Staging sweep failed", "removed", removed, "error", err)
		return
	}
	if removed > 0 {
		e.logger.Info("Staging sweep removed stale files", "removed", removed)
	}
}

// OutboundIP returns the local address used to reach the network, or "" when none
// can be determined.
func OutboundIP() string {
	conn, err := net.Dial("udp", "8.8.8.8:80")
	if err != nil {
		return ""
	}
	defer conn.Close()

	if addr, ok := conn.LocalAddr().(*net.UDPAddr); ok {
		return addr.IP.String()
	}
	return ""
}
