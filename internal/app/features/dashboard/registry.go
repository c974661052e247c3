// internal/app/features/dashboard/registry.go
package dashboard

import (
	"sync"
	"time"

	"github.com/gatelens/gatelens/internal/app/gateway"
	"go.uber.org/zap"
)

const (
	defaultSweepInterval = time.Minute
	defaultIdleThreshold = 15 * time.Minute
)

type registryEntry struct {
	orch     *Orchestrator
	role     string
	lastSeen time.Time
}

// Registry holds one orchestrator per signed-in user and evicts idle ones so
// abandoned browser tabs don't keep spend streams open forever.
type Registry struct {
	client *gateway.Client
	log    *zap.Logger

	sweepInterval time.Duration
	idleThreshold time.Duration

	mu     sync.Mutex
	byUser map[string]*registryEntry

	stopCh chan struct{}
	wg     sync.WaitGroup
}

// NewRegistry creates a registry with default sweep timings.
func NewRegistry(client *gateway.Client, logger *zap.Logger) *Registry {
	return &Registry{
		client:        client,
		log:           logger,
		sweepInterval: defaultSweepInterval,
		idleThreshold: defaultIdleThreshold,
		byUser:        make(map[string]*registryEntry),
		stopCh:        make(chan struct{}),
	}
}

// For returns the user's orchestrator, creating one on first sight. A role
// change replaces the orchestrator so the widget set follows the new role.
func (reg *Registry) For(userID, role string) *Orchestrator {
	reg.mu.Lock()
	defer reg.mu.Unlock()

	e, ok := reg.byUser[userID]
	if ok && e.role == role {
		e.lastSeen = time.Now()
		return e.orch
	}
	if ok {
		e.orch.Shutdown()
	}

	orch := NewOrchestrator(reg.client, role, reg.log.With(zap.String("user_id", userID)))
	reg.byUser[userID] = &registryEntry{orch: orch, role: role, lastSeen: time.Now()}
	return orch
}

// Start begins the background idle-eviction loop.
func (reg *Registry) Start() {
	reg.wg.Add(1)
	go reg.run()
	reg.log.Info("dashboard registry janitor started",
		zap.Duration("sweep_interval", reg.sweepInterval),
		zap.Duration("idle_threshold", reg.idleThreshold))
}

// Stop signals the janitor to stop, waits for it, and shuts every
// orchestrator down.
func (reg *Registry) Stop() {
	close(reg.stopCh)
	reg.wg.Wait()

	reg.mu.Lock()
	for id, e := range reg.byUser {
		e.orch.Shutdown()
		delete(reg.byUser, id)
	}
	reg.mu.Unlock()

	reg.log.Info("dashboard registry janitor stopped")
}

func (reg *Registry) run() {
	defer reg.wg.Done()

	ticker := time.NewTicker(reg.sweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-reg.stopCh:
			return
		case <-ticker.C:
			reg.sweep()
		}
	}
}

func (reg *Registry) sweep() {
	cutoff := time.Now().Add(-reg.idleThreshold)

	reg.mu.Lock()
	var evicted []*Orchestrator
	for id, e := range reg.byUser {
		if e.lastSeen.Before(cutoff) {
			evicted = append(evicted, e.orch)
			delete(reg.byUser, id)
		}
	}
	n := len(evicted)
	reg.mu.Unlock()

	// Shutdown outside the lock; it waits on stream goroutines.
	for _, orch := range evicted {
		orch.Shutdown()
	}

	if n > 0 {
		reg.log.Info("evicted idle dashboard sessions", zap.Int("count", n))
	}
}
