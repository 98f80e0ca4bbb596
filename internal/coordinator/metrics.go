package coordinator

import (
	"sync"
	"time"

	"odosync/internal/registry"
	"odosync/pkg/logging"
)

// Metrics tracks discovery and refresh activity of a coordinator.
type Metrics struct {
	mu sync.RWMutex

	discoveryAttempts  int64
	discoverySuccesses int64
	discoveryIgnored   int64
	discoveryFailures  int64
	componentsAdded    int64
	refreshes          int64
	fullPasses         int64

	lastDiscoveryAt time.Time
	lastFailureAt   time.Time
	lastRefreshAt   time.Time
}

// MetricsSummary is a read-only copy of the coordinator metrics.
type MetricsSummary struct {
	DiscoveryAttempts    int64     `json:"discovery_attempts"`
	DiscoverySuccesses   int64     `json:"discovery_successes"`
	DiscoveryIgnored     int64     `json:"discovery_ignored"`
	DiscoveryFailures    int64     `json:"discovery_failures"`
	ComponentsAdded      int64     `json:"components_added"`
	Refreshes            int64     `json:"refreshes"`
	FullPasses           int64     `json:"full_passes"`
	LastDiscoveryAt      time.Time `json:"last_discovery_at,omitempty"`
	LastFailureAt        time.Time `json:"last_failure_at,omitempty"`
	LastRefreshAt        time.Time `json:"last_refresh_at,omitempty"`
	DiscoveryFailureRate float64   `json:"discovery_failure_rate"`
}

// NewMetrics creates an empty Metrics.
func NewMetrics() *Metrics {
	return &Metrics{}
}

// RecordDiscovery records the outcome of one DiscoverAndRegister call.
// Skipped attempts (no client, or cancelled) are not counted.
func (m *Metrics) RecordDiscovery(result registry.DiscoveryResult) {
	if result.Outcome == registry.OutcomeSkipped {
		return
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now()
	m.discoveryAttempts++
	m.lastDiscoveryAt = now

	switch result.Outcome {
	case registry.OutcomeSucceeded:
		m.discoverySuccesses++
		m.componentsAdded += int64(result.Added)
	case registry.OutcomeIgnored:
		m.discoveryIgnored++
	case registry.OutcomeFailed:
		m.discoveryFailures++
		m.lastFailureAt = now
		logging.Debug("CoordinatorMetrics", "Discovery failure for %s (failures: %d)", result.Root, m.discoveryFailures)
	}
}

// RecordRefresh records a client invalidation.
func (m *Metrics) RecordRefresh() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.refreshes++
	m.lastRefreshAt = time.Now()
}

// RecordFullPass records a completed discovery pass over all module roots.
func (m *Metrics) RecordFullPass() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fullPasses++
}

// Summary returns a copy of the current values.
func (m *Metrics) Summary() MetricsSummary {
	m.mu.RLock()
	defer m.mu.RUnlock()

	summary := MetricsSummary{
		DiscoveryAttempts:  m.discoveryAttempts,
		DiscoverySuccesses: m.discoverySuccesses,
		DiscoveryIgnored:   m.discoveryIgnored,
		DiscoveryFailures:  m.discoveryFailures,
		ComponentsAdded:    m.componentsAdded,
		Refreshes:          m.refreshes,
		FullPasses:         m.fullPasses,
		LastDiscoveryAt:    m.lastDiscoveryAt,
		LastFailureAt:      m.lastFailureAt,
		LastRefreshAt:      m.lastRefreshAt,
	}
	if m.discoveryAttempts > 0 {
		summary.DiscoveryFailureRate = float64(m.discoveryFailures) / float64(m.discoveryAttempts)
	}
	return summary
}
