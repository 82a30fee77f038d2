package health

import (
	"context"
	"sync"
	"time"

	"github.com/vietddude/tracer/internal/infra/rpc"
)

// Node is the provider view the monitor needs.
type Node interface {
	GetName() string
	GetHealth() rpc.HealthStatus
}

// Pinger checks a backing service such as Redis.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Monitor aggregates health status from node providers and the cache.
type Monitor struct {
	nodes    []Node
	cache    Pinger
	interval time.Duration

	mu         sync.Mutex
	lastCheck  time.Time
	lastReport *HealthReport
}

// NewMonitor creates a new health monitor. cache may be nil.
func NewMonitor(nodes []Node, cache Pinger) *Monitor {
	return &Monitor{
		nodes:    nodes,
		cache:    cache,
		interval: 10 * time.Second,
	}
}

// CheckHealth builds a report, reusing the previous one for a short interval.
func (m *Monitor) CheckHealth(ctx context.Context) *HealthReport {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.lastReport != nil && time.Since(m.lastCheck) < m.interval {
		return m.lastReport
	}

	report := &HealthReport{
		SystemStatus: StatusHealthy,
		Nodes:        make(map[string]NodeHealth, len(m.nodes)),
	}

	for _, n := range m.nodes {
		nh := evaluateNode(n)
		report.Nodes[nh.Name] = nh
		report.SystemStatus = worse(report.SystemStatus, nh.Status)
	}

	if m.cache != nil {
		ch := &CacheHealth{Status: StatusHealthy}
		pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
		if err := m.cache.Ping(pingCtx); err != nil {
			// the node still answers without the cache
			ch.Status = StatusDegraded
			ch.Error = err.Error()
		}
		cancel()
		report.Cache = ch
		report.SystemStatus = worse(report.SystemStatus, ch.Status)
	}

	m.lastCheck = time.Now()
	m.lastReport = report
	return report
}

func evaluateNode(n Node) NodeHealth {
	h := n.GetHealth()
	nh := NodeHealth{
		Name:      n.GetName(),
		Status:    StatusHealthy,
		ErrorRate: h.ErrorRate,
	}

	providerStatus := rpc.StatusHealthy
	if s := h.MonitorStats; s != nil {
		providerStatus = s.Status
		nh.AvgLatencyMs = s.AverageLatency.Milliseconds()
		nh.Requests24h = s.RequestsLast24Hours
		nh.Throttled429 = s.ThrottleCount429
		nh.Blocked403 = s.ThrottleCount403
	}
	nh.ProviderStatus = providerStatus.String()

	switch {
	case providerStatus == rpc.StatusBlocked || providerStatus == rpc.StatusThrottled ||
		!h.Available || h.ErrorRate > 0.5:
		nh.Status = StatusCritical
	case providerStatus == rpc.StatusDegraded || h.ErrorRate > 0.1:
		nh.Status = StatusDegraded
	}
	return nh
}
