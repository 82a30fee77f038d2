package provider

import (
	"sync"
	"time"
)

// outcomeWindow is how many recent calls the error rate is computed over.
const outcomeWindow = 100

// BaseProvider tracks call outcomes shared by every provider kind.
// Error rate and availability are computed over the last outcomeWindow
// calls so a node that recovers reports healthy again.
type BaseProvider struct {
	Name    string
	Monitor *ProviderMonitor

	mu          sync.Mutex
	outcomes    [outcomeWindow]bool // true = failure
	next        int
	filled      int
	failures    int
	okLatency   time.Duration
	okCount     int
	lastSuccess time.Time
	lastFailure time.Time
}

// NewBaseProvider creates a new BaseProvider.
func NewBaseProvider(name string) *BaseProvider {
	return &BaseProvider{
		Name:        name,
		Monitor:     NewProviderMonitor(),
		lastSuccess: time.Now(),
	}
}

// GetName returns the provider's name.
func (p *BaseProvider) GetName() string {
	return p.Name
}

// GetHealth returns the provider's health status with a monitor snapshot.
func (p *BaseProvider) GetHealth() HealthStatus {
	stats := p.Monitor.GetStats()

	p.mu.Lock()
	defer p.mu.Unlock()

	h := HealthStatus{
		LastSuccessAt: p.lastSuccess,
		LastFailureAt: p.lastFailure,
		MonitorStats:  &stats,
	}
	if p.filled > 0 {
		h.ErrorRate = float64(p.failures) / float64(p.filled)
	}
	if p.okCount > 0 {
		h.Latency = p.okLatency / time.Duration(p.okCount)
	}
	h.Available = h.ErrorRate <= 0.5 &&
		stats.Status != StatusThrottled && stats.Status != StatusBlocked
	return h
}

// RecordSuccess records a completed call and its latency.
func (p *BaseProvider) RecordSuccess(latency time.Duration) {
	p.mu.Lock()
	p.record(false)
	p.okLatency += latency
	p.okCount++
	p.lastSuccess = time.Now()
	p.mu.Unlock()

	p.Monitor.RecordRequest(latency)
}

// RecordFailure records a failed call.
func (p *BaseProvider) RecordFailure() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.record(true)
	p.lastFailure = time.Now()
}

func (p *BaseProvider) record(failed bool) {
	if p.filled == outcomeWindow {
		if p.outcomes[p.next] {
			p.failures--
		}
	} else {
		p.filled++
	}
	p.outcomes[p.next] = failed
	if failed {
		p.failures++
	}
	p.next = (p.next + 1) % outcomeWindow
}
