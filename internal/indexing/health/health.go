// Package health provides node and cache health reporting.
package health

// SystemStatus represents the overall health state of the system or a component.
type SystemStatus string

const (
	StatusHealthy  SystemStatus = "healthy"
	StatusDegraded SystemStatus = "degraded"
	StatusCritical SystemStatus = "critical"
)

// NodeHealth contains health metrics for one chain node provider.
type NodeHealth struct {
	Name           string       `json:"name"`
	Status         SystemStatus `json:"status"`
	ProviderStatus string       `json:"provider_status"`
	ErrorRate      float64      `json:"error_rate"`
	AvgLatencyMs   int64        `json:"avg_latency_ms"`
	Requests24h    int          `json:"requests_24h"`
	Throttled429   int          `json:"throttled_429"`
	Blocked403     int          `json:"blocked_403"`
}

// CacheHealth reports the receipt cache connection.
type CacheHealth struct {
	Status SystemStatus `json:"status"`
	Error  string       `json:"error,omitempty"`
}

// HealthReport contains the full system health report.
type HealthReport struct {
	SystemStatus SystemStatus          `json:"system_status"`
	Nodes        map[string]NodeHealth `json:"nodes"`
	Cache        *CacheHealth          `json:"cache,omitempty"`
}

// worse returns the more severe of two statuses.
func worse(a, b SystemStatus) SystemStatus {
	rank := map[SystemStatus]int{StatusHealthy: 0, StatusDegraded: 1, StatusCritical: 2}
	if rank[b] > rank[a] {
		return b
	}
	return a
}
