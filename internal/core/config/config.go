package config

import (
	"time"

	"github.com/vietddude/tracer/internal/core/domain"
	redisclient "github.com/vietddude/tracer/internal/infra/redis"
)

// AppConfig represents the top-level configuration.
type AppConfig struct {
	Server   ServerConfig   `yaml:"server"`
	Logging  LoggingConfig  `yaml:"logging"`
	Node     NodeConfig     `yaml:"node"`
	Analyzer AnalyzerConfig `yaml:"analyzer"`
	Filter   FilterConfig   `yaml:"filter"`
	Cache    CacheConfig    `yaml:"cache"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port int `yaml:"port"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error
}

// NodeConfig describes the chain node to read from.
type NodeConfig struct {
	Type    domain.ChainType `yaml:"type"` // thor, evm
	Name    string           `yaml:"name"`
	URL     string           `yaml:"url"`
	Timeout time.Duration    `yaml:"timeout"`
	Retry   RetryConfig      `yaml:"retry"`
}

// RetryConfig holds transport retry settings.
type RetryConfig struct {
	MaxAttempts  int           `yaml:"max_attempts"`
	InitialDelay time.Duration `yaml:"initial_delay"`
	MaxDelay     time.Duration `yaml:"max_delay"`
}

// AnalyzerConfig tunes block analysis.
type AnalyzerConfig struct {
	Concurrency int `yaml:"concurrency"` // concurrent receipt fetches
}

// FilterConfig is the default filter applied when a request does not
// override a field. Event and Transfer are pointers so omission means true.
type FilterConfig struct {
	Event     *bool    `yaml:"event"`
	Transfer  *bool    `yaml:"transfer"`
	Address   []string `yaml:"address"`
	Contracts []string `yaml:"contracts"`
}

// CacheConfig enables the Redis receipt cache.
type CacheConfig struct {
	Enabled            bool          `yaml:"enabled"`
	TTL                time.Duration `yaml:"ttl"`
	redisclient.Config `yaml:",inline"`
}
