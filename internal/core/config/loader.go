package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v2"

	"github.com/vietddude/tracer/internal/core/domain"
	"github.com/vietddude/tracer/internal/indexing/match"
)

// Load reads configuration from a YAML file.
func Load(path string) (*AppConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return Parse(data)
}

// Parse decodes YAML content, expanding environment variables first.
func Parse(data []byte) (*AppConfig, error) {
	var cfg AppConfig
	expandedData := os.ExpandEnv(string(data))
	if err := yaml.Unmarshal([]byte(expandedData), &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &cfg, nil
}

func (c *AppConfig) applyDefaults() {
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Node.Type == "" {
		c.Node.Type = domain.ChainTypeThor
	}
	if c.Node.Name == "" {
		c.Node.Name = string(c.Node.Type)
	}
	if c.Node.Timeout == 0 {
		c.Node.Timeout = 10 * time.Second
	}
	if c.Node.Retry.MaxAttempts == 0 {
		c.Node.Retry.MaxAttempts = 3
	}
	if c.Node.Retry.InitialDelay == 0 {
		c.Node.Retry.InitialDelay = 500 * time.Millisecond
	}
	if c.Node.Retry.MaxDelay == 0 {
		c.Node.Retry.MaxDelay = 5 * time.Second
	}
	if c.Analyzer.Concurrency == 0 {
		c.Analyzer.Concurrency = 5
	}
	if c.Cache.TTL == 0 {
		c.Cache.TTL = 24 * time.Hour
	}
	if c.Cache.URL == "" {
		c.Cache.URL = "redis://localhost:6379/0"
	}
}

// Validate checks semantic constraints after defaults are applied.
func (c *AppConfig) Validate() error {
	var errs []error
	if !c.Node.Type.Valid() {
		errs = append(errs, fmt.Errorf("node.type %q is not one of thor, evm", c.Node.Type))
	}
	if c.Node.URL == "" {
		errs = append(errs, errors.New("node.url is required"))
	}
	if c.Analyzer.Concurrency < 0 {
		errs = append(errs, fmt.Errorf("analyzer.concurrency must be positive, got %d", c.Analyzer.Concurrency))
	}
	if c.Node.Retry.MaxAttempts < 0 {
		errs = append(errs, fmt.Errorf("node.retry.max_attempts must be positive, got %d", c.Node.Retry.MaxAttempts))
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Errorf("logging.level %q is not one of debug, info, warn, error", c.Logging.Level))
	}
	return errors.Join(errs...)
}

// ToMatchConfig converts the default filter into a match.Config.
func (f FilterConfig) ToMatchConfig() match.Config {
	cfg := match.DefaultConfig()
	if f.Event != nil {
		cfg.Event = *f.Event
	}
	if f.Transfer != nil {
		cfg.Transfer = *f.Transfer
	}
	cfg.Address = append([]string(nil), f.Address...)
	cfg.Contracts = append([]string(nil), f.Contracts...)
	return cfg
}
