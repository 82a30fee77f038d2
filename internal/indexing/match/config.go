// Package match decides which events and transfers of a block are kept.
//
// A Config is compiled into a Matcher. Every optional criterion that is
// absent contributes no rule, so the empty Config matches everything; every
// criterion that is present adds one rule, and an item must satisfy all of
// them. The Event and Transfer switches are checked before any rule.
package match

import "github.com/vietddude/tracer/internal/core/domain"

// EventPredicate is a caller-supplied test over a single event.
type EventPredicate func(domain.Event) bool

// TransferPredicate is a caller-supplied test over a single transfer.
type TransferPredicate func(domain.Transfer) bool

// Config describes which events and transfers to keep.
type Config struct {
	// Event enables the event category. False drops every event.
	Event bool

	// Transfer enables the transfer category. False drops every transfer.
	Transfer bool

	// Address keeps transfers whose sender or recipient is listed.
	// Empty means no address restriction.
	Address []string

	// Contracts keeps events emitted by a listed address.
	// Empty means no contract restriction.
	Contracts []string

	// EventFilter, when set, must also return true for an event to be kept.
	EventFilter EventPredicate

	// TransferFilter, when set, must also return true for a transfer to be kept.
	TransferFilter TransferPredicate
}

// DefaultConfig returns a Config that keeps everything.
func DefaultConfig() Config {
	return Config{Event: true, Transfer: true}
}

// Option configures a Config.
type Option func(*Config)

// NewConfig creates a Config from DefaultConfig with the given options applied.
func NewConfig(opts ...Option) Config {
	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}

// WithAddresses adds addresses to the transfer allow-list.
func WithAddresses(addrs ...string) Option {
	return func(c *Config) {
		c.Address = append(c.Address, addrs...)
	}
}

// WithContracts adds addresses to the event allow-list.
func WithContracts(addrs ...string) Option {
	return func(c *Config) {
		c.Contracts = append(c.Contracts, addrs...)
	}
}

// WithEventFilter sets the custom event predicate.
func WithEventFilter(fn EventPredicate) Option {
	return func(c *Config) {
		c.EventFilter = fn
	}
}

// WithTransferFilter sets the custom transfer predicate.
func WithTransferFilter(fn TransferPredicate) Option {
	return func(c *Config) {
		c.TransferFilter = fn
	}
}

// WithoutEvents disables the event category.
func WithoutEvents() Option {
	return func(c *Config) {
		c.Event = false
	}
}

// WithoutTransfers disables the transfer category.
func WithoutTransfers() Option {
	return func(c *Config) {
		c.Transfer = false
	}
}
