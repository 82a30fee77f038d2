package match

import (
	"github.com/vietddude/tracer/internal/core/domain"
	"github.com/vietddude/tracer/internal/indexing/filter"
)

// Matcher is a compiled Config. It is read-only after New and safe for
// concurrent use as long as the custom predicates are.
type Matcher struct {
	events    bool
	transfers bool

	eventRules    []EventPredicate
	transferRules []TransferPredicate
}

// New compiles cfg into a Matcher.
func New(cfg Config) *Matcher {
	m := &Matcher{
		events:    cfg.Event,
		transfers: cfg.Transfer,
	}

	if len(cfg.Contracts) > 0 {
		m.eventRules = append(m.eventRules, contractsRule(filter.New(cfg.Contracts)))
	}
	if cfg.EventFilter != nil {
		m.eventRules = append(m.eventRules, cfg.EventFilter)
	}

	if len(cfg.Address) > 0 {
		m.transferRules = append(m.transferRules, addressRule(filter.New(cfg.Address)))
	}
	if cfg.TransferFilter != nil {
		m.transferRules = append(m.transferRules, cfg.TransferFilter)
	}

	return m
}

// MatchEvent reports whether e is kept.
func (m *Matcher) MatchEvent(e domain.Event) bool {
	if !m.events {
		return false
	}
	for _, rule := range m.eventRules {
		if !rule(e) {
			return false
		}
	}
	return true
}

// MatchTransfer reports whether t is kept.
func (m *Matcher) MatchTransfer(t domain.Transfer) bool {
	if !m.transfers {
		return false
	}
	for _, rule := range m.transferRules {
		if !rule(t) {
			return false
		}
	}
	return true
}

// EventsEnabled reports whether any event can match.
func (m *Matcher) EventsEnabled() bool {
	return m.events
}

// TransfersEnabled reports whether any transfer can match.
func (m *Matcher) TransfersEnabled() bool {
	return m.transfers
}

func contractsRule(set filter.Filter) EventPredicate {
	return func(e domain.Event) bool {
		return set.Contains(e.Address)
	}
}

func addressRule(set filter.Filter) TransferPredicate {
	return func(t domain.Transfer) bool {
		return set.Contains(t.Sender) || set.Contains(t.Recipient)
	}
}
