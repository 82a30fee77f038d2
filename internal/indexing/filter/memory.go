package filter

import (
	"sort"
	"sync"
)

// MemoryFilter implements Filter using an in-memory map.
type MemoryFilter struct {
	addresses map[string]struct{}
	mu        sync.RWMutex
}

// NewMemoryFilter creates a filter holding the given addresses.
func NewMemoryFilter(addresses ...string) *MemoryFilter {
	f := &MemoryFilter{
		addresses: make(map[string]struct{}, len(addresses)),
	}
	f.AddBatch(addresses)
	return f
}

// Contains checks if an address is tracked.
func (f *MemoryFilter) Contains(address string) bool {
	f.mu.RLock()
	defer f.mu.RUnlock()
	_, exists := f.addresses[Normalize(address)]
	return exists
}

// Add adds an address to the filter.
func (f *MemoryFilter) Add(address string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.addresses[Normalize(address)] = struct{}{}
}

// AddBatch adds multiple addresses.
func (f *MemoryFilter) AddBatch(addresses []string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, addr := range addresses {
		f.addresses[Normalize(addr)] = struct{}{}
	}
}

// Size returns the number of tracked addresses.
func (f *MemoryFilter) Size() int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return len(f.addresses)
}

// Addresses returns the tracked addresses in lexical order.
func (f *MemoryFilter) Addresses() []string {
	f.mu.RLock()
	defer f.mu.RUnlock()
	result := make([]string, 0, len(f.addresses))
	for addr := range f.addresses {
		result = append(result, addr)
	}
	sort.Strings(result)
	return result
}
