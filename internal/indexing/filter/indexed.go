package filter

// IndexedFilter checks a bloom filter before the exact set.
type IndexedFilter struct {
	bloom *BloomFilter
	exact *MemoryFilter
}

// New builds an IndexedFilter over the given addresses.
func New(addresses []string) *IndexedFilter {
	exact := NewMemoryFilter(addresses...)
	bloom := NewBloomFilter(exact.Size(), 0.01)
	for _, addr := range exact.Addresses() {
		bloom.Add(addr)
	}
	return &IndexedFilter{bloom: bloom, exact: exact}
}

// Contains checks if an address is in the set.
func (f *IndexedFilter) Contains(address string) bool {
	if !f.bloom.MayContain(address) {
		return false
	}
	return f.exact.Contains(address)
}

// Size returns the number of distinct addresses.
func (f *IndexedFilter) Size() int {
	return f.exact.Size()
}

// Addresses returns the canonical addresses in lexical order.
func (f *IndexedFilter) Addresses() []string {
	return f.exact.Addresses()
}
