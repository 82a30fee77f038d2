package filter

import (
	"hash/fnv"
	"math"
)

// BloomFilter provides probabilistic address membership testing.
// False positives are possible, false negatives are not.
type BloomFilter struct {
	bits   []uint64
	size   uint64
	hashes int
}

// NewBloomFilter sizes a filter for n addresses at false positive rate p.
// size = -n*ln(p)/(ln2^2), hashes = size/n*ln2
func NewBloomFilter(n int, p float64) *BloomFilter {
	if n < 1 {
		n = 1
	}
	if p <= 0 || p >= 1 {
		p = 0.01
	}
	size := uint64(math.Ceil(-float64(n) * math.Log(p) / (math.Ln2 * math.Ln2)))
	if size < 64 {
		size = 64
	}
	hashes := int(math.Round(float64(size) / float64(n) * math.Ln2))
	if hashes < 1 {
		hashes = 1
	}
	return &BloomFilter{
		bits:   make([]uint64, (size+63)/64),
		size:   size,
		hashes: hashes,
	}
}

// Add adds a single address to the filter.
func (bf *BloomFilter) Add(address string) {
	h1, h2 := bf.hash(Normalize(address))
	for i := 0; i < bf.hashes; i++ {
		idx := (h1 + uint64(i)*h2) % bf.size
		bf.bits[idx/64] |= 1 << (idx % 64)
	}
}

// MayContain returns false only if the address is definitely not in the set.
func (bf *BloomFilter) MayContain(address string) bool {
	h1, h2 := bf.hash(Normalize(address))
	for i := 0; i < bf.hashes; i++ {
		idx := (h1 + uint64(i)*h2) % bf.size
		if bf.bits[idx/64]&(1<<(idx%64)) == 0 {
			return false
		}
	}
	return true
}

// hash derives two base hashes for double hashing (Kirsch-Mitzenmacher).
func (bf *BloomFilter) hash(value string) (uint64, uint64) {
	h := fnv.New64a()
	h.Write([]byte(value))
	h1 := h.Sum64()
	h.Write([]byte{0xff})
	h2 := h.Sum64() | 1
	return h1, h2
}
