package join

import (
	"encoding/binary"

	"github.com/cespare/xxhash/v2"
)

// multimap is the chained hash multimap of spec §9's "Hash multimap
// choice": capacity is reserved up front from the build side's row
// count, and per-key enumeration preserves insertion order, giving
// the engine deterministic probe-order output for a fixed input
// (Checksum correctness never depends on this, since sums commute).
type multimap struct {
	buckets [][]mmEntry
	mask    uint64
}

type mmEntry struct {
	key uint64
	row uint64
}

// newMultimap reserves capacityMultiplier x buildSize buckets,
// rounded up to a power of two so key -> bucket is a mask, not a mod.
func newMultimap(buildSize uint64, capacityMultiplier int) *multimap {
	n := buildSize * uint64(capacityMultiplier)
	if n < 8 {
		n = 8
	}
	n = nextPow2(n)
	return &multimap{buckets: make([][]mmEntry, n), mask: n - 1}
}

func nextPow2(n uint64) uint64 {
	p := uint64(1)
	for p < n {
		p <<= 1
	}
	return p
}

func hashKey(k uint64) uint64 {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], k)
	return xxhash.Sum64(buf[:])
}

// insert adds (key, row) to the multimap.
func (m *multimap) insert(key, row uint64) {
	b := hashKey(key) & m.mask
	m.buckets[b] = append(m.buckets[b], mmEntry{key: key, row: row})
}

// forEach calls fn(row) for every row inserted under key, in
// insertion order.
func (m *multimap) forEach(key uint64, fn func(row uint64)) {
	b := hashKey(key) & m.mask
	for _, e := range m.buckets[b] {
		if e.key == key {
			fn(e.row)
		}
	}
}
