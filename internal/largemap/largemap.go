// Package largemap implements a sharded map keyed by int64, built to
// hold hundreds of millions of entries (one per Gaia source_id) without
// the rehash stalls a single giant Go map would incur.
//
// The original generator shards with a plain key % n_maps. This port
// additionally offers xxhash-based sharding (ShardXXHash), which
// distributes negative and power-of-two-heavy key spaces more evenly;
// ShardModulo is kept for parity with the original and for tests that
// pin exact bucket placement.
package largemap

import (
	"encoding/binary"

	"github.com/starforge-tools/catgen/internal/hash"
)

// ShardFunc maps a key and a shard count to a bucket index in [0, n).
type ShardFunc func(key int64, n uint32) uint32

// ShardModulo is the original generator's sharding function: a plain
// key % n_maps, truncated to a non-negative bucket index.
func ShardModulo(key int64, n uint32) uint32 {
	m := key % int64(n)
	if m < 0 {
		m += int64(n)
	}

	return uint32(m)
}

// ShardXXHash hashes key's big-endian byte representation with xxHash64
// and reduces it modulo n. This is the default sharding function.
func ShardXXHash(key int64, n uint32) uint32 {
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], uint64(key))

	return uint32(hash.IDBytes(buf[:]) % uint64(n))
}

// LargeLongMap is a sharded map[int64]T.
type LargeLongMap[T any] struct {
	shard ShardFunc
	maps  []map[int64]T
	size  int
}

// New creates a LargeLongMap with n shards using the default
// (xxhash-based) sharding function. n must be at least 1.
func New[T any](n uint32) *LargeLongMap[T] {
	return NewWithShardFunc[T](n, ShardXXHash)
}

// NewWithShardFunc creates a LargeLongMap with n shards using a custom
// ShardFunc, e.g. ShardModulo for parity testing against the original
// generator's bucket placement.
func NewWithShardFunc[T any](n uint32, fn ShardFunc) *LargeLongMap[T] {
	if n == 0 {
		n = 1
	}

	maps := make([]map[int64]T, n)
	for i := range maps {
		maps[i] = make(map[int64]T)
	}

	return &LargeLongMap[T]{shard: fn, maps: maps}
}

// ContainsKey reports whether key is present.
func (m *LargeLongMap[T]) ContainsKey(key int64) bool {
	idx := m.shard(key, uint32(len(m.maps)))
	_, ok := m.maps[idx][key]

	return ok
}

// Put inserts or overwrites key with value.
func (m *LargeLongMap[T]) Put(key int64, value T) {
	idx := m.shard(key, uint32(len(m.maps)))
	if _, existed := m.maps[idx][key]; !existed {
		m.size++
	}
	m.maps[idx][key] = value
}

// Get returns the value stored for key, and whether it was present.
func (m *LargeLongMap[T]) Get(key int64) (T, bool) {
	idx := m.shard(key, uint32(len(m.maps)))
	v, ok := m.maps[idx][key]

	return v, ok
}

// Delete removes key, if present.
func (m *LargeLongMap[T]) Delete(key int64) {
	idx := m.shard(key, uint32(len(m.maps)))
	if _, ok := m.maps[idx][key]; ok {
		delete(m.maps[idx], key)
		m.size--
	}
}

// IsEmpty reports whether the map holds no entries.
func (m *LargeLongMap[T]) IsEmpty() bool {
	return m.size == 0
}

// Len returns the number of entries across all shards.
func (m *LargeLongMap[T]) Len() int {
	return m.size
}
