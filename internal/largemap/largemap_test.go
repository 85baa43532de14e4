package largemap

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestShardModulo_Deterministic(t *testing.T) {
	assert.Equal(t, uint32(5), ShardModulo(5, 16))
	assert.Equal(t, uint32(5), ShardModulo(-11, 16))
}

func TestShardXXHash_Distributes(t *testing.T) {
	const n = 8
	seen := make(map[uint32]bool)
	for i := int64(0); i < 1000; i++ {
		seen[ShardXXHash(i, n)] = true
	}

	assert.Greater(t, len(seen), 1, "xxhash sharding should spread keys across more than one shard")
	for shard := range seen {
		assert.Less(t, shard, uint32(n))
	}
}

func TestLargeLongMap_PutGet(t *testing.T) {
	m := New[string](4)

	_, ok := m.Get(1)
	assert.False(t, ok)
	assert.True(t, m.IsEmpty())

	m.Put(1, "one")
	m.Put(2, "two")

	v, ok := m.Get(1)
	require.True(t, ok)
	assert.Equal(t, "one", v)
	assert.Equal(t, 2, m.Len())
	assert.True(t, m.ContainsKey(2))
}

func TestLargeLongMap_Delete(t *testing.T) {
	m := New[int](4)
	m.Put(10, 100)

	m.Delete(10)

	_, ok := m.Get(10)
	assert.False(t, ok)
	assert.True(t, m.IsEmpty())
}

func TestLargeLongMap_WithShardFunc(t *testing.T) {
	m := NewWithShardFunc[int](4, ShardModulo)

	for i := int64(0); i < 100; i++ {
		m.Put(i, int(i))
	}

	for i := int64(0); i < 100; i++ {
		v, ok := m.Get(i)
		require.True(t, ok)
		assert.Equal(t, int(i), v)
	}
}

func TestLargeLongMap_Overwrite(t *testing.T) {
	m := New[int](2)
	m.Put(7, 1)
	m.Put(7, 2)

	v, ok := m.Get(7)
	require.True(t, ok)
	assert.Equal(t, 2, v)
	assert.Equal(t, 1, m.Len())
}
