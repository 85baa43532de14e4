package writer

import (
	"encoding/binary"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/starforge-tools/catgen/format"
	"github.com/starforge-tools/catgen/internal/octree"
	"github.com/starforge-tools/catgen/internal/particle"
)

func buildTinyTree(t *testing.T) (*octree.Octree, []*particle.Particle) {
	t.Helper()

	list := []*particle.Particle{
		{X: 0, Y: 0, Z: 0, AbsMag: 1.0, Hip: -1, ID: 1, Names: []string{"Sol"}},
		{X: 10, Y: 10, Z: 10, AbsMag: 2.0, Hip: -1, ID: 2, Names: []string{"Alpha", "Centauri"}},
	}

	tree := octree.New(1, false, 1, 100, 1.0e9, false, nil)
	_, _, _, err := tree.Generate(list)
	require.NoError(t, err)

	return tree, list
}

func TestWriteMetadata_HeaderAndNodeCount(t *testing.T) {
	tree, _ := buildTinyTree(t)
	dir := t.TempDir()

	w := New(dir, nil, format.CompressionNone, nil)
	require.NoError(t, w.WriteMetadata(tree))

	data, err := os.ReadFile(filepath.Join(dir, "metadata.bin"))
	require.NoError(t, err)
	require.GreaterOrEqual(t, len(data), 12)

	marker := int32(binary.BigEndian.Uint32(data[0:4]))
	version := int32(binary.BigEndian.Uint32(data[4:8]))
	nodeCount := int32(binary.BigEndian.Uint32(data[8:12]))

	assert.Equal(t, int32(-1), marker)
	assert.Equal(t, int32(1), version)

	live := 0
	for _, n := range tree.Nodes() {
		if !n.Deleted {
			live++
		}
	}
	assert.Equal(t, int32(live), nodeCount)
}

func TestWriteParticles_HeaderAndFileNaming(t *testing.T) {
	tree, list := buildTinyTree(t)
	dir := t.TempDir()

	w := New(dir, nil, format.CompressionNone, nil)
	require.NoError(t, w.WriteParticles(tree, list))

	for _, n := range tree.Nodes() {
		if n.Deleted {
			continue
		}

		path := filepath.Join(dir, "particles", fmt.Sprintf("particles_%06d.bin", n.ID))
		data, err := os.ReadFile(path)
		require.NoError(t, err)
		require.GreaterOrEqual(t, len(data), 12)

		marker := int32(binary.BigEndian.Uint32(data[0:4]))
		version := int32(binary.BigEndian.Uint32(data[4:8]))
		count := int32(binary.BigEndian.Uint32(data[8:12]))

		assert.Equal(t, int32(-1), marker)
		assert.Equal(t, int32(2), version)
		assert.Equal(t, int32(len(n.Objects)), count)
	}
}

func TestWriteParticles_OutOfRangeIndexErrors(t *testing.T) {
	tree, list := buildTinyTree(t)
	tree.Nodes()[0].Objects = append(tree.Nodes()[0].Objects, 999)

	dir := t.TempDir()
	w := New(dir, nil, format.CompressionNone, nil)

	err := w.WriteParticles(tree, list)
	assert.Error(t, err)
}
