package sidecar

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeCSV(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	return path
}

func TestLoad_BasicCSV(t *testing.T) {
	dir := t.TempDir()
	path := writeCSV(t, dir, "sidecar.csv", "source_id,geodist,fidelity\n1,100.5,0.9\n2,,0.5\n")

	store, err := Load(path)
	require.NoError(t, err)

	assert.True(t, store.HasColumn("geodist"))
	assert.True(t, store.HasColumn("FIDELITY"))
	assert.False(t, store.HasColumn("missing"))

	v, ok := store.Get("geodist", 1)
	require.True(t, ok)
	assert.InDelta(t, 100.5, v, 1e-9)

	_, ok = store.Get("geodist", 2)
	assert.False(t, ok, "blank cell should report absent")

	_, ok = store.Get("geodist", 999)
	assert.False(t, ok, "unknown source id should report absent")
}

func TestLoad_BadHeaderRejected(t *testing.T) {
	dir := t.TempDir()
	path := writeCSV(t, dir, "bad.csv", "ra,dec\n1,2\n")

	_, err := Load(path)
	require.Error(t, err)
}

func TestChain_FirstMatchWins(t *testing.T) {
	dir := t.TempDir()
	first := writeCSV(t, dir, "first.csv", "source_id,geodist\n1,10.0\n")
	second := writeCSV(t, dir, "second.csv", "source_id,geodist\n1,20.0\n2,30.0\n")

	s1, err := Load(first)
	require.NoError(t, err)
	s2, err := Load(second)
	require.NoError(t, err)

	chain := Chain{s1, s2}

	v, ok := chain.Get("geodist", 1)
	require.True(t, ok)
	assert.InDelta(t, 10.0, v, 1e-9, "first store in chain should win")

	v, ok = chain.Get("geodist", 2)
	require.True(t, ok)
	assert.InDelta(t, 30.0, v, 1e-9, "second store should answer when first has no row")

	assert.True(t, chain.HasColumn("geodist"))
	assert.False(t, chain.HasColumn("nope"))
}
