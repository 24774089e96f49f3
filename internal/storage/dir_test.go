package storage

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDirRoundTrip(t *testing.T) {
	d, err := NewDir(t.TempDir())
	require.NoError(t, err)

	_, ok, err := d.Get("missing")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, d.Set("jrmsu_books", []byte(`[{"id":"B1"}]`)))
	raw, ok, err := d.Get("jrmsu_books")
	require.NoError(t, err)
	require.True(t, ok)
	assert.JSONEq(t, `[{"id":"B1"}]`, string(raw))

	require.NoError(t, d.Delete("jrmsu_books"))
	_, ok, err = d.Get("jrmsu_books")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestDirRejectsTraversalKeys(t *testing.T) {
	root := t.TempDir()
	storeDir := filepath.Join(root, "data")
	d, err := NewDir(storeDir)
	require.NoError(t, err)

	bad := []string{
		"jrmsu_prefs_x/../../escape",
		"../outside",
		"..",
		".",
		"",
		`back\slash`,
		"nested/key",
		"dot..dot",
	}
	for _, key := range bad {
		assert.ErrorIs(t, d.Set(key, []byte("1")), ErrInvalidKey, key)
		_, _, err := d.Get(key)
		assert.ErrorIs(t, err, ErrInvalidKey, key)
		assert.ErrorIs(t, d.Delete(key), ErrInvalidKey, key)
	}

	// Nothing escaped the store directory.
	entries, err := os.ReadDir(root)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "data", entries[0].Name())
	inside, err := os.ReadDir(storeDir)
	require.NoError(t, err)
	assert.Empty(t, inside)
}

func TestDirDeleteAbsentIsNoop(t *testing.T) {
	d, err := NewDir(t.TempDir())
	require.NoError(t, err)
	assert.NoError(t, d.Delete("never_written"))
}

func TestDirSetLeavesNoTempFile(t *testing.T) {
	dir := t.TempDir()
	d, err := NewDir(dir)
	require.NoError(t, err)
	require.NoError(t, d.Set("k", []byte("1")))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "k.json", entries[0].Name())
}

func TestDirCreatesDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "data")
	_, err := NewDir(dir)
	require.NoError(t, err)
	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestGetJSONCorruptReadsZero(t *testing.T) {
	m := NewMemory()
	require.NoError(t, m.Set("k", []byte("{broken")))

	v, ok := GetJSON[map[string]string](m, "k")
	assert.False(t, ok)
	assert.Nil(t, v)
}

func TestPutJSONGetJSONRoundTrip(t *testing.T) {
	m := NewMemory()
	require.NoError(t, PutJSON(m, "k", map[string]int{"a": 1}))
	v, ok := GetJSON[map[string]int](m, "k")
	require.True(t, ok)
	assert.Equal(t, 1, v["a"])
}
