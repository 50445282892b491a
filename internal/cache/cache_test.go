package cache

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"akipsinv/internal/config"
	"akipsinv/internal/inventory"
)

func sampleSnapshot() *inventory.Snapshot {
	return &inventory.Snapshot{
		ID:          "snap-1",
		Fingerprint: "fp",
		GeneratedAt: time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC),
		Groups:      []string{"Core", "Campus"},
		Hosts: map[string]*inventory.ResolvedHost{
			"sw1": {
				Name:   "sw1",
				Groups: []string{"Core"},
				Vars:   map[string]any{"ansible_host": "10.0.0.1"},
			},
		},
	}
}

func TestNew_SelectsBackend(t *testing.T) {
	store, err := New(config.CacheConfig{Enabled: false})
	require.NoError(t, err)
	assert.Nil(t, store)

	store, err = New(config.CacheConfig{Enabled: true, Backend: "file", Dir: t.TempDir()})
	require.NoError(t, err)
	assert.IsType(t, &FileStore{}, store)

	store, err = New(config.CacheConfig{Enabled: true, Backend: "sqlite", Path: filepath.Join(t.TempDir(), "c.db")})
	require.NoError(t, err)
	assert.IsType(t, &SQLiteStore{}, store)

	_, err = New(config.CacheConfig{Enabled: true, Backend: "redis"})
	assert.Error(t, err)
}

func TestFileStore_RoundTrip(t *testing.T) {
	store, err := NewFileStore(t.TempDir())
	require.NoError(t, err)

	_, ok, err := store.Get("missing")
	require.NoError(t, err)
	assert.False(t, ok, "missing file is a miss, not an error")

	want := sampleSnapshot()
	require.NoError(t, store.Put("fp", want))

	got, ok, err := store.Get("fp")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, want.ID, got.ID)
	assert.Equal(t, want.Groups, got.Groups)
	assert.Equal(t, "10.0.0.1", got.Hosts["sw1"].Vars["ansible_host"])
	assert.True(t, want.GeneratedAt.Equal(got.GeneratedAt))
}

func TestFileStore_PutReplaces(t *testing.T) {
	store, err := NewFileStore(t.TempDir())
	require.NoError(t, err)

	first := sampleSnapshot()
	require.NoError(t, store.Put("fp", first))

	second := sampleSnapshot()
	second.ID = "snap-2"
	require.NoError(t, store.Put("fp", second))

	got, ok, err := store.Get("fp")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "snap-2", got.ID)
}

func TestSQLiteStore_RoundTrip(t *testing.T) {
	store, err := NewSQLiteStore(filepath.Join(t.TempDir(), "cache.db"))
	require.NoError(t, err)
	defer store.Close()

	_, ok, err := store.Get("missing")
	require.NoError(t, err)
	assert.False(t, ok)

	want := sampleSnapshot()
	require.NoError(t, store.Put("fp", want))

	// upsert on the same key
	want.ID = "snap-2"
	require.NoError(t, store.Put("fp", want))

	got, ok, err := store.Get("fp")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "snap-2", got.ID)
	assert.Equal(t, []string{"Core", "Campus"}, got.Groups)
}

func TestFingerprint(t *testing.T) {
	a := Fingerprint("akips.yaml", "")
	b := Fingerprint("akips.yaml", "")
	assert.Equal(t, a, b, "same source must hash identically")
	assert.Len(t, a, 64)

	other := Fingerprint("other.yaml", "")
	assert.NotEqual(t, a, other)

	// without a config file the host stands in for the source
	h1 := Fingerprint("", "https://akips.example.com")
	h2 := Fingerprint("", "https://akips2.example.com")
	assert.NotEqual(t, h1, h2)
	assert.NotEqual(t, a, h1)
}
