package audio

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDiscoverEngineExplicitPath(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "engine-bin")
	require.NoError(t, os.WriteFile(path, []byte("fake"), 0700))

	resolved, err := DiscoverEngine(path, "")
	require.NoError(t, err)
	require.Equal(t, path, resolved)
}

func TestDiscoverEngineMissingExplicitPath(t *testing.T) {
	_, err := DiscoverEngine(filepath.Join(t.TempDir(), "missing"), "")
	require.ErrorIs(t, err, ErrEngineNotFound)
}

func TestDiscoverEngineNoneConfigured(t *testing.T) {
	saved := EngineBinary
	EngineBinary = nil
	defer func() { EngineBinary = saved }()

	_, err := DiscoverEngine("", t.TempDir())
	require.ErrorIs(t, err, ErrEngineNotFound)
}

func TestExtractCachedIsContentAddressedAndIdempotent(t *testing.T) {
	cacheDir := t.TempDir()
	payload := []byte("pretend-binary-bytes")

	path1, err := extractCached(payload, cacheDir, "engine")
	require.NoError(t, err)
	data, err := os.ReadFile(path1)
	require.NoError(t, err)
	require.Equal(t, payload, data)

	path2, err := extractCached(payload, cacheDir, "engine")
	require.NoError(t, err)
	require.Equal(t, path1, path2)
}
