package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadDefaultsWithoutFile(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	require.Equal(t, 50, cfg.NCandidates)
	require.True(t, cfg.RearrangeTokens)
	require.Equal(t, 1, cfg.TopN)
	require.Equal(t, "info", cfg.LogLevel)
}

func TestLoadFromExplicitFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "ubpe.yaml")
	contents := "nTokens: 512\nalphabetSize: 256\nnCandidates: 25\nrearrangeTokens: false\ntopN: 3\n"
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, 512, cfg.NTokens)
	require.Equal(t, 256, cfg.AlphabetSize)
	require.Equal(t, 25, cfg.NCandidates)
	require.False(t, cfg.RearrangeTokens)
	require.Equal(t, 3, cfg.TopN)
}
