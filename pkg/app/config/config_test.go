package config

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	cfg, err := New()
	require.NoError(t, err)
	require.Equal(t, "lore", cfg.AppName)
	require.Equal(t, 3334, cfg.Port)
	require.Equal(t, 524288, cfg.MaxMessageLength)
	require.Equal(t, uint(512), cfg.DefaultLimit)
	require.NotEmpty(t, cfg.DataDir)
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("LORE_PORT", "8080")
	t.Setenv("LORE_AUTH_REQUIRED", "true")
	t.Setenv("LORE_WHITELIST", "aa,bb")
	t.Setenv("LORE_AUTH_TIMEOUT", "30s")
	cfg, err := New()
	require.NoError(t, err)
	require.Equal(t, 8080, cfg.Port)
	require.True(t, cfg.AuthRequired)
	require.Equal(t, []string{"aa", "bb"}, cfg.Whitelist)
	require.Equal(t, "30s", cfg.AuthTimeout.String())
}

func TestPrintEnvRoundTrips(t *testing.T) {
	cfg, err := New()
	require.NoError(t, err)
	var sb strings.Builder
	PrintEnv(cfg, &sb)
	for _, line := range strings.Split(strings.TrimSpace(sb.String()), "\n") {
		require.True(t, strings.HasPrefix(line, "LORE_"), line)
		require.Contains(t, line, "=")
	}
}
