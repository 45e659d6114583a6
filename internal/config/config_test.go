package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultIsValid(t *testing.T) {
	require.NoError(t, Default().Validate())
}

func TestLoadCreatesDefaultOnFirstRun(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "gomoku.yaml")
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)

	_, err = os.Stat(path)
	require.NoError(t, err)
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "gomoku.yaml")
	require.NoError(t, os.WriteFile(path, []byte("ai_depth: 3\nengine_color: white\nghost_mode: true\n"), 0644))
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 3, cfg.AiDepth)
	assert.Equal(t, "white", cfg.EngineColor)
	assert.True(t, cfg.GhostMode)
	assert.Equal(t, 15, cfg.BoardSize)
}

func TestValidateRejects(t *testing.T) {
	cases := map[string]func(*Config){
		"depth above max":   func(c *Config) { c.AiDepth = 9; c.AiMaxDepth = 8 },
		"negative depth":    func(c *Config) { c.AiDepth = -1 },
		"board below win":   func(c *Config) { c.BoardSize = 5; c.WinLength = 6 },
		"bad color":         func(c *Config) { c.EngineColor = "red" },
		"bad level":         func(c *Config) { c.LogLevel = "loud" },
		"missing addr":      func(c *Config) { c.Addr = "" },
		"zero burst":        func(c *Config) { c.MoveBurst = 0 },
		"tick too frequent": func(c *Config) { c.TickIntervalMs = 1 },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			cfg := Default()
			mutate(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestParseRejectsInvalidYAML(t *testing.T) {
	_, err := Parse([]byte("ai_depth: [1"))
	assert.Error(t, err)
	_, err = Parse([]byte("ai_depth: 7\nai_max_depth: 4\n"))
	assert.Error(t, err)
}
