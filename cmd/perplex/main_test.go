package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tgienger/perplex/internal/config"
)

func resetFlags(t *testing.T) {
	t.Helper()
	t.Cleanup(func() {
		apiFlag, configFlag, debugFlag = "", "", false
	})
}

func TestFlagAliases(t *testing.T) {
	resetFlags(t)
	require.NoError(t, rootCmd.Flags().Parse([]string{"--api-url", "http://example.test", "--verbose"}))
	assert.Equal(t, "http://example.test", apiFlag)
	assert.True(t, debugFlag)
}

func TestLoadConfigFlagsWin(t *testing.T) {
	resetFlags(t)
	t.Setenv("PERPLEX_API_URL", "")
	t.Setenv("PERPLEX_TOKEN", "")
	t.Setenv("PERPLEX_UID", "")

	path := filepath.Join(t.TempDir(), "perplex.toml")
	require.NoError(t, os.WriteFile(path, []byte("[api]\nurl = \"http://from-file\"\nuid = \"u1\"\n"), 0644))

	configFlag = path
	apiFlag = "http://from-flag"
	cfg, err := loadConfig()
	require.NoError(t, err)
	assert.Equal(t, "http://from-flag", cfg.APIURL())
	assert.Equal(t, "u1", cfg.API.UID)
}

func TestLoadConfigRequiresUID(t *testing.T) {
	resetFlags(t)
	t.Setenv("PERPLEX_UID", "")

	configFlag = filepath.Join(t.TempDir(), "missing.toml")
	_, err := loadConfig()
	assert.ErrorIs(t, err, config.ErrMissingUID)
}

func TestVersionCommand(t *testing.T) {
	var out bytes.Buffer
	versionCmd.SetOut(&out)
	versionCmd.Run(versionCmd, nil)
	assert.Equal(t, versionString()+"\n", out.String())
	assert.Contains(t, out.String(), "perplex dev")
}
