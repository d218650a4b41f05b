package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/encodeous/ripsim/state"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := loadConfig("")
	require.NoError(t, err)
	assert.Equal(t, state.DefaultSimCfg(), *cfg)

	_, err = loadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestConfigCommand(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sim.yaml")
	require.NoError(t, os.WriteFile(path, []byte("routers: 3\ntopology: \"1-2, 2-3\"\n"), 0600))

	out := &bytes.Buffer{}
	rootCmd.SetOut(out)
	rootCmd.SetArgs([]string{"config", "-c", path})
	defer rootCmd.SetArgs(nil)
	require.NoError(t, rootCmd.Execute())

	written := filepath.Join(t.TempDir(), "out.yaml")
	rootCmd.SetArgs([]string{"config", "-c", path, "-w", written})
	require.NoError(t, rootCmd.Execute())
	cfg, err := state.ReadSimConfig(written)
	require.NoError(t, err)

	assert.Contains(t, out.String(), "routers: 3")
	assert.Contains(t, out.String(), "update_interval: 300ms")
	assert.Equal(t, 3, cfg.Routers)
	assert.Equal(t, "1-2, 2-3", cfg.Topology)
	assert.Equal(t, state.DefaultRouterCfg(), cfg.RouterCfg)
}
