package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

const validConfig = `
app:
  log_level: debug
indexer:
  endpoint: https://indexer.example/graphql
oracle:
  endpoint: https://hermes.example
  collateral_feeds:
    - "0xfeedusdc"
relayer:
  endpoint: https://relay.example
  api_key: secret
  order_manager: "0xmanager"
  batch_handler: "0xhandler"
keeper:
  interval: 15s
  batch_size: 25
`

func TestLoad(t *testing.T) {
	cfg, err := Load(writeConfig(t, validConfig))
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.App.LogLevel)
	assert.Equal(t, "https://indexer.example/graphql", cfg.Indexer.Endpoint)
	assert.Equal(t, []string{"0xfeedusdc"}, cfg.Oracle.CollateralFeeds)
	assert.Equal(t, "secret", cfg.Relayer.APIKey)
	assert.Equal(t, 25, cfg.Keeper.BatchSize)
	assert.Equal(t, 15*time.Second, cfg.Interval())

	// defaults fill the unset fields
	assert.Equal(t, 10, cfg.Oracle.TimeoutSeconds)
	assert.Equal(t, uint64(2_000_000), cfg.Relayer.GasLimitSettlement)
	assert.Equal(t, ":9970", cfg.Keeper.HTTPAddr)
	assert.Equal(t, "data/keeper.db", cfg.Store.Path)
}

func TestLoadMissingEndpoint(t *testing.T) {
	_, err := Load(writeConfig(t, `
indexer:
  endpoint: https://indexer.example/graphql
relayer:
  endpoint: https://relay.example
  order_manager: "0xmanager"
  batch_handler: "0xhandler"
`))
	assert.ErrorContains(t, err, "oracle.endpoint")
}

func TestLoadBadInterval(t *testing.T) {
	_, err := Load(writeConfig(t, `
indexer:
  endpoint: https://indexer.example/graphql
oracle:
  endpoint: https://hermes.example
relayer:
  endpoint: https://relay.example
  order_manager: "0xmanager"
  batch_handler: "0xhandler"
keeper:
  interval: soon
`))
	assert.ErrorContains(t, err, "keeper.interval")
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}
