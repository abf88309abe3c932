package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func chTempDir(t *testing.T) {
	t.Helper()
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) })
}

func TestLoadDefaults(t *testing.T) {
	chTempDir(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "sqlite", cfg.Store.Driver)
	assert.Equal(t, "radar.db", cfg.Store.Path)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 60, cfg.Transport.TimeoutSecs)
	assert.Equal(t, 3, cfg.Retry.MaxRetries)
	assert.Equal(t, 1000, cfg.Retry.InitialBackoffMS)
	assert.Equal(t, 5, cfg.Cache.TTLMinutes)
	assert.InDelta(t, 0.27, cfg.Pricing.InputPerMTok, 0.001)

	assert.Equal(t, "https://api.deepseek.com/chat/completions", cfg.Vendors["deepseek"].URL)
	assert.Equal(t, "https://open.bigmodel.cn/api/paas/v4/chat/completions", cfg.Vendors["zhipu"].URL)
	assert.Equal(t, "https://dashscope.aliyuncs.com/compatible-mode/v1/chat/completions", cfg.Vendors["aliyun"].URL)
	assert.Equal(t, "https://api.siliconflow.cn/v1/chat/completions", cfg.Vendors["siliconflow"].URL)

	require.Len(t, cfg.Practice.Chain, 3)
	assert.Equal(t, ChainEntry{Vendor: "deepseek", Model: "deepseek-chat"}, cfg.Practice.Chain[0])
	assert.Equal(t, ChainEntry{Vendor: "zhipu", Model: "glm-4-plus"}, cfg.Practice.Chain[1])
	assert.Equal(t, ChainEntry{Vendor: "aliyun", Model: "qwen-plus"}, cfg.Practice.Chain[2])

	// Cores default to the built-in table at registry construction, not here.
	assert.Empty(t, cfg.Cores)
}

func TestLoadFromYAML(t *testing.T) {
	chTempDir(t)

	yaml := `
store:
  driver: postgres
  database_url: postgres://localhost/radar
log:
  level: debug
  format: console
server:
  port: 9090
cache:
  ttl_minutes: 10
vendors:
  deepseek:
    api_key: test-key
cores:
  - id: deepseek-chat
    name: DeepSeek V3
    provider: deepseek
    family: chat_completion
`
	dir, _ := os.Getwd()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0o644))

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "postgres", cfg.Store.Driver)
	assert.Equal(t, "postgres://localhost/radar", cfg.Store.DatabaseURL)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, 10, cfg.Cache.TTLMinutes)
	assert.Equal(t, "test-key", cfg.Vendors["deepseek"].APIKey)
	// File values merge over defaults.
	assert.Equal(t, "https://api.deepseek.com/chat/completions", cfg.Vendors["deepseek"].URL)

	require.Len(t, cfg.Cores, 1)
	assert.Equal(t, "deepseek-chat", cfg.Cores[0].ID)
}

func TestDurationHelpers(t *testing.T) {
	assert.Equal(t, "1m0s", TransportConfig{TimeoutSecs: 60}.Timeout().String())
	assert.Equal(t, "5m0s", CacheConfig{TTLMinutes: 5}.TTL().String())
}

func TestInitLogger(t *testing.T) {
	require.NoError(t, InitLogger(LogConfig{Level: "debug", Format: "console"}))
	assert.NotNil(t, zap.L())

	require.NoError(t, InitLogger(LogConfig{Level: "info", Format: "json"}))

	err := InitLogger(LogConfig{Level: "not-a-level"})
	assert.Error(t, err)
}
