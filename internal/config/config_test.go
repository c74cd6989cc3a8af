package config

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	for _, key := range []string{"SYNCVIEW_API_URL", "REMOTE_MODE", "CACHE_SWEEP_INTERVAL", "REMOTE_TIMEOUT", "SINGLE_FLIGHT", "DIGEST_SIZE"} {
		t.Setenv(key, "")
	}

	cfg := Load()

	assert.Equal(t, "http://localhost:8000", cfg.APIURL)
	assert.Equal(t, RemoteModeBackend, cfg.RemoteMode)
	assert.Equal(t, 5*time.Minute, cfg.CacheSweepInterval)
	assert.Equal(t, 30*time.Second, cfg.RemoteTimeout)
	assert.False(t, cfg.SingleFlight)
	assert.Equal(t, 3, cfg.DigestSize)
	require.NoError(t, cfg.Validate())
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("REMOTE_MODE", "Direct")
	t.Setenv("CACHE_SWEEP_INTERVAL", "30s")
	t.Setenv("SINGLE_FLIGHT", "true")
	t.Setenv("DIGEST_SIZE", "not a number")
	t.Setenv("TELEGRAM_BOT_TOKEN", "token")
	t.Setenv("TELEGRAM_WEBHOOK_URL", "")

	cfg := Load()

	assert.Equal(t, RemoteModeDirect, cfg.RemoteMode)
	assert.Equal(t, 30*time.Second, cfg.CacheSweepInterval)
	assert.True(t, cfg.SingleFlight)
	assert.Equal(t, 3, cfg.DigestSize, "invalid numbers keep the default")
	assert.False(t, cfg.TelegramEnabled())
}

func TestConfig_Validate(t *testing.T) {
	t.Parallel()

	valid := Config{RemoteMode: RemoteModeBackend, APIURL: "http://api", DigestSize: 1, TranslateWorkers: 1}
	require.NoError(t, valid.Validate())

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{name: "unknown mode", mutate: func(c *Config) { c.RemoteMode = "grpc" }},
		{name: "backend without url", mutate: func(c *Config) { c.APIURL = "" }},
		{name: "zero digest", mutate: func(c *Config) { c.DigestSize = 0 }},
		{name: "zero workers", mutate: func(c *Config) { c.TranslateWorkers = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cfg := valid
			tt.mutate(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestInitLoggerTo(t *testing.T) {
	var buf bytes.Buffer
	l := InitLoggerTo(&buf, "warn")

	l.Info().Msg("hidden")
	lg := Logger()
	lg.Warn().Str("key", "news_BBC").Msg("visible")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "visible")
	assert.Contains(t, out, "news_BBC")

	InitLoggerTo(&buf, "nonsense")
	assert.Equal(t, "info", Logger().GetLevel().String())
}

func TestLoadTopics(t *testing.T) {
	t.Parallel()

	index, err := LoadTopics("")
	require.NoError(t, err)
	assert.Len(t, index.Topics(), 6)

	dir := t.TempDir()
	path := filepath.Join(dir, "topics.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
topics:
  - name: 에너지
    keywords: [oil, gas, Solar]
  - name: 날씨
    keywords: [storm, rain]
`), 0o600))

	index, err = LoadTopics(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"에너지", "날씨"}, index.Topics())
	assert.Equal(t, []string{"oil", "gas", "solar"}, index.Keywords("에너지"))

	_, err = LoadTopics(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)

	empty := filepath.Join(dir, "empty.yaml")
	require.NoError(t, os.WriteFile(empty, []byte("topics: []\n"), 0o600))
	_, err = LoadTopics(empty)
	assert.Error(t, err)
}
