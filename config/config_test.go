package config

import (
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "sk-test")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, BackendOpenAI, cfg.Backend)
	assert.Equal(t, 4096, cfg.CompletionTokenLimit)
	assert.Equal(t, 1024, cfg.ResponseTokenLimit)
	assert.Equal(t, 1, cfg.DistillWorkers)
}

func TestLoad_MissingCredential(t *testing.T) {
	t.Setenv("CHAT_BACKEND", BackendAnthropic)
	t.Setenv("ANTHROPIC_API_KEY", "")

	_, err := Load()
	assert.ErrorContains(t, err, "ANTHROPIC_API_KEY")
}

func TestLoad_UnknownBackend(t *testing.T) {
	t.Setenv("CHAT_BACKEND", "llama-on-a-floppy")

	_, err := Load()
	assert.ErrorContains(t, err, "unknown backend")
}

func TestValidate_TokenLimits(t *testing.T) {
	cfg := &Config{
		Backend:              BackendMock,
		CompletionTokenLimit: 100,
		ResponseTokenLimit:   100,
	}
	assert.ErrorContains(t, cfg.Validate(), "must be below")
}

func TestLoggerConfig_MapsLevelAndFormat(t *testing.T) {
	cfg := &Config{LogLevel: "debug", LogFormat: "text"}
	lc := cfg.LoggerConfig()
	assert.Equal(t, slog.LevelDebug, lc.Level)
	assert.Equal(t, "text", lc.Format)

	cfg = &Config{LogLevel: "nonsense", LogFormat: "json"}
	lc = cfg.LoggerConfig()
	assert.Equal(t, slog.LevelInfo, lc.Level, "unknown levels fall back to info")
	assert.Equal(t, "json", lc.Format)
}

func TestChatOptions_OverlaysLimits(t *testing.T) {
	cfg := &Config{CompletionTokenLimit: 2048, ResponseTokenLimit: 256}
	opts := cfg.ChatOptions()
	assert.Equal(t, 2048, opts.CompletionTokenLimit)
	assert.Equal(t, 256, opts.ResponseTokenLimit)
	assert.NotEmpty(t, opts.SystemDescription, "defaults must be preserved")
}
