package cmd

import (
	"testing"
	"time"

	"github.com/chew-z/screenshot-translator/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApplyValue(t *testing.T) {
	cfg := config.DefaultConfig()

	require.NoError(t, applyValue(&cfg, "api_base", "http://gpu:9000/"))
	require.NoError(t, applyValue(&cfg, "ctx_size", "32768"))
	require.NoError(t, applyValue(&cfg, "probe_timeout", "750ms"))
	require.NoError(t, applyValue(&cfg, "debug", "true"))

	assert.Equal(t, "http://gpu:9000", cfg.APIBase)
	assert.Equal(t, 32768, cfg.CtxSize)
	assert.Equal(t, 750*time.Millisecond, cfg.ProbeTimeout)
	assert.True(t, cfg.Debug)
}

func TestApplyValue_Invalid(t *testing.T) {
	cfg := config.DefaultConfig()

	assert.Error(t, applyValue(&cfg, "ctx_size", "big"))
	assert.Error(t, applyValue(&cfg, "ctx_size", "-1"))
	assert.Error(t, applyValue(&cfg, "request_timeout", "soon"))
	assert.Error(t, applyValue(&cfg, "nope", "x"))
}

func TestLookupValue_CoversAllKeys(t *testing.T) {
	cfg := config.DefaultConfig()
	for _, key := range config.Keys {
		_, ok := lookupValue(&cfg, key)
		assert.True(t, ok, key)
	}
	_, ok := lookupValue(&cfg, "api_key")
	assert.False(t, ok)
}

func TestSaveValue_DoesNotPersistEnvironment(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("LLAMA_CTX", "4096")
	t.Setenv("LLAMA_SERVER_URL", "http://from-env:1234")

	base, err := config.LoadFile()
	require.NoError(t, err)
	require.NoError(t, saveValue(base, "port", "9000"))

	saved, err := config.LoadFile()
	require.NoError(t, err)
	assert.Equal(t, 9000, saved.Port)
	assert.Equal(t, 8192, saved.CtxSize)
	assert.Equal(t, "http://127.0.0.1:8009", saved.APIBase)

	effective, err := config.Load()
	require.NoError(t, err)
	assert.Equal(t, 4096, effective.CtxSize)
}

func TestSaveValue_RejectsInvalid(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	base := config.DefaultConfig()
	err := saveValue(&base, "ctx_size", "zero")
	assert.ErrorContains(t, err, "invalid ctx_size value")
}
