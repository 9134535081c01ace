package store_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/on-the-ground/fleeting_state/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := store.DefaultConfig()
	assert.Equal(t, 2, cfg.MaxSlots)
	assert.True(t, cfg.IdentityReducer)
	assert.Equal(t, store.EffectsAsync, cfg.Effects.Mode)
	assert.Equal(t, store.DefaultEffectBufferSize, cfg.Effects.BufferSize)
	assert.Equal(t, store.DefaultEffectWorkers, cfg.Effects.NumWorkers)
	require.NoError(t, cfg.Validate())
}

func TestParseConfig_OverridesDefaults(t *testing.T) {
	cfg, err := store.ParseConfig([]byte(`
max_slots: 5
identity_reducer: false
effects:
  mode: sync
`))
	require.NoError(t, err)
	assert.Equal(t, 5, cfg.MaxSlots)
	assert.False(t, cfg.IdentityReducer)
	assert.Equal(t, store.EffectsSync, cfg.Effects.Mode)
	assert.Equal(t, store.DefaultEffectBufferSize, cfg.Effects.BufferSize, "unset keys keep their defaults")
}

func TestParseConfig_Empty(t *testing.T) {
	cfg, err := store.ParseConfig(nil)
	require.NoError(t, err)
	assert.Equal(t, store.DefaultConfig(), cfg)
}

func TestParseConfig_Invalid(t *testing.T) {
	cases := map[string]string{
		"malformed":     "max_slots: [",
		"zero slots":    "max_slots: 0",
		"unknown mode":  "effects: {mode: eventually}",
		"zero workers":  "effects: {mode: async, num_workers: 0}",
		"negative size": "effects: {buffer_size: -1}",
	}
	for name, doc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := store.ParseConfig([]byte(doc))
			assert.ErrorIs(t, err, store.ErrInvalidConfig)
		})
	}
}

func TestParseConfig_SyncIgnoresPoolSizing(t *testing.T) {
	_, err := store.ParseConfig([]byte("effects: {mode: sync, num_workers: 0, buffer_size: 0}"))
	assert.NoError(t, err)
}

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fleeting.yaml")
	require.NoError(t, os.WriteFile(path, []byte("max_slots: 3\n"), 0o600))

	cfg, err := store.LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 3, cfg.MaxSlots)

	_, err = store.LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestNew_RejectsInvalidConfig(t *testing.T) {
	cfg := store.DefaultConfig()
	cfg.MaxSlots = -1
	_, err := store.New(cfg)
	assert.ErrorIs(t, err, store.ErrInvalidConfig)
}
