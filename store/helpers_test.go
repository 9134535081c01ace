package store_test

import (
	"testing"

	"github.com/on-the-ground/fleeting_state/store"
	"github.com/stretchr/testify/require"
)

type profile struct {
	Name string
	Age  int
}

type settings struct {
	Theme string
	Beta  bool
}

type session struct {
	Token string
}

func newRegistry(t *testing.T, maxSlots int) *store.Registry {
	t.Helper()
	r, err := store.NewRegistry(maxSlots)
	require.NoError(t, err)
	return r
}

func newStore(t *testing.T, mode store.EffectMode, opts ...store.Option) *store.Store {
	t.Helper()
	cfg := store.DefaultConfig()
	cfg.Effects.Mode = mode
	s, err := store.New(cfg, opts...)
	require.NoError(t, err)
	t.Cleanup(s.Close)
	return s
}
