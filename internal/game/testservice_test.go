package game

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/foxglove-games/greatwork/internal/catalog"
	"github.com/foxglove-games/greatwork/internal/config"
	"github.com/foxglove-games/greatwork/internal/enhancer"
	"github.com/foxglove-games/greatwork/internal/model"
	"github.com/foxglove-games/greatwork/internal/store"
	"github.com/stretchr/testify/require"
)

// newTestService builds a Service over an empty TOML config (all
// defaults applied) and a fresh sqlite-backed store, following the
// teacher's pattern of exercising real collaborators in tests rather
// than mocking the store.
func newTestService(t *testing.T) *Service {
	t.Helper()
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "greatwork.toml")
	require.NoError(t, os.WriteFile(cfgPath, []byte(""), 0o644))
	cfg, err := config.Load(cfgPath)
	require.NoError(t, err)

	cat, err := catalog.Load(dir)
	require.NoError(t, err)

	st, err := store.Open(filepath.Join(dir, "greatwork.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	svc := New(st, cfg, 42, enhancer.Passthrough{}, cat, slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError})))
	return svc
}

func newTestScholar(id string) model.Scholar {
	return model.Scholar{
		ID:       id,
		Name:     id,
		Memory:   model.NewMemory(0.98),
		Contract: model.Contract{},
	}
}

func mustSetClock(s *Service, at time.Time) {
	s.Clock = func() time.Time { return at }
}
