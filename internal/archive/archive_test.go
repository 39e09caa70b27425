package archive

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/foxglove-games/greatwork/internal/model"
	"github.com/foxglove-games/greatwork/internal/store"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *store.Store {
	t.Helper()
	st, err := store.Open(filepath.Join(t.TempDir(), "greatwork.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	return st
}

func TestStoreExporterPressFeedOrdering(t *testing.T) {
	st := newTestStore(t)
	_, err := st.ArchivePress(model.PressRelease{Type: "academic_bulletin", Headline: "First"})
	require.NoError(t, err)
	_, err = st.ArchivePress(model.PressRelease{Type: "academic_bulletin", Headline: "Second"})
	require.NoError(t, err)

	exp := NewStoreExporter(st)
	feed, err := exp.PressFeed(0)
	require.NoError(t, err)
	require.Len(t, feed, 2)
	require.Equal(t, "Second", feed[0].Release.Headline, "feed is reverse-chronological")
}

func TestStoreExporterRosterAndEvents(t *testing.T) {
	st := newTestStore(t)
	require.NoError(t, st.UpsertScholar(model.Scholar{ID: "s.001", Name: "A. Test", Memory: model.NewMemory(0.98)}))
	_, err := st.AppendEvent("submit_theory", map[string]any{"player": "p1"})
	require.NoError(t, err)

	exp := NewStoreExporter(st)
	roster, err := exp.Roster()
	require.NoError(t, err)
	require.Len(t, roster, 1)

	events, err := exp.EventLog(time.Time{})
	require.NoError(t, err)
	require.Len(t, events, 1)
	require.Equal(t, "submit_theory", events[0].Action)
}

func TestStoreExporterSnapshotAggregatesAll(t *testing.T) {
	st := newTestStore(t)
	_, err := st.ArchivePress(model.PressRelease{Type: "academic_gossip", Headline: "Gossip"})
	require.NoError(t, err)
	require.NoError(t, st.UpsertScholar(model.Scholar{ID: "s.002", Name: "B. Test", Memory: model.NewMemory(0.98)}))
	_, err = st.AppendEvent("career_progression", map[string]any{"scholar": "s.002"})
	require.NoError(t, err)

	exp := NewStoreExporter(st)
	snap, err := exp.Snapshot(time.Now(), 10)
	require.NoError(t, err)
	require.Len(t, snap.Press, 1)
	require.Len(t, snap.Scholars, 1)
	require.Len(t, snap.Events, 1)
}
