package store

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/foxglove-games/greatwork/internal/model"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "greatwork.db")
	s, err := Open(dbPath)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestUpsertAndGetPlayer(t *testing.T) {
	s := newTestStore(t)
	p := model.Player{ID: "d.kensington", DisplayName: "D. Kensington", Reputation: 10,
		Influence: map[string]int{"academic": 5}, Cooldowns: map[string]int{"expedition": 2}}
	require.NoError(t, s.UpsertPlayer(p))

	got, err := s.GetPlayer("d.kensington")
	require.NoError(t, err)
	require.NotNil(t, got)
	require.Equal(t, 10, got.Reputation)
	require.Equal(t, 5, got.Influence["academic"])

	p.Reputation = 15
	require.NoError(t, s.UpsertPlayer(p))
	got, err = s.GetPlayer("d.kensington")
	require.NoError(t, err)
	require.Equal(t, 15, got.Reputation, "cache must reflect the latest write")
}

func TestGetPlayerMissingReturnsNil(t *testing.T) {
	s := newTestStore(t)
	got, err := s.GetPlayer("nobody")
	require.NoError(t, err)
	require.Nil(t, got)
}

func TestAllPlayersBypassesCache(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.UpsertPlayer(model.Player{ID: "a", DisplayName: "A"}))
	require.NoError(t, s.UpsertPlayer(model.Player{ID: "b", DisplayName: "B"}))
	all, err := s.AllPlayers()
	require.NoError(t, err)
	require.Len(t, all, 2)
}

func TestAppendEventRoundTrip(t *testing.T) {
	s := newTestStore(t)
	_, err := s.AppendEvent("submit_theory", map[string]any{"player": "d.kensington"})
	require.NoError(t, err)

	events, err := s.EventsSince(time.Now().Add(-time.Hour))
	require.NoError(t, err)
	require.Len(t, events, 1)
	require.Equal(t, "submit_theory", events[0].Action)
	require.Equal(t, "d.kensington", events[0].Payload["player"])
}

func TestQueuedPressDueOrdering(t *testing.T) {
	s := newTestStore(t)
	now := time.Now()
	_, err := s.EnqueuePressRelease(now.Add(-time.Minute), model.PressRelease{Type: "academic_gossip", Headline: "h1", Body: "b1"})
	require.NoError(t, err)
	_, err = s.EnqueuePressRelease(now.Add(time.Hour), model.PressRelease{Type: "analysis", Headline: "h2", Body: "b2"})
	require.NoError(t, err)

	due, err := s.DueQueuedPress(now)
	require.NoError(t, err)
	require.Len(t, due, 1)
	require.Equal(t, "h1", due[0].Release.Headline)

	require.NoError(t, s.ClearQueuedPress(due[0].ID))
	count, err := s.CountQueuedPress()
	require.NoError(t, err)
	require.Equal(t, 1, count)
}

func TestOrdersFetchDueAndUpdateStatus(t *testing.T) {
	s := newTestStore(t)
	past := time.Now().Add(-time.Minute)
	id, err := s.EnqueueOrder(model.Order{OrderType: "recruitment_followup", ActorID: "d.kensington", ScheduledAt: &past})
	require.NoError(t, err)

	due, err := s.FetchDueOrders(time.Now())
	require.NoError(t, err)
	require.Len(t, due, 1)
	require.Equal(t, model.OrderPending, due[0].Status)

	require.NoError(t, s.UpdateOrderStatus(id, model.OrderCompleted, map[string]any{"ok": true}))
	order, err := s.OrderByID(id)
	require.NoError(t, err)
	require.Equal(t, model.OrderCompleted, order.Status)
	require.Equal(t, true, order.Result["ok"])

	due, err = s.FetchDueOrders(time.Now())
	require.NoError(t, err)
	require.Empty(t, due, "completed orders must not be re-fetched as due")
}

func TestAdvanceTimelinePreservesRemainder(t *testing.T) {
	s := newTestStore(t)
	_, anchor, err := s.CurrentTimeline()
	require.NoError(t, err)

	// 1.5 years later: one year elapses, and the anchor moves by exactly
	// 360 days rather than snapping to "now", preserving the half-year
	// remainder for the next tick.
	now := anchor.AddDate(0, 0, 540)
	years, currentYear, err := s.AdvanceTimeline(now, 360)
	require.NoError(t, err)
	require.Equal(t, 1, years)
	require.Equal(t, 2, currentYear)

	_, newAnchor, err := s.CurrentTimeline()
	require.NoError(t, err)
	require.Equal(t, anchor.AddDate(0, 0, 360), newAnchor)

	years, _, err = s.AdvanceTimeline(now, 360)
	require.NoError(t, err)
	require.Equal(t, 0, years, "remaining 180 days is not enough for another year")
}

func TestExpeditionQueueAndResolve(t *testing.T) {
	s := newTestStore(t)
	e := model.ExpeditionRecord{
		Code: "EXP-1", Player: "d.kensington", Type: model.ExpeditionField,
		Objective: "survey", Team: []string{"s1"}, Funding: []string{"academic"},
		PrepDepth: model.PrepStandard, Confidence: model.ConfidenceCertain, QueuedAt: time.Now(),
	}
	require.NoError(t, s.QueueExpedition(e))

	pending, err := s.PendingExpeditions()
	require.NoError(t, err)
	require.Len(t, pending, 1)

	require.NoError(t, s.ResolveExpedition("EXP-1", model.OutcomeSuccess, 5, model.ExpeditionResult{Outcome: model.OutcomeSuccess}, time.Now()))

	pending, err = s.PendingExpeditions()
	require.NoError(t, err)
	require.Empty(t, pending)

	got, err := s.ExpeditionByCode("EXP-1")
	require.NoError(t, err)
	require.NotNil(t, got.Outcome)
	require.Equal(t, model.OutcomeSuccess, *got.Outcome)
}

func TestInfluenceDebtAccumulatesAndPays(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.UpsertInfluenceDebt("d.kensington", "academic", model.DebtSymposium, 3))
	require.NoError(t, s.UpsertInfluenceDebt("d.kensington", "academic", model.DebtSymposium, 2))

	debts, err := s.DebtsByPlayer("d.kensington")
	require.NoError(t, err)
	require.Len(t, debts, 1)
	require.Equal(t, 5, debts[0].Amount)

	require.NoError(t, s.PayInfluenceDebt("d.kensington", "academic", model.DebtSymposium, 5))
	debts, err = s.DebtsByPlayer("d.kensington")
	require.NoError(t, err)
	require.Empty(t, debts, "a fully paid debt is deleted")
}

func TestScholarUpsertRoundTripsMemory(t *testing.T) {
	s := newTestStore(t)
	mem := model.NewMemory(0.95)
	mem.AddFeeling("d.kensington", 2.5)
	mem.AddScar("betrayed_by_patron")
	sc := model.Scholar{ID: "sc-1", Name: "Prof. Ashgrove", Archetype: "pioneer", Memory: mem}
	require.NoError(t, s.UpsertScholar(sc))

	got, err := s.ScholarByID("sc-1")
	require.NoError(t, err)
	require.Equal(t, 2.5, got.Memory.Feeling("d.kensington"))
	require.True(t, got.Memory.Scars["betrayed_by_patron"])
}
