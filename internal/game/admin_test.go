package game

import (
	"testing"

	"github.com/foxglove-games/greatwork/internal/model"
	"github.com/stretchr/testify/require"
)

func TestAdminAdjustReputationClampsToBounds(t *testing.T) {
	s := newTestService(t)
	require.NoError(t, s.store.UpsertPlayer(model.Player{ID: "p1", Reputation: 95, Influence: map[string]int{}, Cooldowns: map[string]int{}}))

	_, err := s.AdminAdjustReputation("root", "p1", 50)
	require.NoError(t, err)

	p, err := s.store.GetPlayer("p1")
	require.NoError(t, err)
	require.Equal(t, s.cfg.ReputationBounds.Max, p.Reputation)
}

func TestAdminAdjustInfluenceBypassesCap(t *testing.T) {
	s := newTestService(t)
	require.NoError(t, s.store.UpsertPlayer(model.Player{ID: "p1", Reputation: 0, Influence: map[string]int{}, Cooldowns: map[string]int{}}))

	_, err := s.AdminAdjustInfluence("root", "p1", "academic", 1000)
	require.NoError(t, err)

	p, err := s.store.GetPlayer("p1")
	require.NoError(t, err)
	require.Equal(t, 1000, p.Influence["academic"], "admin adjustment overrides the normal influence cap")
}

func TestAdminForceDefectionRewritesEmployer(t *testing.T) {
	s := newTestService(t)
	sc := newTestScholar("s.defect")
	sc.Contract = model.Contract{Employer: "p1", Faction: "academic"}
	require.NoError(t, s.store.UpsertScholar(sc))

	_, err := s.AdminForceDefection("root", sc.ID, "p2")
	require.NoError(t, err)

	updated, err := s.store.ScholarByID(sc.ID)
	require.NoError(t, err)
	require.Equal(t, "p2", updated.Contract.Employer)
}

func TestAdminCancelExpeditionRejectsAlreadyResolved(t *testing.T) {
	s := newTestService(t)
	outcome := model.OutcomeLandmark
	require.NoError(t, s.store.QueueExpedition(model.ExpeditionRecord{
		Code: "exp-1", Player: "p1", Type: model.ExpeditionField, QueuedAt: s.now(),
	}))
	require.NoError(t, s.store.ResolveExpedition("exp-1", outcome, 0, model.ExpeditionResult{}, s.now()))

	_, err := s.AdminCancelExpedition("root", "exp-1")
	require.Error(t, err)
}

func TestAdminCancelExpeditionMarksCancelled(t *testing.T) {
	s := newTestService(t)
	require.NoError(t, s.store.QueueExpedition(model.ExpeditionRecord{
		Code: "exp-2", Player: "p1", Type: model.ExpeditionField, QueuedAt: s.now(),
	}))

	_, err := s.AdminCancelExpedition("root", "exp-2")
	require.NoError(t, err)

	exp, err := s.store.ExpeditionByCode("exp-2")
	require.NoError(t, err)
	require.NotNil(t, exp.Outcome)
	require.Equal(t, model.OutcomeCancelled, *exp.Outcome)
}

func TestAdminCreateAndUpdateFactionProjectCompletesAtTarget(t *testing.T) {
	s := newTestService(t)
	id, _, err := s.AdminCreateFactionProject("root", model.FactionProject{Name: "Grand Library", Faction: "academic", Target: 10})
	require.NoError(t, err)

	_, err = s.AdminUpdateFactionProject("root", id, 12)
	require.NoError(t, err)

	proj, err := s.store.FactionProjectByID(id)
	require.NoError(t, err)
	require.Equal(t, "complete", proj.Status)
}

func TestPauseAndResumeGameRoundTrip(t *testing.T) {
	s := newTestService(t)

	s.PauseGame("root", "maintenance")
	paused, reason := s.Paused()
	require.True(t, paused)
	require.Equal(t, "maintenance", reason)

	s.ResumeGame("root", "done")
	paused, _ = s.Paused()
	require.False(t, paused)
}
