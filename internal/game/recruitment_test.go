package game

import (
	"testing"

	"github.com/foxglove-games/greatwork/internal/model"
	"github.com/stretchr/testify/require"
)

func TestRelationshipModifierMentorshipTiers(t *testing.T) {
	s := newTestService(t)

	active := newTestScholar("s.active")
	require.NoError(t, s.store.UpsertScholar(active))
	_, err := s.store.QueueMentorship(model.Mentorship{Player: "p1", Scholar: active.ID, Start: s.now(), Status: model.MentorshipActive, Track: model.TrackAcademia})
	require.NoError(t, err)
	activeSc, err := s.store.ScholarByID(active.ID)
	require.NoError(t, err)
	require.InDelta(t, 0.05, s.relationshipModifier("p1", activeSc), 1e-9)

	completed := newTestScholar("s.completed")
	completed.Contract.MentorshipHistory = []model.MentorshipHistoryEntry{{Player: "p1", Event: "completion"}}
	require.InDelta(t, 0.04, s.relationshipModifier("p1", &completed), 1e-9)

	started := newTestScholar("s.started")
	started.Contract.MentorshipHistory = []model.MentorshipHistoryEntry{{Player: "p1", Event: "activation"}}
	require.InDelta(t, 0.02, s.relationshipModifier("p1", &started), 1e-9)

	stranger := newTestScholar("s.stranger")
	require.InDelta(t, 0.0, s.relationshipModifier("p1", &stranger), 1e-9)
}
