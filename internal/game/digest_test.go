package game

import (
	"testing"
	"time"

	"github.com/foxglove-games/greatwork/internal/model"
	"github.com/stretchr/testify/require"
)

func TestDecrementCooldownsRemovesZeroed(t *testing.T) {
	s := newTestService(t)
	require.NoError(t, s.store.UpsertPlayer(model.Player{ID: "p1", Influence: map[string]int{}, Cooldowns: map[string]int{"expedition": 1, "recruitment": 3}}))

	s.decrementCooldowns()

	p, err := s.store.GetPlayer("p1")
	require.NoError(t, err)
	require.NotContains(t, p.Cooldowns, "expedition")
	require.Equal(t, 2, p.Cooldowns["recruitment"])
}

func TestProgressMentoredCareersAdvancesTierAfterRequiredTicks(t *testing.T) {
	s := newTestService(t)
	sc := newTestScholar("s.progress")
	sc.Career = model.Career{Track: model.TrackAcademia, Tier: 0, Ticks: careerTicksRequired - 1}
	require.NoError(t, s.store.UpsertScholar(sc))
	_, err := s.store.QueueMentorship(model.Mentorship{Player: "p1", Scholar: sc.ID, Start: s.now(), Status: model.MentorshipActive, Track: model.TrackAcademia})
	require.NoError(t, err)

	rels := s.progressMentoredCareers()
	require.Len(t, rels, 1)

	updated, err := s.store.ScholarByID(sc.ID)
	require.NoError(t, err)
	require.Equal(t, 1, updated.Career.Tier)
	require.Equal(t, 0, updated.Career.Ticks)
}

func TestProgressMentoredCareersCompletesMentorshipAtMaxTier(t *testing.T) {
	s := newTestService(t)
	sc := newTestScholar("s.final")
	sc.Career = model.Career{Track: model.TrackAcademia, Tier: maxCareerTier - 1, Ticks: careerTicksRequired - 1}
	require.NoError(t, s.store.UpsertScholar(sc))
	id, err := s.store.QueueMentorship(model.Mentorship{Player: "p1", Scholar: sc.ID, Start: s.now(), Status: model.MentorshipActive, Track: model.TrackAcademia})
	require.NoError(t, err)

	s.progressMentoredCareers()

	m, err := s.store.MentorshipByScholar(sc.ID)
	require.NoError(t, err)
	require.Nil(t, m, "mentorship should no longer be pending/active")

	active, err := s.store.MentorshipsByStatus(model.MentorshipActive)
	require.NoError(t, err)
	for _, a := range active {
		require.NotEqual(t, id, a.ID)
	}

	updated, err := s.store.ScholarByID(sc.ID)
	require.NoError(t, err)
	require.Contains(t, updated.Contract.MentorshipHistory, model.MentorshipHistoryEntry{Player: "p1", Event: "completion"})
}

func TestAdvanceTimelineStepAnnouncesElapsedYears(t *testing.T) {
	s := newTestService(t)
	// timeline anchor seeds to real wall-clock time on store creation,
	// so advance relative to it rather than a fixed calendar date.
	later := time.Now().AddDate(1, 0, 2)
	rel := s.advanceTimelineStep(later)
	require.NotNil(t, rel)
}

func TestAdvanceDigestNoopWhilePaused(t *testing.T) {
	s := newTestService(t)
	s.pauseInternal("test pause")

	rels, err := s.AdvanceDigest()
	require.NoError(t, err)
	require.Nil(t, rels)
}

func TestAdvanceDigestIsIdempotentWithNothingDue(t *testing.T) {
	s := newTestService(t)

	first, err := s.AdvanceDigest()
	require.NoError(t, err)
	second, err := s.AdvanceDigest()
	require.NoError(t, err)
	require.Equal(t, len(first), len(second), "two ticks with nothing queued release the same (empty) output")
}
