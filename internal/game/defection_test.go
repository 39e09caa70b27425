package game

import (
	"testing"
	"time"

	"github.com/foxglove-games/greatwork/internal/rng"
	"github.com/stretchr/testify/require"
)

// findSeedBetween searches small seeds for one whose first Uniform()
// draw falls strictly between lo and hi, so a test can force a roll
// into a known window without hardcoding a magic, unexplained seed.
func findSeedBetween(t *testing.T, lo, hi float64) int64 {
	t.Helper()
	for seed := int64(1); seed < 10000; seed++ {
		if roll := rng.New(seed).Uniform(); roll > lo && roll < hi {
			return seed
		}
	}
	t.Fatalf("no seed found with draw in (%f, %f)", lo, hi)
	return 0
}

func TestEvaluateDefectionOfferFoldsInRelationshipEffect(t *testing.T) {
	s := newTestService(t)

	// offerQuality=0.7 with zero stats gives defectionProbability alone
	// of 1/(1+exp(-1.2)) ~ 0.7685. A scholar who feels strongly positive
	// about their current employer earns a +0.2 relationship bonus,
	// which must be subtracted (relationship_effect = -bonus) before the
	// roll, dropping the effective probability to ~0.5685.
	const withoutEffect = 0.7685247834990178
	const withEffect = withoutEffect - 0.2

	seed := findSeedBetween(t, withEffect, withoutEffect)

	sc := newTestScholar("s.defect.fold")
	sc.Contract.Employer = "patron"
	sc.Memory.AddFeeling("patron", 10)
	require.NoError(t, s.store.UpsertScholar(sc))
	s.rng = rng.New(seed)

	accepted, err := s.EvaluateDefectionOffer(sc.ID, 0.7, 0, 0, 0, "rival")
	require.NoError(t, err)
	require.False(t, accepted, "the relationship bonus toward the current employer should pull the probability below the roll")
}

func TestEvaluateDefectionOfferAdjustsFeelingOnAcceptance(t *testing.T) {
	s := newTestService(t)

	seed := findSeedBetween(t, 0, 0.95) // offerQuality=5 clamps acceptance probability to 0.95

	sc := newTestScholar("s.defect.accept")
	sc.Contract.Employer = "patron"
	require.NoError(t, s.store.UpsertScholar(sc))
	s.rng = rng.New(seed)

	accepted, err := s.EvaluateDefectionOffer(sc.ID, 5, 0, 0, 0, "rival")
	require.NoError(t, err)
	require.True(t, accepted)

	updated, err := s.store.ScholarByID(sc.ID)
	require.NoError(t, err)
	require.Equal(t, "rival", updated.Contract.Employer)
	require.InDelta(t, -4, updated.Memory.Feeling("patron"), 1e-9)

	due, err := s.store.FetchDueOrders(s.now().Add(4 * 24 * time.Hour))
	require.NoError(t, err)
	var found bool
	for _, o := range due {
		if o.OrderType == "defection_return" && o.SubjectID == sc.ID {
			require.Equal(t, "patron", o.ActorID, "defection_return must record the former employer to reconcile back to")
			found = true
		}
	}
	require.True(t, found, "expected a scheduled defection_return order")
}

func TestEvaluateDefectionOfferAdjustsFeelingOnRefusal(t *testing.T) {
	s := newTestService(t)

	seed := findSeedBetween(t, 0.05, 1) // offerQuality=-5 clamps acceptance probability to 0.05

	sc := newTestScholar("s.defect.refuse")
	sc.Contract.Employer = "patron"
	require.NoError(t, s.store.UpsertScholar(sc))
	s.rng = rng.New(seed)

	accepted, err := s.EvaluateDefectionOffer(sc.ID, -5, 0, 0, 0, "rival")
	require.NoError(t, err)
	require.False(t, accepted)

	updated, err := s.store.ScholarByID(sc.ID)
	require.NoError(t, err)
	require.Equal(t, "patron", updated.Contract.Employer)
	require.InDelta(t, -2, updated.Memory.Feeling("rival"), 1e-9)
}
