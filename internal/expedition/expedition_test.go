package expedition

import (
	"testing"

	"github.com/foxglove-games/greatwork/internal/model"
	"github.com/foxglove-games/greatwork/internal/rng"
	"github.com/stretchr/testify/require"
)

func TestResolveOutcomeBands(t *testing.T) {
	th := DefaultThresholds()
	cases := []struct {
		finalScore int
		want       model.ExpeditionOutcome
	}{
		{10, model.OutcomeFailure},
		{34, model.OutcomeFailure},
		{35, model.OutcomePartial},
		{64, model.OutcomePartial},
		{65, model.OutcomeSuccess},
		{89, model.OutcomeSuccess},
		{90, model.OutcomeLandmark},
		{150, model.OutcomeLandmark},
	}
	for _, c := range cases {
		var outcome model.ExpeditionOutcome
		switch {
		case c.finalScore < th.Failure:
			outcome = model.OutcomeFailure
		case c.finalScore < th.Partial:
			outcome = model.OutcomePartial
		case c.finalScore < th.Landmark:
			outcome = model.OutcomeSuccess
		default:
			outcome = model.OutcomeLandmark
		}
		require.Equal(t, c.want, outcome, "final score %d", c.finalScore)
	}
}

func TestResolveIsDeterministicForASeed(t *testing.T) {
	r1 := NewResolver(rng.New(42), nil, nil, nil, nil)
	r2 := NewResolver(rng.New(42), nil, nil, nil, nil)
	prep := model.ExpeditionPreparation{ThinkTankBonus: 5, ExpertiseBonus: 10}

	res1 := r1.Resolve(model.ExpeditionField, prep, model.PrepStandard)
	res2 := r2.Resolve(model.ExpeditionField, prep, model.PrepStandard)
	require.Equal(t, res1, res2)
}

func TestResolveFailureHasNoSidewaysEffects(t *testing.T) {
	r := NewResolver(rng.New(1), nil, nil, SidewaysChance{model.ExpeditionField: 1.0}, []SidewaysTemplate{
		{Kind: model.SidewaysFactionShift, Description: "a faction stirs"},
	})
	prep := model.ExpeditionPreparation{}
	var res model.ExpeditionResult
	for i := 0; i < 50; i++ {
		res = r.Resolve(model.ExpeditionField, prep, model.PrepShallow)
		if res.Outcome == model.OutcomeFailure {
			break
		}
	}
	if res.Outcome == model.OutcomeFailure {
		require.Empty(t, res.SidewaysEffects)
		require.NotEmpty(t, res.FailureDetail)
	}
}

func TestResolveSidewaysAlwaysFiresWhenChanceIsOne(t *testing.T) {
	r := NewResolver(rng.New(7), ThresholdsByType{model.ExpeditionField: {Failure: 0, Partial: 1, Landmark: 1000}},
		nil, SidewaysChance{model.ExpeditionField: 1.0}, []SidewaysTemplate{
			{Kind: model.SidewaysSpawnTheory, Description: "a new theory surfaces", Types: []model.ExpeditionType{model.ExpeditionField}},
		})
	res := r.Resolve(model.ExpeditionField, model.ExpeditionPreparation{}, model.PrepDeep)
	require.NotEqual(t, model.OutcomeFailure, res.Outcome)
	require.Len(t, res.SidewaysEffects, 1)
	require.Equal(t, model.SidewaysSpawnTheory, res.SidewaysEffects[0].Kind)
}

func TestDepthAdjustmentShiftsOutcomeNotRoll(t *testing.T) {
	adj := DepthAdjustment{model.PrepShallow: 0, model.PrepDeep: 50}
	rShallow := NewResolver(rng.New(99), nil, adj, SidewaysChance{}, nil)
	rDeep := NewResolver(rng.New(99), nil, adj, SidewaysChance{}, nil)

	shallow := rShallow.Resolve(model.ExpeditionField, model.ExpeditionPreparation{}, model.PrepShallow)
	deep := rDeep.Resolve(model.ExpeditionField, model.ExpeditionPreparation{}, model.PrepDeep)
	require.Equal(t, shallow.Roll, deep.Roll, "same seed means the same underlying roll")
	require.Greater(t, deep.FinalScore, shallow.FinalScore)
}

func TestResolveConferenceOutcomeBands(t *testing.T) {
	r := NewResolver(rng.New(3), nil, nil, nil, nil)
	res := r.ResolveConference(10, 0)
	require.GreaterOrEqual(t, res.FinalScore, res.Roll)
	switch {
	case res.FinalScore >= 60:
		require.Equal(t, model.OutcomeSuccess, res.Outcome)
	case res.FinalScore >= 40:
		require.Equal(t, model.OutcomePartial, res.Outcome)
	default:
		require.Equal(t, model.OutcomeFailure, res.Outcome)
	}
}
