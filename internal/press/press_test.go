package press

import (
	"testing"

	"github.com/foxglove-games/greatwork/internal/model"
	"github.com/stretchr/testify/require"
)

func TestAcademicBulletinRendersContext(t *testing.T) {
	rel := AcademicBulletin(Context{
		"bulletin_number": 7,
		"player":          "d.kensington",
		"theory":          "Tides follow the old calendar",
		"confidence":      "certain",
		"deadline":        "Year 3, Spring",
	})
	require.Equal(t, "academic_bulletin", rel.Type)
	require.Contains(t, rel.Headline, "7")
	require.Contains(t, rel.Body, "d.kensington")
	require.Contains(t, rel.Body, "Tides follow the old calendar")
	require.Equal(t, 7, rel.Metadata["bulletin_number"])
}

func TestSelectDepthOrderedRules(t *testing.T) {
	require.Equal(t, DepthExtensive, SelectDepth(PlanParams{GreatProjectSuccess: true}))
	require.Equal(t, DepthExtensive, SelectDepth(PlanParams{Defection: true}))
	require.Equal(t, DepthExtensive, SelectDepth(PlanParams{Confidence: model.ConfidenceStakeMyCareer}))
	require.Equal(t, DepthBreaking, SelectDepth(PlanParams{ReputationDelta: -12}))
	require.Equal(t, DepthExtensive, SelectDepth(PlanParams{FirstTime: true}))
	require.Equal(t, DepthStandard, SelectDepth(PlanParams{ReputationDelta: 5}))
	require.Equal(t, DepthMinimal, SelectDepth(PlanParams{ReputationDelta: 1}))
}

func TestSelectDepthFirstMatchWins(t *testing.T) {
	// A breaking-magnitude delta alongside stake-my-career still
	// resolves to extensive: the career-stake rule is checked first.
	d := SelectDepth(PlanParams{ReputationDelta: -20, Confidence: model.ConfidenceStakeMyCareer})
	require.Equal(t, DepthExtensive, d)
}

func TestPlanMinimalHasNoLayers(t *testing.T) {
	layers := Plan(PlanParams{ReputationDelta: 1}, Context{"subject": "x"})
	require.Empty(t, layers)
}

func TestPlanStandardHasOneDelayedLayer(t *testing.T) {
	layers := Plan(PlanParams{ReputationDelta: 5}, Context{"subject": "x", "body": "y"})
	require.Len(t, layers, 1)
	require.Equal(t, "academic_gossip", layers[0].Generator)
	require.Equal(t, 30, layers[0].DelayMinutes)
	require.Equal(t, "x", layers[0].Context["subject"])
}

func TestPlanBreakingIncludesImmediateLayer(t *testing.T) {
	layers := Plan(PlanParams{ReputationDelta: -15}, Context{"subject": "x"})
	require.Len(t, layers, 5)
	require.Equal(t, 0, layers[0].DelayMinutes)
	require.Equal(t, "faction_statement", layers[0].Generator)
}

func TestPlanCopiesBaseContextPerLayer(t *testing.T) {
	base := Context{"subject": "shared"}
	layers := Plan(PlanParams{ReputationDelta: -15}, base)
	layers[0].Context["subject"] = "mutated"
	require.Equal(t, "shared", base["subject"], "Plan must copy, not alias, the base context")
}

func TestBuildResolvesKnownGenerator(t *testing.T) {
	rel, ok := Build(Layer{Generator: "academic_gossip", Context: Context{"subject": "a theory", "body": "so it's said"}})
	require.True(t, ok)
	require.Equal(t, "academic_gossip", rel.Type)
	require.Contains(t, rel.Headline, "a theory")
}

func TestBuildRejectsUnknownGenerator(t *testing.T) {
	_, ok := Build(Layer{Generator: "does_not_exist"})
	require.False(t, ok)
}

func TestToneSeedPropagatesToMetadata(t *testing.T) {
	rel := AcademicBulletin(Context{"tone_seed": "By gaslight and ink,", "bulletin_number": 1})
	require.Equal(t, "By gaslight and ink,", rel.Metadata["tone_seed"])
}
