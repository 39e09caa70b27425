package scholars

import (
	"testing"

	"github.com/foxglove-games/greatwork/internal/catalog"
	"github.com/foxglove-games/greatwork/internal/model"
	"github.com/foxglove-games/greatwork/internal/rng"
	"github.com/stretchr/testify/require"
)

func testCatalog() *catalog.Catalog {
	return &catalog.Catalog{
		Archetypes: []catalog.Archetype{
			{Name: "Iconoclast", Catchphrase: "The old maps lie."},
			{Name: "Custodian", Catchphrase: "Nothing is lost that is properly filed."},
		},
		Namebank: []string{"Ironquill", "Brasswell", "Vesperhollow", "Castellane"},
	}
}

func TestGenerateProducesCompleteScholar(t *testing.T) {
	r := NewRepository(rng.New(1), testCatalog(), DefaultRosterBounds(), DefaultVocabulary())
	sc, err := r.Generate(1)
	require.NoError(t, err)
	require.NotEmpty(t, sc.ID)
	require.NotEmpty(t, sc.Name)
	require.NotEmpty(t, sc.Archetype)
	require.Equal(t, "Independent", sc.Contract.Employer)
	require.NotNil(t, sc.Memory)
	require.Len(t, sc.Disciplines, 2)
}

func TestGenerateFailsWithoutArchetypes(t *testing.T) {
	r := NewRepository(rng.New(1), &catalog.Catalog{Namebank: []string{"a", "b"}}, DefaultRosterBounds(), DefaultVocabulary())
	_, err := r.Generate(1)
	require.Error(t, err)
}

func TestGenerateFailsWithoutNamebank(t *testing.T) {
	r := NewRepository(rng.New(1), &catalog.Catalog{Archetypes: []catalog.Archetype{{Name: "a"}}}, DefaultRosterBounds(), DefaultVocabulary())
	_, err := r.Generate(1)
	require.Error(t, err)
}

func TestEnsureRosterSizeToppsUpBelowMin(t *testing.T) {
	r := NewRepository(rng.New(2), testCatalog(), RosterBounds{Min: 5, Max: 10}, DefaultVocabulary())
	generated, retire, err := r.EnsureRosterSize(3, 100)
	require.NoError(t, err)
	require.Len(t, generated, 2)
	require.Equal(t, 0, retire)
}

func TestEnsureRosterSizeFlagsRetirementAboveMax(t *testing.T) {
	r := NewRepository(rng.New(2), testCatalog(), RosterBounds{Min: 5, Max: 10}, DefaultVocabulary())
	generated, retire, err := r.EnsureRosterSize(13, 100)
	require.NoError(t, err)
	require.Empty(t, generated)
	require.Equal(t, 3, retire)
}

func TestRetirementPriorityOrdersIndependentFirst(t *testing.T) {
	scholars := []model.Scholar{
		{ID: "a", Contract: model.Contract{Employer: "bob"}, Stats: model.ScholarStats{Loyalty: 5}, Memory: model.NewMemory(0.98)},
		{ID: "b", Contract: model.Contract{Employer: "Independent"}, Stats: model.ScholarStats{Loyalty: 8}, Memory: model.NewMemory(0.98)},
		{ID: "c", Contract: model.Contract{Employer: "bob"}, Stats: model.ScholarStats{Loyalty: 1}, Memory: model.NewMemory(0.98)},
	}
	ranked := RetirementPriority(scholars)
	require.Equal(t, "b", ranked[0].ID, "Independent scholars retire first regardless of loyalty")
	require.Equal(t, "c", ranked[1].ID, "among contracted scholars, lowest loyalty retires next")
}
