package game

import (
	"testing"

	"github.com/foxglove-games/greatwork/internal/model"
	"github.com/stretchr/testify/require"
)

func TestSettleDebtsAndReprisalPaysFromAvailableInfluence(t *testing.T) {
	s := newTestService(t)
	require.NoError(t, s.store.UpsertPlayer(model.Player{ID: "p1", Influence: map[string]int{"academic": 10}, Cooldowns: map[string]int{}}))
	require.NoError(t, s.store.UpsertInfluenceDebt("p1", "academic", model.DebtContract, 4))

	s.settleDebtsAndReprisal(s.now())

	debts, err := s.store.DebtsByPlayer("p1")
	require.NoError(t, err)
	require.Empty(t, debts, "debt fully paid from available influence")

	p, err := s.store.GetPlayer("p1")
	require.NoError(t, err)
	require.Equal(t, 6, p.Influence["academic"])
}

func TestSettleDebtsAndReprisalAppliesReprisalWhenAboveThreshold(t *testing.T) {
	s := newTestService(t)
	s.cfg.Contract.DebtReprisalThreshold = 3
	s.cfg.Contract.DebtReprisalPenalty = 2
	require.NoError(t, s.store.UpsertPlayer(model.Player{ID: "p2", Influence: map[string]int{"academic": 0}, Cooldowns: map[string]int{}}))
	require.NoError(t, s.store.UpsertInfluenceDebt("p2", "academic", model.DebtContract, 5))

	s.settleDebtsAndReprisal(s.now())

	p, err := s.store.GetPlayer("p2")
	require.NoError(t, err)
	require.Equal(t, -1, p.Reputation, "no influence to take, so reputation absorbs the reprisal")

	due, err := s.store.FetchDueOrders(s.now())
	require.NoError(t, err)
	require.Len(t, due, 1)
	require.Equal(t, "symposium_reprimand", due[0].OrderType)
}

func TestSettleDebtsAndReprisalSkipsBelowThreshold(t *testing.T) {
	s := newTestService(t)
	s.cfg.Contract.DebtReprisalThreshold = 100
	require.NoError(t, s.store.UpsertPlayer(model.Player{ID: "p3", Influence: map[string]int{}, Cooldowns: map[string]int{}}))
	require.NoError(t, s.store.UpsertInfluenceDebt("p3", "academic", model.DebtContract, 5))

	s.settleDebtsAndReprisal(s.now())

	due, err := s.store.FetchDueOrders(s.now())
	require.NoError(t, err)
	require.Empty(t, due)
}

func TestApplyContractUpkeepChargesPerContractedScholar(t *testing.T) {
	s := newTestService(t)
	s.cfg.Contract.UpkeepPerScholar = 2
	require.NoError(t, s.store.UpsertPlayer(model.Player{ID: "p1", Influence: map[string]int{"academic": 10}, Cooldowns: map[string]int{}}))
	sc1 := newTestScholar("s.c1")
	sc1.Contract = model.Contract{Employer: "p1", Faction: "academic"}
	sc2 := newTestScholar("s.c2")
	sc2.Contract = model.Contract{Employer: "p1", Faction: "academic"}
	require.NoError(t, s.store.UpsertScholar(sc1))
	require.NoError(t, s.store.UpsertScholar(sc2))

	s.applyContractUpkeep(s.now())

	p, err := s.store.GetPlayer("p1")
	require.NoError(t, err)
	require.Equal(t, 6, p.Influence["academic"], "2 scholars * upkeep 2 = 4 charged")
}

func TestApplyContractUpkeepRecordsResidualAsDebt(t *testing.T) {
	s := newTestService(t)
	s.cfg.Contract.UpkeepPerScholar = 10
	require.NoError(t, s.store.UpsertPlayer(model.Player{ID: "p1", Influence: map[string]int{"academic": 3}, Cooldowns: map[string]int{}}))
	sc := newTestScholar("s.poor")
	sc.Contract = model.Contract{Employer: "p1", Faction: "academic"}
	require.NoError(t, s.store.UpsertScholar(sc))

	s.applyContractUpkeep(s.now())

	p, err := s.store.GetPlayer("p1")
	require.NoError(t, err)
	require.Equal(t, 0, p.Influence["academic"])

	debts, err := s.store.DebtsByPlayer("p1")
	require.NoError(t, err)
	require.Len(t, debts, 1)
	require.Equal(t, 7, debts[0].Amount)
}

func TestRecordFactionInvestmentRejectsBelowMinimum(t *testing.T) {
	s := newTestService(t)
	s.cfg.FactionInvestment.MinAmount = 5
	require.NoError(t, s.store.UpsertPlayer(model.Player{ID: "p1", Influence: map[string]int{"academic": 10}, Cooldowns: map[string]int{}}))

	_, err := s.RecordFactionInvestment("p1", "academic", "endowment", 1)
	require.Error(t, err)
}

func TestRecordFactionInvestmentDebitsInfluence(t *testing.T) {
	s := newTestService(t)
	s.cfg.FactionInvestment.MinAmount = 1
	require.NoError(t, s.store.UpsertPlayer(model.Player{ID: "p1", Influence: map[string]int{"academic": 10}, Cooldowns: map[string]int{}}))

	_, err := s.RecordFactionInvestment("p1", "academic", "endowment", 4)
	require.NoError(t, err)

	p, err := s.store.GetPlayer("p1")
	require.NoError(t, err)
	require.Equal(t, 6, p.Influence["academic"])
}

func TestRecordArchiveEndowmentPaysDownSymposiumDebtFirst(t *testing.T) {
	s := newTestService(t)
	s.cfg.ArchiveEndowment.MinAmount = 1
	s.cfg.ArchiveEndowment.ReputationThreshold = 0
	require.NoError(t, s.store.UpsertPlayer(model.Player{ID: "p1", Influence: map[string]int{"academic": 10}, Cooldowns: map[string]int{}}))
	require.NoError(t, s.store.UpsertInfluenceDebt("p1", "academic", model.DebtSymposium, 3))

	_, err := s.RecordArchiveEndowment("p1", "academic", "program", 5)
	require.NoError(t, err)

	debts, err := s.store.DebtsByPlayer("p1")
	require.NoError(t, err)
	require.Empty(t, debts)
}
