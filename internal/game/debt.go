package game

import (
	"fmt"
	"time"

	"github.com/foxglove-games/greatwork/internal/model"
	"github.com/foxglove-games/greatwork/internal/press"
)

// debtReprisalRule bundles the threshold/penalty/cooldown a debt source
// is judged against; each source configures its own trio ().
type debtReprisalRule struct {
	Threshold int
	Penalty   int
	Cooldown  time.Duration
}

func (s *Service) reprisalRuleFor(source model.DebtSource) debtReprisalRule {
	switch source {
	case model.DebtContract:
		return debtReprisalRule{s.cfg.Contract.DebtReprisalThreshold, s.cfg.Contract.DebtReprisalPenalty, s.cfg.Contract.DebtReprisalCooldown.Duration}
	case model.DebtSeasonal:
		return debtReprisalRule{s.cfg.Seasonal.ReprisalThreshold, s.cfg.Seasonal.ReprisalPenalty, s.cfg.Seasonal.ReprisalCooldown.Duration}
	default:
		return debtReprisalRule{s.cfg.Symposium.DebtReprisalThreshold, s.cfg.Symposium.DebtReprisalPenalty, s.cfg.Symposium.DebtReprisalCooldown.Duration}
	}
}

// settleDebtsAndReprisal implements the debt & reprisal
// subsystem: every outstanding debt is settled first-in-first-out from
// available influence; what remains past its source's threshold and
// cooldown draws a reprisal (influence penalty, or -1 reputation when
// the player holds nothing left to take) and a scheduled reprimand.
func (s *Service) settleDebtsAndReprisal(now time.Time) []model.PressRelease {
	debts, err := s.store.AllOutstandingDebts()
	if err != nil {
		s.log.Error("list outstanding debts failed", "error", err)
		return nil
	}
	var out []model.PressRelease
	for _, d := range debts {
		p, err := s.store.GetPlayer(d.Player)
		if err != nil || p == nil {
			continue
		}
		available := p.Influence[d.Faction]
		if available > 0 {
			pay := available
			if pay > d.Amount {
				pay = d.Amount
			}
			if pay > 0 {
				p.Influence[d.Faction] = available - pay
				if err := s.store.UpsertPlayer(*p); err != nil {
					s.log.Error("settle debt influence update failed", "player", p.ID, "error", err)
					continue
				}
				if err := s.store.PayInfluenceDebt(d.Player, d.Faction, d.Source, pay); err != nil {
					s.log.Error("settle debt failed", "player", p.ID, "error", err)
					continue
				}
				s.appendEvent("debt_settled", map[string]any{"player": d.Player, "faction": d.Faction, "source": d.Source, "amount": pay})
				d.Amount -= pay
			}
		}
		if d.Amount <= 0 {
			continue
		}

		rule := s.reprisalRuleFor(d.Source)
		if d.Amount < rule.Threshold {
			continue
		}
		if d.LastReprisal != nil && now.Sub(*d.LastReprisal) < rule.Cooldown {
			continue
		}

		if p.Influence[d.Faction] >= rule.Penalty {
			p.Influence[d.Faction] -= rule.Penalty
		} else {
			p.Reputation--
			s.clampReputation(p)
		}
		if err := s.store.UpsertPlayer(*p); err != nil {
			s.log.Error("reprisal influence update failed", "player", p.ID, "error", err)
			continue
		}
		if err := s.store.RecordReprisal(d.Player, d.Faction, d.Source); err != nil {
			s.log.Error("record reprisal failed", "player", p.ID, "error", err)
		}
		s.appendEvent("symposium_reprisal", map[string]any{"player": d.Player, "faction": d.Faction, "source": d.Source, "amount": d.Amount})

		scheduled := now
		_, _ = s.store.EnqueueOrder(model.Order{
			OrderType: "symposium_reprimand", ActorID: d.Player, SubjectID: d.Faction,
			Payload:     map[string]any{"player": d.Player, "faction": d.Faction, "amount": d.Amount, "source": string(d.Source)},
			ScheduledAt: &scheduled, Status: model.OrderPending, CreatedAt: now, UpdatedAt: now,
		})
	}
	return out
}

// handleSymposiumReprimand emits the reprimand press for a debt
// reprisal already applied by settleDebtsAndReprisal.
func (s *Service) handleSymposiumReprimand(order model.Order) []model.PressRelease {
	player, _ := order.Payload["player"].(string)
	faction, _ := order.Payload["faction"].(string)
	amountF, _ := order.Payload["amount"].(float64)
	ctx := press.Context{"player": player, "faction": faction, "amount": int(amountF), "subject": player}
	rel := press.SymposiumReprimand(ctx)
	if _, err := s.store.ArchivePress(rel); err != nil {
		return nil
	}
	s.appendEvent("symposium_reprimand", map[string]any{"player": player, "faction": faction})
	return []model.PressRelease{rel}
}

// contractedScholars returns every scholar currently under contract to
// player in faction.
func (s *Service) contractedScholars(all []model.Scholar, player, faction string) []model.Scholar {
	var out []model.Scholar
	for _, sc := range all {
		if sc.Contract.Employer == player && sc.Contract.Faction == faction {
			out = append(out, sc)
		}
	}
	return out
}

// averageFeelingToward returns the mean feeling a set of scholars hold
// toward subject, 0 if the set is empty.
func averageFeelingToward(scholars []model.Scholar, subject string) float64 {
	if len(scholars) == 0 {
		return 0
	}
	var sum float64
	for _, sc := range scholars {
		if sc.Memory != nil {
			sum += sc.Memory.Feeling(subject)
		}
	}
	return sum / float64(len(scholars))
}

// applyContractUpkeep implements digest step 10: every player with
// contracted scholars in a faction is charged upkeep_per_scholar ×
// count, paying down prior contract debt first and recording any
// residual as new contract debt ().
func (s *Service) applyContractUpkeep(now time.Time) []model.PressRelease {
	all, err := s.store.AllScholars()
	if err != nil {
		s.log.Error("contract upkeep: list scholars failed", "error", err)
		return nil
	}
	type pair struct{ player, faction string }
	counts := map[pair]int{}
	for _, sc := range all {
		if sc.Contract.Employer == "" || sc.Contract.Employer == "Independent" || sc.Contract.Faction == "" {
			continue
		}
		counts[pair{sc.Contract.Employer, sc.Contract.Faction}]++
	}

	var out []model.PressRelease
	for pr, count := range counts {
		p, err := s.store.GetPlayer(pr.player)
		if err != nil || p == nil {
			continue
		}
		cost := s.cfg.Contract.UpkeepPerScholar * count

		debts, err := s.store.DebtsByPlayer(pr.player)
		if err == nil {
			for _, d := range debts {
				if d.Source == model.DebtContract && d.Faction == pr.faction && d.Amount > 0 {
					paid := d.Amount
					if paid > p.Influence[pr.faction] {
						paid = p.Influence[pr.faction]
					}
					if paid > 0 {
						p.Influence[pr.faction] -= paid
						_ = s.store.PayInfluenceDebt(pr.player, pr.faction, model.DebtContract, paid)
					}
				}
			}
		}

		charge := cost
		if p.Influence[pr.faction] >= charge {
			p.Influence[pr.faction] -= charge
			charge = 0
		} else {
			charge -= p.Influence[pr.faction]
			p.Influence[pr.faction] = 0
		}
		if err := s.store.UpsertPlayer(*p); err != nil {
			s.log.Error("contract upkeep player update failed", "player", pr.player, "error", err)
			continue
		}
		if charge > 0 {
			if err := s.store.UpsertInfluenceDebt(pr.player, pr.faction, model.DebtContract, charge); err != nil {
				s.log.Error("contract upkeep debt record failed", "player", pr.player, "error", err)
			}
		}
		s.appendEvent("contract_upkeep", map[string]any{"player": pr.player, "faction": pr.faction, "cost": cost, "residual": charge})
	}

	out = append(out, s.settleDebtsAndReprisal(now)...)
	return out
}

// processSeasonalCommitments implements digest step 11: every
// commitment at least 6h past its last processing is charged, with a
// relationship modifier discounting the cost, residual recorded as
// seasonal debt, and completion on reaching end_at ().
func (s *Service) processSeasonalCommitments(now time.Time) []model.PressRelease {
	cutoff := now.Add(-6 * time.Hour)
	due, err := s.store.DueSeasonalCommitments(cutoff)
	if err != nil {
		s.log.Error("due seasonal commitments failed", "error", err)
		return nil
	}
	all, err := s.store.AllScholars()
	if err != nil {
		all = nil
	}

	var out []model.PressRelease
	for _, c := range due {
		p, err := s.store.GetPlayer(c.Player)
		if err != nil || p == nil {
			continue
		}
		scholars := s.contractedScholars(all, c.Player, c.Faction)
		relationship := averageFeelingToward(scholars, c.Player) * s.cfg.Seasonal.RelationshipWeight
		if relationship < s.cfg.Seasonal.MinRelationship {
			relationship = s.cfg.Seasonal.MinRelationship
		}
		discount := 1 - relationship
		if discount < 0.5 {
			discount = 0.5
		}
		cost := int(float64(c.BaseCost)*discount + 0.5)

		charge := cost
		if p.Influence[c.Faction] >= charge {
			p.Influence[c.Faction] -= charge
			charge = 0
		} else {
			charge -= p.Influence[c.Faction]
			p.Influence[c.Faction] = 0
		}
		if err := s.store.UpsertPlayer(*p); err != nil {
			s.log.Error("seasonal commitment player update failed", "player", c.Player, "error", err)
			continue
		}
		if charge > 0 {
			if err := s.store.UpsertInfluenceDebt(c.Player, c.Faction, model.DebtSeasonal, charge); err != nil {
				s.log.Error("seasonal commitment debt record failed", "player", c.Player, "error", err)
			}
		}

		status := c.Status
		ctx := press.Context{"player": c.Player, "faction": c.Faction, "cost": cost, "subject": c.Player}
		rel := press.SeasonalCommitmentUpdate(ctx)
		completed := !now.Before(c.EndAt)
		if completed {
			status = "completed"
			rel = press.SeasonalCommitmentComplete(ctx)
		}
		if err := s.store.MarkSeasonalCommitmentProcessed(c.ID, now, status); err != nil {
			s.log.Error("mark seasonal commitment processed failed", "id", c.ID, "error", err)
			continue
		}
		if _, err := s.store.ArchivePress(rel); err == nil {
			out = append(out, rel)
		}
		s.appendEvent("seasonal_commitment_processed", map[string]any{"id": c.ID, "player": c.Player, "faction": c.Faction, "cost": cost, "completed": completed})
	}
	return out
}

// advanceFactionProjects implements digest step 12: every active
// player with positive influence in a project's faction contributes
// influence × base_weight + a relationship term; reaching target
// completes the project and rewards contributors ().
func (s *Service) advanceFactionProjects() []model.PressRelease {
	projects, err := s.store.ActiveFactionProjects()
	if err != nil {
		s.log.Error("active faction projects failed", "error", err)
		return nil
	}
	if len(projects) == 0 {
		return nil
	}
	players, err := s.store.AllPlayers()
	if err != nil {
		s.log.Error("list players for faction projects failed", "error", err)
		return nil
	}
	all, err := s.store.AllScholars()
	if err != nil {
		all = nil
	}

	var out []model.PressRelease
	for _, proj := range projects {
		var delta float64
		var contributors []string
		for _, p := range players {
			held := p.Influence[proj.Faction]
			if held <= 0 {
				continue
			}
			scholars := s.contractedScholars(all, p.ID, proj.Faction)
			relationship := averageFeelingToward(scholars, p.ID) * s.cfg.FactionProject.RelationshipWeight
			contribution := float64(held)*s.cfg.FactionProject.BaseProgressWeight + relationship
			if contribution <= 0 {
				continue
			}
			delta += contribution
			contributors = append(contributors, p.ID)
		}
		if delta <= 0 {
			continue
		}
		updated, err := s.store.AddFactionProjectProgress(proj.ID, delta)
		if err != nil || updated == nil {
			s.log.Error("advance faction project failed", "project", proj.ID, "error", err)
			continue
		}
		s.appendEvent("faction_project_progress", map[string]any{"project": proj.ID, "delta": delta, "progress": updated.Progress})

		if updated.Progress >= updated.Target {
			if err := s.store.CompleteFactionProject(proj.ID); err != nil {
				s.log.Error("complete faction project failed", "project", proj.ID, "error", err)
				continue
			}
			reward := s.cfg.FactionProject.CompletionReward
			if reward > 0 && len(contributors) > 0 {
				share := reward / len(contributors)
				for _, pid := range contributors {
					if p, err := s.store.GetPlayer(pid); err == nil && p != nil {
						s.addInfluence(p, proj.Faction, share, false)
						_ = s.store.UpsertPlayer(*p)
					}
				}
			}
			ctx := press.Context{"name": proj.Name, "subject": proj.Faction}
			rel := press.FactionProjectComplete(ctx)
			if _, err := s.store.ArchivePress(rel); err == nil {
				out = append(out, rel)
			}
			s.appendEvent("faction_project_complete", map[string]any{"project": proj.ID, "contributors": contributors})
			continue
		}

		ctx := press.Context{"name": proj.Name, "subject": proj.Faction, "progress": updated.Progress, "target": updated.Target}
		rel := press.FactionProjectUpdate(ctx)
		if _, err := s.store.ArchivePress(rel); err == nil {
			out = append(out, rel)
		}
	}
	return out
}

// RecordFactionInvestment implements the faction_investment command: a
// direct influence sink into a faction's standing ().
func (s *Service) RecordFactionInvestment(player, faction, program string, amount int) (model.PressRelease, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if amount < s.cfg.FactionInvestment.MinAmount {
		return model.PressRelease{}, fmt.Errorf("game: faction investment below minimum of %d", s.cfg.FactionInvestment.MinAmount)
	}
	p, err := s.store.GetPlayer(player)
	if err != nil || p == nil {
		return model.PressRelease{}, fmt.Errorf("game: faction investment: unknown player %s", player)
	}
	if p.Influence[faction] < amount {
		return model.PressRelease{}, fmt.Errorf("game: faction investment: insufficient influence")
	}
	p.Influence[faction] -= amount
	if err := s.store.UpsertPlayer(*p); err != nil {
		return model.PressRelease{}, err
	}
	if _, err := s.store.RecordFactionInvestment(model.FactionInvestment{Player: player, Faction: faction, Amount: amount, Program: program}); err != nil {
		return model.PressRelease{}, err
	}
	s.appendEvent("faction_investment", map[string]any{"player": player, "faction": faction, "amount": amount, "program": program})

	ctx := press.Context{"player": player, "faction": faction, "amount": amount, "program": program, "subject": player}
	rel := press.FactionInvestmentRelease(ctx)
	if _, err := s.store.ArchivePress(rel); err != nil {
		return model.PressRelease{}, err
	}
	return rel, nil
}

// RecordArchiveEndowment implements the archive_endowment command: a
// direct influence sink that additionally pays down symposium then
// seasonal debts and grants a reputation bonus per threshold units
// given ().
func (s *Service) RecordArchiveEndowment(player, faction, program string, amount int) (model.PressRelease, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if amount < s.cfg.ArchiveEndowment.MinAmount {
		return model.PressRelease{}, fmt.Errorf("game: archive endowment below minimum of %d", s.cfg.ArchiveEndowment.MinAmount)
	}
	p, err := s.store.GetPlayer(player)
	if err != nil || p == nil {
		return model.PressRelease{}, fmt.Errorf("game: archive endowment: unknown player %s", player)
	}
	if p.Influence[faction] < amount {
		return model.PressRelease{}, fmt.Errorf("game: archive endowment: insufficient influence")
	}
	p.Influence[faction] -= amount
	if err := s.store.UpsertPlayer(*p); err != nil {
		return model.PressRelease{}, err
	}
	if _, err := s.store.RecordArchiveEndowment(model.ArchiveEndowment{Player: player, Faction: faction, Amount: amount, Program: program}); err != nil {
		return model.PressRelease{}, err
	}

	remaining := amount
	for _, source := range []model.DebtSource{model.DebtSymposium, model.DebtSeasonal} {
		if remaining <= 0 {
			break
		}
		debts, err := s.store.DebtsByPlayer(player)
		if err != nil {
			continue
		}
		for _, d := range debts {
			if d.Source != source || d.Faction != faction || d.Amount <= 0 || remaining <= 0 {
				continue
			}
			pay := d.Amount
			if pay > remaining {
				pay = remaining
			}
			if err := s.store.PayInfluenceDebt(player, faction, source, pay); err == nil {
				remaining -= pay
			}
		}
	}

	if s.cfg.ArchiveEndowment.ReputationThreshold > 0 {
		bonus := (amount / s.cfg.ArchiveEndowment.ReputationThreshold) * s.cfg.ArchiveEndowment.ReputationBonus
		if bonus > 0 {
			p2, err := s.store.GetPlayer(player)
			if err == nil && p2 != nil {
				p2.Reputation += bonus
				s.clampReputation(p2)
				_ = s.store.UpsertPlayer(*p2)
			}
		}
	}

	s.appendEvent("archive_endowment", map[string]any{"player": player, "faction": faction, "amount": amount, "program": program})

	ctx := press.Context{"player": player, "faction": faction, "amount": amount, "program": program, "subject": player}
	rel := press.ArchiveEndowmentRelease(ctx)
	if _, err := s.store.ArchivePress(rel); err != nil {
		return model.PressRelease{}, err
	}
	return rel, nil
}
