package game

import (
	"github.com/foxglove-games/greatwork/internal/gameerr"
	"github.com/foxglove-games/greatwork/internal/model"
	"github.com/foxglove-games/greatwork/internal/press"
)

// adminPress wraps rel as an admin_action release and archives it, the
// common tail of every admin operation in : "all admin
// operations bypass most gameplay guards but still write events and
// press with type=admin_action so the archive shows provenance."
func (s *Service) adminPress(admin, headline, body string) model.PressRelease {
	ctx := press.Context{"admin": admin, "headline": headline, "body": body, "subject": admin}
	rel := press.AdminAction(ctx)
	if _, err := s.store.ArchivePress(rel); err != nil {
		s.log.Error("archive admin press failed", "error", err)
	}
	return rel
}

// AdminAdjustReputation implements admin_adjust_reputation: a direct,
// guard-bypassing reputation delta, still clamped to configured bounds.
func (s *Service) AdminAdjustReputation(admin, player string, delta int) (model.PressRelease, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, err := s.store.GetPlayer(player)
	if err != nil {
		return model.PressRelease{}, err
	}
	if p == nil {
		return model.PressRelease{}, gameerr.NotFound("player", player)
	}
	p.Reputation += delta
	s.clampReputation(p)
	if err := s.store.UpsertPlayer(*p); err != nil {
		return model.PressRelease{}, err
	}
	s.appendEvent("admin_adjust_reputation", map[string]any{"admin": admin, "player": player, "delta": delta})
	return s.adminPress(admin, "Reputation Adjusted", player+"'s reputation is adjusted by administrative decree."), nil
}

// AdminAdjustInfluence implements admin_adjust_influence: a direct
// influence delta, bypassing the normal cap.
func (s *Service) AdminAdjustInfluence(admin, player, faction string, delta int) (model.PressRelease, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, err := s.store.GetPlayer(player)
	if err != nil {
		return model.PressRelease{}, err
	}
	if p == nil {
		return model.PressRelease{}, gameerr.NotFound("player", player)
	}
	s.addInfluence(p, faction, delta, true)
	if err := s.store.UpsertPlayer(*p); err != nil {
		return model.PressRelease{}, err
	}
	s.appendEvent("admin_adjust_influence", map[string]any{"admin": admin, "player": player, "faction": faction, "delta": delta})
	return s.adminPress(admin, "Influence Adjusted", player+"'s "+faction+" influence is adjusted by administrative decree."), nil
}

// AdminForceDefection implements admin_force_defection: transfers a
// scholar's contract to a new employer outright, skipping odds and
// negotiation.
func (s *Service) AdminForceDefection(admin, scholarID, newEmployer string) (model.PressRelease, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sc, err := s.store.ScholarByID(scholarID)
	if err != nil {
		return model.PressRelease{}, err
	}
	if sc == nil {
		return model.PressRelease{}, gameerr.NotFound("scholar", scholarID)
	}
	sc.Contract.Employer = newEmployer
	if err := s.store.UpsertScholar(*sc); err != nil {
		return model.PressRelease{}, err
	}
	s.appendEvent("admin_force_defection", map[string]any{"admin": admin, "scholar": scholarID, "new_employer": newEmployer})
	return s.adminPress(admin, "Defection Ordered", sc.Name+" is reassigned to "+newEmployer+" by administrative decree."), nil
}

// AdminCancelExpedition implements admin_cancel_expedition: marks a
// pending expedition cancelled so the digest no longer resolves it.
func (s *Service) AdminCancelExpedition(admin, code string) (model.PressRelease, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	exp, err := s.store.ExpeditionByCode(code)
	if err != nil {
		return model.PressRelease{}, err
	}
	if exp == nil {
		return model.PressRelease{}, gameerr.NotFound("expedition", code)
	}
	if exp.Outcome != nil {
		return model.PressRelease{}, gameerr.InvalidInput("expedition %s already resolved", code)
	}
	if err := s.store.ResolveExpedition(code, model.OutcomeCancelled, 0, model.ExpeditionResult{}, s.now()); err != nil {
		return model.PressRelease{}, err
	}
	s.appendEvent("admin_cancel_expedition", map[string]any{"admin": admin, "code": code})
	return s.adminPress(admin, "Expedition Cancelled", "Expedition "+code+" is cancelled by administrative decree."), nil
}

// AdminCreateSeasonalCommitment implements admin_create_seasonal_commitment.
func (s *Service) AdminCreateSeasonalCommitment(admin string, c model.SeasonalCommitment) (int64, model.PressRelease, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if c.StartAt.IsZero() {
		c.StartAt = s.now()
	}
	if c.LastProcessed.IsZero() {
		c.LastProcessed = c.StartAt
	}
	if c.BaseCost == 0 {
		c.BaseCost = s.cfg.Seasonal.BaseCost
	}
	if c.EndAt.IsZero() {
		c.EndAt = c.StartAt.AddDate(0, 0, s.cfg.Seasonal.DurationDays)
	}
	id, err := s.store.CreateSeasonalCommitment(c)
	if err != nil {
		return 0, model.PressRelease{}, err
	}
	s.appendEvent("admin_create_seasonal_commitment", map[string]any{"admin": admin, "id": id, "player": c.Player, "faction": c.Faction})
	return id, s.adminPress(admin, "Seasonal Commitment Created", c.Player+" is committed to "+c.Faction+" by administrative decree."), nil
}

// AdminUpdateSeasonalCommitment implements admin_update_seasonal_commitment:
// an admin-forced processing stamp/status transition (cancel, complete early).
func (s *Service) AdminUpdateSeasonalCommitment(admin string, id int64, status string) (model.PressRelease, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.store.MarkSeasonalCommitmentProcessed(id, s.now(), status); err != nil {
		return model.PressRelease{}, err
	}
	s.appendEvent("admin_update_seasonal_commitment", map[string]any{"admin": admin, "id": id, "status": status})
	return s.adminPress(admin, "Seasonal Commitment Updated", "A seasonal commitment's status is changed by administrative decree."), nil
}

// AdminCreateFactionProject implements admin_create_faction_project.
func (s *Service) AdminCreateFactionProject(admin string, p model.FactionProject) (int64, model.PressRelease, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id, err := s.store.CreateFactionProject(p)
	if err != nil {
		return 0, model.PressRelease{}, err
	}
	s.appendEvent("admin_create_faction_project", map[string]any{"admin": admin, "id": id, "name": p.Name, "faction": p.Faction})
	return id, s.adminPress(admin, "Faction Project Launched", p.Name+" begins for "+p.Faction+" by administrative decree."), nil
}

// AdminUpdateFactionProject implements admin_update_faction_project: a
// direct progress adjustment, completing the project if it crosses target.
func (s *Service) AdminUpdateFactionProject(admin string, id int64, progressDelta float64) (model.PressRelease, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	updated, err := s.store.AddFactionProjectProgress(id, progressDelta)
	if err != nil {
		return model.PressRelease{}, err
	}
	if updated == nil {
		return model.PressRelease{}, gameerr.NotFound("faction_project", "")
	}
	if updated.Progress >= updated.Target {
		if err := s.store.CompleteFactionProject(id); err != nil {
			return model.PressRelease{}, err
		}
	}
	s.appendEvent("admin_update_faction_project", map[string]any{"admin": admin, "id": id, "delta": progressDelta})
	return s.adminPress(admin, "Faction Project Updated", updated.Name+"'s progress is adjusted by administrative decree."), nil
}

// ResumeGame implements resume_game: manually clears the paused flag
// regardless of cause ().
func (s *Service) ResumeGame(admin, reason string) model.PressRelease {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.resumeInternal()
	s.failWindow.RecordSuccess()
	s.appendEvent("game_resumed", map[string]any{"admin": admin, "reason": reason})
	return s.adminPress(admin, "Game Resumed", "Play resumes by administrative decree: "+reason)
}

// PauseGame implements the manual half of the pause trigger: an admin
// may pause play directly, same as an enhancer failure window would.
func (s *Service) PauseGame(admin, reason string) model.PressRelease {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.pauseInternal(reason)
	s.appendEvent("game_paused", map[string]any{"admin": admin, "reason": reason})
	return s.adminPress(admin, "Game Paused", "Play is paused by administrative decree: "+reason)
}
