package game

import (
	"fmt"

	"github.com/foxglove-games/greatwork/internal/enhancer"
	"github.com/foxglove-games/greatwork/internal/model"
	"github.com/foxglove-games/greatwork/internal/press"
)

// LaunchConference implements the launch_conference handler: generates
// a unique CONF-1000..9999 code, persists the conference, and emits a
// conference_scheduled press. Resolution happens at the next digest's
// resolve_conferences step, driven off the conferences table itself
// rather than the orders queue.
func (s *Service) LaunchConference(player string, theoryID int64, confidence model.Confidence, supporters, opposition []string) ([]model.PressRelease, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.checkPaused(false); err != nil {
		return nil, err
	}
	if _, err := s.ensurePlayer(player, player); err != nil {
		return nil, err
	}

	var code string
	for {
		code = fmt.Sprintf("CONF-%d", s.rng.RandInt(1000, 9999))
		if existing, err := s.store.ConferenceByCode(code); err != nil {
			return nil, err
		} else if existing == nil {
			break
		}
	}

	conf := model.Conference{
		Code: code, Player: player, TheoryID: theoryID, Confidence: confidence,
		Supporters: supporters, Opposition: opposition, LaunchedAt: s.now(),
	}
	if err := s.store.LaunchConference(conf); err != nil {
		return nil, err
	}

	ctx := press.Context{"code": code, "player": player, "subject": player,
		"body": fmt.Sprintf("%s convenes conference %s.", player, code)}
	primary := press.ConferenceScheduled(ctx)
	req := &enhancer.Request{ReleaseType: primary.Type, BaseBody: primary.Body}
	params := pressParamsFor(confidence, false, false, false, false, 0)
	out := s.emitOutcome(primary, req, params, ctx)

	s.appendEvent("conference_launched", map[string]any{"code": code, "player": player, "theory_id": theoryID})
	return out, nil
}

// ResolveConferences implements the resolve_conferences:
// every pending conference is resolved via the conference-specific
// roll/supporters/opposition variant, reputation is adjusted per the
// confidence wager table, and a conference_outcome press is emitted.
func (s *Service) ResolveConferences() ([]model.PressRelease, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.resolveConferencesLocked()
}

func (s *Service) resolveConferencesLocked() ([]model.PressRelease, error) {
	pending, err := s.store.PendingConferences()
	if err != nil {
		return nil, fmt.Errorf("game: resolve_conferences: %w", err)
	}

	var out []model.PressRelease
	for _, conf := range pending {
		result := s.resolver.ResolveConference(len(conf.Supporters), len(conf.Opposition))
		delta := s.confidenceDelta(conf.Confidence, result.Outcome)

		if p, err := s.store.GetPlayer(conf.Player); err == nil && p != nil {
			p.Reputation += delta
			s.clampReputation(p)
			_ = s.store.UpsertPlayer(*p)
		}

		payload := map[string]any{"roll": result.Roll, "final_score": result.FinalScore}
		if err := s.store.ResolveConference(conf.Code, result.Outcome, delta, payload, s.now()); err != nil {
			s.log.Error("resolve conference failed", "code", conf.Code, "error", err)
			continue
		}

		ctx := press.Context{"code": conf.Code, "player": conf.Player, "outcome": string(result.Outcome), "subject": conf.Player,
			"body": fmt.Sprintf("Conference %s concludes: %s.", conf.Code, result.Outcome)}
		primary := press.ConferenceOutcome(ctx)
		params := pressParamsFor(conf.Confidence, false, false, false, false, delta)
		out = append(out, s.emitOutcome(primary, nil, params, ctx)...)

		s.appendEvent("conference_resolved", map[string]any{"code": conf.Code, "outcome": string(result.Outcome), "reputation_delta": delta})
	}
	return out, nil
}
