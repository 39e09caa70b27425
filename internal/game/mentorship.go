package game

import (
	"fmt"

	"github.com/foxglove-games/greatwork/internal/gameerr"
	"github.com/foxglove-games/greatwork/internal/model"
)

// QueueMentorship implements the queue_mentorship: persists a
// pending Mentorship and enqueues its mentorship_activation order,
// resolved at the next digest tick (no scheduled_at delay).
func (s *Service) QueueMentorship(player, scholarID string, track model.CareerTrack) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.checkPaused(false); err != nil {
		return 0, err
	}
	if existing, err := s.store.MentorshipByScholar(scholarID); err != nil {
		return 0, err
	} else if existing != nil && existing.Status == model.MentorshipActive {
		return 0, gameerr.InvalidInput("scholar %q already has an active mentorship", scholarID)
	}

	id, err := s.store.QueueMentorship(model.Mentorship{
		Player: player, Scholar: scholarID, Start: s.now(), Status: model.MentorshipPending, Track: track,
	})
	if err != nil {
		return 0, err
	}
	_, err = s.store.EnqueueOrder(model.Order{
		OrderType: "mentorship_activation", ActorID: player, SubjectID: scholarID,
		Status: model.OrderPending, CreatedAt: s.now(), UpdatedAt: s.now(),
		Payload: map[string]any{"mentorship_id": id},
	})
	if err != nil {
		return 0, err
	}
	s.appendEvent("mentorship_queued", map[string]any{"mentorship_id": id, "player": player, "scholar": scholarID})
	return id, nil
}

// AssignLab implements the assign_lab: the caller must be the
// scholar's active mentor; changing track resets tier/ticks to the
// start of the new track.
func (s *Service) AssignLab(player, scholarID string, track model.CareerTrack) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.checkPaused(false); err != nil {
		return err
	}
	m, err := s.store.MentorshipByScholar(scholarID)
	if err != nil {
		return err
	}
	if m == nil || m.Status != model.MentorshipActive || m.Player != player {
		return gameerr.InvalidInput("%q is not the active mentor for scholar %q", player, scholarID)
	}
	sc, err := s.store.ScholarByID(scholarID)
	if err != nil {
		return err
	}
	if sc == nil {
		return gameerr.NotFound("scholar", scholarID)
	}
	if sc.Career.Track != track {
		sc.Career.Track = track
		sc.Career.Tier = 1
		sc.Career.Ticks = 0
	}
	if err := s.store.UpsertScholar(*sc); err != nil {
		return fmt.Errorf("game: assign_lab: %w", err)
	}
	s.appendEvent("lab_assigned", map[string]any{"player": player, "scholar": scholarID, "track": string(track)})
	return nil
}
