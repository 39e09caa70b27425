package store

import (
	"database/sql"
	"fmt"

	"github.com/foxglove-games/greatwork/internal/model"
)

// CreateSymposiumTopic inserts a new voting topic.
func (s *Store) CreateSymposiumTopic(t model.SymposiumTopic) (int64, error) {
	res, err := s.db.Exec(
		`INSERT INTO symposium_topics (date, topic, description, status) VALUES (?, ?, ?, ?)`,
		t.Date, t.Topic, t.Description, string(orderedTopicStatus(t.Status)),
	)
	if err != nil {
		return 0, fmt.Errorf("store: create symposium topic: %w", err)
	}
	return res.LastInsertId()
}

func orderedTopicStatus(s model.SymposiumTopicStatus) model.SymposiumTopicStatus {
	if s == "" {
		return model.TopicVoting
	}
	return s
}

// ResolveSymposiumTopic records the winning option and marks the topic resolved.
func (s *Store) ResolveSymposiumTopic(id int64, winner int) error {
	_, err := s.db.Exec(`UPDATE symposium_topics SET status = 'resolved', winner = ? WHERE id = ?`, winner, id)
	if err != nil {
		return fmt.Errorf("store: resolve symposium topic %d: %w", id, err)
	}
	return nil
}

// CurrentSymposiumTopic returns the topic currently open for voting, if any.
func (s *Store) CurrentSymposiumTopic() (*model.SymposiumTopic, error) {
	row := s.db.QueryRow(`SELECT id, date, topic, description, status, winner FROM symposium_topics WHERE status = 'voting' ORDER BY id DESC LIMIT 1`)
	var t model.SymposiumTopic
	var status string
	if err := row.Scan(&t.ID, &t.Date, &t.Topic, &t.Description, &status, &t.Winner); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("store: current symposium topic: %w", err)
	}
	t.Status = model.SymposiumTopicStatus(status)
	return &t, nil
}

// SubmitSymposiumProposal inserts a player-submitted candidate topic.
func (s *Store) SubmitSymposiumProposal(p model.SymposiumProposal) (int64, error) {
	res, err := s.db.Exec(
		`INSERT INTO symposium_proposals (player, topic, description, expire_at, priority, status) VALUES (?, ?, ?, ?, ?, ?)`,
		p.Player, p.Topic, p.Description, p.ExpireAt, p.Priority, string(orderedProposalStatus(p.Status)),
	)
	if err != nil {
		return 0, fmt.Errorf("store: submit symposium proposal: %w", err)
	}
	return res.LastInsertId()
}

func orderedProposalStatus(s model.SymposiumProposalStatus) model.SymposiumProposalStatus {
	if s == "" {
		return model.ProposalPending
	}
	return s
}

// PendingSymposiumProposals returns every proposal awaiting selection,
// highest priority first.
func (s *Store) PendingSymposiumProposals() ([]model.SymposiumProposal, error) {
	rows, err := s.db.Query(
		`SELECT id, player, topic, description, created, expire_at, priority, status FROM symposium_proposals WHERE status = 'pending' ORDER BY priority DESC, created ASC`,
	)
	if err != nil {
		return nil, fmt.Errorf("store: pending symposium proposals: %w", err)
	}
	defer rows.Close()

	var proposals []model.SymposiumProposal
	for rows.Next() {
		var p model.SymposiumProposal
		var status string
		if err := rows.Scan(&p.ID, &p.Player, &p.Topic, &p.Description, &p.Created, &p.ExpireAt, &p.Priority, &status); err != nil {
			return nil, fmt.Errorf("store: scan symposium proposal: %w", err)
		}
		p.Status = model.SymposiumProposalStatus(status)
		proposals = append(proposals, p)
	}
	return proposals, rows.Err()
}

// UpdateSymposiumProposalStatus transitions a proposal's status.
func (s *Store) UpdateSymposiumProposalStatus(id int64, status model.SymposiumProposalStatus) error {
	_, err := s.db.Exec(`UPDATE symposium_proposals SET status = ? WHERE id = ?`, string(status), id)
	if err != nil {
		return fmt.Errorf("store: update symposium proposal status %d: %w", id, err)
	}
	return nil
}

// CastSymposiumVote upserts a player's vote for the given topic.
func (s *Store) CastSymposiumVote(v model.SymposiumVote) error {
	_, err := s.db.Exec(
		`INSERT INTO symposium_votes (topic_id, player, option) VALUES (?, ?, ?)
		 ON CONFLICT(topic_id, player) DO UPDATE SET option = excluded.option`,
		v.TopicID, v.Player, v.Option,
	)
	if err != nil {
		return fmt.Errorf("store: cast symposium vote: %w", err)
	}
	return nil
}

// SymposiumVoteTally returns the vote counts per option for a topic.
func (s *Store) SymposiumVoteTally(topicID int64) (map[int]int, error) {
	rows, err := s.db.Query(`SELECT option, COUNT(*) FROM symposium_votes WHERE topic_id = ? GROUP BY option`, topicID)
	if err != nil {
		return nil, fmt.Errorf("store: symposium vote tally %d: %w", topicID, err)
	}
	defer rows.Close()

	tally := map[int]int{}
	for rows.Next() {
		var option, count int
		if err := rows.Scan(&option, &count); err != nil {
			return nil, fmt.Errorf("store: scan vote tally: %w", err)
		}
		tally[option] = count
	}
	return tally, rows.Err()
}

// VotersForTopic returns the set of players who have voted on a topic.
func (s *Store) VotersForTopic(topicID int64) (map[string]bool, error) {
	rows, err := s.db.Query(`SELECT player FROM symposium_votes WHERE topic_id = ?`, topicID)
	if err != nil {
		return nil, fmt.Errorf("store: voters for topic %d: %w", topicID, err)
	}
	defer rows.Close()

	voters := map[string]bool{}
	for rows.Next() {
		var player string
		if err := rows.Scan(&player); err != nil {
			return nil, fmt.Errorf("store: scan voter: %w", err)
		}
		voters[player] = true
	}
	return voters, rows.Err()
}

// CreateSymposiumPledge inserts a player's pledge for a topic.
func (s *Store) CreateSymposiumPledge(p model.SymposiumPledge) error {
	_, err := s.db.Exec(
		`INSERT INTO symposium_pledges (topic_id, player, amount, faction, status) VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(topic_id, player) DO UPDATE SET amount = excluded.amount, faction = excluded.faction, status = excluded.status`,
		p.TopicID, p.Player, p.Amount, p.Faction, string(orderedPledgeStatus(p.Status)),
	)
	if err != nil {
		return fmt.Errorf("store: create symposium pledge: %w", err)
	}
	return nil
}

func orderedPledgeStatus(s model.PledgeStatus) model.PledgeStatus {
	if s == "" {
		return model.PledgePending
	}
	return s
}

// UpdateSymposiumPledgeStatus transitions a pledge's status and stamps
// resolved_at.
func (s *Store) UpdateSymposiumPledgeStatus(topicID int64, player string, status model.PledgeStatus) error {
	_, err := s.db.Exec(
		`UPDATE symposium_pledges SET status = ?, resolved_at = datetime('now') WHERE topic_id = ? AND player = ?`,
		string(status), topicID, player,
	)
	if err != nil {
		return fmt.Errorf("store: update symposium pledge status: %w", err)
	}
	return nil
}

// PledgesForTopic returns every pledge made against a topic.
func (s *Store) PledgesForTopic(topicID int64) ([]model.SymposiumPledge, error) {
	rows, err := s.db.Query(`SELECT topic_id, player, amount, faction, status, resolved_at FROM symposium_pledges WHERE topic_id = ?`, topicID)
	if err != nil {
		return nil, fmt.Errorf("store: pledges for topic %d: %w", topicID, err)
	}
	defer rows.Close()

	var pledges []model.SymposiumPledge
	for rows.Next() {
		var p model.SymposiumPledge
		var status string
		var resolvedAt sql.NullTime
		if err := rows.Scan(&p.TopicID, &p.Player, &p.Amount, &p.Faction, &status, &resolvedAt); err != nil {
			return nil, fmt.Errorf("store: scan symposium pledge: %w", err)
		}
		p.Status = model.PledgeStatus(status)
		p.ResolvedAt = timePtrFromNull(resolvedAt)
		pledges = append(pledges, p)
	}
	return pledges, rows.Err()
}

// UpsertSymposiumParticipation updates a player's voting streak state.
func (s *Store) UpsertSymposiumParticipation(p model.SymposiumParticipation) error {
	_, err := s.db.Exec(
		`INSERT INTO symposium_participation (player, miss_streak, grace_window_start, grace_miss_consumed, last_voted_at)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(player) DO UPDATE SET
			miss_streak = excluded.miss_streak,
			grace_window_start = excluded.grace_window_start,
			grace_miss_consumed = excluded.grace_miss_consumed,
			last_voted_at = excluded.last_voted_at`,
		p.Player, p.MissStreak, nullTimePtr(p.GraceWindowStart), p.GraceMissConsumed, nullTimePtr(p.LastVotedAt),
	)
	if err != nil {
		return fmt.Errorf("store: upsert symposium participation %s: %w", p.Player, err)
	}
	return nil
}

// SymposiumParticipationByPlayer returns a player's participation row,
// defaulting to a zero-value streak if none exists yet.
func (s *Store) SymposiumParticipationByPlayer(player string) (*model.SymposiumParticipation, error) {
	row := s.db.QueryRow(
		`SELECT player, miss_streak, grace_window_start, grace_miss_consumed, last_voted_at FROM symposium_participation WHERE player = ?`,
		player,
	)
	var p model.SymposiumParticipation
	var graceStart, lastVoted sql.NullTime
	if err := row.Scan(&p.Player, &p.MissStreak, &graceStart, &p.GraceMissConsumed, &lastVoted); err != nil {
		if err == sql.ErrNoRows {
			return &model.SymposiumParticipation{Player: player}, nil
		}
		return nil, fmt.Errorf("store: symposium participation %s: %w", player, err)
	}
	p.GraceWindowStart = timePtrFromNull(graceStart)
	p.LastVotedAt = timePtrFromNull(lastVoted)
	return &p, nil
}
