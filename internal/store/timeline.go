package store

import (
	"fmt"
	"time"
)

// CurrentTimeline returns the singleton timeline row's year and anchor.
func (s *Store) CurrentTimeline() (currentYear int, lastAdvanced time.Time, err error) {
	row := s.db.QueryRow(`SELECT current_year, last_advanced FROM timeline WHERE id = 1`)
	if err := row.Scan(&currentYear, &lastAdvanced); err != nil {
		return 0, time.Time{}, fmt.Errorf("store: current timeline: %w", err)
	}
	return currentYear, lastAdvanced, nil
}

// AdvanceTimeline advances the in-fiction calendar given the real-world
// elapsed time since the anchor. years_elapsed is floor((now -
// last_advanced) / daysPerYear); the anchor then moves forward by
// exactly years_elapsed * daysPerYear days rather than snapping to now,
// preserving the sub-year remainder so elapsed real time is never lost
// between ticks ().
func (s *Store) AdvanceTimeline(now time.Time, daysPerYear int) (yearsElapsed, currentYear int, err error) {
	if daysPerYear <= 0 {
		daysPerYear = 360
	}
	currentYear, lastAdvanced, err := s.CurrentTimeline()
	if err != nil {
		return 0, 0, err
	}
	elapsedDays := int(now.Sub(lastAdvanced).Hours() / 24)
	if elapsedDays <= 0 {
		return 0, currentYear, nil
	}
	yearsElapsed = elapsedDays / daysPerYear
	if yearsElapsed <= 0 {
		return 0, currentYear, nil
	}
	currentYear += yearsElapsed
	newAnchor := lastAdvanced.AddDate(0, 0, yearsElapsed*daysPerYear)
	if _, err := s.db.Exec(`UPDATE timeline SET current_year = ?, last_advanced = ? WHERE id = 1`, currentYear, newAnchor); err != nil {
		return 0, 0, fmt.Errorf("store: advance timeline: %w", err)
	}
	return yearsElapsed, currentYear, nil
}
