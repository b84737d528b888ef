package game

import "time"

const (
	minPlayers = 2
	maxPlayers = 4

	// MinCardCount is the smallest playable board.
	MinCardCount = 4
	// MinTurnTimeSeconds is the floor applied to requested turn times.
	MinTurnTimeSeconds = 5
	// MatchPoints is awarded to the current player for each matched pair.
	MatchPoints = 10

	defaultMatchDelay    = 500 * time.Millisecond
	defaultMismatchDelay = 1500 * time.Millisecond
)

// Settings is the caller-supplied configuration for one game session.
// Values are sanitised on ingestion, never rejected.
type Settings struct {
	CardCount       int
	TurnTimeSeconds int
}

// Sanitized returns a copy of s with the invariants restored: an even card
// count of at least MinCardCount (odd counts round down) and a turn time of
// at least MinTurnTimeSeconds.
func (s Settings) Sanitized() Settings {
	if s.CardCount%2 != 0 {
		s.CardCount--
	}
	if s.CardCount < MinCardCount {
		s.CardCount = MinCardCount
	}
	if s.TurnTimeSeconds < MinTurnTimeSeconds {
		s.TurnTimeSeconds = MinTurnTimeSeconds
	}
	return s
}

// TurnTime returns the sanitised turn time as a duration.
func (s Settings) TurnTime() time.Duration {
	return time.Duration(s.TurnTimeSeconds) * time.Second
}
