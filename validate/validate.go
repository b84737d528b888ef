// Package validate holds the pure predicates gating untrusted input before
// it reaches a lobby or game session. None of these functions panic on
// malformed input; bad values simply come back false.
package validate

import (
	"regexp"
	"strings"
	"unicode"
)

const (
	// MaxLobbyPlayers is the hard ceiling on lobby occupancy.
	MaxLobbyPlayers = 4

	gameCodeLength     = 6
	maxGuestNameLength = 30
	maxChatLength      = 500
	maxEmailLength     = 255
	minPasswordLength  = 8
	maxPasswordLength  = 100
	minUsernameLength  = 3
	maxUsernameLength  = 30
)

// Go's regexp engine (RE2) runs in linear time, so a hostile email string
// cannot stall the match the way a backtracking engine could.
var emailPattern = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

// GameCode reports whether s is a well-formed lobby code: exactly six
// characters, all digits.
func GameCode(s string) bool {
	if len(s) != gameCodeLength {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// GuestName reports whether s is an acceptable display name once trimmed.
func GuestName(s string) bool {
	trimmed := strings.TrimSpace(s)
	return len(trimmed) >= 1 && len(trimmed) <= maxGuestNameLength
}

// ChatMessage reports whether s is a sendable chat message: not
// whitespace-only and no longer than the chat limit.
func ChatMessage(s string) bool {
	if len(s) > maxChatLength {
		return false
	}
	return strings.TrimSpace(s) != ""
}

// CanJoinLobby reports whether a lobby with the given occupancy has room
// for one more player.
func CanJoinLobby(occupancy int) bool {
	return occupancy >= 0 && occupancy < MaxLobbyPlayers
}

// CardIndex reports whether index addresses a card on a board of
// totalCards cards.
func CardIndex(index, totalCards int) bool {
	return index >= 0 && index < totalCards
}

// Email reports whether s looks like a deliverable address: single @,
// dotted domain, no whitespace, at most 255 characters.
func Email(s string) bool {
	if s == "" || len(s) > maxEmailLength {
		return false
	}
	if strings.Count(s, "@") != 1 {
		return false
	}
	return emailPattern.MatchString(s)
}

// Password reports whether s meets the account password policy: 8-100
// characters with at least one uppercase letter, one lowercase letter,
// one digit and one character that is neither letter nor digit.
func Password(s string) bool {
	if len(s) < minPasswordLength || len(s) > maxPasswordLength {
		return false
	}

	var upper, lower, digit, other bool
	for _, r := range s {
		switch {
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsLower(r):
			lower = true
		case unicode.IsDigit(r):
			digit = true
		default:
			other = true
		}
	}

	return upper && lower && digit && other
}

// Username reports whether s is an acceptable account name: 3-30
// characters, each a letter, digit, underscore or hyphen.
func Username(s string) bool {
	if len(s) < minUsernameLength || len(s) > maxUsernameLength {
		return false
	}
	for _, r := range s {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '_' && r != '-' {
			return false
		}
	}
	return true
}
