// Package protocol defines the messages exchanged between the game server
// and connected players, and the commands players may issue.
package protocol

// Cmd represents a command issued by a player
type Cmd int

const (
	Null Cmd = iota
	Start
	Flip
	Chat
	Leave
)

var cmdNames = []string{
	"Null",
	"Start",
	"Flip",
	"Chat",
	"Leave",
}

func (c Cmd) String() string {
	if c < 0 || int(c) >= len(cmdNames) {
		return "Unknown"
	}
	return cmdNames[c]
}

// PlayerInfo identifies a player to other members of a lobby.
type PlayerInfo struct {
	PlayerID string `json:"player_id"`
	Name     string `json:"name"`
	IsGuest  bool   `json:"is_guest"`
	Score    int    `json:"score"`
}
