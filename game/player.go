package game

import (
	"github.com/ninagrant/pairs/board"
	"github.com/ninagrant/pairs/protocol"
	uuid "github.com/satori/go.uuid"
)

// NewID constructs a player ID
func NewID() string {
	return uuid.NewV4().String()
}

// Observer is the capability handle through which a remote player receives
// game events. Implementations live in the transport layer; the session and
// broadcaster only ever call these methods and never inspect the connection.
type Observer interface {
	GameStarted(cards []board.CardInfo)
	UpdateTurn(playerName string, secondsRemaining int)
	ShowCard(index, faceID int)
	SetCardsAsMatched(i, j int)
	UpdateScore(playerName string, newScore int)
	HideCards(i, j int)
	GameFinished(winnerName string)
	PlayerJoined(name string, isGuest bool)
	PlayerLeft(name string)
	UpdatePlayerList(players []protocol.PlayerInfo)
	ReceiveChatMessage(sender, text string, isSystemNotification bool)
}

// Player represents a player in a game session.
type Player struct {
	ID       string
	Name     string
	IsGuest  bool
	Score    int
	Observer Observer
}

// NewPlayer constructs a new player with a fresh ID.
func NewPlayer(name string, isGuest bool, observer Observer) *Player {
	return &Player{
		ID:       NewID(),
		Name:     name,
		IsGuest:  isGuest,
		Observer: observer,
	}
}

// Players represents all players in a game session.
type Players []*Player

// Find finds a player by id
func (ps Players) Find(id string) (*Player, bool) {
	for _, p := range ps {
		if p.ID == id {
			return p, true
		}
	}
	return nil, false
}

// Info returns the public projection of every player, in roster order.
func (ps Players) Info() []protocol.PlayerInfo {
	info := make([]protocol.PlayerInfo, len(ps))
	for i, p := range ps {
		info[i] = protocol.PlayerInfo{
			PlayerID: p.ID,
			Name:     p.Name,
			IsGuest:  p.IsGuest,
			Score:    p.Score,
		}
	}
	return info
}
