package game

import (
	"sync"

	"github.com/ninagrant/pairs/board"
	"github.com/ninagrant/pairs/protocol"
)

// SpyObserver records every observer call it receives, in order. It is safe
// for concurrent use and useful to any package testing against the Observer
// interface.
type SpyObserver struct {
	mu    sync.Mutex
	calls []SpyCall
}

// SpyCall is one recorded observer invocation.
type SpyCall struct {
	Method string
	Args   []interface{}
}

func NewSpyObserver() *SpyObserver {
	return &SpyObserver{}
}

func (s *SpyObserver) record(method string, args ...interface{}) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, SpyCall{Method: method, Args: args})
}

// Calls returns a copy of every recorded call.
func (s *SpyObserver) Calls() []SpyCall {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]SpyCall, len(s.calls))
	copy(out, s.calls)
	return out
}

// CallsTo returns the recorded calls to one method.
func (s *SpyObserver) CallsTo(method string) []SpyCall {
	var out []SpyCall
	for _, c := range s.Calls() {
		if c.Method == method {
			out = append(out, c)
		}
	}
	return out
}

// Received reports whether at least one call to method was recorded.
func (s *SpyObserver) Received(method string) bool {
	return len(s.CallsTo(method)) > 0
}

func (s *SpyObserver) GameStarted(cards []board.CardInfo) {
	s.record("GameStarted", cards)
}

func (s *SpyObserver) UpdateTurn(playerName string, secondsRemaining int) {
	s.record("UpdateTurn", playerName, secondsRemaining)
}

func (s *SpyObserver) ShowCard(index, faceID int) {
	s.record("ShowCard", index, faceID)
}

func (s *SpyObserver) SetCardsAsMatched(i, j int) {
	s.record("SetCardsAsMatched", i, j)
}

func (s *SpyObserver) UpdateScore(playerName string, newScore int) {
	s.record("UpdateScore", playerName, newScore)
}

func (s *SpyObserver) HideCards(i, j int) {
	s.record("HideCards", i, j)
}

func (s *SpyObserver) GameFinished(winnerName string) {
	s.record("GameFinished", winnerName)
}

func (s *SpyObserver) PlayerJoined(name string, isGuest bool) {
	s.record("PlayerJoined", name, isGuest)
}

func (s *SpyObserver) PlayerLeft(name string) {
	s.record("PlayerLeft", name)
}

func (s *SpyObserver) UpdatePlayerList(players []protocol.PlayerInfo) {
	s.record("UpdatePlayerList", players)
}

func (s *SpyObserver) ReceiveChatMessage(sender, text string, isSystemNotification bool) {
	s.record("ReceiveChatMessage", sender, text, isSystemNotification)
}
