package store

import (
	"errors"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/ninagrant/pairs/game"
	"github.com/ninagrant/pairs/validate"
)

var (
	ErrLobbyFull           = errors.New("lobby is full")
	ErrInvalidName         = errors.New("invalid player name")
	ErrGameAlreadyStarted  = errors.New("game has already started")
	ErrUnknownPlayerID     = errors.New("unknown player ID")
	ErrObserverNotAttached = errors.New("player has not connected yet")
)

// Lobby is one registry entry: the pre-game roster for a code, and the
// running session once the host starts the game. Players are added over
// HTTP first and attach their observer handle when the websocket arrives.
type Lobby struct {
	mu sync.Mutex

	code    string
	hostID  string
	players game.Players
	session *game.Session

	logger   logrus.FieldLogger
	onFinish func()
	opts     game.SessionOpts
}

// Code returns the lobby's join code.
func (l *Lobby) Code() string {
	return l.code
}

// HostID returns the ID of the player who created the lobby.
func (l *Lobby) HostID() string {
	return l.hostID
}

// PlayerCount returns the current roster size.
func (l *Lobby) PlayerCount() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.players)
}

// PlayerNames returns the roster's display names in join order.
func (l *Lobby) PlayerNames() []string {
	l.mu.Lock()
	defer l.mu.Unlock()

	names := make([]string, len(l.players))
	for i, p := range l.players {
		names[i] = p.Name
	}
	return names
}

// Session returns the running game session, or nil before the game starts.
func (l *Lobby) Session() *game.Session {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.session
}

// AddPlayer admits a new player to the lobby. The name must validate and
// there must be a free seat; once the game has started the roster is fixed.
// The returned player has no observer handle yet.
func (l *Lobby) AddPlayer(name string, isGuest bool) (*game.Player, error) {
	if !validate.GuestName(name) {
		return nil, ErrInvalidName
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if l.session != nil {
		return nil, ErrGameAlreadyStarted
	}
	if !validate.CanJoinLobby(len(l.players)) {
		return nil, ErrLobbyFull
	}

	p := game.NewPlayer(name, isGuest, nil)
	l.players = append(l.players, p)

	l.notifyLocked(func(o game.Observer) {
		o.PlayerJoined(p.Name, p.IsGuest)
		o.UpdatePlayerList(l.players.Info())
	})

	l.logger.WithFields(logrus.Fields{
		"code":   l.code,
		"player": p.Name,
	}).Info("player joined lobby")

	return p, nil
}

// AttachObserver binds a connected player's observer handle and announces
// their arrival to the rest of the lobby.
func (l *Lobby) AttachObserver(playerID string, observer game.Observer) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	p, ok := l.players.Find(playerID)
	if !ok {
		return ErrUnknownPlayerID
	}
	p.Observer = observer

	l.notifyLocked(func(o game.Observer) {
		o.UpdatePlayerList(l.players.Info())
		o.ReceiveChatMessage("", p.Name+" is here", true)
	})

	return nil
}

// RemovePlayer takes a player out of a lobby that has not started, or only
// announces the departure once a game is running (the session keeps its
// roster; an absent player's turns expire through the deadline).
func (l *Lobby) RemovePlayer(playerID string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	p, ok := l.players.Find(playerID)
	if !ok {
		return ErrUnknownPlayerID
	}

	if l.session != nil {
		// the running session keeps its roster; departures only announce,
		// ordered with the rest of the game traffic
		l.session.Broadcaster().NotifyPlayerLeft(p.Name)
		l.session.Broadcaster().NotifyPlayerList(l.players.Info())
	} else {
		roster := game.Players{}
		for _, existing := range l.players {
			if existing.ID != playerID {
				roster = append(roster, existing)
			}
		}
		l.players = roster

		l.notifyLocked(func(o game.Observer) {
			o.PlayerLeft(p.Name)
			o.UpdatePlayerList(l.players.Info())
		})
	}

	l.logger.WithFields(logrus.Fields{
		"code":   l.code,
		"player": p.Name,
	}).Info("player left lobby")

	return nil
}

// StartGame promotes the lobby into a running session and starts it. Only
// the host may start, every seated player must have connected, and a lobby
// can only be started once.
func (l *Lobby) StartGame(playerID string, settings game.Settings) (*game.Session, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if playerID != l.hostID {
		return nil, ErrUnknownPlayerID
	}
	if l.session != nil {
		return nil, ErrGameAlreadyStarted
	}
	for _, p := range l.players {
		if p.Observer == nil {
			return nil, ErrObserverNotAttached
		}
	}

	opts := l.opts
	opts.Players = l.players
	opts.Settings = settings
	opts.Logger = l.logger
	opts.OnFinish = l.onFinish

	session, err := game.NewSession(opts)
	if err != nil {
		return nil, err
	}

	l.session = session
	session.Start()
	return session, nil
}

// Chat relays a message pre-game, or hands it to the session once running.
func (l *Lobby) Chat(playerID, text string) {
	l.mu.Lock()
	session := l.session
	var sender *game.Player
	if session == nil {
		sender, _ = l.players.Find(playerID)
	}
	l.mu.Unlock()

	if session != nil {
		session.Chat(playerID, text)
		return
	}
	if sender == nil || !validate.ChatMessage(text) {
		return
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	l.notifyLocked(func(o game.Observer) {
		o.ReceiveChatMessage(sender.Name, text, false)
	})
}

// Close tears down the lobby's session, if any.
func (l *Lobby) Close() {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.session != nil {
		l.session.Close()
	}
}

// notifyLocked delivers an event to every attached observer. Pre-game
// traffic is light, so each delivery runs in its own goroutine with the
// same isolation the in-game broadcaster provides. Lock held by caller.
func (l *Lobby) notifyLocked(notify func(game.Observer)) {
	for _, p := range l.players {
		if p.Observer == nil {
			continue
		}
		observer := p.Observer
		name := p.Name
		go func() {
			defer func() {
				if rec := recover(); rec != nil {
					l.logger.WithFields(logrus.Fields{
						"player": name,
						"panic":  rec,
					}).Warn("lobby notification failed")
				}
			}()
			notify(observer)
		}()
	}
}
