package store

import (
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/ninagrant/pairs/game"
)

var ErrUnknownGameCode = errors.New("unknown game code")

// LobbyStore is the registry of live lobbies, keyed by game code.
type LobbyStore interface {
	CreateLobby(hostName string, isGuest bool) (*Lobby, *game.Player, error)
	FindLobby(code string) (*Lobby, error)
	RemoveLobby(code string)
}

// InMemoryStore maps game codes to lobbies. Each lobby owns its session
// exclusively; entries are removed when the game finishes or the lobby is
// torn down.
type InMemoryStore struct {
	mu      sync.Mutex
	lobbies map[string]*Lobby

	logger        logrus.FieldLogger
	matchDelay    time.Duration
	mismatchDelay time.Duration
}

// StoreOpts configures an InMemoryStore. Delays flow through to the
// sessions the store's lobbies create.
type StoreOpts struct {
	Logger        logrus.FieldLogger
	MatchDelay    time.Duration
	MismatchDelay time.Duration
}

// NewInMemoryStore constructs an empty registry.
func NewInMemoryStore(opts StoreOpts) *InMemoryStore {
	if opts.Logger == nil {
		opts.Logger = logrus.StandardLogger()
	}
	return &InMemoryStore{
		lobbies:       map[string]*Lobby{},
		logger:        opts.Logger,
		matchDelay:    opts.MatchDelay,
		mismatchDelay: opts.MismatchDelay,
	}
}

// CreateLobby opens a new lobby under a fresh game code with the host as
// its first player.
func (s *InMemoryStore) CreateLobby(hostName string, isGuest bool) (*Lobby, *game.Player, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	code := s.newGameCodeLocked()
	lobby := &Lobby{
		code:   code,
		logger: s.logger,
		opts: game.SessionOpts{
			MatchDelay:    s.matchDelay,
			MismatchDelay: s.mismatchDelay,
		},
		onFinish: func() {
			s.RemoveLobby(code)
		},
	}

	host, err := lobby.AddPlayer(hostName, isGuest)
	if err != nil {
		return nil, nil, err
	}
	lobby.hostID = host.ID

	s.lobbies[code] = lobby
	s.logger.WithField("code", code).Info("lobby created")

	return lobby, host, nil
}

// FindLobby looks a lobby up by code.
func (s *InMemoryStore) FindLobby(code string) (*Lobby, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	lobby, ok := s.lobbies[code]
	if !ok {
		return nil, ErrUnknownGameCode
	}
	return lobby, nil
}

// RemoveLobby retires a lobby and tears down its session. Removing an
// unknown code is a no-op.
func (s *InMemoryStore) RemoveLobby(code string) {
	s.mu.Lock()
	lobby, ok := s.lobbies[code]
	delete(s.lobbies, code)
	s.mu.Unlock()

	if !ok {
		return
	}
	lobby.Close()
	s.logger.WithField("code", code).Info("lobby removed")
}

// newGameCodeLocked generates an unused six-digit game code.
func (s *InMemoryStore) newGameCodeLocked() string {
	for {
		code := fmt.Sprintf("%06d", rand.Intn(1000000))
		if _, taken := s.lobbies[code]; !taken {
			return code
		}
	}
}
