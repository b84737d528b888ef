package game

import (
	"errors"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/ninagrant/pairs/board"
	"github.com/ninagrant/pairs/deadline"
	"github.com/ninagrant/pairs/validate"
)

var (
	ErrTooFewPlayers  = errors.New("minimum of 2 players required")
	ErrTooManyPlayers = errors.New("maximum of 4 players allowed")
)

// State represents the lifecycle of a game session
// NotStarted -> pre game
// InProgress -> game in progress
// Finished -> all pairs found
type State int

const (
	NotStarted State = iota
	InProgress
	Finished
)

func (s State) String() string {
	switch s {
	case NotStarted:
		return "notStarted"
	case InProgress:
		return "inProgress"
	case Finished:
		return "finished"
	}
	return ""
}

const noFlip = -1

// Session coordinates one game for a fixed roster of players. It owns the
// board, the turn deadline and the scores, validates every incoming action
// and drives the broadcaster. All state mutation is serialised behind a
// single mutex; broadcaster dispatch happens outside any blocking path so a
// stalled connection cannot hold up turn progression.
type Session struct {
	mu sync.Mutex

	players     Players
	settings    Settings
	board       *board.Board
	broadcaster *Broadcaster
	deadline    *deadline.Deadline
	logger      logrus.FieldLogger

	state      State
	currentIdx int
	firstFlip  int
	resolving  bool

	// turnSeq increments on every turn change. Scheduled tasks capture it
	// when created and bail out if the turn has moved on underneath them.
	turnSeq uint64

	matchDelay    time.Duration
	mismatchDelay time.Duration
	onFinish      func()
}

// SessionOpts configures a new Session. Players and Settings are required;
// everything else falls back to defaults.
type SessionOpts struct {
	Players       Players
	Settings      Settings
	Logger        logrus.FieldLogger
	MatchDelay    time.Duration
	MismatchDelay time.Duration

	// OnFinish runs once, off the session lock, when the game ends. The
	// owning registry uses it to retire the session.
	OnFinish func()
}

// NewSession constructs a session in the NotStarted state. Settings are
// sanitised immediately and the board is built from the sanitised card
// count.
func NewSession(opts SessionOpts) (*Session, error) {
	if len(opts.Players) < minPlayers {
		return nil, ErrTooFewPlayers
	}
	if len(opts.Players) > maxPlayers {
		return nil, ErrTooManyPlayers
	}

	if opts.Logger == nil {
		opts.Logger = logrus.StandardLogger()
	}
	if opts.MatchDelay <= 0 {
		opts.MatchDelay = defaultMatchDelay
	}
	if opts.MismatchDelay <= 0 {
		opts.MismatchDelay = defaultMismatchDelay
	}

	settings := opts.Settings.Sanitized()

	s := &Session{
		players:       opts.Players,
		settings:      settings,
		board:         board.New(settings.CardCount),
		broadcaster:   NewBroadcaster(opts.Players, opts.Logger),
		logger:        opts.Logger,
		state:         NotStarted,
		firstFlip:     noFlip,
		matchDelay:    opts.MatchDelay,
		mismatchDelay: opts.MismatchDelay,
		onFinish:      opts.OnFinish,
	}
	s.deadline = deadline.New(settings.TurnTime(), s.expireTurn)

	return s, nil
}

// Settings returns the sanitised settings the session runs with.
func (s *Session) Settings() Settings {
	return s.settings
}

// Broadcaster exposes the session's event fan-out, used by the lobby layer
// for chat and membership announcements.
func (s *Session) Broadcaster() *Broadcaster {
	return s.broadcaster
}

// BoardInfo returns the authoritative board layout, used for audit and
// state reconstruction. Whether faces are exposed to a remote player is the
// transport's redaction policy, not decided here.
func (s *Session) BoardInfo() []board.CardInfo {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.board.Info()
}

// State returns the session's lifecycle state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// InProgress reports whether the game is currently being played.
func (s *Session) InProgress() bool {
	return s.State() == InProgress
}

// Start moves the session into play: the first player in roster order takes
// the turn, the deadline is armed and the board layout is broadcast.
// Calling Start on a session that is already running or finished is a no-op.
func (s *Session) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != NotStarted {
		return
	}

	s.state = InProgress
	s.currentIdx = 0
	s.firstFlip = noFlip

	s.deadline.Restart()
	s.broadcaster.NotifyGameStarted(s.board.Info())
	s.broadcaster.NotifyTurn(s.players[s.currentIdx].Name, s.settings.TurnTimeSeconds)

	s.logger.WithFields(logrus.Fields{
		"players":   len(s.players),
		"cardCount": s.settings.CardCount,
	}).Info("game started")
}

// HandleFlip applies a flip request from a player. Requests that arrive out
// of turn, outside the board, for an already-visible card, or while a pair
// is resolving are rejected silently.
func (s *Session) HandleFlip(playerID string, cardIndex int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != InProgress || s.resolving {
		return
	}

	current := s.players[s.currentIdx]
	if current.ID != playerID {
		return
	}
	if !validate.CardIndex(cardIndex, s.board.Size()) {
		return
	}

	card, ok := s.board.Card(cardIndex)
	if !ok || card.Flipped || card.Matched {
		return
	}

	s.board.Flip(cardIndex)
	s.broadcaster.NotifyCardShown(cardIndex, card.FaceID)

	if s.firstFlip == noFlip {
		s.firstFlip = cardIndex
		return
	}

	first, _ := s.board.Card(s.firstFlip)
	i, j := s.firstFlip, cardIndex
	s.firstFlip = noFlip

	if first.FaceID == card.FaceID {
		s.resolveMatch(current, i, j)
		return
	}

	// hold both cards visible for the mismatch delay, then hide them and
	// pass the turn
	s.resolving = true
	seq := s.turnSeq
	time.AfterFunc(s.mismatchDelay, func() {
		s.resolveMismatch(i, j, seq)
	})
}

// Chat relays a validated chat message to every player. Chat works in any
// lifecycle state.
func (s *Session) Chat(playerID, text string) {
	if !validate.ChatMessage(text) {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	sender, ok := s.players.Find(playerID)
	if !ok {
		return
	}
	s.broadcaster.NotifyChatMessage(sender.Name, text, false)
}

// Close tears the session down: the deadline is released and the
// broadcaster drained. Safe to call more than once.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.deadline.Close()
	s.broadcaster.Close()
}

// resolveMatch handles a successful pair: both cards are marked, the
// current player scores and keeps the turn. The deadline is left running;
// only a turn change re-arms it. Lock held by caller.
func (s *Session) resolveMatch(current *Player, i, j int) {
	s.board.MarkMatched(i, j)
	current.Score += MatchPoints
	s.broadcaster.NotifyCardsMatched(i, j, current.Name, current.Score)

	if s.board.AllMatched() {
		s.finish()
		return
	}

	// brief pause so players see the pair before the next flip lands
	s.resolving = true
	seq := s.turnSeq
	time.AfterFunc(s.matchDelay, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if s.state != InProgress || seq != s.turnSeq {
			return
		}
		s.resolving = false
	})
}

// resolveMismatch runs after the mismatch delay: both cards are hidden
// again and the turn passes. A deadline expiry in the meantime will have
// bumped turnSeq, in which case this task is stale and does nothing.
func (s *Session) resolveMismatch(i, j int, seq uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != InProgress || seq != s.turnSeq {
		return
	}

	s.resolving = false
	s.board.Unflip(i)
	s.board.Unflip(j)
	s.broadcaster.NotifyCardsHidden(i, j)
	s.advanceTurn()
}

// expireTurn is the deadline callback: the turn is forced to advance the
// way a mismatch timeout would, hiding any single outstanding flip first.
func (s *Session) expireTurn() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != InProgress {
		return
	}

	s.logger.WithField("player", s.players[s.currentIdx].Name).
		Info("turn deadline expired")

	if s.resolving {
		// a pending mismatch resolution owns the pair; cancel it and hide
		// whatever is still face up
		s.resolving = false
	}
	s.hideUnmatchedFlips()
	s.advanceTurn()
}

// hideUnmatchedFlips unflips every card left face up without a match and
// announces each. Lock held by caller.
func (s *Session) hideUnmatchedFlips() {
	for i := 0; i < s.board.Size(); i++ {
		c, _ := s.board.Card(i)
		if c.Flipped && !c.Matched {
			s.board.Unflip(i)
			s.broadcaster.NotifyCardsHidden(i, i)
		}
	}
	s.firstFlip = noFlip
}

// advanceTurn passes the turn to the next player in roster order, re-arms
// the deadline and invalidates any scheduled task for the old turn. Lock
// held by caller.
func (s *Session) advanceTurn() {
	s.turnSeq++
	s.currentIdx = (s.currentIdx + 1) % len(s.players)
	s.firstFlip = noFlip
	s.deadline.Restart()
	s.broadcaster.NotifyTurn(s.players[s.currentIdx].Name, s.settings.TurnTimeSeconds)
}

// finish ends the game: the deadline stops and the winner is announced.
// Lock held by caller.
func (s *Session) finish() {
	s.state = Finished
	s.deadline.Stop()

	winner := s.winner()
	s.broadcaster.NotifyGameFinished(winner.Name)

	s.logger.WithFields(logrus.Fields{
		"winner": winner.Name,
		"score":  winner.Score,
	}).Info("game finished")

	if s.onFinish != nil {
		go s.onFinish()
	}
}

// winner picks the highest scorer. Ties go to the earliest player in
// roster order. Lock held by caller.
func (s *Session) winner() *Player {
	best := s.players[0]
	for _, p := range s.players[1:] {
		if p.Score > best.Score {
			best = p
		}
	}
	return best
}
