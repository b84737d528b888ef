package game

import (
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/ninagrant/pairs/board"
	"github.com/ninagrant/pairs/protocol"
)

// outboundQueueSize bounds how far a slow player connection may fall behind
// before events are dropped for that player only.
const outboundQueueSize = 64

// Broadcaster fans game events out to every player's observer handle. The
// roster is snapshotted at construction. Each player gets a dedicated
// delivery goroutine, so events reach a player in the order they were
// notified, one stalled or faulting observer never delays the others, and
// no delivery failure propagates back to the caller.
type Broadcaster struct {
	receivers []*receiver
	logger    logrus.FieldLogger

	mu     sync.RWMutex
	closed bool
}

type receiver struct {
	player *Player
	queue  chan func(Observer)
}

// NewBroadcaster constructs a Broadcaster for the given roster and starts
// one delivery goroutine per player.
func NewBroadcaster(players Players, logger logrus.FieldLogger) *Broadcaster {
	if logger == nil {
		logger = logrus.StandardLogger()
	}

	b := &Broadcaster{logger: logger}
	for _, p := range players {
		r := &receiver{
			player: p,
			queue:  make(chan func(Observer), outboundQueueSize),
		}
		b.receivers = append(b.receivers, r)
		go b.run(r)
	}
	return b
}

func (b *Broadcaster) run(r *receiver) {
	for notify := range r.queue {
		b.deliver(r, notify)
	}
}

// deliver invokes a single notification, absorbing any panic the observer
// raises so one broken connection cannot take down the delivery loop.
func (b *Broadcaster) deliver(r *receiver, notify func(Observer)) {
	defer func() {
		if rec := recover(); rec != nil {
			b.logger.WithFields(logrus.Fields{
				"player": r.player.Name,
				"panic":  rec,
			}).Warn("observer delivery failed")
		}
	}()
	notify(r.player.Observer)
}

// send enqueues a notification for every player and returns immediately.
// Events sent after Close are discarded.
func (b *Broadcaster) send(notify func(Observer)) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.closed {
		return
	}

	for _, r := range b.receivers {
		select {
		case r.queue <- notify:
		default:
			b.logger.WithField("player", r.player.Name).
				Warn("outbound queue full, dropping event")
		}
	}
}

// Close stops the delivery goroutines once queued events have drained.
// Safe to call more than once.
func (b *Broadcaster) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return
	}
	b.closed = true

	for _, r := range b.receivers {
		close(r.queue)
	}
}

// NotifyGameStarted announces the start of the game with the board layout.
// Redaction of face identifiers for remote players is the observer's concern.
func (b *Broadcaster) NotifyGameStarted(cards []board.CardInfo) {
	b.send(func(o Observer) { o.GameStarted(cards) })
}

// NotifyTurn announces whose turn it is and how long they have.
func (b *Broadcaster) NotifyTurn(playerName string, secondsRemaining int) {
	b.send(func(o Observer) { o.UpdateTurn(playerName, secondsRemaining) })
}

// NotifyCardShown announces a card being flipped face up.
func (b *Broadcaster) NotifyCardShown(index, faceID int) {
	b.send(func(o Observer) { o.ShowCard(index, faceID) })
}

// NotifyCardsMatched announces a matched pair and the scorer's new total.
func (b *Broadcaster) NotifyCardsMatched(i, j int, playerName string, newScore int) {
	b.send(func(o Observer) {
		o.SetCardsAsMatched(i, j)
		o.UpdateScore(playerName, newScore)
	})
}

// NotifyCardsHidden announces two cards being turned face down again.
func (b *Broadcaster) NotifyCardsHidden(i, j int) {
	b.send(func(o Observer) { o.HideCards(i, j) })
}

// NotifyGameFinished announces the end of the game and the winner.
func (b *Broadcaster) NotifyGameFinished(winnerName string) {
	b.send(func(o Observer) { o.GameFinished(winnerName) })
}

// NotifyPlayerJoined announces a new lobby member.
func (b *Broadcaster) NotifyPlayerJoined(name string, isGuest bool) {
	b.send(func(o Observer) { o.PlayerJoined(name, isGuest) })
}

// NotifyPlayerLeft announces a departed lobby member.
func (b *Broadcaster) NotifyPlayerLeft(name string) {
	b.send(func(o Observer) { o.PlayerLeft(name) })
}

// NotifyPlayerList announces the full membership of the lobby.
func (b *Broadcaster) NotifyPlayerList(players []protocol.PlayerInfo) {
	b.send(func(o Observer) { o.UpdatePlayerList(players) })
}

// NotifyChatMessage relays a chat message or system notification.
func (b *Broadcaster) NotifyChatMessage(sender, text string, isSystemNotification bool) {
	b.send(func(o Observer) { o.ReceiveChatMessage(sender, text, isSystemNotification) })
}
