package game

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ninagrant/pairs/board"
)

// panickingObserver raises on every call, standing in for a player whose
// connection has died.
type panickingObserver struct {
	SpyObserver
}

func (p *panickingObserver) UpdateTurn(playerName string, secondsRemaining int) {
	panic("connection lost")
}

func (p *panickingObserver) ShowCard(index, faceID int) {
	panic("connection lost")
}

func newBroadcastRoster(observers ...Observer) Players {
	ps := Players{}
	for i, o := range observers {
		ps = append(ps, &Player{ID: NewID(), Name: string(rune('A' + i)), Observer: o})
	}
	return ps
}

func TestBroadcasterDeliversToAllPlayers(t *testing.T) {
	spies := []*SpyObserver{NewSpyObserver(), NewSpyObserver(), NewSpyObserver()}
	b := NewBroadcaster(newBroadcastRoster(spies[0], spies[1], spies[2]), nil)
	defer b.Close()

	b.NotifyTurn("Elton", 30)

	for _, spy := range spies {
		spy := spy
		require.Eventually(t, func() bool {
			return spy.Received("UpdateTurn")
		}, time.Second, 5*time.Millisecond)

		calls := spy.CallsTo("UpdateTurn")
		assert.Equal(t, []interface{}{"Elton", 30}, calls[0].Args)
	}
}

func TestBroadcasterPerPlayerOrdering(t *testing.T) {
	spy := NewSpyObserver()
	b := NewBroadcaster(newBroadcastRoster(spy), nil)
	defer b.Close()

	b.NotifyCardShown(3, 7)
	b.NotifyCardsMatched(3, 9, "Elton", 10)
	b.NotifyTurn("Heloise", 30)

	require.Eventually(t, func() bool {
		return spy.Received("UpdateTurn")
	}, time.Second, 5*time.Millisecond)

	var methods []string
	for _, c := range spy.Calls() {
		methods = append(methods, c.Method)
	}
	assert.Equal(t, []string{"ShowCard", "SetCardsAsMatched", "UpdateScore", "UpdateTurn"}, methods)
}

func TestBroadcasterIsolatesFaultyObserver(t *testing.T) {
	faulty := &panickingObserver{}
	healthy := NewSpyObserver()
	b := NewBroadcaster(newBroadcastRoster(faulty, healthy), nil)
	defer b.Close()

	// the faulty observer panics on both of these; the healthy one must
	// still get every event, in order
	b.NotifyCardShown(0, 1)
	b.NotifyTurn("Elton", 30)

	require.Eventually(t, func() bool {
		return healthy.Received("UpdateTurn")
	}, time.Second, 5*time.Millisecond)

	assert.True(t, healthy.Received("ShowCard"))
	assert.True(t, healthy.Received("UpdateTurn"))
}

func TestBroadcasterNotifyDoesNotBlockCaller(t *testing.T) {
	// an observer that blocks forever must not stall NotifyX
	blocked := make(chan struct{})
	blocking := &blockingObserver{wait: blocked}
	defer close(blocked)

	b := NewBroadcaster(newBroadcastRoster(blocking), nil)
	defer b.Close()

	done := make(chan struct{})
	go func() {
		for i := 0; i < outboundQueueSize*2; i++ {
			b.NotifyCardShown(i, i)
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("NotifyX blocked on a stalled observer")
	}
}

func TestBroadcasterGameStartedCarriesBoard(t *testing.T) {
	spy := NewSpyObserver()
	b := NewBroadcaster(newBroadcastRoster(spy), nil)
	defer b.Close()

	cards := []board.CardInfo{{Index: 0, FaceID: 1}, {Index: 1, FaceID: 0}}
	b.NotifyGameStarted(cards)

	require.Eventually(t, func() bool {
		return spy.Received("GameStarted")
	}, time.Second, 5*time.Millisecond)

	calls := spy.CallsTo("GameStarted")
	assert.Equal(t, cards, calls[0].Args[0])
}

func TestBroadcasterSendAfterCloseIsDiscarded(t *testing.T) {
	spy := NewSpyObserver()
	b := NewBroadcaster(newBroadcastRoster(spy), nil)

	b.Close()
	b.Close() // idempotent

	b.NotifyTurn("Elton", 30)
	time.Sleep(50 * time.Millisecond)

	assert.False(t, spy.Received("UpdateTurn"))
}

type blockingObserver struct {
	SpyObserver
	wait chan struct{}
}

func (b *blockingObserver) ShowCard(index, faceID int) {
	<-b.wait
}
