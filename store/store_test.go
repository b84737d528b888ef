package store

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ninagrant/pairs/game"
	"github.com/ninagrant/pairs/validate"
)

func newTestStore() *InMemoryStore {
	return NewInMemoryStore(StoreOpts{
		MatchDelay:    10 * time.Millisecond,
		MismatchDelay: 10 * time.Millisecond,
	})
}

func TestCreateLobby(t *testing.T) {
	s := newTestStore()

	lobby, host, err := s.CreateLobby("Elton", true)
	require.NoError(t, err)

	assert.True(t, validate.GameCode(lobby.Code()))
	assert.Equal(t, host.ID, lobby.HostID())
	assert.Equal(t, 1, lobby.PlayerCount())
	assert.Equal(t, []string{"Elton"}, lobby.PlayerNames())
	assert.Nil(t, lobby.Session())

	found, err := s.FindLobby(lobby.Code())
	require.NoError(t, err)
	assert.Equal(t, lobby, found)
}

func TestCreateLobbyRejectsBadHostName(t *testing.T) {
	s := newTestStore()

	_, _, err := s.CreateLobby("   ", true)
	assert.Equal(t, ErrInvalidName, err)
}

func TestFindLobbyUnknownCode(t *testing.T) {
	s := newTestStore()

	_, err := s.FindLobby("000000")
	assert.Equal(t, ErrUnknownGameCode, err)
}

func TestLobbyCodesAreUnique(t *testing.T) {
	s := newTestStore()

	seen := map[string]bool{}
	for i := 0; i < 20; i++ {
		lobby, _, err := s.CreateLobby("Elton", true)
		require.NoError(t, err)
		assert.False(t, seen[lobby.Code()])
		seen[lobby.Code()] = true
	}
}

func TestAddPlayer(t *testing.T) {
	s := newTestStore()
	lobby, _, _ := s.CreateLobby("Elton", true)

	p, err := lobby.AddPlayer("Heloise", false)
	require.NoError(t, err)
	assert.NotEmpty(t, p.ID)
	assert.Equal(t, []string{"Elton", "Heloise"}, lobby.PlayerNames())
}

func TestAddPlayerValidation(t *testing.T) {
	s := newTestStore()
	lobby, _, _ := s.CreateLobby("Elton", true)

	_, err := lobby.AddPlayer("", true)
	assert.Equal(t, ErrInvalidName, err)

	_, err = lobby.AddPlayer("   ", true)
	assert.Equal(t, ErrInvalidName, err)
}

func TestLobbyCapacity(t *testing.T) {
	s := newTestStore()
	lobby, _, _ := s.CreateLobby("Elton", true)

	for _, name := range []string{"Heloise", "Gary", "Penelope"} {
		_, err := lobby.AddPlayer(name, true)
		require.NoError(t, err)
	}

	_, err := lobby.AddPlayer("One Too Many", true)
	assert.Equal(t, ErrLobbyFull, err)
	assert.Equal(t, 4, lobby.PlayerCount())
}

func TestRemovePlayerBeforeStart(t *testing.T) {
	s := newTestStore()
	lobby, _, _ := s.CreateLobby("Elton", true)
	p, _ := lobby.AddPlayer("Heloise", true)

	require.NoError(t, lobby.RemovePlayer(p.ID))
	assert.Equal(t, []string{"Elton"}, lobby.PlayerNames())

	assert.Equal(t, ErrUnknownPlayerID, lobby.RemovePlayer("nope"))
}

func TestRemovePlayerInGameOnlyAnnounces(t *testing.T) {
	s := newTestStore()
	lobby, host, _ := s.CreateLobby("Elton", true)
	guest, _ := lobby.AddPlayer("Heloise", true)

	hostSpy := game.NewSpyObserver()
	lobby.AttachObserver(host.ID, hostSpy)
	lobby.AttachObserver(guest.ID, game.NewSpyObserver())

	_, err := lobby.StartGame(host.ID, game.Settings{CardCount: 8, TurnTimeSeconds: 30})
	require.NoError(t, err)

	require.NoError(t, lobby.RemovePlayer(guest.ID))

	// the seat stays; absent players time out turn by turn
	assert.Equal(t, 2, lobby.PlayerCount())
	require.Eventually(t, func() bool {
		return hostSpy.Received("PlayerLeft")
	}, time.Second, 5*time.Millisecond)
}

func TestStartGame(t *testing.T) {
	s := newTestStore()
	lobby, host, _ := s.CreateLobby("Elton", true)
	guest, _ := lobby.AddPlayer("Heloise", true)

	require.NoError(t, lobby.AttachObserver(host.ID, game.NewSpyObserver()))
	require.NoError(t, lobby.AttachObserver(guest.ID, game.NewSpyObserver()))

	session, err := lobby.StartGame(host.ID, game.Settings{CardCount: 8, TurnTimeSeconds: 30})
	require.NoError(t, err)
	assert.True(t, session.InProgress())
	assert.Equal(t, session, lobby.Session())

	// roster is frozen once running
	_, err = lobby.AddPlayer("Late", true)
	assert.Equal(t, ErrGameAlreadyStarted, err)

	// starting twice fails
	_, err = lobby.StartGame(host.ID, game.Settings{CardCount: 8, TurnTimeSeconds: 30})
	assert.Equal(t, ErrGameAlreadyStarted, err)
}

func TestStartGameRequiresHost(t *testing.T) {
	s := newTestStore()
	lobby, host, _ := s.CreateLobby("Elton", true)
	guest, _ := lobby.AddPlayer("Heloise", true)

	lobby.AttachObserver(host.ID, game.NewSpyObserver())
	lobby.AttachObserver(guest.ID, game.NewSpyObserver())

	_, err := lobby.StartGame(guest.ID, game.Settings{})
	assert.Equal(t, ErrUnknownPlayerID, err)
}

func TestStartGameRequiresTwoConnectedPlayers(t *testing.T) {
	s := newTestStore()
	lobby, host, _ := s.CreateLobby("Elton", true)
	lobby.AttachObserver(host.ID, game.NewSpyObserver())

	_, err := lobby.StartGame(host.ID, game.Settings{})
	assert.Equal(t, game.ErrTooFewPlayers, err)

	guest, _ := lobby.AddPlayer("Heloise", true)
	_ = guest // never attaches an observer

	_, err = lobby.StartGame(host.ID, game.Settings{})
	assert.Equal(t, ErrObserverNotAttached, err)
}

func TestAttachObserverAnnouncesArrival(t *testing.T) {
	s := newTestStore()
	lobby, host, _ := s.CreateLobby("Elton", true)

	spy := game.NewSpyObserver()
	require.NoError(t, lobby.AttachObserver(host.ID, spy))

	require.Eventually(t, func() bool {
		return spy.Received("UpdatePlayerList")
	}, time.Second, 5*time.Millisecond)

	assert.Equal(t, ErrUnknownPlayerID, lobby.AttachObserver("nope", spy))
}

func TestLobbyChatBeforeStart(t *testing.T) {
	s := newTestStore()
	lobby, host, _ := s.CreateLobby("Elton", true)
	guest, _ := lobby.AddPlayer("Heloise", true)

	hostSpy := game.NewSpyObserver()
	guestSpy := game.NewSpyObserver()
	lobby.AttachObserver(host.ID, hostSpy)
	lobby.AttachObserver(guest.ID, guestSpy)

	lobby.Chat(host.ID, "ready when you are")

	require.Eventually(t, func() bool {
		for _, c := range guestSpy.CallsTo("ReceiveChatMessage") {
			if c.Args[0] == "Elton" && c.Args[1] == "ready when you are" {
				return true
			}
		}
		return false
	}, time.Second, 5*time.Millisecond)

	// invalid chat goes nowhere
	lobby.Chat(host.ID, "   ")
	lobby.Chat("nope", "hello")
}

func TestLobbyRemovedWhenGameFinishes(t *testing.T) {
	s := newTestStore()
	lobby, host, _ := s.CreateLobby("Elton", true)
	guest, _ := lobby.AddPlayer("Heloise", true)

	hostSpy := game.NewSpyObserver()
	lobby.AttachObserver(host.ID, hostSpy)
	lobby.AttachObserver(guest.ID, game.NewSpyObserver())

	session, err := lobby.StartGame(host.ID, game.Settings{CardCount: 4, TurnTimeSeconds: 30})
	require.NoError(t, err)

	playOutGame(t, session, host.ID)

	require.Eventually(t, func() bool {
		_, err := s.FindLobby(lobby.Code())
		return err == ErrUnknownGameCode
	}, time.Second, 10*time.Millisecond)

	require.Eventually(t, func() bool {
		return hostSpy.Received("GameFinished")
	}, time.Second, 10*time.Millisecond)
}

func TestRemoveLobby(t *testing.T) {
	s := newTestStore()
	lobby, _, _ := s.CreateLobby("Elton", true)

	s.RemoveLobby(lobby.Code())
	_, err := s.FindLobby(lobby.Code())
	assert.Equal(t, ErrUnknownGameCode, err)

	// removing twice is fine
	s.RemoveLobby(lobby.Code())
}

// playOutGame matches every pair as the given player.
func playOutGame(t *testing.T, session *game.Session, playerID string) {
	t.Helper()

	cards := session.BoardInfo()
	byFace := map[int][]int{}
	for _, c := range cards {
		byFace[c.FaceID] = append(byFace[c.FaceID], c.Index)
	}

	for _, pair := range byFace {
		require.Len(t, pair, 2)
		session.HandleFlip(playerID, pair[0])
		session.HandleFlip(playerID, pair[1])
		time.Sleep(30 * time.Millisecond)
	}
}
