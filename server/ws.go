package server

import (
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"github.com/ninagrant/pairs/board"
	"github.com/ninagrant/pairs/game"
	"github.com/ninagrant/pairs/protocol"
	"github.com/ninagrant/pairs/validate"
)

const writeWait = 10 * time.Second

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// HandleWS upgrades a joined player's connection, binds a websocket-backed
// observer handle to them and pumps their commands into the lobby.
func (g *GameServer) HandleWS(w http.ResponseWriter, r *http.Request) {
	code := r.URL.Query().Get("code")
	playerID := r.URL.Query().Get("player_id")

	if !validate.GameCode(code) || playerID == "" {
		http.Error(w, "missing credentials", http.StatusBadRequest)
		return
	}

	lobby, err := g.store.FindLobby(code)
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		g.logger.WithError(err).Error("upgrading connection")
		return
	}

	observer := NewWSObserver(conn, g.logger)
	if err := lobby.AttachObserver(playerID, observer); err != nil {
		g.logger.WithError(err).Warn("rejecting websocket")
		conn.Close()
		return
	}

	go g.readLoop(lobby, playerID, conn)
}

// readLoop pumps a player's inbound messages until the connection drops.
func (g *GameServer) readLoop(lobby lobbyHandle, playerID string, conn *websocket.Conn) {
	defer func() {
		conn.Close()
		lobby.RemovePlayer(playerID)
	}()

	for {
		var msg protocol.InboundMessage
		if err := conn.ReadJSON(&msg); err != nil {
			g.logger.WithError(err).Debug("websocket closed")
			return
		}

		switch msg.Command {
		case protocol.Start:
			settings := game.Settings{
				CardCount:       g.cfg.DefaultCardCount,
				TurnTimeSeconds: g.cfg.DefaultTurnTimeSeconds,
			}
			if _, err := lobby.StartGame(playerID, settings); err != nil {
				g.logger.WithError(err).Warn("start rejected")
			}
		case protocol.Flip:
			if session := lobby.Session(); session != nil {
				session.HandleFlip(playerID, msg.CardIndex)
			}
		case protocol.Chat:
			lobby.Chat(playerID, msg.Text)
		case protocol.Leave:
			return
		}
	}
}

// lobbyHandle is the slice of store.Lobby the websocket loop needs.
type lobbyHandle interface {
	StartGame(playerID string, settings game.Settings) (*game.Session, error)
	Session() *game.Session
	Chat(playerID, text string)
	RemovePlayer(playerID string) error
}

// WSObserver adapts a websocket connection to the game.Observer interface.
// All methods serialise to JSON protocol messages; write failures are
// logged and swallowed so a dead connection never disturbs the game.
type WSObserver struct {
	mu     sync.Mutex
	conn   *websocket.Conn
	logger logrus.FieldLogger
}

// NewWSObserver wraps a websocket connection as an observer handle.
func NewWSObserver(conn *websocket.Conn, logger logrus.FieldLogger) *WSObserver {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &WSObserver{conn: conn, logger: logger}
}

func (o *WSObserver) write(msg protocol.OutboundMessage) {
	o.mu.Lock()
	defer o.mu.Unlock()

	o.conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := o.conn.WriteJSON(msg); err != nil {
		o.logger.WithError(err).WithField("event", msg.Type).
			Debug("dropping event for dead connection")
	}
}

// GameStarted sends the board layout with faces redacted: remote players
// learn the card positions but not what is on them.
func (o *WSObserver) GameStarted(cards []board.CardInfo) {
	redacted := make([]protocol.OutboundCard, len(cards))
	for i, c := range cards {
		redacted[i] = protocol.OutboundCard{Index: c.Index}
	}
	o.write(protocol.OutboundMessage{
		Type:  protocol.EventGameStarted,
		Cards: redacted,
	})
}

func (o *WSObserver) UpdateTurn(playerName string, secondsRemaining int) {
	o.write(protocol.OutboundMessage{
		Type:             protocol.EventTurn,
		PlayerName:       playerName,
		SecondsRemaining: secondsRemaining,
	})
}

func (o *WSObserver) ShowCard(index, faceID int) {
	o.write(protocol.OutboundMessage{
		Type:      protocol.EventCardShown,
		CardIndex: index,
		FaceID:    faceID,
	})
}

func (o *WSObserver) SetCardsAsMatched(i, j int) {
	o.write(protocol.OutboundMessage{
		Type:            protocol.EventCardsMatched,
		FirstCardIndex:  i,
		SecondCardIndex: j,
	})
}

func (o *WSObserver) UpdateScore(playerName string, newScore int) {
	o.write(protocol.OutboundMessage{
		Type:       protocol.EventScoreUpdate,
		PlayerName: playerName,
		Score:      newScore,
	})
}

func (o *WSObserver) HideCards(i, j int) {
	o.write(protocol.OutboundMessage{
		Type:            protocol.EventCardsHidden,
		FirstCardIndex:  i,
		SecondCardIndex: j,
	})
}

func (o *WSObserver) GameFinished(winnerName string) {
	o.write(protocol.OutboundMessage{
		Type:   protocol.EventGameFinished,
		Winner: winnerName,
	})
}

func (o *WSObserver) PlayerJoined(name string, isGuest bool) {
	o.write(protocol.OutboundMessage{
		Type:       protocol.EventPlayerJoined,
		PlayerName: name,
		IsGuest:    isGuest,
	})
}

func (o *WSObserver) PlayerLeft(name string) {
	o.write(protocol.OutboundMessage{
		Type:       protocol.EventPlayerLeft,
		PlayerName: name,
	})
}

func (o *WSObserver) UpdatePlayerList(players []protocol.PlayerInfo) {
	o.write(protocol.OutboundMessage{
		Type:    protocol.EventPlayerList,
		Players: players,
	})
}

func (o *WSObserver) ReceiveChatMessage(sender, text string, isSystemNotification bool) {
	o.write(protocol.OutboundMessage{
		Type:   protocol.EventChatMessage,
		Sender: sender,
		Text:   text,
		System: isSystemNotification,
	})
}
