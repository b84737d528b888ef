package server

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/gorilla/handlers"
	qrcode "github.com/skip2/go-qrcode"
	"github.com/sirupsen/logrus"

	"github.com/ninagrant/pairs/config"
	"github.com/ninagrant/pairs/store"
	"github.com/ninagrant/pairs/validate"
)

type NewGameReq struct {
	Name string `json:"name"`
}

type JoinGameReq struct {
	GameCode string `json:"game_code"`
	Name     string `json:"name"`
}

type PendingGameRes struct {
	GameCode string   `json:"game_code"`
	PlayerID string   `json:"player_id"`
	Name     string   `json:"name"`
	Host     bool     `json:"is_host"`
	Players  []string `json:"players"`
}

type GetGameRes struct {
	GameCode    string `json:"game_code"`
	PlayerCount int    `json:"player_count"`
	Started     bool   `json:"started"`
}

// GameServer is the HTTP and websocket front of the game coordinator.
type GameServer struct {
	http.Server

	store  store.LobbyStore
	cfg    *config.Config
	logger *logrus.Logger
}

// NewServer creates a new GameServer around a lobby store.
func NewServer(lobbies store.LobbyStore, cfg *config.Config, logger *logrus.Logger) *GameServer {
	if logger == nil {
		logger = logrus.StandardLogger()
	}

	g := &GameServer{
		store:  lobbies,
		cfg:    cfg,
		logger: logger,
	}

	router := http.NewServeMux()
	router.Handle("/new", http.HandlerFunc(g.HandleNewGame))
	router.Handle("/join", http.HandlerFunc(g.HandleJoinGame))
	router.Handle("/game/", http.HandlerFunc(g.HandleFindGame))
	router.Handle("/qr/", http.HandlerFunc(g.HandleQRCode))
	router.Handle("/ws", http.HandlerFunc(g.HandleWS))

	g.Addr = cfg.Addr
	g.Handler = handlers.CORS(
		handlers.AllowedOrigins([]string{"*"}),
		handlers.AllowedHeaders([]string{"Content-Type"}),
	)(handlers.LoggingHandler(logger.Writer(), router))

	return g
}

// ServeHTTP serves http
func (g *GameServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	g.Handler.ServeHTTP(w, r)
}

// HandleNewGame handles a request to create a new game lobby.
func (g *GameServer) HandleNewGame(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusNotFound)
		return
	}

	var data NewGameReq
	err := json.NewDecoder(r.Body).Decode(&data)
	defer r.Body.Close()
	if err != nil {
		http.Error(w, "could not parse request", http.StatusBadRequest)
		return
	}

	lobby, host, err := g.store.CreateLobby(data.Name, true)
	if err == store.ErrInvalidName {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err != nil {
		g.logger.WithError(err).Error("creating lobby")
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusCreated, PendingGameRes{
		GameCode: lobby.Code(),
		PlayerID: host.ID,
		Name:     host.Name,
		Host:     true,
		Players:  lobby.PlayerNames(),
	})
}

// HandleJoinGame handles a request to join an existing lobby by code.
func (g *GameServer) HandleJoinGame(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusNotFound)
		return
	}

	var data JoinGameReq
	err := json.NewDecoder(r.Body).Decode(&data)
	defer r.Body.Close()
	if err != nil {
		http.Error(w, "could not parse request", http.StatusBadRequest)
		return
	}

	if !validate.GameCode(data.GameCode) {
		http.Error(w, "invalid game code", http.StatusBadRequest)
		return
	}

	lobby, err := g.store.FindLobby(data.GameCode)
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}

	player, err := lobby.AddPlayer(data.Name, true)
	switch err {
	case nil:
	case store.ErrInvalidName:
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	case store.ErrLobbyFull, store.ErrGameAlreadyStarted:
		http.Error(w, err.Error(), http.StatusConflict)
		return
	default:
		g.logger.WithError(err).Error("joining lobby")
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, PendingGameRes{
		GameCode: lobby.Code(),
		PlayerID: player.ID,
		Name:     player.Name,
		Host:     false,
		Players:  lobby.PlayerNames(),
	})
}

// HandleFindGame reports the status of a lobby.
func (g *GameServer) HandleFindGame(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusNotFound)
		return
	}

	code := strings.TrimPrefix(r.URL.Path, "/game/")
	if !validate.GameCode(code) {
		http.Error(w, "invalid game code", http.StatusBadRequest)
		return
	}

	lobby, err := g.store.FindLobby(code)
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}

	writeJSON(w, http.StatusOK, GetGameRes{
		GameCode:    lobby.Code(),
		PlayerCount: lobby.PlayerCount(),
		Started:     lobby.Session() != nil,
	})
}

// HandleQRCode renders a QR code for a lobby's join link, for sharing a
// game across the room.
func (g *GameServer) HandleQRCode(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusNotFound)
		return
	}

	code := strings.TrimPrefix(r.URL.Path, "/qr/")
	if !validate.GameCode(code) {
		http.Error(w, "invalid game code", http.StatusBadRequest)
		return
	}

	if _, err := g.store.FindLobby(code); err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}

	joinURL := g.cfg.PublicURL + "/join?code=" + code
	png, err := qrcode.Encode(joinURL, qrcode.Medium, 256)
	if err != nil {
		g.logger.WithError(err).Error("encoding QR code")
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Write(png)
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}
