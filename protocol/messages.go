package protocol

// Event names carried in the Type field of an OutboundMessage.
const (
	EventGameStarted  = "game_started"
	EventTurn         = "turn"
	EventCardShown    = "card_shown"
	EventCardsMatched = "cards_matched"
	EventScoreUpdate  = "score_update"
	EventCardsHidden  = "cards_hidden"
	EventGameFinished = "game_finished"
	EventPlayerJoined = "player_joined"
	EventPlayerLeft   = "player_left"
	EventPlayerList   = "player_list"
	EventChatMessage  = "chat_message"
)

// InboundMessage is a message from a player to the game server.
type InboundMessage struct {
	Command   Cmd    `json:"command"`
	CardIndex int    `json:"card_index"`
	Text      string `json:"text"`
}

// OutboundCard is a card as revealed to remote players. FaceID is only
// populated for cards the server has chosen to show.
type OutboundCard struct {
	Index  int  `json:"index"`
	FaceID *int `json:"face_id,omitempty"`
}

// OutboundMessage is a message from the game server to a player.
type OutboundMessage struct {
	Type             string         `json:"type"`
	Cards            []OutboundCard `json:"cards,omitempty"`
	CardIndex        int            `json:"card_index,omitempty"`
	FaceID           int            `json:"face_id,omitempty"`
	FirstCardIndex   int            `json:"first_card_index,omitempty"`
	SecondCardIndex  int            `json:"second_card_index,omitempty"`
	PlayerName       string         `json:"player_name,omitempty"`
	Score            int            `json:"score,omitempty"`
	SecondsRemaining int            `json:"seconds_remaining,omitempty"`
	Winner           string         `json:"winner,omitempty"`
	IsGuest          bool           `json:"is_guest,omitempty"`
	Players          []PlayerInfo   `json:"players,omitempty"`
	Sender           string         `json:"sender,omitempty"`
	Text             string         `json:"text,omitempty"`
	System           bool           `json:"system,omitempty"`
}
