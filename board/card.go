package board

// Card represents a single card on the board.
// PairKey is shared by exactly two cards and identifies the match partner.
// FaceID is the image token shown to players when the card is revealed.
type Card struct {
	Index   int
	PairKey int
	FaceID  int
	Flipped bool
	Matched bool
}

// Visible reports whether the card's face should currently be shown.
// A matched card stays face up even after the flip that revealed it.
func (c Card) Visible() bool {
	return c.Flipped || c.Matched
}

// CardInfo is the projection of a Card exposed outside the board.
// It carries the card's position and face only, never the pair key.
type CardInfo struct {
	Index  int `json:"index"`
	FaceID int `json:"face_id"`
}
