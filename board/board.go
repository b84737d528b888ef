package board

import "math/rand"

// Board holds the cards for one game and their flip/match state.
// It is not safe for concurrent use; the owning session serialises access.
type Board struct {
	cards []Card
}

// New builds a board of cardCount cards as cardCount/2 pairs, shuffled
// uniformly. cardCount is assumed to be even; sanitisation happens upstream.
func New(cardCount int) *Board {
	cards := make([]Card, cardCount)
	for i := range cards {
		pair := i / 2
		cards[i] = Card{PairKey: pair, FaceID: pair}
	}

	rand.Shuffle(len(cards), func(i, j int) {
		cards[i], cards[j] = cards[j], cards[i]
	})

	for i := range cards {
		cards[i].Index = i
	}

	return &Board{cards: cards}
}

// Size returns the number of cards on the board.
func (b *Board) Size() int {
	return len(b.cards)
}

// Info returns the ordered public projection of every card.
func (b *Board) Info() []CardInfo {
	info := make([]CardInfo, len(b.cards))
	for i, c := range b.cards {
		info[i] = CardInfo{Index: c.Index, FaceID: c.FaceID}
	}
	return info
}

// Card returns the card at index, or false if index is out of range.
func (b *Board) Card(index int) (Card, bool) {
	if index < 0 || index >= len(b.cards) {
		return Card{}, false
	}
	return b.cards[index], true
}

// Flip turns the card at index face up. Out-of-range indices are a no-op.
func (b *Board) Flip(index int) {
	if index < 0 || index >= len(b.cards) {
		return
	}
	b.cards[index].Flipped = true
}

// Unflip turns the card at index face down. Out-of-range indices are a no-op.
func (b *Board) Unflip(index int) {
	if index < 0 || index >= len(b.cards) {
		return
	}
	b.cards[index].Flipped = false
}

// MarkMatched records both cards as matched. The caller is responsible for
// having verified their faces are equal.
func (b *Board) MarkMatched(i, j int) {
	for _, index := range []int{i, j} {
		if index < 0 || index >= len(b.cards) {
			continue
		}
		b.cards[index].Matched = true
	}
}

// AllMatched reports whether every card on the board has been matched.
// It is false for an empty board.
func (b *Board) AllMatched() bool {
	if len(b.cards) == 0 {
		return false
	}
	for _, c := range b.cards {
		if !c.Matched {
			return false
		}
	}
	return true
}
