package game

import (
	"math/rand"

	"github.com/tablestakes/holdem/internal/models"
)

// Deck is a shuffled 52-card deck private to one hand.
type Deck struct {
	cards []models.Card
	rng   *rand.Rand
}

// NewDeck builds a full deck shuffled with the given source.
func NewDeck(rng *rand.Rand) *Deck {
	d := &Deck{
		cards: make([]models.Card, 0, 52),
		rng:   rng,
	}
	for _, suit := range models.Suits {
		for _, rank := range models.Ranks {
			d.cards = append(d.cards, models.Card{Rank: rank, Suit: suit})
		}
	}
	d.Shuffle()
	return d
}

// Shuffle randomizes the order of the remaining cards.
func (d *Deck) Shuffle() {
	d.rng.Shuffle(len(d.cards), func(i, j int) {
		d.cards[i], d.cards[j] = d.cards[j], d.cards[i]
	})
}

// Draw removes and returns the top card. ok is false on an empty deck, which
// cannot happen in a legal hand (6 players consume at most 17 cards).
func (d *Deck) Draw() (models.Card, bool) {
	if len(d.cards) == 0 {
		return models.Card{}, false
	}
	card := d.cards[0]
	d.cards = d.cards[1:]
	return card, true
}

// DrawN draws up to n cards.
func (d *Deck) DrawN(n int) []models.Card {
	out := make([]models.Card, 0, n)
	for i := 0; i < n; i++ {
		card, ok := d.Draw()
		if !ok {
			break
		}
		out = append(out, card)
	}
	return out
}

// Size returns the number of cards remaining.
func (d *Deck) Size() int {
	return len(d.cards)
}
