package models

import (
	"encoding/json"
	"fmt"
)

// Suit letters. These one-letter codes are the wire contract: a card is
// encoded as rank token + suit letter, e.g. "Kh" or "10d".
const (
	SuitSpades   = "s"
	SuitHearts   = "h"
	SuitDiamonds = "d"
	SuitClubs    = "c"
)

// Ranks from lowest to highest.
var Ranks = []string{"2", "3", "4", "5", "6", "7", "8", "9", "10", "J", "Q", "K", "A"}

// Suits in deck-construction order.
var Suits = []string{SuitSpades, SuitHearts, SuitDiamonds, SuitClubs}

// Card is an immutable playing card. The zero value is not a valid card.
type Card struct {
	Rank string
	Suit string
}

// Code returns the wire encoding of the card (rank token + suit letter).
func (c Card) Code() string {
	return c.Rank + c.Suit
}

// String implements fmt.Stringer using the wire encoding.
func (c Card) String() string {
	return c.Code()
}

// Color returns the display color class for the card's suit: hearts and
// diamonds are "red", spades and clubs are "black".
func (c Card) Color() string {
	if c.Suit == SuitHearts || c.Suit == SuitDiamonds {
		return "red"
	}
	return "black"
}

// ParseCard decodes a wire card code ("Kh", "10d") back into a Card.
func ParseCard(code string) (Card, error) {
	if len(code) < 2 {
		return Card{}, fmt.Errorf("card code too short: %q", code)
	}
	rank := code[:len(code)-1]
	suit := code[len(code)-1:]

	validRank := false
	for _, r := range Ranks {
		if r == rank {
			validRank = true
			break
		}
	}
	if !validRank {
		return Card{}, fmt.Errorf("invalid rank %q in card code %q", rank, code)
	}
	switch suit {
	case SuitSpades, SuitHearts, SuitDiamonds, SuitClubs:
	default:
		return Card{}, fmt.Errorf("invalid suit %q in card code %q", suit, code)
	}
	return Card{Rank: rank, Suit: suit}, nil
}

// MarshalJSON encodes the card as its wire code so every outbound payload
// carries cards in the "Kh" format.
func (c Card) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.Code())
}

// UnmarshalJSON decodes a wire card code.
func (c *Card) UnmarshalJSON(data []byte) error {
	var code string
	if err := json.Unmarshal(data, &code); err != nil {
		return err
	}
	parsed, err := ParseCard(code)
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}
