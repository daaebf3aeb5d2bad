// Package handrank adapts the chehsunliu/poker evaluator to this server's
// card model. The betting engine treats it as a black box: it hands over
// seven cards and gets back a comparable rank.
package handrank

import (
	"github.com/chehsunliu/poker"

	"github.com/tablestakes/holdem/internal/models"
)

// Result is the evaluation of a player's best 5-card hand.
type Result struct {
	// Value is the raw evaluator rank. Lower is stronger.
	Value int32

	// Description is a human-readable hand class, e.g. "Full House".
	Description string
}

// Evaluate ranks the best 5-card hand from two hole cards plus the community.
func Evaluate(hole []models.Card, community []models.Card) Result {
	cards := make([]poker.Card, 0, len(hole)+len(community))
	for _, c := range hole {
		cards = append(cards, toPokerCard(c))
	}
	for _, c := range community {
		cards = append(cards, toPokerCard(c))
	}

	rank := poker.Evaluate(cards)
	return Result{
		Value:       rank,
		Description: poker.RankString(rank),
	}
}

// Compare returns -1 if a is weaker than b, 0 on a tie and 1 if a is stronger.
func Compare(a, b Result) int {
	// Lower evaluator values are stronger hands.
	switch {
	case a.Value > b.Value:
		return -1
	case a.Value < b.Value:
		return 1
	default:
		return 0
	}
}

// toPokerCard converts a wire card into the evaluator's representation. The
// only rank token that differs is "10", which the evaluator spells "T".
func toPokerCard(c models.Card) poker.Card {
	rank := c.Rank
	if rank == "10" {
		rank = "T"
	}
	return poker.NewCard(rank + c.Suit)
}
