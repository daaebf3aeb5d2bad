// internal/handrank/handrank_test.go
package handrank

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tablestakes/holdem/internal/models"
)

func cards(t *testing.T, codes ...string) []models.Card {
	t.Helper()
	out := make([]models.Card, 0, len(codes))
	for _, code := range codes {
		c, err := models.ParseCard(code)
		require.NoError(t, err, code)
		out = append(out, c)
	}
	return out
}

func TestEvaluateRanksHandClasses(t *testing.T) {
	board := cards(t, "Qh", "Jh", "10h", "3c", "7d")

	royal := Evaluate(cards(t, "Ah", "Kh"), board)
	pair := Evaluate(cards(t, "Qc", "2d"), board)
	high := Evaluate(cards(t, "2c", "4d"), board)

	assert.Equal(t, "Straight Flush", royal.Description)
	assert.Equal(t, "Pair", pair.Description)
	assert.Equal(t, "High Card", high.Description)

	assert.Equal(t, 1, Compare(royal, pair))
	assert.Equal(t, 1, Compare(pair, high))
	assert.Equal(t, -1, Compare(high, royal))
}

func TestCompareTiesOnSharedBestHand(t *testing.T) {
	// The board plays for both: the best five cards are the broadway straight.
	board := cards(t, "Ah", "Kd", "Qs", "Jc", "10h")
	a := Evaluate(cards(t, "2c", "3d"), board)
	b := Evaluate(cards(t, "4s", "5h"), board)
	assert.Equal(t, 0, Compare(a, b))
}

func TestTenIsTranslatedForTheEvaluator(t *testing.T) {
	// Four tens: only possible if "10" maps onto the evaluator's "T".
	res := Evaluate(cards(t, "10h", "10d"), cards(t, "10s", "10c", "2h", "5d", "9c"))
	assert.Equal(t, "Four of a Kind", res.Description)
}
