// internal/models/card_test.go
package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCardRoundTrip(t *testing.T) {
	for _, code := range []string{"Kh", "10d", "As", "2c", "Jd"} {
		c, err := ParseCard(code)
		require.NoError(t, err, code)
		assert.Equal(t, code, c.Code())
	}
}

func TestParseCardRejectsGarbage(t *testing.T) {
	for _, code := range []string{"", "K", "Kx", "1h", "10", "Xh", "Khh"} {
		_, err := ParseCard(code)
		assert.Error(t, err, "code %q should not parse", code)
	}
}

func TestCardColor(t *testing.T) {
	assert.Equal(t, "red", Card{Rank: "K", Suit: SuitHearts}.Color())
	assert.Equal(t, "red", Card{Rank: "7", Suit: SuitDiamonds}.Color())
	assert.Equal(t, "black", Card{Rank: "A", Suit: SuitSpades}.Color())
	assert.Equal(t, "black", Card{Rank: "10", Suit: SuitClubs}.Color())
}

func TestCardJSONIsWireCode(t *testing.T) {
	data, err := json.Marshal(Card{Rank: "10", Suit: SuitDiamonds})
	require.NoError(t, err)
	assert.Equal(t, `"10d"`, string(data))

	var c Card
	require.NoError(t, json.Unmarshal([]byte(`"Kh"`), &c))
	assert.Equal(t, Card{Rank: "K", Suit: SuitHearts}, c)

	assert.Error(t, json.Unmarshal([]byte(`"zz"`), &c))
}
