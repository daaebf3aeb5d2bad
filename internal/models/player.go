package models

// Player is one seated participant in a room. All mutation happens inside the
// engine in response to validated actions or timeouts; the transport layer
// only reads it through projected views.
type Player struct {
	ID    string `json:"id"`
	Stack int    `json:"stack"`

	// Bet is the number of chips committed on the current street.
	Bet    int  `json:"bet"`
	Folded bool `json:"folded"`

	Connected bool `json:"-"`

	// SittingOut marks a player who left mid-game; they are folded out of the
	// live hand and excluded from every later hand, but their seat entry is
	// kept so in-flight pot accounting stays intact.
	SittingOut bool `json:"-"`

	HoleCards []Card `json:"-"`
}
