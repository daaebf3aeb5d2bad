package game

// Street is one betting phase of a hand.
type Street int

const (
	Preflop Street = iota
	Flop
	Turn
	River
	ShowdownStreet
)

// String returns the wire name of the street.
func (s Street) String() string {
	switch s {
	case Preflop:
		return "preflop"
	case Flop:
		return "flop"
	case Turn:
		return "turn"
	case River:
		return "river"
	case ShowdownStreet:
		return "showdown"
	default:
		return "unknown"
	}
}

// communityCardsToDeal returns how many community cards entering this street adds.
func (s Street) communityCardsToDeal() int {
	switch s {
	case Flop:
		return 3
	case Turn, River:
		return 1
	default:
		return 0
	}
}
