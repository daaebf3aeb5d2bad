package game

// ActionType enumerates the player intents the engine accepts.
type ActionType string

const (
	ActionFold  ActionType = "fold"
	ActionCheck ActionType = "check"
	ActionCall  ActionType = "call"
	ActionBet   ActionType = "bet"
	ActionRaise ActionType = "raise"
)

// Action is a transient player intent. Amount is the number of chips the
// player adds with this action; it is meaningful only for bet and raise.
type Action struct {
	Type   ActionType `json:"action"`
	Amount int        `json:"amount,omitempty"`
}

// ActionContext is the slice of betting state the validator needs. It is
// assembled by the engine for the acting player.
type ActionContext struct {
	// ToCall is maxBetThisStreet - playerBetThisStreet, never negative.
	ToCall int

	// MinRaise is the smallest legal raise increment above the call amount.
	MinRaise int

	BigBlind int

	// Stack is the acting player's remaining chips.
	Stack int

	// RaiseClosed is set when the player already matched the previous maximum
	// and the only aggression since was an under-minimum all-in. They may
	// call or fold, but the action was never reopened for them to raise.
	RaiseClosed bool
}

// MinimumOpen returns the smallest legal total for a bet or raise: the big
// blind when nothing is owed, otherwise toCall plus the current minimum raise.
func (ctx ActionContext) MinimumOpen() int {
	if ctx.ToCall == 0 {
		return ctx.BigBlind
	}
	return ctx.ToCall + ctx.MinRaise
}

// ValidateAction is a pure predicate: given the betting context and a proposed
// action it returns the normalized number of chips the action commits, or an
// error. It never mutates anything.
//
// A player may always commit their entire stack even when that is below the
// normal minimum (all-in exception).
func ValidateAction(ctx ActionContext, a Action) (int, error) {
	switch a.Type {
	case ActionFold:
		return 0, nil

	case ActionCheck:
		if ctx.ToCall != 0 {
			return 0, ErrIllegalAction
		}
		return 0, nil

	case ActionCall:
		if ctx.ToCall == 0 {
			return 0, ErrIllegalAction
		}
		// Short stacks call all-in for less.
		if ctx.Stack < ctx.ToCall {
			return ctx.Stack, nil
		}
		return ctx.ToCall, nil

	case ActionBet:
		if ctx.ToCall != 0 {
			return 0, ErrIllegalAction
		}
		if a.Amount <= 0 || a.Amount > ctx.Stack {
			return 0, ErrInvalidAmount
		}
		if a.Amount < ctx.BigBlind && a.Amount != ctx.Stack {
			return 0, ErrInvalidAmount
		}
		return a.Amount, nil

	case ActionRaise:
		if ctx.ToCall == 0 {
			return 0, ErrIllegalAction
		}
		if ctx.RaiseClosed {
			return 0, ErrIllegalAction
		}
		if a.Amount <= 0 || a.Amount > ctx.Stack {
			return 0, ErrInvalidAmount
		}
		if a.Amount < ctx.ToCall+ctx.MinRaise && a.Amount != ctx.Stack {
			return 0, ErrInvalidAmount
		}
		return a.Amount, nil

	default:
		return 0, ErrIllegalAction
	}
}

// quickBets returns the half-pot, pot and double-pot totals for the acting
// player, each clamped up to the legal minimum open.
func quickBets(pot int, ctx ActionContext) []int {
	minOpen := ctx.MinimumOpen()
	clamp := func(v int) int {
		if v < minOpen {
			return minOpen
		}
		return v
	}
	return []int{clamp(pot / 2), clamp(pot), clamp(pot * 2)}
}
