package game

import (
	"context"
	"log"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/thoas/go-funk"
	"github.com/weedbox/timebank"

	"github.com/tablestakes/holdem/internal/history"
	"github.com/tablestakes/holdem/internal/models"
)

// HoldemGame owns the live betting state for one room. All mutating requests
// for a room are serialized through Mu, so at most one action is ever applied
// at a time; independent rooms run fully in parallel.
//
// Lock ordering: the engine lock may be held while calling BroadcastFn or
// BroadcastToPlayerFn (the room layer must not take its main lock there), and
// OnGameEnd is invoked on a fresh goroutine with no locks held.
type HoldemGame struct {
	ID     uuid.UUID
	RoomID string

	// Players is the seat order. The slice is stable for the life of the
	// game; departed players are flagged SittingOut, never removed.
	Players []*models.Player

	DealerIndex  int
	CurrentIndex int // -1 when no turn is open
	Street       Street
	Community    []models.Card

	BigBlind   int
	SmallBlind int

	// MinRaise is the smallest legal raise increment above the call amount.
	// It never decreases within a street.
	MinRaise int

	HandID     uuid.UUID
	HandActive bool
	GameOver   bool

	// TurnID increments each time a turn opens; stale timer callbacks check
	// it and drop themselves.
	TurnID int

	TurnDuration time.Duration

	// HandGap is the pause between a hand settling and the next one starting.
	HandGap time.Duration

	deck *Deck
	rng  *rand.Rand

	// collected holds chips from completed streets; the live pot is
	// collected plus the bets still in front of players.
	collected int

	// contributions tracks each player's total chips committed this hand,
	// across streets. Side pots are layered from it at settlement.
	contributions map[string]int

	// acted tracks who has acted this street. Posting a blind counts as
	// acting; a full raise resets the set to just the raiser.
	acted map[string]bool

	// raiseClosed marks players who had matched the maximum bet when an
	// under-minimum all-in came in behind them. They may call the short
	// chips or fold, but not raise. A full raise clears the set.
	raiseClosed map[string]bool

	actionIndex int

	turnTimer *timebank.TimeBank
	scheduler *timebank.TimeBank

	Mu sync.Mutex

	// BroadcastFn sends an event to every subscriber of the room.
	BroadcastFn func(ev Event)

	// BroadcastToPlayerFn sends an event to a single player only.
	BroadcastToPlayerFn func(playerID string, ev Event)

	// OnGameEnd is invoked once when fewer than two stacks remain.
	OnGameEnd func()
}

// NewHoldemGame builds an engine over the given seats. The hand is not
// started; call StartHand once at least two seats hold chips.
func NewHoldemGame(roomID string, players []*models.Player, bigBlind int) *HoldemGame {
	return &HoldemGame{
		ID:            uuid.New(),
		RoomID:        roomID,
		Players:       players,
		DealerIndex:   -1,
		CurrentIndex:  -1,
		BigBlind:      bigBlind,
		SmallBlind:    bigBlind / 2,
		TurnDuration:  30 * time.Second,
		HandGap:       5 * time.Second,
		contributions: make(map[string]int),
		acted:         make(map[string]bool),
		raiseClosed:   make(map[string]bool),
		rng:           rand.New(rand.NewSource(time.Now().UnixNano())),
		turnTimer:     timebank.NewTimeBank(),
		scheduler:     timebank.NewTimeBank(),
	}
}

// StartHand shuffles, deals, posts blinds and opens the first turn.
func (g *HoldemGame) StartHand() error {
	g.Mu.Lock()
	defer g.Mu.Unlock()
	return g.startHandLocked()
}

// startHandLocked assumes the lock is held.
func (g *HoldemGame) startHandLocked() error {
	if g.GameOver || g.HandActive {
		return ErrIllegalAction
	}

	eligible := funk.Filter(g.Players, func(p *models.Player) bool {
		return !p.SittingOut && p.Stack > 0
	}).([]*models.Player)
	if len(eligible) < 2 {
		return ErrInsufficientPlayers
	}

	g.HandID = uuid.New()
	g.Street = Preflop
	g.Community = nil
	g.collected = 0
	g.contributions = make(map[string]int)
	g.acted = make(map[string]bool)
	g.raiseClosed = make(map[string]bool)
	g.MinRaise = g.BigBlind
	g.deck = NewDeck(g.rng)

	for _, p := range g.Players {
		p.Bet = 0
		p.HoleCards = nil
		p.Folded = p.SittingOut || p.Stack == 0
	}
	for _, p := range eligible {
		p.HoleCards = g.deck.DrawN(2)
	}

	// The button starts behind seat zero so the first hand's blinds fall on
	// the first two seats, then rotates each hand.
	if g.DealerIndex < 0 {
		g.DealerIndex = len(g.Players) - 1
	} else {
		g.DealerIndex = g.nextIndex(g.DealerIndex, func(p *models.Player) bool { return !p.Folded })
	}

	sbIdx := g.nextIndex(g.DealerIndex, func(p *models.Player) bool { return !p.Folded })
	bbIdx := g.nextIndex(sbIdx, func(p *models.Player) bool { return !p.Folded })
	g.postBlind(g.Players[sbIdx], g.SmallBlind)
	g.postBlind(g.Players[bbIdx], g.BigBlind)

	g.HandActive = true
	g.actionIndex = 0
	g.logAction("", "hand_start", 0)
	log.Printf("Room %s: hand %s started, dealer seat %d.", g.RoomID, g.HandID, g.DealerIndex)

	for _, p := range eligible {
		g.firePrivateHand(p.ID)
	}

	// Blinds may already be all-in; in that degenerate case there is no turn
	// to open and the board runs out immediately.
	if g.streetComplete() {
		g.advanceStreet()
		return nil
	}

	g.CurrentIndex = g.nextActionable(bbIdx)
	g.TurnID++
	g.fireUpdateGame()
	g.openTurnLocked()
	return nil
}

// postBlind commits up to amount from the player's stack. Posting counts as
// having acted for street-completion purposes.
func (g *HoldemGame) postBlind(p *models.Player, amount int) {
	if amount > p.Stack {
		amount = p.Stack
	}
	p.Stack -= amount
	p.Bet += amount
	g.contributions[p.ID] += amount
	g.acted[p.ID] = true
}

// ApplyAction validates and applies one player action. On any error the state
// is exactly as it was before the call.
func (g *HoldemGame) ApplyAction(playerID string, a Action) error {
	g.Mu.Lock()
	defer g.Mu.Unlock()
	return g.applyActionLocked(playerID, a)
}

// applyActionLocked assumes the lock is held.
func (g *HoldemGame) applyActionLocked(playerID string, a Action) error {
	if !g.HandActive || g.GameOver {
		return ErrIllegalAction
	}
	if g.CurrentIndex < 0 || g.Players[g.CurrentIndex].ID != playerID {
		return ErrIllegalAction
	}

	p := g.Players[g.CurrentIndex]
	ctx := g.actionContext(p)
	commit, err := ValidateAction(ctx, a)
	if err != nil {
		return err
	}

	// A real action beats the deadline; the timer is cancelled exactly once.
	g.turnTimer.Cancel()

	switch a.Type {
	case ActionFold:
		p.Folded = true
	case ActionCheck:
		// nothing to move
	default:
		p.Stack -= commit
		p.Bet += commit
		g.contributions[p.ID] += commit
	}

	// A full bet or raise reopens the action; an under-minimum all-in does
	// not, and leaves MinRaise untouched.
	priorMax := p.Bet - commit + ctx.ToCall
	reopened := false
	switch a.Type {
	case ActionBet:
		if commit >= g.MinRaise {
			g.MinRaise = commit
			reopened = true
		}
	case ActionRaise:
		if inc := commit - ctx.ToCall; inc >= g.MinRaise {
			g.MinRaise = inc
			reopened = true
		}
	}
	switch {
	case reopened:
		g.acted = map[string]bool{p.ID: true}
		g.raiseClosed = make(map[string]bool)
	case a.Type == ActionBet || a.Type == ActionRaise:
		// Under-minimum all-in: anyone who already matched the previous
		// maximum keeps only call-or-fold rights.
		for _, q := range g.Players {
			if q.ID != p.ID && g.acted[q.ID] && q.Bet >= priorMax {
				g.raiseClosed[q.ID] = true
			}
		}
		g.acted[p.ID] = true
	default:
		g.acted[p.ID] = true
	}

	g.logAction(p.ID, string(a.Type), commit)

	if g.countActive() <= 1 {
		g.settleFoldWin()
		return nil
	}
	if g.streetComplete() {
		g.advanceStreet()
		return nil
	}
	g.openNextTurnLocked()
	return nil
}

// actionContext assembles the validator's view for the given player.
func (g *HoldemGame) actionContext(p *models.Player) ActionContext {
	return ActionContext{
		ToCall:      g.maxBet() - p.Bet,
		MinRaise:    g.MinRaise,
		BigBlind:    g.BigBlind,
		Stack:       p.Stack,
		RaiseClosed: g.raiseClosed[p.ID],
	}
}

// maxBet returns the highest bet in front of any player this street.
func (g *HoldemGame) maxBet() int {
	max := 0
	for _, p := range g.Players {
		if p.Bet > max {
			max = p.Bet
		}
	}
	return max
}

// pot returns the live pot: collected streets plus bets still in front.
func (g *HoldemGame) pot() int {
	total := g.collected
	for _, p := range g.Players {
		total += p.Bet
	}
	return total
}

// streetComplete reports whether the betting round is over: every non-folded
// player is either matched to the maximum bet or all-in, and every player who
// can still act has acted.
func (g *HoldemGame) streetComplete() bool {
	max := g.maxBet()
	for _, p := range g.activePlayers() {
		if p.Stack > 0 && p.Bet != max {
			return false
		}
		if p.Stack > 0 && !g.acted[p.ID] {
			return false
		}
	}
	return true
}

// advanceStreet collects bets, deals the next community cards and opens the
// first postflop turn, or runs the board out when nobody can act.
// Assumes the lock is held.
func (g *HoldemGame) advanceStreet() {
	g.collectBets()

	if g.Street == River {
		g.Street = ShowdownStreet
		g.settleShowdown()
		return
	}

	g.Street++
	g.Community = append(g.Community, g.deck.DrawN(g.Street.communityCardsToDeal())...)
	log.Printf("Room %s: dealing %s, board %v.", g.RoomID, g.Street, g.Community)

	if g.countActionable() < 2 {
		g.fireUpdateGame()
		g.advanceStreet()
		return
	}

	g.CurrentIndex = g.nextActionable(g.DealerIndex)
	g.TurnID++
	g.fireUpdateGame()
	g.openTurnLocked()
}

// collectBets sweeps street bets into the pot and resets the street state.
func (g *HoldemGame) collectBets() {
	for _, p := range g.Players {
		g.collected += p.Bet
		p.Bet = 0
	}
	g.acted = make(map[string]bool)
	g.raiseClosed = make(map[string]bool)
	g.MinRaise = g.BigBlind
}

// openNextTurnLocked advances the turn pointer and opens the next turn.
func (g *HoldemGame) openNextTurnLocked() {
	next := g.nextActionable(g.CurrentIndex)
	if next < 0 {
		// Nobody left who can act; should have been caught by streetComplete.
		g.advanceStreet()
		return
	}
	g.CurrentIndex = next
	g.TurnID++
	g.fireUpdateGame()
	g.openTurnLocked()
}

// openTurnLocked starts the clock for the current player. A disconnected
// actor is resolved immediately, exactly as if the timer had expired.
func (g *HoldemGame) openTurnLocked() {
	if g.CurrentIndex < 0 {
		return
	}
	p := g.Players[g.CurrentIndex]
	if !p.Connected {
		log.Printf("Room %s: player %s is disconnected, applying default action.", g.RoomID, p.ID)
		g.applyDefaultActionLocked(p.ID)
		return
	}
	g.scheduleTurnTimerLocked()
}

// scheduleTurnTimerLocked arms the turn deadline for the current player.
func (g *HoldemGame) scheduleTurnTimerLocked() {
	if g.TurnDuration <= 0 {
		return
	}

	pid := g.Players[g.CurrentIndex].ID
	turnID := g.TurnID

	g.turnTimer.Cancel()
	_ = g.turnTimer.NewTask(g.TurnDuration, func(isCancelled bool) {
		if isCancelled {
			return
		}
		g.Mu.Lock()
		defer g.Mu.Unlock()

		// Drop stale callbacks: the turn may have been resolved already.
		if g.GameOver || !g.HandActive || g.TurnID != turnID ||
			g.CurrentIndex < 0 || g.Players[g.CurrentIndex].ID != pid {
			return
		}
		log.Printf("Room %s: turn %d timed out for player %s.", g.RoomID, turnID, pid)
		g.logAction(pid, "timeout", 0)
		g.applyDefaultActionLocked(pid)
	})
}

// applyDefaultActionLocked synthesizes the timeout action for a player:
// check when nothing is owed, otherwise fold. Not an error path; a normal,
// silent state transition.
func (g *HoldemGame) applyDefaultActionLocked(playerID string) {
	p := g.playerByID(playerID)
	if p == nil {
		return
	}
	a := Action{Type: ActionCheck}
	if g.maxBet()-p.Bet > 0 {
		a.Type = ActionFold
	}
	if err := g.applyActionLocked(playerID, a); err != nil {
		log.Printf("Room %s: default action for %s rejected: %v", g.RoomID, playerID, err)
	}
}

// HandleDisconnect marks a player disconnected. If it is their turn the
// default action fires immediately; their seat and chips stay.
func (g *HoldemGame) HandleDisconnect(playerID string) {
	g.Mu.Lock()
	defer g.Mu.Unlock()

	p := g.playerByID(playerID)
	if p == nil || !p.Connected {
		return
	}
	p.Connected = false
	log.Printf("Room %s: player %s disconnected.", g.RoomID, playerID)

	if g.HandActive && g.CurrentIndex >= 0 && g.Players[g.CurrentIndex].ID == playerID {
		g.applyDefaultActionLocked(playerID)
	}
}

// HandleReconnect marks a player connected again and re-sends their private
// view plus the current public view.
func (g *HoldemGame) HandleReconnect(playerID string) {
	g.Mu.Lock()
	defer g.Mu.Unlock()

	p := g.playerByID(playerID)
	if p == nil {
		return
	}
	p.Connected = true
	g.firePrivateHand(playerID)
	g.fireEventToPlayer(playerID, Event{Type: EventUpdateGame, RoomID: g.RoomID, State: g.publicViewLocked()})
}

// ResendHand re-delivers the private view on an explicit get_hand request.
func (g *HoldemGame) ResendHand(playerID string) {
	g.Mu.Lock()
	defer g.Mu.Unlock()
	g.firePrivateHand(playerID)
}

// RemovePlayer takes a player out of the game permanently. Mid-hand this is
// an immediate fold; their chips already in the pot stay there.
func (g *HoldemGame) RemovePlayer(playerID string) {
	g.Mu.Lock()
	defer g.Mu.Unlock()

	p := g.playerByID(playerID)
	if p == nil || p.SittingOut {
		return
	}
	p.SittingOut = true
	p.Connected = false
	log.Printf("Room %s: player %s left the table.", g.RoomID, playerID)

	if !g.HandActive || p.Folded {
		return
	}
	if g.CurrentIndex >= 0 && g.Players[g.CurrentIndex].ID == playerID {
		_ = g.applyActionLocked(playerID, Action{Type: ActionFold})
		return
	}
	p.Folded = true
	if g.countActive() <= 1 {
		g.settleFoldWin()
	} else if g.streetComplete() {
		g.advanceStreet()
	} else {
		g.fireUpdateGame()
	}
}

// Shutdown stops all timers and marks the game over. Used on room teardown.
func (g *HoldemGame) Shutdown() {
	g.Mu.Lock()
	defer g.Mu.Unlock()
	g.GameOver = true
	g.HandActive = false
	g.CurrentIndex = -1
	g.turnTimer.Cancel()
	g.scheduler.Cancel()
}

// --- seat iteration helpers ---

// nextIndex returns the first seat after from (wrapping) whose player matches
// pred, or -1 when none does.
func (g *HoldemGame) nextIndex(from int, pred func(*models.Player) bool) int {
	n := len(g.Players)
	for i := 1; i <= n; i++ {
		idx := (from + i) % n
		if pred(g.Players[idx]) {
			return idx
		}
	}
	return -1
}

// nextActionable finds the next seat that can act: not folded, chips behind.
func (g *HoldemGame) nextActionable(from int) int {
	return g.nextIndex(from, func(p *models.Player) bool {
		return !p.Folded && p.Stack > 0
	})
}

func (g *HoldemGame) playerByID(playerID string) *models.Player {
	for _, p := range g.Players {
		if p.ID == playerID {
			return p
		}
	}
	return nil
}

// activePlayers returns everyone still in the hand.
func (g *HoldemGame) activePlayers() []*models.Player {
	return funk.Filter(g.Players, func(p *models.Player) bool {
		return !p.Folded
	}).([]*models.Player)
}

func (g *HoldemGame) countActive() int {
	return len(g.activePlayers())
}

// countActionable counts active players who still have chips to bet with.
func (g *HoldemGame) countActionable() int {
	n := 0
	for _, p := range g.activePlayers() {
		if p.Stack > 0 {
			n++
		}
	}
	return n
}

// countFunded counts seated players who can be dealt into the next hand.
func (g *HoldemGame) countFunded() int {
	n := 0
	for _, p := range g.Players {
		if !p.SittingOut && p.Stack > 0 {
			n++
		}
	}
	return n
}

// --- event plumbing ---

// fireEvent broadcasts to every room subscriber. Assumes the lock is held.
func (g *HoldemGame) fireEvent(ev Event) {
	if g.BroadcastFn != nil {
		g.BroadcastFn(ev)
	}
}

// fireEventToPlayer sends to one player only. Assumes the lock is held.
func (g *HoldemGame) fireEventToPlayer(playerID string, ev Event) {
	if g.BroadcastToPlayerFn != nil {
		g.BroadcastToPlayerFn(playerID, ev)
	}
}

func (g *HoldemGame) fireUpdateGame() {
	g.fireEvent(Event{Type: EventUpdateGame, RoomID: g.RoomID, State: g.publicViewLocked()})
}

// firePrivateHand sends a player their own hole cards, never anyone else's.
func (g *HoldemGame) firePrivateHand(playerID string) {
	p := g.playerByID(playerID)
	if p == nil || len(p.HoleCards) == 0 {
		return
	}
	g.fireEventToPlayer(playerID, Event{Type: EventYourHand, RoomID: g.RoomID, Hand: p.HoleCards})
}

// publicViewLocked projects the internal state into the public view.
func (g *HoldemGame) publicViewLocked() *GameView {
	view := &GameView{
		PlayerOrder: make([]string, 0, len(g.Players)),
		Players:     make(map[string]int, len(g.Players)),
		Bets:        make(map[string]int, len(g.Players)),
		Folded:      make(map[string]bool, len(g.Players)),
		Community:   g.Community,
		Pot:         g.pot(),
		Street:      g.Street.String(),
		BigBlind:    g.BigBlind,
		MinRaise:    g.MinRaise,
	}
	for _, p := range g.Players {
		if p.SittingOut {
			continue
		}
		view.PlayerOrder = append(view.PlayerOrder, p.ID)
		view.Players[p.ID] = p.Stack
		view.Bets[p.ID] = p.Bet
		view.Folded[p.ID] = p.Folded
	}
	if g.HandActive && g.CurrentIndex >= 0 {
		actor := g.Players[g.CurrentIndex]
		ctx := g.actionContext(actor)
		view.CurrentPlayer = actor.ID
		view.ToCall = ctx.ToCall
		view.MinBet = ctx.MinimumOpen()
		view.QuickBets = quickBets(view.Pot, ctx)
	}
	return view
}

// PublicView returns the current public projection.
func (g *HoldemGame) PublicView() *GameView {
	g.Mu.Lock()
	defer g.Mu.Unlock()
	return g.publicViewLocked()
}

// logAction records an applied action on the history queue, best-effort.
func (g *HoldemGame) logAction(playerID, actionType string, amount int) {
	g.actionIndex++
	if !history.Enabled() {
		return
	}
	rec := history.HandAction{
		RoomID:      g.RoomID,
		HandID:      g.HandID,
		ActionIndex: g.actionIndex,
		PlayerID:    playerID,
		ActionType:  actionType,
		Amount:      amount,
		Street:      g.Street.String(),
		Timestamp:   time.Now().UnixMilli(),
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		if err := history.Publish(ctx, rec); err != nil {
			log.Printf("Room %s: failed to publish hand action: %v", rec.RoomID, err)
		}
	}()
}
