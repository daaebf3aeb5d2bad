package game

import (
	"log"
	"sort"

	"github.com/tablestakes/holdem/internal/handrank"
	"github.com/tablestakes/holdem/internal/models"
)

// settleFoldWin ends the hand when everyone else has folded. The last player
// standing takes the whole pot without a showdown reveal.
// Assumes the lock is held.
func (g *HoldemGame) settleFoldWin() {
	g.collectBets()

	active := g.activePlayers()
	if len(active) != 1 {
		log.Printf("Room %s: fold settlement with %d active players.", g.RoomID, len(active))
		return
	}
	winner := active[0]
	winner.Stack += g.collected
	log.Printf("Room %s: hand %s won uncontested by %s (%d chips).", g.RoomID, g.HandID, winner.ID, g.collected)
	g.logAction(winner.ID, "win_uncontested", g.collected)
	g.collected = 0

	g.fireUpdateGame()
	g.finishHand()
}

// settleShowdown ranks the remaining hands, splits each pot layer among its
// winners and reveals the contenders' hole cards.
// Assumes the lock is held; bets are already collected.
func (g *HoldemGame) settleShowdown() {
	active := g.activePlayers()

	results := make(map[string]handrank.Result, len(active))
	hands := make(map[string][]models.Card, len(active))
	for _, p := range active {
		results[p.ID] = handrank.Evaluate(p.HoleCards, g.Community)
		hands[p.ID] = p.HoleCards
	}

	payouts := g.splitPots(active, results)
	for _, p := range g.Players {
		if won, ok := payouts[p.ID]; ok {
			p.Stack += won
			g.logAction(p.ID, "win_showdown", won)
		}
	}
	g.collected = 0

	log.Printf("Room %s: showdown for hand %s, winners %v.", g.RoomID, g.HandID, payouts)
	g.fireEvent(Event{Type: EventShowdown, RoomID: g.RoomID, Winners: payouts, Hands: hands})
	g.fireUpdateGame()
	g.finishHand()
}

// splitPots layers the pot by contribution level so short all-ins win no more
// than they covered. Ties split evenly; remainder chips go to the earliest
// seat in player order.
func (g *HoldemGame) splitPots(active []*models.Player, results map[string]handrank.Result) map[string]int {
	levels := contributionLevels(g.contributions)
	payouts := make(map[string]int)

	prev := 0
	for _, lvl := range levels {
		layer := 0
		for _, p := range g.Players {
			c := g.contributions[p.ID]
			if c > prev {
				if c > lvl {
					c = lvl
				}
				layer += c - prev
			}
		}
		if layer == 0 {
			prev = lvl
			continue
		}

		eligible := make([]*models.Player, 0, len(active))
		for _, p := range active {
			if g.contributions[p.ID] >= lvl {
				eligible = append(eligible, p)
			}
		}
		if len(eligible) == 0 {
			// Every contributor at this level folded; the layer falls
			// through to the remaining contenders.
			eligible = active
		}

		winners := bestOf(eligible, results)
		share := layer / len(winners)
		rem := layer % len(winners)
		for _, w := range winners {
			payouts[w.ID] += share
			if rem > 0 {
				payouts[w.ID]++
				rem--
			}
		}
		prev = lvl
	}
	return payouts
}

// bestOf returns the strongest hands among the given players, in seat order.
func bestOf(players []*models.Player, results map[string]handrank.Result) []*models.Player {
	var winners []*models.Player
	for _, p := range players {
		if len(winners) == 0 {
			winners = []*models.Player{p}
			continue
		}
		switch handrank.Compare(results[p.ID], results[winners[0].ID]) {
		case 1:
			winners = []*models.Player{p}
		case 0:
			winners = append(winners, p)
		}
	}
	return winners
}

// contributionLevels returns the distinct positive contribution totals,
// ascending. Each is the cap of one pot layer.
func contributionLevels(contributions map[string]int) []int {
	seen := make(map[int]bool)
	for _, c := range contributions {
		if c > 0 {
			seen[c] = true
		}
	}
	levels := make([]int, 0, len(seen))
	for c := range seen {
		levels = append(levels, c)
	}
	sort.Ints(levels)
	return levels
}

// finishHand closes the betting state and schedules either the next hand or
// the end of the game after the inter-hand pause.
// Assumes the lock is held.
func (g *HoldemGame) finishHand() {
	g.HandActive = false
	g.CurrentIndex = -1
	g.turnTimer.Cancel()

	g.scheduler.Cancel()
	_ = g.scheduler.NewTask(g.HandGap, func(isCancelled bool) {
		if isCancelled {
			return
		}
		g.Mu.Lock()
		defer g.Mu.Unlock()
		if g.GameOver || g.HandActive {
			return
		}
		if g.countFunded() >= 2 {
			if err := g.startHandLocked(); err != nil {
				log.Printf("Room %s: failed to start next hand: %v", g.RoomID, err)
				g.endGameLocked()
			}
			return
		}
		g.endGameLocked()
	})
}

// endGameLocked broadcasts game_over and notifies the room layer. The room
// callback runs on its own goroutine so it can take the room lock freely.
func (g *HoldemGame) endGameLocked() {
	if g.GameOver {
		return
	}
	g.GameOver = true
	g.HandActive = false
	g.CurrentIndex = -1
	g.turnTimer.Cancel()
	log.Printf("Room %s: game %s over.", g.RoomID, g.ID)

	g.fireEvent(Event{Type: EventGameOver, RoomID: g.RoomID})
	if g.OnGameEnd != nil {
		go g.OnGameEnd()
	}
}
