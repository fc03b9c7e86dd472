package engine

import (
	"fmt"

	"github.com/lawnchairsociety/gridclash/internal/board"
	"github.com/lawnchairsociety/gridclash/internal/catalog"
)

// DefaultMaxRounds caps RunBattle when the caller passes no limit.
const DefaultMaxRounds = 50

// Placement seats one hero for a battle.
type Placement struct {
	Hero    string `json:"hero" yaml:"hero"`
	Index   int    `json:"index" yaml:"index"`
	Reserve bool   `json:"reserve,omitempty" yaml:"reserve,omitempty"`
}

// Lineup is one side's starting placements.
type Lineup []Placement

// Setup builds a round-one state from two lineups. Side A holds priority in
// the first round.
func (e *Engine) Setup(a, b Lineup) (*BattleState, error) {
	state := board.NewState()
	for side, lineup := range []Lineup{a, b} {
		brd := state.Boards[side]
		for _, p := range lineup {
			tpl, ok := e.catalog.Hero(p.Hero)
			if !ok {
				return nil, fmt.Errorf("side %s: %w %q", board.Side(side), catalog.ErrUnknownHero, p.Hero)
			}
			var err error
			if p.Reserve {
				_, err = brd.PlaceReserve(p.Index, tpl)
			} else {
				_, err = brd.Place(p.Index, tpl)
			}
			if err != nil {
				return nil, fmt.Errorf("side %s: place %s at %d: %w", board.Side(side), p.Hero, p.Index, err)
			}
		}
	}
	return state, nil
}

// BattleResult is the outcome of RunBattle.
type BattleResult struct {
	State    *BattleState `json:"state"`
	Steps    []Step       `json:"steps"`
	Rounds   int          `json:"rounds"`
	Winner   *board.Side  `json:"winner,omitempty"`
	Draw     bool         `json:"draw,omitempty"`
	TimedOut bool         `json:"timedOut,omitempty"`
}

// RunBattle plays rounds until one side is defeated or maxRounds is reached.
// Steps are renumbered so sequence numbers run across the whole battle. A
// battle that hits the round cap is a draw.
func (e *Engine) RunBattle(state *BattleState, opts Options, maxRounds int) (*BattleResult, error) {
	if maxRounds <= 0 {
		maxRounds = DefaultMaxRounds
	}
	res := &BattleResult{State: state}
	for res.Rounds < maxRounds {
		round, err := e.ExecuteRound(res.State, opts)
		if err != nil {
			return nil, fmt.Errorf("round %d: %w", res.Rounds+1, err)
		}
		res.Rounds++
		res.State = round.State
		for _, s := range round.Steps {
			s.Seq = len(res.Steps) + 1
			res.Steps = append(res.Steps, s)
		}
		if round.GameOver {
			res.Winner = round.Winner
			res.Draw = round.Draw
			return res, nil
		}
	}
	res.Draw = true
	res.TimedOut = true
	return res, nil
}
