// Package engine resolves battle rounds. A round takes a battle state, schedules
// every hero able to cast, resolves each cast in turn and returns the new
// state together with an ordered step log that replays the round exactly.
package engine

import (
	"errors"
	"fmt"

	"github.com/lawnchairsociety/gridclash/internal/board"
	"github.com/lawnchairsociety/gridclash/internal/catalog"
	"github.com/lawnchairsociety/gridclash/internal/logger"
)

// ErrInvalidState is returned when the battle state handed to the engine is
// malformed. Content problems inside a valid state never produce errors.
var ErrInvalidState = errors.New("invalid battle state")

// BattleState is the state a round runs on.
type BattleState = board.State

// RoundResult is the outcome of one round.
type RoundResult struct {
	State    *BattleState `json:"state"`
	Steps    []Step       `json:"steps"`
	Priority board.Side   `json:"priority"`
	Casts    int          `json:"casts"`
	GameOver bool         `json:"gameOver"`
	Winner   *board.Side  `json:"winner,omitempty"`
	Draw     bool         `json:"draw,omitempty"`
}

// Engine resolves rounds against a catalog. It holds no per-battle state and
// is safe for concurrent use.
type Engine struct {
	catalog *catalog.Catalog
}

// New returns an engine backed by cat.
func New(cat *catalog.Catalog) *Engine {
	return &Engine{catalog: cat}
}

// Catalog returns the engine's catalog.
func (e *Engine) Catalog() *catalog.Catalog {
	return e.catalog
}

// ExecuteRound resolves one round. The input state is not modified; the
// result carries a new state.
func (e *Engine) ExecuteRound(state *BattleState, opts Options) (*RoundResult, error) {
	if err := e.validate(state); err != nil {
		return nil, err
	}
	rc := newRoundContext(e.catalog, state.Clone(), opts)
	rc.run()
	return rc.result(), nil
}

func (e *Engine) validate(state *BattleState) error {
	if e.catalog == nil {
		return fmt.Errorf("%w: no catalog", ErrInvalidState)
	}
	if state == nil {
		return fmt.Errorf("%w: nil state", ErrInvalidState)
	}
	if err := state.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidState, err)
	}
	for _, b := range state.Boards {
		for _, list := range [][]*board.Tile{b.Main, b.Reserve} {
			for _, t := range list {
				if t.Hero == nil {
					continue
				}
				if _, ok := e.catalog.Hero(t.Hero.HeroID); !ok {
					return fmt.Errorf("%w: tile %s: %w %q", ErrInvalidState, t.Token(), catalog.ErrUnknownHero, t.Hero.HeroID)
				}
			}
		}
	}
	return nil
}

// roundContext is the mutable state of one ExecuteRound call.
type roundContext struct {
	catalog   *catalog.Catalog
	state     *board.State
	opts      Options
	steps     []Step
	reactions reactionQueue
	casts     int
	over      bool
	winner    *board.Side
	draw      bool
}

func newRoundContext(cat *catalog.Catalog, state *board.State, opts Options) *roundContext {
	return &roundContext{
		catalog:   cat,
		state:     state,
		opts:      opts,
		reactions: newReactionQueue(maxReactionsPerCast),
	}
}

func (rc *roundContext) run() {
	rc.emit(Step{Type: StepRoundStart, Priority: sidePtr(rc.state.Priority)})
	if rc.checkGameEnd() {
		return
	}

	rc.roundStart()
	rc.sweep()
	if rc.checkGameEnd() {
		return
	}

	for _, c := range rc.schedule() {
		if rc.cast(c) {
			rc.casts++
		}
		rc.sweep()
		if rc.checkGameEnd() {
			return
		}
	}
	rc.complete()
}

func (rc *roundContext) result() *RoundResult {
	return &RoundResult{
		State:    rc.state,
		Steps:    rc.steps,
		Priority: rc.state.Priority,
		Casts:    rc.casts,
		GameOver: rc.over,
		Winner:   rc.winner,
		Draw:     rc.draw,
	}
}

func (rc *roundContext) emit(s Step) {
	s.Seq = len(rc.steps) + 1
	s.Round = rc.state.Round
	rc.steps = append(rc.steps, s)
	if !rc.opts.Quiet {
		logger.Debug("Round step", "round", s.Round, "seq", s.Seq, "type", string(s.Type),
			"spell", s.Spell, "effect", s.Effect, "amount", s.Amount, "value", s.Value)
	}
	if rc.opts.OnStep != nil {
		rc.opts.OnStep(s)
	}
}

// tiles returns living-or-dead tiles starting with the priority side, each in
// book order. Reserve tiles follow the main grid when includeReserve is set.
func (rc *roundContext) tiles(includeReserve bool) []*board.Tile {
	var out []*board.Tile
	for _, side := range []board.Side{rc.state.Priority, rc.state.Priority.Opponent()} {
		b := rc.state.Board(side)
		for _, i := range board.BookOrder() {
			out = append(out, b.Main[i])
		}
		if includeReserve {
			out = append(out, b.Reserve...)
		}
	}
	return out
}

// sweep resolves every tile left at or below zero health.
func (rc *roundContext) sweep() {
	for _, t := range rc.tiles(true) {
		if t.Alive() && t.Health <= 0 {
			rc.lethal(t, nil, "")
		}
	}
}

// checkGameEnd emits gameEnd once a side has no living hero left.
func (rc *roundContext) checkGameEnd() bool {
	if rc.over {
		return true
	}
	winner, ok, draw := rc.state.Winner()
	if !ok {
		return false
	}
	rc.over = true
	rc.draw = draw
	step := Step{Type: StepGameEnd, Draw: draw}
	if !draw {
		rc.winner = sidePtr(winner)
		step.Winner = rc.winner
	}
	rc.emit(step)
	if !rc.opts.Quiet {
		logger.Info("Battle finished", "round", rc.state.Round, "winner", winner.String(), "draw", draw)
	}
	return true
}

// complete ticks effect durations on the main grid and hands over to the next
// round. Benched heroes keep their effects paused.
func (rc *roundContext) complete() {
	for _, t := range rc.tiles(false) {
		if !t.Alive() {
			continue
		}
		for _, e := range t.Effects.Tick() {
			rc.emit(Step{Type: StepEffectExpire, Targets: []board.Token{t.Token()}, Effect: e.Name})
		}
	}
	next := rc.opts.priorityPolicy().Next(rc.state)
	rc.emit(Step{Type: StepRoundComplete, Priority: sidePtr(next), Amount: rc.casts})
	rc.state.Priority = next
	rc.state.Round++
}
