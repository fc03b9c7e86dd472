// Package balance provides self-play simulation tools for hero and spell
// balance testing.
package balance

import (
	"context"
	"errors"
	"math/rand"
	"sort"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/lawnchairsociety/gridclash/internal/board"
	"github.com/lawnchairsociety/gridclash/internal/engine"
)

// BattleRecorder receives every finished battle, e.g. to store it.
type BattleRecorder func(ctx context.Context, a, b engine.Lineup, res *engine.BattleResult) error

// Simulator runs many random battles in parallel.
type Simulator struct {
	Engine    *engine.Engine
	Options   engine.Options
	Lineups   LineupConfig
	MaxRounds int
	Workers   int
	Seed      int64
	// Record, when set, is called for every battle from the worker goroutine.
	Record BattleRecorder
}

// HeroTally aggregates one hero's appearances across battles.
type HeroTally struct {
	HeroID   string
	Picks    int // Placements across all battles
	Wins     int // Placements on the winning side
	Survived int // Placements still alive at the end
}

// WinRate returns Wins/Picks as a percentage.
func (h HeroTally) WinRate() float64 {
	if h.Picks == 0 {
		return 0
	}
	return float64(h.Wins) / float64(h.Picks) * 100
}

// SimulationResult holds aggregated results from many battles.
type SimulationResult struct {
	Battles   int
	WinsA     int
	WinsB     int
	Draws     int
	TimedOut  int
	AvgRounds float64
	AvgSteps  float64
	MinRounds int
	MaxRounds int
	Heroes    map[string]*HeroTally
	Spells    map[string]*SpellUsage

	totalRounds int
	totalSteps  int
}

func newSimulationResult() *SimulationResult {
	return &SimulationResult{
		Heroes: make(map[string]*HeroTally),
		Spells: make(map[string]*SpellUsage),
	}
}

// add folds one battle in. Callers serialize access.
func (r *SimulationResult) add(res *engine.BattleResult) {
	r.Battles++
	r.totalRounds += res.Rounds
	r.totalSteps += len(res.Steps)
	if r.MinRounds == 0 || res.Rounds < r.MinRounds {
		r.MinRounds = res.Rounds
	}
	if res.Rounds > r.MaxRounds {
		r.MaxRounds = res.Rounds
	}

	switch {
	case res.TimedOut:
		r.TimedOut++
		r.Draws++
	case res.Draw || res.Winner == nil:
		r.Draws++
	case *res.Winner == board.SideA:
		r.WinsA++
	default:
		r.WinsB++
	}

	for _, side := range []board.Side{board.SideA, board.SideB} {
		brd := res.State.Board(side)
		won := res.Winner != nil && !res.Draw && *res.Winner == side
		for _, list := range [][]*board.Tile{brd.Main, brd.Reserve} {
			for _, t := range list {
				if t.Hero == nil {
					continue
				}
				tally := r.Heroes[t.Hero.HeroID]
				if tally == nil {
					tally = &HeroTally{HeroID: t.Hero.HeroID}
					r.Heroes[t.Hero.HeroID] = tally
				}
				tally.Picks++
				if won {
					tally.Wins++
				}
				if t.Alive() {
					tally.Survived++
				}
			}
		}
	}

	tallySpells(r.Spells, res.Steps)
}

func (r *SimulationResult) finish() {
	if r.Battles > 0 {
		r.AvgRounds = float64(r.totalRounds) / float64(r.Battles)
		r.AvgSteps = float64(r.totalSteps) / float64(r.Battles)
	}
}

// SortedHeroes returns hero tallies by descending win rate, then ID.
func (r *SimulationResult) SortedHeroes() []*HeroTally {
	out := make([]*HeroTally, 0, len(r.Heroes))
	for _, h := range r.Heroes {
		out = append(out, h)
	}
	sort.Slice(out, func(i, j int) bool {
		if wi, wj := out[i].WinRate(), out[j].WinRate(); wi != wj {
			return wi > wj
		}
		return out[i].HeroID < out[j].HeroID
	})
	return out
}

// Run plays n battles. Battle i draws its lineups from a generator seeded
// with Seed+i, so results do not depend on the worker count.
func (s *Simulator) Run(ctx context.Context, n int) (*SimulationResult, error) {
	if s.Engine == nil {
		return nil, errors.New("simulator needs an engine")
	}
	heroIDs := s.Engine.Catalog().HeroIDs()
	if len(heroIDs) == 0 {
		return nil, errors.New("catalog has no heroes")
	}
	workers := s.Workers
	if workers < 1 {
		workers = 1
	}

	result := newSimulationResult()
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i := 0; i < n; i++ {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			rng := rand.New(rand.NewSource(s.Seed + int64(i)))
			a := RandomLineup(rng, heroIDs, s.Lineups)
			b := RandomLineup(rng, heroIDs, s.Lineups)

			state, err := s.Engine.Setup(a, b)
			if err != nil {
				return err
			}
			res, err := s.Engine.RunBattle(state, s.Options, s.MaxRounds)
			if err != nil {
				return err
			}
			if s.Record != nil {
				if err := s.Record(gctx, a, b, res); err != nil {
					return err
				}
			}

			mu.Lock()
			result.add(res)
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	result.assignRoles(s.Engine.Catalog())
	result.finish()
	return result, nil
}
