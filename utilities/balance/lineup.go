package balance

import (
	"math/rand"

	"github.com/lawnchairsociety/gridclash/internal/board"
	"github.com/lawnchairsociety/gridclash/internal/engine"
)

// LineupConfig controls random lineup generation.
type LineupConfig struct {
	MinHeroes  int     // Heroes on the main grid, at least 1
	MaxHeroes  int     // At most board.MaxActive
	ReserveOdd float64 // Chance each reserve slot is filled (0.0-1.0)
}

// DefaultLineupConfig returns a configuration producing 3 to 5 heroes with an
// occasional reserve.
func DefaultLineupConfig() LineupConfig {
	return LineupConfig{
		MinHeroes:  3,
		MaxHeroes:  board.MaxActive,
		ReserveOdd: 0.25,
	}
}

func (c LineupConfig) normalized() LineupConfig {
	if c.MinHeroes < 1 {
		c.MinHeroes = 1
	}
	if c.MaxHeroes < 1 || c.MaxHeroes > board.MaxActive {
		c.MaxHeroes = board.MaxActive
	}
	if c.MinHeroes > c.MaxHeroes {
		c.MinHeroes = c.MaxHeroes
	}
	return c
}

// RandomLineup draws heroes from heroIDs (with repeats) onto distinct main-grid
// tiles, then optionally fills reserve slots.
func RandomLineup(rng *rand.Rand, heroIDs []string, cfg LineupConfig) engine.Lineup {
	if len(heroIDs) == 0 {
		return nil
	}
	cfg = cfg.normalized()

	count := cfg.MinHeroes
	if cfg.MaxHeroes > cfg.MinHeroes {
		count += rng.Intn(cfg.MaxHeroes - cfg.MinHeroes + 1)
	}

	tiles := rng.Perm(board.MainSize)[:count]
	lineup := make(engine.Lineup, 0, count+board.ReserveSize)
	for _, idx := range tiles {
		lineup = append(lineup, engine.Placement{
			Hero:  heroIDs[rng.Intn(len(heroIDs))],
			Index: idx,
		})
	}
	for slot := 0; slot < board.ReserveSize; slot++ {
		if rng.Float64() < cfg.ReserveOdd {
			lineup = append(lineup, engine.Placement{
				Hero:    heroIDs[rng.Intn(len(heroIDs))],
				Index:   slot,
				Reserve: true,
			})
		}
	}
	return lineup
}

// SoloLineup puts a single hero in the front-row center tile.
func SoloLineup(heroID string) engine.Lineup {
	return engine.Lineup{{Hero: heroID, Index: 1}}
}
