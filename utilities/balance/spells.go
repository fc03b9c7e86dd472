package balance

import (
	"context"
	"sort"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/lawnchairsociety/gridclash/internal/board"
	"github.com/lawnchairsociety/gridclash/internal/catalog"
	"github.com/lawnchairsociety/gridclash/internal/engine"
)

// SpellUsage aggregates what one spell did across battles.
type SpellUsage struct {
	SpellID string
	Role    string
	Casts   int
	Damage  int // Health removed by the spell's damage steps
	Healing int
	Kills   int // Deaths that immediately followed one of the spell's damage steps
	Effects int // Effect applications
}

// PerCast returns the average damage plus healing per cast.
func (s SpellUsage) PerCast() float64 {
	if s.Casts == 0 {
		return 0
	}
	return float64(s.Damage+s.Healing) / float64(s.Casts)
}

// Spell roles reported next to usage.
const (
	RoleSelf    = "self"
	RoleDamage  = "damage"
	RoleSupport = "support"
)

// SpellRole classifies a spell for the usage report.
func SpellRole(s *catalog.Spell) string {
	switch {
	case s.IsSelfOnly():
		return RoleSelf
	case s.HasDamageEffect():
		return RoleDamage
	}
	return RoleSupport
}

// assignRoles fills in roles for every spell the catalog knows.
func (r *SimulationResult) assignRoles(cat *catalog.Catalog) {
	for id, u := range r.Spells {
		if s, ok := cat.Spell(id); ok {
			u.Role = SpellRole(s)
		}
	}
}

// tallySpells folds a battle's step log into usage.
func tallySpells(usage map[string]*SpellUsage, steps []engine.Step) {
	get := func(id string) *SpellUsage {
		u := usage[id]
		if u == nil {
			u = &SpellUsage{SpellID: id}
			usage[id] = u
		}
		return u
	}

	lastDamage := ""
	for _, s := range steps {
		switch s.Type {
		case engine.StepCast:
			get(s.Spell).Casts++
		case engine.StepDamage:
			lastDamage = s.Spell
			if s.Spell != "" {
				get(s.Spell).Damage += s.Amount
			}
			continue
		case engine.StepHeal:
			if s.Spell != "" {
				get(s.Spell).Healing += s.Amount
			}
		case engine.StepEffectApply:
			if s.Spell != "" {
				get(s.Spell).Effects++
			}
		case engine.StepDeath:
			if lastDamage != "" {
				get(lastDamage).Kills++
			}
		}
		lastDamage = ""
	}
}

// SortedSpells returns spell usage by descending cast count, then ID.
func (r *SimulationResult) SortedSpells() []*SpellUsage {
	out := make([]*SpellUsage, 0, len(r.Spells))
	for _, s := range r.Spells {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Casts != out[j].Casts {
			return out[i].Casts > out[j].Casts
		}
		return out[i].SpellID < out[j].SpellID
	})
	return out
}

// DuelResult is the outcome of one hero against another, both solo in the
// front-row center.
type DuelResult struct {
	A, B   string
	Winner string // A's or B's hero ID, empty on a draw
	Rounds int
}

// RunDuels plays every ordered pair of heroes once. Engine results are
// deterministic, so one battle per pairing is enough; both orders are played
// because side A holds priority in round one.
func RunDuels(ctx context.Context, eng *engine.Engine, opts engine.Options, maxRounds, workers int) ([]DuelResult, error) {
	heroIDs := eng.Catalog().HeroIDs()
	if workers < 1 {
		workers = 1
	}

	var (
		mu  sync.Mutex
		out []DuelResult
	)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for _, a := range heroIDs {
		for _, b := range heroIDs {
			if gctx.Err() != nil {
				break
			}
			g.Go(func() error {
				state, err := eng.Setup(SoloLineup(a), SoloLineup(b))
				if err != nil {
					return err
				}
				res, err := eng.RunBattle(state, opts, maxRounds)
				if err != nil {
					return err
				}
				d := DuelResult{A: a, B: b, Rounds: res.Rounds}
				if res.Winner != nil && !res.Draw {
					if *res.Winner == board.SideA {
						d.Winner = a
					} else {
						d.Winner = b
					}
				}
				mu.Lock()
				out = append(out, d)
				mu.Unlock()
				return nil
			})
		}
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].A != out[j].A {
			return out[i].A < out[j].A
		}
		return out[i].B < out[j].B
	})
	return out, nil
}

// DuelScores counts duel wins per hero.
func DuelScores(duels []DuelResult) map[string]int {
	scores := make(map[string]int)
	for _, d := range duels {
		if _, ok := scores[d.A]; !ok {
			scores[d.A] = 0
		}
		if _, ok := scores[d.B]; !ok {
			scores[d.B] = 0
		}
		if d.Winner != "" {
			scores[d.Winner]++
		}
	}
	return scores
}
