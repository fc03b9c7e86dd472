package engine

import (
	"github.com/lawnchairsociety/gridclash/internal/board"
	"github.com/lawnchairsociety/gridclash/internal/catalog"
	"github.com/lawnchairsociety/gridclash/internal/effects"
)

// roundStart runs the start-of-round hooks for every living hero on the main
// grid: periodic effects, round-start passives, then energy regeneration.
func (rc *roundContext) roundStart() {
	for _, t := range rc.tiles(false) {
		if !t.Alive() {
			continue
		}
		rc.periodic(t)
		if !t.Alive() {
			continue
		}
		rc.passives(t)
		rc.regenerate(t)
	}
}

// periodic applies damage and healing over time. Periodic damage ignores armor
// and never triggers reactions.
func (rc *roundContext) periodic(t *board.Tile) {
	for _, e := range append(effects.List(nil), t.Effects...) {
		if !t.Alive() {
			return
		}
		if e.PeriodicDamage > 0 {
			src := board.ResolveApplier(rc.state, e.Applier)
			rc.dealDamage(src, t, e.PeriodicDamage*e.Stacks, "", e.Name, false)
		}
		if e.PeriodicHeal > 0 {
			rc.heal(nil, t, e.PeriodicHeal*e.Stacks, "", e.Name)
		}
	}
}

func (rc *roundContext) passives(t *board.Tile) {
	for _, p := range t.Hero.Passives {
		switch p.Kind {
		case catalog.PassiveRegenerate:
			rc.heal(t, t, p.Amount, "", string(p.Kind))
		case catalog.PassiveAura:
			if t.Effects.Find(p.Effect) == nil {
				rc.applyEffect(t, t, p.Effect, 0, 1, "")
			}
		}
	}
}

// regenerate grants the hero's per-round energy plus any energize passive.
func (rc *roundContext) regenerate(t *board.Tile) {
	gain := t.Hero.Regen
	if p, ok := t.Hero.Passive(catalog.PassiveEnergize); ok {
		gain += p.Amount
	}
	if gain != 0 {
		rc.changeEnergy(nil, t, gain, "")
	}
}
