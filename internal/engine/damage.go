package engine

import (
	"github.com/lawnchairsociety/gridclash/internal/board"
	"github.com/lawnchairsociety/gridclash/internal/catalog"
	"github.com/lawnchairsociety/gridclash/internal/effects"
)

// damageFor computes one hit: base plus spell power share plus the attacker's
// damage bonus, minus armor unless the hit pierces, plus the target's damage
// taken modifier. A positive hit always deals at least 1.
func (rc *roundContext) damageFor(src, dst *board.Tile, a catalog.Action) int {
	raw := scaled(src, a)
	if raw <= 0 {
		return 0
	}
	raw += src.Stat(effects.StatDamageDealt)
	if !a.Pierce {
		raw -= dst.Stat(effects.StatArmor)
	}
	raw += dst.Stat(effects.StatDamageTaken)
	if raw < 1 {
		raw = 1
	}
	return raw
}

// dealDamage subtracts amount from dst and settles the consequences on the
// spot: lethal damage is resolved before the next target is touched, a reap
// mark is re-checked, and retaliation is queued when triggers is set. src may
// be nil for periodic damage.
func (rc *roundContext) dealDamage(src, dst *board.Tile, amount int, spellID, effect string, triggers bool) int {
	if !dst.Alive() || amount <= 0 {
		return 0
	}
	dst.Health -= amount
	rc.emit(Step{
		Type:    StepDamage,
		Actor:   actor(src),
		Targets: []board.Token{dst.Token()},
		Spell:   spellID,
		Effect:  effect,
		Amount:  amount,
		Value:   dst.Health,
	})

	if dst.Health <= 0 {
		rc.lethal(dst, src, effect)
	}
	if !dst.Alive() {
		return amount
	}
	rc.checkReap(dst)

	if triggers && src != nil && src.Side != dst.Side && dst.Alive() {
		caps := dst.Capabilities()
		if caps.RetaliateDamage > 0 {
			name := ""
			if e := dst.Effects.FirstWithFlag(effects.FlagRetaliate); e != nil {
				name = e.Name
			}
			queued := rc.reactions.push(reaction{
				kind:   reactionRetaliate,
				source: dst,
				victim: src,
				amount: caps.RetaliateDamage,
				effect: name,
			})
			if queued {
				rc.consume(dst, effects.FlagRetaliate)
			}
		}
	}
	return amount
}

// heal restores up to the missing health. Healing is blocked by
// preventHealing.
func (rc *roundContext) heal(src, dst *board.Tile, amount int, spellID, effect string) int {
	if !dst.Alive() || amount <= 0 || dst.Capabilities().Has(effects.FlagPreventHealing) {
		return 0
	}
	if missing := dst.MissingHealth(); amount > missing {
		amount = missing
	}
	if amount <= 0 {
		return 0
	}
	dst.Health += amount
	rc.emit(Step{
		Type:    StepHeal,
		Actor:   actor(src),
		Targets: []board.Token{dst.Token()},
		Spell:   spellID,
		Effect:  effect,
		Amount:  amount,
		Value:   dst.Health,
	})
	rc.checkReap(dst)
	return amount
}

// lethal handles a tile at or below zero health: a survive-lethal passive or
// effect leaves it at 1, otherwise it dies.
func (rc *roundContext) lethal(t, killer *board.Tile, effect string) {
	if p, ok := t.Hero.Passive(catalog.PassiveSurviveLethal); ok {
		t.Hero.Consume(p.Kind)
		rc.survive(t, string(p.Kind))
		return
	}
	if e := t.Effects.FirstWithFlag(effects.FlagSurviveLethal); e != nil {
		rc.survive(t, e.Name)
		rc.consume(t, effects.FlagSurviveLethal)
		return
	}
	rc.kill(t, killer, effect)
}

// consume removes t's single-use effects whose flag just fired.
func (rc *roundContext) consume(t *board.Tile, flag effects.Flags) {
	for _, e := range t.Effects.Consume(flag) {
		rc.emit(Step{Type: StepEffectRemove, Targets: []board.Token{t.Token()}, Effect: e.Name, Outcome: OutcomeConsumed})
	}
}

func (rc *roundContext) survive(t *board.Tile, source string) {
	t.Health = 1
	rc.emit(Step{Type: StepSurvive, Targets: []board.Token{t.Token()}, Effect: source, Value: t.Health})
	rc.checkReap(t)
}

// kill marks the tile dead. The hero stays on the tile as a corpse and its
// effects are dropped.
func (rc *roundContext) kill(t, killer *board.Tile, effect string) {
	if t.Dead {
		return
	}
	t.Dead = true
	t.Health = 0
	t.Effects.Clear()
	rc.emit(Step{Type: StepDeath, Actor: actor(killer), Targets: []board.Token{t.Token()}, Effect: effect})
}

// checkReap executes a tile whose health is at or below an active reap
// threshold. Reaping is not damage, so survive-lethal does not apply.
func (rc *roundContext) checkReap(t *board.Tile) {
	if !t.Alive() {
		return
	}
	caps := t.Capabilities()
	if caps.ReapThreshold < 0 || t.Health > caps.ReapThreshold {
		return
	}
	e := t.Effects.FirstWithFlag(effects.FlagReap)
	reaper := board.ResolveApplier(rc.state, e.Applier)
	rc.kill(t, reaper, e.Name)
}
