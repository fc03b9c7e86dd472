package engine

import (
	"github.com/lawnchairsociety/gridclash/internal/board"
	"github.com/lawnchairsociety/gridclash/internal/catalog"
	"github.com/lawnchairsociety/gridclash/internal/effects"
	"github.com/lawnchairsociety/gridclash/internal/logger"
	"github.com/lawnchairsociety/gridclash/internal/targeting"
)

// cast runs one scheduled cast. Castability is checked again because earlier
// casts this round may have drained, silenced or killed the caster. Cost is
// paid before targets are resolved so energy-based selection sees the
// post-spend value.
func (rc *roundContext) cast(c caster) bool {
	src := rc.state.At(c.token)
	if !src.Alive() || src.Capabilities().Has(effects.FlagPreventCasting) {
		return false
	}
	spell := c.spell
	slot, ok := src.Hero.SpellFor(c.row)
	if !ok || slot.SpellID != spell.ID || src.Energy < spell.Cost {
		return false
	}

	src.Energy -= spell.Cost
	src.Hero.UseCast(c.row)
	rc.opts.pause(rc.opts.CastDelay)

	ctx := targeting.NewContext(rc.state, c.token, targeting.Options{
		BypassTriggers: spell.BypassTriggers,
		ForceEnemySide: spell.ForceSide == catalog.SideEnemy,
		ForceAllySide:  spell.ForceSide == catalog.SideAlly,
	})
	targets := targeting.ResolveSpell(ctx, spell)
	rc.emit(Step{
		Type:    StepCast,
		Actor:   actor(src),
		Spell:   spell.ID,
		Targets: targeting.Tokens(targets),
		Amount:  spell.Cost,
		Value:   src.Energy,
	})

	rc.reactions.reset()
	for _, target := range targets {
		dst := rc.state.At(target.Token)
		for _, a := range spell.ActionsFor(target.Descriptor) {
			rc.apply(src, dst, spell, a)
		}
	}
	rc.drainReactions()
	rc.opts.pause(rc.opts.PostEffectDelay)
	return true
}

// apply performs one action against one target. Every action except revive
// and consumeCorpse needs a living target, checked per action so a target
// killed earlier in the same cast is skipped.
func (rc *roundContext) apply(src, dst *board.Tile, spell *catalog.Spell, a catalog.Action) {
	switch a.Kind {
	case catalog.ActionRevive:
		rc.revive(src, dst, spell, a.Amount)
		return
	case catalog.ActionConsumeCorpse:
		rc.consumeCorpse(src, dst, spell, a.Amount)
		return
	}
	if !dst.Alive() {
		return
	}

	switch a.Kind {
	case catalog.ActionDamage:
		for i := 0; i < a.HitCount() && dst.Alive(); i++ {
			rc.dealDamage(src, dst, rc.damageFor(src, dst, a), spell.ID, "", true)
		}
	case catalog.ActionHeal:
		rc.heal(src, dst, scaled(src, a), spell.ID, "")
	case catalog.ActionApplyEffect:
		rc.applyEffect(src, dst, a.Effect, a.Duration, a.Stacks, spell.ID)
	case catalog.ActionEnergy:
		rc.changeEnergy(src, dst, a.Amount, spell.ID)
	case catalog.ActionStat:
		rc.changeStat(src, dst, a.Stat, a.Amount, spell.ID)
	case catalog.ActionCleanse:
		rc.cleanse(src, dst, a.Cleanse, spell.ID)
	default:
		logger.Warning("Unknown spell action", "spell", spell.ID, "action", string(a.Kind))
	}
}

// scaled is an action's amount plus its share of the caster's spell power.
func scaled(src *board.Tile, a catalog.Action) int {
	return a.Amount + src.Stat(effects.StatSpellPower)*a.Power/100
}

// applyEffect attaches a catalog effect to dst. A reap effect is checked the
// moment it lands.
func (rc *roundContext) applyEffect(src, dst *board.Tile, name string, duration, stacks int, spellID string) {
	spec, ok := rc.catalog.Effect(name)
	if !ok {
		logger.Warning("Spell applies unknown effect", "spell", spellID, "effect", name)
		return
	}
	e, outcome := dst.Effects.Add(effects.New(spec, duration, stacks, board.ApplierOf(src)))
	rc.emit(Step{
		Type:    StepEffectApply,
		Actor:   actor(src),
		Targets: []board.Token{dst.Token()},
		Spell:   spellID,
		Effect:  name,
		Amount:  e.Stacks,
		Value:   e.Remaining,
		Outcome: string(outcome),
	})
	if e.Flags.Has(effects.FlagReap) {
		rc.checkReap(dst)
	}
}

func (rc *roundContext) changeEnergy(src, dst *board.Tile, amount int, spellID string) {
	before := dst.Energy
	dst.Energy += amount
	if dst.Energy < 0 {
		dst.Energy = 0
	}
	if delta := dst.Energy - before; delta != 0 {
		rc.emit(Step{Type: StepEnergy, Actor: actor(src), Targets: []board.Token{dst.Token()}, Spell: spellID, Amount: delta, Value: dst.Energy})
	}
}

// changeStat permanently shifts a current stat.
func (rc *roundContext) changeStat(src, dst *board.Tile, stat effects.Stat, amount int, spellID string) {
	var field *int
	switch stat {
	case effects.StatEnergy:
		rc.changeEnergy(src, dst, amount, spellID)
		return
	case effects.StatSpeed:
		field = &dst.Speed
	case effects.StatArmor:
		field = &dst.Armor
	case effects.StatSpellPower:
		field = &dst.SpellPower
	default:
		logger.Warning("Spell changes unsupported stat", "spell", spellID, "stat", string(stat))
		return
	}
	*field += amount
	if *field < 0 {
		*field = 0
	}
	rc.emit(Step{Type: StepStat, Actor: actor(src), Targets: []board.Token{dst.Token()}, Spell: spellID, Stat: stat, Amount: amount, Value: *field})
}

// cleanse strips effects of a kind. Removing a backlash effect placed by the
// other side queues a strike back at the cleanser.
func (rc *roundContext) cleanse(src, dst *board.Tile, kind effects.Kind, spellID string) {
	removed := dst.Effects.RemoveWhere(func(e *effects.Effect) bool {
		return kind == "" || e.Kind == kind
	})
	for _, e := range removed {
		rc.emit(Step{Type: StepEffectRemove, Actor: actor(src), Targets: []board.Token{dst.Token()}, Spell: spellID, Effect: e.Name})
		if !e.Flags.Has(effects.FlagBacklash) || e.Magnitude <= 0 {
			continue
		}
		applier := board.ResolveApplier(rc.state, e.Applier)
		if applier == nil || applier.Side == src.Side {
			continue
		}
		rc.reactions.push(reaction{
			kind:   reactionBacklash,
			source: applier,
			victim: src,
			amount: e.Magnitude * e.Stacks,
			effect: e.Name,
		})
	}
}

func (rc *roundContext) revive(src, dst *board.Tile, spell *catalog.Spell, health int) {
	if !dst.Corpse() {
		return
	}
	if health < 1 {
		health = 1
	}
	if health > dst.Hero.MaxHealth {
		health = dst.Hero.MaxHealth
	}
	dst.Dead = false
	dst.Health = health
	dst.Effects = nil
	rc.emit(Step{Type: StepRevive, Actor: actor(src), Targets: []board.Token{dst.Token()}, Spell: spell.ID, Amount: health, Value: dst.Health})
}

// consumeCorpse clears a corpse from the board and feeds the caster.
func (rc *roundContext) consumeCorpse(src, dst *board.Tile, spell *catalog.Spell, heal int) {
	if !dst.Corpse() {
		return
	}
	dst.Vacate()
	rc.emit(Step{Type: StepCorpseConsumed, Actor: actor(src), Targets: []board.Token{dst.Token()}, Spell: spell.ID})
	if heal > 0 && src.Alive() {
		rc.heal(src, src, heal, spell.ID, "")
	}
}
