package targeting

import (
	"github.com/lawnchairsociety/gridclash/internal/board"
	"github.com/lawnchairsociety/gridclash/internal/catalog"
	"github.com/lawnchairsociety/gridclash/internal/effects"
	"github.com/lawnchairsociety/gridclash/internal/logger"
)

// shape summarizes how a descriptor list hits the enemy board.
type shape struct {
	enemy  []int // descriptor indexes that pick enemies
	multi  bool  // the spell can hit more than one enemy
	single bool  // exactly one enemy pick of exactly one tile
}

func (ctx *ResolutionContext) classify(descriptors []catalog.TargetDescriptor) shape {
	var s shape
	for i, d := range descriptors {
		if !Known(d.Type) || d.IsSelf() || d.IsCorpseSeeking() || !ctx.enemy(d) {
			continue
		}
		s.enemy = append(s.enemy, i)
		if d.IsMultiTarget() {
			s.multi = true
		}
	}
	if len(s.enemy) > 1 {
		s.multi = true
	}
	s.single = len(s.enemy) == 1 && !s.multi
	return s
}

// Resolve returns the tokens a cast hits, in application order. Overrides
// apply in this order: multi-target redirect, taunt, forced lowest armor,
// per-descriptor selection, single-target protection, then the loyalty
// redirect. A descriptor with no candidates contributes nothing.
func Resolve(ctx *ResolutionContext, descriptors []catalog.TargetDescriptor) []Target {
	if ctx == nil || ctx.State == nil {
		return nil
	}
	sh := ctx.classify(descriptors)

	var taunt *board.Tile
	if sh.single {
		taunt = ctx.firstWithFlag(ctx.State.Board(ctx.Owner.Opponent()), effects.FlagTaunt)
	}

	var out []Target
	for i, d := range descriptors {
		if taunt != nil && i == sh.enemy[0] {
			out = append(out, Target{Token: taunt.Token(), Descriptor: i})
			continue
		}
		out = append(out, ctx.resolveOne(ctx.override(d), i, sh)...)
	}

	if sh.multi {
		out = ctx.collapseOnRedirect(out)
	}
	if sh.single && taunt == nil {
		out = ctx.loyaltyRedirect(out)
	}
	return out
}

// ResolveSpell resolves a spell's descriptors. Every override layer acts on
// enemy picks only, so a spell that targets nothing but its caster goes
// straight to the caster's tile.
func ResolveSpell(ctx *ResolutionContext, spell *catalog.Spell) []Target {
	if ctx == nil || ctx.State == nil || spell == nil {
		return nil
	}
	if !spell.IsSelfOnly() {
		return Resolve(ctx, spell.Targets)
	}
	caster := ctx.CasterTile()
	if caster == nil || !caster.Alive() {
		return nil
	}
	var out []Target
	for i, d := range spell.Targets {
		if d.ExcludeSelf {
			continue
		}
		out = append(out, Target{Token: caster.Token(), Descriptor: i})
	}
	return out
}

// override substitutes lowestArmor for single-target picks when the caster is
// compelled to.
func (ctx *ResolutionContext) override(d catalog.TargetDescriptor) catalog.TargetDescriptor {
	if !ctx.casterCaps.Has(effects.FlagForceSingleTargetLowestArmor) {
		return d
	}
	if d.IsSelf() || d.IsMultiTarget() || d.IsCorpseSeeking() || ownBoard[d.Type] {
		return d
	}
	d.Type = catalog.TargetLowestArmor
	return d
}

func (ctx *ResolutionContext) resolveOne(d catalog.TargetDescriptor, idx int, sh shape) []Target {
	sel, ok := selectors[d.Type]
	if !ok {
		logger.Warning("Unknown target descriptor", "type", string(d.Type), "descriptor", idx)
		return nil
	}
	b := ctx.State.Board(ctx.sideOf(d))
	s := sel(ctx, d, b)

	protect := !s.region && !sh.multi && !ctx.Options.BypassTriggers && b.Side != ctx.Owner

	limit := d.Limit()
	if s.region {
		limit = d.Max
	}
	var out []Target
	for _, t := range s.tiles {
		if d.ExcludeSelf && t.Token() == ctx.Caster {
			continue
		}
		if protect && ctx.capsOf(t).Has(effects.FlagPreventSingleTarget) {
			continue
		}
		out = append(out, Target{Token: t.Token(), Descriptor: idx})
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out
}

// collapseOnRedirect folds every enemy token onto the first enemy tile that
// draws multi-target spells. The redirect tile is hit once.
func (ctx *ResolutionContext) collapseOnRedirect(in []Target) []Target {
	enemySide := ctx.Owner.Opponent()
	redirect := ctx.firstWithFlag(ctx.State.Board(enemySide), effects.FlagForceMultiTargetToSelf)
	if redirect == nil {
		return in
	}
	out := make([]Target, 0, len(in))
	used := false
	for _, t := range in {
		if t.Side != enemySide {
			out = append(out, t)
			continue
		}
		if used {
			continue
		}
		used = true
		out = append(out, Target{Token: redirect.Token(), Descriptor: t.Descriptor})
	}
	return out
}

// loyaltyRedirect moves a single enemy token to the ally that bound itself to
// the original target.
func (ctx *ResolutionContext) loyaltyRedirect(in []Target) []Target {
	enemySide := ctx.Owner.Opponent()
	pos := -1
	for i, t := range in {
		if t.Side != enemySide {
			continue
		}
		if pos >= 0 {
			return in
		}
		pos = i
	}
	if pos < 0 {
		return in
	}
	target := ctx.State.At(in[pos].Token)
	for _, e := range target.Effects {
		if !e.Flags.Has(effects.FlagRedirectSingleTargetToApplier) {
			continue
		}
		guard := board.ResolveApplier(ctx.State, e.Applier)
		if guard == nil || guard == target || guard.Side != target.Side {
			continue
		}
		out := append([]Target(nil), in...)
		out[pos].Token = guard.Token()
		return out
	}
	return in
}

func (ctx *ResolutionContext) firstWithFlag(b *board.Board, flag effects.Flags) *board.Tile {
	for _, i := range board.BookOrder() {
		if t := b.Main[i]; t.Alive() && ctx.capsOf(t).Has(flag) {
			return t
		}
	}
	return nil
}
