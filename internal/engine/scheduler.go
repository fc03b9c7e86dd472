package engine

import (
	"sort"

	"github.com/lawnchairsociety/gridclash/internal/board"
	"github.com/lawnchairsociety/gridclash/internal/catalog"
	"github.com/lawnchairsociety/gridclash/internal/effects"
	"github.com/lawnchairsociety/gridclash/internal/logger"
)

// caster is a scheduled cast: who, from which row, and the spell.
type caster struct {
	token board.Token
	row   catalog.Row
	spell *catalog.Spell
	speed int
}

// schedule returns every hero able to cast this round, in acting order.
func (rc *roundContext) schedule() []caster {
	var order []caster
	for _, t := range rc.tiles(false) {
		if c, ok := rc.eligible(t); ok {
			order = append(order, c)
		}
	}
	sort.SliceStable(order, func(i, j int) bool {
		return rc.actsBefore(order[i], order[j])
	})
	return order
}

func (rc *roundContext) eligible(t *board.Tile) (caster, bool) {
	if !t.Alive() || t.Reserve || t.Capabilities().Has(effects.FlagPreventCasting) {
		return caster{}, false
	}
	row := t.Row()
	slot, ok := t.Hero.SpellFor(row)
	if !ok {
		return caster{}, false
	}
	spell, ok := rc.catalog.Spell(slot.SpellID)
	if !ok {
		logger.Warning("Hero references unknown spell", "hero", t.Hero.HeroID, "spell", slot.SpellID)
		return caster{}, false
	}
	if t.Energy < spell.Cost {
		return caster{}, false
	}
	return caster{token: t.Token(), row: row, spell: spell, speed: t.Stat(effects.StatSpeed)}, true
}

// actsBefore orders casters by spell priority, then speed, then book rank, and
// finally puts the round's priority player first.
func (rc *roundContext) actsBefore(a, b caster) bool {
	if a.spell.Priority != b.spell.Priority {
		return a.spell.Priority > b.spell.Priority
	}
	if a.speed != b.speed {
		return a.speed > b.speed
	}
	ra, rb := board.BookRank(a.token.Index), board.BookRank(b.token.Index)
	if ra != rb {
		return ra < rb
	}
	return a.token.Side == rc.state.Priority && b.token.Side != rc.state.Priority
}
