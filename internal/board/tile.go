package board

import (
	"github.com/google/uuid"

	"github.com/lawnchairsociety/gridclash/internal/catalog"
	"github.com/lawnchairsociety/gridclash/internal/effects"
)

// HeroInstance is the per-battle mutable copy of a hero template.
type HeroInstance struct {
	InstanceID string                               `json:"instanceId"`
	HeroID     string                               `json:"heroId"`
	Name       string                               `json:"name"`
	MaxHealth  int                                  `json:"maxHealth"`
	Regen      int                                  `json:"energyRegen"`
	Spells     map[catalog.Row]catalog.SpellSlot    `json:"spells"`
	Passives   []catalog.Passive                    `json:"passives,omitempty"`
	RowMods    map[catalog.Row]map[effects.Stat]int `json:"rowModifiers,omitempty"`
	Consumed   map[catalog.PassiveKind]bool         `json:"consumed,omitempty"`
}

// NewHeroInstance copies a template into a fresh instance with a random ID.
func NewHeroInstance(tpl *catalog.HeroTemplate) *HeroInstance {
	return NewHeroInstanceWithID(tpl, uuid.NewString())
}

// NewHeroInstanceWithID copies a template using a caller-supplied instance ID.
func NewHeroInstanceWithID(tpl *catalog.HeroTemplate, id string) *HeroInstance {
	h := &HeroInstance{
		InstanceID: id,
		HeroID:     tpl.ID,
		Name:       tpl.Name,
		MaxHealth:  tpl.Health,
		Regen:      tpl.EnergyRegen,
		Spells:     make(map[catalog.Row]catalog.SpellSlot, len(tpl.Spells)),
		Passives:   append([]catalog.Passive(nil), tpl.Passives...),
	}
	for row, slot := range tpl.Spells {
		h.Spells[row] = slot
	}
	if len(tpl.RowModifiers) > 0 {
		h.RowMods = make(map[catalog.Row]map[effects.Stat]int, len(tpl.RowModifiers))
		for row, mods := range tpl.RowModifiers {
			h.RowMods[row] = copyMods(mods)
		}
	}
	return h
}

// SpellFor returns the spell slot for row if one exists and has casts left.
func (h *HeroInstance) SpellFor(row catalog.Row) (catalog.SpellSlot, bool) {
	slot, ok := h.Spells[row]
	if !ok || slot.SpellID == "" || slot.Casts == 0 {
		return catalog.SpellSlot{}, false
	}
	return slot, true
}

// UseCast decrements the remaining casts of the row's spell.
func (h *HeroInstance) UseCast(row catalog.Row) {
	slot, ok := h.Spells[row]
	if !ok || slot.Casts < 0 {
		return
	}
	if slot.Casts > 0 {
		slot.Casts--
	}
	h.Spells[row] = slot
}

// Passive returns the first passive of a kind that is still available.
func (h *HeroInstance) Passive(kind catalog.PassiveKind) (catalog.Passive, bool) {
	for _, p := range h.Passives {
		if p.Kind != kind {
			continue
		}
		if p.OneShot() && h.Consumed[kind] {
			return catalog.Passive{}, false
		}
		return p, true
	}
	return catalog.Passive{}, false
}

// Consume marks a one-shot passive as used for the rest of the battle.
func (h *HeroInstance) Consume(kind catalog.PassiveKind) {
	if h.Consumed == nil {
		h.Consumed = make(map[catalog.PassiveKind]bool)
	}
	h.Consumed[kind] = true
}

// Clone deep-copies the instance.
func (h *HeroInstance) Clone() *HeroInstance {
	if h == nil {
		return nil
	}
	c := *h
	c.Spells = make(map[catalog.Row]catalog.SpellSlot, len(h.Spells))
	for row, slot := range h.Spells {
		c.Spells[row] = slot
	}
	c.Passives = append([]catalog.Passive(nil), h.Passives...)
	if h.RowMods != nil {
		c.RowMods = make(map[catalog.Row]map[effects.Stat]int, len(h.RowMods))
		for row, mods := range h.RowMods {
			c.RowMods[row] = copyMods(mods)
		}
	}
	if h.Consumed != nil {
		c.Consumed = make(map[catalog.PassiveKind]bool, len(h.Consumed))
		for k, v := range h.Consumed {
			c.Consumed[k] = v
		}
	}
	return &c
}

// Tile is one main-grid or reserve slot and its combat state.
type Tile struct {
	Side       Side          `json:"side"`
	Index      int           `json:"index"`
	Reserve    bool          `json:"reserve,omitempty"`
	Hero       *HeroInstance `json:"hero,omitempty"`
	Health     int           `json:"health"`
	Energy     int           `json:"energy"`
	Speed      int           `json:"speed"`
	Armor      int           `json:"armor"`
	SpellPower int           `json:"spellPower"`
	Effects    effects.List  `json:"effects,omitempty"`
	Dead       bool          `json:"dead,omitempty"`
}

// Occupied reports whether a hero (alive or a corpse) is on the tile.
func (t *Tile) Occupied() bool {
	return t != nil && t.Hero != nil
}

// Alive reports whether the tile holds a living hero.
func (t *Tile) Alive() bool {
	return t.Occupied() && !t.Dead
}

// Corpse reports whether the tile holds a dead hero.
func (t *Tile) Corpse() bool {
	return t.Occupied() && t.Dead
}

// Token returns the tile's reference. Reserve tiles are never targeted, but
// the token still carries the slot index.
func (t *Tile) Token() Token {
	return Token{Side: t.Side, Index: t.Index}
}

// Row returns the main-grid row.
func (t *Tile) Row() catalog.Row {
	return RowOf(t.Index)
}

// Seat places a fresh hero instance on the tile with template stats.
func (t *Tile) Seat(h *HeroInstance, tpl *catalog.HeroTemplate) {
	t.Hero = h
	t.Health = tpl.Health
	t.Energy = tpl.Energy
	t.Speed = tpl.Speed
	t.Armor = tpl.Armor
	t.SpellPower = tpl.SpellPower
	t.Effects = nil
	t.Dead = false
}

// Vacate empties the tile.
func (t *Tile) Vacate() {
	*t = Tile{Side: t.Side, Index: t.Index, Reserve: t.Reserve}
}

// MissingHealth returns max health minus current health.
func (t *Tile) MissingHealth() int {
	if t.Hero == nil {
		return 0
	}
	missing := t.Hero.MaxHealth - t.Health
	if missing < 0 {
		return 0
	}
	return missing
}

// Stat returns the effective value of a stat: the current value plus effect
// modifiers plus the hero's row modifier when standing on the main grid.
func (t *Tile) Stat(stat effects.Stat) int {
	var v int
	switch stat {
	case effects.StatHealth:
		v = t.Health
	case effects.StatEnergy:
		v = t.Energy
	case effects.StatSpeed:
		v = t.Speed
	case effects.StatArmor:
		v = t.Armor
	case effects.StatSpellPower:
		v = t.SpellPower
	}
	if stat != effects.StatHealth && stat != effects.StatEnergy {
		v += t.Effects.Mod(stat)
		if t.Hero != nil && !t.Reserve {
			v += t.Hero.RowMods[t.Row()][stat]
		}
	}
	switch stat {
	case effects.StatSpeed, effects.StatArmor, effects.StatSpellPower:
		if v < 0 {
			v = 0
		}
	}
	return v
}

// Capabilities folds the tile's effects.
func (t *Tile) Capabilities() effects.Capabilities {
	return t.Effects.Capabilities()
}

// Clone deep-copies the tile.
func (t *Tile) Clone() *Tile {
	c := *t
	c.Hero = t.Hero.Clone()
	c.Effects = t.Effects.Clone()
	return &c
}

func copyMods(in map[effects.Stat]int) map[effects.Stat]int {
	if in == nil {
		return nil
	}
	out := make(map[effects.Stat]int, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
