package catalog

import (
	"fmt"

	"github.com/lawnchairsociety/gridclash/internal/effects"
)

// Row is a main-grid row. Spells are keyed by the row a hero stands in.
type Row int

const (
	RowFront Row = iota
	RowMiddle
	RowBack
)

// Rows lists the rows front to back.
var Rows = [...]Row{RowFront, RowMiddle, RowBack}

func (r Row) String() string {
	switch r {
	case RowFront:
		return "front"
	case RowMiddle:
		return "middle"
	case RowBack:
		return "back"
	default:
		return fmt.Sprintf("row(%d)", int(r))
	}
}

// ParseRow converts a row name.
func ParseRow(s string) (Row, error) {
	switch s {
	case "front":
		return RowFront, nil
	case "middle":
		return RowMiddle, nil
	case "back":
		return RowBack, nil
	}
	return 0, fmt.Errorf("unknown row %q", s)
}

// PassiveKind names a built-in passive hook.
type PassiveKind string

const (
	PassiveSurviveLethal PassiveKind = "surviveLethal" // once per battle, lethal damage leaves 1 health
	PassiveRegenerate    PassiveKind = "regenerate"    // heal Amount at round start
	PassiveEnergize      PassiveKind = "energize"      // gain Amount extra energy at round start
	PassiveAura          PassiveKind = "aura"          // apply Effect to self at round start
)

// Passive is a hero passive.
type Passive struct {
	Kind   PassiveKind `json:"kind"`
	Amount int         `json:"amount,omitempty"`
	Effect string      `json:"effect,omitempty"`
}

// OneShot reports whether the passive is consumed after triggering once.
func (p Passive) OneShot() bool {
	return p.Kind == PassiveSurviveLethal
}

// SpellSlot binds a spell to a row. Casts is the number of uses per battle;
// -1 means unlimited.
type SpellSlot struct {
	SpellID string `json:"spell"`
	Casts   int    `json:"casts"`
}

// HeroTemplate is the static definition of a hero.
type HeroTemplate struct {
	ID          string
	Name        string
	Description string
	Health      int
	Energy      int
	Speed       int
	Armor       int
	SpellPower  int
	EnergyRegen int
	Spells      map[Row]SpellSlot
	Passives    []Passive
	// RowModifiers are flat stat bonuses applied while the hero stands in a row.
	RowModifiers map[Row]map[effects.Stat]int
}

// SpellFor returns the slot for a row.
func (h *HeroTemplate) SpellFor(row Row) (SpellSlot, bool) {
	slot, ok := h.Spells[row]
	return slot, ok && slot.SpellID != ""
}

// HasPassive reports whether the hero has a passive of the given kind.
func (h *HeroTemplate) HasPassive(kind PassiveKind) bool {
	for _, p := range h.Passives {
		if p.Kind == kind {
			return true
		}
	}
	return false
}
