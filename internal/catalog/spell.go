package catalog

import "github.com/lawnchairsociety/gridclash/internal/effects"

// DescriptorType names a target selection rule.
type DescriptorType string

const (
	// Fixed relation to the caster.
	TargetSelf              DescriptorType = "self"
	TargetAdjacentToSelf    DescriptorType = "adjacentToSelf"
	TargetColumn            DescriptorType = "column"
	TargetOwnColumn         DescriptorType = "ownColumn"
	TargetFacing            DescriptorType = "facing"
	TargetProjectile        DescriptorType = "projectile"
	TargetProjectilePlusOne DescriptorType = "projectilePlusOne"

	// Whole regions.
	TargetBoard            DescriptorType = "board"
	TargetFrontRow         DescriptorType = "frontRow"
	TargetMiddleRow        DescriptorType = "middleRow"
	TargetBackRow          DescriptorType = "backRow"
	TargetFirstOccupiedRow DescriptorType = "firstOccupiedRow"
	TargetLastOccupiedRow  DescriptorType = "lastOccupiedRow"
	TargetOwnRow           DescriptorType = "ownRow"
	TargetCornerTiles      DescriptorType = "cornerTiles"
	TargetCenterTile       DescriptorType = "centerTile"
	TargetFirst            DescriptorType = "first"
	TargetLast             DescriptorType = "last"

	// Extremal stat.
	TargetHighestEnergy          DescriptorType = "highestEnergy"
	TargetLowestEnergy           DescriptorType = "lowestEnergy"
	TargetHighestSpeed           DescriptorType = "highestSpeed"
	TargetLowestSpeed            DescriptorType = "lowestSpeed"
	TargetHighestArmor           DescriptorType = "highestArmor"
	TargetLowestArmor            DescriptorType = "lowestArmor"
	TargetHighestHealth          DescriptorType = "highestHealth"
	TargetLowestHealth           DescriptorType = "lowestHealth"
	TargetMostMissingHealth      DescriptorType = "mostMissingHealth"
	TargetHighestSpellPower      DescriptorType = "highestSpellPower"
	TargetLowestSpellPower       DescriptorType = "lowestSpellPower"
	TargetHighestHealthPlusArmor DescriptorType = "highestHealthPlusArmor"
	TargetLowestHealthPlusArmor  DescriptorType = "lowestHealthPlusArmor"
	TargetHighestSpeedPlusEnergy DescriptorType = "highestSpeedPlusEnergy"

	// Distance.
	TargetNearest           DescriptorType = "nearest"
	TargetFurthest          DescriptorType = "furthest"
	TargetAdjacent          DescriptorType = "adjacent"
	TargetNearestWithSplash DescriptorType = "nearestWithSplash"

	// Effect counts.
	TargetMostBuffs      DescriptorType = "mostBuffs"
	TargetMostDebuffs    DescriptorType = "mostDebuffs"
	TargetMostEffects    DescriptorType = "mostEffects"
	TargetMostEffectName DescriptorType = "mostEffectName"
	TargetWithEffect     DescriptorType = "withEffect"
	TargetWithoutEffect  DescriptorType = "withoutEffect"

	// Corpses.
	TargetNearestDeadAlly  DescriptorType = "nearestDeadAlly"
	TargetNearestDeadEnemy DescriptorType = "nearestDeadEnemy"
)

// DescriptorTypes lists every built-in descriptor type.
var DescriptorTypes = []DescriptorType{
	TargetSelf,
	TargetAdjacentToSelf,
	TargetColumn,
	TargetOwnColumn,
	TargetFacing,
	TargetProjectile,
	TargetProjectilePlusOne,
	TargetBoard,
	TargetFrontRow,
	TargetMiddleRow,
	TargetBackRow,
	TargetFirstOccupiedRow,
	TargetLastOccupiedRow,
	TargetOwnRow,
	TargetCornerTiles,
	TargetCenterTile,
	TargetFirst,
	TargetLast,
	TargetHighestEnergy,
	TargetLowestEnergy,
	TargetHighestSpeed,
	TargetLowestSpeed,
	TargetHighestArmor,
	TargetLowestArmor,
	TargetHighestHealth,
	TargetLowestHealth,
	TargetMostMissingHealth,
	TargetHighestSpellPower,
	TargetLowestSpellPower,
	TargetHighestHealthPlusArmor,
	TargetLowestHealthPlusArmor,
	TargetHighestSpeedPlusEnergy,
	TargetNearest,
	TargetFurthest,
	TargetAdjacent,
	TargetNearestWithSplash,
	TargetMostBuffs,
	TargetMostDebuffs,
	TargetMostEffects,
	TargetMostEffectName,
	TargetWithEffect,
	TargetWithoutEffect,
	TargetNearestDeadAlly,
	TargetNearestDeadEnemy,
}

// TargetSide is relative to the caster.
type TargetSide string

const (
	SideEnemy TargetSide = "enemy"
	SideAlly  TargetSide = "ally"
)

// regionTypes select every matching tile rather than a ranked few.
var regionTypes = map[DescriptorType]bool{
	TargetAdjacentToSelf:    true,
	TargetColumn:            true,
	TargetOwnColumn:         true,
	TargetProjectilePlusOne: true,
	TargetBoard:             true,
	TargetFrontRow:          true,
	TargetMiddleRow:         true,
	TargetBackRow:           true,
	TargetFirstOccupiedRow:  true,
	TargetLastOccupiedRow:   true,
	TargetOwnRow:            true,
	TargetCornerTiles:       true,
	TargetAdjacent:          true,
	TargetNearestWithSplash: true,
	TargetWithEffect:        true,
}

// TargetDescriptor is one target selection rule of a spell.
type TargetDescriptor struct {
	Type        DescriptorType `json:"type"`
	Side        TargetSide     `json:"side"`
	Max         int            `json:"max,omitempty"`
	ExcludeSelf bool           `json:"excludeSelf,omitempty"`
	Effect      string         `json:"effect,omitempty"`
	Actions     []Action       `json:"actions,omitempty"`
}

// IsSelf reports whether the descriptor targets the caster only.
func (d TargetDescriptor) IsSelf() bool {
	return d.Type == TargetSelf
}

// IsRegion reports whether the type selects a whole region.
func (d TargetDescriptor) IsRegion() bool {
	return regionTypes[d.Type]
}

// IsMultiTarget reports whether the descriptor can resolve to more than one tile
// on its own.
func (d TargetDescriptor) IsMultiTarget() bool {
	return d.IsRegion() || d.Max > 1
}

// IsCorpseSeeking reports whether the descriptor matches dead tiles.
func (d TargetDescriptor) IsCorpseSeeking() bool {
	return d.Type == TargetNearestDeadAlly || d.Type == TargetNearestDeadEnemy
}

// Limit is the number of tokens a ranked descriptor takes.
func (d TargetDescriptor) Limit() int {
	if d.Max < 1 {
		return 1
	}
	return d.Max
}

// ActionKind names what happens to a resolved target.
type ActionKind string

const (
	ActionDamage        ActionKind = "damage"
	ActionHeal          ActionKind = "heal"
	ActionApplyEffect   ActionKind = "applyEffect"
	ActionEnergy        ActionKind = "energy"
	ActionStat          ActionKind = "stat"
	ActionCleanse       ActionKind = "cleanse"
	ActionRevive        ActionKind = "revive"
	ActionConsumeCorpse ActionKind = "consumeCorpse"
)

// Action is a delta applied to each resolved token.
type Action struct {
	Kind     ActionKind   `json:"kind"`
	Amount   int          `json:"amount,omitempty"`
	Power    int          `json:"power,omitempty"` // percent of caster spell power added to Amount
	Pierce   bool         `json:"pierce,omitempty"`
	Hits     int          `json:"hits,omitempty"`
	Effect   string       `json:"effect,omitempty"`
	Duration int          `json:"duration,omitempty"`
	Stacks   int          `json:"stacks,omitempty"`
	Stat     effects.Stat `json:"stat,omitempty"`
	Cleanse  effects.Kind `json:"cleanse,omitempty"`
}

// HitCount returns how many times the action repeats, at least once.
func (a Action) HitCount() int {
	if a.Hits < 1 {
		return 1
	}
	return a.Hits
}

// Spell is a castable spell.
type Spell struct {
	ID             string
	Name           string
	Description    string
	Cost           int
	Priority       int // negative values act after every spell of higher priority
	BypassTriggers bool
	ForceSide      TargetSide // empty, or the side every non-self descriptor resolves against
	Actions        []Action
	Targets        []TargetDescriptor
}

// ActionsFor returns the actions for the i-th descriptor, falling back to the
// spell-level actions when the descriptor declares none.
func (s *Spell) ActionsFor(i int) []Action {
	if i >= 0 && i < len(s.Targets) && len(s.Targets[i].Actions) > 0 {
		return s.Targets[i].Actions
	}
	return s.Actions
}

// HasDamageEffect returns true if any action deals damage.
func (s *Spell) HasDamageEffect() bool {
	for i := range s.Targets {
		for _, a := range s.ActionsFor(i) {
			if a.Kind == ActionDamage {
				return true
			}
		}
	}
	return false
}

// IsSelfOnly returns true if the spell only affects the caster.
func (s *Spell) IsSelfOnly() bool {
	for _, d := range s.Targets {
		if !d.IsSelf() {
			return false
		}
	}
	return len(s.Targets) > 0
}
