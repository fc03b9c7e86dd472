// Package effects provides the per-tile store of active buffs and debuffs.
package effects

// Kind classifies an effect as helpful or harmful.
type Kind string

const (
	KindBuff   Kind = "buff"
	KindDebuff Kind = "debuff"
)

// Stacking decides what happens when an effect is applied to a tile that
// already carries an effect with the same name.
type Stacking string

const (
	StackRefresh Stacking = "refresh" // keep one instance, reset its duration
	StackAdd     Stacking = "stack"   // add stacks up to MaxStacks
	StackReplace Stacking = "replace" // drop the old instance, insert the new one
	StackIgnore  Stacking = "ignore"  // keep the old instance untouched
)

// Stat names a combat stat an effect or row modifier can shift.
type Stat string

const (
	StatHealth      Stat = "health"
	StatEnergy      Stat = "energy"
	StatSpeed       Stat = "speed"
	StatArmor       Stat = "armor"
	StatSpellPower  Stat = "spellPower"
	StatDamageDealt Stat = "damageDealt"
	StatDamageTaken Stat = "damageTaken"
)

// ValidStat reports whether s is a known stat name.
func ValidStat(s Stat) bool {
	switch s {
	case StatHealth, StatEnergy, StatSpeed, StatArmor, StatSpellPower, StatDamageDealt, StatDamageTaken:
		return true
	}
	return false
}

// Spec is the static definition an effect instance is created from.
type Spec struct {
	Name           string
	Description    string
	Kind           Kind
	Duration       int // rounds; 0 lasts until consumed or cleansed
	Stacking       Stacking
	MaxStacks      int // 0 means unlimited
	Flags          Flags
	Magnitude      int
	Mods           map[Stat]int
	PeriodicDamage int
	PeriodicHeal   int
	SingleUse      bool
}

// ApplierRef identifies the hero that applied an effect. Board positions are
// not stable between rounds, so InstanceID is authoritative and the rest is
// only used as a fallback.
type ApplierRef struct {
	InstanceID string `json:"instanceId,omitempty"`
	Side       int    `json:"side"`
	Index      int    `json:"index"`
	HeroID     string `json:"heroId,omitempty"`
}

// Effect is an active effect on a tile.
type Effect struct {
	Name           string       `json:"name"`
	Kind           Kind         `json:"kind"`
	Stacking       Stacking     `json:"stacking"`
	MaxStacks      int          `json:"maxStacks,omitempty"`
	Flags          Flags        `json:"flags"`
	Magnitude      int          `json:"magnitude,omitempty"`
	Mods           map[Stat]int `json:"mods,omitempty"`
	PeriodicDamage int          `json:"periodicDamage,omitempty"`
	PeriodicHeal   int          `json:"periodicHeal,omitempty"`
	SingleUse      bool         `json:"singleUse,omitempty"`
	Remaining      int          `json:"remaining"`
	Stacks         int          `json:"stacks"`
	Applier        ApplierRef   `json:"applier"`
}

// New creates an effect instance. A non-positive duration falls back to the
// spec's duration, and stacks below one are treated as one.
func New(spec Spec, duration, stacks int, applier ApplierRef) *Effect {
	if duration <= 0 {
		duration = spec.Duration
	}
	if stacks < 1 {
		stacks = 1
	}
	if spec.MaxStacks > 0 && stacks > spec.MaxStacks {
		stacks = spec.MaxStacks
	}
	stacking := spec.Stacking
	if stacking == "" {
		stacking = StackRefresh
	}
	var mods map[Stat]int
	if len(spec.Mods) > 0 {
		mods = make(map[Stat]int, len(spec.Mods))
		for k, v := range spec.Mods {
			mods[k] = v
		}
	}
	return &Effect{
		Name:           spec.Name,
		Kind:           spec.Kind,
		Stacking:       stacking,
		MaxStacks:      spec.MaxStacks,
		Flags:          spec.Flags,
		Magnitude:      spec.Magnitude,
		Mods:           mods,
		PeriodicDamage: spec.PeriodicDamage,
		PeriodicHeal:   spec.PeriodicHeal,
		SingleUse:      spec.SingleUse,
		Remaining:      duration,
		Stacks:         stacks,
		Applier:        applier,
	}
}

// Permanent reports whether the effect lasts until consumed or cleansed.
func (e *Effect) Permanent() bool {
	return e.Remaining <= 0
}

// Mod returns the stack-scaled modifier for a stat.
func (e *Effect) Mod(stat Stat) int {
	return e.Mods[stat] * e.Stacks
}

// Clone returns a deep copy.
func (e *Effect) Clone() *Effect {
	c := *e
	if e.Mods != nil {
		c.Mods = make(map[Stat]int, len(e.Mods))
		for k, v := range e.Mods {
			c.Mods[k] = v
		}
	}
	return &c
}
