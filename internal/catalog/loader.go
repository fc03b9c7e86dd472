package catalog

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/lawnchairsociety/gridclash/internal/effects"
)

// SpellSlotDefinition represents a row spell binding in the YAML file.
type SpellSlotDefinition struct {
	Spell string `yaml:"spell" json:"spell" jsonschema:"description=Spell ID cast from this row"`
	Casts int    `yaml:"casts,omitempty" json:"casts,omitempty" jsonschema:"description=Uses per battle; 0 means unlimited"`
}

// PassiveDefinition represents a passive in the YAML file.
type PassiveDefinition struct {
	Type   string `yaml:"type" json:"type" jsonschema:"enum=surviveLethal,enum=regenerate,enum=energize,enum=aura"`
	Amount int    `yaml:"amount,omitempty" json:"amount,omitempty"`
	Effect string `yaml:"effect,omitempty" json:"effect,omitempty"`
}

// HeroDefinition represents a hero in the YAML file.
type HeroDefinition struct {
	Name         string                         `yaml:"name" json:"name"`
	Description  string                         `yaml:"description,omitempty" json:"description,omitempty"`
	Health       int                            `yaml:"health" json:"health" jsonschema:"minimum=1"`
	Energy       int                            `yaml:"energy,omitempty" json:"energy,omitempty"`
	Speed        int                            `yaml:"speed" json:"speed"`
	Armor        int                            `yaml:"armor,omitempty" json:"armor,omitempty"`
	SpellPower   int                            `yaml:"spell_power,omitempty" json:"spell_power,omitempty"`
	EnergyRegen  *int                           `yaml:"energy_regen,omitempty" json:"energy_regen,omitempty" jsonschema:"description=Energy gained each round; defaults to 1"`
	Spells       map[string]SpellSlotDefinition `yaml:"spells" json:"spells" jsonschema:"description=Spells keyed by row: front, middle, back"`
	Passives     []PassiveDefinition            `yaml:"passives,omitempty" json:"passives,omitempty"`
	RowModifiers map[string]map[string]int      `yaml:"row_modifiers,omitempty" json:"row_modifiers,omitempty"`
}

// ActionDefinition represents a spell action in the YAML file.
type ActionDefinition struct {
	Type     string `yaml:"type" json:"type" jsonschema:"enum=damage,enum=heal,enum=applyEffect,enum=energy,enum=stat,enum=cleanse,enum=revive,enum=consumeCorpse"`
	Amount   int    `yaml:"amount,omitempty" json:"amount,omitempty"`
	Power    int    `yaml:"power,omitempty" json:"power,omitempty"`
	Pierce   bool   `yaml:"pierce,omitempty" json:"pierce,omitempty"`
	Hits     int    `yaml:"hits,omitempty" json:"hits,omitempty"`
	Effect   string `yaml:"effect,omitempty" json:"effect,omitempty"`
	Duration int    `yaml:"duration,omitempty" json:"duration,omitempty"`
	Stacks   int    `yaml:"stacks,omitempty" json:"stacks,omitempty"`
	Stat     string `yaml:"stat,omitempty" json:"stat,omitempty"`
	Cleanse  string `yaml:"cleanse,omitempty" json:"cleanse,omitempty" jsonschema:"enum=buff,enum=debuff"`
}

// TargetDefinition represents a target descriptor in the YAML file.
type TargetDefinition struct {
	Type        string             `yaml:"type" json:"type"`
	Side        string             `yaml:"side,omitempty" json:"side,omitempty" jsonschema:"enum=enemy,enum=ally"`
	Max         int                `yaml:"max,omitempty" json:"max,omitempty"`
	ExcludeSelf bool               `yaml:"exclude_self,omitempty" json:"exclude_self,omitempty"`
	Effect      string             `yaml:"effect,omitempty" json:"effect,omitempty"`
	Actions     []ActionDefinition `yaml:"actions,omitempty" json:"actions,omitempty"`
}

// SpellDefinition represents a spell in the YAML file.
type SpellDefinition struct {
	Name           string             `yaml:"name" json:"name"`
	Description    string             `yaml:"description,omitempty" json:"description,omitempty"`
	Cost           int                `yaml:"cost" json:"cost" jsonschema:"minimum=0"`
	Priority       int                `yaml:"priority,omitempty" json:"priority,omitempty"`
	BypassTriggers bool               `yaml:"bypass_triggers,omitempty" json:"bypass_triggers,omitempty"`
	ForceSide      string             `yaml:"force_side,omitempty" json:"force_side,omitempty" jsonschema:"enum=enemy,enum=ally,description=Resolve every non-self target on this side"`
	Actions        []ActionDefinition `yaml:"actions,omitempty" json:"actions,omitempty"`
	Targets        []TargetDefinition `yaml:"targets" json:"targets"`
}

// EffectDefinition represents an effect in the YAML file.
type EffectDefinition struct {
	Description    string         `yaml:"description,omitempty" json:"description,omitempty"`
	Kind           string         `yaml:"kind" json:"kind" jsonschema:"enum=buff,enum=debuff"`
	Duration       int            `yaml:"duration,omitempty" json:"duration,omitempty"`
	Stacking       string         `yaml:"stacking,omitempty" json:"stacking,omitempty" jsonschema:"enum=refresh,enum=stack,enum=replace,enum=ignore"`
	MaxStacks      int            `yaml:"max_stacks,omitempty" json:"max_stacks,omitempty"`
	Flags          []string       `yaml:"flags,omitempty" json:"flags,omitempty"`
	Magnitude      int            `yaml:"magnitude,omitempty" json:"magnitude,omitempty"`
	Mods           map[string]int `yaml:"mods,omitempty" json:"mods,omitempty"`
	PeriodicDamage int            `yaml:"periodic_damage,omitempty" json:"periodic_damage,omitempty"`
	PeriodicHeal   int            `yaml:"periodic_heal,omitempty" json:"periodic_heal,omitempty"`
	SingleUse      bool           `yaml:"single_use,omitempty" json:"single_use,omitempty"`
}

// HeroesConfig represents the structure of heroes.yaml.
type HeroesConfig struct {
	Heroes map[string]HeroDefinition `yaml:"heroes" json:"heroes"`
}

// SpellsConfig represents the structure of spells.yaml.
type SpellsConfig struct {
	Spells map[string]SpellDefinition `yaml:"spells" json:"spells"`
}

// EffectsConfig represents the structure of effects.yaml.
type EffectsConfig struct {
	Effects map[string]EffectDefinition `yaml:"effects" json:"effects"`
}

// Files is the combined shape of the three catalog files, used for schema
// generation.
type Files struct {
	HeroesConfig
	SpellsConfig
	EffectsConfig
}

func loadYAML(filename string, out any) error {
	data, err := os.ReadFile(filename)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", filepath.Base(filename), err)
	}
	if err := yaml.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to parse %s: %w", filepath.Base(filename), err)
	}
	return nil
}

// LoadDir loads heroes.yaml, spells.yaml and effects.yaml from dir and
// validates cross references.
func LoadDir(dir string) (*Catalog, error) {
	c := New()
	if err := c.LoadEffectsFromYAML(filepath.Join(dir, "effects.yaml")); err != nil {
		return nil, err
	}
	if err := c.LoadSpellsFromYAML(filepath.Join(dir, "spells.yaml")); err != nil {
		return nil, err
	}
	if err := c.LoadHeroesFromYAML(filepath.Join(dir, "heroes.yaml")); err != nil {
		return nil, err
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// LoadEffectsFromYAML loads effect definitions into the catalog.
func (c *Catalog) LoadEffectsFromYAML(filename string) error {
	var cfg EffectsConfig
	if err := loadYAML(filename, &cfg); err != nil {
		return err
	}
	for name, def := range cfg.Effects {
		spec, err := CreateEffectFromDefinition(name, def)
		if err != nil {
			return err
		}
		c.AddEffect(spec)
	}
	return nil
}

// LoadSpellsFromYAML loads spell definitions into the catalog.
func (c *Catalog) LoadSpellsFromYAML(filename string) error {
	var cfg SpellsConfig
	if err := loadYAML(filename, &cfg); err != nil {
		return err
	}
	for id, def := range cfg.Spells {
		spell, err := CreateSpellFromDefinition(id, def)
		if err != nil {
			return err
		}
		c.AddSpell(spell)
	}
	return nil
}

// LoadHeroesFromYAML loads hero definitions into the catalog.
func (c *Catalog) LoadHeroesFromYAML(filename string) error {
	var cfg HeroesConfig
	if err := loadYAML(filename, &cfg); err != nil {
		return err
	}
	for id, def := range cfg.Heroes {
		hero, err := CreateHeroFromDefinition(id, def)
		if err != nil {
			return err
		}
		c.AddHero(hero)
	}
	return nil
}

// CreateEffectFromDefinition converts an EffectDefinition into an effect spec.
func CreateEffectFromDefinition(name string, def EffectDefinition) (effects.Spec, error) {
	flags, err := effects.ParseFlags(def.Flags)
	if err != nil {
		return effects.Spec{}, fmt.Errorf("effect %s: %w", name, err)
	}
	kind := effects.Kind(def.Kind)
	if kind != effects.KindBuff && kind != effects.KindDebuff {
		return effects.Spec{}, fmt.Errorf("effect %s: unknown kind %q", name, def.Kind)
	}
	stacking := effects.Stacking(def.Stacking)
	switch stacking {
	case "":
		stacking = effects.StackRefresh
	case effects.StackRefresh, effects.StackAdd, effects.StackReplace, effects.StackIgnore:
	default:
		return effects.Spec{}, fmt.Errorf("effect %s: unknown stacking %q", name, def.Stacking)
	}
	mods, err := convertMods(def.Mods)
	if err != nil {
		return effects.Spec{}, fmt.Errorf("effect %s: %w", name, err)
	}
	return effects.Spec{
		Name:           name,
		Description:    def.Description,
		Kind:           kind,
		Duration:       def.Duration,
		Stacking:       stacking,
		MaxStacks:      def.MaxStacks,
		Flags:          flags,
		Magnitude:      def.Magnitude,
		Mods:           mods,
		PeriodicDamage: def.PeriodicDamage,
		PeriodicHeal:   def.PeriodicHeal,
		SingleUse:      def.SingleUse,
	}, nil
}

func convertMods(in map[string]int) (map[effects.Stat]int, error) {
	if len(in) == 0 {
		return nil, nil
	}
	out := make(map[effects.Stat]int, len(in))
	for k, v := range in {
		stat := effects.Stat(k)
		if !effects.ValidStat(stat) {
			return nil, fmt.Errorf("unknown stat %q", k)
		}
		out[stat] = v
	}
	return out, nil
}

// StringToActionKind converts a string to an ActionKind.
func StringToActionKind(s string) (ActionKind, bool) {
	switch ActionKind(s) {
	case ActionDamage, ActionHeal, ActionApplyEffect, ActionEnergy, ActionStat,
		ActionCleanse, ActionRevive, ActionConsumeCorpse:
		return ActionKind(s), true
	}
	return "", false
}

// StringToTargetSide converts a string to a TargetSide. Anything but "ally"
// targets enemies.
func StringToTargetSide(s string) TargetSide {
	if s == string(SideAlly) {
		return SideAlly
	}
	return SideEnemy
}

func convertActions(owner string, defs []ActionDefinition) ([]Action, error) {
	if len(defs) == 0 {
		return nil, nil
	}
	out := make([]Action, 0, len(defs))
	for _, d := range defs {
		kind, ok := StringToActionKind(d.Type)
		if !ok {
			return nil, fmt.Errorf("spell %s: unknown action type %q", owner, d.Type)
		}
		if d.Stat != "" && !effects.ValidStat(effects.Stat(d.Stat)) {
			return nil, fmt.Errorf("spell %s: unknown stat %q", owner, d.Stat)
		}
		out = append(out, Action{
			Kind:     kind,
			Amount:   d.Amount,
			Power:    d.Power,
			Pierce:   d.Pierce,
			Hits:     d.Hits,
			Effect:   d.Effect,
			Duration: d.Duration,
			Stacks:   d.Stacks,
			Stat:     effects.Stat(d.Stat),
			Cleanse:  effects.Kind(d.Cleanse),
		})
	}
	return out, nil
}

// CreateSpellFromDefinition creates a Spell from a SpellDefinition. Descriptor
// types are kept verbatim; unknown ones are tolerated here and resolve to no
// targets at cast time.
func CreateSpellFromDefinition(id string, def SpellDefinition) (*Spell, error) {
	actions, err := convertActions(id, def.Actions)
	if err != nil {
		return nil, err
	}
	var forceSide TargetSide
	if def.ForceSide != "" {
		forceSide = StringToTargetSide(def.ForceSide)
	}
	targets := make([]TargetDescriptor, len(def.Targets))
	for i, t := range def.Targets {
		ta, err := convertActions(id, t.Actions)
		if err != nil {
			return nil, err
		}
		side := StringToTargetSide(t.Side)
		if DescriptorType(t.Type) == TargetSelf || DescriptorType(t.Type) == TargetNearestDeadAlly {
			side = SideAlly
		}
		if DescriptorType(t.Type) == TargetNearestDeadEnemy {
			side = SideEnemy
		}
		targets[i] = TargetDescriptor{
			Type:        DescriptorType(t.Type),
			Side:        side,
			Max:         t.Max,
			ExcludeSelf: t.ExcludeSelf,
			Effect:      t.Effect,
			Actions:     ta,
		}
	}
	return &Spell{
		ID:             id,
		Name:           def.Name,
		Description:    def.Description,
		Cost:           def.Cost,
		Priority:       def.Priority,
		BypassTriggers: def.BypassTriggers,
		ForceSide:      forceSide,
		Actions:        actions,
		Targets:        targets,
	}, nil
}

// CreateHeroFromDefinition creates a HeroTemplate from a HeroDefinition.
func CreateHeroFromDefinition(id string, def HeroDefinition) (*HeroTemplate, error) {
	regen := 1
	if def.EnergyRegen != nil {
		regen = *def.EnergyRegen
	}
	h := &HeroTemplate{
		ID:          id,
		Name:        def.Name,
		Description: def.Description,
		Health:      def.Health,
		Energy:      def.Energy,
		Speed:       def.Speed,
		Armor:       def.Armor,
		SpellPower:  def.SpellPower,
		EnergyRegen: regen,
		Spells:      make(map[Row]SpellSlot, len(def.Spells)),
	}
	if h.Name == "" {
		h.Name = id
	}
	if h.Health < 1 {
		return nil, fmt.Errorf("hero %s: health must be positive", id)
	}
	for rowName, slot := range def.Spells {
		row, err := ParseRow(rowName)
		if err != nil {
			return nil, fmt.Errorf("hero %s: %w", id, err)
		}
		casts := slot.Casts
		if casts <= 0 {
			casts = -1
		}
		h.Spells[row] = SpellSlot{SpellID: slot.Spell, Casts: casts}
	}
	for _, p := range def.Passives {
		kind := PassiveKind(p.Type)
		switch kind {
		case PassiveSurviveLethal, PassiveRegenerate, PassiveEnergize, PassiveAura:
		default:
			return nil, fmt.Errorf("hero %s: unknown passive %q", id, p.Type)
		}
		h.Passives = append(h.Passives, Passive{Kind: kind, Amount: p.Amount, Effect: p.Effect})
	}
	if len(def.RowModifiers) > 0 {
		h.RowModifiers = make(map[Row]map[effects.Stat]int, len(def.RowModifiers))
		rowNames := make([]string, 0, len(def.RowModifiers))
		for rowName := range def.RowModifiers {
			rowNames = append(rowNames, rowName)
		}
		sort.Strings(rowNames)
		for _, rowName := range rowNames {
			row, err := ParseRow(rowName)
			if err != nil {
				return nil, fmt.Errorf("hero %s: %w", id, err)
			}
			mods, err := convertMods(def.RowModifiers[rowName])
			if err != nil {
				return nil, fmt.Errorf("hero %s: %w", id, err)
			}
			h.RowModifiers[row] = mods
		}
	}
	return h, nil
}

// Validate checks that every spell and effect referenced by heroes and spells
// exists.
func (c *Catalog) Validate() error {
	for _, id := range c.HeroIDs() {
		h := c.heroes[id]
		for _, row := range Rows {
			slot, ok := h.SpellFor(row)
			if !ok {
				continue
			}
			if _, ok := c.spells[slot.SpellID]; !ok {
				return fmt.Errorf("hero %s %s row: %w: %s", id, row, ErrUnknownSpell, slot.SpellID)
			}
		}
		for _, p := range h.Passives {
			if p.Kind != PassiveAura {
				continue
			}
			if _, ok := c.effects[p.Effect]; !ok {
				return fmt.Errorf("hero %s aura: %w: %s", id, ErrUnknownEffect, p.Effect)
			}
		}
	}
	for _, id := range c.SpellIDs() {
		s := c.spells[id]
		for i := range s.Targets {
			for _, a := range s.ActionsFor(i) {
				if a.Kind != ActionApplyEffect {
					continue
				}
				if _, ok := c.effects[a.Effect]; !ok {
					return fmt.Errorf("spell %s: %w: %s", id, ErrUnknownEffect, a.Effect)
				}
			}
		}
	}
	return nil
}
