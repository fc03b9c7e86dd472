// Package catalog holds the static hero, spell and effect tables a battle is
// resolved against. A Catalog is read-only once loaded.
package catalog

import (
	"errors"
	"sort"

	"github.com/lawnchairsociety/gridclash/internal/effects"
)

var (
	ErrUnknownHero   = errors.New("unknown hero")
	ErrUnknownSpell  = errors.New("unknown spell")
	ErrUnknownEffect = errors.New("unknown effect")
)

// Catalog holds all loaded definitions and provides lookup.
type Catalog struct {
	heroes  map[string]*HeroTemplate
	spells  map[string]*Spell
	effects map[string]effects.Spec
}

// New creates an empty catalog.
func New() *Catalog {
	return &Catalog{
		heroes:  make(map[string]*HeroTemplate),
		spells:  make(map[string]*Spell),
		effects: make(map[string]effects.Spec),
	}
}

// AddHero registers a hero template, replacing any previous one with the same ID.
func (c *Catalog) AddHero(h *HeroTemplate) {
	c.heroes[h.ID] = h
}

// AddSpell registers a spell.
func (c *Catalog) AddSpell(s *Spell) {
	c.spells[s.ID] = s
}

// AddEffect registers an effect spec under its name.
func (c *Catalog) AddEffect(s effects.Spec) {
	c.effects[s.Name] = s
}

// Hero returns a hero template by ID.
func (c *Catalog) Hero(id string) (*HeroTemplate, bool) {
	h, ok := c.heroes[id]
	return h, ok
}

// Spell returns a spell by ID.
func (c *Catalog) Spell(id string) (*Spell, bool) {
	s, ok := c.spells[id]
	return s, ok
}

// Effect returns an effect spec by name.
func (c *Catalog) Effect(name string) (effects.Spec, bool) {
	s, ok := c.effects[name]
	return s, ok
}

// Heroes returns every hero template ordered by ID.
func (c *Catalog) Heroes() []*HeroTemplate {
	out := make([]*HeroTemplate, 0, len(c.heroes))
	for _, h := range c.heroes {
		out = append(out, h)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// HeroIDs returns every hero ID in sorted order.
func (c *Catalog) HeroIDs() []string {
	ids := make([]string, 0, len(c.heroes))
	for id := range c.heroes {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// SpellIDs returns every spell ID in sorted order.
func (c *Catalog) SpellIDs() []string {
	ids := make([]string, 0, len(c.spells))
	for id := range c.spells {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Counts returns the number of heroes, spells and effects.
func (c *Catalog) Counts() (heroes, spells, effectCount int) {
	return len(c.heroes), len(c.spells), len(c.effects)
}
