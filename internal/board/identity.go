package board

import "github.com/lawnchairsociety/gridclash/internal/effects"

// applierResolver looks up the tile an applier reference points at. done is
// true when the answer is definitive, even if the tile is nil.
type applierResolver func(s *State, ref effects.ApplierRef) (t *Tile, done bool)

// applierChain is tried in order; the first definitive answer wins.
var applierChain = []applierResolver{
	byInstanceID,
	byPositionAndHero,
	byHeroID,
}

// ResolveApplier finds the living main-grid tile that applied an effect.
// Instance IDs are authoritative; board position is only trusted when the hero
// there still matches, and hero ID is the last resort. Returns nil when nothing
// matches.
func ResolveApplier(s *State, ref effects.ApplierRef) *Tile {
	for _, resolve := range applierChain {
		if t, done := resolve(s, ref); done {
			return t
		}
	}
	return nil
}

func byInstanceID(s *State, ref effects.ApplierRef) (*Tile, bool) {
	if ref.InstanceID == "" {
		return nil, false
	}
	for _, b := range s.Boards {
		if t := b.FindInstance(ref.InstanceID); t != nil {
			if t.Alive() {
				return t, true
			}
			return nil, true
		}
		for _, t := range b.Reserve {
			if t.Hero != nil && t.Hero.InstanceID == ref.InstanceID {
				return nil, true
			}
		}
	}
	return nil, false
}

func byPositionAndHero(s *State, ref effects.ApplierRef) (*Tile, bool) {
	t := s.At(Token{Side: Side(ref.Side), Index: ref.Index})
	if !t.Alive() || ref.HeroID == "" || t.Hero.HeroID != ref.HeroID {
		return nil, false
	}
	return t, true
}

func byHeroID(s *State, ref effects.ApplierRef) (*Tile, bool) {
	if ref.HeroID == "" || !Side(ref.Side).Valid() {
		return nil, false
	}
	b := s.Board(Side(ref.Side))
	for _, i := range BookOrder() {
		t := b.Main[i]
		if t.Alive() && t.Hero.HeroID == ref.HeroID {
			return t, true
		}
	}
	return nil, false
}

// ApplierOf builds the reference stored on an effect applied by t.
func ApplierOf(t *Tile) effects.ApplierRef {
	ref := effects.ApplierRef{Side: int(t.Side), Index: t.Index}
	if t.Hero != nil {
		ref.InstanceID = t.Hero.InstanceID
		ref.HeroID = t.Hero.HeroID
	}
	return ref
}
