package targeting

import (
	"reflect"
	"testing"

	"github.com/lawnchairsociety/gridclash/internal/board"
	"github.com/lawnchairsociety/gridclash/internal/catalog"
	"github.com/lawnchairsociety/gridclash/internal/effects"
)

type stats struct {
	health, energy, speed, armor, power int
}

func place(t *testing.T, s *board.State, side board.Side, index int, id string, st stats) *board.Tile {
	t.Helper()
	tpl := &catalog.HeroTemplate{ID: id, Name: id, Health: 10, EnergyRegen: 1}
	tile, err := s.Boards[side].Place(index, tpl)
	if err != nil {
		t.Fatalf("Place(%s%d): %v", side, index, err)
	}
	tile.Health = st.health
	tile.Energy = st.energy
	tile.Speed = st.speed
	tile.Armor = st.armor
	tile.SpellPower = st.power
	return tile
}

func addEffect(tile *board.Tile, name string, kind effects.Kind, flags effects.Flags, stacks int) {
	tile.Effects.Add(effects.New(effects.Spec{Name: name, Kind: kind, Duration: 2, Stacking: effects.StackAdd, Flags: flags}, 0, stacks, effects.ApplierRef{}))
}

func tok(side board.Side, index int) board.Token {
	return board.Token{Side: side, Index: index}
}

// fixture: caster at A1, allies at A2 and A3, enemies at B0, B2, B4, B7.
func fixture(t *testing.T) *board.State {
	s := board.NewState()
	place(t, s, board.SideA, 1, "caster", stats{health: 10, energy: 3, speed: 2})
	place(t, s, board.SideA, 2, "squire", stats{health: 9, energy: 1, speed: 1})
	place(t, s, board.SideA, 3, "cleric", stats{health: 6, energy: 4, speed: 1})

	place(t, s, board.SideB, 0, "b0", stats{health: 5, energy: 1, speed: 3, armor: 2})
	b2 := place(t, s, board.SideB, 2, "b2", stats{health: 8, energy: 4, speed: 1, power: 3})
	b4 := place(t, s, board.SideB, 4, "b4", stats{health: 10, energy: 2, speed: 5, armor: 1})
	b7 := place(t, s, board.SideB, 7, "b7", stats{health: 3, speed: 2, armor: 3})
	addEffect(b4, "shield", effects.KindBuff, 0, 1)
	addEffect(b2, "burn", effects.KindDebuff, 0, 2)
	addEffect(b7, "burn", effects.KindDebuff, 0, 1)
	addEffect(b7, "slow", effects.KindDebuff, 0, 1)
	return s
}

func resolveOne(s *board.State, caster board.Token, d catalog.TargetDescriptor, opts Options) []board.Token {
	return Tokens(Resolve(NewContext(s, caster, opts), []catalog.TargetDescriptor{d}))
}

func TestAllDescriptorTypesKnown(t *testing.T) {
	if len(catalog.DescriptorTypes) != 44 {
		t.Errorf("expected 44 descriptor types, got %d", len(catalog.DescriptorTypes))
	}
	for _, dt := range catalog.DescriptorTypes {
		if !Known(dt) {
			t.Errorf("descriptor type %q has no selector", dt)
		}
	}
	if Known("bogus") {
		t.Error("bogus type should be unknown")
	}
}

func TestDescriptorSelection(t *testing.T) {
	s := fixture(t)
	caster := tok(board.SideA, 1)
	enemy := func(dt catalog.DescriptorType) catalog.TargetDescriptor {
		return catalog.TargetDescriptor{Type: dt, Side: catalog.SideEnemy}
	}
	ally := func(dt catalog.DescriptorType) catalog.TargetDescriptor {
		return catalog.TargetDescriptor{Type: dt, Side: catalog.SideAlly}
	}
	B := func(idx ...int) []board.Token {
		out := make([]board.Token, len(idx))
		for i, v := range idx {
			out[i] = tok(board.SideB, v)
		}
		return out
	}
	A := func(idx ...int) []board.Token {
		out := make([]board.Token, len(idx))
		for i, v := range idx {
			out[i] = tok(board.SideA, v)
		}
		return out
	}

	tests := []struct {
		name string
		d    catalog.TargetDescriptor
		want []board.Token
	}{
		{"self", catalog.TargetDescriptor{Type: catalog.TargetSelf}, A(1)},
		{"adjacentToSelf", enemy(catalog.TargetAdjacentToSelf), A(2)},
		{"column", enemy(catalog.TargetColumn), B(4, 7)},
		{"ownColumn", ally(catalog.TargetOwnColumn), A(1)},
		{"facing", enemy(catalog.TargetFacing), B(4)},
		{"projectile", enemy(catalog.TargetProjectile), B(4)},
		{"projectilePlusOne", enemy(catalog.TargetProjectilePlusOne), B(4, 7)},
		{"board", enemy(catalog.TargetBoard), B(0, 2, 4, 7)},
		{"frontRow", enemy(catalog.TargetFrontRow), B(0, 2)},
		{"middleRow", enemy(catalog.TargetMiddleRow), B(4)},
		{"backRow", enemy(catalog.TargetBackRow), B(7)},
		{"firstOccupiedRow", enemy(catalog.TargetFirstOccupiedRow), B(0, 2)},
		{"lastOccupiedRow", enemy(catalog.TargetLastOccupiedRow), B(7)},
		{"ownRow", enemy(catalog.TargetOwnRow), B(0, 2)},
		{"cornerTiles", enemy(catalog.TargetCornerTiles), B(0, 2)},
		{"centerTile", enemy(catalog.TargetCenterTile), B(4)},
		{"first", enemy(catalog.TargetFirst), B(0)},
		{"last", enemy(catalog.TargetLast), B(7)},
		{"highestEnergy", enemy(catalog.TargetHighestEnergy), B(2)},
		{"lowestEnergy", enemy(catalog.TargetLowestEnergy), B(7)},
		{"highestSpeed", enemy(catalog.TargetHighestSpeed), B(4)},
		{"lowestSpeed", enemy(catalog.TargetLowestSpeed), B(2)},
		{"highestArmor", enemy(catalog.TargetHighestArmor), B(7)},
		{"lowestArmor", enemy(catalog.TargetLowestArmor), B(2)},
		{"highestHealth", enemy(catalog.TargetHighestHealth), B(4)},
		{"lowestHealth", enemy(catalog.TargetLowestHealth), B(7)},
		{"mostMissingHealth", enemy(catalog.TargetMostMissingHealth), B(7)},
		{"highestSpellPower", enemy(catalog.TargetHighestSpellPower), B(2)},
		{"lowestSpellPower", enemy(catalog.TargetLowestSpellPower), B(0)},
		{"highestHealthPlusArmor", enemy(catalog.TargetHighestHealthPlusArmor), B(4)},
		{"lowestHealthPlusArmor", enemy(catalog.TargetLowestHealthPlusArmor), B(7)},
		{"highestSpeedPlusEnergy", enemy(catalog.TargetHighestSpeedPlusEnergy), B(4)},
		{"nearest", enemy(catalog.TargetNearest), B(0)},
		{"furthest", enemy(catalog.TargetFurthest), B(7)},
		{"adjacent ally", ally(catalog.TargetAdjacent), A(2)},
		{"adjacent enemy", enemy(catalog.TargetAdjacent), nil},
		{"nearestWithSplash", enemy(catalog.TargetNearestWithSplash), B(0)},
		{"mostBuffs", enemy(catalog.TargetMostBuffs), B(4)},
		{"mostDebuffs", enemy(catalog.TargetMostDebuffs), B(7)},
		{"mostEffects", enemy(catalog.TargetMostEffects), B(7)},
		{"mostEffectName", catalog.TargetDescriptor{Type: catalog.TargetMostEffectName, Side: catalog.SideEnemy, Effect: "burn"}, B(2)},
		{"withEffect", catalog.TargetDescriptor{Type: catalog.TargetWithEffect, Side: catalog.SideEnemy, Effect: "burn"}, B(2, 7)},
		{"withoutEffect", catalog.TargetDescriptor{Type: catalog.TargetWithoutEffect, Side: catalog.SideEnemy, Effect: "burn"}, B(0)},
		{"nearestDeadEnemy", enemy(catalog.TargetNearestDeadEnemy), nil},
		{"nearestDeadAlly", ally(catalog.TargetNearestDeadAlly), nil},
		{"lowestHealth max 2", catalog.TargetDescriptor{Type: catalog.TargetLowestHealth, Side: catalog.SideEnemy, Max: 2}, B(7, 0)},
		{"board max 3", catalog.TargetDescriptor{Type: catalog.TargetBoard, Side: catalog.SideEnemy, Max: 3}, B(0, 2, 4)},
		{"highestEnergy ally excluding self", catalog.TargetDescriptor{Type: catalog.TargetHighestEnergy, Side: catalog.SideAlly, ExcludeSelf: true}, A(3)},
		{"ownColumn excluding self", catalog.TargetDescriptor{Type: catalog.TargetOwnColumn, ExcludeSelf: true}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := resolveOne(s, caster, tt.d, Options{})
			if len(got) == 0 && len(tt.want) == 0 {
				return
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Resolve(%s) = %v, want %v", tt.d.Type, got, tt.want)
			}
		})
	}
}

func TestUnknownDescriptorResolvesEmpty(t *testing.T) {
	s := fixture(t)
	descs := []catalog.TargetDescriptor{
		{Type: "legacyCone", Side: catalog.SideEnemy},
		{Type: catalog.TargetFirst, Side: catalog.SideEnemy},
	}
	got := Resolve(NewContext(s, tok(board.SideA, 1), Options{}), descs)
	if len(got) != 1 || got[0].Token != tok(board.SideB, 0) || got[0].Descriptor != 1 {
		t.Errorf("expected only the known descriptor to resolve, got %v", got)
	}
}

func TestResolveIsIdempotent(t *testing.T) {
	s := fixture(t)
	before := s.Clone()
	descs := []catalog.TargetDescriptor{
		{Type: catalog.TargetLowestHealth, Side: catalog.SideEnemy},
		{Type: catalog.TargetBoard, Side: catalog.SideAlly},
		{Type: catalog.TargetNearestWithSplash, Side: catalog.SideEnemy},
	}
	ctx := NewContext(s, tok(board.SideA, 1), Options{})
	first := Resolve(ctx, descs)
	second := Resolve(ctx, descs)
	if !reflect.DeepEqual(first, second) {
		t.Errorf("resolution changed between calls: %v vs %v", first, second)
	}
	if !reflect.DeepEqual(before, s) {
		t.Error("Resolve mutated the board")
	}
}

func TestTieBreaksAgreeAcrossTypes(t *testing.T) {
	s := board.NewState()
	place(t, s, board.SideA, 4, "caster", stats{health: 10})
	// Identical enemies placed out of book order.
	for _, idx := range []int{8, 5, 3} {
		place(t, s, board.SideB, idx, "twin", stats{health: 5, energy: 2, speed: 2, armor: 1, power: 1})
	}
	types := []catalog.DescriptorType{
		catalog.TargetHighestEnergy, catalog.TargetLowestEnergy,
		catalog.TargetHighestSpeed, catalog.TargetLowestSpeed,
		catalog.TargetHighestArmor, catalog.TargetLowestArmor,
		catalog.TargetHighestHealth, catalog.TargetLowestHealth,
		catalog.TargetMostMissingHealth,
		catalog.TargetHighestSpellPower, catalog.TargetLowestSpellPower,
		catalog.TargetHighestHealthPlusArmor, catalog.TargetLowestHealthPlusArmor,
		catalog.TargetHighestSpeedPlusEnergy,
		catalog.TargetFirst,
	}
	want := tok(board.SideB, 3)
	for _, dt := range types {
		got := resolveOne(s, tok(board.SideA, 4), catalog.TargetDescriptor{Type: dt, Side: catalog.SideEnemy}, Options{})
		if len(got) != 1 || got[0] != want {
			t.Errorf("%s picked %v, want %v", dt, got, want)
		}
	}

	// B3 and B5 are equidistant from A4; book order decides.
	got := resolveOne(s, tok(board.SideA, 4), catalog.TargetDescriptor{Type: catalog.TargetNearest, Side: catalog.SideEnemy}, Options{})
	if len(got) != 1 || got[0] != want {
		t.Errorf("nearest picked %v, want %v", got, want)
	}
}

func TestTauntOverridesSingleTarget(t *testing.T) {
	s := fixture(t)
	addEffect(s.At(tok(board.SideB, 4)), "provoke", effects.KindBuff, effects.FlagTaunt, 1)
	caster := tok(board.SideA, 1)

	got := resolveOne(s, caster, catalog.TargetDescriptor{Type: catalog.TargetLowestHealth, Side: catalog.SideEnemy}, Options{})
	if !reflect.DeepEqual(got, []board.Token{tok(board.SideB, 4)}) {
		t.Errorf("taunt ignored: %v", got)
	}

	got = resolveOne(s, caster, catalog.TargetDescriptor{Type: catalog.TargetFrontRow, Side: catalog.SideEnemy}, Options{})
	if len(got) != 2 {
		t.Errorf("taunt should not affect region spells: %v", got)
	}

	// Ally picks next to the enemy pick are untouched.
	descs := []catalog.TargetDescriptor{
		{Type: catalog.TargetSelf},
		{Type: catalog.TargetLowestHealth, Side: catalog.SideEnemy},
	}
	res := Tokens(Resolve(NewContext(s, caster, Options{}), descs))
	if !reflect.DeepEqual(res, []board.Token{caster, tok(board.SideB, 4)}) {
		t.Errorf("got %v", res)
	}
}

func TestMultiTargetRedirect(t *testing.T) {
	s := fixture(t)
	addEffect(s.At(tok(board.SideB, 7)), "protective growth", effects.KindBuff, effects.FlagForceMultiTargetToSelf, 1)
	caster := tok(board.SideA, 1)
	descs := []catalog.TargetDescriptor{
		{Type: catalog.TargetBoard, Side: catalog.SideEnemy},
		{Type: catalog.TargetSelf},
	}
	got := Tokens(Resolve(NewContext(s, caster, Options{}), descs))
	want := []board.Token{tok(board.SideB, 7), caster}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}

	single := resolveOne(s, caster, catalog.TargetDescriptor{Type: catalog.TargetFirst, Side: catalog.SideEnemy}, Options{})
	if !reflect.DeepEqual(single, []board.Token{tok(board.SideB, 0)}) {
		t.Errorf("single-target spells should not be redirected: %v", single)
	}
}

func TestForcedLowestArmor(t *testing.T) {
	s := fixture(t)
	caster := tok(board.SideA, 1)
	addEffect(s.At(caster), "subjugation", effects.KindDebuff, effects.FlagForceSingleTargetLowestArmor, 1)

	got := resolveOne(s, caster, catalog.TargetDescriptor{Type: catalog.TargetHighestHealth, Side: catalog.SideEnemy}, Options{})
	if !reflect.DeepEqual(got, []board.Token{tok(board.SideB, 2)}) {
		t.Errorf("expected lowest armor B2, got %v", got)
	}
	got = resolveOne(s, caster, catalog.TargetDescriptor{Type: catalog.TargetSelf}, Options{})
	if !reflect.DeepEqual(got, []board.Token{caster}) {
		t.Errorf("self descriptor should not be overridden: %v", got)
	}
}

func TestSingleTargetProtection(t *testing.T) {
	s := fixture(t)
	addEffect(s.At(tok(board.SideB, 0)), "stealth", effects.KindBuff, effects.FlagPreventSingleTarget, 1)
	caster := tok(board.SideA, 1)
	first := catalog.TargetDescriptor{Type: catalog.TargetFirst, Side: catalog.SideEnemy}

	if got := resolveOne(s, caster, first, Options{}); !reflect.DeepEqual(got, []board.Token{tok(board.SideB, 2)}) {
		t.Errorf("protected tile should be skipped, got %v", got)
	}
	if got := resolveOne(s, caster, first, Options{BypassTriggers: true}); !reflect.DeepEqual(got, []board.Token{tok(board.SideB, 0)}) {
		t.Errorf("bypassTriggers should ignore protection, got %v", got)
	}
	got := resolveOne(s, caster, catalog.TargetDescriptor{Type: catalog.TargetFrontRow, Side: catalog.SideEnemy}, Options{})
	if len(got) != 2 {
		t.Errorf("region spells hit protected tiles, got %v", got)
	}
}

func TestLoyaltyRedirect(t *testing.T) {
	s := fixture(t)
	guard := s.At(tok(board.SideB, 0))
	ward := s.At(tok(board.SideB, 7))
	ward.Effects.Add(effects.New(effects.Spec{Name: "bodyguard", Kind: effects.KindBuff, Duration: 2, Flags: effects.FlagRedirectSingleTargetToApplier}, 0, 1, board.ApplierOf(guard)))
	caster := tok(board.SideA, 1)
	lowest := catalog.TargetDescriptor{Type: catalog.TargetLowestHealth, Side: catalog.SideEnemy}

	if got := resolveOne(s, caster, lowest, Options{}); !reflect.DeepEqual(got, []board.Token{tok(board.SideB, 0)}) {
		t.Errorf("expected redirect to guard, got %v", got)
	}

	// The guard moved between rounds; the instance id still finds it.
	if err := s.Boards[board.SideB].Move(board.Slot{Index: 0}, board.Slot{Index: 1}); err != nil {
		t.Fatalf("Move: %v", err)
	}
	if got := resolveOne(s, caster, lowest, Options{}); !reflect.DeepEqual(got, []board.Token{tok(board.SideB, 1)}) {
		t.Errorf("expected redirect to moved guard, got %v", got)
	}

	// Region spells are not redirected.
	got := resolveOne(s, caster, catalog.TargetDescriptor{Type: catalog.TargetBackRow, Side: catalog.SideEnemy}, Options{})
	if !reflect.DeepEqual(got, []board.Token{tok(board.SideB, 7)}) {
		t.Errorf("got %v", got)
	}

	// Dead guard: no redirect.
	s.At(tok(board.SideB, 1)).Dead = true
	if got := resolveOne(s, caster, lowest, Options{}); !reflect.DeepEqual(got, []board.Token{tok(board.SideB, 7)}) {
		t.Errorf("expected no redirect once guard is dead, got %v", got)
	}
}

func TestLoyaltyRedirectStaleReference(t *testing.T) {
	s := fixture(t)
	ward := s.At(tok(board.SideB, 7))
	ward.Effects.Add(effects.New(effects.Spec{Name: "bodyguard", Kind: effects.KindBuff, Flags: effects.FlagRedirectSingleTargetToApplier}, 0, 1,
		effects.ApplierRef{InstanceID: "missing", Side: int(board.SideB), Index: 8, HeroID: "nobody"}))

	got := resolveOne(s, tok(board.SideA, 1), catalog.TargetDescriptor{Type: catalog.TargetLowestHealth, Side: catalog.SideEnemy}, Options{})
	if !reflect.DeepEqual(got, []board.Token{tok(board.SideB, 7)}) {
		t.Errorf("stale reference should not redirect, got %v", got)
	}
}

func TestForceSideOptions(t *testing.T) {
	s := fixture(t)
	caster := tok(board.SideA, 1)

	got := resolveOne(s, caster, catalog.TargetDescriptor{Type: catalog.TargetFirst, Side: catalog.SideEnemy, ExcludeSelf: true}, Options{ForceAllySide: true})
	if !reflect.DeepEqual(got, []board.Token{tok(board.SideA, 2)}) {
		t.Errorf("ForceAllySide: got %v", got)
	}
	got = resolveOne(s, caster, catalog.TargetDescriptor{Type: catalog.TargetLowestHealth, Side: catalog.SideAlly}, Options{ForceEnemySide: true})
	if !reflect.DeepEqual(got, []board.Token{tok(board.SideB, 7)}) {
		t.Errorf("ForceEnemySide: got %v", got)
	}
	got = resolveOne(s, caster, catalog.TargetDescriptor{Type: catalog.TargetSelf}, Options{ForceEnemySide: true})
	if !reflect.DeepEqual(got, []board.Token{caster}) {
		t.Errorf("self ignores side forcing: got %v", got)
	}
}

func TestCorpseSeeking(t *testing.T) {
	s := fixture(t)
	s.At(tok(board.SideB, 0)).Dead = true
	s.At(tok(board.SideA, 3)).Dead = true
	caster := tok(board.SideA, 1)

	if got := resolveOne(s, caster, catalog.TargetDescriptor{Type: catalog.TargetNearestDeadEnemy}, Options{}); !reflect.DeepEqual(got, []board.Token{tok(board.SideB, 0)}) {
		t.Errorf("nearestDeadEnemy: %v", got)
	}
	if got := resolveOne(s, caster, catalog.TargetDescriptor{Type: catalog.TargetNearestDeadAlly}, Options{}); !reflect.DeepEqual(got, []board.Token{tok(board.SideA, 3)}) {
		t.Errorf("nearestDeadAlly: %v", got)
	}
	if got := resolveOne(s, caster, catalog.TargetDescriptor{Type: catalog.TargetFirst, Side: catalog.SideEnemy}, Options{}); !reflect.DeepEqual(got, []board.Token{tok(board.SideB, 2)}) {
		t.Errorf("corpses must not be targeted by living selectors: %v", got)
	}
}

func TestEmptyRegion(t *testing.T) {
	s := fixture(t)
	for _, tile := range s.Boards[board.SideB].Main {
		if tile.Occupied() {
			tile.Dead = true
		}
	}
	got := Resolve(NewContext(s, tok(board.SideA, 1), Options{}), []catalog.TargetDescriptor{{Type: catalog.TargetBoard, Side: catalog.SideEnemy}})
	if len(got) != 0 {
		t.Errorf("expected no targets, got %v", got)
	}
}

func TestLayerPrecedence(t *testing.T) {
	caster := tok(board.SideA, 1)
	bodyguard := func(s *board.State, ward, guard board.Token) {
		s.At(ward).Effects.Add(effects.New(effects.Spec{Name: "bodyguard", Kind: effects.KindBuff, Duration: 2, Flags: effects.FlagRedirectSingleTargetToApplier}, 0, 1, board.ApplierOf(s.At(guard))))
	}
	flag := func(s *board.State, at board.Token, name string, f effects.Flags) {
		addEffect(s.At(at), name, effects.KindBuff, f, 1)
	}
	lowestHealth := catalog.TargetDescriptor{Type: catalog.TargetLowestHealth, Side: catalog.SideEnemy}
	highestHealth := catalog.TargetDescriptor{Type: catalog.TargetHighestHealth, Side: catalog.SideEnemy}
	wholeBoard := catalog.TargetDescriptor{Type: catalog.TargetBoard, Side: catalog.SideEnemy}

	tests := []struct {
		name  string
		setup func(s *board.State)
		desc  catalog.TargetDescriptor
		want  []board.Token
	}{
		{
			name: "taunt beats protection on the same tile",
			setup: func(s *board.State) {
				flag(s, tok(board.SideB, 4), "provoke", effects.FlagTaunt|effects.FlagPreventSingleTarget)
			},
			desc: lowestHealth,
			want: []board.Token{tok(board.SideB, 4)},
		},
		{
			name: "taunt beats forced lowest armor",
			setup: func(s *board.State) {
				flag(s, tok(board.SideB, 4), "provoke", effects.FlagTaunt)
				flag(s, caster, "subjugation", effects.FlagForceSingleTargetLowestArmor)
			},
			desc: highestHealth,
			want: []board.Token{tok(board.SideB, 4)},
		},
		{
			name: "forced lowest armor then protection skips the armor pick",
			setup: func(s *board.State) {
				flag(s, caster, "subjugation", effects.FlagForceSingleTargetLowestArmor)
				flag(s, tok(board.SideB, 2), "stealth", effects.FlagPreventSingleTarget)
			},
			desc: highestHealth,
			want: []board.Token{tok(board.SideB, 4)},
		},
		{
			name: "multi-target redirect ignores a protected neighbour",
			setup: func(s *board.State) {
				flag(s, tok(board.SideB, 7), "protective growth", effects.FlagForceMultiTargetToSelf)
				flag(s, tok(board.SideB, 0), "stealth", effects.FlagPreventSingleTarget)
			},
			desc: wholeBoard,
			want: []board.Token{tok(board.SideB, 7)},
		},
		{
			name: "multi-target redirect beats taunt",
			setup: func(s *board.State) {
				flag(s, tok(board.SideB, 7), "protective growth", effects.FlagForceMultiTargetToSelf)
				flag(s, tok(board.SideB, 4), "provoke", effects.FlagTaunt)
			},
			desc: wholeBoard,
			want: []board.Token{tok(board.SideB, 7)},
		},
		{
			name: "single target taunt with a redirect tile present",
			setup: func(s *board.State) {
				flag(s, tok(board.SideB, 7), "protective growth", effects.FlagForceMultiTargetToSelf)
				flag(s, tok(board.SideB, 4), "provoke", effects.FlagTaunt)
			},
			desc: lowestHealth,
			want: []board.Token{tok(board.SideB, 4)},
		},
		{
			name: "taunt suppresses loyalty redirect",
			setup: func(s *board.State) {
				flag(s, tok(board.SideB, 4), "provoke", effects.FlagTaunt)
				bodyguard(s, tok(board.SideB, 4), tok(board.SideB, 0))
			},
			desc: lowestHealth,
			want: []board.Token{tok(board.SideB, 4)},
		},
		{
			name: "loyalty redirect applies after protection",
			setup: func(s *board.State) {
				flag(s, tok(board.SideB, 7), "stealth", effects.FlagPreventSingleTarget)
				bodyguard(s, tok(board.SideB, 0), tok(board.SideB, 2))
			},
			desc: lowestHealth,
			want: []board.Token{tok(board.SideB, 2)},
		},
		{
			name: "loyalty redirect applies after forced lowest armor",
			setup: func(s *board.State) {
				flag(s, caster, "subjugation", effects.FlagForceSingleTargetLowestArmor)
				bodyguard(s, tok(board.SideB, 2), tok(board.SideB, 4))
			},
			desc: highestHealth,
			want: []board.Token{tok(board.SideB, 4)},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := fixture(t)
			tt.setup(s)
			if got := resolveOne(s, caster, tt.desc, Options{}); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestResolveSpellSelfOnly(t *testing.T) {
	s := fixture(t)
	caster := tok(board.SideA, 1)
	// Layers aimed at enemies must not disturb a self-only spell.
	addEffect(s.At(tok(board.SideB, 4)), "provoke", effects.KindBuff, effects.FlagTaunt, 1)
	addEffect(s.At(caster), "subjugation", effects.KindDebuff, effects.FlagForceSingleTargetLowestArmor, 1)

	selfOnly := &catalog.Spell{ID: "focus", Targets: []catalog.TargetDescriptor{{Type: catalog.TargetSelf}, {Type: catalog.TargetSelf}}}
	got := ResolveSpell(NewContext(s, caster, Options{}), selfOnly)
	want := Resolve(NewContext(s, caster, Options{}), selfOnly.Targets)
	if !reflect.DeepEqual(got, want) || len(got) != 2 || got[1].Descriptor != 1 {
		t.Errorf("ResolveSpell() = %v, Resolve() = %v", got, want)
	}

	mixed := &catalog.Spell{ID: "strike", Targets: []catalog.TargetDescriptor{{Type: catalog.TargetSelf}, {Type: catalog.TargetFirst, Side: catalog.SideEnemy}}}
	if got := Tokens(ResolveSpell(NewContext(s, caster, Options{}), mixed)); !reflect.DeepEqual(got, []board.Token{caster, tok(board.SideB, 4)}) {
		t.Errorf("mixed spell = %v, want taunt applied", got)
	}

	s.At(caster).Dead = true
	if got := ResolveSpell(NewContext(s, caster, Options{}), selfOnly); len(got) != 0 {
		t.Errorf("dead caster resolved %v", got)
	}
}

func TestCapabilitiesFoldedOncePerResolution(t *testing.T) {
	s := fixture(t)
	ctx := NewContext(s, tok(board.SideA, 1), Options{})
	b0 := s.At(tok(board.SideB, 0))
	if ctx.capsOf(b0).Has(effects.FlagPreventSingleTarget) {
		t.Fatal("b0 starts unprotected")
	}

	addEffect(b0, "stealth", effects.KindBuff, effects.FlagPreventSingleTarget, 1)
	if ctx.capsOf(b0).Has(effects.FlagPreventSingleTarget) {
		t.Error("capabilities refolded within one resolution")
	}
	if !NewContext(s, tok(board.SideA, 1), Options{}).capsOf(b0).Has(effects.FlagPreventSingleTarget) {
		t.Error("a fresh resolution should see the new effect")
	}
}
