package board

import (
	"errors"
	"testing"

	"github.com/lawnchairsociety/gridclash/internal/catalog"
	"github.com/lawnchairsociety/gridclash/internal/effects"
)

func testHero(id string) *catalog.HeroTemplate {
	return &catalog.HeroTemplate{
		ID:          id,
		Name:        id,
		Health:      10,
		Energy:      2,
		Speed:       3,
		Armor:       1,
		SpellPower:  0,
		EnergyRegen: 1,
		Spells: map[catalog.Row]catalog.SpellSlot{
			catalog.RowFront: {SpellID: "strike", Casts: -1},
			catalog.RowBack:  {SpellID: "bolt", Casts: 2},
		},
		RowModifiers: map[catalog.Row]map[effects.Stat]int{
			catalog.RowFront: {effects.StatArmor: 2},
		},
	}
}

func TestRowAndColumn(t *testing.T) {
	tests := []struct {
		index int
		row   catalog.Row
		col   int
	}{
		{0, catalog.RowFront, 0},
		{2, catalog.RowFront, 2},
		{4, catalog.RowMiddle, 1},
		{6, catalog.RowBack, 0},
		{8, catalog.RowBack, 2},
	}
	for _, tt := range tests {
		if got := RowOf(tt.index); got != tt.row {
			t.Errorf("RowOf(%d) = %v, want %v", tt.index, got, tt.row)
		}
		if got := ColOf(tt.index); got != tt.col {
			t.Errorf("ColOf(%d) = %d, want %d", tt.index, got, tt.col)
		}
		if got := IndexAt(tt.row, tt.col); got != tt.index {
			t.Errorf("IndexAt(%v, %d) = %d, want %d", tt.row, tt.col, got, tt.index)
		}
	}
}

func TestBookOrderIsTotal(t *testing.T) {
	seen := make(map[int]bool)
	prev := -1
	for _, i := range BookOrder() {
		r := BookRank(i)
		if seen[r] {
			t.Fatalf("duplicate rank %d", r)
		}
		seen[r] = true
		if r <= prev {
			t.Errorf("BookOrder not ascending at index %d", i)
		}
		prev = r
		if i > 0 && RowOf(i) < RowOf(i-1) {
			t.Errorf("row order broken at %d", i)
		}
	}
	if len(seen) != MainSize {
		t.Errorf("expected %d ranks, got %d", MainSize, len(seen))
	}
}

func TestDistance(t *testing.T) {
	tests := []struct {
		name string
		a, b Token
		want int
	}{
		{"front facing", Token{SideA, 0}, Token{SideB, 2}, 1},
		{"front diagonal", Token{SideA, 0}, Token{SideB, 0}, 3},
		{"back to back", Token{SideA, 6}, Token{SideB, 8}, 5},
		{"same side neighbors", Token{SideA, 0}, Token{SideA, 1}, 1},
		{"same tile", Token{SideB, 4}, Token{SideB, 4}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Distance(tt.a, tt.b); got != tt.want {
				t.Errorf("Distance(%v, %v) = %d, want %d", tt.a, tt.b, got, tt.want)
			}
			if got := Distance(tt.b, tt.a); got != tt.want {
				t.Errorf("Distance is not symmetric: %d vs %d", got, tt.want)
			}
		})
	}
}

func TestNeighbors(t *testing.T) {
	got := Neighbors(4)
	want := []int{1, 3, 5, 7}
	if len(got) != len(want) {
		t.Fatalf("Neighbors(4) = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Neighbors(4) = %v, want %v", got, want)
		}
	}
	if n := Neighbors(0); len(n) != 2 {
		t.Errorf("corner should have 2 neighbors, got %v", n)
	}
}

func TestTileStatIncludesModifiers(t *testing.T) {
	b := NewBoard(SideA)
	tile, err := b.Place(0, testHero("knight"))
	if err != nil {
		t.Fatalf("Place: %v", err)
	}
	tile.Effects.Add(effects.New(effects.Spec{Name: "guard", Kind: effects.KindBuff, Duration: 2, Mods: map[effects.Stat]int{effects.StatArmor: 3}}, 0, 1, effects.ApplierRef{}))

	if got := tile.Stat(effects.StatArmor); got != 6 {
		t.Errorf("armor = %d, want 6 (1 base + 2 row + 3 effect)", got)
	}

	tile.Effects.Add(effects.New(effects.Spec{Name: "sunder", Kind: effects.KindDebuff, Duration: 2, Mods: map[effects.Stat]int{effects.StatArmor: -20}}, 0, 1, effects.ApplierRef{}))
	if got := tile.Stat(effects.StatArmor); got != 0 {
		t.Errorf("armor should floor at 0, got %d", got)
	}
}

func TestHeroInstanceCasts(t *testing.T) {
	h := NewHeroInstanceWithID(testHero("mage"), "id-1")

	if _, ok := h.SpellFor(catalog.RowMiddle); ok {
		t.Error("expected no middle row spell")
	}
	for i := 0; i < 2; i++ {
		if _, ok := h.SpellFor(catalog.RowBack); !ok {
			t.Fatalf("cast %d: expected back row spell", i)
		}
		h.UseCast(catalog.RowBack)
	}
	if _, ok := h.SpellFor(catalog.RowBack); ok {
		t.Error("expected back row spell to be exhausted")
	}

	h.UseCast(catalog.RowFront)
	if slot, ok := h.SpellFor(catalog.RowFront); !ok || slot.Casts != -1 {
		t.Errorf("unlimited slot changed: %+v", slot)
	}
}

func TestHeroInstancePassiveConsumed(t *testing.T) {
	tpl := testHero("paladin")
	tpl.Passives = []catalog.Passive{{Kind: catalog.PassiveSurviveLethal}}
	h := NewHeroInstance(tpl)

	if _, ok := h.Passive(catalog.PassiveSurviveLethal); !ok {
		t.Fatal("expected passive")
	}
	clone := h.Clone()
	h.Consume(catalog.PassiveSurviveLethal)
	if _, ok := h.Passive(catalog.PassiveSurviveLethal); ok {
		t.Error("expected passive consumed")
	}
	if _, ok := clone.Passive(catalog.PassiveSurviveLethal); !ok {
		t.Error("clone should not share consumed state")
	}
}

func TestPlaceRespectsMaxActive(t *testing.T) {
	b := NewBoard(SideB)
	for i := 0; i < MaxActive; i++ {
		if _, err := b.Place(i, testHero("h")); err != nil {
			t.Fatalf("Place(%d): %v", i, err)
		}
	}
	if _, err := b.Place(MaxActive, testHero("h")); !errors.Is(err, ErrTooManyActive) {
		t.Errorf("expected ErrTooManyActive, got %v", err)
	}
	if err := b.Validate(); err != nil {
		t.Errorf("Validate: %v", err)
	}
}

func TestMove(t *testing.T) {
	b := NewBoard(SideA)
	front, _ := b.Place(0, testHero("front"))
	if _, err := b.PlaceReserve(0, testHero("bench")); err != nil {
		t.Fatalf("PlaceReserve: %v", err)
	}
	frontID := front.Hero.InstanceID

	if err := b.Move(Slot{Index: 0}, Slot{Index: 4}); err != nil {
		t.Fatalf("Move: %v", err)
	}
	if b.Main[0].Occupied() {
		t.Error("source should be empty after move")
	}
	if got := b.Main[4]; got.Hero == nil || got.Hero.InstanceID != frontID || got.Index != 4 {
		t.Errorf("hero not moved to 4: %+v", got)
	}

	if err := b.Move(Slot{Reserve: true, Index: 0}, Slot{Index: 4}); err != nil {
		t.Fatalf("swap with reserve: %v", err)
	}
	if b.Reserve[0].Hero.InstanceID != frontID || !b.Reserve[0].Reserve {
		t.Error("expected front hero benched")
	}
	if b.Main[4].Hero.HeroID != "bench" || b.Main[4].Reserve {
		t.Error("expected bench hero on main grid")
	}
	if err := b.Validate(); err != nil {
		t.Errorf("Validate after moves: %v", err)
	}
}

func TestMoveBlocked(t *testing.T) {
	b := NewBoard(SideA)
	tile, _ := b.Place(1, testHero("rooted"))
	tile.Effects.Add(effects.New(effects.Spec{Name: "root", Kind: effects.KindDebuff, Duration: 1, Flags: effects.FlagPreventMovement}, 0, 1, effects.ApplierRef{}))

	if err := b.Move(Slot{Index: 1}, Slot{Index: 7}); !errors.Is(err, ErrMovementBlocked) {
		t.Errorf("expected ErrMovementBlocked, got %v", err)
	}
	if err := b.Move(Slot{Index: 3}, Slot{Index: 7}); !errors.Is(err, ErrMovementBlocked) {
		t.Errorf("moving an empty slot should fail, got %v", err)
	}

	full := NewBoard(SideB)
	for i := 0; i < MaxActive; i++ {
		full.Place(i, testHero("h"))
	}
	full.PlaceReserve(1, testHero("extra"))
	if err := full.Move(Slot{Reserve: true, Index: 1}, Slot{Index: 8}); !errors.Is(err, ErrTooManyActive) {
		t.Errorf("expected ErrTooManyActive, got %v", err)
	}
}

func TestStateValidate(t *testing.T) {
	s := NewState()
	if err := s.Validate(); err != nil {
		t.Fatalf("fresh state invalid: %v", err)
	}

	s.Boards[SideB].Main = s.Boards[SideB].Main[:8]
	if err := s.Validate(); !errors.Is(err, ErrInvalidShape) {
		t.Errorf("expected ErrInvalidShape, got %v", err)
	}

	s = NewState()
	s.Boards[SideA].Main[3].Index = 5
	if err := s.Validate(); !errors.Is(err, ErrInvalidShape) {
		t.Errorf("expected ErrInvalidShape for mismatched index, got %v", err)
	}
}

func TestStateCloneIsDeep(t *testing.T) {
	s := NewState()
	tile, _ := s.Boards[SideA].Place(0, testHero("a"))
	tile.Effects.Add(effects.New(effects.Spec{Name: "shield", Kind: effects.KindBuff, Duration: 2}, 0, 1, effects.ApplierRef{}))

	c := s.Clone()
	c.Boards[SideA].Main[0].Health = 1
	c.Boards[SideA].Main[0].Effects[0].Remaining = 9
	c.Boards[SideA].Main[0].Hero.UseCast(catalog.RowBack)

	if tile.Health != 10 {
		t.Errorf("original health changed to %d", tile.Health)
	}
	if tile.Effects[0].Remaining != 2 {
		t.Errorf("original effect changed to %d", tile.Effects[0].Remaining)
	}
	if tile.Hero.Spells[catalog.RowBack].Casts != 2 {
		t.Error("original casts changed")
	}
}

func TestWinner(t *testing.T) {
	s := NewState()
	a, _ := s.Boards[SideA].Place(0, testHero("a"))
	b, _ := s.Boards[SideB].Place(0, testHero("b"))

	if _, ok, _ := s.Winner(); ok {
		t.Fatal("no winner expected yet")
	}
	b.Dead = true
	if w, ok, draw := s.Winner(); !ok || draw || w != SideA {
		t.Errorf("Winner() = %v %v %v, want A", w, ok, draw)
	}
	a.Dead = true
	if _, ok, draw := s.Winner(); !ok || !draw {
		t.Error("expected draw")
	}
}

func TestResolveApplier(t *testing.T) {
	s := NewState()
	guard, _ := s.Boards[SideA].Place(4, testHero("guard"))
	ref := ApplierOf(guard)

	if got := ResolveApplier(s, ref); got != guard {
		t.Fatalf("instance lookup failed: %v", got)
	}

	// Moved between rounds: instance id still finds it.
	if err := s.Boards[SideA].Move(Slot{Index: 4}, Slot{Index: 7}); err != nil {
		t.Fatalf("Move: %v", err)
	}
	if got := ResolveApplier(s, ref); got == nil || got.Index != 7 {
		t.Errorf("expected applier at 7, got %v", got)
	}

	// Unknown instance id falls back to position with hero check.
	stale := ref
	stale.InstanceID = "gone"
	stale.Index = 7
	if got := ResolveApplier(s, stale); got == nil || got.Index != 7 {
		t.Errorf("expected position fallback at 7, got %v", got)
	}

	// Wrong position falls back to hero id in book order.
	stale.Index = 0
	s.Boards[SideA].Place(2, testHero("guard"))
	if got := ResolveApplier(s, stale); got == nil || got.Index != 2 {
		t.Errorf("expected hero id fallback to book-first guard at 2, got %v", got)
	}

	// A dead applier found by instance id is definitive.
	s.Boards[SideA].Main[7].Dead = true
	if got := ResolveApplier(s, ref); got != nil {
		t.Errorf("expected nil for dead applier, got %v", got)
	}

	if got := ResolveApplier(s, effects.ApplierRef{Side: 1, Index: 3, HeroID: "nobody"}); got != nil {
		t.Errorf("expected nil, got %v", got)
	}
}
