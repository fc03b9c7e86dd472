package board

import (
	"errors"
	"fmt"

	"github.com/lawnchairsociety/gridclash/internal/catalog"
	"github.com/lawnchairsociety/gridclash/internal/effects"
)

var (
	// ErrInvalidShape is returned when a board does not have 9 main and 2
	// reserve tiles, or a tile's side or index disagrees with its slot.
	ErrInvalidShape = errors.New("invalid board shape")
	// ErrMovementBlocked is returned when a tile cannot be moved.
	ErrMovementBlocked = errors.New("movement blocked")
	// ErrTooManyActive is returned when a move would put more than MaxActive
	// heroes on the main grid.
	ErrTooManyActive = errors.New("too many active heroes")
)

// Board is one side's main grid and reserve.
type Board struct {
	Side    Side    `json:"side"`
	Main    []*Tile `json:"main"`
	Reserve []*Tile `json:"reserve"`
}

// NewBoard returns an empty board for a side.
func NewBoard(side Side) *Board {
	b := &Board{
		Side:    side,
		Main:    make([]*Tile, MainSize),
		Reserve: make([]*Tile, ReserveSize),
	}
	for i := range b.Main {
		b.Main[i] = &Tile{Side: side, Index: i}
	}
	for i := range b.Reserve {
		b.Reserve[i] = &Tile{Side: side, Index: i, Reserve: true}
	}
	return b
}

// Tile returns the main-grid tile at index, or nil when out of range.
func (b *Board) Tile(index int) *Tile {
	if index < 0 || index >= len(b.Main) {
		return nil
	}
	return b.Main[index]
}

// Validate checks the board's shape.
func (b *Board) Validate() error {
	if b == nil {
		return fmt.Errorf("%w: nil board", ErrInvalidShape)
	}
	if len(b.Main) != MainSize || len(b.Reserve) != ReserveSize {
		return fmt.Errorf("%w: side %s has %d main and %d reserve tiles", ErrInvalidShape, b.Side, len(b.Main), len(b.Reserve))
	}
	check := func(t *Tile, i int, reserve bool) error {
		if t == nil {
			return fmt.Errorf("%w: side %s slot %d is nil", ErrInvalidShape, b.Side, i)
		}
		if t.Side != b.Side || t.Index != i || t.Reserve != reserve {
			return fmt.Errorf("%w: side %s slot %d holds tile %s%d", ErrInvalidShape, b.Side, i, t.Side, t.Index)
		}
		return nil
	}
	for i, t := range b.Main {
		if err := check(t, i, false); err != nil {
			return err
		}
	}
	for i, t := range b.Reserve {
		if err := check(t, i, true); err != nil {
			return err
		}
	}
	if n := b.ActiveCount(); n > MaxActive {
		return fmt.Errorf("%w: side %s has %d", ErrTooManyActive, b.Side, n)
	}
	return nil
}

// ActiveCount returns the number of occupied main-grid tiles.
func (b *Board) ActiveCount() int {
	n := 0
	for _, t := range b.Main {
		if t.Occupied() {
			n++
		}
	}
	return n
}

// AliveCount returns living heroes across main grid and reserve.
func (b *Board) AliveCount() int {
	n := 0
	for _, t := range b.Main {
		if t.Alive() {
			n++
		}
	}
	for _, t := range b.Reserve {
		if t.Alive() {
			n++
		}
	}
	return n
}

// TotalHealth sums current health of living heroes on main grid and reserve.
func (b *Board) TotalHealth() int {
	sum := 0
	for _, t := range b.Main {
		if t.Alive() {
			sum += t.Health
		}
	}
	for _, t := range b.Reserve {
		if t.Alive() {
			sum += t.Health
		}
	}
	return sum
}

// Defeated reports whether the side has no living hero left.
func (b *Board) Defeated() bool {
	return b.AliveCount() == 0
}

// FindInstance returns the main-grid tile holding a hero instance.
func (b *Board) FindInstance(instanceID string) *Tile {
	if instanceID == "" {
		return nil
	}
	for _, t := range b.Main {
		if t.Hero != nil && t.Hero.InstanceID == instanceID {
			return t
		}
	}
	return nil
}

// Place seats a new instance of tpl at a main-grid index.
func (b *Board) Place(index int, tpl *catalog.HeroTemplate) (*Tile, error) {
	t := b.Tile(index)
	if t == nil {
		return nil, fmt.Errorf("%w: index %d", ErrInvalidShape, index)
	}
	if !t.Occupied() && b.ActiveCount() >= MaxActive {
		return nil, ErrTooManyActive
	}
	t.Seat(NewHeroInstance(tpl), tpl)
	return t, nil
}

// PlaceReserve seats a new instance of tpl in a reserve slot.
func (b *Board) PlaceReserve(slot int, tpl *catalog.HeroTemplate) (*Tile, error) {
	if slot < 0 || slot >= len(b.Reserve) {
		return nil, fmt.Errorf("%w: reserve slot %d", ErrInvalidShape, slot)
	}
	t := b.Reserve[slot]
	t.Seat(NewHeroInstance(tpl), tpl)
	return t, nil
}

// Slot addresses a main-grid or reserve tile for movement.
type Slot struct {
	Reserve bool `json:"reserve,omitempty"`
	Index   int  `json:"index"`
}

func (b *Board) slot(s Slot) *Tile {
	list := b.Main
	if s.Reserve {
		list = b.Reserve
	}
	if s.Index < 0 || s.Index >= len(list) {
		return nil
	}
	return list[s.Index]
}

// Move swaps the contents of two slots between rounds. Heroes carrying a
// preventMovement effect stay put, and the main grid never holds more than
// MaxActive heroes afterwards.
func (b *Board) Move(from, to Slot) error {
	src, dst := b.slot(from), b.slot(to)
	if src == nil || dst == nil {
		return fmt.Errorf("%w: slot out of range", ErrInvalidShape)
	}
	if src == dst {
		return nil
	}
	if !src.Occupied() {
		return fmt.Errorf("%w: source slot is empty", ErrMovementBlocked)
	}
	for _, t := range []*Tile{src, dst} {
		if t.Occupied() && t.Capabilities().Has(effects.FlagPreventMovement) {
			return fmt.Errorf("%w: %s is rooted", ErrMovementBlocked, t.Hero.Name)
		}
	}
	if from.Reserve && !to.Reserve && !dst.Occupied() && b.ActiveCount() >= MaxActive {
		return ErrTooManyActive
	}

	srcState, dstState := *src, *dst
	*src = dstState
	*dst = srcState
	src.Side, src.Index, src.Reserve = b.Side, from.Index, from.Reserve
	dst.Side, dst.Index, dst.Reserve = b.Side, to.Index, to.Reserve
	return nil
}

// Clone deep-copies the board.
func (b *Board) Clone() *Board {
	c := &Board{
		Side:    b.Side,
		Main:    make([]*Tile, len(b.Main)),
		Reserve: make([]*Tile, len(b.Reserve)),
	}
	for i, t := range b.Main {
		if t != nil {
			c.Main[i] = t.Clone()
		}
	}
	for i, t := range b.Reserve {
		if t != nil {
			c.Reserve[i] = t.Clone()
		}
	}
	return c
}

// State is everything one round needs: both boards, the priority player and
// the round counter.
type State struct {
	Boards   [2]*Board `json:"boards"`
	Priority Side      `json:"priority"`
	Round    int       `json:"round"`
}

// NewState returns a state with two empty boards at round 1.
func NewState() *State {
	return &State{
		Boards: [2]*Board{NewBoard(SideA), NewBoard(SideB)},
		Round:  1,
	}
}

// Board returns a side's board.
func (s *State) Board(side Side) *Board {
	return s.Boards[side]
}

// At returns the main-grid tile a token refers to.
func (s *State) At(t Token) *Tile {
	if !t.Side.Valid() {
		return nil
	}
	return s.Boards[t.Side].Tile(t.Index)
}

// Validate checks both boards and the priority player.
func (s *State) Validate() error {
	if s == nil {
		return fmt.Errorf("%w: nil state", ErrInvalidShape)
	}
	if !s.Priority.Valid() {
		return fmt.Errorf("%w: priority %d", ErrInvalidShape, s.Priority)
	}
	for i, b := range s.Boards {
		if err := b.Validate(); err != nil {
			return err
		}
		if b.Side != Side(i) {
			return fmt.Errorf("%w: board %d claims side %s", ErrInvalidShape, i, b.Side)
		}
	}
	return nil
}

// Winner returns the surviving side once the other is defeated. ok is false
// while both sides live; draw is true when both are defeated.
func (s *State) Winner() (winner Side, ok, draw bool) {
	a, b := s.Boards[SideA].Defeated(), s.Boards[SideB].Defeated()
	switch {
	case a && b:
		return SideA, true, true
	case a:
		return SideB, true, false
	case b:
		return SideA, true, false
	}
	return SideA, false, false
}

// Clone deep-copies the state.
func (s *State) Clone() *State {
	c := *s
	for i, b := range s.Boards {
		if b != nil {
			c.Boards[i] = b.Clone()
		}
	}
	return &c
}
