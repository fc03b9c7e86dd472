// Package board models the two-sided battle grid: a 3x3 main grid plus a
// two-slot reserve per side.
package board

import (
	"fmt"

	"github.com/lawnchairsociety/gridclash/internal/catalog"
)

const (
	MainSize    = 9
	ReserveSize = 2
	MaxActive   = 5
	Columns     = 3
)

// Side identifies one of the two players.
type Side int

const (
	SideA Side = 0
	SideB Side = 1
)

// Opponent returns the other side.
func (s Side) Opponent() Side {
	return 1 - s
}

// Valid reports whether s is SideA or SideB.
func (s Side) Valid() bool {
	return s == SideA || s == SideB
}

func (s Side) String() string {
	switch s {
	case SideA:
		return "A"
	case SideB:
		return "B"
	}
	return fmt.Sprintf("side(%d)", int(s))
}

// Token is a resolved reference to a main-grid tile.
type Token struct {
	Side  Side `json:"side"`
	Index int  `json:"index"`
}

func (t Token) String() string {
	return fmt.Sprintf("%s%d", t.Side, t.Index)
}

// RowOf returns the row of a main-grid index.
func RowOf(index int) catalog.Row {
	return catalog.Row(index / Columns)
}

// ColOf returns the column of a main-grid index from the owner's perspective.
func ColOf(index int) int {
	return index % Columns
}

// IndexAt returns the main-grid index for a row and column.
func IndexAt(row catalog.Row, col int) int {
	return int(row)*Columns + col
}

// BookRank is the canonical tie-break order within a side: front row before
// middle before back, left to right within a row. Every ordering in the engine
// and the targeting resolver goes through this function.
func BookRank(index int) int {
	return index
}

// BookOrder returns main-grid indexes sorted by BookRank.
func BookOrder() []int {
	order := make([]int, MainSize)
	for i := range order {
		order[i] = i
	}
	return order
}

// Coord places a tile on the shared battlefield. The two sides face each other
// across the front rows, so side B is mirrored: its left column lines up with
// side A's right column. Side A occupies y 0..2 and side B y 3..5.
func Coord(t Token) (x, y int) {
	row := int(RowOf(t.Index))
	col := ColOf(t.Index)
	if t.Side == SideA {
		return col, 2 - row
	}
	return Columns - 1 - col, 3 + row
}

// Distance is the Manhattan distance between two tiles on the shared grid.
func Distance(a, b Token) int {
	ax, ay := Coord(a)
	bx, by := Coord(b)
	return abs(ax-bx) + abs(ay-by)
}

// FacingColumn returns the column on the opposing side that lines up with col.
func FacingColumn(col int) int {
	return Columns - 1 - col
}

// Neighbors returns the orthogonally adjacent main-grid indexes on the same
// side, in book order.
func Neighbors(index int) []int {
	row, col := int(RowOf(index)), ColOf(index)
	out := make([]int, 0, 4)
	if row > 0 {
		out = append(out, index-Columns)
	}
	if col > 0 {
		out = append(out, index-1)
	}
	if col < Columns-1 {
		out = append(out, index+1)
	}
	if row < 2 {
		out = append(out, index+Columns)
	}
	return out
}

// IsCorner reports whether index is a corner of the 3x3 grid.
func IsCorner(index int) bool {
	switch index {
	case 0, 2, 6, 8:
		return true
	}
	return false
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
