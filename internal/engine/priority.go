package engine

import (
	"fmt"

	"github.com/lawnchairsociety/gridclash/internal/board"
)

// PriorityPolicy picks the side that wins initiative ties next round.
type PriorityPolicy interface {
	Next(state *board.State) board.Side
}

// PriorityFunc adapts a function to PriorityPolicy.
type PriorityFunc func(state *board.State) board.Side

// Next implements PriorityPolicy.
func (f PriorityFunc) Next(state *board.State) board.Side {
	return f(state)
}

// LowerHealthFirst hands priority to the side with less total health left.
// Equal totals pass priority to the other side.
var LowerHealthFirst PriorityFunc = func(state *board.State) board.Side {
	a := state.Boards[board.SideA].TotalHealth()
	b := state.Boards[board.SideB].TotalHealth()
	switch {
	case a < b:
		return board.SideA
	case b < a:
		return board.SideB
	}
	return state.Priority.Opponent()
}

// Alternate passes priority back and forth every round.
var Alternate PriorityFunc = func(state *board.State) board.Side {
	return state.Priority.Opponent()
}

// PolicyByName returns a built-in policy: "lowerHealth" (also the empty name)
// or "alternate".
func PolicyByName(name string) (PriorityPolicy, error) {
	switch name {
	case "", "lowerHealth":
		return LowerHealthFirst, nil
	case "alternate":
		return Alternate, nil
	}
	return nil, fmt.Errorf("unknown priority policy %q", name)
}
