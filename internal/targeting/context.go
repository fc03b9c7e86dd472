// Package targeting turns a spell's target descriptors into the tiles it hits.
// Resolution never mutates the board.
package targeting

import (
	"github.com/lawnchairsociety/gridclash/internal/board"
	"github.com/lawnchairsociety/gridclash/internal/catalog"
	"github.com/lawnchairsociety/gridclash/internal/effects"
)

// Options adjust resolution for a single cast.
type Options struct {
	// BypassTriggers ignores single-target protection.
	BypassTriggers bool
	// ForceEnemySide resolves every non-self descriptor against the enemy board.
	ForceEnemySide bool
	// ForceAllySide resolves every non-self descriptor against the owner's board.
	ForceAllySide bool
}

// ResolutionContext carries everything one resolution needs. It is built per
// cast and passed down the call chain.
type ResolutionContext struct {
	State   *board.State
	Caster  board.Token
	Owner   board.Side
	Options Options

	casterCaps effects.Capabilities
	caps       map[*board.Tile]effects.Capabilities
}

// NewContext builds a context for a caster acting for its own side.
func NewContext(state *board.State, caster board.Token, opts Options) *ResolutionContext {
	ctx := &ResolutionContext{
		State:   state,
		Caster:  caster,
		Owner:   caster.Side,
		Options: opts,
		caps:    make(map[*board.Tile]effects.Capabilities),
	}
	if t := state.At(caster); t != nil {
		ctx.casterCaps = ctx.capsOf(t)
	}
	return ctx
}

// capsOf folds t's effects once per resolution. Resolution does not mutate
// the board, so the folded set stays valid for the whole cast.
func (ctx *ResolutionContext) capsOf(t *board.Tile) effects.Capabilities {
	if ctx.caps == nil {
		ctx.caps = make(map[*board.Tile]effects.Capabilities)
	}
	c, ok := ctx.caps[t]
	if !ok {
		c = t.Capabilities()
		ctx.caps[t] = c
	}
	return c
}

// CasterTile returns the caster's tile.
func (ctx *ResolutionContext) CasterTile() *board.Tile {
	return ctx.State.At(ctx.Caster)
}

// sideOf returns the board a descriptor resolves against.
func (ctx *ResolutionContext) sideOf(d catalog.TargetDescriptor) board.Side {
	switch {
	case ownBoard[d.Type]:
		return ctx.Owner
	case enemyBoard[d.Type]:
		return ctx.Owner.Opponent()
	case ctx.Options.ForceEnemySide:
		return ctx.Owner.Opponent()
	case ctx.Options.ForceAllySide:
		return ctx.Owner
	}
	if d.Side == catalog.SideAlly {
		return ctx.Owner
	}
	return ctx.Owner.Opponent()
}

func (ctx *ResolutionContext) enemy(d catalog.TargetDescriptor) bool {
	return ctx.sideOf(d) != ctx.Owner
}

// Target is a resolved token tagged with the descriptor that produced it.
type Target struct {
	board.Token
	Descriptor int `json:"descriptor"`
}

// Tokens strips descriptor tags.
func Tokens(targets []Target) []board.Token {
	out := make([]board.Token, len(targets))
	for i, t := range targets {
		out[i] = t.Token
	}
	return out
}
