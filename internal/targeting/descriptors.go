package targeting

import (
	"github.com/lawnchairsociety/gridclash/internal/board"
	"github.com/lawnchairsociety/gridclash/internal/catalog"
	"github.com/lawnchairsociety/gridclash/internal/effects"
)

// selection is a descriptor's candidate list in order of preference. Region
// selections hit every candidate; ranked ones take the first d.Limit().
type selection struct {
	tiles  []*board.Tile
	region bool
}

func ranked(tiles []*board.Tile) selection { return selection{tiles: tiles} }
func region(tiles []*board.Tile) selection { return selection{tiles: tiles, region: true} }

type selector func(ctx *ResolutionContext, d catalog.TargetDescriptor, b *board.Board) selection

// ownBoard types always resolve against the caster's own board, enemyBoard
// types always against the opponent's.
var (
	ownBoard = map[catalog.DescriptorType]bool{
		catalog.TargetSelf:            true,
		catalog.TargetAdjacentToSelf:  true,
		catalog.TargetOwnColumn:       true,
		catalog.TargetNearestDeadAlly: true,
	}
	enemyBoard = map[catalog.DescriptorType]bool{
		catalog.TargetNearestDeadEnemy: true,
	}
)

var selectors = map[catalog.DescriptorType]selector{
	catalog.TargetSelf:              selectSelf,
	catalog.TargetAdjacentToSelf:    selectAdjacentToSelf,
	catalog.TargetColumn:            selectColumn,
	catalog.TargetOwnColumn:         selectOwnColumn,
	catalog.TargetFacing:            selectFacing,
	catalog.TargetProjectile:        selectProjectile,
	catalog.TargetProjectilePlusOne: selectProjectilePlusOne,

	catalog.TargetBoard:            selectBoard,
	catalog.TargetFrontRow:         selectRow(catalog.RowFront),
	catalog.TargetMiddleRow:        selectRow(catalog.RowMiddle),
	catalog.TargetBackRow:          selectRow(catalog.RowBack),
	catalog.TargetFirstOccupiedRow: selectOccupiedRow(false),
	catalog.TargetLastOccupiedRow:  selectOccupiedRow(true),
	catalog.TargetOwnRow:           selectOwnRow,
	catalog.TargetCornerTiles:      selectCorners,
	catalog.TargetCenterTile:       selectCenter,
	catalog.TargetFirst:            selectFirst,
	catalog.TargetLast:             selectLast,

	catalog.TargetHighestEnergy:          selectStat(true, stat(effects.StatEnergy)),
	catalog.TargetLowestEnergy:           selectStat(false, stat(effects.StatEnergy)),
	catalog.TargetHighestSpeed:           selectStat(true, stat(effects.StatSpeed)),
	catalog.TargetLowestSpeed:            selectStat(false, stat(effects.StatSpeed)),
	catalog.TargetHighestArmor:           selectStat(true, stat(effects.StatArmor)),
	catalog.TargetLowestArmor:            selectStat(false, stat(effects.StatArmor)),
	catalog.TargetHighestHealth:          selectStat(true, stat(effects.StatHealth)),
	catalog.TargetLowestHealth:           selectStat(false, stat(effects.StatHealth)),
	catalog.TargetMostMissingHealth:      selectStat(true, (*board.Tile).MissingHealth),
	catalog.TargetHighestSpellPower:      selectStat(true, stat(effects.StatSpellPower)),
	catalog.TargetLowestSpellPower:       selectStat(false, stat(effects.StatSpellPower)),
	catalog.TargetHighestHealthPlusArmor: selectStat(true, sum(effects.StatHealth, effects.StatArmor)),
	catalog.TargetLowestHealthPlusArmor:  selectStat(false, sum(effects.StatHealth, effects.StatArmor)),
	catalog.TargetHighestSpeedPlusEnergy: selectStat(true, sum(effects.StatSpeed, effects.StatEnergy)),

	catalog.TargetNearest:           selectByDistance(false),
	catalog.TargetFurthest:          selectByDistance(true),
	catalog.TargetAdjacent:          selectAdjacent,
	catalog.TargetNearestWithSplash: selectNearestWithSplash,

	catalog.TargetMostBuffs:      selectEffectCount(func(t *board.Tile, _ string) int { return t.Effects.Count(effects.KindBuff) }),
	catalog.TargetMostDebuffs:    selectEffectCount(func(t *board.Tile, _ string) int { return t.Effects.Count(effects.KindDebuff) }),
	catalog.TargetMostEffects:    selectEffectCount(func(t *board.Tile, _ string) int { return len(t.Effects) }),
	catalog.TargetMostEffectName: selectEffectCount(func(t *board.Tile, name string) int { return t.Effects.StacksOf(name) }),
	catalog.TargetWithEffect:     selectWithEffect(true),
	catalog.TargetWithoutEffect:  selectWithEffect(false),

	catalog.TargetNearestDeadAlly:  selectNearestCorpse,
	catalog.TargetNearestDeadEnemy: selectNearestCorpse,
}

// Known reports whether a descriptor type has a selector.
func Known(t catalog.DescriptorType) bool {
	_, ok := selectors[t]
	return ok
}

func stat(s effects.Stat) func(*board.Tile) int {
	return func(t *board.Tile) int { return t.Stat(s) }
}

func sum(a, b effects.Stat) func(*board.Tile) int {
	return func(t *board.Tile) int { return t.Stat(a) + t.Stat(b) }
}

// column returns the column on b lined up with the caster: the mirrored column
// across the front line, or the caster's own column on its own board.
func (ctx *ResolutionContext) column(b *board.Board) int {
	col := board.ColOf(ctx.Caster.Index)
	if b.Side != ctx.Caster.Side {
		return board.FacingColumn(col)
	}
	return col
}

func columnTiles(b *board.Board, col int) []*board.Tile {
	var out []*board.Tile
	for _, row := range catalog.Rows {
		if t := b.Main[board.IndexAt(row, col)]; t.Alive() {
			out = append(out, t)
		}
	}
	return out
}

func selectSelf(ctx *ResolutionContext, _ catalog.TargetDescriptor, _ *board.Board) selection {
	if t := ctx.CasterTile(); t.Alive() {
		return ranked([]*board.Tile{t})
	}
	return selection{}
}

func selectAdjacentToSelf(ctx *ResolutionContext, _ catalog.TargetDescriptor, b *board.Board) selection {
	var out []*board.Tile
	for _, i := range board.Neighbors(ctx.Caster.Index) {
		if t := b.Main[i]; t.Alive() {
			out = append(out, t)
		}
	}
	return region(out)
}

func selectColumn(ctx *ResolutionContext, _ catalog.TargetDescriptor, b *board.Board) selection {
	return region(columnTiles(b, ctx.column(b)))
}

func selectOwnColumn(ctx *ResolutionContext, _ catalog.TargetDescriptor, b *board.Board) selection {
	return region(columnTiles(b, board.ColOf(ctx.Caster.Index)))
}

// selectFacing prefers the tile directly across in the caster's row, then the
// rest of that column front to back.
func selectFacing(ctx *ResolutionContext, _ catalog.TargetDescriptor, b *board.Board) selection {
	col := ctx.column(b)
	row := board.RowOf(ctx.Caster.Index)
	var out []*board.Tile
	if t := b.Main[board.IndexAt(row, col)]; t.Alive() {
		out = append(out, t)
	}
	for _, t := range columnTiles(b, col) {
		if t.Row() != row {
			out = append(out, t)
		}
	}
	return ranked(out)
}

func selectProjectile(ctx *ResolutionContext, _ catalog.TargetDescriptor, b *board.Board) selection {
	return ranked(columnTiles(b, ctx.column(b)))
}

// selectProjectilePlusOne hits the first tile in the column and the one behind
// it.
func selectProjectilePlusOne(ctx *ResolutionContext, _ catalog.TargetDescriptor, b *board.Board) selection {
	tiles := columnTiles(b, ctx.column(b))
	if len(tiles) == 0 {
		return region(nil)
	}
	first := tiles[0]
	out := []*board.Tile{first}
	if first.Row() < catalog.RowBack {
		if behind := b.Main[first.Index+board.Columns]; behind.Alive() {
			out = append(out, behind)
		}
	}
	return region(out)
}

func selectBoard(_ *ResolutionContext, _ catalog.TargetDescriptor, b *board.Board) selection {
	return region(inBookOrder(b, alive))
}

func selectRow(row catalog.Row) selector {
	return func(_ *ResolutionContext, _ catalog.TargetDescriptor, b *board.Board) selection {
		return region(inBookOrder(b, func(t *board.Tile) bool { return t.Alive() && t.Row() == row }))
	}
}

func selectOccupiedRow(last bool) selector {
	return func(_ *ResolutionContext, _ catalog.TargetDescriptor, b *board.Board) selection {
		rows := catalog.Rows
		for i := range rows {
			row := rows[i]
			if last {
				row = rows[len(rows)-1-i]
			}
			tiles := inBookOrder(b, func(t *board.Tile) bool { return t.Alive() && t.Row() == row })
			if len(tiles) > 0 {
				return region(tiles)
			}
		}
		return region(nil)
	}
}

func selectOwnRow(ctx *ResolutionContext, d catalog.TargetDescriptor, b *board.Board) selection {
	return selectRow(board.RowOf(ctx.Caster.Index))(ctx, d, b)
}

func selectCorners(_ *ResolutionContext, _ catalog.TargetDescriptor, b *board.Board) selection {
	return region(inBookOrder(b, func(t *board.Tile) bool { return t.Alive() && board.IsCorner(t.Index) }))
}

func selectCenter(_ *ResolutionContext, _ catalog.TargetDescriptor, b *board.Board) selection {
	if t := b.Main[4]; t.Alive() {
		return ranked([]*board.Tile{t})
	}
	return selection{}
}

func selectFirst(_ *ResolutionContext, _ catalog.TargetDescriptor, b *board.Board) selection {
	return ranked(inBookOrder(b, alive))
}

func selectLast(_ *ResolutionContext, _ catalog.TargetDescriptor, b *board.Board) selection {
	tiles := inBookOrder(b, alive)
	for i, j := 0, len(tiles)-1; i < j; i, j = i+1, j-1 {
		tiles[i], tiles[j] = tiles[j], tiles[i]
	}
	return ranked(tiles)
}

func selectStat(high bool, key func(*board.Tile) int) selector {
	return func(_ *ResolutionContext, _ catalog.TargetDescriptor, b *board.Board) selection {
		return ranked(rankBy(inBookOrder(b, alive), high, key))
	}
}

func selectByDistance(furthest bool) selector {
	return func(ctx *ResolutionContext, _ catalog.TargetDescriptor, b *board.Board) selection {
		return ranked(rankBy(inBookOrder(b, alive), furthest, ctx.distance))
	}
}

func (ctx *ResolutionContext) distance(t *board.Tile) int {
	return board.Distance(ctx.Caster, t.Token())
}

func selectAdjacent(ctx *ResolutionContext, _ catalog.TargetDescriptor, b *board.Board) selection {
	return region(inBookOrder(b, func(t *board.Tile) bool { return t.Alive() && ctx.distance(t) == 1 }))
}

// selectNearestWithSplash hits the nearest tile and its living neighbors.
func selectNearestWithSplash(ctx *ResolutionContext, _ catalog.TargetDescriptor, b *board.Board) selection {
	tiles := rankBy(inBookOrder(b, alive), false, ctx.distance)
	if len(tiles) == 0 {
		return region(nil)
	}
	primary := tiles[0]
	out := []*board.Tile{primary}
	for _, i := range board.Neighbors(primary.Index) {
		if t := b.Main[i]; t.Alive() {
			out = append(out, t)
		}
	}
	return region(out)
}

// selectEffectCount ranks tiles carrying at least one matching effect.
func selectEffectCount(count func(t *board.Tile, name string) int) selector {
	return func(_ *ResolutionContext, d catalog.TargetDescriptor, b *board.Board) selection {
		key := func(t *board.Tile) int { return count(t, d.Effect) }
		tiles := inBookOrder(b, func(t *board.Tile) bool { return t.Alive() && key(t) > 0 })
		return ranked(rankBy(tiles, true, key))
	}
}

// selectWithEffect returns every tile carrying the named effect, or ranks the
// tiles lacking it in book order.
func selectWithEffect(with bool) selector {
	return func(_ *ResolutionContext, d catalog.TargetDescriptor, b *board.Board) selection {
		tiles := inBookOrder(b, func(t *board.Tile) bool {
			return t.Alive() && (t.Effects.Find(d.Effect) != nil) == with
		})
		if with {
			return region(tiles)
		}
		return ranked(tiles)
	}
}

func selectNearestCorpse(ctx *ResolutionContext, _ catalog.TargetDescriptor, b *board.Board) selection {
	return ranked(rankBy(inBookOrder(b, corpse), false, ctx.distance))
}
