package targeting

import (
	"sort"

	"github.com/lawnchairsociety/gridclash/internal/board"
)

// candidate is a tile under consideration with its sort key.
type candidate struct {
	tile *board.Tile
	key  int
}

// rankBy orders tiles by key (descending when high is true) and breaks ties by
// book rank. Every extremal and distance selection funnels through here.
func rankBy(tiles []*board.Tile, high bool, key func(*board.Tile) int) []*board.Tile {
	cands := make([]candidate, len(tiles))
	for i, t := range tiles {
		cands[i] = candidate{tile: t, key: key(t)}
	}
	sort.SliceStable(cands, func(i, j int) bool {
		a, b := cands[i], cands[j]
		if a.key != b.key {
			if high {
				return a.key > b.key
			}
			return a.key < b.key
		}
		return board.BookRank(a.tile.Index) < board.BookRank(b.tile.Index)
	})
	out := make([]*board.Tile, len(cands))
	for i, c := range cands {
		out[i] = c.tile
	}
	return out
}

// inBookOrder returns the tiles of b that pass keep, in book order.
func inBookOrder(b *board.Board, keep func(*board.Tile) bool) []*board.Tile {
	var out []*board.Tile
	for _, i := range board.BookOrder() {
		if t := b.Main[i]; keep(t) {
			out = append(out, t)
		}
	}
	return out
}

func alive(t *board.Tile) bool  { return t.Alive() }
func corpse(t *board.Tile) bool { return t.Corpse() }
