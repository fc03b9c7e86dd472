package engine

import (
	"github.com/lawnchairsociety/gridclash/internal/board"
	"github.com/lawnchairsociety/gridclash/internal/logger"
)

// maxReactionsPerCast bounds the reaction queue of a single cast.
const maxReactionsPerCast = 2 * board.MainSize

type reactionKind string

const (
	reactionRetaliate reactionKind = "retaliate"
	reactionBacklash  reactionKind = "backlash"
)

// reaction is a pending strike back queued while a cast applies its actions.
type reaction struct {
	kind   reactionKind
	source *board.Tile
	victim *board.Tile
	amount int
	effect string
}

// reactionQueue collects reactions during a cast's token loop. A source
// retaliates against a given victim at most once per cast.
type reactionQueue struct {
	limit int
	items []reaction
	seen  map[reactionKey]bool
}

type reactionKey struct {
	kind   reactionKind
	source board.Token
	victim board.Token
}

func newReactionQueue(limit int) reactionQueue {
	return reactionQueue{limit: limit, seen: make(map[reactionKey]bool)}
}

func (q *reactionQueue) reset() {
	q.items = q.items[:0]
	clear(q.seen)
}

func (q *reactionQueue) push(r reaction) bool {
	key := reactionKey{kind: r.kind, source: r.source.Token(), victim: r.victim.Token()}
	if r.kind == reactionRetaliate && q.seen[key] {
		return false
	}
	if len(q.items) >= q.limit {
		logger.Debug("Reaction queue full, dropping reaction", "kind", string(r.kind), "effect", r.effect)
		return false
	}
	q.seen[key] = true
	q.items = append(q.items, r)
	return true
}

// drainReactions resolves queued reactions in order. Reaction damage never
// triggers further reactions, so the queue cannot grow while draining.
func (rc *roundContext) drainReactions() {
	items := rc.reactions.items
	rc.reactions.items = nil
	for _, r := range items {
		if !r.victim.Alive() {
			continue
		}
		if r.kind == reactionRetaliate && !r.source.Alive() {
			continue
		}
		rc.emit(Step{
			Type:    StepReaction,
			Actor:   actor(r.source),
			Targets: []board.Token{r.victim.Token()},
			Effect:  r.effect,
			Amount:  r.amount,
			Outcome: string(r.kind),
		})
		rc.opts.pause(rc.opts.ReactionDelay)
		rc.dealDamage(r.source, r.victim, r.amount, "", r.effect, false)
	}
}
