package engine

import (
	"github.com/lawnchairsociety/gridclash/internal/board"
	"github.com/lawnchairsociety/gridclash/internal/effects"
)

// StepType tags an entry of the step log.
type StepType string

const (
	StepRoundStart     StepType = "roundStart"
	StepCast           StepType = "cast"
	StepDamage         StepType = "damage"
	StepHeal           StepType = "heal"
	StepEnergy         StepType = "energy"
	StepStat           StepType = "stat"
	StepEffectApply    StepType = "effectApply"
	StepEffectExpire   StepType = "effectExpire"
	StepEffectRemove   StepType = "effectRemove"
	StepSurvive        StepType = "survive"
	StepDeath          StepType = "death"
	StepRevive         StepType = "revive"
	StepCorpseConsumed StepType = "corpseConsumed"
	StepReaction       StepType = "reaction"
	StepRoundComplete  StepType = "roundComplete"
	StepGameEnd        StepType = "gameEnd"
)

// OutcomeConsumed marks an effectRemove step for a single-use effect that
// fired, as opposed to one stripped by a cleanse.
const OutcomeConsumed = "consumed"

// Step is one entry of the step log. It carries enough to replay the change
// without consulting the engine: who acted, who was affected, how much, and the
// resulting value.
type Step struct {
	Seq      int           `json:"seq"`
	Round    int           `json:"round"`
	Type     StepType      `json:"type"`
	Actor    *board.Token  `json:"actor,omitempty"`
	Targets  []board.Token `json:"targets,omitempty"`
	Spell    string        `json:"spell,omitempty"`
	Effect   string        `json:"effect,omitempty"`
	Stat     effects.Stat  `json:"stat,omitempty"`
	Amount   int           `json:"amount,omitempty"`
	Value    int           `json:"value"`
	Outcome  string        `json:"outcome,omitempty"`
	Priority *board.Side   `json:"priority,omitempty"`
	Winner   *board.Side   `json:"winner,omitempty"`
	Draw     bool          `json:"draw,omitempty"`
}

func actor(t *board.Tile) *board.Token {
	if t == nil {
		return nil
	}
	tok := t.Token()
	return &tok
}

func sidePtr(s board.Side) *board.Side {
	return &s
}

// Filter returns the steps of the given types, in order.
func Filter(steps []Step, types ...StepType) []Step {
	want := make(map[StepType]bool, len(types))
	for _, t := range types {
		want[t] = true
	}
	var out []Step
	for _, s := range steps {
		if want[s.Type] {
			out = append(out, s)
		}
	}
	return out
}
