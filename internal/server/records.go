package server

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/lawnchairsociety/gridclash/internal/board"
	"github.com/lawnchairsociety/gridclash/internal/database"
	"github.com/lawnchairsociety/gridclash/internal/engine"
)

// NewBattleRecord converts a finished battle into a database record. Hero
// results list the starting lineup of each side; a hero survived when its
// instance is still alive at the end.
func NewBattleRecord(a, b engine.Lineup, res *engine.BattleResult) (*database.BattleRecord, error) {
	lineupA, err := json.Marshal(a)
	if err != nil {
		return nil, err
	}
	lineupB, err := json.Marshal(b)
	if err != nil {
		return nil, err
	}
	steps, err := json.Marshal(res.Steps)
	if err != nil {
		return nil, err
	}

	rec := &database.BattleRecord{
		ID:        uuid.NewString(),
		CreatedAt: time.Now().UTC(),
		Rounds:    res.Rounds,
		Draw:      res.Draw,
		TimedOut:  res.TimedOut,
		LineupA:   lineupA,
		LineupB:   lineupB,
		StepCount: len(res.Steps),
		Steps:     steps,
	}
	if res.Winner != nil {
		rec.Winner = res.Winner.String()
	}

	for _, side := range []board.Side{board.SideA, board.SideB} {
		brd := res.State.Board(side)
		for _, list := range [][]*board.Tile{brd.Main, brd.Reserve} {
			for _, t := range list {
				if t.Hero == nil {
					continue
				}
				rec.Heroes = append(rec.Heroes, database.HeroResult{
					Side:     side.String(),
					HeroID:   t.Hero.HeroID,
					Won:      res.Winner != nil && *res.Winner == side,
					Survived: t.Alive(),
				})
			}
		}
	}
	return rec, nil
}

// battleResponse is the API view of a stored battle.
type battleResponse struct {
	ID        string                `json:"id"`
	CreatedAt time.Time             `json:"createdAt"`
	Rounds    int                   `json:"rounds"`
	Winner    string                `json:"winner,omitempty"`
	Draw      bool                  `json:"draw,omitempty"`
	TimedOut  bool                  `json:"timedOut,omitempty"`
	StepCount int                   `json:"stepCount"`
	LineupA   json.RawMessage       `json:"lineupA,omitempty"`
	LineupB   json.RawMessage       `json:"lineupB,omitempty"`
	Steps     json.RawMessage       `json:"steps,omitempty"`
	Heroes    []database.HeroResult `json:"heroes,omitempty"`
}

func toBattleResponse(r *database.BattleRecord) battleResponse {
	out := battleResponse{
		ID:        r.ID,
		CreatedAt: r.CreatedAt,
		Rounds:    r.Rounds,
		Winner:    r.Winner,
		Draw:      r.Draw,
		TimedOut:  r.TimedOut,
		StepCount: r.StepCount,
		Heroes:    r.Heroes,
	}
	if len(r.LineupA) > 0 {
		out.LineupA = json.RawMessage(r.LineupA)
	}
	if len(r.LineupB) > 0 {
		out.LineupB = json.RawMessage(r.LineupB)
	}
	if len(r.Steps) > 0 {
		out.Steps = json.RawMessage(r.Steps)
	}
	return out
}

// decodeSteps reads a stored step log back for replay.
func decodeSteps(r *database.BattleRecord) ([]engine.Step, error) {
	var steps []engine.Step
	if err := json.Unmarshal(r.Steps, &steps); err != nil {
		return nil, err
	}
	return steps, nil
}
