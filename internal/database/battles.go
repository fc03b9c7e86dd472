package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// BattleRecord is a stored battle. Lineups and Steps are opaque JSON documents
// owned by the caller.
type BattleRecord struct {
	ID        string
	CreatedAt time.Time
	Rounds    int
	Winner    string // "A", "B", or empty on a draw
	Draw      bool
	TimedOut  bool
	LineupA   []byte
	LineupB   []byte
	StepCount int
	Steps     []byte
	Heroes    []HeroResult
}

// HeroResult is one hero's outcome in a stored battle.
type HeroResult struct {
	Side     string `json:"side"`
	HeroID   string `json:"heroId"`
	Won      bool   `json:"won"`
	Survived bool   `json:"survived"`
}

// HeroStat aggregates a hero's results across stored battles.
type HeroStat struct {
	HeroID   string `json:"heroId"`
	Battles  int    `json:"battles"`
	Wins     int    `json:"wins"`
	Survived int    `json:"survived"`
}

// WinRate returns Wins/Battles, zero when the hero never played.
func (s HeroStat) WinRate() float64 {
	if s.Battles == 0 {
		return 0
	}
	return float64(s.Wins) / float64(s.Battles)
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// SaveBattle stores a battle and its hero results in one transaction.
func (d *Database) SaveBattle(ctx context.Context, r *BattleRecord) error {
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now().UTC()
	}

	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, d.qb.Build(`
		INSERT INTO battles (id, created_at, rounds, winner, draw, timed_out, lineup_a, lineup_b, step_count, steps)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`), r.ID, r.CreatedAt, r.Rounds, r.Winner, boolToInt(r.Draw), boolToInt(r.TimedOut),
		string(r.LineupA), string(r.LineupB), r.StepCount, string(r.Steps))
	if err != nil {
		if d.dialect.IsDuplicateKeyError(err) {
			return fmt.Errorf("%w: %s", ErrDuplicate, r.ID)
		}
		return err
	}

	insertHero := d.qb.Build(`
		INSERT INTO battle_heroes (battle_id, side, hero_id, won, survived)
		VALUES (?, ?, ?, ?, ?)
	`)
	for _, h := range r.Heroes {
		if _, err := tx.ExecContext(ctx, insertHero, r.ID, h.Side, h.HeroID, boolToInt(h.Won), boolToInt(h.Survived)); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// GetBattle returns a stored battle with its step log and hero results.
func (d *Database) GetBattle(ctx context.Context, id string) (*BattleRecord, error) {
	row := d.db.QueryRowContext(ctx, d.qb.Build(`
		SELECT id, created_at, rounds, winner, draw, timed_out, lineup_a, lineup_b, step_count, steps
		FROM battles
		WHERE id = ?
	`), id)

	r := &BattleRecord{}
	var lineupA, lineupB, steps string
	err := row.Scan(&r.ID, &r.CreatedAt, &r.Rounds, &r.Winner, &r.Draw, &r.TimedOut,
		&lineupA, &lineupB, &r.StepCount, &steps)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, err
	}
	r.LineupA, r.LineupB, r.Steps = []byte(lineupA), []byte(lineupB), []byte(steps)

	rows, err := d.db.QueryContext(ctx, d.qb.Build(`
		SELECT side, hero_id, won, survived
		FROM battle_heroes
		WHERE battle_id = ?
		ORDER BY id ASC
	`), id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var h HeroResult
		if err := rows.Scan(&h.Side, &h.HeroID, &h.Won, &h.Survived); err != nil {
			return nil, err
		}
		r.Heroes = append(r.Heroes, h)
	}
	return r, rows.Err()
}

// ListBattles returns the newest battles first without their step logs.
func (d *Database) ListBattles(ctx context.Context, limit int) ([]BattleRecord, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := d.db.QueryContext(ctx, d.qb.Build(`
		SELECT id, created_at, rounds, winner, draw, timed_out, step_count
		FROM battles
		ORDER BY created_at DESC, id ASC
		LIMIT ?
	`), limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var battles []BattleRecord
	for rows.Next() {
		var r BattleRecord
		if err := rows.Scan(&r.ID, &r.CreatedAt, &r.Rounds, &r.Winner, &r.Draw, &r.TimedOut, &r.StepCount); err != nil {
			return nil, err
		}
		battles = append(battles, r)
	}
	return battles, rows.Err()
}

// CountBattles returns the number of stored battles.
func (d *Database) CountBattles(ctx context.Context) (int, error) {
	var count int
	err := d.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM battles`).Scan(&count)
	return count, err
}

// HeroStats aggregates hero results across every stored battle, ordered by
// hero ID.
func (d *Database) HeroStats(ctx context.Context) ([]HeroStat, error) {
	rows, err := d.db.QueryContext(ctx, `
		SELECT hero_id, COUNT(*), COALESCE(SUM(won), 0), COALESCE(SUM(survived), 0)
		FROM battle_heroes
		GROUP BY hero_id
		ORDER BY hero_id ASC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var stats []HeroStat
	for rows.Next() {
		var s HeroStat
		if err := rows.Scan(&s.HeroID, &s.Battles, &s.Wins, &s.Survived); err != nil {
			return nil, err
		}
		stats = append(stats, s)
	}
	return stats, rows.Err()
}
