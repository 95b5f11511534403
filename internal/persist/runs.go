package persist

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/evogame/evolution/internal/core/event"
)

// Run is one finished level attempt.
type Run struct {
	ID         uuid.UUID
	Session    uuid.UUID
	Level      string
	Completed  bool
	Seconds    float64
	Ammo       int
	Score      int
	FinishedAt time.Time
}

// NewRun builds the record of a level outcome.
func NewRun(session uuid.UUID, o event.LevelOutcome, at time.Time) Run {
	return Run{
		ID:         uuid.New(),
		Session:    session,
		Level:      o.Level,
		Completed:  o.Completed,
		Seconds:    o.Seconds,
		Ammo:       o.Ammo,
		Score:      o.Score,
		FinishedAt: at.UTC(),
	}
}

type RunRepo struct {
	db *DB
}

func NewRunRepo(db *DB) *RunRepo {
	return &RunRepo{db: db}
}

// SaveRuns writes a batch of runs in a single transaction.
func (r *RunRepo) SaveRuns(ctx context.Context, runs []Run) error {
	tx, err := r.db.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("runs begin: %w", err)
	}
	defer tx.Rollback(ctx)

	for _, run := range runs {
		if _, err := tx.Exec(ctx,
			`INSERT INTO runs (id, session_id, level, completed, seconds, ammo, score, finished_at)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			 ON CONFLICT (id) DO NOTHING`,
			run.ID, run.Session, run.Level, run.Completed, run.Seconds, run.Ammo, run.Score, run.FinishedAt,
		); err != nil {
			return fmt.Errorf("runs insert: %w", err)
		}
	}

	return tx.Commit(ctx)
}

// Best returns the highest scoring completed runs of a level.
func (r *RunRepo) Best(ctx context.Context, level string, limit int) ([]Run, error) {
	rows, err := r.db.Pool.Query(ctx,
		`SELECT id, session_id, level, completed, seconds, ammo, score, finished_at
		 FROM runs WHERE level = $1 AND completed
		 ORDER BY score DESC, seconds ASC LIMIT $2`, level, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Run
	for rows.Next() {
		var run Run
		if err := rows.Scan(
			&run.ID, &run.Session, &run.Level, &run.Completed,
			&run.Seconds, &run.Ammo, &run.Score, &run.FinishedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, run)
	}
	return out, rows.Err()
}
