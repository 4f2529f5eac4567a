package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

type masteryRepo struct {
	db  *sql.DB
	seq *sequenceCounter
}

func (r *masteryRepo) Master(ctx context.Context, conceptID string) error {
	if conceptID == "" {
		return fmt.Errorf("master: empty concept id")
	}
	seq, err := r.seq.Next(ctx)
	if err != nil {
		return err
	}
	_, err = r.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO mastered (concept_id, sequence, mastered_at) VALUES (?, ?, ?)`,
		conceptID, seq, toMillis(time.Now()),
	)
	if err != nil {
		return fmt.Errorf("save mastery: %w", err)
	}
	return nil
}

func (r *masteryRepo) Unmaster(ctx context.Context, conceptID string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM mastered WHERE concept_id = ?`, conceptID); err != nil {
		return fmt.Errorf("delete mastery: %w", err)
	}
	return nil
}

func (r *masteryRepo) Mastered(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT concept_id FROM mastered ORDER BY sequence`)
	if err != nil {
		return nil, fmt.Errorf("query mastered: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan mastered: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (r *masteryRepo) Reset(ctx context.Context) (int, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin reset: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `DELETE FROM mastered`)
	if err != nil {
		return 0, fmt.Errorf("clear mastered: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM quiz_attempts`); err != nil {
		return 0, fmt.Errorf("clear attempts: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit reset: %w", err)
	}
	n, _ := res.RowsAffected()
	return int(n), nil
}
