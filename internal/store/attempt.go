package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
)

type attemptRepo struct {
	db  *sql.DB
	seq *sequenceCounter
}

func (r *attemptRepo) Record(ctx context.Context, a *QuizAttempt) error {
	if a.ConceptID == "" {
		return fmt.Errorf("record attempt: empty concept id")
	}
	seq, err := r.seq.Next(ctx)
	if err != nil {
		return err
	}
	a.ID = uuid.NewString()
	a.Sequence = seq
	a.CreatedAt = time.Now().UTC().Truncate(time.Millisecond)

	_, err = r.db.ExecContext(ctx,
		`INSERT INTO quiz_attempts (id, sequence, concept_id, answer, correct, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		a.ID, a.Sequence, a.ConceptID, a.Answer, boolInt(a.Correct), toMillis(a.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("save attempt: %w", err)
	}
	return nil
}

func (r *attemptRepo) ForConcept(ctx context.Context, conceptID string) ([]QuizAttempt, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, sequence, concept_id, answer, correct, created_at
		 FROM quiz_attempts WHERE concept_id = ? ORDER BY sequence`, conceptID)
	if err != nil {
		return nil, fmt.Errorf("query attempts: %w", err)
	}
	defer rows.Close()

	var out []QuizAttempt
	for rows.Next() {
		var (
			a       QuizAttempt
			correct int
			created int64
		)
		if err := rows.Scan(&a.ID, &a.Sequence, &a.ConceptID, &a.Answer, &correct, &created); err != nil {
			return nil, fmt.Errorf("scan attempt: %w", err)
		}
		a.Correct = correct != 0
		a.CreatedAt = fromMillis(created)
		out = append(out, a)
	}
	return out, rows.Err()
}

func (r *attemptRepo) Stats(ctx context.Context) ([]AttemptStats, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT concept_id, COUNT(*), COALESCE(SUM(correct), 0)
		 FROM quiz_attempts GROUP BY concept_id ORDER BY concept_id`)
	if err != nil {
		return nil, fmt.Errorf("query attempt stats: %w", err)
	}
	defer rows.Close()

	var out []AttemptStats
	for rows.Next() {
		var s AttemptStats
		if err := rows.Scan(&s.ConceptID, &s.Attempts, &s.Correct); err != nil {
			return nil, fmt.Errorf("scan attempt stats: %w", err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}
