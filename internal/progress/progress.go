// Package progress tracks which quiz-bearing concepts the learner has
// mastered and answers quizzes against the store.
package progress

import (
	"context"
	"fmt"
	"sync"

	"github.com/abhisek/orbit/internal/concept"
	"github.com/abhisek/orbit/internal/store"
)

// Outcome is the result of answering a quiz.
type Outcome struct {
	Correct       bool
	CorrectAnswer string
	// NewlyMastered is set when this answer mastered the concept.
	NewlyMastered bool
}

// Tracker holds the mastered set in memory and writes through to the store.
type Tracker struct {
	mu       sync.Mutex
	mastery  store.MasteryRepo
	attempts store.AttemptRepo

	quizIDs  []string
	quizSet  map[string]bool
	order    []string
	mastered map[string]bool
}

// NewTracker loads the mastered set and indexes the quizzes under root.
func NewTracker(ctx context.Context, root *concept.Node, mastery store.MasteryRepo, attempts store.AttemptRepo) (*Tracker, error) {
	ids, err := mastery.Mastered(ctx)
	if err != nil {
		return nil, fmt.Errorf("load mastered concepts: %w", err)
	}
	t := &Tracker{
		mastery:  mastery,
		attempts: attempts,
		mastered: make(map[string]bool, len(ids)),
	}
	for _, id := range ids {
		if !t.mastered[id] {
			t.mastered[id] = true
			t.order = append(t.order, id)
		}
	}
	t.SetConcepts(root)
	return t, nil
}

// SetConcepts re-indexes the quizzes after the concept tree is replaced.
// Mastered ids outside the new tree are kept but no longer count.
func (t *Tracker) SetConcepts(root *concept.Node) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.quizIDs = concept.QuizIDs(root)
	t.quizSet = make(map[string]bool, len(t.quizIDs))
	for _, id := range t.quizIDs {
		t.quizSet[id] = true
	}
}

// Mastered returns the mastered ids in the order they were mastered.
func (t *Tracker) Mastered() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]string(nil), t.order...)
}

// IsMastered reports whether id is mastered.
func (t *Tracker) IsMastered(id string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.mastered[id]
}

// Counts returns how many quiz-bearing concepts are mastered, out of how many.
func (t *Tracker) Counts() (mastered, total int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for _, id := range t.quizIDs {
		if t.mastered[id] {
			mastered++
		}
	}
	return mastered, len(t.quizIDs)
}

// Percent returns mastered quiz-bearing concepts as a percentage of all
// quiz-bearing concepts, 0 when there are none.
func (t *Tracker) Percent() float64 {
	m, total := t.Counts()
	if total == 0 {
		return 0
	}
	return float64(m) / float64(total) * 100
}

// Complete reports whether every quiz-bearing concept is mastered.
func (t *Tracker) Complete() bool {
	m, total := t.Counts()
	return total > 0 && m == total
}

// Answer records an answer to n's quiz. A correct answer masters n.
func (t *Tracker) Answer(ctx context.Context, n *concept.Node, answer string) (Outcome, error) {
	if n == nil || n.Quiz == nil {
		return Outcome{}, fmt.Errorf("concept has no quiz")
	}
	out := Outcome{
		Correct:       answer == n.Quiz.CorrectAnswer,
		CorrectAnswer: n.Quiz.CorrectAnswer,
	}
	attempt := &store.QuizAttempt{ConceptID: n.ID, Answer: answer, Correct: out.Correct}
	if err := t.attempts.Record(ctx, attempt); err != nil {
		return out, fmt.Errorf("record attempt: %w", err)
	}
	if !out.Correct || t.IsMastered(n.ID) {
		return out, nil
	}
	if err := t.mastery.Master(ctx, n.ID); err != nil {
		return out, fmt.Errorf("master %s: %w", n.ID, err)
	}

	t.mu.Lock()
	t.mastered[n.ID] = true
	t.order = append(t.order, n.ID)
	t.mu.Unlock()
	out.NewlyMastered = true
	return out, nil
}

// Reset clears all progress.
func (t *Tracker) Reset(ctx context.Context) error {
	if _, err := t.mastery.Reset(ctx); err != nil {
		return fmt.Errorf("reset progress: %w", err)
	}
	t.mu.Lock()
	t.mastered = make(map[string]bool)
	t.order = nil
	t.mu.Unlock()
	return nil
}
