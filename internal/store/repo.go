package store

import (
	"context"
	"time"
)

// QueryOpts narrows an LLM request query.
type QueryOpts struct {
	Limit     int       // max results (0 = unlimited)
	After     int64     // sequence > After
	Before    int64     // sequence < Before
	From      time.Time // timestamp >= From
	To        time.Time // timestamp <= To
	ConceptID string    // only requests about this concept
}

// MasteryRepo records which concepts the learner has mastered.
type MasteryRepo interface {
	// Master marks a concept mastered. Mastering twice keeps the first time.
	Master(ctx context.Context, conceptID string) error

	// Unmaster removes a concept from the mastered set.
	Unmaster(ctx context.Context, conceptID string) error

	// Mastered returns every mastered concept id in the order mastered.
	Mastered(ctx context.Context) ([]string, error)

	// Reset clears all mastery and quiz attempts. It returns how many
	// mastered concepts were removed.
	Reset(ctx context.Context) (int, error)
}

// QuizAttempt is one answer submitted to a concept's quiz.
type QuizAttempt struct {
	ID        string
	Sequence  int64
	ConceptID string
	Answer    string
	Correct   bool
	CreatedAt time.Time
}

// AttemptStats summarizes the attempts on one concept.
type AttemptStats struct {
	ConceptID string
	Attempts  int
	Correct   int
}

// AttemptRepo stores quiz attempts.
type AttemptRepo interface {
	// Record stores an attempt and fills in its ID, Sequence and CreatedAt.
	Record(ctx context.Context, a *QuizAttempt) error

	// ForConcept returns the attempts on one concept, oldest first.
	ForConcept(ctx context.Context, conceptID string) ([]QuizAttempt, error)

	// Stats returns per-concept attempt counts ordered by concept id.
	Stats(ctx context.Context) ([]AttemptStats, error)
}

// ExplorerState is what the explorer restores on the next launch.
type ExplorerState struct {
	Version  int      `json:"version"`
	Source   string   `json:"source,omitempty"`
	Expanded []string `json:"expanded"`
	Selected string   `json:"selected,omitempty"`
	Search   string   `json:"search,omitempty"`
}

// Snapshot represents a point-in-time capture of explorer state.
type Snapshot struct {
	ID        int
	Sequence  int64
	Timestamp time.Time
	Data      ExplorerState
}

// SnapshotRepo manages explorer state snapshots.
type SnapshotRepo interface {
	// Save stores a new snapshot.
	Save(ctx context.Context, snap *Snapshot) error

	// Latest returns the most recent snapshot, or nil if none exist.
	Latest(ctx context.Context) (*Snapshot, error)

	// Prune deletes all but the N most recent snapshots.
	Prune(ctx context.Context, keep int) error
}

// LLMRequestEventData is one request to an LLM provider. ConceptID names
// the concept the request was about, empty for requests about none.
type LLMRequestEventData struct {
	Provider     string
	Model        string
	ConceptID    string
	InputTokens  int
	OutputTokens int
	LatencyMs    int64
	Success      bool
	ErrorMessage string
	RequestBody  string
	ResponseBody string
}

// LLMRequestEvent is a stored LLM request.
type LLMRequestEvent struct {
	ID        int
	Sequence  int64
	Timestamp time.Time
	LLMRequestEventData
}

// LLMUsage aggregates token usage for one group of requests.
type LLMUsage struct {
	Key          string
	Requests     int
	Failures     int
	InputTokens  int
	OutputTokens int
	AvgLatencyMs int64
}

// EventRepo provides append and query access to LLM request events.
type EventRepo interface {
	// AppendLLMRequest records an LLM API call event.
	AppendLLMRequest(ctx context.Context, data LLMRequestEventData) error

	// QueryLLMEvents returns events newest first.
	QueryLLMEvents(ctx context.Context, opts QueryOpts) ([]LLMRequestEvent, error)

	// GetLLMEvent returns one event by id, or nil if it does not exist.
	GetLLMEvent(ctx context.Context, id int) (*LLMRequestEvent, error)

	// LLMUsageByConcept aggregates usage per concept id.
	LLMUsageByConcept(ctx context.Context) ([]LLMUsage, error)

	// LLMUsageByModel aggregates usage per model.
	LLMUsageByModel(ctx context.Context) ([]LLMUsage, error)
}
