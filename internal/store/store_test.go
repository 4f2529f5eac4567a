package store

import (
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	name := strings.ReplaceAll(t.Name(), "/", "_")
	s, err := Open("file:" + name + "?mode=memory&cache=shared")
	if err != nil {
		t.Fatalf("open test store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func countRows(t *testing.T, s *Store, table string) int {
	t.Helper()
	var n int
	if err := s.DB().QueryRow("SELECT COUNT(*) FROM " + table).Scan(&n); err != nil {
		t.Fatalf("count %s: %v", table, err)
	}
	return n
}

func TestOpenClose(t *testing.T) {
	s := openTestStore(t)
	if s.DB() == nil {
		t.Fatal("expected non-nil db")
	}
}

func TestOpenFileDatabase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "orbit.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	ctx := context.Background()
	if err := s.MasteryRepo().Master(ctx, "ml"); err != nil {
		t.Fatalf("master: %v", err)
	}
	s.Close()

	s, err = Open(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer s.Close()

	var mode string
	if err := s.DB().QueryRow("PRAGMA journal_mode").Scan(&mode); err != nil {
		t.Fatalf("journal_mode: %v", err)
	}
	if mode != "wal" {
		t.Errorf("journal_mode = %q, want wal", mode)
	}

	ids, err := s.MasteryRepo().Mastered(ctx)
	if err != nil {
		t.Fatalf("mastered: %v", err)
	}
	if len(ids) != 1 || ids[0] != "ml" {
		t.Errorf("mastered after reopen = %v, want [ml]", ids)
	}
}

func TestPragmasApplied(t *testing.T) {
	s := openTestStore(t)
	db := s.DB()

	tests := []struct {
		pragma string
		want   string
	}{
		// WAL mode falls back to "memory" for in-memory databases,
		// so journal_mode is checked in TestOpenFileDatabase.
		{"foreign_keys", "1"},
		{"synchronous", "1"}, // NORMAL = 1
		{"busy_timeout", "5000"},
	}

	for _, tt := range tests {
		var got string
		err := db.QueryRow("PRAGMA " + tt.pragma).Scan(&got)
		if err != nil {
			t.Errorf("PRAGMA %s: %v", tt.pragma, err)
			continue
		}
		if got != tt.want {
			t.Errorf("PRAGMA %s = %q, want %q", tt.pragma, got, tt.want)
		}
	}
}

func TestMigrationCreatesTables(t *testing.T) {
	s := openTestStore(t)

	for _, table := range []string{"mastered", "quiz_attempts", "llm_requests", "snapshots", "global_sequence"} {
		var name string
		err := s.DB().QueryRow(
			"SELECT name FROM sqlite_master WHERE type='table' AND name=?", table,
		).Scan(&name)
		if err != nil {
			t.Errorf("table %s: %v", table, err)
		}
	}
}

func TestMastery_MasterIsIdempotentAndOrdered(t *testing.T) {
	s := openTestStore(t)
	repo := s.MasteryRepo()
	ctx := context.Background()

	for _, id := range []string{"transformers", "ml", "transformers", "dl"} {
		if err := repo.Master(ctx, id); err != nil {
			t.Fatalf("master %s: %v", id, err)
		}
	}

	ids, err := repo.Mastered(ctx)
	if err != nil {
		t.Fatalf("mastered: %v", err)
	}
	want := []string{"transformers", "ml", "dl"}
	if strings.Join(ids, ",") != strings.Join(want, ",") {
		t.Errorf("mastered = %v, want %v", ids, want)
	}

	if err := repo.Master(ctx, ""); err == nil {
		t.Error("expected error for empty concept id")
	}
}

func TestMastery_UnmasterAndReset(t *testing.T) {
	s := openTestStore(t)
	repo := s.MasteryRepo()
	ctx := context.Background()

	for _, id := range []string{"ml", "dl", "nlp"} {
		if err := repo.Master(ctx, id); err != nil {
			t.Fatalf("master: %v", err)
		}
	}
	if err := s.AttemptRepo().Record(ctx, &QuizAttempt{ConceptID: "ml", Answer: "x"}); err != nil {
		t.Fatalf("record: %v", err)
	}

	if err := repo.Unmaster(ctx, "dl"); err != nil {
		t.Fatalf("unmaster: %v", err)
	}
	ids, _ := repo.Mastered(ctx)
	if len(ids) != 2 {
		t.Errorf("mastered after unmaster = %v", ids)
	}

	n, err := repo.Reset(ctx)
	if err != nil {
		t.Fatalf("reset: %v", err)
	}
	if n != 2 {
		t.Errorf("reset removed %d, want 2", n)
	}
	if got := countRows(t, s, "mastered"); got != 0 {
		t.Errorf("mastered rows after reset = %d", got)
	}
	if got := countRows(t, s, "quiz_attempts"); got != 0 {
		t.Errorf("attempt rows after reset = %d", got)
	}
}

func TestAttempts_RecordAndQuery(t *testing.T) {
	s := openTestStore(t)
	repo := s.AttemptRepo()
	ctx := context.Background()

	attempts := []*QuizAttempt{
		{ConceptID: "ml", Answer: "Rules", Correct: false},
		{ConceptID: "ml", Answer: "Learning from data", Correct: true},
		{ConceptID: "dl", Answer: "Layers", Correct: true},
	}
	for _, a := range attempts {
		if err := repo.Record(ctx, a); err != nil {
			t.Fatalf("record: %v", err)
		}
		if a.ID == "" || a.Sequence == 0 || a.CreatedAt.IsZero() {
			t.Errorf("record did not fill id/sequence/time: %+v", a)
		}
	}
	if attempts[0].ID == attempts[1].ID {
		t.Error("attempt ids should be unique")
	}

	got, err := repo.ForConcept(ctx, "ml")
	if err != nil {
		t.Fatalf("for concept: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("len = %d, want 2", len(got))
	}
	if got[0].Answer != "Rules" || got[0].Correct {
		t.Errorf("first attempt = %+v", got[0])
	}
	if !got[1].Correct || !got[1].CreatedAt.Equal(attempts[1].CreatedAt) {
		t.Errorf("second attempt = %+v", got[1])
	}

	stats, err := repo.Stats(ctx)
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	want := []AttemptStats{
		{ConceptID: "dl", Attempts: 1, Correct: 1},
		{ConceptID: "ml", Attempts: 2, Correct: 1},
	}
	if len(stats) != len(want) {
		t.Fatalf("stats = %+v", stats)
	}
	for i := range want {
		if stats[i] != want[i] {
			t.Errorf("stats[%d] = %+v, want %+v", i, stats[i], want[i])
		}
	}
}

func TestLLMEvents_AppendQueryGet(t *testing.T) {
	s := openTestStore(t)
	repo := s.EventRepo()
	ctx := context.Background()

	events := []LLMRequestEventData{
		{Provider: "gemini", Model: "gemini-2.5-flash", ConceptID: "ml", InputTokens: 40, OutputTokens: 30, LatencyMs: 100, Success: true, RequestBody: "[user]\nhi", ResponseBody: `{"insight":"x"}`},
		{Provider: "gemini", Model: "gemini-2.5-flash", ConceptID: "ml", LatencyMs: 300, Success: false, ErrorMessage: "rate limited"},
		{Provider: "openai", Model: "gpt-4o-mini", ConceptID: "rl", InputTokens: 10, OutputTokens: 5, LatencyMs: 50, Success: true},
	}
	for _, e := range events {
		if err := repo.AppendLLMRequest(ctx, e); err != nil {
			t.Fatalf("append: %v", err)
		}
	}

	all, err := repo.QueryLLMEvents(ctx, QueryOpts{})
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("len = %d, want 3", len(all))
	}
	if all[0].Model != "gpt-4o-mini" {
		t.Errorf("expected newest first, got %s", all[0].Model)
	}

	limited, _ := repo.QueryLLMEvents(ctx, QueryOpts{Limit: 1})
	if len(limited) != 1 {
		t.Errorf("limit ignored: %d", len(limited))
	}
	after, _ := repo.QueryLLMEvents(ctx, QueryOpts{After: all[1].Sequence})
	if len(after) != 1 || after[0].ID != all[0].ID {
		t.Errorf("after filter = %+v", after)
	}
	forML, _ := repo.QueryLLMEvents(ctx, QueryOpts{ConceptID: "ml"})
	if len(forML) != 2 || forML[0].ConceptID != "ml" || forML[1].ConceptID != "ml" {
		t.Errorf("concept filter = %+v", forML)
	}

	got, err := repo.GetLLMEvent(ctx, all[2].ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got == nil || got.ResponseBody != `{"insight":"x"}` || !got.Success {
		t.Errorf("get = %+v", got)
	}

	missing, err := repo.GetLLMEvent(ctx, 9999)
	if err != nil || missing != nil {
		t.Errorf("missing event = %+v, %v", missing, err)
	}
}

func TestLLMEvents_Usage(t *testing.T) {
	s := openTestStore(t)
	repo := s.EventRepo()
	ctx := context.Background()

	for _, e := range []LLMRequestEventData{
		{Provider: "gemini", Model: "m1", ConceptID: "ml", InputTokens: 10, OutputTokens: 20, LatencyMs: 100, Success: true},
		{Provider: "gemini", Model: "m1", ConceptID: "ml", InputTokens: 30, OutputTokens: 40, LatencyMs: 300, Success: false},
		{Provider: "openai", Model: "m2", ConceptID: "dl", InputTokens: 1, OutputTokens: 1, LatencyMs: 10, Success: true},
	} {
		if err := repo.AppendLLMRequest(ctx, e); err != nil {
			t.Fatalf("append: %v", err)
		}
	}

	byConcept, err := repo.LLMUsageByConcept(ctx)
	if err != nil {
		t.Fatalf("by concept: %v", err)
	}
	want := LLMUsage{Key: "ml", Requests: 2, Failures: 1, InputTokens: 40, OutputTokens: 60, AvgLatencyMs: 200}
	if len(byConcept) != 2 || byConcept[0] != want {
		t.Errorf("by concept = %+v", byConcept)
	}

	byModel, err := repo.LLMUsageByModel(ctx)
	if err != nil {
		t.Fatalf("by model: %v", err)
	}
	if len(byModel) != 2 || byModel[1].Key != "m2" || byModel[1].Requests != 1 {
		t.Errorf("by model = %+v", byModel)
	}
}

func TestSnapshotSaveAndLatest(t *testing.T) {
	s := openTestStore(t)
	repo := s.SnapshotRepo()
	ctx := context.Background()

	// No snapshot yet.
	snap, err := repo.Latest(ctx)
	if err != nil {
		t.Fatalf("latest (empty): %v", err)
	}
	if snap != nil {
		t.Fatal("expected nil snapshot when none exist")
	}

	now := time.Now().UTC().Truncate(time.Second)
	err = repo.Save(ctx, &Snapshot{
		Sequence:  42,
		Timestamp: now,
		Data: ExplorerState{
			Source:   "concepts.yaml",
			Expanded: []string{"ai", "ml"},
			Selected: "dl",
			Search:   "learn",
		},
	})
	if err != nil {
		t.Fatalf("save: %v", err)
	}

	snap, err = repo.Latest(ctx)
	if err != nil {
		t.Fatalf("latest: %v", err)
	}
	if snap == nil {
		t.Fatal("expected non-nil snapshot")
	}
	if snap.Sequence != 42 {
		t.Errorf("sequence = %d, want 42", snap.Sequence)
	}
	if snap.Data.Version != 1 {
		t.Errorf("data.version = %d, want 1", snap.Data.Version)
	}
	if !snap.Timestamp.Equal(now) {
		t.Errorf("timestamp = %v, want %v", snap.Timestamp, now)
	}
	if strings.Join(snap.Data.Expanded, ",") != "ai,ml" || snap.Data.Selected != "dl" || snap.Data.Search != "learn" {
		t.Errorf("data = %+v", snap.Data)
	}
}

func TestSnapshotLatestReturnsNewest(t *testing.T) {
	s := openTestStore(t)
	repo := s.SnapshotRepo()
	ctx := context.Background()

	base := time.Now().UTC().Truncate(time.Second)
	for i := 0; i < 3; i++ {
		err := repo.Save(ctx, &Snapshot{
			Sequence:  int64(i + 1),
			Timestamp: base.Add(time.Duration(i) * time.Minute),
			Data:      ExplorerState{Selected: string(rune('a' + i))},
		})
		if err != nil {
			t.Fatalf("save %d: %v", i, err)
		}
	}

	snap, err := repo.Latest(ctx)
	if err != nil {
		t.Fatalf("latest: %v", err)
	}
	if snap.Sequence != 3 {
		t.Errorf("sequence = %d, want 3", snap.Sequence)
	}
	if snap.Data.Selected != "c" {
		t.Errorf("data.selected = %q, want c", snap.Data.Selected)
	}
}

func TestSnapshotPrune(t *testing.T) {
	s := openTestStore(t)
	repo := s.SnapshotRepo()
	ctx := context.Background()

	base := time.Now().UTC().Truncate(time.Second)
	for i := 0; i < 7; i++ {
		err := repo.Save(ctx, &Snapshot{
			Sequence:  int64(i + 1),
			Timestamp: base.Add(time.Duration(i) * time.Minute),
		})
		if err != nil {
			t.Fatalf("save %d: %v", i, err)
		}
	}

	if err := repo.Prune(ctx, 5); err != nil {
		t.Fatalf("prune: %v", err)
	}
	if count := countRows(t, s, "snapshots"); count != 5 {
		t.Errorf("remaining snapshots = %d, want 5", count)
	}

	// Latest should still be sequence 7.
	snap, err := repo.Latest(ctx)
	if err != nil {
		t.Fatalf("latest: %v", err)
	}
	if snap.Sequence != 7 {
		t.Errorf("latest sequence = %d, want 7", snap.Sequence)
	}
}

func TestSnapshotPruneWithFewerThanKeep(t *testing.T) {
	s := openTestStore(t)
	repo := s.SnapshotRepo()
	ctx := context.Background()

	base := time.Now().UTC().Truncate(time.Second)
	for i := 0; i < 2; i++ {
		err := repo.Save(ctx, &Snapshot{
			Sequence:  int64(i + 1),
			Timestamp: base.Add(time.Duration(i) * time.Minute),
		})
		if err != nil {
			t.Fatalf("save %d: %v", i, err)
		}
	}

	// Prune with keep=5 should be a no-op.
	if err := repo.Prune(ctx, 5); err != nil {
		t.Fatalf("prune: %v", err)
	}
	if count := countRows(t, s, "snapshots"); count != 2 {
		t.Errorf("remaining snapshots = %d, want 2", count)
	}
}

func TestSequenceCounter(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	sc, err := newSequenceCounter(s.DB())
	if err != nil {
		t.Fatalf("new sequence counter: %v", err)
	}

	var seqs []int64
	for i := 0; i < 5; i++ {
		seq, err := sc.Next(ctx)
		if err != nil {
			t.Fatalf("next %d: %v", i, err)
		}
		seqs = append(seqs, seq)
	}

	// Should be monotonically increasing starting from 1.
	for i, seq := range seqs {
		expected := int64(i + 1)
		if seq != expected {
			t.Errorf("seq[%d] = %d, want %d", i, seq, expected)
		}
	}

	cur, err := s.Sequence(ctx)
	if err != nil {
		t.Fatalf("current: %v", err)
	}
	if cur != 5 {
		t.Errorf("current = %d, want 5", cur)
	}
}

func TestSequenceSharedAcrossTables(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	a := &QuizAttempt{ConceptID: "ml", Answer: "x", Correct: true}
	if err := s.AttemptRepo().Record(ctx, a); err != nil {
		t.Fatal(err)
	}
	if err := s.MasteryRepo().Master(ctx, "ml"); err != nil {
		t.Fatal(err)
	}
	var masterSeq int64
	if err := s.DB().QueryRow("SELECT sequence FROM mastered WHERE concept_id = 'ml'").Scan(&masterSeq); err != nil {
		t.Fatal(err)
	}
	if masterSeq <= a.Sequence {
		t.Errorf("mastery sequence %d should follow attempt sequence %d", masterSeq, a.Sequence)
	}
}

func TestDefaultDBPath(t *testing.T) {
	dir := t.TempDir()

	t.Setenv("ORBIT_DB", filepath.Join(dir, "custom", "x.db"))
	p, err := DefaultDBPath()
	if err != nil {
		t.Fatal(err)
	}
	if p != filepath.Join(dir, "custom", "x.db") {
		t.Errorf("ORBIT_DB path = %q", p)
	}

	t.Setenv("ORBIT_DB", "")
	t.Setenv("XDG_DATA_HOME", dir)
	p, err = DefaultDBPath()
	if err != nil {
		t.Fatal(err)
	}
	if p != filepath.Join(dir, "orbit", "orbit.db") {
		t.Errorf("XDG path = %q", p)
	}
}
