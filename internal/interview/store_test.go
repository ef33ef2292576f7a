package interview

import (
	"context"
	"testing"
	"time"
)

func newStoreWithRepo(t *testing.T) (*Store, *MemoryRepo) {
	t.Helper()
	repo := NewMemoryRepo()
	return NewStore(context.Background(), repo), repo
}

func addReadyCandidate(t *testing.T, store *Store) Candidate {
	t.Helper()
	return store.Add(context.Background(), Seed{
		Name:       "Jane Doe",
		Email:      "jane@example.com",
		Phone:      "+1 555 0100",
		ResumeText: "React developer with five years of experience.",
	})
}

func TestStoreAddAndGet(t *testing.T) {
	store, _ := newStoreWithRepo(t)
	c := addReadyCandidate(t, store)

	if c.ID == "" {
		t.Fatalf("expected generated id")
	}
	if c.Session.Stage != StageReady {
		t.Fatalf("expected ready stage, got %s", c.Session.Stage)
	}

	got, ok := store.Get(c.ID)
	if !ok || got.Name != "Jane Doe" {
		t.Fatalf("expected stored candidate back")
	}
	if _, ok := store.Get("nope"); ok {
		t.Fatalf("unknown id must miss")
	}
}

func TestStoreGetReturnsIsolatedCopy(t *testing.T) {
	store, _ := newStoreWithRepo(t)
	c := addReadyCandidate(t, store)

	got, _ := store.Get(c.ID)
	got.Name = "Mallory"
	got.Session.ChatLog = append(got.Session.ChatLog, ChatEntry{Sender: SenderSystem, Text: "injected"})

	again, _ := store.Get(c.ID)
	if again.Name != "Jane Doe" {
		t.Fatalf("mutating a copy must not affect the store")
	}
	for _, e := range again.Session.ChatLog {
		if e.Text == "injected" {
			t.Fatalf("chat log aliasing detected")
		}
	}
}

func TestStoreCurrentPrefersUnfinished(t *testing.T) {
	store, _ := newStoreWithRepo(t)
	first := addReadyCandidate(t, store)
	addReadyCandidate(t, store)

	cur, ok := store.Current()
	if !ok || cur.ID != first.ID {
		t.Fatalf("expected first unfinished candidate")
	}

	store.Finish(context.Background(), first.ID, time.Now())
	cur, _ = store.Current()
	if cur.ID == first.ID {
		t.Fatalf("finished candidate should no longer be current")
	}
}

func TestStoreCurrentFallsBackToLast(t *testing.T) {
	store, _ := newStoreWithRepo(t)
	if _, ok := store.Current(); ok {
		t.Fatalf("empty store has no current candidate")
	}

	a := addReadyCandidate(t, store)
	b := addReadyCandidate(t, store)
	store.Finish(context.Background(), a.ID, time.Now())
	store.Finish(context.Background(), b.ID, time.Now())

	cur, ok := store.Current()
	if !ok || cur.ID != b.ID {
		t.Fatalf("expected most recent candidate as fallback")
	}
}

func TestStorePersistsAcrossRestart(t *testing.T) {
	ctx := context.Background()
	store, repo := newStoreWithRepo(t)
	c := addReadyCandidate(t, store)

	t0 := time.Date(2026, time.March, 1, 10, 0, 0, 0, time.UTC)
	store.StartInterview(ctx, c.ID, t0)
	store.SetCurrentQuestion(ctx, c.ID, "What is state?", true, LevelEasy, 0)
	store.RecordAnswer(ctx, c.ID, "What is state?", "Component data.", &Score{Numeric: 8, Feedback: "good"}, "React", t0, false)
	store.EnqueuePending(ctx, c.ID, 0)

	rehydrated := NewStore(ctx, repo)
	got, ok := rehydrated.Get(c.ID)
	if !ok {
		t.Fatalf("expected candidate after restart")
	}
	if got.Session.QIdx != 1 || got.Session.Stage != StageInterview {
		t.Fatalf("expected mid-interview session, got qIdx=%d stage=%s", got.Session.QIdx, got.Session.Stage)
	}
	if len(got.Session.Answers) != 1 || got.Session.Answers[0].Score == nil {
		t.Fatalf("expected persisted answer with score")
	}
	if pending := rehydrated.Pending(); len(pending) != 1 || pending[0].CandidateID != c.ID {
		t.Fatalf("expected pending queue to survive restart, got %v", pending)
	}
}

func TestAttachScoreIsWriteOnce(t *testing.T) {
	ctx := context.Background()
	store, _ := newStoreWithRepo(t)
	c := addReadyCandidate(t, store)
	t0 := time.Now()
	store.StartInterview(ctx, c.ID, t0)
	store.RecordAnswer(ctx, c.ID, "q", "a", nil, "General", t0, false)
	store.EnqueuePending(ctx, c.ID, 0)

	store.AttachScore(ctx, c.ID, 0, Score{Numeric: 6, Feedback: "ok"})
	got, _ := store.Get(c.ID)
	if got.Session.Answers[0].Score == nil || got.Session.Answers[0].Score.Numeric != 6 {
		t.Fatalf("expected attached score")
	}
	if len(store.Pending()) != 0 {
		t.Fatalf("expected pending entry removed")
	}

	store.AttachScore(ctx, c.ID, 0, Score{Numeric: 1, Feedback: "late"})
	got, _ = store.Get(c.ID)
	if got.Session.Answers[0].Score.Numeric != 6 {
		t.Fatalf("second attach must not overwrite, got %g", got.Session.Answers[0].Score.Numeric)
	}
}

func TestAttachScoreDoesNotAdjustTopicStats(t *testing.T) {
	ctx := context.Background()
	store, _ := newStoreWithRepo(t)
	c := addReadyCandidate(t, store)
	t0 := time.Now()
	store.StartInterview(ctx, c.ID, t0)
	store.RecordAnswer(ctx, c.ID, "q", "a", nil, "React", t0, false)

	before, _ := store.Get(c.ID)
	store.AttachScore(ctx, c.ID, 0, Score{Numeric: 9})
	after, _ := store.Get(c.ID)

	if before.TopicStats["React"] != after.TopicStats["React"] {
		t.Fatalf("async rescore must not touch topic aggregates: %+v vs %+v",
			before.TopicStats["React"], after.TopicStats["React"])
	}
}

func TestEnqueuePendingDeduplicates(t *testing.T) {
	ctx := context.Background()
	store, _ := newStoreWithRepo(t)
	c := addReadyCandidate(t, store)

	store.EnqueuePending(ctx, c.ID, 2)
	store.EnqueuePending(ctx, c.ID, 2)
	store.EnqueuePending(ctx, c.ID, 3)

	if got := len(store.Pending()); got != 2 {
		t.Fatalf("expected 2 distinct entries, got %d", got)
	}
}

func TestPauseActiveOnlyTouchesRunningSessions(t *testing.T) {
	ctx := context.Background()
	store, _ := newStoreWithRepo(t)
	running := addReadyCandidate(t, store)
	idle := addReadyCandidate(t, store)

	t0 := time.Date(2026, time.March, 1, 10, 0, 0, 0, time.UTC)
	store.StartInterview(ctx, running.ID, t0)

	store.PauseActive(ctx, "system", t0.Add(4*time.Second))

	got, _ := store.Get(running.ID)
	if got.Session.Active || !got.Session.Paused || !got.Session.NeedsWelcome {
		t.Fatalf("running session should be paused with welcome flag")
	}
	if got.Session.Timer.Remaining != 16 {
		t.Fatalf("expected 16s banked, got %g", got.Session.Timer.Remaining)
	}

	other, _ := store.Get(idle.ID)
	if other.Session.Paused || other.Session.NeedsWelcome {
		t.Fatalf("idle session must be untouched")
	}
}

func TestClearDropsEverything(t *testing.T) {
	ctx := context.Background()
	store, repo := newStoreWithRepo(t)
	c := addReadyCandidate(t, store)
	store.EnqueuePending(ctx, c.ID, 0)

	store.Clear(ctx)
	if len(store.List()) != 0 || len(store.Pending()) != 0 {
		t.Fatalf("expected empty store")
	}

	rehydrated := NewStore(ctx, repo)
	if len(rehydrated.List()) != 0 {
		t.Fatalf("clear must persist")
	}
}

func TestListOrdersByScoreThenName(t *testing.T) {
	store, _ := newStoreWithRepo(t)
	ctx := context.Background()

	add := func(name string, score *float64) {
		c := store.Add(ctx, Seed{Name: name, Email: "x@y.z", Phone: "1", ResumeText: "r"})
		if score != nil {
			store.mu.Lock()
			for _, cand := range store.snap.Candidates {
				if cand.ID == c.ID {
					cand.Score = score
				}
			}
			store.mu.Unlock()
		}
	}
	hi, lo := 9.0, 4.5
	add("Zoe", &lo)
	add("Amy", nil)
	add("Bob", &hi)
	add("Ann", &lo)

	got := store.List()
	names := make([]string, 0, len(got))
	for _, c := range got {
		names = append(names, c.Name)
	}
	want := []string{"Bob", "Ann", "Zoe", "Amy"}
	for i := range want {
		if names[i] != want[i] {
			t.Fatalf("unexpected order: %v", names)
		}
	}
}
