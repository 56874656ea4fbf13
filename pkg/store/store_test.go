package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/daviddao/learnlog/pkg/model"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	s, err := New(dbPath)
	if err != nil {
		t.Fatalf("New(%q): %v", dbPath, err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// --- Record tests ---

func TestLoadRecords_Empty(t *testing.T) {
	s := newTestStore(t)
	recs, err := s.LoadRecords(context.Background())
	if err != nil {
		t.Fatalf("LoadRecords: %v", err)
	}
	if recs == nil || len(recs) != 0 {
		t.Fatalf("expected empty non-nil set, got %v", recs)
	}
}

func TestSaveRecords_RoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	in := model.Records{
		model.KeyProgress: []byte(`{"t1":true}`),
		model.KeyStreak:   []byte(`3`),
	}
	if err := s.SaveRecords(ctx, in); err != nil {
		t.Fatalf("SaveRecords: %v", err)
	}
	out, err := s.LoadRecords(ctx)
	if err != nil {
		t.Fatalf("LoadRecords: %v", err)
	}
	if len(out) != 2 {
		t.Fatalf("expected 2 records, got %d", len(out))
	}
	if string(out[model.KeyProgress]) != `{"t1":true}` {
		t.Errorf("progress = %q", out[model.KeyProgress])
	}
	if string(out[model.KeyStreak]) != `3` {
		t.Errorf("streak = %q", out[model.KeyStreak])
	}
}

func TestSaveRecords_ReplacesWholeSet(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	if err := s.SaveRecords(ctx, model.Records{"a": []byte("1"), "b": []byte("2")}); err != nil {
		t.Fatal(err)
	}
	if err := s.SaveRecords(ctx, model.Records{"b": []byte("3")}); err != nil {
		t.Fatal(err)
	}
	out, err := s.LoadRecords(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := out["a"]; ok {
		t.Error("key a should have been removed")
	}
	if string(out["b"]) != "3" {
		t.Errorf("b = %q, want 3", out["b"])
	}
}

func TestLastSaved(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	at := time.Date(2026, 10, 16, 9, 30, 0, 0, time.UTC)
	s.now = func() time.Time { return at }

	ts, err := s.LastSaved(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if !ts.IsZero() {
		t.Errorf("expected zero time before first save, got %v", ts)
	}
	if err := s.SaveRecords(ctx, model.Records{"k": []byte("v")}); err != nil {
		t.Fatal(err)
	}
	ts, err = s.LastSaved(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if !ts.Equal(at) {
		t.Errorf("LastSaved = %v, want %v", ts, at)
	}
}

func TestSaveRecords_CancelledContext(t *testing.T) {
	s := newTestStore(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := s.SaveRecords(ctx, model.Records{"k": []byte("v")}); err == nil {
		t.Fatal("expected error for cancelled context")
	}
	out, err := s.LoadRecords(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(out) != 0 {
		t.Errorf("nothing should be written, got %v", out)
	}
}

func TestReopenKeepsRecords(t *testing.T) {
	path := filepath.Join(t.TempDir(), "persist.db")
	ctx := context.Background()
	s, err := New(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := s.SaveRecords(ctx, model.Records{model.KeyStreak: []byte("9")}); err != nil {
		t.Fatal(err)
	}
	s.Close()

	s2, err := New(path)
	if err != nil {
		t.Fatal(err)
	}
	defer s2.Close()
	if s2.Path() != path {
		t.Errorf("Path() = %q, want %q", s2.Path(), path)
	}
	recs, err := s2.LoadRecords(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if string(recs[model.KeyStreak]) != "9" {
		t.Errorf("got %q after reopen", recs[model.KeyStreak])
	}
}

// --- Activity tests ---

func TestAppendActivity(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	a := &Activity{Kind: KindCompleted, Subject: "t1"}
	id, err := s.AppendActivity(ctx, a)
	if err != nil {
		t.Fatalf("AppendActivity: %v", err)
	}
	if id <= 0 || a.ID != id {
		t.Fatalf("bad id %d (a.ID=%d)", id, a.ID)
	}
	if a.CreatedAt.IsZero() {
		t.Error("CreatedAt should be filled in")
	}
}

func TestListActivity_NewestFirstWithFilterAndLimit(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	for _, a := range []Activity{
		{Kind: KindCompleted, Subject: "t1"},
		{Kind: KindQuiz, Detail: "80"},
		{Kind: KindCompleted, Subject: "t2"},
		{Kind: KindReviewed, Subject: "t1", Detail: "easy"},
	} {
		a := a
		if _, err := s.AppendActivity(ctx, &a); err != nil {
			t.Fatal(err)
		}
	}

	all, err := s.ListActivity(ctx, "", 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 4 {
		t.Fatalf("expected 4 entries, got %d", len(all))
	}
	if all[0].Kind != KindReviewed || all[0].Detail != "easy" {
		t.Errorf("newest entry = %+v", all[0])
	}

	done, err := s.ListActivity(ctx, KindCompleted, 1)
	if err != nil {
		t.Fatal(err)
	}
	if len(done) != 1 || done[0].Subject != "t2" {
		t.Errorf("filtered = %+v, want latest completion t2", done)
	}
}
