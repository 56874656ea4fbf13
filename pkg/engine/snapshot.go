package engine

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"

	"github.com/daviddao/learnlog/pkg/model"
)

// SnapshotType tags export documents.
const SnapshotType = "ai_development_roadmap"

// ErrSnapshotType is returned when a document's type tag is missing or
// does not match SnapshotType.
var ErrSnapshotType = errors.New("not a learning roadmap backup")

// Snapshot is the export/import document.
type Snapshot struct {
	Type           string                          `json:"type"`
	ID             string                          `json:"id,omitempty"`
	ExportDate     time.Time                       `json:"exportDate"`
	Progress       map[string]bool                 `json:"progress"`
	Retention      map[string]model.RetentionEntry `json:"retention"`
	Milestones     []model.MilestoneState          `json:"milestones"`
	QuizHistory    []model.QuizResult              `json:"quizHistory"`
	Streak         int                             `json:"streak"`
	LastActiveDate model.Date                      `json:"lastActiveDate"`
}

// snapshotWire reads milestones loosely so backups listing full milestone
// objects still import.
type snapshotWire struct {
	Snapshot
	Milestones json.RawMessage `json:"milestones"`
}

// DecodeSnapshot reads a snapshot document and checks its type tag.
func DecodeSnapshot(r io.Reader) (Snapshot, error) {
	var w snapshotWire
	if err := json.NewDecoder(r).Decode(&w); err != nil {
		return Snapshot{}, fmt.Errorf("decode snapshot: %w", err)
	}
	if w.Type != SnapshotType {
		return Snapshot{}, fmt.Errorf("%w: type %q", ErrSnapshotType, w.Type)
	}
	s := w.Snapshot
	if len(w.Milestones) > 0 && string(w.Milestones) != "null" {
		ms, err := decodeMilestones(w.Milestones)
		if err != nil {
			return Snapshot{}, fmt.Errorf("decode snapshot milestones: %w", err)
		}
		s.Milestones = ms
	}
	if s.Streak < 0 {
		s.Streak = 0
	}
	return s, nil
}

// Encode writes s as indented JSON.
func (s Snapshot) Encode(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(s)
}

// ExportSnapshot bundles the full state into a new snapshot.
func (e *Engine) ExportSnapshot() (Snapshot, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	st := e.streak.State()
	s := Snapshot{
		Type:        SnapshotType,
		ID:          uuid.NewString(),
		ExportDate:  e.clk.Now().UTC(),
		Progress:    e.ledger.Progress(),
		Retention:   e.retention.Entries(),
		Milestones:  e.milestones.States(),
		QuizHistory: append([]model.QuizResult{}, e.quiz...),
		Streak:      st.Count,
	}
	if st.HasActivity {
		s.LastActiveDate = st.LastActive
	}
	return s, nil
}

// ImportSnapshot replaces the whole state with s and persists it. Milestones
// reached by the imported progress are marked achieved before saving and
// reported by Reconciled. A wrong type tag returns ErrSnapshotType and
// changes nothing. A running auto-save timer is restarted rather than
// duplicated.
func (e *Engine) ImportSnapshot(ctx context.Context, s Snapshot) error {
	if s.Type != SnapshotType {
		return fmt.Errorf("%w: type %q", ErrSnapshotType, s.Type)
	}
	e.mu.Lock()
	defer e.mu.Unlock()

	running := e.autoTimer != nil
	e.stopAutoSaveLocked()

	streak := model.StreakState{Count: max(s.Streak, 0)}
	if !s.LastActiveDate.IsZero() {
		streak.LastActive = s.LastActiveDate
		streak.HasActivity = true
	}
	e.load(loaded{
		progress:   s.Progress,
		retention:  s.Retention,
		streak:     streak,
		milestones: s.Milestones,
		quiz:       append([]model.QuizResult(nil), s.QuizHistory...),
	})
	e.log.Info().Str("id", s.ID).Int("tasks", e.ledger.Len()).Msg("snapshot imported")

	err := e.persistLocked(ctx)
	if running {
		e.scheduleAutoSaveLocked()
	}
	return err
}
