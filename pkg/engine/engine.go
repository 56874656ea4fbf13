// Package engine ties the learning-progress components into one stateful
// object: the task ledger, the streak tracker, the milestone evaluator, the
// retention scheduler and the quiz history.
//
// An Engine is built from a persisted record set with Init and written back
// through a Persister after every mutation. Each mutation persists before
// it returns, so getters called afterwards reflect what was saved. A failed
// save leaves the in-memory state intact and is reported as ErrPersist.
//
// Operations run to completion under a mutex. Timers from a real clock
// fire on their own goroutines and take the same lock.
package engine

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/daviddao/learnlog/pkg/clock"
	"github.com/daviddao/learnlog/pkg/ledger"
	"github.com/daviddao/learnlog/pkg/milestone"
	"github.com/daviddao/learnlog/pkg/model"
	"github.com/daviddao/learnlog/pkg/retention"
	"github.com/daviddao/learnlog/pkg/streak"
)

// ErrPersist wraps any failure to save state. The engine stays usable.
var ErrPersist = errors.New("persist failed")

// retentionPenalty is subtracted from the completion percentage to give
// the retention score.
const retentionPenalty = 5

// Persister saves a complete record set.
type Persister interface {
	SaveRecords(ctx context.Context, recs model.Records) error
}

// Options configures an Engine. The zero value is usable: no milestones,
// the default review policy, the real clock and no persistence.
type Options struct {
	Milestones []model.MilestoneDef
	// TotalTasks is the roadmap size. Zero means the number of tasks the
	// ledger has seen.
	TotalTasks int
	Policy     retention.Policy
	Clock      clock.Clock
	Persister  Persister
	Logger     *zerolog.Logger
	// OnSave is called after every save attempt with its result.
	OnSave func(error)
}

// Change describes the effect of a completion update.
type Change struct {
	TaskID    string `json:"taskId"`
	Completed bool   `json:"completed"`
	// Changed is false when the task already had the requested value.
	Changed bool `json:"changed"`
	// NewMilestones lists milestones achieved by this change.
	NewMilestones []model.MilestoneDef `json:"newMilestones,omitempty"`
	// ReviewScheduled is true when a retention entry was created.
	ReviewScheduled bool `json:"reviewScheduled"`
}

// Engine is the learning-progress engine.
type Engine struct {
	mu sync.Mutex

	clk     clock.Clock
	persist Persister
	log     zerolog.Logger
	onSave  func(error)
	catalog []model.MilestoneDef
	total   int
	policy  retention.Policy

	ledger     *ledger.Ledger
	streak     *streak.Tracker
	milestones *milestone.Evaluator
	retention  *retention.Scheduler
	quiz       []model.QuizResult
	recovered  []string
	reconciled []model.MilestoneDef

	// auto-save
	autoEvery time.Duration
	autoTimer clock.Timer
	autoGen   int
}

// Init builds an engine from persisted records. A record that fails to
// decode is replaced by its default and reported by Recovered; the other
// records still load. Milestones the loaded progress already reaches are
// marked achieved and reported by Reconciled. Init does not persist.
func Init(recs model.Records, opts Options) *Engine {
	e := &Engine{
		clk:     opts.Clock,
		persist: opts.Persister,
		onSave:  opts.OnSave,
		catalog: append([]model.MilestoneDef(nil), opts.Milestones...),
		total:   opts.TotalTasks,
		policy:  opts.Policy,
	}
	if e.clk == nil {
		e.clk = clock.Real{}
	}
	if opts.Logger != nil {
		e.log = *opts.Logger
	} else {
		e.log = zerolog.Nop()
	}
	if len(e.policy.Intervals) == 0 && !e.policy.ScaleByStrength {
		e.policy = retention.DefaultPolicy()
	}
	e.load(decodeRecords(recs))
	for _, key := range e.recovered {
		e.log.Warn().Str("key", key).Msg("corrupt record reset to default")
	}
	return e
}

func (e *Engine) load(l loaded) {
	e.ledger = ledger.New(l.progress)
	e.streak = streak.New(l.streak)
	e.milestones = milestone.New(e.catalog, l.milestones)
	e.retention = retention.New(e.policy, l.retention)
	e.quiz = l.quiz
	e.recovered = l.recovered
	e.reconciled = e.milestones.Evaluate(e.ledger.CompletedCount())
	for _, m := range e.reconciled {
		e.log.Info().Str("milestone", m.ID).Msg("milestone achieved on load")
	}
}

// Recovered lists the record keys that were reset to defaults by Init.
func (e *Engine) Recovered() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]string(nil), e.recovered...)
}

// Reconciled lists the milestones achieved while loading, by Init or the
// last ImportSnapshot, that the stored state did not yet record.
func (e *Engine) Reconciled() []model.MilestoneDef {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]model.MilestoneDef(nil), e.reconciled...)
}

// Serialize encodes the current state as a full record set.
func (e *Engine) Serialize() (model.Records, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.serializeLocked()
}

// persistLocked saves the full state. Without a Persister it does nothing.
func (e *Engine) persistLocked(ctx context.Context) error {
	if e.persist == nil {
		return nil
	}
	recs, err := e.serializeLocked()
	if err == nil {
		err = e.persist.SaveRecords(ctx, recs)
	}
	if e.onSave != nil {
		e.onSave(err)
	}
	if err != nil {
		e.log.Error().Err(err).Msg("save failed, continuing in memory")
		return fmt.Errorf("%w: %w", ErrPersist, err)
	}
	return nil
}

// ---------------------------------------------------------------------------
// Mutations
// ---------------------------------------------------------------------------

// SetCompletion marks taskID completed or not. Setting the value a known
// task already has changes nothing and does not persist. A real change
// records the day's activity, schedules a review for a first completion and
// evaluates milestones.
func (e *Engine) SetCompletion(ctx context.Context, taskID string, completed bool) (Change, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.setLocked(ctx, taskID, completed)
}

// ToggleTask flips the completion of taskID. Unknown ids become completed.
func (e *Engine) ToggleTask(ctx context.Context, taskID string) (Change, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.setLocked(ctx, taskID, !e.ledger.IsCompleted(taskID))
}

func (e *Engine) setLocked(ctx context.Context, taskID string, completed bool) (Change, error) {
	ch := Change{TaskID: taskID, Completed: completed}
	known := e.ledger.Known(taskID)
	ch.Changed = e.ledger.Set(taskID, completed)
	if !ch.Changed {
		if known {
			return ch, nil
		}
		return ch, e.persistLocked(ctx)
	}

	now := e.clk.Now()
	e.streak.RecordActivity(model.DateOf(now))
	if completed {
		ch.ReviewScheduled = e.retention.OnTaskCompleted(taskID, now)
	} else {
		e.retention.OnTaskUncompleted(taskID)
	}
	ch.NewMilestones = e.milestones.Evaluate(e.ledger.CompletedCount())
	for _, m := range ch.NewMilestones {
		e.log.Info().Str("milestone", m.ID).Msg("milestone achieved")
	}
	return ch, e.persistLocked(ctx)
}

// Observe registers task ids as unchecked if they are not yet known, so
// they count toward the roadmap size.
func (e *Engine) Observe(ctx context.Context, taskIDs ...string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	added := false
	for _, id := range taskIDs {
		if !e.ledger.Known(id) {
			e.ledger.Observe(id)
			added = true
		}
	}
	if !added {
		return nil
	}
	return e.persistLocked(ctx)
}

// RecordActivity registers activity today. Returns true if the streak
// changed; a second call on the same day is a no-op.
func (e *Engine) RecordActivity(ctx context.Context) (bool, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.streak.RecordActivity(model.DateOf(e.clk.Now())) {
		return false, nil
	}
	return true, e.persistLocked(ctx)
}

// RecordReview applies a self-graded review of taskID. Tasks without a
// retention entry are ignored and return false.
func (e *Engine) RecordReview(ctx context.Context, taskID string, d model.Difficulty) (bool, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.retention.RecordReview(taskID, d, e.clk.Now()) {
		return false, nil
	}
	return true, e.persistLocked(ctx)
}

// RecordQuiz appends a quiz score, clamped to [0,100], to the history.
func (e *Engine) RecordQuiz(ctx context.Context, score int) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	score = min(max(score, 0), 100)
	e.quiz = append(e.quiz, model.QuizResult{Date: e.clk.Now().UTC(), Score: score})
	return e.persistLocked(ctx)
}

// CheckMilestones evaluates milestones against the current completed count
// and returns the newly achieved ones. It persists only when something was
// achieved.
func (e *Engine) CheckMilestones(ctx context.Context) ([]model.MilestoneDef, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	newly := e.milestones.Evaluate(e.ledger.CompletedCount())
	if len(newly) == 0 {
		return nil, nil
	}
	return newly, e.persistLocked(ctx)
}

// ---------------------------------------------------------------------------
// Getters
// ---------------------------------------------------------------------------

// Stats returns the aggregate figures at the clock's current time.
func (e *Engine) Stats() model.Stats {
	e.mu.Lock()
	defer e.mu.Unlock()
	completed := e.ledger.CompletedCount()
	total := e.totalLocked()
	pct := ledger.Percent(completed, total)
	return model.Stats{
		Completed:          completed,
		Total:              total,
		Percent:            pct,
		RetentionScore:     max(pct-retentionPenalty, 0),
		DueReviews:         len(e.retention.DueReviews(e.clk.Now())),
		Streak:             e.streak.Current(),
		ProjectsBuilt:      e.milestones.ProjectsBuilt(),
		MilestonesAchieved: e.milestones.AchievedCount(),
	}
}

func (e *Engine) totalLocked() int {
	if e.total > 0 {
		return e.total
	}
	return e.ledger.Len()
}

// IsCompleted reports whether taskID is completed.
func (e *Engine) IsCompleted(taskID string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.ledger.IsCompleted(taskID)
}

// CompletedIDs returns the completed task ids in lexical order.
func (e *Engine) CompletedIDs() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.ledger.CompletedIDs()
}

// DueReviews returns task ids due at now, earliest due first.
func (e *Engine) DueReviews(now time.Time) []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.retention.DueReviews(now)
}

// DueEntries returns the entries due at now, earliest due first.
func (e *Engine) DueEntries(now time.Time) []model.RetentionEntry {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.retention.DueEntries(now)
}

// ScheduledEntries returns every retention entry, earliest review first.
func (e *Engine) ScheduledEntries() []model.RetentionEntry {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.retention.Scheduled()
}

// RetentionEntry returns the retention entry for taskID.
func (e *Engine) RetentionEntry(taskID string) (model.RetentionEntry, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.retention.Entry(taskID)
}

// MilestoneDisplayList returns every catalog milestone with its achieved,
// locked and progress values.
func (e *Engine) MilestoneDisplayList() []model.MilestoneView {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.milestones.Display(e.ledger.CompletedCount())
}

// IsAchieved reports whether milestone id has been achieved.
func (e *Engine) IsAchieved(id string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.milestones.IsAchieved(id)
}

// ProgressToward returns the clamped progress toward milestone id.
func (e *Engine) ProgressToward(id string) (current, required int, ok bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.milestones.ProgressToward(id, e.ledger.CompletedCount())
}

// Streak returns the streak state.
func (e *Engine) Streak() model.StreakState {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.streak.State()
}

// QuizHistory returns a copy of the quiz results, oldest first.
func (e *Engine) QuizHistory() []model.QuizResult {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]model.QuizResult(nil), e.quiz...)
}

// State returns a copy of the four component states.
func (e *Engine) State() model.EngineState {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.stateLocked()
}

func (e *Engine) stateLocked() model.EngineState {
	ms := make(map[string]model.MilestoneState)
	for _, s := range e.milestones.States() {
		ms[s.ID] = s
	}
	return model.EngineState{
		Tasks:      e.ledger.Records(),
		Streak:     e.streak.State(),
		Milestones: ms,
		Retention:  e.retention.Entries(),
	}
}
