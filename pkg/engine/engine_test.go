package engine

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/daviddao/learnlog/pkg/clock"
	"github.com/daviddao/learnlog/pkg/model"
	"github.com/daviddao/learnlog/pkg/retention"
)

var start = time.Date(2026, 10, 16, 9, 0, 0, 0, time.UTC)

type memPersister struct {
	mu    sync.Mutex
	saves int
	last  model.Records
	err   error
}

func (p *memPersister) SaveRecords(_ context.Context, recs model.Records) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.saves++
	p.last = recs
	return nil
}

func (p *memPersister) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.saves
}

func catalog() []model.MilestoneDef {
	return []model.MilestoneDef{
		{ID: "first_steps", RequiredTasks: 1},
		{ID: "python_master", RequiredTasks: 10},
		{ID: "first_chatbot", RequiredTasks: 20, Project: true},
	}
}

func newTestEngine(t *testing.T, recs model.Records) (*Engine, *clock.Fake, *memPersister) {
	t.Helper()
	clk := clock.NewFake(start)
	p := &memPersister{}
	e := Init(recs, Options{
		Milestones: catalog(),
		TotalTasks: 80,
		Policy:     retention.DefaultPolicy(),
		Clock:      clk,
		Persister:  p,
	})
	return e, clk, p
}

func stateJSON(t *testing.T, st model.EngineState) string {
	t.Helper()
	b, err := json.Marshal(st)
	require.NoError(t, err)
	return string(b)
}

func TestFirstStepsScenario(t *testing.T) {
	ctx := context.Background()
	e, _, _ := newTestEngine(t, nil)

	ch, err := e.SetCompletion(ctx, "t1", true)
	require.NoError(t, err)
	require.Len(t, ch.NewMilestones, 1)
	assert.Equal(t, "first_steps", ch.NewMilestones[0].ID)

	ch, err = e.SetCompletion(ctx, "t1", false)
	require.NoError(t, err)
	assert.True(t, ch.Changed)
	assert.Empty(t, ch.NewMilestones)
	assert.True(t, e.IsAchieved("first_steps"))

	newly, err := e.CheckMilestones(ctx)
	require.NoError(t, err)
	assert.Empty(t, newly)
}

func TestSetCompletion_Idempotent(t *testing.T) {
	ctx := context.Background()
	e, _, p := newTestEngine(t, nil)

	for _, step := range []struct {
		id   string
		done bool
	}{{"a", true}, {"b", true}, {"a", true}, {"c", false}, {"b", false}, {"b", true}, {"a", true}} {
		_, err := e.SetCompletion(ctx, step.id, step.done)
		require.NoError(t, err)
	}
	assert.Equal(t, 2, e.Stats().Completed)
	assert.Equal(t, []string{"a", "b"}, e.CompletedIDs())

	before := p.count()
	ch, err := e.SetCompletion(ctx, "a", true)
	require.NoError(t, err)
	assert.False(t, ch.Changed)
	assert.Equal(t, before, p.count(), "no-op set must not persist")
}

func TestSetCompletion_NewUncheckedTaskIsRecorded(t *testing.T) {
	ctx := context.Background()
	clk := clock.NewFake(start)
	p := &memPersister{}
	e := Init(nil, Options{Clock: clk, Persister: p})

	ch, err := e.SetCompletion(ctx, "x", false)
	require.NoError(t, err)
	assert.False(t, ch.Changed)
	assert.Equal(t, 1, p.count())
	assert.Equal(t, 1, e.Stats().Total, "total falls back to ledger size")
	assert.False(t, e.Streak().HasActivity, "observing a task is not activity")
}

func TestToggleTask(t *testing.T) {
	ctx := context.Background()
	e, _, _ := newTestEngine(t, nil)

	ch, err := e.ToggleTask(ctx, "t1")
	require.NoError(t, err)
	assert.True(t, ch.Completed)
	assert.True(t, ch.ReviewScheduled)

	ch, err = e.ToggleTask(ctx, "t1")
	require.NoError(t, err)
	assert.False(t, ch.Completed)
	assert.False(t, e.IsCompleted("t1"))

	_, ok := e.RetentionEntry("t1")
	assert.True(t, ok, "unchecking keeps the retention entry")

	ch, err = e.ToggleTask(ctx, "t1")
	require.NoError(t, err)
	assert.False(t, ch.ReviewScheduled, "re-completion keeps the existing entry")
}

func TestStats(t *testing.T) {
	ctx := context.Background()
	e, clk, _ := newTestEngine(t, nil)

	for i := 0; i < 20; i++ {
		_, err := e.SetCompletion(ctx, string(rune('a'+i)), true)
		require.NoError(t, err)
	}
	s := e.Stats()
	assert.Equal(t, 20, s.Completed)
	assert.Equal(t, 80, s.Total)
	assert.Equal(t, 25, s.Percent)
	assert.Equal(t, 20, s.RetentionScore)
	assert.Equal(t, 1, s.Streak)
	assert.Equal(t, 3, s.MilestonesAchieved)
	assert.Equal(t, 1, s.ProjectsBuilt)
	assert.Equal(t, 0, s.DueReviews)

	clk.Advance(24 * time.Hour)
	assert.Equal(t, 20, e.Stats().DueReviews)
}

func TestStats_RetentionScoreFloorsAtZero(t *testing.T) {
	ctx := context.Background()
	e, _, _ := newTestEngine(t, nil)
	_, err := e.SetCompletion(ctx, "t1", true)
	require.NoError(t, err)
	s := e.Stats()
	assert.Equal(t, 1, s.Percent)
	assert.Equal(t, 0, s.RetentionScore)
}

func TestRetentionRoundTrip(t *testing.T) {
	ctx := context.Background()
	e, _, _ := newTestEngine(t, nil)
	_, err := e.SetCompletion(ctx, "t", true)
	require.NoError(t, err)

	assert.Empty(t, e.DueReviews(start))
	assert.Equal(t, []string{"t"}, e.DueReviews(start.Add(24*time.Hour)))
	require.Len(t, e.DueEntries(start.Add(48*time.Hour)), 1)
}

func TestRecordReview_HardNeverLaterThanEasy(t *testing.T) {
	ctx := context.Background()
	seed := map[string]model.RetentionEntry{
		"t": {
			TaskID:              "t",
			CompletedAt:         start.Add(-10 * 24 * time.Hour),
			ReviewIntervalsDays: []int{1, 3, 7, 14, 30},
			ReviewCount:         1,
			Strength:            3,
			NextReviewAt:        start.Add(-time.Hour),
		},
	}
	raw, err := json.Marshal(seed)
	require.NoError(t, err)
	recs := model.Records{model.KeyRetention: raw}

	easy, _, _ := newTestEngine(t, recs)
	hard, _, _ := newTestEngine(t, recs)

	ok, err := easy.RecordReview(ctx, "t", model.Easy)
	require.NoError(t, err)
	require.True(t, ok)
	ok, err = hard.RecordReview(ctx, "t", model.Hard)
	require.NoError(t, err)
	require.True(t, ok)

	ee, _ := easy.RetentionEntry("t")
	he, _ := hard.RetentionEntry("t")
	assert.Equal(t, 4, ee.Strength)
	assert.Equal(t, 2, he.Strength)
	assert.Equal(t, start.Add(28*24*time.Hour), ee.NextReviewAt)
	assert.Equal(t, start.Add(14*24*time.Hour), he.NextReviewAt)
	assert.False(t, he.NextReviewAt.After(ee.NextReviewAt))
}

func TestRecordReview_UnknownIDIsNoop(t *testing.T) {
	e, _, p := newTestEngine(t, nil)
	ok, err := e.RecordReview(context.Background(), "ghost", model.Easy)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, 0, p.count())
}

func TestRecordActivity_Streak(t *testing.T) {
	ctx := context.Background()
	e, clk, _ := newTestEngine(t, nil)

	changed, err := e.RecordActivity(ctx)
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, 1, e.Streak().Count)

	changed, err = e.RecordActivity(ctx)
	require.NoError(t, err)
	assert.False(t, changed)

	clk.Advance(24 * time.Hour)
	_, err = e.RecordActivity(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, e.Streak().Count)

	clk.Advance(3 * 24 * time.Hour)
	_, err = e.RecordActivity(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, e.Streak().Count)
	assert.Equal(t, model.DateOf(clk.Now()), e.Streak().LastActive)
}

func TestRecordQuiz(t *testing.T) {
	ctx := context.Background()
	e, _, _ := newTestEngine(t, nil)
	require.NoError(t, e.RecordQuiz(ctx, 80))
	require.NoError(t, e.RecordQuiz(ctx, 140))
	require.NoError(t, e.RecordQuiz(ctx, -3))

	h := e.QuizHistory()
	require.Len(t, h, 3)
	assert.Equal(t, 80, h[0].Score)
	assert.Equal(t, 100, h[1].Score)
	assert.Equal(t, 0, h[2].Score)
	assert.True(t, h[0].Date.Equal(start))
}

func TestObserve(t *testing.T) {
	ctx := context.Background()
	clk := clock.NewFake(start)
	p := &memPersister{}
	e := Init(nil, Options{Clock: clk, Persister: p})

	require.NoError(t, e.Observe(ctx, "a", "b", "c"))
	assert.Equal(t, 3, e.Stats().Total)
	assert.Equal(t, 1, p.count())

	require.NoError(t, e.Observe(ctx, "a"))
	assert.Equal(t, 1, p.count(), "nothing new, nothing saved")
}

func TestMilestoneDisplayList(t *testing.T) {
	ctx := context.Background()
	e, _, _ := newTestEngine(t, nil)
	for _, id := range []string{"a", "b", "c", "d", "e"} {
		_, err := e.SetCompletion(ctx, id, true)
		require.NoError(t, err)
	}
	views := e.MilestoneDisplayList()
	require.Len(t, views, 3)
	assert.True(t, views[0].Achieved)
	assert.Equal(t, 1, views[0].Progress)
	assert.False(t, views[1].Locked)
	assert.Equal(t, 5, views[1].Progress)
	assert.True(t, views[2].Locked)

	cur, req, ok := e.ProgressToward("python_master")
	assert.True(t, ok)
	assert.Equal(t, 5, cur)
	assert.Equal(t, 10, req)
}

func TestInit_RecoversCorruptKeysIndependently(t *testing.T) {
	recs := model.Records{
		model.KeyProgress:       []byte(`{not json`),
		model.KeyStreak:         []byte(`4`),
		model.KeyLastActiveDate: []byte(`2026-10-15`),
		model.KeyMilestones:     []byte(`[{"id":"first_steps","achieved":true}]`),
		model.KeyQuizHistory:    []byte(`"oops"`),
	}
	e, _, _ := newTestEngine(t, recs)

	assert.ElementsMatch(t, []string{model.KeyProgress, model.KeyQuizHistory}, e.Recovered())
	assert.Equal(t, 0, e.Stats().Completed)
	assert.Empty(t, e.QuizHistory())
	assert.Equal(t, 4, e.Streak().Count)
	assert.True(t, e.IsAchieved("first_steps"))

	_, err := e.RecordActivity(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 5, e.Streak().Count, "yesterday's streak continues")
}

func TestInit_LegacyRecords(t *testing.T) {
	recs := model.Records{
		model.KeyProgress:       []byte(`{"ai_task_0":true,"ai_task_1":false}`),
		model.KeyStreak:         []byte(`"2"`),
		model.KeyLastActiveDate: []byte(`Thu Oct 15 2026`),
		model.KeyMilestones:     []byte(`[{"id":"first_steps","title":"AI Journey Begins","requiredTasks":1}]`),
	}
	e, _, _ := newTestEngine(t, recs)
	assert.Empty(t, e.Recovered())
	assert.True(t, e.IsCompleted("ai_task_0"))
	assert.Equal(t, 2, e.Streak().Count)
	assert.Equal(t, model.Date{Year: 2026, Month: time.October, Day: 15}, e.Streak().LastActive)
	assert.True(t, e.IsAchieved("first_steps"), "stored milestones without a flag are achieved")
}

func TestInit_ProgressWithoutMilestoneState(t *testing.T) {
	recs := model.Records{
		model.KeyProgress:   []byte(`{"a":true,"b":true}`),
		model.KeyMilestones: []byte(`[{"id":"first_steps","achieved":false}]`),
	}
	e, _, p := newTestEngine(t, recs)

	assert.True(t, e.IsAchieved("first_steps"))
	assert.Equal(t, 1, e.Stats().MilestonesAchieved)
	require.Len(t, e.Reconciled(), 1)
	assert.Equal(t, "first_steps", e.Reconciled()[0].ID)
	assert.Equal(t, 0, p.count(), "loading does not save")

	newly, err := e.CheckMilestones(context.Background())
	require.NoError(t, err)
	assert.Empty(t, newly, "reconciled milestones are not reported twice")
}

func TestSerializeInitRoundTrip(t *testing.T) {
	ctx := context.Background()
	e, clk, _ := newTestEngine(t, nil)
	_, err := e.SetCompletion(ctx, "t1", true)
	require.NoError(t, err)
	_, err = e.SetCompletion(ctx, "t2", false)
	require.NoError(t, err)
	clk.Advance(2 * 24 * time.Hour)
	_, err = e.RecordReview(ctx, "t1", model.Easy)
	require.NoError(t, err)
	require.NoError(t, e.RecordQuiz(ctx, 75))

	recs, err := e.Serialize()
	require.NoError(t, err)
	again, _, _ := newTestEngine(t, recs)

	assert.Empty(t, again.Recovered())
	assert.JSONEq(t, stateJSON(t, e.State()), stateJSON(t, again.State()))
	assert.Len(t, again.QuizHistory(), 1)
}

func TestPersistFailure_StateStaysUsable(t *testing.T) {
	ctx := context.Background()
	e, _, p := newTestEngine(t, nil)
	var results []error
	e.onSave = func(err error) { results = append(results, err) }

	p.err = errors.New("disk full")
	ch, err := e.SetCompletion(ctx, "t1", true)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrPersist)
	assert.True(t, ch.Changed)
	assert.True(t, e.IsCompleted("t1"))
	assert.Equal(t, 1, e.Stats().Completed)

	p.err = nil
	require.NoError(t, e.Flush(ctx))
	assert.Equal(t, 1, p.count())
	assert.Contains(t, string(p.last[model.KeyProgress]), `"t1":true`)
	require.Len(t, results, 2)
	assert.Error(t, results[0])
	assert.NoError(t, results[1])
}

func TestNoPersister(t *testing.T) {
	e := Init(nil, Options{Clock: clock.NewFake(start)})
	_, err := e.SetCompletion(context.Background(), "t1", true)
	require.NoError(t, err)
	require.NoError(t, e.Close(context.Background()))
}
