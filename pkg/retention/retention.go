// Package retention schedules spaced-repetition reviews of completed tasks.
//
// Each completed task gets an entry with a review count, a strength in
// [1,5] and the time of its next review. A review moves to the next
// interval of the schedule and, with strength scaling on, multiplies it by
// the strength, so confidently recalled tasks drift to long gaps:
//
//	next = now + intervals[min(reviewCount, len-1)] * strength days
//
// The review count selects the interval and strength multiplies it; both
// grow with easy reviews. Persisted schedules depend on this exact rule.
package retention

import (
	"sort"
	"time"

	"github.com/daviddao/learnlog/pkg/model"
)

// Day is the length of one schedule unit.
const Day = 24 * time.Hour

// DefaultIntervals is the review schedule in days.
var DefaultIntervals = []int{1, 3, 7, 14, 30}

// Policy configures scheduling.
type Policy struct {
	// Intervals is copied into each new entry. Empty means DefaultIntervals.
	Intervals []int
	// ScaleByStrength multiplies the interval by the entry's strength.
	ScaleByStrength bool
}

// DefaultPolicy returns the standard schedule with strength scaling.
func DefaultPolicy() Policy {
	return Policy{Intervals: append([]int(nil), DefaultIntervals...), ScaleByStrength: true}
}

func (p Policy) intervals() []int {
	if len(p.Intervals) == 0 {
		return DefaultIntervals
	}
	return p.Intervals
}

// Scheduler owns the retention entries. Not goroutine-safe.
type Scheduler struct {
	policy  Policy
	entries map[string]model.RetentionEntry
}

// New returns a scheduler resuming from entries (may be nil).
func New(policy Policy, entries map[string]model.RetentionEntry) *Scheduler {
	s := &Scheduler{policy: policy, entries: make(map[string]model.RetentionEntry, len(entries))}
	for id, e := range entries {
		if e.TaskID == "" {
			e.TaskID = id
		}
		e.Strength = model.ClampStrength(e.Strength)
		s.entries[id] = e
	}
	return s
}

// OnTaskCompleted creates the entry for taskID if there is none. An
// existing entry is left alone, so re-completing a task keeps its history.
// Returns true when an entry was created.
func (s *Scheduler) OnTaskCompleted(taskID string, now time.Time) bool {
	if _, ok := s.entries[taskID]; ok {
		return false
	}
	iv := append([]int(nil), s.policy.intervals()...)
	s.entries[taskID] = model.RetentionEntry{
		TaskID:              taskID,
		CompletedAt:         now.UTC(),
		ReviewIntervalsDays: iv,
		ReviewCount:         0,
		Strength:            model.MinStrength,
		NextReviewAt:        now.Add(time.Duration(iv[0]) * Day).UTC(),
	}
	return true
}

// OnTaskUncompleted keeps the entry. Review history survives an uncheck so
// an accidental toggle costs nothing.
func (s *Scheduler) OnTaskUncompleted(taskID string) {}

// DueReviews returns the ids of entries due at now, earliest first.
func (s *Scheduler) DueReviews(now time.Time) []string {
	due := s.DueEntries(now)
	ids := make([]string, len(due))
	for i, e := range due {
		ids[i] = e.TaskID
	}
	return ids
}

// DueEntries returns entries with NextReviewAt <= now, earliest first and
// ties broken by task id.
func (s *Scheduler) DueEntries(now time.Time) []model.RetentionEntry {
	all := s.Scheduled()
	n := sort.Search(len(all), func(i int) bool { return all[i].NextReviewAt.After(now) })
	if n == 0 {
		return nil
	}
	return all[:n]
}

// Scheduled returns every entry ordered by NextReviewAt, ties broken by
// task id.
func (s *Scheduler) Scheduled() []model.RetentionEntry {
	out := make([]model.RetentionEntry, 0, len(s.entries))
	for _, e := range s.entries {
		e.ReviewIntervalsDays = append([]int(nil), e.ReviewIntervalsDays...)
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].NextReviewAt.Equal(out[j].NextReviewAt) {
			return out[i].NextReviewAt.Before(out[j].NextReviewAt)
		}
		return out[i].TaskID < out[j].TaskID
	})
	return out
}

// RecordReview applies a review of taskID at now. Unknown ids are ignored
// and return false.
func (s *Scheduler) RecordReview(taskID string, d model.Difficulty, now time.Time) bool {
	e, ok := s.entries[taskID]
	if !ok {
		return false
	}
	s.entries[taskID] = s.review(e, d, now)
	return true
}

func (s *Scheduler) review(e model.RetentionEntry, d model.Difficulty, now time.Time) model.RetentionEntry {
	e.ReviewCount++
	switch d {
	case model.Easy:
		e.Strength = model.ClampStrength(e.Strength + 1)
	case model.Hard:
		e.Strength = model.ClampStrength(e.Strength - 1)
	default:
		e.Strength = model.ClampStrength(e.Strength)
	}

	iv := e.ReviewIntervalsDays
	if len(iv) == 0 {
		iv = s.policy.intervals()
	}
	i := e.ReviewCount
	if i > len(iv)-1 {
		i = len(iv) - 1
	}
	days := iv[i]
	if s.policy.ScaleByStrength {
		days *= e.Strength
	}
	next := now.Add(time.Duration(days) * Day).UTC()
	if next.After(e.NextReviewAt) {
		e.NextReviewAt = next
	}
	return e
}

// Entry returns the entry for taskID.
func (s *Scheduler) Entry(taskID string) (model.RetentionEntry, bool) {
	e, ok := s.entries[taskID]
	return e, ok
}

// Len returns the number of entries.
func (s *Scheduler) Len() int { return len(s.entries) }

// Entries returns a copy of all entries keyed by task id.
func (s *Scheduler) Entries() map[string]model.RetentionEntry {
	out := make(map[string]model.RetentionEntry, len(s.entries))
	for id, e := range s.entries {
		e.ReviewIntervalsDays = append([]int(nil), e.ReviewIntervalsDays...)
		out[id] = e
	}
	return out
}
