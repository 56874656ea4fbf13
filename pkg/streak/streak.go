// Package streak tracks consecutive days of learning activity.
//
// The tracker is a small state machine over calendar days. Activity on the
// day after the last active day extends the streak; activity on the same
// day is ignored; anything else (first activity, a gap, or a last active
// day in the future from clock skew) restarts it at 1.
package streak

import "github.com/daviddao/learnlog/pkg/model"

// Tracker holds a streak state. Not goroutine-safe.
type Tracker struct {
	st model.StreakState
}

// New returns a tracker resuming from st.
func New(st model.StreakState) *Tracker {
	if st.Count < 0 {
		st.Count = 0
	}
	return &Tracker{st: st}
}

// RecordActivity registers activity on today. Returns true if the state
// changed.
func (t *Tracker) RecordActivity(today model.Date) bool {
	if t.st.HasActivity && t.st.LastActive == today {
		return false
	}
	if t.st.HasActivity && today.DaysSince(t.st.LastActive) == 1 {
		t.st.Count++
	} else {
		t.st.Count = 1
	}
	t.st.LastActive = today
	t.st.HasActivity = true
	return true
}

// Current returns the streak length in days.
func (t *Tracker) Current() int { return t.st.Count }

// State returns a copy of the streak state.
func (t *Tracker) State() model.StreakState { return t.st }
