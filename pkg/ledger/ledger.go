// Package ledger holds the task ledger: the map of roadmap task ids to
// their completion flag. It is the source of truth for completion counts.
//
// Ledger is not goroutine-safe; the engine serializes access.
package ledger

import (
	"math"
	"sort"

	"github.com/daviddao/learnlog/pkg/model"
)

// Ledger maps task ids to completion.
type Ledger struct {
	tasks map[string]bool
}

// New returns a ledger seeded from progress (may be nil).
func New(progress map[string]bool) *Ledger {
	l := &Ledger{tasks: make(map[string]bool, len(progress))}
	for id, done := range progress {
		l.tasks[id] = done
	}
	return l
}

// Set records completion for taskID, creating the record when absent.
// Returns true if the stored value changed. Creating an unchecked record
// does not count as a change.
func (l *Ledger) Set(taskID string, completed bool) bool {
	prev, ok := l.tasks[taskID]
	l.tasks[taskID] = completed
	if !ok {
		return completed
	}
	return prev != completed
}

// Observe registers taskID as unchecked if it is not yet known.
func (l *Ledger) Observe(taskID string) {
	if _, ok := l.tasks[taskID]; !ok {
		l.tasks[taskID] = false
	}
}

// Known reports whether taskID has a record.
func (l *Ledger) Known(taskID string) bool {
	_, ok := l.tasks[taskID]
	return ok
}

// IsCompleted returns the completion flag, false for unknown ids.
func (l *Ledger) IsCompleted(taskID string) bool { return l.tasks[taskID] }

// Len returns the number of records.
func (l *Ledger) Len() int { return len(l.tasks) }

// CompletedCount returns how many records are marked completed.
func (l *Ledger) CompletedCount() int {
	n := 0
	for _, done := range l.tasks {
		if done {
			n++
		}
	}
	return n
}

// Percentage returns round(100*completed/total) clamped to [0,100], and 0
// when total is not positive.
func (l *Ledger) Percentage(total int) int {
	return Percent(l.CompletedCount(), total)
}

// Percent is the rounding rule behind Percentage.
func Percent(part, total int) int {
	if total <= 0 {
		return 0
	}
	p := int(math.Round(100 * float64(part) / float64(total)))
	switch {
	case p < 0:
		return 0
	case p > 100:
		return 100
	}
	return p
}

// CompletedIDs returns the completed task ids in lexical order.
func (l *Ledger) CompletedIDs() []string {
	var ids []string
	for id, done := range l.tasks {
		if done {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return ids
}

// Progress returns a copy of the ledger as id -> completed.
func (l *Ledger) Progress() map[string]bool {
	out := make(map[string]bool, len(l.tasks))
	for id, done := range l.tasks {
		out[id] = done
	}
	return out
}

// Records returns the ledger as task records keyed by id.
func (l *Ledger) Records() map[string]model.TaskRecord {
	out := make(map[string]model.TaskRecord, len(l.tasks))
	for id, done := range l.tasks {
		out[id] = model.TaskRecord{TaskID: id, Completed: done}
	}
	return out
}
