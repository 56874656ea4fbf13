// Package milestone evaluates one-time achievements against the number of
// completed roadmap tasks.
//
// Achievement is monotonic. Evaluate marks a milestone achieved the first
// time the completed count reaches its threshold and reports it exactly
// once; later evaluations with a lower count (after unchecking tasks) never
// report it again and never clear it. Callers can therefore re-evaluate
// after every toggle and celebrate whatever comes back.
package milestone

import (
	"sort"

	"github.com/daviddao/learnlog/pkg/model"
)

// lockedDistance is how many tasks short of a milestone it stays locked.
const lockedDistance = 5

// Evaluator holds a catalog and the sticky achieved set. Not goroutine-safe.
type Evaluator struct {
	catalog  []model.MilestoneDef
	index    map[string]int
	achieved map[string]bool
}

// New returns an evaluator for catalog, restoring the achieved flags in
// states. Achieved ids missing from the catalog are retained.
func New(catalog []model.MilestoneDef, states []model.MilestoneState) *Evaluator {
	e := &Evaluator{
		catalog:  append([]model.MilestoneDef(nil), catalog...),
		index:    make(map[string]int, len(catalog)),
		achieved: make(map[string]bool),
	}
	for i, def := range e.catalog {
		e.index[def.ID] = i
	}
	for _, st := range states {
		if st.Achieved {
			e.achieved[st.ID] = true
		}
	}
	return e
}

// Evaluate marks every not-yet-achieved milestone whose threshold is met
// and returns those, in catalog order.
func (e *Evaluator) Evaluate(completed int) []model.MilestoneDef {
	var fresh []model.MilestoneDef
	for _, def := range e.catalog {
		if e.achieved[def.ID] {
			continue
		}
		if completed >= def.RequiredTasks {
			e.achieved[def.ID] = true
			fresh = append(fresh, def)
		}
	}
	return fresh
}

// IsAchieved reports whether id has been achieved. Unknown ids are false.
func (e *Evaluator) IsAchieved(id string) bool { return e.achieved[id] }

// ProgressToward returns (completed, required) for id with completed
// clamped to required. ok is false for ids not in the catalog.
func (e *Evaluator) ProgressToward(id string, completed int) (current, required int, ok bool) {
	i, found := e.index[id]
	if !found {
		return 0, 0, false
	}
	required = e.catalog[i].RequiredTasks
	current = completed
	if current > required {
		current = required
	}
	if current < 0 {
		current = 0
	}
	return current, required, true
}

// Display returns one view per catalog entry, in catalog order.
func (e *Evaluator) Display(completed int) []model.MilestoneView {
	views := make([]model.MilestoneView, 0, len(e.catalog))
	for _, def := range e.catalog {
		cur, _, _ := e.ProgressToward(def.ID, completed)
		achieved := e.achieved[def.ID] || completed >= def.RequiredTasks
		views = append(views, model.MilestoneView{
			MilestoneDef: def,
			Achieved:     achieved,
			Locked:       !achieved && completed < def.RequiredTasks-lockedDistance,
			Progress:     cur,
		})
	}
	return views
}

// AchievedCount returns the number of achieved milestones, including ids
// outside the catalog.
func (e *Evaluator) AchievedCount() int { return len(e.achieved) }

// ProjectsBuilt counts achieved catalog milestones flagged as projects.
func (e *Evaluator) ProjectsBuilt() int {
	n := 0
	for _, def := range e.catalog {
		if def.Project && e.achieved[def.ID] {
			n++
		}
	}
	return n
}

// States returns one state per catalog entry in catalog order, followed by
// achieved ids outside the catalog in lexical order.
func (e *Evaluator) States() []model.MilestoneState {
	states := make([]model.MilestoneState, 0, len(e.catalog))
	for _, def := range e.catalog {
		states = append(states, model.MilestoneState{ID: def.ID, Achieved: e.achieved[def.ID]})
	}
	var extra []string
	for id := range e.achieved {
		if _, ok := e.index[id]; !ok {
			extra = append(extra, id)
		}
	}
	sort.Strings(extra)
	for _, id := range extra {
		states = append(states, model.MilestoneState{ID: id, Achieved: true})
	}
	return states
}
