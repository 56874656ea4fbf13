package engine

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/daviddao/learnlog/pkg/model"
)

// loaded is the decoded record set. Keys that failed to decode hold their
// defaults and are listed in recovered.
type loaded struct {
	progress   map[string]bool
	retention  map[string]model.RetentionEntry
	streak     model.StreakState
	milestones []model.MilestoneState
	quiz       []model.QuizResult
	recovered  []string
}

func decodeRecords(recs model.Records) loaded {
	var l loaded
	fail := func(key string) { l.recovered = append(l.recovered, key) }

	if b, ok := recs[model.KeyProgress]; ok {
		if err := json.Unmarshal(b, &l.progress); err != nil {
			l.progress = nil
			fail(model.KeyProgress)
		}
	}
	if b, ok := recs[model.KeyRetention]; ok {
		if err := json.Unmarshal(b, &l.retention); err != nil {
			l.retention = nil
			fail(model.KeyRetention)
		}
	}
	if b, ok := recs[model.KeyStreak]; ok {
		n, err := decodeStreak(b)
		if err != nil {
			fail(model.KeyStreak)
		}
		l.streak.Count = n
	}
	if b, ok := recs[model.KeyLastActiveDate]; ok {
		s := strings.Trim(strings.TrimSpace(string(b)), `"`)
		if s != "" {
			d, err := model.ParseDate(s)
			if err != nil {
				fail(model.KeyLastActiveDate)
			} else {
				l.streak.LastActive = d
				l.streak.HasActivity = true
			}
		}
	}
	if b, ok := recs[model.KeyMilestones]; ok {
		ms, err := decodeMilestones(b)
		if err != nil {
			fail(model.KeyMilestones)
		}
		l.milestones = ms
	}
	if b, ok := recs[model.KeyQuizHistory]; ok {
		if err := json.Unmarshal(b, &l.quiz); err != nil {
			l.quiz = nil
			fail(model.KeyQuizHistory)
		}
	}
	return l
}

// decodeStreak accepts plain integer text as well as a JSON number or
// string. Negative counts are corrupt.
func decodeStreak(b []byte) (int, error) {
	s := strings.Trim(strings.TrimSpace(string(b)), `"`)
	if s == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, err
	}
	if n < 0 {
		return 0, fmt.Errorf("negative streak %d", n)
	}
	return n, nil
}

type milestoneWire struct {
	ID       string `json:"id"`
	Achieved *bool  `json:"achieved"`
}

// decodeMilestones reads an array of {id, achieved} objects. Entries
// without an achieved field come from trackers that stored only achieved
// milestones and count as achieved. An object keyed by id is also read.
func decodeMilestones(b []byte) ([]model.MilestoneState, error) {
	var arr []milestoneWire
	if err := json.Unmarshal(b, &arr); err == nil {
		out := make([]model.MilestoneState, 0, len(arr))
		for _, w := range arr {
			if w.ID == "" {
				continue
			}
			out = append(out, model.MilestoneState{ID: w.ID, Achieved: w.Achieved == nil || *w.Achieved})
		}
		return out, nil
	}

	var byID map[string]milestoneWire
	if err := json.Unmarshal(b, &byID); err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(byID))
	for id := range byID {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	out := make([]model.MilestoneState, 0, len(ids))
	for _, id := range ids {
		w := byID[id]
		out = append(out, model.MilestoneState{ID: id, Achieved: w.Achieved == nil || *w.Achieved})
	}
	return out, nil
}

// serializeLocked encodes the current state as a full record set.
func (e *Engine) serializeLocked() (model.Records, error) {
	recs := make(model.Records, len(model.RecordKeys))
	put := func(key string, v any) error {
		b, err := json.Marshal(v)
		if err != nil {
			return fmt.Errorf("encode %s: %w", key, err)
		}
		recs[key] = b
		return nil
	}

	if err := put(model.KeyProgress, e.ledger.Progress()); err != nil {
		return nil, err
	}
	if err := put(model.KeyRetention, e.retention.Entries()); err != nil {
		return nil, err
	}
	st := e.streak.State()
	recs[model.KeyStreak] = []byte(strconv.Itoa(st.Count))
	if st.HasActivity {
		recs[model.KeyLastActiveDate] = []byte(st.LastActive.String())
	}
	if err := put(model.KeyMilestones, e.milestones.States()); err != nil {
		return nil, err
	}
	quiz := e.quiz
	if quiz == nil {
		quiz = []model.QuizResult{}
	}
	if err := put(model.KeyQuizHistory, quiz); err != nil {
		return nil, err
	}
	return recs, nil
}
