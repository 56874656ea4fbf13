// Package model defines the core domain types for learnlog.
//
// Learnlog tracks progress through a self-paced learning roadmap. Four
// components share one persisted state:
//
//   - the task ledger: which roadmap tasks are checked off;
//   - the streak: consecutive calendar days with activity;
//   - milestones: sticky achievements unlocked by completed-task thresholds;
//   - retention: a spaced-repetition schedule per completed task, where a
//     1..5 strength score stretches the gap between reviews.
//
// The types here carry JSON tags matching the persisted records and the
// export snapshot format.
package model

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Strength bounds for a retention entry.
const (
	MinStrength = 1
	MaxStrength = 5
)

// ErrInvalidDifficulty is returned when a review difficulty is not one of
// easy, medium or hard.
var ErrInvalidDifficulty = errors.New("invalid difficulty")

// TaskRecord is the completion state of one roadmap task. TaskID is
// supplied by the caller and never derived from display order.
type TaskRecord struct {
	TaskID    string `json:"taskId"`
	Completed bool   `json:"completed"`
}

// StreakState is the daily-activity streak. HasActivity is false until
// the first recorded activity, in which case LastActive is meaningless.
type StreakState struct {
	Count       int  `json:"count"`
	LastActive  Date `json:"lastActiveDate"`
	HasActivity bool `json:"hasActivity"`
}

// MilestoneDef is one entry of the milestone catalog.
type MilestoneDef struct {
	ID            string `json:"id" toml:"id" yaml:"id"`
	Title         string `json:"title,omitempty" toml:"title" yaml:"title"`
	Description   string `json:"description,omitempty" toml:"description" yaml:"description"`
	Reward        string `json:"reward,omitempty" toml:"reward" yaml:"reward"`
	RequiredTasks int    `json:"requiredTasks" toml:"required_tasks" yaml:"required_tasks"`
	// Project marks milestones that count toward the "projects built" stat.
	Project bool `json:"project,omitempty" toml:"project" yaml:"project"`
}

// MilestoneState records whether a milestone has been achieved. Once
// Achieved is true it stays true.
type MilestoneState struct {
	ID       string `json:"id"`
	Achieved bool   `json:"achieved"`
}

// MilestoneView is a display row for a milestone.
type MilestoneView struct {
	MilestoneDef
	Achieved bool `json:"achieved"`
	// Locked is true while the learner is more than five tasks away.
	Locked   bool `json:"locked"`
	Progress int  `json:"progress"`
}

// Difficulty is a self-reported recall difficulty for a review.
type Difficulty string

const (
	Easy   Difficulty = "easy"
	Medium Difficulty = "medium"
	Hard   Difficulty = "hard"
)

// ParseDifficulty parses a difficulty name, case-insensitively.
func ParseDifficulty(s string) (Difficulty, error) {
	switch d := Difficulty(strings.ToLower(strings.TrimSpace(s))); d {
	case Easy, Medium, Hard:
		return d, nil
	default:
		return "", fmt.Errorf("%w: %q (want easy, medium or hard)", ErrInvalidDifficulty, s)
	}
}

// RetentionEntry is the spaced-repetition schedule of one completed task.
type RetentionEntry struct {
	TaskID              string    `json:"taskId"`
	CompletedAt         time.Time `json:"completedAt"`
	ReviewIntervalsDays []int     `json:"reviewIntervalsDays"`
	ReviewCount         int       `json:"reviewCount"`
	Strength            int       `json:"strength"`
	NextReviewAt        time.Time `json:"nextReviewAt"`
}

// QuizResult is one entry of the append-only quiz history. Score is a
// percentage in [0,100].
type QuizResult struct {
	Date  time.Time `json:"date"`
	Score int       `json:"score"`
}

// EngineState is the full persisted state. The maps are keyed
// independently: a task may have no retention entry, and a retention entry
// may outlive its task after an import.
type EngineState struct {
	Tasks      map[string]TaskRecord     `json:"tasks"`
	Streak     StreakState               `json:"streak"`
	Milestones map[string]MilestoneState `json:"milestones"`
	Retention  map[string]RetentionEntry `json:"retention"`
}

// Stats are the aggregate values shown on the progress header.
type Stats struct {
	Completed          int `json:"completed"`
	Total              int `json:"total"`
	Percent            int `json:"percent"`
	RetentionScore     int `json:"retentionScore"`
	DueReviews         int `json:"dueReviews"`
	Streak             int `json:"streak"`
	ProjectsBuilt      int `json:"projectsBuilt"`
	MilestonesAchieved int `json:"milestonesAchieved"`
}

// Records is the persisted blob: one serialized value per record key.
type Records map[string][]byte

// Record keys.
const (
	KeyProgress       = "progress"
	KeyRetention      = "retention"
	KeyStreak         = "streak"
	KeyLastActiveDate = "last_active_date"
	KeyMilestones     = "milestones"
	KeyQuizHistory    = "quiz_history"
)

// RecordKeys lists every record key in load order.
var RecordKeys = []string{
	KeyProgress,
	KeyRetention,
	KeyStreak,
	KeyLastActiveDate,
	KeyMilestones,
	KeyQuizHistory,
}
