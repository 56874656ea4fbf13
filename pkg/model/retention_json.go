package model

import (
	"encoding/json"
	"time"
)

// retentionWire is the union of the current and the legacy browser shape of
// a retention entry. Legacy timestamps are epoch milliseconds.
type retentionWire struct {
	TaskID              string     `json:"taskId"`
	CompletedAt         *time.Time `json:"completedAt"`
	ReviewIntervalsDays []int      `json:"reviewIntervalsDays"`
	ReviewCount         int        `json:"reviewCount"`
	Strength            int        `json:"strength"`
	NextReviewAt        *time.Time `json:"nextReviewAt"`

	CompletedDate *int64  `json:"completedDate"`
	ReviewDates   []int64 `json:"reviewDates"`
	NextReview    *int64  `json:"nextReview"`
}

// UnmarshalJSON decodes a retention entry, accepting the legacy browser
// shape where nextReviewAt is absent: the next review then comes from
// nextReview, or from reviewDates indexed by the review count.
func (e *RetentionEntry) UnmarshalJSON(b []byte) error {
	var w retentionWire
	if err := json.Unmarshal(b, &w); err != nil {
		return err
	}

	out := RetentionEntry{
		TaskID:              w.TaskID,
		ReviewIntervalsDays: w.ReviewIntervalsDays,
		ReviewCount:         w.ReviewCount,
		Strength:            w.Strength,
	}
	switch {
	case w.CompletedAt != nil:
		out.CompletedAt = w.CompletedAt.UTC()
	case w.CompletedDate != nil:
		out.CompletedAt = time.UnixMilli(*w.CompletedDate).UTC()
	}
	switch {
	case w.NextReviewAt != nil:
		out.NextReviewAt = w.NextReviewAt.UTC()
	case w.NextReview != nil:
		out.NextReviewAt = time.UnixMilli(*w.NextReview).UTC()
	case len(w.ReviewDates) > 0:
		i := w.ReviewCount
		if i >= len(w.ReviewDates) {
			i = len(w.ReviewDates) - 1
		}
		if i < 0 {
			i = 0
		}
		out.NextReviewAt = time.UnixMilli(w.ReviewDates[i]).UTC()
	}
	if out.ReviewCount < 0 {
		out.ReviewCount = 0
	}
	out.Strength = ClampStrength(out.Strength)

	*e = out
	return nil
}

// ClampStrength bounds s to [MinStrength, MaxStrength].
func ClampStrength(s int) int {
	if s < MinStrength {
		return MinStrength
	}
	if s > MaxStrength {
		return MaxStrength
	}
	return s
}
