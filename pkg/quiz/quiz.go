// Package quiz selects and scores knowledge-check questions.
package quiz

import (
	"errors"
	"fmt"
	"math"
	"math/rand"
)

// ErrNoQuestions is returned when a quiz is requested from an empty bank.
var ErrNoQuestions = errors.New("no quiz questions available")

// Question is a multiple-choice question. Correct indexes Options.
type Question struct {
	Prompt      string   `json:"question" toml:"question" yaml:"question"`
	Options     []string `json:"options" toml:"options" yaml:"options"`
	Correct     int      `json:"correct" toml:"correct" yaml:"correct"`
	Explanation string   `json:"explanation,omitempty" toml:"explanation" yaml:"explanation"`
}

// Validate checks that q has options and an in-range answer.
func (q Question) Validate() error {
	if q.Prompt == "" {
		return errors.New("question has no prompt")
	}
	if len(q.Options) < 2 {
		return fmt.Errorf("question %q: need at least two options", q.Prompt)
	}
	if q.Correct < 0 || q.Correct >= len(q.Options) {
		return fmt.Errorf("question %q: correct index %d out of range", q.Prompt, q.Correct)
	}
	return nil
}

// Select returns k questions drawn uniformly without replacement. k <= 0
// or k >= len(bank) returns the whole bank in random order.
func Select(rng *rand.Rand, bank []Question, k int) []Question {
	if k <= 0 || k > len(bank) {
		k = len(bank)
	}
	perm := rng.Perm(len(bank))
	out := make([]Question, k)
	for i := 0; i < k; i++ {
		out[i] = bank[perm[i]]
	}
	return out
}

// Score returns round(100*correct/total), 0 when total is 0.
func Score(correct, total int) int {
	if total <= 0 {
		return 0
	}
	return int(math.Round(100 * float64(correct) / float64(total)))
}

// Rate returns the encouragement line for a score.
func Rate(percent int) string {
	switch {
	case percent >= 90:
		return "Excellent! You're mastering these concepts!"
	case percent >= 70:
		return "Good job! Keep learning to improve further."
	case percent >= 50:
		return "Not bad, but review the concepts you missed."
	default:
		return "Keep studying! You'll get there with practice."
	}
}

// Session tracks answers to a selected set of questions.
type Session struct {
	Questions []Question
	answers   []bool
}

// NewSession starts a session over qs.
func NewSession(qs []Question) *Session {
	return &Session{Questions: qs, answers: make([]bool, 0, len(qs))}
}

// Answer records choice for the next unanswered question and reports
// whether it was correct.
func (s *Session) Answer(choice int) (bool, error) {
	i := len(s.answers)
	if i >= len(s.Questions) {
		return false, errors.New("quiz already finished")
	}
	ok := choice == s.Questions[i].Correct
	s.answers = append(s.answers, ok)
	return ok, nil
}

// Done reports whether every question has been answered.
func (s *Session) Done() bool { return len(s.answers) == len(s.Questions) }

// Correct returns the number of correct answers so far.
func (s *Session) Correct() int {
	n := 0
	for _, ok := range s.answers {
		if ok {
			n++
		}
	}
	return n
}

// Score returns the percent score over all questions in the session.
func (s *Session) Score() int { return Score(s.Correct(), len(s.Questions)) }
