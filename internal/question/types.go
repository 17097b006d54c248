package question

import (
	"errors"
	"fmt"
	"strings"
)

// Source identifiers.
const (
	SourceTriviaAPI = "triviaapi"
	SourceOpenTDB   = "opentdb"
)

// ErrMalformed marks a provider payload that does not carry the question shape.
var ErrMalformed = errors.New("malformed question payload")

// Question is one multiple-choice trivia item. It is never mutated after load.
type Question struct {
	ID               string   `json:"id"`
	Text             string   `json:"text"`
	CorrectAnswer    string   `json:"correct_answer"`
	IncorrectAnswers []string `json:"incorrect_answers"`
	Category         string   `json:"category,omitempty"`
	Difficulty       string   `json:"difficulty,omitempty"`
	Source           string   `json:"source,omitempty"`
}

// Answers returns a fresh slice holding the incorrect answers followed by the correct one.
func (q Question) Answers() []string {
	out := make([]string, 0, len(q.IncorrectAnswers)+1)
	out = append(out, q.IncorrectAnswers...)
	return append(out, q.CorrectAnswer)
}

// Validate reports whether q carries question text, a correct answer and an
// incorrect answer list.
func (q Question) Validate() error {
	if strings.TrimSpace(q.Text) == "" {
		return fmt.Errorf("%w: missing question text", ErrMalformed)
	}
	if q.CorrectAnswer == "" {
		return fmt.Errorf("%w: missing correct answer", ErrMalformed)
	}
	if q.IncorrectAnswers == nil {
		return fmt.Errorf("%w: missing incorrect answers", ErrMalformed)
	}
	return nil
}

// Set is the ordered batch of questions for one quiz session.
type Set []Question

// Validate checks every question; no partial set is accepted.
func (s Set) Validate() error {
	for i, q := range s {
		if err := q.Validate(); err != nil {
			return fmt.Errorf("question %d: %w", i, err)
		}
	}
	return nil
}

// Clone returns a deep copy so callers cannot alias another session's data.
func (s Set) Clone() Set {
	if s == nil {
		return nil
	}
	out := make(Set, len(s))
	for i, q := range s {
		q.IncorrectAnswers = append([]string{}, q.IncorrectAnswers...)
		out[i] = q
	}
	return out
}
