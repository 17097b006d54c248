package quiz

import (
	"context"
	"sync"

	"github.com/gokatarajesh/trivia-quiz/internal/question"
)

// Options configures a Session.
type Options struct {
	Shuffler Shuffler
	Observer Observer
}

// Session is one run of the quiz from load to results. All methods are safe
// for concurrent use; mutations are serialized by the session itself.
type Session struct {
	mu sync.Mutex

	state     State
	requested bool
	closed    bool
	errMsg    string

	questions question.Set
	index     int
	options   []string
	selected  string
	picked    bool
	answered  bool

	score     int
	correct   int
	incorrect int

	shuffler Shuffler
	observer Observer
}

// NewSession returns a session in the loading state.
func NewSession(opts Options) *Session {
	if opts.Observer == nil {
		opts.Observer = nopObserver{}
	}
	return &Session{
		state:    StateLoading,
		shuffler: opts.Shuffler,
		observer: opts.Observer,
	}
}

// Load requests the question set once and settles the session into ready,
// empty or error. A result arriving after Close is discarded and ErrClosed
// is returned.
func (s *Session) Load(ctx context.Context, provider question.Provider) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrClosed
	}
	if s.requested {
		s.mu.Unlock()
		return ErrAlreadyLoaded
	}
	s.requested = true
	s.mu.Unlock()

	set, err := provider.Fetch(ctx)
	if err == nil {
		// Guards providers that skip validation.
		err = set.Validate()
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrClosed
	}
	if err != nil {
		s.state = StateError
		s.errMsg = MessageErrorPrefix + err.Error()
	} else {
		s.questions = set.Clone()
		if len(s.questions) == 0 {
			s.state = StateEmpty
		} else {
			s.state = StateReady
			s.enterQuestion(0)
		}
	}
	state := s.state
	s.mu.Unlock()

	s.observer.Loaded(state)
	return nil
}

// enterQuestion must be called with mu held.
func (s *Session) enterQuestion(index int) {
	s.index = index
	s.options = s.questions[index].Answers()
	s.shuffler.Shuffle(s.options)
	s.selected = ""
	s.picked = false
	s.answered = false
}

// Select records answer as the pending choice, replacing any earlier one.
func (s *Session) Select(answer string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.activeLocked(); err != nil {
		return err
	}
	if s.answered {
		return ErrAlreadyAnswered
	}
	if !contains(s.options, answer) {
		return ErrUnknownOption
	}
	s.selected = answer
	s.picked = true
	return nil
}

// Reveal commits the selection, scores it and freezes the feedback.
func (s *Session) Reveal() (Feedback, error) {
	s.mu.Lock()
	ok, err := s.revealLocked()
	s.mu.Unlock()
	if err != nil {
		return FeedbackNone, err
	}

	s.observer.Committed(ok)
	if ok {
		return FeedbackCorrect, nil
	}
	return FeedbackIncorrect, nil
}

// Next moves past a committed question, finishing the session after the last one.
func (s *Session) Next() error {
	s.mu.Lock()
	finished, summary, err := s.nextLocked()
	s.mu.Unlock()
	if err != nil {
		return err
	}
	if finished {
		s.observer.Finished(summary)
	}
	return nil
}

// Advance is the single-control flow: the first call reveals, the second moves on.
// The branch is chosen and taken under one lock.
func (s *Session) Advance() error {
	s.mu.Lock()
	if err := s.activeLocked(); err != nil {
		s.mu.Unlock()
		return err
	}
	if !s.answered {
		ok, err := s.revealLocked()
		s.mu.Unlock()
		if err != nil {
			return err
		}
		s.observer.Committed(ok)
		return nil
	}
	finished, summary, err := s.nextLocked()
	s.mu.Unlock()
	if err != nil {
		return err
	}
	if finished {
		s.observer.Finished(summary)
	}
	return nil
}

// revealLocked reports whether the pending choice was correct.
func (s *Session) revealLocked() (bool, error) {
	if err := s.activeLocked(); err != nil {
		return false, err
	}
	if s.answered {
		return false, ErrAlreadyAnswered
	}
	if !s.picked {
		return false, ErrNoSelection
	}

	ok := s.selected == s.questions[s.index].CorrectAnswer
	if ok {
		s.score++
		s.correct++
	} else {
		s.incorrect++
	}
	s.answered = true
	return ok, nil
}

func (s *Session) nextLocked() (bool, Summary, error) {
	if err := s.activeLocked(); err != nil {
		return false, Summary{}, err
	}
	if !s.answered {
		return false, Summary{}, ErrNotAnswered
	}
	if s.index < len(s.questions)-1 {
		s.enterQuestion(s.index + 1)
		return false, Summary{}, nil
	}
	s.state = StateFinished
	return true, s.summaryLocked(), nil
}

// Close tears the session down. Pending loads are discarded and further
// actions return ErrClosed.
func (s *Session) Close() {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
}

// Closed reports whether Close was called.
func (s *Session) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

// State returns the lifecycle state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Summary returns the results once the session is finished.
func (s *Session) Summary() (Summary, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateFinished {
		return Summary{}, false
	}
	return s.summaryLocked(), true
}

// View snapshots the session for rendering.
func (s *Session) View() View {
	s.mu.Lock()
	defer s.mu.Unlock()

	v := View{
		State:     s.state,
		Score:     s.score,
		Correct:   s.correct,
		Incorrect: s.incorrect,
	}
	switch s.state {
	case StateLoading:
		v.Message = MessageLoading
	case StateError:
		v.Message = s.errMsg
	case StateEmpty:
		v.Message = MessageEmpty
	case StateFinished:
		summary := s.summaryLocked()
		v.Summary = &summary
	case StateReady:
		q := s.questions[s.index]
		qv := &QuestionView{
			Number:    s.index + 1,
			Total:     len(s.questions),
			Text:      q.Text,
			Options:   append([]string(nil), s.options...),
			Selected:  s.selected,
			Answered:  s.answered,
			CanReveal: !s.answered && s.picked && !s.closed,
			CanNext:   s.answered && !s.closed,
		}
		if s.answered {
			qv.CorrectAnswer = q.CorrectAnswer
			if s.selected == q.CorrectAnswer {
				qv.Feedback = FeedbackCorrect
			} else {
				qv.Feedback = FeedbackIncorrect
			}
		}
		v.Question = qv
	}
	return v
}

func (s *Session) activeLocked() error {
	if s.closed {
		return ErrClosed
	}
	if s.state != StateReady {
		return ErrNotReady
	}
	return nil
}

func (s *Session) summaryLocked() Summary {
	total := len(s.questions)
	return Summary{
		Score:     s.score,
		Total:     total,
		Correct:   s.correct,
		Incorrect: s.incorrect,
		Remark:    Remark(s.score, total),
	}
}

func contains(items []string, item string) bool {
	for _, it := range items {
		if it == item {
			return true
		}
	}
	return false
}
