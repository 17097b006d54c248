package quiz

import "errors"

// State is the lifecycle position of a session.
type State string

const (
	StateLoading  State = "loading"
	StateError    State = "error"
	StateEmpty    State = "empty"
	StateReady    State = "ready"
	StateFinished State = "finished"
)

// Feedback is the frozen verdict shown once a question is committed.
type Feedback string

const (
	FeedbackNone      Feedback = ""
	FeedbackCorrect   Feedback = "Correct!"
	FeedbackIncorrect Feedback = "Incorrect!"
)

// User-facing messages.
const (
	MessageLoading     = "Loading..."
	MessageEmpty       = "No question available"
	MessageErrorPrefix = "Error loading Quiz data: "
)

// Result remarks.
const (
	RemarkExcellent = "Excellent!"
	RemarkGood      = "Good job!"
	RemarkTryAgain  = "Try again!"
)

// Invalid actions. The session is left untouched when one is returned.
var (
	ErrNotReady        = errors.New("quiz: no active question")
	ErrAlreadyAnswered = errors.New("quiz: question already answered")
	ErrNotAnswered     = errors.New("quiz: question not answered yet")
	ErrNoSelection     = errors.New("quiz: no answer selected")
	ErrUnknownOption   = errors.New("quiz: answer is not one of the options")
	ErrAlreadyLoaded   = errors.New("quiz: question set already requested")
	ErrClosed          = errors.New("quiz: session closed")
)

// Summary is the results view of a finished session.
type Summary struct {
	Score     int    `json:"score"`
	Total     int    `json:"total"`
	Correct   int    `json:"correct"`
	Incorrect int    `json:"incorrect"`
	Remark    string `json:"remark"`
}

// QuestionView is the render model of the current question.
type QuestionView struct {
	Number        int      `json:"number"`
	Total         int      `json:"total"`
	Text          string   `json:"text"`
	Options       []string `json:"options"`
	Selected      string   `json:"selected,omitempty"`
	Answered      bool     `json:"answered"`
	Feedback      Feedback `json:"feedback,omitempty"`
	CorrectAnswer string   `json:"correct_answer,omitempty"`
	CanReveal     bool     `json:"can_reveal"`
	CanNext       bool     `json:"can_next"`
}

// View is a point-in-time snapshot of a session, safe to hand to renderers.
type View struct {
	State     State         `json:"state"`
	Message   string        `json:"message,omitempty"`
	Question  *QuestionView `json:"question,omitempty"`
	Score     int           `json:"score"`
	Correct   int           `json:"correct"`
	Incorrect int           `json:"incorrect"`
	Summary   *Summary      `json:"summary,omitempty"`
}

// Remark grades a score; exactly half counts as "Good job!".
func Remark(score, total int) string {
	switch {
	case score == total:
		return RemarkExcellent
	case score*2 >= total:
		return RemarkGood
	default:
		return RemarkTryAgain
	}
}

// Observer is told about scoring-relevant transitions (implemented by metrics).
type Observer interface {
	Loaded(state State)
	Committed(correct bool)
	Finished(summary Summary)
}

type nopObserver struct{}

func (nopObserver) Loaded(State)     {}
func (nopObserver) Committed(bool)   {}
func (nopObserver) Finished(Summary) {}
