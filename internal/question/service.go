package question

import (
	"context"
	"fmt"
	"html"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/gokatarajesh/trivia-quiz/internal/question/external"
)

// Provider yields the question set for one session.
type Provider interface {
	Fetch(ctx context.Context) (Set, error)
}

// ProviderFunc adapts a plain function to Provider.
type ProviderFunc func(ctx context.Context) (Set, error)

func (f ProviderFunc) Fetch(ctx context.Context) (Set, error) { return f(ctx) }

// FetchObserver receives timing for every upstream fetch (implemented by metrics).
type FetchObserver interface {
	ObserveFetch(source string, err error, elapsed time.Duration)
}

type opentdbProvider interface {
	Fetch(ctx context.Context, q external.OpenTDBQuery) ([]external.OpenTDBQuestion, error)
}

type triviaProvider interface {
	Fetch(ctx context.Context, limit int, category, difficulty string) ([]external.TriviaAPIQuestion, error)
}

// ServiceOptions selects the upstream and its filters.
type ServiceOptions struct {
	Source     string
	Limit      int
	Category   string
	Difficulty string
	Observer   FetchObserver
}

// Service normalizes upstream trivia records into a validated Set.
type Service struct {
	opentdb   opentdbProvider
	triviaAPI triviaProvider
	opts      ServiceOptions
	logger    zerolog.Logger
}

var _ Provider = (*Service)(nil)

func NewService(opentdb opentdbProvider, trivia triviaProvider, opts ServiceOptions, logger zerolog.Logger) *Service {
	if opts.Source == "" {
		opts.Source = SourceTriviaAPI
	}
	return &Service{
		opentdb:   opentdb,
		triviaAPI: trivia,
		opts:      opts,
		logger:    logger.With().Str("component", "question_service").Str("source", opts.Source).Logger(),
	}
}

// Source reports the configured upstream name.
func (s *Service) Source() string { return s.opts.Source }

// Fetch performs one upstream call. Any record without the question shape fails the whole set.
func (s *Service) Fetch(ctx context.Context) (Set, error) {
	start := time.Now()
	set, err := s.fetch(ctx)
	if s.opts.Observer != nil {
		s.opts.Observer.ObserveFetch(s.opts.Source, err, time.Since(start))
	}
	if err != nil {
		s.logger.Warn().Err(err).Msg("question fetch failed")
		return nil, err
	}
	s.logger.Debug().Int("count", len(set)).Dur("elapsed", time.Since(start)).Msg("question set fetched")
	return set, nil
}

func (s *Service) fetch(ctx context.Context) (Set, error) {
	var set Set
	switch s.opts.Source {
	case SourceTriviaAPI:
		if s.triviaAPI == nil {
			return nil, fmt.Errorf("triviaapi client not configured")
		}
		tv, err := s.triviaAPI.Fetch(ctx, s.opts.Limit, s.opts.Category, s.opts.Difficulty)
		if err != nil {
			return nil, err
		}
		if tv == nil {
			return nil, fmt.Errorf("%w: expected a list of questions", ErrMalformed)
		}
		set = make(Set, 0, len(tv))
		for _, q := range tv {
			set = append(set, normalizeTriviaAPI(q))
		}
	case SourceOpenTDB:
		if s.opentdb == nil {
			return nil, fmt.Errorf("opentdb client not configured")
		}
		ot, err := s.opentdb.Fetch(ctx, external.OpenTDBQuery{
			Amount:     s.opts.Limit,
			Category:   s.opts.Category,
			Difficulty: s.opts.Difficulty,
			Type:       "multiple",
		})
		if err != nil {
			return nil, err
		}
		if ot == nil {
			return nil, fmt.Errorf("%w: expected a list of questions", ErrMalformed)
		}
		set = make(Set, 0, len(ot))
		for _, q := range ot {
			set = append(set, normalizeOpenTDB(q))
		}
	default:
		return nil, fmt.Errorf("unknown question source %q", s.opts.Source)
	}

	if err := set.Validate(); err != nil {
		return nil, err
	}
	return set, nil
}

func normalizeTriviaAPI(q external.TriviaAPIQuestion) Question {
	id := q.ID
	if id == "" {
		id = uuid.NewString()
	}
	return Question{
		ID:               id,
		Text:             q.Question.Text,
		CorrectAnswer:    q.Correct,
		IncorrectAnswers: q.Incorrect,
		Category:         q.Category,
		Difficulty:       q.Difficulty,
		Source:           SourceTriviaAPI,
	}
}

// OpenTDB returns HTML-escaped text by default.
func normalizeOpenTDB(q external.OpenTDBQuestion) Question {
	var incorrect []string
	if q.IncorrectAnswer != nil {
		incorrect = make([]string, len(q.IncorrectAnswer))
		for i, a := range q.IncorrectAnswer {
			incorrect[i] = html.UnescapeString(a)
		}
	}
	return Question{
		ID:               uuid.NewString(),
		Text:             html.UnescapeString(q.Question),
		CorrectAnswer:    html.UnescapeString(q.CorrectAnswer),
		IncorrectAnswers: incorrect,
		Category:         html.UnescapeString(q.Category),
		Difficulty:       q.Difficulty,
		Source:           SourceOpenTDB,
	}
}
