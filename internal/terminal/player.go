// Package terminal plays a quiz session over a line-oriented reader and writer.
package terminal

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/rs/zerolog"

	"github.com/gokatarajesh/trivia-quiz/internal/navbar"
	"github.com/gokatarajesh/trivia-quiz/internal/question"
	"github.com/gokatarajesh/trivia-quiz/internal/quiz"
)

const maxAttempts = 3

// ErrLoadFailed is returned when the question set could not be fetched. The
// error message has already been printed.
var ErrLoadFailed = errors.New("terminal: question set failed to load")

// Options tunes a Player.
type Options struct {
	Shuffler quiz.Shuffler
	Observer quiz.Observer
	// Header is rendered before the first question; nil skips it.
	Header *navbar.Navbar
}

// Player drives one quiz session from typed letters.
type Player struct {
	provider question.Provider
	in       *bufio.Reader
	out      io.Writer
	opts     Options
	logger   zerolog.Logger
}

func NewPlayer(provider question.Provider, in io.Reader, out io.Writer, opts Options, logger zerolog.Logger) *Player {
	return &Player{
		provider: provider,
		in:       bufio.NewReader(in),
		out:      out,
		opts:     opts,
		logger:   logger.With().Str("component", "terminal_player").Logger(),
	}
}

// Run loads a question set and plays it to the end, or until input is
// exhausted or invalid maxAttempts times in a row.
func (p *Player) Run(ctx context.Context) error {
	if p.opts.Header != nil {
		if err := p.opts.Header.Render(p.out); err != nil {
			return err
		}
	}

	s := quiz.NewSession(quiz.Options{Shuffler: p.opts.Shuffler, Observer: p.opts.Observer})
	defer s.Close()

	fmt.Fprintln(p.out, quiz.MessageLoading)
	if err := s.Load(ctx, p.provider); err != nil {
		return err
	}

	view := s.View()
	switch view.State {
	case quiz.StateError:
		fmt.Fprintln(p.out, view.Message)
		return ErrLoadFailed
	case quiz.StateEmpty:
		fmt.Fprintln(p.out, view.Message)
		return nil
	}

	for view.State == quiz.StateReady {
		if err := ctx.Err(); err != nil {
			return err
		}
		q := view.Question
		printQuestion(p.out, q)

		choice, ok := p.readChoice(len(q.Options))
		if !ok {
			p.logger.Debug().Int("question", q.Number).Msg("no valid answer, leaving")
			fmt.Fprintf(p.out, "\nNo valid answer. Leaving the quiz with %d/%d.\n", view.Score, q.Total)
			return nil
		}
		if err := s.Select(q.Options[choice]); err != nil {
			return err
		}
		feedback, err := s.Reveal()
		if err != nil {
			return err
		}

		view = s.View()
		fmt.Fprintln(p.out)
		if feedback == quiz.FeedbackCorrect {
			fmt.Fprintln(p.out, feedback)
		} else {
			fmt.Fprintf(p.out, "%s Correct answer was %s\n", feedback, view.Question.CorrectAnswer)
		}
		fmt.Fprintf(p.out, "Score: %d/%d\n", view.Score, q.Total)

		if err := s.Next(); err != nil {
			return err
		}
		view = s.View()
	}

	if view.Summary != nil {
		printSummary(p.out, *view.Summary)
	}
	return nil
}

func printQuestion(out io.Writer, q *quiz.QuestionView) {
	fmt.Fprintln(out)
	fmt.Fprintf(out, "Q%d. %s\n\n", q.Number, q.Text)
	for i, option := range q.Options {
		fmt.Fprintf(out, "%c. %s\n", 'A'+i, option)
	}
	fmt.Fprintln(out)
}

func printSummary(out io.Writer, summary quiz.Summary) {
	fmt.Fprintln(out)
	fmt.Fprintln(out, "Quiz finished!")
	fmt.Fprintf(out, "Score: %d/%d (%d correct, %d incorrect)\n", summary.Score, summary.Total, summary.Correct, summary.Incorrect)
	fmt.Fprintln(out, summary.Remark)
}

// readChoice returns the zero-based option index typed by the player.
func (p *Player) readChoice(optionCount int) (int, bool) {
	if optionCount < 1 {
		return -1, false
	}
	maxLetter := byte('A' + optionCount - 1)

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		fmt.Fprint(p.out, "Your answer: ")
		line, err := p.in.ReadString('\n')
		if err != nil && line == "" {
			return -1, false
		}

		answer := strings.ToUpper(strings.TrimSpace(line))
		if len(answer) == 1 && answer[0] >= 'A' && answer[0] <= maxLetter {
			return int(answer[0] - 'A'), true
		}
		if err != nil {
			return -1, false
		}
		if attempt < maxAttempts {
			fmt.Fprintf(p.out, "Invalid input. Please enter a letter A-%c.\n", maxLetter)
		}
	}
	return -1, false
}
