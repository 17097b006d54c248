package terminal

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gokatarajesh/trivia-quiz/internal/navbar"
	"github.com/gokatarajesh/trivia-quiz/internal/question"
	"github.com/gokatarajesh/trivia-quiz/internal/quiz"
)

// identitySource keeps options in their original order: incorrect answers
// first, the correct answer last.
type identitySource struct{}

func (identitySource) Intn(n int) int { return n - 1 }

func provider(set question.Set, err error) question.Provider {
	return question.ProviderFunc(func(ctx context.Context) (question.Set, error) {
		return set, err
	})
}

func twoQuestions() question.Set {
	return question.Set{
		{Text: "2+2?", CorrectAnswer: "4", IncorrectAnswers: []string{"3", "5"}},
		{Text: "Sky colour?", CorrectAnswer: "Blue", IncorrectAnswers: []string{"Green"}},
	}
}

func play(t *testing.T, p question.Provider, input string, header *navbar.Navbar) (string, error) {
	t.Helper()
	var out bytes.Buffer
	player := NewPlayer(p, strings.NewReader(input), &out, Options{
		Shuffler: quiz.NewShuffler(identitySource{}),
		Header:   header,
	}, zerolog.Nop())
	err := player.Run(context.Background())
	return out.String(), err
}

func TestPlayerRunsToSummary(t *testing.T) {
	header := navbar.Default()
	out, err := play(t, provider(twoQuestions(), nil), "c\nA\n", &header)
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(out, "QuizApp  |  Profile · Settings · Logout\n"))
	assert.Contains(t, out, "Q1. 2+2?")
	assert.Contains(t, out, "A. 3\nB. 5\nC. 4\n")
	assert.Contains(t, out, "Correct!\nScore: 1/2")
	assert.Contains(t, out, "Q2. Sky colour?")
	assert.Contains(t, out, "Incorrect! Correct answer was Blue\nScore: 1/2")
	assert.Contains(t, out, "Score: 1/2 (1 correct, 1 incorrect)\nGood job!")
}

func TestPlayerRepromptsOnInvalidInput(t *testing.T) {
	out, err := play(t, provider(twoQuestions()[:1], nil), "z\n\nc\n", nil)
	require.NoError(t, err)
	assert.Equal(t, 2, strings.Count(out, "Invalid input. Please enter a letter A-C."))
	assert.Contains(t, out, "Excellent!")
}

func TestPlayerLeavesAfterThreeInvalidAnswers(t *testing.T) {
	out, err := play(t, provider(twoQuestions(), nil), "x\ny\nz\nA\n", nil)
	require.NoError(t, err)
	assert.Contains(t, out, "No valid answer. Leaving the quiz with 0/2.")
	assert.NotContains(t, out, "Q2.")
	assert.NotContains(t, out, "Quiz finished!")
}

func TestPlayerStopsAtEndOfInput(t *testing.T) {
	out, err := play(t, provider(twoQuestions(), nil), "C\n", nil)
	require.NoError(t, err)
	assert.Contains(t, out, "Correct!")
	assert.Contains(t, out, "Leaving the quiz with 1/2.")
}

func TestPlayerAcceptsFinalLineWithoutNewline(t *testing.T) {
	out, err := play(t, provider(twoQuestions()[:1], nil), "c", nil)
	require.NoError(t, err)
	assert.Contains(t, out, "Quiz finished!")
}

func TestPlayerEmptySet(t *testing.T) {
	out, err := play(t, provider(question.Set{}, nil), "", nil)
	require.NoError(t, err)
	assert.Contains(t, out, quiz.MessageEmpty)
}

func TestPlayerLoadError(t *testing.T) {
	out, err := play(t, provider(nil, errors.New("network down")), "", nil)
	assert.ErrorIs(t, err, ErrLoadFailed)
	assert.Contains(t, out, "Error loading Quiz data: network down")
}
