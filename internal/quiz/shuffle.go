package quiz

import "math/rand"

// Source supplies uniform integers in [0, n). *rand.Rand satisfies it.
type Source interface {
	Intn(n int) int
}

type globalSource struct{}

func (globalSource) Intn(n int) int { return rand.Intn(n) }

// Shuffler permutes answer options in place.
type Shuffler struct {
	src Source
}

// NewShuffler wraps src; a nil src uses the process-wide generator, which is
// safe for concurrent use.
func NewShuffler(src Source) Shuffler {
	if src == nil {
		src = globalSource{}
	}
	return Shuffler{src: src}
}

// Shuffle applies Fisher–Yates so every permutation is equally likely.
func (s Shuffler) Shuffle(items []string) {
	src := s.src
	if src == nil {
		src = globalSource{}
	}
	for i := len(items) - 1; i > 0; i-- {
		j := src.Intn(i + 1)
		items[i], items[j] = items[j], items[i]
	}
}
