package plan

import (
	"math/rand/v2"
	"sync"
)

// RandomSource returns a uniformly distributed int in [0, n).
type RandomSource interface {
	IntN(n int) int
}

type mathRandSource struct{}

func (mathRandSource) IntN(n int) int {
	return rand.IntN(n)
}

// NewRandomSource returns the process-wide math/rand/v2 source.
func NewRandomSource() RandomSource {
	return mathRandSource{}
}

// SequenceSource replays a fixed list of draws, wrapping around at the end.
// Each value is reduced modulo n, so any non-negative sequence is a valid draw.
type SequenceSource struct {
	mu     sync.Mutex
	values []int
	next   int
}

func NewSequenceSource(values ...int) *SequenceSource {
	return &SequenceSource{values: values}
}

func (s *SequenceSource) IntN(n int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.values) == 0 {
		return 0
	}
	v := s.values[s.next%len(s.values)]
	s.next++
	if v < 0 {
		v = -v
	}
	return v % n
}
