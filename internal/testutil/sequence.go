package testutil

import "sync/atomic"

// Sequence numbers scenario steps. The first Next returns 1, so two runs of
// the same scenario produce identical step numbers.
//
// Safe for concurrent use.
type Sequence struct {
	n atomic.Int64
}

// NewSequence returns a sequence positioned before step 1.
func NewSequence() *Sequence {
	return &Sequence{}
}

// Next advances the sequence and returns the new step number.
func (s *Sequence) Next() int64 {
	return s.n.Add(1)
}

// Current returns the last number handed out, or 0.
func (s *Sequence) Current() int64 {
	return s.n.Load()
}

// Reset rewinds the sequence so the next step is 1 again.
func (s *Sequence) Reset() {
	s.n.Store(0)
}
