// Package expreplay implements the experience replay buffer that
// training batches are sampled from.
package expreplay

import (
	"golang.org/x/exp/rand"

	"sfneuman.com/godraft/draft"
)

// Experience is a single (state, action, reward, next state) learning
// sample. States are snapshots and are never mutated once captured.
type Experience struct {
	State     *draft.DraftState
	Action    draft.Action
	Reward    float64
	NextState *draft.DraftState
}

// Buffer is a fixed-capacity experience store with FIFO eviction. A
// fresh Buffer is created for each training epoch and each validation
// call; no buffer state persists across epochs.
type Buffer struct {
	data  []Experience // ring buffer
	start int
	size  int
	rng   *rand.Rand
}

// New returns an empty Buffer holding at most capacity experiences.
func New(capacity int, seed uint64) (*Buffer, error) {
	if capacity < 1 {
		return nil, &BufferError{Op: "new", Err: errInvalidCapacity}
	}
	return &Buffer{
		data: make([]Experience, capacity),
		rng:  rand.New(rand.NewSource(seed)),
	}, nil
}

// Store appends each experience to the buffer, evicting the oldest
// entries once capacity is exceeded.
func (b *Buffer) Store(experiences []Experience) {
	for _, e := range experiences {
		b.data[(b.start+b.size)%len(b.data)] = e
		if b.size < len(b.data) {
			b.size++
		} else {
			b.start = (b.start + 1) % len(b.data)
		}
	}
}

// Sample returns n experiences drawn uniformly at random without
// replacement. It fails if the buffer is empty or if n exceeds the
// current occupancy.
func (b *Buffer) Sample(n int) ([]Experience, error) {
	if b.size == 0 {
		return nil, &BufferError{Op: "sample", Err: errEmptyBuffer}
	}
	if n > b.size {
		return nil, &BufferError{Op: "sample", Err: errInsufficientSamples}
	}

	sampled := make([]Experience, n)
	for i, p := range b.rng.Perm(b.size)[:n] {
		sampled[i] = b.data[(b.start+p)%len(b.data)]
	}
	return sampled, nil
}

// Size returns the current occupancy of the buffer.
func (b *Buffer) Size() int {
	return b.size
}

// Capacity returns the maximum number of experiences the buffer holds.
func (b *Buffer) Capacity() int {
	return len(b.data)
}
