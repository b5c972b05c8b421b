package mocks

import "github.com/medge/codewords/internal/dependencies/random"

// MockRandom replays queued values. An exhausted queue yields zero values,
// which keeps long deterministic sequences short to set up
type MockRandom struct {
	ints    []int
	strings []string
}

var _ random.Random = (*MockRandom)(nil)

// NewMockRandom creates a MockRandom with empty queues
func NewMockRandom() *MockRandom {
	return &MockRandom{}
}

// Intn pops the next queued int, or 0 when the queue is empty
func (r *MockRandom) Intn(n int) int {
	if len(r.ints) == 0 {
		return 0
	}
	v := r.ints[0]
	r.ints = r.ints[1:]
	return v
}

// String pops the next queued string, or "" when the queue is empty
func (r *MockRandom) String(length int, alphabet string) string {
	if len(r.strings) == 0 {
		return ""
	}
	v := r.strings[0]
	r.strings = r.strings[1:]
	return v
}

// QueueIntn appends values for Intn to return in order
func (r *MockRandom) QueueIntn(values ...int) {
	r.ints = append(r.ints, values...)
}

// QueueString appends values for String to return in order
func (r *MockRandom) QueueString(values ...string) {
	r.strings = append(r.strings, values...)
}

// Reset drops everything still queued
func (r *MockRandom) Reset() {
	r.ints = nil
	r.strings = nil
}
