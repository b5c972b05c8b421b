package mocks

import (
	"time"

	"github.com/medge/codewords/internal/dependencies/clock"
)

// MockClock is a Clock pinned to a settable instant
type MockClock struct {
	now time.Time
}

var _ clock.Clock = (*MockClock)(nil)

// NewMockClock creates a MockClock pinned to t
func NewMockClock(t time.Time) *MockClock {
	return &MockClock{now: t}
}

// Now returns the pinned instant
func (c *MockClock) Now() time.Time {
	return c.now
}

// Advance moves the pinned instant forward by d
func (c *MockClock) Advance(d time.Duration) {
	c.now = c.now.Add(d)
}

// Set pins the clock to t
func (c *MockClock) Set(t time.Time) {
	c.now = t
}
