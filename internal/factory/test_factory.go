package factory

import (
	"time"

	"github.com/medge/codewords/internal/dependencies/mocks"
	"github.com/medge/codewords/internal/events"
	"github.com/medge/codewords/internal/metrics"
	"github.com/medge/codewords/internal/model"
	"github.com/medge/codewords/internal/services/auth"
	"github.com/medge/codewords/internal/services/presence"
	"github.com/medge/codewords/internal/storage/memory"
	"github.com/medge/codewords/internal/testutil"
)

// TestApp extends App with test-specific helpers
type TestApp struct {
	*App

	// Mocks for test control
	MockClock  *mocks.MockClock
	MockRandom *mocks.MockRandom
}

// NewTestApp creates an App configured for testing with mocked dependencies
func NewTestApp() *TestApp {
	mockClock := mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	mockRandom := mocks.NewMockRandom()
	store := memory.NewWithClock(mockClock)

	app := newWithDependencies(
		store,
		mockClock,
		mockRandom,
		events.NoopPublisher{},
		metrics.New(),
		auth.DefaultConfig(),
		presence.DefaultConfig(),
		presence.DefaultSweepInterval,
		testutil.NopLogger(),
	)

	return &TestApp{
		App:        app,
		MockClock:  mockClock,
		MockRandom: mockRandom,
	}
}

// LoadTestWordlists loads small English and Russian word pools for testing
func (t *TestApp) LoadTestWordlists() error {
	if err := t.WordlistService.LoadWords(model.ModeEnglish, testutil.EnglishWords()); err != nil {
		return err
	}
	return t.WordlistService.LoadWords(model.ModeRussian, testutil.RussianWords())
}
