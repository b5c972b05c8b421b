package auth

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/medge/codewords/internal/dependencies/mocks"
	"github.com/medge/codewords/internal/storage/memory"
)

type ServiceSuite struct {
	suite.Suite
	storage *memory.Storage
	clock   *mocks.MockClock
	service *Service
	ctx     context.Context
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	s.storage = memory.New()
	s.clock = mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	s.service = New(s.storage, s.clock, DefaultConfig())
	s.ctx = context.Background()
}

// Guest tests

func (s *ServiceSuite) TestCreateGuestPlayer() {
	session, err := s.service.CreateGuestPlayer(s.ctx, "Alice")
	s.Require().NoError(err)

	s.NotEmpty(session.Token)
	s.Equal("Alice", session.Player.DisplayName)
	s.True(session.Player.IsGuest)
	s.Equal(s.clock.Now().Add(DefaultConfig().GuestSessionDuration), session.ExpiresAt)

	player, err := s.storage.GetPlayer(s.ctx, session.PlayerID)
	s.Require().NoError(err)
	s.True(player.IsGuest)
}

func (s *ServiceSuite) TestCreateGuestPlayerValidatesDisplayName() {
	_, err := s.service.CreateGuestPlayer(s.ctx, "   ")
	s.ErrorIs(err, ErrDisplayNameInvalid)

	_, err = s.service.CreateGuestPlayer(s.ctx, strings.Repeat("x", 33))
	s.ErrorIs(err, ErrDisplayNameInvalid)
}

// Registration and login tests

func (s *ServiceSuite) TestRegisterPlayer() {
	session, err := s.service.RegisterPlayer(s.ctx, "Alice99", "sekrit-password", "Alice")
	s.Require().NoError(err)

	s.False(session.Player.IsGuest)
	s.Equal(s.clock.Now().Add(DefaultConfig().SessionDuration), session.ExpiresAt)

	// Usernames are lowercased on the way in
	rp, err := s.storage.GetRegisteredPlayerByUsername(s.ctx, "alice99")
	s.Require().NoError(err)
	s.Equal(session.PlayerID, rp.PlayerID)
	s.NotEqual("sekrit-password", rp.PasswordHash)
}

func (s *ServiceSuite) TestRegisterPlayerRejectsDuplicateUsername() {
	_, err := s.service.RegisterPlayer(s.ctx, "alice", "sekrit-password", "Alice")
	s.Require().NoError(err)

	_, err = s.service.RegisterPlayer(s.ctx, "ALICE", "other-password", "Imposter")
	s.ErrorIs(err, ErrUsernameExists)
}

func (s *ServiceSuite) TestRegisterPlayerValidation() {
	_, err := s.service.RegisterPlayer(s.ctx, "ab", "sekrit-password", "Alice")
	s.ErrorIs(err, ErrUsernameInvalid)

	_, err = s.service.RegisterPlayer(s.ctx, "alice", "short", "Alice")
	s.ErrorIs(err, ErrPasswordTooShort)

	_, err = s.service.RegisterPlayer(s.ctx, "alice", "sekrit-password", "")
	s.ErrorIs(err, ErrDisplayNameInvalid)
}

func (s *ServiceSuite) TestLogin() {
	registered, err := s.service.RegisterPlayer(s.ctx, "alice", "sekrit-password", "Alice")
	s.Require().NoError(err)

	session, err := s.service.Login(s.ctx, "Alice", "sekrit-password")
	s.Require().NoError(err)
	s.Equal(registered.PlayerID, session.PlayerID)
	s.NotEqual(registered.Token, session.Token)
}

func (s *ServiceSuite) TestLoginRejectsWrongPassword() {
	_, err := s.service.RegisterPlayer(s.ctx, "alice", "sekrit-password", "Alice")
	s.Require().NoError(err)

	_, err = s.service.Login(s.ctx, "alice", "wrong-password")
	s.ErrorIs(err, ErrInvalidCredentials)
}

func (s *ServiceSuite) TestLoginRejectsUnknownUsername() {
	_, err := s.service.Login(s.ctx, "nobody", "whatever-password")
	s.ErrorIs(err, ErrInvalidCredentials)
}

// Session tests

func (s *ServiceSuite) TestValidateSession() {
	session, err := s.service.CreateGuestPlayer(s.ctx, "Alice")
	s.Require().NoError(err)

	got, err := s.service.ValidateSession(session.Token)
	s.Require().NoError(err)
	s.Equal(session.PlayerID, got.PlayerID)
}

func (s *ServiceSuite) TestValidateSessionRejectsUnknownToken() {
	_, err := s.service.ValidateSession("sess_bogus")
	s.ErrorIs(err, ErrInvalidSession)
}

func (s *ServiceSuite) TestGuestSessionExpires() {
	session, err := s.service.CreateGuestPlayer(s.ctx, "Alice")
	s.Require().NoError(err)

	s.clock.Advance(DefaultConfig().GuestSessionDuration + time.Minute)

	_, err = s.service.ValidateSession(session.Token)
	s.ErrorIs(err, ErrInvalidSession)
}

func (s *ServiceSuite) TestRegisteredSessionOutlivesGuestWindow() {
	session, err := s.service.RegisterPlayer(s.ctx, "alice", "sekrit-password", "Alice")
	s.Require().NoError(err)

	s.clock.Advance(DefaultConfig().GuestSessionDuration + time.Minute)

	_, err = s.service.ValidateSession(session.Token)
	s.NoError(err)
}

func (s *ServiceSuite) TestInvalidateSession() {
	session, err := s.service.CreateGuestPlayer(s.ctx, "Alice")
	s.Require().NoError(err)

	s.service.InvalidateSession(session.Token)

	_, err = s.service.ValidateSession(session.Token)
	s.ErrorIs(err, ErrInvalidSession)
}

func (s *ServiceSuite) TestCleanExpiredSessions() {
	expired, err := s.service.CreateGuestPlayer(s.ctx, "Alice")
	s.Require().NoError(err)

	s.clock.Advance(DefaultConfig().GuestSessionDuration + time.Minute)
	fresh, err := s.service.CreateGuestPlayer(s.ctx, "Bob")
	s.Require().NoError(err)

	s.service.CleanExpiredSessions()

	_, err = s.service.ValidateSession(expired.Token)
	s.ErrorIs(err, ErrInvalidSession)
	_, err = s.service.ValidateSession(fresh.Token)
	s.NoError(err)
}

func (s *ServiceSuite) TestGetPlayer() {
	session, err := s.service.CreateGuestPlayer(s.ctx, "Alice")
	s.Require().NoError(err)

	player, err := s.service.GetPlayer(session.Token)
	s.Require().NoError(err)
	s.Equal("Alice", player.DisplayName)
}
