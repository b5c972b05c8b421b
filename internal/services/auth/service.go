package auth

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"strings"
	"sync"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/medge/codewords/internal/dependencies/clock"
	"github.com/medge/codewords/internal/model"
	"github.com/medge/codewords/internal/storage"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidSession     = errors.New("invalid or expired session")
	ErrUsernameExists     = errors.New("username already exists")
	ErrDisplayNameInvalid = errors.New("display name must be 1-32 characters")
	ErrUsernameInvalid    = errors.New("username must be 3-32 characters")
	ErrPasswordTooShort   = errors.New("password must be at least 8 characters")
)

const (
	maxDisplayNameLength = 32
	minUsernameLength    = 3
	maxUsernameLength    = 32
	minPasswordLength    = 8
)

// Session is an authenticated session held in memory. Session tokens come
// from crypto/rand, never from the injected random source
type Session struct {
	Token     string
	PlayerID  model.PlayerID
	Player    model.Player
	CreatedAt time.Time
	ExpiresAt time.Time
}

// Service manages player accounts and their sessions
type Service struct {
	storage storage.Storage
	clock   clock.Clock

	mu       sync.RWMutex
	sessions map[string]*Session

	sessionDuration      time.Duration
	guestSessionDuration time.Duration
}

// Config holds session lifetime settings
type Config struct {
	SessionDuration time.Duration
	// GuestSessionDuration bounds guest sessions separately; guests hold no
	// credentials so their sessions cannot be renewed by logging back in
	GuestSessionDuration time.Duration
}

// DefaultConfig returns the default session lifetimes
func DefaultConfig() Config {
	return Config{
		SessionDuration:      24 * time.Hour,
		GuestSessionDuration: 12 * time.Hour,
	}
}

// New creates an auth service. Zero durations in cfg fall back to defaults
func New(storage storage.Storage, clock clock.Clock, cfg Config) *Service {
	defaults := DefaultConfig()
	if cfg.SessionDuration == 0 {
		cfg.SessionDuration = defaults.SessionDuration
	}
	if cfg.GuestSessionDuration == 0 {
		cfg.GuestSessionDuration = defaults.GuestSessionDuration
	}
	return &Service{
		storage:              storage,
		clock:                clock,
		sessions:             make(map[string]*Session),
		sessionDuration:      cfg.SessionDuration,
		guestSessionDuration: cfg.GuestSessionDuration,
	}
}

// CreateGuestPlayer creates an anonymous player and opens a session for it
func (s *Service) CreateGuestPlayer(ctx context.Context, displayName string) (*Session, error) {
	displayName, err := validDisplayName(displayName)
	if err != nil {
		return nil, err
	}

	player := &model.Player{
		ID:          model.PlayerID(generateID("p_")),
		DisplayName: displayName,
		IsGuest:     true,
		CreatedAt:   s.clock.Now(),
	}
	if err := s.storage.SavePlayer(ctx, player); err != nil {
		return nil, err
	}
	return s.openSession(player), nil
}

// RegisterPlayer creates a registered account and opens a session.
// Usernames are case-insensitive and stored lowercased
func (s *Service) RegisterPlayer(ctx context.Context, username, password, displayName string) (*Session, error) {
	username = strings.ToLower(strings.TrimSpace(username))
	if len(username) < minUsernameLength || len(username) > maxUsernameLength {
		return nil, ErrUsernameInvalid
	}
	if len(password) < minPasswordLength {
		return nil, ErrPasswordTooShort
	}
	displayName, err := validDisplayName(displayName)
	if err != nil {
		return nil, err
	}

	_, err = s.storage.GetRegisteredPlayerByUsername(ctx, username)
	if err == nil {
		return nil, ErrUsernameExists
	}
	if !errors.Is(err, model.ErrPlayerNotFound) {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	player := &model.Player{
		ID:          model.PlayerID(generateID("p_")),
		DisplayName: displayName,
		CreatedAt:   now,
	}
	if err := s.storage.SavePlayer(ctx, player); err != nil {
		return nil, err
	}

	err = s.storage.SaveRegisteredPlayer(ctx, &model.RegisteredPlayer{
		PlayerID:     player.ID,
		Username:     username,
		PasswordHash: string(hash),
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		return nil, err
	}

	return s.openSession(player), nil
}

// Login authenticates a registered player and opens a session. Unknown
// usernames and bad passwords are indistinguishable to the caller
func (s *Service) Login(ctx context.Context, username, password string) (*Session, error) {
	username = strings.ToLower(strings.TrimSpace(username))

	rp, err := s.storage.GetRegisteredPlayerByUsername(ctx, username)
	if errors.Is(err, model.ErrPlayerNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	if bcrypt.CompareHashAndPassword([]byte(rp.PasswordHash), []byte(password)) != nil {
		return nil, ErrInvalidCredentials
	}

	player, err := s.storage.GetPlayer(ctx, rp.PlayerID)
	if err != nil {
		return nil, err
	}
	return s.openSession(player), nil
}

// ValidateSession resolves a token to its live session
func (s *Service) ValidateSession(token string) (*Session, error) {
	s.mu.RLock()
	session, ok := s.sessions[token]
	s.mu.RUnlock()

	if !ok {
		return nil, ErrInvalidSession
	}
	if s.clock.Now().After(session.ExpiresAt) {
		s.InvalidateSession(token)
		return nil, ErrInvalidSession
	}
	return session, nil
}

// InvalidateSession drops a session; unknown tokens are a no-op
func (s *Service) InvalidateSession(token string) {
	s.mu.Lock()
	delete(s.sessions, token)
	s.mu.Unlock()
}

// GetPlayer returns the player behind a session token
func (s *Service) GetPlayer(token string) (*model.Player, error) {
	session, err := s.ValidateSession(token)
	if err != nil {
		return nil, err
	}
	return &session.Player, nil
}

// CleanExpiredSessions drops every expired session; call periodically
func (s *Service) CleanExpiredSessions() {
	now := s.clock.Now()

	s.mu.Lock()
	defer s.mu.Unlock()
	for token, session := range s.sessions {
		if now.After(session.ExpiresAt) {
			delete(s.sessions, token)
		}
	}
}

func (s *Service) openSession(player *model.Player) *Session {
	now := s.clock.Now()
	duration := s.sessionDuration
	if player.IsGuest {
		duration = s.guestSessionDuration
	}

	session := &Session{
		Token:     generateID("sess_"),
		PlayerID:  player.ID,
		Player:    *player,
		CreatedAt: now,
		ExpiresAt: now.Add(duration),
	}

	s.mu.Lock()
	s.sessions[session.Token] = session
	s.mu.Unlock()
	return session
}

func validDisplayName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" || len(name) > maxDisplayNameLength {
		return "", ErrDisplayNameInvalid
	}
	return name, nil
}

func generateID(prefix string) string {
	b := make([]byte, 16)
	_, _ = rand.Read(b)
	return prefix + base64.RawURLEncoding.EncodeToString(b)
}
