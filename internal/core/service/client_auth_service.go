package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/vistoria/inspection-api/internal/core/domain"
	"github.com/vistoria/inspection-api/internal/core/ports"
)

const touchTimeout = 2 * time.Second

// ClientAuthService signs up portal clients and manages their sessions.
type ClientAuthService struct {
	clients    ports.ClientRepository
	sessions   ports.SessionStore
	sessionTTL time.Duration
	logger     zerolog.Logger
	now        func() time.Time
	// async runs side effects that must not block the request.
	async func(func())
}

func NewClientAuthService(clients ports.ClientRepository, sessions ports.SessionStore, sessionTTL time.Duration, logger zerolog.Logger) *ClientAuthService {
	if sessionTTL <= 0 {
		sessionTTL = 7 * 24 * time.Hour
	}
	return &ClientAuthService{
		clients:    clients,
		sessions:   sessions,
		sessionTTL: sessionTTL,
		logger:     logger,
		now:        utcNow,
		async:      func(f func()) { go f() },
	}
}

// Register creates a client account. Duplicate emails are rejected by the
// store with domain.ErrEmailTaken.
func (s *ClientAuthService) Register(ctx context.Context, in ports.ClientRegisterInput) (*domain.Client, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, domain.Internal(err)
	}

	now := s.now()
	client := &domain.Client{
		ID:           newID(),
		Name:         in.Name,
		Email:        normalizeEmail(in.Email),
		Phone:        in.Phone,
		Document:     in.Document,
		PasswordHash: string(hash),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.clients.Create(ctx, client); err != nil {
		return nil, err
	}

	s.logger.Info().Str("client_id", client.ID).Msg("client registered")
	return client, nil
}

// Login verifies credentials and opens a session.
func (s *ClientAuthService) Login(ctx context.Context, email, password string) (*ports.ClientSessionResult, error) {
	client, err := s.clients.FindByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, domain.ErrClientNotFound) {
			return nil, domain.ErrInvalidCredentials
		}
		return nil, err
	}
	if bcrypt.CompareHashAndPassword([]byte(client.PasswordHash), []byte(password)) != nil {
		return nil, domain.ErrInvalidCredentials
	}

	token, err := newSessionToken()
	if err != nil {
		return nil, domain.Internal(err)
	}

	now := s.now()
	session := &domain.Session{
		Token:          token,
		ClientID:       client.ID,
		ExpiresAt:      now.Add(s.sessionTTL),
		CreatedAt:      now,
		LastActivityAt: now,
	}
	if err := s.sessions.Create(ctx, session); err != nil {
		return nil, domain.Internal(err)
	}

	return &ports.ClientSessionResult{Token: token, ExpiresAt: session.ExpiresAt, Client: client}, nil
}

// Logout destroys the session. Unknown tokens are ignored.
func (s *ClientAuthService) Logout(ctx context.Context, token string) error {
	if err := s.sessions.Delete(ctx, token); err != nil {
		return domain.Internal(err)
	}
	return nil
}

// Me returns the client behind p.
func (s *ClientAuthService) Me(ctx context.Context, p domain.Principal) (*domain.Client, error) {
	if !p.IsClient() {
		return nil, domain.ErrSessionNotFound
	}
	return s.clients.FindByID(ctx, p.ID)
}

// Resolve maps a session token to a client principal. Expired sessions are
// deleted; the last-activity refresh runs in the background.
func (s *ClientAuthService) Resolve(ctx context.Context, token string) (domain.Principal, error) {
	if token == "" {
		return domain.Principal{}, domain.ErrTokenRequired
	}

	session, err := s.sessions.Get(ctx, token)
	if err != nil {
		if errors.Is(err, domain.ErrSessionNotFound) {
			return domain.Principal{}, domain.ErrSessionNotFound
		}
		return domain.Principal{}, domain.Internal(err)
	}

	now := s.now()
	if session.Expired(now) {
		if err := s.sessions.Delete(ctx, token); err != nil {
			s.logger.Warn().Err(err).Str("client_id", session.ClientID).Msg("failed to delete expired session")
		}
		return domain.Principal{}, domain.ErrSessionExpired
	}

	s.async(func() {
		tctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), touchTimeout)
		defer cancel()
		if err := s.sessions.Touch(tctx, token, now); err != nil {
			s.logger.Debug().Err(err).Str("client_id", session.ClientID).Msg("session touch failed")
		}
	})

	return domain.Principal{Type: domain.PrincipalClient, ID: session.ClientID}, nil
}

func newSessionToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
