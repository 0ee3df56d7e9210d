package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/satonic/satonic-admin/internal/logging"
	"github.com/satonic/satonic-admin/internal/store"
)

var (
	ErrNoSession      = errors.New("no active session")
	ErrSessionExpired = errors.New("session token has expired")
	ErrEmptyToken     = errors.New("token is required")
)

// Claims are the parts of a backend token the console reads
type Claims struct {
	Email string `json:"email,omitempty"`
	jwt.RegisteredClaims
}

// SessionService keeps the backend session the console acts with
type SessionService struct {
	sessions *store.SessionRepository
	logger   logging.Logger
	now      func() time.Time
}

// NewSessionService creates a new SessionService
func NewSessionService(sessions *store.SessionRepository, logger logging.Logger) *SessionService {
	if logger == nil {
		logger = logging.NoOp()
	}
	return &SessionService{
		sessions: sessions,
		logger:   logger,
		now:      time.Now,
	}
}

// InspectToken reads subject and expiry from a JWT without verifying it.
// The backend verifies tokens; the console only uses the claims to expire
// sessions early. Opaque tokens yield no claims.
func InspectToken(token string) (subject string, expiresAt *time.Time) {
	claims := &Claims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return "", nil
	}

	subject = claims.Subject
	if claims.Email != "" {
		subject = claims.Email
	}
	if claims.ExpiresAt != nil {
		t := claims.ExpiresAt.Time.UTC()
		expiresAt = &t
	}
	return subject, expiresAt
}

// Login stores token as the active session, replacing any previous one
func (s *SessionService) Login(ctx context.Context, token string) (*store.SessionRecord, error) {
	token = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(token), "Bearer "))
	if token == "" {
		return nil, ErrEmptyToken
	}

	subject, expiresAt := InspectToken(token)
	if expiresAt != nil && !s.now().Before(*expiresAt) {
		return nil, ErrSessionExpired
	}

	record := &store.SessionRecord{
		ID:        uuid.NewString(),
		Token:     token,
		Subject:   subject,
		CreatedAt: s.now().UTC(),
		ExpiresAt: expiresAt,
	}
	if err := s.sessions.Replace(ctx, record); err != nil {
		return nil, fmt.Errorf("failed to store session: %w", err)
	}

	s.logger.Info("session started", "session_id", record.ID, "subject", subject)
	return record, nil
}

// Current returns the active session. Expired sessions are removed.
func (s *SessionService) Current(ctx context.Context) (*store.SessionRecord, error) {
	record, err := s.sessions.Latest(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load session: %w", err)
	}
	return s.live(ctx, record)
}

// Validate checks that id names a stored, unexpired session
func (s *SessionService) Validate(ctx context.Context, id string) (*store.SessionRecord, error) {
	if id == "" {
		return nil, ErrNoSession
	}
	record, err := s.sessions.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load session: %w", err)
	}
	return s.live(ctx, record)
}

// live drops record when it has expired
func (s *SessionService) live(ctx context.Context, record *store.SessionRecord) (*store.SessionRecord, error) {
	if record == nil {
		return nil, ErrNoSession
	}
	if record.ExpiresAt != nil && !s.now().Before(*record.ExpiresAt) {
		s.logger.Info("session expired", "session_id", record.ID)
		if err := s.sessions.Delete(ctx, record.ID); err != nil {
			return nil, fmt.Errorf("failed to drop expired session: %w", err)
		}
		return nil, ErrNoSession
	}
	return record, nil
}

// Token implements api.TokenSource
func (s *SessionService) Token(ctx context.Context) (string, error) {
	record, err := s.Current(ctx)
	if err != nil {
		return "", err
	}
	return record.Token, nil
}

// Logout ends the active session and drops its drafts
func (s *SessionService) Logout(ctx context.Context) error {
	record, err := s.sessions.Latest(ctx)
	if err != nil {
		return fmt.Errorf("failed to load session: %w", err)
	}
	if record == nil {
		return nil
	}
	if err := s.sessions.Delete(ctx, record.ID); err != nil {
		return fmt.Errorf("failed to end session: %w", err)
	}
	s.logger.Info("session ended", "session_id", record.ID)
	return nil
}

// Expire is called when the backend rejects the session
func (s *SessionService) Expire() {
	if err := s.Logout(context.Background()); err != nil {
		s.logger.Error("failed to expire session", "error", err)
	}
}
