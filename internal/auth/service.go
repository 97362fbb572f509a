package auth

import (
	"context"
	"log/slog"

	"resumai/internal/entity"
	"resumai/internal/repository"
)

// Service exchanges a Google ID token for a local session, provisioning the
// user account on first sign-in.
type Service struct {
	verifier TokenVerifier
	sessions *Sessions
	users    repository.UserRepository
	logger   *slog.Logger
}

func NewService(verifier TokenVerifier, sessions *Sessions, users repository.UserRepository, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{verifier: verifier, sessions: sessions, users: users, logger: logger}
}

// SignIn verifies the Google credential, upserts the user, and issues a
// session token.
func (s *Service) SignIn(ctx context.Context, googleToken string) (*entity.User, string, error) {
	identity, err := s.verifier.Verify(ctx, googleToken)
	if err != nil {
		s.logger.Warn("sign-in rejected", "error", err)
		return nil, "", err
	}

	user := &entity.User{
		ID:    identity.Subject,
		Email: identity.Email,
		Name:  identity.Name,
	}
	if identity.Picture != "" {
		user.Picture = &identity.Picture
	}
	user, err = s.users.Upsert(ctx, user)
	if err != nil {
		return nil, "", err
	}

	token, err := s.sessions.Issue(user.ID, user.Email)
	if err != nil {
		return nil, "", err
	}
	s.logger.Info("user signed in", "user_id", user.ID)
	return user, token, nil
}

// CurrentUser resolves a session token to its account.
func (s *Service) CurrentUser(ctx context.Context, sessionToken string) (*entity.User, error) {
	userID, _, err := s.sessions.Verify(sessionToken)
	if err != nil {
		return nil, err
	}
	return s.users.GetByID(ctx, userID)
}
