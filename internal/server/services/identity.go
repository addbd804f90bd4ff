// Package services contains the server's use cases. IdentityService signs
// users in with Google, RegistrationService accepts fest registrations and
// ExportService dumps them for the organisers.
package services

import (
	"context"
	"time"

	"github.com/dmitrijs2005/festreg/internal/common"
	"github.com/dmitrijs2005/festreg/internal/logging"
	"github.com/dmitrijs2005/festreg/internal/server/auth"
	"github.com/dmitrijs2005/festreg/internal/server/config"
	"github.com/dmitrijs2005/festreg/internal/server/models"
	"github.com/dmitrijs2005/festreg/internal/server/repositories/repomanager"
)

// AuthResult is returned after a successful sign-in. Token is a session
// token the client may send back as a bearer token.
type AuthResult struct {
	User  *models.User
	Token string
}

type IdentityService struct {
	repomanager     repomanager.RepositoryManager
	verifier        auth.TokenVerifier
	sessionSecret   []byte
	sessionValidity time.Duration
	logger          logging.Logger
}

func NewIdentityService(m repomanager.RepositoryManager, verifier auth.TokenVerifier, cfg *config.Config, logger logging.Logger) *IdentityService {
	return &IdentityService{
		repomanager:     m,
		verifier:        verifier,
		sessionSecret:   []byte(cfg.SessionSecretKey),
		sessionValidity: cfg.SessionTokenValidityDuration,
		logger:          logger.With("module", "identity"),
	}
}

// AuthenticateGoogle verifies a Google ID token and records the user. A
// known email gets its name refreshed. Nothing is written when the token is
// rejected.
func (s *IdentityService) AuthenticateGoogle(ctx context.Context, idToken string) (*AuthResult, error) {
	identity, err := s.verifier.Verify(ctx, idToken)
	if err != nil {
		return nil, err
	}

	user, err := s.repomanager.Users().Upsert(ctx, &models.User{
		Email: identity.Email,
		Name:  identity.Name,
	})
	if err != nil {
		s.logger.Error(ctx, "user upsert failed", "email", identity.Email, "error", err)
		return nil, common.ErrorInternal
	}

	token, err := auth.GenerateToken(user.Email, s.sessionSecret, s.sessionValidity)
	if err != nil {
		s.logger.Error(ctx, "session token signing failed", "error", err)
		return nil, common.ErrorInternal
	}

	s.logger.Info(ctx, "user signed in", "email", user.Email)

	return &AuthResult{User: user, Token: token}, nil
}
