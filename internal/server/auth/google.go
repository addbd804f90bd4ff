// Package auth verifies Google ID tokens and issues the server's own session
// tokens.
package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/MicahParks/keyfunc/v3"
	"github.com/dmitrijs2005/festreg/internal/common"
	"github.com/dmitrijs2005/festreg/internal/logging"
	"github.com/dmitrijs2005/festreg/internal/server/models"
	"github.com/golang-jwt/jwt/v5"
)

const (
	DefaultGoogleCertsURL = "https://www.googleapis.com/oauth2/v3/certs"

	clockLeeway = 30 * time.Second
)

var googleIssuers = map[string]struct{}{
	"accounts.google.com":         {},
	"https://accounts.google.com": {},
}

// newKeyfunc loads the JWK Set and keeps it refreshed in the background
// until ctx is done. Replaced in tests.
var newKeyfunc = keyfunc.NewDefaultCtx

// Identity is what a verified ID token tells us about the signed-in user.
type Identity struct {
	Email string
	Name  string
}

// TokenVerifier checks an identity-provider token.
type TokenVerifier interface {
	Verify(ctx context.Context, token string) (*Identity, error)
}

// GoogleClaims is the subset of a Google ID token payload we read.
type GoogleClaims struct {
	jwt.RegisteredClaims
	Email string `json:"email"`
	Name  string `json:"name"`
}

// GoogleVerifier validates Google-issued ID tokens (RS256) against the
// published JWK Set.
type GoogleVerifier struct {
	clientID string
	keys     keyfunc.Keyfunc
	logger   logging.Logger
	parser   *jwt.Parser
}

// NewGoogleVerifier fetches the signing keys from certsURL. The key set is
// refreshed until ctx is cancelled.
func NewGoogleVerifier(ctx context.Context, clientID, certsURL string, logger logging.Logger) (*GoogleVerifier, error) {
	if certsURL == "" {
		certsURL = DefaultGoogleCertsURL
	}
	if logger == nil {
		logger = logging.Nop{}
	}

	keys, err := newKeyfunc(ctx, []string{certsURL})
	if err != nil {
		return nil, fmt.Errorf("google jwks: %w", err)
	}

	return &GoogleVerifier{
		clientID: clientID,
		keys:     keys,
		logger:   logger.With("module", "google_verifier"),
		parser: jwt.NewParser(
			jwt.WithValidMethods([]string{jwt.SigningMethodRS256.Alg()}),
			jwt.WithAudience(clientID),
			jwt.WithExpirationRequired(),
			jwt.WithLeeway(clockLeeway),
		),
	}, nil
}

// Verify checks signature, audience, issuer and expiry, and returns the
// token's identity with a lower-cased email. Failures wrap
// common.ErrInvalidToken.
func (v *GoogleVerifier) Verify(ctx context.Context, token string) (*Identity, error) {
	if token == "" {
		return nil, common.ErrInvalidToken
	}

	claims := &GoogleClaims{}
	if _, err := v.parser.ParseWithClaims(token, claims, v.keys.Keyfunc); err != nil {
		v.logger.Debug(ctx, "id token rejected", "error", err)
		return nil, fmt.Errorf("%w: %v", common.ErrInvalidToken, err)
	}

	if _, ok := googleIssuers[claims.Issuer]; !ok {
		return nil, fmt.Errorf("%w: unexpected issuer %q", common.ErrInvalidToken, claims.Issuer)
	}

	email := models.NormalizeEmail(claims.Email)
	if email == "" {
		return nil, fmt.Errorf("%w: no email claim", common.ErrInvalidToken)
	}

	return &Identity{Email: email, Name: claims.Name}, nil
}
