package rest

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/dmitrijs2005/festreg/internal/common"
	"github.com/dmitrijs2005/festreg/internal/server/catalog"
	"github.com/dmitrijs2005/festreg/internal/server/metrics"
	"github.com/dmitrijs2005/festreg/internal/server/models"
	"github.com/dmitrijs2005/festreg/internal/server/services"
	"github.com/gin-gonic/gin"
)

const maxBodyBytes = 64 << 10

// Authenticator signs a user in with a Google ID token.
type Authenticator interface {
	AuthenticateGoogle(ctx context.Context, idToken string) (*services.AuthResult, error)
}

// Registrar stores registrations.
type Registrar interface {
	Register(ctx context.Context, in *models.RegistrationInput, sessionToken string) (*models.Registration, error)
}

// Pinger reports whether storage is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

type authRequest struct {
	Token string `json:"token"`
}

type userResponse struct {
	Email string `json:"email"`
	Name  string `json:"name"`
}

type authResponse struct {
	User  userResponse `json:"user"`
	Token string       `json:"token,omitempty"`
}

type registerResponse struct {
	Success bool                 `json:"success"`
	Message string               `json:"message"`
	Data    *models.Registration `json:"data"`
}

type handlers struct {
	auth     Authenticator
	register Registrar
	storage  Pinger
	catalog  *catalog.Catalog
	metrics  *metrics.Metrics
}

func (h *handlers) authGoogle(c *gin.Context) {
	var req authRequest
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Token) == "" {
		h.metrics.AuthAttempt(writeMessage(c, common.ErrInvalidToken))
		return
	}

	res, err := h.auth.AuthenticateGoogle(c.Request.Context(), strings.TrimSpace(req.Token))
	if err != nil {
		h.metrics.AuthAttempt(writeMessage(c, err))
		return
	}

	h.metrics.AuthAttempt(metrics.OutcomeSuccess)
	c.JSON(http.StatusOK, authResponse{
		User:  userResponse{Email: res.User.Email, Name: res.User.Name},
		Token: res.Token,
	})
}

func (h *handlers) registerParticipant(c *gin.Context) {
	sessionToken, ok := bearerToken(c.GetHeader(common.SessionTokenHeaderName))
	if !ok {
		h.metrics.Registration(writeError(c, common.ErrInvalidToken))
		return
	}

	var in models.RegistrationInput
	if err := c.ShouldBindJSON(&in); err != nil {
		if errors.Is(err, io.EOF) {
			err = common.NewValidationError()
		} else {
			err = decodeError(err)
		}
		h.metrics.Registration(writeError(c, err))
		return
	}

	reg, err := h.register.Register(c.Request.Context(), &in, sessionToken)
	if err != nil {
		h.metrics.Registration(writeError(c, err))
		return
	}

	h.metrics.Registration(metrics.OutcomeSuccess)
	c.JSON(http.StatusCreated, registerResponse{
		Success: true,
		Message: "Registration successful",
		Data:    reg,
	})
}

func (h *handlers) listEvents(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"events": h.catalog.Events()})
}

func (h *handlers) health(c *gin.Context) {
	if err := h.storage.Ping(c.Request.Context()); err != nil {
		_ = c.Error(err)
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status": "unhealthy",
			"error":  "storage ping failed",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "healthy"})
}

// bearerToken extracts the token of an "Authorization: Bearer" header. An
// absent header is fine; any other scheme is not.
func bearerToken(header string) (string, bool) {
	if header == "" {
		return "", true
	}
	token, found := strings.CutPrefix(header, common.BearerPrefix)
	token = strings.TrimSpace(token)
	if !found || token == "" {
		return "", false
	}
	return token, true
}
