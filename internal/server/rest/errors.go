package rest

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/dmitrijs2005/festreg/internal/common"
	"github.com/dmitrijs2005/festreg/internal/server/metrics"
	"github.com/gin-gonic/gin"
)

const (
	msgInvalidToken      = "Invalid token"
	msgAllFieldsRequired = "All fields required"
	msgAlreadyRegistered = "Already registered"
	msgInternal          = "internal error"
)

type errorResponse struct {
	Success *bool    `json:"success,omitempty"`
	Message string   `json:"message"`
	Fields  []string `json:"fields,omitempty"`
}

// classify maps a service error to a status code, a client-facing message
// and a metrics outcome. Storage failures never leak their text.
func classify(err error) (int, string, string) {
	var verr *common.ValidationError
	switch {
	case errors.Is(err, common.ErrInvalidToken):
		return http.StatusBadRequest, msgInvalidToken, metrics.OutcomeInvalidToken
	case errors.As(err, &verr), errors.Is(err, common.ErrValidation):
		return http.StatusBadRequest, msgAllFieldsRequired, metrics.OutcomeInvalid
	case errors.Is(err, common.ErrDuplicateRegistration):
		return http.StatusBadRequest, msgAlreadyRegistered, metrics.OutcomeDuplicate
	default:
		return http.StatusInternalServerError, msgInternal, metrics.OutcomeError
	}
}

// writeError writes the register-style envelope {success:false, message}.
func writeError(c *gin.Context, err error) string {
	status, msg, outcome := classify(err)

	resp := errorResponse{Success: new(bool), Message: msg}
	var verr *common.ValidationError
	if errors.As(err, &verr) {
		resp.Fields = verr.Fields
	}

	_ = c.Error(err)
	c.JSON(status, resp)
	return outcome
}

// writeMessage writes the bare {message} body used by the auth endpoint.
func writeMessage(c *gin.Context, err error) string {
	status, msg, outcome := classify(err)
	_ = c.Error(err)
	c.JSON(status, errorResponse{Message: msg})
	return outcome
}

// decodeError turns a JSON decoding failure into a validation error naming
// the offending field when the decoder reports one.
func decodeError(err error) error {
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) && typeErr.Field != "" {
		return common.NewValidationError(typeErr.Field)
	}
	return common.NewValidationError()
}
