package services

import (
	"context"
	"errors"
	"reflect"
	"strings"

	"github.com/dmitrijs2005/festreg/internal/common"
	"github.com/dmitrijs2005/festreg/internal/logging"
	"github.com/dmitrijs2005/festreg/internal/server/auth"
	"github.com/dmitrijs2005/festreg/internal/server/config"
	"github.com/dmitrijs2005/festreg/internal/server/models"
	"github.com/dmitrijs2005/festreg/internal/server/repositories/repomanager"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

type RegistrationService struct {
	repomanager    repomanager.RepositoryManager
	validate       *validator.Validate
	sessionSecret  []byte
	requireSession bool
	logger         logging.Logger
}

func NewRegistrationService(m repomanager.RepositoryManager, cfg *config.Config, logger logging.Logger) *RegistrationService {
	return &RegistrationService{
		repomanager:    m,
		validate:       newValidator(),
		sessionSecret:  []byte(cfg.SessionSecretKey),
		requireSession: cfg.RequireSession,
		logger:         logger.With("module", "registration"),
	}
}

// newValidator reports fields by their JSON names so errors match what the
// client sent.
func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Register stores a new registration.
//
// sessionToken is optional. When given it must be valid, and its email
// becomes the registration's loggedEmail. Roll numbers are compared in
// normalised form; a taken roll number yields common.ErrDuplicateRegistration.
func (s *RegistrationService) Register(ctx context.Context, in *models.RegistrationInput, sessionToken string) (*models.Registration, error) {
	in.Normalize()

	var mismatch bool
	switch {
	case sessionToken != "":
		email, err := auth.EmailFromToken(sessionToken, s.sessionSecret)
		if err != nil {
			return nil, err
		}
		if in.LoggedEmail != "" && models.NormalizeEmail(in.LoggedEmail) != email {
			mismatch = true
		} else {
			in.LoggedEmail = email
		}
	case s.requireSession:
		return nil, common.ErrInvalidToken
	}

	if err := s.validateInput(in, mismatch); err != nil {
		return nil, err
	}

	repo := s.repomanager.Registrations()

	_, err := repo.GetByRollNumber(ctx, in.RollNumber)
	switch {
	case err == nil:
		return nil, common.ErrDuplicateRegistration
	case !errors.Is(err, common.ErrorNotFound):
		s.logger.Error(ctx, "roll number lookup failed", "roll_number", in.RollNumber, "error", err)
		return nil, common.ErrorInternal
	}

	reg := &models.Registration{
		ID:            uuid.NewString(),
		Name:          in.Name,
		RollNumber:    in.RollNumber,
		Year:          in.Year,
		Section:       in.Section,
		Events:        in.Events,
		TransactionID: in.TransactionID,
		Email:         in.Email,
		LoggedEmail:   in.LoggedEmail,
	}

	reg, err = repo.Create(ctx, reg)
	if err != nil {
		if errors.Is(err, common.ErrDuplicateRegistration) {
			return nil, common.ErrDuplicateRegistration
		}
		s.logger.Error(ctx, "registration insert failed", "roll_number", in.RollNumber, "error", err)
		return nil, common.ErrorInternal
	}

	s.logger.Info(ctx, "registration stored",
		"id", reg.ID, "roll_number", reg.RollNumber, "events", len(reg.Events))

	return reg, nil
}

func (s *RegistrationService) validateInput(in *models.RegistrationInput, loggedEmailMismatch bool) error {
	var fields []string

	if err := s.validate.Struct(in); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return common.NewValidationError()
		}
		for _, fe := range verrs {
			fields = append(fields, fe.Field())
		}
	}

	if loggedEmailMismatch {
		fields = append(fields, "loggedemail")
	}

	if len(fields) > 0 {
		return common.NewValidationError(fields...)
	}
	return nil
}
