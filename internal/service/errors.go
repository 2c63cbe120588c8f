// Package service holds the business rules that sit between HTTP handlers and repositories.
package service

import (
	"errors"

	"github.com/TheAXPerience/ScrapPages/internal/middleware"
	"github.com/TheAXPerience/ScrapPages/internal/models"
	"github.com/TheAXPerience/ScrapPages/internal/validation"
)

// fromValidation converts a validation failure into the AppError the caller sees.
// Other errors pass through unchanged.
func fromValidation(err error) error {
	if err == nil {
		return nil
	}
	var vErr *validation.Error
	if !errors.As(err, &vErr) {
		return err
	}
	if vErr.Kind == validation.Duplicate {
		return models.NewAlreadyExistsError(vErr.Message)
	}
	return models.NewValidationError(vErr.Message)
}

func requireUser(userID uint) error {
	if userID == 0 {
		return models.NewUnauthenticatedError(middleware.MsgCredentialsMissing)
	}
	return nil
}
