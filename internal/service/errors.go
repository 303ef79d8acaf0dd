package service

import (
	"errors"

	"photogram/internal/models"

	"gorm.io/gorm"
)

// lookupError maps a repository read failure onto the error taxonomy: a
// missing row is a 404 for the named resource, anything else (driver
// failure, timeout) stays an internal error and surfaces as a 500.
func lookupError(err error, resource string, id uint) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.NewNotFoundError(resource, id)
	}
	return models.NewInternalError(err)
}
