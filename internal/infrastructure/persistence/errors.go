package persistence

import (
	"errors"

	"github.com/plfog/backoffice/internal/domain/shared"
	"gorm.io/gorm"
)

// notFound maps gorm's missing-row error onto the domain sentinel
func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return shared.ErrNotFound
	}
	return err
}

// TranslateError maps gorm's translated driver errors onto domain errors
func TranslateError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return shared.ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return shared.ErrAlreadyExists
	case errors.Is(err, gorm.ErrForeignKeyViolated):
		return shared.NewDomainError("INVALID_INPUT", "Referenced row does not exist or is still in use")
	}
	return err
}
