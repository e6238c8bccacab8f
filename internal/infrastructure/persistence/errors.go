package persistence

import (
	"errors"
	"strings"

	"github.com/ikkasa/orderhub/internal/domain/shared"
	"gorm.io/gorm"
)

// translateError maps driver errors to domain sentinels. Duplicates keep the
// driver error as their cause. Drivers that do not
// implement gorm's error translator are matched on the message text.
func translateError(err error) error {
	if err == nil {
		return nil
	}
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return shared.ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey), isUniqueViolation(err):
		return shared.ErrAlreadyExists.Wrap(err)
	}
	return err
}

func isUniqueViolation(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") ||
		strings.Contains(msg, "duplicate key value")
}
