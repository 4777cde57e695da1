package service

import (
	"errors"

	"portfolio/internal/repository"
	"portfolio/pkg/apperr"
)

// storeErr maps a store failure onto the caller-facing taxonomy.
func storeErr(err error, notFound string) error {
	if errors.Is(err, repository.ErrNotFound) {
		return apperr.NotFound(notFound)
	}
	return apperr.Wrap(apperr.KindUnexpected, "internal server error", err)
}
