package services

import (
	"errors"

	"github.com/jobboard/apiserver/internal/apperr"
	"github.com/jobboard/apiserver/internal/store"
)

func notFoundAs(err error, message string) error {
	if errors.Is(err, store.ErrNotFound) {
		return apperr.NotFound(message)
	}
	return err
}
