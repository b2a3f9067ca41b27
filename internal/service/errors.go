package service

import (
	"database/sql"
	"errors"

	"github.com/AdamBeresnev/league-engine/internal/bracket"
)

// notFound turns a missing row into a NotFoundError for the resource.
func notFound(err error, resource string, id any) error {
	if errors.Is(err, sql.ErrNoRows) {
		return bracket.NewNotFoundError(resource, id)
	}
	return err
}
