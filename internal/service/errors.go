package service

import (
	"database/sql"
	"errors"
)

var (
	// ErrNotFound covers absent or soft-deleted dossiers, documents,
	// versions and files.
	ErrNotFound = errors.New("not found")

	// ErrValidation covers missing required input, disallowed extensions and
	// malformed identifiers. Raised before any processing side effect.
	ErrValidation = errors.New("validation failed")
)

// notFoundOr translates the repository's sql.ErrNoRows convention into the
// service taxonomy and passes everything else through.
func notFoundOr(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	return err
}
