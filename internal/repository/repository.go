package repository

import (
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/farisali522/birojasaapp/internal/db"
	"github.com/farisali522/birojasaapp/internal/ports"
)

// notFound maps pgx's no-rows sentinel onto the shared store error.
func notFound(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return ports.ErrNotFound
	}
	return err
}

// IsDuplicate reports whether err is a unique-key violation.
func IsDuplicate(err error) bool {
	return db.IsUniqueViolation(err)
}
