package postgres

import (
	"errors"

	"github.com/adrian-inthe/events7/internal/domain"
	"github.com/jackc/pgx/v5/pgconn"
)

const checkViolation = "23514"

// constraintError converts CHECK violations into a domain validation error.
// It returns nil for any other error.
func constraintError(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != checkViolation {
		return nil
	}
	return &domain.ValidationError{
		Violations: []domain.Violation{{Field: constraintField(pgErr.ConstraintName), Message: "violates a storage constraint"}},
	}
}

// Constraint names follow events_<column>_check.
func constraintField(name string) string {
	switch name {
	case "events_name_check":
		return "name"
	case "events_description_check":
		return "description"
	case "events_type_check":
		return "type"
	case "events_priority_check":
		return "priority"
	}
	return ""
}
