package directory

import (
	"context"
	"errors"
	"fmt"
)

// ErrNotFound is returned when no user matches the lookup key.
var ErrNotFound = errors.New("user not found")

// ConflictError reports a uniqueness violation. It is a distinct type so
// handlers can map racing writes to 409 instead of a generic failure.
type ConflictError struct {
	Constraint string // "user_name" or "keycloak_id"
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("uniqueness conflict on %s", e.Constraint)
}

// IsConflict reports whether err is a uniqueness conflict.
func IsConflict(err error) bool {
	var ce *ConflictError
	return errors.As(err, &ce)
}

// Store is the directory contract consumed by the SCIM handlers and the
// login reconciler. All operations are atomic at single-record granularity;
// uniqueness is enforced by the storage layer, not checked-then-written.
type Store interface {
	Create(ctx context.Context, fields UserFields) (*User, error)
	GetByID(ctx context.Context, id int64) (*User, error)
	GetByUserName(ctx context.Context, userName string) (*User, error)
	GetByKeycloakID(ctx context.Context, keycloakID string) (*User, error)
	List(ctx context.Context, q Query) ([]User, error)
	Count(ctx context.Context, q Query) (int, error)
	Update(ctx context.Context, id int64, fields UserFields) (*User, error)
	Delete(ctx context.Context, id int64) error
}
