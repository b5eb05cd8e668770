package directory

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStore implements Store using PostgreSQL.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a PostgreSQL-backed directory store.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

// EnsureSchema creates the users table and uniqueness indexes if they do not
// exist. Uniqueness must live in the database: concurrent writers racing on
// user_name or keycloak_id are decided here, and the loser sees a
// ConflictError.
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS users (
			id          BIGSERIAL PRIMARY KEY,
			user_name   TEXT NOT NULL,
			email       TEXT,
			name        TEXT,
			external_id TEXT,
			active      BOOLEAN NOT NULL DEFAULT TRUE,
			keycloak_id TEXT,
			created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at  TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);
		CREATE UNIQUE INDEX IF NOT EXISTS users_user_name_idx ON users (user_name);
		CREATE UNIQUE INDEX IF NOT EXISTS users_keycloak_id_idx ON users (keycloak_id) WHERE keycloak_id IS NOT NULL;
	`)
	if err != nil {
		return fmt.Errorf("ensure users schema: %w", err)
	}
	return nil
}

const userColumns = `id, user_name, email, name, external_id, active, keycloak_id, created_at, updated_at`

func scanUser(row pgx.Row) (*User, error) {
	var u User
	err := row.Scan(&u.ID, &u.UserName, &u.Email, &u.Name, &u.ExternalID, &u.Active, &u.KeycloakID, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("scan user: %w", err)
	}
	return &u, nil
}

// translateConflict maps a PostgreSQL unique violation to a ConflictError.
func translateConflict(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		constraint := "user_name"
		if strings.Contains(pgErr.ConstraintName, "keycloak") {
			constraint = "keycloak_id"
		}
		return &ConflictError{Constraint: constraint}
	}
	return err
}

// Create inserts a new user. Active defaults to true when unset.
func (s *PostgresStore) Create(ctx context.Context, fields UserFields) (*User, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if fields.UserName == nil {
		return nil, fmt.Errorf("create user: userName is required")
	}
	active := true
	if fields.Active != nil {
		active = *fields.Active
	}

	row := s.pool.QueryRow(ctx, `
		INSERT INTO users (user_name, email, name, external_id, active, keycloak_id)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING `+userColumns,
		*fields.UserName, fields.Email, fields.Name, fields.ExternalID, active, fields.KeycloakID)

	u, err := scanUser(row)
	if err != nil {
		return nil, translateConflict(err)
	}
	return u, nil
}

// GetByID fetches a user by primary key.
func (s *PostgresStore) GetByID(ctx context.Context, id int64) (*User, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	row := s.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
	return scanUser(row)
}

// GetByUserName fetches a user by the unique userName key.
func (s *PostgresStore) GetByUserName(ctx context.Context, userName string) (*User, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	row := s.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE user_name = $1`, userName)
	return scanUser(row)
}

// GetByKeycloakID fetches a user by the IdP subject identifier.
func (s *PostgresStore) GetByKeycloakID(ctx context.Context, keycloakID string) (*User, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	row := s.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE keycloak_id = $1`, keycloakID)
	return scanUser(row)
}

// List returns a page of users ordered by ascending id.
func (s *PostgresStore) List(ctx context.Context, q Query) ([]User, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	var (
		where string
		args  []interface{}
	)
	if q.UserName != nil {
		where = `WHERE user_name = $1`
		args = append(args, *q.UserName)
	}
	args = append(args, q.Limit, q.Offset)
	query := fmt.Sprintf(`SELECT %s FROM users %s ORDER BY id ASC LIMIT $%d OFFSET $%d`,
		userColumns, where, len(args)-1, len(args))

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	users := []User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, *u)
	}
	return users, rows.Err()
}

// Count returns the total number of users matching the query predicate.
func (s *PostgresStore) Count(ctx context.Context, q Query) (int, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	var (
		count int
		err   error
	)
	if q.UserName != nil {
		err = s.pool.QueryRow(ctx, `SELECT COUNT(*) FROM users WHERE user_name = $1`, *q.UserName).Scan(&count)
	} else {
		err = s.pool.QueryRow(ctx, `SELECT COUNT(*) FROM users`).Scan(&count)
	}
	if err != nil {
		return 0, fmt.Errorf("count users: %w", err)
	}
	return count, nil
}

// Update applies the non-nil fields to the user in a single statement and
// bumps updated_at.
func (s *PostgresStore) Update(ctx context.Context, id int64, fields UserFields) (*User, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	set := []string{"updated_at = NOW()"}
	args := []interface{}{id}

	add := func(column string, value interface{}) {
		args = append(args, value)
		set = append(set, fmt.Sprintf("%s = $%d", column, len(args)))
	}
	if fields.UserName != nil {
		add("user_name", *fields.UserName)
	}
	if fields.Email != nil {
		add("email", *fields.Email)
	}
	if fields.Name != nil {
		add("name", *fields.Name)
	}
	if fields.ExternalID != nil {
		add("external_id", *fields.ExternalID)
	}
	if fields.Active != nil {
		add("active", *fields.Active)
	}
	if fields.KeycloakID != nil {
		add("keycloak_id", *fields.KeycloakID)
	}

	query := fmt.Sprintf(`UPDATE users SET %s WHERE id = $1 RETURNING %s`,
		strings.Join(set, ", "), userColumns)

	u, err := scanUser(s.pool.QueryRow(ctx, query, args...))
	if err != nil {
		return nil, translateConflict(err)
	}
	return u, nil
}

// Delete removes a user by id.
func (s *PostgresStore) Delete(ctx context.Context, id int64) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	tag, err := s.pool.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
