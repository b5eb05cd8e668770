package directory

import (
	"context"
	"sort"
	"sync"
	"time"
)

// MemoryStore is an in-memory Store used in development mode and by tests.
// It enforces the same uniqueness contract as PostgresStore.
type MemoryStore struct {
	mu     sync.Mutex
	users  map[int64]*User
	nextID int64
}

// NewMemoryStore creates an empty in-memory directory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{users: make(map[int64]*User), nextID: 1}
}

func (s *MemoryStore) checkUnique(fields UserFields, excludeID int64) error {
	for _, u := range s.users {
		if u.ID == excludeID {
			continue
		}
		if fields.UserName != nil && u.UserName == *fields.UserName {
			return &ConflictError{Constraint: "user_name"}
		}
		if fields.KeycloakID != nil && u.KeycloakID != nil && *u.KeycloakID == *fields.KeycloakID {
			return &ConflictError{Constraint: "keycloak_id"}
		}
	}
	return nil
}

// Create inserts a new user. Active defaults to true when unset.
func (s *MemoryStore) Create(ctx context.Context, fields UserFields) (*User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.checkUnique(fields, 0); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	u := &User{
		ID:         s.nextID,
		Active:     true,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	s.nextID++
	if fields.UserName != nil {
		u.UserName = *fields.UserName
	}
	u.Email = fields.Email
	u.Name = fields.Name
	u.ExternalID = fields.ExternalID
	u.KeycloakID = fields.KeycloakID
	if fields.Active != nil {
		u.Active = *fields.Active
	}
	s.users[u.ID] = u

	clone := *u
	return &clone, nil
}

// GetByID fetches a user by id.
func (s *MemoryStore) GetByID(ctx context.Context, id int64) (*User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	clone := *u
	return &clone, nil
}

// GetByUserName fetches a user by the unique userName key.
func (s *MemoryStore) GetByUserName(ctx context.Context, userName string) (*User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range s.users {
		if u.UserName == userName {
			clone := *u
			return &clone, nil
		}
	}
	return nil, ErrNotFound
}

// GetByKeycloakID fetches a user by the IdP subject identifier.
func (s *MemoryStore) GetByKeycloakID(ctx context.Context, keycloakID string) (*User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range s.users {
		if u.KeycloakID != nil && *u.KeycloakID == keycloakID {
			clone := *u
			return &clone, nil
		}
	}
	return nil, ErrNotFound
}

func (s *MemoryStore) matching(q Query) []User {
	users := make([]User, 0, len(s.users))
	for _, u := range s.users {
		if q.UserName != nil && u.UserName != *q.UserName {
			continue
		}
		users = append(users, *u)
	}
	sort.Slice(users, func(i, j int) bool { return users[i].ID < users[j].ID })
	return users
}

// List returns a page of users ordered by ascending id.
func (s *MemoryStore) List(ctx context.Context, q Query) ([]User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	users := s.matching(q)
	if q.Offset >= len(users) {
		return []User{}, nil
	}
	users = users[q.Offset:]
	if q.Limit < len(users) {
		users = users[:q.Limit]
	}
	return users, nil
}

// Count returns the total number of users matching the query predicate.
func (s *MemoryStore) Count(ctx context.Context, q Query) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.matching(q)), nil
}

// Update applies the non-nil fields to the user and bumps UpdatedAt.
func (s *MemoryStore) Update(ctx context.Context, id int64, fields UserFields) (*User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	if err := s.checkUnique(fields, id); err != nil {
		return nil, err
	}

	if fields.UserName != nil {
		u.UserName = *fields.UserName
	}
	if fields.Email != nil {
		u.Email = fields.Email
	}
	if fields.Name != nil {
		u.Name = fields.Name
	}
	if fields.ExternalID != nil {
		u.ExternalID = fields.ExternalID
	}
	if fields.Active != nil {
		u.Active = *fields.Active
	}
	if fields.KeycloakID != nil {
		u.KeycloakID = fields.KeycloakID
	}
	u.UpdatedAt = time.Now().UTC()

	clone := *u
	return &clone, nil
}

// Delete removes a user by id.
func (s *MemoryStore) Delete(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[id]; !ok {
		return ErrNotFound
	}
	delete(s.users, id)
	return nil
}
