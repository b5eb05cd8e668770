package directory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func boolPtr(b bool) *bool { return &b }

func TestMemoryStore_CreateDefaults(t *testing.T) {
	store := NewMemoryStore()

	u, err := store.Create(context.Background(), UserFields{UserName: strPtr("a@b.com")})
	require.NoError(t, err)

	assert.Equal(t, int64(1), u.ID)
	assert.Equal(t, "a@b.com", u.UserName)
	assert.True(t, u.Active, "active must default to true")
	assert.False(t, u.CreatedAt.IsZero())
	assert.Equal(t, u.CreatedAt, u.UpdatedAt)
}

func TestMemoryStore_UserNameConflict(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	_, err := store.Create(ctx, UserFields{UserName: strPtr("a@b.com")})
	require.NoError(t, err)

	_, err = store.Create(ctx, UserFields{UserName: strPtr("a@b.com")})
	require.Error(t, err)
	assert.True(t, IsConflict(err))

	var conflict *ConflictError
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, "user_name", conflict.Constraint)
}

func TestMemoryStore_KeycloakIDConflict(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	_, err := store.Create(ctx, UserFields{UserName: strPtr("a@b.com"), KeycloakID: strPtr("sub-1")})
	require.NoError(t, err)

	other, err := store.Create(ctx, UserFields{UserName: strPtr("b@b.com")})
	require.NoError(t, err)

	// Binding the same subject id to a second record must fail
	_, err = store.Update(ctx, other.ID, UserFields{KeycloakID: strPtr("sub-1")})
	require.Error(t, err)
	assert.True(t, IsConflict(err))
}

func TestMemoryStore_Lookups(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	created, err := store.Create(ctx, UserFields{UserName: strPtr("a@b.com"), KeycloakID: strPtr("sub-1")})
	require.NoError(t, err)

	byID, err := store.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.UserName, byID.UserName)

	byName, err := store.GetByUserName(ctx, "a@b.com")
	require.NoError(t, err)
	assert.Equal(t, created.ID, byName.ID)

	bySub, err := store.GetByKeycloakID(ctx, "sub-1")
	require.NoError(t, err)
	assert.Equal(t, created.ID, bySub.ID)

	_, err = store.GetByID(ctx, 999)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = store.GetByUserName(ctx, "missing@b.com")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = store.GetByKeycloakID(ctx, "missing-sub")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStore_ListOrderingAndPaging(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	for _, name := range []string{"a@b.com", "b@b.com", "c@b.com", "d@b.com"} {
		_, err := store.Create(ctx, UserFields{UserName: strPtr(name)})
		require.NoError(t, err)
	}

	page, err := store.List(ctx, Query{Offset: 1, Limit: 2})
	require.NoError(t, err)
	require.Len(t, page, 2)
	assert.Equal(t, "b@b.com", page[0].UserName)
	assert.Equal(t, "c@b.com", page[1].UserName)

	total, err := store.Count(ctx, Query{})
	require.NoError(t, err)
	assert.Equal(t, 4, total)

	// Offset past the end yields an empty page, not an error
	page, err = store.List(ctx, Query{Offset: 10, Limit: 2})
	require.NoError(t, err)
	assert.Empty(t, page)
}

func TestMemoryStore_ListFilter(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	for _, name := range []string{"a@b.com", "b@b.com"} {
		_, err := store.Create(ctx, UserFields{UserName: strPtr(name)})
		require.NoError(t, err)
	}

	page, err := store.List(ctx, Query{UserName: strPtr("b@b.com"), Limit: 10})
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, "b@b.com", page[0].UserName)

	total, err := store.Count(ctx, Query{UserName: strPtr("b@b.com")})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
}

func TestMemoryStore_UpdatePartial(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	created, err := store.Create(ctx, UserFields{
		UserName: strPtr("a@b.com"),
		Email:    strPtr("a@b.com"),
		Name:     strPtr("Alice"),
	})
	require.NoError(t, err)

	// Only Active changes; everything else must survive
	updated, err := store.Update(ctx, created.ID, UserFields{Active: boolPtr(false)})
	require.NoError(t, err)

	assert.False(t, updated.Active)
	assert.Equal(t, "a@b.com", updated.UserName)
	assert.Equal(t, "a@b.com", *updated.Email)
	assert.Equal(t, "Alice", *updated.Name)

	_, err = store.Update(ctx, 999, UserFields{Active: boolPtr(true)})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStore_Delete(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	created, err := store.Create(ctx, UserFields{UserName: strPtr("a@b.com")})
	require.NoError(t, err)

	require.NoError(t, store.Delete(ctx, created.ID))
	assert.ErrorIs(t, store.Delete(ctx, created.ID), ErrNotFound)
}
