package services

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clubstack/league-system/repositories"
)

type roleFixture struct {
	service     RoleService
	roles       *memRoleRepo
	permissions *memPermissionRepo
}

func newRoleFixture() *roleFixture {
	f := &roleFixture{
		roles:       newMemRoleRepo(),
		permissions: newMemPermissionRepo(),
	}
	f.service = NewRoleService(f.roles, f.permissions)
	return f
}

func TestCreateRoleTrimsName(t *testing.T) {
	f := newRoleFixture()

	role, err := f.service.CreateRole(context.Background(), CreateRoleInput{Name: "  organizer  "})
	require.NoError(t, err)
	assert.Equal(t, "organizer", role.Name)

	stored, err := f.service.GetRoleByID(context.Background(), role.ID)
	require.NoError(t, err)
	assert.Equal(t, role.ID, stored.ID)
}

func TestCreatePermissionNormalizesCode(t *testing.T) {
	f := newRoleFixture()

	permission, err := f.service.CreatePermission(context.Background(), CreatePermissionInput{
		Name: "Manage events",
		Code: " Event.Manage ",
	})
	require.NoError(t, err)
	assert.Equal(t, "event.manage", permission.Code)
}

func TestDeleteHeldRoleSurfacesConstraintViolation(t *testing.T) {
	f := newRoleFixture()
	ctx := context.Background()

	role, err := f.service.CreateRole(ctx, CreateRoleInput{Name: "organizer"})
	require.NoError(t, err)

	f.roles.deleteErr = &repositories.ConstraintViolationError{
		Relationship: "memberships.role_id",
		Constraint:   "memberships_role_id_fkey",
	}

	err = f.service.DeleteRole(ctx, role.ID)
	var cv *repositories.ConstraintViolationError
	require.True(t, errors.As(err, &cv))
	assert.Equal(t, "memberships_role_id_fkey", cv.Constraint)

	// Роль остаётся на месте, пока на неё есть ссылки.
	_, err = f.service.GetRoleByID(ctx, role.ID)
	require.NoError(t, err)
}

func TestDeleteUnknownRole(t *testing.T) {
	f := newRoleFixture()
	err := f.service.DeleteRole(context.Background(), uuid.New())
	assert.ErrorIs(t, err, ErrRoleNotFound)
}

func TestGrantPermissionUnknownRole(t *testing.T) {
	f := newRoleFixture()
	ctx := context.Background()

	permission, err := f.service.CreatePermission(ctx, CreatePermissionInput{Name: "Manage teams", Code: "team.manage"})
	require.NoError(t, err)

	err = f.service.GrantPermission(ctx, uuid.New(), permission.ID)
	assert.ErrorIs(t, err, ErrRoleNotFound)
}

func TestGrantPermissionUnknownPermission(t *testing.T) {
	f := newRoleFixture()
	ctx := context.Background()

	role, err := f.service.CreateRole(ctx, CreateRoleInput{Name: "organizer"})
	require.NoError(t, err)

	err = f.service.GrantPermission(ctx, role.ID, uuid.New())
	assert.ErrorIs(t, err, ErrPermissionNotFound)
}

func TestGrantAndRevokePermission(t *testing.T) {
	f := newRoleFixture()
	ctx := context.Background()

	role, err := f.service.CreateRole(ctx, CreateRoleInput{Name: "organizer"})
	require.NoError(t, err)
	permission, err := f.service.CreatePermission(ctx, CreatePermissionInput{Name: "Manage events", Code: "event.manage"})
	require.NoError(t, err)

	require.NoError(t, f.service.GrantPermission(ctx, role.ID, permission.ID))
	// Повторная выдача идемпотентна.
	require.NoError(t, f.service.GrantPermission(ctx, role.ID, permission.ID))

	stored, err := f.service.GetRoleByID(ctx, role.ID)
	require.NoError(t, err)
	require.Len(t, stored.Permissions, 1)

	require.NoError(t, f.service.RevokePermission(ctx, role.ID, permission.ID))
	stored, err = f.service.GetRoleByID(ctx, role.ID)
	require.NoError(t, err)
	assert.Empty(t, stored.Permissions)
}
