package services

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clubstack/league-system/models"
)

type membershipFixture struct {
	service       MembershipService
	memberships   *memMembershipRepo
	tenants       *memTenantRepo
	roles         *memRoleRepo
	players       *memPlayerRepo
	tenantID      uuid.UUID
	defaultRoleID uuid.UUID
}

func newMembershipFixture(t *testing.T) *membershipFixture {
	t.Helper()
	f := &membershipFixture{
		memberships:   newMemMembershipRepo(),
		tenants:       newMemTenantRepo(),
		roles:         newMemRoleRepo(),
		players:       newMemPlayerRepo(),
		tenantID:      uuid.New(),
		defaultRoleID: uuid.New(),
	}

	require.NoError(t, f.roles.Create(context.Background(), &models.Role{
		ID:        f.defaultRoleID,
		Name:      "participant",
		IsDefault: true,
	}))
	require.NoError(t, f.tenants.Create(context.Background(), nil, &models.Tenant{
		ID:            f.tenantID,
		Name:          "Riverside League",
		ActivityID:    uuid.New(),
		Visibility:    models.VisibilityPublic,
		Type:          models.TenantTypeLeague,
		IsActive:      true,
		DefaultRoleID: f.defaultRoleID,
	}))

	f.service = NewMembershipService(stubTxRunner{}, f.memberships, f.tenants, f.roles, f.players)
	return f
}

func (f *membershipFixture) grantPermission(t *testing.T, roleID uuid.UUID, code string) {
	t.Helper()
	f.roles.permissions[roleID] = append(f.roles.permissions[roleID], models.Permission{
		ID:   uuid.New(),
		Code: code,
	})
}

func TestJoinCreatesMembershipUnderDefaultRole(t *testing.T) {
	f := newMembershipFixture(t)
	ctx := context.Background()
	userID := uuid.New()

	membership, err := f.service.Join(ctx, JoinTenantInput{
		UserID:      userID,
		TenantID:    f.tenantID,
		DisplayName: "Jordan",
	})
	require.NoError(t, err)
	assert.Equal(t, f.defaultRoleID, membership.RoleID)
	assert.Equal(t, models.MembershipActive, membership.Status)

	player, err := f.players.GetByTenantAndUser(ctx, f.tenantID, userID)
	require.NoError(t, err)
	assert.Equal(t, "Jordan", player.DisplayName)
}

func TestJoinIsIdempotent(t *testing.T) {
	f := newMembershipFixture(t)
	ctx := context.Background()
	userID := uuid.New()

	_, err := f.service.Join(ctx, JoinTenantInput{UserID: userID, TenantID: f.tenantID, DisplayName: "Jordan"})
	require.NoError(t, err)

	// Повторное вступление не плодит ни членств, ни игроков.
	require.NoError(t, f.service.SetStatus(ctx, userID, f.tenantID, models.MembershipInactive))
	membership, err := f.service.Join(ctx, JoinTenantInput{UserID: userID, TenantID: f.tenantID, DisplayName: "Jordan"})
	require.NoError(t, err)
	assert.Equal(t, models.MembershipInactive, membership.Status)

	players, err := f.players.ListByTenant(ctx, f.tenantID)
	require.NoError(t, err)
	assert.Len(t, players, 1)
}

func TestReJoinKeepsAssignedRole(t *testing.T) {
	f := newMembershipFixture(t)
	ctx := context.Background()
	userID := uuid.New()

	_, err := f.service.Join(ctx, JoinTenantInput{UserID: userID, TenantID: f.tenantID, DisplayName: "Jordan"})
	require.NoError(t, err)

	adminRole := uuid.New()
	require.NoError(t, f.roles.Create(ctx, &models.Role{ID: adminRole, Name: "admin"}))
	_, err = f.service.AssignRole(ctx, userID, f.tenantID, adminRole)
	require.NoError(t, err)

	// Повторный Join не скатывает назначенную роль обратно к дефолтной.
	rejoined, err := f.service.Join(ctx, JoinTenantInput{UserID: userID, TenantID: f.tenantID, DisplayName: "Jordan"})
	require.NoError(t, err)
	assert.Equal(t, adminRole, rejoined.RoleID)

	stored, err := f.service.GetMembership(ctx, userID, f.tenantID)
	require.NoError(t, err)
	assert.Equal(t, adminRole, stored.RoleID)
}

func TestJoinUnknownTenant(t *testing.T) {
	f := newMembershipFixture(t)

	_, err := f.service.Join(context.Background(), JoinTenantInput{
		UserID:      uuid.New(),
		TenantID:    uuid.New(),
		DisplayName: "Jordan",
	})
	assert.ErrorIs(t, err, ErrTenantNotFound)
}

func TestAssignRoleUpdatesRowInPlace(t *testing.T) {
	f := newMembershipFixture(t)
	ctx := context.Background()
	userID := uuid.New()

	_, err := f.service.Join(ctx, JoinTenantInput{UserID: userID, TenantID: f.tenantID, DisplayName: "Jordan"})
	require.NoError(t, err)
	require.NoError(t, f.service.SetStatus(ctx, userID, f.tenantID, models.MembershipPending))

	adminRole := uuid.New()
	require.NoError(t, f.roles.Create(ctx, &models.Role{ID: adminRole, Name: "admin"}))

	membership, err := f.service.AssignRole(ctx, userID, f.tenantID, adminRole)
	require.NoError(t, err)
	assert.Equal(t, adminRole, membership.RoleID)
	// Статус при смене роли не трогаем.
	assert.Equal(t, models.MembershipPending, membership.Status)

	all, err := f.service.ListByTenant(ctx, f.tenantID)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestAssignRoleUnknownRole(t *testing.T) {
	f := newMembershipFixture(t)
	ctx := context.Background()
	userID := uuid.New()

	_, err := f.service.Join(ctx, JoinTenantInput{UserID: userID, TenantID: f.tenantID, DisplayName: "Jordan"})
	require.NoError(t, err)

	_, err = f.service.AssignRole(ctx, userID, f.tenantID, uuid.New())
	assert.ErrorIs(t, err, ErrRoleNotFound)
}

func TestEffectivePermissionsForActiveMember(t *testing.T) {
	f := newMembershipFixture(t)
	ctx := context.Background()
	userID := uuid.New()

	f.grantPermission(t, f.defaultRoleID, "event.manage")
	f.grantPermission(t, f.defaultRoleID, "team.manage")

	_, err := f.service.Join(ctx, JoinTenantInput{UserID: userID, TenantID: f.tenantID, DisplayName: "Jordan"})
	require.NoError(t, err)

	codes, err := f.service.EffectivePermissions(ctx, userID, f.tenantID)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"event.manage", "team.manage"}, codes)
}

func TestEffectivePermissionsNonActiveStatusesAreEmpty(t *testing.T) {
	f := newMembershipFixture(t)
	ctx := context.Background()

	f.grantPermission(t, f.defaultRoleID, "event.manage")

	for _, status := range []models.MembershipStatus{
		models.MembershipInactive,
		models.MembershipPending,
		models.MembershipBanned,
	} {
		userID := uuid.New()
		_, err := f.service.Join(ctx, JoinTenantInput{UserID: userID, TenantID: f.tenantID, DisplayName: "Jordan"})
		require.NoError(t, err)
		require.NoError(t, f.service.SetStatus(ctx, userID, f.tenantID, status))

		codes, err := f.service.EffectivePermissions(ctx, userID, f.tenantID)
		require.NoError(t, err)
		assert.Empty(t, codes, "status %s must yield no permissions", status)
	}
}

func TestEffectivePermissionsWithoutMembershipIsEmpty(t *testing.T) {
	f := newMembershipFixture(t)

	codes, err := f.service.EffectivePermissions(context.Background(), uuid.New(), f.tenantID)
	require.NoError(t, err)
	assert.Empty(t, codes)
}

func TestEffectivePermissionsZeroPermissionRole(t *testing.T) {
	f := newMembershipFixture(t)
	ctx := context.Background()
	userID := uuid.New()

	_, err := f.service.Join(ctx, JoinTenantInput{UserID: userID, TenantID: f.tenantID, DisplayName: "Jordan"})
	require.NoError(t, err)

	// Роль без прав валидна и даёт пустой набор, не ошибку.
	codes, err := f.service.EffectivePermissions(ctx, userID, f.tenantID)
	require.NoError(t, err)
	assert.Empty(t, codes)
}

func TestSetStatusRejectsUnknownValue(t *testing.T) {
	f := newMembershipFixture(t)

	err := f.service.SetStatus(context.Background(), uuid.New(), f.tenantID, models.MembershipStatus("frozen"))
	assert.ErrorIs(t, err, ErrValidationFailed)
}
