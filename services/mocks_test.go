package services

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/clubstack/league-system/models"
	"github.com/clubstack/league-system/repositories"
)

// In-memory repository doubles. The transaction runner just invokes the
// callback: the mocks below ignore the executor argument entirely.

type stubTxRunner struct{}

func (stubTxRunner) WithinTx(ctx context.Context, fn func(exec repositories.SQLExecutor) error) error {
	return fn(nil)
}

// --- teams ---

type memTeamRepo struct {
	teams map[uuid.UUID]*models.Team
}

func newMemTeamRepo() *memTeamRepo {
	return &memTeamRepo{teams: make(map[uuid.UUID]*models.Team)}
}

func (r *memTeamRepo) Create(_ context.Context, _ repositories.SQLExecutor, t *models.Team) error {
	cp := *t
	r.teams[t.ID] = &cp
	return nil
}

func (r *memTeamRepo) GetByID(_ context.Context, id uuid.UUID) (*models.Team, error) {
	t, ok := r.teams[id]
	if !ok || t.IsDeleted {
		return nil, repositories.ErrTeamNotFound
	}
	cp := *t
	return &cp, nil
}

func (r *memTeamRepo) ListByTenant(_ context.Context, tenantID uuid.UUID, kind *models.TeamKind) ([]models.Team, error) {
	out := make([]models.Team, 0)
	for _, t := range r.teams {
		if t.IsDeleted || t.TenantID != tenantID {
			continue
		}
		if kind != nil && t.Kind != *kind {
			continue
		}
		out = append(out, *t)
	}
	return out, nil
}

func (r *memTeamRepo) Update(_ context.Context, t *models.Team) error {
	stored, ok := r.teams[t.ID]
	if !ok || stored.IsDeleted {
		return repositories.ErrTeamNotFound
	}
	cp := *t
	r.teams[t.ID] = &cp
	return nil
}

func (r *memTeamRepo) UpdateLogoKey(_ context.Context, teamID uuid.UUID, logoKey *string) error {
	stored, ok := r.teams[teamID]
	if !ok || stored.IsDeleted {
		return repositories.ErrTeamNotFound
	}
	stored.LogoKey = logoKey
	return nil
}

func (r *memTeamRepo) Delete(_ context.Context, _ repositories.SQLExecutor, id uuid.UUID) error {
	stored, ok := r.teams[id]
	if !ok || stored.IsDeleted {
		return repositories.ErrTeamNotFound
	}
	stored.IsDeleted = true
	return nil
}

func (r *memTeamRepo) DeleteByTenant(_ context.Context, _ repositories.SQLExecutor, tenantID uuid.UUID) error {
	for _, t := range r.teams {
		if t.TenantID == tenantID {
			t.IsDeleted = true
		}
	}
	return nil
}

// --- players ---

type memPlayerRepo struct {
	players map[uuid.UUID]*models.Player
}

func newMemPlayerRepo() *memPlayerRepo {
	return &memPlayerRepo{players: make(map[uuid.UUID]*models.Player)}
}

func (r *memPlayerRepo) Create(_ context.Context, _ repositories.SQLExecutor, p *models.Player) error {
	cp := *p
	r.players[p.ID] = &cp
	return nil
}

func (r *memPlayerRepo) GetByID(_ context.Context, id uuid.UUID) (*models.Player, error) {
	p, ok := r.players[id]
	if !ok || p.IsDeleted {
		return nil, repositories.ErrPlayerNotFound
	}
	cp := *p
	return &cp, nil
}

func (r *memPlayerRepo) GetByTenantAndUser(_ context.Context, tenantID, userID uuid.UUID) (*models.Player, error) {
	for _, p := range r.players {
		if !p.IsDeleted && p.TenantID == tenantID && p.AppUserID == userID {
			cp := *p
			return &cp, nil
		}
	}
	return nil, repositories.ErrPlayerNotFound
}

func (r *memPlayerRepo) ListByTenant(_ context.Context, tenantID uuid.UUID) ([]models.Player, error) {
	out := make([]models.Player, 0)
	for _, p := range r.players {
		if !p.IsDeleted && p.TenantID == tenantID {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (r *memPlayerRepo) Update(_ context.Context, p *models.Player) error {
	if _, ok := r.players[p.ID]; !ok {
		return repositories.ErrPlayerNotFound
	}
	cp := *p
	r.players[p.ID] = &cp
	return nil
}

func (r *memPlayerRepo) Delete(_ context.Context, _ repositories.SQLExecutor, id uuid.UUID) error {
	p, ok := r.players[id]
	if !ok {
		return repositories.ErrPlayerNotFound
	}
	p.IsDeleted = true
	return nil
}

func (r *memPlayerRepo) DeleteByTenant(_ context.Context, _ repositories.SQLExecutor, tenantID uuid.UUID) error {
	for _, p := range r.players {
		if p.TenantID == tenantID {
			p.IsDeleted = true
		}
	}
	return nil
}

func (r *memPlayerRepo) DeleteByUser(_ context.Context, _ repositories.SQLExecutor, userID uuid.UUID) error {
	for _, p := range r.players {
		if p.AppUserID == userID {
			p.IsDeleted = true
		}
	}
	return nil
}

// --- roster (tenure history) ---

type memRosterRepo struct {
	members []*models.TeamMember
	players *memPlayerRepo
}

func newMemRosterRepo(players *memPlayerRepo) *memRosterRepo {
	return &memRosterRepo{players: players}
}

func (r *memRosterRepo) OpenTenure(_ context.Context, _ repositories.SQLExecutor, m *models.TeamMember) error {
	for _, existing := range r.members {
		if existing.TeamID == m.TeamID && existing.PlayerID == m.PlayerID && existing.IsOpen() {
			return repositories.ErrTenureAlreadyOpen
		}
	}
	cp := *m
	r.members = append(r.members, &cp)
	return nil
}

func (r *memRosterRepo) CloseTenure(_ context.Context, _ repositories.SQLExecutor, teamID, playerID uuid.UUID, leftAt time.Time, reason *string) error {
	for _, m := range r.members {
		if m.TeamID == teamID && m.PlayerID == playerID && m.IsOpen() {
			at := leftAt
			m.LeftAt = &at
			m.LeaveReason = reason
			return nil
		}
	}
	return repositories.ErrTenureNotOpen
}

func (r *memRosterRepo) ListOpenPlayersByTeam(_ context.Context, teamID uuid.UUID) ([]*models.Player, error) {
	out := make([]*models.Player, 0)
	for _, m := range r.members {
		if m.TeamID != teamID || !m.IsOpen() {
			continue
		}
		if p, ok := r.players.players[m.PlayerID]; ok && !p.IsDeleted {
			cp := *p
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *memRosterRepo) ListHistoryByTeam(_ context.Context, teamID uuid.UUID) ([]*models.TeamMember, error) {
	out := make([]*models.TeamMember, 0)
	for _, m := range r.members {
		if m.TeamID == teamID {
			cp := *m
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *memRosterRepo) ListByPlayer(_ context.Context, playerID uuid.UUID) ([]*models.TeamMember, error) {
	out := make([]*models.TeamMember, 0)
	for _, m := range r.members {
		if m.PlayerID == playerID {
			cp := *m
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *memRosterRepo) CountOpenByTeam(_ context.Context, teamID uuid.UUID) (int, error) {
	count := 0
	for _, m := range r.members {
		if m.TeamID == teamID && m.IsOpen() {
			count++
		}
	}
	return count, nil
}

// --- event participant groups ---

type memGroupRepo struct {
	groups map[uuid.UUID]*models.EventParticipantGroup
}

func newMemGroupRepo() *memGroupRepo {
	return &memGroupRepo{groups: make(map[uuid.UUID]*models.EventParticipantGroup)}
}

func (r *memGroupRepo) Create(_ context.Context, _ repositories.SQLExecutor, g *models.EventParticipantGroup) error {
	cp := *g
	r.groups[g.ID] = &cp
	return nil
}

func (r *memGroupRepo) GetByID(_ context.Context, id uuid.UUID) (*models.EventParticipantGroup, error) {
	g, ok := r.groups[id]
	if !ok || g.IsDeleted {
		return nil, repositories.ErrGroupNotFound
	}
	cp := *g
	return &cp, nil
}

func (r *memGroupRepo) ListByEvent(_ context.Context, eventID uuid.UUID) ([]models.EventParticipantGroup, error) {
	out := make([]models.EventParticipantGroup, 0)
	for _, g := range r.groups {
		if !g.IsDeleted && g.ScheduledEventID == eventID {
			out = append(out, *g)
		}
	}
	return out, nil
}

func (r *memGroupRepo) SetTeam(_ context.Context, _ repositories.SQLExecutor, groupID uuid.UUID, teamID *uuid.UUID) error {
	g, ok := r.groups[groupID]
	if !ok || g.IsDeleted {
		return repositories.ErrGroupNotFound
	}
	g.TeamID = teamID
	return nil
}

func (r *memGroupRepo) Delete(_ context.Context, _ repositories.SQLExecutor, id uuid.UUID) error {
	g, ok := r.groups[id]
	if !ok || g.IsDeleted {
		return repositories.ErrGroupNotFound
	}
	g.IsDeleted = true
	return nil
}

func (r *memGroupRepo) DeleteByEvent(_ context.Context, _ repositories.SQLExecutor, eventID uuid.UUID) error {
	for _, g := range r.groups {
		if g.ScheduledEventID == eventID {
			g.IsDeleted = true
		}
	}
	return nil
}

func (r *memGroupRepo) ClearTeamRefs(_ context.Context, _ repositories.SQLExecutor, teamID uuid.UUID) error {
	for _, g := range r.groups {
		if g.TeamID != nil && *g.TeamID == teamID {
			g.TeamID = nil
		}
	}
	return nil
}

// --- direct event participants ---

type memParticipantRepo struct {
	rows    []models.EventParticipant
	players *memPlayerRepo
}

func newMemParticipantRepo(players *memPlayerRepo) *memParticipantRepo {
	return &memParticipantRepo{players: players}
}

func (r *memParticipantRepo) Add(_ context.Context, _ repositories.SQLExecutor, p *models.EventParticipant) error {
	for _, row := range r.rows {
		if row.GroupID == p.GroupID && row.PlayerID == p.PlayerID {
			return &repositories.ConstraintViolationError{
				Relationship: "event_participants",
				Constraint:   "event_participants_pkey",
			}
		}
	}
	r.rows = append(r.rows, *p)
	return nil
}

func (r *memParticipantRepo) Remove(_ context.Context, _ repositories.SQLExecutor, groupID, playerID uuid.UUID) error {
	for i, row := range r.rows {
		if row.GroupID == groupID && row.PlayerID == playerID {
			r.rows = append(r.rows[:i], r.rows[i+1:]...)
			return nil
		}
	}
	return nil
}

func (r *memParticipantRepo) ListPlayersByGroup(_ context.Context, groupID uuid.UUID) ([]*models.Player, error) {
	out := make([]*models.Player, 0)
	for _, row := range r.rows {
		if row.GroupID != groupID {
			continue
		}
		if p, ok := r.players.players[row.PlayerID]; ok && !p.IsDeleted {
			cp := *p
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *memParticipantRepo) CountByGroup(_ context.Context, groupID uuid.UUID) (int, error) {
	count := 0
	for _, row := range r.rows {
		if row.GroupID == groupID {
			count++
		}
	}
	return count, nil
}

// --- scheduled events ---

type memEventRepo struct {
	events map[uuid.UUID]*models.ScheduledEvent
}

func newMemEventRepo() *memEventRepo {
	return &memEventRepo{events: make(map[uuid.UUID]*models.ScheduledEvent)}
}

func (r *memEventRepo) Create(_ context.Context, _ repositories.SQLExecutor, e *models.ScheduledEvent) error {
	cp := *e
	r.events[e.ID] = &cp
	return nil
}

func (r *memEventRepo) GetByID(_ context.Context, id uuid.UUID) (*models.ScheduledEvent, error) {
	e, ok := r.events[id]
	if !ok || e.IsDeleted {
		return nil, repositories.ErrEventNotFound
	}
	cp := *e
	return &cp, nil
}

func (r *memEventRepo) ListByTenant(_ context.Context, tenantID uuid.UUID, _ repositories.ListEventsFilter) ([]models.ScheduledEvent, error) {
	out := make([]models.ScheduledEvent, 0)
	for _, e := range r.events {
		if !e.IsDeleted && e.TenantID == tenantID {
			out = append(out, *e)
		}
	}
	return out, nil
}

func (r *memEventRepo) Update(_ context.Context, _ repositories.SQLExecutor, e *models.ScheduledEvent) error {
	stored, ok := r.events[e.ID]
	if !ok || stored.IsDeleted {
		return repositories.ErrEventNotFound
	}
	if stored.Version != e.Version {
		return repositories.ErrEventVersionConflict
	}
	stored.StartTime = e.StartTime
	stored.EndTime = e.EndTime
	stored.Status = e.Status
	stored.Type = e.Type
	stored.IsProjected = e.IsProjected
	stored.UpdatedBy = e.UpdatedBy
	stored.Version++
	e.Version = stored.Version
	return nil
}

func (r *memEventRepo) Delete(_ context.Context, _ repositories.SQLExecutor, id uuid.UUID) error {
	e, ok := r.events[id]
	if !ok || e.IsDeleted {
		return repositories.ErrEventNotFound
	}
	e.IsDeleted = true
	return nil
}

func (r *memEventRepo) DeleteByTenant(_ context.Context, _ repositories.SQLExecutor, tenantID uuid.UUID) error {
	for _, e := range r.events {
		if e.TenantID == tenantID {
			e.IsDeleted = true
		}
	}
	return nil
}

// --- event results ---

type memResultRepo struct {
	results map[uuid.UUID]*models.EventResult // keyed by event ID
}

func newMemResultRepo() *memResultRepo {
	return &memResultRepo{results: make(map[uuid.UUID]*models.EventResult)}
}

func (r *memResultRepo) Create(_ context.Context, _ repositories.SQLExecutor, res *models.EventResult) error {
	if _, ok := r.results[res.ScheduledEventID]; ok {
		return &repositories.ConstraintViolationError{
			Relationship: "event_results.scheduled_event_id",
			Constraint:   "event_results_scheduled_event_id_key",
		}
	}
	cp := *res
	r.results[res.ScheduledEventID] = &cp
	return nil
}

func (r *memResultRepo) GetByEvent(_ context.Context, eventID uuid.UUID) (*models.EventResult, error) {
	res, ok := r.results[eventID]
	if !ok || res.IsDeleted {
		return nil, repositories.ErrResultNotFound
	}
	cp := *res
	return &cp, nil
}

func (r *memResultRepo) Update(_ context.Context, _ repositories.SQLExecutor, res *models.EventResult) error {
	if _, ok := r.results[res.ScheduledEventID]; !ok {
		return repositories.ErrResultNotFound
	}
	cp := *res
	r.results[res.ScheduledEventID] = &cp
	return nil
}

func (r *memResultRepo) DeleteByEvent(_ context.Context, _ repositories.SQLExecutor, eventID uuid.UUID) error {
	if res, ok := r.results[eventID]; ok {
		res.IsDeleted = true
	}
	return nil
}

func (r *memResultRepo) ClearWinningGroupRefs(_ context.Context, _ repositories.SQLExecutor, groupID uuid.UUID) error {
	for _, res := range r.results {
		if res.WinningGroupID != nil && *res.WinningGroupID == groupID {
			res.WinningGroupID = nil
		}
	}
	return nil
}

// --- tenants ---

type memTenantRepo struct {
	tenants map[uuid.UUID]*models.Tenant
}

func newMemTenantRepo() *memTenantRepo {
	return &memTenantRepo{tenants: make(map[uuid.UUID]*models.Tenant)}
}

func (r *memTenantRepo) Create(_ context.Context, _ repositories.SQLExecutor, t *models.Tenant) error {
	cp := *t
	r.tenants[t.ID] = &cp
	return nil
}

func (r *memTenantRepo) GetByID(_ context.Context, id uuid.UUID) (*models.Tenant, error) {
	t, ok := r.tenants[id]
	if !ok || t.IsDeleted {
		return nil, repositories.ErrTenantNotFound
	}
	cp := *t
	return &cp, nil
}

func (r *memTenantRepo) List(_ context.Context, _ repositories.ListTenantsFilter) ([]models.Tenant, error) {
	out := make([]models.Tenant, 0)
	for _, t := range r.tenants {
		if !t.IsDeleted {
			out = append(out, *t)
		}
	}
	return out, nil
}

func (r *memTenantRepo) Update(_ context.Context, t *models.Tenant) error {
	if _, ok := r.tenants[t.ID]; !ok {
		return repositories.ErrTenantNotFound
	}
	cp := *t
	r.tenants[t.ID] = &cp
	return nil
}

func (r *memTenantRepo) UpdateLogoKey(_ context.Context, tenantID uuid.UUID, logoKey *string) error {
	t, ok := r.tenants[tenantID]
	if !ok {
		return repositories.ErrTenantNotFound
	}
	t.LogoKey = logoKey
	return nil
}

func (r *memTenantRepo) Delete(_ context.Context, _ repositories.SQLExecutor, id uuid.UUID) error {
	t, ok := r.tenants[id]
	if !ok || t.IsDeleted {
		return repositories.ErrTenantNotFound
	}
	t.IsDeleted = true
	return nil
}

// --- memberships ---

type membershipKey struct {
	userID   uuid.UUID
	tenantID uuid.UUID
}

type memMembershipRepo struct {
	rows map[membershipKey]*models.Membership
}

func newMemMembershipRepo() *memMembershipRepo {
	return &memMembershipRepo{rows: make(map[membershipKey]*models.Membership)}
}

func (r *memMembershipRepo) Enroll(_ context.Context, _ repositories.SQLExecutor, m *models.Membership) error {
	key := membershipKey{m.AppUserID, m.TenantID}
	if existing, ok := r.rows[key]; ok {
		// Существующая строка побеждает, как RETURNING в SQL-версии.
		m.RoleID = existing.RoleID
		m.Status = existing.Status
		return nil
	}
	cp := *m
	r.rows[key] = &cp
	return nil
}

func (r *memMembershipRepo) Upsert(_ context.Context, _ repositories.SQLExecutor, m *models.Membership) error {
	key := membershipKey{m.AppUserID, m.TenantID}
	if existing, ok := r.rows[key]; ok {
		existing.RoleID = m.RoleID
		m.Status = existing.Status
		return nil
	}
	cp := *m
	r.rows[key] = &cp
	return nil
}

func (r *memMembershipRepo) Get(_ context.Context, userID, tenantID uuid.UUID) (*models.Membership, error) {
	m, ok := r.rows[membershipKey{userID, tenantID}]
	if !ok {
		return nil, repositories.ErrMembershipNotFound
	}
	cp := *m
	return &cp, nil
}

func (r *memMembershipRepo) ListByTenant(_ context.Context, tenantID uuid.UUID) ([]models.Membership, error) {
	out := make([]models.Membership, 0)
	for key, m := range r.rows {
		if key.tenantID == tenantID {
			out = append(out, *m)
		}
	}
	return out, nil
}

func (r *memMembershipRepo) ListByUser(_ context.Context, userID uuid.UUID) ([]models.Membership, error) {
	out := make([]models.Membership, 0)
	for key, m := range r.rows {
		if key.userID == userID {
			out = append(out, *m)
		}
	}
	return out, nil
}

func (r *memMembershipRepo) UpdateStatus(_ context.Context, _ repositories.SQLExecutor, userID, tenantID uuid.UUID, status models.MembershipStatus) error {
	m, ok := r.rows[membershipKey{userID, tenantID}]
	if !ok {
		return repositories.ErrMembershipNotFound
	}
	m.Status = status
	return nil
}

// --- roles and permissions ---

type memRoleRepo struct {
	roles       map[uuid.UUID]*models.Role
	permissions map[uuid.UUID][]models.Permission
	deleteErr   error
}

func newMemRoleRepo() *memRoleRepo {
	return &memRoleRepo{
		roles:       make(map[uuid.UUID]*models.Role),
		permissions: make(map[uuid.UUID][]models.Permission),
	}
}

func (r *memRoleRepo) Create(_ context.Context, role *models.Role) error {
	cp := *role
	r.roles[role.ID] = &cp
	return nil
}

func (r *memRoleRepo) GetByID(_ context.Context, id uuid.UUID) (*models.Role, error) {
	role, ok := r.roles[id]
	if !ok {
		return nil, repositories.ErrRoleNotFound
	}
	cp := *role
	return &cp, nil
}

func (r *memRoleRepo) List(_ context.Context) ([]models.Role, error) {
	out := make([]models.Role, 0)
	for _, role := range r.roles {
		out = append(out, *role)
	}
	return out, nil
}

func (r *memRoleRepo) Update(_ context.Context, role *models.Role) error {
	if _, ok := r.roles[role.ID]; !ok {
		return repositories.ErrRoleNotFound
	}
	cp := *role
	r.roles[role.ID] = &cp
	return nil
}

func (r *memRoleRepo) Delete(_ context.Context, _ repositories.SQLExecutor, id uuid.UUID) error {
	if r.deleteErr != nil {
		return r.deleteErr
	}
	if _, ok := r.roles[id]; !ok {
		return repositories.ErrRoleNotFound
	}
	delete(r.roles, id)
	return nil
}

func (r *memRoleRepo) AddPermission(_ context.Context, _ repositories.SQLExecutor, roleID, permissionID uuid.UUID) error {
	for _, p := range r.permissions[roleID] {
		if p.ID == permissionID {
			return nil
		}
	}
	r.permissions[roleID] = append(r.permissions[roleID], models.Permission{ID: permissionID})
	return nil
}

func (r *memRoleRepo) RemovePermission(_ context.Context, _ repositories.SQLExecutor, roleID, permissionID uuid.UUID) error {
	perms := r.permissions[roleID]
	for i, p := range perms {
		if p.ID == permissionID {
			r.permissions[roleID] = append(perms[:i], perms[i+1:]...)
			return nil
		}
	}
	return nil
}

func (r *memRoleRepo) ListPermissions(_ context.Context, roleID uuid.UUID) ([]models.Permission, error) {
	return append([]models.Permission(nil), r.permissions[roleID]...), nil
}

func (r *memRoleRepo) ListPermissionCodes(_ context.Context, roleID uuid.UUID) ([]string, error) {
	out := make([]string, 0)
	for _, p := range r.permissions[roleID] {
		out = append(out, p.Code)
	}
	return out, nil
}

type memPermissionRepo struct {
	permissions map[uuid.UUID]*models.Permission
}

func newMemPermissionRepo() *memPermissionRepo {
	return &memPermissionRepo{permissions: make(map[uuid.UUID]*models.Permission)}
}

func (r *memPermissionRepo) Create(_ context.Context, p *models.Permission) error {
	cp := *p
	r.permissions[p.ID] = &cp
	return nil
}

func (r *memPermissionRepo) GetByID(_ context.Context, id uuid.UUID) (*models.Permission, error) {
	p, ok := r.permissions[id]
	if !ok {
		return nil, repositories.ErrPermissionNotFound
	}
	cp := *p
	return &cp, nil
}

func (r *memPermissionRepo) GetByCode(_ context.Context, code string) (*models.Permission, error) {
	for _, p := range r.permissions {
		if p.Code == code {
			cp := *p
			return &cp, nil
		}
	}
	return nil, repositories.ErrPermissionNotFound
}

func (r *memPermissionRepo) List(_ context.Context) ([]models.Permission, error) {
	out := make([]models.Permission, 0)
	for _, p := range r.permissions {
		out = append(out, *p)
	}
	return out, nil
}

func (r *memPermissionRepo) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := r.permissions[id]; !ok {
		return repositories.ErrPermissionNotFound
	}
	delete(r.permissions, id)
	return nil
}
