package services

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clubstack/league-system/models"
)

type teamFixture struct {
	service  TeamService
	teams    *memTeamRepo
	players  *memPlayerRepo
	roster   *memRosterRepo
	groups   *memGroupRepo
	tenantID uuid.UUID
}

func newTeamFixture() *teamFixture {
	players := newMemPlayerRepo()
	f := &teamFixture{
		teams:    newMemTeamRepo(),
		players:  players,
		roster:   newMemRosterRepo(players),
		groups:   newMemGroupRepo(),
		tenantID: uuid.New(),
	}
	f.service = NewTeamService(stubTxRunner{}, f.teams, f.roster, f.players, f.groups, nil)
	return f
}

func (f *teamFixture) createTeam(t *testing.T, kind models.TeamKind) uuid.UUID {
	t.Helper()
	team, err := f.service.CreateTeam(context.Background(), CreateTeamInput{
		TenantID: f.tenantID,
		Name:     "Riverside Rockets",
		Kind:     kind,
	})
	require.NoError(t, err)
	return team.ID
}

func (f *teamFixture) createPlayer(t *testing.T, tenantID uuid.UUID) uuid.UUID {
	t.Helper()
	id := uuid.New()
	err := f.players.Create(context.Background(), nil, &models.Player{
		ID:          id,
		TenantID:    tenantID,
		AppUserID:   uuid.New(),
		DisplayName: "Sam",
	})
	require.NoError(t, err)
	return id
}

func TestAddMemberOpensTenure(t *testing.T) {
	f := newTeamFixture()
	ctx := context.Background()

	teamID := f.createTeam(t, models.TeamKindStatic)
	playerID := f.createPlayer(t, f.tenantID)

	member, err := f.service.AddMember(ctx, AddTeamMemberInput{TeamID: teamID, PlayerID: playerID})
	require.NoError(t, err)
	assert.True(t, member.IsOpen())

	roster, err := f.service.Roster(ctx, teamID)
	require.NoError(t, err)
	require.Len(t, roster, 1)
	assert.Equal(t, playerID, roster[0].ID)
}

func TestAddMemberTwiceFailsWhileTenureOpen(t *testing.T) {
	f := newTeamFixture()
	ctx := context.Background()

	teamID := f.createTeam(t, models.TeamKindStatic)
	playerID := f.createPlayer(t, f.tenantID)

	_, err := f.service.AddMember(ctx, AddTeamMemberInput{TeamID: teamID, PlayerID: playerID})
	require.NoError(t, err)

	_, err = f.service.AddMember(ctx, AddTeamMemberInput{TeamID: teamID, PlayerID: playerID})
	assert.ErrorIs(t, err, ErrAlreadyActiveMember)
}

func TestRemoveMemberClosesTenureAndKeepsHistory(t *testing.T) {
	f := newTeamFixture()
	ctx := context.Background()

	teamID := f.createTeam(t, models.TeamKindStatic)
	playerID := f.createPlayer(t, f.tenantID)

	_, err := f.service.AddMember(ctx, AddTeamMemberInput{TeamID: teamID, PlayerID: playerID})
	require.NoError(t, err)

	reason := "transferred"
	require.NoError(t, f.service.RemoveMember(ctx, teamID, playerID, &reason))

	roster, err := f.service.Roster(ctx, teamID)
	require.NoError(t, err)
	assert.Empty(t, roster)

	history, err := f.service.RosterHistory(ctx, teamID)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.False(t, history[0].IsOpen())
	require.NotNil(t, history[0].LeaveReason)
	assert.Equal(t, reason, *history[0].LeaveReason)
}

func TestRejoinAfterLeavingCreatesSecondTenure(t *testing.T) {
	f := newTeamFixture()
	ctx := context.Background()

	teamID := f.createTeam(t, models.TeamKindStatic)
	playerID := f.createPlayer(t, f.tenantID)

	_, err := f.service.AddMember(ctx, AddTeamMemberInput{TeamID: teamID, PlayerID: playerID})
	require.NoError(t, err)
	require.NoError(t, f.service.RemoveMember(ctx, teamID, playerID, nil))

	_, err = f.service.AddMember(ctx, AddTeamMemberInput{TeamID: teamID, PlayerID: playerID})
	require.NoError(t, err)

	history, err := f.service.RosterHistory(ctx, teamID)
	require.NoError(t, err)
	assert.Len(t, history, 2)
}

func TestRemoveMemberWithoutOpenTenure(t *testing.T) {
	f := newTeamFixture()
	ctx := context.Background()

	teamID := f.createTeam(t, models.TeamKindStatic)
	playerID := f.createPlayer(t, f.tenantID)

	err := f.service.RemoveMember(ctx, teamID, playerID, nil)
	assert.ErrorIs(t, err, ErrNoActiveMembership)
}

func TestAddMemberToEphemeralTeamRejected(t *testing.T) {
	f := newTeamFixture()
	ctx := context.Background()

	teamID := f.createTeam(t, models.TeamKindEphemeral)
	playerID := f.createPlayer(t, f.tenantID)

	_, err := f.service.AddMember(ctx, AddTeamMemberInput{TeamID: teamID, PlayerID: playerID})
	assert.ErrorIs(t, err, ErrTeamNotStatic)
}

func TestAddMemberFromAnotherTenantRejected(t *testing.T) {
	f := newTeamFixture()
	ctx := context.Background()

	teamID := f.createTeam(t, models.TeamKindStatic)
	foreignPlayer := f.createPlayer(t, uuid.New())

	_, err := f.service.AddMember(ctx, AddTeamMemberInput{TeamID: teamID, PlayerID: foreignPlayer})
	assert.ErrorIs(t, err, ErrTenantMismatch)
}

func TestCreateTeamInvalidSeasonRange(t *testing.T) {
	f := newTeamFixture()

	start := time.Now().UTC()
	end := start.Add(-time.Hour)
	_, err := f.service.CreateTeam(context.Background(), CreateTeamInput{
		TenantID:    f.tenantID,
		Name:        "Backwards",
		Kind:        models.TeamKindStatic,
		SeasonStart: &start,
		SeasonEnd:   &end,
	})
	assert.ErrorIs(t, err, ErrSeasonInvalidRange)
}

func TestDeleteTeamDetachesGroups(t *testing.T) {
	f := newTeamFixture()
	ctx := context.Background()

	teamID := f.createTeam(t, models.TeamKindStatic)
	groupID := uuid.New()
	require.NoError(t, f.groups.Create(ctx, nil, &models.EventParticipantGroup{
		ID:               groupID,
		ScheduledEventID: uuid.New(),
		TeamID:           &teamID,
		Name:             "Home",
	}))

	require.NoError(t, f.service.DeleteTeam(ctx, teamID))

	_, err := f.service.GetTeamByID(ctx, teamID)
	assert.ErrorIs(t, err, ErrTeamNotFound)

	group, err := f.groups.GetByID(ctx, groupID)
	require.NoError(t, err)
	assert.Nil(t, group.TeamID)
}
