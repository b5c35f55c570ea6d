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

type resolverFixture struct {
	resolver     ParticipantResolver
	teams        *memTeamRepo
	players      *memPlayerRepo
	roster       *memRosterRepo
	groups       *memGroupRepo
	participants *memParticipantRepo
	tenantID     uuid.UUID
}

func newResolverFixture() *resolverFixture {
	players := newMemPlayerRepo()
	f := &resolverFixture{
		teams:        newMemTeamRepo(),
		players:      players,
		roster:       newMemRosterRepo(players),
		groups:       newMemGroupRepo(),
		participants: newMemParticipantRepo(players),
		tenantID:     uuid.New(),
	}
	f.resolver = NewParticipantResolver(f.groups, f.teams, f.roster, f.participants)
	return f
}

func (f *resolverFixture) addPlayer(t *testing.T, name string) uuid.UUID {
	t.Helper()
	id := uuid.New()
	err := f.players.Create(context.Background(), nil, &models.Player{
		ID:          id,
		TenantID:    f.tenantID,
		AppUserID:   uuid.New(),
		DisplayName: name,
	})
	require.NoError(t, err)
	return id
}

func (f *resolverFixture) addTeam(t *testing.T, kind models.TeamKind) uuid.UUID {
	t.Helper()
	id := uuid.New()
	err := f.teams.Create(context.Background(), nil, &models.Team{
		ID:       id,
		TenantID: f.tenantID,
		Name:     "Thunder",
		Kind:     kind,
		IsActive: true,
	})
	require.NoError(t, err)
	return id
}

func (f *resolverFixture) addGroup(t *testing.T, eventID uuid.UUID, teamID *uuid.UUID, order int) uuid.UUID {
	t.Helper()
	id := uuid.New()
	err := f.groups.Create(context.Background(), nil, &models.EventParticipantGroup{
		ID:               id,
		ScheduledEventID: eventID,
		TeamID:           teamID,
		Name:             "Group",
		Order:            order,
	})
	require.NoError(t, err)
	return id
}

func TestResolveTeamBackedGroupReturnsOpenTenuresOnly(t *testing.T) {
	f := newResolverFixture()
	ctx := context.Background()

	teamID := f.addTeam(t, models.TeamKindStatic)
	open := f.addPlayer(t, "Alice")
	closed := f.addPlayer(t, "Bob")

	require.NoError(t, f.roster.OpenTenure(ctx, nil, &models.TeamMember{
		ID: uuid.New(), TeamID: teamID, PlayerID: open, JoinedAt: time.Now(),
	}))
	require.NoError(t, f.roster.OpenTenure(ctx, nil, &models.TeamMember{
		ID: uuid.New(), TeamID: teamID, PlayerID: closed, JoinedAt: time.Now(),
	}))
	require.NoError(t, f.roster.CloseTenure(ctx, nil, teamID, closed, time.Now(), nil))

	groupID := f.addGroup(t, uuid.New(), &teamID, 0)

	players, err := f.resolver.Resolve(ctx, groupID)
	require.NoError(t, err)
	require.Len(t, players, 1)
	assert.Equal(t, open, players[0].ID)

	count, err := f.resolver.Count(ctx, groupID)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	backed, err := f.resolver.IsTeamBacked(ctx, groupID)
	require.NoError(t, err)
	assert.True(t, backed)
}

func TestResolveListBackedGroup(t *testing.T) {
	f := newResolverFixture()
	ctx := context.Background()

	p1 := f.addPlayer(t, "Carol")
	p2 := f.addPlayer(t, "Dave")
	groupID := f.addGroup(t, uuid.New(), nil, 0)

	require.NoError(t, f.participants.Add(ctx, nil, &models.EventParticipant{GroupID: groupID, PlayerID: p1}))
	require.NoError(t, f.participants.Add(ctx, nil, &models.EventParticipant{GroupID: groupID, PlayerID: p2}))

	players, err := f.resolver.Resolve(ctx, groupID)
	require.NoError(t, err)
	assert.Len(t, players, 2)

	count, err := f.resolver.Count(ctx, groupID)
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	backed, err := f.resolver.IsTeamBacked(ctx, groupID)
	require.NoError(t, err)
	assert.False(t, backed)
}

func TestResolveMissingGroupIsEmptyNotError(t *testing.T) {
	f := newResolverFixture()
	ctx := context.Background()

	players, err := f.resolver.Resolve(ctx, uuid.New())
	require.NoError(t, err)
	assert.Empty(t, players)

	count, err := f.resolver.Count(ctx, uuid.New())
	require.NoError(t, err)
	assert.Zero(t, count)

	_, err = f.resolver.IsTeamBacked(ctx, uuid.New())
	assert.ErrorIs(t, err, ErrGroupNotFound)
}

func TestResolveEphemeralBackingTeamIsInvalidState(t *testing.T) {
	f := newResolverFixture()
	ctx := context.Background()

	teamID := f.addTeam(t, models.TeamKindEphemeral)
	groupID := f.addGroup(t, uuid.New(), &teamID, 0)

	_, err := f.resolver.Resolve(ctx, groupID)
	assert.ErrorIs(t, err, ErrGroupStateInvalid)

	_, err = f.resolver.Count(ctx, groupID)
	assert.ErrorIs(t, err, ErrGroupStateInvalid)
}

func TestResolveReflectsCurrentRoster(t *testing.T) {
	f := newResolverFixture()
	ctx := context.Background()

	teamID := f.addTeam(t, models.TeamKindStatic)
	playerID := f.addPlayer(t, "Eve")
	require.NoError(t, f.roster.OpenTenure(ctx, nil, &models.TeamMember{
		ID: uuid.New(), TeamID: teamID, PlayerID: playerID, JoinedAt: time.Now(),
	}))
	groupID := f.addGroup(t, uuid.New(), &teamID, 0)

	players, err := f.resolver.Resolve(ctx, groupID)
	require.NoError(t, err)
	require.Len(t, players, 1)

	// Уход из команды виден при следующем разрешении, включая прошлые события.
	require.NoError(t, f.roster.CloseTenure(ctx, nil, teamID, playerID, time.Now(), nil))

	players, err = f.resolver.Resolve(ctx, groupID)
	require.NoError(t, err)
	assert.Empty(t, players)
}

func TestResolveAllResolvesEveryGroupOfEvent(t *testing.T) {
	f := newResolverFixture()
	ctx := context.Background()
	eventID := uuid.New()

	teamID := f.addTeam(t, models.TeamKindStatic)
	teamPlayer := f.addPlayer(t, "Frank")
	require.NoError(t, f.roster.OpenTenure(ctx, nil, &models.TeamMember{
		ID: uuid.New(), TeamID: teamID, PlayerID: teamPlayer, JoinedAt: time.Now(),
	}))
	teamGroup := f.addGroup(t, eventID, &teamID, 0)

	listPlayer := f.addPlayer(t, "Grace")
	listGroup := f.addGroup(t, eventID, nil, 1)
	require.NoError(t, f.participants.Add(ctx, nil, &models.EventParticipant{GroupID: listGroup, PlayerID: listPlayer}))

	resolved, err := f.resolver.ResolveAll(ctx, eventID)
	require.NoError(t, err)
	require.Len(t, resolved, 2)

	require.Len(t, resolved[teamGroup], 1)
	assert.Equal(t, teamPlayer, resolved[teamGroup][0].ID)
	require.Len(t, resolved[listGroup], 1)
	assert.Equal(t, listPlayer, resolved[listGroup][0].ID)
}
