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

type eventFixture struct {
	service      EventService
	events       *memEventRepo
	groups       *memGroupRepo
	participants *memParticipantRepo
	results      *memResultRepo
	teams        *memTeamRepo
	players      *memPlayerRepo
	tenantID     uuid.UUID
}

func newEventFixture() *eventFixture {
	players := newMemPlayerRepo()
	f := &eventFixture{
		events:       newMemEventRepo(),
		groups:       newMemGroupRepo(),
		participants: newMemParticipantRepo(players),
		results:      newMemResultRepo(),
		teams:        newMemTeamRepo(),
		players:      players,
		tenantID:     uuid.New(),
	}
	f.service = NewEventService(stubTxRunner{}, f.events, f.groups, f.participants, f.results, f.teams, f.players, nil)
	return f
}

func (f *eventFixture) createEvent(t *testing.T) *models.ScheduledEvent {
	t.Helper()
	event, err := f.service.CreateEvent(context.Background(), CreateEventInput{
		TenantID:  f.tenantID,
		StartTime: time.Now().Add(time.Hour),
		Type:      models.EventTypeMatch,
	})
	require.NoError(t, err)
	return event
}

func (f *eventFixture) createGroup(t *testing.T, eventID uuid.UUID, teamID *uuid.UUID) uuid.UUID {
	t.Helper()
	group, err := f.service.CreateGroup(context.Background(), CreateGroupInput{
		ScheduledEventID: eventID,
		Name:             "Home",
		TeamID:           teamID,
	})
	require.NoError(t, err)
	return group.ID
}

func (f *eventFixture) createStaticTeam(t *testing.T) uuid.UUID {
	t.Helper()
	id := uuid.New()
	require.NoError(t, f.teams.Create(context.Background(), nil, &models.Team{
		ID:       id,
		TenantID: f.tenantID,
		Name:     "Rockets",
		Kind:     models.TeamKindStatic,
		IsActive: true,
	}))
	return id
}

func (f *eventFixture) createPlayer(t *testing.T, tenantID uuid.UUID) uuid.UUID {
	t.Helper()
	id := uuid.New()
	require.NoError(t, f.players.Create(context.Background(), nil, &models.Player{
		ID:          id,
		TenantID:    tenantID,
		AppUserID:   uuid.New(),
		DisplayName: "Pat",
	}))
	return id
}

func TestCreateEventStartsAtVersionOne(t *testing.T) {
	f := newEventFixture()
	event := f.createEvent(t)
	assert.EqualValues(t, 1, event.Version)
	assert.Equal(t, models.EventScheduled, event.Status)
}

func TestFreshEventUpdatableWithReadBackVersion(t *testing.T) {
	f := newEventFixture()
	ctx := context.Background()
	created := f.createEvent(t)

	// Версия из хранилища, а не из ответа CreateEvent: первый Update должен
	// принимать ровно то значение, с которым строка была вставлена.
	stored, err := f.service.GetEventByID(ctx, created.ID)
	require.NoError(t, err)
	require.EqualValues(t, 1, stored.Version)

	updated, err := f.service.UpdateEvent(ctx, created.ID, UpdateEventInput{
		StartTime: stored.StartTime,
		Status:    models.EventOngoing,
		Type:      stored.Type,
		Version:   stored.Version,
	})
	require.NoError(t, err)
	assert.EqualValues(t, 2, updated.Version)
}

func TestUpdateEventBumpsVersion(t *testing.T) {
	f := newEventFixture()
	ctx := context.Background()
	event := f.createEvent(t)

	updated, err := f.service.UpdateEvent(ctx, event.ID, UpdateEventInput{
		StartTime: event.StartTime,
		Status:    models.EventOngoing,
		Type:      event.Type,
		Version:   event.Version,
	})
	require.NoError(t, err)
	assert.EqualValues(t, 2, updated.Version)
	assert.Equal(t, models.EventOngoing, updated.Status)
}

func TestUpdateEventStaleVersion(t *testing.T) {
	f := newEventFixture()
	ctx := context.Background()
	event := f.createEvent(t)

	// Первый писатель успевает, второй несёт прочитанную ранее версию.
	_, err := f.service.UpdateEvent(ctx, event.ID, UpdateEventInput{
		StartTime: event.StartTime,
		Status:    models.EventOngoing,
		Type:      event.Type,
		Version:   event.Version,
	})
	require.NoError(t, err)

	_, err = f.service.UpdateEvent(ctx, event.ID, UpdateEventInput{
		StartTime: event.StartTime,
		Status:    models.EventCancelled,
		Type:      event.Type,
		Version:   event.Version,
	})
	assert.ErrorIs(t, err, ErrStaleVersion)

	// После перечитывания обновление проходит.
	current, err := f.service.GetEventByID(ctx, event.ID)
	require.NoError(t, err)
	_, err = f.service.UpdateEvent(ctx, event.ID, UpdateEventInput{
		StartTime: current.StartTime,
		Status:    models.EventCancelled,
		Type:      current.Type,
		Version:   current.Version,
	})
	require.NoError(t, err)
}

func TestUpdateEventInvalidTimes(t *testing.T) {
	f := newEventFixture()
	event := f.createEvent(t)

	end := event.StartTime.Add(-time.Hour)
	_, err := f.service.UpdateEvent(context.Background(), event.ID, UpdateEventInput{
		StartTime: event.StartTime,
		EndTime:   &end,
		Status:    event.Status,
		Type:      event.Type,
		Version:   event.Version,
	})
	assert.ErrorIs(t, err, ErrEventInvalidTimes)
}

func TestAddParticipantToTeamBackedGroupRejected(t *testing.T) {
	f := newEventFixture()
	ctx := context.Background()

	event := f.createEvent(t)
	teamID := f.createStaticTeam(t)
	groupID := f.createGroup(t, event.ID, &teamID)
	playerID := f.createPlayer(t, f.tenantID)

	err := f.service.AddParticipant(ctx, groupID, playerID)
	assert.ErrorIs(t, err, ErrGroupStateInvalid)
}

func TestAssignTeamToGroupWithDirectParticipantsRejected(t *testing.T) {
	f := newEventFixture()
	ctx := context.Background()

	event := f.createEvent(t)
	groupID := f.createGroup(t, event.ID, nil)
	playerID := f.createPlayer(t, f.tenantID)
	require.NoError(t, f.service.AddParticipant(ctx, groupID, playerID))

	teamID := f.createStaticTeam(t)
	err := f.service.AssignTeam(ctx, groupID, teamID)
	assert.ErrorIs(t, err, ErrGroupStateInvalid)

	// После удаления прямых участников привязка проходит.
	require.NoError(t, f.service.RemoveParticipant(ctx, groupID, playerID))
	require.NoError(t, f.service.AssignTeam(ctx, groupID, teamID))
}

func TestAssignTeamFromAnotherTenantRejected(t *testing.T) {
	f := newEventFixture()
	ctx := context.Background()

	event := f.createEvent(t)
	groupID := f.createGroup(t, event.ID, nil)

	foreignTeam := uuid.New()
	require.NoError(t, f.teams.Create(ctx, nil, &models.Team{
		ID:       foreignTeam,
		TenantID: uuid.New(),
		Name:     "Outsiders",
		Kind:     models.TeamKindStatic,
		IsActive: true,
	}))

	err := f.service.AssignTeam(ctx, groupID, foreignTeam)
	assert.ErrorIs(t, err, ErrTenantMismatch)
}

func TestAddParticipantFromAnotherTenantRejected(t *testing.T) {
	f := newEventFixture()
	ctx := context.Background()

	event := f.createEvent(t)
	groupID := f.createGroup(t, event.ID, nil)
	foreignPlayer := f.createPlayer(t, uuid.New())

	err := f.service.AddParticipant(ctx, groupID, foreignPlayer)
	assert.ErrorIs(t, err, ErrTenantMismatch)
}

func TestRecordResultWinnerMustBelongToEvent(t *testing.T) {
	f := newEventFixture()
	ctx := context.Background()

	event := f.createEvent(t)
	otherEvent := f.createEvent(t)
	foreignGroup := f.createGroup(t, otherEvent.ID, nil)

	_, err := f.service.RecordResult(ctx, RecordResultInput{
		ScheduledEventID: event.ID,
		WinningGroupID:   &foreignGroup,
		Status:           models.ResultHasWinner,
	})
	assert.ErrorIs(t, err, ErrResultWinnerNotFound)
}

func TestRecordResultUpsertsSingleRow(t *testing.T) {
	f := newEventFixture()
	ctx := context.Background()

	event := f.createEvent(t)
	groupID := f.createGroup(t, event.ID, nil)

	first, err := f.service.RecordResult(ctx, RecordResultInput{
		ScheduledEventID: event.ID,
		Status:           models.ResultDraw,
	})
	require.NoError(t, err)

	second, err := f.service.RecordResult(ctx, RecordResultInput{
		ScheduledEventID: event.ID,
		WinningGroupID:   &groupID,
		Status:           models.ResultHasWinner,
	})
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, models.ResultHasWinner, second.Status)

	stored, err := f.service.GetResult(ctx, event.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.WinningGroupID)
	assert.Equal(t, groupID, *stored.WinningGroupID)
}

func TestRecordResultHasWinnerRequiresGroup(t *testing.T) {
	f := newEventFixture()
	event := f.createEvent(t)

	_, err := f.service.RecordResult(context.Background(), RecordResultInput{
		ScheduledEventID: event.ID,
		Status:           models.ResultHasWinner,
	})
	assert.ErrorIs(t, err, ErrValidationFailed)
}

func TestDeleteEventRemovesGroupsAndResult(t *testing.T) {
	f := newEventFixture()
	ctx := context.Background()

	event := f.createEvent(t)
	groupID := f.createGroup(t, event.ID, nil)
	_, err := f.service.RecordResult(ctx, RecordResultInput{
		ScheduledEventID: event.ID,
		Status:           models.ResultNoResult,
	})
	require.NoError(t, err)

	require.NoError(t, f.service.DeleteEvent(ctx, event.ID))

	_, err = f.service.GetEventByID(ctx, event.ID)
	assert.ErrorIs(t, err, ErrEventNotFound)
	_, err = f.groups.GetByID(ctx, groupID)
	assert.Error(t, err)
}

func TestDeleteGroupClearsWinnerReference(t *testing.T) {
	f := newEventFixture()
	ctx := context.Background()

	event := f.createEvent(t)
	groupID := f.createGroup(t, event.ID, nil)
	_, err := f.service.RecordResult(ctx, RecordResultInput{
		ScheduledEventID: event.ID,
		WinningGroupID:   &groupID,
		Status:           models.ResultHasWinner,
	})
	require.NoError(t, err)

	require.NoError(t, f.service.DeleteGroup(ctx, groupID))

	stored, err := f.service.GetResult(ctx, event.ID)
	require.NoError(t, err)
	assert.Nil(t, stored.WinningGroupID)
}
