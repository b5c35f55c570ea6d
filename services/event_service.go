package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/clubstack/league-system/live"
	"github.com/clubstack/league-system/models"
	"github.com/clubstack/league-system/repositories"
	"github.com/google/uuid"
)

type EventService interface {
	CreateEvent(ctx context.Context, input CreateEventInput) (*models.ScheduledEvent, error)
	// GetEventByID returns the event with its groups and result (if any)
	// attached.
	GetEventByID(ctx context.Context, id uuid.UUID) (*models.ScheduledEvent, error)
	ListEvents(ctx context.Context, tenantID uuid.UUID, filter repositories.ListEventsFilter) ([]models.ScheduledEvent, error)
	// UpdateEvent applies the change only if input.Version still matches the
	// stored row; a concurrent writer surfaces as ErrStaleVersion and the
	// caller re-reads before retrying.
	UpdateEvent(ctx context.Context, id uuid.UUID, input UpdateEventInput) (*models.ScheduledEvent, error)
	DeleteEvent(ctx context.Context, id uuid.UUID) error

	CreateGroup(ctx context.Context, input CreateGroupInput) (*models.EventParticipantGroup, error)
	ListGroups(ctx context.Context, eventID uuid.UUID) ([]models.EventParticipantGroup, error)
	DeleteGroup(ctx context.Context, groupID uuid.UUID) error
	// AssignTeam binds a static team to the group. Fails with
	// ErrGroupStateInvalid while the group still holds direct participants.
	AssignTeam(ctx context.Context, groupID, teamID uuid.UUID) error
	ClearTeam(ctx context.Context, groupID uuid.UUID) error
	// AddParticipant adds a direct player row. Fails with
	// ErrGroupStateInvalid on a team-backed group.
	AddParticipant(ctx context.Context, groupID, playerID uuid.UUID) error
	RemoveParticipant(ctx context.Context, groupID, playerID uuid.UUID) error

	// RecordResult creates or replaces the single outcome row of the event.
	RecordResult(ctx context.Context, input RecordResultInput) (*models.EventResult, error)
	GetResult(ctx context.Context, eventID uuid.UUID) (*models.EventResult, error)
}

type CreateEventInput struct {
	TenantID    uuid.UUID        `json:"tenant_id" validate:"required"`
	StartTime   time.Time        `json:"start_time" validate:"required"`
	EndTime     *time.Time       `json:"end_time,omitempty"`
	Type        models.EventType `json:"type" validate:"required,oneof=match practice challenge other"`
	IsProjected bool             `json:"is_projected"`
	CreatorID   *uuid.UUID
}

type UpdateEventInput struct {
	StartTime   time.Time          `json:"start_time" validate:"required"`
	EndTime     *time.Time         `json:"end_time,omitempty"`
	Status      models.EventStatus `json:"status" validate:"required,oneof=scheduled ongoing completed cancelled"`
	Type        models.EventType   `json:"type" validate:"required,oneof=match practice challenge other"`
	IsProjected bool               `json:"is_projected"`
	Version     int64              `json:"version" validate:"required,min=1"`
	UpdaterID   *uuid.UUID
}

type CreateGroupInput struct {
	ScheduledEventID uuid.UUID  `json:"scheduled_event_id" validate:"required"`
	Name             string     `json:"name" validate:"required,min=1,max=128"`
	Order            int        `json:"order" validate:"min=0"`
	TeamID           *uuid.UUID `json:"team_id,omitempty"`
	CreatorID        *uuid.UUID
}

type RecordResultInput struct {
	ScheduledEventID uuid.UUID                `json:"scheduled_event_id" validate:"required"`
	WinningGroupID   *uuid.UUID               `json:"winning_group_id,omitempty"`
	Status           models.EventResultStatus `json:"status" validate:"required,oneof=draw has_winner cancelled no_result disputed"`
	CompletedAt      *time.Time               `json:"completed_at,omitempty"`
	Notes            *string                  `json:"notes,omitempty" validate:"omitempty,max=2048"`
	ResultData       json.RawMessage          `json:"result_data,omitempty"`
	RecorderID       *uuid.UUID
}

type eventService struct {
	tx              repositories.TxRunner
	eventRepo       repositories.EventRepository
	groupRepo       repositories.GroupRepository
	participantRepo repositories.ParticipantRepository
	resultRepo      repositories.ResultRepository
	teamRepo        repositories.TeamRepository
	playerRepo      repositories.PlayerRepository
	hub             *live.Hub
}

func NewEventService(
	tx repositories.TxRunner,
	eventRepo repositories.EventRepository,
	groupRepo repositories.GroupRepository,
	participantRepo repositories.ParticipantRepository,
	resultRepo repositories.ResultRepository,
	teamRepo repositories.TeamRepository,
	playerRepo repositories.PlayerRepository,
	hub *live.Hub,
) EventService {
	return &eventService{
		tx:              tx,
		eventRepo:       eventRepo,
		groupRepo:       groupRepo,
		participantRepo: participantRepo,
		resultRepo:      resultRepo,
		teamRepo:        teamRepo,
		playerRepo:      playerRepo,
		hub:             hub,
	}
}

func (s *eventService) broadcast(tenantID uuid.UUID, msgType string, payload interface{}) {
	if s.hub == nil {
		return
	}
	room := tenantID.String()
	s.hub.BroadcastToRoom(room, live.Message{Type: msgType, Payload: payload, RoomID: room})
}

func (s *eventService) CreateEvent(ctx context.Context, input CreateEventInput) (*models.ScheduledEvent, error) {
	if err := validateInput(input); err != nil {
		return nil, err
	}
	if input.EndTime != nil && !input.EndTime.After(input.StartTime) {
		return nil, ErrEventInvalidTimes
	}

	id, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("failed to generate event id: %w", err)
	}

	event := &models.ScheduledEvent{
		ID:          id,
		TenantID:    input.TenantID,
		StartTime:   input.StartTime,
		EndTime:     input.EndTime,
		Status:      models.EventScheduled,
		Type:        input.Type,
		IsProjected: input.IsProjected,
		Version:     1,
		CreatedBy:   input.CreatorID,
	}
	if err := s.eventRepo.Create(ctx, nil, event); err != nil {
		return nil, err
	}

	s.broadcast(event.TenantID, live.MessageEventCreated, event)
	return event, nil
}

func (s *eventService) GetEventByID(ctx context.Context, id uuid.UUID) (*models.ScheduledEvent, error) {
	event, err := s.getEvent(ctx, id)
	if err != nil {
		return nil, err
	}

	groups, err := s.groupRepo.ListByEvent(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to list event groups: %w", err)
	}
	event.Groups = groups

	result, err := s.resultRepo.GetByEvent(ctx, id)
	if err != nil && !errors.Is(err, repositories.ErrResultNotFound) {
		return nil, fmt.Errorf("failed to get event result: %w", err)
	}
	event.Result = result
	return event, nil
}

func (s *eventService) getEvent(ctx context.Context, id uuid.UUID) (*models.ScheduledEvent, error) {
	event, err := s.eventRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrEventNotFound) {
			return nil, ErrEventNotFound
		}
		return nil, fmt.Errorf("failed to get event: %w", err)
	}
	return event, nil
}

func (s *eventService) ListEvents(ctx context.Context, tenantID uuid.UUID, filter repositories.ListEventsFilter) ([]models.ScheduledEvent, error) {
	return s.eventRepo.ListByTenant(ctx, tenantID, filter)
}

func (s *eventService) UpdateEvent(ctx context.Context, id uuid.UUID, input UpdateEventInput) (*models.ScheduledEvent, error) {
	if err := validateInput(input); err != nil {
		return nil, err
	}
	if input.EndTime != nil && !input.EndTime.After(input.StartTime) {
		return nil, ErrEventInvalidTimes
	}

	event := &models.ScheduledEvent{
		ID:          id,
		StartTime:   input.StartTime,
		EndTime:     input.EndTime,
		Status:      input.Status,
		Type:        input.Type,
		IsProjected: input.IsProjected,
		Version:     input.Version,
		UpdatedBy:   input.UpdaterID,
	}

	if err := s.eventRepo.Update(ctx, nil, event); err != nil {
		switch {
		case errors.Is(err, repositories.ErrEventVersionConflict):
			return nil, ErrStaleVersion
		case errors.Is(err, repositories.ErrEventNotFound):
			return nil, ErrEventNotFound
		}
		return nil, err
	}

	// Update не возвращает tenant_id, перечитываем строку для ответа.
	updated, err := s.getEvent(ctx, id)
	if err != nil {
		return nil, err
	}

	s.broadcast(updated.TenantID, live.MessageEventUpdated, updated)
	return updated, nil
}

func (s *eventService) DeleteEvent(ctx context.Context, id uuid.UUID) error {
	event, err := s.getEvent(ctx, id)
	if err != nil {
		return err
	}

	err = s.tx.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		if err := s.eventRepo.Delete(ctx, exec, id); err != nil {
			return err
		}
		if err := s.groupRepo.DeleteByEvent(ctx, exec, id); err != nil {
			return err
		}
		return s.resultRepo.DeleteByEvent(ctx, exec, id)
	})
	if err != nil {
		if errors.Is(err, repositories.ErrEventNotFound) {
			return ErrEventNotFound
		}
		return fmt.Errorf("failed to delete event: %w", err)
	}

	s.broadcast(event.TenantID, live.MessageEventDeleted, map[string]string{"id": id.String()})
	return nil
}

func (s *eventService) CreateGroup(ctx context.Context, input CreateGroupInput) (*models.EventParticipantGroup, error) {
	if err := validateInput(input); err != nil {
		return nil, err
	}

	event, err := s.getEvent(ctx, input.ScheduledEventID)
	if err != nil {
		return nil, err
	}

	if input.TeamID != nil {
		if err := s.checkTeamAssignable(ctx, *input.TeamID, event.TenantID); err != nil {
			return nil, err
		}
	}

	id, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("failed to generate group id: %w", err)
	}
	group := &models.EventParticipantGroup{
		ID:               id,
		ScheduledEventID: input.ScheduledEventID,
		TeamID:           input.TeamID,
		Name:             strings.TrimSpace(input.Name),
		Order:            input.Order,
		CreatedBy:        input.CreatorID,
	}
	if err := s.groupRepo.Create(ctx, nil, group); err != nil {
		return nil, err
	}
	return group, nil
}

func (s *eventService) ListGroups(ctx context.Context, eventID uuid.UUID) ([]models.EventParticipantGroup, error) {
	if _, err := s.getEvent(ctx, eventID); err != nil {
		return nil, err
	}
	return s.groupRepo.ListByEvent(ctx, eventID)
}

func (s *eventService) DeleteGroup(ctx context.Context, groupID uuid.UUID) error {
	err := s.tx.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		if err := s.groupRepo.Delete(ctx, exec, groupID); err != nil {
			return err
		}
		// Результат, указывающий на эту группу победителем, теряет ссылку.
		return s.resultRepo.ClearWinningGroupRefs(ctx, exec, groupID)
	})
	if err != nil {
		if errors.Is(err, repositories.ErrGroupNotFound) {
			return ErrGroupNotFound
		}
		return fmt.Errorf("failed to delete group: %w", err)
	}
	return nil
}

func (s *eventService) AssignTeam(ctx context.Context, groupID, teamID uuid.UUID) error {
	group, err := s.getGroup(ctx, groupID)
	if err != nil {
		return err
	}

	count, err := s.participantRepo.CountByGroup(ctx, groupID)
	if err != nil {
		return fmt.Errorf("failed to count group participants: %w", err)
	}
	if count > 0 {
		return ErrGroupStateInvalid
	}

	event, err := s.getEvent(ctx, group.ScheduledEventID)
	if err != nil {
		return err
	}
	if err := s.checkTeamAssignable(ctx, teamID, event.TenantID); err != nil {
		return err
	}

	return s.groupRepo.SetTeam(ctx, nil, groupID, &teamID)
}

func (s *eventService) ClearTeam(ctx context.Context, groupID uuid.UUID) error {
	if _, err := s.getGroup(ctx, groupID); err != nil {
		return err
	}
	return s.groupRepo.SetTeam(ctx, nil, groupID, nil)
}

func (s *eventService) AddParticipant(ctx context.Context, groupID, playerID uuid.UUID) error {
	group, err := s.getGroup(ctx, groupID)
	if err != nil {
		return err
	}
	if group.IsTeamBacked() {
		return ErrGroupStateInvalid
	}

	event, err := s.getEvent(ctx, group.ScheduledEventID)
	if err != nil {
		return err
	}

	player, err := s.playerRepo.GetByID(ctx, playerID)
	if err != nil {
		if errors.Is(err, repositories.ErrPlayerNotFound) {
			return ErrPlayerNotFound
		}
		return fmt.Errorf("failed to get player: %w", err)
	}
	if player.TenantID != event.TenantID {
		return ErrTenantMismatch
	}

	return s.participantRepo.Add(ctx, nil, &models.EventParticipant{
		GroupID:  groupID,
		PlayerID: playerID,
	})
}

func (s *eventService) RemoveParticipant(ctx context.Context, groupID, playerID uuid.UUID) error {
	if _, err := s.getGroup(ctx, groupID); err != nil {
		return err
	}
	return s.participantRepo.Remove(ctx, nil, groupID, playerID)
}

func (s *eventService) RecordResult(ctx context.Context, input RecordResultInput) (*models.EventResult, error) {
	if err := validateInput(input); err != nil {
		return nil, err
	}

	event, err := s.getEvent(ctx, input.ScheduledEventID)
	if err != nil {
		return nil, err
	}

	if input.Status == models.ResultHasWinner && input.WinningGroupID == nil {
		return nil, fmt.Errorf("%w: has_winner requires a winning group", ErrValidationFailed)
	}
	if input.WinningGroupID != nil {
		group, err := s.getGroup(ctx, *input.WinningGroupID)
		if err != nil {
			return nil, err
		}
		if group.ScheduledEventID != event.ID {
			return nil, ErrResultWinnerNotFound
		}
	}

	completedAt := time.Now().UTC()
	if input.CompletedAt != nil {
		completedAt = *input.CompletedAt
	}

	existing, err := s.resultRepo.GetByEvent(ctx, event.ID)
	if err != nil && !errors.Is(err, repositories.ErrResultNotFound) {
		return nil, fmt.Errorf("failed to get event result: %w", err)
	}

	var result *models.EventResult
	if existing != nil {
		existing.WinningGroupID = input.WinningGroupID
		existing.Status = input.Status
		existing.CompletedAt = completedAt
		existing.Notes = input.Notes
		existing.ResultData = input.ResultData
		existing.UpdatedBy = input.RecorderID
		if err := s.resultRepo.Update(ctx, nil, existing); err != nil {
			return nil, err
		}
		result = existing
	} else {
		id, err := uuid.NewV7()
		if err != nil {
			return nil, fmt.Errorf("failed to generate result id: %w", err)
		}
		result = &models.EventResult{
			ID:               id,
			ScheduledEventID: event.ID,
			WinningGroupID:   input.WinningGroupID,
			Status:           input.Status,
			CompletedAt:      completedAt,
			Notes:            input.Notes,
			ResultData:       input.ResultData,
			CreatedBy:        input.RecorderID,
		}
		if err := s.resultRepo.Create(ctx, nil, result); err != nil {
			return nil, err
		}
	}

	s.broadcast(event.TenantID, live.MessageResultRecorded, result)
	return result, nil
}

func (s *eventService) GetResult(ctx context.Context, eventID uuid.UUID) (*models.EventResult, error) {
	if _, err := s.getEvent(ctx, eventID); err != nil {
		return nil, err
	}
	result, err := s.resultRepo.GetByEvent(ctx, eventID)
	if err != nil {
		if errors.Is(err, repositories.ErrResultNotFound) {
			return nil, ErrResultNotFound
		}
		return nil, fmt.Errorf("failed to get event result: %w", err)
	}
	return result, nil
}

func (s *eventService) getGroup(ctx context.Context, groupID uuid.UUID) (*models.EventParticipantGroup, error) {
	group, err := s.groupRepo.GetByID(ctx, groupID)
	if err != nil {
		if errors.Is(err, repositories.ErrGroupNotFound) {
			return nil, ErrGroupNotFound
		}
		return nil, fmt.Errorf("failed to get group: %w", err)
	}
	return group, nil
}

func (s *eventService) checkTeamAssignable(ctx context.Context, teamID, tenantID uuid.UUID) error {
	team, err := s.teamRepo.GetByID(ctx, teamID)
	if err != nil {
		if errors.Is(err, repositories.ErrTeamNotFound) {
			return ErrTeamNotFound
		}
		return fmt.Errorf("failed to get team: %w", err)
	}
	if !team.IsStatic() {
		return ErrTeamNotStatic
	}
	if team.TenantID != tenantID {
		return ErrTenantMismatch
	}
	return nil
}
