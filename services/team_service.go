package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/clubstack/league-system/models"
	"github.com/clubstack/league-system/repositories"
	"github.com/clubstack/league-system/storage"
	"github.com/google/uuid"
)

type TeamService interface {
	CreateTeam(ctx context.Context, input CreateTeamInput) (*models.Team, error)
	GetTeamByID(ctx context.Context, id uuid.UUID) (*models.Team, error)
	ListTeams(ctx context.Context, tenantID uuid.UUID, kind *models.TeamKind) ([]models.Team, error)
	UpdateTeam(ctx context.Context, id uuid.UUID, input UpdateTeamInput) (*models.Team, error)
	// DeleteTeam soft-deletes the team and detaches any event groups that
	// referenced it, in one transaction. Tenure history stays intact.
	DeleteTeam(ctx context.Context, id uuid.UUID) error
	UploadLogo(ctx context.Context, teamID uuid.UUID, contentType string, file io.Reader) (*models.Team, error)

	// AddMember opens a tenure for a player on a static team. A second open
	// tenure for the same pair fails with ErrAlreadyActiveMember.
	AddMember(ctx context.Context, input AddTeamMemberInput) (*models.TeamMember, error)
	// RemoveMember closes the open tenure. Closing when none is open fails
	// with ErrNoActiveMembership.
	RemoveMember(ctx context.Context, teamID, playerID uuid.UUID, reason *string) error
	Roster(ctx context.Context, teamID uuid.UUID) ([]*models.Player, error)
	RosterHistory(ctx context.Context, teamID uuid.UUID) ([]*models.TeamMember, error)
	PlayerHistory(ctx context.Context, playerID uuid.UUID) ([]*models.TeamMember, error)
}

type CreateTeamInput struct {
	TenantID    uuid.UUID       `json:"tenant_id" validate:"required"`
	Name        string          `json:"name" validate:"required,min=1,max=128"`
	Description *string         `json:"description,omitempty" validate:"omitempty,max=1024"`
	Kind        models.TeamKind `json:"kind" validate:"required"`
	SeasonStart *time.Time      `json:"season_start,omitempty"`
	SeasonEnd   *time.Time      `json:"season_end,omitempty"`
	CreatorID   *uuid.UUID
}

type UpdateTeamInput struct {
	Name        string     `json:"name" validate:"required,min=1,max=128"`
	Description *string    `json:"description,omitempty" validate:"omitempty,max=1024"`
	IsActive    bool       `json:"is_active"`
	SeasonStart *time.Time `json:"season_start,omitempty"`
	SeasonEnd   *time.Time `json:"season_end,omitempty"`
	UpdaterID   *uuid.UUID
}

type AddTeamMemberInput struct {
	TeamID   uuid.UUID  `json:"team_id" validate:"required"`
	PlayerID uuid.UUID  `json:"player_id" validate:"required"`
	JoinedAt *time.Time `json:"joined_at,omitempty"`
}

type teamService struct {
	tx         repositories.TxRunner
	teamRepo   repositories.TeamRepository
	rosterRepo repositories.RosterRepository
	playerRepo repositories.PlayerRepository
	groupRepo  repositories.GroupRepository
	uploader   storage.FileUploader
}

func NewTeamService(
	tx repositories.TxRunner,
	teamRepo repositories.TeamRepository,
	rosterRepo repositories.RosterRepository,
	playerRepo repositories.PlayerRepository,
	groupRepo repositories.GroupRepository,
	uploader storage.FileUploader,
) TeamService {
	return &teamService{
		tx:         tx,
		teamRepo:   teamRepo,
		rosterRepo: rosterRepo,
		playerRepo: playerRepo,
		groupRepo:  groupRepo,
		uploader:   uploader,
	}
}

func (s *teamService) CreateTeam(ctx context.Context, input CreateTeamInput) (*models.Team, error) {
	if err := validateInput(input); err != nil {
		return nil, err
	}
	if strings.TrimSpace(input.Name) == "" {
		return nil, ErrTeamNameRequired
	}
	if input.Kind != models.TeamKindStatic && input.Kind != models.TeamKindEphemeral {
		return nil, fmt.Errorf("%w: unknown team kind %q", ErrValidationFailed, input.Kind)
	}
	if input.SeasonStart != nil && input.SeasonEnd != nil && !input.SeasonEnd.After(*input.SeasonStart) {
		return nil, ErrSeasonInvalidRange
	}

	id, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("failed to generate team id: %w", err)
	}

	team := &models.Team{
		ID:          id,
		TenantID:    input.TenantID,
		Name:        strings.TrimSpace(input.Name),
		Description: input.Description,
		Kind:        input.Kind,
		IsActive:    true,
		SeasonStart: input.SeasonStart,
		SeasonEnd:   input.SeasonEnd,
		CreatedBy:   input.CreatorID,
	}
	if err := s.teamRepo.Create(ctx, nil, team); err != nil {
		return nil, err
	}
	return team, nil
}

func (s *teamService) GetTeamByID(ctx context.Context, id uuid.UUID) (*models.Team, error) {
	team, err := s.teamRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrTeamNotFound) {
			return nil, ErrTeamNotFound
		}
		return nil, fmt.Errorf("failed to get team: %w", err)
	}
	s.populateLogoURL(team)
	return team, nil
}

func (s *teamService) ListTeams(ctx context.Context, tenantID uuid.UUID, kind *models.TeamKind) ([]models.Team, error) {
	teams, err := s.teamRepo.ListByTenant(ctx, tenantID, kind)
	if err != nil {
		return nil, err
	}
	for i := range teams {
		s.populateLogoURL(&teams[i])
	}
	return teams, nil
}

func (s *teamService) UpdateTeam(ctx context.Context, id uuid.UUID, input UpdateTeamInput) (*models.Team, error) {
	if err := validateInput(input); err != nil {
		return nil, err
	}
	if input.SeasonStart != nil && input.SeasonEnd != nil && !input.SeasonEnd.After(*input.SeasonStart) {
		return nil, ErrSeasonInvalidRange
	}

	team, err := s.GetTeamByID(ctx, id)
	if err != nil {
		return nil, err
	}

	team.Name = strings.TrimSpace(input.Name)
	team.Description = input.Description
	team.IsActive = input.IsActive
	team.SeasonStart = input.SeasonStart
	team.SeasonEnd = input.SeasonEnd
	team.UpdatedBy = input.UpdaterID

	if err := s.teamRepo.Update(ctx, team); err != nil {
		if errors.Is(err, repositories.ErrTeamNotFound) {
			return nil, ErrTeamNotFound
		}
		return nil, err
	}
	return team, nil
}

func (s *teamService) DeleteTeam(ctx context.Context, id uuid.UUID) error {
	err := s.tx.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		if err := s.teamRepo.Delete(ctx, exec, id); err != nil {
			return err
		}
		// Группы, привязанные к этой команде, становятся пустыми list-backed.
		return s.groupRepo.ClearTeamRefs(ctx, exec, id)
	})
	if err != nil {
		if errors.Is(err, repositories.ErrTeamNotFound) {
			return ErrTeamNotFound
		}
		return fmt.Errorf("failed to delete team: %w", err)
	}
	return nil
}

func (s *teamService) UploadLogo(ctx context.Context, teamID uuid.UUID, contentType string, file io.Reader) (*models.Team, error) {
	team, err := s.GetTeamByID(ctx, teamID)
	if err != nil {
		return nil, err
	}

	key := fmt.Sprintf("teams/%s/logo", teamID)
	storedKey, err := s.uploader.Upload(ctx, key, contentType, file)
	if err != nil {
		return nil, fmt.Errorf("failed to upload team logo: %w", err)
	}

	if err := s.teamRepo.UpdateLogoKey(ctx, teamID, &storedKey); err != nil {
		return nil, fmt.Errorf("failed to persist team logo key: %w", err)
	}
	team.LogoKey = &storedKey
	s.populateLogoURL(team)
	return team, nil
}

func (s *teamService) AddMember(ctx context.Context, input AddTeamMemberInput) (*models.TeamMember, error) {
	if err := validateInput(input); err != nil {
		return nil, err
	}

	team, err := s.GetTeamByID(ctx, input.TeamID)
	if err != nil {
		return nil, err
	}
	if !team.IsStatic() {
		return nil, ErrTeamNotStatic
	}
	if !team.IsActive {
		return nil, ErrTeamInactive
	}

	player, err := s.playerRepo.GetByID(ctx, input.PlayerID)
	if err != nil {
		if errors.Is(err, repositories.ErrPlayerNotFound) {
			return nil, ErrPlayerNotFound
		}
		return nil, fmt.Errorf("failed to get player: %w", err)
	}
	if player.TenantID != team.TenantID {
		return nil, ErrTenantMismatch
	}

	joinedAt := time.Now().UTC()
	if input.JoinedAt != nil {
		joinedAt = *input.JoinedAt
	}

	id, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("failed to generate team member id: %w", err)
	}
	member := &models.TeamMember{
		ID:       id,
		TeamID:   input.TeamID,
		PlayerID: input.PlayerID,
		JoinedAt: joinedAt,
	}

	if err := s.rosterRepo.OpenTenure(ctx, nil, member); err != nil {
		if errors.Is(err, repositories.ErrTenureAlreadyOpen) {
			return nil, ErrAlreadyActiveMember
		}
		return nil, err
	}
	return member, nil
}

func (s *teamService) RemoveMember(ctx context.Context, teamID, playerID uuid.UUID, reason *string) error {
	team, err := s.GetTeamByID(ctx, teamID)
	if err != nil {
		return err
	}
	if !team.IsStatic() {
		return ErrTeamNotStatic
	}

	err = s.rosterRepo.CloseTenure(ctx, nil, teamID, playerID, time.Now().UTC(), reason)
	if err != nil {
		if errors.Is(err, repositories.ErrTenureNotOpen) {
			return ErrNoActiveMembership
		}
		return fmt.Errorf("failed to close tenure: %w", err)
	}
	return nil
}

func (s *teamService) Roster(ctx context.Context, teamID uuid.UUID) ([]*models.Player, error) {
	if _, err := s.GetTeamByID(ctx, teamID); err != nil {
		return nil, err
	}
	return s.rosterRepo.ListOpenPlayersByTeam(ctx, teamID)
}

func (s *teamService) RosterHistory(ctx context.Context, teamID uuid.UUID) ([]*models.TeamMember, error) {
	if _, err := s.GetTeamByID(ctx, teamID); err != nil {
		return nil, err
	}
	return s.rosterRepo.ListHistoryByTeam(ctx, teamID)
}

func (s *teamService) PlayerHistory(ctx context.Context, playerID uuid.UUID) ([]*models.TeamMember, error) {
	return s.rosterRepo.ListByPlayer(ctx, playerID)
}

func (s *teamService) populateLogoURL(team *models.Team) {
	if s.uploader == nil || team.LogoKey == nil {
		return
	}
	url := s.uploader.GetPublicURL(*team.LogoKey)
	team.LogoURL = &url
}
