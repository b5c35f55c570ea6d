package services

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/clubstack/league-system/models"
	"github.com/clubstack/league-system/repositories"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// ParticipantResolver answers "who is competing in this group" without the
// caller knowing whether the group rides on a static team's roster or on its
// own participant list. Resolution always reflects the current state: a
// roster change is visible on the next call, past events included.
type ParticipantResolver interface {
	// Resolve returns the group's effective player set. A missing or deleted
	// group resolves to an empty set, not an error.
	Resolve(ctx context.Context, groupID uuid.UUID) ([]*models.Player, error)
	// Count is the cheap form of Resolve for capacity checks and listings.
	Count(ctx context.Context, groupID uuid.UUID) (int, error)
	IsTeamBacked(ctx context.Context, groupID uuid.UUID) (bool, error)
	// ResolveAll resolves every group of an event concurrently, keyed by
	// group ID.
	ResolveAll(ctx context.Context, eventID uuid.UUID) (map[uuid.UUID][]*models.Player, error)
}

type participantResolver struct {
	groupRepo       repositories.GroupRepository
	teamRepo        repositories.TeamRepository
	rosterRepo      repositories.RosterRepository
	participantRepo repositories.ParticipantRepository
}

func NewParticipantResolver(
	groupRepo repositories.GroupRepository,
	teamRepo repositories.TeamRepository,
	rosterRepo repositories.RosterRepository,
	participantRepo repositories.ParticipantRepository,
) ParticipantResolver {
	return &participantResolver{
		groupRepo:       groupRepo,
		teamRepo:        teamRepo,
		rosterRepo:      rosterRepo,
		participantRepo: participantRepo,
	}
}

func (r *participantResolver) Resolve(ctx context.Context, groupID uuid.UUID) ([]*models.Player, error) {
	group, err := r.groupRepo.GetByID(ctx, groupID)
	if err != nil {
		if errors.Is(err, repositories.ErrGroupNotFound) {
			return []*models.Player{}, nil
		}
		return nil, fmt.Errorf("failed to get group: %w", err)
	}
	return r.resolveGroup(ctx, group)
}

func (r *participantResolver) resolveGroup(ctx context.Context, group *models.EventParticipantGroup) ([]*models.Player, error) {
	if !group.IsTeamBacked() {
		return r.participantRepo.ListPlayersByGroup(ctx, group.ID)
	}

	team, err := r.teamRepo.GetByID(ctx, *group.TeamID)
	if err != nil {
		if errors.Is(err, repositories.ErrTeamNotFound) {
			// Команда удалена, а ссылка ещё не очищена: состава нет.
			return []*models.Player{}, nil
		}
		return nil, fmt.Errorf("failed to get backing team: %w", err)
	}
	if !team.IsStatic() {
		return nil, ErrGroupStateInvalid
	}
	return r.rosterRepo.ListOpenPlayersByTeam(ctx, team.ID)
}

func (r *participantResolver) Count(ctx context.Context, groupID uuid.UUID) (int, error) {
	group, err := r.groupRepo.GetByID(ctx, groupID)
	if err != nil {
		if errors.Is(err, repositories.ErrGroupNotFound) {
			return 0, nil
		}
		return 0, fmt.Errorf("failed to get group: %w", err)
	}

	if !group.IsTeamBacked() {
		return r.participantRepo.CountByGroup(ctx, groupID)
	}

	team, err := r.teamRepo.GetByID(ctx, *group.TeamID)
	if err != nil {
		if errors.Is(err, repositories.ErrTeamNotFound) {
			return 0, nil
		}
		return 0, fmt.Errorf("failed to get backing team: %w", err)
	}
	if !team.IsStatic() {
		return 0, ErrGroupStateInvalid
	}
	return r.rosterRepo.CountOpenByTeam(ctx, team.ID)
}

func (r *participantResolver) IsTeamBacked(ctx context.Context, groupID uuid.UUID) (bool, error) {
	group, err := r.groupRepo.GetByID(ctx, groupID)
	if err != nil {
		if errors.Is(err, repositories.ErrGroupNotFound) {
			return false, ErrGroupNotFound
		}
		return false, fmt.Errorf("failed to get group: %w", err)
	}
	return group.IsTeamBacked(), nil
}

func (r *participantResolver) ResolveAll(ctx context.Context, eventID uuid.UUID) (map[uuid.UUID][]*models.Player, error) {
	groups, err := r.groupRepo.ListByEvent(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("failed to list event groups: %w", err)
	}
	sort.Slice(groups, func(i, j int) bool { return groups[i].Order < groups[j].Order })

	resolved := make([][]*models.Player, len(groups))
	g, gctx := errgroup.WithContext(ctx)
	for i := range groups {
		i := i
		g.Go(func() error {
			players, err := r.resolveGroup(gctx, &groups[i])
			if err != nil {
				return err
			}
			resolved[i] = players
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := make(map[uuid.UUID][]*models.Player, len(groups))
	for i := range groups {
		out[groups[i].ID] = resolved[i]
	}
	return out, nil
}
