package models

import (
	"time"

	"github.com/google/uuid"
)

// TeamKind discriminates roster strategies. Only static teams own a
// persistent roster; ephemeral ones exist purely as an event group's direct
// participant list. Kept as an open string enum so further kinds slot in
// without a schema change.
type TeamKind string

const (
	TeamKindStatic    TeamKind = "static"
	TeamKindEphemeral TeamKind = "ephemeral"
)

// Team covers both kinds in one table. Season dates are only meaningful
// for static teams and stay null otherwise.
type Team struct {
	ID          uuid.UUID  `json:"id" db:"id"`
	TenantID    uuid.UUID  `json:"tenant_id" db:"tenant_id"`
	Name        string     `json:"name" db:"name"`
	Description *string    `json:"description,omitempty" db:"description"`
	Kind        TeamKind   `json:"kind" db:"kind"`
	IsActive    bool       `json:"is_active" db:"is_active"`
	SeasonStart *time.Time `json:"season_start,omitempty" db:"season_start"`
	SeasonEnd   *time.Time `json:"season_end,omitempty" db:"season_end"`
	CreatedAt   time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at" db:"updated_at"`
	CreatedBy   *uuid.UUID `json:"created_by,omitempty" db:"created_by"`
	UpdatedBy   *uuid.UUID `json:"updated_by,omitempty" db:"updated_by"`
	IsDeleted   bool       `json:"-" db:"is_deleted"`

	LogoKey *string `json:"-" db:"logo_key"`
	LogoURL *string `json:"logo_url,omitempty" db:"-"`

	Members []TeamMember `json:"members,omitempty" db:"-"`
}

func (t *Team) IsStatic() bool {
	return t.Kind == TeamKindStatic
}

// TeamMember is one tenure of a player on a static team. History is
// append-only: leaving sets LeftAt, a re-join creates a fresh row. At most
// one row per (team, player) may have LeftAt = null at any instant.
type TeamMember struct {
	ID          uuid.UUID  `json:"id" db:"id"`
	TeamID      uuid.UUID  `json:"team_id" db:"team_id"`
	PlayerID    uuid.UUID  `json:"player_id" db:"player_id"`
	JoinedAt    time.Time  `json:"joined_at" db:"joined_at"`
	LeftAt      *time.Time `json:"left_at,omitempty" db:"left_at"`
	LeaveReason *string    `json:"leave_reason,omitempty" db:"leave_reason"`
	CreatedAt   time.Time  `json:"created_at" db:"created_at"`

	Player *Player `json:"player,omitempty" db:"-"`
}

func (m *TeamMember) IsOpen() bool {
	return m.LeftAt == nil
}
