package models

import (
	"time"

	"github.com/google/uuid"
)

// EventParticipantGroup is one side/lane of an event. TeamID set means the
// group competes with a static team's current roster; TeamID null means the
// group's own EventParticipant rows are the lineup. Never both.
type EventParticipantGroup struct {
	ID               uuid.UUID  `json:"id" db:"id"`
	ScheduledEventID uuid.UUID  `json:"scheduled_event_id" db:"scheduled_event_id"`
	TeamID           *uuid.UUID `json:"team_id,omitempty" db:"team_id"`
	Name             string     `json:"name" db:"name"`
	Order            int        `json:"order" db:"position"`
	CreatedAt        time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at" db:"updated_at"`
	CreatedBy        *uuid.UUID `json:"created_by,omitempty" db:"created_by"`
	UpdatedBy        *uuid.UUID `json:"updated_by,omitempty" db:"updated_by"`
	IsDeleted        bool       `json:"-" db:"is_deleted"`

	Team         *Team              `json:"team,omitempty" db:"-"`
	Participants []EventParticipant `json:"participants,omitempty" db:"-"`
}

func (g *EventParticipantGroup) IsTeamBacked() bool {
	return g.TeamID != nil
}

// EventParticipant is a direct player assignment to a group. Used only on
// the ephemeral path (group without a team reference).
type EventParticipant struct {
	GroupID   uuid.UUID `json:"group_id" db:"group_id"`
	PlayerID  uuid.UUID `json:"player_id" db:"player_id"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`

	Player *Player `json:"player,omitempty" db:"-"`
}
