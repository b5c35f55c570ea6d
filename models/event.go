package models

import (
	"time"

	"github.com/google/uuid"
)

// EventStatus соответствует ENUM event_status в БД.
type EventStatus string

const (
	EventScheduled EventStatus = "scheduled"
	EventOngoing   EventStatus = "ongoing"
	EventCompleted EventStatus = "completed"
	EventCancelled EventStatus = "cancelled"
)

type EventType string

const (
	EventTypeMatch     EventType = "match"
	EventTypePractice  EventType = "practice"
	EventTypeChallenge EventType = "challenge"
	EventTypeOther     EventType = "other"
)

// ScheduledEvent is a match/practice/challenge hosted by a tenant. Version
// is a raw optimistic-concurrency counter: every update must carry the
// version it read and bumps it by one on success.
type ScheduledEvent struct {
	ID          uuid.UUID   `json:"id" db:"id"`
	TenantID    uuid.UUID   `json:"tenant_id" db:"tenant_id"`
	StartTime   time.Time   `json:"start_time" db:"start_time"`
	EndTime     *time.Time  `json:"end_time,omitempty" db:"end_time"`
	Status      EventStatus `json:"status" db:"status"`
	Type        EventType   `json:"type" db:"type"`
	IsProjected bool        `json:"is_projected" db:"is_projected"`
	Version     int64       `json:"version" db:"version"`
	CreatedAt   time.Time   `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at" db:"updated_at"`
	CreatedBy   *uuid.UUID  `json:"created_by,omitempty" db:"created_by"`
	UpdatedBy   *uuid.UUID  `json:"updated_by,omitempty" db:"updated_by"`
	IsDeleted   bool        `json:"-" db:"is_deleted"`

	Groups []EventParticipantGroup `json:"groups,omitempty" db:"-"`
	Result *EventResult            `json:"result,omitempty" db:"-"`
}
