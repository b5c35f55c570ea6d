package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// EventResultStatus соответствует ENUM event_result_status в БД.
type EventResultStatus string

const (
	ResultDraw      EventResultStatus = "draw"
	ResultHasWinner EventResultStatus = "has_winner"
	ResultCancelled EventResultStatus = "cancelled"
	ResultNoResult  EventResultStatus = "no_result"
	ResultDisputed  EventResultStatus = "disputed"
)

// EventResult is the single outcome row of an event. WinningGroupID is
// cleared, not cascaded, when the group goes away. ResultData is free-form
// JSON for per-group scores.
type EventResult struct {
	ID               uuid.UUID         `json:"id" db:"id"`
	ScheduledEventID uuid.UUID         `json:"scheduled_event_id" db:"scheduled_event_id"`
	WinningGroupID   *uuid.UUID        `json:"winning_group_id,omitempty" db:"winning_group_id"`
	Status           EventResultStatus `json:"status" db:"status"`
	CompletedAt      time.Time         `json:"completed_at" db:"completed_at"`
	Notes            *string           `json:"notes,omitempty" db:"notes"`
	ResultData       json.RawMessage   `json:"result_data,omitempty" db:"result_data"`
	CreatedAt        time.Time         `json:"created_at" db:"created_at"`
	UpdatedAt        time.Time         `json:"updated_at" db:"updated_at"`
	CreatedBy        *uuid.UUID        `json:"created_by,omitempty" db:"created_by"`
	UpdatedBy        *uuid.UUID        `json:"updated_by,omitempty" db:"updated_by"`
	IsDeleted        bool              `json:"-" db:"is_deleted"`
}
