package models

import (
	"time"

	"github.com/google/uuid"
)

// Player is a user's competitive identity inside one tenant: one row per
// (tenant, user), with its own display name and stat scope.
type Player struct {
	ID          uuid.UUID  `json:"id" db:"id"`
	TenantID    uuid.UUID  `json:"tenant_id" db:"tenant_id"`
	AppUserID   uuid.UUID  `json:"app_user_id" db:"app_user_id"`
	DisplayName string     `json:"display_name" db:"display_name"`
	CreatedAt   time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at" db:"updated_at"`
	CreatedBy   *uuid.UUID `json:"created_by,omitempty" db:"created_by"`
	UpdatedBy   *uuid.UUID `json:"updated_by,omitempty" db:"updated_by"`
	IsDeleted   bool       `json:"-" db:"is_deleted"`
}
