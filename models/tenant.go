package models

import (
	"time"

	"github.com/google/uuid"
)

// TenantVisibility соответствует ENUM tenant_visibility в БД.
type TenantVisibility string

const (
	VisibilityPublic   TenantVisibility = "public"
	VisibilityLinkOnly TenantVisibility = "link_only"
	VisibilityPrivate  TenantVisibility = "private"
)

type TenantType string

const (
	TenantTypeLeague     TenantType = "league"
	TenantTypeTournament TenantType = "tournament"
	TenantTypeClub       TenantType = "club"
	TenantTypeCommunity  TenantType = "community"
	TenantTypeOther      TenantType = "other"
)

// Tenant is the organizing entity (league, club, tournament series) that
// scopes memberships, players, teams and events.
type Tenant struct {
	ID            uuid.UUID        `json:"id" db:"id"`
	Name          string           `json:"name" db:"name"`
	Description   *string          `json:"description,omitempty" db:"description"`
	ActivityID    uuid.UUID        `json:"activity_id" db:"activity_id"`
	Visibility    TenantVisibility `json:"visibility" db:"visibility"`
	Type          TenantType       `json:"type" db:"type"`
	IsActive      bool             `json:"is_active" db:"is_active"`
	DefaultRoleID uuid.UUID        `json:"default_role_id" db:"default_role_id"`
	CreatedAt     time.Time        `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time        `json:"updated_at" db:"updated_at"`
	CreatedBy     *uuid.UUID       `json:"created_by,omitempty" db:"created_by"`
	UpdatedBy     *uuid.UUID       `json:"updated_by,omitempty" db:"updated_by"`
	IsDeleted     bool             `json:"-" db:"is_deleted"`

	LogoKey *string `json:"-" db:"logo_key"`
	LogoURL *string `json:"logo_url,omitempty" db:"-"`

	// Опциональные связанные сущности (не мапятся напрямую)
	Activity    *Activity    `json:"activity,omitempty" db:"-"`
	DefaultRole *Role        `json:"default_role,omitempty" db:"-"`
	Memberships []Membership `json:"memberships,omitempty" db:"-"`
	Players     []Player     `json:"players,omitempty" db:"-"`
}
