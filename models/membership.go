package models

import (
	"time"

	"github.com/google/uuid"
)

// MembershipStatus соответствует ENUM membership_status в БД.
type MembershipStatus string

const (
	MembershipActive   MembershipStatus = "active"
	MembershipInactive MembershipStatus = "inactive"
	MembershipPending  MembershipStatus = "pending"
	MembershipBanned   MembershipStatus = "banned"
)

// Membership is a user's standing in one tenant. Identity is the
// (AppUserID, TenantID) pair: changing the role updates the row in place,
// it never creates a second one.
type Membership struct {
	AppUserID uuid.UUID        `json:"app_user_id" db:"app_user_id"`
	TenantID  uuid.UUID        `json:"tenant_id" db:"tenant_id"`
	RoleID    uuid.UUID        `json:"role_id" db:"role_id"`
	Status    MembershipStatus `json:"status" db:"status"`
	CreatedAt time.Time        `json:"created_at" db:"created_at"`
	UpdatedAt time.Time        `json:"updated_at" db:"updated_at"`

	AppUser *AppUser `json:"app_user,omitempty" db:"-"`
	Role    *Role    `json:"role,omitempty" db:"-"`
}
