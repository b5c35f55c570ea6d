package models

import (
	"time"

	"github.com/google/uuid"
)

// AppUser is the global identity. Subject is the stable opaque identifier
// handed out by the identity provider; everything tenant-scoped hangs off
// Player, not AppUser.
type AppUser struct {
	ID           uuid.UUID  `json:"id" db:"id"`
	Subject      string     `json:"subject" db:"subject"`
	Email        string     `json:"email" db:"email"`
	DisplayName  string     `json:"display_name" db:"display_name"`
	PasswordHash string     `json:"-" db:"password_hash"`
	IsActive     bool       `json:"is_active" db:"is_active"`
	CreatedAt    time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at" db:"updated_at"`
	CreatedBy    *uuid.UUID `json:"created_by,omitempty" db:"created_by"`
	UpdatedBy    *uuid.UUID `json:"updated_by,omitempty" db:"updated_by"`
	IsDeleted    bool       `json:"-" db:"is_deleted"`

	Memberships []Membership `json:"memberships,omitempty" db:"-"`
}

type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}
