package services

import "errors"

// Общие ошибки, используемые в разных сервисах и маппинге HTTP.
var (
	// Ресурс не найден (универсальная)
	ErrNotFound = errors.New("requested resource not found")

	// Ошибки валидации и бизнес-правил
	ErrValidationFailed     = errors.New("validation failed")
	ErrTenantNameRequired   = errors.New("tenant name is required")
	ErrTeamNameRequired     = errors.New("team name is required")
	ErrTeamNotStatic        = errors.New("team does not keep a persistent roster")
	ErrTeamInactive         = errors.New("team is not active")
	ErrTenantMismatch       = errors.New("entities belong to different tenants")
	ErrPasswordTooShort     = errors.New("password is too short")
	ErrSeasonInvalidRange   = errors.New("season end date must be after start date")
	ErrEventInvalidTimes    = errors.New("event end time must be after start time")
	ErrResultWinnerNotFound = errors.New("winning group does not belong to this event")

	// Конфликты состояния состава (tenure)
	ErrAlreadyActiveMember = errors.New("player already has an active membership on this team")
	ErrNoActiveMembership  = errors.New("player has no active membership on this team")

	// Оптимистическая блокировка
	ErrStaleVersion = errors.New("stale version: the event was modified concurrently")

	// A group must be team-backed or list-backed, never both. Mutations
	// enforce it; the resolver checks it defensively.
	ErrGroupStateInvalid = errors.New("group is in an invalid participant-source state")

	// Ошибки аутентификации и авторизации
	ErrAuthInvalidCredentials = errors.New("invalid email or password")
	ErrAuthEmailTaken         = errors.New("email address is already in use")
	ErrForbiddenOperation     = errors.New("operation not allowed for the current user")

	// Ошибки, специфичные для сущностей
	ErrUserNotFound       = errors.New("user not found")
	ErrActivityNotFound   = errors.New("activity not found")
	ErrRoleNotFound       = errors.New("role not found")
	ErrPermissionNotFound = errors.New("permission not found")
	ErrTenantNotFound     = errors.New("tenant not found")
	ErrMembershipNotFound = errors.New("membership not found")
	ErrPlayerNotFound     = errors.New("player not found")
	ErrTeamNotFound       = errors.New("team not found")
	ErrEventNotFound      = errors.New("scheduled event not found")
	ErrGroupNotFound      = errors.New("event participant group not found")
	ErrResultNotFound     = errors.New("event result not found")
)
