package domain

import (
	"time"
)

// Role distinguishes the two kinds of users in the system.
type Role string

const (
	RoleClient    Role = "client"
	RoleTherapist Role = "therapist"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	return r == RoleClient || r == RoleTherapist
}

// User represents a Telegram user known to the service. Every user starts as a
// client; redeeming a therapist invite promotes them to therapist.
type User struct {
	ID         int64     `json:"id"`
	TelegramID int64     `json:"telegram_id"`
	Name       string    `json:"name"`
	Role       Role      `json:"role"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// IsTherapist reports whether the user holds the therapist role.
func (u *User) IsTherapist() bool {
	return u.Role == RoleTherapist
}
