package account

import (
	"time"

	"github.com/google/uuid"
	"github.com/hostelhub/service-booking/pkg/auth"
)

// Role is the caller's account role.
type Role string

const (
	RoleStudent  Role = auth.RoleStudent
	RoleLandlord Role = auth.RoleLandlord
	RoleAdmin    Role = auth.RoleAdmin
)

// IsValid returns true if the role is recognized.
func (r Role) IsValid() bool {
	switch r {
	case RoleStudent, RoleLandlord, RoleAdmin:
		return true
	}
	return false
}

// Caller is the authenticated identity behind a request.
type Caller struct {
	UserID uuid.UUID
	Role   Role
}

// CanHoldBookings reports whether the caller may book stays as a guest.
func (c Caller) CanHoldBookings() bool {
	return c.Role != RoleLandlord
}

// Guest is the local projection of a user account, kept for display snapshots.
type Guest struct {
	ID        uuid.UUID
	Name      string
	Email     string
	Role      Role
	UpdatedAt time.Time
}
