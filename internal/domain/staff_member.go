package domain

import "time"

// StaffRole enumerates portal roles. Values match the persisted roster format.
type StaffRole string

const (
	StaffRoleAdministrator   StaffRole = "Administrator"
	StaffRoleStaff           StaffRole = "Staff"
	StaffRoleManagingPartner StaffRole = "Managing Partner"
)

// AdminID is the identifier of the synthetic administrator account.
const AdminID = "admin"

// Valid reports whether the role is one of the known roles.
func (r StaffRole) Valid() bool {
	switch r {
	case StaffRoleAdministrator, StaffRoleStaff, StaffRoleManagingPartner:
		return true
	default:
		return false
	}
}

// StaffMember models a roster entry.
type StaffMember struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	Name         string    `json:"name"`
	Role         StaffRole `json:"role"`
	DateAssigned time.Time `json:"dateAssigned"`
}

// NewAdministrator synthesizes the permanent administrator identity.
func NewAdministrator(email string, now time.Time) StaffMember {
	return StaffMember{
		ID:           AdminID,
		Email:        email,
		Name:         "Admin",
		Role:         StaffRoleAdministrator,
		DateAssigned: now,
	}
}
