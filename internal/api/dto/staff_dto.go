package dto

import "time"

// LoginRequest payload.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Remember bool   `json:"remember"`
}

// SessionResponse describes the caller's session.
type SessionResponse struct {
	Authenticated bool           `json:"authenticated"`
	CurrentUser   *StaffResponse `json:"currentUser"`
	IsAdmin       bool           `json:"isAdmin"`
	IsPartner     bool           `json:"isPartner"`
	Landing       string         `json:"landing,omitempty"`
}

// StaffResponse is a roster entry.
type StaffResponse struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	Name         string    `json:"name"`
	Role         string    `json:"role"`
	DateAssigned time.Time `json:"dateAssigned"`
}

// CreateStaffRequest payload for assigning a staff member.
type CreateStaffRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

// UpdateProfileRequest payload. Absent fields are left unchanged.
type UpdateProfileRequest struct {
	Name  *string `json:"name"`
	Email *string `json:"email"`
}
