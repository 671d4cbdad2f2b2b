package auth

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// HashPassword hashes a plaintext password with configured cost.
func HashPassword(password string, cost int) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

// ComparePassword verifies a password against its hashed value.
func ComparePassword(hashed, plain string) error {
	return bcrypt.CompareHashAndPassword([]byte(hashed), []byte(plain))
}

// Credentials holds the configured administrator pair and the shared staff
// password. Plaintext values are hashed once and dropped.
type Credentials struct {
	adminEmail string
	adminHash  string
	staffHash  string
}

// NewCredentials hashes the configured passwords with cost.
func NewCredentials(adminEmail, adminPassword, staffPassword string, cost int) (*Credentials, error) {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	adminHash, err := HashPassword(adminPassword, cost)
	if err != nil {
		return nil, fmt.Errorf("hash admin password: %w", err)
	}
	staffHash, err := HashPassword(staffPassword, cost)
	if err != nil {
		return nil, fmt.Errorf("hash staff password: %w", err)
	}
	return &Credentials{adminEmail: adminEmail, adminHash: adminHash, staffHash: staffHash}, nil
}

// AdminEmail returns the administrator's email address.
func (c *Credentials) AdminEmail() string {
	return c.adminEmail
}

// MatchAdmin reports whether the pair is the administrator's.
func (c *Credentials) MatchAdmin(email, password string) bool {
	return email == c.adminEmail && ComparePassword(c.adminHash, password) == nil
}

// MatchStaff reports whether password is the shared staff password.
func (c *Credentials) MatchStaff(password string) bool {
	return ComparePassword(c.staffHash, password) == nil
}
