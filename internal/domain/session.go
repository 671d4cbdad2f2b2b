package domain

// TokenKind distinguishes administrator and staff session tokens.
type TokenKind string

const (
	TokenKindAdmin TokenKind = "admin"
	TokenKindStaff TokenKind = "staff"
)

// Session is the authentication state of one client context.
type Session struct {
	Authenticated bool         `json:"authenticated"`
	CurrentUser   *StaffMember `json:"currentUser"`
	IsAdmin       bool         `json:"isAdmin"`
	IsPartner     bool         `json:"isPartner"`
}

// RoleFlags are the role predicates derived from an identity.
type RoleFlags struct {
	IsAdmin   bool
	IsPartner bool
}

// DeriveFlags computes the role predicates for a member. It is the only place
// role flags are derived.
func DeriveFlags(member StaffMember, adminEmail string) RoleFlags {
	return RoleFlags{
		IsAdmin:   member.Email == adminEmail,
		IsPartner: member.Role == StaffRoleManagingPartner,
	}
}

// Anonymous returns the unauthenticated session.
func Anonymous() Session {
	return Session{}
}

// Authenticated builds a consistent authenticated session for member.
func Authenticated(member StaffMember, adminEmail string) Session {
	flags := DeriveFlags(member, adminEmail)
	m := member
	return Session{
		Authenticated: true,
		CurrentUser:   &m,
		IsAdmin:       flags.IsAdmin,
		IsPartner:     flags.IsPartner,
	}
}

// Clone returns a copy that does not share the identity pointer.
func (s Session) Clone() Session {
	if s.CurrentUser != nil {
		m := *s.CurrentUser
		s.CurrentUser = &m
	}
	return s
}
