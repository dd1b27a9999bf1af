package domain

import "time"

// Role is the position of a user inside its company.
type Role string

const (
	RoleSuperAdmin Role = "super_admin"
	RoleAdmin      Role = "admin"
	RoleManager    Role = "manager"
	RoleInspector  Role = "inspector"
	RoleViewer     Role = "viewer"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	switch r {
	case RoleSuperAdmin, RoleAdmin, RoleManager, RoleInspector, RoleViewer:
		return true
	}
	return false
}

// PrincipalType distinguishes company users from clients.
type PrincipalType string

const (
	PrincipalUser   PrincipalType = "user"
	PrincipalClient PrincipalType = "client"
)

// Principal is the authenticated identity attached to a request.
// Clients carry neither a role nor a company.
type Principal struct {
	Type      PrincipalType
	ID        string
	Role      Role
	CompanyID string
	Email     string
}

func (p Principal) IsClient() bool     { return p.Type == PrincipalClient }
func (p Principal) IsSuperAdmin() bool { return p.Type == PrincipalUser && p.Role == RoleSuperAdmin }

// UserStatus is the lifecycle state of a user account.
type UserStatus string

const (
	UserActive   UserStatus = "active"
	UserInactive UserStatus = "inactive"
)

// User is a member of a company.
type User struct {
	ID           string     `bson:"_id"`
	CompanyID    string     `bson:"company_id"`
	Name         string     `bson:"name"`
	Email        string     `bson:"email"`
	Phone        string     `bson:"phone,omitempty"`
	PasswordHash string     `bson:"password_hash"`
	Role         Role       `bson:"role"`
	Status       UserStatus `bson:"status"`
	LastLoginAt  *time.Time `bson:"last_login_at,omitempty"`
	Audit        `bson:",inline"`
}

// Principal returns the request identity for u.
func (u *User) Principal() Principal {
	return Principal{Type: PrincipalUser, ID: u.ID, Role: u.Role, CompanyID: u.CompanyID, Email: u.Email}
}

// Client is a property owner or tenant who follows inspections through the
// client portal. Clients authenticate with session tokens.
type Client struct {
	ID           string    `bson:"_id"`
	Name         string    `bson:"name"`
	Email        string    `bson:"email"`
	Phone        string    `bson:"phone,omitempty"`
	Document     string    `bson:"document,omitempty"`
	PasswordHash string    `bson:"password_hash"`
	CreatedAt    time.Time `bson:"created_at"`
	UpdatedAt    time.Time `bson:"updated_at"`
}

// Principal returns the request identity for c.
func (c *Client) Principal() Principal {
	return Principal{Type: PrincipalClient, ID: c.ID, Email: c.Email}
}

// Session maps an opaque bearer token to a client.
type Session struct {
	Token          string
	ClientID       string
	ExpiresAt      time.Time
	CreatedAt      time.Time
	LastActivityAt time.Time
}

// Expired reports whether the session is no longer usable at now.
func (s *Session) Expired(now time.Time) bool {
	return now.After(s.ExpiresAt)
}
