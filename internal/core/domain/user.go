package domain

import (
	"strings"
	"time"
)

// Role is the closed set of roles a user can hold.
type Role string

const (
	RoleAdmin  Role = "admin"
	RoleEditor Role = "editor"
	RoleViewer Role = "viewer"
)

// legacyRoleUser is accepted on input and stored as RoleViewer.
const legacyRoleUser = "user"

// Roles lists every valid role in privilege order.
var Roles = []Role{RoleAdmin, RoleEditor, RoleViewer}

// ParseRole converts s to a Role. The legacy "user" role maps to viewer.
func ParseRole(s string) (Role, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case string(RoleAdmin):
		return RoleAdmin, true
	case string(RoleEditor):
		return RoleEditor, true
	case string(RoleViewer), legacyRoleUser:
		return RoleViewer, true
	}
	return "", false
}

func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleEditor, RoleViewer:
		return true
	}
	return false
}

// User models an account in the identity store.
type User struct {
	ID           string     `json:"id" bson:"_id"`
	Username     string     `json:"username" bson:"username"`
	Email        string     `json:"email" bson:"email"`
	PasswordHash string     `json:"-" bson:"password_hash"`
	FirstName    string     `json:"firstName,omitempty" bson:"first_name"`
	LastName     string     `json:"lastName,omitempty" bson:"last_name"`
	Role         Role       `json:"role" bson:"role"`
	IsActive     bool       `json:"isActive" bson:"is_active"`
	Avatar       string     `json:"avatar,omitempty" bson:"avatar"`
	Bio          string     `json:"bio,omitempty" bson:"bio"`
	RefreshToken string     `json:"-" bson:"refresh_token"`
	LastLogin    *time.Time `json:"lastLogin,omitempty" bson:"last_login"`
	CreatedAt    time.Time  `json:"createdAt" bson:"created_at"`
	UpdatedAt    time.Time  `json:"updatedAt" bson:"updated_at"`
}

// FullName joins first and last name, falling back to the username.
func (u *User) FullName() string {
	name := strings.TrimSpace(u.FirstName + " " + u.LastName)
	if name == "" {
		return u.Username
	}
	return name
}

// Principal is the authenticated caller for the duration of one request.
type Principal struct {
	ID   string
	Role Role
}

func (p Principal) IsAdmin() bool { return p.Role == RoleAdmin }

// Session is a verified access token resolved to an active user.
type Session struct {
	Principal Principal
	TokenID   string
	ExpiresAt time.Time
}
