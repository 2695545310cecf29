package domain

import (
	"strings"
	"time"
)

type Role string

const (
	RoleAdmin Role = "admin"
	RoleUser  Role = "user"
)

func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleUser
}

// User is a storefront account.
type User struct {
	ID           int
	Username     string
	Email        string
	PasswordHash string
	Role         Role
	IsActive     bool
	LastLoginAt  *time.Time
	CreatedAt    time.Time
}

func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// Landing views the client can be restored to.
const (
	ViewAdminDashboard = "admin-dashboard"
	ViewCustomerHome   = "customer-home"
)

// LandingView picks the view to restore after login. A remembered view is
// only honoured when it belongs to the user's side of the app.
func LandingView(role Role, lastView string) string {
	if role == RoleAdmin {
		if strings.HasPrefix(lastView, "admin-") {
			return lastView
		}
		return ViewAdminDashboard
	}
	if strings.HasPrefix(lastView, "customer-") {
		return lastView
	}
	return ViewCustomerHome
}

type Theme string

const (
	ThemeLight Theme = "light"
	ThemeDark  Theme = "dark"
)

func (t Theme) Valid() bool {
	return t == ThemeLight || t == ThemeDark
}
