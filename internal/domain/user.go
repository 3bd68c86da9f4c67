package domain

import "time"

type UserRole string

const (
	RoleAdmin  UserRole = "Admin"
	RoleLeader UserRole = "Lãnh đạo"
)

type User struct {
	ID        string
	Username  string
	FullName  string
	Role      UserRole
	CreatedAt time.Time
}

func (u *User) IsAdmin() bool {
	return u != nil && u.Role == RoleAdmin
}
