package domain

import "time"

// Role enumerates account roles across the portal.
type Role string

const (
	RoleUser  Role = "User"
	RoleStaff Role = "Staff"
	RoleAdmin Role = "Admin"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleUser, RoleStaff, RoleAdmin:
		return true
	}
	return false
}

// User models any portal account: requesters, staff and administrators.
// Skills and the approval flag are meaningful for staff only.
type User struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	Role         Role
	Skills       []TicketCategory
	Active       bool
	Approved     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Assignable reports whether the user may receive ticket assignments.
func (u *User) Assignable() bool {
	return u.Role == RoleStaff && u.Active && u.Approved
}

// HasSkill reports whether the user's skill set covers the category.
func (u *User) HasSkill(category TicketCategory) bool {
	for _, skill := range u.Skills {
		if skill == category {
			return true
		}
	}
	return false
}
