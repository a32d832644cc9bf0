package auth

import "time"

const (
	RoleAdmin   = "admin"
	RoleManager = "manager"
	RoleStaff   = "staff"
)

// UserContext is the authenticated identity carried on the request context.
type UserContext struct {
	UserID   string
	TenantID string
	Role     string
}

func (u UserContext) IsAdmin() bool {
	return u.Role == RoleAdmin
}

func (u UserContext) CanReview() bool {
	return u.Role == RoleAdmin || u.Role == RoleManager
}

type User struct {
	ID           string     `json:"id"`
	TenantID     string     `json:"tenantId"`
	Email        string     `json:"email"`
	FirstName    string     `json:"firstName"`
	LastName     string     `json:"lastName"`
	Role         string     `json:"role"`
	ManagerID    *string    `json:"managerId,omitempty"`
	Status       string     `json:"status"`
	LastLogin    *time.Time `json:"lastLogin,omitempty"`
	PasswordHash string     `json:"-"`
}
