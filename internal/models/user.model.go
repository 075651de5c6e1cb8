// internal/models/user.model.go
package models

// UserRole mirrors the API's UserRole enum.
type UserRole string

const (
	RoleAdmin    UserRole = "ADMIN"
	RoleEmployee UserRole = "EMPLOYEE"
)

// User is the identity returned by login, register and me.
type User struct {
	ID         string   `json:"id"`
	Email      string   `json:"email"`
	FirstName  string   `json:"firstName"`
	LastName   string   `json:"lastName"`
	FullName   string   `json:"fullName"`
	Role       UserRole `json:"role"`
	Department string   `json:"department,omitempty"`
	Avatar     *string  `json:"avatar,omitempty"`
	IsActive   bool     `json:"isActive"`
}

// IsAdmin reports whether the user carries the ADMIN role.
func (u *User) IsAdmin() bool {
	return u != nil && u.Role == RoleAdmin
}

// UserRef is the {id, fullName} summary attached to shipments.
type UserRef struct {
	ID       string `json:"id"`
	FullName string `json:"fullName"`
}

// AuthPayload is the result of the login and register mutations.
type AuthPayload struct {
	Token string `json:"token"`
	User  *User  `json:"user"`
}

// LoginInput is the input of the login mutation.
type LoginInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// RegisterInput is the input of the register mutation.
type RegisterInput struct {
	Email      string `json:"email"`
	Password   string `json:"password"`
	FirstName  string `json:"firstName"`
	LastName   string `json:"lastName"`
	Department string `json:"department,omitempty"`
}
