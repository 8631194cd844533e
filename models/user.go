package models

// RoleAdmin is the role string the auth backend assigns to administrators.
const (
	RoleAdmin = "ADMIN"
	RoleUser  = "USER"
)

// User is the session user persisted alongside the auth token.
type User struct {
	Username string `json:"username"`
	Role     string `json:"role"`
}

// LoginRequest is accepted by POST /auth/login and forwarded to the backend.
type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// RegisterRequest is accepted by POST /auth/register.
type RegisterRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required,min=8"`
}

// LoginResponse is what the auth backend answers to a successful login.
type LoginResponse struct {
	Token    string `json:"token"`
	Username string `json:"username"`
	Role     string `json:"role"`
}
