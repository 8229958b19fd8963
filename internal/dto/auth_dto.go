package dto

// ─── Request DTOs ────────────────────────────────────────────────────────────

type LoginRequest struct {
	Username string `json:"username" validate:"required,min=1"`
	Password string `json:"password" validate:"required,min=4"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

type PasswordResetRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type PasswordResetConfirm struct {
	Token       string `json:"token"        validate:"required"`
	NewPassword string `json:"new_password" validate:"required,min=8"`
}

type CreateUserRequest struct {
	Username     string  `json:"username"       validate:"required,min=1,max=150"`
	Name         string  `json:"name"           validate:"required,min=2,max=100"`
	Email        string  `json:"email"          validate:"required,email"`
	Password     string  `json:"password"       validate:"required,min=8"`
	Role         string  `json:"role"           validate:"required,oneof=super_operator operator iso_operator"`
	PrimaryIsoID *string `json:"primary_iso_id" validate:"omitempty,uuid4"`
	FullAccess   bool    `json:"full_access"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type UserResponse struct {
	ID           string  `json:"id"`
	Username     string  `json:"username"`
	Name         string  `json:"name"`
	Email        string  `json:"email"`
	Role         string  `json:"role"`
	PrimaryIsoID *string `json:"primary_iso_id,omitempty"`
	FullAccess   bool    `json:"full_access"`
	Active       bool    `json:"active"`
}

type LoginResponse struct {
	AccessToken  string       `json:"access_token"`
	RefreshToken string       `json:"refresh_token"`
	TokenType    string       `json:"token_type"`
	ExpiresIn    int          `json:"expires_in"`
	User         UserResponse `json:"user"`
}
