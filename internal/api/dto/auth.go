package dto

import "time"

// ClientHeaders identify the caller for session bookkeeping.
type ClientHeaders struct {
	UserAgent     string `header:"User-Agent"`
	XForwardedFor string `header:"X-Forwarded-For" doc:"Client IP from proxy"`
	XRealIP       string `header:"X-Real-IP" doc:"Client real IP"`
}

// RegisterRequest is the request body for creating an account.
type RegisterRequest struct {
	Email    string `json:"email" maxLength:"255" doc:"Email address, used to log in"`
	Password string `json:"password" doc:"Password (8-1024 chars)"`
	Name     string `json:"name,omitempty" maxLength:"255" doc:"Display name"`
}

// RegisterInput wraps the register request for huma.
type RegisterInput struct {
	Body RegisterRequest
}

// LoginRequest is the request body for obtaining tokens.
type LoginRequest struct {
	Email    string `json:"email" doc:"User email address"`
	Password string `json:"password" doc:"User password"`
}

// LoginInput wraps the login request for huma.
type LoginInput struct {
	ClientHeaders
	Body LoginRequest
}

// RefreshRequest is the request body for token refresh.
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" doc:"Refresh token from a previous login or refresh"`
}

// RefreshInput wraps the refresh request for huma.
type RefreshInput struct {
	ClientHeaders
	Body RefreshRequest
}

// User is the public view of an account.
type User struct {
	ID        string    `json:"id" doc:"User ID"`
	Email     string    `json:"email" doc:"Email address"`
	Name      string    `json:"name" doc:"Display name"`
	CreatedAt time.Time `json:"created_at" doc:"Creation time"`
	UpdatedAt time.Time `json:"updated_at" doc:"Last update time"`
}

// UserOutput wraps a user for huma.
type UserOutput struct {
	Body User
}

// CreatedUserOutput is returned by registration.
type CreatedUserOutput struct {
	Status int
	Body   User
}

// UpdateProfileRequest holds optional profile changes.
type UpdateProfileRequest struct {
	Name     *string `json:"name,omitempty" maxLength:"255" doc:"New display name"`
	Password *string `json:"password,omitempty" doc:"New password; revokes the caller's other sessions"`
}

// UpdateProfileInput wraps the profile update for huma.
type UpdateProfileInput struct {
	AuthHeader
	Body UpdateProfileRequest
}

// AuthResponse is the response for successful authentication.
type AuthResponse struct {
	AccessToken  string `json:"access_token" doc:"PASETO access token"`
	RefreshToken string `json:"refresh_token" doc:"Refresh token for obtaining new access tokens"`
	TokenType    string `json:"token_type" doc:"Always Bearer"`
	ExpiresIn    int    `json:"expires_in" doc:"Access token expiry in seconds"`
	SessionID    string `json:"session_id" doc:"Session identifier"`
	User         User   `json:"user" doc:"Authenticated user details"`
}

// AuthOutput wraps the auth response for huma.
type AuthOutput struct {
	Body AuthResponse
}
