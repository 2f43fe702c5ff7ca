package dto

import "time"

type LoginRequest struct {
	Username string `json:"username" form:"username" validate:"required"`
	Password string `json:"password" form:"password" validate:"required"`
}

// LoginResponse is the remote API's answer to auth/login/admin. It is stored
// verbatim as the session record.
type LoginResponse struct {
	UserID   string `json:"userId"`
	Username string `json:"username,omitempty"`
	Type     string `json:"type,omitempty"`
	Token    string `json:"token"`
}

type LoginScreen struct {
	Authenticated bool `json:"authenticated"`
}

type HomeScreen struct {
	UserID    string     `json:"userId"`
	Username  string     `json:"username,omitempty"`
	Type      string     `json:"type,omitempty"`
	ExpiresAt *time.Time `json:"expiresAt,omitempty"`
	Expired   bool       `json:"expired"`
}

type LoginResult struct {
	UserID   string    `json:"userId"`
	Username string    `json:"username,omitempty"`
	Type     string    `json:"type,omitempty"`
	Redirect *Redirect `json:"redirect"`
}
