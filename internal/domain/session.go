package domain

import "time"

// OAuthState is the anti-forgery nonce issued when an install is initiated.
// It is consumed exactly once by the OAuth callback.
type OAuthState struct {
	Shop      string    `json:"shop"`
	State     string    `json:"state"`
	Scopes    []string  `json:"scopes"`
	ExpiresAt time.Time `json:"expires_at"`
	CreatedAt time.Time `json:"created_at"`
}

// LoginResult is returned when an install is initiated
type LoginResult struct {
	Authenticated bool   `json:"authenticated"`
	URL           string `json:"url"`
	State         string `json:"state"`
}
