package domain

import (
	"strings"
)

// Shop represents a merchant's installed-app record, keyed by storefront domain
type Shop struct {
	ID           uint     `json:"id"`
	Domain       string   `json:"domain"`
	AccessToken  string   `json:"-"`
	AccessScopes []string `json:"access_scopes"`
	CreatedAt    int64    `json:"created_at"`
	UpdatedAt    int64    `json:"updated_at"`
}

// HasAccessToken reports whether the shop completed the OAuth flow
func (s *Shop) HasAccessToken() bool {
	return s != nil && s.AccessToken != ""
}

// AccessGrant is the result of exchanging an authorization code
type AccessGrant struct {
	AccessToken string
	Scopes      []string
}

// JoinScopes renders a scope set the way it is persisted (comma-delimited)
func JoinScopes(scopes []string) string {
	return strings.Join(scopes, ",")
}

// SplitScopes parses a comma-delimited scope string, dropping empty entries
func SplitScopes(raw string) []string {
	parts := strings.Split(raw, ",")
	scopes := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			scopes = append(scopes, p)
		}
	}
	return scopes
}
