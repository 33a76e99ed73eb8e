// Package domain contains entity without logic, just meta-data
package domain

import "strings"

const (
	MaxUsernameLen = 36

	// DefaultUsername is the identity assigned when the handshake
	// carries no usable hint.
	DefaultUsername = "Anonymous"
)

type UserID string

type User struct {
	ID       UserID `json:"id"`
	Username string `json:"username"`
}

// NewUser is a tiny helper to avoid ad-hoc struct literals in adapters.
// The username is assumed to be already resolved; see ResolveUsername.
func NewUser(id UserID, username string) *User {
	return &User{ID: id, Username: username}
}

// ResolveUsername derives the display identity from a raw handshake hint.
// It never fails: a missing or blank hint resolves to DefaultUsername,
// an oversized one is truncated.
func ResolveUsername(raw string) string {
	name := strings.TrimSpace(raw)
	if name == "" {
		return DefaultUsername
	}
	if len(name) > MaxUsernameLen {
		name = name[:MaxUsernameLen]
	}
	return name
}
