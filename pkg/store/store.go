// Package store persists user accounts and chat sessions. The Postgres
// implementation is the real one; Memory backs the app when no database
// is configured.
package store

import (
	"context"
	"strings"

	"github.com/tdai-app/tdai/pkg/core/types"
)

// Store is the persistence interface the app depends on.
type Store interface {
	// EnsureUser returns the account for the given email, creating it
	// on first login and bumping last_login on every call.
	EnsureUser(ctx context.Context, email string) (types.User, error)

	// UpdateProfile replaces the user-editable fields of an account.
	UpdateProfile(ctx context.Context, email string, profile types.UserProfile) error

	// SaveChat inserts or replaces one chat session.
	SaveChat(ctx context.Context, email string, chat types.ChatSession) error

	// ListChats returns the user's sessions, newest first.
	ListChats(ctx context.Context, email string) ([]types.ChatSession, error)

	// DeleteChat removes one session.
	DeleteChat(ctx context.Context, email, id string) error

	Close()
}

// NormalizeEmail canonicalizes an address for use as an account key.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// defaultName derives a new account's display name from its address.
func defaultName(email string) string {
	if at := strings.Index(email, "@"); at > 0 {
		return email[:at]
	}
	return email
}
