package auth

import (
	"context"
	"time"

	"github.com/crucial707/inventory/internal/models"
)

// SessionCookie is the cookie carrying the session token.
const SessionCookie = "inventory_session"

// SessionStore issues and resolves opaque session tokens.
type SessionStore interface {
	// Save starts a session for p and returns its token.
	Save(ctx context.Context, p models.Principal) (string, error)
	// Load returns the principal for token, or an apperr.Unauthorized error
	// when the token is unknown, expired or malformed.
	Load(ctx context.Context, token string) (models.Principal, error)
	// Delete ends the session. Deleting an unknown token is not an error.
	Delete(ctx context.Context, token string) error
	// TTL is the session lifetime, used for the cookie max age.
	TTL() time.Duration
}
