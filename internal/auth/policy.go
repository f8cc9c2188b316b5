// Package auth resolves identities into principals and stores login sessions.
package auth

import (
	"strings"

	"github.com/crucial707/inventory/internal/apperr"
	"github.com/crucial707/inventory/internal/models"
)

// Identity is what an identity provider asserts about a user.
type Identity struct {
	Email   string
	Name    string
	Picture string
}

// Policy decides who may log in and who is admin. There is no user table:
// the allow-list and the admin address are configuration.
type Policy struct {
	AllowedEmails []string
	AdminEmail    string
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Allowed reports whether email is on the allow-list.
func (p Policy) Allowed(email string) bool {
	email = normalizeEmail(email)
	if email == "" {
		return false
	}
	for _, a := range p.AllowedEmails {
		if normalizeEmail(a) == email {
			return true
		}
	}
	return false
}

// RoleFor returns admin for the admin e-mail and viewer for everyone else.
func (p Policy) RoleFor(email string) string {
	if admin := normalizeEmail(p.AdminEmail); admin != "" && admin == normalizeEmail(email) {
		return models.RoleAdmin
	}
	return models.RoleViewer
}

// Resolve turns an asserted identity into a principal, or fails with
// apperr.Forbidden when the e-mail is not allow-listed.
func (p Policy) Resolve(id Identity) (models.Principal, error) {
	email := normalizeEmail(id.Email)
	if !p.Allowed(email) {
		return models.Principal{}, apperr.Forbidden("access denied for " + email)
	}
	return models.Principal{
		Email:   email,
		Name:    strings.TrimSpace(id.Name),
		Picture: id.Picture,
		Role:    p.RoleFor(email),
	}, nil
}

// DevPrincipal builds the principal for the non-production login shortcut.
// An empty email falls back to the admin address; an empty or unknown role
// falls back to RoleFor.
func (p Policy) DevPrincipal(email, role string) models.Principal {
	email = normalizeEmail(email)
	if email == "" {
		email = normalizeEmail(p.AdminEmail)
	}
	if email == "" {
		email = "dev@local"
	}
	if role != models.RoleAdmin && role != models.RoleViewer {
		role = p.RoleFor(email)
	}
	return models.Principal{Email: email, Name: "Dev User", Role: role}
}
