package models

const RoleViewer = "viewer"
const RoleAdmin = "admin"

// Principal is the authenticated identity attached to a request.
type Principal struct {
	Email   string `json:"email"`
	Name    string `json:"name"`
	Picture string `json:"picture,omitempty"`
	Role    string `json:"role"`
}

// EffectiveRole returns the role, defaulting to viewer when unset.
func (p Principal) EffectiveRole() string {
	if p.Role == "" {
		return RoleViewer
	}
	return p.Role
}

// IsAdmin reports whether the principal holds the admin role.
func (p Principal) IsAdmin() bool {
	return p.EffectiveRole() == RoleAdmin
}
