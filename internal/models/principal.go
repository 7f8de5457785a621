package models

import "strings"

type Role string

const (
	RoleAdmin     Role = "admin"
	RoleOrganizer Role = "organizer"
)

// ParseRole normalizes a role claim. "organizador" is accepted for tokens
// minted by the legacy backend.
func ParseRole(raw string) (Role, bool) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "admin":
		return RoleAdmin, true
	case "organizer", "organizador":
		return RoleOrganizer, true
	}
	return "", false
}

// Principal is the authenticated actor behind a redemption or stats request.
type Principal struct {
	ID   string `json:"id"`
	Role Role   `json:"role"`
}

func (p Principal) IsAdmin() bool {
	return p.Role == RoleAdmin
}

// CanManage reports whether the principal may act on an event owned by organizerID.
func (p Principal) CanManage(organizerID string) bool {
	switch p.Role {
	case RoleAdmin:
		return true
	case RoleOrganizer:
		return p.ID != "" && p.ID == organizerID
	}
	return false
}
