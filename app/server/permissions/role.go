package permissions

import (
	"fmt"
	"strings"
)

type Role string

const (
	RoleAdmin Role = "admin"
	RoleUser  Role = "user"
)

// ParseRole accepts any letter casing and surrounding spaces.
func ParseRole(s string) (Role, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case string(RoleAdmin):
		return RoleAdmin, nil
	case string(RoleUser):
		return RoleUser, nil
	default:
		return "", fmt.Errorf("unknown role: %q", s)
	}
}

// IsAdmin reports whether a stored role value names the admin role.
func IsAdmin(role string) bool {
	return strings.EqualFold(strings.TrimSpace(role), string(RoleAdmin))
}
