package models

import "fmt"

// Role is the closed set of permission levels a user can hold.
type Role string

const (
	RoleUser      Role = "user"
	RoleModerator Role = "moderator"
	RoleAdmin     Role = "admin"
)

// ParseRole converts raw input into a Role, rejecting anything outside the set.
func ParseRole(s string) (Role, error) {
	r := Role(s)
	if !r.Valid() {
		return "", fmt.Errorf("unknown role %q", s)
	}
	return r, nil
}

func (r Role) Valid() bool {
	switch r {
	case RoleUser, RoleModerator, RoleAdmin:
		return true
	}
	return false
}

func (r Role) String() string {
	return string(r)
}

// CanAdminister reports whether the role alone grants admin rights.
func (r Role) CanAdminister() bool {
	switch r {
	case RoleAdmin:
		return true
	case RoleModerator, RoleUser:
		return false
	}
	return false
}

// CanModerate reports whether the role alone grants moderation rights.
func (r Role) CanModerate() bool {
	switch r {
	case RoleAdmin, RoleModerator:
		return true
	case RoleUser:
		return false
	}
	return false
}
