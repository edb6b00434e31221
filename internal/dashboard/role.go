package dashboard

import (
	"errors"
	"fmt"
	"strings"
)

type Role string

const (
	RoleAPClerk    Role = "ap-clerk"
	RoleController Role = "controller"
	RoleCFO        Role = "cfo"
)

var ErrUnknownRole = errors.New("unknown role")

// Roles lists every role in selector order.
func Roles() []Role {
	return []Role{RoleAPClerk, RoleController, RoleCFO}
}

func (r Role) Valid() bool {
	switch r {
	case RoleAPClerk, RoleController, RoleCFO:
		return true
	}
	return false
}

// Title is the human label shown in the role selector.
func (r Role) Title() string {
	switch r {
	case RoleAPClerk:
		return "AP Clerk"
	case RoleController:
		return "Controller"
	case RoleCFO:
		return "CFO"
	}
	return string(r)
}

func ParseRole(s string) (Role, error) {
	r := Role(strings.ToLower(strings.TrimSpace(s)))
	if !r.Valid() {
		return "", fmt.Errorf("%w %q", ErrUnknownRole, s)
	}
	return r, nil
}

// Viewer is the explicit context a dashboard view is built for.
type Viewer struct {
	Role Role
	// Action item statuses; missing ids are new
	Insights map[int]InsightStatus
}
