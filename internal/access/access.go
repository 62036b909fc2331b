// Package access implements the role and screen-permission model that
// gates every company-scoped operation. Raw role and screen values coming
// from storage are validated here once, at the boundary, and handled as
// closed types everywhere else.
package access

import (
	"encoding/json"
	"fmt"
	"sort"
)

// Role is a member's role within one company
type Role string

const (
	RoleAdmin     Role = "admin"
	RoleDataEntry Role = "data_entry"
	RoleViewer    Role = "viewer"
)

// ParseRole validates a raw role value from storage or a request
func ParseRole(raw string) (Role, error) {
	switch Role(raw) {
	case RoleAdmin, RoleDataEntry, RoleViewer:
		return Role(raw), nil
	}
	return "", fmt.Errorf("unknown role %q", raw)
}

// Valid reports whether the role is one of the closed set
func (r Role) Valid() bool {
	_, err := ParseRole(string(r))
	return err == nil
}

// Screen is a navigable screen of the application
type Screen string

const (
	ScreenDashboard Screen = "Dashboard"
	ScreenLedger    Screen = "Ledger"
	ScreenGoals     Screen = "Goals"
	ScreenTeam      Screen = "Team"
	ScreenSettings  Screen = "Settings"
)

// ParseScreen validates a raw screen name
func ParseScreen(raw string) (Screen, error) {
	switch Screen(raw) {
	case ScreenDashboard, ScreenLedger, ScreenGoals, ScreenTeam, ScreenSettings:
		return Screen(raw), nil
	}
	return "", fmt.Errorf("unknown screen %q", raw)
}

// ScreenSet is the set of screens a member is permitted to navigate to
type ScreenSet map[Screen]struct{}

// AllScreens returns the full screen set, granted to company creators
func AllScreens() ScreenSet {
	return ScreenSet{
		ScreenDashboard: {},
		ScreenLedger:    {},
		ScreenGoals:     {},
		ScreenTeam:      {},
		ScreenSettings:  {},
	}
}

// Contains reports whether the set includes the given screen
func (s ScreenSet) Contains(screen Screen) bool {
	_, ok := s[screen]
	return ok
}

// Names returns the screen names in stable order
func (s ScreenSet) Names() []string {
	names := make([]string, 0, len(s))
	for screen := range s {
		names = append(names, string(screen))
	}
	sort.Strings(names)
	return names
}

// ParseScreens decodes the serialized screen list stored on a membership.
// An empty value yields an empty set, not an error.
func ParseScreens(raw string) (ScreenSet, error) {
	set := ScreenSet{}
	if raw == "" {
		return set, nil
	}

	var names []string
	if err := json.Unmarshal([]byte(raw), &names); err != nil {
		return nil, fmt.Errorf("invalid screen list: %w", err)
	}
	for _, name := range names {
		screen, err := ParseScreen(name)
		if err != nil {
			return nil, err
		}
		set[screen] = struct{}{}
	}
	return set, nil
}

// SerializeScreens encodes a screen set for storage
func SerializeScreens(s ScreenSet) string {
	data, err := json.Marshal(s.Names())
	if err != nil {
		return "[]"
	}
	return string(data)
}

// CanManageCompany reports whether the role may rename the company, edit
// the working-day config, holidays, monthly goals, or memberships
func (r Role) CanManageCompany() bool {
	return r == RoleAdmin
}

// CanRecordSales reports whether the role may create, update or delete
// daily sale records
func (r Role) CanRecordSales() bool {
	return r == RoleAdmin || r == RoleDataEntry
}

// CanNavigate reports whether a member may open the given screen. Admins
// always have full navigation; for everyone else the stored screen set is
// binding.
func CanNavigate(role Role, screens ScreenSet, screen Screen) bool {
	if role == RoleAdmin {
		return true
	}
	return screens.Contains(screen)
}

// CanModifyMember reports whether an actor may change or remove the target
// membership. Only admins manage the team, and an admin may never modify
// their own membership (self-lockout prevention).
func CanModifyMember(actorRole Role, actorUserID, targetUserID uint) bool {
	if actorRole != RoleAdmin {
		return false
	}
	return actorUserID != targetUserID
}
