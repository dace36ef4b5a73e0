package model

// Staff roles. The system runs with two fixed staff accounts; "system"
// only appears as the actor on monitor-written log entries.
const (
	RoleAdmin   = "admin"
	RoleKitchen = "kitchen"
	RoleSystem  = "system"
)

// RoleAtLeast checks if role meets or exceeds the minimum required role.
func RoleAtLeast(role, minimum string) bool {
	levels := map[string]int{
		RoleAdmin:   2,
		RoleKitchen: 1,
	}
	return levels[role] >= levels[minimum]
}
