package teacher

import (
	"strings"
	"time"
)

// RoleTeacher is the user role carried by association members.
const RoleTeacher = "teacher"

// Teacher represents a member of the savings association as held in the user directory.
type Teacher struct {
	ID             string // Opaque, owned by the directory
	FullName       string
	EmployeeID     string
	ManagementUnit string
	Role           string
	CreatedAt      time.Time
}

// NormalizeEmployeeID is the comparison form of an employee identifier.
func NormalizeEmployeeID(id string) string {
	return strings.ToUpper(strings.TrimSpace(id))
}
