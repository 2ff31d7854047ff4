package directory

// Role of a user within the platform.
type Role string

const (
	RoleEmployee Role = "EMPLOYEE"
	RoleAdmin    Role = "ADMIN"
)

// User is the read-only view of the user/department directory this
// subsystem consumes. The directory itself is owned elsewhere.
type User struct {
	ID             string
	Name           string
	DepartmentID   *string
	DepartmentName *string
	Role           Role
	Active         bool
}
