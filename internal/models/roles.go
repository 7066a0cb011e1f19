package models

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// ValidRole reports whether role is one of the roles a user record may hold.
func ValidRole(role string) bool {
	return role == RoleUser || role == RoleAdmin
}
