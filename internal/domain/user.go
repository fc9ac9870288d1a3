package domain

// AdminUsername is the reserved username that grants administrator rights.
const AdminUsername = "admin"

// User represents a registered account in the credential store.
type User struct {
	Username string // Login username, unique
	Password string // Plain text password
}

// IsAdmin reports whether the username is exactly the reserved admin name.
func IsAdmin(username string) bool {
	return username == AdminUsername
}
