package model

// Role identifies what kind of account a user holds.  The value is
// stored in the users table and embedded in the JWT "role" claim, so
// handlers and the engine can authorize operations without a second
// lookup.
type Role string

const (
	RoleAdmin  Role = "ADMIN"  // back-office staff, may drive every workflow
	RoleTalent Role = "TALENT" // invited performers, respond to requests and sign
	RoleClient Role = "CLIENT" // booking customers, open inquiries
)

// Valid reports whether r is one of the three known roles.  Unknown
// roles are rejected at registration time.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleTalent, RoleClient:
		return true
	}
	return false
}
