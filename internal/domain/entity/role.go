package entity

// Role is a fixed category tag chosen at registration. It is asserted again
// at login and checked for equality; nothing in this service rewrites it.
type Role string

const (
	RoleSeeker    Role = "seeker"
	RoleRecruiter Role = "recruiter"
)

func (r Role) Valid() bool {
	return r == RoleSeeker || r == RoleRecruiter
}
