package entity

// Role governs what an authenticated user may do.
type Role string

const (
	RoleUser      Role = "user"
	RolePublisher Role = "publisher"
	RoleAdmin     Role = "admin"
)

func (r Role) Valid() bool {
	switch r {
	case RoleUser, RolePublisher, RoleAdmin:
		return true
	}
	return false
}

// CanModify reports whether actor may change a resource owned by ownerID.
// Owners and admins may; everybody else is denied.
func CanModify(actor *User, ownerID string) bool {
	if actor == nil {
		return false
	}
	return actor.ID == ownerID || actor.Role == RoleAdmin
}
