package auth

// Role is a user's access level. Roles are ordered; each includes the ones below it.
type Role string

const (
	RoleGuest   Role = "GUEST"
	RoleStaff   Role = "STAFF"
	RoleManager Role = "MANAGER"
	RoleAdmin   Role = "ADMIN"
)

var roleRank = map[Role]int{
	RoleGuest:   1,
	RoleStaff:   2,
	RoleManager: 3,
	RoleAdmin:   4,
}

// IsValid reports whether r is a known role.
func (r Role) IsValid() bool {
	_, ok := roleRank[r]
	return ok
}

// AtLeast reports whether r grants everything min grants.
// Unknown roles grant nothing.
func (r Role) AtLeast(min Role) bool {
	rank, ok := roleRank[r]
	if !ok {
		return false
	}
	return rank >= roleRank[min]
}
