package models

type UserRole string

const (
	RoleSubject   UserRole = "subject"
	RoleClinician UserRole = "clinician"
	RoleAdmin     UserRole = "admin"
)

var roleRank = map[UserRole]int{
	RoleSubject:   1,
	RoleClinician: 2,
	RoleAdmin:     3,
}

func (r UserRole) IsValid() bool {
	_, ok := roleRank[r]
	return ok
}

// AtLeast reports whether r is the same as or more privileged than min
func (r UserRole) AtLeast(min UserRole) bool {
	return roleRank[r] >= roleRank[min] && roleRank[r] > 0
}

// Actor is the authenticated caller of a service operation
type Actor struct {
	ID   string   `json:"id"`
	Role UserRole `json:"role"`
}
