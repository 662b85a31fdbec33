package models

// User represents the users table. Every user is a member of staff.
type User struct {
	StaffID  string `db:"staff_id" json:"staff_id"`
	RoleID   int    `db:"role_id" json:"role_id"`
	Password string `db:"password" json:"-"`
	Email    string `db:"email" json:"email"`
}

func (u User) Values() []any {
	return []any{u.StaffID, u.RoleID, u.Password, u.Email}
}
