package models

// Staff represents the staff table
type Staff struct {
	StaffID    string `db:"staff_id" json:"staff_id"`
	Title      string `db:"title" json:"title"`
	Surname    string `db:"surname" json:"surname"`
	FirstName  string `db:"first_name" json:"first_name"`
	MiddleName string `db:"middle_name" json:"middle_name"`
	DeptID     int    `db:"dept_id" json:"dept_id"`
}

func (s Staff) Values() []any {
	return []any{s.StaffID, s.Title, s.Surname, s.FirstName, s.MiddleName, s.DeptID}
}
