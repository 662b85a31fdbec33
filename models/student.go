package models

// Student represents the student table
type Student struct {
	MatricNo   string `db:"matric_no" json:"matric_no"`
	Surname    string `db:"surname" json:"surname"`
	FirstName  string `db:"first_name" json:"first_name"`
	MiddleName string `db:"middle_name" json:"middle_name"`
	DeptID     int    `db:"dept_id" json:"dept_id"`
	ProgramID  int    `db:"program_id" json:"program_id"`
	Level      int    `db:"level" json:"level"`
}

func (s Student) Values() []any {
	return []any{s.MatricNo, s.Surname, s.FirstName, s.MiddleName, s.DeptID, s.ProgramID, s.Level}
}
