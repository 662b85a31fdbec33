package models

// Registration represents a student's exam registration for a course
type Registration struct {
	CentreID   int    `db:"centre_id" json:"centre_id"`
	MatricNo   string `db:"matric_no" json:"matric_no"`
	CourseCode string `db:"course_code" json:"course_code"`
	Session    string `db:"session" json:"session"`
	Semester   int    `db:"semester" json:"semester"`
}

func (r Registration) Values() []any {
	return []any{r.CentreID, r.MatricNo, r.CourseCode, r.Session, r.Semester}
}
