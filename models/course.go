package models

// Course represents the course table. Code is the natural key.
type Course struct {
	Code     string `db:"code" json:"code"`
	Title    string `db:"title" json:"title"`
	Unit     int    `db:"unit" json:"unit"`
	Semester int    `db:"semester" json:"semester"`
	ExamType string `db:"exam_type" json:"exam_type"`
}

func (c Course) Values() []any {
	return []any{c.Code, c.Title, c.Unit, c.Semester, c.ExamType}
}
