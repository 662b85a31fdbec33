package models

// Department represents the department table
type Department struct {
	ID        int    `db:"id" json:"id"`
	CollegeID int    `db:"college_id" json:"college_id"`
	Code      string `db:"code" json:"code"`
	Name      string `db:"name" json:"name"`
}

func (d Department) Values() []any {
	return []any{d.ID, d.CollegeID, d.Code, d.Name}
}
