package models

// Program represents the program table
type Program struct {
	ID                   int    `db:"id" json:"id"`
	DeptID               int    `db:"dept_id" json:"dept_id"`
	Code                 string `db:"code" json:"code"`
	Name                 string `db:"name" json:"name"`
	Duration             int    `db:"duration" json:"duration"`
	TotalCompulsoryUnits int    `db:"total_compulsory_units" json:"total_compulsory_units"`
	TotalElectiveUnits   int    `db:"total_elective_units" json:"total_elective_units"`
}

func (p Program) Values() []any {
	return []any{p.ID, p.DeptID, p.Code, p.Name, p.Duration, p.TotalCompulsoryUnits, p.TotalElectiveUnits}
}
