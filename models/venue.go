package models

// Venue represents the venue table
type Venue struct {
	ID         int    `db:"id" json:"id"`
	Code       string `db:"code" json:"code"`
	Name       string `db:"name" json:"name"`
	Capacity   int    `db:"capacity" json:"capacity"`
	Type       string `db:"type" json:"type"`
	Preference int    `db:"preference" json:"preference"`
}

func (v Venue) Values() []any {
	return []any{v.ID, v.Code, v.Name, v.Capacity, v.Type, v.Preference}
}
