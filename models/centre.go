package models

// Centre represents the centre table (a college or study centre)
type Centre struct {
	ID      int    `db:"id" json:"id"`
	Code    string `db:"code" json:"code"`
	Name    string `db:"name" json:"name"`
	Type    string `db:"type" json:"type"`
	Encount int    `db:"encount" json:"encount"`
}

func (c Centre) Values() []any {
	return []any{c.ID, c.Code, c.Name, c.Type, c.Encount}
}
