package models

// Dataset holds every accepted record of one conversion run, in insertion order.
type Dataset struct {
	Centres       []Centre       `json:"centres"`
	Departments   []Department   `json:"departments"`
	Programs      []Program      `json:"programs"`
	Courses       []Course       `json:"courses"`
	Venues        []Venue        `json:"venues"`
	Staff         []Staff        `json:"staff"`
	Students      []Student      `json:"students"`
	Registrations []Registration `json:"registrations"`
	Users         []User         `json:"users"`
}

// Valuer is implemented by every model that is written to the seed script.
type Valuer interface {
	Values() []any
}

// Rows returns the value tuples of every table keyed by table name.
func (d *Dataset) Rows() map[string][][]any {
	return map[string][][]any{
		"centre":       tuples(d.Centres),
		"department":   tuples(d.Departments),
		"program":      tuples(d.Programs),
		"course":       tuples(d.Courses),
		"venue":        tuples(d.Venues),
		"staff":        tuples(d.Staff),
		"student":      tuples(d.Students),
		"registration": tuples(d.Registrations),
		"users":        tuples(d.Users),
	}
}

func tuples[T Valuer](items []T) [][]any {
	out := make([][]any, 0, len(items))
	for _, item := range items {
		out = append(out, item.Values())
	}
	return out
}
