package sqlgen

import (
	"errors"
	"fmt"
)

var (
	// ErrCycle is returned when table references cannot be ordered.
	ErrCycle = errors.New("circular table reference")
	// ErrUnknownTable is returned for rows addressed to a table outside the schema.
	ErrUnknownTable = errors.New("unknown table")
)

// ForeignKey is a column referencing another table's key.
type ForeignKey struct {
	Column string
	Table  string
}

// Table describes one target table of the seed script.
type Table struct {
	Name       string
	Columns    []string
	Key        []string
	References []ForeignKey
}

// keyIndexes returns the positions of the key columns.
func (t Table) keyIndexes() []int {
	idx := make([]int, 0, len(t.Key))
	for _, k := range t.Key {
		for i, c := range t.Columns {
			if c == k {
				idx = append(idx, i)
				break
			}
		}
	}
	return idx
}

// Tables is the target schema in definition order.
var Tables = []Table{
	{
		Name:    "centre",
		Columns: []string{"id", "code", "name", "type", "encount"},
		Key:     []string{"id"},
	},
	{
		Name:       "department",
		Columns:    []string{"id", "college_id", "code", "name"},
		Key:        []string{"id"},
		References: []ForeignKey{{"college_id", "centre"}},
	},
	{
		Name:       "program",
		Columns:    []string{"id", "dept_id", "code", "name", "duration", "total_compulsory_units", "total_elective_units"},
		Key:        []string{"id"},
		References: []ForeignKey{{"dept_id", "department"}},
	},
	{
		Name:    "course",
		Columns: []string{"code", "title", "unit", "semester", "exam_type"},
		Key:     []string{"code"},
	},
	{
		Name:    "venue",
		Columns: []string{"id", "code", "name", "capacity", "type", "preference"},
		Key:     []string{"id"},
	},
	{
		Name:       "staff",
		Columns:    []string{"staff_id", "title", "surname", "first_name", "middle_name", "dept_id"},
		Key:        []string{"staff_id"},
		References: []ForeignKey{{"dept_id", "department"}},
	},
	{
		Name:    "student",
		Columns: []string{"matric_no", "surname", "first_name", "middle_name", "dept_id", "program_id", "level"},
		Key:     []string{"matric_no"},
		References: []ForeignKey{
			{"dept_id", "department"},
			{"program_id", "program"},
		},
	},
	{
		Name:    "registration",
		Columns: []string{"centre_id", "matric_no", "course_code", "session", "semester"},
		Key:     []string{"matric_no", "course_code", "session", "semester"},
		References: []ForeignKey{
			{"centre_id", "centre"},
			{"matric_no", "student"},
			{"course_code", "course"},
		},
	},
	{
		Name:       "users",
		Columns:    []string{"staff_id", "role_id", "password", "email"},
		Key:        []string{"staff_id"},
		References: []ForeignKey{{"staff_id", "staff"}},
	},
}

// TableNames returns the names of tables, in the given order.
func TableNames(tables []Table) []string {
	names := make([]string, len(tables))
	for i, t := range tables {
		names[i] = t.Name
	}
	return names
}

// DependencyOrder sorts tables so every table follows the tables it references
// (Kahn's algorithm). Ties keep definition order. References to tables outside
// the set are ignored.
func DependencyOrder(tables []Table) ([]Table, error) {
	byName := make(map[string]Table, len(tables))
	inDegree := make(map[string]int, len(tables))
	for _, t := range tables {
		byName[t.Name] = t
		inDegree[t.Name] = 0
	}

	children := make(map[string][]string)
	for _, t := range tables {
		seen := make(map[string]bool)
		for _, fk := range t.References {
			if _, ok := byName[fk.Table]; !ok || fk.Table == t.Name || seen[fk.Table] {
				continue
			}
			seen[fk.Table] = true
			inDegree[t.Name]++
			children[fk.Table] = append(children[fk.Table], t.Name)
		}
	}

	var queue []string
	for _, t := range tables {
		if inDegree[t.Name] == 0 {
			queue = append(queue, t.Name)
		}
	}

	sorted := make([]Table, 0, len(tables))
	for len(queue) > 0 {
		name := queue[0]
		queue = queue[1:]
		sorted = append(sorted, byName[name])
		for _, child := range children[name] {
			inDegree[child]--
			if inDegree[child] == 0 {
				queue = append(queue, child)
			}
		}
	}

	if len(sorted) != len(tables) {
		var stuck []string
		for _, t := range tables {
			if inDegree[t.Name] > 0 {
				stuck = append(stuck, t.Name)
			}
		}
		return nil, fmt.Errorf("%w: %v", ErrCycle, stuck)
	}
	return sorted, nil
}
