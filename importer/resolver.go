package importer

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/nonsonwune/seedgen/models"
)

// Options control how references are resolved.
type Options struct {
	// Strict fails the run when any reference had to be substituted or dropped.
	Strict bool
	// HashPasswords stores bcrypt hashes instead of plaintext user passwords.
	HashPasswords bool
	BcryptCost    int
}

// Minimum number of columns a data row needs to be considered at all.
var minColumns = map[Section]int{
	SectionCentre:       3,
	SectionDepartment:   4,
	SectionProgram:      4,
	SectionCourse:       3,
	SectionVenue:        3,
	SectionStaff:        3,
	SectionStudent:      3,
	SectionRegistration: 3,
	SectionUsers:        2,
}

// idSet is the set of accepted ids of one parent table and its first-seen member.
type idSet struct {
	first int
	ok    bool
	ids   map[int]bool
}

func newIDSet() *idSet {
	return &idSet{ids: make(map[int]bool)}
}

func (s *idSet) add(id int) {
	if !s.ok {
		s.first, s.ok = id, true
	}
	s.ids[id] = true
}

func (s *idSet) has(id int) bool {
	return s.ids[id]
}

type resolver struct {
	opts   Options
	report *Report
	log    zerolog.Logger
	data   *models.Dataset

	centres     *idSet
	departments *idSet
	programs    *idSet
	deptCollege map[int]int
	programDept map[int]int

	courses  map[string]bool
	staff    map[string]bool
	students map[string]int // matric number -> department id

	unresolved []error
}

func newResolver(opts Options, report *Report, lgr zerolog.Logger) *resolver {
	if opts.BcryptCost == 0 {
		opts.BcryptCost = bcrypt.DefaultCost
	}
	return &resolver{
		opts:        opts,
		report:      report,
		log:         lgr,
		data:        &models.Dataset{},
		centres:     newIDSet(),
		departments: newIDSet(),
		programs:    newIDSet(),
		deptCollege: make(map[int]int),
		programDept: make(map[int]int),
		courses:     make(map[string]bool),
		staff:       make(map[string]bool),
		students:    make(map[string]int),
	}
}

// run resolves every section in dependency order. Registrations and users come last,
// so they are checked against the complete student, course and staff sets.
func (r *resolver) run(ctx context.Context, sections map[Section][]Record) error {
	for _, section := range DataSections {
		if err := ctx.Err(); err != nil {
			return err
		}
		st := r.report.Stats(section)
		for _, rec := range sections[section] {
			st.Rows++
			if r.accept(section, rec) {
				st.Accepted++
			}
		}
	}

	if r.opts.Strict && len(r.unresolved) > 0 {
		return &ResolveError{Count: len(r.unresolved), Err: errors.Join(r.unresolved...)}
	}
	return nil
}

func (r *resolver) accept(section Section, rec Record) bool {
	if len(rec.Fields) < minColumns[section] {
		r.reject(rec, malformed(rec.Line, section, "", "",
			fmt.Sprintf("expected at least %d columns, got %d", minColumns[section], len(rec.Fields))))
		return false
	}

	switch section {
	case SectionCentre:
		return r.centre(rec)
	case SectionDepartment:
		return r.department(rec)
	case SectionProgram:
		return r.program(rec)
	case SectionCourse:
		return r.course(rec)
	case SectionVenue:
		return r.venue(rec)
	case SectionStaff:
		return r.staffMember(rec)
	case SectionStudent:
		return r.student(rec)
	case SectionRegistration:
		return r.registration(rec)
	case SectionUsers:
		return r.user(rec)
	}
	return false
}

func (r *resolver) reject(rec Record, e *RowError) {
	r.report.record(e, &rec)
	switch e.Code {
	case CodeFallback, CodeUnresolved, CodeNoParent:
		r.unresolved = append(r.unresolved, e)
	}
	r.log.Debug().
		Int("line", e.Line).
		Str("section", e.Section.String()).
		Str("code", e.Code).
		Str("field", e.Field).
		Str("value", e.Value).
		Msg(e.Message)
}

// id parses a mandatory numeric primary key.
func (r *resolver) id(rec Record, section Section, field string, idx int) (int, bool) {
	raw := rec.Field(idx)
	id, ok := ParseInt(raw)
	if !ok {
		r.reject(rec, malformed(rec.Line, section, field, raw, "not a number"))
	}
	return id, ok
}

// parent resolves a claimed parent id. An unknown or non-numeric claim is replaced by
// the first accepted id of the parent table; a blank claim may first be derived from
// a lookup map. ok is false only when the parent table has no accepted ids at all.
func (r *resolver) parent(rec Record, section Section, field string, idx int, set *idSet, derive func() (int, bool)) (int, bool) {
	raw := rec.Field(idx)
	if id, ok := ParseInt(raw); ok && set.has(id) {
		return id, true
	}
	if raw == "" && derive != nil {
		if id, ok := derive(); ok && set.has(id) {
			return id, true
		}
	}

	if !set.ok {
		r.reject(rec, &RowError{
			Line: rec.Line, Section: section, Code: CodeNoParent, Field: field, Value: raw,
			Message: "no accepted " + field + " to fall back to",
		})
		return 0, false
	}

	r.reject(rec, &RowError{
		Line: rec.Line, Section: section, Code: CodeFallback, Field: field, Value: raw,
		Message: fmt.Sprintf("unknown %s, using %d", field, set.first),
	})
	return set.first, true
}

func (r *resolver) duplicate(rec Record, section Section, field, key string) {
	r.reject(rec, &RowError{
		Line: rec.Line, Section: section, Code: CodeDuplicate, Field: field, Value: key,
		Message: "already seen, keeping first occurrence",
	})
}

func (r *resolver) centre(rec Record) bool {
	id, ok := r.id(rec, SectionCentre, "id", 0)
	if !ok {
		return false
	}

	r.data.Centres = append(r.data.Centres, models.Centre{
		ID:      id,
		Code:    Text(rec.Field(1)),
		Name:    Text(rec.Field(2)),
		Type:    Text(rec.Field(3)),
		Encount: Int(rec.Field(4), DefaultEncount),
	})
	r.centres.add(id)
	return true
}

func (r *resolver) department(rec Record) bool {
	id, ok := r.id(rec, SectionDepartment, "id", 0)
	if !ok {
		return false
	}
	college, ok := r.parent(rec, SectionDepartment, "college_id", 1, r.centres, nil)
	if !ok {
		return false
	}

	r.data.Departments = append(r.data.Departments, models.Department{
		ID:        id,
		CollegeID: college,
		Code:      Text(rec.Field(2)),
		Name:      Text(rec.Field(3)),
	})
	r.departments.add(id)
	if _, seen := r.deptCollege[id]; !seen {
		r.deptCollege[id] = college
	}
	return true
}

func (r *resolver) program(rec Record) bool {
	id, ok := r.id(rec, SectionProgram, "id", 0)
	if !ok {
		return false
	}
	dept, ok := r.parent(rec, SectionProgram, "dept_id", 1, r.departments, nil)
	if !ok {
		return false
	}

	r.data.Programs = append(r.data.Programs, models.Program{
		ID:                   id,
		DeptID:               dept,
		Code:                 Text(rec.Field(2)),
		Name:                 Text(rec.Field(3)),
		Duration:             Int(rec.Field(4), DefaultDuration),
		TotalCompulsoryUnits: Int(rec.Field(5), DefaultUnit),
		TotalElectiveUnits:   Int(rec.Field(6), DefaultUnit),
	})
	r.programs.add(id)
	if _, seen := r.programDept[id]; !seen {
		r.programDept[id] = dept
	}
	return true
}

func (r *resolver) course(rec Record) bool {
	code := CourseCode(rec.Field(1))
	if code == "" {
		r.reject(rec, malformed(rec.Line, SectionCourse, "code", rec.Field(1), "missing course code"))
		return false
	}
	if r.courses[code] {
		r.duplicate(rec, SectionCourse, "code", code)
		return false
	}

	r.data.Courses = append(r.data.Courses, models.Course{
		Code:     code,
		Title:    Text(rec.Field(2)),
		Semester: Semester(rec.Field(3)),
		Unit:     Int(rec.Field(4), DefaultUnit),
		ExamType: Text(rec.Field(5)),
	})
	r.courses[code] = true
	return true
}

func (r *resolver) venue(rec Record) bool {
	id, ok := r.id(rec, SectionVenue, "id", 0)
	if !ok {
		return false
	}

	r.data.Venues = append(r.data.Venues, models.Venue{
		ID:         id,
		Code:       Text(rec.Field(1)),
		Name:       Text(rec.Field(2)),
		Capacity:   Int(rec.Field(3), DefaultCapacity),
		Type:       Text(rec.Field(4)),
		Preference: Int(rec.Field(5), DefaultPreference),
	})
	return true
}

func (r *resolver) staffMember(rec Record) bool {
	staffID := PersonID(rec.Field(0))
	if !validPersonID(staffID) {
		r.reject(rec, malformed(rec.Line, SectionStaff, "staff_id", rec.Field(0), "staff id must contain '/'"))
		return false
	}
	if r.staff[staffID] {
		r.duplicate(rec, SectionStaff, "staff_id", staffID)
		return false
	}
	dept, ok := r.parent(rec, SectionStaff, "dept_id", 5, r.departments, nil)
	if !ok {
		return false
	}

	r.data.Staff = append(r.data.Staff, models.Staff{
		StaffID:    staffID,
		Title:      Text(rec.Field(1)),
		Surname:    Text(rec.Field(2)),
		FirstName:  Text(rec.Field(3)),
		MiddleName: Text(rec.Field(4)),
		DeptID:     dept,
	})
	r.staff[staffID] = true
	return true
}

func (r *resolver) student(rec Record) bool {
	matric := PersonID(rec.Field(0))
	if !validPersonID(matric) {
		r.reject(rec, malformed(rec.Line, SectionStudent, "matric_no", rec.Field(0), "matric number must contain '/'"))
		return false
	}
	if _, seen := r.students[matric]; seen {
		r.duplicate(rec, SectionStudent, "matric_no", matric)
		return false
	}
	program, ok := r.parent(rec, SectionStudent, "program_id", 5, r.programs, nil)
	if !ok {
		return false
	}
	dept, ok := r.parent(rec, SectionStudent, "dept_id", 4, r.departments, func() (int, bool) {
		d, found := r.programDept[program]
		return d, found
	})
	if !ok {
		return false
	}

	r.data.Students = append(r.data.Students, models.Student{
		MatricNo:   matric,
		Surname:    Text(rec.Field(1)),
		FirstName:  Text(rec.Field(2)),
		MiddleName: Text(rec.Field(3)),
		DeptID:     dept,
		ProgramID:  program,
		Level:      Int(rec.Field(6), DefaultLevel),
	})
	r.students[matric] = dept
	return true
}

func (r *resolver) registration(rec Record) bool {
	matric := PersonID(rec.Field(1))
	code := CourseCode(rec.Field(2))

	dept, known := r.students[matric]
	if !known {
		r.reject(rec, &RowError{
			Line: rec.Line, Section: SectionRegistration, Code: CodeUnresolved,
			Field: "matric_no", Value: matric, Message: "student not accepted",
		})
		return false
	}
	if !r.courses[code] {
		r.reject(rec, &RowError{
			Line: rec.Line, Section: SectionRegistration, Code: CodeUnresolved,
			Field: "course_code", Value: code, Message: "course not accepted",
		})
		return false
	}
	centre, ok := r.parent(rec, SectionRegistration, "centre_id", 0, r.centres, func() (int, bool) {
		c, found := r.deptCollege[dept]
		return c, found
	})
	if !ok {
		return false
	}

	r.data.Registrations = append(r.data.Registrations, models.Registration{
		CentreID:   centre,
		MatricNo:   matric,
		CourseCode: code,
		Session:    Text(rec.Field(3)),
		Semester:   Semester(rec.Field(4)),
	})
	return true
}

func (r *resolver) user(rec Record) bool {
	staffID := PersonID(rec.Field(0))
	if !r.staff[staffID] {
		r.reject(rec, &RowError{
			Line: rec.Line, Section: SectionUsers, Code: CodeUnresolved,
			Field: "staff_id", Value: staffID, Message: "staff member not accepted",
		})
		return false
	}

	password := Text(rec.Field(2))
	if r.opts.HashPasswords {
		if password == "" {
			password = staffID
		}
		hashed, err := bcrypt.GenerateFromPassword([]byte(password), r.opts.BcryptCost)
		if err != nil {
			r.reject(rec, malformed(rec.Line, SectionUsers, "password", "", "cannot hash password: "+err.Error()))
			return false
		}
		password = string(hashed)
	}

	r.data.Users = append(r.data.Users, models.User{
		StaffID:  staffID,
		RoleID:   Int(rec.Field(1), DefaultRole),
		Password: password,
		Email:    Text(rec.Field(3)),
	})
	return true
}
