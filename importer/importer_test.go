package importer

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"
)

const sampleExport = `Timetable export
id,code,name,type,encount
1,COS,College of Science,college,0
2,COE,College of Engineering,college,0
id,college_id,code,name
10,1,CSC,Computer Science
11,99,MTH,Mathematics
12,x,PHY,Physics
abc,1,BAD,Bad Department
id,dept_id,code,name,duration,total_compulsory_units,total_elective_units
100,10,BSC-CSC,BSc Computer Science,,120,30
101,55,BSC-MTH,BSc Mathematics,5,,
id,code,title,semester,unit,exam_type
1,CS101,"Intro to CS",01/01/1900,03/01/1900,written
2,cs 102,"Data, Structures",02/01/1900,3,cbt
3,CS101,Duplicate,1,2,written
id,code,name,capacity,type,preference
1,LT1,Lecture Theatre 1,500,hall,1
staff_id,title,surname,first_name,middle_name,dept_id
SS/001,Dr,Ade,Bola,,10
SS/001,Dr,Ade,Bola,,10
12345,Mr,No,Slash,,10
matric_no,surname,first_name,middle_name,dept_id,program_id,level
CSC/2020/001,Okafor,Chi,,,100,200
MTH/2020/002,Bello,Ade,,11,999,
centre_id,matric_no,course_code,session,semester
,CSC/2020/001,CS101,2024/2025,1
2,csc/2020/001,CS102,2024/2025,2
1,NOPE/1,CS101,2024/2025,1
1,CSC/2020/001,XX999,2024/2025,1
staffid,roleid,password,email
SS/001,1,secret,ade@example.com
SS/999,2,x,ghost@example.com
Optimization Settings
parameter,value
population_size,100
END
`

func importString(t *testing.T, opts Options, src string) (*Report, error) {
	t.Helper()
	_, report, err := New(opts, zerolog.Nop()).Import(context.Background(), strings.NewReader(src), "test.csv")
	return report, err
}

func TestImportSample(t *testing.T) {
	data, report, err := New(Options{}, zerolog.Nop()).Import(context.Background(), strings.NewReader(sampleExport), "test.csv")
	if err != nil {
		t.Fatalf("Import: %v", err)
	}
	if report.RunID == "" {
		t.Error("report has no run id")
	}

	if len(data.Centres) != 2 {
		t.Fatalf("centres = %d, want 2", len(data.Centres))
	}

	if len(data.Departments) != 3 {
		t.Fatalf("departments = %d, want 3", len(data.Departments))
	}
	if got := data.Departments[1].CollegeID; got != 1 {
		t.Errorf("department with unknown college 99 got college %d, want first centre 1", got)
	}
	if got := data.Departments[2].CollegeID; got != 1 {
		t.Errorf("department with non-numeric college got %d, want 1", got)
	}

	if len(data.Programs) != 2 {
		t.Fatalf("programs = %d, want 2", len(data.Programs))
	}
	if p := data.Programs[0]; p.Duration != DefaultDuration || p.TotalCompulsoryUnits != 120 {
		t.Errorf("program 100 = %+v", p)
	}
	if p := data.Programs[1]; p.DeptID != 10 || p.Duration != 5 || p.TotalElectiveUnits != 0 {
		t.Errorf("program 101 = %+v", p)
	}

	if len(data.Courses) != 2 {
		t.Fatalf("courses = %d, want 2", len(data.Courses))
	}
	if c := data.Courses[0]; c.Code != "CS101" || c.Semester != 1 || c.Unit != 3 || c.Title != "Intro to CS" {
		t.Errorf("course 0 = %+v", c)
	}
	if c := data.Courses[1]; c.Code != "CS102" || c.Semester != 2 || c.Title != "Data, Structures" {
		t.Errorf("course 1 = %+v", c)
	}

	if len(data.Venues) != 1 || data.Venues[0].Capacity != 500 {
		t.Errorf("venues = %+v", data.Venues)
	}

	if len(data.Staff) != 1 || data.Staff[0].StaffID != "SS/001" {
		t.Errorf("staff = %+v", data.Staff)
	}

	if len(data.Students) != 2 {
		t.Fatalf("students = %d, want 2", len(data.Students))
	}
	if s := data.Students[0]; s.DeptID != 10 || s.ProgramID != 100 || s.Level != 200 {
		t.Errorf("student 0 = %+v", s)
	}
	if s := data.Students[1]; s.DeptID != 11 || s.ProgramID != 100 || s.Level != DefaultLevel {
		t.Errorf("student 1 = %+v", s)
	}

	if len(data.Registrations) != 2 {
		t.Fatalf("registrations = %d, want 2", len(data.Registrations))
	}
	if r := data.Registrations[0]; r.CentreID != 1 || r.CourseCode != "CS101" || r.Session != "2024/2025" {
		t.Errorf("registration 0 = %+v", r)
	}
	if r := data.Registrations[1]; r.CentreID != 2 || r.MatricNo != "CSC/2020/001" || r.Semester != 2 {
		t.Errorf("registration 1 = %+v", r)
	}

	if len(data.Users) != 1 || data.Users[0].Password != "secret" || data.Users[0].RoleID != 1 {
		t.Errorf("users = %+v", data.Users)
	}
}

func TestImportReport(t *testing.T) {
	report, err := importString(t, Options{}, sampleExport)
	if err != nil {
		t.Fatalf("Import: %v", err)
	}

	tests := []struct {
		section Section
		want    SectionStats
	}{
		{SectionCentre, SectionStats{Rows: 2, Accepted: 2}},
		{SectionDepartment, SectionStats{Rows: 4, Accepted: 3, Malformed: 1, Fallbacks: 2}},
		{SectionProgram, SectionStats{Rows: 2, Accepted: 2, Fallbacks: 1}},
		{SectionCourse, SectionStats{Rows: 3, Accepted: 2, Duplicates: 1}},
		{SectionVenue, SectionStats{Rows: 1, Accepted: 1}},
		{SectionStaff, SectionStats{Rows: 3, Accepted: 1, Malformed: 1, Duplicates: 1}},
		{SectionStudent, SectionStats{Rows: 2, Accepted: 2, Fallbacks: 1}},
		{SectionRegistration, SectionStats{Rows: 4, Accepted: 2, Dropped: 2}},
		{SectionUsers, SectionStats{Rows: 2, Accepted: 1, Dropped: 1}},
	}
	for _, tt := range tests {
		if got := *report.Stats(tt.section); got != tt.want {
			t.Errorf("%s stats = %+v, want %+v", tt.section, got, tt.want)
		}
	}

	if report.Skipped != 1 || report.AfterStop != 0 || report.Unsectioned != 0 {
		t.Errorf("skipped=%d afterStop=%d unsectioned=%d", report.Skipped, report.AfterStop, report.Unsectioned)
	}

	codes := report.IssuesByCode()
	if codes[CodeFallback] != 4 || codes[CodeUnresolved] != 3 || codes[CodeDuplicate] != 2 || codes[CodeMalformed] != 2 {
		t.Errorf("issues by code = %v", codes)
	}

	var buf bytes.Buffer
	if err := report.WriteIssues(&buf); err != nil {
		t.Fatalf("WriteIssues: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != len(report.Issues)+1 {
		t.Errorf("rejects csv has %d lines, want %d", len(lines), len(report.Issues)+1)
	}
	if !strings.HasPrefix(lines[0], "line,section,code") {
		t.Errorf("rejects header = %q", lines[0])
	}
}

func TestImportStrict(t *testing.T) {
	_, err := importString(t, Options{Strict: true}, sampleExport)
	var resolveErr *ResolveError
	if !errors.As(err, &resolveErr) {
		t.Fatalf("expected *ResolveError, got %v", err)
	}
	if resolveErr.Count != 7 {
		t.Errorf("unresolved count = %d, want 7", resolveErr.Count)
	}
	var rowErr *RowError
	if !errors.As(err, &rowErr) || rowErr.Section != SectionDepartment {
		t.Errorf("first row error = %v", rowErr)
	}
}

func TestImportNoParent(t *testing.T) {
	src := `staff_id,title,surname,first_name,middle_name,dept_id
SS/001,Dr,Ade,Bola,,10
staffid,roleid,password,email
SS/001,1,secret,ade@example.com
`
	report, err := importString(t, Options{}, src)
	if err != nil {
		t.Fatalf("Import: %v", err)
	}
	if st := report.Stats(SectionStaff); st.Accepted != 0 || st.Dropped != 1 {
		t.Errorf("staff stats = %+v", st)
	}
	if st := report.Stats(SectionUsers); st.Accepted != 0 || st.Dropped != 1 {
		t.Errorf("users stats = %+v", st)
	}
	if report.IssuesByCode()[CodeNoParent] != 1 {
		t.Errorf("issues = %+v", report.Issues)
	}
}

func TestImportHashPasswords(t *testing.T) {
	src := `id,code,name
1,COS,College of Science
id,college_id,code,name
10,1,CSC,Computer Science
staff_id,title,surname,first_name,middle_name,dept_id
SS/001,Dr,Ade,Bola,,10
SS/002,Mr,Obi,Ken,,10
staffid,roleid,password,email
SS/001,1,secret,ade@example.com
SS/002,2,,obi@example.com
`
	data, _, err := New(Options{HashPasswords: true, BcryptCost: bcrypt.MinCost}, zerolog.Nop()).
		Import(context.Background(), strings.NewReader(src), "test.csv")
	if err != nil {
		t.Fatalf("Import: %v", err)
	}
	if len(data.Users) != 2 {
		t.Fatalf("users = %d, want 2", len(data.Users))
	}
	if err := bcrypt.CompareHashAndPassword([]byte(data.Users[0].Password), []byte("secret")); err != nil {
		t.Errorf("user 0 password: %v", err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(data.Users[1].Password), []byte("SS/002")); err != nil {
		t.Errorf("blank password should default to staff id: %v", err)
	}
}

func TestImportShortRows(t *testing.T) {
	src := `id,code,name
1,COS
2,COE,College of Engineering
`
	report, err := importString(t, Options{}, src)
	if err != nil {
		t.Fatalf("Import: %v", err)
	}
	if st := report.Stats(SectionCentre); st.Accepted != 1 || st.Malformed != 1 {
		t.Errorf("centre stats = %+v", st)
	}
}

func TestImportErrors(t *testing.T) {
	data, report, err := New(Options{}, zerolog.Nop()).Import(context.Background(), strings.NewReader("\n  \n"), "empty.csv")
	if err != nil {
		t.Errorf("empty source: %v", err)
	}
	if data == nil || len(data.Centres) != 0 || report.Records != 0 {
		t.Errorf("empty source: data=%+v records=%d", data, report.Records)
	}

	_, _, err = New(Options{}, zerolog.Nop()).ImportFile(context.Background(), filepath.Join(t.TempDir(), "missing.csv"))
	if !errors.Is(err, ErrSourceNotFound) {
		t.Errorf("missing file: got %v, want ErrSourceNotFound", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, _, err := New(Options{}, zerolog.Nop()).Import(ctx, strings.NewReader(sampleExport), "x"); !errors.Is(err, context.Canceled) {
		t.Errorf("cancelled context: got %v", err)
	}
}

func TestLocateSource(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"notes.csv", "timetable_data_b.csv", "timetable_data_a.csv"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	got, err := LocateSource(dir, []string{"timetable_data*.csv", "*.csv"})
	if err != nil {
		t.Fatalf("LocateSource: %v", err)
	}
	if filepath.Base(got) != "timetable_data_a.csv" {
		t.Errorf("located %s", got)
	}

	if _, err := LocateSource(dir, []string{"*.xlsx"}); !errors.Is(err, ErrSourceNotFound) {
		t.Errorf("no match: got %v", err)
	}
	if _, err := LocateSource(filepath.Join(dir, "nope"), []string{"*.csv"}); !errors.Is(err, ErrSourceNotFound) {
		t.Errorf("missing dir: got %v", err)
	}
}

func TestReadRecordsBOMAndLines(t *testing.T) {
	src := "\ufeffid,code,name\n\n1,\"A, B\",C\n"
	records, rejected, err := ReadRecords(strings.NewReader(src))
	if err != nil {
		t.Fatalf("ReadRecords: %v", err)
	}
	if len(rejected) != 0 {
		t.Errorf("rejected = %v", rejected)
	}
	if len(records) != 2 {
		t.Fatalf("records = %d, want 2", len(records))
	}
	if records[0].Fields[0] != "id" {
		t.Errorf("BOM not stripped: %q", records[0].Fields[0])
	}
	if records[1].Line != 3 || records[1].Field(1) != "A, B" {
		t.Errorf("record 1 = %+v", records[1])
	}
}

func TestReadRecordsBadQuoteIsolated(t *testing.T) {
	src := `id,code,title,semester,unit,exam_type
1,CS101,"Intro to CS,01/01/1900,3,written
2,CS102,Data Structures,2,3,written
3,CS103,Networks,1,3,cbt
staff_id,title,surname,first_name,middle_name,dept_id
SS/001,Dr,Ade,Bola,,10
`
	records, rejected, err := ReadRecords(strings.NewReader(src))
	if err != nil {
		t.Fatalf("ReadRecords: %v", err)
	}
	if len(rejected) != 1 || rejected[0].Line != 2 || rejected[0].Code != CodeMalformed {
		t.Fatalf("rejected = %v", rejected)
	}
	if len(records) != 5 {
		t.Fatalf("records = %d, want 5", len(records))
	}
	if records[4].Line != 6 || records[4].Field(0) != "SS/001" {
		t.Errorf("last record = %+v", records[4])
	}
}

func TestImportBadQuoteKeepsLaterSections(t *testing.T) {
	src := `id,code,name
1,COS,College of Science
id,college_id,code,name
10,1,CSC,Computer Science
id,code,title,semester,unit,exam_type
1,CS101,"Intro to CS,01/01/1900,3,written
2,CS102,Data Structures,2,3,written
3,CS103,Networks,1,3,cbt
staff_id,title,surname,first_name,middle_name,dept_id
SS/001,Dr,Ade,Bola,,10
`
	data, report, err := New(Options{}, zerolog.Nop()).Import(context.Background(), strings.NewReader(src), "test.csv")
	if err != nil {
		t.Fatalf("Import: %v", err)
	}
	if len(data.Courses) != 2 || data.Courses[0].Code != "CS102" {
		t.Errorf("courses = %+v", data.Courses)
	}
	if len(data.Staff) != 1 {
		t.Errorf("staff = %+v", data.Staff)
	}
	if report.Unreadable != 1 || report.IssuesByCode()[CodeMalformed] != 1 {
		t.Errorf("unreadable=%d issues=%+v", report.Unreadable, report.Issues)
	}
	if report.Issues[0].Line != 6 {
		t.Errorf("issue line = %d, want 6", report.Issues[0].Line)
	}
}

func TestImportDuplicateMatricKeepsFirst(t *testing.T) {
	src := `id,code,name
1,COS,College of Science
id,college_id,code,name
10,1,CSC,Computer Science
id,dept_id,code,name
100,10,BSC-CSC,BSc Computer Science
matric_no,surname,first_name,middle_name,dept_id,program_id,level
A/1,First,Student,,10,100,100
a/1,Second,Student,,10,100,200
`
	data, report, err := New(Options{}, zerolog.Nop()).Import(context.Background(), strings.NewReader(src), "test.csv")
	if err != nil {
		t.Fatalf("Import: %v", err)
	}
	if len(data.Students) != 1 || data.Students[0].Surname != "First" || data.Students[0].MatricNo != "A/1" {
		t.Errorf("students = %+v", data.Students)
	}
	if st := report.Stats(SectionStudent); st.Duplicates != 1 {
		t.Errorf("student stats = %+v", st)
	}
}

func TestImportStudentDeptBlankVersusInvalid(t *testing.T) {
	src := `id,code,name
1,COS,College of Science
id,college_id,code,name
10,1,CSC,Computer Science
11,1,MTH,Mathematics
id,dept_id,code,name
100,11,BSC-MTH,BSc Mathematics
matric_no,surname,first_name,middle_name,dept_id,program_id,level
MTH/1,Blank,Dept,,,100,100
MTH/2,Invalid,Dept,,77,100,100
`
	data, report, err := New(Options{}, zerolog.Nop()).Import(context.Background(), strings.NewReader(src), "test.csv")
	if err != nil {
		t.Fatalf("Import: %v", err)
	}
	if len(data.Students) != 2 {
		t.Fatalf("students = %+v", data.Students)
	}
	// A blank dept comes from the program, an invalid one falls back to the first department.
	if got := data.Students[0].DeptID; got != 11 {
		t.Errorf("blank dept resolved to %d, want 11", got)
	}
	if got := data.Students[1].DeptID; got != 10 {
		t.Errorf("invalid dept resolved to %d, want 10", got)
	}
	if st := report.Stats(SectionStudent); st.Fallbacks != 1 {
		t.Errorf("student stats = %+v", st)
	}
}
