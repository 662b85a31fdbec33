package importer

import "testing"

func TestSerialFromDate(t *testing.T) {
	tests := []struct {
		in   string
		want int
		ok   bool
	}{
		{"01/01/1900", 1, true},
		{"02/01/1900", 2, true},
		{"28/02/1900", 59, true},
		{"01/03/1900", 61, true},
		{"1900-01-04", 4, true},
		{"31/12/1900", 366, true},
		{"30/02/1900", 0, false},
		{"CS101", 0, false},
		{"", 0, false},
	}
	for _, tt := range tests {
		got, ok := SerialFromDate(tt.in)
		if ok != tt.ok || got != tt.want {
			t.Errorf("SerialFromDate(%q) = %d, %v; want %d, %v", tt.in, got, ok, tt.want, tt.ok)
		}
	}
}

func TestSerialRoundTrip(t *testing.T) {
	for _, n := range []int{1, 2, 31, 59, 61, 100, 365, 4000, 10000} {
		date := DateFromSerial(n)
		got, ok := SerialFromDate(date)
		if !ok || got != n {
			t.Errorf("round trip %d -> %q -> %d (%v)", n, date, got, ok)
		}
	}
	for serial, want := range map[int]int{1: 1, 2: 2} {
		if got := Semester(DateFromSerial(serial)); got != want {
			t.Errorf("Semester(DateFromSerial(%d)) = %d, want %d", serial, got, want)
		}
	}
	if got := DateFromSerial(60); got != "29/02/1900" {
		t.Errorf("DateFromSerial(60) = %q", got)
	}
}

func TestDisguisedInt(t *testing.T) {
	tests := map[string]string{
		"01/01/1900": "1",
		"02/01/1900": "2",
		"04/01/1900": "4",
		"15/06/2024": "15/06/2024",
		"hello":      "hello",
		"3":          "3",
	}
	for in, want := range tests {
		if got := DisguisedInt(in); got != want {
			t.Errorf("DisguisedInt(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestParseInt(t *testing.T) {
	tests := []struct {
		in   string
		want int
		ok   bool
	}{
		{"42", 42, true},
		{" 7 ", 7, true},
		{"3.0", 3, true},
		{"3.5", 0, false},
		{"02/01/1900", 2, true},
		{"", 0, false},
		{"abc", 0, false},
		{"1e12", 0, false},
	}
	for _, tt := range tests {
		got, ok := ParseInt(tt.in)
		if ok != tt.ok || got != tt.want {
			t.Errorf("ParseInt(%q) = %d, %v; want %d, %v", tt.in, got, ok, tt.want, tt.ok)
		}
	}
}

func TestIntDefaults(t *testing.T) {
	if got := Int("", DefaultDuration); got != 4 {
		t.Errorf("blank duration = %d, want 4", got)
	}
	if got := Int("n/a", DefaultUnit); got != 0 {
		t.Errorf("bad unit = %d, want 0", got)
	}
	if got := Int("6", DefaultDuration); got != 6 {
		t.Errorf("duration = %d, want 6", got)
	}
}

func TestSemester(t *testing.T) {
	tests := map[string]int{
		"1":          1,
		"2":          2,
		"01/01/1900": 1,
		"02/01/1900": 2,
		"Second":     2,
		"harmattan":  1,
		"":           DefaultSemester,
		"7":          DefaultSemester,
	}
	for in, want := range tests {
		if got := Semester(in); got != want {
			t.Errorf("Semester(%q) = %d, want %d", in, got, want)
		}
	}
}

func TestTextAndIDs(t *testing.T) {
	if got := Text("  NULL "); got != "" {
		t.Errorf("Text(NULL) = %q", got)
	}
	if got := Text(`\N`); got != "" {
		t.Errorf(`Text(\N) = %q`, got)
	}
	if got := CourseCode(" cs 101 "); got != "CS101" {
		t.Errorf("CourseCode = %q", got)
	}
	if got := PersonID(" ss/2020/01 "); got != "SS/2020/01" {
		t.Errorf("PersonID = %q", got)
	}
	if validPersonID("12345") {
		t.Error("validPersonID accepted an id without '/'")
	}
}
