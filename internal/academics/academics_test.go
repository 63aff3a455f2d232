package academics

import "testing"

func course(credits float64, grade string, points float64) Course {
	return Course{Code: "CS000", Credits: credits, Grade: grade, GradePoints: points}
}

func TestSemesterGPA(t *testing.T) {
	tests := []struct {
		name    string
		courses []Course
		want    float64
	}{
		{"empty", nil, 0},
		{"single course", []Course{course(4, "O", 10)}, 10},
		{
			"fail grade excluded",
			[]Course{course(4, "O", 10), course(4, "U", 0)},
			10,
		},
		{
			"all failed",
			[]Course{course(4, "U", 0), course(3, "U", 0)},
			0,
		},
		{
			"weighted average",
			[]Course{course(4, "A+", 9), course(2, "B", 7)},
			8.33, // (36+14)/6 = 8.3333 -> 8.33
		},
		{
			"rounds half up",
			[]Course{course(1, "A", 8), course(1, "A+", 9)},
			8.5,
		},
		{
			"inconsistent grade and points trusted as given",
			[]Course{course(3, "O", 0)},
			0,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SemesterGPA(tt.courses); got != tt.want {
				t.Errorf("SemesterGPA = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestOverallCGPAIsCumulativeNotAverageOfGPAs(t *testing.T) {
	semesters := []Semester{
		{Number: 1, Courses: []Course{course(8, "O", 10)}},
		{Number: 2, Courses: []Course{course(4, "A", 8)}},
	}
	// (8*10 + 4*8) / 12 = 9.33, NOT (10+8)/2 = 9.
	if got := OverallCGPA(semesters); got != 9.33 {
		t.Errorf("OverallCGPA = %v, want 9.33", got)
	}
}

func TestOverallCGPAAllFailed(t *testing.T) {
	semesters := []Semester{
		{Number: 1, Courses: []Course{course(4, "U", 0)}},
	}
	if got := OverallCGPA(semesters); got != 0 {
		t.Errorf("OverallCGPA = %v, want 0", got)
	}
}

func TestRecompute(t *testing.T) {
	rec := Record{
		RegisterNo: "21CS042",
		Name:       "Asha",
		Semesters: []Semester{
			{Number: 1, Courses: []Course{course(8, "O", 10)}, GPA: 1.23},
			{Number: 2, Courses: []Course{course(4, "A", 8)}, GPA: 4.56},
		},
		CGPA: 7.89,
	}
	Recompute(&rec)

	if rec.Semesters[0].GPA != 10 {
		t.Errorf("semester 1 GPA = %v, want 10", rec.Semesters[0].GPA)
	}
	if rec.Semesters[1].GPA != 8 {
		t.Errorf("semester 2 GPA = %v, want 8", rec.Semesters[1].GPA)
	}
	if rec.CGPA != 9.33 {
		t.Errorf("CGPA = %v, want 9.33", rec.CGPA)
	}
}

func TestRecomputeEmptySemester(t *testing.T) {
	rec := Record{Semesters: []Semester{{Number: 1}}}
	Recompute(&rec)
	if rec.Semesters[0].GPA != 0 || rec.CGPA != 0 {
		t.Errorf("empty semester GPA/CGPA = %v/%v, want 0/0", rec.Semesters[0].GPA, rec.CGPA)
	}
}

func TestValidGrade(t *testing.T) {
	for _, g := range []string{"O", "A+", "A", "B+", "B", "C", "U"} {
		if !ValidGrade(g) {
			t.Errorf("ValidGrade(%q) = false, want true", g)
		}
	}
	for _, g := range []string{"", "F", "a", "A-", "o"} {
		if ValidGrade(g) {
			t.Errorf("ValidGrade(%q) = true, want false", g)
		}
	}
}

func TestRound2HalfUp(t *testing.T) {
	tests := []struct{ in, want float64 }{
		{8.125, 8.13}, // exact binary half rounds up
		{8.124, 8.12},
		{9.999, 10},
		{0, 0},
	}
	for _, tt := range tests {
		if got := round2(tt.in); got != tt.want {
			t.Errorf("round2(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
