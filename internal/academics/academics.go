package academics

import "math"

// GradeFail is excluded from GPA computation entirely: neither its credits
// nor its grade points enter the weighted average.
const GradeFail = "U"

var validGrades = map[string]bool{
	"O": true, "A+": true, "A": true, "B+": true, "B": true, "C": true, GradeFail: true,
}

// ValidGrade reports whether g is a recognized letter grade.
func ValidGrade(g string) bool {
	return validGrades[g]
}

// Course is one graded course. Credits and GradePoints are trusted as
// given; no cross-check between Grade and GradePoints is attempted.
type Course struct {
	Code        string  `json:"code"`
	Name        string  `json:"name"`
	Credits     float64 `json:"credits"`
	Grade       string  `json:"grade"`
	GradePoints float64 `json:"grade_points"`
}

// Semester is one semester's course list with its derived GPA.
type Semester struct {
	Number  int      `json:"semester"`
	Courses []Course `json:"courses"`
	GPA     float64  `json:"gpa"`
}

// Record is a student's full academic record. It is replaced wholesale on
// every save; Recompute refreshes the derived fields before persisting.
type Record struct {
	RegisterNo string     `json:"register_no"`
	Name       string     `json:"name"`
	Semesters  []Semester `json:"semesters"`
	CGPA       float64    `json:"cgpa"`
}

// SemesterGPA returns the credit-weighted grade-point average of one
// semester's courses, two decimals half-up. Failed (U) courses drop out of
// both sums; zero remaining credits yields 0.
func SemesterGPA(courses []Course) float64 {
	var credits, points float64
	for _, c := range courses {
		if c.Grade == GradeFail {
			continue
		}
		credits += c.Credits
		points += c.Credits * c.GradePoints
	}
	if credits == 0 {
		return 0
	}
	return round2(points / credits)
}

// OverallCGPA applies the same weighted average across every course of
// every semester. This is a cumulative credit-weighted figure, not an
// average of per-semester GPAs.
func OverallCGPA(semesters []Semester) float64 {
	var all []Course
	for _, s := range semesters {
		all = append(all, s.Courses...)
	}
	return SemesterGPA(all)
}

// Recompute refreshes each semester's GPA and then the overall CGPA.
func Recompute(rec *Record) {
	for i := range rec.Semesters {
		rec.Semesters[i].GPA = SemesterGPA(rec.Semesters[i].Courses)
	}
	rec.CGPA = OverallCGPA(rec.Semesters)
}

// round2 rounds half-up to two decimal places.
func round2(v float64) float64 {
	return math.Floor(v*100+0.5) / 100
}
