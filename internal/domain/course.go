package domain

// GradeInProgress marks a course the student is currently enrolled in.
const GradeInProgress = "In Progress"

// PassingGrades are the only grades that let a completed course into the transcript.
var PassingGrades = []string{"CR", "C-", "C", "C+", "B-", "B", "B+", "A-", "A", "A+"}

func IsPassingGrade(grade string) bool {
	for _, g := range PassingGrades {
		if g == grade {
			return true
		}
	}
	return false
}

type CourseRecord struct {
	Course   string `json:"course"`         // Department code + number, e.g. "CS 156"
	Grade    string `json:"grade"`          // Passing grade or GradeInProgress
	Semester string `json:"semester"`       // Normalized semester label, e.g. "Fall 2023"
	Name     string `json:"name,omitempty"` // Display name when the transcript line carries one
	Units    int    `json:"units,omitempty"`
}

func (r CourseRecord) InProgress() bool {
	return r.Grade == GradeInProgress
}

// Transcript maps a course identifier to the record that counts for it.
// A later occurrence of the same course overwrites the earlier one.
type Transcript map[string]CourseRecord

// Clone returns an independent working copy. Resolution consumes entries
// from the copy, so every resolution pass needs its own.
func (t Transcript) Clone() Transcript {
	out := make(Transcript, len(t))
	for k, v := range t {
		out[k] = v
	}
	return out
}

// AssignUnits fills in credit units from a course->units lookup. Courses
// missing from the lookup keep their current value.
func (t Transcript) AssignUnits(units map[string]int) {
	for course, rec := range t {
		if u, ok := units[course]; ok {
			rec.Units = u
			t[course] = rec
		}
	}
}

// TotalUnits sums the units of every record in the transcript.
func (t Transcript) TotalUnits() int {
	total := 0
	for _, rec := range t {
		total += rec.Units
	}
	return total
}

// ParsedTranscript is everything the text parser extracts from one transcript.
type ParsedTranscript struct {
	Major       string            `json:"major"`
	Courses     Transcript        `json:"courses"`
	SemesterGPA map[string]string `json:"semester_gpa"`
	GPA         string            `json:"gpa"`
}

// EnrollmentRow is one ungraded row of a current-enrollment export.
type EnrollmentRow struct {
	Course      string `json:"course"`
	Term        string `json:"term"`
	Description string `json:"description,omitempty"`
}

// MergeEnrollment adds in-progress rows to the transcript. Rows for courses
// already present are left alone and reported back as skipped.
func (t Transcript) MergeEnrollment(rows []EnrollmentRow) (added, skipped int) {
	for _, row := range rows {
		if _, exists := t[row.Course]; exists {
			skipped++
			continue
		}
		t[row.Course] = CourseRecord{
			Course:   row.Course,
			Grade:    GradeInProgress,
			Semester: row.Term,
			Name:     row.Description,
		}
		added++
	}
	return added, skipped
}
