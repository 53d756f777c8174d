package domain

import "time"

type ReportStatus string

const (
	ReportStatusQueued ReportStatus = "queued"
	ReportStatusDone   ReportStatus = "done"
	ReportStatusFailed ReportStatus = "failed"
)

// AdvisingReport is a finished (or failed) advising run for one student.
type AdvisingReport struct {
	ID             string            `json:"id"`
	StudentID      string            `json:"student_id,omitempty"`
	Major          string            `json:"major"`
	GPA            string            `json:"gpa"`
	SemesterGPA    map[string]string `json:"semester_gpa,omitempty"`
	Recommendation *Recommendation   `json:"recommendation,omitempty"`
	Text           string            `json:"text"`
	Status         ReportStatus      `json:"status"`
	Error          string            `json:"error,omitempty"`
	CreatedAt      time.Time         `json:"created_at"`
}
