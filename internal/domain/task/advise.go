package task

// AdviseTask asks a worker to build an advising report for one student.
type AdviseTask struct {
	RequestID      string `json:"request_id"`
	StudentID      string `json:"student_id,omitempty"`
	Transcript     string `json:"transcript"`                // Raw transcript text
	EnrollmentHTML string `json:"enrollment_html,omitempty"` // Optional current-enrollment HTML export
	Major          string `json:"major,omitempty"`           // Overrides the major declared in the transcript
}

const AdviseTaskType = "AdviseTask"

func (t *AdviseTask) TaskType() string {
	return AdviseTaskType
}

func (t *AdviseTask) TaskValue() ([]byte, error) {
	return DefaultTaskValue(t)
}
