package models

// Eligibility is a row of teach.csv: the teacher may teach the subject.
type Eligibility struct {
	SubjectID string `json:"subject_id"`
	TeacherID string `json:"teacher_id"`
}
