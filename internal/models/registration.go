package models

// Registration is a row of register.csv: the group must receive the subject's full
// weekly period count.
type Registration struct {
	GroupID   string `json:"group_id"`
	SubjectID string `json:"subject_id"`
}
