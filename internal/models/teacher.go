package models

// Teacher is a row of teacher.csv.
type Teacher struct {
	ID   string `json:"teacher_id"`
	Name string `json:"teacher_name"`
}

// DisplayName falls back to the identifier when the name column is blank.
func (t Teacher) DisplayName() string {
	if t.Name == "" {
		return t.ID
	}
	return t.Name
}
