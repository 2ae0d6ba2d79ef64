package models

// AdvisorPlaceholder is shown when a group has no advisor recorded.
const AdvisorPlaceholder = "-"

// StudentGroup is a row of student_group.csv.
type StudentGroup struct {
	ID      string `json:"group_id"`
	Name    string `json:"group_name"`
	Advisor string `json:"advisor"`
}

// DisplayName falls back to the identifier when the name column is blank.
func (g StudentGroup) DisplayName() string {
	if g.Name == "" {
		return g.ID
	}
	return g.Name
}

// AdvisorKey returns the advisor teacher id or the placeholder when absent.
func (g StudentGroup) AdvisorKey() string {
	if g.Advisor == "" {
		return AdvisorPlaceholder
	}
	return g.Advisor
}
