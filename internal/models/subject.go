package models

// Subject is a row of subject.csv. Theory and Practice are period counts per week.
type Subject struct {
	ID       string `json:"subject_id"`
	Name     string `json:"subject_name"`
	Theory   int    `json:"theory"`
	Practice int    `json:"practice"`
	Credit   string `json:"credit"`
}

// TotalPeriods is the number of weekly periods a registration for this subject needs.
func (s Subject) TotalPeriods() int {
	return s.Theory + s.Practice
}
