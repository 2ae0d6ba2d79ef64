package models

// Timeslot is a row of timeslot.csv. (Day, Period) identifies a slot within the week.
type Timeslot struct {
	ID     string `json:"timeslot_id"`
	Day    string `json:"day"`
	Period int    `json:"period"`
}
