package models

// Catalog holds every input table of one engine run. It is immutable once loaded.
type Catalog struct {
	Teachers      []Teacher
	Rooms         []Room
	Groups        []StudentGroup
	Subjects      []Subject
	Eligibilities []Eligibility
	Timeslots     []Timeslot
	Registrations []Registration
	// Fingerprint is a digest of the raw input files the catalog was read from.
	Fingerprint string
}

// SubjectsByID indexes subjects by identifier. Later rows win on duplicate ids.
func (c *Catalog) SubjectsByID() map[string]Subject {
	result := make(map[string]Subject, len(c.Subjects))
	for _, subject := range c.Subjects {
		result[subject.ID] = subject
	}
	return result
}

// TimeslotsByID indexes timeslots by identifier.
func (c *Catalog) TimeslotsByID() map[string]Timeslot {
	result := make(map[string]Timeslot, len(c.Timeslots))
	for _, slot := range c.Timeslots {
		result[slot.ID] = slot
	}
	return result
}
