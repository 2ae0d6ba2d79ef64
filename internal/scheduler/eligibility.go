package scheduler

import "github.com/MrJittiPat/Timetable2/internal/models"

// EligibilityIndex maps a subject to the teachers allowed to teach it, in input order.
type EligibilityIndex struct {
	bySubject map[string][]string
}

// NewEligibilityIndex builds the index in a single pass over the records.
func NewEligibilityIndex(records []models.Eligibility) *EligibilityIndex {
	idx := &EligibilityIndex{bySubject: make(map[string][]string)}
	for _, record := range records {
		idx.bySubject[record.SubjectID] = append(idx.bySubject[record.SubjectID], record.TeacherID)
	}
	return idx
}

// Teachers returns the eligible teachers for the subject. Nil means not schedulable.
func (idx *EligibilityIndex) Teachers(subjectID string) []string {
	if idx == nil {
		return nil
	}
	return idx.bySubject[subjectID]
}

// Eligible reports whether the teacher may teach the subject.
func (idx *EligibilityIndex) Eligible(subjectID, teacherID string) bool {
	for _, candidate := range idx.Teachers(subjectID) {
		if candidate == teacherID {
			return true
		}
	}
	return false
}
