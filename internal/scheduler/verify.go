package scheduler

import (
	"fmt"

	"github.com/MrJittiPat/Timetable2/internal/models"
)

// ViolationKind names a broken timetable invariant.
type ViolationKind string

const (
	ViolationTeacherClash ViolationKind = "teacher_double_booked"
	ViolationRoomClash    ViolationKind = "room_double_booked"
	ViolationGroupClash   ViolationKind = "group_double_booked"
	ViolationIneligible   ViolationKind = "ineligible_teacher"
	ViolationBreakPeriod  ViolationKind = "break_period_used"
)

// Violation points at the assignment (by position) that broke an invariant.
type Violation struct {
	Kind       ViolationKind     `json:"kind"`
	Index      int               `json:"index"`
	Assignment models.Assignment `json:"assignment"`
	Detail     string            `json:"detail"`
}

// Verify checks a finished assignment sequence. An empty result means the timetable
// has no double bookings, only eligible teachers and nothing in the break period.
// Assignments with timeslots missing from timeslots skip the break check.
func Verify(assignments []models.Assignment, index *EligibilityIndex, timeslots map[string]models.Timeslot, breakPeriod int) []Violation {
	var violations []Violation
	tracker := NewTracker()
	for i, a := range assignments {
		if tracker.teachers.has(a.TeacherID, a.TimeslotID) {
			violations = append(violations, Violation{Kind: ViolationTeacherClash, Index: i, Assignment: a,
				Detail: fmt.Sprintf("teacher %s already teaches at %s", a.TeacherID, a.TimeslotID)})
		}
		if tracker.rooms.has(a.RoomID, a.TimeslotID) {
			violations = append(violations, Violation{Kind: ViolationRoomClash, Index: i, Assignment: a,
				Detail: fmt.Sprintf("room %s already used at %s", a.RoomID, a.TimeslotID)})
		}
		if tracker.groups.has(a.GroupID, a.TimeslotID) {
			violations = append(violations, Violation{Kind: ViolationGroupClash, Index: i, Assignment: a,
				Detail: fmt.Sprintf("group %s already busy at %s", a.GroupID, a.TimeslotID)})
		}
		if !index.Eligible(a.SubjectID, a.TeacherID) {
			violations = append(violations, Violation{Kind: ViolationIneligible, Index: i, Assignment: a,
				Detail: fmt.Sprintf("teacher %s is not eligible for subject %s", a.TeacherID, a.SubjectID)})
		}
		if slot, ok := timeslots[a.TimeslotID]; ok && slot.Period == breakPeriod {
			violations = append(violations, Violation{Kind: ViolationBreakPeriod, Index: i, Assignment: a,
				Detail: fmt.Sprintf("timeslot %s is in break period %d", a.TimeslotID, breakPeriod)})
		}
		tracker.Book(a.TimeslotID, a.TeacherID, a.RoomID, a.GroupID)
	}
	return violations
}
