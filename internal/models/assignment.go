package models

// AssignmentHeaders is the fixed column order of the exported schedule.
var AssignmentHeaders = []string{"group_id", "timeslot_id", "subject_id", "teacher_id", "room_id"}

// Assignment is one occupied period of the produced timetable.
type Assignment struct {
	GroupID    string `json:"group_id"`
	TimeslotID string `json:"timeslot_id"`
	SubjectID  string `json:"subject_id"`
	TeacherID  string `json:"teacher_id"`
	RoomID     string `json:"room_id"`
}

// Row returns the assignment keyed by column name.
func (a Assignment) Row() map[string]string {
	return map[string]string{
		"group_id":    a.GroupID,
		"timeslot_id": a.TimeslotID,
		"subject_id":  a.SubjectID,
		"teacher_id":  a.TeacherID,
		"room_id":     a.RoomID,
	}
}
