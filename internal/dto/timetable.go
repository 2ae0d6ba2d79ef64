package dto

// TimetableKind names the entity a timetable view is keyed by.
type TimetableKind string

const (
	KindGroups   TimetableKind = "groups"
	KindTeachers TimetableKind = "teachers"
	KindRooms    TimetableKind = "rooms"
)

// Valid reports whether k is one of the three view kinds.
func (k TimetableKind) Valid() bool {
	switch k {
	case KindGroups, KindTeachers, KindRooms:
		return true
	}
	return false
}

// Cell is one occupied period as shown in a grid.
type Cell struct {
	TimeslotID  string `json:"timeslotId"`
	GroupID     string `json:"groupId"`
	GroupName   string `json:"groupName"`
	SubjectID   string `json:"subjectId"`
	SubjectName string `json:"subjectName"`
	TeacherID   string `json:"teacherId"`
	TeacherName string `json:"teacherName"`
	RoomID      string `json:"roomId"`
	RoomName    string `json:"roomName"`
}

// Grid maps day to period to the cell scheduled there.
type Grid map[string]map[int]Cell

// GroupInfo is the lookup entry for a student group.
type GroupInfo struct {
	Name    string `json:"name"`
	Advisor string `json:"advisor"`
}

// SubjectInfo is the lookup entry for a subject.
type SubjectInfo struct {
	Name     string `json:"name"`
	Theory   int    `json:"theory"`
	Practice int    `json:"practice"`
	Credit   string `json:"credit"`
}

// Lookups resolves identifiers to display values.
type Lookups struct {
	Teachers map[string]string      `json:"teachers"`
	Rooms    map[string]string      `json:"rooms"`
	Groups   map[string]GroupInfo   `json:"groups"`
	Subjects map[string]SubjectInfo `json:"subjects"`
}

// TimetableViews is the full dashboard payload: every grid of every kind.
type TimetableViews struct {
	Run         RunSummary      `json:"run"`
	Days        []string        `json:"days"`
	Periods     []int           `json:"periods"`
	BreakPeriod int             `json:"breakPeriod"`
	Groups      map[string]Grid `json:"groups"`
	Teachers    map[string]Grid `json:"teachers"`
	Rooms       map[string]Grid `json:"rooms"`
	GroupIDs    []string        `json:"groupIds"`
	TeacherIDs  []string        `json:"teacherIds"`
	RoomIDs     []string        `json:"roomIds"`
	Lookups     Lookups         `json:"lookups"`
}

// EntityTimetable is the grid of a single group, teacher or room.
type EntityTimetable struct {
	Kind        TimetableKind `json:"kind"`
	ID          string        `json:"id"`
	Name        string        `json:"name"`
	Advisor     string        `json:"advisor,omitempty"`
	Days        []string      `json:"days"`
	Periods     []int         `json:"periods"`
	BreakPeriod int           `json:"breakPeriod"`
	Grid        Grid          `json:"grid"`
	RunID       string        `json:"runId"`
}

// TimetableExportQuery selects the rendering of an entity grid.
type TimetableExportQuery struct {
	Format string `form:"format" binding:"omitempty,oneof=pdf csv"`
}
