package scheduler

type slotKey struct {
	Resource string
	Timeslot string
}

type occupancy map[slotKey]struct{}

func (o occupancy) has(resource, timeslot string) bool {
	_, ok := o[slotKey{Resource: resource, Timeslot: timeslot}]
	return ok
}

func (o occupancy) add(resource, timeslot string) {
	o[slotKey{Resource: resource, Timeslot: timeslot}] = struct{}{}
}

// Tracker records which teachers, rooms and groups are busy at which timeslot.
// Each resource kind is an independent set so a check is three map lookups.
// A Tracker belongs to a single run and is not safe for concurrent use.
type Tracker struct {
	teachers occupancy
	rooms    occupancy
	groups   occupancy
	bookings int
}

// NewTracker returns an empty tracker.
func NewTracker() *Tracker {
	return &Tracker{
		teachers: make(occupancy),
		rooms:    make(occupancy),
		groups:   make(occupancy),
	}
}

// IsFree reports whether none of teacher, room and group is booked at the timeslot.
func (t *Tracker) IsFree(timeslotID, teacherID, roomID, groupID string) bool {
	if t.teachers.has(teacherID, timeslotID) {
		return false
	}
	if t.rooms.has(roomID, timeslotID) {
		return false
	}
	return !t.groups.has(groupID, timeslotID)
}

// Book marks all three resources busy at the timeslot. It does not check for
// conflicts; callers must have seen IsFree return true.
func (t *Tracker) Book(timeslotID, teacherID, roomID, groupID string) {
	t.teachers.add(teacherID, timeslotID)
	t.rooms.add(roomID, timeslotID)
	t.groups.add(groupID, timeslotID)
	t.bookings++
}

// Bookings returns how many times Book was called.
func (t *Tracker) Bookings() int {
	return t.bookings
}
