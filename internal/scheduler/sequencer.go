package scheduler

import "github.com/MrJittiPat/Timetable2/internal/models"

// Sequence orders timeslots into the walk used for every registration: all regular
// slots (period <= threshold) first, then all extended slots, each partition in input order.
func Sequence(slots []models.Timeslot, threshold int) []models.Timeslot {
	regular := make([]models.Timeslot, 0, len(slots))
	var extended []models.Timeslot
	for _, slot := range slots {
		if slot.Period <= threshold {
			regular = append(regular, slot)
			continue
		}
		extended = append(extended, slot)
	}
	return append(regular, extended...)
}
