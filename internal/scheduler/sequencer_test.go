package scheduler

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/MrJittiPat/Timetable2/internal/models"
)

func slotIDs(slots []models.Timeslot) []string {
	ids := make([]string, 0, len(slots))
	for _, slot := range slots {
		ids = append(ids, slot.ID)
	}
	return ids
}

func TestSequencePutsExtendedPeriodsLast(t *testing.T) {
	slots := []models.Timeslot{
		{ID: "Mon-11", Day: "Mon", Period: 11},
		{ID: "Mon-1", Day: "Mon", Period: 1},
		{ID: "Mon-12", Day: "Mon", Period: 12},
		{ID: "Tue-10", Day: "Tue", Period: 10},
		{ID: "Tue-11", Day: "Tue", Period: 11},
		{ID: "Tue-2", Day: "Tue", Period: 2},
	}

	ordered := Sequence(slots, 10)

	assert.Equal(t, []string{"Mon-1", "Tue-10", "Tue-2", "Mon-11", "Mon-12", "Tue-11"}, slotIDs(ordered))
}

func TestSequenceKeepsUnparsedPeriodsRegular(t *testing.T) {
	slots := []models.Timeslot{{ID: "late", Period: 12}, {ID: "blank", Period: 0}}

	assert.Equal(t, []string{"blank", "late"}, slotIDs(Sequence(slots, 10)))
}

func TestSequenceEmpty(t *testing.T) {
	assert.Empty(t, Sequence(nil, 10))
}
