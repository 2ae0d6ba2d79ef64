package scheduler

import (
	"fmt"

	"github.com/MrJittiPat/Timetable2/internal/models"
)

// TeacherPolicy decides which eligible teachers the engine may use for a registration.
type TeacherPolicy string

const (
	// PolicyFirstEligible uses the first eligible teacher for the whole registration.
	PolicyFirstEligible TeacherPolicy = "first_eligible"
	// PolicyFallback tries every eligible teacher, in order, at each timeslot.
	PolicyFallback TeacherPolicy = "fallback"
)

const (
	DefaultBreakPeriod      = 5
	DefaultRegularThreshold = 10
)

// Options configures an Engine.
type Options struct {
	BreakPeriod      int
	RegularThreshold int
	TeacherPolicy    TeacherPolicy
}

// ParsePolicy validates a policy name. An empty name selects PolicyFirstEligible.
func ParsePolicy(name string) (TeacherPolicy, error) {
	switch policy := TeacherPolicy(name); policy {
	case "":
		return PolicyFirstEligible, nil
	case PolicyFirstEligible, PolicyFallback:
		return policy, nil
	default:
		return "", fmt.Errorf("unknown teacher policy %q", name)
	}
}

// DefaultOptions returns the lunch-break and threshold values the school uses.
func DefaultOptions() Options {
	return Options{
		BreakPeriod:      DefaultBreakPeriod,
		RegularThreshold: DefaultRegularThreshold,
		TeacherPolicy:    PolicyFirstEligible,
	}
}

// Outcome classifies what happened to a single registration.
type Outcome string

const (
	OutcomeComplete       Outcome = "complete"
	OutcomePartial        Outcome = "partial"
	OutcomeUnknownSubject Outcome = "unknown_subject"
	OutcomeNoTeacher      Outcome = "no_teacher"
)

// RegistrationResult reports how many of the requested periods a registration received.
type RegistrationResult struct {
	GroupID   string  `json:"groupId"`
	SubjectID string  `json:"subjectId"`
	Requested int     `json:"requested"`
	Assigned  int     `json:"assigned"`
	Outcome   Outcome `json:"outcome"`
}

// Result is the output of one allocation run.
type Result struct {
	Assignments   []models.Assignment
	Registrations []RegistrationResult
}

// Summary aggregates per-registration results.
type Summary struct {
	Registrations    int `json:"registrations"`
	Complete         int `json:"complete"`
	Partial          int `json:"partial"`
	Skipped          int `json:"skipped"`
	RequestedPeriods int `json:"requestedPeriods"`
	AssignedPeriods  int `json:"assignedPeriods"`
	AssignmentsTotal int `json:"assignmentsTotal"`
	UnknownSubject   int `json:"unknownSubject"`
	WithoutTeacher   int `json:"withoutTeacher"`
}

// Summary counts registrations by outcome.
func (r *Result) Summary() Summary {
	s := Summary{Registrations: len(r.Registrations), AssignmentsTotal: len(r.Assignments)}
	for _, reg := range r.Registrations {
		s.RequestedPeriods += reg.Requested
		s.AssignedPeriods += reg.Assigned
		switch reg.Outcome {
		case OutcomeComplete:
			s.Complete++
		case OutcomePartial:
			s.Partial++
		case OutcomeUnknownSubject:
			s.Skipped++
			s.UnknownSubject++
		case OutcomeNoTeacher:
			s.Skipped++
			s.WithoutTeacher++
		}
	}
	return s
}

// Engine assigns registrations to (timeslot, teacher, room) triples greedily, in
// registration order, without backtracking. Completeness is not guaranteed.
type Engine struct {
	opts Options
}

// NewEngine constructs an engine, filling unset options with defaults.
func NewEngine(opts Options) *Engine {
	if opts.TeacherPolicy == "" {
		opts.TeacherPolicy = PolicyFirstEligible
	}
	return &Engine{opts: opts}
}

// Options returns the effective engine options.
func (e *Engine) Options() Options {
	return e.opts
}

// Allocate runs the engine over the catalog with a fresh tracker.
func (e *Engine) Allocate(catalog *models.Catalog) *Result {
	return e.AllocateWith(NewTracker(), catalog)
}

// AllocateWith runs the engine against an existing tracker, which it mutates.
func (e *Engine) AllocateWith(tracker *Tracker, catalog *models.Catalog) *Result {
	subjects := catalog.SubjectsByID()
	index := NewEligibilityIndex(catalog.Eligibilities)
	slots := Sequence(catalog.Timeslots, e.opts.RegularThreshold)

	result := &Result{
		Assignments:   make([]models.Assignment, 0),
		Registrations: make([]RegistrationResult, 0, len(catalog.Registrations)),
	}
	for _, reg := range catalog.Registrations {
		outcome := RegistrationResult{GroupID: reg.GroupID, SubjectID: reg.SubjectID}

		subject, ok := subjects[reg.SubjectID]
		if !ok {
			outcome.Outcome = OutcomeUnknownSubject
			result.Registrations = append(result.Registrations, outcome)
			continue
		}
		outcome.Requested = subject.TotalPeriods()

		teachers := index.Teachers(reg.SubjectID)
		if len(teachers) == 0 {
			outcome.Outcome = OutcomeNoTeacher
			result.Registrations = append(result.Registrations, outcome)
			continue
		}
		if e.opts.TeacherPolicy != PolicyFallback {
			teachers = teachers[:1]
		}

		for _, slot := range slots {
			if outcome.Assigned >= outcome.Requested {
				break
			}
			if slot.Period == e.opts.BreakPeriod {
				continue
			}
			teacherID, roomID, found := pick(tracker, slot.ID, teachers, catalog.Rooms, reg.GroupID)
			if !found {
				continue
			}
			result.Assignments = append(result.Assignments, models.Assignment{
				GroupID:    reg.GroupID,
				TimeslotID: slot.ID,
				SubjectID:  reg.SubjectID,
				TeacherID:  teacherID,
				RoomID:     roomID,
			})
			tracker.Book(slot.ID, teacherID, roomID, reg.GroupID)
			outcome.Assigned++
		}

		outcome.Outcome = OutcomeComplete
		if outcome.Assigned < outcome.Requested {
			outcome.Outcome = OutcomePartial
		}
		result.Registrations = append(result.Registrations, outcome)
	}
	return result
}

// pick returns the first free (teacher, room) pair at the timeslot, teachers outermost.
func pick(tracker *Tracker, timeslotID string, teachers []string, rooms []models.Room, groupID string) (string, string, bool) {
	for _, teacherID := range teachers {
		for _, room := range rooms {
			if tracker.IsFree(timeslotID, teacherID, room.ID, groupID) {
				return teacherID, room.ID, true
			}
		}
	}
	return "", "", false
}
