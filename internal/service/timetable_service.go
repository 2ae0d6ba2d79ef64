package service

import (
	"context"
	"sort"

	"github.com/MrJittiPat/Timetable2/internal/dto"
	"github.com/MrJittiPat/Timetable2/internal/models"
	appErrors "github.com/MrJittiPat/Timetable2/pkg/errors"
)

type scheduleProvider interface {
	Current(ctx context.Context) (*Schedule, error)
}

// TimetableConfig fixes the display axes of the weekly grids.
type TimetableConfig struct {
	Days    []string
	Periods int
}

// TimetableService joins a schedule with its inputs to produce per-entity grids.
type TimetableService struct {
	schedules scheduleProvider
	cfg       TimetableConfig
}

// NewTimetableService constructs a timetable service.
func NewTimetableService(schedules scheduleProvider, cfg TimetableConfig) *TimetableService {
	if len(cfg.Days) == 0 {
		cfg.Days = []string{"Mon", "Tue", "Wed", "Thu", "Fri"}
	}
	if cfg.Periods <= 0 {
		cfg.Periods = 12
	}
	return &TimetableService{schedules: schedules, cfg: cfg}
}

// Views returns every grid of every kind for the current schedule.
func (s *TimetableService) Views(ctx context.Context) (*dto.TimetableViews, error) {
	schedule, err := s.schedules.Current(ctx)
	if err != nil {
		return nil, err
	}
	return BuildViews(schedule, s.cfg), nil
}

// Entity returns the grid of one group, teacher or room.
func (s *TimetableService) Entity(ctx context.Context, kind dto.TimetableKind, id string) (*dto.EntityTimetable, error) {
	if !kind.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "kind must be one of groups, teachers, rooms")
	}
	views, err := s.Views(ctx)
	if err != nil {
		return nil, err
	}
	return EntityFromViews(views, kind, id)
}

// BuildViews projects assignments onto day/period grids keyed by group, teacher and room.
// Assignments referencing an unknown timeslot are left out.
func BuildViews(schedule *Schedule, cfg TimetableConfig) *dto.TimetableViews {
	catalog := schedule.Catalog
	if catalog == nil {
		catalog = &models.Catalog{}
	}
	lookups := buildLookups(catalog)
	slots := catalog.TimeslotsByID()

	views := &dto.TimetableViews{
		Run:         schedule.Run,
		Days:        displayDays(cfg.Days, catalog.Timeslots),
		Periods:     displayPeriods(cfg.Periods, catalog.Timeslots),
		BreakPeriod: schedule.Run.Options.BreakPeriod,
		Groups:      make(map[string]dto.Grid),
		Teachers:    make(map[string]dto.Grid),
		Rooms:       make(map[string]dto.Grid),
		Lookups:     lookups,
	}

	for _, a := range schedule.Assignments {
		slot, ok := slots[a.TimeslotID]
		if !ok {
			continue
		}
		cell := dto.Cell{
			TimeslotID:  a.TimeslotID,
			GroupID:     a.GroupID,
			GroupName:   nameOr(lookups.Groups[a.GroupID].Name, a.GroupID),
			SubjectID:   a.SubjectID,
			SubjectName: nameOr(lookups.Subjects[a.SubjectID].Name, a.SubjectID),
			TeacherID:   a.TeacherID,
			TeacherName: nameOr(lookups.Teachers[a.TeacherID], a.TeacherID),
			RoomID:      a.RoomID,
			RoomName:    nameOr(lookups.Rooms[a.RoomID], a.RoomID),
		}
		place(views.Groups, a.GroupID, slot, cell)
		place(views.Teachers, a.TeacherID, slot, cell)
		place(views.Rooms, a.RoomID, slot, cell)
	}

	views.GroupIDs = sortedKeys(lookups.Groups, views.Groups)
	views.TeacherIDs = sortedKeys(lookups.Teachers, views.Teachers)
	views.RoomIDs = sortedKeys(lookups.Rooms, views.Rooms)
	return views
}

// EntityFromViews extracts one entity's grid. Entities known from the inputs but
// without assignments get an empty grid; unknown ids are not found.
func EntityFromViews(views *dto.TimetableViews, kind dto.TimetableKind, id string) (*dto.EntityTimetable, error) {
	entity := &dto.EntityTimetable{
		Kind:        kind,
		ID:          id,
		Name:        id,
		Days:        views.Days,
		Periods:     views.Periods,
		BreakPeriod: views.BreakPeriod,
		RunID:       views.Run.RunID,
	}

	var (
		grid  dto.Grid
		known bool
	)
	switch kind {
	case dto.KindGroups:
		grid = views.Groups[id]
		var info dto.GroupInfo
		if info, known = views.Lookups.Groups[id]; known {
			entity.Name = info.Name
			entity.Advisor = info.Advisor
		}
	case dto.KindTeachers:
		grid = views.Teachers[id]
		var name string
		if name, known = views.Lookups.Teachers[id]; known {
			entity.Name = name
		}
	case dto.KindRooms:
		grid = views.Rooms[id]
		var name string
		if name, known = views.Lookups.Rooms[id]; known {
			entity.Name = name
		}
	default:
		return nil, appErrors.Clone(appErrors.ErrValidation, "kind must be one of groups, teachers, rooms")
	}

	if grid == nil {
		if !known {
			return nil, appErrors.Clone(appErrors.ErrNotFound, string(kind)+" "+id+" not found")
		}
		grid = make(dto.Grid)
	}
	entity.Grid = grid
	return entity, nil
}

func buildLookups(catalog *models.Catalog) dto.Lookups {
	lookups := dto.Lookups{
		Teachers: make(map[string]string, len(catalog.Teachers)),
		Rooms:    make(map[string]string, len(catalog.Rooms)),
		Groups:   make(map[string]dto.GroupInfo, len(catalog.Groups)),
		Subjects: make(map[string]dto.SubjectInfo, len(catalog.Subjects)),
	}
	for _, t := range catalog.Teachers {
		lookups.Teachers[t.ID] = t.DisplayName()
	}
	for _, r := range catalog.Rooms {
		lookups.Rooms[r.ID] = r.DisplayName()
	}
	for _, g := range catalog.Groups {
		advisor := g.AdvisorKey()
		if name, ok := lookups.Teachers[g.Advisor]; ok {
			advisor = name
		}
		lookups.Groups[g.ID] = dto.GroupInfo{Name: g.DisplayName(), Advisor: advisor}
	}
	for _, sub := range catalog.Subjects {
		lookups.Subjects[sub.ID] = dto.SubjectInfo{
			Name:     nameOr(sub.Name, sub.ID),
			Theory:   sub.Theory,
			Practice: sub.Practice,
			Credit:   sub.Credit,
		}
	}
	return lookups
}

func place(grids map[string]dto.Grid, id string, slot models.Timeslot, cell dto.Cell) {
	grid, ok := grids[id]
	if !ok {
		grid = make(dto.Grid)
		grids[id] = grid
	}
	day, ok := grid[slot.Day]
	if !ok {
		day = make(map[int]dto.Cell)
		grid[slot.Day] = day
	}
	day[slot.Period] = cell
}

// displayDays keeps the configured order and appends unconfigured days in input order.
func displayDays(configured []string, slots []models.Timeslot) []string {
	days := append([]string(nil), configured...)
	seen := make(map[string]bool, len(days))
	for _, d := range days {
		seen[d] = true
	}
	for _, slot := range slots {
		if slot.Day != "" && !seen[slot.Day] {
			seen[slot.Day] = true
			days = append(days, slot.Day)
		}
	}
	return days
}

// displayPeriods returns 1..n, widened to cover the highest period in the input.
func displayPeriods(n int, slots []models.Timeslot) []int {
	for _, slot := range slots {
		if slot.Period > n {
			n = slot.Period
		}
	}
	periods := make([]int, n)
	for i := range periods {
		periods[i] = i + 1
	}
	return periods
}

func sortedKeys[V any](known map[string]V, grids map[string]dto.Grid) []string {
	ids := make([]string, 0, len(known)+len(grids))
	for id := range known {
		ids = append(ids, id)
	}
	for id := range grids {
		if _, ok := known[id]; !ok {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return ids
}

func nameOr(name, fallback string) string {
	if name == "" {
		return fallback
	}
	return name
}
