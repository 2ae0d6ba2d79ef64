package repository

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"

	"github.com/MrJittiPat/Timetable2/internal/models"
	"github.com/MrJittiPat/Timetable2/pkg/export"
	"github.com/MrJittiPat/Timetable2/pkg/storage"
)

// ErrOutputMissing is returned when the schedule output file does not exist.
var ErrOutputMissing = errors.New("schedule output missing")

// ScheduleRepository persists the assignment sequence as the schedule output table.
type ScheduleRepository struct {
	store    *storage.FileStore
	path     string
	exporter *export.CSVExporter
}

// NewScheduleRepository writes and reads the output table at path.
func NewScheduleRepository(store *storage.FileStore, path string) *ScheduleRepository {
	return &ScheduleRepository{store: store, path: path, exporter: export.NewCSVExporter()}
}

// Path returns the output file location.
func (r *ScheduleRepository) Path() string {
	return r.path
}

// Name returns the output file's base name.
func (r *ScheduleRepository) Name() string {
	return filepath.Base(r.path)
}

// Save replaces the output table with assignments, in order. The header is
// written even when there are no assignments. The previous file survives a failed write.
func (r *ScheduleRepository) Save(assignments []models.Assignment) error {
	rows := make([]map[string]string, len(assignments))
	for i, a := range assignments {
		rows[i] = a.Row()
	}
	data := export.Dataset{Headers: models.AssignmentHeaders, Rows: rows}

	return r.store.WriteAtomic(r.path, func(w io.Writer) error {
		return r.exporter.Write(w, data)
	})
}

// Exists reports whether the output table is present.
func (r *ScheduleRepository) Exists() bool {
	return r.store.Exists(r.path)
}

// Open returns a reader over the raw output table.
func (r *ScheduleRepository) Open() (io.ReadCloser, error) {
	file, err := r.store.Open(r.path)
	if err != nil {
		if errors.Is(err, storage.ErrNotExist) {
			return nil, fmt.Errorf("%s: %w", r.path, ErrOutputMissing)
		}
		return nil, err
	}
	return file, nil
}

// Load parses the output table back into assignments.
func (r *ScheduleRepository) Load() ([]models.Assignment, error) {
	file, err := r.Open()
	if err != nil {
		return nil, err
	}
	defer file.Close() //nolint:errcheck

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", r.path, err)
	}
	rows, err := parseTable(data)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", r.path, err)
	}

	assignments := make([]models.Assignment, 0, len(rows))
	for _, rec := range rows {
		assignments = append(assignments, models.Assignment{
			GroupID:    rec["group_id"],
			TimeslotID: rec["timeslot_id"],
			SubjectID:  rec["subject_id"],
			TeacherID:  rec["teacher_id"],
			RoomID:     rec["room_id"],
		})
	}
	return assignments, nil
}
