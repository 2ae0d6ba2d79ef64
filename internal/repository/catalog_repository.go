package repository

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/csv"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/afero"
	"go.uber.org/zap"

	"github.com/MrJittiPat/Timetable2/internal/models"
)

// Input table file names inside the data directory.
const (
	TeacherFile      = "teacher.csv"
	RoomFile         = "room.csv"
	GroupFile        = "student_group.csv"
	SubjectFile      = "subject.csv"
	EligibilityFile  = "teach.csv"
	TimeslotFile     = "timeslot.csv"
	RegistrationFile = "register.csv"
)

// InputFiles lists every table the catalog is built from, in fingerprint order.
var InputFiles = []string{TeacherFile, RoomFile, GroupFile, SubjectFile, EligibilityFile, TimeslotFile, RegistrationFile}

// row is one data line of a table, addressed by header name.
type row map[string]string

// intValue reads the leading integer of a cell, so "2.0" is 2 and "3 periods" is 3.
// A cell without leading digits is 0.
func (r row) intValue(column string) int {
	return leadingInt(r[column])
}

func leadingInt(raw string) int {
	s := strings.TrimSpace(raw)
	end := 0
	if end < len(s) && (s[end] == '+' || s[end] == '-') {
		end++
	}
	digits := end
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == digits {
		return 0
	}
	value, err := strconv.Atoi(s[:end])
	if err != nil {
		return 0
	}
	return value
}

// CatalogRepository reads the timetable input tables from a data directory.
type CatalogRepository struct {
	fs      afero.Fs
	dataDir string
	logger  *zap.Logger
}

// NewCatalogRepository constructs a repository over the given filesystem.
func NewCatalogRepository(fs afero.Fs, dataDir string, logger *zap.Logger) *CatalogRepository {
	if fs == nil {
		fs = afero.NewOsFs()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CatalogRepository{fs: fs, dataDir: dataDir, logger: logger}
}

// Load reads all seven tables. An unreadable table is logged and treated as empty;
// Load only fails when the context is cancelled.
func (r *CatalogRepository) Load(ctx context.Context) (*models.Catalog, error) {
	raw := make(map[string][]byte, len(InputFiles))
	for _, name := range InputFiles {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		raw[name] = r.readFile(name)
	}

	catalog := &models.Catalog{Fingerprint: fingerprint(raw)}
	for _, rec := range r.parse(TeacherFile, raw[TeacherFile]) {
		catalog.Teachers = append(catalog.Teachers, models.Teacher{ID: rec["teacher_id"], Name: rec["teacher_name"]})
	}
	for _, rec := range r.parse(RoomFile, raw[RoomFile]) {
		catalog.Rooms = append(catalog.Rooms, models.Room{ID: rec["room_id"], Name: rec["room_name"]})
	}
	for _, rec := range r.parse(GroupFile, raw[GroupFile]) {
		catalog.Groups = append(catalog.Groups, models.StudentGroup{ID: rec["group_id"], Name: rec["group_name"], Advisor: rec["advisor"]})
	}
	for _, rec := range r.parse(SubjectFile, raw[SubjectFile]) {
		catalog.Subjects = append(catalog.Subjects, models.Subject{
			ID:       rec["subject_id"],
			Name:     rec["subject_name"],
			Theory:   rec.intValue("theory"),
			Practice: rec.intValue("practice"),
			Credit:   rec["credit"],
		})
	}
	for _, rec := range r.parse(EligibilityFile, raw[EligibilityFile]) {
		catalog.Eligibilities = append(catalog.Eligibilities, models.Eligibility{SubjectID: rec["subject_id"], TeacherID: rec["teacher_id"]})
	}
	for _, rec := range r.parse(TimeslotFile, raw[TimeslotFile]) {
		catalog.Timeslots = append(catalog.Timeslots, models.Timeslot{ID: rec["timeslot_id"], Day: rec["day"], Period: rec.intValue("period")})
	}
	for _, rec := range r.parse(RegistrationFile, raw[RegistrationFile]) {
		catalog.Registrations = append(catalog.Registrations, models.Registration{GroupID: rec["group_id"], SubjectID: rec["subject_id"]})
	}
	return catalog, nil
}

// Fingerprint digests the raw input tables without parsing them.
func (r *CatalogRepository) Fingerprint(ctx context.Context) (string, error) {
	raw := make(map[string][]byte, len(InputFiles))
	for _, name := range InputFiles {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		raw[name] = r.readFile(name)
	}
	return fingerprint(raw), nil
}

// DataDir returns the directory the tables are read from.
func (r *CatalogRepository) DataDir() string {
	return r.dataDir
}

func (r *CatalogRepository) readFile(name string) []byte {
	path := filepath.Join(r.dataDir, name)
	data, err := afero.ReadFile(r.fs, path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			r.logger.Warn("input table missing, using empty table", zap.String("file", path))
		} else {
			r.logger.Warn("input table unreadable, using empty table", zap.String("file", path), zap.Error(err))
		}
		return nil
	}
	return data
}

func (r *CatalogRepository) parse(name string, data []byte) []row {
	rows, err := parseTable(data)
	if err != nil {
		r.logger.Warn("input table malformed, using rows read so far", zap.String("file", name), zap.Error(err))
	}
	return rows
}

// parseTable decodes a header-led comma separated table. Cells are trimmed, short rows
// are padded with empty strings and blank lines are skipped.
func parseTable(data []byte) ([]row, error) {
	reader := csv.NewReader(bytes.NewReader(data))
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		if err == io.EOF {
			return nil, nil
		}
		return nil, fmt.Errorf("read header: %w", err)
	}
	for i := range header {
		header[i] = strings.TrimSpace(strings.TrimPrefix(header[i], "\ufeff"))
	}

	var rows []row
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return rows, fmt.Errorf("read record: %w", err)
		}
		if blank(record) {
			continue
		}
		rec := make(row, len(header))
		for i, column := range header {
			if i < len(record) {
				rec[column] = strings.TrimSpace(record[i])
			} else {
				rec[column] = ""
			}
		}
		rows = append(rows, rec)
	}
	return rows, nil
}

func blank(record []string) bool {
	for _, cell := range record {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

func fingerprint(raw map[string][]byte) string {
	hash := sha256.New()
	for _, name := range InputFiles {
		_, _ = fmt.Fprintf(hash, "%s:%d:", name, len(raw[name]))
		_, _ = hash.Write(raw[name])
	}
	return hex.EncodeToString(hash.Sum(nil))
}
